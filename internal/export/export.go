package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"netdash/internal/models"
)

// Format is an export file type
type Format string

const (
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// DefaultSettleDelay gives the view time to quiesce after auto-refresh is paused
const DefaultSettleDelay = 300 * time.Millisecond

// ParseFormat validates a user supplied format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPNG, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q (want png or pdf)", s)
}

// ContentType returns the MIME type for the format
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "image/png"
}

// CaptureError reports a failed export. The dashboard keeps running.
type CaptureError struct {
	Format Format
	Stage  string
	Err    error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("export %s failed during %s: %v", e.Format, e.Stage, e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

// Artifact is a finished export
type Artifact struct {
	ID         string    `json:"id"`
	Format     Format    `json:"format"`
	Filename   string    `json:"filename"`
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	CapturedAt time.Time `json:"captured_at"`
	Location   string    `json:"location,omitempty"`
}

// Record is the archive entry for the artifact
func (a *Artifact) Record() models.ExportRecord {
	return models.ExportRecord{
		ID:         a.ID,
		Format:     string(a.Format),
		Filename:   a.Filename,
		Path:       a.Path,
		Location:   a.Location,
		Size:       a.Size,
		CapturedAt: a.CapturedAt,
	}
}

// Suspender pauses timer driven refreshes for the duration of a capture
type Suspender interface {
	SuspendAutoRefresh() (release func())
}

// Uploader copies a finished artifact somewhere else
type Uploader interface {
	Upload(ctx context.Context, key, path, contentType string) (string, error)
}

// ViewSource produces the view to capture. It is called after the settle delay.
type ViewSource func() (View, error)

// Static wraps an already built view
func Static(v View) ViewSource {
	return func() (View, error) { return v, nil }
}

// Config controls where and how exports are written
type Config struct {
	Dir         string
	AppName     string
	SettleDelay time.Duration
}

// Exporter captures dashboard views to files
type Exporter struct {
	cfg       Config
	suspender Suspender
	uploader  Uploader
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures an Exporter
type Option func(*Exporter)

// WithUploader sends every artifact to u after it is written
func WithUploader(u Uploader) Option {
	return func(e *Exporter) { e.uploader = u }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) { e.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// New creates an Exporter. s may be nil when there is no live refresh to pause.
func New(cfg Config, s Suspender, opts ...Option) *Exporter {
	if cfg.AppName == "" {
		cfg.AppName = "netdash"
	}
	if cfg.Dir == "" {
		cfg.Dir = "."
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}
	e := &Exporter{
		cfg:       cfg,
		suspender: s,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Filename returns "<app>-YYYY-MM-DD.<ext>" for the capture date. Capture
// numbers later exports from the same day instead of overwriting.
func Filename(appName string, format Format, capturedAt time.Time) string {
	return fmt.Sprintf("%s-%s.%s", sanitize(appName), capturedAt.Format("2006-01-02"), format)
}

// Capture renders the view to a file. Auto-refresh is suspended from the
// start of the capture until it returns, whatever the outcome.
func (e *Exporter) Capture(ctx context.Context, src ViewSource, format Format) (*Artifact, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, &CaptureError{Format: format, Stage: "setup", Err: err}
	}

	if e.suspender != nil {
		release := e.suspender.SuspendAutoRefresh()
		defer release()
	}

	if e.cfg.SettleDelay > 0 {
		timer := time.NewTimer(e.cfg.SettleDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &CaptureError{Format: format, Stage: "settle", Err: ctx.Err()}
		case <-timer.C:
		}
	}

	view, err := src()
	if err != nil {
		return nil, &CaptureError{Format: format, Stage: "view", Err: err}
	}

	capturedAt := e.now()
	panels := view.ExportablePanels()
	theme := view.Theme.Normalize()

	var buf bytes.Buffer
	switch format {
	case FormatPDF:
		err = renderPDF(&buf, view.Title, view.Subtitle, panels, theme, capturedAt)
	default:
		err = renderPNG(&buf, view.Title, view.Subtitle, panels, theme)
	}
	if err != nil {
		return nil, &CaptureError{Format: format, Stage: "render", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &CaptureError{Format: format, Stage: "render", Err: err}
	}

	if err := os.MkdirAll(e.cfg.Dir, 0o755); err != nil {
		return nil, &CaptureError{Format: format, Stage: "write", Err: err}
	}
	name, path, err := writeUnique(e.cfg.Dir, Filename(e.cfg.AppName, format, capturedAt), buf.Bytes())
	if err != nil {
		return nil, &CaptureError{Format: format, Stage: "write", Err: err}
	}

	art := &Artifact{
		ID:         uuid.NewString(),
		Format:     format,
		Filename:   name,
		Path:       path,
		Size:       int64(buf.Len()),
		CapturedAt: capturedAt,
	}

	if e.uploader != nil {
		loc, err := e.uploader.Upload(ctx, name, path, format.ContentType())
		if err != nil {
			return art, &CaptureError{Format: format, Stage: "upload", Err: err}
		}
		art.Location = loc
	}

	e.logger.Info("export written", "format", format, "path", path, "size", art.Size, "location", art.Location)
	return art, nil
}

// maxNameAttempts bounds the numbered suffixes tried for one day's exports
const maxNameAttempts = 1000

// writeUnique writes data under name in dir without replacing an existing
// file. When name is taken, "-2", "-3" and so on are inserted before the
// extension.
func writeUnique(dir, name string, data []byte) (string, string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for n := 1; n <= maxNameAttempts; n++ {
		candidate := name
		if n > 1 {
			candidate = fmt.Sprintf("%s-%d%s", stem, n, ext)
		}
		path := filepath.Join(dir, candidate)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", "", err
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(path)
			return "", "", err
		}
		if err := f.Close(); err != nil {
			os.Remove(path)
			return "", "", err
		}
		return candidate, path, nil
	}
	return "", "", fmt.Errorf("no free file name for %s after %d attempts", name, maxNameAttempts)
}

// sanitize replaces characters that are awkward in file names
func sanitize(s string) string {
	replacer := strings.NewReplacer(
		":", "_",
		"/", "_",
		"\\", "_",
		" ", "_",
	)
	return replacer.Replace(s)
}
