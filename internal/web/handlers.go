package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"netdash/internal/charts"
	"netdash/internal/dashboard"
	"netdash/internal/export"
	"netdash/internal/models"
	"netdash/internal/period"
)

type errorBody struct {
	Error string `json:"error"`
}

var noData = errorBody{Error: "No data available"}

// stateBody is the JSON form of dashboard.State
type stateBody struct {
	Period      string         `json:"period"`
	Label       string         `json:"label"`
	Window      *period.Window `json:"window,omitempty"`
	AutoRefresh bool           `json:"auto_refresh"`
	Suspended   bool           `json:"suspended"`
	Refreshing  bool           `json:"refreshing"`
	LastUpdated *time.Time     `json:"last_updated,omitempty"`
	LastError   string         `json:"last_error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleState handles /api/state requests
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) state() stateBody {
	st := s.dash.State()
	body := stateBody{
		Period:      st.Selector.String(),
		Label:       st.Selector.Label(),
		AutoRefresh: st.AutoRefresh,
		Suspended:   st.Suspended,
		Refreshing:  st.Refreshing,
	}
	if st.Snapshot != nil {
		body.Window = &st.Snapshot.Window
		body.LastUpdated = &st.Snapshot.FetchedAt
	}
	if st.LastError != nil {
		body.LastError = st.LastError.Error()
	}
	return body
}

// handleSnapshot handles /api/snapshot requests
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.dash.Snapshot()
	if err != nil {
		writeJSON(w, http.StatusNotFound, noData)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleRefresh handles POST /api/refresh requests
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.dash.Refresh(r.Context())
	if errors.Is(err, dashboard.ErrStale) {
		writeError(w, http.StatusConflict, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handlePeriod handles POST /api/period with {"period": "last-6-hours"} or a custom range
func (s *Server) handlePeriod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Period string `json:"period"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return
	}

	sel, err := period.ParseSelector(req.Period, time.Local)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	_, err = s.dash.SetSelector(r.Context(), sel)
	switch {
	case errors.Is(err, period.ErrInvertedRange), errors.Is(err, period.ErrInvalidHour), errors.Is(err, period.ErrUnknownPeriod):
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil && !errors.Is(err, dashboard.ErrStale):
		// The selector is applied even if its first refresh fails
		s.logger.Warn("refresh after period change failed", "period", sel.String(), "err", err)
	}
	writeJSON(w, http.StatusOK, s.state())
}

// handlePeriods lists the selectable periods
func (s *Server) handlePeriods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, period.Names())
}

// handleAutoRefresh handles POST /api/auto-refresh with {"enabled": bool}
func (s *Server) handleAutoRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		writeError(w, http.StatusBadRequest, errors.New(`body must be {"enabled": true|false}`))
		return
	}
	s.dash.SetAutoRefresh(*req.Enabled)
	writeJSON(w, http.StatusOK, s.state())
}

// handleSeries returns chart data as JSON: status, speed or latency
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	snap, err := s.dash.Snapshot()
	if err != nil {
		writeJSON(w, http.StatusNotFound, noData)
		return
	}

	switch chi.URLParam(r, "name") {
	case "status":
		writeJSON(w, http.StatusOK, charts.StatusSeries(snap.Timeline))
	case "speed":
		writeJSON(w, http.StatusOK, charts.SpeedSeries(snap.SpeedHistory))
	case "latency":
		writeJSON(w, http.StatusOK, charts.LatencyBars(snap.PingHosts))
	default:
		writeError(w, http.StatusNotFound, errors.New("unknown series"))
	}
}

// handleChart renders status.png, speed.png or latency.png from the current snapshot
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(chi.URLParam(r, "name"), ".png")

	snap, err := s.dash.Snapshot()
	if err != nil {
		writeJSON(w, http.StatusNotFound, noData)
		return
	}

	size := charts.DefaultSize
	if v, err := strconv.Atoi(r.URL.Query().Get("width")); err == nil && v > 0 && v <= 4000 {
		size.Width = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("height")); err == nil && v > 0 && v <= 4000 {
		size.Height = v
	}

	var render func(w *bytes.Buffer) error
	switch name {
	case "status":
		render = func(b *bytes.Buffer) error {
			return charts.RenderPNG(b, charts.StatusSeries(snap.Timeline), size, charts.DefaultTheme)
		}
	case "speed":
		render = func(b *bytes.Buffer) error {
			return charts.RenderPNG(b, charts.SpeedSeries(snap.SpeedHistory), size, charts.DefaultTheme)
		}
	case "latency":
		render = func(b *bytes.Buffer) error {
			return charts.RenderBarsPNG(b, "Average Latency by Host", charts.LatencyBars(snap.PingHosts), size, charts.DefaultTheme)
		}
	default:
		writeError(w, http.StatusNotFound, errors.New("unknown chart"))
		return
	}

	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		if errors.Is(err, charts.ErrNotEnoughData) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// handleExport handles POST /api/export?format=png|pdf
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("export is not configured"))
		return
	}

	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(export.FormatPNG)
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	art, err := s.exporter.Capture(r.Context(), export.LiveView(s.cfg.AppName, s.dash), format)
	s.metrics.Export(string(format), err)
	if art != nil && s.history != nil {
		if recErr := s.history.RecordExport(r.Context(), art.Record()); recErr != nil {
			s.logger.Warn("recording export failed", "err", recErr)
		}
	}
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, dashboard.ErrNoSnapshot) {
			status = http.StatusConflict
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusCreated, art)
}

// handleListExports lists recorded exports
func (s *Server) handleListExports(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusOK, []models.ExportRecord{})
		return
	}
	exports, err := s.history.ListExports(r.Context(), queryInt(r, "limit", 20))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, exports)
}

// handleDownload serves a written export file from the export directory
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(chi.URLParam(r, "filename"))
	if name == "." || name == "/" || s.cfg.ExportDir == "" {
		writeError(w, http.StatusNotFound, errors.New("not found"))
		return
	}
	path := filepath.Join(s.cfg.ExportDir, name)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, errors.New("not found"))
		return
	}
	http.ServeFile(w, r, path)
}

// handleHistory lists archived snapshots
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusOK, []models.SnapshotRecord{})
		return
	}
	records, err := s.history.ListSnapshots(r.Context(), queryInt(r, "limit", 20))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}
