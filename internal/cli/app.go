package cli

import (
	"context"
	"fmt"
	"os"

	"netdash/internal/dashboard"
	"netdash/internal/database"
	"netdash/internal/export"
	"netdash/internal/logging"
	"netdash/internal/storage"
	"netdash/internal/telemetry"
)

// newLogger logs to the configured file, and to stderr unless the terminal
// belongs to the dashboard
func newLogger(toStderr bool) (*logging.Logger, error) {
	opts := logging.Options{File: cfg.LogFile, Level: cfg.LogLevel}
	if toStderr {
		opts.Stderr = os.Stderr
	}
	return logging.New(opts)
}

func newClient() *telemetry.Client {
	return telemetry.New(cfg.APIURL,
		telemetry.WithTimeout(cfg.Timeout),
		telemetry.WithAbsoluteRange(cfg.AbsoluteRange))
}

func newOrchestrator(logger *logging.Logger) (*dashboard.Orchestrator, error) {
	sel, err := cfg.Selector()
	if err != nil {
		return nil, err
	}
	return dashboard.New(newClient(), dashboard.Config{
		RefreshInterval: cfg.RefreshInterval,
		RecentLimit:     cfg.RecentLimit,
		AutoRefresh:     cfg.AutoRefresh,
		Selector:        sel,
	}, dashboard.WithLogger(logger.Logger)), nil
}

// newExporter writes to the export directory and, when a bucket is
// configured, uploads there too. s may be nil for one-shot exports.
func newExporter(ctx context.Context, s export.Suspender, settle bool, logger *logging.Logger) *export.Exporter {
	delay := cfg.CaptureDelay
	if !settle {
		delay = 0
	}
	opts := []export.Option{export.WithLogger(logger.Logger)}

	if cfg.S3.Enabled() {
		client, err := storage.NewClient(cfg.S3, logger.Logger)
		if err != nil {
			logger.Warn("s3 upload disabled", "err", err)
		} else {
			if err := client.EnsureBucket(ctx); err != nil {
				logger.Warn("s3 bucket check failed", "bucket", cfg.S3.Bucket, "err", err)
			}
			opts = append(opts, export.WithUploader(client))
		}
	}

	return export.New(export.Config{
		Dir:         cfg.ExportDir,
		AppName:     cfg.AppName,
		SettleDelay: delay,
	}, s, opts...)
}

func openArchive() (*database.DB, error) {
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", cfg.DatabasePath, err)
	}
	return db, nil
}

// recordingExporter records every written artifact in the archive
type recordingExporter struct {
	*export.Exporter
	db     *database.DB
	logger *logging.Logger
}

func (r recordingExporter) Capture(ctx context.Context, src export.ViewSource, format export.Format) (*export.Artifact, error) {
	art, err := r.Exporter.Capture(ctx, src, format)
	if art != nil && r.db != nil {
		if recErr := r.db.RecordExport(ctx, art.Record()); recErr != nil {
			r.logger.Warn("recording export failed", "err", recErr)
		}
	}
	return art, err
}
