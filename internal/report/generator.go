package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"netdash/internal/charts"
	"netdash/internal/models"
)

// Generator writes a snapshot out as chart images and a text summary
type Generator struct {
	logger *slog.Logger
	theme  charts.Theme
	now    func() time.Time
}

// NewGenerator creates a new report generator
func NewGenerator(logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{logger: logger, theme: charts.DefaultTheme, now: time.Now}
}

// GenerateReport creates a report directory under outputDir for snap and
// returns its path. Charts without enough data are skipped; the summary is
// always written.
func (g *Generator) GenerateReport(outputDir string, snap *models.Snapshot, periodLabel string) (string, error) {
	if snap == nil {
		return "", fmt.Errorf("no snapshot to report on")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := g.now().Format("2006-01-02_15-04-05")
	reportDir := filepath.Join(outputDir, fmt.Sprintf("network_report_%s_%s", sanitizeFilename(snap.Period), timestamp))
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	// Generate various charts
	if err := g.generateStatusChart(reportDir, snap); err != nil {
		g.logger.Warn("status chart skipped", "err", err)
	}

	if err := g.generateSpeedChart(reportDir, snap); err != nil {
		g.logger.Warn("speed chart skipped", "err", err)
	}

	if err := g.generateLatencyChart(reportDir, snap); err != nil {
		g.logger.Warn("latency chart skipped", "err", err)
	}

	if err := g.generateTextReport(reportDir, snap, periodLabel); err != nil {
		return reportDir, fmt.Errorf("text report: %w", err)
	}

	g.logger.Info("report generated", "dir", reportDir)
	return reportDir, nil
}
