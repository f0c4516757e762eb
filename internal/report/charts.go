package report

import (
	"io"
	"os"
	"path/filepath"

	"netdash/internal/charts"
	"netdash/internal/models"
)

func (g *Generator) generateStatusChart(outputDir string, snap *models.Snapshot) error {
	return writeChart(filepath.Join(outputDir, "status.png"), func(w io.Writer) error {
		return charts.RenderPNG(w, charts.StatusSeries(snap.Timeline), charts.DefaultSize, g.theme)
	})
}

func (g *Generator) generateSpeedChart(outputDir string, snap *models.Snapshot) error {
	return writeChart(filepath.Join(outputDir, "speed.png"), func(w io.Writer) error {
		return charts.RenderPNG(w, charts.SpeedSeries(snap.SpeedHistory), charts.DefaultSize, g.theme)
	})
}

func (g *Generator) generateLatencyChart(outputDir string, snap *models.Snapshot) error {
	return writeChart(filepath.Join(outputDir, "latency.png"), func(w io.Writer) error {
		return charts.RenderBarsPNG(w, "Average Latency by Host", charts.LatencyBars(snap.PingHosts), charts.DefaultSize, g.theme)
	})
}

// writeChart renders into filename, removing the file again if rendering fails
func writeChart(filename string, render func(io.Writer) error) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	if err := render(file); err != nil {
		file.Close()
		os.Remove(filename)
		return err
	}
	return file.Close()
}
