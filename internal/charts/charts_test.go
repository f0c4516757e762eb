package charts

import (
	"bytes"
	"errors"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/guregu/null/v5"

	"netdash/internal/models"
)

var t0 = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func TestStatusSeries(t *testing.T) {
	samples := []models.StatusSample{
		{Timestamp: t0.Add(2 * time.Minute), Status: models.StatusOffline, SuccessRate: 0},
		{Timestamp: t0, Status: models.StatusOnline, SuccessRate: 100},
		{Timestamp: t0.Add(time.Minute), Status: models.StatusOnline, SuccessRate: 80},
	}

	c := StatusSeries(samples)

	if c.Y == nil || c.Y.Min != 0 || c.Y.Max != 100 {
		t.Fatalf("status chart domain = %+v, want [0,100]", c.Y)
	}
	if len(c.Series) != 1 {
		t.Fatalf("got %d series, want 1", len(c.Series))
	}
	points := c.Series[0].Points
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}
	if !points[0].X.Equal(t0) || points[0].Label != models.StatusOnline {
		t.Errorf("points not ordered by time: %+v", points[0])
	}
	if points[2].Y != 0 || points[2].Label != models.StatusOffline {
		t.Errorf("last point = %+v", points[2])
	}
}

func TestSpeedSeries(t *testing.T) {
	samples := []models.SpeedSample{
		{Timestamp: t0, Provider: "speedtest.net", DownloadMbps: null.FloatFrom(100), UploadMbps: null.FloatFrom(20)},
		{Timestamp: t0.Add(time.Hour), Provider: "speedtest.net", DownloadMbps: null.Float{}, UploadMbps: null.FloatFrom(25)},
		{Timestamp: t0, Provider: "fast.com", DownloadMbps: null.FloatFrom(90)},
		{Timestamp: t0.Add(time.Hour), Provider: "fast.com", DownloadMbps: null.FloatFrom(0)},
	}

	c := SpeedSeries(samples)

	want := []struct {
		name   string
		metric Metric
		points int
		dashed bool
	}{
		{"fast.com Download", Download, 2, false},
		{"speedtest.net Download", Download, 1, false},
		{"speedtest.net Upload", Upload, 2, true},
	}

	if len(c.Series) != len(want) {
		t.Fatalf("got %d series, want %d: %+v", len(c.Series), len(want), c.Series)
	}
	for i, w := range want {
		s := c.Series[i]
		if s.Name != w.name || s.Metric != w.metric || len(s.Points) != w.points || s.Dashed != w.dashed {
			t.Errorf("series %d = {%s %s %d dashed=%v}, want %+v", i, s.Name, s.Metric, len(s.Points), s.Dashed, w)
		}
	}

	// A measured zero is plotted
	if c.Series[0].Points[1].Y != 0 {
		t.Errorf("measured zero dropped: %+v", c.Series[0].Points)
	}
}

func TestSpeedSeriesNoUpload(t *testing.T) {
	samples := []models.SpeedSample{
		{Timestamp: t0, Provider: "fast.com", DownloadMbps: null.FloatFrom(90)},
		{Timestamp: t0.Add(time.Hour), Provider: "fast.com", DownloadMbps: null.FloatFrom(95)},
	}

	c := SpeedSeries(samples)
	if len(c.Series) != 1 || c.Series[0].Metric != Download {
		t.Errorf("expected only a download series, got %+v", c.Series)
	}
	if c.Y != nil {
		t.Errorf("speed chart should fit its data, got domain %+v", c.Y)
	}
}

func TestLatencyBars(t *testing.T) {
	hosts := []models.PingHostAggregate{
		{Host: "1.1.1.1", AvgResponseTime: null.FloatFrom(12), SuccessRate: 100},
		{Host: "8.8.8.8", SuccessRate: 0},
		{Host: "9.9.9.9", AvgResponseTime: null.FloatFrom(30), SuccessRate: 85},
	}

	bars := LatencyBars(hosts)
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(bars))
	}
	if bars[0].Grade != "healthy" || bars[1].Grade != "degraded" {
		t.Errorf("grades = %q, %q", bars[0].Grade, bars[1].Grade)
	}
}

func TestSparkline(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		width  int
		domain *Domain
		want   string
	}{
		{"fixed domain", []float64{0, 50, 100}, 10, &Domain{Min: 0, Max: 100}, "▁▅█"},
		{"fit to data", []float64{10, 20}, 10, nil, "▁█"},
		{"flat line", []float64{5, 5, 5}, 10, nil, "▄▄▄"},
		{"bucketed", []float64{0, 0, 100, 100}, 2, &Domain{Min: 0, Max: 100}, "▁█"},
		{"empty", nil, 10, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Series{}
			for i, v := range tt.values {
				s.Points = append(s.Points, Point{X: t0.Add(time.Duration(i) * time.Minute), Y: v})
			}
			got := Sparkline(s, tt.width, tt.domain)
			if got != tt.want {
				t.Errorf("Sparkline() = %q, want %q", got, tt.want)
			}
			if n := utf8.RuneCountInString(got); n > tt.width {
				t.Errorf("sparkline is %d runes wide, limit %d", n, tt.width)
			}
		})
	}
}

func TestRenderPNG(t *testing.T) {
	samples := []models.StatusSample{
		{Timestamp: t0, Status: models.StatusOnline, SuccessRate: 100},
		{Timestamp: t0.Add(time.Minute), Status: models.StatusOnline, SuccessRate: 90},
	}

	var buf bytes.Buffer
	if err := RenderPNG(&buf, StatusSeries(samples), Size{Width: 400, Height: 200}, DefaultTheme); err != nil {
		t.Fatalf("RenderPNG failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Errorf("output is not a PNG")
	}
}

func TestRenderPNGNotEnoughData(t *testing.T) {
	single := StatusSeries([]models.StatusSample{{Timestamp: t0, SuccessRate: 100}})

	var buf bytes.Buffer
	if err := RenderPNG(&buf, single, DefaultSize, DefaultTheme); !errors.Is(err, ErrNotEnoughData) {
		t.Errorf("error = %v, want ErrNotEnoughData", err)
	}
	if err := RenderBarsPNG(&buf, "Latency", nil, DefaultSize, DefaultTheme); !errors.Is(err, ErrNotEnoughData) {
		t.Errorf("bars error = %v, want ErrNotEnoughData", err)
	}
}
