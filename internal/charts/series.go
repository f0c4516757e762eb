package charts

import (
	"sort"
	"time"

	"github.com/guregu/null/v5"

	"netdash/internal/models"
)

// Metric names a speed measurement
type Metric string

const (
	Download Metric = "download"
	Upload   Metric = "upload"
)

// Point is one plotted value
type Point struct {
	X     time.Time `json:"x"`
	Y     float64   `json:"y"`
	Label string    `json:"label,omitempty"`
}

// Series is one line on a chart
type Series struct {
	Name     string  `json:"name"`
	Provider string  `json:"provider,omitempty"`
	Metric   Metric  `json:"metric,omitempty"`
	Dashed   bool    `json:"dashed,omitempty"`
	Points   []Point `json:"points"`
}

// Domain is a fixed value axis range
type Domain struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Chart is a set of series sharing one time axis
type Chart struct {
	Title  string   `json:"title"`
	YLabel string   `json:"y_label"`
	Y      *Domain  `json:"y,omitempty"` // nil means fit to data
	Series []Series `json:"series"`
}

// Empty reports whether the chart has nothing to plot
func (c Chart) Empty() bool {
	for _, s := range c.Series {
		if len(s.Points) > 0 {
			return false
		}
	}
	return true
}

// Bar is one labelled bar
type Bar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Grade string  `json:"grade,omitempty"`
}

// StatusSeries plots the success rate of each health check over time
func StatusSeries(samples []models.StatusSample) Chart {
	points := make([]Point, 0, len(samples))
	for _, s := range samples {
		points = append(points, Point{X: s.Timestamp, Y: s.SuccessRate, Label: s.Status})
	}
	sortPoints(points)

	return Chart{
		Title:  "Connection Status",
		YLabel: "Success Rate (%)",
		Y:      &Domain{Min: 0, Max: 100},
		Series: []Series{{Name: "Success Rate", Points: points}},
	}
}

// SpeedSeries plots download and upload throughput per provider. Providers are
// ordered by name. A provider gets an upload series only if at least one of its
// samples measured upload. Unmeasured values are skipped, not drawn as zero.
func SpeedSeries(samples []models.SpeedSample) Chart {
	byProvider := make(map[string][]models.SpeedSample)
	for _, s := range samples {
		byProvider[s.Provider] = append(byProvider[s.Provider], s)
	}

	providers := make([]string, 0, len(byProvider))
	for p := range byProvider {
		providers = append(providers, p)
	}
	sort.Strings(providers)

	c := Chart{Title: "Speed Test History", YLabel: "Speed (Mbps)"}
	for _, provider := range providers {
		group := byProvider[provider]

		c.Series = append(c.Series, Series{
			Name:     provider + " Download",
			Provider: provider,
			Metric:   Download,
			Points:   validPoints(group, func(s models.SpeedSample) null.Float { return s.DownloadMbps }),
		})

		if hasUpload(group) {
			c.Series = append(c.Series, Series{
				Name:     provider + " Upload",
				Provider: provider,
				Metric:   Upload,
				Dashed:   true,
				Points:   validPoints(group, func(s models.SpeedSample) null.Float { return s.UploadMbps }),
			})
		}
	}
	return c
}

// LatencyBars lists the average response time of every host that has one
func LatencyBars(hosts []models.PingHostAggregate) []Bar {
	bars := make([]Bar, 0, len(hosts))
	for _, h := range hosts {
		if !h.AvgResponseTime.Valid {
			continue
		}
		bars = append(bars, Bar{Label: h.Host, Value: h.AvgResponseTime.Float64, Grade: h.Grade()})
	}
	return bars
}

func hasUpload(samples []models.SpeedSample) bool {
	for _, s := range samples {
		if s.UploadMbps.Valid {
			return true
		}
	}
	return false
}

func validPoints(samples []models.SpeedSample, value func(models.SpeedSample) null.Float) []Point {
	points := make([]Point, 0, len(samples))
	for _, s := range samples {
		v := value(s)
		if !v.Valid {
			continue
		}
		points = append(points, Point{X: s.Timestamp, Y: v.Float64, Label: s.Provider})
	}
	sortPoints(points)
	return points
}

func sortPoints(points []Point) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].X.Before(points[j].X)
	})
}
