package charts

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNotEnoughData is returned when a chart has fewer than two distinct points in time
var ErrNotEnoughData = errors.New("not enough data to draw chart")

// Theme holds the literal colours a chart is drawn with
type Theme struct {
	Background drawing.Color
	Foreground drawing.Color
	Grid       drawing.Color
	Palette    []drawing.Color
}

// DefaultTheme is a light theme
var DefaultTheme = Theme{
	Background: drawing.ColorWhite,
	Foreground: drawing.ColorBlack,
	Grid:       drawing.Color{R: 200, G: 200, B: 200, A: 255},
	Palette: []drawing.Color{
		drawing.ColorFromHex("3b82f6"),
		drawing.ColorFromHex("10b981"),
		drawing.ColorFromHex("f59e0b"),
		drawing.ColorFromHex("ef4444"),
		drawing.ColorFromHex("8b5cf6"),
	},
}

// Color returns the palette entry for index i, wrapping around
func (t Theme) Color(i int) drawing.Color {
	if len(t.Palette) == 0 {
		return chart.GetDefaultColor(i)
	}
	return t.Palette[i%len(t.Palette)]
}

// Size is the rendered image size in pixels
type Size struct {
	Width  int
	Height int
}

// DefaultSize matches the report charts
var DefaultSize = Size{Width: 1200, Height: 400}

func (s Size) orDefault() Size {
	if s.Width <= 0 || s.Height <= 0 {
		return DefaultSize
	}
	return s
}

// RenderPNG draws c as a time series chart
func RenderPNG(w io.Writer, c Chart, size Size, theme Theme) error {
	if !hasTimeSpan(c) {
		return fmt.Errorf("%s: %w", c.Title, ErrNotEnoughData)
	}
	size = size.orDefault()

	// Providers keep their colour across download and upload
	colorIndex := make(map[string]int)
	var series []chart.Series
	for _, s := range c.Series {
		if len(s.Points) == 0 {
			continue
		}
		key := s.Provider
		if key == "" {
			key = s.Name
		}
		idx, ok := colorIndex[key]
		if !ok {
			idx = len(colorIndex)
			colorIndex[key] = idx
		}

		style := chart.Style{
			StrokeColor: theme.Color(idx),
			StrokeWidth: 2,
		}
		if s.Dashed {
			style.StrokeDashArray = []float64{5, 5}
		}

		ts := chart.TimeSeries{Name: s.Name, Style: style}
		for _, p := range s.Points {
			ts.XValues = append(ts.XValues, p.X)
			ts.YValues = append(ts.YValues, p.Y)
		}
		series = append(series, ts)
	}

	graph := chart.Chart{
		Title:      c.Title,
		TitleStyle: chart.Style{FontSize: 16, FontColor: theme.Foreground},
		Background: chart.Style{
			FillColor: theme.Background,
			Padding: chart.Box{
				Top:    20,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Canvas: chart.Style{FillColor: theme.Background},
		Width:  size.Width,
		Height: size.Height,
		XAxis: chart.XAxis{
			Name: "Time",
			Style: chart.Style{
				StrokeColor: theme.Foreground,
				FontColor:   theme.Foreground,
				FontSize:    10,
			},
			ValueFormatter: timeFormatter(c),
		},
		YAxis: chart.YAxis{
			Name: c.YLabel,
			Style: chart.Style{
				StrokeColor: theme.Foreground,
				FontColor:   theme.Foreground,
				FontSize:    10,
			},
			Range: yRange(c),
			GridMajorStyle: chart.Style{
				StrokeColor: theme.Grid,
				StrokeWidth: 1.0,
			},
		},
		Series: series,
	}

	if len(series) > 1 {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}

	return graph.Render(chart.PNG, w)
}

// RenderBarsPNG draws a bar chart, for example latency by host
func RenderBarsPNG(w io.Writer, title string, bars []Bar, size Size, theme Theme) error {
	if len(bars) == 0 {
		return fmt.Errorf("%s: %w", title, ErrNotEnoughData)
	}
	size = size.orDefault()

	values := make([]chart.Value, 0, len(bars))
	maxValue := 0.0
	for i, b := range bars {
		values = append(values, chart.Value{
			Label: b.Label,
			Value: b.Value,
			Style: chart.Style{
				FillColor:   gradeColor(b.Grade, theme, i),
				StrokeColor: gradeColor(b.Grade, theme, i),
			},
		})
		maxValue = math.Max(maxValue, b.Value)
	}
	if maxValue <= 0 {
		maxValue = 1
	}

	graph := chart.BarChart{
		Title:      title,
		TitleStyle: chart.Style{FontSize: 16, FontColor: theme.Foreground},
		Background: chart.Style{
			FillColor: theme.Background,
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Canvas: chart.Style{FillColor: theme.Background},
		Width:  size.Width,
		Height: size.Height,
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: theme.Foreground, FontSize: 10},
			Range: &chart.ContinuousRange{Min: 0, Max: maxValue * 1.1},
		},
		XAxis:    chart.Style{FontColor: theme.Foreground, FontSize: 10},
		Bars:     values,
		BarWidth: 40,
	}

	return graph.Render(chart.PNG, w)
}

func gradeColor(grade string, theme Theme, i int) drawing.Color {
	switch grade {
	case "healthy":
		return drawing.ColorFromHex("10b981")
	case "degraded":
		return drawing.ColorFromHex("f59e0b")
	case "failing":
		return drawing.ColorFromHex("ef4444")
	}
	return theme.Color(i)
}

// hasTimeSpan reports whether the chart has two distinct timestamps, which go-chart needs for an x range
func hasTimeSpan(c Chart) bool {
	var first *Point
	for _, s := range c.Series {
		for i := range s.Points {
			if first == nil {
				first = &s.Points[i]
				continue
			}
			if !s.Points[i].X.Equal(first.X) {
				return true
			}
		}
	}
	return false
}

func yRange(c Chart) chart.Range {
	if c.Y != nil {
		return &chart.ContinuousRange{Min: c.Y.Min, Max: c.Y.Max}
	}

	lo, hi := math.MaxFloat64, -math.MaxFloat64
	for _, s := range c.Series {
		for _, p := range s.Points {
			lo = math.Min(lo, p.Y)
			hi = math.Max(hi, p.Y)
		}
	}
	// A flat line still needs a non-zero range
	if hi-lo == 0 {
		return &chart.ContinuousRange{Min: 0, Max: math.Max(hi*1.1, 1)}
	}
	return nil
}

func timeFormatter(c Chart) chart.ValueFormatter {
	first, last := timeBounds(c)
	if last.Sub(first).Hours() > 48 {
		return chart.TimeDateValueFormatter
	}
	if last.Sub(first).Hours() > 6 {
		return chart.TimeHourValueFormatter
	}
	return chart.TimeMinuteValueFormatter
}

func timeBounds(c Chart) (first, last time.Time) {
	for _, s := range c.Series {
		for _, p := range s.Points {
			if first.IsZero() || p.X.Before(first) {
				first = p.X
			}
			if p.X.After(last) {
				last = p.X
			}
		}
	}
	return first, last
}
