package export

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"netdash/internal/charts"
)

// Theme is the palette a view is styled with. Colours may be adaptive, in
// which case the terminal background decides which variant is shown on
// screen. Rasterising needs fixed colours, so Normalize picks one variant
// explicitly using Dark.
type Theme struct {
	Dark       bool
	Background lipgloss.TerminalColor
	Foreground lipgloss.TerminalColor
	Muted      lipgloss.TerminalColor
	Grid       lipgloss.TerminalColor
	Palette    []lipgloss.TerminalColor
}

// DefaultTheme mirrors the dashboard's terminal styles
var DefaultTheme = Theme{
	Background: lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#111827"},
	Foreground: lipgloss.AdaptiveColor{Light: "#111827", Dark: "#f9fafb"},
	Muted:      lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"},
	Grid:       lipgloss.AdaptiveColor{Light: "#e5e7eb", Dark: "#374151"},
	Palette: []lipgloss.TerminalColor{
		lipgloss.Color("#3b82f6"),
		lipgloss.Color("#10b981"),
		lipgloss.Color("#f59e0b"),
		lipgloss.Color("#ef4444"),
		lipgloss.Color("#8b5cf6"),
	},
}

// Literal is a theme resolved to fixed colours
type Literal struct {
	charts.Theme
	Muted drawing.Color
}

// Normalize resolves every colour in the theme to a literal RGB value
func (t Theme) Normalize() Literal {
	bg := literal(t.Background, t.Dark, drawing.ColorWhite)
	fg := literal(t.Foreground, t.Dark, drawing.ColorBlack)

	lit := Literal{
		Theme: charts.Theme{
			Background: bg,
			Foreground: fg,
			Grid:       literal(t.Grid, t.Dark, charts.DefaultTheme.Grid),
		},
		Muted: literal(t.Muted, t.Dark, fg),
	}
	for i, c := range t.Palette {
		lit.Palette = append(lit.Palette, literal(c, t.Dark, charts.DefaultTheme.Color(i)))
	}
	if len(lit.Palette) == 0 {
		lit.Palette = charts.DefaultTheme.Palette
	}
	return lit
}

func literal(c lipgloss.TerminalColor, dark bool, fallback drawing.Color) drawing.Color {
	switch v := c.(type) {
	case lipgloss.Color:
		return parseColor(string(v), fallback)
	case lipgloss.ANSIColor:
		return ansiColor(int(v), fallback)
	case lipgloss.AdaptiveColor:
		if dark {
			return parseColor(v.Dark, fallback)
		}
		return parseColor(v.Light, fallback)
	case lipgloss.CompleteColor:
		return completeColor(v, fallback)
	case lipgloss.CompleteAdaptiveColor:
		if dark {
			return completeColor(v.Dark, fallback)
		}
		return completeColor(v.Light, fallback)
	}
	return fallback
}

func completeColor(c lipgloss.CompleteColor, fallback drawing.Color) drawing.Color {
	if c.TrueColor != "" {
		return parseColor(c.TrueColor, fallback)
	}
	if c.ANSI256 != "" {
		return parseColor(c.ANSI256, fallback)
	}
	return parseColor(c.ANSI, fallback)
}

// parseColor accepts "#rgb", "#rrggbb" or an ANSI colour number
func parseColor(s string, fallback drawing.Color) drawing.Color {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") && (len(s) == 4 || len(s) == 7) {
		return drawing.ColorFromHex(s)
	}
	if n, err := strconv.Atoi(s); err == nil {
		return ansiColor(n, fallback)
	}
	return fallback
}

// xterm defaults for the 16 basic colours
var ansi16 = [16]string{
	"000000", "800000", "008000", "808000", "000080", "800080", "008080", "c0c0c0",
	"808080", "ff0000", "00ff00", "ffff00", "0000ff", "ff00ff", "00ffff", "ffffff",
}

func ansiColor(n int, fallback drawing.Color) drawing.Color {
	switch {
	case n >= 0 && n < 16:
		return drawing.ColorFromHex(ansi16[n])
	case n >= 16 && n < 232:
		// 6x6x6 colour cube
		n -= 16
		levels := [6]uint8{0, 95, 135, 175, 215, 255}
		return drawing.Color{R: levels[n/36], G: levels[(n/6)%6], B: levels[n%6], A: 255}
	case n >= 232 && n < 256:
		v := uint8(8 + (n-232)*10)
		return drawing.Color{R: v, G: v, B: v, A: 255}
	}
	return fallback
}
