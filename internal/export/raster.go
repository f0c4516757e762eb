package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"netdash/internal/charts"
)

const (
	pageWidth   = 1200
	margin      = 20
	lineHeight  = 16
	chartHeight = 320
)

// block is a horizontal slice of the composite image
type block struct {
	height int
	draw   func(dst *image.RGBA, top int)
}

// renderPNG composes the panels into one image, top to bottom
func renderPNG(w io.Writer, title, subtitle string, panels []Panel, theme Literal) error {
	blocks := []block{
		textBlock([]string{title, subtitle}, theme.Foreground, theme.Muted),
	}
	for _, p := range panels {
		b, err := panelBlock(p, theme)
		if err != nil {
			return fmt.Errorf("panel %s: %w", p.ID, err)
		}
		blocks = append(blocks, b)
	}

	height := margin
	for _, b := range blocks {
		height += b.height + margin
	}

	img := image.NewRGBA(image.Rect(0, 0, pageWidth, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: theme.Background}, image.Point{}, draw.Src)

	top := margin
	for _, b := range blocks {
		b.draw(img, top)
		top += b.height + margin
	}

	return png.Encode(w, img)
}

func panelBlock(p Panel, theme Literal) (block, error) {
	switch p.Kind {
	case PanelChart, PanelBars:
		img, err := panelImage(p, theme.Theme, charts.Size{Width: pageWidth - 2*margin, Height: chartHeight})
		if errors.Is(err, charts.ErrNotEnoughData) {
			return textBlock([]string{p.Title, "No data available"}, theme.Foreground, theme.Muted), nil
		}
		if err != nil {
			return block{}, err
		}
		return imageBlock(img), nil
	default:
		return textBlock(append([]string{p.Title}, p.Lines...), theme.Foreground, theme.Muted), nil
	}
}

// panelImage renders a chart panel to a decoded PNG
func panelImage(p Panel, theme charts.Theme, size charts.Size) (image.Image, error) {
	var buf bytes.Buffer
	if err := renderPanelChart(&buf, p, theme, size); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

func renderPanelChart(w io.Writer, p Panel, theme charts.Theme, size charts.Size) error {
	if p.Kind == PanelBars {
		return charts.RenderBarsPNG(w, p.Title, p.Bars, size, theme)
	}
	return charts.RenderPNG(w, p.Chart, size, theme)
}

func imageBlock(img image.Image) block {
	b := img.Bounds()
	return block{
		height: b.Dy(),
		draw: func(dst *image.RGBA, top int) {
			r := image.Rect(margin, top, margin+b.Dx(), top+b.Dy())
			draw.Draw(dst, r, img, b.Min, draw.Over)
		},
	}
}

// textBlock draws the first line as a heading and the rest muted
func textBlock(lines []string, heading, body color.Color) block {
	return block{
		height: len(lines) * lineHeight,
		draw: func(dst *image.RGBA, top int) {
			for i, line := range lines {
				c := body
				if i == 0 {
					c = heading
				}
				d := &font.Drawer{
					Dst:  dst,
					Src:  image.NewUniform(c),
					Face: basicfont.Face7x13,
					Dot:  fixed.P(margin, top+(i+1)*lineHeight-3),
				}
				d.DrawString(line)
			}
		},
	}
}
