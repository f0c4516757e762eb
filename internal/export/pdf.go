package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"netdash/internal/charts"
)

// renderPDF writes an A4 landscape document with the text panels followed by the charts
func renderPDF(w io.Writer, title, subtitle string, panels []Panel, theme Literal, capturedAt time.Time) error {
	pdf, err := buildPDF(title, subtitle, panels, theme, capturedAt)
	if err != nil {
		return err
	}
	return pdf.Output(w)
}

func buildPDF(title, subtitle string, panels []Panel, theme Literal, capturedAt time.Time) (*fpdf.Fpdf, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreator(title, true)
	pdf.SetCreationDate(capturedAt)

	// every page, including automatic breaks, starts on the theme background
	bg := theme.Background
	pdf.SetHeaderFunc(func() {
		w, h := pdf.GetPageSize()
		pdf.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
		pdf.Rect(0, 0, w, h, "F")
	})
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	contentW := pageW - left - right

	fg := theme.Foreground
	muted := theme.Muted

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(int(fg.R), int(fg.G), int(fg.B))
	pdf.CellFormat(contentW, 9, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(int(muted.R), int(muted.G), int(muted.B))
	pdf.CellFormat(contentW, 6, subtitle, "", 1, "L", false, 0, "")
	pdf.Ln(3)

	for _, p := range panels {
		switch p.Kind {
		case PanelChart, PanelBars:
			var buf bytes.Buffer
			err := renderPanelChart(&buf, p, theme.Theme, charts.Size{Width: 1200, Height: 400})
			if errors.Is(err, charts.ErrNotEnoughData) {
				pdfText(pdf, contentW, p.Title, []string{"No data available"}, theme)
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("panel %s: %w", p.ID, err)
			}
			pdf.AddPage()
			opts := fpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader(p.ID, opts, &buf)
			pdf.ImageOptions(p.ID, left, pdf.GetY(), contentW, 0, true, opts, 0, "")
		default:
			pdfText(pdf, contentW, p.Title, p.Lines, theme)
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	return pdf, nil
}

func pdfText(pdf *fpdf.Fpdf, width float64, title string, lines []string, theme Literal) {
	fg, muted := theme.Foreground, theme.Muted

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(int(fg.R), int(fg.G), int(fg.B))
	pdf.CellFormat(width, 7, title, "", 1, "L", false, 0, "")

	pdf.SetFont("Courier", "", 8)
	pdf.SetTextColor(int(muted.R), int(muted.G), int(muted.B))
	for _, line := range lines {
		pdf.CellFormat(width, 4.5, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)
}
