package overlay

import (
	"fmt"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/gardar/ocrtable/pkg/layout"
)

// drawRows outlines every fragment, coloured by whether its row was kept
func drawRows(pdf *fpdf.Fpdf, result *layout.Result, name string) {
	layer := pdf.AddLayer(name, true)
	pdf.BeginLayer(layer)
	defer pdf.EndLayer()

	pdf.SetLineWidth(1)
	pdf.SetFont(DefaultFont.Name, "", 8)
	for _, row := range result.Rows {
		if row.Valid {
			pdf.SetDrawColor(0, 160, 0)
			pdf.SetTextColor(0, 160, 0)
		} else {
			pdf.SetDrawColor(220, 0, 0)
			pdf.SetTextColor(220, 0, 0)
		}
		for _, f := range row.Values {
			pdf.Rect(minX(f), f.Top(), width(f), f.Bottom()-f.Top(), "D")
		}
		if len(row.Values) > 0 {
			pdf.Text(2, row.Values[0].YMid, fmt.Sprintf("%d", row.Number))
		}
	}
}

// drawColumns draws the left and right rule of every column interval
func drawColumns(pdf *fpdf.Fpdf, columns layout.Columns, height float64, name string) {
	if len(columns) == 0 {
		return
	}
	layer := pdf.AddLayer(name, true)
	pdf.BeginLayer(layer)
	defer pdf.EndLayer()

	pdf.SetDrawColor(0, 0, 230)
	pdf.SetTextColor(0, 0, 230)
	pdf.SetLineWidth(0.5)
	pdf.SetFont(DefaultFont.Name, "", 8)
	for _, c := range columns {
		pdf.Line(c.LeftX, 0, c.LeftX, height)
		pdf.Line(c.RightX, 0, c.RightX, height)
		pdf.Text((c.LeftX+c.RightX)/2, 10, fmt.Sprintf("%d", c.Number))
	}
}

// drawTextLayer draws the OCR text onto a layer in a pdf page
func drawTextLayer(pdf *fpdf.Fpdf, rows []*layout.Row, opts Options, name string) error {
	layer := pdf.AddLayer(name, true)
	pdf.BeginLayer(layer)
	pdf.SetFont(opts.Font.Name, opts.Font.Style, opts.Font.Size)

	if opts.ShowText {
		pdf.SetTextColor(255, 0, 0) // highlight text in red
	} else {
		pdf.SetAlpha(0.0, "Normal") // hide text from normal view
	}

	encodingErrors := 0
	wordCount := 0
	for _, row := range rows {
		for _, f := range row.Values {
			drawWord(pdf, f, opts.Font, &encodingErrors)
			wordCount++
		}
	}

	if !opts.ShowText {
		pdf.SetAlpha(1.0, "Normal")
	}
	pdf.EndLayer()

	// Report encoding errors if more than a threshold
	if wordCount > 0 && encodingErrors > wordCount/10 {
		return fmt.Errorf("character encoding issues in %d of %d words",
			encodingErrors, wordCount)
	}
	return pdf.Error()
}

// drawWord renders a single fragment's text scaled to its box
func drawWord(pdf *fpdf.Fpdf, f *layout.TextFragment, font FontConfig, encodingErrors *int) {
	x, y := minX(f), f.Top()
	wordWidth := width(f)

	// Core fonts are Latin-1 only
	latin1, err := charmap.ISO8859_1.NewEncoder().String(f.Text)
	if err != nil {
		*encodingErrors++
		latin1 = f.Text
	}

	strWidth := pdf.GetStringWidth(latin1)
	if strWidth > 0 && wordWidth > 0 {
		pdf.SetFontSize(font.Size * wordWidth / strWidth)
	}

	fontSize, _ := pdf.GetFontSize()
	y += fontSize * font.AscentRatio

	pdf.Text(x, y, latin1)
	pdf.SetFontSize(font.Size)
}

func minX(f *layout.TextFragment) float64 {
	if f.LowerLeft.X < f.UpperRight.X {
		return f.LowerLeft.X
	}
	return f.UpperRight.X
}

func width(f *layout.TextFragment) float64 {
	w := f.UpperRight.X - f.LowerLeft.X
	if w < 0 {
		return -w
	}
	return w
}
