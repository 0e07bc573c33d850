// Package overlay renders a debug PDF of a reconstruction: the source page
// with every fragment, row and column the engine saw drawn on top of it.
//
// Each page gets three optional content groups (layers) that can be toggled
// in compatible PDF readers:
//
// - Rows: fragment boxes, green for rows that produced a line and red for
// dropped rows, with the row number in the margin
// - Columns: the detected column intervals
// - Text: the recognized text positioned over each fragment, hidden unless
// ShowText is set, which also makes the PDF searchable
//
// Main Functions:
//
// - Render: builds the PDF from page images or pages of an existing PDF
// - Layers: lists the layer names found in a PDF
package overlay

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strings"

	"codeberg.org/go-pdf/fpdf"

	"github.com/gardar/ocrtable/pkg/layout"
	"github.com/gardar/ocrtable/pkg/ruling"
)

// Options holds user options for the overlay
type Options struct {
	LayerName string     // Base name of the layers; the layer kind and page number are appended
	ShowText  bool       // Draw the text layer visibly in red instead of hidden
	Font      FontConfig // Font for the text layer
}

// DefaultOptions returns options with sensible defaults
func DefaultOptions() Options {
	return Options{
		LayerName: "ocrtable",
		Font:      DefaultFont,
	}
}

// FontConfig contains font settings for text rendering
type FontConfig struct {
	Name        string  // Font name (e.g., "Helvetica")
	Style       string  // Font style ("", "B", "I", "BI")
	Size        float64 // Default font size
	AscentRatio float64 // Vertical positioning ratio
}

// DefaultFont sets the default font to Helvetica which is tried and tested for the OCR layer
var DefaultFont = FontConfig{
	Name:        "Helvetica",
	Style:       "",
	Size:        10,
	AscentRatio: 0.718,
}

// Page is one source page and what was reconstructed from it. The background
// is either an encoded image or a page of an existing PDF.
type Page struct {
	Image   []byte         // Encoded page image
	PDF     []byte         // Existing PDF to import the background from
	PDFPage int            // 1-based page of PDF
	Width   float64        // Coordinate space width; image width when zero
	Height  float64        // Coordinate space height; image height when zero
	Result  *layout.Result // Rows and columns to draw
}

// Render builds the overlay PDF
func Render(pages []Page, opts Options) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages to render")
	}
	if opts.LayerName == "" {
		opts.LayerName = DefaultOptions().LayerName
	}
	if opts.Font.Name == "" {
		opts.Font = DefaultFont
	}

	pdf := fpdf.New("P", "pt", "", "")
	for i := range pages {
		if err := renderPage(pdf, &pages[i], i+1, opts); err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile renders the overlay to path
func WriteFile(path string, pages []Page, opts Options) error {
	data, err := Render(pages, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func renderPage(pdf *fpdf.Fpdf, page *Page, pageNum int, opts Options) error {
	switch {
	case len(page.Image) > 0:
		if err := addImagePage(pdf, page, pageNum); err != nil {
			return err
		}
	case len(page.PDF) > 0:
		if page.Width == 0 || page.Height == 0 {
			return fmt.Errorf("page size is required with a PDF background")
		}
		importPDFPage(pdf, page)
	default:
		if page.Width == 0 || page.Height == 0 {
			return fmt.Errorf("no background and no page size")
		}
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: page.Width, Ht: page.Height})
	}

	if page.Result == nil {
		return nil
	}
	drawRows(pdf, page.Result, layerName(opts.LayerName, "Rows", pageNum))
	drawColumns(pdf, page.Result.Columns, page.Height, layerName(opts.LayerName, "Columns", pageNum))
	return drawTextLayer(pdf, page.Result.Rows, opts, layerName(opts.LayerName, "Text", pageNum))
}

func addImagePage(pdf *fpdf.Fpdf, page *Page, pageNum int) error {
	data := page.Image
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode image config: %w", err)
	}

	imageType := strings.ToUpper(format)
	if imageType == "JPEG" {
		imageType = "JPG"
	}
	if imageType != "JPG" && imageType != "PNG" && imageType != "GIF" {
		// fpdf only embeds JPEG, PNG and GIF
		data, err = reencodePNG(data)
		if err != nil {
			return err
		}
		imageType = "PNG"
	}

	if page.Width == 0 || page.Height == 0 {
		page.Width, page.Height = float64(cfg.Width), float64(cfg.Height)
	}
	pdf.AddPageFormat("P", fpdf.SizeType{Wd: page.Width, Ht: page.Height})

	name := fmt.Sprintf("img%d", pageNum)
	opts := fpdf.ImageOptions{ReadDpi: false, ImageType: imageType}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	pdf.ImageOptions(name, 0, 0, page.Width, page.Height, false, opts, 0, "")
	return pdf.Error()
}

func reencodePNG(data []byte) ([]byte, error) {
	img, _, err := ruling.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode page image: %w", err)
	}
	return buf.Bytes(), nil
}

func layerName(base, kind string, pageNum int) string {
	return fmt.Sprintf("%s %s Page %d", base, kind, pageNum)
}

// Layers lists the layer names in a PDF
func Layers(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return detectPDFLayers(data)
}
