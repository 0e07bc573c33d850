package tabulate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/gardar/ocrtable/pkg/gdocai"
	"github.com/gardar/ocrtable/pkg/hocr"
	"github.com/gardar/ocrtable/pkg/layout"
	"github.com/gardar/ocrtable/pkg/tesseract"
)

// Page is one OCR page ready for reconstruction
type Page struct {
	Fragments []layout.TextFragment
	Image     []byte  // Encoded page image, nil when there is none
	PDF       []byte  // Source PDF, drawn under the overlay when there is no image
	Width     float64 // Coordinate space of the fragments, 0 when unknown
	Height    float64
}

// Source reads the fragments of a job's page
type Source interface {
	Page(ctx context.Context, job Job) (*Page, error)
}

// SourceFunc adapts a function to Source
type SourceFunc func(ctx context.Context, job Job) (*Page, error)

// Page calls f(ctx, job)
func (f SourceFunc) Page(ctx context.Context, job Job) (*Page, error) {
	return f(ctx, job)
}

// HOCRSource reads hOCR files
type HOCRSource struct {
	MinConfidence float64
}

// Page parses the job's hOCR file. The page image is the job's image, or
// the image named in the hOCR page title when it exists next to the file.
func (s HOCRSource) Page(ctx context.Context, job Job) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := hocr.ParseFile(job.Input)
	if err != nil {
		return nil, err
	}
	hp, ok := doc.Page(job.PageIndex())
	if !ok {
		return nil, fmt.Errorf("page %d out of range, %s has %d pages", job.PageIndex()+1, job.Input, len(doc.Pages))
	}

	page := &Page{
		Fragments: hp.Fragments(s.MinConfidence),
		Width:     hp.BBox.X2,
		Height:    hp.BBox.Y2,
	}

	imagePath := job.Image
	if imagePath == "" && hp.ImageName != "" {
		candidate := hp.ImageName
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(filepath.Dir(job.Input), candidate)
		}
		if _, err := os.Stat(candidate); err == nil {
			imagePath = candidate
		}
	}
	if page.Image, err = readImage(imagePath); err != nil {
		return nil, err
	}
	return page, nil
}

// DocumentAIJSONSource reads saved Document AI responses
type DocumentAIJSONSource struct{}

// Page loads the saved response and converts the requested page
func (DocumentAIJSONSource) Page(ctx context.Context, job Job) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := gdocai.LoadDocumentJSON(job.Input)
	if err != nil {
		return nil, err
	}
	return documentPage(doc, job)
}

// DocumentAISource sends the input file to Document AI
type DocumentAISource struct {
	Config *gdocai.Config
}

// Page processes the job's input file and converts the requested page. The
// response is saved first when the job asks for it, so a failed conversion
// can be replayed from disk.
func (s DocumentAISource) Page(ctx context.Context, job Job) (*Page, error) {
	content, err := os.ReadFile(job.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	mimeType := gdocai.MimeType(job.Input, content)

	doc, err := gdocai.ProcessDocument(ctx, content, mimeType, s.Config)
	if err != nil {
		return nil, err
	}
	if job.SaveResponse != "" {
		if err := gdocai.SaveDocumentJSON(doc, job.SaveResponse); err != nil {
			return nil, err
		}
	}

	page, err := documentPage(doc, job)
	if err != nil {
		return nil, err
	}
	switch {
	case mimeType == "application/pdf":
		page.PDF = content
	case page.Image == nil:
		page.Image = content
	}
	return page, nil
}

// TesseractSource runs Tesseract on the job's input image
type TesseractSource struct {
	Engine *tesseract.Engine
}

// Page recognizes the input image, which is also the page image
func (s TesseractSource) Page(ctx context.Context, job Job) (*Page, error) {
	data, err := os.ReadFile(job.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	fragments, err := s.Engine.FragmentsFromImage(ctx, data)
	if err != nil {
		return nil, err
	}
	return &Page{Fragments: fragments, Image: data}, nil
}

func documentPage(doc *documentaipb.Document, job Job) (*Page, error) {
	i := job.PageIndex()
	fragments, err := gdocai.PageFragments(doc, i)
	if err != nil {
		return nil, err
	}

	page := &Page{Fragments: fragments}
	if dim := doc.Pages[i].GetDimension(); dim != nil {
		page.Width = float64(dim.GetWidth())
		page.Height = float64(dim.GetHeight())
	}

	if job.Image != "" {
		page.Image, err = readImage(job.Image)
		return page, err
	}
	if content, _, err := gdocai.PageImage(doc, i); err == nil {
		page.Image = content
	}
	return page, nil
}

func readImage(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page image: %w", err)
	}
	return data, nil
}
