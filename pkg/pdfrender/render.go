// Package pdfrender rasterizes PDF pages with PDFium compiled to WebAssembly,
// so ruling lines can be detected on bulletins that arrive as PDFs.
package pdfrender

import (
	"image"
	"image/draw"
	"sync"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"
	"github.com/pkg/errors"
)

// DefaultTimeout is how long a render waits for a free PDFium instance
const DefaultTimeout = 30 * time.Second

// Renderer renders PDF pages. The PDFium runtime is started on first use and
// shared by every render until Close.
type Renderer struct {
	Timeout time.Duration

	once    sync.Once
	mu      sync.Mutex
	pool    pdfium.Pool
	initErr error
}

// New returns a Renderer that starts PDFium lazily
func New() *Renderer {
	return &Renderer{Timeout: DefaultTimeout}
}

func (r *Renderer) instance() (pdfium.Pdfium, error) {
	r.once.Do(func() {
		pool, err := webassembly.Init(webassembly.Config{
			MinIdle:  1,
			MaxIdle:  1,
			MaxTotal: 1,
		})
		if err != nil {
			r.initErr = errors.Wrap(err, "failed to initialise pdfium")
			return
		}
		r.mu.Lock()
		r.pool = pool
		r.mu.Unlock()
	})
	if r.initErr != nil {
		return nil, r.initErr
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	r.mu.Lock()
	pool := r.pool
	r.mu.Unlock()
	if pool == nil {
		return nil, errors.New("renderer is closed")
	}

	instance, err := pool.GetInstance(timeout)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pdfium instance")
	}
	return instance, nil
}

// PageCount returns the number of pages in a PDF
func (r *Renderer) PageCount(pdf []byte) (int, error) {
	instance, err := r.instance()
	if err != nil {
		return 0, err
	}
	defer instance.Close()

	doc, err := instance.OpenDocument(&requests.OpenDocument{File: &pdf})
	if err != nil {
		return 0, errors.Wrap(err, "failed to open PDF document")
	}
	defer instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: doc.Document})

	count, err := instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{Document: doc.Document})
	if err != nil {
		return 0, errors.Wrap(err, "failed to get page count")
	}
	return count.PageCount, nil
}

// RenderPage renders the 0-based page index at exactly width by height
// pixels, so the image shares the coordinate space of OCR results reported
// in those dimensions
func (r *Renderer) RenderPage(pdf []byte, index, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid render size %dx%d", width, height)
	}

	instance, err := r.instance()
	if err != nil {
		return nil, err
	}
	defer instance.Close()

	doc, err := instance.OpenDocument(&requests.OpenDocument{File: &pdf})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PDF document")
	}
	defer instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: doc.Document})

	render, err := instance.RenderPageInPixels(&requests.RenderPageInPixels{
		Width:  width,
		Height: height,
		Page: requests.Page{
			ByIndex: &requests.PageByIndex{
				Document: doc.Document,
				Index:    index,
			},
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to render page %d", index+1)
	}

	// The rendered pixels belong to the instance; copy them out
	src := render.Result.Image
	img := image.NewRGBA(src.Bounds())
	draw.Draw(img, img.Bounds(), src, src.Bounds().Min, draw.Src)
	return img, nil
}

// Close stops the PDFium runtime
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pool == nil {
		return nil
	}
	err := r.pool.Close()
	r.pool = nil
	return err
}
