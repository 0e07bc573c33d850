package tabulate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/gardar/ocrtable/internal/logging"
	"github.com/gardar/ocrtable/pkg/catalog"
	"github.com/gardar/ocrtable/pkg/config"
	"github.com/gardar/ocrtable/pkg/jurisdiction"
	"github.com/gardar/ocrtable/pkg/layout"
	"github.com/gardar/ocrtable/pkg/overlay"
	"github.com/gardar/ocrtable/pkg/pdfrender"
	"github.com/gardar/ocrtable/pkg/ruling"
	"github.com/gardar/ocrtable/pkg/tesseract"
)

// ColumnDetector finds column boundaries in a page image. It returns an
// error wrapping layout.ErrGeometryUnavailable when the page has no rules.
type ColumnDetector interface {
	Detect(img image.Image) (layout.Columns, error)
}

// PageRasterizer renders a PDF page at an exact pixel size
type PageRasterizer interface {
	RenderPage(pdf []byte, index, width, height int) (image.Image, error)
}

// Catalogs loads entity catalogs and maps display names to codes
type Catalogs interface {
	layout.CatalogSource
	Code(jurisdiction string) (string, error)
}

// Runner executes jobs. A Runner holds no per-job state and may run jobs
// concurrently.
type Runner struct {
	Config      *config.Config
	Catalogs    Catalogs
	Sources     map[SourceKind]Source
	NewDetector func(ruling.Settings) ColumnDetector
	Rasterizer  PageRasterizer // Renders PDF pages that came without an image
	Logger      *logging.Logger
}

// NewRunner wires the reference tables, every fragment source and the
// ruling line detector from cfg
func NewRunner(cfg *config.Config, logger *logging.Logger) *Runner {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.NewLogger("tabulate")
	}

	tables := catalog.Default()
	if cfg.ReferenceDir != "" {
		tables = catalog.Open(cfg.ReferenceDir)
	}

	engine := tesseract.New(tesseract.Config{
		Languages:     cfg.Tesseract.Languages,
		MinConfidence: cfg.Tesseract.MinConfidence,
	})

	return &Runner{
		Config:   cfg,
		Catalogs: tables,
		Sources: map[SourceKind]Source{
			SourceDocumentAI:     DocumentAISource{Config: &cfg.DocumentAI},
			SourceDocumentAIJSON: DocumentAIJSONSource{},
			SourceHOCR:           HOCRSource{MinConfidence: cfg.Tesseract.MinConfidence},
			SourceTesseract:      TesseractSource{Engine: engine},
		},
		NewDetector: func(s ruling.Settings) ColumnDetector {
			return ruling.NewDetector(s)
		},
		Rasterizer: pdfrender.New(),
		Logger:     logger,
	}
}

// Close releases the rasterizer
func (r *Runner) Close() error {
	if c, ok := r.Rasterizer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Run reconstructs the job's page and writes every output the job names.
// Configuration errors are returned as *layout.ConfigurationError. Dropped
// rows and unparsable lines are logged and returned as warnings.
func (r *Runner) Run(ctx context.Context, job Job) (*Output, error) {
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job: %w", err)
	}
	log := r.logger()

	src, ok := r.Sources[job.Source]
	if !ok || src == nil {
		return nil, fmt.Errorf("no source configured for %q", job.Source)
	}

	page, err := src.Page(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("failed to read fragments: %w", err)
	}
	log.Debug("fragments read", "job", job.ID, "source", job.Source, "fragments", len(page.Fragments))

	geometry := r.config().For(job.Jurisdiction)
	columns := r.columns(job, page, geometry)

	rec := layout.NewReconstructor(layout.Options{
		Clusterer: geometry.Clusterer(),
		Separator: r.separator(),
	})
	var catalogs layout.CatalogSource
	if r.Catalogs != nil {
		catalogs = r.Catalogs
	}
	result, err := rec.Reconstruct(catalogs, job.Jurisdiction, page.Fragments, columns)
	if err != nil {
		return nil, err
	}
	for _, w := range result.Warnings {
		log.Debug("row dropped", "job", job.ID, "row", w.Row, "reason", w.Reason, "text", w.Text)
	}

	out := &Output{
		Job:      job,
		Lines:    Window(result.Lines, job.StartAt, job.EndAt),
		Warnings: append([]layout.MalformedInputWarning(nil), result.Warnings...),
		Geometry: result.GeometryUsed(),
		Rows:     len(result.Rows),
		Dropped:  len(result.Rows) - len(result.ValidRows),
		Result:   result,
	}
	if len(out.Lines) < len(result.Lines) {
		log.Debug("line window applied", "job", job.ID, "start", job.StartAt, "end", job.EndAt,
			"kept", len(out.Lines), "of", len(result.Lines))
	}

	records, warnings := r.records(job, out.Lines)
	for _, w := range warnings {
		log.Warn("line not parsed", "job", job.ID, "reason", w.Reason, "line", w.Text)
	}
	out.Records = records
	out.Warnings = append(out.Warnings, warnings...)

	if err := r.write(job, page, out); err != nil {
		return nil, err
	}

	log.Info("job complete", "job", job.ID, "jurisdiction", job.Jurisdiction,
		"lines", len(out.Lines), "records", len(out.Records), "dropped", out.Dropped, "geometry", out.Geometry)
	return out, nil
}

// columns looks for ruling lines when the jurisdiction enables it. Every
// failure falls back to the text heuristic.
func (r *Runner) columns(job Job, page *Page, geometry config.Geometry) layout.Columns {
	log := r.logger()
	if !geometry.DetectLines() || r.NewDetector == nil {
		log.Debug("line detection disabled", "job", job.ID, "jurisdiction", job.Jurisdiction)
		return nil
	}

	img := r.pageImage(job, page)
	if img == nil {
		return nil
	}

	columns, err := r.NewDetector(geometry.Ruling()).Detect(img)
	switch {
	case errors.Is(err, layout.ErrGeometryUnavailable):
		log.Info("no ruling lines, using text heuristic", "job", job.ID)
		return nil
	case err != nil:
		log.Warn("line detection failed, using text heuristic", "job", job.ID, "error", err)
		return nil
	}
	log.Debug("columns detected", "job", job.ID, "columns", len(columns))
	return columns
}

// pageImage decodes the page image. A PDF page without one is rendered at
// the page's coordinate size, and the rendering is kept on the page for the
// overlay.
func (r *Runner) pageImage(job Job, page *Page) image.Image {
	log := r.logger()

	if len(page.Image) > 0 {
		img, _, err := ruling.Decode(bytes.NewReader(page.Image))
		if err != nil {
			log.Warn("page image unreadable, using text heuristic", "job", job.ID, "error", err)
			return nil
		}
		return img
	}

	if len(page.PDF) == 0 || r.Rasterizer == nil || page.Width <= 0 || page.Height <= 0 {
		log.Info("no page image, using text heuristic", "job", job.ID)
		return nil
	}

	img, err := r.Rasterizer.RenderPage(page.PDF, job.PageIndex(), int(page.Width), int(page.Height))
	if err != nil {
		log.Warn("failed to render PDF page, using text heuristic", "job", job.ID, "error", err)
		return nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err == nil {
		page.Image = buf.Bytes()
	}
	return img
}

// records parses lines when the jurisdiction has a table parser
func (r *Runner) records(job Job, lines []string) ([]jurisdiction.Record, []layout.MalformedInputWarning) {
	log := r.logger()
	if r.Catalogs == nil {
		return nil, nil
	}
	code, err := r.Catalogs.Code(job.Jurisdiction)
	if err != nil {
		log.Debug("no jurisdiction code", "job", job.ID, "error", err)
		return nil, nil
	}
	jc, err := jurisdiction.ParseCode(code)
	if err != nil {
		log.Debug("no table parser", "job", job.ID, "code", code)
		return nil, nil
	}
	if r.separator() != "," {
		log.Warn("records need comma separated lines", "job", job.ID, "separator", r.separator())
		return nil, nil
	}
	parser, err := jc.Parser()
	if err != nil {
		return nil, nil
	}
	return jurisdiction.ParseLines(parser, lines)
}

func (r *Runner) write(job Job, page *Page, out *Output) error {
	if job.Output != "" {
		if err := WriteLinesFile(job.Output, out.Lines); err != nil {
			return err
		}
	}
	if job.Records != "" {
		if err := WriteRecordsFile(job.Records, out.Records); err != nil {
			return err
		}
	}
	if job.Overlay != "" {
		err := overlay.WriteFile(job.Overlay, []overlay.Page{{
			Image:   page.Image,
			PDF:     page.PDF,
			PDFPage: job.PageIndex() + 1,
			Width:   page.Width,
			Height:  page.Height,
			Result:  out.Result,
		}}, overlay.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to write overlay: %w", err)
		}
	}
	return nil
}

func (r *Runner) config() *config.Config {
	if r.Config == nil {
		return config.Default()
	}
	return r.Config
}

func (r *Runner) separator() string {
	if s := r.config().Separator; s != "" {
		return s
	}
	return ","
}

func (r *Runner) logger() *logging.Logger {
	if r.Logger == nil {
		return logging.Discard()
	}
	return r.Logger
}
