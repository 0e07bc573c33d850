package layout

import (
	"errors"
	"fmt"
	"strings"
)

// State is a Reconstructor lifecycle stage
type State int

const (
	Uninitialized State = iota
	CatalogLoaded
	RowsClustered
	RowsValidated
	LinesAssembled
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case CatalogLoaded:
		return "catalog-loaded"
	case RowsClustered:
		return "rows-clustered"
	case RowsValidated:
		return "rows-validated"
	case LinesAssembled:
		return "lines-assembled"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Options configures a reconstruction run
type Options struct {
	Clusterer Clusterer
	Separator string // Output field separator, "," when empty
}

// DefaultOptions returns the clustering and output settings used when no
// jurisdiction-specific configuration is given
func DefaultOptions() Options {
	return Options{
		Clusterer: DefaultClusterer(),
		Separator: ",",
	}
}

// Result is the output of a completed reconstruction
type Result struct {
	Jurisdiction string
	Lines        []string                // One line per valid row, top to bottom
	Rows         []*Row                  // Every clustered row
	ValidRows    []*Row                  // Rows that produced a line
	Warnings     []MalformedInputWarning // One per dropped row
	Columns      Columns                 // Geometry used for assembly, if any
}

// GeometryUsed reports whether assembly had column boundaries
func (r *Result) GeometryUsed() bool {
	return len(r.Columns) > 0
}

// Reconstructor runs the stages for a single image. Each stage runs once and
// in order; a failed stage leaves the Reconstructor unusable. Create a new
// one per image.
type Reconstructor struct {
	opts    Options
	state   State
	catalog Catalog
	result  Result
}

// NewReconstructor creates a Reconstructor in the Uninitialized state
func NewReconstructor(opts Options) *Reconstructor {
	return &Reconstructor{opts: opts}
}

// State returns the current lifecycle stage
func (r *Reconstructor) State() State {
	return r.state
}

// LoadCatalog loads the entity catalog for a jurisdiction. Any failure is
// reported as a *ConfigurationError.
func (r *Reconstructor) LoadCatalog(src CatalogSource, jurisdiction string) error {
	if err := r.expect(Uninitialized); err != nil {
		return err
	}
	if src == nil {
		return r.fail(&ConfigurationError{Jurisdiction: jurisdiction, Resource: "catalog source", Err: ErrCatalogNotLoaded})
	}

	cat, err := src.Load(jurisdiction)
	if err != nil {
		var cfgErr *ConfigurationError
		if errors.As(err, &cfgErr) {
			return r.fail(err)
		}
		return r.fail(&ConfigurationError{Jurisdiction: jurisdiction, Err: err})
	}
	if cat == nil {
		return r.fail(&ConfigurationError{Jurisdiction: jurisdiction, Resource: "entity catalog", Err: ErrCatalogNotLoaded})
	}

	r.catalog = cat
	r.result.Jurisdiction = jurisdiction
	r.state = CatalogLoaded
	return nil
}

// Cluster groups the fragments into rows
func (r *Reconstructor) Cluster(fragments []TextFragment) error {
	if err := r.expect(CatalogLoaded); err != nil {
		return err
	}
	r.result.Rows = r.opts.Clusterer.Cluster(fragments)
	r.state = RowsClustered
	return nil
}

// Validate marks the clustered rows and records a warning for every row
// without a catalog match
func (r *Reconstructor) Validate() error {
	if err := r.expect(RowsClustered); err != nil {
		return err
	}

	valid, err := Validator{Catalog: r.catalog}.Validate(r.result.Rows)
	if err != nil {
		return r.fail(err)
	}

	for _, row := range r.result.Rows {
		if row.Valid {
			continue
		}
		r.result.Warnings = append(r.result.Warnings, MalformedInputWarning{
			Row:    row.Number,
			Text:   strings.Join(row.Texts(), " "),
			Reason: "no recognizable entity name",
		})
	}

	r.result.ValidRows = valid
	r.state = RowsValidated
	return nil
}

// Assemble emits one line per valid row. columns may be nil when no ruling
// lines were detected.
func (r *Reconstructor) Assemble(columns Columns) ([]string, error) {
	if err := r.expect(RowsValidated); err != nil {
		return nil, err
	}

	assembler := Assembler{
		Catalog:   r.catalog,
		Columns:   columns,
		Separator: r.opts.Separator,
	}

	lines := make([]string, 0, len(r.result.ValidRows))
	for _, row := range r.result.ValidRows {
		lines = append(lines, assembler.Assemble(row))
	}

	r.result.Columns = columns
	r.result.Lines = lines
	r.state = LinesAssembled
	return lines, nil
}

// Result returns the reconstruction output. It is only complete once the
// Reconstructor reached LinesAssembled.
func (r *Reconstructor) Result() *Result {
	return &r.result
}

// Reconstruct runs every stage in order
func (r *Reconstructor) Reconstruct(src CatalogSource, jurisdiction string, fragments []TextFragment, columns Columns) (*Result, error) {
	if err := r.LoadCatalog(src, jurisdiction); err != nil {
		return nil, err
	}
	if err := r.Cluster(fragments); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if _, err := r.Assemble(columns); err != nil {
		return nil, err
	}
	return r.Result(), nil
}

func (r *Reconstructor) expect(want State) error {
	if r.state != want {
		return fmt.Errorf("%w: in state %s, need %s", ErrInvalidState, r.state, want)
	}
	return nil
}

func (r *Reconstructor) fail(err error) error {
	r.state = Failed
	return err
}
