package catalog

import (
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/gardar/ocrtable/pkg/layout"
)

// StateCodesFile is the name of the jurisdiction code table
const StateCodesFile = "state_codes.csv"

// ErrUnknownJurisdiction is returned when a display name is missing from the
// code table
var ErrUnknownJurisdiction = errors.New("unknown jurisdiction")

//go:embed tables/*.csv
var embedded embed.FS

// Tables loads catalogs from a file system holding the reference CSVs.
// Loaded catalogs are cached; Tables is safe for concurrent use.
type Tables struct {
	fsys fs.FS

	mu    sync.Mutex
	codes map[string]string // lowercase display name -> lowercase code
	names map[string]string // lowercase display name -> display name
	cache map[string]*Catalog
}

var _ layout.CatalogSource = (*Tables)(nil)

// New returns Tables reading from fsys
func New(fsys fs.FS) *Tables {
	return &Tables{
		fsys:  fsys,
		cache: make(map[string]*Catalog),
	}
}

// Open returns Tables reading from a directory on disk
func Open(dir string) *Tables {
	return New(os.DirFS(dir))
}

// Default returns Tables backed by the reference data compiled into the
// binary
func Default() *Tables {
	sub, err := fs.Sub(embedded, "tables")
	if err != nil {
		panic(err)
	}
	return New(sub)
}

// Load implements layout.CatalogSource. Errors are *layout.ConfigurationError.
func (t *Tables) Load(jurisdiction string) (layout.Catalog, error) {
	c, err := t.Catalog(jurisdiction)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Catalog returns the catalog for a jurisdiction display name, matched
// case-insensitively
func (t *Tables) Catalog(jurisdiction string) (*Catalog, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.loadCodes(); err != nil {
		return nil, &layout.ConfigurationError{Jurisdiction: jurisdiction, Resource: StateCodesFile, Err: err}
	}

	key := strings.ToLower(strings.TrimSpace(jurisdiction))
	code, ok := t.codes[key]
	if !ok {
		return nil, &layout.ConfigurationError{Jurisdiction: jurisdiction, Resource: StateCodesFile, Err: ErrUnknownJurisdiction}
	}
	if c, ok := t.cache[code]; ok {
		return c, nil
	}

	file := DistrictsFile(code)
	c := newCatalog(t.names[key], code)
	err := readPairs(t.fsys, file, func(raw, canonical string) {
		c.add(raw, canonical)
	})
	if err != nil {
		return nil, &layout.ConfigurationError{Jurisdiction: jurisdiction, Resource: file, Err: err}
	}
	if len(c.canonical) == 0 {
		return nil, &layout.ConfigurationError{Jurisdiction: jurisdiction, Resource: file, Err: fmt.Errorf("no entity names in %s", file)}
	}

	t.cache[code] = c
	return c, nil
}

// Jurisdictions returns the display names listed in the code table, sorted
func (t *Tables) Jurisdictions() ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.loadCodes(); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(t.names))
	for _, name := range t.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Code returns the lowercase code for a jurisdiction display name
func (t *Tables) Code(jurisdiction string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.loadCodes(); err != nil {
		return "", err
	}
	code, ok := t.codes[strings.ToLower(strings.TrimSpace(jurisdiction))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownJurisdiction, jurisdiction)
	}
	return code, nil
}

// HasTable reports whether the districts table for a jurisdiction exists.
// Jurisdictions in the code table without one fail to load.
func (t *Tables) HasTable(jurisdiction string) bool {
	code, err := t.Code(jurisdiction)
	if err != nil {
		return false
	}
	_, err = fs.Stat(t.fsys, DistrictsFile(code))
	return err == nil
}

// DistrictsFile returns the table name for a jurisdiction code
func DistrictsFile(code string) string {
	return strings.ToLower(code) + "_districts.csv"
}

// loadCodes reads the code table once. The caller holds t.mu.
func (t *Tables) loadCodes() error {
	if t.codes != nil {
		return nil
	}

	codes := make(map[string]string)
	names := make(map[string]string)
	err := readPairs(t.fsys, StateCodesFile, func(name, code string) {
		key := strings.ToLower(name)
		codes[key] = strings.ToLower(code)
		names[key] = name
	})
	if err != nil {
		return err
	}

	t.codes = codes
	t.names = names
	return nil
}

// readPairs calls fn with the first two trimmed fields of every non-empty
// record in a CSV file
func readPairs(fsys fs.FS, name string, fn func(first, second string)) error {
	f, err := fsys.Open(name)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comment = '#'

	for {
		record, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) < 2 {
			line, _ := r.FieldPos(0)
			return fmt.Errorf("%s line %d: expected 2 fields, got %d", name, line, len(record))
		}
		fn(strings.TrimSpace(record[0]), strings.TrimSpace(record[1]))
	}
}
