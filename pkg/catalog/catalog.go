// Package catalog loads the reference tables that say which entity names
// exist for a jurisdiction and how OCR commonly misreads them.
//
// Two kinds of CSV file are read from a file system:
//
//   - state_codes.csv maps a jurisdiction display name to its short code
//     ("West Bengal,WB").
//   - <code>_districts.csv maps a raw spelling to its canonical name
//     ("Bangalore Urban,Bengaluru Urban"). Canonical names should also be
//     listed mapping to themselves.
//
// Keys are normalized the same way fragment text is before a lookup, so a
// table written in any case matches OCR output in any case.
package catalog

import (
	"sort"
	"strings"

	"github.com/gardar/ocrtable/pkg/layout"
)

// Catalog is the entity lookup for one jurisdiction. It is read-only after
// loading and safe for concurrent use.
type Catalog struct {
	jurisdiction string
	code         string
	canonical    map[string]struct{}
	misreads     map[string]string
	maxWords     int
}

var _ layout.Catalog = (*Catalog)(nil)

func newCatalog(jurisdiction, code string) *Catalog {
	return &Catalog{
		jurisdiction: jurisdiction,
		code:         code,
		canonical:    make(map[string]struct{}),
		misreads:     make(map[string]string),
	}
}

// add records one table entry. Both names are normalized before storing.
func (c *Catalog) add(raw, canonical string) {
	raw = layout.NormalizeName(raw)
	canonical = layout.NormalizeName(canonical)
	if raw == "" || canonical == "" {
		return
	}

	c.canonical[canonical] = struct{}{}
	if raw != canonical {
		c.misreads[raw] = canonical
	}
	if n := len(strings.Fields(canonical)); n > c.maxWords {
		c.maxWords = n
	}
	if n := len(strings.Fields(raw)); n > c.maxWords {
		c.maxWords = n
	}
}

// Jurisdiction returns the display name the catalog was loaded for
func (c *Catalog) Jurisdiction() string {
	return c.jurisdiction
}

// Code returns the lowercase jurisdiction code, e.g. "wb"
func (c *Catalog) Code() string {
	return c.code
}

// IsCanonical reports whether name is a canonical entity name
func (c *Catalog) IsCanonical(name string) bool {
	_, ok := c.canonical[name]
	return ok
}

// Correct returns the canonical name for a known misread
func (c *Catalog) Correct(name string) (string, bool) {
	canonical, ok := c.misreads[name]
	return canonical, ok
}

// MaxWords returns the word count of the longest name in the tables,
// counting misread spellings as well
func (c *Catalog) MaxWords() int {
	return c.maxWords
}

// Names returns every canonical name, sorted
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.canonical))
	for name := range c.canonical {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve normalizes name and returns its canonical form, following the
// misread table when needed
func (c *Catalog) Resolve(name string) (string, bool) {
	name = layout.NormalizeName(name)
	if c.IsCanonical(name) {
		return name, true
	}
	if corrected, ok := c.Correct(name); ok {
		return corrected, true
	}
	return "", false
}

// Unmapped returns the names that resolve to no canonical entity, in the
// order given. Duplicates are reported once.
func (c *Catalog) Unmapped(names ...string) []string {
	var unmapped []string
	seen := make(map[string]bool)
	for _, name := range names {
		if _, ok := c.Resolve(name); ok || seen[name] {
			continue
		}
		seen[name] = true
		unmapped = append(unmapped, name)
	}
	return unmapped
}
