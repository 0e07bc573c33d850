package layout

// Catalog is the read-only entity lookup the validator and assembler need.
// Names passed in are already normalized with NormalizeName.
type Catalog interface {
	// IsCanonical reports whether name is a known, correctly spelled entity
	IsCanonical(name string) bool
	// Correct returns the canonical spelling for a known OCR misread
	Correct(name string) (string, bool)
	// MaxWords is the word count of the longest canonical name
	MaxWords() int
}

// CatalogSource loads the catalog for a jurisdiction display name
type CatalogSource interface {
	Load(jurisdiction string) (Catalog, error)
}

// CatalogSourceFunc adapts a function to CatalogSource
type CatalogSourceFunc func(jurisdiction string) (Catalog, error)

// Load calls f(jurisdiction)
func (f CatalogSourceFunc) Load(jurisdiction string) (Catalog, error) {
	return f(jurisdiction)
}
