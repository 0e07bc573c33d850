package layout

import (
	"sort"
	"strings"
)

// Validator marks rows that contain a recognizable entity name
type Validator struct {
	Catalog Catalog
}

// Validate sets Valid on every row and returns the rows that matched, in
// their original order. A row is valid when any of its fragments, or a run
// of horizontally adjacent fragments joined by spaces, normalizes to a
// canonical name either directly or through the misread table.
func (v Validator) Validate(rows []*Row) ([]*Row, error) {
	if v.Catalog == nil {
		return nil, &ConfigurationError{Resource: "entity catalog", Err: ErrCatalogNotLoaded}
	}

	var valid []*Row
	for _, row := range rows {
		row.Valid = v.containsEntity(row)
		if row.Valid {
			valid = append(valid, row)
		}
	}
	return valid, nil
}

// containsEntity checks single fragments first, then runs of up to MaxWords
// adjacent fragments in reading order
func (v Validator) containsEntity(row *Row) bool {
	for _, f := range row.Values {
		if v.matches(f.Text) {
			return true
		}
	}

	maxWords := v.Catalog.MaxWords()
	if maxWords < 2 || len(row.Values) < 2 {
		return false
	}

	ordered := make([]*TextFragment, len(row.Values))
	copy(ordered, row.Values)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].LowerLeft.X < ordered[j].LowerLeft.X
	})

	for start := range ordered {
		parts := []string{ordered[start].Text}
		for end := start + 1; end < len(ordered) && end-start < maxWords; end++ {
			parts = append(parts, ordered[end].Text)
			if v.matches(strings.Join(parts, " ")) {
				return true
			}
		}
	}
	return false
}

func (v Validator) matches(text string) bool {
	name := NormalizeName(text)
	if name == "" {
		return false
	}
	if v.Catalog.IsCanonical(name) {
		return true
	}
	if corrected, ok := v.Catalog.Correct(name); ok {
		return v.Catalog.IsCanonical(corrected)
	}
	return false
}
