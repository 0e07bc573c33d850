package layout

import "strings"

// mapCatalog is an in-memory Catalog for tests
type mapCatalog struct {
	canonical map[string]bool
	misreads  map[string]string
	maxWords  int
}

func newCatalog(canonical []string, misreads map[string]string) *mapCatalog {
	c := &mapCatalog{canonical: map[string]bool{}, misreads: map[string]string{}}
	for _, name := range canonical {
		c.canonical[name] = true
		if n := len(strings.Fields(name)); n > c.maxWords {
			c.maxWords = n
		}
	}
	for raw, name := range misreads {
		c.misreads[raw] = name
	}
	return c
}

func (c *mapCatalog) IsCanonical(name string) bool { return c.canonical[name] }

func (c *mapCatalog) Correct(name string) (string, bool) {
	v, ok := c.misreads[name]
	return v, ok
}

func (c *mapCatalog) MaxWords() int { return c.maxWords }

// band builds a fragment whose vertical extent is [top, bottom] and whose
// midpoint is set explicitly, the way OCR fixtures are often written
func band(text string, x, top, bottom, mid float64) TextFragment {
	return TextFragment{
		Text:       text,
		LowerLeft:  Point{X: x, Y: top},
		UpperRight: Point{X: x + 10, Y: bottom},
		XMid:       x + 5,
		YMid:       mid,
	}
}

// word builds a box fragment at x with the given width on a row centred on y
func word(text string, x, width, y float64) TextFragment {
	return FragmentFromBox(text, x, y-5, x+width, y+5)
}

func rowOf(fragments ...TextFragment) *Row {
	row := &Row{Number: 1}
	for i := range fragments {
		f := fragments[i]
		row.Values = append(row.Values, &f)
	}
	return row
}
