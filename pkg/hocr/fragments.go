package hocr

import "github.com/gardar/ocrtable/pkg/layout"

// Fragments converts the page's words to layout fragments. Words without
// text or a bounding box, and words below minConfidence, are skipped.
func (p Page) Fragments(minConfidence float64) []layout.TextFragment {
	fragments := make([]layout.TextFragment, 0, len(p.Words))
	for _, w := range p.Words {
		if w.Text == "" || w.BBox.IsZero() || w.Confidence < minConfidence {
			continue
		}
		fragments = append(fragments, layout.FragmentFromBox(w.Text, w.BBox.X1, w.BBox.Y1, w.BBox.X2, w.BBox.Y2))
	}
	return fragments
}

// Page returns the page at index i, or false when there is none
func (d *Document) Page(i int) (Page, bool) {
	if i < 0 || i >= len(d.Pages) {
		return Page{}, false
	}
	return d.Pages[i], true
}
