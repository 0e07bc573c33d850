package gdocai

import (
	"fmt"
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/gardar/ocrtable/pkg/layout"
)

// PageFragments returns one fragment per token on the page at index i.
// Pixel vertices are used when present; otherwise normalized vertices are
// scaled by the page dimension. Tokens without text or a usable polygon are
// skipped.
func PageFragments(doc *documentaipb.Document, i int) ([]layout.TextFragment, error) {
	if doc == nil {
		return nil, fmt.Errorf("no document provided")
	}
	if i < 0 || i >= len(doc.Pages) {
		return nil, fmt.Errorf("page %d out of range, document has %d pages", i+1, len(doc.Pages))
	}

	page := doc.Pages[i]
	fragments := make([]layout.TextFragment, 0, len(page.Tokens))
	for _, token := range page.Tokens {
		text := strings.TrimSpace(textFromLayout(token.Layout, doc.Text))
		if text == "" {
			continue
		}
		polygon, ok := tokenPolygon(token.Layout, page.Dimension)
		if !ok {
			continue
		}
		fragments = append(fragments, layout.NewFragment(text, polygon))
	}
	return fragments, nil
}

// tokenPolygon returns the token's four vertices in pixels
func tokenPolygon(l *documentaipb.Document_Page_Layout, dim *documentaipb.Document_Page_Dimension) ([4]layout.Point, bool) {
	var polygon [4]layout.Point
	if l == nil || l.BoundingPoly == nil {
		return polygon, false
	}

	if vertices := l.BoundingPoly.Vertices; len(vertices) >= 4 {
		for i := range polygon {
			polygon[i] = layout.Point{X: float64(vertices[i].X), Y: float64(vertices[i].Y)}
		}
		return polygon, true
	}

	vertices := l.BoundingPoly.NormalizedVertices
	if len(vertices) < 4 || dim == nil || dim.Width == 0 || dim.Height == 0 {
		return polygon, false
	}
	for i := range polygon {
		polygon[i] = layout.Point{
			X: float64(vertices[i].X * dim.Width),
			Y: float64(vertices[i].Y * dim.Height),
		}
	}
	return polygon, true
}
