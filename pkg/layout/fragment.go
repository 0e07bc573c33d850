package layout

import "fmt"

// Point is a pixel coordinate in the source image
type Point struct {
	X float64
	Y float64
}

// TextFragment is one OCR token with its bounding polygon
type TextFragment struct {
	Text       string   // Recognized text, possibly with OCR noise
	Polygon    [4]Point // Bounding quadrilateral, clockwise from the provider's first vertex
	LowerLeft  Point    // Polygon vertex 0
	UpperRight Point    // Polygon vertex 2
	XMid       float64  // Horizontal midpoint of LowerLeft and UpperRight
	YMid       float64  // Vertical midpoint of LowerLeft and UpperRight
	Row        int      // Row number once clustered, 0 before
}

// NewFragment creates a fragment from a provider polygon and derives its
// corners and midpoints. Vertex 0 and vertex 2 are the opposite corners used
// for the vertical extent.
func NewFragment(text string, polygon [4]Point) TextFragment {
	ll := polygon[0]
	ur := polygon[2]
	return TextFragment{
		Text:       text,
		Polygon:    polygon,
		LowerLeft:  ll,
		UpperRight: ur,
		XMid:       (ll.X + ur.X) / 2,
		YMid:       (ll.Y + ur.Y) / 2,
	}
}

// FragmentFromBox creates a fragment from an axis-aligned box, where x1,y1 is
// the top-left corner and x2,y2 the bottom-right corner (hOCR and Tesseract
// convention).
func FragmentFromBox(text string, x1, y1, x2, y2 float64) TextFragment {
	return NewFragment(text, [4]Point{
		{X: x1, Y: y1},
		{X: x2, Y: y1},
		{X: x2, Y: y2},
		{X: x1, Y: y2},
	})
}

// Top returns the smaller of the two corner y values
func (f *TextFragment) Top() float64 {
	if f.LowerLeft.Y < f.UpperRight.Y {
		return f.LowerLeft.Y
	}
	return f.UpperRight.Y
}

// Bottom returns the larger of the two corner y values
func (f *TextFragment) Bottom() float64 {
	if f.LowerLeft.Y > f.UpperRight.Y {
		return f.LowerLeft.Y
	}
	return f.UpperRight.Y
}

func (f *TextFragment) String() string {
	return fmt.Sprintf("%q@(%.0f,%.0f)", f.Text, f.LowerLeft.X, f.YMid)
}

// Row is a group of fragments that share a vertical band in the image
type Row struct {
	Number int             // 1-based, in cluster order
	Values []*TextFragment // Members, not sorted horizontally until assembly
	Valid  bool            // Set by the validator
}

// Texts returns the raw text of every member in their current order
func (r *Row) Texts() []string {
	texts := make([]string, 0, len(r.Values))
	for _, v := range r.Values {
		texts = append(texts, v.Text)
	}
	return texts
}
