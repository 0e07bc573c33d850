package layout

import (
	"math"
	"sort"
)

// OverlapMode selects how a fragment is tested against its anchor
type OverlapMode int

const (
	// OverlapBounds places a fragment in the anchor's row when its YMid lies
	// strictly inside the anchor's vertical extent.
	OverlapBounds OverlapMode = iota
	// OverlapTolerance places a fragment in the anchor's row when its YMid is
	// within Tolerance pixels of the anchor's YMid.
	OverlapTolerance
)

// Anchor selects which fragment a new fragment is compared against
type Anchor int

const (
	// AnchorPredecessor compares against the fragment processed just before.
	AnchorPredecessor Anchor = iota
	// AnchorRowStart compares against the fragment that opened the current row.
	AnchorRowStart
)

// DefaultTolerance is the half-height of the band used by OverlapTolerance
const DefaultTolerance = 5.0

// Clusterer groups fragments into rows by vertical overlap
type Clusterer struct {
	Mode      OverlapMode
	Anchor    Anchor
	Tolerance float64 // Used by OverlapTolerance; DefaultTolerance when zero
}

// DefaultClusterer compares each fragment's midpoint against the bounds of the
// fragment before it
func DefaultClusterer() Clusterer {
	return Clusterer{
		Mode:      OverlapBounds,
		Anchor:    AnchorPredecessor,
		Tolerance: DefaultTolerance,
	}
}

// Cluster sorts the fragments top to bottom and assigns row numbers. The
// input slice is not reordered; the returned rows point into a sorted copy.
//
// The comparison is local: a fragment is only tested against its anchor, not
// against the row as a whole, so long rows can drift.
func (c Clusterer) Cluster(fragments []TextFragment) []*Row {
	if len(fragments) == 0 {
		return nil
	}

	sorted := make([]*TextFragment, len(fragments))
	for i := range fragments {
		f := fragments[i]
		f.Row = 0
		sorted[i] = &f
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].YMid < sorted[j].YMid
	})

	var rows []*Row
	var anchor *TextFragment
	number := 0

	for _, f := range sorted {
		if anchor != nil && c.sameRow(anchor, f) {
			f.Row = number
			current := rows[len(rows)-1]
			current.Values = append(current.Values, f)
			if c.Anchor == AnchorPredecessor {
				anchor = f
			}
			continue
		}

		// New row, starting with this fragment
		number++
		f.Row = number
		anchor = f
		rows = append(rows, &Row{
			Number: number,
			Values: []*TextFragment{f},
		})
	}

	return rows
}

func (c Clusterer) sameRow(anchor, f *TextFragment) bool {
	if c.Mode == OverlapTolerance {
		tolerance := c.Tolerance
		if tolerance <= 0 {
			tolerance = DefaultTolerance
		}
		return math.Abs(f.YMid-anchor.YMid) < tolerance
	}
	return anchor.Top() < f.YMid && f.YMid < anchor.Bottom()
}
