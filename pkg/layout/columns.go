package layout

import "sort"

// DefaultMinSeparation is the distance below which two ruling lines are
// treated as the same line
const DefaultMinSeparation = 5.0

// Segment is a line segment reported by a line detector
type Segment struct {
	X1, Y1 float64
	X2, Y2 float64
}

// ColumnBoundary is the interval between two consecutive ruling lines
type ColumnBoundary struct {
	Number int // 1-based, left to right
	LeftX  float64
	LeftY  float64
	RightX float64
	RightY float64
}

// Contains reports whether x lies strictly inside the interval
func (b ColumnBoundary) Contains(x float64) bool {
	return b.LeftX < x && x < b.RightX
}

// Columns is an ordered set of column intervals
type Columns []ColumnBoundary

// BoundariesFromSegments derives column intervals from detected line
// segments. Segments are ordered by their starting x; a segment closer than
// minSeparation to the last kept line is dropped as a duplicate of it. Each
// remaining pair of consecutive lines becomes one interval.
func BoundariesFromSegments(segments []Segment, minSeparation float64) Columns {
	if len(segments) < 2 {
		return nil
	}
	if minSeparation <= 0 {
		minSeparation = DefaultMinSeparation
	}

	sorted := make([]Segment, len(segments))
	copy(sorted, segments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].X1 < sorted[j].X1
	})

	var columns Columns
	previous := sorted[0]
	for _, s := range sorted[1:] {
		if s.X1-previous.X1 < minSeparation {
			continue
		}
		columns = append(columns, ColumnBoundary{
			Number: len(columns) + 1,
			LeftX:  previous.X1,
			LeftY:  previous.Y1,
			RightX: s.X1,
			RightY: s.Y1,
		})
		previous = s
	}
	return columns
}

// Locate returns the number of the interval strictly containing x, or 0
func (c Columns) Locate(x float64) int {
	for _, b := range c {
		if b.Contains(x) {
			return b.Number
		}
	}
	return 0
}
