package layout

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoRowFixture() []TextFragment {
	return []TextFragment{
		band("first row", 0, 45, 55, 51),
		band("first row - 2nd entry", 0, 46, 56, 50),
		band("first row - 3rd entry", 0, 46, 54, 50),
		band("second row - 1st entry", 0, 40, 49, 44),
		band("second row - 2nd entry", 0, 40, 50, 44),
	}
}

func TestCluster_TwoRows(t *testing.T) {
	for _, anchor := range []Anchor{AnchorPredecessor, AnchorRowStart} {
		rows := Clusterer{Mode: OverlapBounds, Anchor: anchor}.Cluster(twoRowFixture())

		require.Len(t, rows, 2)

		// Image y grows downwards, so the 44 band is the upper row
		assert.Equal(t, 1, rows[0].Number)
		assert.Equal(t, []string{"second row - 1st entry", "second row - 2nd entry"}, rows[0].Texts())

		assert.Equal(t, 2, rows[1].Number)
		require.Len(t, rows[1].Values, 3)
		assert.Equal(t, "first row - 3rd entry", rows[1].Values[1].Text)
		for _, f := range rows[1].Values {
			assert.Equal(t, 2, f.Row)
		}
	}
}

func TestCluster_SortsBeforeClustering(t *testing.T) {
	fixture := twoRowFixture()
	reversed := make([]TextFragment, len(fixture))
	for i := range fixture {
		reversed[len(fixture)-1-i] = fixture[i]
	}

	a := DefaultClusterer().Cluster(fixture)
	b := DefaultClusterer().Cluster(reversed)

	require.Len(t, b, len(a))
	for i := range a {
		assert.ElementsMatch(t, a[i].Texts(), b[i].Texts())
	}
}

func TestCluster_DoesNotMutateInput(t *testing.T) {
	fixture := twoRowFixture()
	DefaultClusterer().Cluster(fixture)

	assert.Equal(t, "first row", fixture[0].Text)
	for _, f := range fixture {
		assert.Zero(t, f.Row)
	}
}

func TestCluster_Empty(t *testing.T) {
	assert.Nil(t, DefaultClusterer().Cluster(nil))
}

func TestCluster_RowNumbersStepAtOverlapViolations(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var fragments []TextFragment
	y := 0.0
	for i := 0; i < 200; i++ {
		y += rng.Float64() * 8
		height := 4 + rng.Float64()*10
		fragments = append(fragments, FragmentFromBox("w", rng.Float64()*500, y-height/2, rng.Float64()*500+20, y+height/2))
	}
	sort.SliceStable(fragments, func(i, j int) bool { return fragments[i].YMid < fragments[j].YMid })

	c := DefaultClusterer()
	rows := c.Cluster(fragments)

	var ordered []*TextFragment
	for _, row := range rows {
		ordered = append(ordered, row.Values...)
	}
	require.Len(t, ordered, len(fragments))

	for i := 1; i < len(ordered); i++ {
		prev, cur := ordered[i-1], ordered[i]
		require.GreaterOrEqual(t, cur.Row, prev.Row)
		if c.sameRow(prev, cur) {
			assert.Equal(t, prev.Row, cur.Row, "fragment %d overlaps its predecessor", i)
		} else {
			assert.Equal(t, prev.Row+1, cur.Row, "fragment %d breaks overlap", i)
		}
	}
}

func TestCluster_AnchorChoiceControlsDrift(t *testing.T) {
	staircase := []TextFragment{
		FragmentFromBox("a", 0, 0, 10, 10),
		FragmentFromBox("b", 20, 4, 30, 14),
		FragmentFromBox("c", 40, 8, 50, 18),
	}

	predecessor := Clusterer{Anchor: AnchorPredecessor}.Cluster(staircase)
	rowStart := Clusterer{Anchor: AnchorRowStart}.Cluster(staircase)

	assert.Len(t, predecessor, 1)
	require.Len(t, rowStart, 2)
	assert.Equal(t, []string{"a", "b"}, rowStart[0].Texts())
	assert.Equal(t, []string{"c"}, rowStart[1].Texts())
}

func TestCluster_ToleranceMode(t *testing.T) {
	fragments := []TextFragment{
		band("x", 0, 0, 100, 50),
		band("y", 0, 0, 100, 53),
		band("z", 0, 0, 100, 56),
	}

	rows := Clusterer{Mode: OverlapTolerance, Anchor: AnchorRowStart}.Cluster(fragments)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"x", "y"}, rows[0].Texts())

	rows = Clusterer{Mode: OverlapTolerance, Anchor: AnchorPredecessor, Tolerance: 5}.Cluster(fragments)
	assert.Len(t, rows, 1)
}
