package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFragment_DerivesCornersAndMidpoints(t *testing.T) {
	f := NewFragment("17", [4]Point{{33, 21}, {62, 22}, {61, 49}, {32, 48}})

	assert.Equal(t, Point{33, 21}, f.LowerLeft)
	assert.Equal(t, Point{61, 49}, f.UpperRight)
	assert.Equal(t, 47.0, f.XMid)
	assert.Equal(t, 35.0, f.YMid)
	assert.Equal(t, 21.0, f.Top())
	assert.Equal(t, 49.0, f.Bottom())
	assert.Zero(t, f.Row)
}

func TestFragmentFromBox(t *testing.T) {
	f := FragmentFromBox("Kolkata", 10, 100, 90, 120)

	assert.Equal(t, Point{10, 100}, f.LowerLeft)
	assert.Equal(t, Point{90, 120}, f.UpperRight)
	assert.Equal(t, Point{90, 100}, f.Polygon[1])
	assert.Equal(t, Point{10, 120}, f.Polygon[3])
	assert.Equal(t, 110.0, f.YMid)
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  bangalore ", "Bangalore"},
		{"DAKSHIN   DINAJPUR", "Dakshin Dinajpur"},
		{"Tumkur*", "Tumkur"},
		{"#.,", ""},
		{"north 24 parganas", "North 24 Parganas"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in), "input %q", tt.in)
	}
}

func TestIsInteger(t *testing.T) {
	assert.True(t, IsInteger("100"))
	assert.True(t, IsInteger(" -3 "))
	assert.False(t, IsInteger("1 200"))
	assert.False(t, IsInteger("Kolkata"))
	assert.False(t, IsInteger(""))
}
