package tesseract

import (
	"image"
	"testing"

	"github.com/otiai10/gosseract/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFragmentsFromBoxes(t *testing.T) {
	boxes := []gosseract.BoundingBox{
		{Box: image.Rect(10, 40, 90, 60), Word: "Kolkata", Confidence: 91},
		{Box: image.Rect(120, 41, 150, 59), Word: " 12 ", Confidence: 88},
		{Box: image.Rect(200, 40, 210, 60), Word: "  ", Confidence: 95},
		{Box: image.Rect(300, 40, 310, 60), Word: "~", Confidence: 12},
	}

	fragments := FragmentsFromBoxes(boxes, 30)

	require.Len(t, fragments, 2)
	assert.Equal(t, "Kolkata", fragments[0].Text)
	assert.Equal(t, 10.0, fragments[0].LowerLeft.X)
	assert.Equal(t, 90.0, fragments[0].UpperRight.X)
	assert.Equal(t, 50.0, fragments[0].YMid)
	assert.Equal(t, "12", fragments[1].Text)
	assert.Equal(t, 135.0, fragments[1].XMid)
}

func TestFragmentsFromBoxes_NoThreshold(t *testing.T) {
	boxes := []gosseract.BoundingBox{
		{Box: image.Rect(300, 40, 310, 60), Word: "~", Confidence: 12},
	}

	assert.Len(t, FragmentsFromBoxes(boxes, 0), 1)
	assert.Empty(t, FragmentsFromBoxes(nil, 0))
}
