// Package ruling finds the vertical ruling lines of a table image and turns
// them into column boundaries.
//
// Edges are found with Canny and line segments with the probabilistic Hough
// transform (OpenCV through gocv). Only near-vertical segments are kept; the
// rest is handed to layout.BoundariesFromSegments.
package ruling

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"gocv.io/x/gocv"

	"github.com/gardar/ocrtable/pkg/layout"
)

// Settings controls edge and line detection
type Settings struct {
	CannyLow      float64 // Lower hysteresis threshold
	CannyHigh     float64 // Upper hysteresis threshold
	Rho           float64 // Distance resolution in pixels
	Theta         float64 // Angle resolution in radians
	Threshold     int     // Minimum accumulator votes for a line
	MinLineLength float64 // Shorter segments are rejected
	MaxLineGap    float64 // Largest gap bridged within one segment
	MaxSkew       float64 // Largest |x2-x1| for a vertical segment; negative keeps every segment
	MinSeparation float64 // Lines closer than this are merged
}

// DefaultSettings returns the detection parameters tuned for scanned
// bulletin tables
func DefaultSettings() Settings {
	return Settings{
		CannyLow:      50,
		CannyHigh:     150,
		Rho:           1,
		Theta:         math.Pi / 135,
		Threshold:     400,
		MinLineLength: 400,
		MaxLineGap:    250,
		MaxSkew:       10,
		MinSeparation: layout.DefaultMinSeparation,
	}
}

// Detector finds column boundaries in table images
type Detector struct {
	settings Settings
}

// NewDetector creates a Detector. Zero fields in s take their defaults.
func NewDetector(s Settings) *Detector {
	d := DefaultSettings()
	if s.CannyLow > 0 {
		d.CannyLow = s.CannyLow
	}
	if s.CannyHigh > 0 {
		d.CannyHigh = s.CannyHigh
	}
	if s.Rho > 0 {
		d.Rho = s.Rho
	}
	if s.Theta > 0 {
		d.Theta = s.Theta
	}
	if s.Threshold > 0 {
		d.Threshold = s.Threshold
	}
	if s.MinLineLength > 0 {
		d.MinLineLength = s.MinLineLength
	}
	if s.MaxLineGap > 0 {
		d.MaxLineGap = s.MaxLineGap
	}
	if s.MaxSkew != 0 {
		d.MaxSkew = s.MaxSkew
	}
	if s.MinSeparation > 0 {
		d.MinSeparation = s.MinSeparation
	}
	return &Detector{settings: d}
}

// Settings returns the effective settings
func (d *Detector) Settings() Settings {
	return d.settings
}

// Detect returns the column boundaries of img. It returns
// layout.ErrGeometryUnavailable when fewer than two distinct vertical lines
// are found.
func (d *Detector) Detect(img image.Image) (layout.Columns, error) {
	segments, err := d.Segments(img)
	if err != nil {
		return nil, err
	}

	columns := layout.BoundariesFromSegments(Vertical(segments, d.settings.MaxSkew), d.settings.MinSeparation)
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %d segments", layout.ErrGeometryUnavailable, len(segments))
	}
	return columns, nil
}

// DetectFile decodes an image file and detects its column boundaries
func (d *Detector) DetectFile(path string) (layout.Columns, error) {
	img, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}
	return d.Detect(img)
}

// Segments returns every line segment found in img, in detection order
func (d *Detector) Segments(img image.Image) ([]layout.Segment, error) {
	gray, err := grayMat(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer gray.Close()

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, float32(d.settings.CannyLow), float32(d.settings.CannyHigh))

	lines := gocv.NewMat()
	defer lines.Close()
	gocv.HoughLinesPWithParams(edges, &lines,
		float32(d.settings.Rho),
		float32(d.settings.Theta),
		d.settings.Threshold,
		float32(d.settings.MinLineLength),
		float32(d.settings.MaxLineGap))

	segments := make([]layout.Segment, 0, lines.Rows())
	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		if len(v) < 4 {
			continue
		}
		segments = append(segments, layout.Segment{
			X1: float64(v[0]),
			Y1: float64(v[1]),
			X2: float64(v[2]),
			Y2: float64(v[3]),
		})
	}
	return segments, nil
}

// Vertical keeps the segments whose horizontal extent is at most maxSkew.
// A negative maxSkew keeps everything.
func Vertical(segments []layout.Segment, maxSkew float64) []layout.Segment {
	if maxSkew < 0 {
		return segments
	}
	var vertical []layout.Segment
	for _, s := range segments {
		if math.Abs(s.X2-s.X1) <= maxSkew && s.Y1 != s.Y2 {
			vertical = append(vertical, s)
		}
	}
	return vertical
}

// grayMat converts a Go image to a single channel OpenCV Mat
func grayMat(img image.Image) (gocv.Mat, error) {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	mat, err := gocv.NewMatFromBytes(rgba.Rect.Dy(), rgba.Rect.Dx(), gocv.MatTypeCV8UC4, rgba.Pix)
	if err != nil {
		return gocv.Mat{}, err
	}
	defer mat.Close()

	gray := gocv.NewMat()
	gocv.CvtColor(mat, &gray, gocv.ColorRGBAToGray)
	return gray, nil
}
