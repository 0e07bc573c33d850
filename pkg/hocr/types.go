package hocr

// Document is a parsed hOCR file
type Document struct {
	Title    string            // Contents of <title>
	Language string            // html lang attribute
	Metadata map[string]string // ocr-* meta tags
	Pages    []Page
}

// Page is one page of recognized text
// Corresponds to hOCR element with class: 'ocr_page'
type Page struct {
	ID        string
	Number    int         // ppageno, 0-based as written by Tesseract
	ImageName string      // Source image from the title attribute
	BBox      BoundingBox // Page coordinates
	Words     []Word      // Every word on the page in document order
}

// Word is a recognized word with bounding box
// Corresponds to hOCR element with class: 'ocrx_word'
type Word struct {
	ID         string
	LineID     string // Enclosing ocr_line, empty if none
	Text       string
	BBox       BoundingBox
	Confidence float64 // x_wconf, 0-100
}

// BoundingBox is an hOCR 'bbox' property
type BoundingBox struct {
	X1 float64 // Left
	Y1 float64 // Top
	X2 float64 // Right
	Y2 float64 // Bottom
}

// Width returns X2-X1
func (b BoundingBox) Width() float64 {
	return b.X2 - b.X1
}

// Height returns Y2-Y1
func (b BoundingBox) Height() float64 {
	return b.Y2 - b.Y1
}

// IsZero reports whether no bbox was given
func (b BoundingBox) IsZero() bool {
	return b == BoundingBox{}
}
