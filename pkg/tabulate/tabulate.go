// Package tabulate runs one reconstruction job end to end: it reads the
// fragments of a page from an OCR source, looks for column ruling lines in
// the page image, rebuilds the table lines and parses them into records.
//
// A Job is plain data so it can be queued as JSON and replayed from the
// command line.
package tabulate

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gardar/ocrtable/pkg/jurisdiction"
	"github.com/gardar/ocrtable/pkg/layout"
)

// SourceKind names where a job's fragments come from
type SourceKind string

const (
	SourceDocumentAI     SourceKind = "documentai"      // Live Document AI call on the input file
	SourceDocumentAIJSON SourceKind = "documentai-json" // Saved Document AI response
	SourceHOCR           SourceKind = "hocr"            // hOCR file
	SourceTesseract      SourceKind = "tesseract"       // Local Tesseract run on the input image
)

// ParseSourceKind accepts a source name in any case
func ParseSourceKind(s string) (SourceKind, error) {
	kind := SourceKind(strings.ToLower(strings.TrimSpace(s)))
	switch kind {
	case SourceDocumentAI, SourceDocumentAIJSON, SourceHOCR, SourceTesseract:
		return kind, nil
	}
	return "", fmt.Errorf("unknown source %q", s)
}

// SourceForPath guesses the source of an input file from its extension:
// hOCR for .hocr and .html, a saved response for .json, Document AI for
// PDFs and Tesseract for anything else
func SourceForPath(path string) SourceKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hocr", ".html", ".htm":
		return SourceHOCR
	case ".json":
		return SourceDocumentAIJSON
	case ".pdf":
		return SourceDocumentAI
	}
	return SourceTesseract
}

// Job describes one page to reconstruct
type Job struct {
	ID           string     `json:"id,omitempty"`
	Jurisdiction string     `json:"jurisdiction"`            // Display name, e.g. "West Bengal"
	Source       SourceKind `json:"source"`                  // Fragment source
	Input        string     `json:"input"`                   // File read by the source
	Page         int        `json:"page,omitempty"`          // 1-based page, 0 means the first
	Image        string     `json:"image,omitempty"`         // Page image when the source has none
	Output       string     `json:"output,omitempty"`        // Lines file
	Records      string     `json:"records,omitempty"`       // Parsed records CSV
	Overlay      string     `json:"overlay,omitempty"`       // Debug PDF
	SaveResponse string     `json:"save_response,omitempty"` // Where a live Document AI response is kept
	StartAt      string     `json:"start_at,omitempty"`      // First line of the table, "auto" or empty for none
	EndAt        string     `json:"end_at,omitempty"`        // Line ending the table, "auto" or empty for none
}

// Validate checks the fields every job needs
func (j Job) Validate() error {
	var errs []error
	if strings.TrimSpace(j.Jurisdiction) == "" {
		errs = append(errs, errors.New("jurisdiction is required"))
	}
	if _, err := ParseSourceKind(string(j.Source)); err != nil {
		errs = append(errs, err)
	}
	if j.Input == "" {
		errs = append(errs, errors.New("input is required"))
	}
	if j.Page < 0 {
		errs = append(errs, fmt.Errorf("page %d is negative", j.Page))
	}
	return errors.Join(errs...)
}

// PageIndex returns the 0-based page index
func (j Job) PageIndex() int {
	if j.Page <= 1 {
		return 0
	}
	return j.Page - 1
}

// Output is what a job produced
type Output struct {
	Job      Job                            `json:"job"`
	Lines    []string                       `json:"lines"`
	Records  []jurisdiction.Record          `json:"records,omitempty"`
	Warnings []layout.MalformedInputWarning `json:"-"`
	Geometry bool                           `json:"geometry"` // Column boundaries were used
	Rows     int                            `json:"rows"`     // Clustered rows
	Dropped  int                            `json:"dropped"`  // Rows without an entity name
	Result   *layout.Result                 `json:"-"`
}
