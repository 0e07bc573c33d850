package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrGeometryUnavailable is returned by geometry detectors that found no
	// usable ruling lines. Callers fall back to the text heuristic.
	ErrGeometryUnavailable = errors.New("no column ruling lines detected")

	// ErrInvalidState is returned when a Reconstructor stage is called out of
	// order or after a failure.
	ErrInvalidState = errors.New("reconstructor stage called out of order")

	// ErrCatalogNotLoaded is wrapped in a ConfigurationError when a stage that
	// needs the entity catalog runs without one.
	ErrCatalogNotLoaded = errors.New("entity catalog not loaded")
)

// ConfigurationError reports a missing or unreadable reference table. It is
// fatal for the run: no rows are processed after it.
type ConfigurationError struct {
	Jurisdiction string // Jurisdiction display name being loaded
	Resource     string // Table or file that could not be used
	Err          error  // Underlying cause
}

func (e *ConfigurationError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("configuration error for %q (%s): %v", e.Jurisdiction, e.Resource, e.Err)
	}
	return fmt.Sprintf("configuration error for %q: %v", e.Jurisdiction, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// MalformedInputWarning describes a row or line that was dropped. It is never
// fatal; the batch continues without the row.
type MalformedInputWarning struct {
	Row    int    // Row number, 0 when the warning is about an output line
	Text   string // Row or line content as seen when it was dropped
	Reason string
}

func (w MalformedInputWarning) Error() string {
	if w.Row > 0 {
		return fmt.Sprintf("row %d dropped: %s: %q", w.Row, w.Reason, w.Text)
	}
	return fmt.Sprintf("line dropped: %s: %q", w.Reason, w.Text)
}
