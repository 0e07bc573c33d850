// Package tesseract runs a local Tesseract engine and returns its words as
// layout fragments.
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/gardar/ocrtable/pkg/layout"
)

// Config holds the engine settings
type Config struct {
	Languages     []string              // Tesseract language codes, "eng" when empty
	PageSegMode   gosseract.PageSegMode // 0 leaves the engine default
	MinConfidence float64               // Words below this confidence (0-100) are dropped
	Variables     map[string]string     // Extra Tesseract variables
}

// Engine recognizes table images with Tesseract
type Engine struct {
	cfg           Config
	clientFactory func() *gosseract.Client
}

// New creates an Engine
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg, clientFactory: gosseract.NewClient}
}

// Fragments recognizes the image at path and returns one fragment per word
func (e *Engine) Fragments(ctx context.Context, path string) ([]layout.TextFragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := e.clientFactory()
	defer c.Close()

	if err := e.configure(c); err != nil {
		return nil, err
	}
	if err := c.SetImage(path); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("failed to recognize words: %w", err)
	}
	return FragmentsFromBoxes(boxes, e.cfg.MinConfidence), nil
}

// FragmentsFromImage recognizes encoded image bytes
func (e *Engine) FragmentsFromImage(ctx context.Context, data []byte) ([]layout.TextFragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := e.clientFactory()
	defer c.Close()

	if err := e.configure(c); err != nil {
		return nil, err
	}
	if err := c.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("failed to recognize words: %w", err)
	}
	return FragmentsFromBoxes(boxes, e.cfg.MinConfidence), nil
}

func (e *Engine) configure(c *gosseract.Client) error {
	if len(e.cfg.Languages) > 0 {
		if err := c.SetLanguage(e.cfg.Languages...); err != nil {
			return fmt.Errorf("failed to set languages: %w", err)
		}
	}
	if e.cfg.PageSegMode != 0 {
		if err := c.SetPageSegMode(e.cfg.PageSegMode); err != nil {
			return fmt.Errorf("failed to set page segmentation mode: %w", err)
		}
	}
	for k, v := range e.cfg.Variables {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return fmt.Errorf("failed to set variable %s: %w", k, err)
		}
	}
	return nil
}

// FragmentsFromBoxes converts word boxes to fragments, skipping blank words
// and words below minConfidence
func FragmentsFromBoxes(boxes []gosseract.BoundingBox, minConfidence float64) []layout.TextFragment {
	fragments := make([]layout.TextFragment, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" || b.Confidence < minConfidence {
			continue
		}
		fragments = append(fragments, layout.FragmentFromBox(text,
			float64(b.Box.Min.X), float64(b.Box.Min.Y),
			float64(b.Box.Max.X), float64(b.Box.Max.Y)))
	}
	return fragments
}
