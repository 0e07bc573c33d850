// Package config loads the YAML settings file shared by the CLI and the queue
// worker.
//
//	reference_dir: ./tables          # empty uses the built-in tables
//	separator: ","
//	log_level: info
//	redis_url: redis://localhost:6379/0
//	document_ai:
//	  project_id: my-project
//	  location: eu
//	  processor_id: 1234abcd
//	  credentials_file: /etc/ocrtable/key.json
//	tesseract:
//	  languages: [eng]
//	  min_confidence: 30
//	defaults:
//	  hough_transform: true
//	  min_line_length: 400
//	jurisdictions:
//	  Karnataka:
//	    hough_transform: false
//	  West Bengal:
//	    min_line_length: 600
//	    clustering:
//	      mode: tolerance
//	      anchor: row-start
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gardar/ocrtable/pkg/gdocai"
	"github.com/gardar/ocrtable/pkg/layout"
	"github.com/gardar/ocrtable/pkg/ruling"
)

// Config is the top level settings file
type Config struct {
	ReferenceDir  string              `yaml:"reference_dir"`
	Separator     string              `yaml:"separator"`
	LogLevel      string              `yaml:"log_level"`
	RedisURL      string              `yaml:"redis_url"`
	DocumentAI    gdocai.Config       `yaml:"document_ai"`
	Tesseract     Tesseract           `yaml:"tesseract"`
	Defaults      Geometry            `yaml:"defaults"`
	Jurisdictions map[string]Geometry `yaml:"jurisdictions"`
}

// Tesseract holds local OCR settings
type Tesseract struct {
	Languages     []string `yaml:"languages"`
	MinConfidence float64  `yaml:"min_confidence"`
}

// Geometry holds the per-jurisdiction detection and clustering settings.
// Pointer and zero fields inherit from Defaults.
type Geometry struct {
	HoughTransform *bool      `yaml:"hough_transform"`
	Threshold      int        `yaml:"threshold"`
	MinLineLength  float64    `yaml:"min_line_length"`
	MaxLineGap     float64    `yaml:"max_line_gap"`
	MaxSkew        float64    `yaml:"max_skew"`
	MergeTolerance float64    `yaml:"merge_tolerance"`
	Clustering     Clustering `yaml:"clustering"`
}

// Clustering selects the row clustering rule
type Clustering struct {
	Mode      string  `yaml:"mode"`   // "bounds" or "tolerance"
	Anchor    string  `yaml:"anchor"` // "predecessor" or "row-start"
	Tolerance float64 `yaml:"tolerance"`
}

// Default returns the settings used when no file is given
func Default() *Config {
	enabled := true
	return &Config{
		Separator: ",",
		LogLevel:  "info",
		RedisURL:  "redis://localhost:6379/0",
		Tesseract: Tesseract{Languages: []string{"eng"}},
		Defaults: Geometry{
			HoughTransform: &enabled,
			MinLineLength:  400,
			MaxLineGap:     250,
			MaxSkew:        10,
			MergeTolerance: layout.DefaultMinSeparation,
			Clustering: Clustering{
				Mode:      "bounds",
				Anchor:    "predecessor",
				Tolerance: layout.DefaultTolerance,
			},
		},
		Jurisdictions: map[string]Geometry{},
	}
}

// Load reads a YAML file over the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Defaults = cfg.Defaults.merge(Default().Defaults)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the clustering names of every section
func (c *Config) Validate() error {
	if _, err := c.Defaults.Clustering.clusterer(); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	for name, g := range c.Jurisdictions {
		if _, err := g.merge(c.Defaults).Clustering.clusterer(); err != nil {
			return fmt.Errorf("jurisdiction %q: %w", name, err)
		}
	}
	return nil
}

// For returns the effective geometry settings for a jurisdiction display
// name, matched case-insensitively
func (c *Config) For(jurisdiction string) Geometry {
	for name, g := range c.Jurisdictions {
		if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(jurisdiction)) {
			return g.merge(c.Defaults)
		}
	}
	return c.Defaults
}

// merge fills unset fields of g from base
func (g Geometry) merge(base Geometry) Geometry {
	if g.HoughTransform == nil {
		g.HoughTransform = base.HoughTransform
	}
	if g.Threshold == 0 {
		g.Threshold = base.Threshold
	}
	if g.MinLineLength == 0 {
		g.MinLineLength = base.MinLineLength
	}
	if g.MaxLineGap == 0 {
		g.MaxLineGap = base.MaxLineGap
	}
	if g.MaxSkew == 0 {
		g.MaxSkew = base.MaxSkew
	}
	if g.MergeTolerance == 0 {
		g.MergeTolerance = base.MergeTolerance
	}
	if g.Clustering.Mode == "" {
		g.Clustering.Mode = base.Clustering.Mode
	}
	if g.Clustering.Anchor == "" {
		g.Clustering.Anchor = base.Clustering.Anchor
	}
	if g.Clustering.Tolerance == 0 {
		g.Clustering.Tolerance = base.Clustering.Tolerance
	}
	return g
}

// DetectLines reports whether ruling lines should be looked for
func (g Geometry) DetectLines() bool {
	return g.HoughTransform == nil || *g.HoughTransform
}

// Ruling returns the detector settings
func (g Geometry) Ruling() ruling.Settings {
	s := ruling.DefaultSettings()
	if g.Threshold > 0 {
		s.Threshold = g.Threshold
	}
	if g.MinLineLength > 0 {
		s.MinLineLength = g.MinLineLength
		// The line length doubles as the vote threshold unless set apart
		if g.Threshold == 0 {
			s.Threshold = int(g.MinLineLength)
		}
	}
	if g.MaxLineGap > 0 {
		s.MaxLineGap = g.MaxLineGap
	}
	if g.MaxSkew != 0 {
		s.MaxSkew = g.MaxSkew
	}
	if g.MergeTolerance > 0 {
		s.MinSeparation = g.MergeTolerance
	}
	return s
}

// Clusterer returns the row clusterer. Names are checked by Validate, so an
// unknown name here falls back to the default clusterer.
func (g Geometry) Clusterer() layout.Clusterer {
	c, err := g.Clustering.clusterer()
	if err != nil {
		return layout.DefaultClusterer()
	}
	return c
}

func (c Clustering) clusterer() (layout.Clusterer, error) {
	out := layout.DefaultClusterer()
	switch strings.ToLower(c.Mode) {
	case "", "bounds":
		out.Mode = layout.OverlapBounds
	case "tolerance":
		out.Mode = layout.OverlapTolerance
	default:
		return out, fmt.Errorf("unknown clustering mode %q", c.Mode)
	}
	switch strings.ToLower(c.Anchor) {
	case "", "predecessor":
		out.Anchor = layout.AnchorPredecessor
	case "row-start", "row_start":
		out.Anchor = layout.AnchorRowStart
	default:
		return out, fmt.Errorf("unknown clustering anchor %q", c.Anchor)
	}
	if c.Tolerance > 0 {
		out.Tolerance = c.Tolerance
	}
	return out, nil
}
