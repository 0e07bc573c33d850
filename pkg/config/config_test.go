package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardar/ocrtable/pkg/layout"
)

const sample = `
reference_dir: ./tables
redis_url: redis://cache:6379/2
document_ai:
  project_id: bulletins
  location: eu
  processor_id: abc123
  credentials_file: /secrets/key.json
tesseract:
  min_confidence: 40
defaults:
  max_line_gap: 200
jurisdictions:
  Karnataka:
    hough_transform: false
  West Bengal:
    min_line_length: 600
    clustering:
      mode: tolerance
      anchor: row-start
      tolerance: 8
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "./tables", cfg.ReferenceDir)
	assert.Equal(t, ",", cfg.Separator, "unset values keep their defaults")
	assert.Equal(t, "redis://cache:6379/2", cfg.RedisURL)
	assert.Equal(t, "/secrets/key.json", cfg.DocumentAI.CredentialsFile)
	assert.Equal(t, []string{"eng"}, cfg.Tesseract.Languages)
	assert.Equal(t, 40.0, cfg.Tesseract.MinConfidence)
	assert.Equal(t, 200.0, cfg.Defaults.MaxLineGap)
	assert.Equal(t, 400.0, cfg.Defaults.MinLineLength)
}

func TestConfig_For(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	ka := cfg.For("karnataka")
	assert.False(t, ka.DetectLines())
	assert.Equal(t, layout.DefaultClusterer(), ka.Clusterer())

	wb := cfg.For("West Bengal")
	assert.True(t, wb.DetectLines())
	s := wb.Ruling()
	assert.Equal(t, 600, s.Threshold)
	assert.Equal(t, 600.0, s.MinLineLength)
	assert.Equal(t, 200.0, s.MaxLineGap)
	assert.Equal(t, layout.DefaultMinSeparation, s.MinSeparation)
	assert.Equal(t, layout.Clusterer{Mode: layout.OverlapTolerance, Anchor: layout.AnchorRowStart, Tolerance: 8}, wb.Clusterer())

	other := cfg.For("Punjab")
	assert.True(t, other.DetectLines())
	assert.Equal(t, 400, other.Ruling().Threshold)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	g := cfg.For("anywhere")
	assert.True(t, g.DetectLines())
	s := g.Ruling()
	assert.Equal(t, 400, s.Threshold)
	assert.Equal(t, 250.0, s.MaxLineGap)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("jurisdictions:\n  Goa:\n    clustering:\n      mode: diagonal\n"))
	assert.ErrorContains(t, err, "Goa")

	_, err = Parse([]byte("defaults:\n  clustering:\n    anchor: sideways\n"))
	assert.ErrorContains(t, err, "anchor")

	_, err = Parse([]byte("separator: [\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ocrtable.yml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abc123", cfg.DocumentAI.ProcessorID)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
