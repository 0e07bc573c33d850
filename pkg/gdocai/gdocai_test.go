package gdocai

import (
	"path/filepath"
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anchor(start, end int64) *documentaipb.Document_TextAnchor {
	return &documentaipb.Document_TextAnchor{
		TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{{StartIndex: start, EndIndex: end}},
	}
}

func pixelToken(start, end int64, x1, y1, x2, y2 int32) *documentaipb.Document_Page_Token {
	return &documentaipb.Document_Page_Token{
		Layout: &documentaipb.Document_Page_Layout{
			TextAnchor: anchor(start, end),
			BoundingPoly: &documentaipb.BoundingPoly{Vertices: []*documentaipb.Vertex{
				{X: x1, Y: y1}, {X: x2, Y: y1}, {X: x2, Y: y2}, {X: x1, Y: y2},
			}},
		},
	}
}

func sampleDocument() *documentaipb.Document {
	// "Kolkata 12\nHowrah 3\n"
	return &documentaipb.Document{
		Text: "Kolkata 12\nHowrah 3\n",
		Pages: []*documentaipb.Document_Page{{
			PageNumber: 1,
			Dimension:  &documentaipb.Document_Page_Dimension{Width: 1000, Height: 2000, Unit: "pixels"},
			Image:      &documentaipb.Document_Page_Image{Content: []byte{0x89, 'P', 'N', 'G'}, MimeType: "image/png"},
			Tokens: []*documentaipb.Document_Page_Token{
				pixelToken(0, 8, 10, 100, 90, 120),
				pixelToken(8, 11, 300, 101, 330, 119),
				{
					Layout: &documentaipb.Document_Page_Layout{
						TextAnchor: anchor(11, 18),
						BoundingPoly: &documentaipb.BoundingPoly{NormalizedVertices: []*documentaipb.NormalizedVertex{
							{X: 0.01, Y: 0.1}, {X: 0.08, Y: 0.1}, {X: 0.08, Y: 0.11}, {X: 0.01, Y: 0.11},
						}},
					},
				},
				// Whitespace only
				pixelToken(7, 8, 0, 0, 1, 1),
				// No geometry
				{Layout: &documentaipb.Document_Page_Layout{TextAnchor: anchor(18, 19)}},
			},
		}},
	}
}

func TestPageFragments(t *testing.T) {
	fragments, err := PageFragments(sampleDocument(), 0)
	require.NoError(t, err)

	require.Len(t, fragments, 3)
	assert.Equal(t, "Kolkata", fragments[0].Text)
	assert.Equal(t, 110.0, fragments[0].YMid)
	assert.Equal(t, 50.0, fragments[0].XMid)
	assert.Equal(t, "12", fragments[1].Text)
	assert.Equal(t, 110.0, fragments[1].YMid)

	assert.Equal(t, "Howrah", fragments[2].Text)
	assert.InDelta(t, 10, fragments[2].LowerLeft.X, 0.01)
	assert.InDelta(t, 210, fragments[2].YMid, 0.01)
}

func TestPageFragments_OutOfRange(t *testing.T) {
	_, err := PageFragments(sampleDocument(), 1)
	assert.Error(t, err)

	_, err = PageFragments(nil, 0)
	assert.Error(t, err)
}

func TestTextFromLayout_ClampsSegments(t *testing.T) {
	l := &documentaipb.Document_Page_Layout{TextAnchor: anchor(4, 50)}

	assert.Equal(t, "ata", textFromLayout(l, "Kolkata"))
	assert.Equal(t, "", textFromLayout(nil, "Kolkata"))
}

func TestDocumentJSON_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "response.json")
	require.NoError(t, SaveDocumentJSON(sampleDocument(), path))

	loaded, err := LoadDocumentJSON(path)
	require.NoError(t, err)

	fragments, err := PageFragments(loaded, 0)
	require.NoError(t, err)
	assert.Len(t, fragments, 3)

	_, err = LoadDocumentJSON(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestPageImage(t *testing.T) {
	content, mime, err := PageImage(sampleDocument(), 0)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Len(t, content, 4)

	doc := sampleDocument()
	doc.Pages[0].Image = nil
	_, _, err = PageImage(doc, 0)
	assert.Error(t, err)
}

func TestConfig(t *testing.T) {
	cfg := &Config{ProjectID: "bulletins", Location: "eu", ProcessorID: "abc123"}

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "eu-documentai.googleapis.com:443", cfg.Endpoint())
	assert.Equal(t, "projects/bulletins/locations/eu/processors/abc123", cfg.ProcessorName())

	assert.Error(t, (&Config{Location: "us"}).Validate())
	assert.Error(t, (*Config)(nil).Validate())
}

func TestMimeType(t *testing.T) {
	assert.Equal(t, "application/pdf", MimeType("bulletin.PDF", nil))
	assert.Equal(t, "image/tiff", MimeType("scan.tif", nil))
	assert.Equal(t, "image/png", MimeType("upload", []byte("\x89PNG\r\n\x1a\n0000")))
}
