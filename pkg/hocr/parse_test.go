package hocr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHOCR = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Transitional//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd">
<html xmlns="http://www.w3.org/1999/xhtml" xml:lang="en" lang="en">
 <head>
  <title>bulletin</title>
  <meta http-equiv="Content-Type" content="text/html;charset=utf-8"/>
  <meta name="ocr-system" content="tesseract 5.3.0"/>
  <meta name="ocr-capabilities" content="ocr_page ocr_carea ocr_par ocr_line ocrx_word"/>
 </head>
 <body>
  <div class="ocr_page" id="page_1" title='image "wb.png"; bbox 0 0 1240 1754; ppageno 0'>
   <div class="ocr_carea" id="block_1_1" title="bbox 40 100 700 160">
    <p class="ocr_par" id="par_1_1" lang="eng" title="bbox 40 100 700 160">
     <span class="ocr_line" id="line_1_1" title="bbox 40 100 700 130; baseline 0 -5">
      <span class="ocrx_word" id="word_1_1" title="bbox 40 100 140 130; x_wconf 93">Dakshin</span>
      <span class="ocrx_word" id="word_1_2" title="bbox 150 100 260 130; x_wconf 91">Dinajpur</span>
      <span class="ocrx_word" id="word_1_3" title="bbox 400 101 440 129; x_wconf 96"><strong>100</strong></span>
      <span class="ocrx_word" id="word_1_4" title="bbox 600 100 640 130; x_wconf 12">~</span>
     </span>
    </p>
   </div>
   <span class="ocrx_word" id="word_1_9" title="x_wconf 80">orphan</span>
  </div>
 </body>
</html>`

func TestParse(t *testing.T) {
	doc, err := ParseBytes([]byte(sampleHOCR))
	require.NoError(t, err)

	assert.Equal(t, "bulletin", doc.Title)
	assert.Equal(t, "en", doc.Language)
	assert.Equal(t, "tesseract 5.3.0", doc.Metadata["ocr-system"])

	require.Len(t, doc.Pages, 1)
	page := doc.Pages[0]
	assert.Equal(t, "page_1", page.ID)
	assert.Equal(t, "wb.png", page.ImageName)
	assert.Equal(t, 0, page.Number)
	assert.Equal(t, 1240.0, page.BBox.Width())
	assert.Equal(t, 1754.0, page.BBox.Height())

	require.Len(t, page.Words, 5)
	assert.Equal(t, Word{
		ID:         "word_1_3",
		LineID:     "line_1_1",
		Text:       "100",
		BBox:       BoundingBox{X1: 400, Y1: 101, X2: 440, Y2: 129},
		Confidence: 96,
	}, page.Words[2])
	assert.Equal(t, "", page.Words[4].LineID)
}

func TestPage_Fragments(t *testing.T) {
	doc, err := ParseBytes([]byte(sampleHOCR))
	require.NoError(t, err)
	page, ok := doc.Page(0)
	require.True(t, ok)

	fragments := page.Fragments(50)

	require.Len(t, fragments, 3, "low confidence and box-less words are skipped")
	assert.Equal(t, "Dakshin", fragments[0].Text)
	assert.Equal(t, 40.0, fragments[0].LowerLeft.X)
	assert.Equal(t, 115.0, fragments[0].YMid)
	assert.Equal(t, 115.0, fragments[2].YMid)

	_, ok = doc.Page(1)
	assert.False(t, ok)
}

func TestParse_Latin1(t *testing.T) {
	data := []byte("<html><head><meta http-equiv=\"Content-Type\" content=\"text/html; charset=iso-8859-1\"></head><body>" +
		"<div class='ocr_page' title='bbox 0 0 100 100'><span class='ocrx_word' title='bbox 1 1 20 10'>M\xfcnchen</span></div>" +
		"</body></html>")

	doc, err := ParseBytes(data)
	require.NoError(t, err)

	assert.Equal(t, "München", doc.Pages[0].Words[0].Text)
}

func TestParse_NoPages(t *testing.T) {
	_, err := ParseBytes([]byte("<html><body><p>plain</p></body></html>"))
	assert.Error(t, err)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.hocr")
	require.NoError(t, os.WriteFile(path, []byte(sampleHOCR), 0o644))

	doc, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, doc.Pages, 1)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.hocr"))
	assert.Error(t, err)
}

func TestParseTitle(t *testing.T) {
	props := ParseTitle("bbox 100 200 300 400; x_wconf 95;; baseline 0.01 -3")

	assert.Equal(t, []string{"100", "200", "300", "400"}, props["bbox"])
	assert.Equal(t, []string{"95"}, props["x_wconf"])
	assert.Equal(t, []string{"0.01", "-3"}, props["baseline"])

	_, ok := parseBBox(ParseTitle("bbox 1 2 three 4"))
	assert.False(t, ok)
}
