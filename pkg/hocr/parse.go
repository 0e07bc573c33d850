package hocr

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Parse reads an hOCR document. The input is converted to UTF-8 using the
// charset declared in the document, if any.
func Parse(r io.Reader) (*Document, error) {
	utf8, err := charset.NewReader(r, "text/html")
	if err != nil {
		return nil, fmt.Errorf("failed to detect charset: %w", err)
	}

	root, err := html.Parse(utf8)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hOCR: %w", err)
	}

	doc := &Document{Metadata: make(map[string]string)}
	p := parser{doc: doc}
	p.walk(root)

	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("no ocr_page elements found in hOCR data")
	}
	return doc, nil
}

// ParseBytes parses hOCR held in memory
func ParseBytes(data []byte) (*Document, error) {
	return Parse(bytes.NewReader(data))
}

// ParseFile parses an hOCR file
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open hOCR file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// ParseTitle breaks down an hOCR title attribute into its components
// Example input: "bbox 100 200 300 400; x_wconf 95"
func ParseTitle(title string) map[string][]string {
	result := make(map[string][]string)
	for _, part := range strings.Split(title, ";") {
		items := strings.Fields(part)
		if len(items) == 0 {
			continue
		}
		result[items[0]] = items[1:]
	}
	return result
}

// parseBBox reads the bbox property; ok is false when it is missing or
// malformed
func parseBBox(props map[string][]string) (BoundingBox, bool) {
	values, found := props["bbox"]
	if !found || len(values) < 4 {
		return BoundingBox{}, false
	}
	var c [4]float64
	for i := range c {
		v, err := strconv.ParseFloat(values[i], 64)
		if err != nil {
			return BoundingBox{}, false
		}
		c[i] = v
	}
	return BoundingBox{X1: c[0], Y1: c[1], X2: c[2], Y2: c[3]}, true
}

// parser walks the HTML tree keeping track of the enclosing page and line
type parser struct {
	doc  *Document
	page *Page
	line string
}

func (p *parser) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		switch {
		case n.Data == "html":
			if lang := attr(n, "lang"); lang != "" {
				p.doc.Language = lang
			}
		case n.Data == "title":
			p.doc.Title = strings.TrimSpace(textContent(n))
			return
		case n.Data == "meta":
			if name := attr(n, "name"); strings.HasPrefix(name, "ocr-") {
				p.doc.Metadata[name] = attr(n, "content")
			}
			return
		case hasClass(n, "ocr_page"):
			p.openPage(n)
			return
		case hasClass(n, "ocrx_word"):
			p.addWord(n)
			return
		case hasClass(n, "ocr_line"), hasClass(n, "ocrx_line"),
			hasClass(n, "ocr_header"), hasClass(n, "ocr_caption"), hasClass(n, "ocr_textfloat"):
			outer := p.line
			p.line = attr(n, "id")
			p.children(n)
			p.line = outer
			return
		}
	}
	p.children(n)
}

func (p *parser) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c)
	}
}

func (p *parser) openPage(n *html.Node) {
	props := ParseTitle(attr(n, "title"))
	page := Page{ID: attr(n, "id")}
	page.BBox, _ = parseBBox(props)
	if image, ok := props["image"]; ok && len(image) > 0 {
		page.ImageName = strings.Trim(strings.Join(image, " "), `"`)
	}
	if no, ok := props["ppageno"]; ok && len(no) > 0 {
		page.Number, _ = strconv.Atoi(no[0])
	}

	outer := p.page
	p.page = &page
	p.children(n)
	p.page = outer

	p.doc.Pages = append(p.doc.Pages, page)
}

func (p *parser) addWord(n *html.Node) {
	if p.page == nil {
		return
	}
	props := ParseTitle(attr(n, "title"))
	word := Word{
		ID:     attr(n, "id"),
		LineID: p.line,
		Text:   strings.TrimSpace(textContent(n)),
	}
	word.BBox, _ = parseBBox(props)
	if conf, ok := props["x_wconf"]; ok && len(conf) > 0 {
		word.Confidence, _ = strconv.ParseFloat(conf[0], 64)
	}
	p.page.Words = append(p.page.Words, word)
}

// textContent concatenates the text nodes under n
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
