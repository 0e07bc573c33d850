package overlay

import (
	"bytes"
	"io"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"
)

// importPDFPage adds a page whose background is a page of an existing PDF,
// stretched to the page's coordinate space
func importPDFPage(pdf *fpdf.Fpdf, page *Page) {
	pdf.AddPageFormat("P", fpdf.SizeType{Wd: page.Width, Ht: page.Height})

	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(page.PDF))
	num := page.PDFPage
	if num < 1 {
		num = 1
	}
	tpl := importer.ImportPageFromStream(pdf, &rs, num, "/MediaBox")
	importer.UseImportedTemplate(pdf, tpl, 0, 0, page.Width, page.Height)
}
