// Package hocr reads hOCR documents, the HTML-based format Tesseract and other
// engines use to report recognized words with their positions.
//
// Only what table reconstruction needs is kept: pages, the lines on them and
// each word's text, bounding box and confidence. Words are flattened per page
// with the id of the line they came from.
//
// Main Functions:
//
// - Parse, ParseFile: read an hOCR document, honouring its declared charset
// - ParseTitle: split an hOCR title attribute into properties
// - Page.Fragments: convert the words of a page into layout fragments
package hocr
