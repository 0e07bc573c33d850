package layout

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// noiseReplacer removes the punctuation OCR scatters over table cells
var noiseReplacer = strings.NewReplacer("*", "", ".", "", "#", "", ",", "")

// StripNoise removes OCR punctuation noise (* . # ,) from text
func StripNoise(text string) string {
	return noiseReplacer.Replace(text)
}

// TitleCase trims and title-cases text the way catalog keys are stored
func TitleCase(text string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(text))
}

// NormalizeName prepares fragment text for a catalog lookup: noise removed,
// composed to NFC, runs of whitespace collapsed and title-cased.
func NormalizeName(text string) string {
	text = norm.NFC.String(StripNoise(text))
	return TitleCase(strings.Join(strings.Fields(text), " "))
}

// IsInteger reports whether text parses as a base-10 integer
func IsInteger(text string) bool {
	_, err := strconv.Atoi(strings.TrimSpace(text))
	return err == nil
}
