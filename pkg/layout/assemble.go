package layout

import (
	"sort"
	"strings"
)

// Assembler turns a validated row into one delimited output line
type Assembler struct {
	Catalog   Catalog
	Columns   Columns // Optional; nil means text heuristics only
	Separator string  // Field separator, "," when empty
}

// cell is a field being accumulated
type cell struct {
	parts []string
	last  *TextFragment
}

func (c *cell) text() string {
	return strings.Join(c.parts, " ")
}

// piece is a fragment with its noise stripped
type piece struct {
	raw  string
	text string
	frag *TextFragment
}

// Assemble sorts the row left to right, normalizes each fragment and joins
// the results into fields. Adjacent fragments that together spell a catalog
// name form a single field holding the canonical name. Other neighbours share
// a field when the column geometry puts them in the same interval, or,
// without geometry for either of them, when neither the line so far nor the
// new text is an integer.
func (a Assembler) Assemble(row *Row) string {
	ordered := make([]*TextFragment, len(row.Values))
	copy(ordered, row.Values)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].LowerLeft.X < ordered[j].LowerLeft.X
	})

	pieces := make([]piece, 0, len(ordered))
	for _, f := range ordered {
		raw := strings.TrimSpace(StripNoise(f.Text))
		if raw == "" {
			continue
		}
		pieces = append(pieces, piece{raw: raw, text: a.normalize(raw), frag: f})
	}

	separator := a.Separator
	if separator == "" {
		separator = ","
	}

	nameStart, nameEnd, name := a.entityRun(pieces)

	var fields []*cell
	for i := 0; i < len(pieces); i++ {
		p := pieces[i]
		if i == nameStart {
			fields = append(fields, &cell{parts: []string{name}, last: pieces[nameEnd-1].frag})
			i = nameEnd - 1
			continue
		}

		if len(fields) == 0 {
			fields = append(fields, &cell{parts: []string{p.text}, last: p.frag})
			continue
		}

		current := fields[len(fields)-1]
		if a.sameCell(current, p.frag, joinCells(fields, separator), p.text) {
			current.parts = append(current.parts, p.text)
			current.last = p.frag
			continue
		}
		fields = append(fields, &cell{parts: []string{p.text}, last: p.frag})
	}

	return joinCells(fields, separator)
}

func joinCells(fields []*cell, separator string) string {
	out := make([]string, 0, len(fields))
	for _, c := range fields {
		out = append(out, c.text())
	}
	return strings.Join(out, separator)
}

// normalize rewrites a known misread to the canonical name
func (a Assembler) normalize(text string) string {
	if a.Catalog == nil {
		return text
	}
	if corrected, ok := a.Catalog.Correct(NormalizeName(text)); ok {
		return corrected
	}
	return text
}

// entityRun finds the first run of two or more adjacent pieces that spells a
// canonical name or a known misread, longest run first. It returns the run
// as [start, end) with the canonical name, or start -1 when none matches.
func (a Assembler) entityRun(pieces []piece) (int, int, string) {
	if a.Catalog == nil {
		return -1, -1, ""
	}
	maxWords := a.Catalog.MaxWords()
	for start := range pieces {
		for end := min(len(pieces), start+maxWords); end-start >= 2; end-- {
			run := pieces[start:end]
			if name, ok := a.lookup(run, func(p piece) string { return p.raw }); ok {
				return start, end, name
			}
			if name, ok := a.lookup(run, func(p piece) string { return p.text }); ok {
				return start, end, name
			}
		}
	}
	return -1, -1, ""
}

func (a Assembler) lookup(run []piece, text func(piece) string) (string, bool) {
	parts := make([]string, len(run))
	for i, p := range run {
		parts[i] = text(p)
	}
	name := NormalizeName(strings.Join(parts, " "))
	if a.Catalog.IsCanonical(name) {
		return name, true
	}
	if corrected, ok := a.Catalog.Correct(name); ok && a.Catalog.IsCanonical(corrected) {
		return corrected, true
	}
	return "", false
}

func (a Assembler) sameCell(current *cell, next *TextFragment, line, text string) bool {
	if len(a.Columns) > 0 {
		previousColumn := a.Columns.Locate(current.last.LowerLeft.X)
		nextColumn := a.Columns.Locate(next.LowerLeft.X)
		if previousColumn > 0 && nextColumn > 0 {
			return previousColumn == nextColumn
		}
	}
	return !IsInteger(line) && !IsInteger(text)
}
