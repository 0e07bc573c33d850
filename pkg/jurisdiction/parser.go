package jurisdiction

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gardar/ocrtable/pkg/layout"
)

// ErrSkipped is returned for lines that are valid table content but carry no
// district, such as a totals row
var ErrSkipped = errors.New("line skipped")

// Record is one district's counts from a bulletin table
type Record struct {
	District  string `json:"district"`
	Confirmed int    `json:"confirmed"`
	Recovered int    `json:"recovered"`
	Deceased  int    `json:"deceased"`
	Migrated  int    `json:"migrated,omitempty"`
}

// Parser converts one reconstructed line into a Record
type Parser interface {
	Parse(line string) (Record, error)
}

// positional reads fixed field positions from a comma separated line.
// Counts listed with more than one position are summed.
type positional struct {
	fields            int    // Exact number of fields expected
	name              int    // Field holding the district name
	confirmed         []int  // Fields summed into Confirmed
	recovered         []int  // Fields summed into Recovered
	deceased          []int  // Fields summed into Deceased; empty fields count as 0
	migrated          []int  // Fields summed into Migrated
	strip             string // Characters removed before splitting
	skipTotal         bool   // Lines mentioning "Total" are skipped
	rejectNumericName bool   // A numeric district field marks a header or serial column
}

var parsers = map[Code]Parser{
	AndhraPradesh: positional{
		fields: 6, name: 0,
		confirmed: []int{2}, recovered: []int{4}, deceased: []int{5},
		skipTotal: true,
	},
	ArunachalPradesh: positional{
		fields: 14, name: 0,
		confirmed: []int{5}, recovered: []int{12}, deceased: []int{13},
		skipTotal: true,
	},
	Jharkhand: positional{
		fields: 8, name: 0,
		confirmed: []int{4, 5}, recovered: []int{2, 6}, deceased: []int{3, 7},
	},
	Karnataka: positional{
		fields: 9, name: 0,
		confirmed: []int{2}, recovered: []int{4}, deceased: []int{7},
		strip: `"*#$`,
	},
	Maharashtra: positional{
		fields: 6, name: 0,
		confirmed: []int{1}, recovered: []int{2}, deceased: []int{3}, migrated: []int{4},
		skipTotal: true, rejectNumericName: true,
	},
	Meghalaya: positional{
		fields: 5, name: 0,
		confirmed: []int{1}, recovered: []int{3}, deceased: []int{4},
	},
	Punjab: positional{
		fields: 5, name: 0,
		confirmed: []int{1}, recovered: []int{3}, deceased: []int{4},
		skipTotal: true,
	},
	TamilNadu: positional{
		fields: 5, name: 0,
		confirmed: []int{1}, recovered: []int{2}, deceased: []int{4},
		strip: `"*#$`,
	},
	WestBengal: positional{
		fields: 4, name: 0,
		confirmed: []int{1}, recovered: []int{2}, deceased: []int{3},
	},
}

func (p positional) Parse(line string) (Record, error) {
	line = strings.TrimSpace(line)
	for _, r := range p.strip {
		line = strings.ReplaceAll(line, string(r), "")
	}
	// Anything after a pipe is a trailing annotation
	if i := strings.Index(line, "|"); i >= 0 {
		line = line[:i]
	}

	if p.skipTotal && strings.Contains(line, "Total") {
		return Record{}, ErrSkipped
	}

	fields := strings.Split(line, ",")
	if len(fields) != p.fields {
		return Record{}, fmt.Errorf("expected %d fields, got %d", p.fields, len(fields))
	}

	name := strings.TrimSpace(fields[p.name])
	if name == "" {
		return Record{}, errors.New("empty district name")
	}
	if p.rejectNumericName && layout.IsInteger(name) {
		return Record{}, fmt.Errorf("district field %q is numeric", name)
	}

	var err error
	r := Record{District: layout.TitleCase(name)}
	if r.Confirmed, err = sum(fields, p.confirmed, false); err != nil {
		return Record{}, fmt.Errorf("confirmed: %w", err)
	}
	if r.Recovered, err = sum(fields, p.recovered, false); err != nil {
		return Record{}, fmt.Errorf("recovered: %w", err)
	}
	if r.Deceased, err = sum(fields, p.deceased, true); err != nil {
		return Record{}, fmt.Errorf("deceased: %w", err)
	}
	if r.Migrated, err = sum(fields, p.migrated, false); err != nil {
		return Record{}, fmt.Errorf("migrated: %w", err)
	}
	return r, nil
}

func sum(fields []string, positions []int, emptyIsZero bool) (int, error) {
	total := 0
	for _, i := range positions {
		v := strings.TrimSpace(fields[i])
		if v == "" && emptyIsZero {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("field %d: %q is not a number", i+1, v)
		}
		total += n
	}
	return total, nil
}

// ParseLines parses every line with p. Skipped lines are dropped silently;
// unparsable lines are returned as warnings.
func ParseLines(p Parser, lines []string) ([]Record, []layout.MalformedInputWarning) {
	var records []Record
	var warnings []layout.MalformedInputWarning
	for _, line := range lines {
		r, err := p.Parse(line)
		if errors.Is(err, ErrSkipped) {
			continue
		}
		if err != nil {
			warnings = append(warnings, layout.MalformedInputWarning{Text: line, Reason: err.Error()})
			continue
		}
		records = append(records, r)
	}
	return records, warnings
}
