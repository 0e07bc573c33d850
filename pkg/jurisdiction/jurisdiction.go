// Package jurisdiction turns reconstructed table lines into district records.
//
// Every bulletin publisher lays out its district table differently, so each
// supported jurisdiction has a Parser that knows which field holds which
// count. Parsers are looked up by Code.
package jurisdiction

import (
	"fmt"
	"sort"
	"strings"
)

// Code identifies a jurisdiction with a table parser
type Code string

const (
	AndhraPradesh    Code = "ap"
	ArunachalPradesh Code = "ar"
	Jharkhand        Code = "jh"
	Karnataka        Code = "ka"
	Maharashtra      Code = "mh"
	Meghalaya        Code = "ml"
	Punjab           Code = "pb"
	TamilNadu        Code = "tn"
	WestBengal       Code = "wb"
)

// ParseCode accepts a code in any case, e.g. "KA"
func ParseCode(s string) (Code, error) {
	code := Code(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := parsers[code]; !ok {
		return "", fmt.Errorf("no table parser for jurisdiction %q", s)
	}
	return code, nil
}

// Codes returns every code with a parser, sorted
func Codes() []Code {
	codes := make([]Code, 0, len(parsers))
	for code := range parsers {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// String returns the lowercase code
func (c Code) String() string {
	return string(c)
}

// Parser returns the line parser for the jurisdiction
func (c Code) Parser() (Parser, error) {
	p, ok := parsers[c]
	if !ok {
		return nil, fmt.Errorf("no table parser for jurisdiction %q", string(c))
	}
	return p, nil
}
