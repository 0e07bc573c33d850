package layout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_MisreadNameValidatesRow(t *testing.T) {
	cat := newCatalog([]string{"Bengaluru", "Tumkur"}, map[string]string{"Bangalore": "Bengaluru", "Tumakuru": "Tumkur"})
	rows := []*Row{
		rowOf(word("Bangalore", 5, 40, 50), word("100", 60, 20, 50), word("200", 90, 20, 50)),
		rowOf(word("Confirmed", 5, 40, 80), word("Cases", 60, 30, 80)),
	}

	valid, err := Validator{Catalog: cat}.Validate(rows)
	require.NoError(t, err)

	require.Len(t, valid, 1)
	assert.Same(t, rows[0], valid[0])
	assert.True(t, rows[0].Valid)
	assert.False(t, rows[1].Valid)
}

func TestValidate_IsIdempotent(t *testing.T) {
	cat := newCatalog([]string{"Kolkata", "Howrah"}, nil)
	rows := []*Row{
		rowOf(word("Kolkata", 5, 40, 50), word("12", 60, 20, 50)),
		rowOf(word("District", 5, 40, 30)),
		rowOf(word("HOWRAH#", 5, 40, 70), word("3", 60, 20, 70)),
	}
	v := Validator{Catalog: cat}

	first, err := v.Validate(rows)
	require.NoError(t, err)
	flags := []bool{rows[0].Valid, rows[1].Valid, rows[2].Valid}

	second, err := v.Validate(rows)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, flags, []bool{rows[0].Valid, rows[1].Valid, rows[2].Valid})
	assert.Equal(t, []bool{true, false, true}, flags)
}

func TestValidate_SplitMultiWordName(t *testing.T) {
	cat := newCatalog([]string{"Dakshin Dinajpur", "Kolkata"}, nil)

	// Out of reading order on purpose; the validator orders by x itself
	row := rowOf(word("Dinajpur", 50, 40, 50), word("Dakshin", 5, 40, 50), word("7", 120, 10, 50))

	valid, err := Validator{Catalog: cat}.Validate([]*Row{row})
	require.NoError(t, err)
	assert.Len(t, valid, 1)
}

func TestValidate_NoSubstringMatches(t *testing.T) {
	cat := newCatalog([]string{"Goa"}, nil)
	row := rowOf(word("Goalpara", 5, 40, 50), word("9", 60, 10, 50))

	valid, err := Validator{Catalog: cat}.Validate([]*Row{row})
	require.NoError(t, err)
	assert.Empty(t, valid)
	assert.False(t, row.Valid)
}

func TestValidate_WithoutCatalog(t *testing.T) {
	_, err := Validator{}.Validate([]*Row{rowOf(word("Kolkata", 5, 40, 50))})

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.ErrorIs(t, err, ErrCatalogNotLoaded)
}

func TestValidate_NormalizesNoiseAndComposition(t *testing.T) {
	cat := newCatalog([]string{"Kolkata", "Hooghly", "Purulia", "B\u00e9lgaum"}, nil)
	rows := []*Row{
		rowOf(word("*KOLKATA.", 5, 40, 50)),
		rowOf(word("hooghly#", 5, 40, 80)),
		rowOf(word("Purulia", 5, 40, 110)),
		rowOf(word("Puru lia", 5, 40, 140)),
		rowOf(word("Be\u0301lgaum", 5, 40, 170)),
	}

	valid, err := Validator{Catalog: cat}.Validate(rows)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, true, false, true},
		[]bool{rows[0].Valid, rows[1].Valid, rows[2].Valid, rows[3].Valid, rows[4].Valid})
	assert.Len(t, valid, 4)
}
