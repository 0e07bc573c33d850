package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssemble_MultiWordNameThenNumbers(t *testing.T) {
	row := rowOf(
		word("200", 140, 20, 50),
		word("Dakshin", 5, 40, 50),
		word("100", 100, 20, 50),
		word("Dinajpur", 50, 40, 50),
	)

	line := Assembler{Catalog: newCatalog([]string{"Dakshin Dinajpur"}, nil)}.Assemble(row)

	assert.Equal(t, "Dakshin Dinajpur,100,200", line)
}

func TestAssemble_RewritesMisreads(t *testing.T) {
	cat := newCatalog([]string{"Bengaluru"}, map[string]string{"Bangalore": "Bengaluru"})
	row := rowOf(word("Bangalore", 5, 40, 50), word("100", 60, 20, 50), word("200", 90, 20, 50))

	assert.Equal(t, "Bengaluru,100,200", Assembler{Catalog: cat}.Assemble(row))
}

func TestAssemble_StripsNoise(t *testing.T) {
	row := rowOf(
		word("Kolkata*", 5, 40, 50),
		word("1,234", 60, 30, 50),
		word("#", 95, 5, 50),
		word("56.", 110, 20, 50),
	)

	assert.Equal(t, "Kolkata,1234,56", Assembler{}.Assemble(row))
}

// Without geometry the integer test looks at the whole line so far, so text
// after a number joins the number's field rather than opening a new one.
// Positional parsers count fields, and they see the same counts this way.
func TestAssemble_TextAfterNumberJoinsField(t *testing.T) {
	row := rowOf(word("Kolkata", 5, 40, 50), word("100", 60, 20, 50), word("NA", 90, 20, 50), word("Nil", 120, 20, 50))

	assert.Equal(t, "Kolkata,100 NA Nil", Assembler{}.Assemble(row))
}

func TestAssemble_LeadingNumberOpensField(t *testing.T) {
	row := rowOf(word("1", 5, 10, 50), word("Kolkata", 20, 40, 50), word("100", 70, 20, 50))

	assert.Equal(t, "1,Kolkata,100", Assembler{}.Assemble(row))
}

func TestAssemble_SplitMisreadBecomesCanonical(t *testing.T) {
	cat := newCatalog(
		[]string{"Bengaluru Urban", "Dakshin Dinajpur"},
		map[string]string{"Bangalore Urban": "Bengaluru Urban", "South Dinajpur": "Dakshin Dinajpur"},
	)

	row := rowOf(word("Bangalore", 5, 40, 50), word("Urban", 50, 30, 50), word("100", 90, 20, 50), word("200", 120, 20, 50))
	assert.Equal(t, "Bengaluru Urban,100,200", Assembler{Catalog: cat}.Assemble(row))

	row = rowOf(word("1", 0, 4, 50), word("South*", 5, 40, 50), word("Dinajpur", 50, 40, 50), word("9", 100, 10, 50))
	assert.Equal(t, "1,Dakshin Dinajpur,9", Assembler{Catalog: cat}.Assemble(row))
}

func TestAssemble_NameWithNumberStaysTogether(t *testing.T) {
	cat := newCatalog([]string{"North 24 Parganas"}, nil)
	row := rowOf(
		word("North", 5, 30, 50), word("24", 40, 15, 50), word("Parganas", 60, 40, 50),
		word("10", 110, 15, 50), word("20", 130, 15, 50),
	)

	assert.Equal(t, "North 24 Parganas,10,20", Assembler{Catalog: cat}.Assemble(row))
	assert.Equal(t, "North,24 Parganas,10,20", Assembler{}.Assemble(row), "without a catalog only the numeric rule applies")
}

func TestAssemble_ColumnGeometry(t *testing.T) {
	columns := Columns{
		{Number: 1, LeftX: 0, RightX: 100},
		{Number: 2, LeftX: 100, RightX: 200},
		{Number: 3, LeftX: 200, RightX: 300},
	}
	row := rowOf(
		word("North", 5, 40, 50),
		word("Goa", 50, 30, 50),
		word("1", 110, 10, 50),
		word("200", 150, 20, 50),
		word("Active", 210, 40, 50),
	)

	line := Assembler{Columns: columns}.Assemble(row)

	// Numbers in the same ruled column are one cell; text in a new column is not
	assert.Equal(t, "North Goa,1 200,Active", line)
}

func TestAssemble_FallsBackOutsideGeometry(t *testing.T) {
	columns := Columns{{Number: 1, LeftX: 100, RightX: 200}}
	row := rowOf(
		word("Purba", 5, 40, 50),
		word("Bardhaman", 50, 40, 50),
		word("12", 120, 20, 50),
		word("13", 150, 20, 50),
		word("14", 250, 20, 50),
	)

	assert.Equal(t, "Purba Bardhaman,12 13,14", Assembler{Columns: columns}.Assemble(row))
}

func TestAssemble_CustomSeparator(t *testing.T) {
	row := rowOf(word("Kolkata", 5, 40, 50), word("100", 60, 20, 50))

	assert.Equal(t, "Kolkata|100", Assembler{Separator: "|"}.Assemble(row))
}
