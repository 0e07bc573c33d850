package tabulate

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gardar/ocrtable/pkg/jurisdiction"
)

// RecordHeader is the header row of a records CSV
var RecordHeader = []string{"district", "confirmed", "recovered", "deceased", "migrated"}

// WriteLines writes one line per row
func WriteLines(w io.Writer, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// WriteLinesFile writes lines to path
func WriteLinesFile(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create lines file: %w", err)
	}
	if err := WriteLines(f, lines); err != nil {
		f.Close()
		return fmt.Errorf("failed to write lines: %w", err)
	}
	return f.Close()
}

// WriteRecords writes records as CSV with a header row
func WriteRecords(w io.Writer, records []jurisdiction.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RecordHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.District,
			strconv.Itoa(r.Confirmed),
			strconv.Itoa(r.Recovered),
			strconv.Itoa(r.Deceased),
			strconv.Itoa(r.Migrated),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRecordsFile writes records to path
func WriteRecordsFile(path string, records []jurisdiction.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create records file: %w", err)
	}
	if err := WriteRecords(f, records); err != nil {
		f.Close()
		return fmt.Errorf("failed to write records: %w", err)
	}
	return f.Close()
}
