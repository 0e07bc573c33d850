package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardar/ocrtable/pkg/catalog"
	"github.com/gardar/ocrtable/pkg/tabulate"
)

func TestReadJobs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(
		"# morning bulletins\n"+
			`{"id":"wb-1","jurisdiction":"West Bengal","input":"wb.json"}`+"\n"+
			"\n"+
			`{"jurisdiction":"Karnataka","source":"hocr","input":"ka.html","page":2}`+"\n"), 0o644))

	jobs, err := readJobs(path)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "wb-1", jobs[0].ID)
	assert.Equal(t, tabulate.SourceDocumentAIJSON, jobs[0].Source, "source guessed from the extension")
	assert.Equal(t, tabulate.SourceHOCR, jobs[1].Source)
	assert.Equal(t, 2, jobs[1].Page)
}

func TestReadJobs_Errors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.jsonl")
	require.NoError(t, os.WriteFile(bad, []byte("{\n"), 0o644))
	_, err := readJobs(bad)
	assert.ErrorContains(t, err, "line 1")

	invalid := filepath.Join(dir, "invalid.jsonl")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"input":"wb.json"}`+"\n"), 0o644))
	_, err = readJobs(invalid)
	assert.ErrorContains(t, err, "jurisdiction is required")

	_, err = readJobs(filepath.Join(dir, "missing.jsonl"))
	assert.Error(t, err)
}

func TestImageExtension(t *testing.T) {
	assert.Equal(t, ".jpg", imageExtension("image/jpeg"))
	assert.Equal(t, ".tiff", imageExtension("image/tiff"))
	assert.Equal(t, ".png", imageExtension("image/png"))
	assert.Equal(t, ".png", imageExtension(""))
}

func TestJurisdictionLine(t *testing.T) {
	tables := catalog.Default()

	wb := jurisdictionLine(tables, "West Bengal")
	assert.Contains(t, wb, "WB")
	assert.Contains(t, wb, "districts")
	assert.Contains(t, wb, "records")

	tn := jurisdictionLine(tables, "Tamil Nadu")
	assert.Contains(t, tn, "no table")
	assert.Contains(t, tn, "records", "parser exists, table comes from a reference dir")
}
