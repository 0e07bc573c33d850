// Package layout reconstructs table rows from positioned OCR text fragments.
//
// OCR providers return words with bounding polygons but no notion of rows or
// columns. This package groups those words back into the table they were read
// from and emits one comma-delimited line per data row, with the entity name
// (a district, for example) in the first field and the numeric cells after it.
//
// The pipeline has four stages:
//
// - Clusterer: sorts fragments top to bottom and groups them into rows by vertical overlap
// - Validator: keeps rows that contain a name from the entity catalog
// - BoundariesFromSegments: turns detected ruling lines into column intervals
// - Assembler: walks each row left to right and decides where cells start
//
// Reconstructor drives the stages in order and enforces that each one runs
// exactly once per image.
//
// Main Functions:
//
// - NewFragment / FragmentFromBox: build fragments from provider polygons or boxes
// - NewReconstructor: create a single-use reconstruction run
// - Reconstructor.Reconstruct: load the catalog and run every stage
// - BoundariesFromSegments: derive column intervals from line segments
package layout
