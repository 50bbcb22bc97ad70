package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// TableKind identifies what a raw extracted table claims to be.
type TableKind string

const (
	TableKindRentRoll        TableKind = "rent_roll"
	TableKindIncomeStatement TableKind = "income_statement"
	TableKindUnknown         TableKind = "unknown"
)

// Cell is a single extracted cell value. Extraction engines emit strings,
// numbers, or nothing at all; everything is carried as text and the
// normalizers decide what each cell means.
type Cell string

// UnmarshalJSON accepts strings, JSON numbers, booleans, and null so that
// callers can post extraction output without pre-stringifying every cell.
func (c *Cell) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*c = ""
		return nil
	}
	if len(s) > 0 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*c = Cell(str)
		return nil
	}
	if s == "true" || s == "false" {
		*c = Cell(s)
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*c = Cell(strconv.FormatFloat(num, 'f', -1, 64))
	return nil
}

// String returns the trimmed cell text.
func (c Cell) String() string {
	return strings.TrimSpace(string(c))
}

// IsEmpty reports whether the cell holds no usable text.
func (c Cell) IsEmpty() bool {
	return c.String() == ""
}

// RawTable is one extracted table as handed over by the extraction
// collaborator: an ordered header row plus ordered data rows aligned to it.
// QualityScore is assigned upstream and is only used to pick among duplicate
// candidate tables before the pipeline runs.
type RawTable struct {
	DocumentID   string    `json:"document_id" validate:"required"`
	Kind         TableKind `json:"kind"`
	SourceSheet  string    `json:"source_sheet,omitempty"`
	Headers      []string  `json:"headers" validate:"required,min=1"`
	Rows         [][]Cell  `json:"rows"`
	QualityScore float64   `json:"quality_score,omitempty"`
}

// CellAt returns the cell in the given row under the given column index.
// Rows shorter than the header row read as empty cells.
func (t RawTable) CellAt(row, col int) Cell {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// IsEmpty reports whether the table has no data rows.
func (t RawTable) IsEmpty() bool {
	return len(t.Rows) == 0
}
