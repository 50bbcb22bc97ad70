package domain

import "time"

// FlagCode classifies a non-fatal data quality finding.
type FlagCode string

const (
	FlagMissingSquareFootage FlagCode = "missing_square_footage"
	FlagMissingRent          FlagCode = "missing_rent"
	FlagMissingMarketRent    FlagCode = "missing_market_rent"
	FlagUnparsableValue      FlagCode = "unparsable_value"
	FlagMissingUnitID        FlagCode = "missing_unit_id"
	FlagUnderpricedUnit      FlagCode = "underpriced_unit"
	FlagUnmatchedColumn      FlagCode = "unmatched_column"
	FlagUnclassifiedLine     FlagCode = "unclassified_line"
	FlagMissingOtherIncome   FlagCode = "missing_other_income"
	FlagHighVariance         FlagCode = "high_variance"
)

// FieldFlag is a non-fatal data quality flag attached to a row or line.
// Flags never abort processing; the affected value is carried as null and
// the flag explains what was expected.
type FieldFlag struct {
	Code    FlagCode `json:"code" validate:"required"`
	Field   string   `json:"field,omitempty"`
	Subject string   `json:"subject,omitempty"` // unit ID or line label the flag refers to
	Message string   `json:"message" validate:"required"`
}

// FlagReport collects every non-fatal flag raised during one pipeline run so
// the surrounding system can present them in a single place.
type FlagReport struct {
	RunID       string      `json:"run_id"`
	DocumentIDs []string    `json:"document_ids,omitempty"`
	GeneratedAt time.Time   `json:"generated_at"`
	Flags       []FieldFlag `json:"flags"`
}

// Count returns the number of collected flags.
func (fr FlagReport) Count() int {
	return len(fr.Flags)
}

// ByCode returns the flags matching the given code, preserving order.
func (fr FlagReport) ByCode(code FlagCode) []FieldFlag {
	var out []FieldFlag
	for _, f := range fr.Flags {
		if f.Code == code {
			out = append(out, f)
		}
	}
	return out
}
