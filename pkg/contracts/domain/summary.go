package domain

import "math"

// SummaryLineItem is one ordered row of the underwritten income and expense
// summary. PercentOfEGI is expressed as a percentage (EGI itself is 100.0).
type SummaryLineItem struct {
	Label        string  `json:"label" validate:"required"`
	Amount       float64 `json:"amount"`
	PercentOfEGI float64 `json:"percent_of_egi"`
	Note         string  `json:"note,omitempty"`
}

// Summary is the final assembled output: GPI, vacancy loss, other income,
// EGI, each adjusted expense line, total operating expenses, and NOI, in
// that order. NOI is always recomputed from the assembled lines, never
// copied from a source document.
type Summary struct {
	Items                  []SummaryLineItem `json:"items" validate:"required,dive"`
	GrossPotentialIncome   float64           `json:"gross_potential_income"`
	EffectiveGrossIncome   float64           `json:"effective_gross_income"`
	TotalOperatingExpenses float64           `json:"total_operating_expenses"`
	NetOperatingIncome     float64           `json:"net_operating_income"`
	ExpenseRatio           float64           `json:"expense_ratio"` // total expenses / EGI
}

// Display precision: currency rounds to cents, percentages to one decimal.
const (
	CurrencyPrecision = 2
	PercentPrecision  = 1
)

// RoundCurrency rounds a dollar amount to the fixed display precision.
func RoundCurrency(v float64) float64 {
	return math.Round(v*100) / 100
}

// RoundPercent rounds a percentage to the fixed display precision.
func RoundPercent(v float64) float64 {
	return math.Round(v*10) / 10
}
