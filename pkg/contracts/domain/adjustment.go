package domain

// Adjustment is one applied underwriting rule: the actual figure, the
// underwritten figure, and the note explaining the delta. A note is always
// present, including the explicit "no adjustment" case, so no rule
// application is silent.
type Adjustment struct {
	Category Category `json:"category" validate:"required"`
	Label    string   `json:"label" validate:"required"`
	Actual   float64  `json:"actual"`
	Adjusted float64  `json:"adjusted"`
	Note     string   `json:"note" validate:"required"`
}

// Delta returns the underwritten change relative to the actual figure.
func (a Adjustment) Delta() float64 {
	return a.Adjusted - a.Actual
}

// OneTimeItem is a raw expense reclassified out of recurring operating
// expenses (capital items, single-occurrence costs). It never feeds any
// NOI-affecting total and survives only as an audit note.
type OneTimeItem struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

// RuleResult is the full output of the expense rule engine. GPI, OtherIncome
// and EGI are the annualized figures the rules were applied against; EGI
// reflects the adjusted vacancy loss.
type RuleResult struct {
	Adjustments   []Adjustment  `json:"adjustments" validate:"dive"`
	OneTimeItems  []OneTimeItem `json:"one_time_items,omitempty"`
	TotalExpenses float64       `json:"total_expenses"`
	FloorApplied  bool          `json:"floor_applied"`
	TotalNote     string        `json:"total_note"`

	GrossPotentialIncome float64 `json:"gross_potential_income"`
	OtherIncome          float64 `json:"other_income"`
	EffectiveGrossIncome float64 `json:"effective_gross_income"`
}

// VacancyAdjustment returns the vacancy loss adjustment, if present.
func (r RuleResult) VacancyAdjustment() (Adjustment, bool) {
	for _, a := range r.Adjustments {
		if a.Category == CategoryVacancyLoss {
			return a, true
		}
	}
	return Adjustment{}, false
}

// ExpenseAdjustments returns the operating expense adjustments in rule
// order, excluding vacancy loss.
func (r RuleResult) ExpenseAdjustments() []Adjustment {
	var out []Adjustment
	for _, a := range r.Adjustments {
		if a.Category.IsOperatingExpense() {
			out = append(out, a)
		}
	}
	return out
}
