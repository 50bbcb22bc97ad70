package domain

// Category is the fixed controlled vocabulary for income statement lines.
type Category string

const (
	CategoryRentalIncome         Category = "rental_income"
	CategoryOtherIncome          Category = "other_income"
	CategoryVacancyLoss          Category = "vacancy_loss"
	CategoryGrossPotentialIncome Category = "gross_potential_income"
	CategoryEffectiveGrossIncome Category = "effective_gross_income"
	CategoryNetOperatingIncome   Category = "net_operating_income"

	CategoryPropertyTaxes       Category = "property_taxes"
	CategoryInsurance           Category = "insurance"
	CategoryElectricity         Category = "electricity"
	CategoryWater               Category = "water"
	CategorySewer               Category = "sewer"
	CategoryTrash               Category = "trash"
	CategoryRepairsMaintenance  Category = "repairs_maintenance"
	CategoryPayroll             Category = "payroll"
	CategoryAdminFees           Category = "admin_fees"
	CategoryManagementFee       Category = "management_fee"
	CategoryReplacementReserves Category = "replacement_reserves"

	CategoryUnclassified Category = "unclassified"
)

// IsIncome reports whether the category sits on the income side.
func (c Category) IsIncome() bool {
	switch c {
	case CategoryRentalIncome, CategoryOtherIncome,
		CategoryGrossPotentialIncome, CategoryEffectiveGrossIncome:
		return true
	}
	return false
}

// IsOperatingExpense reports whether the category is a recurring operating
// expense line.
func (c Category) IsOperatingExpense() bool {
	switch c {
	case CategoryPropertyTaxes, CategoryInsurance,
		CategoryElectricity, CategoryWater, CategorySewer, CategoryTrash,
		CategoryRepairsMaintenance, CategoryPayroll, CategoryAdminFees,
		CategoryManagementFee, CategoryReplacementReserves:
		return true
	}
	return false
}

// IsUtility reports whether the category is one of the utility splits.
func (c Category) IsUtility() bool {
	switch c {
	case CategoryElectricity, CategoryWater, CategorySewer, CategoryTrash:
		return true
	}
	return false
}

// IncomeStatementLine is one normalized line of a trailing operating
// statement. Amounts is the ordered monthly series aligned to the reporting
// period; Total is its sum.
type IncomeStatementLine struct {
	Category Category    `json:"category" validate:"required"`
	Label    string      `json:"label" validate:"required"` // original label as extracted
	Amounts  []float64   `json:"amounts,omitempty"`
	Total    float64     `json:"total"`
	Flags    []FieldFlag `json:"flags,omitempty"`
}

// DiscardedLine records a raw statement row that was removed from the
// canonical output together with the reason. Nothing is silently dropped.
type DiscardedLine struct {
	Label    string    `json:"label"`
	Reason   string    `json:"reason"`
	Amounts  []float64 `json:"amounts,omitempty"`
	Total    float64   `json:"total"`
	Position int       `json:"position"` // zero-based row index in the raw table
}

// IncomeStatement is the canonical output of the income statement
// normalizer, already cut at NOI.
type IncomeStatement struct {
	DocumentID string                `json:"document_id" validate:"required"`
	Months     int                   `json:"months" validate:"min=1,max=12"`
	Lines      []IncomeStatementLine `json:"lines" validate:"dive"`
	Discarded  []DiscardedLine       `json:"discarded,omitempty"`

	// MonthlyIncome is the ordered total income series used by the trend
	// analyzer, one entry per reporting month.
	MonthlyIncome []float64 `json:"monthly_income,omitempty"`

	GrossPotentialIncome float64     `json:"gross_potential_income"`
	VacancyLoss          float64     `json:"vacancy_loss"`
	OtherIncome          float64     `json:"other_income"`
	EffectiveGrossIncome float64     `json:"effective_gross_income"`
	Flags                []FieldFlag `json:"flags,omitempty"`
}

// LineTotal returns the first line total matching the category, and whether
// such a line exists.
func (s IncomeStatement) LineTotal(c Category) (float64, bool) {
	for _, ln := range s.Lines {
		if ln.Category == c {
			return ln.Total, true
		}
	}
	return 0, false
}

// ExpenseLines returns the recurring operating expense lines in order.
func (s IncomeStatement) ExpenseLines() []IncomeStatementLine {
	var out []IncomeStatementLine
	for _, ln := range s.Lines {
		if ln.Category.IsOperatingExpense() {
			out = append(out, ln)
		}
	}
	return out
}
