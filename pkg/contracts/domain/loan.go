package domain

// LoanConstraints are the sizing limits applied to underwritten NOI.
// Rates and ratios are decimals (0.65 = 65% LTV).
type LoanConstraints struct {
	MaxLTV       float64 `json:"max_ltv" validate:"gt=0,lte=1"`
	MinDSCR      float64 `json:"min_dscr" validate:"gt=0"`
	MinDebtYield float64 `json:"min_debt_yield" validate:"min=0"`
	InterestRate float64 `json:"interest_rate" validate:"gt=0"`
	AmortYears   int     `json:"amort_years" validate:"min=0"`
	InterestOnly bool    `json:"interest_only"`
	CapRate      float64 `json:"cap_rate" validate:"gt=0"`
}

// LoanSizing is the output of the loan sizing engine: the maximum loan each
// constraint supports, the governing minimum, and the resulting metrics.
type LoanSizing struct {
	NOI               float64 `json:"noi"`
	PropertyValue     float64 `json:"property_value"`
	LTVLoan           float64 `json:"ltv_loan"`
	DSCRLoan          float64 `json:"dscr_loan"`
	DebtYieldLoan     float64 `json:"debt_yield_loan,omitempty"`
	MaxLoan           float64 `json:"max_loan"`
	BindingConstraint string  `json:"binding_constraint"`
	AnnualDebtService float64 `json:"annual_debt_service"`
	DSCR              float64 `json:"dscr"`
	DebtYield         float64 `json:"debt_yield"`
	LTV               float64 `json:"ltv"`
}
