package domain

// TransactionType distinguishes refinance transactions, which get the
// property tax uplift, from acquisitions and everything else.
type TransactionType string

const (
	TransactionRefinance   TransactionType = "refinance"
	TransactionAcquisition TransactionType = "acquisition"
	TransactionOther       TransactionType = "other"
)

// PropertyContext is the read-only transaction context supplied by the
// surrounding workflow. Unit count normally comes from the rent roll; the
// context value, when set, takes precedence (user-confirmed metadata).
type PropertyContext struct {
	PropertyName    string          `json:"property_name,omitempty"`
	TransactionType TransactionType `json:"transaction_type" validate:"required,oneof=refinance acquisition other"`
	PropertyAge     *int            `json:"property_age,omitempty" validate:"omitempty,min=0"`
	UnitCount       *int            `json:"unit_count,omitempty" validate:"omitempty,min=1"`
}

// IsRefinance reports whether the refinance-only rules apply.
func (pc PropertyContext) IsRefinance() bool {
	return pc.TransactionType == TransactionRefinance
}
