package domain

// TrendDecision records which trailing window best represents recurring
// income. It is computed once from the monthly income series and never
// re-derived later in the pipeline; the Rationale string becomes an audit
// note downstream.
type TrendDecision struct {
	WindowMonths    int     `json:"window_months" validate:"required,min=2,max=12"`
	VolatilityScore float64 `json:"volatility_score" validate:"min=0"` // coefficient of variation
	HighVariance    bool    `json:"high_variance"`
	Rationale       string  `json:"rationale" validate:"required"`
}
