package rules

// AgeRate is a per-unit repairs & maintenance minimum for a property age
// band. MaxAge is inclusive; the last band should use a large sentinel.
type AgeRate struct {
	MinAge  int     `json:"min_age"`
	MaxAge  int     `json:"max_age"`
	PerUnit float64 `json:"per_unit"`
}

// FeeTier is a management fee tier: EGI below UpTo (exclusive) pays Rate.
// The last tier should use a large sentinel for UpTo.
type FeeTier struct {
	UpTo float64 `json:"up_to"`
	Rate float64 `json:"rate"`
}

// Params holds every fixed underwriting policy constant. The values are
// policy parameters, not inferred: a configuration layer can override any of
// them without touching the rule logic.
type Params struct {
	// VacancyFloorPct floors vacancy loss at this fraction of GPI.
	VacancyFloorPct float64 `json:"vacancy_floor_pct"`

	// RefiTaxUplift increases actual property taxes on refinance
	// transactions (0.075 = +7.5%).
	RefiTaxUplift float64 `json:"refi_tax_uplift"`

	// InsuranceUplift increases actual insurance (0.05 = +5%).
	InsuranceUplift float64 `json:"insurance_uplift"`

	// UtilityUplift increases spike-adjusted utilities (0.02 = +2%).
	UtilityUplift float64 `json:"utility_uplift"`

	// UtilitySpikeStdDevs excludes utility months beyond this many standard
	// deviations of the monthly series before annualizing.
	UtilitySpikeStdDevs float64 `json:"utility_spike_std_devs"`

	// RepairsAgeRates are the per-unit R&M minimums by property age.
	RepairsAgeRates []AgeRate `json:"repairs_age_rates"`

	// PayrollPerUnitMin and PayrollPerUnitCap band payroll per unit.
	PayrollPerUnitMin float64 `json:"payroll_per_unit_min"`
	PayrollPerUnitCap float64 `json:"payroll_per_unit_cap"`

	// AdminMinimum and AdminPerUnitCap band administrative expense.
	AdminMinimum    float64 `json:"admin_minimum"`
	AdminPerUnitCap float64 `json:"admin_per_unit_cap"`

	// ManagementTiers are the management fee tiers over EGI.
	ManagementTiers []FeeTier `json:"management_tiers"`

	// ReservePerUnit is the flat replacement reserve per unit.
	ReservePerUnit float64 `json:"reserve_per_unit"`

	// MinExpenseRatio floors total operating expenses at this fraction of
	// EGI (0.28 = 28%).
	MinExpenseRatio float64 `json:"min_expense_ratio"`

	// CapExKeywords mark a line as non-recurring regardless of its stated
	// category.
	CapExKeywords []string `json:"capex_keywords"`
}

// DefaultParams returns the standard underwriting rule constants.
func DefaultParams() Params {
	return Params{
		VacancyFloorPct:     0.05,
		RefiTaxUplift:       0.075,
		InsuranceUplift:     0.05,
		UtilityUplift:       0.02,
		UtilitySpikeStdDevs: 2.0,
		RepairsAgeRates: []AgeRate{
			{MinAge: 0, MaxAge: 10, PerUnit: 500},
			{MinAge: 11, MaxAge: 20, PerUnit: 750},
			{MinAge: 21, MaxAge: 1000, PerUnit: 1000},
		},
		PayrollPerUnitMin: 500,
		PayrollPerUnitCap: 1500,
		AdminMinimum:      1000,
		AdminPerUnitCap:   400,
		ManagementTiers: []FeeTier{
			{UpTo: 500_000, Rate: 0.05},
			{UpTo: 1_000_000, Rate: 0.04},
			{UpTo: 2_000_000, Rate: 0.03},
			{UpTo: 1e18, Rate: 0.025},
		},
		ReservePerUnit:  250,
		MinExpenseRatio: 0.28,
		CapExKeywords: []string{
			"flooring", "appliance", "roof", "hvac", "plumbing", "renovation",
		},
	}
}

// RepairsRate returns the per-unit R&M minimum for a property age, and
// whether an age band matched.
func (p Params) RepairsRate(age int) (float64, bool) {
	for _, band := range p.RepairsAgeRates {
		if age >= band.MinAge && age <= band.MaxAge {
			return band.PerUnit, true
		}
	}
	return 0, false
}

// ManagementRate returns the management fee rate for an EGI figure. Tier
// boundaries are inclusive on the upper side: an EGI of exactly $500,000
// falls into the second tier.
func (p Params) ManagementRate(egi float64) float64 {
	for _, tier := range p.ManagementTiers {
		if egi < tier.UpTo {
			return tier.Rate
		}
	}
	if len(p.ManagementTiers) == 0 {
		return 0
	}
	return p.ManagementTiers[len(p.ManagementTiers)-1].Rate
}
