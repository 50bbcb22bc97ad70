package domain

import "time"

// UnitStatus is the occupancy status of a rent roll unit.
type UnitStatus string

const (
	UnitStatusOccupied UnitStatus = "occupied"
	UnitStatusVacant   UnitStatus = "vacant"
	UnitStatusNotice   UnitStatus = "notice"
	UnitStatusModel    UnitStatus = "model" // model or down unit
	UnitStatusUnknown  UnitStatus = "unknown"
)

// RentRollRow is one unit from a normalized rent roll. Optional numeric
// fields are pointers; a nil value always has a matching FieldFlag rather
// than a silent zero.
type RentRollRow struct {
	UnitID          string      `json:"unit_id" validate:"required"`
	UnitType        string      `json:"unit_type,omitempty"`
	SquareFeet      *float64    `json:"square_feet,omitempty" validate:"omitempty,min=0"`
	CurrentRent     *float64    `json:"current_rent,omitempty" validate:"omitempty,min=0"`
	MarketRent      *float64    `json:"market_rent,omitempty" validate:"omitempty,min=0"`
	LeaseStart      *time.Time  `json:"lease_start,omitempty"`
	LeaseEnd        *time.Time  `json:"lease_end,omitempty"`
	Tenant          string      `json:"tenant,omitempty"`
	SecurityDeposit *float64    `json:"security_deposit,omitempty" validate:"omitempty,min=0"`
	Status          UnitStatus  `json:"status"`
	Notes           []string    `json:"notes,omitempty"`
	Flags           []FieldFlag `json:"flags,omitempty"`
}

// IsOccupied reports whether the unit counts as occupied for income purposes.
// Notice units still have a paying tenant in place.
func (r RentRollRow) IsOccupied() bool {
	return r.Status == UnitStatusOccupied || r.Status == UnitStatusNotice
}

// ProjectedMonthlyRent returns the rent used for income projections:
// current rent for occupied units, market rent for vacant ones.
func (r RentRollRow) ProjectedMonthlyRent() float64 {
	if r.IsOccupied() {
		if r.CurrentRent != nil {
			return *r.CurrentRent
		}
		return 0
	}
	if r.MarketRent != nil {
		return *r.MarketRent
	}
	return 0
}

// UnitTypeStats aggregates rent and occupancy for one unit type.
type UnitTypeStats struct {
	UnitType      string  `json:"unit_type"`
	Units         int     `json:"units" validate:"min=0"`
	Occupied      int     `json:"occupied" validate:"min=0"`
	VacancyRate   float64 `json:"vacancy_rate"`
	AvgRent       float64 `json:"avg_rent"`
	AvgSquareFeet float64 `json:"avg_square_feet,omitempty"`
	RentPerSqFt   float64 `json:"rent_per_sqft,omitempty"`
}

// RentRoll is the canonical output of the rent roll normalizer.
type RentRoll struct {
	DocumentID    string          `json:"document_id" validate:"required"`
	Rows          []RentRollRow   `json:"rows" validate:"dive"`
	TotalUnits    int             `json:"total_units" validate:"min=0"`
	OccupiedUnits int             `json:"occupied_units" validate:"min=0"`
	VacantUnits   int             `json:"vacant_units" validate:"min=0"`
	MonthlyIncome float64         `json:"monthly_income"`
	AnnualIncome  float64         `json:"annual_income"`
	UnitTypes     []UnitTypeStats `json:"unit_types,omitempty"`
	Flags         []FieldFlag     `json:"flags,omitempty"`
}

// OccupancyRate returns the fraction of units occupied, 0 when empty.
func (rr RentRoll) OccupancyRate() float64 {
	if rr.TotalUnits == 0 {
		return 0
	}
	return float64(rr.OccupiedUnits) / float64(rr.TotalUnits)
}
