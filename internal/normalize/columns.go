package normalize

import "strings"

// Field identifies a canonical rent roll column.
type Field string

const (
	FieldUnitID     Field = "unit_id"
	FieldUnitType   Field = "unit_type"
	FieldSquareFeet Field = "square_feet"
	FieldCurrent    Field = "current_rent"
	FieldMarket     Field = "market_rent"
	FieldLeaseStart Field = "lease_start"
	FieldLeaseEnd   Field = "lease_end"
	FieldTenant     Field = "tenant"
	FieldDeposit    Field = "security_deposit"
	FieldStatus     Field = "status"
	FieldNotes      Field = "notes"
)

// headerPattern maps a case-insensitive header substring to a canonical
// field. The table is evaluated top to bottom and the first match wins, so
// compound headers ("unit type", "market rent", "lease start") must sit
// above the generic single words they contain.
type headerPattern struct {
	pattern string
	field   Field
}

var rentRollColumns = []headerPattern{
	{"unit type", FieldUnitType},
	{"floor plan", FieldUnitType},
	{"floorplan", FieldUnitType},
	{"market rent", FieldMarket},
	{"asking rent", FieldMarket},
	{"pro forma rent", FieldMarket},
	{"lease start", FieldLeaseStart},
	{"lease from", FieldLeaseStart},
	{"move in", FieldLeaseStart},
	{"move-in", FieldLeaseStart},
	{"start date", FieldLeaseStart},
	{"lease end", FieldLeaseEnd},
	{"lease exp", FieldLeaseEnd},
	{"lease to", FieldLeaseEnd},
	{"end date", FieldLeaseEnd},
	{"expiration", FieldLeaseEnd},
	{"move out", FieldLeaseEnd},
	{"move-out", FieldLeaseEnd},
	{"security deposit", FieldDeposit},
	{"deposit", FieldDeposit},
	{"square feet", FieldSquareFeet},
	{"square footage", FieldSquareFeet},
	{"sq ft", FieldSquareFeet},
	{"sq. ft", FieldSquareFeet},
	{"sqft", FieldSquareFeet},
	{"status", FieldStatus},
	{"occupancy", FieldStatus},
	{"occupied", FieldStatus},
	{"vacant", FieldStatus},
	{"tenant", FieldTenant},
	{"resident", FieldTenant},
	{"lessee", FieldTenant},
	{"notes", FieldNotes},
	{"comments", FieldNotes},
	{"remarks", FieldNotes},
	{"current rent", FieldCurrent},
	{"monthly rent", FieldCurrent},
	{"actual rent", FieldCurrent},
	{"lease rent", FieldCurrent},
	{"rent", FieldCurrent},
	{"bedroom", FieldUnitType},
	{"bed", FieldUnitType},
	{"type", FieldUnitType},
	{"unit number", FieldUnitID},
	{"unit no", FieldUnitID},
	{"unit #", FieldUnitID},
	{"unit", FieldUnitID},
	{"apartment", FieldUnitID},
	{"apt", FieldUnitID},
	{"name", FieldTenant},
	{"sf", FieldSquareFeet},
}

// ColumnMap is the result of matching raw headers onto canonical fields.
// Unmatched holds the column indexes that matched nothing; their values are
// preserved as row notes, never dropped.
type ColumnMap struct {
	Fields    map[Field]int
	Unmatched []int
}

// Has reports whether the canonical field was found in the header row.
func (cm ColumnMap) Has(f Field) bool {
	_, ok := cm.Fields[f]
	return ok
}

// MapRentRollColumns infers the closest canonical field for every header.
// Each canonical field binds to the first header that matches it; later
// duplicates fall through to the unmatched set.
func MapRentRollColumns(headers []string) ColumnMap {
	cm := ColumnMap{Fields: make(map[Field]int)}

	for i, header := range headers {
		h := strings.ToLower(strings.TrimSpace(header))
		if h == "" {
			cm.Unmatched = append(cm.Unmatched, i)
			continue
		}

		matched := false
		for _, hp := range rentRollColumns {
			if !strings.Contains(h, hp.pattern) {
				continue
			}
			if _, taken := cm.Fields[hp.field]; taken {
				continue
			}
			cm.Fields[hp.field] = i
			matched = true
			break
		}
		if !matched {
			cm.Unmatched = append(cm.Unmatched, i)
		}
	}

	return cm
}
