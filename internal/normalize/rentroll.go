package normalize

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"uwcli/pkg/contracts/domain"

	apperrors "uwcli/internal/errors"
)

// RentRollConfig holds the rent roll normalizer thresholds.
type RentRollConfig struct {
	// UnderpricedThreshold flags units renting this fraction (or more) below
	// the average for their unit type. 0.30 flags units 30%+ under average.
	UnderpricedThreshold float64 `json:"underpriced_threshold"`
}

// DefaultRentRollConfig returns the standard normalizer configuration.
func DefaultRentRollConfig() RentRollConfig {
	return RentRollConfig{
		UnderpricedThreshold: 0.30,
	}
}

// RentRollNormalizer maps heterogeneous extracted rent roll tables onto the
// canonical schema. Missing or unparsable values are flagged, never dropped;
// the only fatal condition is a table with zero parsable unit rows.
type RentRollNormalizer struct {
	logger *slog.Logger
	config RentRollConfig
}

// NewRentRollNormalizer creates a rent roll normalizer.
func NewRentRollNormalizer(logger *slog.Logger, config RentRollConfig) *RentRollNormalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &RentRollNormalizer{logger: logger, config: config}
}

// Normalize converts one raw extracted table into a canonical RentRoll.
func (n *RentRollNormalizer) Normalize(ctx context.Context, table domain.RawTable) (*domain.RentRoll, error) {
	cm := MapRentRollColumns(table.Headers)

	n.logger.InfoContext(ctx, "normalizing rent roll",
		"document_id", table.DocumentID,
		"raw_rows", len(table.Rows),
		"mapped_columns", len(cm.Fields),
		"unmatched_columns", len(cm.Unmatched),
	)

	roll := &domain.RentRoll{DocumentID: table.DocumentID}

	for _, col := range cm.Unmatched {
		roll.Flags = append(roll.Flags, domain.FieldFlag{
			Code:    domain.FlagUnmatchedColumn,
			Field:   table.Headers[col],
			Message: fmt.Sprintf("column %q did not match any canonical field; values preserved as notes", table.Headers[col]),
		})
	}

	for i := range table.Rows {
		row, ok := n.normalizeRow(table, cm, i)
		if !ok {
			continue
		}
		roll.Rows = append(roll.Rows, row)
	}

	if len(roll.Rows) == 0 {
		return nil, apperrors.NewSchemaError(table.DocumentID, "rent roll contains zero parsable unit rows")
	}

	n.aggregate(roll)
	n.analyzeUnitTypes(roll)

	n.logger.InfoContext(ctx, "rent roll normalized",
		"document_id", table.DocumentID,
		"units", roll.TotalUnits,
		"occupied", roll.OccupiedUnits,
		"monthly_income", roll.MonthlyIncome,
		"flags", len(roll.Flags),
	)

	return roll, nil
}

// normalizeRow maps one raw row onto a RentRollRow. The second return is
// false for rows that carry no unit data (blanks, repeated headers, totals).
func (n *RentRollNormalizer) normalizeRow(table domain.RawTable, cm ColumnMap, idx int) (domain.RentRollRow, bool) {
	cell := func(f Field) domain.Cell {
		col, ok := cm.Fields[f]
		if !ok {
			return ""
		}
		return table.CellAt(idx, col)
	}

	// Skip rows with nothing in any mapped column.
	empty := true
	for _, col := range cm.Fields {
		if !table.CellAt(idx, col).IsEmpty() {
			empty = false
			break
		}
	}
	if empty {
		return domain.RentRollRow{}, false
	}

	unitID := cell(FieldUnitID).String()
	if unitID == "" || isSummaryLabel(unitID) {
		// Subtotal and repeated-header rows are not units.
		return domain.RentRollRow{}, false
	}

	row := domain.RentRollRow{
		UnitID:   unitID,
		UnitType: cell(FieldUnitType).String(),
		Tenant:   cell(FieldTenant).String(),
		Status:   ParseUnitStatus(cell(FieldStatus)),
	}

	flag := func(code domain.FlagCode, field, msg string) {
		row.Flags = append(row.Flags, domain.FieldFlag{Code: code, Field: field, Subject: unitID, Message: msg})
	}

	if c := cell(FieldSquareFeet); !c.IsEmpty() {
		if v, ok := ParseAmount(c); ok && v > 0 {
			row.SquareFeet = &v
		} else {
			flag(domain.FlagUnparsableValue, "square_feet", fmt.Sprintf("unit %s: square footage %q is not numeric", unitID, c.String()))
		}
	} else {
		flag(domain.FlagMissingSquareFootage, "square_feet", fmt.Sprintf("unit %s: square footage missing", unitID))
	}

	if c := cell(FieldCurrent); !c.IsEmpty() {
		if v, ok := ParseAmount(c); ok && v >= 0 {
			row.CurrentRent = &v
		} else {
			flag(domain.FlagUnparsableValue, "current_rent", fmt.Sprintf("unit %s: rent %q is not numeric", unitID, c.String()))
		}
	} else if row.Status != domain.UnitStatusVacant {
		flag(domain.FlagMissingRent, "current_rent", fmt.Sprintf("unit %s: current rent missing", unitID))
	}

	if c := cell(FieldMarket); !c.IsEmpty() {
		if v, ok := ParseAmount(c); ok && v >= 0 {
			row.MarketRent = &v
		} else {
			flag(domain.FlagUnparsableValue, "market_rent", fmt.Sprintf("unit %s: market rent %q is not numeric", unitID, c.String()))
		}
	} else if row.Status == domain.UnitStatusVacant {
		// Vacant units project income from market rent; its absence matters.
		flag(domain.FlagMissingMarketRent, "market_rent", fmt.Sprintf("unit %s: vacant with no market rent", unitID))
	}

	if c := cell(FieldDeposit); !c.IsEmpty() {
		if v, ok := ParseAmount(c); ok && v >= 0 {
			row.SecurityDeposit = &v
		} else {
			flag(domain.FlagUnparsableValue, "security_deposit", fmt.Sprintf("unit %s: deposit %q is not numeric", unitID, c.String()))
		}
	}

	if c := cell(FieldLeaseStart); !c.IsEmpty() {
		if d, ok := ParseDate(c); ok {
			row.LeaseStart = &d
		} else {
			flag(domain.FlagUnparsableValue, "lease_start", fmt.Sprintf("unit %s: lease start %q is not a date", unitID, c.String()))
		}
	}
	if c := cell(FieldLeaseEnd); !c.IsEmpty() {
		if d, ok := ParseDate(c); ok {
			row.LeaseEnd = &d
		} else {
			flag(domain.FlagUnparsableValue, "lease_end", fmt.Sprintf("unit %s: lease end %q is not a date", unitID, c.String()))
		}
	}

	if c := cell(FieldNotes); !c.IsEmpty() {
		row.Notes = append(row.Notes, c.String())
	}

	// No status column: a unit with rent in place reads as occupied.
	if row.Status == domain.UnitStatusUnknown && !cm.Has(FieldStatus) {
		if row.CurrentRent != nil && *row.CurrentRent > 0 {
			row.Status = domain.UnitStatusOccupied
		} else {
			row.Status = domain.UnitStatusVacant
		}
	}

	// Unmatched columns are preserved on the row, never silently dropped.
	for _, col := range cm.Unmatched {
		if c := table.CellAt(idx, col); !c.IsEmpty() {
			row.Notes = append(row.Notes, fmt.Sprintf("%s: %s", table.Headers[col], c.String()))
		}
	}

	return row, true
}

// aggregate computes occupancy counts and projected income totals.
func (n *RentRollNormalizer) aggregate(roll *domain.RentRoll) {
	roll.TotalUnits = len(roll.Rows)
	for _, row := range roll.Rows {
		if row.IsOccupied() {
			roll.OccupiedUnits++
		}
		roll.MonthlyIncome += row.ProjectedMonthlyRent()
	}
	roll.VacantUnits = roll.TotalUnits - roll.OccupiedUnits
	roll.AnnualIncome = roll.MonthlyIncome * 12
}

// analyzeUnitTypes builds per-type rent and occupancy statistics and flags
// units renting well below the average for their type.
func (n *RentRollNormalizer) analyzeUnitTypes(roll *domain.RentRoll) {
	byType := make(map[string][]domain.RentRollRow)
	for _, row := range roll.Rows {
		if row.UnitType == "" {
			continue
		}
		byType[row.UnitType] = append(byType[row.UnitType], row)
	}

	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)

	for _, t := range types {
		rows := byType[t]
		stats := domain.UnitTypeStats{UnitType: t, Units: len(rows)}

		var rentSum, sqftSum float64
		var rentCount, sqftCount int
		for _, row := range rows {
			if row.IsOccupied() {
				stats.Occupied++
			}
			if row.CurrentRent != nil && *row.CurrentRent > 0 {
				rentSum += *row.CurrentRent
				rentCount++
			}
			if row.SquareFeet != nil && *row.SquareFeet > 0 {
				sqftSum += *row.SquareFeet
				sqftCount++
			}
		}

		stats.VacancyRate = float64(stats.Units-stats.Occupied) / float64(stats.Units)
		if rentCount > 0 {
			stats.AvgRent = rentSum / float64(rentCount)
		}
		if sqftCount > 0 {
			stats.AvgSquareFeet = sqftSum / float64(sqftCount)
			if stats.AvgRent > 0 && stats.AvgSquareFeet > 0 {
				stats.RentPerSqFt = stats.AvgRent / stats.AvgSquareFeet
			}
		}
		roll.UnitTypes = append(roll.UnitTypes, stats)

		if stats.AvgRent <= 0 {
			continue
		}
		threshold := stats.AvgRent * (1 - n.config.UnderpricedThreshold)
		for _, row := range rows {
			if row.CurrentRent == nil || *row.CurrentRent <= 0 || *row.CurrentRent >= threshold {
				continue
			}
			under := (stats.AvgRent - *row.CurrentRent) / stats.AvgRent * 100
			roll.Flags = append(roll.Flags, domain.FieldFlag{
				Code:    domain.FlagUnderpricedUnit,
				Subject: row.UnitID,
				Message: fmt.Sprintf("unit %s (%s) rents %.0f%% under its type average of $%.0f", row.UnitID, t, under, stats.AvgRent),
			})
		}
	}
}

// isSummaryLabel reports whether a unit-column value is a subtotal or
// repeated header rather than a unit identifier.
func isSummaryLabel(s string) bool {
	l := strings.ToLower(s)
	return strings.Contains(l, "total") || strings.Contains(l, "average") ||
		strings.Contains(l, "summary") || l == "unit"
}
