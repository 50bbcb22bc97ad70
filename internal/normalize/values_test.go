package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"uwcli/pkg/contracts/domain"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		cell domain.Cell
		want float64
		ok   bool
	}{
		{"plain integer", "1250", 1250, true},
		{"decimal", "1250.50", 1250.50, true},
		{"currency symbol", "$1,250", 1250, true},
		{"thousands separators", "1,234,567.89", 1234567.89, true},
		{"parenthesized negative", "(4,200)", -4200, true},
		{"parenthesized with currency", "($4,200.00)", -4200, true},
		{"percent sign stripped", "5.5%", 5.5, true},
		{"leading minus", "-300", -300, true},
		{"internal spaces", "$ 1 250", 1250, true},
		{"empty", "", 0, false},
		{"dash placeholder", "-", 0, false},
		{"double dash placeholder", "--", 0, false},
		{"text", "n/a", 0, false},
		{"mixed garbage", "call for pricing", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.cell)

			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		cell domain.Cell
		want time.Time
		ok   bool
	}{
		{"iso", "2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"us slashes", "03/15/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"short year", "03/15/24", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"month name", "Mar 15, 2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"not a date", "month to month", time.Time{}, false},
		{"empty", "", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.cell)

			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
			}
		})
	}
}

func TestParseUnitStatus(t *testing.T) {
	tests := []struct {
		cell domain.Cell
		want domain.UnitStatus
	}{
		{"Occupied", domain.UnitStatusOccupied},
		{"OCC", domain.UnitStatusOccupied},
		{"Current", domain.UnitStatusOccupied},
		{"Leased", domain.UnitStatusOccupied},
		{"Vacant", domain.UnitStatusVacant},
		{"VAC-Unrented", domain.UnitStatusVacant},
		{"Notice", domain.UnitStatusNotice},
		{"Model", domain.UnitStatusModel},
		{"Employee Unit", domain.UnitStatusModel},
		{"", domain.UnitStatusUnknown},
		{"???", domain.UnitStatusUnknown},
	}

	for _, tt := range tests {
		t.Run(string(tt.cell), func(t *testing.T) {
			assert.Equal(t, tt.want, ParseUnitStatus(tt.cell))
		})
	}
}
