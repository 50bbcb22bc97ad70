package normalize

import (
	"strconv"
	"strings"
	"time"

	"uwcli/pkg/contracts/domain"
)

// ParseAmount parses a numeric cell tolerating currency symbols, thousands
// separators, percent signs, and accountant-style parenthesized negatives.
// The second return is false when the cell holds no parsable number; callers
// flag the value instead of failing the row.
func ParseAmount(cell domain.Cell) (float64, bool) {
	s := cell.String()
	if s == "" || s == "-" || s == "--" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.NewReplacer("$", "", ",", "", "%", "", " ", "").Replace(s)
	if s == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

// dateFormats covers the date spellings seen across extracted documents.
var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"2006/01/02",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02 15:04:05",
}

// ParseDate attempts to parse a date cell in multiple formats.
func ParseDate(cell domain.Cell) (time.Time, bool) {
	s := cell.String()
	if s == "" {
		return time.Time{}, false
	}
	for _, format := range dateFormats {
		if d, err := time.Parse(format, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// ParseUnitStatus maps free-text status cells onto the status enum.
func ParseUnitStatus(cell domain.Cell) domain.UnitStatus {
	s := strings.ToLower(cell.String())
	switch {
	case s == "":
		return domain.UnitStatusUnknown
	case strings.Contains(s, "vac") || strings.Contains(s, "empty"):
		return domain.UnitStatusVacant
	case strings.Contains(s, "notice"):
		return domain.UnitStatusNotice
	case strings.Contains(s, "model") || strings.Contains(s, "down") || strings.Contains(s, "employee"):
		return domain.UnitStatusModel
	case strings.Contains(s, "occ") || strings.Contains(s, "rented") || strings.Contains(s, "leased") || strings.Contains(s, "current"):
		return domain.UnitStatusOccupied
	default:
		return domain.UnitStatusUnknown
	}
}
