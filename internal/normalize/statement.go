package normalize

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"uwcli/pkg/contracts/domain"

	apperrors "uwcli/internal/errors"
)

// categoryPattern maps a case-insensitive label substring to a canonical
// statement category. First match wins; compound patterns sit above the
// generic words they contain ("real estate tax" above "taxes").
type categoryPattern struct {
	pattern  string
	category domain.Category
}

var statementCategories = []categoryPattern{
	{"gross potential", domain.CategoryGrossPotentialIncome},
	{"effective gross", domain.CategoryEffectiveGrossIncome},
	{"vacancy", domain.CategoryVacancyLoss},
	{"loss to lease", domain.CategoryVacancyLoss},
	{"rental income", domain.CategoryRentalIncome},
	{"rent income", domain.CategoryRentalIncome},
	{"rental revenue", domain.CategoryRentalIncome},
	{"gross rent", domain.CategoryRentalIncome},
	{"scheduled rent", domain.CategoryRentalIncome},
	{"other income", domain.CategoryOtherIncome},
	{"misc income", domain.CategoryOtherIncome},
	{"miscellaneous income", domain.CategoryOtherIncome},
	{"ancillary", domain.CategoryOtherIncome},
	{"laundry", domain.CategoryOtherIncome},
	{"parking", domain.CategoryOtherIncome},
	{"pet rent", domain.CategoryOtherIncome},
	{"property tax", domain.CategoryPropertyTaxes},
	{"real estate tax", domain.CategoryPropertyTaxes},
	{"taxes", domain.CategoryPropertyTaxes},
	{"insurance", domain.CategoryInsurance},
	{"electric", domain.CategoryElectricity},
	{"water", domain.CategoryWater},
	{"sewer", domain.CategorySewer},
	{"trash", domain.CategoryTrash},
	{"garbage", domain.CategoryTrash},
	{"repair", domain.CategoryRepairsMaintenance},
	{"maintenance", domain.CategoryRepairsMaintenance},
	{"r&m", domain.CategoryRepairsMaintenance},
	{"turnover", domain.CategoryRepairsMaintenance},
	{"payroll", domain.CategoryPayroll},
	{"wages", domain.CategoryPayroll},
	{"salar", domain.CategoryPayroll},
	{"management", domain.CategoryManagementFee},
	{"mgmt", domain.CategoryManagementFee},
	{"admin", domain.CategoryAdminFees},
	{"professional", domain.CategoryAdminFees},
	{"legal", domain.CategoryAdminFees},
	{"office", domain.CategoryAdminFees},
	{"marketing", domain.CategoryAdminFees},
	{"advertising", domain.CategoryAdminFees},
	{"reserve", domain.CategoryReplacementReserves},
}

// MatchCategory infers the canonical category for a raw statement label,
// returning CategoryUnclassified when nothing in the vocabulary matches.
func MatchCategory(label string) domain.Category {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return domain.CategoryUnclassified
	}
	if IsNOILabel(l) {
		return domain.CategoryNetOperatingIncome
	}
	for _, cp := range statementCategories {
		if strings.Contains(l, cp.pattern) {
			return cp.category
		}
	}
	return domain.CategoryUnclassified
}

// IsNOILabel reports whether a label names the Net Operating Income line.
// "NOI" must match as a whole token so it cannot fire inside another word.
func IsNOILabel(label string) bool {
	l := strings.ToLower(strings.TrimSpace(label))
	if strings.Contains(l, "net operating income") {
		return true
	}
	for _, tok := range strings.FieldsFunc(l, func(r rune) bool {
		return r == ' ' || r == '(' || r == ')' || r == ':' || r == '-' || r == '/'
	}) {
		if tok == "noi" {
			return true
		}
	}
	return false
}

// StatementNormalizer maps raw trailing-period operating statements onto the
// canonical income statement, cutting everything positioned after the NOI
// row. A statement with no locatable NOI row is a schema error: without the
// cut point the rest of the pipeline cannot proceed.
type StatementNormalizer struct {
	logger *slog.Logger
}

// NewStatementNormalizer creates an income statement normalizer.
func NewStatementNormalizer(logger *slog.Logger) *StatementNormalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatementNormalizer{logger: logger}
}

// Normalize converts a raw operating statement table into a canonical
// IncomeStatement. months is the number of trailing months the statement
// covers (3–12).
func (n *StatementNormalizer) Normalize(ctx context.Context, table domain.RawTable, months int) (*domain.IncomeStatement, error) {
	if months < 1 || months > 12 {
		return nil, fmt.Errorf("invalid trailing month count %d: must be 1-12", months)
	}

	n.logger.InfoContext(ctx, "normalizing income statement",
		"document_id", table.DocumentID,
		"raw_rows", len(table.Rows),
		"months", months,
	)

	noiRow := -1
	for i := range table.Rows {
		if IsNOILabel(table.CellAt(i, 0).String()) {
			noiRow = i
			break
		}
	}
	if noiRow == -1 {
		return nil, apperrors.NewSchemaError(table.DocumentID, "no NOI row located: statement has no well-defined cut point")
	}

	stmt := &domain.IncomeStatement{
		DocumentID: table.DocumentID,
		Months:     months,
	}

	for i := range table.Rows {
		label := table.CellAt(i, 0).String()
		amounts, total := n.parseAmounts(table, i, months)

		if i > noiRow {
			if label == "" && len(amounts) == 0 {
				continue
			}
			stmt.Discarded = append(stmt.Discarded, domain.DiscardedLine{
				Label:    label,
				Reason:   "positioned after NOI; excluded from canonical statement",
				Amounts:  amounts,
				Total:    total,
				Position: i,
			})
			continue
		}

		if label == "" {
			continue
		}

		category := MatchCategory(label)
		switch category {
		case domain.CategoryNetOperatingIncome:
			// The stated NOI is never carried forward; it is recomputed by
			// the summary assembler from the adjusted lines.
			stmt.Discarded = append(stmt.Discarded, domain.DiscardedLine{
				Label:    label,
				Reason:   "stated NOI; recomputed downstream from adjusted lines",
				Amounts:  amounts,
				Total:    total,
				Position: i,
			})
			continue
		case domain.CategoryGrossPotentialIncome, domain.CategoryEffectiveGrossIncome:
			// Derived totals are recomputed from their components.
			stmt.Discarded = append(stmt.Discarded, domain.DiscardedLine{
				Label:    label,
				Reason:   "derived total; recomputed from component lines",
				Amounts:  amounts,
				Total:    total,
				Position: i,
			})
			continue
		}

		if len(amounts) == 0 {
			// Section headings carry no numbers.
			continue
		}

		line := domain.IncomeStatementLine{
			Category: category,
			Label:    label,
			Amounts:  amounts,
			Total:    total,
		}

		// Vacancy and expenses are often booked as negatives; canonical
		// amounts are magnitudes.
		if category == domain.CategoryVacancyLoss || category.IsOperatingExpense() {
			line.Total = math.Abs(line.Total)
			for j := range line.Amounts {
				line.Amounts[j] = math.Abs(line.Amounts[j])
			}
		}

		if category == domain.CategoryUnclassified {
			line.Flags = append(line.Flags, domain.FieldFlag{
				Code:    domain.FlagUnclassifiedLine,
				Subject: label,
				Message: fmt.Sprintf("line %q matched no canonical category; rule engine will treat it as non-recurring", label),
			})
		}

		stmt.Lines = append(stmt.Lines, line)
	}

	n.deriveTotals(stmt)

	if stmt.OtherIncome == 0 {
		stmt.Flags = append(stmt.Flags, domain.FieldFlag{
			Code:    domain.FlagMissingOtherIncome,
			Message: "no other income line found; confirm ancillary income with the borrower",
		})
	}

	n.logger.InfoContext(ctx, "income statement normalized",
		"document_id", table.DocumentID,
		"lines", len(stmt.Lines),
		"discarded", len(stmt.Discarded),
		"gpi", stmt.GrossPotentialIncome,
		"egi", stmt.EffectiveGrossIncome,
	)

	return stmt, nil
}

// parseAmounts reads the numeric cells of one row in order. When the row
// carries one extra trailing column beyond the month count it is taken as a
// stated annual total and dropped; period totals are always recomputed.
func (n *StatementNormalizer) parseAmounts(table domain.RawTable, row, months int) ([]float64, float64) {
	var amounts []float64
	for col := 1; col < len(table.Headers); col++ {
		if v, ok := ParseAmount(table.CellAt(row, col)); ok {
			amounts = append(amounts, v)
		}
	}

	if len(amounts) == months+1 {
		amounts = amounts[:months]
	} else if len(amounts) > months {
		amounts = amounts[:months]
	}

	var total float64
	for _, v := range amounts {
		total += v
	}
	return amounts, total
}

// deriveTotals enforces the canonical identities: GPI is the sum of rental
// income lines; EGI is GPI minus vacancy loss plus other income. It also
// builds the monthly income series consumed by the trend analyzer.
func (n *StatementNormalizer) deriveTotals(stmt *domain.IncomeStatement) {
	monthly := make([]float64, stmt.Months)

	// A statement with only period totals (an annual column, say) has no
	// monthly detail; emitting a padded series would fabricate a trend.
	haveMonthly := false
	for _, ln := range stmt.Lines {
		if ln.Category == domain.CategoryRentalIncome && len(ln.Amounts) == stmt.Months {
			haveMonthly = true
			break
		}
	}

	for _, ln := range stmt.Lines {
		switch ln.Category {
		case domain.CategoryRentalIncome:
			stmt.GrossPotentialIncome += ln.Total
		case domain.CategoryOtherIncome:
			stmt.OtherIncome += ln.Total
		case domain.CategoryVacancyLoss:
			stmt.VacancyLoss += ln.Total
		default:
			continue
		}
		for i, v := range ln.Amounts {
			if i >= len(monthly) {
				break
			}
			if ln.Category == domain.CategoryVacancyLoss {
				monthly[i] -= v
			} else {
				monthly[i] += v
			}
		}
	}

	stmt.EffectiveGrossIncome = stmt.GrossPotentialIncome - stmt.VacancyLoss + stmt.OtherIncome
	if haveMonthly {
		stmt.MonthlyIncome = monthly
	}
}
