// Package summary assembles normalizer and rule engine outputs into the
// final ordered underwriting line items.
package summary

import (
	"context"
	"fmt"
	"log/slog"

	"uwcli/pkg/contracts/domain"
)

// Assembler combines the rule engine output into the ordered summary:
// GPI, Vacancy Loss, Other Income, EGI, each adjusted expense line, Total
// Operating Expenses, NOI. NOI is always recomputed as EGI minus total
// operating expenses from the assembled lines, never copied from a source
// document.
type Assembler struct {
	logger *slog.Logger
}

// NewAssembler creates a summary assembler.
func NewAssembler(logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{logger: logger}
}

// Assemble builds the final summary from a rule engine result.
func (a *Assembler) Assemble(ctx context.Context, result *domain.RuleResult) (*domain.Summary, error) {
	if result == nil {
		return nil, fmt.Errorf("rule result is required")
	}

	egi := domain.RoundCurrency(result.EffectiveGrossIncome)
	s := &domain.Summary{
		GrossPotentialIncome: domain.RoundCurrency(result.GrossPotentialIncome),
		EffectiveGrossIncome: egi,
	}

	pct := func(amount float64) float64 {
		if egi == 0 {
			return 0
		}
		return domain.RoundPercent(amount / egi * 100)
	}

	add := func(label string, amount float64, note string) float64 {
		amount = domain.RoundCurrency(amount)
		s.Items = append(s.Items, domain.SummaryLineItem{
			Label:        label,
			Amount:       amount,
			PercentOfEGI: pct(amount),
			Note:         note,
		})
		return amount
	}

	add("Gross Potential Income", result.GrossPotentialIncome, "")

	if vac, ok := result.VacancyAdjustment(); ok {
		add(vac.Label, -vac.Adjusted, vac.Note)
	}
	add("Other Income", result.OtherIncome, "")

	s.Items = append(s.Items, domain.SummaryLineItem{
		Label:        "Effective Gross Income",
		Amount:       egi,
		PercentOfEGI: 100.0,
	})

	// Expense lines round individually; the reported total must equal the
	// rounded line sum exactly unless the ratio floor binds, so the
	// EGI - total = NOI identity holds at display precision.
	var expenseSum float64
	for _, adj := range result.ExpenseAdjustments() {
		expenseSum += add(adj.Label, adj.Adjusted, adj.Note)
	}

	total := domain.RoundCurrency(expenseSum)
	if result.FloorApplied {
		total = domain.RoundCurrency(result.TotalExpenses)
	}
	s.TotalOperatingExpenses = total
	s.Items = append(s.Items, domain.SummaryLineItem{
		Label:        "Total Operating Expenses",
		Amount:       total,
		PercentOfEGI: pct(total),
		Note:         result.TotalNote,
	})

	noi := domain.RoundCurrency(egi - total)
	s.NetOperatingIncome = noi
	s.Items = append(s.Items, domain.SummaryLineItem{
		Label:        "Net Operating Income",
		Amount:       noi,
		PercentOfEGI: pct(noi),
		Note:         "recomputed as EGI less total operating expenses",
	})

	if egi != 0 {
		s.ExpenseRatio = domain.RoundPercent(total / egi * 100)
	}

	for _, item := range result.OneTimeItems {
		s.Items = append(s.Items, domain.SummaryLineItem{
			Label:        item.Label,
			Amount:       0,
			PercentOfEGI: 0,
			Note:         fmt.Sprintf("%s (excluded $%.0f)", item.Reason, item.Amount),
		})
	}

	a.logger.InfoContext(ctx, "summary assembled",
		"items", len(s.Items),
		"egi", egi,
		"total_expenses", total,
		"noi", noi,
	)

	return s, nil
}
