package summary

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uwcli/pkg/contracts/domain"
)

func testRuleResult() *domain.RuleResult {
	return &domain.RuleResult{
		GrossPotentialIncome: 1_000_000,
		OtherIncome:          20_000,
		EffectiveGrossIncome: 970_000,
		Adjustments: []domain.Adjustment{
			{Category: domain.CategoryVacancyLoss, Label: "Vacancy Loss", Actual: 30_000, Adjusted: 50_000, Note: "floored at 5.0% of GPI"},
			{Category: domain.CategoryPropertyTaxes, Label: "Property Taxes", Actual: 80_000, Adjusted: 86_000, Note: "refinance uplift"},
			{Category: domain.CategoryInsurance, Label: "Insurance", Actual: 20_000, Adjusted: 21_000.337, Note: "increased by 5%"},
			{Category: domain.CategoryManagementFee, Label: "Management Fee", Actual: 30_000, Adjusted: 38_800, Note: "4% tier"},
		},
		TotalExpenses: 145_800.337,
		TotalNote:     "sum of adjusted expense lines",
	}
}

func TestAssembleOrdering(t *testing.T) {
	a := NewAssembler(nil)

	s, err := a.Assemble(context.Background(), testRuleResult())
	require.NoError(t, err)

	labels := make([]string, 0, len(s.Items))
	for _, item := range s.Items {
		labels = append(labels, item.Label)
	}
	assert.Equal(t, []string{
		"Gross Potential Income",
		"Vacancy Loss",
		"Other Income",
		"Effective Gross Income",
		"Property Taxes",
		"Insurance",
		"Management Fee",
		"Total Operating Expenses",
		"Net Operating Income",
	}, labels)
}

func TestAssembleNOIIdentity(t *testing.T) {
	a := NewAssembler(nil)

	s, err := a.Assemble(context.Background(), testRuleResult())
	require.NoError(t, err)

	// NOI must equal EGI minus the reported expense total exactly at display
	// precision, and the reported total must equal the rounded line sum.
	var lineSum float64
	for _, item := range s.Items {
		switch item.Label {
		case "Property Taxes", "Insurance", "Management Fee":
			lineSum += item.Amount
		}
	}
	assert.Equal(t, domain.RoundCurrency(lineSum), s.TotalOperatingExpenses)
	assert.Equal(t, domain.RoundCurrency(s.EffectiveGrossIncome-s.TotalOperatingExpenses), s.NetOperatingIncome)
}

func TestAssembleVacancyShownNegative(t *testing.T) {
	a := NewAssembler(nil)

	s, err := a.Assemble(context.Background(), testRuleResult())
	require.NoError(t, err)

	for _, item := range s.Items {
		if item.Label == "Vacancy Loss" {
			assert.InDelta(t, -50_000, item.Amount, 1e-9)
			return
		}
	}
	t.Fatal("no vacancy loss item")
}

func TestAssemblePercentages(t *testing.T) {
	a := NewAssembler(nil)

	s, err := a.Assemble(context.Background(), testRuleResult())
	require.NoError(t, err)

	for _, item := range s.Items {
		if item.Label == "Effective Gross Income" {
			assert.Equal(t, 100.0, item.PercentOfEGI)
		}
		if item.Label == "Property Taxes" {
			assert.InDelta(t, domain.RoundPercent(86_000.0/970_000*100), item.PercentOfEGI, 1e-9)
		}
	}
	assert.InDelta(t, domain.RoundPercent(s.TotalOperatingExpenses/970_000*100), s.ExpenseRatio, 1e-9)
}

func TestAssembleFloorTotalOverridesLineSum(t *testing.T) {
	a := NewAssembler(nil)

	result := testRuleResult()
	result.FloorApplied = true
	result.TotalExpenses = 271_600
	result.TotalNote = "28% minimum expense ratio applied"

	s, err := a.Assemble(context.Background(), result)
	require.NoError(t, err)

	assert.InDelta(t, 271_600, s.TotalOperatingExpenses, 1e-9)
	assert.Equal(t, domain.RoundCurrency(970_000-271_600), s.NetOperatingIncome)
}

func TestAssembleOneTimeItemsAsNotes(t *testing.T) {
	a := NewAssembler(nil)

	result := testRuleResult()
	result.OneTimeItems = []domain.OneTimeItem{
		{Label: "Roof Replacement", Amount: 40_000, Reason: "capital expenditure keyword \"roof\""},
	}

	s, err := a.Assemble(context.Background(), result)
	require.NoError(t, err)

	last := s.Items[len(s.Items)-1]
	assert.Equal(t, "Roof Replacement", last.Label)
	assert.Zero(t, last.Amount, "one-time items carry no amount in the summary")
	assert.Contains(t, last.Note, "excluded $40000")
}

func TestAssembleRequiresResult(t *testing.T) {
	a := NewAssembler(nil)

	_, err := a.Assemble(context.Background(), nil)
	assert.Error(t, err)
}
