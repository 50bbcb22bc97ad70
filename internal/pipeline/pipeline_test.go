package pipeline

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "uwcli/internal/errors"
	"uwcli/pkg/contracts/domain"
)

func rawTable(documentID string, kind domain.TableKind, headers []string, rows [][]string) domain.RawTable {
	t := domain.RawTable{DocumentID: documentID, Kind: kind, Headers: headers}
	for _, row := range rows {
		cells := make([]domain.Cell, len(row))
		for i, v := range row {
			cells[i] = domain.Cell(v)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func testInput() Input {
	age := 15
	return Input{
		RentRoll: rawTable("rent-roll.xlsx", domain.TableKindRentRoll,
			[]string{"Unit", "Unit Type", "SqFt", "Status", "Rent", "Market Rent"},
			[][]string{
				{"101", "1BR", "650", "Occupied", "1,200", "1,250"},
				{"102", "1BR", "650", "Occupied", "1,180", "1,250"},
				{"103", "1BR", "650", "Vacant", "", "1,250"},
				{"201", "2BR", "900", "Occupied", "1,600", "1,700"},
			}),
		Statement: rawTable("t12.xlsx", domain.TableKindIncomeStatement,
			[]string{"Line Item", "Jan", "Feb", "Mar", "Apr", "May", "Jun"},
			[][]string{
				{"Rental Income", "5,100", "5,150", "5,100", "5,200", "5,150", "5,180"},
				{"Laundry Income", "200", "200", "200", "200", "200", "200"},
				{"Vacancy Loss", "(250)", "(250)", "(250)", "(250)", "(250)", "(250)"},
				{"Property Taxes", "(700)", "(700)", "(700)", "(700)", "(700)", "(700)"},
				{"Insurance", "(250)", "(250)", "(250)", "(250)", "(250)", "(250)"},
				{"Water", "(150)", "(150)", "(150)", "(150)", "(150)", "(150)"},
				{"NOI", "3,950", "4,000", "3,950", "4,050", "4,000", "4,030"},
				{"Depreciation", "(1,000)", "(1,000)", "(1,000)", "(1,000)", "(1,000)", "(1,000)"},
			}),
		Months: 6,
		Context: domain.PropertyContext{
			PropertyName:    "Maple Court",
			TransactionType: domain.TransactionAcquisition,
			PropertyAge:     &age,
		},
	}
}

func TestPipelineRun(t *testing.T) {
	p := New(nil, DefaultConfig())

	result, err := p.Run(context.Background(), testInput())
	require.NoError(t, err)

	require.NotNil(t, result.RentRoll)
	require.NotNil(t, result.Statement)
	require.NotNil(t, result.Trend)
	require.NotNil(t, result.Rules)
	require.NotNil(t, result.Summary)
	assert.Nil(t, result.Loan, "no loan constraints supplied")
	assert.NotEmpty(t, result.RunID)

	assert.Equal(t, 4, result.RentRoll.TotalUnits)
	assert.Equal(t, 6, result.Statement.Months)
	require.Len(t, result.Statement.MonthlyIncome, 6)

	// Stable series keeps the full window.
	assert.Equal(t, 6, result.Trend.WindowMonths)
	assert.False(t, result.Trend.HighVariance)

	// The summary closes the loop: NOI equals EGI minus total expenses.
	s := result.Summary
	assert.Equal(t, domain.RoundCurrency(s.EffectiveGrossIncome-s.TotalOperatingExpenses), s.NetOperatingIncome)
	assert.Greater(t, s.NetOperatingIncome, 0.0)

	assert.Equal(t, []string{"rent-roll.xlsx", "t12.xlsx"}, result.Flags.DocumentIDs)
}

func TestPipelineSizesLoanWhenRequested(t *testing.T) {
	p := New(nil, DefaultConfig())

	input := testInput()
	input.Loan = &domain.LoanConstraints{
		MaxLTV:       0.75,
		MinDSCR:      1.25,
		InterestRate: 0.065,
		AmortYears:   30,
		CapRate:      0.06,
	}

	result, err := p.Run(context.Background(), input)
	require.NoError(t, err)

	require.NotNil(t, result.Loan)
	assert.Equal(t, result.Summary.NetOperatingIncome, result.Loan.NOI)
	assert.Greater(t, result.Loan.MaxLoan, 0.0)
}

func TestPipelineDeterministic(t *testing.T) {
	p := New(nil, DefaultConfig())

	// Run identifiers and timestamps vary per run; every number must not.
	strip := func(r *Result) *Result {
		copied := *r
		copied.RunID = ""
		copied.Flags.RunID = ""
		copied.Flags.GeneratedAt = time.Time{}
		return &copied
	}

	first, err := p.Run(context.Background(), testInput())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		again, err := p.Run(context.Background(), testInput())
		require.NoError(t, err)

		a, err := json.Marshal(strip(first))
		require.NoError(t, err)
		b, err := json.Marshal(strip(again))
		require.NoError(t, err)
		assert.JSONEq(t, string(a), string(b), "identical inputs must produce identical output")
	}
}

func TestPipelineSchemaErrorPropagates(t *testing.T) {
	p := New(nil, DefaultConfig())

	input := testInput()
	// Remove the NOI row so the statement has no cut point.
	input.Statement.Rows = input.Statement.Rows[:6]

	_, err := p.Run(context.Background(), input)
	require.Error(t, err)

	schemaErr, ok := apperrors.AsSchemaError(err)
	require.True(t, ok)
	assert.Equal(t, "t12.xlsx", schemaErr.DocumentID)
}

func TestPipelineTrendFallbackWithoutMonthlyDetail(t *testing.T) {
	p := New(nil, DefaultConfig())

	input := testInput()
	// A statement with only an annual column yields no monthly series.
	input.Statement = rawTable("t12-annual.xlsx", domain.TableKindIncomeStatement,
		[]string{"Line Item", "Annual"},
		[][]string{
			{"Rental Income", "62,000"},
			{"Insurance", "(3,000)"},
			{"NOI", "59,000"},
		})
	input.Months = 12

	result, err := p.Run(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 12, result.Trend.WindowMonths)
	assert.Contains(t, result.Trend.Rationale, "monthly income detail unavailable")
}

func TestPipelineCollectsFlags(t *testing.T) {
	p := New(nil, DefaultConfig())

	input := testInput()
	// Insert a row with an unparsable rent.
	input.RentRoll.Rows = append(input.RentRoll.Rows,
		[]domain.Cell{"202", "2BR", "900", "Occupied", "TBD", "1,700"})

	result, err := p.Run(context.Background(), input)
	require.NoError(t, err)

	assert.Positive(t, result.Flags.Count())
	found := false
	for _, f := range result.Flags.Flags {
		if f.Code == domain.FlagUnparsableValue && f.Subject == "202" {
			found = true
		}
	}
	assert.True(t, found, "row-level flags must surface in the run report")
}
