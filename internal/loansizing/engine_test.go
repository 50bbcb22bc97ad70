package loansizing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uwcli/pkg/contracts/domain"
)

func TestSizeAgencyLoan(t *testing.T) {
	e := NewEngine(nil)

	noi := 600_000.0
	constraints := AgencyConstraints(0.065)

	sizing, err := e.Size(context.Background(), noi, constraints)
	require.NoError(t, err)

	// Value at a 6% cap, LTV test at 75%.
	assert.InDelta(t, 10_000_000, sizing.PropertyValue, 1)
	assert.InDelta(t, 7_500_000, sizing.LTVLoan, 1)

	// Debt yield test: 600k / 8%.
	assert.InDelta(t, 7_500_000, sizing.DebtYieldLoan, 1)

	// DSCR test: 480k of debt service supports the PV of that payment
	// stream at 6.5% over 30 years.
	monthlyRate := 0.065 / 12
	pv := (480_000.0 / 12) * (1 - math.Pow(1+monthlyRate, -360)) / monthlyRate
	assert.InDelta(t, pv, sizing.DSCRLoan, 1)

	assert.Equal(t, "DSCR", sizing.BindingConstraint)
	assert.InDelta(t, sizing.DSCRLoan, sizing.MaxLoan, 1)

	// Reported metrics reflect the selected loan.
	assert.InDelta(t, 1.25, sizing.DSCR, 0.001)
	assert.GreaterOrEqual(t, sizing.DebtYield, 0.08)
	assert.LessOrEqual(t, sizing.LTV, 0.75)
}

func TestSizeBridgeLoanInterestOnly(t *testing.T) {
	e := NewEngine(nil)

	noi := 600_000.0
	constraints := BridgeConstraints(0.08)

	sizing, err := e.Size(context.Background(), noi, constraints)
	require.NoError(t, err)

	// IO DSCR loan: (600k / 0.95) / 0.08.
	assert.InDelta(t, 600_000/0.95/0.08, sizing.DSCRLoan, 1)
	assert.InDelta(t, 8_000_000, sizing.LTVLoan, 1)
	assert.Zero(t, sizing.DebtYieldLoan, "bridge sizing has no debt yield test")

	assert.Equal(t, "DSCR", sizing.BindingConstraint)
	assert.InDelta(t, sizing.MaxLoan*0.08, sizing.AnnualDebtService, 1)
}

func TestSizeLTVBoundWhenCoverageIsCheap(t *testing.T) {
	e := NewEngine(nil)

	// Low rate and generous coverage make LTV the governing test.
	constraints := domain.LoanConstraints{
		MaxLTV:       0.55,
		MinDSCR:      1.0,
		InterestRate: 0.03,
		AmortYears:   30,
		CapRate:      0.06,
	}

	sizing, err := e.Size(context.Background(), 600_000, constraints)
	require.NoError(t, err)

	assert.Equal(t, "LTV", sizing.BindingConstraint)
	assert.InDelta(t, 5_500_000, sizing.MaxLoan, 1)
}

func TestSizeRejectsBadInputs(t *testing.T) {
	e := NewEngine(nil)

	_, err := e.Size(context.Background(), 0, AgencyConstraints(0.065))
	assert.Error(t, err)

	_, err = e.Size(context.Background(), 600_000, domain.LoanConstraints{InterestRate: 0.065})
	assert.Error(t, err, "missing cap rate")

	_, err = e.Size(context.Background(), 600_000, domain.LoanConstraints{CapRate: 0.06})
	assert.Error(t, err, "missing interest rate")
}

func TestDebtServiceRoundTrips(t *testing.T) {
	e := NewEngine(nil)
	c := AgencyConstraints(0.0575)

	loan := e.loanFromDebtService(500_000, c)
	back := e.annualDebtService(loan, c)

	assert.InDelta(t, 500_000, back, 0.01)
}
