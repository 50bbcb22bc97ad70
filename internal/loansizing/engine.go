// Package loansizing sizes a maximum supportable loan from underwritten NOI
// under LTV, DSCR, and debt yield constraints.
package loansizing

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"uwcli/pkg/contracts/domain"
)

// AgencyConstraints returns standard agency-style sizing constraints.
func AgencyConstraints(rate float64) domain.LoanConstraints {
	return domain.LoanConstraints{
		MaxLTV:       0.75,
		MinDSCR:      1.25,
		MinDebtYield: 0.08,
		InterestRate: rate,
		AmortYears:   30,
		CapRate:      0.06,
	}
}

// BridgeConstraints returns bridge-loan sizing constraints: higher leverage,
// lower coverage, interest-only payments, no debt yield test.
func BridgeConstraints(rate float64) domain.LoanConstraints {
	return domain.LoanConstraints{
		MaxLTV:       0.80,
		MinDSCR:      0.95,
		MinDebtYield: 0,
		InterestRate: rate,
		InterestOnly: true,
		CapRate:      0.06,
	}
}

// Engine computes loan sizing scenarios from underwritten NOI.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a loan sizing engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Size computes the maximum loan each constraint supports and reports the
// governing minimum. Value derives from NOI and the cap rate; the DSCR
// constraint converts the coverage-limited debt service budget into loan
// proceeds through the payment formula.
func (e *Engine) Size(ctx context.Context, noi float64, constraints domain.LoanConstraints) (*domain.LoanSizing, error) {
	if noi <= 0 {
		return nil, fmt.Errorf("loan sizing requires positive NOI, got %.2f", noi)
	}
	if constraints.CapRate <= 0 {
		return nil, fmt.Errorf("cap rate must be positive, got %.4f", constraints.CapRate)
	}
	if constraints.InterestRate <= 0 {
		return nil, fmt.Errorf("interest rate must be positive, got %.4f", constraints.InterestRate)
	}

	value := noi / constraints.CapRate

	sizing := &domain.LoanSizing{
		NOI:           noi,
		PropertyValue: value,
		LTVLoan:       value * constraints.MaxLTV,
	}

	maxDebtService := noi / constraints.MinDSCR
	sizing.DSCRLoan = e.loanFromDebtService(maxDebtService, constraints)

	sizing.MaxLoan = sizing.LTVLoan
	sizing.BindingConstraint = "LTV"
	if sizing.DSCRLoan < sizing.MaxLoan {
		sizing.MaxLoan = sizing.DSCRLoan
		sizing.BindingConstraint = "DSCR"
	}
	if constraints.MinDebtYield > 0 {
		sizing.DebtYieldLoan = noi / constraints.MinDebtYield
		if sizing.DebtYieldLoan < sizing.MaxLoan {
			sizing.MaxLoan = sizing.DebtYieldLoan
			sizing.BindingConstraint = "Debt Yield"
		}
	}

	sizing.AnnualDebtService = e.annualDebtService(sizing.MaxLoan, constraints)
	if sizing.AnnualDebtService > 0 {
		sizing.DSCR = noi / sizing.AnnualDebtService
	}
	if sizing.MaxLoan > 0 {
		sizing.DebtYield = noi / sizing.MaxLoan
	}
	if value > 0 {
		sizing.LTV = sizing.MaxLoan / value
	}

	e.logger.InfoContext(ctx, "loan sized",
		"noi", noi,
		"property_value", value,
		"max_loan", sizing.MaxLoan,
		"binding_constraint", sizing.BindingConstraint,
	)

	return sizing, nil
}

// loanFromDebtService converts an annual debt service budget into loan
// proceeds: the present value of the payment stream for amortizing loans,
// payment over rate for interest-only.
func (e *Engine) loanFromDebtService(annualDS float64, c domain.LoanConstraints) float64 {
	if c.InterestOnly || c.AmortYears <= 0 {
		return annualDS / c.InterestRate
	}
	monthlyRate := c.InterestRate / 12
	n := float64(c.AmortYears * 12)
	payment := annualDS / 12
	return payment * (1 - math.Pow(1+monthlyRate, -n)) / monthlyRate
}

// annualDebtService returns the yearly payment for a given loan amount.
func (e *Engine) annualDebtService(loan float64, c domain.LoanConstraints) float64 {
	if loan <= 0 {
		return 0
	}
	if c.InterestOnly || c.AmortYears <= 0 {
		return loan * c.InterestRate
	}
	monthlyRate := c.InterestRate / 12
	n := float64(c.AmortYears * 12)
	payment := loan * monthlyRate / (1 - math.Pow(1+monthlyRate, -n))
	return payment * 12
}
