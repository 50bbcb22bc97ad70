// Package pipeline wires the normalizers, the trend analyzer, the expense
// rule engine, and the summary assembler into one pure transformation from
// raw extracted tables to the canonical output bundle. Re-running the
// pipeline on identical inputs produces identical numeric output.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"uwcli/internal/loansizing"
	"uwcli/internal/normalize"
	"uwcli/internal/rules"
	"uwcli/internal/summary"
	"uwcli/internal/trend"
	"uwcli/pkg/contracts/domain"
)

// Input is one document set: the already-selected rent roll and trailing
// operating statement tables, the trailing month count, and the read-only
// transaction context. Loan constraints are optional; when present the
// underwritten NOI is also sized.
type Input struct {
	RentRoll  domain.RawTable         `json:"rent_roll" validate:"required"`
	Statement domain.RawTable         `json:"statement" validate:"required"`
	Months    int                     `json:"months" validate:"required,min=1,max=12"`
	Context   domain.PropertyContext  `json:"context" validate:"required"`
	Loan      *domain.LoanConstraints `json:"loan,omitempty"`
}

// Result is the full output bundle handed to the rendering collaborator.
// The renderer displays these values; it never re-derives any number.
type Result struct {
	RunID     string                  `json:"run_id"`
	RentRoll  *domain.RentRoll        `json:"rent_roll"`
	Statement *domain.IncomeStatement `json:"statement"`
	Trend     *domain.TrendDecision   `json:"trend"`
	Rules     *domain.RuleResult      `json:"rules"`
	Summary   *domain.Summary         `json:"summary"`
	Loan      *domain.LoanSizing      `json:"loan,omitempty"`
	Flags     domain.FlagReport       `json:"flags"`
}

// Config bundles the per-stage policy parameters.
type Config struct {
	RentRoll normalize.RentRollConfig `json:"rent_roll"`
	Trend    trend.Config             `json:"trend"`
	Rules    rules.Params             `json:"rules"`
}

// DefaultConfig returns the standard pipeline configuration.
func DefaultConfig() Config {
	return Config{
		RentRoll: normalize.DefaultRentRollConfig(),
		Trend:    trend.DefaultConfig(),
		Rules:    rules.DefaultParams(),
	}
}

// Pipeline runs the underwriting stages in order. Each stage is a pure
// function over immutable inputs; the two normalizers share no state and
// run concurrently.
type Pipeline struct {
	logger    *slog.Logger
	rentRoll  *normalize.RentRollNormalizer
	statement *normalize.StatementNormalizer
	trend     *trend.Analyzer
	rules     *rules.Engine
	summary   *summary.Assembler
	loans     *loansizing.Engine
}

// New creates a pipeline with the given configuration.
func New(logger *slog.Logger, config Config) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		logger:    logger,
		rentRoll:  normalize.NewRentRollNormalizer(logger, config.RentRoll),
		statement: normalize.NewStatementNormalizer(logger),
		trend:     trend.NewAnalyzer(logger, config.Trend),
		rules:     rules.NewEngine(logger, config.Rules),
		summary:   summary.NewAssembler(logger),
		loans:     loansizing.NewEngine(logger),
	}
}

// Run executes the full pipeline for one document set. Schema errors halt
// the run and propagate with the originating document identifier; every
// non-fatal flag is collected into the result's flag report.
func (p *Pipeline) Run(ctx context.Context, input Input) (*Result, error) {
	runID := uuid.NewString()

	p.logger.InfoContext(ctx, "pipeline started",
		"run_id", runID,
		"rent_roll_document", input.RentRoll.DocumentID,
		"statement_document", input.Statement.DocumentID,
		"months", input.Months,
	)

	result := &Result{RunID: runID}

	// The normalizers consume independent tables and may run in parallel;
	// everything downstream depends on the statement output.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		roll, err := p.rentRoll.Normalize(gctx, input.RentRoll)
		if err != nil {
			return fmt.Errorf("normalize rent roll: %w", err)
		}
		result.RentRoll = roll
		return nil
	})
	g.Go(func() error {
		stmt, err := p.statement.Normalize(gctx, input.Statement, input.Months)
		if err != nil {
			return fmt.Errorf("normalize income statement: %w", err)
		}
		result.Statement = stmt
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	decision, err := p.analyzeTrend(ctx, result.Statement)
	if err != nil {
		return nil, fmt.Errorf("analyze trend: %w", err)
	}
	result.Trend = decision

	ruleResult, err := p.rules.Apply(ctx, result.Statement, result.RentRoll, input.Context)
	if err != nil {
		return nil, fmt.Errorf("apply expense rules: %w", err)
	}
	result.Rules = ruleResult

	assembled, err := p.summary.Assemble(ctx, ruleResult)
	if err != nil {
		return nil, fmt.Errorf("assemble summary: %w", err)
	}
	result.Summary = assembled

	if input.Loan != nil && assembled.NetOperatingIncome > 0 {
		sizing, err := p.loans.Size(ctx, assembled.NetOperatingIncome, *input.Loan)
		if err != nil {
			return nil, fmt.Errorf("size loan: %w", err)
		}
		result.Loan = sizing
	}

	result.Flags = p.collectFlags(runID, input, result)

	p.logger.InfoContext(ctx, "pipeline completed",
		"run_id", runID,
		"noi", assembled.NetOperatingIncome,
		"trend_window", decision.WindowMonths,
		"flags", result.Flags.Count(),
	)

	return result, nil
}

// analyzeTrend runs the trend analyzer over the monthly income series.
// Statements without monthly detail cannot be trended; the full trailing
// period is used and the limitation is recorded in the rationale.
func (p *Pipeline) analyzeTrend(ctx context.Context, stmt *domain.IncomeStatement) (*domain.TrendDecision, error) {
	if len(stmt.MonthlyIncome) < 3 {
		return &domain.TrendDecision{
			WindowMonths: stmt.Months,
			Rationale: fmt.Sprintf(
				"monthly income detail unavailable (%d months of data); using the full trailing %d months",
				len(stmt.MonthlyIncome), stmt.Months),
		}, nil
	}
	return p.trend.Analyze(ctx, stmt.MonthlyIncome)
}

// collectFlags gathers every non-fatal flag raised across the stages into a
// single report for display by the surrounding system.
func (p *Pipeline) collectFlags(runID string, input Input, result *Result) domain.FlagReport {
	report := domain.FlagReport{
		RunID:       runID,
		DocumentIDs: []string{input.RentRoll.DocumentID, input.Statement.DocumentID},
		GeneratedAt: time.Now().UTC(),
	}

	report.Flags = append(report.Flags, result.RentRoll.Flags...)
	for _, row := range result.RentRoll.Rows {
		report.Flags = append(report.Flags, row.Flags...)
	}
	report.Flags = append(report.Flags, result.Statement.Flags...)
	for _, ln := range result.Statement.Lines {
		report.Flags = append(report.Flags, ln.Flags...)
	}

	if result.Trend != nil && result.Trend.HighVariance {
		report.Flags = append(report.Flags, domain.FieldFlag{
			Code:    domain.FlagHighVariance,
			Subject: input.Statement.DocumentID,
			Message: "income series is high variance; manual review recommended",
		})
	}

	return report
}
