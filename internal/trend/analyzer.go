package trend

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"uwcli/pkg/contracts/domain"
)

// Config holds the trend selection thresholds. The exact variance threshold
// and the definition of a sustained upward run are policy parameters, not
// algorithm structure, so they live here rather than in the decision logic.
type Config struct {
	// LowVolatilityCV is the coefficient-of-variation ceiling below which
	// the full trailing series counts as stable.
	LowVolatilityCV float64 `json:"low_volatility_cv"`

	// MinTrendMonths is the minimum number of consecutive qualifying
	// month-over-month increases required before a short window can be
	// selected. A single favorable month never triggers the override.
	MinTrendMonths int `json:"min_trend_months"`

	// MinMonthlyGrowth is the smallest month-over-month increase that
	// counts toward a sustained run (0.01 = +1%).
	MinMonthlyGrowth float64 `json:"min_monthly_growth"`

	// MaxTrendWindow caps the rising-trend sub-window length in months.
	MaxTrendWindow int `json:"max_trend_window"`
}

// DefaultConfig returns the standard trend thresholds.
func DefaultConfig() Config {
	return Config{
		LowVolatilityCV:  0.10,
		MinTrendMonths:   2,
		MinMonthlyGrowth: 0.01,
		MaxTrendWindow:   6,
	}
}

// Analyzer selects the trailing window that best represents recurring
// income. The classification is pure and deterministic over fixed
// thresholds; the decision is computed once and never re-derived.
type Analyzer struct {
	logger *slog.Logger
	config Config
}

// NewAnalyzer creates a trend analyzer.
func NewAnalyzer(logger *slog.Logger, config Config) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger, config: config}
}

// Analyze inspects an ordered monthly income series (oldest first, 3-12
// entries) and returns the trend decision. Precedence: stable series use the
// full window; a sustained rising run of recent months selects that
// sub-window; erratic series fall back to the full window with a
// high-variance flag rather than cherry-picking short favorable windows.
func (a *Analyzer) Analyze(ctx context.Context, monthly []float64) (*domain.TrendDecision, error) {
	if len(monthly) < 3 || len(monthly) > 12 {
		return nil, fmt.Errorf("monthly income series must have 3-12 entries, got %d", len(monthly))
	}

	cv := coefficientOfVariation(monthly)

	a.logger.InfoContext(ctx, "analyzing income trend",
		"months", len(monthly),
		"cv", cv,
	)

	if cv < a.config.LowVolatilityCV {
		return &domain.TrendDecision{
			WindowMonths:    len(monthly),
			VolatilityScore: cv,
			Rationale: fmt.Sprintf(
				"income is stable (coefficient of variation %.3f below %.3f threshold); using the full trailing %d months",
				cv, a.config.LowVolatilityCV, len(monthly)),
		}, nil
	}

	if window, run := a.risingWindow(monthly); window > 0 {
		return &domain.TrendDecision{
			WindowMonths:    window,
			VolatilityScore: cv,
			Rationale: fmt.Sprintf(
				"income shows a sustained upward trend: %d consecutive months of %.1f%%+ growth, and the trailing %d-month average exceeds the earlier months; using the trailing %d months. Not triggered by a single favorable month: %d qualifying months observed",
				run, a.config.MinMonthlyGrowth*100, window, window, run),
		}, nil
	}

	return &domain.TrendDecision{
		WindowMonths:    len(monthly),
		VolatilityScore: cv,
		HighVariance:    true,
		Rationale: fmt.Sprintf(
			"income is erratic (coefficient of variation %.3f) with no sustained upward run of %d+ months; defaulting to the full trailing %d months instead of a short favorable window. High variance; manual review recommended",
			cv, a.config.MinTrendMonths, len(monthly)),
	}, nil
}

// risingWindow looks for the longest trailing sub-window (2 to
// MaxTrendWindow months) that ends in a sustained run of qualifying
// month-over-month increases and whose mean exceeds the mean of the
// remaining months. Returns the window length and the run length, or 0 when
// no window qualifies.
func (a *Analyzer) risingWindow(monthly []float64) (window, run int) {
	run = trailingRun(monthly, a.config.MinMonthlyGrowth)
	if run < a.config.MinTrendMonths {
		return 0, run
	}

	maxWindow := a.config.MaxTrendWindow
	if maxWindow > len(monthly)-1 {
		maxWindow = len(monthly) - 1
	}

	// The window covers the run plus the month the run is measured against,
	// capped at the configured maximum.
	for w := min(run+1, maxWindow); w >= 2; w-- {
		tail := monthly[len(monthly)-w:]
		head := monthly[:len(monthly)-w]
		if len(head) == 0 {
			continue
		}
		if mean(tail) > mean(head) {
			return w, run
		}
	}
	return 0, run
}

// trailingRun counts consecutive qualifying month-over-month increases at
// the end of the series.
func trailingRun(monthly []float64, minGrowth float64) int {
	run := 0
	for i := len(monthly) - 1; i > 0; i-- {
		prev := monthly[i-1]
		if prev <= 0 {
			break
		}
		growth := (monthly[i] - prev) / prev
		if growth < minGrowth {
			break
		}
		run++
	}
	return run
}

// coefficientOfVariation returns stddev/mean over the series, 0 when the
// mean is not positive.
func coefficientOfVariation(series []float64) float64 {
	m := mean(series)
	if m <= 0 {
		return 0
	}
	var sumSq float64
	for _, v := range series {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq/float64(len(series))) / m
}

func mean(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	var sum float64
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}
