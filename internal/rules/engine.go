package rules

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"uwcli/pkg/contracts/domain"
)

// Engine applies the fixed underwriting adjustment rules to normalized
// actuals. Every rule emits a note explaining the delta from the actual
// figure, including an explicit "no adjustment" when the value is unchanged,
// so no rule application is silent.
type Engine struct {
	logger *slog.Logger
	params Params
}

// NewEngine creates a rule engine with the given policy constants.
func NewEngine(logger *slog.Logger, params Params) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger, params: params}
}

// Apply runs the ordered rule set against a normalized statement. The rent
// roll supplies unit count and the full-occupancy income projection; the
// property context supplies the transaction type and optional age and unit
// count overrides. Statement actuals covering fewer than 12 months are
// annualized before the rules run.
func (e *Engine) Apply(ctx context.Context, stmt *domain.IncomeStatement, roll *domain.RentRoll, pctx domain.PropertyContext) (*domain.RuleResult, error) {
	if stmt == nil {
		return nil, fmt.Errorf("income statement is required")
	}

	annual := func(total float64) float64 {
		return total * 12 / float64(stmt.Months)
	}

	gpi := annual(stmt.GrossPotentialIncome)
	gpiSource := "statement rental income"
	if roll != nil && roll.AnnualIncome > 0 {
		gpi = roll.AnnualIncome
		gpiSource = "rent roll projection"
	}

	units := 0
	if roll != nil {
		units = roll.TotalUnits
	}
	if pctx.UnitCount != nil {
		units = *pctx.UnitCount
	}

	e.logger.InfoContext(ctx, "applying expense rules",
		"document_id", stmt.DocumentID,
		"gpi", gpi,
		"gpi_source", gpiSource,
		"units", units,
		"transaction_type", pctx.TransactionType,
	)

	result := &domain.RuleResult{GrossPotentialIncome: gpi}

	actuals, oneTime := e.collectActuals(stmt, annual)
	result.OneTimeItems = oneTime

	// Vacancy loss first: EGI, and therefore the management fee and the
	// minimum expense ratio, depend on the adjusted figure.
	vacancy := e.adjustVacancy(gpi, annual(stmt.VacancyLoss))
	result.Adjustments = append(result.Adjustments, vacancy)

	result.OtherIncome = annual(stmt.OtherIncome)
	egi := gpi - vacancy.Adjusted + result.OtherIncome
	result.EffectiveGrossIncome = egi

	result.Adjustments = append(result.Adjustments, e.adjustTaxes(actuals, pctx))
	result.Adjustments = append(result.Adjustments, e.adjustInsurance(actuals))
	result.Adjustments = append(result.Adjustments, e.adjustUtilities(stmt, actuals)...)
	result.Adjustments = append(result.Adjustments, e.adjustRepairs(actuals, pctx, units))
	result.Adjustments = append(result.Adjustments, e.adjustBanded(actuals, units)...)
	result.Adjustments = append(result.Adjustments, e.adjustManagement(actuals, egi))
	result.Adjustments = append(result.Adjustments, e.adjustReserves(units))

	e.totalWithFloor(result, egi)

	e.logger.InfoContext(ctx, "expense rules applied",
		"document_id", stmt.DocumentID,
		"adjustments", len(result.Adjustments),
		"one_time_items", len(result.OneTimeItems),
		"total_expenses", result.TotalExpenses,
		"floor_applied", result.FloorApplied,
	)

	return result, nil
}

// lineActuals holds the annualized totals and raw monthly series per
// canonical expense category.
type lineActuals struct {
	annual  map[domain.Category]float64
	monthly map[domain.Category][]float64
}

func (la lineActuals) get(c domain.Category) float64 {
	return la.annual[c]
}

// collectActuals aggregates the statement's expense lines per category.
// Lines whose label matches a capital expenditure keyword are one-time
// regardless of category, and lines matching no canonical category are
// reclassified to notes rather than silently added to recurring totals.
func (e *Engine) collectActuals(stmt *domain.IncomeStatement, annual func(float64) float64) (lineActuals, []domain.OneTimeItem) {
	actuals := lineActuals{
		annual:  make(map[domain.Category]float64),
		monthly: make(map[domain.Category][]float64),
	}
	var oneTime []domain.OneTimeItem

	for _, ln := range stmt.Lines {
		if ln.Category.IsIncome() || ln.Category == domain.CategoryVacancyLoss {
			continue
		}

		if kw, ok := e.capExKeyword(ln.Label); ok {
			oneTime = append(oneTime, domain.OneTimeItem{
				Label:  ln.Label,
				Amount: annual(ln.Total),
				Reason: fmt.Sprintf("capital expenditure keyword %q; one-time, moved to notes", kw),
			})
			continue
		}

		if ln.Category == domain.CategoryUnclassified {
			oneTime = append(oneTime, domain.OneTimeItem{
				Label:  ln.Label,
				Amount: annual(ln.Total),
				Reason: "no named rule covers this category; one-time, moved to notes",
			})
			continue
		}

		actuals.annual[ln.Category] += annual(ln.Total)
		actuals.monthly[ln.Category] = mergeMonthly(actuals.monthly[ln.Category], ln.Amounts)
	}

	return actuals, oneTime
}

func (e *Engine) capExKeyword(label string) (string, bool) {
	l := strings.ToLower(label)
	for _, kw := range e.params.CapExKeywords {
		if strings.Contains(l, kw) {
			return kw, true
		}
	}
	return "", false
}

func (e *Engine) adjustVacancy(gpi, actual float64) domain.Adjustment {
	floor := gpi * e.params.VacancyFloorPct
	adj := domain.Adjustment{
		Category: domain.CategoryVacancyLoss,
		Label:    "Vacancy Loss",
		Actual:   actual,
	}
	if actual >= floor {
		adj.Adjusted = actual
		adj.Note = fmt.Sprintf("no adjustment; used actual $%.0f (exceeds %.1f%% of GPI floor of $%.0f)",
			actual, e.params.VacancyFloorPct*100, floor)
	} else {
		adj.Adjusted = floor
		adj.Note = fmt.Sprintf("floored at %.1f%% of GPI ($%.0f); actual vacancy $%.0f",
			e.params.VacancyFloorPct*100, floor, actual)
	}
	return adj
}

func (e *Engine) adjustTaxes(actuals lineActuals, pctx domain.PropertyContext) domain.Adjustment {
	actual := actuals.get(domain.CategoryPropertyTaxes)
	adj := domain.Adjustment{
		Category: domain.CategoryPropertyTaxes,
		Label:    "Property Taxes",
		Actual:   actual,
	}
	if pctx.IsRefinance() {
		adj.Adjusted = actual * (1 + e.params.RefiTaxUplift)
		adj.Note = fmt.Sprintf("refinance: increased actual $%.0f by %.1f%%", actual, e.params.RefiTaxUplift*100)
	} else {
		adj.Adjusted = actual
		adj.Note = "no adjustment; used actual (non-refinance transaction)"
	}
	return adj
}

func (e *Engine) adjustInsurance(actuals lineActuals) domain.Adjustment {
	actual := actuals.get(domain.CategoryInsurance)
	return domain.Adjustment{
		Category: domain.CategoryInsurance,
		Label:    "Insurance",
		Actual:   actual,
		Adjusted: actual * (1 + e.params.InsuranceUplift),
		Note:     fmt.Sprintf("increased actual $%.0f by %.1f%%", actual, e.params.InsuranceUplift*100),
	}
}

var utilityLabels = []struct {
	category domain.Category
	label    string
}{
	{domain.CategoryElectricity, "Electricity"},
	{domain.CategoryWater, "Water"},
	{domain.CategorySewer, "Sewer"},
	{domain.CategoryTrash, "Trash"},
}

// adjustUtilities removes single-month spikes from each utility series
// before annualizing, then applies the utility uplift. Utilities absent from
// the statement emit no line.
func (e *Engine) adjustUtilities(stmt *domain.IncomeStatement, actuals lineActuals) []domain.Adjustment {
	var out []domain.Adjustment
	for _, u := range utilityLabels {
		actual, present := actuals.annual[u.category]
		if !present {
			continue
		}

		adj := domain.Adjustment{
			Category: u.category,
			Label:    u.label,
			Actual:   actual,
		}

		monthly := actuals.monthly[u.category]
		kept, excluded := excludeSpikes(monthly, e.params.UtilitySpikeStdDevs)
		base := actual
		if excluded > 0 {
			base = mean(kept) * 12
		}

		adj.Adjusted = base * (1 + e.params.UtilityUplift)
		if excluded > 0 {
			adj.Note = fmt.Sprintf("excluded %d spike month(s) beyond %.1f std dev (base $%.0f), then increased by %.1f%%",
				excluded, e.params.UtilitySpikeStdDevs, base, e.params.UtilityUplift*100)
		} else {
			adj.Note = fmt.Sprintf("no spikes detected; increased actual $%.0f by %.1f%%", actual, e.params.UtilityUplift*100)
		}
		out = append(out, adj)
	}
	return out
}

func (e *Engine) adjustRepairs(actuals lineActuals, pctx domain.PropertyContext, units int) domain.Adjustment {
	actual := actuals.get(domain.CategoryRepairsMaintenance)
	adj := domain.Adjustment{
		Category: domain.CategoryRepairsMaintenance,
		Label:    "Repairs & Maintenance",
		Actual:   actual,
		Adjusted: actual,
	}

	if pctx.PropertyAge == nil {
		adj.Note = "property age unknown; used actual"
		return adj
	}
	if units <= 0 {
		adj.Note = "unit count unknown; used actual"
		return adj
	}

	rate, ok := e.params.RepairsRate(*pctx.PropertyAge)
	if !ok {
		adj.Note = fmt.Sprintf("no per-unit minimum defined for property age %d; used actual", *pctx.PropertyAge)
		return adj
	}

	minimum := rate * float64(units)
	if actual >= minimum {
		adj.Note = fmt.Sprintf("no adjustment; used actual $%.0f (above $%.0f/unit minimum for a %d-year-old property)",
			actual, rate, *pctx.PropertyAge)
		return adj
	}

	adj.Adjusted = minimum
	adj.Note = fmt.Sprintf("applied $%.0f/unit minimum for a %d-year-old property (%d units = $%.0f); actual $%.0f below minimum",
		rate, *pctx.PropertyAge, units, minimum, actual)
	return adj
}

// adjustBanded applies the per-unit payroll band and the administrative
// band. Both emit a line only when the statement has the expense.
func (e *Engine) adjustBanded(actuals lineActuals, units int) []domain.Adjustment {
	var out []domain.Adjustment

	if actual, present := actuals.annual[domain.CategoryPayroll]; present {
		adj := domain.Adjustment{
			Category: domain.CategoryPayroll,
			Label:    "Payroll",
			Actual:   actual,
			Adjusted: actual,
			Note:     "no adjustment; used actual (within per-unit band)",
		}
		if units > 0 {
			minimum := e.params.PayrollPerUnitMin * float64(units)
			ceiling := e.params.PayrollPerUnitCap * float64(units)
			switch {
			case actual < minimum:
				adj.Adjusted = minimum
				adj.Note = fmt.Sprintf("increased to $%.0f/unit minimum ($%.0f); actual $%.0f", e.params.PayrollPerUnitMin, minimum, actual)
			case actual > ceiling:
				adj.Adjusted = ceiling
				adj.Note = fmt.Sprintf("capped at $%.0f/unit ($%.0f); actual $%.0f exceeds cap by $%.0f", e.params.PayrollPerUnitCap, ceiling, actual, actual-ceiling)
			}
		} else {
			adj.Note = "unit count unknown; used actual"
		}
		out = append(out, adj)
	}

	if actual, present := actuals.annual[domain.CategoryAdminFees]; present {
		adj := domain.Adjustment{
			Category: domain.CategoryAdminFees,
			Label:    "General & Administrative",
			Actual:   actual,
			Adjusted: actual,
			Note:     "no adjustment; used actual (within band)",
		}
		ceiling := e.params.AdminPerUnitCap * float64(units)
		switch {
		case actual < e.params.AdminMinimum:
			adj.Adjusted = e.params.AdminMinimum
			adj.Note = fmt.Sprintf("increased to $%.0f minimum; actual $%.0f", e.params.AdminMinimum, actual)
		case units > 0 && actual > ceiling:
			adj.Adjusted = ceiling
			adj.Note = fmt.Sprintf("capped at $%.0f/unit ($%.0f); actual $%.0f", e.params.AdminPerUnitCap, ceiling, actual)
		}
		out = append(out, adj)
	}

	return out
}

func (e *Engine) adjustManagement(actuals lineActuals, egi float64) domain.Adjustment {
	rate := e.params.ManagementRate(egi)
	return domain.Adjustment{
		Category: domain.CategoryManagementFee,
		Label:    "Management Fee",
		Actual:   actuals.get(domain.CategoryManagementFee),
		Adjusted: egi * rate,
		Note:     fmt.Sprintf("applied %.1f%% tier rate to EGI of $%.0f", rate*100, egi),
	}
}

func (e *Engine) adjustReserves(units int) domain.Adjustment {
	adj := domain.Adjustment{
		Category: domain.CategoryReplacementReserves,
		Label:    "Replacement Reserves",
	}
	if units <= 0 {
		adj.Note = "unit count unknown; reserves not computed"
		return adj
	}
	adj.Adjusted = e.params.ReservePerUnit * float64(units)
	adj.Note = fmt.Sprintf("applied $%.0f/unit for %d units", e.params.ReservePerUnit, units)
	return adj
}

// totalWithFloor sums the adjusted expense lines and applies the minimum
// expense ratio floor against EGI.
func (e *Engine) totalWithFloor(result *domain.RuleResult, egi float64) {
	var sum float64
	for _, adj := range result.Adjustments {
		if adj.Category.IsOperatingExpense() {
			sum += adj.Adjusted
		}
	}

	floor := egi * e.params.MinExpenseRatio
	if sum < floor {
		result.TotalExpenses = floor
		result.FloorApplied = true
		result.TotalNote = fmt.Sprintf("%.0f%% minimum expense ratio applied: computed sum $%.0f below floor $%.0f by $%.0f",
			e.params.MinExpenseRatio*100, sum, floor, floor-sum)
		return
	}

	result.TotalExpenses = sum
	result.TotalNote = fmt.Sprintf("sum of adjusted expense lines; meets %.0f%% minimum expense ratio", e.params.MinExpenseRatio*100)
}

// mergeMonthly adds two monthly series elementwise, extending to the longer
// length.
func mergeMonthly(a, b []float64) []float64 {
	if len(b) > len(a) {
		a, b = b, a
	}
	out := make([]float64, len(a))
	copy(out, a)
	for i, v := range b {
		out[i] += v
	}
	return out
}
