// Command underwrite runs the underwriting pipeline against local
// documents and writes the output bundle as JSON.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"uwcli/internal/config"
	"uwcli/internal/exporter"
	"uwcli/internal/infrastructure"
	"uwcli/internal/ingest"
	"uwcli/internal/loansizing"
	"uwcli/internal/pipeline"
	"uwcli/internal/validation"
	"uwcli/pkg/contracts/domain"
)

func main() {
	var (
		workbookPath  = flag.String("workbook", "", "xlsx workbook containing both rent roll and operating statement sheets")
		rentRollPath  = flag.String("rent-roll", "", "rent roll CSV (alternative to -workbook)")
		statementPath = flag.String("statement", "", "operating statement CSV (alternative to -workbook)")
		months        = flag.Int("months", 12, "trailing months covered by the statement")
		propertyName  = flag.String("property", "", "property name for the output")
		transaction   = flag.String("transaction", "acquisition", "transaction type: refinance, acquisition, or other")
		propertyAge   = flag.Int("age", -1, "property age in years (-1 if unknown)")
		unitCount     = flag.Int("units", -1, "unit count override (-1 to derive from the rent roll)")
		loanProgram   = flag.String("loan", "", "size a loan after underwriting: agency or bridge")
		interestRate  = flag.Float64("rate", 0.065, "loan interest rate used with -loan")
		configFile    = flag.String("config", "", "optional YAML config file")
		format        = flag.String("format", "json", "output format: json or csv")
		outPath       = flag.String("out", "", "output file (defaults to stdout)")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := infrastructure.NewLogger(cfg.Logging)
	ctx := context.Background()

	input, err := buildInput(ctx, logger, loaderArgs{
		workbook:  *workbookPath,
		rentRoll:  *rentRollPath,
		statement: *statementPath,
	})
	if err != nil {
		logger.Error("load documents", "error", err)
		os.Exit(1)
	}

	input.Months = *months
	input.Context = domain.PropertyContext{
		PropertyName:    *propertyName,
		TransactionType: parseTransaction(*transaction),
	}
	if *propertyAge >= 0 {
		age := *propertyAge
		input.Context.PropertyAge = &age
	}
	if *unitCount >= 0 {
		units := *unitCount
		input.Context.UnitCount = &units
	}
	if constraints, ok := loanConstraints(*loanProgram, *interestRate); ok {
		input.Loan = &constraints
	}

	p := pipeline.New(logger, pipelineConfig(cfg))
	result, err := p.Run(ctx, input)
	if err != nil {
		logger.Error("underwriting failed", "error", err)
		os.Exit(1)
	}

	if err := writeResult(result, *format, *outPath); err != nil {
		logger.Error("write output", "error", err)
		os.Exit(1)
	}
}

type loaderArgs struct {
	workbook  string
	rentRoll  string
	statement string
}

// buildInput loads the two document tables either from one workbook or
// from a pair of CSV files.
func buildInput(ctx context.Context, logger *slog.Logger, args loaderArgs) (pipeline.Input, error) {
	loader := ingest.NewLoader(logger)
	fileValidator := validation.NewFileValidator(logger)

	var input pipeline.Input
	switch {
	case args.workbook != "":
		if err := fileValidator.ValidateWorkbook(args.workbook); err != nil {
			return input, err
		}
		tables, err := loader.LoadWorkbook(ctx, args.workbook)
		if err != nil {
			return input, err
		}
		roll, err := ingest.SelectBest(tables, domain.TableKindRentRoll)
		if err != nil {
			return input, err
		}
		stmt, err := ingest.SelectBest(tables, domain.TableKindIncomeStatement)
		if err != nil {
			return input, err
		}
		input.RentRoll = roll
		input.Statement = stmt
	case args.rentRoll != "" && args.statement != "":
		if err := fileValidator.ValidateCSV(args.rentRoll); err != nil {
			return input, err
		}
		if err := fileValidator.ValidateCSV(args.statement); err != nil {
			return input, err
		}
		roll, err := loader.LoadCSV(ctx, args.rentRoll, domain.TableKindRentRoll)
		if err != nil {
			return input, err
		}
		stmt, err := loader.LoadCSV(ctx, args.statement, domain.TableKindIncomeStatement)
		if err != nil {
			return input, err
		}
		input.RentRoll = roll
		input.Statement = stmt
	default:
		return input, fmt.Errorf("provide -workbook, or both -rent-roll and -statement")
	}
	return input, nil
}

func parseTransaction(s string) domain.TransactionType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "refinance", "refi":
		return domain.TransactionRefinance
	case "acquisition", "purchase":
		return domain.TransactionAcquisition
	default:
		return domain.TransactionOther
	}
}

func loanConstraints(program string, rate float64) (domain.LoanConstraints, bool) {
	switch strings.ToLower(strings.TrimSpace(program)) {
	case "agency":
		return loansizing.AgencyConstraints(rate), true
	case "bridge":
		return loansizing.BridgeConstraints(rate), true
	default:
		return domain.LoanConstraints{}, false
	}
}

// pipelineConfig maps the file/env configuration onto the stage parameters.
func pipelineConfig(cfg *config.Config) pipeline.Config {
	pc := pipeline.DefaultConfig()
	pc.RentRoll.UnderpricedThreshold = cfg.Underwriting.UnderpricedThreshold
	pc.Trend.LowVolatilityCV = cfg.Underwriting.LowVolatilityCV
	pc.Trend.MinMonthlyGrowth = cfg.Underwriting.MinMonthlyGrowth
	pc.Rules.VacancyFloorPct = cfg.Underwriting.VacancyFloorRate
	pc.Rules.MinExpenseRatio = cfg.Underwriting.ExpenseRatioFloor
	pc.Rules.ReservePerUnit = cfg.Underwriting.ReservesPerUnit
	return pc
}

// writeResult renders the bundle in the requested format. JSON carries the
// full bundle; CSV carries the summary plus the flag report.
func writeResult(result *pipeline.Result, format, outPath string) error {
	var buf bytes.Buffer

	switch strings.ToLower(format) {
	case "", "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	case "csv":
		if err := exporter.WriteSummaryCSV(&buf, result.Summary); err != nil {
			return fmt.Errorf("export summary: %w", err)
		}
		if len(result.Flags.Flags) > 0 {
			buf.WriteByte('\n')
			if err := exporter.WriteFlagsCSV(&buf, result.Flags); err != nil {
				return fmt.Errorf("export flags: %w", err)
			}
		}
	default:
		return fmt.Errorf("unknown output format %q (expected json or csv)", format)
	}

	if outPath == "" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return os.WriteFile(outPath, buf.Bytes(), 0o644)
}
