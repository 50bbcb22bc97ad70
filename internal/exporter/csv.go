// Package exporter renders pipeline output for file consumers. The JSON
// bundle is the canonical interchange format; CSV is the spreadsheet-facing
// view of the underwritten summary.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"uwcli/pkg/contracts/domain"
)

// WriteSummaryCSV writes the underwritten summary as CSV, one row per
// summary line item in assembly order. Amounts are displayed at currency
// precision and percentages at one decimal, matching the assembler.
func WriteSummaryCSV(w io.Writer, s *domain.Summary) error {
	if s == nil {
		return fmt.Errorf("nil summary")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Label", "Amount", "% of EGI", "Note"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, item := range s.Items {
		record := []string{
			item.Label,
			formatAmount(item.Amount),
			formatPercent(item.PercentOfEGI),
			item.Note,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write line %q: %w", item.Label, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFlagsCSV writes the collected non-fatal flags as CSV for review
// alongside the summary.
func WriteFlagsCSV(w io.Writer, report domain.FlagReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Code", "Field", "Subject", "Message"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, f := range report.Flags {
		if err := cw.Write([]string{string(f.Code), f.Field, f.Subject, f.Message}); err != nil {
			return fmt.Errorf("write flag %s: %w", f.Code, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(domain.RoundCurrency(v), 'f', domain.CurrencyPrecision, 64)
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(domain.RoundPercent(v), 'f', domain.PercentPrecision, 64)
}
