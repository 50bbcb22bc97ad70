// Package ingest loads already-structured spreadsheet and CSV documents
// into raw tables for the normalizers. It classifies sheets by header
// vocabulary, scores candidate tables, and picks the best candidate per
// document kind when a workbook carries duplicates.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"uwcli/pkg/contracts/domain"
)

// Loader reads workbooks and CSV files into raw tables.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a document loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// rentRollSignals and statementSignals are the header vocabularies used to
// classify a sheet. A sheet is scored against both and assigned the kind
// with more hits.
var (
	rentRollSignals = []string{
		"unit", "tenant", "lease", "sqft", "sq ft", "square", "market rent",
		"occupied", "vacant", "move in", "move-in", "bed", "bath",
	}
	statementSignals = []string{
		"income", "revenue", "expense", "operating", "taxes", "insurance",
		"utilities", "repairs", "maintenance", "payroll", "management",
		"vacancy", "noi", "total",
	}
)

// LoadWorkbook opens an Excel workbook and returns one raw table per sheet
// that could be classified as a rent roll or operating statement. Sheets
// with no recognizable vocabulary are skipped with a log line.
func (l *Loader) LoadWorkbook(ctx context.Context, path string) ([]domain.RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	documentID := filepath.Base(path)

	var tables []domain.RawTable
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			l.logger.WarnContext(ctx, "sheet unreadable, skipping",
				"document", documentID, "sheet", sheet, "error", err)
			continue
		}

		table, ok := buildTable(documentID, sheet, rows)
		if !ok {
			l.logger.DebugContext(ctx, "sheet not classifiable, skipping",
				"document", documentID, "sheet", sheet)
			continue
		}

		l.logger.InfoContext(ctx, "sheet classified",
			"document", documentID,
			"sheet", sheet,
			"kind", table.Kind,
			"rows", len(table.Rows),
			"quality", table.QualityScore,
		)
		tables = append(tables, table)
	}

	if len(tables) == 0 {
		return nil, fmt.Errorf("workbook %s contains no classifiable sheets", documentID)
	}
	return tables, nil
}

// SelectBest returns the highest-quality table of the given kind, or an
// error when the set contains none.
func SelectBest(tables []domain.RawTable, kind domain.TableKind) (domain.RawTable, error) {
	best := -1
	for i, t := range tables {
		if t.Kind != kind {
			continue
		}
		if best == -1 || t.QualityScore > tables[best].QualityScore {
			best = i
		}
	}
	if best == -1 {
		return domain.RawTable{}, fmt.Errorf("no %s table found", kind)
	}
	return tables[best], nil
}

// buildTable locates the header row, classifies the sheet, and converts the
// remaining rows to cells. Returns ok=false for sheets that match neither
// vocabulary.
func buildTable(documentID, sheet string, rows [][]string) (domain.RawTable, bool) {
	headerIdx, kind := findHeader(rows)
	if headerIdx < 0 {
		return domain.RawTable{}, false
	}

	headers := make([]string, len(rows[headerIdx]))
	for i, h := range rows[headerIdx] {
		headers[i] = strings.TrimSpace(h)
	}

	var dataRows [][]domain.Cell
	for _, row := range rows[headerIdx+1:] {
		if isBlank(row) {
			continue
		}
		cells := make([]domain.Cell, len(headers))
		for i := range headers {
			if i < len(row) {
				cells[i] = domain.Cell(strings.TrimSpace(row[i]))
			}
		}
		dataRows = append(dataRows, cells)
	}
	if len(dataRows) == 0 {
		return domain.RawTable{}, false
	}

	table := domain.RawTable{
		DocumentID:  documentID,
		Kind:        kind,
		SourceSheet: sheet,
		Headers:     headers,
		Rows:        dataRows,
	}
	table.QualityScore = scoreTable(table)
	return table, true
}

// findHeader locates the header row and classifies the sheet. A rent roll
// announces itself in a single header row; an operating statement spreads
// its vocabulary down the label column, so it is scored across the leading
// rows with the header taken as the first multi-cell row. Returns (-1, "")
// when the sheet matches neither kind.
func findHeader(rows [][]string) (int, domain.TableKind) {
	limit := len(rows)
	if limit > 12 {
		limit = 12
	}

	for i := 0; i < limit; i++ {
		text := strings.ToLower(strings.Join(rows[i], " "))
		rr := countSignals(text, rentRollSignals)
		if rr >= 2 && rr >= countSignals(text, statementSignals) {
			return i, domain.TableKindRentRoll
		}
	}

	total := 0
	header := -1
	for i := 0; i < limit; i++ {
		text := strings.ToLower(strings.Join(rows[i], " "))
		total += countSignals(text, statementSignals)
		if header == -1 && nonEmptyCells(rows[i]) >= 2 {
			header = i
		}
	}
	if total >= 3 && header >= 0 {
		return header, domain.TableKindIncomeStatement
	}
	return -1, ""
}

func nonEmptyCells(row []string) int {
	n := 0
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			n++
		}
	}
	return n
}

func countSignals(text string, signals []string) int {
	n := 0
	for _, s := range signals {
		if strings.Contains(text, s) {
			n++
		}
	}
	return n
}

// scoreTable computes a 0..1 quality score: data density weighted with the
// fraction of non-empty headers. Used to pick between duplicate candidate
// sheets in one workbook.
func scoreTable(t domain.RawTable) float64 {
	if len(t.Headers) == 0 || len(t.Rows) == 0 {
		return 0
	}

	namedHeaders := 0
	for _, h := range t.Headers {
		if h != "" {
			namedHeaders++
		}
	}
	headerScore := float64(namedHeaders) / float64(len(t.Headers))

	filled, total := 0, 0
	for _, row := range t.Rows {
		for _, cell := range row {
			total++
			if strings.TrimSpace(string(cell)) != "" {
				filled++
			}
		}
	}
	density := 0.0
	if total > 0 {
		density = float64(filled) / float64(total)
	}

	return 0.4*headerScore + 0.6*density
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
