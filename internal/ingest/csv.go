package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"uwcli/pkg/contracts/domain"
)

// LoadCSV reads a CSV export into a raw table. CSV files carry no sheet
// metadata, so classification runs on the header row alone; pass a kind to
// skip classification when the caller already knows what the file is.
func (l *Loader) LoadCSV(ctx context.Context, path string, kind domain.TableKind) (domain.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("read csv %s: %w", path, err)
	}

	documentID := filepath.Base(path)

	if kind == "" || kind == domain.TableKindUnknown {
		idx, detected := findHeader(rows)
		if idx < 0 {
			return domain.RawTable{}, fmt.Errorf("csv %s is not a recognizable rent roll or operating statement", documentID)
		}
		rows = rows[idx:]
		kind = detected
	}

	table, ok := buildCSVTable(documentID, kind, rows)
	if !ok {
		return domain.RawTable{}, fmt.Errorf("csv %s contains no data rows", documentID)
	}

	l.logger.InfoContext(ctx, "csv loaded",
		"document", documentID,
		"kind", table.Kind,
		"rows", len(table.Rows),
		"quality", table.QualityScore,
	)
	return table, nil
}

func buildCSVTable(documentID string, kind domain.TableKind, rows [][]string) (domain.RawTable, bool) {
	if len(rows) < 2 {
		return domain.RawTable{}, false
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	var dataRows [][]domain.Cell
	for _, row := range rows[1:] {
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
		DocumentID: documentID,
		Kind:       kind,
		Headers:    headers,
		Rows:       dataRows,
	}
	table.QualityScore = scoreTable(table)
	return table, true
}
