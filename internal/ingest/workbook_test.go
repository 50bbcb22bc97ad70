package ingest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"uwcli/pkg/contracts/domain"
)

func writeTestWorkbook(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Rent Roll"))
	rentRoll := [][]interface{}{
		{"Maple Court Apartments"},
		{},
		{"Unit", "Unit Type", "SqFt", "Status", "Rent", "Market Rent"},
		{"101", "1BR", 650, "Occupied", 1200, 1250},
		{"102", "1BR", 650, "Vacant", "", 1250},
		{"201", "2BR", 900, "Occupied", 1600, 1700},
	}
	for i, row := range rentRoll {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Rent Roll", cell, &row))
	}

	_, err := f.NewSheet("T12")
	require.NoError(t, err)
	statement := [][]interface{}{
		{"Line Item", "Jan", "Feb", "Mar"},
		{"Rental Income", 5000, 5100, 5050},
		{"Vacancy Loss", -250, -250, -250},
		{"Insurance", -300, -300, -300},
		{"NOI", 4450, 4550, 4500},
	}
	for i, row := range statement {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("T12", cell, &row))
	}

	_, err = f.NewSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Notes", "A1", &[]interface{}{"internal memo, nothing tabular"}))

	path := filepath.Join(t.TempDir(), "package.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadWorkbook(t *testing.T) {
	loader := NewLoader(nil)

	tables, err := loader.LoadWorkbook(context.Background(), writeTestWorkbook(t))
	require.NoError(t, err)
	require.Len(t, tables, 2, "memo sheet must be skipped")

	roll, err := SelectBest(tables, domain.TableKindRentRoll)
	require.NoError(t, err)
	assert.Equal(t, "Rent Roll", roll.SourceSheet)
	assert.Equal(t, "package.xlsx", roll.DocumentID)
	assert.Len(t, roll.Rows, 3, "title and blank rows above the header are excluded")
	assert.Equal(t, "Unit", roll.Headers[0])
	assert.Greater(t, roll.QualityScore, 0.0)

	stmt, err := SelectBest(tables, domain.TableKindIncomeStatement)
	require.NoError(t, err)
	assert.Equal(t, "T12", stmt.SourceSheet)
	assert.Len(t, stmt.Rows, 4)
}

func TestSelectBestPrefersHigherQuality(t *testing.T) {
	tables := []domain.RawTable{
		{Kind: domain.TableKindRentRoll, SourceSheet: "sparse", QualityScore: 0.3},
		{Kind: domain.TableKindRentRoll, SourceSheet: "dense", QualityScore: 0.9},
		{Kind: domain.TableKindIncomeStatement, SourceSheet: "t12", QualityScore: 0.8},
	}

	best, err := SelectBest(tables, domain.TableKindRentRoll)
	require.NoError(t, err)
	assert.Equal(t, "dense", best.SourceSheet)

	_, err = SelectBest(tables, domain.TableKindUnknown)
	assert.Error(t, err)
}

func TestFindHeaderClassification(t *testing.T) {
	rr, kind := findHeader([][]string{
		{"Unit", "Tenant", "Market Rent", "Status"},
	})
	assert.Equal(t, 0, rr)
	assert.Equal(t, domain.TableKindRentRoll, kind)

	st, kind := findHeader([][]string{
		{"Some Property"},
		{"Line Item", "Income", "Expenses", "Total"},
	})
	assert.Equal(t, 1, st)
	assert.Equal(t, domain.TableKindIncomeStatement, kind)

	none, _ := findHeader([][]string{{"hello", "world"}})
	assert.Equal(t, -1, none)
}

func TestScoreTable(t *testing.T) {
	full := domain.RawTable{
		Headers: []string{"Unit", "Rent"},
		Rows:    [][]domain.Cell{{"101", "1200"}, {"102", "1300"}},
	}
	sparse := domain.RawTable{
		Headers: []string{"Unit", ""},
		Rows:    [][]domain.Cell{{"101", ""}, {"", ""}},
	}

	assert.Greater(t, scoreTable(full), scoreTable(sparse))
	assert.InDelta(t, 1.0, scoreTable(full), 1e-9)
}
