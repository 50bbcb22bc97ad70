package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateWorkbook(t *testing.T) {
	v := NewFileValidator(nil)
	dir := t.TempDir()

	good := writeFile(t, dir, "rentroll.xlsx", "stub")
	assert.NoError(t, v.ValidateWorkbook(good))

	macro := writeFile(t, dir, "rentroll.XLSM", "stub")
	assert.NoError(t, v.ValidateWorkbook(macro), "extension check is case insensitive")

	wrongExt := writeFile(t, dir, "rentroll.pdf", "stub")
	err := v.ValidateWorkbook(wrongExt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported workbook format")

	assert.Error(t, v.ValidateWorkbook(filepath.Join(dir, "missing.xlsx")))
	assert.Error(t, v.ValidateWorkbook(dir), "directories are rejected")

	empty := writeFile(t, dir, "empty.xlsx", "")
	err = v.ValidateWorkbook(empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestValidateCSV(t *testing.T) {
	v := NewFileValidator(nil)
	dir := t.TempDir()

	good := writeFile(t, dir, "t12.csv", "Line Item,Jan\nRental Income,5100\n")
	assert.NoError(t, v.ValidateCSV(good))

	wrongExt := writeFile(t, dir, "t12.tsv", "a\tb\n")
	err := v.ValidateCSV(wrongExt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".csv")
}
