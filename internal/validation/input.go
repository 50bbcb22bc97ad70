// Package validation checks input documents before they reach the ingest
// layer, so path and format problems fail fast with a clear message instead
// of surfacing as a decode error mid-run.
package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// workbookExtensions are the spreadsheet formats the ingest loader accepts.
var workbookExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
}

// FileValidator validates candidate input files for the pipeline.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a file validator.
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger}
}

// ValidateWorkbook checks that path names a readable, non-empty workbook
// in a supported spreadsheet format.
func (v *FileValidator) ValidateWorkbook(path string) error {
	if err := v.validateRegularFile(path); err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !workbookExtensions[ext] {
		v.logger.Error("unsupported workbook format",
			slog.String("path", path),
			slog.String("extension", ext))
		return fmt.Errorf("%s: unsupported workbook format %q (expected .xlsx or .xlsm)", path, ext)
	}
	return nil
}

// ValidateCSV checks that path names a readable, non-empty CSV file.
func (v *FileValidator) ValidateCSV(path string) error {
	if err := v.validateRegularFile(path); err != nil {
		return err
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".csv" {
		v.logger.Error("unsupported csv format",
			slog.String("path", path),
			slog.String("extension", ext))
		return fmt.Errorf("%s: expected a .csv file, got %q", path, ext)
	}
	return nil
}

func (v *FileValidator) validateRegularFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("input file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("input file %s is empty", path)
	}
	return nil
}
