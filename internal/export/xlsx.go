package export

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/resortgen/internal/dataset"
	"github.com/KaramelBytes/resortgen/internal/utils"
	"github.com/xuri/excelize/v2"
)

// Workbook sheet names.
const (
	SheetRaw     = "raw"
	SheetClean   = "clean"
	SheetFlags   = "flags"
	SheetSummary = "summary"
	SheetActions = "actions"
)

// WorkbookPath places the workbook next to the flags export.
func WorkbookPath(out string, d dataset.Domain) string {
	flags := PathsFor(out, d).Flags
	name := strings.TrimSuffix(d.Files.Raw, filepath.Ext(d.Files.Raw))
	name = strings.TrimSuffix(name, "_raw")
	return filepath.Join(filepath.Dir(flags), name+".xlsx")
}

// WriteWorkbook writes one XLSX with raw, clean, flags, summary and actions
// sheets. Amounts and counts are stored as numbers, not text.
func WriteWorkbook(path string, o dataset.Output) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetRaw); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetClean, SheetFlags, SheetSummary, SheetActions} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("add sheet %s: %w", name, err)
		}
	}

	sheets := map[string][][]string{
		SheetRaw:   FlaggedTable(o.Domain, o.Flagged),
		SheetClean: CleanTable(o.Domain, o.Clean),
		SheetFlags: FlaggedTable(o.Domain, o.Subset),
	}
	for _, name := range []string{SheetRaw, SheetClean, SheetFlags} {
		if err := writeRows(f, name, typed(sheets[name])); err != nil {
			return err
		}
	}
	if err := writeRows(f, SheetSummary, summaryRows(o)); err != nil {
		return err
	}
	if err := writeRows(f, SheetActions, actionRows(o.Actions)); err != nil {
		return err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("encode workbook: %w", err)
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// typed converts numeric text cells to numbers; the header row stays text.
func typed(table [][]string) [][]any {
	out := make([][]any, len(table))
	for i, rec := range table {
		row := make([]any, len(rec))
		for j, v := range rec {
			row[j] = v
			if i == 0 || v == "" {
				continue
			}
			if n, err := strconv.Atoi(v); err == nil {
				row[j] = n
			} else if x, err := strconv.ParseFloat(v, 64); err == nil {
				row[j] = x
			}
		}
		out[i] = row
	}
	return out
}

func summaryRows(o dataset.Output) [][]any {
	s := o.Summary
	rows := [][]any{
		{"metric", "value"},
		{"domain", o.Domain.Name},
		{"seed", strconv.FormatUint(o.Seed, 10)},
		{"ground_truth_rows", len(o.GroundTruth)},
		{"raw_rows", s.Raw},
		{"clean_rows", s.Clean},
		{"flagged_rows", s.Flagged},
		{"duplicate_rows", s.Duplicates},
		{"negative_rows", s.Negatives},
		{"missing_keys", len(s.Gaps)},
	}
	for _, g := range s.Gaps {
		rows = append(rows, []any{"missing_key", g})
	}
	return rows
}

func actionRows(actions []dataset.Action) [][]any {
	rows := [][]any{{"raw_index", "key", "field", "original", "new", "reason"}}
	for _, a := range actions {
		rows = append(rows, []any{a.Index, a.Key, string(a.Field), a.Original, a.New, a.Reason})
	}
	return rows
}
