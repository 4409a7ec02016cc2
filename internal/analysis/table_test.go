package analysis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var csvRows = []string{
	"revenue_date,department,gross_revenue,transactions,is_duplicate_row",
	"2025-12-14,slots,100.00,10,No",
	"2025-12-15,slots,101.00,11,No",
	"2025-12-16,slots,99.00,9,No",
	"2025-12-17,slots,102.00,12,No",
	"2025-12-18,slots,98.00,10,No",
	"2025-12-19,slots,100.00,10,Yes",
	"2025-12-20,slots,500.00,10,No",
	"2025-12-14,hotel,50.00,5,No",
	"2025-12-15,hotel,-51.00,5,No",
	"2025-12-16,hotel,,5,No",
}

func writeFixture(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "revenue.csv")
	require.NoError(t, os.WriteFile(p, []byte(strings.Join(csvRows, "\n")+"\n"), 0o644))
	return p
}

func colNamed(t *testing.T, r *Report, name string) ColumnSummary {
	t.Helper()
	for _, c := range r.Cols {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("column %s not found", name)
	return ColumnSummary{}
}

func TestAnalyzeCSVAndMarkdown(t *testing.T) {
	opt := DefaultOptions()
	opt.GroupBy = []string{"department"}
	rep, err := AnalyzeCSV(writeFixture(t), opt)
	require.NoError(t, err)

	assert.Equal(t, 10, rep.Rows)
	assert.Equal(t, 10, rep.Processed)
	assert.Len(t, rep.Cols, 5)
	assert.Len(t, rep.Samples, 5)

	assert.Equal(t, "date", colNamed(t, rep, "revenue_date").Kind)
	assert.Equal(t, "categorical", colNamed(t, rep, "department").Kind)
	assert.Equal(t, "flag", colNamed(t, rep, "is_duplicate_row").Kind)

	gross := colNamed(t, rep, "gross_revenue")
	assert.Equal(t, "numeric", gross.Kind)
	assert.Equal(t, 9, gross.NonNull)
	assert.Equal(t, 1, gross.Missing)
	assert.Equal(t, 1, gross.Negatives)
	assert.InDelta(t, -51.0, gross.Min, 1e-9)
	assert.InDelta(t, 500.0, gross.Max, 1e-9)

	require.Len(t, rep.Groups, 2)
	assert.Equal(t, "department=hotel", rep.Groups[0].Key)
	slots := rep.Groups[1]
	assert.Equal(t, "department=slots", slots.Key)
	assert.Equal(t, 7, slots.Size)
	assert.Equal(t, 1, slots.Metrics["gross_revenue"].Outliers)
	assert.Zero(t, rep.Groups[0].Metrics["gross_revenue"].Outliers)

	md := rep.Markdown()
	assert.Contains(t, md, "[DATASET PROFILE]")
	assert.Contains(t, md, "[SCHEMA]")
	assert.Contains(t, md, "- gross_revenue: numeric")
	assert.Contains(t, md, "negatives: 1")
	assert.Contains(t, md, "[GROUPS]")
	assert.Contains(t, md, "- department=slots (n=7)")
	assert.Contains(t, md, "| revenue_date | department |")
}

func TestAnalyzeCSVMaxRows(t *testing.T) {
	opt := DefaultOptions()
	opt.MaxRows = 3
	rep, err := AnalyzeCSV(writeFixture(t), opt)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Processed)
	require.Len(t, rep.Warnings, 1)
	assert.Contains(t, rep.Markdown(), "processed 3")
}

func TestAnalyzeCSVHeaderOnly(t *testing.T) {
	p := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(p, []byte("promo_date,promo_spend\n"), 0o644))
	rep, err := AnalyzeCSV(p, DefaultOptions())
	require.NoError(t, err)
	assert.Zero(t, rep.Rows)
	require.Len(t, rep.Cols, 2)
	assert.Equal(t, "unknown", rep.Cols[1].Kind)
	assert.Empty(t, rep.Samples)
}

func TestAnalyzeCSVMissingFile(t *testing.T) {
	_, err := AnalyzeCSV(filepath.Join(t.TempDir(), "nope.csv"), DefaultOptions())
	assert.Error(t, err)
}

func TestAnalyzeXLSX(t *testing.T) {
	p := filepath.Join(t.TempDir(), "book.xlsx")
	f := excelize.NewFile()
	_, err := f.NewSheet("clean")
	require.NoError(t, err)
	for i, line := range csvRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := strings.Split(line, ",")
		require.NoError(t, f.SetSheetRow("clean", cell, &row))
	}
	require.NoError(t, f.SaveAs(p))
	require.NoError(t, f.Close())

	rep, err := AnalyzeXLSX(p, DefaultOptions(), "clean", 0)
	require.NoError(t, err)
	assert.Equal(t, "book.xlsx[clean]", rep.Name)
	assert.Equal(t, 10, rep.Rows)
	assert.Equal(t, "numeric", colNamed(t, rep, "transactions").Kind)

	rep, err = AnalyzeXLSX(p, DefaultOptions(), "", 2)
	require.NoError(t, err)
	assert.Equal(t, 10, rep.Rows)

	_, err = AnalyzeXLSX(p, DefaultOptions(), "missing", 0)
	assert.Error(t, err)
	_, err = AnalyzeXLSX(p, DefaultOptions(), "", 9)
	assert.Error(t, err)
}

func TestMedianMAD(t *testing.T) {
	m, mad := medianMAD([]float64{1, 2, 3, 4, 100})
	assert.InDelta(t, 3.0, m, 1e-9)
	assert.InDelta(t, 1.0, mad, 1e-9)
	n, z := outliers([]float64{1, 2, 3, 4, 100}, 3.5)
	assert.Equal(t, 1, n)
	assert.Greater(t, z, 3.5)
}
