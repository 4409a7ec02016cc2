package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Options controls profiling of generated datasets.
type Options struct {
	// MaxRows limits rows processed; 0 means unlimited.
	MaxRows int
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// GroupBy computes per-group numeric summaries and outliers for the given columns.
	GroupBy []string
	// Outlier detection via robust Z-score (MAD). Counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
}

// DefaultOptions returns reasonable defaults for dataset profiling.
func DefaultOptions() Options {
	return Options{
		MaxRows:          100000,
		SampleRows:       5,
		Outliers:         true,
		OutlierThreshold: 3.5,
	}
}

// Report is a markdown-friendly profile of a tabular dataset.
type Report struct {
	Name      string
	Rows      int
	Processed int
	Cols      []ColumnSummary
	Samples   [][]string
	Groups    []GroupResult
	Warnings  []string
}

// ColumnSummary captures inferred type and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    string // numeric|date|flag|categorical|unknown
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min, Max, Mean, Std float64
	Negatives           int
	// Outliers (robust Z via MAD)
	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64
	// Categorical / flag top values
	TopValues []CategoryCount
}

type CategoryCount struct {
	Value string
	Count int
}

// GroupResult captures numeric metrics per group key.
type GroupResult struct {
	Key     string
	Size    int
	Metrics map[string]NumSummary // by column name
}

type NumSummary struct {
	Count          int
	Min, Max, Mean float64
	Outliers       int
}

// AnalyzeCSV profiles a CSV file.
func AnalyzeCSV(path string, opt Options) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		r.Comma = '\t'
	}

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Report{Name: filepath.Base(path)}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, rec)
	}
	return analyzeRows(filepath.Base(path), header, rows, opt), nil
}

// column accumulates one column's values during a pass.
type column struct {
	name   string
	miss   int
	nums   []float64
	dates  int
	cats   map[string]int
	nonNil int
}

func analyzeRows(name string, header []string, rows [][]string, opt Options) *Report {
	rep := &Report{Name: name, Rows: len(rows)}
	ncol := len(header)
	if ncol == 0 {
		return rep
	}
	cols := make([]*column, ncol)
	index := map[string]int{}
	for i, h := range header {
		h = strings.TrimSpace(h)
		cols[i] = &column{name: h, cats: map[string]int{}}
		index[strings.ToLower(h)] = i
	}
	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}

	type groupAcc struct {
		size int
		vals map[int][]float64
	}
	groups := map[string]*groupAcc{}
	var groupOrder []string

	for _, rec := range rows {
		if rep.Processed >= maxRows {
			break
		}
		rep.Processed++
		if len(rec) < ncol {
			tmp := make([]string, ncol)
			copy(tmp, rec)
			rec = tmp
		}
		if len(rep.Samples) < opt.SampleRows {
			rep.Samples = append(rep.Samples, append([]string(nil), rec[:ncol]...))
		}

		var ga *groupAcc
		if key := groupKey(opt.GroupBy, index, cols, rec); key != "" {
			ga = groups[key]
			if ga == nil {
				ga = &groupAcc{vals: map[int][]float64{}}
				groups[key] = ga
				groupOrder = append(groupOrder, key)
			}
			ga.size++
		}

		for j := 0; j < ncol; j++ {
			v := strings.TrimSpace(rec[j])
			c := cols[j]
			if v == "" {
				c.miss++
				continue
			}
			c.nonNil++
			c.cats[v]++
			if x, err := strconv.ParseFloat(v, 64); err == nil {
				c.nums = append(c.nums, x)
				if ga != nil {
					ga.vals[j] = append(ga.vals[j], x)
				}
				continue
			}
			if _, err := time.Parse("2006-01-02", v); err == nil {
				c.dates++
			}
		}
	}

	for _, c := range cols {
		rep.Cols = append(rep.Cols, summarize(c, opt))
	}

	sort.Strings(groupOrder)
	for _, key := range groupOrder {
		ga := groups[key]
		gr := GroupResult{Key: key, Size: ga.size, Metrics: map[string]NumSummary{}}
		for j, vals := range ga.vals {
			if rep.Cols[j].Kind != "numeric" {
				continue
			}
			gr.Metrics[cols[j].name] = numSummary(vals, opt)
		}
		rep.Groups = append(rep.Groups, gr)
	}
	if rep.Processed < rep.Rows {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("only the first %d of %d rows were profiled", rep.Processed, rep.Rows))
	}
	return rep
}

func groupKey(by []string, index map[string]int, cols []*column, rec []string) string {
	var parts []string
	for _, name := range by {
		idx, ok := index[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", cols[idx].name, safeVal(strings.TrimSpace(rec[idx]))))
	}
	return strings.Join(parts, " | ")
}

func summarize(c *column, opt Options) ColumnSummary {
	s := ColumnSummary{Name: c.name, NonNull: c.nonNil, Missing: c.miss, Unique: len(c.cats)}
	switch {
	case c.nonNil == 0:
		s.Kind = "unknown"
	case len(c.nums) == c.nonNil:
		s.Kind = "numeric"
	case c.dates == c.nonNil:
		s.Kind = "date"
	case isFlag(c.cats):
		s.Kind = "flag"
	default:
		s.Kind = "categorical"
	}
	if s.Kind == "numeric" {
		s.Min, s.Max = math.Inf(1), math.Inf(-1)
		// Welford
		var mean, m2 float64
		for i, x := range c.nums {
			if x < s.Min {
				s.Min = x
			}
			if x > s.Max {
				s.Max = x
			}
			if x < 0 {
				s.Negatives++
			}
			delta := x - mean
			mean += delta / float64(i+1)
			m2 += delta * (x - mean)
		}
		s.Mean = mean
		if len(c.nums) > 1 {
			s.Std = math.Sqrt(m2 / float64(len(c.nums)-1))
		}
		if opt.Outliers {
			s.OutlierThreshold = opt.OutlierThreshold
			s.OutliersCount, s.OutliersMaxAbsZ = outliers(c.nums, opt.OutlierThreshold)
		}
		return s
	}
	for v, n := range c.cats {
		s.TopValues = append(s.TopValues, CategoryCount{Value: v, Count: n})
	}
	sort.Slice(s.TopValues, func(i, j int) bool {
		if s.TopValues[i].Count != s.TopValues[j].Count {
			return s.TopValues[i].Count > s.TopValues[j].Count
		}
		return s.TopValues[i].Value < s.TopValues[j].Value
	})
	if len(s.TopValues) > 5 {
		s.TopValues = s.TopValues[:5]
	}
	return s
}

func isFlag(cats map[string]int) bool {
	for v := range cats {
		if v != "Yes" && v != "No" {
			return false
		}
	}
	return true
}

func numSummary(vals []float64, opt Options) NumSummary {
	ns := NumSummary{Count: len(vals), Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	for _, x := range vals {
		sum += x
		ns.Min = math.Min(ns.Min, x)
		ns.Max = math.Max(ns.Max, x)
	}
	if len(vals) > 0 {
		ns.Mean = sum / float64(len(vals))
	}
	if opt.Outliers {
		ns.Outliers, _ = outliers(vals, opt.OutlierThreshold)
	}
	return ns
}

// outliers counts values with robust |z| above thr, where
// z = 0.6745 * (x - median) / MAD.
func outliers(vals []float64, thr float64) (int, float64) {
	median, mad := medianMAD(vals)
	if mad == 0 {
		return 0, 0
	}
	n, maxZ := 0, 0.0
	for _, x := range vals {
		z := math.Abs(0.6745 * (x - median) / mad)
		if z > thr {
			n++
		}
		maxZ = math.Max(maxZ, z)
	}
	return n, maxZ
}

// Markdown renders a compact profile.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET PROFILE]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	if r.Processed > 0 && r.Processed < r.Rows {
		b.WriteString(fmt.Sprintf("Rows: ~%d (processed %d)\n", r.Rows, r.Processed))
	} else {
		b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	}
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		missPct := 0.0
		if total := c.NonNull + c.Missing; total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case "numeric":
			b.WriteString(fmt.Sprintf(" — min %.2f, max %.2f, mean %.2f, std %.2f", c.Min, c.Max, c.Mean, c.Std))
			if c.Negatives > 0 {
				b.WriteString(fmt.Sprintf("; negatives: %d", c.Negatives))
			}
			if c.OutlierThreshold > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold))
			}
		case "categorical", "flag":
			if len(c.TopValues) > 0 {
				b.WriteString(" — top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		}
		b.WriteString("\n")
	}

	if len(r.Groups) > 0 {
		b.WriteString("\n[GROUPS]\n")
		for _, g := range r.Groups {
			b.WriteString(fmt.Sprintf("- %s (n=%d)", g.Key, g.Size))
			names := make([]string, 0, len(g.Metrics))
			for n := range g.Metrics {
				names = append(names, n)
			}
			sort.Strings(names)
			for _, n := range names {
				m := g.Metrics[n]
				b.WriteString(fmt.Sprintf("; %s mean %.2f [%.2f..%.2f]", n, m.Mean, m.Min, m.Max))
				if m.Outliers > 0 {
					b.WriteString(fmt.Sprintf(" outliers %d", m.Outliers))
				}
			}
			b.WriteString("\n")
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n| ")
		for i, c := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c.Name))
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i := range r.Cols {
				if i > 0 {
					b.WriteString(" | ")
				}
				if i < len(row) {
					b.WriteString(safeVal(row[i]))
				}
			}
			b.WriteString(" |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := append([]float64(nil), vals...)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
