package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/resortgen/internal/dataset"
	"github.com/KaramelBytes/resortgen/internal/manifest"
	"github.com/KaramelBytes/resortgen/internal/utils"
)

// Paths locates the three CSV artifacts of a domain under a run root.
type Paths struct {
	Raw   string
	Clean string
	Flags string
}

// PathsFor returns <out>/<dir>/{data_raw,data_clean,outputs}/<file>.
func PathsFor(out string, d dataset.Domain) Paths {
	base := filepath.Join(out, d.Dir)
	return Paths{
		Raw:   filepath.Join(base, "data_raw", d.Files.Raw),
		Clean: filepath.Join(base, "data_clean", d.Files.Clean),
		Flags: filepath.Join(base, "outputs", d.Files.Flags),
	}
}

// FlaggedTable renders rows in the raw layout plus the two Yes/No flag columns.
func FlaggedTable(d dataset.Domain, rows []dataset.FlaggedRow) [][]string {
	cols := d.RawColumns()
	header := make([]string, 0, len(cols)+2)
	for _, c := range cols {
		header = append(header, c.Name)
	}
	header = append(header, d.Flags.Duplicate, d.Flags.Negative)

	table := make([][]string, 0, len(rows)+1)
	table = append(table, header)
	for _, r := range rows {
		rec := make([]string, 0, len(header))
		for _, c := range cols {
			rec = append(rec, r.Value(c.Field, nil))
		}
		rec = append(rec, dataset.YesNo(r.Duplicate), dataset.YesNo(r.Negative))
		table = append(table, rec)
	}
	return table
}

// CleanTable renders the clean set in the full domain layout.
func CleanTable(d dataset.Domain, rows []dataset.CleanRow) [][]string {
	header := make([]string, 0, len(d.Columns))
	for _, c := range d.Columns {
		header = append(header, c.Name)
	}
	table := make([][]string, 0, len(rows)+1)
	table = append(table, header)
	for _, r := range rows {
		rec := make([]string, 0, len(header))
		for _, c := range d.Columns {
			rec = append(rec, r.Value(c.Field, r.Ratio))
		}
		table = append(table, rec)
	}
	return table
}

// WriteCSV writes table to path atomically, creating parent directories.
func WriteCSV(path string, table [][]string) error {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(table); err != nil {
		return fmt.Errorf("encode csv %s: %w", filepath.Base(path), err)
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteDomain writes the raw, clean and flags CSVs of one pipeline output and
// returns the artifacts written.
func WriteDomain(out string, o dataset.Output) ([]manifest.Artifact, error) {
	p := PathsFor(out, o.Domain)
	jobs := []struct {
		kind  string
		path  string
		table [][]string
	}{
		{manifest.KindRaw, p.Raw, FlaggedTable(o.Domain, o.Flagged)},
		{manifest.KindClean, p.Clean, CleanTable(o.Domain, o.Clean)},
		{manifest.KindFlags, p.Flags, FlaggedTable(o.Domain, o.Subset)},
	}
	arts := make([]manifest.Artifact, 0, len(jobs))
	for _, j := range jobs {
		if err := WriteCSV(j.path, j.table); err != nil {
			return arts, err
		}
		arts = append(arts, manifest.Artifact{
			Domain: o.Domain.Name,
			Kind:   j.kind,
			Path:   j.path,
			Rows:   len(j.table) - 1,
		})
	}
	return arts, nil
}
