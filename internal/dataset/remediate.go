package dataset

import "sort"

// Reasons recorded on remediation actions.
const (
	ReasonNegativeClamped  = "negative_clamped"
	ReasonDuplicateDropped = "duplicate_dropped"
)

// FlaggedRow is a raw row with its quality flags. Values are the original,
// uncorrected ones.
type FlaggedRow struct {
	Row
	Duplicate bool
	Negative  bool
}

// Flagged reports whether any quality flag is set.
func (f FlaggedRow) Flagged() bool { return f.Duplicate || f.Negative }

// CleanRow is a remediated row. Ratio is nil when the domain has no ratio
// column or the primary amount is zero.
type CleanRow struct {
	Row
	Ratio *float64
}

// Action records one correction made while cleaning.
type Action struct {
	Index    int // position in the raw set
	Key      string
	Field    Field // empty for dropped rows
	Original float64
	New      float64
	Reason   string
}

// Summary gives the row counts of a remediation pass.
type Summary struct {
	Raw        int
	Clean      int
	Flagged    int
	Duplicates int
	Negatives  int
	// Gaps lists expected composite keys with no raw row.
	Gaps []string
}

// Result is everything the Remediator derives from a raw set.
type Result struct {
	Flagged []FlaggedRow
	Clean   []CleanRow
	Subset  []FlaggedRow
	Actions []Action
	Summary Summary
}

// Remediate flags and cleans raw without modifying it. Negative primaries
// are clamped to zero (and re-derived) before exact duplicates are dropped,
// so the first copy kept is always the clamped one.
func Remediate(raw []Row, d Domain) Result {
	res := Result{
		Flagged: make([]FlaggedRow, 0, len(raw)),
		Clean:   make([]CleanRow, 0, len(raw)),
		Subset:  []FlaggedRow{},
		Actions: []Action{},
	}

	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		fp := r.fingerprint()
		_, dup := seen[fp]
		seen[fp] = struct{}{}
		f := FlaggedRow{Row: r, Duplicate: dup, Negative: r.Primary < 0}
		res.Flagged = append(res.Flagged, f)
		if f.Flagged() {
			res.Subset = append(res.Subset, f)
		}
		if dup {
			res.Summary.Duplicates++
		}
		if f.Negative {
			res.Summary.Negatives++
		}
	}

	clamped := make([]Row, len(raw))
	copy(clamped, raw)
	for i := range clamped {
		r := &clamped[i]
		if r.Primary >= 0 {
			continue
		}
		res.Actions = append(res.Actions, Action{
			Index: i, Key: r.Key(), Field: FieldPrimary,
			Original: r.Primary, New: 0, Reason: ReasonNegativeClamped,
		})
		r.Primary = 0
		// clamped yield re-derives to 0 for any ratio; no draw needed
		if d.Derive == DeriveYield {
			r.Derived = 0
		} else {
			r.Derived = round2(r.Primary - r.Secondary)
		}
	}

	kept := make(map[string]struct{}, len(clamped))
	withRatio := d.HasRatio()
	for i, r := range clamped {
		fp := r.fingerprint()
		if _, ok := kept[fp]; ok {
			res.Actions = append(res.Actions, Action{Index: i, Key: r.Key(), Reason: ReasonDuplicateDropped})
			continue
		}
		kept[fp] = struct{}{}
		c := CleanRow{Row: r}
		if withRatio && r.Primary > 0 {
			v := roundTo(r.Derived/r.Primary, 4)
			c.Ratio = &v
		}
		res.Clean = append(res.Clean, c)
	}

	res.Summary.Raw = len(raw)
	res.Summary.Clean = len(res.Clean)
	res.Summary.Flagged = len(res.Subset)
	res.Summary.Gaps = Gaps(raw, d)
	return res
}

// Gaps returns expected keys of d that have no row in rows, sorted.
func Gaps(rows []Row, d Domain) []string {
	have := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		have[r.Key()] = struct{}{}
	}
	gaps := []string{}
	for _, k := range ExpectedKeys(d) {
		if _, ok := have[k]; !ok {
			gaps = append(gaps, k)
		}
	}
	sort.Strings(gaps)
	return gaps
}
