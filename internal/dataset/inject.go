package dataset

// Inject applies the domain's defects to a copy of rows, in fixed order:
// missing feeds, duplicate load, sign corruption, spike. Sampling for sign
// corruption happens after duplication, so duplicated rows are candidates.
func Inject(rows []Row, d Domain, rng *Rand) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if !missing(d.Defects.Missing, r) {
			out = append(out, r)
		}
	}

	if dd := d.Defects.DuplicateDate; dd != nil {
		n := len(out)
		for i := 0; i < n; i++ {
			if dd.Same(out[i].Date) {
				out = append(out, out[i])
			}
		}
	}

	for i := 0; i < d.Defects.Negatives; i++ {
		// only strictly positive amounts can carry a visible sign error
		var cand []int
		for j := range out {
			if out[j].Primary > 0 {
				cand = append(cand, j)
			}
		}
		if len(cand) == 0 {
			break
		}
		r := &out[cand[rng.IntN(len(cand))]]
		r.Primary = -r.Primary
		d.derive(r, rng)
	}

	if s := d.Defects.Spike; s != nil {
		for i := range out {
			r := &out[i]
			if !s.Date.Same(r.Date) || !listed(s.Categories, r.Category) {
				continue
			}
			if s.Target == FieldDerived {
				r.Derived = round2(r.Derived * s.Factor)
				continue
			}
			r.Primary = round2(r.Primary * s.Factor)
			if d.Derive == DeriveNet {
				r.Derived = round2(r.Primary - r.Secondary)
			} else {
				// yield keeps its ratio to primary
				r.Derived = round2(r.Derived * s.Factor)
			}
		}
	}
	return out
}

func missing(feeds []MissingFeed, r Row) bool {
	for _, f := range feeds {
		if f.Date.Same(r.Date) && listed(f.Categories, r.Category) {
			return true
		}
	}
	return false
}

// listed reports whether name is in names; an empty list matches everything.
func listed(names []string, name string) bool {
	if len(names) == 0 {
		return true
	}
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
