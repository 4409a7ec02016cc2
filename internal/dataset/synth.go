package dataset

import "math"

// Synthesize builds the ground-truth set: one row per date x property x
// category [x channel], in that nesting order. It never fails; an empty
// dimension yields an empty set.
func Synthesize(d Domain, rng *Rand) []Row {
	dates := d.Dates()
	channels := d.Channels
	if len(channels) == 0 {
		// single pass with no channel; magnitudes come from the category
		channels = []Segment{{}}
	}
	rows := make([]Row, 0, len(dates)*len(d.Properties)*len(d.Categories)*len(channels))
	for _, day := range dates {
		uplift := 1.0
		if d.Uplift.Applies(day) {
			uplift = d.Uplift.Factor
		}
		promoDay := d.PromoCost.On(day)
		for _, prop := range d.Properties {
			for _, cat := range d.Categories {
				for _, ch := range channels {
					mag := cat
					if len(d.Channels) > 0 {
						mag = ch
					}
					r := Row{
						Date:     day,
						Property: prop,
						Category: cat.Name,
						Channel:  ch.Name,
						Source:   mag.Source,
					}
					noise := rng.Normal(0, mag.Base*d.NoiseFrac)
					r.Primary = round2(math.Max(0, mag.Base*uplift+noise))
					if promoDay {
						r.Secondary = round2(r.Primary * rng.Uniform(d.PromoCost.Frac.Min, d.PromoCost.Frac.Max))
					}
					d.derive(&r, rng)
					r.Count = int(math.Max(1, math.Round(rng.Normal(mag.MeanCount, d.CountSD))))
					rows = append(rows, r)
				}
			}
		}
	}
	return rows
}

// ExpectedKeys returns the composite keys of the full ground-truth grid.
func ExpectedKeys(d Domain) []string {
	channels := d.Channels
	if len(channels) == 0 {
		channels = []Segment{{}}
	}
	var keys []string
	for _, day := range d.Dates() {
		for _, prop := range d.Properties {
			for _, cat := range d.Categories {
				for _, ch := range channels {
					keys = append(keys, Row{Date: day, Property: prop, Category: cat.Name, Channel: ch.Name}.Key())
				}
			}
		}
	}
	return keys
}
