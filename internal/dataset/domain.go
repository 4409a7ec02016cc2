package dataset

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownDomain is returned when a domain name is not in the catalog.
	ErrUnknownDomain = errors.New("unknown domain")
	// ErrInvalidDomain wraps validation failures of a domain table.
	ErrInvalidDomain = errors.New("invalid domain")
)

// Derivation selects how the derived amount is computed from the primary one.
type Derivation string

const (
	// DeriveNet computes derived = primary - secondary.
	DeriveNet Derivation = "net"
	// DeriveYield computes derived = primary x Uniform(ROI.Min, ROI.Max).
	DeriveYield Derivation = "yield"
)

// Date is a calendar date that round-trips through YAML as YYYY-MM-DD.
type Date struct{ time.Time }

// Day builds a UTC calendar date.
func Day(y int, m time.Month, d int) Date {
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalYAML() (any, error) { return d.Format(DateLayout), nil }

func (d *Date) UnmarshalYAML(n *yaml.Node) error {
	t, err := time.Parse(DateLayout, strings.TrimSpace(n.Value))
	if err != nil {
		return fmt.Errorf("date %q: %w", n.Value, err)
	}
	d.Time = t
	return nil
}

// Same reports whether t falls on d.
func (d Date) Same(t time.Time) bool {
	y1, m1, d1 := d.Date()
	y2, m2, d2 := t.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Segment is one row of a magnitude table: the base amount, the mean count,
// and the provenance label attached to rows drawn from it.
type Segment struct {
	Name      string  `yaml:"name" validate:"required"`
	Base      float64 `yaml:"base,omitempty" validate:"gte=0"`
	MeanCount float64 `yaml:"mean_count,omitempty" validate:"gte=0"`
	Source    string  `yaml:"source,omitempty"`
}

// Range is a closed [Min, Max] interval for uniform draws.
type Range struct {
	Min float64 `yaml:"min" validate:"gte=0"`
	Max float64 `yaml:"max" validate:"gtefield=Min"`
}

// Uplift applies Factor to the base magnitude on the listed weekdays.
type Uplift struct {
	Factor float64  `yaml:"factor" validate:"gt=0"`
	Days   []string `yaml:"days" validate:"dive,oneof=monday tuesday wednesday thursday friday saturday sunday"`
}

// Applies reports whether t falls on one of the uplift weekdays.
func (u Uplift) Applies(t time.Time) bool {
	wd := strings.ToLower(t.Weekday().String())
	for _, d := range u.Days {
		if strings.EqualFold(d, wd) {
			return true
		}
	}
	return false
}

// PromoCost describes the secondary amount drawn on promotion dates.
type PromoCost struct {
	Dates []Date `yaml:"dates,omitempty"`
	Frac  Range  `yaml:"frac"`
}

// On reports whether t is a promotion date.
func (p PromoCost) On(t time.Time) bool {
	for _, d := range p.Dates {
		if d.Same(t) {
			return true
		}
	}
	return false
}

// Files names the three artifacts written for a domain.
type Files struct {
	Raw   string `yaml:"raw" validate:"required"`
	Clean string `yaml:"clean" validate:"required"`
	Flags string `yaml:"flags" validate:"required"`
}

// FlagColumns names the Yes/No quality columns of the raw and flags exports.
type FlagColumns struct {
	Duplicate string `yaml:"duplicate" validate:"required"`
	Negative  string `yaml:"negative" validate:"required"`
}

// MissingFeed drops every row on Date whose category is listed. An empty
// category list drops the whole day.
type MissingFeed struct {
	Date       Date     `yaml:"date"`
	Categories []string `yaml:"categories,omitempty"`
}

// Spike multiplies Target on Date for the listed categories (all when empty).
type Spike struct {
	Date       Date     `yaml:"date"`
	Categories []string `yaml:"categories,omitempty"`
	Target     Field    `yaml:"target" validate:"oneof=primary derived"`
	Factor     float64  `yaml:"factor" validate:"gt=0"`
}

// Defects lists the data-quality problems injected into ground truth.
type Defects struct {
	Missing       []MissingFeed `yaml:"missing,omitempty" validate:"dive"`
	DuplicateDate *Date         `yaml:"duplicate_date,omitempty"`
	Negatives     int           `yaml:"negatives" validate:"gte=0"`
	Spike         *Spike        `yaml:"spike,omitempty"`
}

// Domain is the full configuration table of one dataset.
type Domain struct {
	Name       string      `yaml:"name" validate:"required"`
	Dir        string      `yaml:"dir" validate:"required"`
	Files      Files       `yaml:"files"`
	Start      Date        `yaml:"start"`
	End        Date        `yaml:"end"`
	Properties []string    `yaml:"properties" validate:"dive,required"`
	Categories []Segment   `yaml:"categories" validate:"dive"`
	Channels   []Segment   `yaml:"channels,omitempty" validate:"dive"`
	Uplift     Uplift      `yaml:"uplift"`
	NoiseFrac  float64     `yaml:"noise_frac" validate:"gte=0"`
	CountSD    float64     `yaml:"count_sd" validate:"gte=0"`
	PromoCost  PromoCost   `yaml:"promo_cost"`
	Derive     Derivation  `yaml:"derive" validate:"oneof=net yield"`
	ROI        Range       `yaml:"roi"`
	Columns    []Column    `yaml:"columns" validate:"required,dive"`
	Flags      FlagColumns `yaml:"flag_columns"`
	Defects    Defects     `yaml:"defects"`
}

var validate = validator.New()

// Validate checks the table. Empty properties, categories or date ranges are
// valid and simply generate no rows.
func (d Domain) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidDomain, d.Name, err)
	}
	return nil
}

// Dates returns every calendar day in [Start, End]; nil when End < Start.
func (d Domain) Dates() []time.Time {
	var out []time.Time
	for t := d.Start.Time; !t.After(d.End.Time); t = t.AddDate(0, 0, 1) {
		out = append(out, t)
	}
	return out
}

// HasRatio reports whether the clean export carries a ratio column.
func (d Domain) HasRatio() bool {
	for _, c := range d.Columns {
		if c.Field == FieldRatio {
			return true
		}
	}
	return false
}

// RawColumns is the export layout minus the clean-only ratio column.
func (d Domain) RawColumns() []Column {
	out := make([]Column, 0, len(d.Columns))
	for _, c := range d.Columns {
		if c.Field != FieldRatio {
			out = append(out, c)
		}
	}
	return out
}

// derive recomputes the derived amount of r after its primary changed.
func (d Domain) derive(r *Row, rng *Rand) {
	switch d.Derive {
	case DeriveYield:
		r.Derived = round2(r.Primary * rng.Uniform(d.ROI.Min, d.ROI.Max))
	default:
		r.Derived = round2(r.Primary - r.Secondary)
	}
}

func weekend() []string { return []string{"friday", "saturday", "sunday"} }

// RevenueDomain is the daily revenue-by-department dataset.
func RevenueDomain() Domain {
	dup := Day(2025, time.November, 16)
	return Domain{
		Name: "revenue",
		Dir:  "01_problem-revenue-integrity",
		Files: Files{
			Raw:   "p1_daily_revenue_raw.csv",
			Clean: "p1_daily_revenue_clean.csv",
			Flags: "p1_qa_flags.csv",
		},
		Start:      Day(2025, time.October, 1),
		End:        Day(2025, time.December, 31),
		Properties: []string{"RW_NYC"},
		Categories: []Segment{
			{Name: "slots", Base: 450000, MeanCount: 1000, Source: "slots_system"},
			{Name: "tables", Base: 180000, MeanCount: 300, Source: "table_system"},
			{Name: "hotel", Base: 120000, MeanCount: 300, Source: "hotel_pms"},
			{Name: "fnb", Base: 80000, MeanCount: 1000, Source: "pos"},
			{Name: "retail", Base: 25000, MeanCount: 300, Source: "pos"},
		},
		Uplift:    Uplift{Factor: 1.25, Days: weekend()},
		NoiseFrac: 0.08,
		CountSD:   60,
		PromoCost: PromoCost{
			Dates: []Date{
				Day(2025, time.November, 8), Day(2025, time.November, 9),
				Day(2025, time.November, 15), Day(2025, time.November, 16),
				Day(2025, time.November, 22), Day(2025, time.November, 23),
			},
			Frac: Range{Min: 0.03, Max: 0.08},
		},
		Derive: DeriveNet,
		Columns: []Column{
			{Name: "revenue_date", Field: FieldDate},
			{Name: "property", Field: FieldProperty},
			{Name: "department", Field: FieldCategory},
			{Name: "gross_revenue", Field: FieldPrimary},
			{Name: "promo_cost", Field: FieldSecondary},
			{Name: "net_revenue", Field: FieldDerived},
			{Name: "transactions", Field: FieldCount},
			{Name: "source_system", Field: FieldSource},
		},
		Flags: FlagColumns{Duplicate: "is_duplicate_row", Negative: "is_negative_value"},
		Defects: Defects{
			Missing: []MissingFeed{
				{Date: Day(2025, time.October, 14), Categories: []string{"hotel", "fnb"}},
				{Date: Day(2025, time.November, 3), Categories: []string{"hotel", "fnb"}},
				{Date: Day(2025, time.December, 7), Categories: []string{"hotel", "fnb"}},
			},
			DuplicateDate: &dup,
			Negatives:     1,
			Spike: &Spike{
				Date:       Day(2025, time.December, 20),
				Categories: []string{"slots"},
				Target:     FieldPrimary,
				Factor:     1.75,
			},
		},
	}
}

// PromoDomain is the daily campaign-by-channel promotion dataset.
func PromoDomain() Domain {
	dup := Day(2025, time.November, 15)
	return Domain{
		Name: "promo",
		Dir:  "02_problem-promo-effectiveness",
		Files: Files{
			Raw:   "p2_promo_raw.csv",
			Clean: "p2_promo_clean.csv",
			Flags: "p2_qa_flags.csv",
		},
		Start:      Day(2025, time.September, 1),
		End:        Day(2025, time.December, 31),
		Properties: []string{"RW_NYC"},
		Categories: []Segment{
			{Name: "Fall Bonus"},
			{Name: "Holiday Boost"},
			{Name: "VIP Reload"},
			{Name: "Slots Frenzy"},
		},
		Channels: []Segment{
			{Name: "Email", Base: 900, MeanCount: 120},
			{Name: "SMS", Base: 1200, MeanCount: 170},
			{Name: "App", Base: 1600, MeanCount: 220},
			{Name: "Onsite", Base: 1800, MeanCount: 240},
		},
		Uplift:    Uplift{Factor: 1.15, Days: weekend()},
		NoiseFrac: 0.35,
		CountSD:   60,
		Derive:    DeriveYield,
		ROI:       Range{Min: 1.6, Max: 3.8},
		Columns: []Column{
			{Name: "promo_date", Field: FieldDate},
			{Name: "property", Field: FieldProperty},
			{Name: "campaign", Field: FieldCategory},
			{Name: "channel", Field: FieldChannel},
			{Name: "promo_spend", Field: FieldPrimary},
			{Name: "redemptions", Field: FieldCount},
			{Name: "promo_revenue", Field: FieldDerived},
			{Name: "roi", Field: FieldRatio},
		},
		Flags: FlagColumns{Duplicate: "is_duplicate_row", Negative: "is_negative_spend"},
		Defects: Defects{
			Missing: []MissingFeed{
				{Date: Day(2025, time.October, 10)},
				{Date: Day(2025, time.December, 5)},
			},
			DuplicateDate: &dup,
			Negatives:     1,
			Spike: &Spike{
				Date:   Day(2025, time.December, 20),
				Target: FieldDerived,
				Factor: 2.5,
			},
		},
	}
}
