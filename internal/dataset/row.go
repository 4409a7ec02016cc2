package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for keys and exports.
const DateLayout = "2006-01-02"

// Row is one observation. Its composite key is (Date, Property, Category,
// Channel); Channel is empty for domains without a channel dimension.
type Row struct {
	Date     time.Time
	Property string
	Category string
	Channel  string

	Primary   float64 // gross_revenue | promo_spend
	Secondary float64 // promo_cost; always 0 for promo
	Derived   float64 // net_revenue | promo_revenue
	Count     int     // transactions | redemptions
	Source    string
}

// Key returns the composite key rendered as a string.
func (r Row) Key() string {
	return strings.Join([]string{r.Date.Format(DateLayout), r.Property, r.Category, r.Channel}, "|")
}

// fingerprint covers the key and every measured field at export precision.
// Two rows with equal fingerprints are exact full-row duplicates.
func (r Row) fingerprint() string {
	return fmt.Sprintf("%s|%.2f|%.2f|%.2f|%d|%s", r.Key(), r.Primary, r.Secondary, r.Derived, r.Count, r.Source)
}

// Field identifies a Row attribute that can be exported as a column.
type Field string

const (
	FieldDate      Field = "date"
	FieldProperty  Field = "property"
	FieldCategory  Field = "category"
	FieldChannel   Field = "channel"
	FieldPrimary   Field = "primary"
	FieldSecondary Field = "secondary"
	FieldDerived   Field = "derived"
	FieldCount     Field = "count"
	FieldSource    Field = "source"
	FieldRatio     Field = "ratio"
)

// Column maps an output header to a Row field.
type Column struct {
	Name  string `yaml:"name" validate:"required"`
	Field Field  `yaml:"field" validate:"oneof=date property category channel primary secondary derived count source ratio"`
}

// Value renders field f of r. ratio is only meaningful on clean rows and is
// passed separately; a nil ratio renders as an empty cell.
func (r Row) Value(f Field, ratio *float64) string {
	switch f {
	case FieldDate:
		return r.Date.Format(DateLayout)
	case FieldProperty:
		return r.Property
	case FieldCategory:
		return r.Category
	case FieldChannel:
		return r.Channel
	case FieldPrimary:
		return formatAmount(r.Primary)
	case FieldSecondary:
		return formatAmount(r.Secondary)
	case FieldDerived:
		return formatAmount(r.Derived)
	case FieldCount:
		return strconv.Itoa(r.Count)
	case FieldSource:
		return r.Source
	case FieldRatio:
		if ratio == nil {
			return ""
		}
		return strconv.FormatFloat(*ratio, 'f', 4, 64)
	}
	return ""
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(round2(v), 'f', 2, 64)
}

// YesNo renders a quality flag the way the exports expect.
func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
