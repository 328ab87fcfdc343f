package document

import (
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ByLCY/folio/pricing"
)

// Field names a value a table column can display.
type Field string

const (
	FieldIndex           Field = "index"
	FieldParticipantName Field = "participant-name"
	FieldParticipantID   Field = "participant-id"
	FieldProductName     Field = "product-name"
	FieldProductCode     Field = "product-code"
	FieldDateStart       Field = "date-start"
	FieldDateEnd         Field = "date-end"
	FieldDuration        Field = "duration"
	FieldPriceUnit       Field = "price-unit"
	FieldPriceSubsidized Field = "price-subsidized"
	FieldPriceFull       Field = "price-full"
)

// Row is what a table column sees for one line item.
type Row struct {
	Index int // 1-based
	Item  LineItem
	Price pricing.Breakdown
}

type fieldInfo struct {
	// title-like fields pick their font by script
	scriptAware bool
	align       string
	// totals selects the amount shown in a totals row; nil means not summable
	totals func(pricing.Totals) decimal.Decimal
	text   func(t *Template, r Row) string
}

var fieldCatalogue = map[Field]fieldInfo{
	FieldIndex: {
		align: "center",
		text:  func(_ *Template, r Row) string { return strconv.Itoa(r.Index) },
	},
	FieldParticipantName: {
		scriptAware: true,
		text:        func(_ *Template, r Row) string { return r.Item.ParticipantName },
	},
	FieldParticipantID: {
		text: func(_ *Template, r Row) string { return r.Item.ParticipantID },
	},
	FieldProductName: {
		scriptAware: true,
		text:        func(_ *Template, r Row) string { return r.Item.ProductName },
	},
	FieldProductCode: {
		align: "center",
		text:  func(t *Template, r Row) string { return t.Codes.Resolve(r.Item.ProductName) },
	},
	FieldDateStart: {
		text: func(t *Template, r Row) string { return formatDate(r.Item.DateRangeStart, t.DateFormat) },
	},
	FieldDateEnd: {
		text: func(t *Template, r Row) string { return formatDate(r.Item.DateRangeEnd, t.DateFormat) },
	},
	FieldDuration: {
		text: func(t *Template, r Row) string {
			start := formatDate(r.Item.DateRangeStart, t.DateFormat)
			end := formatDate(r.Item.DateRangeEnd, t.DateFormat)
			switch {
			case start == "":
				return end
			case end == "":
				return start
			default:
				return start + " - " + end
			}
		},
	},
	FieldPriceUnit: {
		align: "right",
		text:  func(t *Template, r Row) string { return t.Money.Format(r.Item.UnitPrice) },
	},
	FieldPriceSubsidized: {
		align:  "right",
		text:   func(t *Template, r Row) string { return t.Money.Format(r.Price.Subsidized) },
		totals: func(tot pricing.Totals) decimal.Decimal { return tot.Payable },
	},
	FieldPriceFull: {
		align:  "right",
		text:   func(t *Template, r Row) string { return t.Money.Format(r.Price.Full) },
		totals: func(tot pricing.Totals) decimal.Decimal { return tot.Full },
	},
}

// Fields lists the known column fields, sorted.
func Fields() []Field {
	out := make([]Field, 0, len(fieldCatalogue))
	for f := range fieldCatalogue {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func formatDate(t *time.Time, layout string) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(layout)
}
