// Package pricing computes age-based subsidised prices.
//
// All amounts are decimal and never rounded before summation; rounding to the
// display precision happens only in Formatter.Format.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Policy is the subsidy rule.
//
// A participant whose age is at least AgeThreshold pays the raw unit price;
// the unsubsidised (full) fee is unit price × Multiplier. Below the threshold
// there is no subsidy at all and both amounts are unit price × Multiplier.
type Policy struct {
	AgeThreshold int
	Multiplier   decimal.Decimal
}

// DefaultPolicy is the scheme used by the registration portal.
var DefaultPolicy = Policy{AgeThreshold: 50, Multiplier: decimal.NewFromInt(5)}

// Breakdown holds the two amounts rendered for one line item.
type Breakdown struct {
	Subsidized decimal.Decimal
	Full       decimal.Decimal
}

// Payable is the amount the participant is charged.
func (b Breakdown) Payable() decimal.Decimal { return b.Subsidized }

// Compute applies the policy to one unit price.
func (p Policy) Compute(unitPrice decimal.Decimal, age int) Breakdown {
	full := unitPrice.Mul(p.Multiplier)
	if age >= p.AgeThreshold {
		return Breakdown{Subsidized: unitPrice, Full: full}
	}
	return Breakdown{Subsidized: full, Full: full}
}

// Compute applies DefaultPolicy.
func Compute(unitPrice decimal.Decimal, age int) Breakdown {
	return DefaultPolicy.Compute(unitPrice, age)
}

// Totals accumulates payable and full amounts independently.
type Totals struct {
	Payable decimal.Decimal
	Full    decimal.Decimal
	Count   int
}

// Add accumulates one breakdown.
func (t *Totals) Add(b Breakdown) {
	t.Payable = t.Payable.Add(b.Payable())
	t.Full = t.Full.Add(b.Full)
	t.Count++
}

// Sum totals a set of breakdowns.
func Sum(bs []Breakdown) Totals {
	var t Totals
	for _, b := range bs {
		t.Add(b)
	}
	return t
}

// Formatter renders amounts for display.
type Formatter struct {
	Symbol string
	Places int32
}

// DefaultFormatter renders "$1234.50".
var DefaultFormatter = Formatter{Symbol: "$", Places: 2}

// Format rounds half away from zero to f.Places and prefixes the currency symbol.
// Negative amounts render as "-$5.00".
func (f Formatter) Format(d decimal.Decimal) string {
	s := d.StringFixed(f.Places)
	if strings.HasPrefix(s, "-") {
		return "-" + f.Symbol + s[1:]
	}
	return f.Symbol + s
}

// Format uses DefaultFormatter.
func Format(d decimal.Decimal) string { return DefaultFormatter.Format(d) }
