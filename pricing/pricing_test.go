package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeAtAndBelowThreshold(t *testing.T) {
	cases := []struct {
		age              int
		unit             string
		subsidized, full string
	}{
		{50, "100", "100", "500"},
		{49, "100", "500", "500"},
		{80, "12.34", "12.34", "61.7"},
		{0, "0", "0", "0"},
	}
	for _, tc := range cases {
		got := Compute(dec(tc.unit), tc.age)
		if !got.Subsidized.Equal(dec(tc.subsidized)) || !got.Full.Equal(dec(tc.full)) {
			t.Fatalf("Compute(%s, %d) = {%s, %s}, want {%s, %s}",
				tc.unit, tc.age, got.Subsidized, got.Full, tc.subsidized, tc.full)
		}
		if !got.Payable().Equal(got.Subsidized) {
			t.Fatalf("payable must equal the subsidised amount")
		}
	}
}

func TestCustomPolicy(t *testing.T) {
	p := Policy{AgeThreshold: 65, Multiplier: dec("3")}
	if got := p.Compute(dec("10"), 64); !got.Subsidized.Equal(dec("30")) {
		t.Fatalf("below threshold should pay the multiplied price, got %s", got.Subsidized)
	}
	if got := p.Compute(dec("10"), 65); !got.Subsidized.Equal(dec("10")) || !got.Full.Equal(dec("30")) {
		t.Fatalf("at threshold: got %+v", got)
	}
}

// TestSumKeepsPathsSeparate covers the invoice total: payable and full sums are independent.
func TestSumKeepsPathsSeparate(t *testing.T) {
	totals := Sum([]Breakdown{Compute(dec("80"), 50), Compute(dec("120"), 50)})
	if got := Format(totals.Payable); got != "$200.00" {
		t.Fatalf("payable total = %s, want $200.00", got)
	}
	if got := Format(totals.Full); got != "$1000.00" {
		t.Fatalf("full total = %s, want $1000.00", got)
	}
	if totals.Count != 2 {
		t.Fatalf("count = %d", totals.Count)
	}
}

// TestRoundOnlyAtDisplay sums unrounded amounts; rounding each row first would give $0.99.
func TestRoundOnlyAtDisplay(t *testing.T) {
	var totals Totals
	for i := 0; i < 3; i++ {
		totals.Add(Compute(dec("0.334"), 50))
	}
	if got := Format(totals.Payable); got != "$1.00" {
		t.Fatalf("payable = %s, want $1.00", got)
	}
	if got := Format(dec("0.334")); got != "$0.33" {
		t.Fatalf("row display = %s, want $0.33", got)
	}
}

func TestFormatter(t *testing.T) {
	f := Formatter{Symbol: "HK$", Places: 2}
	if got := f.Format(dec("-5")); got != "-HK$5.00" {
		t.Fatalf("negative: %s", got)
	}
	if got := f.Format(dec("1234.5")); got != "HK$1234.50" {
		t.Fatalf("positive: %s", got)
	}
	if got := f.Format(dec("0.005")); got != "HK$0.01" {
		t.Fatalf("half away from zero: %s", got)
	}
}
