package document

import (
	"errors"
	"strings"
	"testing"
)

const inputYAML = `
age: 52
number: R-2026-0042
items:
  - participantName: Mei Chen
    participantId: P-1001
    productName: Yoga Basics
    unitPrice: 80.10
    start: 2026-11-02
    end: 2026-12-14
  - participantName: 陈美
    productName: 太极拳
    unitPrice: "120"
`

func TestDecodeInput(t *testing.T) {
	in, err := DecodeInput(strings.NewReader(inputYAML))
	if err != nil {
		t.Fatalf("DecodeInput: %v", err)
	}
	if in.Age != 52 || in.Number != "R-2026-0042" || len(in.Items) != 2 {
		t.Fatalf("unexpected input %+v", in)
	}
	first := in.Items[0]
	if first.UnitPrice.String() != "80.1" {
		t.Fatalf("unit price = %s", first.UnitPrice)
	}
	if first.DateRangeStart == nil || first.DateRangeStart.Format("2006-01-02") != "2026-11-02" {
		t.Fatalf("start date = %v", first.DateRangeStart)
	}
	second := in.Items[1]
	if second.DateRangeStart != nil || second.DateRangeEnd != nil || second.ParticipantID != "" {
		t.Fatalf("missing fields should stay empty: %+v", second)
	}
	if second.ProductName != "太极拳" || second.UnitPrice.IntPart() != 120 {
		t.Fatalf("unexpected second item %+v", second)
	}
}

func TestDecodeInputBareListAndJSON(t *testing.T) {
	in, err := DecodeInput(strings.NewReader(`[{"productName": "Pilates", "unitPrice": 15.5}]`))
	if err != nil {
		t.Fatalf("DecodeInput: %v", err)
	}
	if len(in.Items) != 1 || in.Items[0].UnitPrice.String() != "15.5" {
		t.Fatalf("unexpected items %+v", in.Items)
	}
}

func TestDecodeInputErrors(t *testing.T) {
	if _, err := DecodeInput(strings.NewReader("")); !errors.Is(err, ErrNoItems) {
		t.Fatalf("empty input: got %v, want ErrNoItems", err)
	}
	if _, err := DecodeInput(strings.NewReader("- unitPrice: abc\n")); err == nil || !strings.Contains(err.Error(), "unitPrice") {
		t.Fatalf("expected unitPrice error, got %v", err)
	}
	if _, err := DecodeInput(strings.NewReader("- start: next tuesday\n")); err == nil || !strings.Contains(err.Error(), "start") {
		t.Fatalf("expected date error, got %v", err)
	}
}
