package main

import (
	"testing"

	"github.com/ByLCY/folio/document"
)

func TestJobOverrides(t *testing.T) {
	zero, other := 0, "INV-9"
	input := document.Input{Age: 72, Number: "R-1"}

	cases := []struct {
		name       string
		j          job
		age        int
		wantNumber string
	}{
		{"input only", job{}, 72, "R-1"},
		{"explicit zero age", job{age: &zero}, 0, "R-1"},
		{"number flag", job{number: &other}, 72, "INV-9"},
	}
	for _, c := range cases {
		age, number := c.j.overrides(input)
		if age != c.age || number != c.wantNumber {
			t.Fatalf("%s: got (%d, %q), want (%d, %q)", c.name, age, number, c.age, c.wantNumber)
		}
	}
}
