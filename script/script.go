// Package script chooses a font for a whole text field based on the scripts it contains.
package script

import "unicode"

// cjkUnified covers the CJK Unified Ideographs block, U+4E00–U+9FFF.
var cjkUnified = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x4E00, Hi: 0x9FFF, Stride: 1}},
}

// ContainsCJK reports whether text has at least one rune in the CJK Unified Ideographs block.
func ContainsCJK(text string) bool {
	for _, r := range text {
		if unicode.Is(cjkUnified, r) {
			return true
		}
	}
	return false
}

// Selector maps a field to one font resource name. The choice is made once per field:
// a mixed-script string is drawn entirely in the CJK font when any CJK ideograph is present.
type Selector struct {
	Latin string
	CJK   string
}

// Select returns s.CJK if text contains a CJK ideograph and a CJK font is configured,
// otherwise s.Latin.
func (s Selector) Select(text string) string {
	if s.CJK != "" && ContainsCJK(text) {
		return s.CJK
	}
	return s.Latin
}
