package dsl

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ByLCY/folio/layout"
)

// Length is a distance in mm. Unit-less numbers are mm.
type Length float64

func (l *Length) Capture(values []string) error {
	v, ok := layout.ParseLength(values[0])
	if !ok {
		return fmt.Errorf("无法解析长度 %q", values[0])
	}
	*l = Length(v.ToMM())
	return nil
}

// MM returns the length as a plain float.
func (l Length) MM() float64 { return float64(l) }

// FontSize is a font size in mm. Unit-less numbers are points.
type FontSize float64

func (s *FontSize) Capture(values []string) error {
	v, ok := layout.ParseLength(values[0])
	if !ok || v.Value <= 0 {
		return fmt.Errorf("无法解析字号 %q", values[0])
	}
	if v.Unit == layout.UnitNone {
		v.Unit = layout.UnitPT
	}
	*s = FontSize(v.ToMM())
	return nil
}

func (s FontSize) MM() float64 { return float64(s) }

// Fraction accepts "0.34" or "34%".
type Fraction float64

func (f *Fraction) Capture(values []string) error {
	v := values[0]
	if strings.HasSuffix(v, "%") {
		n, ok := layout.ParseDimension(v, 1)
		if !ok {
			return fmt.Errorf("无法解析比例 %q", v)
		}
		*f = Fraction(n)
		return nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("无法解析比例 %q", v)
	}
	*f = Fraction(n)
	return nil
}

// Duration accepts Go duration literals such as "500ms" or "5s".
type Duration time.Duration

func (d *Duration) Capture(values []string) error {
	v, err := time.ParseDuration(values[0])
	if err != nil {
		return fmt.Errorf("无法解析时长 %q", values[0])
	}
	*d = Duration(v)
	return nil
}
