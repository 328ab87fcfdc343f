package layout

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, pt := range samples {
		mm := pt * PtToMm
		back := mm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt mm=%g back=%g diff=%g", pt, mm, back, diff)
		}
	}
}

// TestLengthToConversions 覆盖 Length 在常见单位上的转换正确性（到 mm/pt）。
func TestLengthToConversions(t *testing.T) {
	if got := (Length{Value: 1, Unit: UnitIN}).ToMM(); math.Abs(got-25.4) > 1e-9 {
		t.Fatalf("1in 转 mm 期望 25.4，实际 %g", got)
	}
	if got := (Length{Value: 2.54, Unit: UnitCM}).ToMM(); math.Abs(got-25.4) > 1e-9 {
		t.Fatalf("2.54cm 转 mm 期望 25.4，实际 %g", got)
	}
	if got := (Length{Value: 12, Unit: UnitPT}).ToMM(); math.Abs(got-12*PtToMm) > 1e-9 {
		t.Fatalf("12pt 转 mm 期望 %g，实际 %g", 12*PtToMm, got)
	}
	if got := (Length{Value: 12, Unit: UnitPT}).ToPT(); got != 12 {
		t.Fatalf("12pt 转 pt 应保持不变，实际 %g", got)
	}
	if got := (Length{Value: 10, Unit: UnitMM}).ToPT(); math.Abs(got-10*MmToPt) > 1e-9 {
		t.Fatalf("10mm 转 pt 期望 %g，实际 %g", 10*MmToPt, got)
	}
}

func TestParseLengthAndDimension(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"15mm", 15},
		{"1.5cm", 15},
		{" 7 ", 7},
		{"12pt", 12 * PtToMm},
		{"1in", 25.4},
	}
	for _, tc := range cases {
		l, ok := ParseLength(tc.in)
		if !ok {
			t.Fatalf("ParseLength(%q) 解析失败", tc.in)
		}
		if math.Abs(l.ToMM()-tc.want) > 1e-9 {
			t.Fatalf("ParseLength(%q) = %gmm, want %g", tc.in, l.ToMM(), tc.want)
		}
	}
	if _, ok := ParseLength("wide"); ok {
		t.Fatalf("非法长度应解析失败")
	}
	if got, ok := ParseDimension("97%", 180); !ok || math.Abs(got-174.6) > 1e-9 {
		t.Fatalf("97%% of 180 应为 174.6，实际 %g (ok=%v)", got, ok)
	}
	if got, ok := ParseDimension("2cm", 180); !ok || got != 20 {
		t.Fatalf("2cm 应为 20mm，实际 %g", got)
	}
}

// TestLineHeightResolve 验证行高解析：倍数与绝对值两种语义在目标单位（mm）下的解析结果。
func TestLineHeightResolve(t *testing.T) {
	fontSizePT := Length{Value: 12, Unit: UnitPT}
	spec, ok := ParseLineHeight("1.2x")
	if !ok {
		t.Fatalf("1.2x 解析失败")
	}
	if got, want := spec.Resolve(fontSizePT, UnitMM), 12*1.2*PtToMm; math.Abs(got-want) > 1e-9 {
		t.Fatalf("1.2x 解析为 mm 错误: got=%g want=%g", got, want)
	}
	spec, ok = ParseLineHeight("18pt")
	if !ok {
		t.Fatalf("18pt 解析失败")
	}
	if got, want := spec.Resolve(fontSizePT, UnitMM), 18*PtToMm; math.Abs(got-want) > 1e-9 {
		t.Fatalf("18pt 行高解析为 mm 错误: got=%g want=%g", got, want)
	}
	if _, ok := ParseLineHeight("0x"); ok {
		t.Fatalf("0x 不是合法行高")
	}
}
