package layout

import "fmt"

// RowMetrics 描述表格行高的计算参数（单位：mm）。
//
//	height = max(各列行数) × LineHeight + 2×Padding + gap
//
// 所有列都只有一行时 gap = Gap，否则 gap = WrappedGap；结果不小于 MinHeight。
type RowMetrics struct {
	LineHeight float64 `json:"lineHeight"`
	Padding    float64 `json:"padding"`
	Gap        float64 `json:"gap"`
	WrappedGap float64 `json:"wrappedGap"`
	MinHeight  float64 `json:"minHeight"`
}

// DefaultRowMetrics 对应 9pt 正文、1.4 倍行高。
var DefaultRowMetrics = RowMetrics{
	LineHeight: 9 * PtToMm * 1.4,
	Padding:    1.2,
	Gap:        0.6,
	WrappedGap: 1.8,
	MinHeight:  6,
}

// Validate 保证"折行的行严格高于单行的行"这一性质成立。
func (m RowMetrics) Validate() error {
	if m.LineHeight <= 0 {
		return fmt.Errorf("行高必须为正数: %g", m.LineHeight)
	}
	if m.Padding < 0 || m.Gap < 0 || m.MinHeight < 0 {
		return fmt.Errorf("行距参数不能为负: %+v", m)
	}
	if m.WrappedGap <= m.Gap {
		return fmt.Errorf("折行间距 %g 必须大于单行间距 %g", m.WrappedGap, m.Gap)
	}
	if m.MinHeight >= 2*m.LineHeight+2*m.Padding+m.WrappedGap {
		return fmt.Errorf("最小行高 %g 过大，折行后的行高无法超过它", m.MinHeight)
	}
	return nil
}

// Height 计算一行的渲染高度。
func (m RowMetrics) Height(cells []WrappedCell) float64 {
	maxLines := 1
	for _, c := range cells {
		if n := c.LineCount(); n > maxLines {
			maxLines = n
		}
	}
	gap := m.Gap
	if maxLines > 1 {
		gap = m.WrappedGap
	}
	h := float64(maxLines)*m.LineHeight + 2*m.Padding + gap
	if h < m.MinHeight {
		return m.MinHeight
	}
	return h
}
