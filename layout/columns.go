package layout

import (
	"errors"
	"fmt"
	"math"
)

// WeightEpsilon 是列权重之和允许偏离 1.0 的最大误差。
const WeightEpsilon = 1e-6

var (
	ErrNoColumns = errors.New("layout: table has no columns")
	ErrWeightSum = errors.New("layout: column weights do not sum to 1")
	ErrBadWeight = errors.New("layout: column weight must be within (0, 1]")
	ErrBadWidth  = errors.New("layout: usable width must be positive")
)

// ConfigError 表示表格配置错误，应在加载模板或渲染时立即暴露。
type ConfigError struct {
	Table string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Table == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("表格 %s 配置错误: %v", e.Table, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ColumnSpec 按表格类型定义，与数据无关。
type ColumnSpec struct {
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
	Align  string  `json:"align,omitempty"`
	// ScriptAware 为 true 时该列（标题类字段）按内容选择 Latin/CJK 字体。
	ScriptAware bool `json:"scriptAware,omitempty"`
}

// ComputedColumn 是由权重换算出的绝对列宽与左边界，计算后不再修改。
type ComputedColumn struct {
	Label       string  `json:"label"`
	Width       float64 `json:"width"`
	X           float64 `json:"x"`
	Align       string  `json:"align,omitempty"`
	ScriptAware bool    `json:"scriptAware,omitempty"`
}

// Right 返回列的右边界。
func (c ComputedColumn) Right() float64 { return c.X + c.Width }

// ValidateColumns 检查列定义：非空、每个权重在 (0,1] 内、总和在 WeightEpsilon 内等于 1。
func ValidateColumns(specs []ColumnSpec) error {
	if len(specs) == 0 {
		return ErrNoColumns
	}
	sum := 0.0
	for _, s := range specs {
		if s.Weight <= 0 || s.Weight > 1 || math.IsNaN(s.Weight) {
			return fmt.Errorf("%w: %q=%g", ErrBadWeight, s.Label, s.Weight)
		}
		sum += s.Weight
	}
	if math.Abs(sum-1) > WeightEpsilon {
		return fmt.Errorf("%w: got %g", ErrWeightSum, sum)
	}
	return nil
}

// PlanColumns 将 totalWidth 按权重分配给各列，x 从 left 开始依次累加。
func PlanColumns(totalWidth, left float64, specs []ColumnSpec) ([]ComputedColumn, error) {
	if totalWidth <= 0 {
		return nil, &ConfigError{Err: ErrBadWidth}
	}
	if err := ValidateColumns(specs); err != nil {
		return nil, &ConfigError{Err: err}
	}
	cols := make([]ComputedColumn, len(specs))
	x := left
	for i, s := range specs {
		w := s.Weight * totalWidth
		cols[i] = ComputedColumn{
			Label:       s.Label,
			Width:       w,
			X:           x,
			Align:       s.Align,
			ScriptAware: s.ScriptAware,
		}
		x += w
	}
	return cols, nil
}
