package layout

// Measurer 返回一段文本在某个字体与字号下的渲染宽度（mm）。
// *canvas.FontFace 天然满足该接口。
type Measurer interface {
	TextWidth(text string) float64
}

// MeasureFunc 将普通函数适配为 Measurer。
type MeasureFunc func(text string) float64

func (f MeasureFunc) TextWidth(text string) float64 { return f(text) }

// Typesetter 提供字体度量能力，由渲染后端实现。
// 约定：size 为毫米（mm）。
type Typesetter interface {
	Measurer(font FontResource, size float64) (Measurer, error)
}

// Surface 是排版组件唯一可见的绘图面。
// 组件之间不共享纵向游标：每个组件接收起始 y 并返回结束 y，Surface 只负责记录图元。
type Surface interface {
	// Measurer 按资源名（例如 "Latin"、"CJK"）取得度量器。
	Measurer(font string, size float64) (Measurer, error)
	DrawText(text string, x, y float64, style TextStyle) error
	DrawLine(x1, y1, x2, y2, weight float64) error
	FillRect(x, y, w, h float64, fill Color) error
	DrawImage(data []byte, x, y, w, h float64) error
	// NewPage 结束当前页并开始新的一页。
	NewPage() error
	// Bounds 返回当前页内容区域（去除边距后）的上下边界。
	Bounds() (top, bottom float64)
}
