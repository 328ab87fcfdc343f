package layout

import (
	"fmt"
	"strings"
)

// Recorder 把绘图调用记录为按页分组的显示列表，最终交给渲染器输出。
// 一个 Recorder 只服务于一份文档，不可并发使用。
type Recorder struct {
	width  float64
	height float64
	margin Margin
	fonts  map[string]FontResource
	ts     Typesetter
	meta   DocumentMeta

	pages   []*Page
	current int
}

var _ Surface = (*Recorder)(nil)

// NewRecorder 创建一个只有首页的记录器。fonts 以资源名为键。
func NewRecorder(width, height float64, margin Margin, fonts map[string]FontResource, ts Typesetter) *Recorder {
	r := &Recorder{
		width:  width,
		height: height,
		margin: margin,
		fonts:  fonts,
		ts:     ts,
	}
	r.addPage()
	return r
}

// SetMeta 设置输出文档的元信息。
func (r *Recorder) SetMeta(meta DocumentMeta) { r.meta = meta }

func (r *Recorder) addPage() {
	r.pages = append(r.pages, &Page{
		Width:  r.width,
		Height: r.height,
		Margin: r.margin,
	})
	r.current = len(r.pages) - 1
}

func (r *Recorder) curr() *Page { return r.pages[r.current] }

// ContentWidth 返回左右边距之间的可用宽度。
func (r *Recorder) ContentWidth() float64 {
	return r.width - r.margin.Left - r.margin.Right
}

// Margin 返回页面边距。
func (r *Recorder) Margin() Margin { return r.margin }

// Bounds 内容区域：顶部为上边距，底部为页面高度减下边距。
func (r *Recorder) Bounds() (float64, float64) {
	return r.margin.Top, r.height - r.margin.Bottom
}

func (r *Recorder) Measurer(font string, size float64) (Measurer, error) {
	if r.ts == nil {
		return nil, fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}
	res, ok := r.fonts[font]
	if !ok {
		return nil, fmt.Errorf("字体 %s 未定义", font)
	}
	m, err := r.ts.Measurer(res, size)
	if err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", font, err)
	}
	return m, nil
}

func (r *Recorder) DrawText(text string, x, y float64, style TextStyle) error {
	if _, ok := r.fonts[style.Font]; !ok {
		return fmt.Errorf("字体 %s 未定义", style.Font)
	}
	if style.FontSize <= 0 {
		return fmt.Errorf("字号必须为正数: %g", style.FontSize)
	}
	switch a := strings.ToLower(style.Align); a {
	case "", "left", "start":
		style.Align = "left"
	case "end":
		style.Align = "right"
	case "center", "right":
		style.Align = a
	default:
		return fmt.Errorf("不支持的对齐方式 %q", style.Align)
	}
	p := r.curr()
	p.Texts = append(p.Texts, TextBox{Content: text, X: x, Y: y, TextStyle: style})
	return nil
}

func (r *Recorder) DrawLine(x1, y1, x2, y2, weight float64) error {
	p := r.curr()
	p.Lines = append(p.Lines, Line{X1: x1, Y1: y1, X2: x2, Y2: y2, Color: Black, Width: weight})
	return nil
}

func (r *Recorder) FillRect(x, y, w, h float64, fill Color) error {
	if w < 0 || h < 0 {
		return fmt.Errorf("矩形尺寸不能为负: %gx%g", w, h)
	}
	p := r.curr()
	p.Rects = append(p.Rects, Rect{X: x, Y: y, Width: w, Height: h, FillColor: fill})
	return nil
}

func (r *Recorder) DrawImage(data []byte, x, y, w, h float64) error {
	if len(data) == 0 {
		return fmt.Errorf("图片数据为空")
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("图片尺寸必须为正数: %gx%g", w, h)
	}
	p := r.curr()
	p.Images = append(p.Images, ImageBox{Data: data, X: x, Y: y, Width: w, Height: h})
	return nil
}

func (r *Recorder) NewPage() error {
	r.addPage()
	return nil
}

// Result 汇总所有页面。Recorder 在调用后仍可继续使用，但返回值不会随之更新。
func (r *Recorder) Result() *Result {
	pages := make([]Page, len(r.pages))
	for i, p := range r.pages {
		pages[i] = *p
	}
	fonts := make(map[string]FontResource, len(r.fonts))
	for k, v := range r.fonts {
		fonts[k] = v
	}
	return &Result{
		Pages:     pages,
		Resources: ResourceSet{Fonts: fonts},
		Meta:      r.meta,
	}
}
