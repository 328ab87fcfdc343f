package layout

// 该文件定义显示列表（display list）与资源描述，供排版、渲染与调试 JSON 共用。

// Result 保存排版后的页面与资源信息。
type Result struct {
	Pages     []Page       `json:"pages"`
	Resources ResourceSet  `json:"resources"`
	Meta      DocumentMeta `json:"meta"`
}

// ResourceSet 记录文档使用到的字体定义。
type ResourceSet struct {
	Fonts map[string]FontResource `json:"fonts"`
}

// FontResource 描述字体资源，src 可以是文件路径、builtin:<name>（内置 Go 字体）或 system:<file>（系统字体）。
type FontResource struct {
	Name     string `json:"name"`
	Src      string `json:"src"`
	Style    string `json:"style"`
	Family   string `json:"family"`
	Index    int    `json:"index,omitempty"` // 字体集合（ttc）中的序号
	Fallback string `json:"fallback,omitempty"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

var (
	Black     = Color{R: 0, G: 0, B: 0}
	TextColor = Color{R: 30, G: 30, B: 30}
)

// Page 记录页面尺寸、边距与可以直接渲染的元素（坐标单位：mm，左上角为原点）。
// 元素按类别分组，渲染顺序为：矩形填充 → 线 → 图片 → 文本。
type Page struct {
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Margin Margin     `json:"margin"`
	Rects  []Rect     `json:"rects,omitempty"`
	Lines  []Line     `json:"lines,omitempty"`
	Images []ImageBox `json:"images,omitempty"`
	Texts  []TextBox  `json:"texts"`
}

// Margin 以毫米为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// TextStyle 描述单行文本的绘制方式。
// Width > 0 时 Align 相对 [x, x+Width] 生效；否则按 left 处理。
type TextStyle struct {
	Font     string  `json:"font"`
	FontSize float64 `json:"fontSize"` // mm
	Color    Color   `json:"color"`
	Align    string  `json:"align,omitempty"` // left/center/right
	Width    float64 `json:"width,omitempty"`
}

// TextBox 表示一行已经确定坐标的文本，Y 为行顶部。
type TextBox struct {
	Content string  `json:"content"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	TextStyle
}

// ImageBox 用于描述图片位置与尺寸，Data 为原始（未解码）图片字节。
type ImageBox struct {
	Data   []byte  `json:"-"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Line 表示一条线段。
type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color Color   `json:"color"`
	Width float64 `json:"width"` // 线宽（mm），<=0 时由渲染器给默认值
}

// Rect 表示一个填充矩形（不描边）。
type Rect struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	FillColor Color   `json:"fillColor"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
