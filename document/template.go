package document

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ByLCY/folio/binding"
	"github.com/ByLCY/folio/codes"
	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/pricing"
	"github.com/ByLCY/folio/table"
)

//go:embed templates/default.folio
var defaultTemplateSource string

// Template is a compiled document description. It is immutable once loaded
// and may be shared between goroutines.
type Template struct {
	Name    string
	Version string
	Meta    layout.DocumentMeta

	PageWidth  float64
	PageHeight float64
	Margin     layout.Margin
	Fonts      map[string]layout.FontResource
	Colors     map[string]layout.Color

	Codes      *codes.Resolver
	Pricing    pricing.Policy
	Money      pricing.Formatter
	DateFormat string

	Style table.Style
	// UsableWidth is the fraction of the content width given to tables.
	UsableWidth float64

	Title        *TextBlock
	Logo         *LogoBlock
	Organization *TextBlock
	Number       *NumberBlock
	Tables       []TableSpec
	Notes        *NotesBlock
}

// TextBlock is a run of text; Text may contain ${...} placeholders and newlines.
type TextBlock struct {
	Text  string
	Font  string
	Size  float64 // mm
	Align string
	Gap   float64 // space below the block
}

// LogoBlock is the header image, drawn at the top-left of the header band.
type LogoBlock struct {
	Src       string
	Width     float64
	MaxHeight float64
	Timeout   time.Duration
	Gap       float64 // horizontal space between image and organization block
}

// NumberBlock is the right-aligned document number and date.
// When the number starts with Prefix the block is shifted horizontally by Offset.
type NumberBlock struct {
	Label     string
	DateLabel string
	Prefix    string
	Offset    float64
	Width     float64
	Font      string
	Size      float64
}

// ColumnDef binds a catalogue field to a column spec.
type ColumnDef struct {
	Field Field
	layout.ColumnSpec
}

// TotalsDef lists the summable fields shown in a table's totals row.
type TotalsDef struct {
	Label  string
	Fields []Field
}

// TableSpec is one table kind, e.g. course or participant.
type TableSpec struct {
	Name    string
	Gap     float64 // space above the table
	Columns []ColumnDef
	Totals  *TotalsDef
}

// NotesBlock is the numbered footer drawn below the last table.
type NotesBlock struct {
	Items []string
	Gap   float64
	Font  string
	Size  float64
}

// Placeholders available to title, organization and notes text.
var bindingPaths = map[string]bool{
	"document.number":  true,
	"document.date":    true,
	"participant.name": true,
	"participant.id":   true,
	"totals.payable":   true,
	"totals.full":      true,
	"item.count":       true,
}

var pagePresets = map[string][2]float64{
	"A4":     {210, 297},
	"A5":     {148, 210},
	"LETTER": {215.9, 279.4},
}

// DefaultTemplate returns the embedded invoice template.
func DefaultTemplate() *Template {
	t, err := ParseTemplate(defaultTemplateSource)
	if err != nil {
		panic(fmt.Sprintf("内置模板无效: %v", err))
	}
	return t
}

// LoadTemplateFile reads and compiles a template file.
func LoadTemplateFile(path string) (*Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("读取模板失败: %w", err)
	}
	defer f.Close()
	return LoadTemplate(f)
}

// LoadTemplate parses and compiles a template. Column weights, row metrics
// and font references are validated here so broken templates fail before any
// document is drawn.
func LoadTemplate(r io.Reader) (*Template, error) {
	doc, err := dsl.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("解析模板失败: %w", err)
	}
	return compileTemplate(doc)
}

// ParseTemplate is LoadTemplate for a string.
func ParseTemplate(src string) (*Template, error) {
	doc, err := dsl.ParseString(src)
	if err != nil {
		return nil, fmt.Errorf("解析模板失败: %w", err)
	}
	return compileTemplate(doc)
}

func newTemplate() *Template {
	return &Template{
		Meta:        layout.DocumentMeta{Creator: "folio"},
		PageWidth:   pagePresets["A4"][0],
		PageHeight:  pagePresets["A4"][1],
		Margin:      layout.Margin{Top: 20, Right: 20, Bottom: 20, Left: 20},
		Fonts:       map[string]layout.FontResource{},
		Colors:      map[string]layout.Color{},
		Codes:       &codes.Resolver{},
		Pricing:     pricing.DefaultPolicy,
		Money:       pricing.DefaultFormatter,
		DateFormat:  "2006-01-02",
		Style:       table.DefaultStyle(),
		UsableWidth: 0.97,
	}
}

func compileTemplate(doc *dsl.Document) (*Template, error) {
	t := newTemplate()
	t.Name = doc.Name
	t.Version = doc.Version

	var page *dsl.Page
	var entries []codes.Entry
	for _, section := range doc.Sections {
		switch {
		case section.Meta != nil:
			t.applyMeta(section.Meta)
		case section.Resources != nil:
			if err := t.applyResources(section.Resources); err != nil {
				return nil, err
			}
		case section.Codes != nil:
			for _, e := range section.Codes.Entries {
				entries = append(entries, codes.Entry{Name: e.Name, Code: e.Code})
			}
		case section.Page != nil:
			if page != nil {
				return nil, fmt.Errorf("模板 %s 只能定义一个 page 段 (line %d)", doc.Name, section.Page.Pos.Line)
			}
			page = section.Page
		}
	}
	if len(t.Fonts) == 0 {
		t.Fonts["Latin"] = layout.FontResource{Name: "Latin", Family: "Latin", Src: "builtin:go-regular"}
		t.Fonts["LatinBold"] = layout.FontResource{Name: "LatinBold", Family: "LatinBold", Src: "builtin:go-bold", Style: "bold"}
	}
	if _, ok := t.Fonts["CJK"]; !ok {
		t.Style.Fonts.CJK = ""
	}
	var err error
	if t.Codes, err = codes.FromEntries(entries); err != nil {
		return nil, fmt.Errorf("codes: %w", err)
	}

	if page == nil {
		return nil, fmt.Errorf("模板 %s 缺少 page 段", doc.Name)
	}
	if err := t.applyPage(page); err != nil {
		return nil, err
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Template) applyMeta(m *dsl.Meta) {
	for _, s := range m.Settings {
		switch {
		case s.Title != nil:
			t.Meta.Title = *s.Title
		case s.Author != nil:
			t.Meta.Author = *s.Author
		case s.Subject != nil:
			t.Meta.Subject = *s.Subject
		case s.Creator != nil:
			t.Meta.Creator = *s.Creator
		case s.Keywords != nil:
			t.Meta.Keywords = s.Keywords
		}
	}
}

func (t *Template) applyResources(r *dsl.Resources) error {
	for _, item := range r.Items {
		if f := item.Font; f != nil {
			font := layout.FontResource{Name: f.Name, Family: f.Name}
			for _, s := range f.Settings {
				switch {
				case s.Src != nil:
					font.Src = *s.Src
				case s.Style != nil:
					font.Style = *s.Style
				case s.Family != nil:
					font.Family = *s.Family
				case s.Fallback != nil:
					font.Fallback = *s.Fallback
				case s.Index != nil:
					font.Index = *s.Index
				}
			}
			if font.Src == "" {
				return fmt.Errorf("字体 %s 缺少 src (line %d)", f.Name, f.Pos.Line)
			}
			t.Fonts[font.Name] = font
			continue
		}
		c, err := parseColor(item.Color.Value)
		if err != nil {
			return fmt.Errorf("color %s (line %d): %w", item.Color.Name, item.Color.Pos.Line, err)
		}
		t.Colors[item.Color.Name] = c
	}
	return nil
}

func (t *Template) applyPage(page *dsl.Page) error {
	base, ok := pagePresets[strings.ToUpper(page.Size)]
	if !ok {
		return fmt.Errorf("暂不支持的纸张尺寸：%s", page.Size)
	}
	t.PageWidth, t.PageHeight = base[0], base[1]
	if page.Orientation == "landscape" {
		t.PageWidth, t.PageHeight = t.PageHeight, t.PageWidth
	}
	var err error
	if t.Margin, err = resolveMargin(page.Margin); err != nil {
		return err
	}

	// style first: block defaults depend on its fonts and sizes
	for _, stmt := range page.Body {
		if stmt.Style != nil {
			if err := t.applyStyle(stmt.Style); err != nil {
				return fmt.Errorf("style (line %d): %w", stmt.Style.Pos.Line, err)
			}
		}
	}
	for _, stmt := range page.Body {
		switch {
		case stmt.Locale != nil:
			err = t.applyLocale(stmt.Locale)
		case stmt.Pricing != nil:
			err = t.applyPricing(stmt.Pricing)
		case stmt.Title != nil:
			t.Title = t.textBlock(stmt.Title, t.Style.HeaderFont, 16*layout.PtToMm, 4)
		case stmt.Organization != nil:
			t.Organization = t.textBlock(stmt.Organization, t.Style.Fonts.Latin, t.Style.FontSize, 0)
		case stmt.Notes != nil:
			t.Notes = t.notes(stmt.Notes)
		case stmt.Logo != nil:
			err = t.applyLogo(stmt.Logo)
		case stmt.Number != nil:
			t.Number = t.number(stmt.Number)
		case stmt.Table != nil:
			err = t.applyTable(stmt.Table)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *Template) applyStyle(s *dsl.Style) error {
	st := &t.Style
	var lineHeight string
	var sized bool
	for _, v := range s.Settings {
		var err error
		switch {
		case v.Font != nil:
			st.Fonts.Latin = *v.Font
		case v.BoldFont != nil:
			st.HeaderFont = *v.BoldFont
		case v.CJKFont != nil:
			st.Fonts.CJK = *v.CJKFont
		case v.FontSize != nil:
			st.FontSize = v.FontSize.MM()
			sized = true
		case v.LineHeight != nil:
			lineHeight = *v.LineHeight
		case v.Padding != nil:
			st.Rows.Padding = v.Padding.MM()
		case v.Gap != nil:
			st.Rows.Gap = v.Gap.MM()
		case v.WrappedGap != nil:
			st.Rows.WrappedGap = v.WrappedGap.MM()
		case v.MinHeight != nil:
			st.Rows.MinHeight = v.MinHeight.MM()
		case v.Border != nil:
			st.BorderWeight = v.Border.MM()
		case v.HeaderFill != nil:
			st.HeaderFill, err = t.color(*v.HeaderFill)
		case v.TextColor != nil:
			st.TextColor, err = t.color(*v.TextColor)
		case v.UsableWidth != nil:
			t.UsableWidth = float64(*v.UsableWidth)
		}
		if err != nil {
			return err
		}
	}
	if lineHeight == "" && sized {
		lineHeight = "1.4x"
	}
	if lineHeight != "" {
		spec, ok := layout.ParseLineHeight(lineHeight)
		if !ok {
			return fmt.Errorf("行高 %q 无法解析", lineHeight)
		}
		st.Rows.LineHeight = spec.Resolve(layout.Length{Value: st.FontSize, Unit: layout.UnitMM}, layout.UnitMM)
	}
	return nil
}

func (t *Template) applyLocale(l *dsl.Locale) error {
	for _, s := range l.Settings {
		switch {
		case s.Currency != nil:
			t.Money.Symbol = *s.Currency
		case s.Places != nil:
			if *s.Places < 0 {
				return fmt.Errorf("locale (line %d): places 必须为非负整数", l.Pos.Line)
			}
			t.Money.Places = int32(*s.Places)
		case s.DateFormat != nil:
			t.DateFormat = *s.DateFormat
		}
	}
	return nil
}

func (t *Template) applyPricing(p *dsl.Pricing) error {
	for _, s := range p.Settings {
		switch {
		case s.AgeThreshold != nil:
			t.Pricing.AgeThreshold = *s.AgeThreshold
		case s.Multiplier != nil:
			d, err := decimal.NewFromString(*s.Multiplier)
			if err != nil || !d.IsPositive() {
				return fmt.Errorf("pricing (line %d): multiplier %q 必须为正数", p.Pos.Line, *s.Multiplier)
			}
			t.Pricing.Multiplier = d
		}
	}
	return nil
}

func (t *Template) textBlock(src *dsl.TextBlock, font string, size, gap float64) *TextBlock {
	b := &TextBlock{
		Text:  strings.Join(src.Lines, "\n"),
		Font:  font,
		Size:  size,
		Align: "left",
		Gap:   gap,
	}
	for _, o := range src.Options {
		switch {
		case o.Font != nil:
			b.Font = *o.Font
		case o.Size != nil:
			b.Size = o.Size.MM()
		case o.Align != nil:
			b.Align = *o.Align
		case o.Gap != nil:
			b.Gap = o.Gap.MM()
		}
	}
	return b
}

func (t *Template) notes(src *dsl.TextBlock) *NotesBlock {
	b := t.textBlock(src, t.Style.Fonts.Latin, 8*layout.PtToMm, 8)
	return &NotesBlock{Items: src.Lines, Gap: b.Gap, Font: b.Font, Size: b.Size}
}

func (t *Template) applyLogo(src *dsl.Logo) error {
	l := &LogoBlock{Width: 40, MaxHeight: 25, Gap: 4}
	for _, o := range src.Options {
		switch {
		case o.Src != nil:
			l.Src = *o.Src
		case o.Width != nil:
			l.Width = o.Width.MM()
		case o.MaxHeight != nil:
			l.MaxHeight = o.MaxHeight.MM()
		case o.Gap != nil:
			l.Gap = o.Gap.MM()
		case o.Timeout != nil:
			l.Timeout = time.Duration(*o.Timeout)
		}
	}
	if l.Src == "" {
		return fmt.Errorf("logo (line %d) 缺少 src", src.Pos.Line)
	}
	if l.Width <= 0 {
		return fmt.Errorf("logo (line %d) 宽度必须为正数", src.Pos.Line)
	}
	t.Logo = l
	return nil
}

func (t *Template) number(src *dsl.Number) *NumberBlock {
	n := &NumberBlock{
		Label:     "No.",
		DateLabel: "Date",
		Width:     70,
		Font:      t.Style.Fonts.Latin,
		Size:      t.Style.FontSize,
	}
	for _, o := range src.Options {
		switch {
		case o.Label != nil:
			n.Label = *o.Label
		case o.DateLabel != nil:
			n.DateLabel = *o.DateLabel
		case o.Prefix != nil:
			n.Prefix = *o.Prefix
		case o.Offset != nil:
			n.Offset = o.Offset.MM()
		case o.Width != nil:
			n.Width = o.Width.MM()
		case o.Font != nil:
			n.Font = *o.Font
		case o.Size != nil:
			n.Size = o.Size.MM()
		}
	}
	return n
}

func (t *Template) applyTable(src *dsl.Table) error {
	spec := TableSpec{Name: src.Name, Gap: 6}
	if src.Gap != nil {
		spec.Gap = src.Gap.MM()
	}
	for _, row := range src.Rows {
		if c := row.Column; c != nil {
			col, err := compileColumn(c)
			if err != nil {
				return &layout.ConfigError{Table: src.Name, Err: fmt.Errorf("line %d: %w", c.Pos.Line, err)}
			}
			spec.Columns = append(spec.Columns, col)
			continue
		}
		if spec.Totals != nil {
			return &layout.ConfigError{Table: src.Name, Err: fmt.Errorf("line %d: totals 重复定义", row.Totals.Pos.Line)}
		}
		tot := &TotalsDef{Label: row.Totals.Label}
		for _, f := range row.Totals.Fields {
			tot.Fields = append(tot.Fields, Field(f))
		}
		spec.Totals = tot
	}
	t.Tables = append(t.Tables, spec)
	return nil
}

func compileColumn(c *dsl.Column) (ColumnDef, error) {
	field := Field(c.Field)
	info, ok := fieldCatalogue[field]
	if !ok {
		return ColumnDef{}, fmt.Errorf("未知字段 %q", field)
	}
	col := ColumnDef{
		Field: field,
		ColumnSpec: layout.ColumnSpec{
			Label:       string(field),
			Align:       info.align,
			ScriptAware: info.scriptAware,
		},
	}
	for _, o := range c.Options {
		switch {
		case o.Weight != nil:
			col.Weight = float64(*o.Weight)
		case o.Label != nil:
			col.Label = *o.Label
		case o.Align != nil:
			col.Align = *o.Align
		case o.Script != nil:
			col.ScriptAware = *o.Script == "true"
		}
	}
	return col, nil
}

func (t *Template) validate() error {
	if len(t.Tables) == 0 {
		return fmt.Errorf("模板 %s 未定义任何表格", t.Name)
	}
	if t.UsableWidth <= 0 || t.UsableWidth > 1 {
		return fmt.Errorf("usable-width 必须在 (0, 100%%] 内, got %g", t.UsableWidth)
	}
	if t.Style.FontSize <= 0 {
		return fmt.Errorf("font-size 必须为正数")
	}
	if err := t.Style.Rows.Validate(); err != nil {
		return &layout.ConfigError{Err: err}
	}
	if t.Margin.Left+t.Margin.Right >= t.PageWidth || t.Margin.Top+t.Margin.Bottom >= t.PageHeight {
		return fmt.Errorf("页边距超出纸张尺寸")
	}

	fonts := []string{t.Style.Fonts.Latin, t.Style.HeaderFont}
	if t.Style.Fonts.CJK != "" {
		fonts = append(fonts, t.Style.Fonts.CJK)
	}
	var texts []string
	for _, b := range []*TextBlock{t.Title, t.Organization} {
		if b != nil {
			fonts = append(fonts, b.Font)
			texts = append(texts, b.Text)
		}
	}
	if t.Number != nil {
		fonts = append(fonts, t.Number.Font)
	}
	if t.Notes != nil {
		fonts = append(fonts, t.Notes.Font)
		texts = append(texts, t.Notes.Items...)
	}
	for _, f := range fonts {
		if _, ok := t.Fonts[f]; !ok {
			return fmt.Errorf("字体 %s 未定义", f)
		}
	}
	for _, text := range texts {
		for _, p := range binding.Placeholders(text) {
			if !bindingPaths[p] {
				return fmt.Errorf("未知占位符 ${%s}", p)
			}
		}
	}

	seen := map[string]bool{}
	for _, spec := range t.Tables {
		if seen[spec.Name] {
			return &layout.ConfigError{Table: spec.Name, Err: fmt.Errorf("表格重复定义")}
		}
		seen[spec.Name] = true
		if err := spec.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s TableSpec) validate() error {
	specs := make([]layout.ColumnSpec, len(s.Columns))
	present := map[Field]bool{}
	for i, c := range s.Columns {
		specs[i] = c.ColumnSpec
		present[c.Field] = true
	}
	if err := layout.ValidateColumns(specs); err != nil {
		return &layout.ConfigError{Table: s.Name, Err: err}
	}
	if s.Totals == nil {
		return nil
	}
	if len(s.Totals.Fields) == 0 {
		return &layout.ConfigError{Table: s.Name, Err: fmt.Errorf("totals 未指定字段")}
	}
	for _, f := range s.Totals.Fields {
		if fieldCatalogue[f].totals == nil {
			return &layout.ConfigError{Table: s.Name, Err: fmt.Errorf("字段 %s 不能求和", f)}
		}
		if !present[f] {
			return &layout.ConfigError{Table: s.Name, Err: fmt.Errorf("totals 字段 %s 不在表格列中", f)}
		}
	}
	return nil
}

// resolveMargin applies up to four lengths CSS-style.
func resolveMargin(vals []dsl.Length) (layout.Margin, error) {
	m := make([]float64, len(vals))
	for i, v := range vals {
		m[i] = v.MM()
	}
	switch len(m) {
	case 0:
		return layout.Margin{Top: 20, Right: 20, Bottom: 20, Left: 20}, nil
	case 1:
		return layout.Margin{Top: m[0], Right: m[0], Bottom: m[0], Left: m[0]}, nil
	case 2:
		return layout.Margin{Top: m[0], Right: m[1], Bottom: m[0], Left: m[1]}, nil
	case 3:
		return layout.Margin{Top: m[0], Right: m[1], Bottom: m[2], Left: m[1]}, nil
	case 4:
		return layout.Margin{Top: m[0], Right: m[1], Bottom: m[2], Left: m[3]}, nil
	default:
		return layout.Margin{}, fmt.Errorf("margin 最多四个值, got %d", len(m))
	}
}

func (t *Template) color(value string) (layout.Color, error) {
	if c, ok := t.Colors[value]; ok {
		return c, nil
	}
	return parseColor(value)
}

func parseColor(value string) (layout.Color, error) {
	if !strings.HasPrefix(value, "#") {
		return layout.Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	hex := strings.TrimPrefix(value, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 && len(hex) != 8 {
		return layout.Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	v, err := strconv.ParseUint(hex[:6], 16, 32)
	if err != nil {
		return layout.Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	return layout.Color{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}, nil
}
