// Package document composes invoices and receipts: a title, a header band with
// image, organization and number blocks, one or more tables and numbered notes,
// laid out top to bottom with a single explicit cursor.
package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ByLCY/folio/binding"
	"github.com/ByLCY/folio/imagefetch"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/pricing"
	"github.com/ByLCY/folio/renderer"
	canvasrenderer "github.com/ByLCY/folio/renderer/canvas"
	"github.com/ByLCY/folio/script"
	"github.com/ByLCY/folio/table"
)

// ErrNoItems is returned when a document is requested without line items.
var ErrNoItems = errors.New("document: no line items")

// lineFactor is the line height of free text blocks relative to their font size.
const lineFactor = 1.4

// Composer renders documents from one template. It holds only immutable
// configuration; concurrent Render calls are safe as long as the backend is.
type Composer struct {
	tpl     *Template
	backend renderer.Backend
	fetcher imagefetch.Fetcher
	now     func() time.Time
	tables  []*table.Table[Row]
}

// Option configures a Composer.
type Option func(*Composer)

// WithFetcher replaces the header image fetcher.
func WithFetcher(f imagefetch.Fetcher) Option {
	return func(c *Composer) { c.fetcher = f }
}

// WithClock sets the time source for the document date.
func WithClock(now func() time.Time) Option {
	return func(c *Composer) { c.now = now }
}

// NewComposer prepares the tables of tpl. Images are fetched over HTTP or from
// paths relative to the working directory unless WithFetcher is given.
func NewComposer(tpl *Template, backend renderer.Backend, opts ...Option) (*Composer, error) {
	if tpl == nil {
		return nil, fmt.Errorf("document: nil template")
	}
	if backend == nil {
		return nil, fmt.Errorf("document: nil backend")
	}
	c := &Composer{
		tpl:     tpl,
		backend: backend,
		fetcher: imagefetch.NewRouter(""),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	for _, spec := range tpl.Tables {
		t := newTable(tpl, spec)
		if err := t.Validate(); err != nil {
			return nil, err
		}
		c.tables = append(c.tables, t)
	}
	return c, nil
}

func newTable(tpl *Template, spec TableSpec) *table.Table[Row] {
	cols := make([]table.Column[Row], len(spec.Columns))
	for i, def := range spec.Columns {
		info := fieldCatalogue[def.Field]
		cols[i] = table.Column[Row]{
			ColumnSpec: def.ColumnSpec,
			Text:       func(r Row) string { return info.text(tpl, r) },
		}
	}
	return &table.Table[Row]{Name: spec.Name, Columns: cols, Style: tpl.Style}
}

// Template returns the composer's template.
func (c *Composer) Template() *Template { return c.tpl }

// Render lays out the document and encodes it with the backend.
func (c *Composer) Render(ctx context.Context, items []LineItem, age int, number string) ([]byte, error) {
	res, err := c.Layout(ctx, items, age, number)
	if err != nil {
		return nil, err
	}
	out, err := c.backend.Render(res)
	if err != nil {
		return nil, fmt.Errorf("输出文档 %s 失败: %w", number, err)
	}
	return out, nil
}

// Layout composes the document into a display list.
func (c *Composer) Layout(ctx context.Context, items []LineItem, age int, number string) (*layout.Result, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	tpl := c.tpl
	log := Logger().With("document", number)

	// started first so the fetch overlaps with pricing and the title block
	var logo *imagefetch.Promise
	if tpl.Logo != nil {
		logo = imagefetch.Start(ctx, c.fetcher, tpl.Logo.Src, tpl.Logo.Timeout)
	}

	rows := make([]Row, len(items))
	var totals pricing.Totals
	for i, it := range items {
		b := tpl.Pricing.Compute(it.UnitPrice, age)
		rows[i] = Row{Index: i + 1, Item: it, Price: b}
		totals.Add(b)
	}

	rec := layout.NewRecorder(tpl.PageWidth, tpl.PageHeight, tpl.Margin, tpl.Fonts, c.backend)
	p := &composition{
		tpl:   tpl,
		surf:  rec,
		data:  c.bindings(items, number, totals),
		date:  c.now().Format(tpl.DateFormat),
		left:  tpl.Margin.Left,
		width: rec.ContentWidth(),
	}
	meta := tpl.Meta
	meta.Title = p.interpolate(meta.Title)
	rec.SetMeta(meta)

	y, _ := rec.Bounds()
	var err error
	if y, err = p.title(y); err != nil {
		return nil, fmt.Errorf("绘制标题失败: %w", err)
	}
	if y, err = p.header(ctx, y, logo, number); err != nil {
		return nil, fmt.Errorf("绘制页眉失败: %w", err)
	}
	log.Debug("header done", "y", y)

	usable := p.width * tpl.UsableWidth
	for i, t := range c.tables {
		spec := tpl.Tables[i]
		y += spec.Gap
		if y, err = t.Render(rec, p.left, usable, y, rows, c.totals(spec, totals)); err != nil {
			return nil, fmt.Errorf("绘制表格 %s 失败: %w", spec.Name, err)
		}
		log.Debug("table done", "table", spec.Name, "rows", len(rows), "y", y)
	}

	if y, err = p.notes(y); err != nil {
		return nil, fmt.Errorf("绘制备注失败: %w", err)
	}
	res := rec.Result()
	log.Debug("layout done", "pages", len(res.Pages), "y", y)
	return res, nil
}

func (c *Composer) totals(spec TableSpec, tot pricing.Totals) *table.Totals {
	if spec.Totals == nil {
		return nil
	}
	values := map[int]string{}
	for i, col := range spec.Columns {
		for _, f := range spec.Totals.Fields {
			if col.Field == f {
				values[i] = c.tpl.Money.Format(fieldCatalogue[f].totals(tot))
			}
		}
	}
	return &table.Totals{Label: spec.Totals.Label, Values: values}
}

func (c *Composer) bindings(items []LineItem, number string, tot pricing.Totals) map[string]any {
	first := items[0]
	return map[string]any{
		"document": map[string]any{
			"number": number,
			"date":   c.now().Format(c.tpl.DateFormat),
		},
		"participant": map[string]any{
			"name": first.ParticipantName,
			"id":   first.ParticipantID,
		},
		"totals": map[string]any{
			"payable": c.tpl.Money.Format(tot.Payable),
			"full":    c.tpl.Money.Format(tot.Full),
		},
		"item": map[string]any{
			"count": tot.Count,
		},
	}
}

// composition is the state of one Layout call.
type composition struct {
	tpl   *Template
	surf  layout.Surface
	data  map[string]any
	date  string
	left  float64
	width float64
}

func (p *composition) interpolate(s string) string {
	return binding.InterpolateWith(s, p.data, binding.Blank)
}

func (p *composition) title(y float64) (float64, error) {
	b := p.tpl.Title
	if b == nil {
		return y, nil
	}
	end, err := p.text(p.interpolate(b.Text), p.left, y, p.width, b.Font, b.Size, b.Align)
	if err != nil {
		return y, err
	}
	return end + b.Gap, nil
}

// header draws the image, organization and number blocks side by side and
// returns the bottom of the tallest one. An image that cannot be fetched is
// logged and leaves no space behind.
func (p *composition) header(ctx context.Context, y float64, logo *imagefetch.Promise, number string) (float64, error) {
	tpl := p.tpl
	right := p.left + p.width
	bottom := y

	orgX := p.left
	if logo != nil {
		img, err := logo.Await(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return y, ctx.Err()
		case err != nil:
			Logger().Warn("header image unavailable, continuing without it", "src", tpl.Logo.Src, "err", err)
		default:
			w := tpl.Logo.Width
			h := w * img.AspectRatio()
			if tpl.Logo.MaxHeight > 0 && h > tpl.Logo.MaxHeight {
				w = w * tpl.Logo.MaxHeight / h
				h = tpl.Logo.MaxHeight
			}
			if err := p.surf.DrawImage(img.Data, p.left, y, w, h); err != nil {
				return y, err
			}
			orgX = p.left + w + tpl.Logo.Gap
			bottom = max(bottom, y+h)
		}
	}

	// orgRight is the left edge of the number block, never right of its unshifted slot.
	orgRight := right
	if n := tpl.Number; n != nil {
		x := right - n.Width
		if n.Prefix != "" && strings.HasPrefix(number, n.Prefix) {
			x += n.Offset
		}
		orgRight = min(x, right-n.Width)
		content := n.Label + " " + number + "\n" + n.DateLabel + " " + p.date
		end, err := p.text(content, x, y, n.Width, n.Font, n.Size, "right")
		if err != nil {
			return y, err
		}
		bottom = max(bottom, end)
	}

	if b := tpl.Organization; b != nil {
		width := orgRight - orgX
		if width <= 0 {
			return y, fmt.Errorf("组织信息区域宽度不足: %.1fmm", width)
		}
		end, err := p.text(p.interpolate(b.Text), orgX, y, width, b.Font, b.Size, b.Align)
		if err != nil {
			return y, err
		}
		bottom = max(bottom, end)
	}
	return bottom, nil
}

// notes draws the numbered footer notes, breaking pages between notes.
func (p *composition) notes(y float64) (float64, error) {
	n := p.tpl.Notes
	if n == nil || len(n.Items) == 0 {
		return y, nil
	}
	y += n.Gap
	top, bottom := p.surf.Bounds()
	for i, item := range n.Items {
		text := fmt.Sprintf("%d. %s", i+1, p.interpolate(item))
		lines, font, err := p.wrap(text, p.width, n.Font, n.Size)
		if err != nil {
			return y, err
		}
		if h := float64(len(lines)) * n.Size * lineFactor; y+h > bottom && y > top {
			if err := p.surf.NewPage(); err != nil {
				return y, err
			}
			y = top
		}
		if y, err = p.drawLines(lines, p.left, y, p.width, font, n.Size, "left"); err != nil {
			return y, err
		}
	}
	return y, nil
}

// text wraps and draws text inside [x, x+width] from y, returning the y below it.
func (p *composition) text(text string, x, y, width float64, font string, size float64, align string) (float64, error) {
	lines, font, err := p.wrap(text, width, font, size)
	if err != nil {
		return y, err
	}
	return p.drawLines(lines, x, y, width, font, size, align)
}

func (p *composition) wrap(text string, width float64, font string, size float64) ([]string, string, error) {
	if sel := p.tpl.Style.Fonts; sel.CJK != "" && script.ContainsCJK(text) {
		font = sel.CJK
	}
	m, err := p.surf.Measurer(font, size)
	if err != nil {
		return nil, font, err
	}
	return layout.WrapParagraphs(text, width, m), font, nil
}

func (p *composition) drawLines(lines []string, x, y, width float64, font string, size float64, align string) (float64, error) {
	style := layout.TextStyle{
		Font:     font,
		FontSize: size,
		Color:    p.tpl.Style.TextColor,
		Align:    align,
		Width:    width,
	}
	lh := size * lineFactor
	for i, line := range lines {
		if line == "" {
			continue
		}
		if err := p.surf.DrawText(line, x, y+float64(i)*lh, style); err != nil {
			return y, err
		}
	}
	return y + float64(len(lines))*lh, nil
}

var defaultComposer = sync.OnceValues(func() (*Composer, error) {
	return NewComposer(DefaultTemplate(), canvasrenderer.New(canvasrenderer.Options{}))
})

// Render produces a PDF with the embedded default template.
func Render(ctx context.Context, items []LineItem, age int, number string) ([]byte, error) {
	c, err := defaultComposer()
	if err != nil {
		return nil, err
	}
	return c.Render(ctx, items, age, number)
}
