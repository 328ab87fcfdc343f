package document

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/ByLCY/folio/imagefetch"
	"github.com/ByLCY/folio/layout"
)

// stubBackend measures every rune as half the font size and "renders" the
// display list as debug JSON.
type stubBackend struct{}

func (stubBackend) Measurer(_ layout.FontResource, size float64) (layout.Measurer, error) {
	return layout.MeasureFunc(func(s string) float64 {
		return float64(utf8.RuneCountInString(s)) * size * 0.5
	}), nil
}

func (stubBackend) Render(res *layout.Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := layout.EncodeDebugJSON(&buf, res); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var fixedClock = WithClock(func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC) })

var failingFetcher = imagefetch.FetcherFunc(func(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
})

func pngFetcher(t *testing.T, w, h int) imagefetch.Fetcher {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	data := buf.Bytes()
	return imagefetch.FetcherFunc(func(context.Context, string) ([]byte, error) { return data, nil })
}

func newTestComposer(t *testing.T, tpl *Template, opts ...Option) *Composer {
	t.Helper()
	if tpl == nil {
		tpl = DefaultTemplate()
	}
	opts = append([]Option{fixedClock, WithFetcher(failingFetcher)}, opts...)
	c, err := NewComposer(tpl, stubBackend{}, opts...)
	if err != nil {
		t.Fatalf("NewComposer: %v", err)
	}
	return c
}

func day(s string) *time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &d
}

func sampleItems() []LineItem {
	return []LineItem{
		{
			ParticipantName: "Mei Chen",
			ParticipantID:   "P-1001",
			ProductName:     "Yoga Basics",
			UnitPrice:       decimal.RequireFromString("80"),
			DateRangeStart:  day("2026-11-02"),
			DateRangeEnd:    day("2026-12-14"),
		},
		{
			ParticipantName: "Mei Chen",
			ParticipantID:   "P-1001",
			ProductName:     "太极拳",
			UnitPrice:       decimal.RequireFromString("120"),
		},
	}
}

func allTexts(res *layout.Result) []layout.TextBox {
	var out []layout.TextBox
	for _, p := range res.Pages {
		out = append(out, p.Texts...)
	}
	return out
}

func contents(boxes []layout.TextBox) []string {
	out := make([]string, len(boxes))
	for i, b := range boxes {
		out[i] = b.Content
	}
	return out
}

func find(t *testing.T, boxes []layout.TextBox, prefix string) layout.TextBox {
	t.Helper()
	for _, b := range boxes {
		if strings.HasPrefix(b.Content, prefix) {
			return b
		}
	}
	t.Fatalf("no text starting with %q in %v", prefix, contents(boxes))
	return layout.TextBox{}
}

// totalsRow returns the texts drawn right after the totals label.
func totalsRow(t *testing.T, res *layout.Result) []string {
	t.Helper()
	texts := contents(allTexts(res))
	for i, s := range texts {
		if s == "Total" && i+2 < len(texts) {
			return texts[i+1 : i+3]
		}
	}
	t.Fatalf("totals row not found in %v", texts)
	return nil
}

func TestTotalsUseSubsidizedPrice(t *testing.T) {
	c := newTestComposer(t, nil)
	res, err := c.Layout(context.Background(), sampleItems(), 50, "INV-7")
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if diff := cmp.Diff([]string{"$200.00", "$1000.00"}, totalsRow(t, res)); diff != "" {
		t.Fatalf("totals mismatch (-want +got):\n%s", diff)
	}

	res, err = c.Layout(context.Background(), sampleItems(), 49, "INV-7")
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if diff := cmp.Diff([]string{"$1000.00", "$1000.00"}, totalsRow(t, res)); diff != "" {
		t.Fatalf("under-threshold totals mismatch (-want +got):\n%s", diff)
	}
}

func TestRowsShowCodesFontsAndBlanks(t *testing.T) {
	c := newTestComposer(t, nil)
	items := append(sampleItems(), LineItem{ProductName: "Unlisted Course", UnitPrice: decimal.RequireFromString("10")})
	res, err := c.Layout(context.Background(), items, 60, "INV-8")
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	texts := allTexts(res)
	got := contents(texts)
	// the date range wraps inside its column
	for _, want := range []string{"YB-01", "TC-03", "2026-11-02 -", "2026-12-14", "$80.00", "$400.00", "Unlisted Course"} {
		if !containsString(got, want) {
			t.Fatalf("missing %q in %v", want, got)
		}
	}
	if containsString(got, "${participant.name}") {
		t.Fatalf("placeholders must not leak into the document")
	}
	if f := find(t, texts, "太极拳").Font; f != "CJK" {
		t.Fatalf("CJK course name drawn with %q", f)
	}
	if f := find(t, texts, "Yoga Basics").Font; f != "Latin" {
		t.Fatalf("Latin course name drawn with %q", f)
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestNotesFollowLastTable(t *testing.T) {
	c := newTestComposer(t, nil)
	res, err := c.Layout(context.Background(), sampleItems(), 50, "INV-9")
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	texts := allTexts(res)
	first := find(t, texts, "1. ")
	if !strings.Contains(first.Content, "2 registrations: $200.00") {
		t.Fatalf("note not interpolated: %q", first.Content)
	}
	third := find(t, texts, "3. ")
	if !strings.Contains(third.Content, "INV-9") || third.Y <= first.Y {
		t.Fatalf("notes out of order or missing number: %+v", third)
	}
	lastID := find(t, texts, "P-1001")
	for _, b := range texts {
		if b.Content == "P-1001" && b.Y > lastID.Y {
			lastID = b
		}
	}
	if first.Y <= lastID.Y+DefaultTemplate().Notes.Gap {
		t.Fatalf("notes (y=%g) should start below the participant table (last row y=%g)", first.Y, lastID.Y)
	}
}

func TestFailedImageLeavesNoGap(t *testing.T) {
	withLogo := DefaultTemplate()
	noLogo := DefaultTemplate()
	noLogo.Logo = nil

	var logs bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&logs, nil)))
	defer SetLogger(nil)

	got, err := newTestComposer(t, withLogo).Layout(context.Background(), sampleItems(), 50, "INV-1")
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	want, err := newTestComposer(t, noLogo).Layout(context.Background(), sampleItems(), 50, "INV-1")
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if diff := cmp.Diff(want.Pages, got.Pages); diff != "" {
		t.Fatalf("failed image changed the layout (-want +got):\n%s", diff)
	}
	if !strings.Contains(logs.String(), "header image unavailable") || !strings.Contains(logs.String(), "connection refused") {
		t.Fatalf("expected a warning about the image, got %q", logs.String())
	}
}

func TestImageShiftsOrganization(t *testing.T) {
	c := newTestComposer(t, nil, WithFetcher(pngFetcher(t, 100, 50)))
	res, err := c.Layout(context.Background(), sampleItems(), 50, "INV-2")
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	page := res.Pages[0]
	if len(page.Images) != 1 {
		t.Fatalf("expected 1 image, got %d", len(page.Images))
	}
	img := page.Images[0]
	if img.X != 15 || img.Width != 35 || img.Height != 17.5 {
		t.Fatalf("unexpected image box %+v", img)
	}
	org := find(t, page.Texts, "Folio Community")
	if org.X != 15+35+4 {
		t.Fatalf("organization x = %g, want %g", org.X, 15.0+35+4)
	}
	title := find(t, page.Texts, "INVOICE")
	if img.Y <= title.Y {
		t.Fatalf("image should sit below the title")
	}
}

func TestImageHeightIsCapped(t *testing.T) {
	c := newTestComposer(t, nil, WithFetcher(pngFetcher(t, 10, 10)))
	res, err := c.Layout(context.Background(), sampleItems(), 50, "INV-3")
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	img := res.Pages[0].Images[0]
	if img.Height != 22 || img.Width != 22 {
		t.Fatalf("square logo should be capped to 22mm, got %gx%g", img.Width, img.Height)
	}
}

func TestNumberPrefixOffset(t *testing.T) {
	c := newTestComposer(t, nil)
	plain, err := c.Layout(context.Background(), sampleItems(), 50, "INV-5")
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	receipt, err := c.Layout(context.Background(), sampleItems(), 50, "R-5")
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	a := find(t, plain.Pages[0].Texts, "Invoice No.")
	b := find(t, receipt.Pages[0].Texts, "Invoice No.")
	if a.X != 195-70 {
		t.Fatalf("number block x = %g, want %g", a.X, 195.0-70)
	}
	if b.X-a.X != -12 {
		t.Fatalf("prefix offset = %g, want -12", b.X-a.X)
	}
	if a.Align != "right" {
		t.Fatalf("number block should be right aligned")
	}
	date := find(t, plain.Pages[0].Texts, "Date ")
	if date.Content != "Date 2026-10-19" {
		t.Fatalf("date line = %q", date.Content)
	}
}

func TestOrganizationStopsAtShiftedNumber(t *testing.T) {
	c := newTestComposer(t, nil)
	for _, tc := range []struct {
		number string
		right  float64
	}{
		{"INV-5", 195 - 70},
		{"R-5", 195 - 70 - 12},
	} {
		res, err := c.Layout(context.Background(), sampleItems(), 50, tc.number)
		if err != nil {
			t.Fatalf("%s: Layout: %v", tc.number, err)
		}
		texts := res.Pages[0].Texts
		org := find(t, texts, "Folio Community")
		num := find(t, texts, "Invoice No.")
		if got := org.X + org.Width; got != tc.right {
			t.Fatalf("%s: organization right edge = %g, want %g", tc.number, got, tc.right)
		}
		if org.X+org.Width > num.X {
			t.Fatalf("%s: organization overlaps number block at %g", tc.number, num.X)
		}
	}
}

func TestLongInvoicePaginates(t *testing.T) {
	items := make([]LineItem, 60)
	for i := range items {
		items[i] = LineItem{ParticipantName: "Participant", ProductName: "Pilates", UnitPrice: decimal.NewFromInt(10)}
	}
	c := newTestComposer(t, nil)
	res, err := c.Layout(context.Background(), items, 55, "INV-60")
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(res.Pages) < 3 {
		t.Fatalf("expected at least 3 pages, got %d", len(res.Pages))
	}
	headers := 0
	for _, s := range contents(allTexts(res)) {
		if s == "Full Fee" {
			headers++
		}
	}
	if headers != 1 {
		t.Fatalf("course header drawn %d times", headers)
	}
	bottom := 297.0 - 15
	for i, p := range res.Pages {
		for _, tb := range p.Texts {
			if tb.Y > bottom {
				t.Fatalf("page %d: %q drawn below the margin at %g", i+1, tb.Content, tb.Y)
			}
		}
	}
	if diff := cmp.Diff([]string{"$600.00", "$3000.00"}, totalsRow(t, res)); diff != "" {
		t.Fatalf("totals mismatch (-want +got):\n%s", diff)
	}
}

func TestNoItems(t *testing.T) {
	c := newTestComposer(t, nil)
	if _, err := c.Render(context.Background(), nil, 50, "X"); !errors.Is(err, ErrNoItems) {
		t.Fatalf("expected ErrNoItems, got %v", err)
	}
}

func TestCancelledContextAbortsAtImage(t *testing.T) {
	block := imagefetch.FetcherFunc(func(ctx context.Context, _ string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	c := newTestComposer(t, nil, WithFetcher(block))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Layout(ctx, sampleItems(), 50, "X"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestConcurrentRenders(t *testing.T) {
	c := newTestComposer(t, nil)
	want, err := c.Render(context.Background(), sampleItems(), 50, "INV-C")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.Render(context.Background(), sampleItems(), 50, "INV-C")
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(got, want) {
				errs <- errors.New("concurrent render produced different output")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("%v", err)
	}
}
