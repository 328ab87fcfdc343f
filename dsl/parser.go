package dsl

import (
	"fmt"
	"io"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	// EOL swallows blank lines, trailing comments and ";" so statements end on a single token.
	folioLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "EOL", Pattern: `(?:[ \t\r]*(?://[^\n]*)?[\n;])+[ \t\r]*`},
		{Name: "Comment", Pattern: `//[^\n]*`},
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "Number", Pattern: `-?\d+(?:\.\d+)?(?:pt|mm|cm|in|ms|s|%|x)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Punct", Pattern: `[{}\[\]:=,]`},
	})

	templateParser = participle.MustBuild[Document](
		participle.Lexer(folioLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.Unquote("String"),
	)
)

// Document is the root of a .folio template:
//
//	template Invoice v1 { meta {…} resources {…} codes {…} page A4 … {…} }
type Document struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"EOL* 'template' @Ident"`
	Version  string         `parser:"@Ident '{' EOL*"`
	Sections []*Section     `parser:"( @@ EOL* )* '}' EOL*"`
}

// Section is one top-level block.
type Section struct {
	Meta      *Meta      `parser:"  @@"`
	Resources *Resources `parser:"| @@"`
	Codes     *Codes     `parser:"| @@"`
	Page      *Page      `parser:"| @@"`
}

// Kind returns the section keyword.
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Meta != nil:
		return "meta"
	case s.Resources != nil:
		return "resources"
	case s.Codes != nil:
		return "codes"
	case s.Page != nil:
		return "page"
	default:
		return "unknown"
	}
}

// Meta carries the PDF document properties.
type Meta struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Settings []*MetaSetting `parser:"'meta' '{' EOL* ( @@ EOL* )* '}'"`
}

type MetaSetting struct {
	Title    *string  `parser:"  'title' ':' @String"`
	Author   *string  `parser:"| 'author' ':' @String"`
	Subject  *string  `parser:"| 'subject' ':' @String"`
	Creator  *string  `parser:"| 'creator' ':' @String"`
	Keywords []string `parser:"| 'keywords' ':' '[' ( EOL | ',' )* ( @String ( EOL | ',' )* )* ']'"`
}

// Resources declares fonts and named colours.
type Resources struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Items []*Resource    `parser:"'resources' '{' EOL* ( @@ EOL* )* '}'"`
}

type Resource struct {
	Font  *Font  `parser:"  @@"`
	Color *Color `parser:"| @@"`
}

// Font is `font <Name> { src: "…" style: "…" fallback: "…" }`.
type Font struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"'font' @Ident '{' EOL*"`
	Settings []*FontSetting `parser:"( @@ EOL* )* '}'"`
}

type FontSetting struct {
	Src      *string `parser:"  'src' ':' @String"`
	Style    *string `parser:"| 'style' ':' @String"`
	Family   *string `parser:"| 'family' ':' @String"`
	Fallback *string `parser:"| 'fallback' ':' @String"`
	Index    *int    `parser:"| 'index' ':' @Number"`
}

// Color is `color <Name> = #RRGGBB`.
type Color struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Name  string         `parser:"'color' @Ident '='"`
	Value string         `parser:"@Color"`
}

// Codes maps product display names to product codes.
type Codes struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Entries []*CodeEntry   `parser:"'codes' '{' EOL* ( @@ EOL* )* '}'"`
}

// CodeEntry is `code "<name>" "<code>"`.
type CodeEntry struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Name string         `parser:"'code' @String"`
	Code string         `parser:"@String"`
}

// Page is `page <size> [portrait|landscape] [margin <len>{1,4}] { … }`.
type Page struct {
	Pos         lexer.Position   `parser:"" json:"-"`
	Size        string           `parser:"'page' @Ident"`
	Orientation string           `parser:"@( 'portrait' | 'landscape' )?"`
	Margin      []Length         `parser:"( 'margin' @Number+ )?"`
	Body        []*PageStatement `parser:"'{' EOL* ( @@ EOL* )* '}'"`
}

// PageStatement is one statement of the page body, in document order.
type PageStatement struct {
	Style        *Style     `parser:"  @@"`
	Locale       *Locale    `parser:"| @@"`
	Pricing      *Pricing   `parser:"| @@"`
	Title        *TextBlock `parser:"| 'title' @@"`
	Organization *TextBlock `parser:"| 'organization' @@"`
	Notes        *TextBlock `parser:"| 'notes' @@"`
	Logo         *Logo      `parser:"| @@"`
	Number       *Number    `parser:"| @@"`
	Table        *Table     `parser:"| @@"`
}

// Style holds the table and text defaults.
type Style struct {
	Pos      lexer.Position  `parser:"" json:"-"`
	Settings []*StyleSetting `parser:"'style' '{' EOL* ( @@ EOL* )* '}'"`
}

type StyleSetting struct {
	Font        *string   `parser:"  'font' ':' @Ident"`
	BoldFont    *string   `parser:"| 'bold-font' ':' @Ident"`
	CJKFont     *string   `parser:"| 'cjk-font' ':' @Ident"`
	FontSize    *FontSize `parser:"| 'font-size' ':' @Number"`
	LineHeight  *string   `parser:"| 'line-height' ':' @Number"`
	Padding     *Length   `parser:"| 'padding' ':' @Number"`
	Gap         *Length   `parser:"| 'gap' ':' @Number"`
	WrappedGap  *Length   `parser:"| 'wrapped-gap' ':' @Number"`
	MinHeight   *Length   `parser:"| 'min-height' ':' @Number"`
	Border      *Length   `parser:"| 'border' ':' @Number"`
	HeaderFill  *string   `parser:"| 'header-fill' ':' @( Ident | Color )"`
	TextColor   *string   `parser:"| 'text-color' ':' @( Ident | Color )"`
	UsableWidth *Fraction `parser:"| 'usable-width' ':' @Number"`
}

// Locale controls money and date formatting.
type Locale struct {
	Pos      lexer.Position   `parser:"" json:"-"`
	Settings []*LocaleSetting `parser:"'locale' '{' EOL* ( @@ EOL* )* '}'"`
}

type LocaleSetting struct {
	Currency   *string `parser:"  'currency' ':' @String"`
	Places     *int    `parser:"| 'places' ':' @Number"`
	DateFormat *string `parser:"| 'date-format' ':' @String"`
}

// Pricing overrides the age-threshold policy.
type Pricing struct {
	Pos      lexer.Position    `parser:"" json:"-"`
	Settings []*PricingSetting `parser:"'pricing' '{' EOL* ( @@ EOL* )* '}'"`
}

type PricingSetting struct {
	AgeThreshold *int    `parser:"  'age-threshold' ':' @Number"`
	Multiplier   *string `parser:"| 'multiplier' ':' @Number"`
}

// TextBlock is `<kind> [options] { "line" … }` for title, organization and notes.
type TextBlock struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Options []*TextOption  `parser:"@@*"`
	Lines   []string       `parser:"'{' EOL* ( @String EOL* )* '}'"`
}

type TextOption struct {
	Font  *string   `parser:"  'font' @Ident"`
	Size  *FontSize `parser:"| 'size' @Number"`
	Align *string   `parser:"| 'align' @( 'left' | 'center' | 'right' )"`
	Gap   *Length   `parser:"| 'gap' @Number"`
}

// Logo is the header image.
type Logo struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Options []*LogoOption  `parser:"'logo' @@+"`
}

type LogoOption struct {
	Src       *string   `parser:"  'src' @String"`
	Width     *Length   `parser:"| 'width' @Number"`
	MaxHeight *Length   `parser:"| 'max-height' @Number"`
	Gap       *Length   `parser:"| 'gap' @Number"`
	Timeout   *Duration `parser:"| 'timeout' @Number"`
}

// Number is the document number and date block.
type Number struct {
	Pos     lexer.Position  `parser:"" json:"-"`
	Options []*NumberOption `parser:"'number' @@*"`
}

type NumberOption struct {
	Label     *string   `parser:"  'label' @String"`
	DateLabel *string   `parser:"| 'date-label' @String"`
	Prefix    *string   `parser:"| 'prefix' @String"`
	Offset    *Length   `parser:"| 'offset' @Number"`
	Width     *Length   `parser:"| 'width' @Number"`
	Font      *string   `parser:"| 'font' @Ident"`
	Size      *FontSize `parser:"| 'size' @Number"`
}

// Table is `table <name> [gap <len>] { column … totals … }`.
type Table struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Name string         `parser:"'table' @Ident"`
	Gap  *Length        `parser:"( 'gap' @Number )?"`
	Rows []*TableRow    `parser:"'{' EOL* ( @@ EOL* )* '}'"`
}

type TableRow struct {
	Column *Column `parser:"  @@"`
	Totals *Totals `parser:"| @@"`
}

// Column is `column <field> weight <w> [label "…"] [align …] [script true|false]`.
type Column struct {
	Pos     lexer.Position  `parser:"" json:"-"`
	Field   string          `parser:"'column' @Ident"`
	Options []*ColumnOption `parser:"@@*"`
}

type ColumnOption struct {
	Weight *Fraction `parser:"  'weight' @Number"`
	Label  *string   `parser:"| 'label' @String"`
	Align  *string   `parser:"| 'align' @( 'left' | 'center' | 'right' )"`
	Script *string   `parser:"| 'script' @( 'true' | 'false' )"`
}

// Totals is `totals "<label>" <field>…`.
type Totals struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Label  string         `parser:"'totals' @String"`
	Fields []string       `parser:"@Ident+"`
}

// Parse parses a template from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	doc, err := templateParser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("dsl: %w", err)
	}
	return doc, nil
}

// ParseString parses a template from a string.
func ParseString(input string) (*Document, error) {
	doc, err := templateParser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("dsl: %w", err)
	}
	return doc, nil
}
