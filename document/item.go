package document

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// LineItem is one priced registration. Zero-valued string fields and nil
// dates render as blank cells.
type LineItem struct {
	ParticipantName string
	ParticipantID   string
	ProductName     string
	UnitPrice       decimal.Decimal
	DateRangeStart  *time.Time
	DateRangeEnd    *time.Time
}

// dateLayouts are tried in order when decoding dates.
var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006/01/02", "02.01.2006"}

type lineItemYAML struct {
	ParticipantName string `yaml:"participantName"`
	ParticipantID   string `yaml:"participantId"`
	ProductName     string `yaml:"productName"`
	UnitPrice       string `yaml:"unitPrice"`
	Start           string `yaml:"start"`
	End             string `yaml:"end"`
}

// UnmarshalYAML decodes prices as exact decimals and dates in any of dateLayouts.
func (li *LineItem) UnmarshalYAML(value *yaml.Node) error {
	var raw lineItemYAML
	if err := value.Decode(&raw); err != nil {
		return err
	}
	item := LineItem{
		ParticipantName: raw.ParticipantName,
		ParticipantID:   raw.ParticipantID,
		ProductName:     raw.ProductName,
	}
	if s := strings.TrimSpace(raw.UnitPrice); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return fmt.Errorf("line %d: unitPrice %q: %w", value.Line, raw.UnitPrice, err)
		}
		item.UnitPrice = d
	}
	var err error
	if item.DateRangeStart, err = parseDate(raw.Start); err != nil {
		return fmt.Errorf("line %d: start: %w", value.Line, err)
	}
	if item.DateRangeEnd, err = parseDate(raw.End); err != nil {
		return fmt.Errorf("line %d: end: %w", value.Line, err)
	}
	*li = item
	return nil
}

func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognised date %q", s)
}

// Input is the YAML (or JSON) request accepted by DecodeInput.
type Input struct {
	Age    int        `yaml:"age"`
	Number string     `yaml:"number"`
	Items  []LineItem `yaml:"items"`
}

// DecodeInput reads an Input document. A bare list is accepted as Items.
func DecodeInput(r io.Reader) (Input, error) {
	var node yaml.Node
	if err := yaml.NewDecoder(r).Decode(&node); err != nil {
		if err == io.EOF {
			return Input{}, ErrNoItems
		}
		return Input{}, fmt.Errorf("解析输入失败: %w", err)
	}
	doc := &node
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	var in Input
	var err error
	if doc.Kind == yaml.SequenceNode {
		err = doc.Decode(&in.Items)
	} else {
		err = doc.Decode(&in)
	}
	if err != nil {
		return Input{}, fmt.Errorf("解析输入失败: %w", err)
	}
	return in, nil
}
