package layout

import (
	"math"
	"strings"
)

// WrappedCell 是一个字段文本适配某一列宽度后的结果。
type WrappedCell struct {
	Lines []string
	Font  string
}

// LineCount 返回行数；空单元格按一行计算高度。
func (c WrappedCell) LineCount() int {
	if len(c.Lines) == 0 {
		return 1
	}
	return len(c.Lines)
}

// Wrap 使用贪心算法按空白切分并折行，使每行宽度不超过 maxWidth。
//
// 换行符与其它空白一样只是分隔符，表格单元格使用这一形式。
// 单个 token 本身超宽时独占一行且不拆分（不做词内断字）。
// 空输入或只含空白的输入返回空切片。maxWidth <= 0 表示不限宽度。
func Wrap(text string, maxWidth float64, m Measurer) []string {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}
	return wrapTokens(tokens, limitOf(maxWidth), m, nil)
}

// WrapParagraphs 与 Wrap 相同，但显式换行符开始新的段落，段落之间的空行保留为 ""。
// 用于标题、机构地址与备注等自由文本。
func WrapParagraphs(text string, maxWidth float64, m Measurer) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	limit := limitOf(maxWidth)
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		tokens := strings.Fields(para)
		if len(tokens) == 0 {
			lines = append(lines, "")
			continue
		}
		lines = wrapTokens(tokens, limit, m, lines)
	}
	return lines
}

func limitOf(maxWidth float64) float64 {
	if maxWidth <= 0 {
		return math.MaxFloat64
	}
	return maxWidth
}

func wrapTokens(tokens []string, limit float64, m Measurer, lines []string) []string {
	acc := tokens[0]
	for _, token := range tokens[1:] {
		candidate := acc + " " + token
		if m.TextWidth(candidate) <= limit {
			acc = candidate
			continue
		}
		lines = append(lines, acc)
		acc = token
	}
	return append(lines, acc)
}
