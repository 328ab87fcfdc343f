package renderer

import "github.com/ByLCY/folio/layout"

// Renderer 将布局结果输出为最终文件，例如 PDF。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Backend 同时提供文本度量与输出，排版和渲染必须使用同一套字体。
type Backend interface {
	layout.Typesetter
	Renderer
}
