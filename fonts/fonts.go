// Package fonts 提供内置字体与系统字体的查找。
package fonts

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/flopp/go-findfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

var builtin = map[string][]byte{
	"go-regular":     goregular.TTF,
	"go-bold":        gobold.TTF,
	"go-italic":      goitalic.TTF,
	"go-bold-italic": gobolditalic.TTF,
	"go-medium":      gomedium.TTF,
	"go-mono":        gomono.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "builtin:go-regular" 或直接 "go-regular"。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimSpace(trimScheme(name, "builtin:", "built-in:")))
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("找不到内置字体 %s", name)
	}
	return data, nil
}

// Builtin 列出所有内置字体名。
func Builtin() []string {
	names := make([]string, 0, len(builtin))
	for k := range builtin {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Find 在系统字体目录中查找字体文件并读取。
// name 可包含多个以 "|" 分隔的候选文件名，返回第一个找到的。
func Find(name string) ([]byte, string, error) {
	var tried []string
	for _, cand := range strings.Split(trimScheme(name, "system:"), "|") {
		cand = strings.TrimSpace(cand)
		if cand == "" {
			continue
		}
		tried = append(tried, cand)
		path, err := findfont.Find(cand)
		if err != nil {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, path, fmt.Errorf("读取系统字体 %s 失败: %w", path, err)
		}
		return data, path, nil
	}
	return nil, "", fmt.Errorf("系统中找不到字体 %s", strings.Join(tried, ", "))
}

func trimScheme(s string, schemes ...string) string {
	for _, p := range schemes {
		if strings.HasPrefix(s, p) {
			return strings.TrimPrefix(s, p)
		}
	}
	return s
}
