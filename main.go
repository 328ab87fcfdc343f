package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ByLCY/folio/document"
	"github.com/ByLCY/folio/imagefetch"
	"github.com/ByLCY/folio/layout"
	canvasrenderer "github.com/ByLCY/folio/renderer/canvas"
)

func main() {
	tplPath := flag.String("template", "", "模板文件路径（为空时使用内置模板）")
	itemsPath := flag.String("items", "examples/items.yaml", "明细 YAML/JSON 文件路径")
	output := flag.String("out", "output/invoice.pdf", "PDF 输出路径")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	age := flag.Int("age", 0, "参与者年龄")
	number := flag.String("number", "", "单据编号（覆盖输入文件中的 number）")
	timeout := flag.Duration("timeout", 30*time.Second, "整体渲染超时")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	document.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	j := job{
		template: *tplPath,
		items:    *itemsPath,
		output:   *output,
		debug:    *debug,
	}
	// 只有显式给出的参数才覆盖输入文件，-age 0 也算
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "age":
			j.age = age
		case "number":
			j.number = number
		}
	})
	if err := run(ctx, j); err != nil {
		log.Fatalf("生成 PDF 失败: %v", err)
	}
	fmt.Printf("已生成 PDF：%s\n", *output)
}

type job struct {
	template string
	items    string
	output   string
	debug    string
	age      *int
	number   *string
}

// overrides 返回最终使用的年龄与单据编号，命令行参数优先于输入文件。
func (j job) overrides(input document.Input) (int, string) {
	age, number := input.Age, input.Number
	if j.age != nil {
		age = *j.age
	}
	if j.number != nil {
		number = *j.number
	}
	return age, number
}

// run 串联模板加载、布局与渲染。
func run(ctx context.Context, j job) error {
	tpl := document.DefaultTemplate()
	baseDir := "."
	if j.template != "" {
		var err error
		if tpl, err = document.LoadTemplateFile(j.template); err != nil {
			return err
		}
		baseDir = filepath.Dir(j.template)
	}

	file, err := os.Open(j.items)
	if err != nil {
		return fmt.Errorf("无法打开明细文件 %s: %w", j.items, err)
	}
	defer file.Close()
	input, err := document.DecodeInput(file)
	if err != nil {
		return err
	}
	age, number := j.overrides(input)

	backend := canvasrenderer.New(canvasrenderer.Options{BaseDir: baseDir})
	c, err := document.NewComposer(tpl, backend, document.WithFetcher(imagefetch.NewRouter(baseDir)))
	if err != nil {
		return fmt.Errorf("模板配置无效: %w", err)
	}

	result, err := c.Layout(ctx, input.Items, age, number)
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}

	if j.debug != "" {
		if err := writeDebug(result, j.debug); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(j.output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	pdfBytes, err := backend.Render(result)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(j.output, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
