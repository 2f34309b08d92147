// xhandlergen 生成 xcalltarget 的按参数个数展开的处理器类型。
//
// 用法:
//
//	xhandlergen [选项]
//
// 选项:
//
//	-n, --max-arity  入口处理器的最大参数个数 (默认: 8)
//	-p, --package    生成文件的包名 (默认: xcalltarget)
//	-o, --output     输出文件路径，"-" 表示标准输出 (默认: handlers_gen.go)
//	    --check      只比较，输出文件与生成结果不一致时返回非零退出码
//
// 在 pkg/calltarget/xcalltarget 目录下通过 go:generate 调用。
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入）
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

var errStale = errors.New("xhandlergen: output is stale, run go generate")

func main() {
	if err := createApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

// createApp 创建 CLI 应用。stdout 用于 --output - 时的输出。
func createApp(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "xhandlergen",
		Usage:   "生成 xcalltarget 处理器类型",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "max-arity",
				Aliases: []string{"n"},
				Usage:   "入口处理器的最大参数个数",
				Value:   MaxSupportedArity,
			},
			&cli.StringFlag{
				Name:    "package",
				Aliases: []string{"p"},
				Usage:   "生成文件的包名",
				Value:   "xcalltarget",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   `输出文件路径，"-" 表示标准输出`,
				Value:   "handlers_gen.go",
			},
			&cli.BoolFlag{
				Name:  "check",
				Usage: "只比较输出文件与生成结果",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			src, err := generate(genConfig{
				Package:  cmd.String("package"),
				MaxArity: cmd.Int("max-arity"),
			})
			if err != nil {
				return err
			}
			return emit(stdout, cmd.String("output"), src, cmd.Bool("check"))
		},
	}
}

func emit(stdout io.Writer, output string, src []byte, check bool) error {
	if output == "-" {
		_, err := stdout.Write(src)
		return err
	}
	if check {
		existing, err := os.ReadFile(output)
		if err != nil {
			return fmt.Errorf("xhandlergen: read %s: %w", output, err)
		}
		if !bytes.Equal(existing, src) {
			return fmt.Errorf("%w: %s", errStale, output)
		}
		return nil
	}
	if err := os.WriteFile(output, src, 0o644); err != nil { //nolint:gosec // 生成的源码文件
		return fmt.Errorf("xhandlergen: write %s: %w", output, err)
	}
	return nil
}
