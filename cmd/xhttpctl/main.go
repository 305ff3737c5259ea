// xhttpctl 通过 xhttpclient 插桩发出 HTTP 请求，并打印插桩结果。
//
// 用法:
//
//	xhttpctl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config       配置文件路径（yaml / json），缺省使用内置默认值
//	    --dsn          DSN，覆盖配置文件
//	-t, --target       传播目标模式，可重复，覆盖配置文件
//	    --traceparent  额外附加 W3C traceparent 头
//	    --timeout      单次请求超时 (默认: 30s)
//	    --log-level    日志级别 (debug/info/warn/error)
//	    --log-format   日志格式 (text/json)
//	    --log-file     日志文件，按大小轮转
//
// 命令:
//
//	get <url>                      以客户端入口发送 GET 请求，url 可省略 scheme
//	request [-X 方法] [-H 头] <url> 以传输层入口发送任意请求
//	match <url>...                 判断各 url 是否附加传播头
//
// get 与 request 在标准输出打印 JSON 报告：状态码、实际发出的传播头、
// Span、面包屑与传播次数。日志写到标准错误。
//
// 退出码:
//
//	0: 请求完成（任意 HTTP 状态码）
//	1: 请求失败或配置错误
//	2: 参数错误
//
// 示例:
//
//	xhttpctl get api.example.com/health
//	xhttpctl -t api.example.com request -X POST -H 'Content-Type: application/json' -d '{}' https://api.example.com/orders
//	xhttpctl -c xoutbound.yaml match https://api.example.com/a https://cdn.example.net/b
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
)

// defaultTimeout 默认请求超时。
const defaultTimeout = 30 * time.Second

// 版本信息（可通过 -ldflags 注入）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandler(cancel)

	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// createApp 创建 CLI 应用。
func createApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "xhttpctl",
		Usage:     "发送插桩的出站 HTTP 请求并打印链路信息",
		Version:   fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径（yaml / json）",
			},
			&cli.StringFlag{
				Name:  "dsn",
				Usage: "DSN，覆盖配置文件",
			},
			&cli.StringSliceFlag{
				Name:    "target",
				Aliases: []string{"t"},
				Usage:   "传播目标模式，可重复",
			},
			&cli.BoolFlag{
				Name:  "traceparent",
				Usage: "额外附加 W3C traceparent 头",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "单次请求超时",
				Value: defaultTimeout,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "日志级别 (debug/info/warn/error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "日志格式 (text/json)",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "日志文件，按大小轮转",
			},
		},
		Commands: createCommands(),
		// 退出码由 run() 统一映射，禁止 urfave/cli 直接调用 os.Exit
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(stderr, err)
			}
		},
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := createApp(stdout, stderr)

	if err := app.Run(ctx, args); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		if isCLIUsageError(err) {
			return 2
		}
		fmt.Fprintf(stderr, "错误: %v\n", err)
		return 1
	}
	return 0
}

// isCLIUsageError 判断是否为 urfave/cli 自身产生的参数错误（未知 flag、未知命令等）。
func isCLIUsageError(err error) bool {
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "flag provided but not defined") ||
		strings.Contains(msg, "not set") ||
		strings.Contains(msg, "invalid value")
}

// setupSignalHandler 第一次信号取消正在进行的请求，第二次强制退出（130 = 128 + SIGINT）。
func setupSignalHandler(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()

		<-sigCh
		signal.Stop(sigCh)
		os.Exit(130)
	}()
}
