package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/urfave/cli/v3"

	"github.com/omeyang/xoutbound/pkg/observability/xlog"
	"github.com/omeyang/xoutbound/pkg/observability/xspan"
)

// exitError 命令已完成输出，只需设置退出码。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// usageError 参数错误，退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func createCommands() []*cli.Command {
	return []*cli.Command{
		createGetCommand(),
		createRequestCommand(),
		createMatchCommand(),
	}
}

func createGetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "以客户端入口发送 GET 请求",
		ArgsUsage: "<url>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return &usageError{msg: "get 需要且只需要一个 url"}
			}
			return cmdGet(ctx, cmd, cmd.Args().First())
		},
	}
}

func createRequestCommand() *cli.Command {
	return &cli.Command{
		Name:      "request",
		Aliases:   []string{"r"},
		Usage:     "以传输层入口发送任意请求（resty 客户端）",
		ArgsUsage: "<url>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "method",
				Aliases: []string{"X"},
				Usage:   "请求方法",
				Value:   http.MethodGet,
			},
			&cli.StringSliceFlag{
				Name:    "header",
				Aliases: []string{"H"},
				Usage:   "请求头 'Name: value'，可重复",
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "请求体",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return &usageError{msg: "request 需要且只需要一个 url"}
			}
			headers, err := parseHeaders(cmd.StringSlice("header"))
			if err != nil {
				return err
			}
			return cmdRequest(ctx, cmd, requestArgs{
				method:  cmd.String("method"),
				url:     cmd.Args().First(),
				headers: headers,
				body:    cmd.String("data"),
			})
		},
	}
}

func createMatchCommand() *cli.Command {
	return &cli.Command{
		Name:      "match",
		Usage:     "判断各 url 是否附加传播头",
		ArgsUsage: "<url>...",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return &usageError{msg: "match 至少需要一个 url"}
			}
			return cmdMatch(cmd, cmd.Args().Slice())
		},
	}
}

// parseHeaders 解析 "Name: value" 形式的请求头
func parseHeaders(raw []string) (http.Header, error) {
	h := http.Header{}
	for _, line := range raw {
		name, value, ok := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, &usageError{msg: fmt.Sprintf("无效的请求头 %q，应为 'Name: value'", line)}
		}
		h.Add(name, strings.TrimSpace(value))
	}
	return h, nil
}

func cmdGet(ctx context.Context, cmd *cli.Command, rawURL string) error {
	e, err := newEnv(cmd, cmd.Root().ErrWriter)
	if err != nil {
		return err
	}
	defer e.close()

	capture := &captureTransport{base: http.DefaultTransport}
	client := e.interceptor.Client(&http.Client{
		Transport: capture,
		Timeout:   requestTimeout(cmd.Duration("timeout")),
	})

	ctx, tx := e.tracer.StartTransaction(ctx, "xhttpctl get", xspan.WithOp("cli"))
	var status int
	resp, reqErr := client.Get(ctx, rawURL)
	if reqErr == nil {
		status = resp.StatusCode
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}
	tx.Finish()

	return finish(ctx, cmd, e, tx, capture, status, reqErr)
}

type requestArgs struct {
	method  string
	url     string
	headers http.Header
	body    string
}

func cmdRequest(ctx context.Context, cmd *cli.Command, args requestArgs) error {
	e, err := newEnv(cmd, cmd.Root().ErrWriter)
	if err != nil {
		return err
	}
	defer e.close()

	capture := &captureTransport{base: http.DefaultTransport}
	rc := resty.New().
		SetTransport(e.interceptor.RoundTripper(capture)).
		SetTimeout(requestTimeout(cmd.Duration("timeout"))).
		SetLogger(restyLogger{ctx: ctx, logger: e.logger})

	ctx, tx := e.tracer.StartTransaction(ctx, "xhttpctl request", xspan.WithOp("cli"))
	r := rc.R().SetContext(ctx)
	// 逐个追加，保留同名头的多个值
	for name, values := range args.headers {
		for _, v := range values {
			r.Header.Add(name, v)
		}
	}
	if args.body != "" {
		r.SetBody(args.body)
	}
	resp, reqErr := r.Execute(strings.ToUpper(args.method), args.url)
	var status int
	if resp != nil {
		status = resp.StatusCode()
	}
	tx.Finish()

	return finish(ctx, cmd, e, tx, capture, status, reqErr)
}

// finish 打印报告；请求失败时返回退出码 1
func finish(ctx context.Context, cmd *cli.Command, e *env, tx *xspan.Transaction, capture *captureTransport, status int, reqErr error) error {
	rep := newReport(tx, capture.headers(), e.buffer)
	rep.Status = status
	if reqErr != nil {
		rep.Error = reqErr.Error()
		e.logger.Warn(ctx, "request failed", xlog.Err(reqErr))
	}
	if err := rep.write(cmd.Root().Writer); err != nil {
		return err
	}
	if reqErr != nil {
		return &exitError{code: 1}
	}
	return nil
}

func cmdMatch(cmd *cli.Command, urls []string) error {
	e, err := newEnv(cmd, cmd.Root().ErrWriter)
	if err != nil {
		return err
	}
	defer e.close()

	w := tabwriter.NewWriter(cmd.Root().Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "URL\tATTACH\tINGEST")
	for _, u := range urls {
		ingest := e.interceptor.IsIngestEndpoint(u)
		attach := !ingest && e.interceptor.Matcher().ShouldAttach(u)
		fmt.Fprintf(w, "%s\t%t\t%t\n", u, attach, ingest)
	}
	return w.Flush()
}

// requestTimeout 未设置时使用默认超时
func requestTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultTimeout
	}
	return d
}
