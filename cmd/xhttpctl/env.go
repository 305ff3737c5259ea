package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xoutbound/pkg/config/xconf"
	"github.com/omeyang/xoutbound/pkg/observability/xbreadcrumb"
	"github.com/omeyang/xoutbound/pkg/observability/xhttpclient"
	"github.com/omeyang/xoutbound/pkg/observability/xlog"
	"github.com/omeyang/xoutbound/pkg/observability/xsampling"
	"github.com/omeyang/xoutbound/pkg/observability/xspan"
)

// env 一次命令执行所需的插桩组件
type env struct {
	settings    xconf.Settings
	logger      xlog.LoggerWithLevel
	closeLog    func() error
	tracer      *xspan.Tracer
	buffer      *xbreadcrumb.Buffer
	interceptor *xhttpclient.Interceptor
}

// loadSettings 读取配置文件（可选），再用命令行参数覆盖
func loadSettings(cmd *cli.Command) (xconf.Settings, error) {
	s := xconf.Default()
	if path := cmd.String("config"); path != "" {
		loaded, err := xconf.Load(path)
		if err != nil {
			return xconf.Settings{}, err
		}
		s = loaded
	}

	if cmd.IsSet("dsn") {
		s.DSN = cmd.String("dsn")
	}
	if cmd.IsSet("target") {
		s.TracePropagationTargets = cmd.StringSlice("target")
	}
	if cmd.IsSet("traceparent") {
		s.Traceparent = cmd.Bool("traceparent")
	}
	if cmd.IsSet("log-level") {
		s.Log.Level = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		s.Log.Format = cmd.String("log-format")
	}
	if cmd.IsSet("log-file") {
		s.Log.File = cmd.String("log-file")
	}

	if err := s.Validate(); err != nil {
		return xconf.Settings{}, err
	}
	return s, nil
}

func newEnv(cmd *cli.Command, stderr io.Writer) (*env, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}

	b := xlog.New().
		SetOutput(stderr).
		SetLevelString(s.Log.Level).
		SetFormat(s.Log.Format)
	if s.Log.File != "" {
		b.SetRotation(s.Log.File)
	}
	logger, closeLog, err := b.Build()
	if err != nil {
		return nil, err
	}

	sampler, err := xsampling.NewRateSampler(s.SampleRate)
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	tracer, err := xspan.NewTracer(
		xspan.WithDSN(s.DSN),
		xspan.WithRelease(s.Release),
		xspan.WithEnvironment(s.Environment),
		xspan.WithSampler(sampler),
	)
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	buffer := xbreadcrumb.NewBuffer()
	interceptor, err := xhttpclient.New(
		xhttpclient.WithSettings(s),
		xhttpclient.WithRecorder(buffer),
		xhttpclient.WithLogger(logger),
	)
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	return &env{
		settings:    s,
		logger:      logger,
		closeLog:    closeLog,
		tracer:      tracer,
		buffer:      buffer,
		interceptor: interceptor,
	}, nil
}

// close 关闭日志文件，不关心关闭错误
func (e *env) close() {
	_ = e.closeLog()
}

// captureTransport 记录最终发出的请求头，位于插桩层之下
type captureTransport struct {
	base http.RoundTripper

	mu   sync.Mutex
	sent []http.Header
}

func (c *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	c.sent = append(c.sent, req.Header.Clone())
	c.mu.Unlock()
	return c.base.RoundTrip(req)
}

// headers 返回每次发出的请求头，按发送顺序
func (c *captureTransport) headers() []http.Header {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]http.Header(nil), c.sent...)
}

// restyLogger 把 resty 的日志接到 xlog
type restyLogger struct {
	ctx    context.Context
	logger xlog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error(l.ctx, "resty: "+fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn(l.ctx, "resty: "+fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug(l.ctx, "resty: "+fmt.Sprintf(format, v...))
}
