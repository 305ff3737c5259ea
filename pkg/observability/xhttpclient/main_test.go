package xhttpclient

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/omeyang/xoutbound/pkg/observability/xbreadcrumb"
	"github.com/omeyang/xoutbound/pkg/observability/xlog"
	"github.com/omeyang/xoutbound/pkg/observability/xspan"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

const (
	testDSN    = "https://pub@o1.ingest.example.com/42"
	testIngest = "https://o1.ingest.example.com/api/42/"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

// recordingTransport 记录最后一次发出的请求并返回固定状态码
type recordingTransport struct {
	status int
	err    error
	sent   *http.Request
}

func (rt *recordingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	rt.sent = r
	if rt.err != nil {
		return nil, rt.err
	}
	return &http.Response{
		StatusCode: rt.status,
		Header:     http.Header{},
		Body:       http.NoBody,
		Request:    r,
	}, nil
}

type fixture struct {
	ctx    context.Context
	tx     *xspan.Transaction
	buffer *xbreadcrumb.Buffer
	logger xlog.Logger
}

func newFixture(t *testing.T, txOpts ...xspan.TransactionOption) *fixture {
	t.Helper()
	tr, err := xspan.NewTracer(
		xspan.WithDSN(testDSN),
		xspan.WithRelease("app@1.0.0"),
		xspan.WithEnvironment("production"),
	)
	require.NoError(t, err)
	ctx, tx := tr.StartTransaction(context.Background(), "GET /checkout", txOpts...)

	logger, _, err := xlog.New().SetOutput(io.Discard).Build()
	require.NoError(t, err)

	return &fixture{ctx: ctx, tx: tx, buffer: xbreadcrumb.NewBuffer(), logger: logger}
}

func (f *fixture) interceptor(t *testing.T, opts ...Option) *Interceptor {
	t.Helper()
	base := []Option{WithRecorder(f.buffer), WithLogger(f.logger), WithDSN(testDSN)}
	i, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return i
}

func (f *fixture) request(t *testing.T, ctx context.Context, method, rawURL string) *http.Request {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	require.NoError(t, err)
	return req
}

// onlySpan 返回事务下唯一已结束的子 Span
func (f *fixture) onlySpan(t *testing.T) *xspan.Span {
	t.Helper()
	spans := f.tx.Spans()
	require.Len(t, spans, 1)
	return spans[0]
}
