package main

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/omeyang/xoutbound/pkg/observability/xbreadcrumb"
	"github.com/omeyang/xoutbound/pkg/observability/xspan"
	"github.com/omeyang/xoutbound/pkg/observability/xtrace"
)

// report 一次请求的插桩结果
type report struct {
	Status       int                      `json:"status,omitempty"`
	Error        string                   `json:"error,omitempty"`
	TraceID      string                   `json:"trace_id"`
	Transaction  string                   `json:"transaction"`
	Propagations int64                    `json:"propagations"`
	SentHeaders  []map[string][]string    `json:"sent_headers"`
	Spans        []xspan.Snapshot         `json:"spans"`
	Breadcrumbs  []xbreadcrumb.Breadcrumb `json:"breadcrumbs"`
}

// propagationHeaders 插桩可能写入的请求头
var propagationHeaders = []string{
	xtrace.HeaderSentryTrace,
	xtrace.HeaderBaggage,
	xtrace.HeaderTraceparent,
}

func newReport(tx *xspan.Transaction, sent []http.Header, buffer *xbreadcrumb.Buffer) report {
	r := report{
		TraceID:      tx.TraceID(),
		Transaction:  tx.Name(),
		Propagations: tx.Propagations(),
		SentHeaders:  make([]map[string][]string, 0, len(sent)),
		Spans:        make([]xspan.Snapshot, 0),
		Breadcrumbs:  buffer.Breadcrumbs(),
	}
	for _, h := range sent {
		picked := make(map[string][]string)
		for _, name := range propagationHeaders {
			if vals := h.Values(name); len(vals) > 0 {
				picked[name] = vals
			}
		}
		r.SentHeaders = append(r.SentHeaders, picked)
	}
	for _, s := range tx.Spans() {
		r.Spans = append(r.Spans, s.Snapshot())
	}
	return r
}

func (r report) write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
