package xspan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithSpan_NilContext(t *testing.T) {
	//nolint:staticcheck // 测试 nil context
	_, err := WithSpan(nil, nil)
	assert.ErrorIs(t, err, ErrNilContext)

	//nolint:staticcheck // 测试 nil context
	_, err = RequireSpan(nil)
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestRequireSpan_Missing(t *testing.T) {
	_, err := RequireSpan(context.Background())
	assert.ErrorIs(t, err, ErrMissingSpan)

	assert.Nil(t, SpanFromContext(context.Background()))
	assert.Nil(t, TransactionFromContext(context.Background()))
	assert.Empty(t, TraceID(context.Background()))
	assert.Empty(t, SpanID(context.Background()))
}

func TestStartSpan(t *testing.T) {
	tr := newTestTracer(t)
	ctx, tx := tr.StartTransaction(context.Background(), "tx")

	cctx, child := StartSpan(ctx, "db.query", WithDescription("SELECT 1"))
	require.NotNil(t, child)

	got, err := RequireSpan(cctx)
	require.NoError(t, err)
	assert.Same(t, child, got)
	assert.Same(t, tx, TransactionFromContext(cctx))
	assert.Equal(t, tx.TraceID(), TraceID(cctx))
	assert.Equal(t, child.SpanID(), SpanID(cctx))
}

func TestStartSpan_NoParent(t *testing.T) {
	ctx := context.Background()
	got, s := StartSpan(ctx, "db.query")
	assert.Nil(t, s)
	assert.Equal(t, ctx, got)
}
