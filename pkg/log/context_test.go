package log_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"

	"github.com/steemkit/steembridge/pkg/log"
)

func TestContextLogger(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	// Nothing stored yet.
	_, isNoop := log.FromContext(ctx).(log.NoopLogger)
	assert.True(t, isNoop)

	// A nil logger is stored as noop.
	_, isNoop = log.FromContext(log.SetContextLogger(ctx, nil)).(log.NoopLogger)
	assert.True(t, isNoop)

	zl := log.NewZapLogger(log.Config{})
	ctx = log.SetContextLogger(ctx, zl)
	_, isZap := log.FromContext(ctx).(*log.ZapLogger)
	assert.True(t, isZap)

	// A valid span context makes the stored logger a span logger.
	ctx = trace.ContextWithSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: [16]byte{1},
		SpanID:  [8]byte{1},
	}))
	ctx = log.SetContextLogger(ctx, zl)
	_, isSpan := log.FromContext(ctx).(*log.SpanLogger)
	assert.True(t, isSpan)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		in      string
		want    log.Level
		wantErr bool
	}{
		{in: "debug", want: log.LevelDebug},
		{in: " INFO ", want: log.LevelInfo},
		{in: "warning", want: log.LevelWarn},
		{in: "error", want: log.LevelError},
		{in: "trace", wantErr: true},
	}
	for _, tc := range tcs {
		lvl, err := log.ParseLevel(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		assert.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, lvl)
	}
}
