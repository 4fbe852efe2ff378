package logger

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	l := Logger()
	assert.NotNil(t, l)
}

func TestWithRequestID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ctx = WithRequestID(ctx, "test-request-123")

	val := ctx.Value(requestIDKey)
	assert.Equal(t, "test-request-123", val)
}

func TestWithPassID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ctx = WithPassID(ctx, "pass-456")

	val := ctx.Value(passIDKey)
	assert.Equal(t, "pass-456", val)
}

func TestWithProductID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ctx = WithProductID(ctx, int64(42))

	val := ctx.Value(productIDKey)
	assert.Equal(t, int64(42), val)
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		setupCtx func() context.Context
	}{
		{
			name:     "empty context",
			setupCtx: context.Background,
		},
		{
			name: "with request ID",
			setupCtx: func() context.Context {
				return WithRequestID(context.Background(), "req-123")
			},
		},
		{
			name: "with pass ID",
			setupCtx: func() context.Context {
				return WithPassID(context.Background(), "pass-456")
			},
		},
		{
			name: "with pass and product IDs",
			setupCtx: func() context.Context {
				ctx := WithPassID(context.Background(), "pass-456")
				return WithProductID(ctx, 42)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := tt.setupCtx()
			l := FromContext(ctx)

			assert.NotNil(t, l)
		})
	}
}

func TestConvenienceFunctions(t *testing.T) {
	// These just verify the functions don't panic
	// Actual logging output goes to stdout

	// Redirect output during test
	oldStdout := os.Stdout
	defer func() { os.Stdout = oldStdout }()

	r, w, _ := os.Pipe()
	os.Stdout = w

	Info("test info", "key", "value")
	Error("test error", "key", "value")
	Debug("test debug", "key", "value")
	Warn("test warn", "key", "value")

	_ = w.Close()
	_ = r.Close()

	// If we got here without panic, test passes
	assert.True(t, true)
}
