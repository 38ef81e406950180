package typstcompiler

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/resume-forge/internal/core/entity"
)

func TestOptionDefaults(t *testing.T) {
	c := New(Options{}, slog.Default())
	assert.Equal(t, "typst", c.opts.BinPath)
	assert.Equal(t, 30*time.Second, c.opts.Timeout)
	assert.Equal(t, 4, c.opts.MaxConcurrent)
	assert.Equal(t, 10*time.Second, c.opts.AcquireTimeout)
	assert.False(t, c.Ready())
}

func TestCompileSlotExhaustion(t *testing.T) {
	c := New(Options{MaxConcurrent: 1, AcquireTimeout: 10 * time.Millisecond}, slog.Default())
	c.sem <- struct{}{} // hold the only slot

	_, err := c.Compile(context.Background(), "hello")
	var svcErr *entity.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, entity.CodeResourceExhausted, svcErr.Code)
}

func TestCompileCancelledWhileWaiting(t *testing.T) {
	c := New(Options{MaxConcurrent: 1, AcquireTimeout: time.Second}, slog.Default())
	c.sem <- struct{}{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Compile(ctx, "hello")
	var svcErr *entity.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, entity.CodeRequestTimeout, svcErr.Code)
}

func TestWarmupMissingBinary(t *testing.T) {
	c := New(Options{BinPath: "definitely-not-a-typst-binary"}, slog.Default())

	err := c.Warmup(context.Background())
	var svcErr *entity.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, entity.CodeDependencyMissing, svcErr.Code)
	assert.False(t, c.Ready())

	// Warmup is once-only; a second call returns the recorded error.
	assert.Same(t, err, c.Warmup(context.Background()))
}
