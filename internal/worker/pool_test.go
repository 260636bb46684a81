package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPool_RunsAllJobs(t *testing.T) {
	p := New(3, 10, zerolog.Nop())

	var n atomic.Int32
	for i := 0; i < 10; i++ {
		require.NoError(t, p.Submit(func(ctx context.Context) { n.Add(1) }))
	}

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Equal(t, int32(10), n.Load())
}

func TestPool_QueueFull(t *testing.T) {
	p := New(1, 1, zerolog.Nop())

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, p.Submit(func(ctx context.Context) {
		close(started)
		<-release
	}))
	<-started

	// worker busy, one slot in the queue
	require.NoError(t, p.Submit(func(ctx context.Context) {}))
	assert.Equal(t, 1, p.Pending())
	assert.ErrorIs(t, p.Submit(func(ctx context.Context) {}), ErrQueueFull)

	close(release)
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	p := New(1, 1, zerolog.Nop())
	require.NoError(t, p.Shutdown(context.Background()))

	assert.ErrorIs(t, p.Submit(func(ctx context.Context) {}), ErrClosed)
	// a second shutdown is harmless
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestPool_ShutdownTimeoutCancelsJobs(t *testing.T) {
	p := New(1, 1, zerolog.Nop())

	started := make(chan struct{})
	var cancelled atomic.Bool
	require.NoError(t, p.Submit(func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
	}))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := p.Shutdown(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, cancelled.Load())
}

func TestPool_RecoversFromPanic(t *testing.T) {
	p := New(1, 2, zerolog.Nop())

	var ran atomic.Bool
	require.NoError(t, p.Submit(func(ctx context.Context) { panic("boom") }))
	require.NoError(t, p.Submit(func(ctx context.Context) { ran.Store(true) }))

	require.NoError(t, p.Shutdown(context.Background()))
	assert.True(t, ran.Load())
}
