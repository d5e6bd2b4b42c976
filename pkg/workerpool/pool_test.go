package workerpool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSubmitAsyncRunsTasks(t *testing.T) {
	p := New(&Config{MaxWorkers: 4, QueueSize: 16}, zap.NewNop())
	defer p.Close()

	var count atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		err := p.SubmitAsync(context.Background(), func(ctx context.Context) {
			defer wg.Done()
			count.Add(1)
		})
		require.NoError(t, err)
	}
	wg.Wait()
	assert.Equal(t, int64(10), count.Load())
}

func TestSubmitAsyncFullQueue(t *testing.T) {
	p := New(&Config{MaxWorkers: 1, QueueSize: 1}, zap.NewNop())
	defer p.Close()

	block := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, p.SubmitAsync(context.Background(), func(ctx context.Context) {
		close(started)
		<-block
	}))
	<-started

	// Fill the queue, then the next submit must be rejected, not block.
	require.NoError(t, p.SubmitAsync(context.Background(), func(ctx context.Context) {}))
	err := p.SubmitAsync(context.Background(), func(ctx context.Context) {})
	assert.ErrorIs(t, err, ErrPoolFull)

	close(block)
}

func TestSubmitAfterClose(t *testing.T) {
	p := New(nil, zap.NewNop())
	p.Close()

	err := p.SubmitAsync(context.Background(), func(ctx context.Context) {})
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestCancelledTaskIsSkipped(t *testing.T) {
	p := New(&Config{MaxWorkers: 1, QueueSize: 4}, zap.NewNop())
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Bool
	require.NoError(t, p.SubmitAsync(ctx, func(ctx context.Context) {
		ran.Store(true)
	}))

	assert.Never(t, func() bool { return ran.Load() }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestCloseWaitsForInFlight(t *testing.T) {
	p := New(&Config{MaxWorkers: 2, QueueSize: 8}, zap.NewNop())

	var done atomic.Bool
	require.NoError(t, p.SubmitAsync(context.Background(), func(ctx context.Context) {
		time.Sleep(50 * time.Millisecond)
		done.Store(true)
	}))

	p.Close()
	assert.True(t, done.Load())
}
