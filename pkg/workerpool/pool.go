// Package workerpool bounds the number of goroutines performing remote
// operations so a burst of local edits cannot spawn an unbounded push fanout.
package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	// ErrPoolFull is returned when the task queue is full.
	ErrPoolFull = errors.New("worker pool queue is full")
	// ErrPoolClosed is returned when the pool has been shut down.
	ErrPoolClosed = errors.New("worker pool is closed")
)

// Config configures a Pool.
type Config struct {
	// MaxWorkers is the number of concurrent workers, default 8.
	MaxWorkers int
	// QueueSize is the pending task queue length, default 256.
	QueueSize int
}

// DefaultConfig returns the default pool configuration.
func DefaultConfig() Config {
	return Config{
		MaxWorkers: 8,
		QueueSize:  256,
	}
}

type task struct {
	ctx context.Context
	fn  func(context.Context)
}

// Pool runs submitted tasks on a fixed set of workers.
type Pool struct {
	config Config
	logger *zap.Logger

	taskCh   chan task
	workerWg sync.WaitGroup

	activeCount atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// New creates a Pool. If cfg is nil the default configuration is used; if
// logger is nil a nop logger is used.
func New(cfg *Config, logger *zap.Logger) *Pool {
	if cfg == nil {
		defaultCfg := DefaultConfig()
		cfg = &defaultCfg
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 8
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pool{
		config: *cfg,
		logger: logger,
		taskCh: make(chan task, cfg.QueueSize),
	}

	for i := 0; i < cfg.MaxWorkers; i++ {
		p.workerWg.Add(1)
		go p.worker()
	}

	p.logger.Info("worker pool started",
		zap.Int("maxWorkers", cfg.MaxWorkers),
		zap.Int("queueSize", cfg.QueueSize))

	return p
}

func (p *Pool) worker() {
	defer p.workerWg.Done()

	for t := range p.taskCh {
		p.activeCount.Add(1)
		func() {
			defer func() {
				if r := recover(); r != nil {
					p.logger.Error("worker task panic", zap.Any("panic", r), zap.Stack("stack"))
				}
			}()
			select {
			case <-t.ctx.Done():
			default:
				t.fn(t.ctx)
			}
		}()
		p.activeCount.Add(-1)
	}
}

// SubmitAsync queues fn for execution without waiting for it to run.
func (p *Pool) SubmitAsync(ctx context.Context, fn func(context.Context)) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.taskCh <- task{ctx: ctx, fn: fn}:
		return nil
	default:
		return ErrPoolFull
	}
}

// Active returns the number of tasks currently executing.
func (p *Pool) Active() int64 {
	return p.activeCount.Load()
}

// Pending returns the number of queued tasks not yet picked up.
func (p *Pool) Pending() int {
	return len(p.taskCh)
}

// Close stops accepting tasks and waits for in-flight tasks to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.taskCh)
	p.mu.Unlock()

	p.workerWg.Wait()
	p.logger.Info("worker pool stopped")
}
