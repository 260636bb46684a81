// Package worker runs background jobs on a fixed number of goroutines fed by a bounded queue.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	ErrQueueFull = errors.New("worker queue is full")
	ErrClosed    = errors.New("worker pool is closed")
)

// Job is a unit of background work. ctx is cancelled when Shutdown gives up waiting.
type Job func(ctx context.Context)

// Pool executes submitted jobs with a fixed number of workers.
type Pool struct {
	jobs   chan Job
	g      *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// New starts a pool with the given number of workers and queue capacity.
func New(workers, queueSize int, logger zerolog.Logger) *Pool {
	workers = max(workers, 1)
	queueSize = max(queueSize, 0)

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		jobs:   make(chan Job, queueSize),
		g:      &errgroup.Group{},
		ctx:    ctx,
		cancel: cancel,
		logger: logger.With().Str("component", "worker").Logger(),
	}
	for i := 0; i < workers; i++ {
		p.g.Go(func() error {
			for job := range p.jobs {
				p.run(job)
			}
			return nil
		})
	}
	p.logger.Info().Int("workers", workers).Int("queue_size", queueSize).Msg("worker pool started")
	return p
}

func (p *Pool) run(job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Str("panic", fmt.Sprint(r)).Msg("job panicked")
		}
	}()
	job(p.ctx)
}

// Submit enqueues job without blocking.
func (p *Pool) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending returns the number of queued jobs not yet picked up by a worker.
func (p *Pool) Pending() int {
	return len(p.jobs)
}

// Shutdown stops accepting jobs and waits for queued and running jobs to finish.
// If ctx ends first, running jobs are cancelled and ctx.Err() is returned once the
// workers have exited.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = p.g.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		p.logger.Info().Msg("worker pool drained")
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		p.logger.Warn().Err(ctx.Err()).Msg("worker pool shutdown cut short")
		return ctx.Err()
	}
}
