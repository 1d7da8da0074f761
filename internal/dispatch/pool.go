// Package dispatch runs blocking work off the interactive goroutine and hands
// the results back to it as callbacks.
package dispatch

import (
	"context"
	"sync"

	"github.com/kpauljoseph/sonaveeb-anki/pkg/logger"
)

// Job is a unit of work submitted to the Pool.
type Job func(ctx context.Context)

// Pool runs jobs on a fixed number of goroutines. Callbacks posted by jobs
// are queued until the interactive goroutine runs them with Pump or Drain.
type Pool struct {
	jobs    chan Job
	wg      sync.WaitGroup
	workers int
	logger  *logger.Logger

	closeMu sync.Mutex
	closed  bool

	cbMu      sync.Mutex
	callbacks []func()
	notify    chan struct{}
}

// NewPool creates a pool with the given number of workers and job queue
// capacity. Non-positive values fall back to one worker and twice the
// worker count.
func NewPool(workers, queue int, log *logger.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queue <= 0 {
		queue = workers * 2
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Pool{
		jobs:    make(chan Job, queue),
		workers: workers,
		logger:  log.Named("dispatch"),
		notify:  make(chan struct{}, 1),
	}
}

// Start launches the workers. They stop when ctx is done or Close is called.
func (p *Pool) Start(ctx context.Context) {
	p.logger.Debug("Starting %d workers", p.workers)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-p.jobs:
					if !ok {
						return
					}
					job(ctx)
				}
			}
		}()
	}
}

// Submit enqueues a job. It blocks while the queue is full and returns
// ErrPoolClosed after Close.
func (p *Pool) Submit(job Job) error {
	p.closeMu.Lock()
	defer p.closeMu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.jobs <- job
	return nil
}

// Close stops accepting jobs and waits for the workers to finish. Callbacks
// posted by finished jobs stay queued for Drain.
func (p *Pool) Close() {
	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.closeMu.Unlock()
	p.wg.Wait()
}

// Post queues fn to run on the interactive goroutine.
func (p *Pool) Post(fn func()) {
	p.cbMu.Lock()
	p.callbacks = append(p.callbacks, fn)
	p.cbMu.Unlock()

	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// Ready is signalled whenever callbacks are waiting.
func (p *Pool) Ready() <-chan struct{} {
	return p.notify
}

// Drain runs every callback queued so far on the calling goroutine and
// returns how many ran.
func (p *Pool) Drain() int {
	p.cbMu.Lock()
	pending := p.callbacks
	p.callbacks = nil
	p.cbMu.Unlock()

	for _, fn := range pending {
		fn()
	}
	return len(pending)
}

// Pump runs callbacks as they arrive until ctx is done.
func (p *Pool) Pump(ctx context.Context) error {
	for {
		p.Drain()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.notify:
		}
	}
}

// ErrPoolClosed is returned if a Submit is attempted after Close.
var ErrPoolClosed = &PoolError{"worker pool closed"}

type PoolError struct{ msg string }

func (e *PoolError) Error() string { return e.msg }
