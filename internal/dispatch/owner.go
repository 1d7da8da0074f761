package dispatch

import (
	"context"
	"sync"
)

// Owner stands for the consumer waiting on a result, such as an open panel.
// Once closed, its context is cancelled and callbacks addressed to it are
// dropped.
type Owner struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

func NewOwner(parent context.Context) *Owner {
	ctx, cancel := context.WithCancel(parent)
	return &Owner{ctx: ctx, cancel: cancel}
}

func (o *Owner) Context() context.Context {
	if o == nil {
		return context.Background()
	}
	return o.ctx
}

func (o *Owner) Close() {
	if o == nil {
		return
	}
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	o.cancel()
}

// Closed reports whether the owner went away. A nil owner never does.
func (o *Owner) Closed() bool {
	if o == nil {
		return false
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}

// Run executes work on the pool and delivers its outcome to done on the
// interactive goroutine, unless owner has been closed by then.
func Run[T any](p *Pool, owner *Owner, work func(ctx context.Context) (T, error), done func(T, error)) error {
	return p.Submit(func(poolCtx context.Context) {
		ctx, cancel := context.WithCancel(owner.Context())
		defer cancel()
		stop := context.AfterFunc(poolCtx, cancel)
		defer stop()

		result, err := work(ctx)
		p.Post(func() {
			if owner.Closed() {
				p.logger.Trace("Dropping result for closed owner")
				return
			}
			done(result, err)
		})
	})
}
