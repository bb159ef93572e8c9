// Package eventloop provides the single-goroutine callback queue that menu
// subscriptions deliver on.
package eventloop

import (
	"context"
	"sync"
)

// Dispatcher schedules fn for execution. Post reports false when fn was dropped
// because the dispatcher is closed.
type Dispatcher interface {
	Post(fn func()) bool
}

// Immediate runs callbacks on the posting goroutine. Useful in tests and for
// callers that already serialize delivery.
var Immediate Dispatcher = immediate{}

type immediate struct{}

func (immediate) Post(fn func()) bool {
	if fn != nil {
		fn()
	}
	return true
}

// Loop runs posted callbacks one at a time, in order, on the goroutine executing Run.
// Post never blocks; the queue is unbounded.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	done   chan struct{}
	closed bool
}

// New constructs an idle loop. Call Run (usually in its own goroutine) to process callbacks.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Start creates a loop and runs it in a new goroutine until ctx is done or Close is called.
func Start(ctx context.Context) *Loop {
	l := New()
	go func() { _ = l.Run(ctx) }()
	return l
}

// Post enqueues fn.
func (l *Loop) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Run drains the queue until ctx is done or the loop is closed. Callbacks queued
// before Close are still executed; callbacks queued after are rejected by Post.
func (l *Loop) Run(ctx context.Context) error {
	for {
		batch, closed := l.take()
		for _, fn := range batch {
			fn()
		}
		if closed && len(batch) == 0 {
			return nil
		}
		if len(batch) > 0 {
			continue
		}
		select {
		case <-ctx.Done():
			l.Close()
			return ctx.Err()
		case <-l.done:
		case <-l.wake:
		}
	}
}

// Close stops accepting callbacks. Run returns once the pending queue is drained.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.done)
}

// Pending reports the number of queued callbacks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Loop) take() ([]func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	batch := l.queue
	l.queue = nil
	return batch, l.closed
}
