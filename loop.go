package selectz

import (
	"context"
	"sync"
)

// Loop is a single-threaded cooperative scheduler. Every source notification
// and controller callback is delivered as a task on a Loop, one task per turn,
// so no two callbacks ever run concurrently.
//
// Post may be called from any goroutine. Tasks run either on the goroutine
// calling Run, or on the goroutine calling Drain. Do not mix the two.
type Loop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// NewLoop creates an empty Loop.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post queues fn to run on a later turn. A task posted while another task is
// running never runs re-entrantly inside it.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// next pops the oldest task.
func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

// Step runs a single queued task. It reports false if the queue was empty.
func (l *Loop) Step() bool {
	fn, ok := l.next()
	if !ok {
		return false
	}
	fn()
	return true
}

// Drain runs queued tasks on the calling goroutine until the queue is empty,
// including tasks posted by the tasks it runs. It returns the number of turns
// executed. Use it in tests for deterministic delivery.
func (l *Loop) Drain() int {
	n := 0
	for l.Step() {
		n++
	}
	return n
}

// Run executes tasks until ctx is canceled.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if l.Step() {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}
