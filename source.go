package selectz

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Handle identifies a subscription or listener registration.
type Handle uint64

// Source wraps a reactive computation that yields an OptionSet.
type Source interface {
	// Read returns the current option set. It must not block and must not
	// have side effects on the caller. A failing computation is reported as
	// a *SourceEvaluationError.
	Read() (OptionSet, error)

	// Subscribe registers onChange. It fires at most once per underlying
	// mutation, always on a later Loop turn than the mutation itself.
	Subscribe(onChange func()) Handle

	// Unsubscribe removes a subscription. It is idempotent, and once it
	// returns the callback never fires again.
	Unsubscribe(h Handle)
}

// SelectionWriter is implemented by sources that accept selection write-back.
type SelectionWriter interface {
	WriteSelection(ids []string) error
}

// subscribers is the subscription registry shared by the Source
// implementations. Notifications are coalesced per subscriber: a subscriber
// with a delivery already queued on the loop is not queued again.
type subscribers struct {
	loop *Loop
	next atomic.Uint64

	mu   sync.Mutex
	subs map[Handle]*subscription
}

type subscription struct {
	fn      func()
	active  atomic.Bool
	pending atomic.Bool
}

func newSubscribers(loop *Loop) *subscribers {
	return &subscribers{loop: loop, subs: make(map[Handle]*subscription)}
}

func (s *subscribers) add(fn func()) Handle {
	h := Handle(s.next.Add(1))
	sub := &subscription{fn: fn}
	sub.active.Store(true)
	s.mu.Lock()
	s.subs[h] = sub
	s.mu.Unlock()
	return h
}

func (s *subscribers) remove(h Handle) {
	s.mu.Lock()
	sub, ok := s.subs[h]
	delete(s.subs, h)
	s.mu.Unlock()
	if ok {
		sub.active.Store(false)
	}
}

func (s *subscribers) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// notify posts one delivery per subscriber onto the loop.
func (s *subscribers) notify() {
	s.mu.Lock()
	subs := make([]*subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		if !sub.pending.CompareAndSwap(false, true) {
			continue
		}
		sub := sub
		s.loop.Post(func() {
			sub.pending.Store(false)
			if sub.active.Load() {
				sub.fn()
			}
		})
	}
}

// FuncSource adapts a plain computation into a Source. Call Invalidate after
// mutating whatever the computation reads.
type FuncSource struct {
	fn     func() (OptionSet, error)
	writer func(ids []string) error
	subs   *subscribers
}

// NewFuncSource creates a FuncSource that delivers notifications on loop.
func NewFuncSource(loop *Loop, fn func() (OptionSet, error)) *FuncSource {
	return &FuncSource{fn: fn, subs: newSubscribers(loop)}
}

// WithWriter enables selection write-back through fn.
func (s *FuncSource) WithWriter(fn func(ids []string) error) *FuncSource {
	s.writer = fn
	return s
}

// Read evaluates the computation and validates its result.
func (s *FuncSource) Read() (set OptionSet, err error) {
	defer func() {
		if r := recover(); r != nil {
			set = nil
			err = &SourceEvaluationError{Err: fmt.Errorf("computation panicked: %v", r)}
		}
	}()

	set, err = s.fn()
	if err != nil {
		return nil, evaluationError(err)
	}
	if err := set.Validate(); err != nil {
		return nil, &SourceEvaluationError{Err: err}
	}
	return set, nil
}

// Subscribe registers onChange.
func (s *FuncSource) Subscribe(onChange func()) Handle {
	return s.subs.add(onChange)
}

// Unsubscribe removes a subscription.
func (s *FuncSource) Unsubscribe(h Handle) {
	s.subs.remove(h)
}

// Subscribers returns the number of active subscriptions.
func (s *FuncSource) Subscribers() int {
	return s.subs.count()
}

// Invalidate records a mutation of the computation's inputs and schedules
// change notifications.
func (s *FuncSource) Invalidate() {
	s.subs.notify()
}

// WriteSelection forwards a selection to the configured writer. Without a
// writer it is a no-op.
func (s *FuncSource) WriteSelection(ids []string) error {
	if s.writer == nil {
		return nil
	}
	return s.writer(ids)
}

var (
	_ Source          = (*FuncSource)(nil)
	_ SelectionWriter = (*FuncSource)(nil)
)
