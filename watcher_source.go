package selectz

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// DefaultDebounce is the default debounce duration for watcher changes.
const DefaultDebounce = 100 * time.Millisecond

// WatcherSource is a Source backed by a Watcher. Raw values are decoded with
// a Codec and validated; the latest good OptionSet is served by Read. When a
// value fails to decode, Read reports a SourceEvaluationError until the next
// good value arrives, and subscribers are notified so the failure surfaces.
type WatcherSource struct {
	watcher        Watcher
	debounce       time.Duration
	startupTimeout time.Duration
	syncMode       bool
	clock          clockz.Clock
	codec          Codec
	writer         SelectionWriter
	onStop         func()

	subs    *subscribers
	current atomic.Pointer[OptionSet]
	failure atomic.Pointer[error]

	mu      sync.Mutex
	started bool

	// For sync mode: channel to receive changes
	changes <-chan []byte
}

// NewWatcherSource creates a WatcherSource that delivers notifications on loop.
//
//	source := selectz.NewWatcherSource(loop, selectz.NewFileWatcher("countries.yaml")).
//	    Codec(selectz.YAMLCodec{}).
//	    Debounce(250 * time.Millisecond)
func NewWatcherSource(loop *Loop, watcher Watcher) *WatcherSource {
	return &WatcherSource{
		watcher:  watcher,
		debounce: DefaultDebounce,
		clock:    clockz.RealClock,
		codec:    JSONCodec{},
		subs:     newSubscribers(loop),
	}
}

// -----------------------------------------------------------------------------
// Chainable Instance Configuration
// -----------------------------------------------------------------------------

// Debounce sets the debounce duration for change processing.
// Changes arriving within this duration are coalesced into a single update.
// Default: 100ms. Must be called before Start().
func (s *WatcherSource) Debounce(d time.Duration) *WatcherSource {
	s.debounce = d
	return s
}

// SyncMode enables synchronous processing for testing.
// In sync mode, changes are only processed by Process(), without debouncing
// or goroutines. Must be called before Start().
func (s *WatcherSource) SyncMode() *WatcherSource {
	s.syncMode = true
	return s
}

// Clock sets a custom clock for time operations.
// Use this with clockz.FakeClock for deterministic debounce testing.
// Must be called before Start().
func (s *WatcherSource) Clock(clock clockz.Clock) *WatcherSource {
	s.clock = clock
	return s
}

// Codec sets the codec for decoding option lists.
// Default: JSONCodec. Must be called before Start().
func (s *WatcherSource) Codec(codec Codec) *WatcherSource {
	s.codec = codec
	return s
}

// StartupTimeout sets the maximum duration to wait for the initial value.
// Default: no timeout. Must be called before Start().
func (s *WatcherSource) StartupTimeout(d time.Duration) *WatcherSource {
	s.startupTimeout = d
	return s
}

// Writer enables selection write-back through w.
func (s *WatcherSource) Writer(w SelectionWriter) *WatcherSource {
	s.writer = w
	return s
}

// OnStop sets a callback invoked when the source stops watching.
// Must be called before Start().
func (s *WatcherSource) OnStop(fn func()) *WatcherSource {
	s.onStop = fn
	return s
}

// -----------------------------------------------------------------------------
// Source
// -----------------------------------------------------------------------------

// Read returns the latest decoded option set.
func (s *WatcherSource) Read() (OptionSet, error) {
	if ptr := s.failure.Load(); ptr != nil {
		return nil, &SourceEvaluationError{Err: *ptr}
	}
	ptr := s.current.Load()
	if ptr == nil {
		return OptionSet{}, nil
	}
	return ptr.Clone(), nil
}

// Subscribe registers onChange.
func (s *WatcherSource) Subscribe(onChange func()) Handle {
	return s.subs.add(onChange)
}

// Unsubscribe removes a subscription.
func (s *WatcherSource) Unsubscribe(h Handle) {
	s.subs.remove(h)
}

// WriteSelection forwards to the configured writer, if any.
func (s *WatcherSource) WriteSelection(ids []string) error {
	if s.writer == nil {
		return nil
	}
	return s.writer.WriteSelection(ids)
}

// Start begins watching. It blocks until the first value is processed
// (success or failure), then continues watching asynchronously.
//
// If the initial value fails to decode, Start returns the error but keeps
// watching for a valid update. Start can only be called once.
func (s *WatcherSource) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("watcher source already started")
	}
	s.started = true
	s.mu.Unlock()

	changes, err := s.watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	startupCtx := ctx
	if s.startupTimeout > 0 {
		var cancel context.CancelFunc
		startupCtx, cancel = s.clock.WithTimeout(ctx, s.startupTimeout)
		defer cancel()
	}

	var initialErr error
	select {
	case <-startupCtx.Done():
		if s.startupTimeout > 0 && startupCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("startup timeout: watcher did not emit initial value within %v", s.startupTimeout)
		}
		return startupCtx.Err()
	case raw, ok := <-changes:
		if !ok {
			return fmt.Errorf("watcher closed before emitting initial value")
		}
		capitan.Emit(ctx, WatcherChangeReceived)
		initialErr = s.process(ctx, raw)
	}

	if s.syncMode {
		s.changes = changes
		return initialErr
	}

	go s.watch(ctx, changes)

	return initialErr
}

// Process reads and processes the next value from the watcher.
// This is only available in sync mode and is used for deterministic testing.
// Returns false if no value is available or the channel is closed.
func (s *WatcherSource) Process(ctx context.Context) bool {
	if !s.syncMode {
		return false
	}

	select {
	case raw, ok := <-s.changes:
		if !ok {
			return false
		}
		capitan.Emit(ctx, WatcherChangeReceived)
		_ = s.process(ctx, raw) //nolint:errcheck // Surfaced through Read
		return true
	default:
		return false
	}
}

// process decodes one raw value and notifies subscribers.
func (s *WatcherSource) process(ctx context.Context, raw []byte) error {
	set, err := decodeOptions(s.codec, raw)
	if err != nil {
		e := err
		s.failure.Store(&e)
		capitan.Emit(ctx, WatcherDecodeFailed,
			KeyError.Field(err.Error()),
		)
		s.subs.notify()
		return fmt.Errorf("decode failed: %w", err)
	}

	s.current.Store(&set)
	s.failure.Store(nil)
	s.subs.notify()
	return nil
}

// watch processes changes from the watcher channel with debouncing.
func (s *WatcherSource) watch(ctx context.Context, changes <-chan []byte) {
	defer func() {
		capitan.Emit(ctx, WatcherStopped,
			KeyDebounce.Field(s.debounce),
		)
		if s.onStop != nil {
			s.onStop()
		}
	}()

	var (
		timer      clockz.Timer
		pending    []byte
		hasPending bool
	)

	for {
		var timerC <-chan time.Time
		if timer != nil {
			timerC = timer.C()
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case raw, ok := <-changes:
			if !ok {
				if hasPending {
					_ = s.process(ctx, pending) //nolint:errcheck // Surfaced through Read
				}
				return
			}

			capitan.Emit(ctx, WatcherChangeReceived)
			pending = raw
			hasPending = true

			if timer == nil {
				timer = s.clock.NewTimer(s.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C():
					default:
					}
				}
				timer.Reset(s.debounce)
			}

		case <-timerC:
			if hasPending {
				_ = s.process(ctx, pending) //nolint:errcheck // Surfaced through Read
				hasPending = false
			}
		}
	}
}

var (
	_ Source          = (*WatcherSource)(nil)
	_ SelectionWriter = (*WatcherSource)(nil)
)
