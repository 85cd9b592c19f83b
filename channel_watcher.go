package selectz

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// ChannelWatcher is a Watcher fed in-process. Push serialized option lists
// (or OptionSets, encoded as JSON) and they are emitted to the watching
// WatcherSource. Useful for testing and for hosts that already hold the data.
type ChannelWatcher struct {
	ch   chan []byte
	sync bool

	mu     sync.Mutex
	closed bool
}

// NewChannelWatcher creates a ChannelWatcher that forwards pushed values
// through an internal goroutine. buffer sets how many pushes may queue.
func NewChannelWatcher(buffer int) *ChannelWatcher {
	return &ChannelWatcher{ch: make(chan []byte, buffer)}
}

// NewSyncChannelWatcher creates a ChannelWatcher whose Watch returns the
// underlying channel directly without an intermediate goroutine.
// Use with WatcherSource.SyncMode() for deterministic testing.
func NewSyncChannelWatcher(buffer int) *ChannelWatcher {
	return &ChannelWatcher{ch: make(chan []byte, buffer), sync: true}
}

// PushRaw queues raw bytes. It blocks when the buffer is full.
func (w *ChannelWatcher) PushRaw(raw []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("channel watcher closed")
	}
	w.ch <- raw
	return nil
}

// Push encodes set as JSON and queues it.
func (w *ChannelWatcher) Push(set OptionSet) error {
	raw, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to encode option set: %w", err)
	}
	return w.PushRaw(raw)
}

// Close closes the channel. Watchers see the end of the stream.
func (w *ChannelWatcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		close(w.ch)
	}
}

// Watch returns a channel that emits pushed values.
func (w *ChannelWatcher) Watch(ctx context.Context) (<-chan []byte, error) {
	if w.sync {
		return w.ch, nil
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-w.ch:
				if !ok {
					return
				}
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

var _ Watcher = (*ChannelWatcher)(nil)
