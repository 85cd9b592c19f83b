package selectz

import "context"

// Watcher observes an external store holding a serialized option list and
// emits raw bytes on a channel. Implementations must emit the current value
// immediately upon Watch() being called so the first reconciliation has
// something to show.
type Watcher interface {
	// Watch begins observing the store and returns a channel that emits
	// raw bytes when the option list changes. The channel is closed when
	// the context is canceled or an unrecoverable error occurs.
	Watch(ctx context.Context) (<-chan []byte, error)
}
