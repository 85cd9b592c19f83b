// Package redis provides a selectz.Watcher for option lists stored in Redis,
// using keyspace notifications, and a selectz.SelectionWriter that stores the
// user's selection next to them.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zoobzio/selectz"
)

// emptyList is emitted when the watched key is deleted or expires.
var emptyList = []byte("[]")

// Watcher watches a Redis key holding a serialized option list.
// Requires Redis to have keyspace notifications enabled:
//
//	CONFIG SET notify-keyspace-events KEA
type Watcher struct {
	client *redis.Client
	key    string
	db     int
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDB sets the database number used in the keyspace channel. Default: 0.
func WithDB(db int) Option {
	return func(w *Watcher) {
		w.db = db
	}
}

// New creates a new Watcher for the given Redis key.
func New(client *redis.Client, key string, opts ...Option) *Watcher {
	w := &Watcher{
		client: client,
		key:    key,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch subscribes to keyspace notifications for the key and returns a
// channel that emits its value whenever it is written. A missing key is
// emitted as an empty list, so deleting the key empties the widget.
func (w *Watcher) Watch(ctx context.Context) (<-chan []byte, error) {
	channel := fmt.Sprintf("__keyspace@%d__:%s", w.db, w.key)
	pubsub := w.client.Subscribe(ctx, channel)

	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to keyspace notifications: %w", err)
	}

	out := make(chan []byte)

	go func() {
		defer close(out)
		defer pubsub.Close()

		val, err := w.get(ctx)
		if err != nil {
			return
		}
		select {
		case out <- val:
		case <-ctx.Done():
			return
		}

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var val []byte
				switch msg.Payload {
				case "set", "setex", "psetex", "setnx", "setrange", "append":
					v, err := w.get(ctx)
					if err != nil {
						continue
					}
					val = v
				case "del", "expired", "evicted":
					val = emptyList
				default:
					continue
				}

				select {
				case out <- val:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// get reads the key, mapping a missing key to an empty list.
func (w *Watcher) get(ctx context.Context) ([]byte, error) {
	val, err := w.client.Get(ctx, w.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return emptyList, nil
	}
	return val, err
}

// SelectionStore writes the selected IDs as a JSON array to a Redis key.
type SelectionStore struct {
	client  *redis.Client
	key     string
	timeout time.Duration
}

// DefaultWriteTimeout bounds each selection write.
const DefaultWriteTimeout = 2 * time.Second

// NewSelectionStore creates a SelectionStore for key.
func NewSelectionStore(client *redis.Client, key string) *SelectionStore {
	return &SelectionStore{client: client, key: key, timeout: DefaultWriteTimeout}
}

// Timeout sets the per-write timeout.
func (s *SelectionStore) Timeout(d time.Duration) *SelectionStore {
	s.timeout = d
	return s
}

// WriteSelection implements selectz.SelectionWriter.
func (s *SelectionStore) WriteSelection(ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode selection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store selection at %s: %w", s.key, err)
	}
	return nil
}

// Selection reads the stored selection. A missing key yields nil.
func (s *SelectionStore) Selection(ctx context.Context) ([]string, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("malformed selection at %s: %w", s.key, err)
	}
	return ids, nil
}

var (
	_ selectz.Watcher         = (*Watcher)(nil)
	_ selectz.SelectionWriter = (*SelectionStore)(nil)
)
