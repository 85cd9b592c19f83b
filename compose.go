package selectz

import (
	"errors"
	"fmt"
	"sync"
)

// Reducer merges the option sets of several sources into one, given in the
// order the sources were composed.
type Reducer func(sets []OptionSet) (OptionSet, error)

// Concat is the default Reducer: it appends the sets in order. An ID present
// in more than one set makes the result malformed.
func Concat(sets []OptionSet) (OptionSet, error) {
	n := 0
	for _, set := range sets {
		n += len(set)
	}
	out := make(OptionSet, 0, n)
	for _, set := range sets {
		out = append(out, set...)
	}
	return out, nil
}

// CompositeSource presents several sources as one. A change in any child
// produces one notification to the composite's subscribers.
type CompositeSource struct {
	sources []Source
	reducer Reducer
	subs    *subscribers

	mu       sync.Mutex
	children []Handle
}

// Compose creates a CompositeSource over sources. A nil reducer means Concat.
//
//	source := selectz.Compose(loop, nil, pinned, recent, everything)
func Compose(loop *Loop, reducer Reducer, sources ...Source) *CompositeSource {
	if reducer == nil {
		reducer = Concat
	}
	return &CompositeSource{
		sources: sources,
		reducer: reducer,
		subs:    newSubscribers(loop),
	}
}

// Read reads every child and reduces the results. The first failing child
// aborts the read.
func (c *CompositeSource) Read() (OptionSet, error) {
	sets := make([]OptionSet, len(c.sources))
	for i, src := range c.sources {
		set, err := src.Read()
		if err != nil {
			return nil, evaluationError(fmt.Errorf("source %d: %w", i, err))
		}
		sets[i] = set
	}

	merged, err := c.reducer(sets)
	if err != nil {
		return nil, evaluationError(fmt.Errorf("reduce: %w", err))
	}
	if err := merged.Validate(); err != nil {
		return nil, &SourceEvaluationError{Err: err}
	}
	return merged, nil
}

// Subscribe registers onChange. Children are subscribed while the composite
// has at least one subscriber.
func (c *CompositeSource) Subscribe(onChange func()) Handle {
	h := c.subs.add(onChange)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.children == nil {
		c.children = make([]Handle, len(c.sources))
		for i, src := range c.sources {
			c.children[i] = src.Subscribe(c.subs.notify)
		}
	}
	return h
}

// Unsubscribe removes a subscription.
func (c *CompositeSource) Unsubscribe(h Handle) {
	c.subs.remove(h)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.children != nil && c.subs.count() == 0 {
		for i, src := range c.sources {
			src.Unsubscribe(c.children[i])
		}
		c.children = nil
	}
}

// WriteSelection forwards to every child that accepts write-back, each
// receiving only the IDs it currently provides.
func (c *CompositeSource) WriteSelection(ids []string) error {
	var errs []error
	for i, src := range c.sources {
		w, ok := src.(SelectionWriter)
		if !ok {
			continue
		}
		set, err := src.Read()
		if err != nil {
			errs = append(errs, fmt.Errorf("source %d: %w", i, err))
			continue
		}
		if err := w.WriteSelection(normalizeSelection(set, ids)); err != nil {
			errs = append(errs, fmt.Errorf("source %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

var (
	_ Source          = (*CompositeSource)(nil)
	_ SelectionWriter = (*CompositeSource)(nil)
)
