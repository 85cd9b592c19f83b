// Package testing provides test utilities and helpers for selectz controllers.
package testing

import (
	"context"
	"testing"
	"time"

	"github.com/zoobzio/selectz"
)

// Countries is a small option set used across tests.
func Countries() selectz.OptionSet {
	return selectz.OptionSet{
		{ID: "de", Label: "Germany"},
		{ID: "fr", Label: "France"},
		{ID: "it", Label: "Italy"},
	}
}

// WaitFor polls a condition until it returns true or timeout is reached.
// Returns true if the condition was met, false if timeout occurred.
func WaitFor(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

// WaitForState waits until the controller reaches the expected state or timeout occurs.
func WaitForState(t *testing.T, c *selectz.Controller, expected selectz.State, timeout time.Duration) bool {
	t.Helper()
	return WaitFor(t, timeout, func() bool {
		return c.State() == expected
	})
}

// RequireState fails the test immediately if the controller is not in the expected state.
func RequireState(t *testing.T, c *selectz.Controller, expected selectz.State) {
	t.Helper()
	if got := c.State(); got != expected {
		t.Fatalf("expected state %s, got %s", expected, got)
	}
}

// RequireConverged fails the test unless the widget shows exactly want and
// selects only options it shows.
func RequireConverged(t *testing.T, w selectz.Widget, want selectz.OptionSet) {
	t.Helper()
	opts, err := w.Options()
	if err != nil {
		t.Fatalf("Options() error = %v", err)
	}
	if !selectz.OptionSet(opts).Equal(want) {
		t.Fatalf("expected options %v, got %v", want.IDs(), selectz.OptionSet(opts).IDs())
	}
	sel, err := w.Selection()
	if err != nil {
		t.Fatalf("Selection() error = %v", err)
	}
	idx := want.Index()
	for _, id := range sel {
		if _, ok := idx[id]; !ok {
			t.Fatalf("selected id %q is not an option", id)
		}
	}
}

// NewTestSource creates a started sync-mode WatcherSource fed by the
// returned ChannelWatcher, seeded with initial.
// Call Process on the source after each push, then Drain the loop.
func NewTestSource(t *testing.T, loop *selectz.Loop, initial selectz.OptionSet) (*selectz.WatcherSource, *selectz.ChannelWatcher) {
	t.Helper()
	w := selectz.NewSyncChannelWatcher(10)
	if err := w.Push(initial); err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	src := selectz.NewWatcherSource(loop, w).SyncMode()
	if err := src.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return src, w
}
