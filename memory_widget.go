package selectz

import (
	"fmt"
	"sort"
	"sync"
)

// Widget operation names, used in WidgetCall records and widget errors.
const (
	OpOptions      = "options"
	OpAddOption    = "add"
	OpRemoveOption = "remove"
	OpUpdateOption = "update"
	OpSetSelection = "select"
	OpSelection    = "selection"
	OpDestroy      = "destroy"
)

// WidgetCall records one mutating call made against a MemoryWidget.
type WidgetCall struct {
	Op    string
	ID    string
	Index int
	IDs   []string
}

// MemoryWidget is an in-memory Widget. It behaves like a typical dropdown
// library: SetSelection and RemoveOption of a selected option fire selection
// change events synchronously. Every mutating call is recorded, which makes
// it the widget of choice for tests and headless hosts.
type MemoryWidget struct {
	mu        sync.Mutex
	options   []Option
	selection []string
	listeners map[Handle]func([]string)
	nextID    Handle
	destroyed bool
	calls     []WidgetCall
	failures  map[string]error
}

// NewMemoryWidget creates an empty MemoryWidget.
func NewMemoryWidget() *MemoryWidget {
	return &MemoryWidget{
		listeners: make(map[Handle]func([]string)),
		failures:  make(map[string]error),
	}
}

func (w *MemoryWidget) unavailable(op string) error {
	return fmt.Errorf("%s: %w", op, ErrWidgetUnavailable)
}

// check must be called with mu held.
func (w *MemoryWidget) check(op string) error {
	if w.destroyed {
		return w.unavailable(op)
	}
	if err, ok := w.failures[op]; ok {
		delete(w.failures, op)
		return err
	}
	return nil
}

// Options returns a copy of the displayed options.
func (w *MemoryWidget) Options() ([]Option, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.check(OpOptions); err != nil {
		return nil, err
	}
	return append([]Option(nil), w.options...), nil
}

// AddOption inserts opt at index.
func (w *MemoryWidget) AddOption(opt Option, index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.check(OpAddOption); err != nil {
		return err
	}
	w.calls = append(w.calls, WidgetCall{Op: OpAddOption, ID: opt.ID, Index: index})
	if w.indexOf(opt.ID) >= 0 {
		return fmt.Errorf("option %q already present", opt.ID)
	}
	if index < 0 || index > len(w.options) {
		index = len(w.options)
	}
	w.options = append(w.options, Option{})
	copy(w.options[index+1:], w.options[index:])
	w.options[index] = opt
	return nil
}

// RemoveOption removes the option and deselects it if needed.
func (w *MemoryWidget) RemoveOption(id string) error {
	w.mu.Lock()
	if err := w.check(OpRemoveOption); err != nil {
		w.mu.Unlock()
		return err
	}
	w.calls = append(w.calls, WidgetCall{Op: OpRemoveOption, ID: id})
	i := w.indexOf(id)
	if i < 0 {
		w.mu.Unlock()
		return fmt.Errorf("option %q not found", id)
	}
	w.options = append(w.options[:i], w.options[i+1:]...)

	changed := false
	for j, sel := range w.selection {
		if sel == id {
			w.selection = append(w.selection[:j], w.selection[j+1:]...)
			changed = true
			break
		}
	}
	w.mu.Unlock()

	if changed {
		w.emit()
	}
	return nil
}

// UpdateOption relabels an option in place.
func (w *MemoryWidget) UpdateOption(id, label string, extra any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.check(OpUpdateOption); err != nil {
		return err
	}
	w.calls = append(w.calls, WidgetCall{Op: OpUpdateOption, ID: id})
	i := w.indexOf(id)
	if i < 0 {
		return fmt.Errorf("option %q not found", id)
	}
	w.options[i].Label = label
	w.options[i].Extra = extra
	return nil
}

// SetSelection replaces the selection and fires one change event.
func (w *MemoryWidget) SetSelection(ids []string) error {
	w.mu.Lock()
	if err := w.check(OpSetSelection); err != nil {
		w.mu.Unlock()
		return err
	}
	w.calls = append(w.calls, WidgetCall{Op: OpSetSelection, IDs: append([]string(nil), ids...)})
	for _, id := range ids {
		if w.indexOf(id) < 0 {
			w.mu.Unlock()
			return fmt.Errorf("cannot select unknown option %q", id)
		}
	}
	changed := !sameSelection(w.selection, ids)
	w.selection = append([]string(nil), ids...)
	w.mu.Unlock()

	if changed {
		w.emit()
	}
	return nil
}

// Selection returns the selected IDs.
func (w *MemoryWidget) Selection() ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.check(OpSelection); err != nil {
		return nil, err
	}
	return append([]string(nil), w.selection...), nil
}

// OnSelectionChange registers a listener.
func (w *MemoryWidget) OnSelectionChange(fn func(ids []string)) Handle {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextID++
	w.listeners[w.nextID] = fn
	return w.nextID
}

// OffSelectionChange removes a listener.
func (w *MemoryWidget) OffSelectionChange(h Handle) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.listeners, h)
}

// Destroy marks the widget unavailable and drops its listeners.
func (w *MemoryWidget) Destroy() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.destroyed {
		return w.unavailable(OpDestroy)
	}
	w.calls = append(w.calls, WidgetCall{Op: OpDestroy})
	w.destroyed = true
	w.listeners = make(map[Handle]func([]string))
	return nil
}

// Select simulates a user picking ids in the widget. Unknown IDs are ignored.
func (w *MemoryWidget) Select(ids ...string) {
	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return
	}
	var next []string
	for _, id := range ids {
		if w.indexOf(id) >= 0 {
			next = append(next, id)
		}
	}
	changed := !sameSelection(w.selection, next)
	w.selection = next
	w.mu.Unlock()

	if changed {
		w.emit()
	}
}

// Calls returns the recorded mutating calls.
func (w *MemoryWidget) Calls() []WidgetCall {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]WidgetCall(nil), w.calls...)
}

// CallCount returns how many calls of op were recorded.
func (w *MemoryWidget) CallCount(op string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, c := range w.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// ResetCalls clears the call record.
func (w *MemoryWidget) ResetCalls() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = nil
}

// FailNext makes the next call of op return err.
func (w *MemoryWidget) FailNext(op string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failures[op] = err
}

// Listeners returns the number of registered selection listeners.
func (w *MemoryWidget) Listeners() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.listeners)
}

// indexOf must be called with mu held.
func (w *MemoryWidget) indexOf(id string) int {
	for i, opt := range w.options {
		if opt.ID == id {
			return i
		}
	}
	return -1
}

// emit delivers the current selection to every listener, in registration order.
func (w *MemoryWidget) emit() {
	w.mu.Lock()
	handles := make([]Handle, 0, len(w.listeners))
	for h := range w.listeners {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	fns := make([]func([]string), 0, len(handles))
	for _, h := range handles {
		fns = append(fns, w.listeners[h])
	}
	selection := append([]string(nil), w.selection...)
	w.mu.Unlock()

	for _, fn := range fns {
		fn(selection)
	}
}

var _ Widget = (*MemoryWidget)(nil)
