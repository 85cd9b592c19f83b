package selectz

import (
	"errors"
	"fmt"
)

// ErrAlreadyAttached is returned by Attach when the controller is already attached.
var ErrAlreadyAttached = errors.New("controller already attached")

// ErrWidgetUnavailable is returned by widget implementations once the widget
// has been destroyed or detached from its host.
var ErrWidgetUnavailable = errors.New("widget unavailable")

// SourceEvaluationError reports that the reactive computation behind a Source
// failed to produce a valid OptionSet.
type SourceEvaluationError struct {
	Err error
}

func (e *SourceEvaluationError) Error() string {
	return fmt.Sprintf("source evaluation failed: %v", e.Err)
}

func (e *SourceEvaluationError) Unwrap() error { return e.Err }

// MalformedOptionSetError reports an OptionSet that violates its invariants,
// such as a duplicate or empty ID.
type MalformedOptionSetError struct {
	Index  int
	ID     string
	Reason string
}

func (e *MalformedOptionSetError) Error() string {
	return fmt.Sprintf("malformed option set: option %d (id %q): %s", e.Index, e.ID, e.Reason)
}

// WidgetUnavailableError reports that the widget went away underneath the
// controller. The controller detaches when it sees one.
type WidgetUnavailableError struct {
	Op  string
	Err error
}

func (e *WidgetUnavailableError) Error() string {
	return fmt.Sprintf("widget unavailable during %s: %v", e.Op, e.Err)
}

func (e *WidgetUnavailableError) Unwrap() error { return e.Err }

// WidgetError reports any other failed widget call.
type WidgetError struct {
	Op  string
	ID  string
	Err error
}

func (e *WidgetError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("widget %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("widget %s %q failed: %v", e.Op, e.ID, e.Err)
}

func (e *WidgetError) Unwrap() error { return e.Err }

// WriteBackError reports that forwarding a user selection to the source failed.
type WriteBackError struct {
	Selection []string
	Err       error
}

func (e *WriteBackError) Error() string {
	return fmt.Sprintf("selection write-back failed: %v", e.Err)
}

func (e *WriteBackError) Unwrap() error { return e.Err }

// evaluationError wraps err as a SourceEvaluationError unless it already is one.
func evaluationError(err error) error {
	var se *SourceEvaluationError
	if errors.As(err, &se) {
		return err
	}
	return &SourceEvaluationError{Err: err}
}

// widgetError classifies a failed widget call.
func widgetError(op, id string, err error) error {
	if errors.Is(err, ErrWidgetUnavailable) {
		return &WidgetUnavailableError{Op: op, Err: err}
	}
	return &WidgetError{Op: op, ID: id, Err: err}
}
