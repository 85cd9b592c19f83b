package selectz

// Widget is the capability set the controller needs from a dropdown or
// autocomplete component. Concrete widget libraries are adapted behind it.
//
// Once a widget is attached to a Controller, the controller is its only
// writer: hosts must not add, remove, relabel or select options directly,
// otherwise the controller's snapshot drifts from what is displayed. User
// interaction is the exception and arrives through OnSelectionChange.
//
// Implementations return an error wrapping ErrWidgetUnavailable from every
// method once the widget has been destroyed.
type Widget interface {
	// Options returns the options currently displayed, in display order.
	Options() ([]Option, error)

	// AddOption inserts opt at index. An index past the end appends.
	AddOption(opt Option, index int) error

	// RemoveOption removes the option with the given ID. Removing a selected
	// option also deselects it.
	RemoveOption(id string) error

	// UpdateOption changes an option's label and payload in place.
	UpdateOption(id, label string, extra any) error

	// SetSelection replaces the selection in one batch.
	SetSelection(ids []string) error

	// Selection returns the selected IDs.
	Selection() ([]string, error)

	// OnSelectionChange registers fn for selection changes, including
	// changes caused by SetSelection and RemoveOption.
	OnSelectionChange(fn func(ids []string)) Handle

	// OffSelectionChange removes a listener. It is idempotent.
	OffSelectionChange(h Handle)

	// Destroy tears the widget down.
	Destroy() error
}
