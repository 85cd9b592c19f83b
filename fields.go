package selectz

import "github.com/zoobzio/capitan"

// Field keys for selectz events.
var (
	// KeyState is the current state of the Controller.
	KeyState = capitan.NewStringKey("state")

	// KeyOldState is the previous state before a transition.
	KeyOldState = capitan.NewStringKey("old_state")

	// KeyNewState is the new state after a transition.
	KeyNewState = capitan.NewStringKey("new_state")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyOp is the widget operation involved in a failure.
	KeyOp = capitan.NewStringKey("op")

	// KeyAdded is the number of options added by a reconciliation.
	KeyAdded = capitan.NewIntKey("added")

	// KeyRemoved is the number of options removed by a reconciliation.
	KeyRemoved = capitan.NewIntKey("removed")

	// KeyUpdated is the number of options relabeled by a reconciliation.
	KeyUpdated = capitan.NewIntKey("updated")

	// KeyMoved is the number of options repositioned by a reconciliation.
	KeyMoved = capitan.NewIntKey("moved")

	// KeySelected is the number of selected options after an operation.
	KeySelected = capitan.NewIntKey("selected")

	// KeyOptions is the number of options after an operation.
	KeyOptions = capitan.NewIntKey("options")

	// KeyDuration is how long an operation took.
	KeyDuration = capitan.NewDurationKey("duration")

	// KeyDebounce is the configured debounce duration.
	KeyDebounce = capitan.NewDurationKey("debounce")
)
