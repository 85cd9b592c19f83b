package selectz

// State represents the lifecycle state of a Controller.
type State int32

const (
	// StateDetached indicates the controller holds no source or widget.
	// It is both the initial state and the state after Detach.
	StateDetached State = iota

	// StateAttached indicates the controller is subscribed to its source and
	// the widget matches the snapshot.
	StateAttached

	// StateReconciling indicates a reconciliation is applying mutations to
	// the widget. Widget selection events seen in this state are echoes of
	// the controller's own calls and are ignored.
	StateReconciling
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateDetached:
		return "detached"
	case StateAttached:
		return "attached"
	case StateReconciling:
		return "reconciling"
	default:
		return "unknown"
	}
}
