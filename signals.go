package selectz

import "github.com/zoobzio/capitan"

// Controller lifecycle signals.
var (
	// ControllerAttached is emitted when a Controller attaches to a source and widget.
	ControllerAttached = capitan.NewSignal(
		"selectz.controller.attached",
		"Controller attached",
	)

	// ControllerDetached is emitted when a Controller detaches.
	ControllerDetached = capitan.NewSignal(
		"selectz.controller.detached",
		"Controller detached",
	)

	// ControllerStateChanged is emitted when a Controller transitions between states.
	ControllerStateChanged = capitan.NewSignal(
		"selectz.controller.state.changed",
		"Controller state transition",
	)
)

// Reconciliation signals.
var (
	// SourceChanged is emitted when a change notification reaches the controller.
	SourceChanged = capitan.NewSignal(
		"selectz.source.changed",
		"Source change received",
	)

	// SourceChangeCoalesced is emitted when a notification arrives mid-reconciliation
	// and is folded into a follow-up pass.
	SourceChangeCoalesced = capitan.NewSignal(
		"selectz.source.change.coalesced",
		"Source change coalesced into follow-up reconciliation",
	)

	// SourceEvaluationFailed is emitted when reading the source fails.
	SourceEvaluationFailed = capitan.NewSignal(
		"selectz.source.evaluation.failed",
		"Source evaluation failed",
	)

	// ReconcileSucceeded is emitted after the widget has been brought in line
	// with the source.
	ReconcileSucceeded = capitan.NewSignal(
		"selectz.reconcile.succeeded",
		"Reconciliation applied",
	)

	// ReconcileFailed is emitted when a widget call fails mid-reconciliation.
	ReconcileFailed = capitan.NewSignal(
		"selectz.reconcile.failed",
		"Reconciliation failed",
	)

	// WidgetUnavailable is emitted when the widget disappears under the controller.
	WidgetUnavailable = capitan.NewSignal(
		"selectz.widget.unavailable",
		"Widget unavailable",
	)
)

// Selection signals.
var (
	// SelectionEchoSuppressed is emitted when a widget selection event caused
	// by the controller's own mutation is swallowed.
	SelectionEchoSuppressed = capitan.NewSignal(
		"selectz.selection.echo.suppressed",
		"Selection echo suppressed",
	)

	// SelectionChanged is emitted when the user changes the selection in the widget.
	SelectionChanged = capitan.NewSignal(
		"selectz.selection.changed",
		"User selection changed",
	)

	// SelectionWriteFailed is emitted when selection write-back fails.
	SelectionWriteFailed = capitan.NewSignal(
		"selectz.selection.write.failed",
		"Selection write-back failed",
	)
)

// Watcher source signals.
var (
	// WatcherChangeReceived is emitted when raw data arrives from a Watcher.
	WatcherChangeReceived = capitan.NewSignal(
		"selectz.watcher.change.received",
		"Raw change received from watcher",
	)

	// WatcherDecodeFailed is emitted when raw data cannot be decoded into an OptionSet.
	WatcherDecodeFailed = capitan.NewSignal(
		"selectz.watcher.decode.failed",
		"Watcher data decode failed",
	)

	// WatcherStopped is emitted when a WatcherSource stops watching.
	WatcherStopped = capitan.NewSignal(
		"selectz.watcher.stopped",
		"Watcher stopped",
	)
)
