package selectz

import "time"

// MetricsProvider allows integration with metrics systems like Prometheus, StatsD, etc.
// Implement this interface to receive callbacks on key controller events.
// See pkg/prometheus for a ready-made implementation.
type MetricsProvider interface {
	// OnStateChange is called when the controller transitions between states.
	OnStateChange(from, to State)

	// OnReconcileSuccess is called when a reconciliation completes.
	OnReconcileSuccess(duration time.Duration, stats Stats)

	// OnReconcileFailure is called when a reconciliation is aborted.
	// Stage is "read" for source failures or "widget" for widget failures.
	OnReconcileFailure(stage string, duration time.Duration)

	// OnChangeReceived is called for every change notification, including
	// coalesced ones.
	OnChangeReceived()

	// OnEchoSuppressed is called when the loop guard swallows a widget event.
	OnEchoSuppressed()

	// OnSelectionWritten is called after a user selection is forwarded to
	// the source, with the write-back error if any.
	OnSelectionWritten(err error)
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnStateChange(_, _ State)                   {}
func (NoOpMetricsProvider) OnReconcileSuccess(_ time.Duration, _ Stats) {}
func (NoOpMetricsProvider) OnReconcileFailure(_ string, _ time.Duration) {}
func (NoOpMetricsProvider) OnChangeReceived()                          {}
func (NoOpMetricsProvider) OnEchoSuppressed()                          {}
func (NoOpMetricsProvider) OnSelectionWritten(_ error)                 {}
