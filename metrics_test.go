package selectz

import (
	"errors"
	"testing"
	"time"
)

func TestNoOpMetricsProvider_DoesNotPanic(_ *testing.T) {
	var m NoOpMetricsProvider

	m.OnStateChange(StateDetached, StateAttached)
	m.OnReconcileSuccess(100*time.Millisecond, Stats{Added: 1})
	m.OnReconcileFailure("read", 50*time.Millisecond)
	m.OnChangeReceived()
	m.OnEchoSuppressed()
	m.OnSelectionWritten(errors.New("boom"))
}

// recordingMetrics counts the callbacks it receives.
type recordingMetrics struct {
	NoOpMetricsProvider
	transitions []string
	successes   []Stats
	failures    []string
	changes     int
	echoes      int
	writes      []error
}

func (m *recordingMetrics) OnStateChange(from, to State) {
	m.transitions = append(m.transitions, from.String()+"->"+to.String())
}

func (m *recordingMetrics) OnReconcileSuccess(_ time.Duration, stats Stats) {
	m.successes = append(m.successes, stats)
}

func (m *recordingMetrics) OnReconcileFailure(stage string, _ time.Duration) {
	m.failures = append(m.failures, stage)
}

func (m *recordingMetrics) OnChangeReceived() { m.changes++ }

func (m *recordingMetrics) OnEchoSuppressed() { m.echoes++ }

func (m *recordingMetrics) OnSelectionWritten(err error) { m.writes = append(m.writes, err) }

func TestMetrics_ReceivesControllerEvents(t *testing.T) {
	h := newHarness(t, OptionSet{{ID: "1", Label: "A"}})
	m := &recordingMetrics{}
	h.ctrl.Metrics(m)

	if err := h.attach("1"); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}

	if len(m.successes) != 1 || m.successes[0].Added != 1 || !m.successes[0].Selected {
		t.Errorf("unexpected success stats %+v", m.successes)
	}
	if m.echoes != 1 {
		t.Errorf("expected 1 suppressed echo, got %d", m.echoes)
	}

	h.fail(errors.New("backend down"))
	h.source.Invalidate()
	h.loop.Drain()

	if m.changes != 1 {
		t.Errorf("expected 1 change, got %d", m.changes)
	}
	if len(m.failures) != 1 || m.failures[0] != "read" {
		t.Errorf("expected one read failure, got %v", m.failures)
	}

	h.fail(nil)
	h.widget.Select()
	if len(m.writes) != 1 || m.writes[0] != nil {
		t.Errorf("expected one successful write, got %v", m.writes)
	}

	want := []string{
		"detached->attached",
		"attached->reconciling",
		"reconciling->attached",
		"attached->reconciling",
		"reconciling->attached",
	}
	if len(m.transitions) != len(want) {
		t.Fatalf("expected transitions %v, got %v", want, m.transitions)
	}
	for i := range want {
		if m.transitions[i] != want[i] {
			t.Errorf("transition %d: expected %s, got %s", i, want[i], m.transitions[i])
		}
	}
}
