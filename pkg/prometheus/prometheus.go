// Package prometheus provides a selectz.MetricsProvider backed by
// Prometheus collectors.
package prometheus

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/zoobzio/selectz"
)

// Provider records controller events as Prometheus metrics. One Provider may
// be shared by many controllers; the label distinguishes them.
type Provider struct {
	transitions *prom.CounterVec
	reconciles  *prom.CounterVec
	failures    *prom.CounterVec
	duration    *prom.HistogramVec
	mutations   *prom.CounterVec
	changes     *prom.CounterVec
	echoes      *prom.CounterVec
	writes      *prom.CounterVec
	state       *prom.GaugeVec
}

// New creates a Provider and registers its collectors with reg.
func New(reg prom.Registerer, namespace string) (*Provider, error) {
	p := &Provider{
		transitions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "controller_state_transitions_total",
			Help:      "Controller state transitions.",
		}, []string{"from", "to"}),
		reconciles: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "reconciliations_total",
			Help:      "Completed reconciliations.",
		}, []string{"result"}),
		failures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_failures_total",
			Help:      "Aborted reconciliations by stage.",
		}, []string{"stage"}),
		duration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_duration_seconds",
			Help:      "Time spent per reconciliation.",
			Buckets:   prom.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"result"}),
		mutations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "widget_mutations_total",
			Help:      "Widget mutations issued by reconciliations.",
		}, []string{"kind"}),
		changes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "source_changes_total",
			Help:      "Source change notifications received.",
		}, nil),
		echoes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "selection_echoes_suppressed_total",
			Help:      "Widget selection events swallowed by the loop guard.",
		}, nil),
		writes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "selection_writes_total",
			Help:      "Selection write-backs by result.",
		}, []string{"result"}),
		state: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "controller_state",
			Help:      "1 for the controller's current state, 0 otherwise.",
		}, []string{"state"}),
	}

	for _, c := range []prom.Collector{
		p.transitions, p.reconciles, p.failures, p.duration,
		p.mutations, p.changes, p.echoes, p.writes, p.state,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// OnStateChange implements selectz.MetricsProvider.
func (p *Provider) OnStateChange(from, to selectz.State) {
	p.transitions.WithLabelValues(from.String(), to.String()).Inc()
	p.state.WithLabelValues(from.String()).Set(0)
	p.state.WithLabelValues(to.String()).Set(1)
}

// OnReconcileSuccess implements selectz.MetricsProvider.
func (p *Provider) OnReconcileSuccess(duration time.Duration, stats selectz.Stats) {
	result := "applied"
	if stats.Empty() {
		result = "noop"
	}
	p.reconciles.WithLabelValues(result).Inc()
	p.duration.WithLabelValues("success").Observe(duration.Seconds())
	p.mutations.WithLabelValues("add").Add(float64(stats.Added))
	p.mutations.WithLabelValues("remove").Add(float64(stats.Removed))
	p.mutations.WithLabelValues("update").Add(float64(stats.Updated))
	p.mutations.WithLabelValues("move").Add(float64(stats.Moved))
	if stats.Selected {
		p.mutations.WithLabelValues("select").Inc()
	}
}

// OnReconcileFailure implements selectz.MetricsProvider.
func (p *Provider) OnReconcileFailure(stage string, duration time.Duration) {
	p.failures.WithLabelValues(stage).Inc()
	p.duration.WithLabelValues("failure").Observe(duration.Seconds())
}

// OnChangeReceived implements selectz.MetricsProvider.
func (p *Provider) OnChangeReceived() {
	p.changes.WithLabelValues().Inc()
}

// OnEchoSuppressed implements selectz.MetricsProvider.
func (p *Provider) OnEchoSuppressed() {
	p.echoes.WithLabelValues().Inc()
}

// OnSelectionWritten implements selectz.MetricsProvider.
func (p *Provider) OnSelectionWritten(err error) {
	if err != nil {
		p.writes.WithLabelValues("error").Inc()
		return
	}
	p.writes.WithLabelValues("ok").Inc()
}

var _ selectz.MetricsProvider = (*Provider)(nil)
