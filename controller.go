package selectz

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/pipz"
)

// SelectionMode limits how many options may be selected at once.
type SelectionMode int

const (
	// SelectMultiple allows any number of selected options (default).
	SelectMultiple SelectionMode = iota
	// SelectSingle allows at most one selected option.
	SelectSingle
)

// errAbandoned marks a reconciliation cut short by Detach.
var errAbandoned = errors.New("reconciliation abandoned")

// Controller keeps a Widget's options and selection in sync with a Source.
//
// All methods except State, Snapshot, LastError and ErrorHistory must be
// called on the Loop that delivers the source's notifications, or before
// that loop starts running.
type Controller struct {
	pipeline     pipz.Chainable[*SelectionRequest]
	mode         SelectionMode
	clock        clockz.Clock
	metrics      MetricsProvider
	onError      func(error)
	errorHistory *errorRing

	state     atomic.Int32
	snapshot  atomic.Pointer[Snapshot]
	lastError atomic.Pointer[error]

	// Owned by the loop.
	ctx          context.Context
	source       Source
	widget       Widget
	writer       SelectionWriter
	sourceHandle Handle
	widgetHandle Handle
	requested    map[string]bool
	pending      bool
	generation   uint64
}

// New creates a detached Controller.
//
// Write-back options configure the pipeline user selections travel through
// on their way to the source. Instance configuration uses chainable methods
// before calling Attach.
//
//	ctrl := selectz.New(selectz.WithRetry(3)).
//	    Mode(selectz.SelectSingle).
//	    OnError(func(err error) { log.Printf("select: %v", err) })
func New(opts ...WriteBackOption) *Controller {
	c := &Controller{
		clock:        clockz.RealClock,
		errorHistory: newErrorRing(0),
	}
	terminal := pipz.Effect(writeBackID, func(_ context.Context, req *SelectionRequest) error {
		if c.writer == nil {
			return nil
		}
		return c.writer.WriteSelection(req.Current)
	})
	c.pipeline = buildWriteBack(terminal, opts)
	c.state.Store(int32(StateDetached))
	return c
}

// -----------------------------------------------------------------------------
// Chainable Instance Configuration
// -----------------------------------------------------------------------------

// Mode sets the selection mode. Default: SelectMultiple. Must be called before Attach().
func (c *Controller) Mode(m SelectionMode) *Controller {
	c.mode = m
	return c
}

// OnError sets the callback that receives every error the controller reports.
// Errors raised while handling notifications cannot be returned to a caller,
// so this is where hosts log or display them. Must be called before Attach().
func (c *Controller) OnError(fn func(error)) *Controller {
	c.onError = fn
	return c
}

// Metrics sets a metrics provider. Must be called before Attach().
func (c *Controller) Metrics(provider MetricsProvider) *Controller {
	c.metrics = provider
	return c
}

// Clock sets the clock used to time reconciliations and stamp errors.
// Must be called before Attach().
func (c *Controller) Clock(clock clockz.Clock) *Controller {
	c.clock = clock
	return c
}

// ErrorHistorySize sets the number of recent errors to retain.
// Use 0 (default) to only retain the most recent error via LastError().
// Must be called before Attach().
func (c *Controller) ErrorHistorySize(n int) *Controller {
	c.errorHistory = newErrorRing(n)
	return c
}

// -----------------------------------------------------------------------------
// Observers
// -----------------------------------------------------------------------------

// State returns the current state of the Controller.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Snapshot returns a copy of the last applied state and true, or false when
// the controller is detached.
func (c *Controller) Snapshot() (Snapshot, bool) {
	ptr := c.snapshot.Load()
	if ptr == nil {
		return Snapshot{}, false
	}
	return ptr.clone(), true
}

// LastError returns the last error reported since the last successful
// reconciliation, or nil.
func (c *Controller) LastError() error {
	ptr := c.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// ErrorHistory returns errors reported since the last successful
// reconciliation, oldest first.
// Returns nil if error history is not enabled (see ErrorHistorySize).
func (c *Controller) ErrorHistory() []ErrorRecord {
	return c.errorHistory.all()
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Attach subscribes to source, listens to widget selection events, and runs
// an initial reconciliation against an empty baseline. initialSelection is
// selected as the options appear. The widget is expected to start empty.
//
// Attach returns ErrAlreadyAttached if the controller is attached. Otherwise
// it returns the initial reconciliation's error, which is also reported. A
// source evaluation failure leaves the controller attached and waiting for
// the next change; an unavailable widget leaves it detached.
func (c *Controller) Attach(ctx context.Context, source Source, widget Widget, initialSelection ...string) error {
	if c.State() != StateDetached {
		return ErrAlreadyAttached
	}

	c.ctx = ctx
	c.source = source
	c.widget = widget
	c.writer, _ = source.(SelectionWriter)
	c.generation++
	c.pending = false
	c.Preselect(initialSelection...)
	c.snapshot.Store(&Snapshot{})
	c.transitionState(StateDetached, StateAttached)

	c.sourceHandle = source.Subscribe(c.OnSourceChanged)
	c.widgetHandle = widget.OnSelectionChange(c.onWidgetSelectionChanged)

	capitan.Emit(ctx, ControllerAttached)

	return c.reconcileAll()
}

// Detach unsubscribes from the source, removes the widget listener and
// discards the snapshot. It is idempotent and safe to call from inside any
// source or widget callback; a reconciliation in progress stops before its
// next widget call.
func (c *Controller) Detach() {
	oldState := c.State()
	if oldState == StateDetached {
		return
	}

	c.generation++
	c.source.Unsubscribe(c.sourceHandle)
	c.widget.OffSelectionChange(c.widgetHandle)
	c.snapshot.Store(nil)
	c.requested = nil
	c.pending = false
	c.transitionState(oldState, StateDetached)

	capitan.Emit(c.ctx, ControllerDetached)

	c.source = nil
	c.widget = nil
	c.writer = nil
}

// Preselect requests that ids be selected when the source adds them. IDs
// already displayed are not affected; requests are dropped on Detach.
func (c *Controller) Preselect(ids ...string) {
	if len(ids) == 0 {
		return
	}
	if c.requested == nil {
		c.requested = make(map[string]bool, len(ids))
	}
	for _, id := range ids {
		c.requested[id] = true
	}
}

// OnSourceChanged re-reads the source and reconciles the widget. Sources call
// it through their subscription; hosts may also call it directly, for example
// when their component re-renders. A call during a reconciliation is
// coalesced into a single follow-up pass.
func (c *Controller) OnSourceChanged() {
	state := c.State()
	if state == StateDetached {
		return
	}

	capitan.Emit(c.ctx, SourceChanged)
	if c.metrics != nil {
		c.metrics.OnChangeReceived()
	}

	if state == StateReconciling {
		c.pending = true
		capitan.Emit(c.ctx, SourceChangeCoalesced)
		return
	}

	_ = c.reconcileAll() //nolint:errcheck // Errors reported via report
}

// reconcileAll runs one reconciliation plus at most one follow-up per batch
// of coalesced notifications.
func (c *Controller) reconcileAll() error {
	for {
		c.pending = false
		err := c.reconcile()
		if !c.pending || c.State() == StateDetached {
			return err
		}
	}
}

// reconcile performs one read-diff-apply cycle.
func (c *Controller) reconcile() error {
	gen := c.generation
	start := c.clock.Now()
	ctx := c.ctx

	c.transitionState(StateAttached, StateReconciling)
	defer func() {
		if c.generation == gen {
			c.transitionState(StateReconciling, StateAttached)
		}
	}()

	set, err := c.source.Read()
	if err != nil {
		err = evaluationError(err)
		c.report(err)
		capitan.Emit(ctx, SourceEvaluationFailed, KeyError.Field(err.Error()))
		if c.metrics != nil {
			c.metrics.OnReconcileFailure("read", c.clock.Since(start))
		}
		return err
	}
	if c.generation != gen {
		return nil
	}

	prev := c.snapshot.Load()
	p := computePlan(*prev, set, c.requested, c.mode == SelectSingle)

	if err := c.apply(gen, p); err != nil {
		if errors.Is(err, errAbandoned) {
			return nil
		}
		c.failWidget(ctx, gen, err)
		if c.metrics != nil {
			c.metrics.OnReconcileFailure("widget", c.clock.Since(start))
		}
		return err
	}
	if c.generation != gen {
		return nil
	}

	for _, id := range p.consumed {
		delete(c.requested, id)
	}
	c.snapshot.Store(&Snapshot{Options: set.Clone(), Selection: p.selection})
	c.lastError.Store(nil)
	c.errorHistory.clear()

	duration := c.clock.Since(start)
	capitan.Emit(ctx, ReconcileSucceeded,
		KeyAdded.Field(p.stats.Added),
		KeyRemoved.Field(p.stats.Removed),
		KeyUpdated.Field(p.stats.Updated),
		KeyMoved.Field(p.stats.Moved),
		KeyOptions.Field(len(set)),
		KeySelected.Field(len(p.selection)),
		KeyDuration.Field(duration),
	)
	if c.metrics != nil {
		c.metrics.OnReconcileSuccess(duration, p.stats)
	}
	return nil
}

// apply issues the plan's widget calls. It stops with errAbandoned as soon
// as the controller is detached by a callback.
func (c *Controller) apply(gen uint64, p plan) error {
	if p.empty() {
		return nil
	}
	w := c.widget
	step := func(op, id string, err error) error {
		if err != nil {
			return widgetError(op, id, err)
		}
		if c.generation != gen {
			return errAbandoned
		}
		return nil
	}

	for _, opt := range p.updates {
		if err := step(OpUpdateOption, opt.ID, w.UpdateOption(opt.ID, opt.Label, opt.Extra)); err != nil {
			return err
		}
	}
	for _, id := range p.removes {
		if err := step(OpRemoveOption, id, w.RemoveOption(id)); err != nil {
			return err
		}
	}
	for _, add := range p.adds {
		if err := step(OpAddOption, add.Option.ID, w.AddOption(add.Option, add.Index)); err != nil {
			return err
		}
	}
	if p.applySelection {
		if err := step(OpSetSelection, "", w.SetSelection(p.selection)); err != nil {
			return err
		}
	}
	return nil
}

// failWidget reports a failed widget call. An unavailable widget detaches
// the controller; any other failure resynchronizes the snapshot from what
// the widget actually shows.
func (c *Controller) failWidget(ctx context.Context, gen uint64, err error) {
	c.report(err)

	var unavailable *WidgetUnavailableError
	if errors.As(err, &unavailable) {
		capitan.Emit(ctx, WidgetUnavailable,
			KeyOp.Field(unavailable.Op),
			KeyError.Field(err.Error()),
		)
		c.Detach()
		return
	}

	op := ""
	var we *WidgetError
	if errors.As(err, &we) {
		op = we.Op
	}
	capitan.Emit(ctx, ReconcileFailed,
		KeyOp.Field(op),
		KeyError.Field(err.Error()),
	)

	if c.generation != gen {
		return
	}
	if rerr := c.resync(); rerr != nil {
		c.report(rerr)
		if errors.As(rerr, &unavailable) {
			c.Detach()
		}
	}
}

// resync rebuilds the snapshot from the widget's actual state.
func (c *Controller) resync() error {
	opts, err := c.widget.Options()
	if err != nil {
		return widgetError(OpOptions, "", err)
	}
	sel, err := c.widget.Selection()
	if err != nil {
		return widgetError(OpSelection, "", err)
	}
	set := OptionSet(opts)
	c.snapshot.Store(&Snapshot{Options: set, Selection: normalizeSelection(set, sel)})
	return nil
}

// onWidgetSelectionChanged handles selection events from the widget.
func (c *Controller) onWidgetSelectionChanged(ids []string) {
	switch c.State() {
	case StateDetached:
		return
	case StateReconciling:
		capitan.Emit(c.ctx, SelectionEchoSuppressed)
		if c.metrics != nil {
			c.metrics.OnEchoSuppressed()
		}
		return
	}

	snap := c.snapshot.Load()
	if snap == nil {
		return
	}
	selection := normalizeSelection(snap.Options, ids)
	if sameSelection(selection, snap.Selection) {
		return
	}
	previous := snap.Selection
	c.snapshot.Store(&Snapshot{Options: snap.Options, Selection: selection})

	capitan.Emit(c.ctx, SelectionChanged, KeySelected.Field(len(selection)))

	if c.writer == nil {
		return
	}
	_, err := c.pipeline.Process(c.ctx, &SelectionRequest{
		Previous: append([]string(nil), previous...),
		Current:  append([]string(nil), selection...),
	})
	if err != nil {
		werr := &WriteBackError{Selection: selection, Err: err}
		c.report(werr)
		capitan.Emit(c.ctx, SelectionWriteFailed, KeyError.Field(werr.Error()))
	}
	if c.metrics != nil {
		c.metrics.OnSelectionWritten(err)
	}
}

// transitionState updates the state and emits a state change event if changed.
func (c *Controller) transitionState(oldState, newState State) {
	if oldState == newState {
		return
	}
	c.state.Store(int32(newState))
	capitan.Emit(c.ctx, ControllerStateChanged,
		KeyOldState.Field(oldState.String()),
		KeyNewState.Field(newState.String()),
	)
	if c.metrics != nil {
		c.metrics.OnStateChange(oldState, newState)
	}
}

// report records err and hands it to the host.
func (c *Controller) report(err error) {
	e := err
	c.lastError.Store(&e)
	c.errorHistory.push(err, c.clock.Now())
	if c.onError != nil {
		c.onError(err)
	}
}
