package selectz

import (
	"context"
	"time"

	"github.com/zoobzio/pipz"
)

// Pipeline identities.
var (
	writeBackID      = pipz.NewIdentity("selectz:write-back", "Forwards the user selection to the source")
	retryID          = pipz.NewIdentity("selectz:retry", "Retries selection write-back")
	backoffID        = pipz.NewIdentity("selectz:backoff", "Retries selection write-back with backoff")
	timeoutID        = pipz.NewIdentity("selectz:timeout", "Bounds selection write-back duration")
	circuitBreakerID = pipz.NewIdentity("selectz:circuit-breaker", "Stops write-back after repeated failures")
	fallbackID       = pipz.NewIdentity("selectz:fallback", "Tries alternative writers when write-back fails")
	errorHandlerID   = pipz.NewIdentity("selectz:error-handler", "Observes write-back failures")
	middlewareID     = pipz.NewIdentity("selectz:middleware", "Write-back middleware sequence")
)

// SelectionRequest carries a user selection through the write-back pipeline.
type SelectionRequest struct {
	// Previous is the selection recorded before the user's change.
	Previous []string

	// Current is the selection to write. Middleware may rewrite it.
	Current []string
}

// WriteBackOption configures the pipeline that forwards user selections to
// the source's SelectionWriter. Options wrap the pipeline in the order given.
//
// Write-back runs on the loop, so options that sleep (WithBackoff) or
// spawn work (WithTimeout) hold up every other callback while they run.
type WriteBackOption func(pipz.Chainable[*SelectionRequest]) pipz.Chainable[*SelectionRequest]

// buildWriteBack wraps a terminal with write-back options.
func buildWriteBack(terminal pipz.Chainable[*SelectionRequest], opts []WriteBackOption) pipz.Chainable[*SelectionRequest] {
	pipeline := terminal
	for _, opt := range opts {
		pipeline = opt(pipeline)
	}
	return pipeline
}

// WithRetry retries a failed write-back immediately, up to maxAttempts times.
func WithRetry(maxAttempts int) WriteBackOption {
	return func(p pipz.Chainable[*SelectionRequest]) pipz.Chainable[*SelectionRequest] {
		return pipz.NewRetry(retryID, p, maxAttempts)
	}
}

// WithBackoff retries a failed write-back with exponentially growing delays.
func WithBackoff(maxAttempts int, baseDelay time.Duration) WriteBackOption {
	return func(p pipz.Chainable[*SelectionRequest]) pipz.Chainable[*SelectionRequest] {
		return pipz.NewBackoff(backoffID, p, maxAttempts, baseDelay)
	}
}

// WithTimeout fails a write-back that takes longer than d.
func WithTimeout(d time.Duration) WriteBackOption {
	return func(p pipz.Chainable[*SelectionRequest]) pipz.Chainable[*SelectionRequest] {
		return pipz.NewTimeout(timeoutID, p, d)
	}
}

// WithCircuitBreaker rejects write-backs after failures consecutive errors
// until recovery has passed.
func WithCircuitBreaker(failures int, recovery time.Duration) WriteBackOption {
	return func(p pipz.Chainable[*SelectionRequest]) pipz.Chainable[*SelectionRequest] {
		return pipz.NewCircuitBreaker(circuitBreakerID, p, failures, recovery)
	}
}

// WithFallback tries each fallback in order when the write-back fails, for
// example a local store when the remote one is unreachable.
func WithFallback(fallbacks ...pipz.Chainable[*SelectionRequest]) WriteBackOption {
	return func(p pipz.Chainable[*SelectionRequest]) pipz.Chainable[*SelectionRequest] {
		all := append([]pipz.Chainable[*SelectionRequest]{p}, fallbacks...)
		return pipz.NewFallback(fallbackID, all...)
	}
}

// WithErrorHandler passes write-back failures to handler for logging or
// alerting. The error still propagates and is reported as a WriteBackError.
func WithErrorHandler(handler pipz.Chainable[*pipz.Error[*SelectionRequest]]) WriteBackOption {
	return func(p pipz.Chainable[*SelectionRequest]) pipz.Chainable[*SelectionRequest] {
		return pipz.NewHandle(errorHandlerID, p, handler)
	}
}

// WithMiddleware runs processors before the write-back, in order.
//
//	selectz.New(
//	    selectz.WithMiddleware(
//	        selectz.UseEffect(auditID, audit),
//	    ),
//	    selectz.WithRetry(3),
//	)
func WithMiddleware(processors ...pipz.Chainable[*SelectionRequest]) WriteBackOption {
	return func(p pipz.Chainable[*SelectionRequest]) pipz.Chainable[*SelectionRequest] {
		all := make([]pipz.Chainable[*SelectionRequest], 0, len(processors)+1)
		all = append(all, processors...)
		all = append(all, p)
		return pipz.NewSequence(middlewareID, all...)
	}
}

// UseEffect creates a processor that observes the request without changing it.
func UseEffect(id pipz.Identity, fn func(context.Context, *SelectionRequest) error) pipz.Chainable[*SelectionRequest] {
	return pipz.Effect(id, fn)
}

// UseTransform creates a processor that rewrites the request and cannot fail.
func UseTransform(id pipz.Identity, fn func(context.Context, *SelectionRequest) *SelectionRequest) pipz.Chainable[*SelectionRequest] {
	return pipz.Transform(id, fn)
}

// UseApply creates a processor that may rewrite the request or fail.
func UseApply(id pipz.Identity, fn func(context.Context, *SelectionRequest) (*SelectionRequest, error)) pipz.Chainable[*SelectionRequest] {
	return pipz.Apply(id, fn)
}

// UseFilter runs processor only for requests matching condition. Other
// requests pass through unchanged.
func UseFilter(id pipz.Identity, condition func(context.Context, *SelectionRequest) bool, processor pipz.Chainable[*SelectionRequest]) pipz.Chainable[*SelectionRequest] {
	return pipz.NewFilter(id, condition, processor)
}

// UseWriter adapts a SelectionWriter into a processor, for use with
// WithFallback.
func UseWriter(id pipz.Identity, w SelectionWriter) pipz.Chainable[*SelectionRequest] {
	return pipz.Effect(id, func(_ context.Context, req *SelectionRequest) error {
		return w.WriteSelection(req.Current)
	})
}
