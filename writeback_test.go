package selectz

import (
	"context"
	"errors"
	"testing"

	"github.com/zoobzio/pipz"
)

func attachWithWriter(t *testing.T, writer func([]string) error, opts ...WriteBackOption) (*Controller, *MemoryWidget) {
	t.Helper()
	loop := NewLoop()
	source := NewFuncSource(loop, func() (OptionSet, error) {
		return OptionSet{opt("1", "A"), opt("2", "B")}, nil
	}).WithWriter(writer)
	widget := NewMemoryWidget()
	ctrl := New(opts...)
	if err := ctrl.Attach(context.Background(), source, widget); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	return ctrl, widget
}

func TestWithRetry_RecoversTransientFailure(t *testing.T) {
	attempts := 0
	ctrl, widget := attachWithWriter(t, func([]string) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}, WithRetry(3))

	widget.Select("1")

	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if ctrl.LastError() != nil {
		t.Errorf("expected no error, got %v", ctrl.LastError())
	}
}

func TestWithRetry_ExhaustedReportsWriteBackError(t *testing.T) {
	attempts := 0
	ctrl, widget := attachWithWriter(t, func([]string) error {
		attempts++
		return errors.New("down")
	}, WithRetry(2))

	widget.Select("2")

	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
	var wb *WriteBackError
	if !errors.As(ctrl.LastError(), &wb) {
		t.Errorf("expected WriteBackError, got %v", ctrl.LastError())
	}
}

func TestWithoutOptions_NoRetry(t *testing.T) {
	attempts := 0
	_, widget := attachWithWriter(t, func([]string) error {
		attempts++
		return errors.New("down")
	})

	widget.Select("2")

	if attempts != 1 {
		t.Errorf("expected a single attempt, got %d", attempts)
	}
}

func TestWithMiddleware(t *testing.T) {
	auditID := pipz.NewIdentity("test:audit", "Records selection changes")
	filterID := pipz.NewIdentity("test:filter", "Drops option 1")
	guardID := pipz.NewIdentity("test:guard", "Rejects empty selections")

	var audited []*SelectionRequest
	var written [][]string
	ctrl, widget := attachWithWriter(t, func(ids []string) error {
		written = append(written, ids)
		return nil
	}, WithMiddleware(
		UseEffect(auditID, func(_ context.Context, req *SelectionRequest) error {
			audited = append(audited, req)
			return nil
		}),
		UseTransform(filterID, func(_ context.Context, req *SelectionRequest) *SelectionRequest {
			var kept []string
			for _, id := range req.Current {
				if id != "1" {
					kept = append(kept, id)
				}
			}
			req.Current = kept
			return req
		}),
		UseApply(guardID, func(_ context.Context, req *SelectionRequest) (*SelectionRequest, error) {
			if len(req.Current) == 0 {
				return req, errors.New("empty selection")
			}
			return req, nil
		}),
	))

	widget.Select("1", "2")

	if len(audited) != 1 || len(audited[0].Previous) != 0 {
		t.Fatalf("expected one audit with empty previous selection, got %v", audited)
	}
	if len(written) != 1 || len(written[0]) != 1 || written[0][0] != "2" {
		t.Errorf("expected transformed write [2], got %v", written)
	}

	widget.Select("1")

	if len(written) != 1 {
		t.Errorf("expected guard to stop the write, got %v", written)
	}
	if ctrl.LastError() == nil {
		t.Error("expected guard failure to be reported")
	}
}

func TestWithFallback_UsesAlternativeWriter(t *testing.T) {
	localID := pipz.NewIdentity("test:local", "Local selection store")
	var local [][]string
	ctrl, widget := attachWithWriter(t, func([]string) error {
		return errors.New("remote unreachable")
	}, WithFallback(UseWriter(localID, writerFunc(func(ids []string) error {
		local = append(local, ids)
		return nil
	}))))

	widget.Select("2")

	if len(local) != 1 || local[0][0] != "2" {
		t.Errorf("expected fallback write of [2], got %v", local)
	}
	if ctrl.LastError() != nil {
		t.Errorf("expected fallback to absorb the failure, got %v", ctrl.LastError())
	}
}

func TestWithErrorHandler_ObservesFailures(t *testing.T) {
	observerID := pipz.NewIdentity("test:observer", "Counts write-back failures")
	var observed []error
	ctrl, widget := attachWithWriter(t, func([]string) error {
		return errors.New("down")
	}, WithErrorHandler(pipz.Effect(observerID, func(_ context.Context, err *pipz.Error[*SelectionRequest]) error {
		observed = append(observed, err.Err)
		return nil
	})))

	widget.Select("1")

	if len(observed) != 1 {
		t.Errorf("expected 1 observed failure, got %d", len(observed))
	}
	if ctrl.LastError() == nil {
		t.Error("expected the failure to still be reported")
	}
}

func TestUseFilter_SkipsNonMatching(t *testing.T) {
	filterID := pipz.NewIdentity("test:only-multi", "Audits multi-selections")
	auditID := pipz.NewIdentity("test:audit", "Records selection changes")
	audits := 0
	_, widget := attachWithWriter(t, func([]string) error { return nil }, WithMiddleware(
		UseFilter(filterID, func(_ context.Context, req *SelectionRequest) bool {
			return len(req.Current) > 1
		}, UseEffect(auditID, func(context.Context, *SelectionRequest) error {
			audits++
			return nil
		})),
	))

	widget.Select("1")
	widget.Select("1", "2")

	if audits != 1 {
		t.Errorf("expected 1 audit, got %d", audits)
	}
}
