package selectz

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoop_RunsInOrder(t *testing.T) {
	loop := NewLoop()
	var got []int
	for i := 0; i < 3; i++ {
		loop.Post(func() { got = append(got, i) })
	}

	if n := loop.Drain(); n != 3 {
		t.Errorf("expected 3 turns, got %d", n)
	}
	if len(got) != 3 || got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Errorf("expected [0 1 2], got %v", got)
	}
}

func TestLoop_PostFromTaskRunsOnLaterTurn(t *testing.T) {
	loop := NewLoop()
	var order []string
	loop.Post(func() {
		loop.Post(func() { order = append(order, "inner") })
		order = append(order, "outer")
	})

	if !loop.Step() {
		t.Fatal("expected a task to run")
	}
	if len(order) != 1 || order[0] != "outer" {
		t.Fatalf("expected inner task deferred, got %v", order)
	}
	if loop.Pending() != 1 {
		t.Errorf("expected 1 pending task, got %d", loop.Pending())
	}
	loop.Drain()
	if len(order) != 2 || order[1] != "inner" {
		t.Errorf("expected inner task after outer, got %v", order)
	}
}

func TestLoop_StepOnEmpty(t *testing.T) {
	loop := NewLoop()
	if loop.Step() {
		t.Error("expected Step to report an empty queue")
	}
	loop.Post(nil)
	if loop.Pending() != 0 {
		t.Error("expected nil task to be ignored")
	}
}

func TestLoop_Run(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	var ran atomic.Int32
	ranCh := make(chan struct{})
	loop.Post(func() {
		ran.Add(1)
		close(ranCh)
	})

	select {
	case <-ranCh:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for task")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for Run to return")
	}
	if ran.Load() != 1 {
		t.Errorf("expected 1 run, got %d", ran.Load())
	}
}
