package selectz

import (
	"errors"
	"testing"
	"time"
)

var ringEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestErrorRing_NilSafe(t *testing.T) {
	var r *errorRing

	// All operations should be safe on nil
	r.push(errors.New("test"), ringEpoch)
	r.clear()

	if r.all() != nil {
		t.Error("expected nil from nil ring")
	}
}

func TestErrorRing_ZeroSize(t *testing.T) {
	if r := newErrorRing(0); r != nil {
		t.Error("expected nil ring for size 0")
	}
	if r := newErrorRing(-1); r != nil {
		t.Error("expected nil ring for negative size")
	}
}

func TestErrorRing_RecordsTimestamp(t *testing.T) {
	r := newErrorRing(3)

	r.push(errors.New("error1"), ringEpoch)
	r.push(errors.New("error2"), ringEpoch.Add(time.Second))

	records := r.all()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if !records[0].At.Equal(ringEpoch) {
		t.Errorf("expected first record at %v, got %v", ringEpoch, records[0].At)
	}
	if !records[1].At.Equal(ringEpoch.Add(time.Second)) {
		t.Errorf("expected second record one second later, got %v", records[1].At)
	}
}

func TestErrorRing_WrapsAndEvictsOldest(t *testing.T) {
	r := newErrorRing(3)

	for i, msg := range []string{"error1", "error2", "error3", "error4"} {
		r.push(errors.New(msg), ringEpoch.Add(time.Duration(i)*time.Second))
	}

	records := r.all()
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	// error1 should be gone, oldest is now error2
	for i, want := range []string{"error2", "error3", "error4"} {
		if records[i].Err.Error() != want {
			t.Errorf("record %d: expected %s, got %s", i, want, records[i].Err)
		}
	}
}

func TestErrorRing_Clear(t *testing.T) {
	r := newErrorRing(3)

	r.push(errors.New("error1"), ringEpoch)
	r.push(errors.New("error2"), ringEpoch)
	r.clear()

	if records := r.all(); records != nil {
		t.Errorf("expected nil after clear, got %v", records)
	}

	r.push(errors.New("new error"), ringEpoch)
	records := r.all()
	if len(records) != 1 || records[0].Err.Error() != "new error" {
		t.Errorf("expected only the new error after clear+push, got %v", records)
	}
}

func TestErrorRing_SizeOne(t *testing.T) {
	r := newErrorRing(1)

	r.push(errors.New("error1"), ringEpoch)
	r.push(errors.New("error2"), ringEpoch)

	records := r.all()
	if len(records) != 1 || records[0].Err.Error() != "error2" {
		t.Error("expected error2 to replace error1")
	}
}
