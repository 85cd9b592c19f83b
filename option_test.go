package selectz

import (
	"errors"
	"testing"
)

func TestOptionSet_Validate(t *testing.T) {
	tests := []struct {
		name    string
		set     OptionSet
		wantErr bool
		index   int
	}{
		{"empty", OptionSet{}, false, 0},
		{"valid", OptionSet{opt("1", "A"), opt("2", "")}, false, 0},
		{"duplicate", OptionSet{opt("1", "A"), opt("2", "B"), opt("1", "C")}, true, 2},
		{"missing id", OptionSet{opt("1", "A"), opt("", "B")}, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.set.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			var malformed *MalformedOptionSetError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedOptionSetError, got %T", err)
			}
			if malformed.Index != tt.index {
				t.Errorf("expected index %d, got %d", tt.index, malformed.Index)
			}
		})
	}
}

func TestOptionSet_Accessors(t *testing.T) {
	set := OptionSet{opt("a", "A"), opt("b", "B")}

	ids := set.IDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("unexpected ids %v", ids)
	}
	if idx := set.Index(); idx["b"] != 1 {
		t.Errorf("expected b at 1, got %d", idx["b"])
	}
	if o, ok := set.Get("b"); !ok || o.Label != "B" {
		t.Errorf("expected to find b, got %+v %v", o, ok)
	}
	if _, ok := set.Get("z"); ok {
		t.Error("expected missing id")
	}
}

func TestOptionSet_Equal(t *testing.T) {
	a := OptionSet{opt("1", "A"), opt("2", "B")}

	if !a.Equal(a.Clone()) {
		t.Error("expected clone to be equal")
	}
	if a.Equal(OptionSet{opt("2", "B"), opt("1", "A")}) {
		t.Error("expected order to matter")
	}
	if a.Equal(OptionSet{opt("1", "A"), opt("2", "b")}) {
		t.Error("expected label to matter")
	}
	if a.Equal(OptionSet{opt("1", "A")}) {
		t.Error("expected length to matter")
	}
}

func TestOptionSet_CloneIsIndependent(t *testing.T) {
	a := OptionSet{opt("1", "A")}
	b := a.Clone()
	b[0].Label = "changed"
	if a[0].Label != "A" {
		t.Error("expected clone not to alias the original")
	}
	if OptionSet(nil).Clone() != nil {
		t.Error("expected nil clone of nil set")
	}
}

func TestNormalizeSelection(t *testing.T) {
	set := OptionSet{opt("a", ""), opt("b", ""), opt("c", "")}

	got := normalizeSelection(set, []string{"c", "x", "a", "c"})
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("expected [a c], got %v", got)
	}
	if normalizeSelection(set, nil) != nil {
		t.Error("expected nil for empty selection")
	}
}

func TestSameSelection(t *testing.T) {
	if !sameSelection([]string{"a", "b"}, []string{"b", "a"}) {
		t.Error("expected order to be ignored")
	}
	if sameSelection([]string{"a"}, []string{"b"}) {
		t.Error("expected different ids to differ")
	}
	if !sameSelection(nil, []string{}) {
		t.Error("expected nil and empty to match")
	}
}
