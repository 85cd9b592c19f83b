package selectz

import "testing"

func TestLongestIncreasing(t *testing.T) {
	tests := []struct {
		name string
		seq  []int
		want int
	}{
		{"empty", nil, 0},
		{"sorted", []int{0, 1, 2, 3}, 4},
		{"reversed", []int{3, 2, 1, 0}, 1},
		{"rotate", []int{1, 2, 3, 0}, 3},
		{"swap", []int{0, 2, 1, 3}, 3},
		{"mixed", []int{4, 0, 3, 1, 2}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keep := longestIncreasing(tt.seq)
			last := -1
			kept := 0
			for i, k := range keep {
				if !k {
					continue
				}
				if tt.seq[i] <= last {
					t.Errorf("kept subsequence is not increasing at %d", i)
				}
				last = tt.seq[i]
				kept++
			}
			if kept != tt.want {
				t.Errorf("expected %d kept, got %d", tt.want, kept)
			}
		})
	}
}

func TestComputePlan_FromEmpty(t *testing.T) {
	next := OptionSet{opt("1", "A"), opt("2", "B")}
	p := computePlan(Snapshot{}, next, map[string]bool{"2": true}, false)

	if len(p.adds) != 2 || p.adds[0].Index != 0 || p.adds[1].Index != 1 {
		t.Fatalf("unexpected adds %+v", p.adds)
	}
	if len(p.removes) != 0 || len(p.updates) != 0 {
		t.Errorf("expected only adds, got removes %v updates %v", p.removes, p.updates)
	}
	if !p.applySelection || len(p.selection) != 1 || p.selection[0] != "2" {
		t.Errorf("expected selection [2], got %v (apply %v)", p.selection, p.applySelection)
	}
	if len(p.consumed) != 1 || p.consumed[0] != "2" {
		t.Errorf("expected request for 2 consumed, got %v", p.consumed)
	}
	if p.stats.Added != 2 || !p.stats.Selected {
		t.Errorf("unexpected stats %+v", p.stats)
	}
}

func TestComputePlan_Identical(t *testing.T) {
	set := OptionSet{opt("1", "A"), opt("2", "B")}
	p := computePlan(Snapshot{Options: set, Selection: []string{"1"}}, set.Clone(), nil, false)

	if !p.empty() {
		t.Errorf("expected empty plan, got %+v", p)
	}
	if !p.stats.Empty() {
		t.Errorf("expected empty stats, got %+v", p.stats)
	}
	if len(p.selection) != 1 || p.selection[0] != "1" {
		t.Errorf("expected selection kept, got %v", p.selection)
	}
}

func TestComputePlan_ExtraChangeIsUpdate(t *testing.T) {
	prev := Snapshot{Options: OptionSet{{ID: "1", Label: "A", Extra: map[string]any{"flag": "de"}}}}
	next := OptionSet{{ID: "1", Label: "A", Extra: map[string]any{"flag": "at"}}}

	p := computePlan(prev, next, nil, false)

	if len(p.updates) != 1 || p.updates[0].ID != "1" {
		t.Fatalf("expected one update, got %+v", p.updates)
	}
	if p.stats.Updated != 1 {
		t.Errorf("expected 1 updated, got %d", p.stats.Updated)
	}
}

func TestComputePlan_SelectionOfRemovedOptionNotReapplied(t *testing.T) {
	prev := Snapshot{
		Options:   OptionSet{opt("1", "A"), opt("2", "B")},
		Selection: []string{"1", "2"},
	}
	p := computePlan(prev, OptionSet{opt("2", "B")}, nil, false)

	if p.applySelection {
		t.Errorf("expected removal alone to fix the selection, got SetSelection(%v)", p.selection)
	}
	if len(p.selection) != 1 || p.selection[0] != "2" {
		t.Errorf("expected selection [2], got %v", p.selection)
	}
}

func TestComputePlan_MovedSelectedOptionReselected(t *testing.T) {
	prev := Snapshot{
		Options:   OptionSet{opt("1", "A"), opt("2", "B"), opt("3", "C")},
		Selection: []string{"1"},
	}
	p := computePlan(prev, OptionSet{opt("2", "B"), opt("3", "C"), opt("1", "A")}, nil, false)

	if p.stats.Moved != 1 || len(p.removes) != 1 || p.removes[0] != "1" {
		t.Fatalf("expected 1 to move, got removes %v stats %+v", p.removes, p.stats)
	}
	if len(p.adds) != 1 || p.adds[0].Index != 2 {
		t.Errorf("expected 1 re-added at 2, got %+v", p.adds)
	}
	if !p.applySelection {
		t.Error("expected selection to be restored after the move")
	}
}

func TestComputePlan_SelectionSubsetOfOptions(t *testing.T) {
	prev := Snapshot{
		Options:   OptionSet{opt("1", "A"), opt("2", "B")},
		Selection: []string{"1", "2"},
	}
	next := OptionSet{opt("3", "C")}
	p := computePlan(prev, next, map[string]bool{"4": true}, false)

	if len(p.selection) != 0 {
		t.Errorf("expected empty selection, got %v", p.selection)
	}
	if len(p.consumed) != 0 {
		t.Errorf("expected request for absent id kept, got consumed %v", p.consumed)
	}
}

func TestComputePlan_SingleModeKeepsExisting(t *testing.T) {
	prev := Snapshot{
		Options:   OptionSet{opt("1", "A")},
		Selection: []string{"1"},
	}
	next := OptionSet{opt("0", "Z"), opt("1", "A")}
	p := computePlan(prev, next, map[string]bool{"0": true}, true)

	if len(p.selection) != 1 || p.selection[0] != "1" {
		t.Errorf("expected [1], got %v", p.selection)
	}
	if p.applySelection {
		t.Error("expected no SetSelection")
	}
}
