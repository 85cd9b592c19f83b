package selectz

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance.
var validate = validator.New()

// Option is a single entry in a widget's option list.
// Identity is by ID; Label and Extra may change without changing identity.
type Option struct {
	ID    string `json:"id" yaml:"id" validate:"required"`
	Label string `json:"label" yaml:"label"`
	Extra any    `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// sameContent reports whether two options with the same ID render identically.
func (o Option) sameContent(other Option) bool {
	return o.Label == other.Label && reflect.DeepEqual(o.Extra, other.Extra)
}

// OptionSet is an ordered list of options with unique IDs.
// Order is significant and drives the display order in the widget.
type OptionSet []Option

// Validate checks every option's struct tags and rejects duplicate IDs.
func (s OptionSet) Validate() error {
	seen := make(map[string]int, len(s))
	for i, opt := range s {
		if err := validate.Struct(opt); err != nil {
			return &MalformedOptionSetError{Index: i, ID: opt.ID, Reason: err.Error()}
		}
		if first, dup := seen[opt.ID]; dup {
			return &MalformedOptionSetError{
				Index:  i,
				ID:     opt.ID,
				Reason: fmt.Sprintf("duplicate id (first seen at index %d)", first),
			}
		}
		seen[opt.ID] = i
	}
	return nil
}

// IDs returns the option IDs in order.
func (s OptionSet) IDs() []string {
	ids := make([]string, len(s))
	for i, opt := range s {
		ids[i] = opt.ID
	}
	return ids
}

// Index returns the position of each ID in the set.
func (s OptionSet) Index() map[string]int {
	idx := make(map[string]int, len(s))
	for i, opt := range s {
		idx[opt.ID] = i
	}
	return idx
}

// Get returns the option with the given ID.
func (s OptionSet) Get(id string) (Option, bool) {
	for _, opt := range s {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// Equal reports whether both sets hold the same options in the same order.
func (s OptionSet) Equal(other OptionSet) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i].ID != other[i].ID || !s[i].sameContent(other[i]) {
			return false
		}
	}
	return true
}

// Clone returns a shallow copy of the set.
func (s OptionSet) Clone() OptionSet {
	if s == nil {
		return nil
	}
	out := make(OptionSet, len(s))
	copy(out, s)
	return out
}

// Snapshot is the controller's last applied widget state.
type Snapshot struct {
	Options   OptionSet
	Selection []string
}

// clone copies the snapshot so callers cannot alias controller state.
func (s Snapshot) clone() Snapshot {
	return Snapshot{
		Options:   s.Options.Clone(),
		Selection: append([]string(nil), s.Selection...),
	}
}

// normalizeSelection keeps only IDs present in the set, ordered by the set,
// without duplicates.
func normalizeSelection(set OptionSet, ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []string
	for _, opt := range set {
		if want[opt.ID] {
			out = append(out, opt.ID)
		}
	}
	return out
}

// sameSelection compares two selections as sets.
func sameSelection(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, id := range a {
		seen[id]++
	}
	for _, id := range b {
		if seen[id] == 0 {
			return false
		}
		seen[id]--
	}
	return true
}
