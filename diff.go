package selectz

// placement is an option inserted at a position of the new set.
type placement struct {
	Option Option
	Index  int
}

// Stats counts the widget mutations of one reconciliation.
type Stats struct {
	Added    int
	Removed  int
	Updated  int
	Moved    int
	Selected bool
}

// Empty reports whether the reconciliation touched the widget at all.
func (s Stats) Empty() bool {
	return s.Added == 0 && s.Removed == 0 && s.Updated == 0 && s.Moved == 0 && !s.Selected
}

// plan is the minimal mutation list that turns the widget from one snapshot
// into the next. Operations apply in field order: updates, removes, adds,
// then the selection.
type plan struct {
	updates   []Option
	removes   []string
	adds      []placement
	selection []string
	// applySelection is set when the widget's selection after removals
	// differs from the desired selection.
	applySelection bool
	// consumed lists requested IDs satisfied by this plan.
	consumed []string
	stats    Stats
}

// empty reports whether the plan issues no widget calls.
func (p plan) empty() bool {
	return len(p.updates) == 0 && len(p.removes) == 0 && len(p.adds) == 0 && !p.applySelection
}

// computePlan diffs next against prev. requested holds IDs the caller asked to
// select when they appear; single limits the selection to one ID.
func computePlan(prev Snapshot, next OptionSet, requested map[string]bool, single bool) plan {
	var p plan

	oldIndex := prev.Options.Index()
	newIndex := next.Index()

	// Kept IDs in old order, with their positions in the new set.
	var keptIDs []string
	var keptPos []int
	for _, opt := range prev.Options {
		if j, ok := newIndex[opt.ID]; ok {
			keptIDs = append(keptIDs, opt.ID)
			keptPos = append(keptPos, j)
		}
	}

	moved := make(map[string]bool)
	stable := longestIncreasing(keptPos)
	for i, id := range keptIDs {
		if !stable[i] {
			moved[id] = true
		}
	}

	// Relabels for kept options that stay in place.
	for _, id := range keptIDs {
		if moved[id] {
			continue
		}
		before := prev.Options[oldIndex[id]]
		after := next[newIndex[id]]
		if !before.sameContent(after) {
			p.updates = append(p.updates, after)
		}
	}

	// Removals: dropped options first, then options that must move.
	for _, opt := range prev.Options {
		if _, ok := newIndex[opt.ID]; !ok {
			p.removes = append(p.removes, opt.ID)
			p.stats.Removed++
		}
	}
	for _, id := range keptIDs {
		if moved[id] {
			p.removes = append(p.removes, id)
			p.stats.Moved++
		}
	}

	// Insertions in new order, at their final index.
	added := make(map[string]bool)
	for j, opt := range next {
		_, kept := oldIndex[opt.ID]
		switch {
		case !kept:
			added[opt.ID] = true
			p.adds = append(p.adds, placement{Option: opt, Index: j})
			p.stats.Added++
		case moved[opt.ID]:
			p.adds = append(p.adds, placement{Option: opt, Index: j})
		}
	}
	p.stats.Updated = len(p.updates)

	// Selection: surviving selection plus requested IDs that just appeared.
	existing := normalizeSelection(next, prev.Selection)
	var fresh []string
	for _, opt := range next {
		if added[opt.ID] && requested[opt.ID] {
			fresh = append(fresh, opt.ID)
			p.consumed = append(p.consumed, opt.ID)
		}
	}
	desired := normalizeSelection(next, append(append([]string(nil), existing...), fresh...))
	if single && len(desired) > 1 {
		if len(existing) > 0 {
			desired = existing[:1]
		} else {
			desired = desired[:1]
		}
	}
	p.selection = desired

	// What the widget holds once removals have deselected their options.
	removed := make(map[string]bool, len(p.removes))
	for _, id := range p.removes {
		removed[id] = true
	}
	var afterRemoval []string
	for _, id := range prev.Selection {
		if !removed[id] {
			afterRemoval = append(afterRemoval, id)
		}
	}
	p.applySelection = !sameSelection(afterRemoval, desired)
	p.stats.Selected = p.applySelection

	return p
}

// longestIncreasing marks the members of one longest strictly increasing
// subsequence of seq. Items outside it are the minimal set that must move to
// restore order.
func longestIncreasing(seq []int) []bool {
	keep := make([]bool, len(seq))
	if len(seq) == 0 {
		return keep
	}

	// tails[k] is the index in seq of the smallest tail of an increasing
	// run of length k+1; prev links each element to its predecessor.
	tails := make([]int, 0, len(seq))
	prev := make([]int, len(seq))
	for i, v := range seq {
		lo, hi := 0, len(tails)
		for lo < hi {
			mid := (lo + hi) / 2
			if seq[tails[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo > 0 {
			prev[i] = tails[lo-1]
		} else {
			prev[i] = -1
		}
		if lo == len(tails) {
			tails = append(tails, i)
		} else {
			tails[lo] = i
		}
	}

	for i := tails[len(tails)-1]; i >= 0; i = prev[i] {
		keep[i] = true
	}
	return keep
}
