package completion

import "sort"

// FilterState maps filter categories to enabled flags.
//
// A nil FilterState and an empty non-nil one both exclude nothing and
// report inactive, but they are kept distinct: nil means the presenter
// never sent a state, empty means it sent one with no categories. A
// state whose values are all true excludes nothing yet is active, so an
// empty match surfaces as an explicitly empty list.
type FilterState map[string]bool

// Clone returns a copy. Cloning nil yields nil.
func (fs FilterState) Clone() FilterState {
	if fs == nil {
		return nil
	}
	out := make(FilterState, len(fs))
	for k, v := range fs {
		out[k] = v
	}
	return out
}

// allSame reports whether every value equals v. Vacuously true when empty.
func (fs FilterState) allSame(v bool) bool {
	for _, b := range fs {
		if b != v {
			return false
		}
	}
	return true
}

// Excludes reports whether the state removes items at all. All-on and
// all-off states are treated as no filtering.
func (fs FilterState) Excludes() bool {
	if len(fs) == 0 {
		return false
	}
	return !fs.allSame(true) && !fs.allSame(false)
}

// Active reports whether any category is enabled.
func (fs FilterState) Active() bool {
	for _, b := range fs {
		if b {
			return true
		}
	}
	return false
}

// Allows reports whether item survives the state. An item survives when
// the state excludes nothing or one of its categories is enabled.
func (fs FilterState) Allows(item *Item) bool {
	if !fs.Excludes() {
		return true
	}
	for _, f := range item.Filters {
		if fs[f] {
			return true
		}
	}
	return false
}

// Categories returns the category names in sorted order.
func (fs FilterState) Categories() []string {
	out := make([]string, 0, len(fs))
	for k := range fs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether two states hold the same entries and the same
// nil-ness.
func (fs FilterState) Equal(o FilterState) bool {
	if (fs == nil) != (o == nil) || len(fs) != len(o) {
		return false
	}
	for k, v := range fs {
		if ov, ok := o[k]; !ok || ov != v {
			return false
		}
	}
	return true
}
