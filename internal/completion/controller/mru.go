package controller

import "sync/atomic"

// MRU is a bounded list of recently committed display texts, most recent
// last, without duplicates. Readers get an immutable slice; writers
// replace it with a compare-and-swap loop.
type MRU struct {
	capacity int
	items    atomic.Pointer[[]string]
}

// NewMRU creates an empty list holding at most capacity names.
func NewMRU(capacity int) *MRU {
	if capacity <= 0 {
		capacity = DefaultMRUCapacity
	}
	m := &MRU{capacity: capacity}
	empty := []string{}
	m.items.Store(&empty)
	return m
}

// Items returns the names, most recent last. The slice must not be modified.
func (m *MRU) Items() []string {
	return *m.items.Load()
}

// Add records name as the most recent entry, moving it to the end if it
// is already present and evicting the oldest entry when full.
func (m *MRU) Add(name string) {
	for {
		old := m.items.Load()
		next := make([]string, 0, m.capacity)
		for _, n := range *old {
			if n != name {
				next = append(next, n)
			}
		}
		if len(next) >= m.capacity {
			next = next[len(next)-m.capacity+1:]
		}
		next = append(next, name)
		if m.items.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Len returns the number of names.
func (m *MRU) Len() int {
	return len(*m.items.Load())
}
