package domain

import (
	"sort"

	"github.com/google/uuid"
)

// Selection is the set of lead IDs currently selected on the admin
// dashboard. It is transient UI state owned by a single dashboard view,
// never persisted and never shared between requests except through the
// posted form.
//
// Invariant: 0 <= Count() <= number of listed leads, provided callers only
// toggle IDs that appear in the listing.
type Selection struct {
	ids map[uuid.UUID]bool
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[uuid.UUID]bool)}
}

// SelectionOf creates a selection containing the given IDs.
// Duplicates collapse to a single membership.
func SelectionOf(ids ...uuid.UUID) *Selection {
	s := NewSelection()
	for _, id := range ids {
		s.ids[id] = true
	}
	return s
}

// ToggleOne flips membership of a single lead ID.
func (s *Selection) ToggleOne(id uuid.UUID) {
	if s.ids[id] {
		delete(s.ids, id)
	} else {
		s.ids[id] = true
	}
}

// ToggleAll implements the header checkbox: if every ID in all is already
// selected the selection is cleared, otherwise it becomes exactly all.
func (s *Selection) ToggleAll(all []uuid.UUID) {
	if s.containsAll(all) && len(all) > 0 {
		s.Clear()
		return
	}
	s.ids = make(map[uuid.UUID]bool, len(all))
	for _, id := range all {
		s.ids[id] = true
	}
}

func (s *Selection) containsAll(all []uuid.UUID) bool {
	for _, id := range all {
		if !s.ids[id] {
			return false
		}
	}
	return true
}

// Contains reports membership.
func (s *Selection) Contains(id uuid.UUID) bool {
	return s.ids[id]
}

// Count returns the selection cardinality.
func (s *Selection) Count() int {
	return len(s.ids)
}

// IsEmpty reports whether nothing is selected.
func (s *Selection) IsEmpty() bool {
	return len(s.ids) == 0
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = make(map[uuid.UUID]bool)
}

// IDs returns the selected IDs in a stable order, for use as a bulk-update
// filter and in log output.
func (s *Selection) IDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}
