// Package ds provides small generic data structures shared across the
// module.
package ds

type StringSet = Set[string]

// Set is an insertion-ordered set: O(1) membership plus deterministic
// iteration order. The registry tracks type and instance names with it so
// listings come back in registration order.
type Set[T comparable] struct {
	items map[T]struct{}
	order []T
}

// NewSet creates a set seeded with the given items, duplicates collapsed.
func NewSet[T comparable](items ...T) *Set[T] {
	s := &Set[T]{items: make(map[T]struct{}, len(items))}
	for _, v := range items {
		s.Add(v)
	}
	return s
}

// NewStringSet creates a string set seeded with the given items.
func NewStringSet(items ...string) *StringSet {
	return NewSet(items...)
}

// Add appends v unless it is already present.
func (s *Set[T]) Add(v T) {
	if _, ok := s.items[v]; ok {
		return
	}
	s.items[v] = struct{}{}
	s.order = append(s.order, v)
}

// Remove deletes v. The order of the remaining elements is unchanged; this
// is O(n) in the set size.
func (s *Set[T]) Remove(v T) {
	if _, ok := s.items[v]; !ok {
		return
	}
	delete(s.items, v)
	for i, cur := range s.order {
		if cur == v {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// Contains reports whether v is present.
func (s *Set[T]) Contains(v T) bool {
	_, ok := s.items[v]
	return ok
}

// Len returns the number of elements.
func (s *Set[T]) Len() int { return len(s.items) }

// Values returns a copy of the elements in insertion order.
func (s *Set[T]) Values() []T {
	out := make([]T, len(s.order))
	copy(out, s.order)
	return out
}
