package sharedprefs

import "slices"

// Set is an unordered collection of distinct values.
type Set[T comparable] map[T]struct{}

// NewSet returns a set holding values.
func NewSet[T comparable](values ...T) Set[T] {
	s := make(Set[T], len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// EmptySet returns a set with no elements, the default for set accessors.
func EmptySet[T comparable]() Set[T] {
	return Set[T]{}
}

// Add inserts v.
func (s Set[T]) Add(v T) {
	s[v] = struct{}{}
}

// Has reports whether v is in the set.
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Len returns the number of elements.
func (s Set[T]) Len() int {
	return len(s)
}

// Sorted returns the elements ordered by compare.
func (s Set[T]) Sorted(compare func(a, b T) int) []T {
	out := s.Values()
	slices.SortFunc(out, compare)
	return out
}

// Values returns the elements in no particular order.
func (s Set[T]) Values() []T {
	out := make([]T, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	return out
}
