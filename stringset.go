package fieldset

import "sort"

// StringSet is the set representation used for selections and path
// vocabularies. The zero value (nil) behaves like an empty set for reads.
type StringSet map[string]struct{}

// NewStringSet builds a set from the given elements.
func NewStringSet(elements ...string) StringSet {
	s := make(StringSet, len(elements))
	for _, e := range elements {
		s[e] = struct{}{}
	}
	return s
}

// Has reports whether the element is in the set.
func (s StringSet) Has(element string) bool {
	_, ok := s[element]
	return ok
}

// Add inserts the element into the set.
func (s StringSet) Add(element string) {
	s[element] = struct{}{}
}

// Intersect returns a new set with the elements present in both sets.
func (s StringSet) Intersect(other StringSet) StringSet {
	result := make(StringSet)
	for e := range s {
		if other.Has(e) {
			result.Add(e)
		}
	}
	return result
}

// Diff returns a new set with the elements of s not present in other.
func (s StringSet) Diff(other StringSet) StringSet {
	result := make(StringSet)
	for e := range s {
		if !other.Has(e) {
			result.Add(e)
		}
	}
	return result
}

// Sorted returns the elements in ascending order. Used wherever the set
// must surface deterministically (error messages, tests).
func (s StringSet) Sorted() []string {
	elements := make([]string, 0, len(s))
	for e := range s {
		elements = append(elements, e)
	}
	sort.Strings(elements)
	return elements
}
