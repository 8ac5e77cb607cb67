package sets

import "sort"

// Set is a simple hash set for string keys with deterministic extraction.
// Intentionally minimal: no reflection, no iteration helpers beyond Sorted.
// Kept internal to avoid committing to external API stability pre-1.0.
type Set map[string]struct{}

// New creates a set pre-populated with the provided values.
func New(vals ...string) Set {
	s := make(Set, len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts value into the set. Reports whether the value was absent,
// which lets callers emit first-occurrence events exactly once.
func (s Set) Add(v string) bool {
	if _, ok := s[v]; ok {
		return false
	}
	s[v] = struct{}{}
	return true
}

// Has returns true if v is present.
func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Delete removes v if present.
func (s Set) Delete(v string) { delete(s, v) }

// Sorted returns the members in lexical order. Map iteration order is
// randomized; every user-visible listing goes through this.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
