// Package util contains small generic helpers shared by the rest of the
// module.
package util

import (
	"sort"
)

// OrderedKeys returns the keys of m, ordered a particular way. The order is
// guaranteed to be the same on every run.
//
// As of this writing, the order is alphabetical, but this function does not
// guarantee this will always be the case.
func OrderedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// SortBy returns a copy of items sorted by the given less function. The sort
// is stable.
func SortBy[E any](items []E, less func(left, right E) bool) []E {
	sorted := make([]E, len(items))
	copy(sorted, items)

	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})

	return sorted
}

// InSlice returns whether v is in sl.
func InSlice[E comparable](v E, sl []E) bool {
	return SliceIndexOf(v, sl) > -1
}

// SliceIndexOf returns the index of the first occurrence of v in sl, or -1 if
// it is not present.
func SliceIndexOf[E comparable](v E, sl []E) int {
	for i := range sl {
		if sl[i] == v {
			return i
		}
	}
	return -1
}

// SliceRemove returns a copy of sl with every occurrence of v removed.
func SliceRemove[E comparable](v E, sl []E) []E {
	var removed []E
	for i := range sl {
		if sl[i] != v {
			removed = append(removed, sl[i])
		}
	}
	return removed
}

// Filter returns the items in sl for which keep returns true.
func Filter[E any](sl []E, keep func(E) bool) []E {
	var kept []E
	for i := range sl {
		if keep(sl[i]) {
			kept = append(kept, sl[i])
		}
	}
	return kept
}
