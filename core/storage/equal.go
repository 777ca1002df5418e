package storage

// Equal reports whether two flat string maps hold the same key set with
// identical values. It gates every container commit and backend write so
// no-op mutations never propagate as notifications or redundant writes.
// nil and empty maps compare equal.
func Equal(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for key, av := range a {
		bv, ok := b[key]
		if !ok || av != bv {
			return false
		}
	}
	return true
}

// Clone returns a shallow copy of values. A nil map clones to an empty,
// non-nil map so snapshots are always safe to index and mutate.
func Clone(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for key, value := range values {
		out[key] = value
	}
	return out
}
