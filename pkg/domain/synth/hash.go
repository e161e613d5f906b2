// Package synth builds stable placeholder data for the dashboard.
//
// Every value is derived from a string key through Hash, so the same key
// against the same reference tables always yields the same record, across
// refreshes and process restarts, without storing any assignment.
package synth

// Hash folds the code points of key into an unsigned 32-bit accumulator
// using h = h*31 + r. Arithmetic wraps modulo 2^32. The empty key hashes to 0.
func Hash(key string) uint32 {
	var h uint32
	for _, r := range key {
		h = h*31 + uint32(r)
	}
	return h
}

// Pick selects items[Hash(key) % len(items)]. It reports false when items is
// empty.
func Pick[T any](items []T, key string) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[Hash(key)%uint32(len(items))], true
}
