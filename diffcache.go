package hitplot

import (
	"math"
	"reflect"
)

// DiffCache remembers the last observed value of named fields per entity so
// an update pass can skip entities whose tracked fields did not change.
//
// The cache updates itself on every check, so a diff always compares against
// the previous check, not the previous render. Callers must run every tracked
// field each pass and must Delete keys when their entity leaves, otherwise a
// reused key compares against stale data.
type DiffCache[K comparable] struct {
	entries map[K]map[string]any
}

// Field is one tracked value for DiffCache.Diff.
type Field struct {
	Name    string
	Compute func() any
}

// NewDiffCache creates an empty cache.
func NewDiffCache[K comparable]() *DiffCache[K] {
	return &DiffCache[K]{entries: make(map[K]map[string]any)}
}

// Check computes the field's value, stores it, and reports whether it
// differs from the cached one. A missing entry counts as changed.
func (c *DiffCache[K]) Check(key K, field string, compute func() any) bool {
	entry := c.entries[key]
	if entry == nil {
		entry = make(map[string]any)
		c.entries[key] = entry
	}
	val := compute()
	old, ok := entry[field]
	entry[field] = val
	return !ok || !sameValue(old, val)
}

// Diff checks every field and reports whether any changed. All fields are
// evaluated even after the first change so each one's cache stays current.
func (c *DiffCache[K]) Diff(key K, fields ...Field) bool {
	changed := false
	for _, f := range fields {
		if c.Check(key, f.Name, f.Compute) {
			changed = true
		}
	}
	return changed
}

// Delete drops every cached field for key.
func (c *DiffCache[K]) Delete(key K) {
	delete(c.entries, key)
}

// Has reports whether key has any cached field.
func (c *DiffCache[K]) Has(key K) bool {
	_, ok := c.entries[key]
	return ok
}

// Keys appends every cached key to buf and returns it.
func (c *DiffCache[K]) Keys(buf []K) []K {
	for k := range c.entries {
		buf = append(buf, k)
	}
	return buf
}

// Len returns the number of cached keys.
func (c *DiffCache[K]) Len() int {
	return len(c.entries)
}

// Reset drops the whole cache.
func (c *DiffCache[K]) Reset() {
	clear(c.entries)
}

// sameValue compares cached values. NaN equals NaN so a persistently missing
// coordinate is not reported as a change on every pass.
func sameValue(a, b any) bool {
	if fa, ok := a.(float64); ok {
		if fb, ok := b.(float64); ok {
			return fa == fb || (math.IsNaN(fa) && math.IsNaN(fb))
		}
		return false
	}
	if a == nil || b == nil {
		return a == b
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
