package hitplot

import (
	"math"
	"slices"
	"testing"
)

func constant(v any) func() any {
	return func() any { return v }
}

func TestDiffCacheCheck(t *testing.T) {
	c := NewDiffCache[string]()

	if !c.Check("a", "x", constant(1.0)) {
		t.Error("cold check should report a change")
	}
	if c.Check("a", "x", constant(1.0)) {
		t.Error("repeat check with the same value should not report a change")
	}
	if !c.Check("a", "x", constant(2.0)) {
		t.Error("check with a new value should report a change")
	}
	if !c.Check("a", "y", constant(2.0)) {
		t.Error("first check of another field should report a change")
	}
	if !c.Check("b", "x", constant(2.0)) {
		t.Error("first check of another key should report a change")
	}
}

func TestDiffCacheDelete(t *testing.T) {
	c := NewDiffCache[int]()
	c.Check(7, "x", constant("v"))
	c.Check(7, "y", constant("v"))

	c.Delete(7)
	if c.Has(7) {
		t.Error("Has(7) should be false after Delete")
	}
	if !c.Check(7, "x", constant("v")) {
		t.Error("check after Delete should report a change")
	}
	// Deleting a missing key is a no-op.
	c.Delete(99)
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestDiffCacheDiffEvaluatesAllFields(t *testing.T) {
	c := NewDiffCache[int]()
	calls := 0
	counted := func(v any) func() any {
		return func() any {
			calls++
			return v
		}
	}

	c.Diff(1, Field{"a", counted(1)}, Field{"b", counted(2)})
	calls = 0

	// The first field changes; the second must still be evaluated and cached.
	if !c.Diff(1, Field{"a", counted(10)}, Field{"b", counted(3)}) {
		t.Error("Diff should report a change")
	}
	if calls != 2 {
		t.Errorf("Diff evaluated %d fields, want 2", calls)
	}
	if c.Check(1, "b", constant(3)) {
		t.Error("second field's cache was not refreshed")
	}
	if c.Diff(1, Field{"a", constant(10)}, Field{"b", constant(3)}) {
		t.Error("Diff with unchanged values should report no change")
	}
}

func TestDiffCacheValueComparison(t *testing.T) {
	tests := []struct {
		name    string
		a, b    any
		changed bool
	}{
		{"equal floats", 1.5, 1.5, false},
		{"nan is stable", math.NaN(), math.NaN(), false},
		{"nan to number", math.NaN(), 1.0, true},
		{"different types", 1, 1.0, true},
		{"equal strings", "circle", "circle", false},
		{"equal slices", []float64{1, 2}, []float64{1, 2}, false},
		{"different slices", []float64{1, 2}, []float64{1, 3}, true},
		{"nil to nil", nil, nil, false},
		{"nil to value", nil, 0, true},
		{"shape kinds", ShapeCircle, ShapeSquare, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewDiffCache[int]()
			c.Check(0, "f", constant(tt.a))
			if got := c.Check(0, "f", constant(tt.b)); got != tt.changed {
				t.Errorf("Check(%v -> %v) = %v, want %v", tt.a, tt.b, got, tt.changed)
			}
		})
	}
}

func TestDiffCacheKeysAndReset(t *testing.T) {
	c := NewDiffCache[int]()
	for i := range 3 {
		c.Check(i, "x", constant(i))
	}
	keys := c.Keys(nil)
	slices.Sort(keys)
	if !slices.Equal(keys, []int{0, 1, 2}) {
		t.Errorf("Keys() = %v, want [0 1 2]", keys)
	}

	c.Reset()
	if c.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", c.Len())
	}
	if !c.Check(0, "x", constant(0)) {
		t.Error("check after Reset should report a change")
	}
}
