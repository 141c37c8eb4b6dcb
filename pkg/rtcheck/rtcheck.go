// Package rtcheck provides an independent auditor over a running
// tlcrt.Context: it recomputes the refcount every live handle should have
// by walking the root set and every heap object's outgoing cells, and
// reports any mismatch against the refcount the collectors actually
// maintain.
//
// Grounded on the teacher's pkg/memory/constraint.go (ConstraintContext's
// violation log and Free/AssertOnError pattern) — adapted here from
// tracking manual free-list violations to verifying spec.md's Invariant 1
// (a live handle's refcount equals the number of reference slots holding
// it).
package rtcheck

import (
	"fmt"

	"github.com/barnii77/tlcrt/pkg/tlcrt"
	"github.com/barnii77/tlcrt/pkg/value"
)

// Violation describes one handle whose maintained refcount disagrees
// with the number of reference slots actually pointing at it.
type Violation struct {
	AllocID  uint64
	Expected int32
	Actual   int32
}

func (v Violation) String() string {
	return fmt.Sprintf("alloc id %d: expected refcount %d, got %d", v.AllocID, v.Expected, v.Actual)
}

// Checker accumulates violations across one or more verification passes.
type Checker struct {
	violations []Violation
}

// NewChecker creates an empty Checker.
func NewChecker() *Checker {
	return &Checker{}
}

// Violations returns every violation recorded so far.
func (c *Checker) Violations() []Violation {
	return c.violations
}

// Clear discards all recorded violations.
func (c *Checker) Clear() {
	c.violations = nil
}

// VerifyRefCounts walks ctx's root set and every heap object's cells,
// tallying how many reference slots point at each allocation id, then
// compares the tally against the refcount the running Context maintains.
// It returns true if no violations were found; violations (if any) are
// also appended to the Checker's log for later inspection.
func (c *Checker) VerifyRefCounts(ctx *tlcrt.Context) bool {
	if !tlcrt.RefCountingEnabled() {
		return true
	}
	expected := make(map[uint64]int32)
	tally := func(v value.Value) {
		if v.IsHandle() {
			expected[v.AllocID()]++
		}
	}

	ctx.ForEachRootVar(func(_ int64, v value.Value) {
		tally(v)
	})
	ctx.ForEachHeapObject(func(_ uint64, _ int32, cells []value.Value) {
		for _, cell := range cells {
			tally(cell)
		}
	})

	clean := true
	ctx.ForEachHeapObject(func(id uint64, actual int32, _ []value.Value) {
		want := expected[id]
		if want != actual {
			clean = false
			c.violations = append(c.violations, Violation{AllocID: id, Expected: want, Actual: actual})
		}
	})
	return clean
}

// AssertClean runs VerifyRefCounts and returns an error describing every
// violation found, or nil if the heap is consistent.
func (c *Checker) AssertClean(ctx *tlcrt.Context) error {
	if c.VerifyRefCounts(ctx) {
		return nil
	}
	return fmt.Errorf("rtcheck: %d refcount violation(s): %v", len(c.violations), c.violations)
}
