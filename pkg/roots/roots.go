// Package roots implements TLC's root set: named variable slots and named
// function slots (spec.md §3/§4.D). Only variable slots are GC roots;
// function values are opaque and never scanned.
package roots

import "github.com/barnii77/tlcrt/pkg/value"

// Set holds the two root-set maps. Insertion order is irrelevant per
// spec.md §3, so both are plain maps rather than an ordered structure.
type Set struct {
	vars  map[int64]value.Value
	funcs map[int64]any
}

// New creates an empty root set.
func New() *Set {
	return &Set{
		vars:  make(map[int64]value.Value),
		funcs: make(map[int64]any),
	}
}

// GetVar returns the value stored in a variable slot and whether it is
// defined.
func (s *Set) GetVar(id int64) (value.Value, bool) {
	v, ok := s.vars[id]
	return v, ok
}

// SetVar stores v into a variable slot, defining it if it was not already.
func (s *Set) SetVar(id int64, v value.Value) {
	s.vars[id] = v
}

// DeleteVar removes a variable slot.
func (s *Set) DeleteVar(id int64) {
	delete(s.vars, id)
}

// HasVar reports whether a variable slot is defined.
func (s *Set) HasVar(id int64) bool {
	_, ok := s.vars[id]
	return ok
}

// ForEachVar calls fn once per defined variable slot. Iteration order is
// unspecified. Used by package gc to seed the major-GC frontier; it is the
// only reader of the root set that GC ever needs.
func (s *Set) ForEachVar(fn func(id int64, v value.Value)) {
	for id, v := range s.vars {
		fn(id, v)
	}
}

// GetFunc returns the function value stored in a function slot and
// whether it is defined.
func (s *Set) GetFunc(id int64) (any, bool) {
	fn, ok := s.funcs[id]
	return fn, ok
}

// SetFunc stores fn into a function slot, defining it if it was not
// already.
func (s *Set) SetFunc(id int64, fn any) {
	s.funcs[id] = fn
}

// DeleteFunc removes a function slot.
func (s *Set) DeleteFunc(id int64) {
	delete(s.funcs, id)
}

// HasFunc reports whether a function slot is defined.
func (s *Set) HasFunc(id int64) bool {
	_, ok := s.funcs[id]
	return ok
}
