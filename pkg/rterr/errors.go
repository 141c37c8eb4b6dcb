// Package rterr defines the runtime's error taxonomy (spec.md §7): a fixed
// set of error kinds, one sentinel per kind, always wrapped with %w so
// callers can use errors.Is instead of string matching. No operation in
// this module panics on caller misuse. pkg/rtcheck reports refcount
// invariant violations as values and errors, not panics.
package rterr

import "errors"

var (
	// ErrInvalidSize is returned by alloc when size < 0.
	ErrInvalidSize = errors.New("invalid size")
	// ErrInvalidHandle is returned when an operand is not tagged HANDLE,
	// or its allocation id is not present in the heap.
	ErrInvalidHandle = errors.New("invalid handle")
	// ErrIndexOutOfBounds is returned by read/write when the index is
	// outside [0, len).
	ErrIndexOutOfBounds = errors.New("index out of bounds")
	// ErrEmptyPop is returned by pop on an empty array.
	ErrEmptyPop = errors.New("pop from empty array")
	// ErrUndefinedVariable is returned by erase targeting a missing
	// variable slot.
	ErrUndefinedVariable = errors.New("undefined variable")
	// ErrUndefinedFunction is returned by eraseFunction targeting a
	// missing function slot.
	ErrUndefinedFunction = errors.New("undefined function")
	// ErrTypeMismatch is returned by an arithmetic/logical operator
	// given a non-INTEGER operand.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrArithmeticFault is returned by integer divide or modulo by
	// zero.
	ErrArithmeticFault = errors.New("arithmetic fault")
)
