// Package value defines TLC's tagged runtime datum: a plain 64-bit payload
// that is either a signed integer or a heap allocation id. Values are
// copied freely; nothing in this package touches a refcount or a heap —
// that only happens where a Value is stored into a reference slot, which
// is the concern of package tlcrt.
package value

import (
	"fmt"

	"github.com/barnii77/tlcrt/pkg/rterr"
)

// Tag identifies what payload a Value carries.
type Tag uint8

const (
	// Integer is the zero value, so a zeroed Value reads as INTEGER(0).
	Integer Tag = iota
	Handle
)

func (t Tag) String() string {
	switch t {
	case Integer:
		return "INTEGER"
	case Handle:
		return "HANDLE"
	default:
		return fmt.Sprintf("Tag(%d)", uint8(t))
	}
}

// Value is TLC's tagged 64-bit datum: (tag, payload).
//
// For Integer the payload is a signed 64-bit integer stored bit-for-bit.
// For Handle the payload is an allocation id (see package heap). The zero
// Value is INTEGER(0).
type Value struct {
	Tag     Tag
	payload uint64
}

// Int constructs an INTEGER value.
func Int(i int64) Value {
	return Value{Tag: Integer, payload: uint64(i)}
}

// AsInt returns the payload interpreted as a signed integer, regardless of
// tag. Callers that care about the tag should check IsInteger first.
func (v Value) AsInt() int64 {
	return int64(v.payload)
}

// FromHandle constructs a HANDLE value from a raw allocation id. It does
// not check that id names a live heap object.
func FromHandle(id uint64) Value {
	return Value{Tag: Handle, payload: id}
}

// AllocID returns the payload interpreted as an allocation id, regardless
// of tag. Callers that care about the tag should check IsHandle first.
func (v Value) AllocID() uint64 {
	return v.payload
}

// IsInteger reports whether v is tagged INTEGER.
func (v Value) IsInteger() bool { return v.Tag == Integer }

// IsHandle reports whether v is tagged HANDLE.
func (v Value) IsHandle() bool { return v.Tag == Handle }

// Equal compares two values by tag and payload; it does not dereference
// handles.
func (v Value) Equal(o Value) bool {
	return v.Tag == o.Tag && v.payload == o.payload
}

func (v Value) String() string {
	switch v.Tag {
	case Integer:
		return fmt.Sprintf("%d", v.AsInt())
	case Handle:
		return fmt.Sprintf("#<handle %d>", v.AllocID())
	default:
		return "?"
	}
}

func bothInt(a, b Value) error {
	if !a.IsInteger() || !b.IsInteger() {
		return fmt.Errorf("%w: expected two INTEGER operands, got %s and %s", rterr.ErrTypeMismatch, a.Tag, b.Tag)
	}
	return nil
}

// Add returns a + b. Both operands must be INTEGER.
func Add(a, b Value) (Value, error) {
	if err := bothInt(a, b); err != nil {
		return Value{}, err
	}
	return Int(a.AsInt() + b.AsInt()), nil
}

// Sub returns a - b. Both operands must be INTEGER.
func Sub(a, b Value) (Value, error) {
	if err := bothInt(a, b); err != nil {
		return Value{}, err
	}
	return Int(a.AsInt() - b.AsInt()), nil
}

// Mul returns a * b. Both operands must be INTEGER.
func Mul(a, b Value) (Value, error) {
	if err := bothInt(a, b); err != nil {
		return Value{}, err
	}
	return Int(a.AsInt() * b.AsInt()), nil
}

// Div returns a / b (truncating). Both operands must be INTEGER; b == 0
// raises ArithmeticFault.
func Div(a, b Value) (Value, error) {
	if err := bothInt(a, b); err != nil {
		return Value{}, err
	}
	if b.AsInt() == 0 {
		return Value{}, fmt.Errorf("%w: division by zero", rterr.ErrArithmeticFault)
	}
	return Int(a.AsInt() / b.AsInt()), nil
}

// Mod returns a % b. Both operands must be INTEGER; b == 0 raises
// ArithmeticFault.
func Mod(a, b Value) (Value, error) {
	if err := bothInt(a, b); err != nil {
		return Value{}, err
	}
	if b.AsInt() == 0 {
		return Value{}, fmt.Errorf("%w: modulo by zero", rterr.ErrArithmeticFault)
	}
	return Int(a.AsInt() % b.AsInt()), nil
}

// And returns the bitwise AND of a and b. Both operands must be INTEGER.
func And(a, b Value) (Value, error) {
	if err := bothInt(a, b); err != nil {
		return Value{}, err
	}
	return Int(a.AsInt() & b.AsInt()), nil
}

// Or returns the bitwise OR of a and b. Both operands must be INTEGER.
func Or(a, b Value) (Value, error) {
	if err := bothInt(a, b); err != nil {
		return Value{}, err
	}
	return Int(a.AsInt() | b.AsInt()), nil
}

// Xor returns the bitwise XOR of a and b. Both operands must be INTEGER.
func Xor(a, b Value) (Value, error) {
	if err := bothInt(a, b); err != nil {
		return Value{}, err
	}
	return Int(a.AsInt() ^ b.AsInt()), nil
}

func truthy(v Value) bool { return v.AsInt() != 0 }

// Land is logical &&: 1 if both operands are non-zero, else 0. Both
// operands must be INTEGER.
func Land(a, b Value) (Value, error) {
	if err := bothInt(a, b); err != nil {
		return Value{}, err
	}
	return boolInt(truthy(a) && truthy(b)), nil
}

// Lor is logical ||: 1 if either operand is non-zero, else 0. Both
// operands must be INTEGER.
func Lor(a, b Value) (Value, error) {
	if err := bothInt(a, b); err != nil {
		return Value{}, err
	}
	return boolInt(truthy(a) || truthy(b)), nil
}

// Lt returns 1 if a < b, else 0. Both operands must be INTEGER.
func Lt(a, b Value) (Value, error) {
	if err := bothInt(a, b); err != nil {
		return Value{}, err
	}
	return boolInt(a.AsInt() < b.AsInt()), nil
}

// Gt returns 1 if a > b, else 0. Both operands must be INTEGER.
func Gt(a, b Value) (Value, error) {
	if err := bothInt(a, b); err != nil {
		return Value{}, err
	}
	return boolInt(a.AsInt() > b.AsInt()), nil
}

// Le returns 1 if a <= b, else 0. Both operands must be INTEGER.
func Le(a, b Value) (Value, error) {
	if err := bothInt(a, b); err != nil {
		return Value{}, err
	}
	return boolInt(a.AsInt() <= b.AsInt()), nil
}

// Ge returns 1 if a >= b, else 0. Both operands must be INTEGER.
func Ge(a, b Value) (Value, error) {
	if err := bothInt(a, b); err != nil {
		return Value{}, err
	}
	return boolInt(a.AsInt() >= b.AsInt()), nil
}

// Eq returns 1 if a == b, else 0. Both operands must be INTEGER.
func Eq(a, b Value) (Value, error) {
	if err := bothInt(a, b); err != nil {
		return Value{}, err
	}
	return boolInt(a.AsInt() == b.AsInt()), nil
}

// Ne returns 1 if a != b, else 0. Both operands must be INTEGER.
func Ne(a, b Value) (Value, error) {
	if err := bothInt(a, b); err != nil {
		return Value{}, err
	}
	return boolInt(a.AsInt() != b.AsInt()), nil
}

// Not is logical unary !: 1 if a is zero, else 0. a must be INTEGER.
func Not(a Value) (Value, error) {
	if !a.IsInteger() {
		return Value{}, fmt.Errorf("%w: expected INTEGER operand, got %s", rterr.ErrTypeMismatch, a.Tag)
	}
	return boolInt(!truthy(a)), nil
}

// BitNot is bitwise unary ~. a must be INTEGER.
func BitNot(a Value) (Value, error) {
	if !a.IsInteger() {
		return Value{}, fmt.Errorf("%w: expected INTEGER operand, got %s", rterr.ErrTypeMismatch, a.Tag)
	}
	return Int(^a.AsInt()), nil
}

func boolInt(b bool) Value {
	if b {
		return Int(1)
	}
	return Int(0)
}
