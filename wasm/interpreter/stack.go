package interpreter

import (
	"fmt"

	"github.com/tetratelabs/minwasm/wasm"
)

// DefaultStackHeightLimit is the maximum count of operands on the stack, unless configured otherwise.
const DefaultStackHeightLimit = 1024

// value is an operand tagged with its type. i32 values only use the low 32 bits.
type value struct {
	typ  wasm.ValueType
	bits uint64
}

func i32Value(v uint32) value {
	return value{typ: wasm.ValueTypeI32, bits: uint64(v)}
}

// String implements fmt.Stringer, ex. "i32(5)".
func (v value) String() string {
	if v.typ == wasm.ValueTypeI32 {
		return fmt.Sprintf("i32(%d)", int32(v.bits))
	}
	return fmt.Sprintf("%s(%d)", wasm.ValueTypeName(v.typ), int64(v.bits))
}

// valueStack is the operand stack of one function call.
type valueStack struct {
	stack []value
	limit int
}

func newValueStack(limit int) *valueStack {
	initial := limit
	if initial > 16 {
		initial = 16
	}
	return &valueStack{stack: make([]value, 0, initial), limit: limit}
}

func (s *valueStack) push(v value) error {
	if len(s.stack) >= s.limit {
		return newTrap(wasm.ErrStackOverflow, "height limit %d", s.limit)
	}
	s.stack = append(s.stack, v)
	return nil
}

// pop removes the top value, which must have the type typ.
func (s *valueStack) pop(typ wasm.ValueType) (uint64, error) {
	sp := len(s.stack) - 1
	if sp < 0 {
		return 0, newTrap(wasm.ErrStackUnderflow, "expected %s", wasm.ValueTypeName(typ))
	}
	v := s.stack[sp]
	if v.typ != typ {
		return 0, newTrap(wasm.ErrTypeMismatch, "expected %s, but was %s", wasm.ValueTypeName(typ), v)
	}
	s.stack = s.stack[:sp]
	return v.bits, nil
}

func (s *valueStack) popI32() (uint32, error) {
	v, err := s.pop(wasm.ValueTypeI32)
	return uint32(v), err
}

func (s *valueStack) height() int {
	return len(s.stack)
}
