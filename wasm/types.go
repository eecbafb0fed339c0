package wasm

import "strings"

// Index is the offset in an index namespace, not necessarily an absolute position in a Module section. This is because
// index namespaces are often preceded by a corresponding type in the Module.ImportSection, which this subset does not
// have. So here, an Index is always a position in the corresponding section.
//
// See https://www.w3.org/TR/wasm-core-1/#binary-index
type Index = uint32

// SectionID identifies the sections of a Module in the WebAssembly 1.0 (MVP) Binary Format.
//
// Note: only the sections used by this format subset are defined. Others are rejected when decoding.
//
// See https://www.w3.org/TR/wasm-core-1/#sections%E2%91%A0
type SectionID = byte

const (
	SectionIDType     SectionID = 0x01
	SectionIDFunction SectionID = 0x03
	SectionIDExport   SectionID = 0x07
	SectionIDCode     SectionID = 0x0a
)

// SectionIDName returns the canonical name of a module section.
// https://www.w3.org/TR/wasm-core-1/#sections%E2%91%A0
func SectionIDName(sectionID SectionID) string {
	switch sectionID {
	case SectionIDType:
		return "type"
	case SectionIDFunction:
		return "function"
	case SectionIDExport:
		return "export"
	case SectionIDCode:
		return "code"
	}
	return "unknown"
}

// ValueType is the binary encoding of a type such as i32
// See https://www.w3.org/TR/wasm-core-1/#binary-valtype
//
// Note: This is a type alias as it is easier to encode and decode in the binary format.
type ValueType = byte

const (
	ValueTypeI32 ValueType = 0x7f
	ValueTypeI64 ValueType = 0x7e
)

// ValueTypeName returns the type name of the given ValueType as a string.
// These type names match the names used in the WebAssembly text format.
//
// Note: This returns "unknown", if an undefined ValueType value is passed.
func ValueTypeName(t ValueType) string {
	switch t {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	}
	return "unknown"
}

// isValueType reports whether t is one of the two value types this format subset knows.
func isValueType(t ValueType) bool {
	return t == ValueTypeI32 || t == ValueTypeI64
}

// FunctionType is a possibly empty function signature.
//
// See https://www.w3.org/TR/wasm-core-1/#function-types%E2%91%A0
type FunctionType struct {
	// Params are the possibly empty sequence of value types accepted by a function with this signature.
	Params []ValueType

	// Results are the possibly empty sequence of value types returned by a function with this signature.
	//
	// Note: WebAssembly 1.0 (MVP) allows at most one result. Multiple results are kept here as the binary format
	// permits them and the interpreter returns all of them.
	Results []ValueType
}

// EqualsSignature returns true if the function type has the same parameters and results.
func (t *FunctionType) EqualsSignature(params []ValueType, results []ValueType) bool {
	return equalValueTypes(t.Params, params) && equalValueTypes(t.Results, results)
}

func equalValueTypes(a, b []ValueType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String returns a key of the signature, ex. "i32i32_i32" for (param i32 i32) (result i32).
func (t *FunctionType) String() string {
	var b strings.Builder
	for _, vt := range t.Params {
		b.WriteString(ValueTypeName(vt))
	}
	if len(t.Params) == 0 {
		b.WriteString("v")
	}
	b.WriteByte('_')
	for _, vt := range t.Results {
		b.WriteString(ValueTypeName(vt))
	}
	if len(t.Results) == 0 {
		b.WriteString("v")
	}
	return b.String()
}
