// Package api includes constants and interfaces used by both end-users and the runtime.
package api

import (
	"context"
	"fmt"

	"github.com/tetratelabs/minwasm/wasm"
)

// ValueType describes a numeric type used in Web Assembly 1.0 (20191205). For example, Function parameters and results
// are only definable as a value type.
//
// The following describes how to convert between Wasm and Golang types:
//   - ValueTypeI32 - EncodeI32 DecodeI32 for int32, or uint64(uint32) for uint32
//   - ValueTypeI64 - EncodeI64 DecodeI64 for int64, or uint64 directly
//
// Ex. Given a Text Format type use (param i64) (result i64), conversion is necessary.
//
//	results, _ := fn.Call(ctx, api.EncodeI64(input))
//	result := api.DecodeI64(results[0])
//
// Note: This is a type alias as it is easier to encode and decode in the binary format.
// See https://www.w3.org/TR/wasm-core-1/#binary-valtype
type ValueType = wasm.ValueType

const (
	// ValueTypeI32 is a 32-bit integer.
	ValueTypeI32 = wasm.ValueTypeI32
	// ValueTypeI64 is a 64-bit integer.
	ValueTypeI64 = wasm.ValueTypeI64
)

// ValueTypeName returns the type name of the given ValueType as a string.
// These type names match the names used in the WebAssembly text format.
//
// Note: This returns "unknown", if an undefined ValueType value is passed.
func ValueTypeName(t ValueType) string {
	return wasm.ValueTypeName(t)
}

// Module returns functions exported in a decoded module.
//
// Note: This is an interface for decoupling, not third-party implementations. All implementations are in minwasm.
type Module interface {
	fmt.Stringer

	// ExportedFunction returns a function exported from this module or nil if it wasn't.
	ExportedFunction(name string) Function

	// ExportedFunctionNames returns the names of exported functions in the order they are declared.
	ExportedFunctionNames() []string
}

// Function is a function exported from a decoded module (minwasm.Runtime DecodeModule).
// See https://www.w3.org/TR/wasm-core-1/#syntax-func
type Function interface {
	// Name is the export name this function was looked up with.
	Name() string

	// ParamTypes are the possibly empty sequence of value types accepted by a function with this signature.
	// See ValueType documentation for encoding rules.
	//
	// Note: The result is a copy. Modifying it doesn't change the function.
	ParamTypes() []ValueType

	// ResultTypes are the possibly empty sequence of value types returned by a function with this signature.
	//
	// Note: WebAssembly 1.0 (20191205) allows at most one result, but all declared results are returned.
	// See ValueType documentation for decoding rules.
	//
	// Note: The result is a copy. Modifying it doesn't change the function.
	ResultTypes() []ValueType

	// Call invokes the function with parameters encoded according to ParamTypes. Results are encoded according to
	// ResultTypes. An error is returned for any failure looking up or invoking the function, including a trap which
	// matches wasm.ErrTrap.
	//
	// Note: When the context is nil, it defaults to context.Background.
	Call(ctx context.Context, params ...uint64) ([]uint64, error)
}

// EncodeI32 encodes the input as a ValueTypeI32.
func EncodeI32(input int32) uint64 {
	return uint64(uint32(input))
}

// DecodeI32 decodes the input as a ValueTypeI32.
func DecodeI32(input uint64) int32 {
	return int32(input)
}

// EncodeI64 encodes the input as a ValueTypeI64.
func EncodeI64(input int64) uint64 {
	return uint64(input)
}

// DecodeI64 decodes the input as a ValueTypeI64.
func DecodeI64(input uint64) int64 {
	return int64(input)
}
