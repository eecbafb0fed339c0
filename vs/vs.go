// Package vs compares minwasm with other WebAssembly runtimes, using modules encoded by minwasm.
package vs

import (
	"github.com/tetratelabs/minwasm/wasm"
	"github.com/tetratelabs/minwasm/wasm/binary"
)

// AddModule returns the module from the text format:
//
//	(module
//	  (func $add (param $lhs i32) (param $rhs i32) (result i32)
//	    local.get $lhs
//	    local.get $rhs
//	    i32.add)
//	  (export "add" (func $add)))
func AddModule() *wasm.Module {
	i32 := wasm.ValueTypeI32
	return &wasm.Module{
		TypeSection: []*wasm.FunctionType{{Params: []wasm.ValueType{i32, i32}, Results: []wasm.ValueType{i32}}},
		FunctionSection: []*wasm.Function{{
			Body: []wasm.Instruction{wasm.LocalGet(0), wasm.LocalGet(1), wasm.I32Add()},
		}},
		ExportSection: []*wasm.Export{{Kind: wasm.ExportKindFunc, Name: "add", Index: 0}},
	}
}

// SumModule returns a module using more of the encoding than AddModule: declared locals in several groups, an i64
// signature, local indices past one byte, and more than one export. Its export "sum3" adds three i32 params and a
// zero local.
func SumModule() *wasm.Module {
	i32, i64 := wasm.ValueTypeI32, wasm.ValueTypeI64

	locals := make([]wasm.ValueType, 0, 202)
	locals = append(locals, i64, i64)
	for i := 0; i < 200; i++ {
		locals = append(locals, i32)
	}
	return &wasm.Module{
		TypeSection: []*wasm.FunctionType{
			{Params: []wasm.ValueType{i64}, Results: []wasm.ValueType{i64}},
			{Params: []wasm.ValueType{i32, i32, i32}, Results: []wasm.ValueType{i32}},
		},
		FunctionSection: []*wasm.Function{
			{TypeIndex: 0, Body: []wasm.Instruction{wasm.LocalGet(0)}},
			{
				TypeIndex:  1,
				LocalTypes: locals,
				Body: []wasm.Instruction{
					wasm.LocalGet(0), wasm.LocalGet(1), wasm.I32Add(),
					wasm.LocalGet(2), wasm.I32Add(),
					wasm.LocalGet(204), wasm.I32Add(), // last declared local
				},
			},
		},
		ExportSection: []*wasm.Export{
			{Name: "id64", Index: 0},
			{Name: "sum3", Index: 1},
		},
	}
}

// MustEncode encodes m or panics.
func MustEncode(m *wasm.Module) []byte {
	b, err := binary.EncodeModule(m)
	if err != nil {
		panic(err)
	}
	return b
}
