package interpreter

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tetratelabs/minwasm/wasm"
	"github.com/tetratelabs/minwasm/wasm/binary"
)

type arbitrary struct{}

// testCtx is an arbitrary, non-default context.
var testCtx = context.WithValue(context.Background(), arbitrary{}, "arbitrary")

var i32, i64 = wasm.ValueTypeI32, wasm.ValueTypeI64

// addModule is the module from the text format:
//
//	(module
//	  (func $add (param $lhs i32) (param $rhs i32) (result i32)
//	    local.get $lhs
//	    local.get $rhs
//	    i32.add)
//	  (export "add" (func $add)))
func addModule() *wasm.Module {
	return &wasm.Module{
		TypeSection: []*wasm.FunctionType{{Params: []wasm.ValueType{i32, i32}, Results: []wasm.ValueType{i32}}},
		FunctionSection: []*wasm.Function{{
			Body: []wasm.Instruction{wasm.LocalGet(0), wasm.LocalGet(1), wasm.I32Add()},
		}},
		ExportSection: []*wasm.Export{{Kind: wasm.ExportKindFunc, Name: "add", Index: 0}},
	}
}

// singleFunction returns a module exporting one function as "f".
func singleFunction(ft *wasm.FunctionType, localTypes []wasm.ValueType, body ...wasm.Instruction) *wasm.Module {
	return &wasm.Module{
		TypeSection:     []*wasm.FunctionType{ft},
		FunctionSection: []*wasm.Function{{LocalTypes: localTypes, Body: body}},
		ExportSection:   []*wasm.Export{{Name: "f"}},
	}
}

func TestInvokeFunction(t *testing.T) {
	tests := []struct {
		name     string
		params   []int32
		expected int32
	}{
		{name: "5+6", params: []int32{5, 6}, expected: 11},
		{name: "1+4", params: []int32{1, 4}, expected: 5},
		{name: "negative", params: []int32{-7, 3}, expected: -4},
		{name: "wraps on overflow", params: []int32{math.MaxInt32, 1}, expected: math.MinInt32},
		{name: "wraps on underflow", params: []int32{math.MinInt32, -1}, expected: math.MaxInt32},
	}

	for _, tt := range tests {
		tc := tt

		t.Run(tc.name, func(t *testing.T) {
			actual, err := InvokeFunction(addModule(), "add", tc.params)
			require.NoError(t, err)
			require.Equal(t, tc.expected, actual)
		})
	}
}

func TestInvokeFunction_Decoded(t *testing.T) {
	bin, err := binary.EncodeModule(addModule())
	require.NoError(t, err)

	m, err := binary.DecodeModule(bin)
	require.NoError(t, err)

	for _, params := range [][]int32{{5, 6}, {1, 4}, {0, 0}, {-1, -1}} {
		expected, err := InvokeFunction(addModule(), "add", params)
		require.NoError(t, err)

		actual, err := InvokeFunction(m, "add", params)
		require.NoError(t, err)
		require.Equal(t, expected, actual)
	}
}

func TestInvokeFunction_Locals(t *testing.T) {
	t.Run("declared locals are zero", func(t *testing.T) {
		m := singleFunction(&wasm.FunctionType{Params: []wasm.ValueType{i32}, Results: []wasm.ValueType{i32}},
			[]wasm.ValueType{i32}, wasm.LocalGet(0), wasm.LocalGet(1), wasm.I32Add())

		actual, err := InvokeFunction(m, "f", []int32{42})
		require.NoError(t, err)
		require.Equal(t, int32(42), actual)
	})

	t.Run("same param twice", func(t *testing.T) {
		m := singleFunction(&wasm.FunctionType{Params: []wasm.ValueType{i32}, Results: []wasm.ValueType{i32}},
			nil, wasm.LocalGet(0), wasm.LocalGet(0), wasm.I32Add())

		actual, err := InvokeFunction(m, "f", []int32{21})
		require.NoError(t, err)
		require.Equal(t, int32(42), actual)
	})

	t.Run("identity", func(t *testing.T) {
		m := singleFunction(&wasm.FunctionType{Params: []wasm.ValueType{i32}, Results: []wasm.ValueType{i32}},
			nil, wasm.LocalGet(0))

		actual, err := InvokeFunction(m, "f", []int32{-3})
		require.NoError(t, err)
		require.Equal(t, int32(-3), actual)
	})
}

func TestInvokeFunction_Errors(t *testing.T) {
	tests := []struct {
		name        string
		module      *wasm.Module
		export      string
		params      []int32
		expectedErr error
		trap        bool
	}{
		{
			name:        "export not found",
			module:      addModule(),
			export:      "sub",
			params:      []int32{1, 2},
			expectedErr: wasm.ErrExportNotFound,
		},
		{
			name:        "too few params",
			module:      addModule(),
			export:      "add",
			params:      []int32{1},
			expectedErr: wasm.ErrInvalidArgNumber,
		},
		{
			name:        "too many params",
			module:      addModule(),
			export:      "add",
			params:      []int32{1, 2, 3},
			expectedErr: wasm.ErrInvalidArgNumber,
		},
		{
			name:        "no results",
			module:      singleFunction(&wasm.FunctionType{}, nil),
			export:      "f",
			expectedErr: wasm.ErrInvalidResultArity,
		},
		{
			name: "two results",
			module: singleFunction(&wasm.FunctionType{Params: []wasm.ValueType{i32}, Results: []wasm.ValueType{i32, i32}},
				nil, wasm.LocalGet(0), wasm.LocalGet(0)),
			export:      "f",
			params:      []int32{1},
			expectedErr: wasm.ErrInvalidResultArity,
		},
		{
			name: "i64 result",
			module: singleFunction(&wasm.FunctionType{Params: []wasm.ValueType{i64}, Results: []wasm.ValueType{i64}},
				nil, wasm.LocalGet(0)),
			export:      "f",
			params:      []int32{1},
			expectedErr: wasm.ErrInvalidResultType,
		},
		{
			name: "local index out of bounds",
			module: singleFunction(&wasm.FunctionType{Params: []wasm.ValueType{i32}, Results: []wasm.ValueType{i32}},
				[]wasm.ValueType{i32}, wasm.LocalGet(2)),
			export:      "f",
			params:      []int32{1},
			expectedErr: wasm.ErrLocalIndexOutOfBounds,
			trap:        true,
		},
		{
			name:        "i32.add on empty stack",
			module:      singleFunction(&wasm.FunctionType{Results: []wasm.ValueType{i32}}, nil, wasm.I32Add()),
			export:      "f",
			expectedErr: wasm.ErrStackUnderflow,
			trap:        true,
		},
		{
			name: "i32.add with one operand",
			module: singleFunction(&wasm.FunctionType{Params: []wasm.ValueType{i32}, Results: []wasm.ValueType{i32}},
				nil, wasm.LocalGet(0), wasm.I32Add()),
			export:      "f",
			params:      []int32{1},
			expectedErr: wasm.ErrStackUnderflow,
			trap:        true,
		},
		{
			name:        "no value for the result",
			module:      singleFunction(&wasm.FunctionType{Results: []wasm.ValueType{i32}}, nil),
			export:      "f",
			expectedErr: wasm.ErrStackUnderflow,
			trap:        true,
		},
		{
			name: "i32.add on i64 operands",
			module: singleFunction(&wasm.FunctionType{Params: []wasm.ValueType{i64, i32}, Results: []wasm.ValueType{i32}},
				nil, wasm.LocalGet(0), wasm.LocalGet(1), wasm.I32Add()),
			export:      "f",
			params:      []int32{1, 2},
			expectedErr: wasm.ErrTypeMismatch,
			trap:        true,
		},
		{
			name: "i64 declared local as result",
			module: singleFunction(&wasm.FunctionType{Results: []wasm.ValueType{i32}},
				[]wasm.ValueType{i64}, wasm.LocalGet(0)),
			export:      "f",
			expectedErr: wasm.ErrTypeMismatch,
			trap:        true,
		},
		{
			name: "unknown opcode",
			module: singleFunction(&wasm.FunctionType{Results: []wasm.ValueType{i32}},
				nil, wasm.Instruction{Opcode: 0x41}),
			export:      "f",
			expectedErr: wasm.ErrInvalidInstruction,
			trap:        true,
		},
	}

	for _, tt := range tests {
		tc := tt

		t.Run(tc.name, func(t *testing.T) {
			actual, err := InvokeFunction(tc.module, tc.export, tc.params)
			require.Zero(t, actual)
			require.ErrorIs(t, err, tc.expectedErr)
			require.Equal(t, tc.trap, IsTrap(err), err)
		})
	}
}

func TestInvokeFunction_StackNotEmpty(t *testing.T) {
	m := singleFunction(&wasm.FunctionType{Params: []wasm.ValueType{i32, i32}, Results: []wasm.ValueType{i32}},
		nil, wasm.LocalGet(0), wasm.LocalGet(1))

	_, err := InvokeFunction(m, "f", []int32{1, 2})
	require.ErrorIs(t, err, wasm.ErrStackNotEmpty)
	require.ErrorIs(t, err, wasm.ErrTrap)
}

func TestEngine_Call(t *testing.T) {
	e := NewEngine(nil, 0)

	t.Run("multiple results", func(t *testing.T) {
		m := singleFunction(&wasm.FunctionType{
			Params:  []wasm.ValueType{i32, i64},
			Results: []wasm.ValueType{i64, i32, i32},
		}, nil, wasm.LocalGet(1), wasm.LocalGet(0), wasm.LocalGet(0), wasm.LocalGet(0), wasm.I32Add())

		results, err := e.Call(testCtx, m, m.FunctionSection[0], 3, math.MaxUint64)
		require.NoError(t, err)
		require.Equal(t, []uint64{math.MaxUint64, 3, 6}, results)
	})

	t.Run("no results", func(t *testing.T) {
		m := singleFunction(&wasm.FunctionType{}, nil)

		results, err := e.Call(testCtx, m, m.FunctionSection[0])
		require.NoError(t, err)
		require.Empty(t, results)
	})

	t.Run("i32 params ignore high bits", func(t *testing.T) {
		m := addModule()

		results, err := e.Call(testCtx, m, m.FunctionSection[0], 0xffffffff_00000001, 2)
		require.NoError(t, err)
		require.Equal(t, []uint64{3}, results)
	})

	t.Run("wrong param count", func(t *testing.T) {
		m := addModule()

		_, err := e.Call(testCtx, m, m.FunctionSection[0], 1)
		require.ErrorIs(t, err, wasm.ErrInvalidArgNumber)
		require.False(t, IsTrap(err))
	})

	t.Run("type index out of range", func(t *testing.T) {
		m := addModule()

		_, err := e.Call(testCtx, m, &wasm.Function{TypeIndex: 1})
		require.ErrorIs(t, err, wasm.ErrInvalidTypeIndex)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(testCtx)
		cancel()

		m := addModule()
		_, err := e.Call(ctx, m, m.FunctionSection[0], 1, 2)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("doesn't mutate the module", func(t *testing.T) {
		m := addModule()

		_, err := e.Call(testCtx, m, m.FunctionSection[0], 1, 2)
		require.NoError(t, err)
		require.Equal(t, addModule(), m)
	})
}

func TestEngine_StackHeightLimit(t *testing.T) {
	m := singleFunction(&wasm.FunctionType{Params: []wasm.ValueType{i32}, Results: []wasm.ValueType{i32}},
		nil, wasm.LocalGet(0), wasm.LocalGet(0), wasm.I32Add(), wasm.LocalGet(0), wasm.I32Add())

	results, err := NewEngine(nil, 2).Call(testCtx, m, m.FunctionSection[0], 1)
	require.NoError(t, err)
	require.Equal(t, []uint64{3}, results)

	_, err = NewEngine(nil, 1).Call(testCtx, m, m.FunctionSection[0], 1)
	require.ErrorIs(t, err, wasm.ErrStackOverflow)
	require.True(t, IsTrap(err))
}

func TestEngine_LogsTraps(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	e := NewEngine(zap.New(core), 0)

	m := singleFunction(&wasm.FunctionType{Results: []wasm.ValueType{i32}}, nil, wasm.I32Add())
	_, err := e.InvokeFunction(testCtx, m, "f", nil)
	require.ErrorIs(t, err, wasm.ErrStackUnderflow)

	require.Equal(t, 1, logs.FilterMessage("invoke").Len())
	traps := logs.FilterMessage("trap").All()
	require.Len(t, traps, 1)
	require.Equal(t, "v_i32", traps[0].ContextMap()["signature"])
}
