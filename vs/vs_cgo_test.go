//go:build amd64 && cgo && !windows

// Wasmtime can only be used in amd64 with CGO
// Wasmer doesn't link on Windows
package vs

import (
	"errors"
	"testing"

	"github.com/bytecodealliance/wasmtime-go"
	"github.com/stretchr/testify/require"
	"github.com/wasmerio/wasmer-go/wasmer"

	"github.com/tetratelabs/minwasm/api"
)

// TestAdd ensures that the code in BenchmarkAdd_Invoke_cgo works as expected.
func TestAdd(t *testing.T) {
	ours := newAdd(t)
	bin := MustEncode(AddModule())

	t.Run("wasmer-go", func(t *testing.T) {
		store, instance, fn, err := newWasmerForAdd(bin)
		require.NoError(t, err)
		defer store.Close()
		defer instance.Close()

		for _, params := range addParams {
			expected, err := ours.Call(testCtx, api.EncodeI32(params[0]), api.EncodeI32(params[1]))
			require.NoError(t, err)

			res, err := fn(params[0], params[1])
			require.NoError(t, err)
			require.Equal(t, api.DecodeI32(expected[0]), res, params)
		}
	})

	t.Run("wasmtime-go", func(t *testing.T) {
		store, run, err := newWasmtimeForAdd(bin)
		require.NoError(t, err)

		for _, params := range addParams {
			expected, err := ours.Call(testCtx, api.EncodeI32(params[0]), api.EncodeI32(params[1]))
			require.NoError(t, err)

			res, err := run.Call(store, params[0], params[1])
			require.NoError(t, err)
			require.Equal(t, api.DecodeI32(expected[0]), res, params)
		}
	})
}

// BenchmarkAdd_Init tracks the time spent readying a function for use
func BenchmarkAdd_Init(b *testing.B) {
	bin := MustEncode(AddModule())

	b.Run("minwasm", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			newAdd(b)
		}
	})
	b.Run("wasmer-go", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			store, instance, _, err := newWasmerForAdd(bin)
			if err != nil {
				b.Fatal(err)
			}
			store.Close()
			instance.Close()
		}
	})
	b.Run("wasmtime-go", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, _, err := newWasmtimeForAdd(bin); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkAdd_Invoke_cgo benchmarks the time spent invoking add in runtimes that require cgo.
func BenchmarkAdd_Invoke_cgo(b *testing.B) {
	bin := MustEncode(AddModule())

	b.Run("wasmer-go", func(b *testing.B) {
		store, instance, fn, err := newWasmerForAdd(bin)
		if err != nil {
			b.Fatal(err)
		}
		defer store.Close()
		defer instance.Close()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err = fn(5, 6); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("wasmtime-go", func(b *testing.B) {
		store, run, err := newWasmtimeForAdd(bin)
		if err != nil {
			b.Fatal(err)
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err = run.Call(store, 5, 6); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// newWasmerForAdd returns the store and instance that scope the add function.
// Note: these should be closed
func newWasmerForAdd(bin []byte) (*wasmer.Store, *wasmer.Instance, wasmer.NativeFunction, error) {
	store := wasmer.NewStore(wasmer.NewEngine())
	importObject := wasmer.NewImportObject()
	module, err := wasmer.NewModule(store, bin)
	if err != nil {
		return nil, nil, nil, err
	}
	instance, err := wasmer.NewInstance(module, importObject)
	if err != nil {
		return nil, nil, nil, err
	}
	f, err := instance.Exports.GetFunction("add")
	if err != nil {
		return nil, nil, nil, err
	}
	if f == nil {
		return nil, nil, nil, errors.New("not a function")
	}
	return store, instance, f, nil
}

func newWasmtimeForAdd(bin []byte) (*wasmtime.Store, *wasmtime.Func, error) {
	store := wasmtime.NewStore(wasmtime.NewEngine())
	module, err := wasmtime.NewModule(store.Engine, bin)
	if err != nil {
		return nil, nil, err
	}

	instance, err := wasmtime.NewInstance(store, module, nil)
	if err != nil {
		return nil, nil, err
	}

	run := instance.GetFunc(store, "add")
	if run == nil {
		return nil, nil, errors.New("not a function")
	}
	return store, run, nil
}
