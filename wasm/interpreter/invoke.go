package interpreter

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tetratelabs/minwasm/wasm"
)

// InvokeFunction calls the function exported as name with params, and returns its only result.
//
// Lookup and arity failures return wasm.ErrExportNotFound, wasm.ErrInvalidArgNumber, wasm.ErrInvalidResultArity or
// wasm.ErrInvalidResultType before anything executes. Failures while executing match wasm.ErrTrap.
func InvokeFunction(m *wasm.Module, name string, params []int32) (int32, error) {
	return NewEngine(nil, 0).InvokeFunction(context.Background(), m, name, params)
}

// InvokeFunction is like the package function of the same name, but uses this Engine's configuration.
//
// An i64 param is sign extended from its int32 argument. A function whose result is i64 isn't called: it fails with
// wasm.ErrInvalidResultType.
func (e *Engine) InvokeFunction(ctx context.Context, m *wasm.Module, name string, params []int32) (int32, error) {
	f, ft, err := m.ExportedFunction(name)
	if err != nil {
		return 0, err
	}
	if len(params) != len(ft.Params) {
		return 0, fmt.Errorf("%w: %q expects %d, but passed %d", wasm.ErrInvalidArgNumber, name, len(ft.Params), len(params))
	}
	if len(ft.Results) != 1 {
		return 0, fmt.Errorf("%w: %q returns %d values, not 1", wasm.ErrInvalidResultArity, name, len(ft.Results))
	}
	if ft.Results[0] != wasm.ValueTypeI32 {
		return 0, fmt.Errorf("%w: %q returns %s, not i32", wasm.ErrInvalidResultType, name, wasm.ValueTypeName(ft.Results[0]))
	}

	e.logger.Debug("invoke", zap.String("export", name), zap.Int("params", len(params)))

	encoded := make([]uint64, len(params))
	for i, p := range params {
		if ft.Params[i] == wasm.ValueTypeI64 {
			encoded[i] = uint64(int64(p))
		} else {
			encoded[i] = uint64(uint32(p))
		}
	}

	results, err := e.Call(ctx, m, f, encoded...)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", name, err)
	}
	return int32(uint32(results[0])), nil
}
