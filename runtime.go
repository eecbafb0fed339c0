// Package minwasm decodes, encodes and runs WebAssembly modules limited to functions of i32 and i64 values whose bodies
// only use local.get and i32.add.
//
// Ex.
//
//	r := minwasm.NewRuntime()
//	module, _ := r.DecodeModule(source)
//	sum, _ := module.Invoke(ctx, "add", 5, 6)
package minwasm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tetratelabs/minwasm/api"
	"github.com/tetratelabs/minwasm/wasm"
	"github.com/tetratelabs/minwasm/wasm/binary"
	"github.com/tetratelabs/minwasm/wasm/interpreter"
)

// Runtime allows embedding of WebAssembly modules.
//
// Ex.
//
//	r := minwasm.NewRuntime()
//	module, _ := r.DecodeModule(source)
//	results, _ := module.ExportedFunction("add").Call(ctx, api.EncodeI32(5), api.EncodeI32(6))
type Runtime interface {
	// DecodeModule decodes the WebAssembly binary source or errs if invalid. Errors match the decode errors in the wasm
	// package, ex. wasm.ErrInvalidMagicNumber.
	DecodeModule(source []byte) (*CompiledModule, error)

	// NewModule validates a module built in Go, so that it can be invoked or encoded. Errors match the structural
	// errors in the wasm package, ex. wasm.ErrInvalidTypeIndex.
	//
	// Note: m must not be modified afterwards.
	NewModule(m *wasm.Module) (*CompiledModule, error)
}

// NewRuntime returns a runtime with the configuration of NewRuntimeConfig.
func NewRuntime() Runtime {
	return NewRuntimeWithConfig(NewRuntimeConfig())
}

// NewRuntimeWithConfig returns a runtime with the given configuration.
func NewRuntimeWithConfig(config *RuntimeConfig) Runtime {
	return &runtime{
		engine: interpreter.NewEngine(config.logger, config.stackHeightLimit),
		logger: config.logger,
	}
}

// runtime allows decoupling of public interfaces from internal representation.
type runtime struct {
	engine *interpreter.Engine
	logger *zap.Logger
}

// DecodeModule implements Runtime.DecodeModule
func (r *runtime) DecodeModule(source []byte) (*CompiledModule, error) {
	if source == nil {
		return nil, errors.New("source == nil")
	}

	m, err := binary.DecodeModule(source)
	if err != nil {
		r.logger.Debug("decode failed", zap.Int("size", len(source)), zap.Error(err))
		return nil, err
	}

	r.logger.Debug("decoded module",
		zap.Int("size", len(source)),
		zap.Int("types", len(m.TypeSection)),
		zap.Int("functions", len(m.FunctionSection)),
		zap.Int("exports", len(m.ExportSection)))
	return &CompiledModule{module: m, engine: r.engine, logger: r.logger}, nil
}

// NewModule implements Runtime.NewModule
func (r *runtime) NewModule(m *wasm.Module) (*CompiledModule, error) {
	if m == nil {
		return nil, errors.New("module == nil")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &CompiledModule{module: m, engine: r.engine, logger: r.logger}, nil
}

// CompiledModule is a decoded or validated module whose exported functions can be called. It is safe for concurrent
// use, as each call has its own operand stack.
type CompiledModule struct {
	module *wasm.Module
	engine *interpreter.Engine
	logger *zap.Logger
}

var _ api.Module = &CompiledModule{}

// String implements fmt.Stringer
func (c *CompiledModule) String() string {
	return fmt.Sprintf("Module[%s]", strings.Join(c.ExportedFunctionNames(), ","))
}

// Module returns the underlying module, which must not be modified.
func (c *CompiledModule) Module() *wasm.Module {
	return c.module
}

// Encode returns the module in the WebAssembly binary format.
func (c *CompiledModule) Encode() ([]byte, error) {
	return binary.EncodeModule(c.module)
}

// ExportedFunctionNames implements api.Module ExportedFunctionNames
func (c *CompiledModule) ExportedFunctionNames() []string {
	names := make([]string, 0, len(c.module.ExportSection))
	for _, e := range c.module.ExportSection {
		if e.Kind == wasm.ExportKindFunc {
			names = append(names, e.Name)
		}
	}
	return names
}

// ExportedFunction implements api.Module ExportedFunction
func (c *CompiledModule) ExportedFunction(name string) api.Function {
	f, ft, err := c.module.ExportedFunction(name)
	if err != nil {
		return nil
	}
	return &function{name: name, f: f, ft: ft, module: c}
}

// Invoke calls the function exported as name with int32 params and returns its only result. Errors match
// wasm.ErrExportNotFound, wasm.ErrInvalidArgNumber, wasm.ErrInvalidResultArity, wasm.ErrInvalidResultType or, while
// executing, wasm.ErrTrap.
//
// Note: When the context is nil, it defaults to context.Background.
func (c *CompiledModule) Invoke(ctx context.Context, name string, params ...int32) (int32, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return c.engine.InvokeFunction(ctx, c.module, name, params)
}

// function implements api.Function
type function struct {
	name   string
	f      *wasm.Function
	ft     *wasm.FunctionType
	module *CompiledModule
}

// Name implements api.Function Name
func (f *function) Name() string {
	return f.name
}

// ParamTypes implements api.Function ParamTypes
func (f *function) ParamTypes() []api.ValueType {
	return copyValueTypes(f.ft.Params)
}

// ResultTypes implements api.Function ResultTypes
func (f *function) ResultTypes() []api.ValueType {
	return copyValueTypes(f.ft.Results)
}

// copyValueTypes returns a copy of vts, or nil if empty.
func copyValueTypes(vts []wasm.ValueType) []api.ValueType {
	if len(vts) == 0 {
		return nil
	}
	ret := make([]api.ValueType, len(vts))
	copy(ret, vts)
	return ret
}

// Call implements api.Function Call
func (f *function) Call(ctx context.Context, params ...uint64) ([]uint64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	f.module.logger.Debug("call", zap.String("export", f.name), zap.Int("params", len(params)))
	return f.module.engine.Call(ctx, f.module.module, f.f, params...)
}
