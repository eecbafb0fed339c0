// Package interpreter executes functions of a wasm.Module with a stack machine. Each call gets its own frame and
// operand stack, so an Engine can be used concurrently.
package interpreter

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tetratelabs/minwasm/wasm"
)

// Engine executes functions of a wasm.Module. Parameters and results are encoded as uint64 the same way for every
// value type: an i32 is in the low 32 bits, and an i64 takes all 64.
type Engine struct {
	logger           *zap.Logger
	stackHeightLimit int
}

// NewEngine returns an Engine logging to logger, or nowhere if nil. A stackHeightLimit of zero or less means
// DefaultStackHeightLimit.
func NewEngine(logger *zap.Logger, stackHeightLimit int) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if stackHeightLimit <= 0 {
		stackHeightLimit = DefaultStackHeightLimit
	}
	return &Engine{logger: logger, stackHeightLimit: stackHeightLimit}
}

// Call executes f, a function defined in m, and returns every result it declares.
//
// Errors before execution, such as a wrong count of params, are returned as-is. Errors raised while executing the
// body match wasm.ErrTrap. In either case, no results are returned.
func (e *Engine) Call(ctx context.Context, m *wasm.Module, f *wasm.Function, params ...uint64) ([]uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if int(f.TypeIndex) >= len(m.TypeSection) {
		return nil, fmt.Errorf("%w: %d >= %d", wasm.ErrInvalidTypeIndex, f.TypeIndex, len(m.TypeSection))
	}
	ft := m.TypeSection[f.TypeIndex]
	if len(params) != len(ft.Params) {
		return nil, fmt.Errorf("%w: expected %d, but passed %d", wasm.ErrInvalidArgNumber, len(ft.Params), len(params))
	}

	p := &processor{
		locals:   newFrame(ft.Params, params, f.LocalTypes),
		operands: newValueStack(e.stackHeightLimit),
	}
	results, err := p.execute(f.Body, ft.Results)
	if err != nil {
		e.logger.Debug("trap", zap.String("signature", ft.String()), zap.Error(err))
		return nil, err
	}
	return results, nil
}

// newFrame returns the locals of a call: its params followed by the declared locals, each zero.
func newFrame(paramTypes []wasm.ValueType, params []uint64, localTypes []wasm.ValueType) []value {
	locals := make([]value, 0, len(params)+len(localTypes))
	for i, typ := range paramTypes {
		bits := params[i]
		if typ == wasm.ValueTypeI32 {
			bits = uint64(uint32(bits))
		}
		locals = append(locals, value{typ: typ, bits: bits})
	}
	for _, typ := range localTypes {
		locals = append(locals, value{typ: typ})
	}
	return locals
}

// processor holds the state of one function call. It isn't reused.
type processor struct {
	locals   []value
	operands *valueStack
}

// execute runs body, then pops one value per result type. Any value left after that is a trap.
func (p *processor) execute(body []wasm.Instruction, resultTypes []wasm.ValueType) ([]uint64, error) {
	for pc, in := range body {
		if err := p.step(in); err != nil {
			return nil, fmt.Errorf("%s at pc=%d: %w", in, pc, err)
		}
	}

	results := make([]uint64, len(resultTypes))
	for i := len(resultTypes) - 1; i >= 0; i-- {
		v, err := p.operands.pop(resultTypes[i])
		if err != nil {
			return nil, fmt.Errorf("result[%d]: %w", i, err)
		}
		results[i] = v
	}

	if h := p.operands.height(); h != 0 {
		return nil, newTrap(wasm.ErrStackNotEmpty, "%d values left", h)
	}
	return results, nil
}

func (p *processor) step(in wasm.Instruction) error {
	switch in.Opcode {
	case wasm.OpcodeLocalGet:
		if uint64(in.Index) >= uint64(len(p.locals)) {
			return newTrap(wasm.ErrLocalIndexOutOfBounds, "%d >= %d", in.Index, len(p.locals))
		}
		return p.operands.push(p.locals[in.Index])
	case wasm.OpcodeI32Add:
		v2, err := p.operands.popI32()
		if err != nil {
			return err
		}
		v1, err := p.operands.popI32()
		if err != nil {
			return err
		}
		return p.operands.push(i32Value(v1 + v2))
	default:
		return newTrap(wasm.ErrInvalidInstruction, "opcode %#x", in.Opcode)
	}
}
