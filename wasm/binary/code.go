package binary

import (
	"fmt"
	"math"

	"github.com/tetratelabs/minwasm/wasm"
	"github.com/tetratelabs/minwasm/wasm/leb128"
)

// maxLocalCount bounds the locals a decoded function may declare. Local declarations are run-length encoded, so a
// few bytes could otherwise expand into billions of entries.
const maxLocalCount = 50000

// encodeCode returns the function's locals and body encoded in WebAssembly 1.0 (MVP) Binary Format, prefixed by the
// size of both.
//
// See https://www.w3.org/TR/wasm-core-1/#binary-code
func encodeCode(f *wasm.Function) []byte {
	code := encodeLocals(f.LocalTypes)
	for _, in := range f.Body {
		code = append(code, in.Opcode)
		if in.Opcode == wasm.OpcodeLocalGet {
			code = append(code, leb128.EncodeUint32(in.Index)...)
		}
	}
	code = append(code, wasm.OpcodeEnd)
	return append(leb128.EncodeUint32(uint32(len(code))), code...)
}

// encodeLocals groups consecutive locals of the same type, as the binary format declares locals as (count, type)
// pairs. No locals encodes as a single zero byte.
func encodeLocals(localTypes []wasm.ValueType) []byte {
	var groups [][2]uint32
	for _, vt := range localTypes {
		if n := len(groups); n > 0 && groups[n-1][1] == uint32(vt) {
			groups[n-1][0]++
		} else {
			groups = append(groups, [2]uint32{1, uint32(vt)})
		}
	}

	data := leb128.EncodeUint32(uint32(len(groups)))
	for _, g := range groups {
		data = append(data, leb128.EncodeUint32(g[0])...)
		data = append(data, byte(g[1]))
	}
	return data
}

// decodeCode reads one entry of the code section into the locals and body of f.
func decodeCode(r *reader, f *wasm.Function) error {
	size, err := r.readU32("code size")
	if err != nil {
		return err
	}
	body, err := r.readBytes(size, "code")
	if err != nil {
		return err
	}

	// Like io.LimitReader, the body must end within its declared size.
	br := newReader(body)
	if f.LocalTypes, err = decodeLocals(br); err != nil {
		return err
	}
	if f.Body, err = decodeInstructions(br); err != nil {
		return err
	}
	if br.remaining() != 0 {
		return fmt.Errorf("%w: %d bytes after end", wasm.ErrInvalidInstruction, br.remaining())
	}
	return nil
}

func decodeLocals(r *reader) ([]wasm.ValueType, error) {
	groupCount, err := r.readCount("local declaration count")
	if err != nil {
		return nil, err
	}

	var ret []wasm.ValueType
	var sum uint64
	for i := uint32(0); i < groupCount; i++ {
		n, err := r.readU32("local count")
		if err != nil {
			return nil, err
		}
		vt, err := decodeValueType(r, "local type")
		if err != nil {
			return nil, fmt.Errorf("local declaration[%d]: %w", i, err)
		}

		if sum += uint64(n); sum > math.MaxUint32 || sum > maxLocalCount {
			return nil, fmt.Errorf("%w: too many locals: %d", wasm.ErrCountOverflow, sum)
		}
		for j := uint32(0); j < n; j++ {
			ret = append(ret, vt)
		}
	}
	return ret, nil
}

func decodeInstructions(r *reader) ([]wasm.Instruction, error) {
	var ret []wasm.Instruction
	for pc := 0; ; pc++ {
		op, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: expr not end with %s", wasm.ErrInvalidInstruction, wasm.OpcodeEndName)
		}

		switch op {
		case wasm.OpcodeEnd:
			return ret, nil
		case wasm.OpcodeLocalGet:
			idx, err := r.readU32("local index")
			if err != nil {
				return nil, fmt.Errorf("%w: %s at pc=%d: %v", wasm.ErrInvalidInstruction, wasm.OpcodeLocalGetName, pc, err)
			}
			ret = append(ret, wasm.LocalGet(idx))
		case wasm.OpcodeI32Add:
			ret = append(ret, wasm.I32Add())
		default:
			return nil, fmt.Errorf("%w: opcode %#x at pc=%d", wasm.ErrInvalidInstruction, op, pc)
		}
	}
}
