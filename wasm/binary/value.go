package binary

import (
	"fmt"

	"github.com/tetratelabs/minwasm/wasm"
	"github.com/tetratelabs/minwasm/wasm/leb128"
)

var noValType = []byte{0}

// encodedValTypes is a cache of size prefixed binary encoding of known val types.
var encodedValTypes = map[wasm.ValueType][]byte{
	wasm.ValueTypeI32: {1, wasm.ValueTypeI32},
	wasm.ValueTypeI64: {1, wasm.ValueTypeI64},
}

// encodeValTypes fast paths binary encoding of common value type lengths
func encodeValTypes(vt []wasm.ValueType) []byte {
	switch len(vt) {
	case 0: // nullary
		return noValType
	case 1: // any single result
		if encoded, ok := encodedValTypes[vt[0]]; ok {
			return encoded
		}
	case 2: // ex. binary operators such as add
		return []byte{2, vt[0], vt[1]}
	}
	count := leb128.EncodeUint32(uint32(len(vt)))
	return append(count, vt...)
}

// decodeValueTypes reads num value types. Zero value types decode as nil.
func decodeValueTypes(r *reader, num uint32, what string) ([]wasm.ValueType, error) {
	if num == 0 {
		return nil, nil
	}
	buf, err := r.readBytes(num, what)
	if err != nil {
		return nil, err
	}

	ret := make([]wasm.ValueType, num)
	for i, v := range buf {
		if err = checkValueType(v); err != nil {
			return nil, err
		}
		ret[i] = v
	}
	return ret, nil
}

func decodeValueType(r *reader, what string) (wasm.ValueType, error) {
	b, err := r.readByte(what)
	if err != nil {
		return 0, err
	}
	return b, checkValueType(b)
}

func checkValueType(vt wasm.ValueType) error {
	switch vt {
	case wasm.ValueTypeI32, wasm.ValueTypeI64:
		return nil
	default:
		return fmt.Errorf("%w: %#x", wasm.ErrInvalidValueType, vt)
	}
}
