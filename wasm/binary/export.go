package binary

import (
	"fmt"
	"unicode/utf8"

	"github.com/tetratelabs/minwasm/wasm"
	"github.com/tetratelabs/minwasm/wasm/leb128"
)

func decodeExport(r *reader) (*wasm.Export, error) {
	nameLen, err := r.readU32("export name size")
	if err != nil {
		return nil, err
	}
	name, err := r.readBytes(nameLen, "export name")
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(name) {
		return nil, fmt.Errorf("%w: %x is not valid UTF-8", wasm.ErrInvalidExportName, name)
	}

	kind, err := r.readByte("export kind")
	if err != nil {
		return nil, err
	}
	if kind != wasm.ExportKindFunc {
		return nil, fmt.Errorf("%w: invalid byte for exportdesc: %#x", wasm.ErrInvalidExportKind, kind)
	}

	idx, err := r.readU32("export index")
	if err != nil {
		return nil, err
	}
	return &wasm.Export{Kind: kind, Name: string(name), Index: idx}, nil
}

// encodeExport returns the wasm.Export encoded in WebAssembly 1.0 (MVP) Binary Format.
//
// See https://www.w3.org/TR/wasm-core-1/#export-section%E2%91%A0
func encodeExport(e *wasm.Export) []byte {
	data := encodeSizePrefixed([]byte(e.Name))
	data = append(data, e.Kind)
	data = append(data, leb128.EncodeUint32(e.Index)...)
	return data
}

func encodeSizePrefixed(data []byte) []byte {
	size := leb128.EncodeUint32(uint32(len(data)))
	return append(size, data...)
}
