package binary

import (
	"fmt"

	"github.com/tetratelabs/minwasm/wasm"
)

// EncodeModule encodes the module in the WebAssembly 1.0 (MVP) Binary Format, or errs with wasm.ErrEncode if it
// violates an invariant checked by wasm.Module Validate, such as a type index out of range.
//
// Sections are written in the order type, function, export, code. The type section is always written, even when empty.
// The others are skipped when the module has no functions or no exports.
//
// Note: If saving to a file, the conventional extension is wasm
// See https://www.w3.org/TR/wasm-core-1/#binary-format%E2%91%A0
func EncodeModule(m *wasm.Module) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", wasm.ErrEncode, err)
	}

	bytes := make([]byte, 0, headerSize)
	bytes = append(bytes, Magic...)
	bytes = append(bytes, version...)
	bytes = append(bytes, encodeTypeSection(m.TypeSection)...)
	if len(m.FunctionSection) > 0 {
		bytes = append(bytes, encodeFunctionSection(m.FunctionSection)...)
	}
	if len(m.ExportSection) > 0 {
		bytes = append(bytes, encodeExportSection(m.ExportSection)...)
	}
	if len(m.FunctionSection) > 0 {
		bytes = append(bytes, encodeCodeSection(m.FunctionSection)...)
	}
	return bytes, nil
}
