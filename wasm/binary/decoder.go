package binary

import (
	"bytes"
	"fmt"

	"github.com/tetratelabs/minwasm/wasm"
)

// sectionOrder is the only order sections may appear in. The type section is required; the others may be absent.
var sectionOrder = []wasm.SectionID{wasm.SectionIDType, wasm.SectionIDFunction, wasm.SectionIDExport, wasm.SectionIDCode}

// DecodeModule decodes a module in the WebAssembly 1.0 (MVP) Binary Format, as written by EncodeModule.
//
// The first error aborts decoding, and no partial module is returned. Errors wrap the sentinels in the wasm package, so
// they can be checked with errors.Is, ex. errors.Is(err, wasm.ErrInvalidMagicNumber).
//
// See https://www.w3.org/TR/wasm-core-1/#binary-format%E2%91%A0
func DecodeModule(binary []byte) (*wasm.Module, error) {
	if len(binary) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is smaller than the header", wasm.ErrModuleTooShort, len(binary))
	}

	r := newReader(binary)
	if magic, _ := r.readBytes(4, "magic"); !bytes.Equal(magic, Magic) {
		return nil, fmt.Errorf("%w: %#x", wasm.ErrInvalidMagicNumber, magic)
	}
	if v, _ := r.readUint32LE("version"); v != 1 {
		return nil, fmt.Errorf("%w: %d", wasm.ErrInvalidVersion, v)
	}

	m := &wasm.Module{}
	var typeIndices []wasm.Index
	var codes []*wasm.Function
	next := 0 // index into sectionOrder of the earliest section allowed next
	for next == 0 || r.remaining() > 0 {
		sectionID, err := r.readByte("section id")
		if err != nil {
			return nil, err
		}

		pos, err := nextSection(sectionID, next)
		if err != nil {
			return nil, err
		}
		next = pos + 1

		sectionSize, err := r.readU32("section size")
		if err != nil {
			return nil, fmt.Errorf("get size of section %s: %w", wasm.SectionIDName(sectionID), err)
		}
		if uint64(sectionSize) > uint64(r.remaining()) {
			return nil, fmt.Errorf("section %s: %w: size %d, but only %d bytes remain",
				wasm.SectionIDName(sectionID), wasm.ErrModuleTooShort, sectionSize, r.remaining())
		}

		sectionContentStart := r.position()
		switch sectionID {
		case wasm.SectionIDType:
			m.TypeSection, err = decodeTypeSection(r)
		case wasm.SectionIDFunction:
			typeIndices, err = decodeFunctionSection(r)
		case wasm.SectionIDExport:
			m.ExportSection, err = decodeExportSection(r)
		case wasm.SectionIDCode:
			codes, err = decodeCodeSection(r)
		}

		if err == nil && sectionContentStart+int(sectionSize) != r.position() {
			err = fmt.Errorf("%w: expected to be %d but got %d", wasm.ErrInvalidSectionSize, sectionSize,
				r.position()-sectionContentStart)
		}

		if err != nil {
			return nil, fmt.Errorf("section %s: %w", wasm.SectionIDName(sectionID), err)
		}
	}

	if len(typeIndices) != len(codes) {
		return nil, fmt.Errorf("%w: %d functions, %d code entries", wasm.ErrFunctionCodeMismatch, len(typeIndices), len(codes))
	}

	if err := joinFunctions(m, typeIndices, codes); err != nil {
		return nil, err
	}
	return m, nil
}

// nextSection returns the position of sectionID in sectionOrder, or errs if it can't follow the section at next-1.
func nextSection(sectionID wasm.SectionID, next int) (int, error) {
	for i := next; i < len(sectionOrder); i++ {
		if sectionOrder[i] == sectionID {
			return i, nil
		}
		if next == 0 {
			break // the type section is required first
		}
	}
	expected := "end of module"
	if next < len(sectionOrder) {
		expected = wasm.SectionIDName(sectionOrder[next]) + " section"
	}
	return 0, fmt.Errorf("%w: %#x, expected %s", wasm.ErrInvalidSectionID, sectionID, expected)
}

// joinFunctions fills m.FunctionSection from the index-correlated function and code sections, and checks indices
// that point into it.
func joinFunctions(m *wasm.Module, typeIndices []wasm.Index, codes []*wasm.Function) error {
	for i, typeIdx := range typeIndices {
		if int(typeIdx) >= len(m.TypeSection) {
			return fmt.Errorf("section function: function[%d]: %w: %d >= %d",
				i, wasm.ErrInvalidTypeIndex, typeIdx, len(m.TypeSection))
		}
		codes[i].TypeIndex = typeIdx
	}
	if len(codes) > 0 {
		m.FunctionSection = codes
	}

	for i, e := range m.ExportSection {
		if int(e.Index) >= len(m.FunctionSection) {
			return fmt.Errorf("section export: export[%d] %q: %w: %d >= %d",
				i, e.Name, wasm.ErrInvalidFunctionIndex, e.Index, len(m.FunctionSection))
		}
	}
	return nil
}
