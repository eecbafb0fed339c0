package binary

import (
	"fmt"

	"github.com/tetratelabs/minwasm/wasm"
	"github.com/tetratelabs/minwasm/wasm/leb128"
)

func decodeTypeSection(r *reader) ([]*wasm.FunctionType, error) {
	vs, err := r.readCount("type count")
	if err != nil {
		return nil, err
	}
	if vs == 0 {
		return nil, nil
	}

	result := make([]*wasm.FunctionType, vs)
	for i := uint32(0); i < vs; i++ {
		if result[i], err = decodeFunctionType(r); err != nil {
			return nil, fmt.Errorf("read %d-th type: %w", i, err)
		}
	}
	return result, nil
}

func decodeFunctionType(r *reader) (*wasm.FunctionType, error) {
	b, err := r.readByte("function type")
	if err != nil {
		return nil, err
	}
	if b != functionTypeMarker {
		return nil, fmt.Errorf("%w: %#x != %#x", wasm.ErrInvalidFunctionType, b, functionTypeMarker)
	}

	paramCount, err := r.readCount("parameter count")
	if err != nil {
		return nil, err
	}
	paramTypes, err := decodeValueTypes(r, paramCount, "parameter types")
	if err != nil {
		return nil, fmt.Errorf("could not read parameter types: %w", err)
	}

	resultCount, err := r.readCount("result count")
	if err != nil {
		return nil, err
	}
	resultTypes, err := decodeValueTypes(r, resultCount, "result types")
	if err != nil {
		return nil, fmt.Errorf("could not read result types: %w", err)
	}

	return &wasm.FunctionType{Params: paramTypes, Results: resultTypes}, nil
}

// decodeFunctionSection returns the type index of each function, to be joined with the code section.
func decodeFunctionSection(r *reader) ([]wasm.Index, error) {
	vs, err := r.readCount("function count")
	if err != nil {
		return nil, err
	}

	result := make([]wasm.Index, vs)
	for i := uint32(0); i < vs; i++ {
		if result[i], err = r.readU32("type index"); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func decodeExportSection(r *reader) ([]*wasm.Export, error) {
	vs, err := r.readCount("export count")
	if err != nil {
		return nil, err
	}
	if vs == 0 {
		return nil, nil
	}

	result := make([]*wasm.Export, vs)
	for i := uint32(0); i < vs; i++ {
		if result[i], err = decodeExport(r); err != nil {
			return nil, fmt.Errorf("read export[%d]: %w", i, err)
		}
	}
	return result, nil
}

// decodeCodeSection returns the locals and body of each function. TypeIndex is left unset until joined with the
// function section.
func decodeCodeSection(r *reader) ([]*wasm.Function, error) {
	vs, err := r.readCount("code count")
	if err != nil {
		return nil, err
	}

	result := make([]*wasm.Function, vs)
	for i := uint32(0); i < vs; i++ {
		result[i] = &wasm.Function{}
		if err = decodeCode(r, result[i]); err != nil {
			return nil, fmt.Errorf("read %d-th code segment: %w", i, err)
		}
	}
	return result, nil
}

// encodeSection encodes the sectionID, the size of its contents in bytes, followed by the contents.
// See https://www.w3.org/TR/wasm-core-1/#sections%E2%91%A0
func encodeSection(sectionID wasm.SectionID, contents []byte) []byte {
	return append([]byte{sectionID}, encodeSizePrefixed(contents)...)
}

// encodeTypeSection encodes a SectionIDType for the given imports in WebAssembly 1.0 (MVP) Binary Format.
//
// Note: unlike the other sections, this is encoded even when there are no types.
//
// See encodeFunctionType
// See https://www.w3.org/TR/wasm-core-1/#type-section%E2%91%A0
func encodeTypeSection(types []*wasm.FunctionType) []byte {
	contents := leb128.EncodeUint32(uint32(len(types)))
	for _, t := range types {
		contents = append(contents, encodeFunctionType(t)...)
	}
	return encodeSection(wasm.SectionIDType, contents)
}

// encodeFunctionType returns the wasm.FunctionType encoded in WebAssembly 1.0 (MVP) Binary Format.
//
// See https://www.w3.org/TR/wasm-core-1/#binary-functype
func encodeFunctionType(t *wasm.FunctionType) []byte {
	data := []byte{functionTypeMarker}
	data = append(data, encodeValTypes(t.Params)...)
	return append(data, encodeValTypes(t.Results)...)
}

// encodeFunctionSection encodes a SectionIDFunction for the type indices of module-defined functions in
// WebAssembly 1.0 (MVP) Binary Format.
//
// See https://www.w3.org/TR/wasm-core-1/#function-section%E2%91%A0
func encodeFunctionSection(functions []*wasm.Function) []byte {
	contents := leb128.EncodeUint32(uint32(len(functions)))
	for _, f := range functions {
		contents = append(contents, leb128.EncodeUint32(f.TypeIndex)...)
	}
	return encodeSection(wasm.SectionIDFunction, contents)
}

// encodeExportSection encodes a SectionIDExport for the given exports in WebAssembly 1.0 (MVP) Binary Format.
//
// See encodeExport
// See https://www.w3.org/TR/wasm-core-1/#export-section%E2%91%A0
func encodeExportSection(exports []*wasm.Export) []byte {
	contents := leb128.EncodeUint32(uint32(len(exports)))
	for _, e := range exports {
		contents = append(contents, encodeExport(e)...)
	}
	return encodeSection(wasm.SectionIDExport, contents)
}

// encodeCodeSection encodes a SectionIDCode for the module-defined function in WebAssembly 1.0 (MVP) Binary Format.
//
// See encodeCode
// See https://www.w3.org/TR/wasm-core-1/#code-section%E2%91%A0
func encodeCodeSection(functions []*wasm.Function) []byte {
	contents := leb128.EncodeUint32(uint32(len(functions)))
	for _, f := range functions {
		contents = append(contents, encodeCode(f)...)
	}
	return encodeSection(wasm.SectionIDCode, contents)
}
