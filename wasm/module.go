// Package wasm defines the in-memory Module shared by the binary encoder, the binary decoder and the interpreter.
//
// The Module is a drastically reduced subset of WebAssembly 1.0 (20191205): function types of i32 and i64 values,
// functions whose bodies only use local.get and i32.add, and function exports.
//
// See https://www.w3.org/TR/wasm-core-1/
package wasm

import (
	"fmt"
	"math"
	"unicode/utf8"
)

// Module is a fully resolved WebAssembly module: all identifiers are indices and function types are deduplicated.
//
// A Module is built once, by the decoder or by a caller, and then only read. Neither the encoder nor the interpreter
// mutate it.
//
// See https://www.w3.org/TR/wasm-core-1/#modules%E2%91%A8
//
// Differences from the specification:
// * FunctionSection holds each function joined with its code, instead of only its type index. The binary format
// splits these into the function and code sections.
// * ExportSection is a slice, as lookups return the first export with a matching name.
//
// Note: The decoder leaves every empty sequence nil, ex. the Params of a function type without parameters or the Body
// of a function without instructions. A module built with empty, non-nil slices decodes back to nil ones, so compare a
// decoded module by contents and length, not with reflect.DeepEqual.
type Module struct {
	// TypeSection contains the unique FunctionType of functions defined in this module.
	//
	// Note: In the Binary Format, this is SectionIDType.
	//
	// See https://www.w3.org/TR/wasm-core-1/#types%E2%91%A0%E2%91%A0
	TypeSection []*FunctionType

	// FunctionSection contains each function defined in this module, in function index order.
	//
	// Note: In the Binary Format, TypeIndex is written to SectionIDFunction and the rest to SectionIDCode.
	//
	// See https://www.w3.org/TR/wasm-core-1/#function-section%E2%91%A0
	FunctionSection []*Function

	// ExportSection contains each export defined in this module.
	//
	// Note: In the Binary Format, this is SectionIDExport.
	//
	// See https://www.w3.org/TR/wasm-core-1/#exports%E2%91%A0
	ExportSection []*Export
}

// Function is a function defined in a Module.
type Function struct {
	// TypeIndex is the position of this function's signature in Module.TypeSection.
	TypeIndex Index

	// LocalTypes are the types of locals declared in addition to the parameters. Each is zero when the function
	// starts.
	LocalTypes []ValueType

	// Body is the sequence of instructions, without the trailing OpcodeEnd.
	Body []Instruction
}

// ExportKind indicates which index namespace an Export.Index is in. Only functions can be exported in this subset.
type ExportKind = byte

const ExportKindFunc ExportKind = 0x00

// ExportKindName returns the canonical name of the exportdesc.
// https://www.w3.org/TR/wasm-core-1/#syntax-exportdesc
func ExportKindName(ek ExportKind) string {
	if ek == ExportKindFunc {
		return "func"
	}
	return "unknown"
}

// Export is the binary representation of an export indicated by Kind.
// See https://www.w3.org/TR/wasm-core-1/#binary-exportsec
type Export struct {
	Kind ExportKind

	// Name is what the host refers to this definition as.
	Name string

	// Index is the position in Module.FunctionSection.
	Index Index
}

// TypeOfFunction returns the FunctionType of the function at funcIdx or nil if either index is out of range.
func (m *Module) TypeOfFunction(funcIdx Index) *FunctionType {
	if int(funcIdx) >= len(m.FunctionSection) {
		return nil
	}
	typeIdx := m.FunctionSection[funcIdx].TypeIndex
	if int(typeIdx) >= len(m.TypeSection) {
		return nil
	}
	return m.TypeSection[typeIdx]
}

// ExportedFunction returns the function exported as name, along with its signature. When more than one export has the
// same name, the first wins.
func (m *Module) ExportedFunction(name string) (*Function, *FunctionType, error) {
	for _, e := range m.ExportSection {
		if e.Name != name {
			continue
		}
		if e.Kind != ExportKindFunc {
			return nil, nil, fmt.Errorf("%w: %q is a %s", ErrExportNotFound, name, ExportKindName(e.Kind))
		}
		ft := m.TypeOfFunction(e.Index)
		if ft == nil {
			return nil, nil, fmt.Errorf("%w: export %q points to function[%d]", ErrInvalidFunctionIndex, name, e.Index)
		}
		return m.FunctionSection[e.Index], ft, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrExportNotFound, name)
}

// Validate returns an error if the module can't be encoded faithfully: an index outside its section, an unknown
// value type, export kind or opcode, a local.get index past the parameters and declared locals, or a count beyond
// uint32.
//
// Note: local.get indices are checked here, but not by the decoder. The interpreter traps on them instead.
func (m *Module) Validate() error {
	if err := validateCount("types", len(m.TypeSection)); err != nil {
		return err
	}
	if err := validateCount("functions", len(m.FunctionSection)); err != nil {
		return err
	}
	if err := validateCount("exports", len(m.ExportSection)); err != nil {
		return err
	}

	for i, ft := range m.TypeSection {
		if err := validateValueTypes(ft.Params); err != nil {
			return fmt.Errorf("type[%d] params: %w", i, err)
		}
		if err := validateValueTypes(ft.Results); err != nil {
			return fmt.Errorf("type[%d] results: %w", i, err)
		}
	}

	for i, f := range m.FunctionSection {
		if err := m.validateFunction(f); err != nil {
			return fmt.Errorf("function[%d]: %w", i, err)
		}
	}

	for i, e := range m.ExportSection {
		if e.Kind != ExportKindFunc {
			return fmt.Errorf("export[%d]: %w: %#x", i, ErrInvalidExportKind, e.Kind)
		}
		if !utf8.ValidString(e.Name) {
			return fmt.Errorf("export[%d]: %w", i, ErrInvalidExportName)
		}
		if int(e.Index) >= len(m.FunctionSection) {
			return fmt.Errorf("export[%d] %q: %w: %d >= %d", i, e.Name, ErrInvalidFunctionIndex,
				e.Index, len(m.FunctionSection))
		}
	}
	return nil
}

func (m *Module) validateFunction(f *Function) error {
	if int(f.TypeIndex) >= len(m.TypeSection) {
		return fmt.Errorf("%w: %d >= %d", ErrInvalidTypeIndex, f.TypeIndex, len(m.TypeSection))
	}
	if err := validateValueTypes(f.LocalTypes); err != nil {
		return fmt.Errorf("locals: %w", err)
	}
	if err := validateCount("instructions", len(f.Body)); err != nil {
		return err
	}

	localCount := uint64(len(m.TypeSection[f.TypeIndex].Params)) + uint64(len(f.LocalTypes))
	if localCount > math.MaxUint32 {
		return fmt.Errorf("%w: %d locals", ErrCountOverflow, localCount)
	}
	for pc, in := range f.Body {
		switch in.Opcode {
		case OpcodeLocalGet:
			if uint64(in.Index) >= localCount {
				return fmt.Errorf("%w: %s at pc=%d, but only %d locals", ErrInvalidLocalIndex, in, pc, localCount)
			}
		case OpcodeI32Add:
		default:
			return fmt.Errorf("%w: %s at pc=%d", ErrInvalidInstruction, InstructionName(in.Opcode), pc)
		}
	}
	return nil
}

func validateValueTypes(vts []ValueType) error {
	if err := validateCount("value types", len(vts)); err != nil {
		return err
	}
	for _, vt := range vts {
		if !isValueType(vt) {
			return fmt.Errorf("%w: %#x", ErrInvalidValueType, vt)
		}
	}
	return nil
}

func validateCount(what string, n int) error {
	if uint64(n) > math.MaxUint32 {
		return fmt.Errorf("%w: %d %s", ErrCountOverflow, n, what)
	}
	return nil
}
