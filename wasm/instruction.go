package wasm

import "fmt"

// Opcode is the binary Opcode of an instruction. See also InstructionName
type Opcode = byte

const (
	// OpcodeEnd terminates a function body. It is never held in Function.Body, only encoded.
	OpcodeEnd Opcode = 0x0b

	// OpcodeLocalGet pushes the value of a parameter or declared local. Its immediate is the local index.
	OpcodeLocalGet Opcode = 0x20

	// OpcodeI32Add pops two i32 values and pushes their sum, wrapping on overflow.
	OpcodeI32Add Opcode = 0x6a
)

const (
	OpcodeEndName      = "end"
	OpcodeLocalGetName = "local.get"
	OpcodeI32AddName   = "i32.add"
)

// InstructionName returns the instruction corresponding to this binary Opcode.
// See https://www.w3.org/TR/wasm-core-1/#a7-index-of-instructions
func InstructionName(oc Opcode) string {
	switch oc {
	case OpcodeEnd:
		return OpcodeEndName
	case OpcodeLocalGet:
		return OpcodeLocalGetName
	case OpcodeI32Add:
		return OpcodeI32AddName
	}
	return fmt.Sprintf("unknown(%#x)", oc)
}

// Instruction is one decoded instruction of a Function body.
//
// Only two kinds exist: OpcodeLocalGet, which reads Index, and OpcodeI32Add, which ignores it.
type Instruction struct {
	Opcode Opcode
	// Index is the immediate of OpcodeLocalGet.
	Index Index
}

// LocalGet returns a local.get instruction reading the local at index.
func LocalGet(index Index) Instruction {
	return Instruction{Opcode: OpcodeLocalGet, Index: index}
}

// I32Add returns an i32.add instruction.
func I32Add() Instruction {
	return Instruction{Opcode: OpcodeI32Add}
}

// String returns the text format of the instruction, ex. "local.get 1".
func (i Instruction) String() string {
	if i.Opcode == OpcodeLocalGet {
		return fmt.Sprintf("%s %d", OpcodeLocalGetName, i.Index)
	}
	return InstructionName(i.Opcode)
}
