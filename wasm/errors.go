package wasm

import "errors"

// Decode errors. These are deterministic format failures: decoding stops at the first one and no partial Module is
// returned.
var (
	// ErrModuleTooShort is returned when the binary is shorter than its header, or ends before a section it declares.
	ErrModuleTooShort = errors.New("module too short")
	// ErrInvalidMagicNumber is returned when the binary doesn't begin with "\0asm".
	ErrInvalidMagicNumber = errors.New("invalid magic number")
	// ErrInvalidVersion is returned when the binary version isn't 1.
	ErrInvalidVersion = errors.New("invalid version header")
	// ErrInvalidSectionID is returned on an unknown section, or one out of the order type, function, export, code.
	ErrInvalidSectionID = errors.New("invalid section id")
	// ErrInvalidSectionSize is returned when a section's declared size doesn't match its contents.
	ErrInvalidSectionSize  = errors.New("invalid section size")
	ErrInvalidFunctionType = errors.New("invalid function type")
	ErrInvalidValueType    = errors.New("invalid value type")
	ErrInvalidExportKind   = errors.New("invalid export kind")
	// ErrInvalidExportName is returned when an export name isn't valid UTF-8.
	ErrInvalidExportName  = errors.New("invalid export name")
	ErrInvalidInstruction = errors.New("invalid instruction")
	// ErrFunctionCodeMismatch is returned when the function and code sections have different lengths.
	ErrFunctionCodeMismatch = errors.New("function and code section have inconsistent lengths")
)

// Structural errors. The decoder returns these for indices that point outside their section. Wrapped in ErrEncode,
// the encoder returns them for a Module that doesn't satisfy its invariants.
var (
	ErrInvalidTypeIndex     = errors.New("invalid type index")
	ErrInvalidFunctionIndex = errors.New("invalid function index")
	ErrInvalidLocalIndex    = errors.New("invalid local index")
	ErrCountOverflow        = errors.New("count overflows uint32")
)

// ErrEncode is returned by the encoder instead of emitting bytes for a Module that violates its invariants.
var ErrEncode = errors.New("cannot encode module")

// Lookup and arity errors, returned before any instruction executes.
var (
	ErrExportNotFound   = errors.New("export not found")
	ErrInvalidArgNumber = errors.New("invalid number of arguments")
	// ErrInvalidResultArity is returned when a caller expecting exactly one result invokes a function declaring
	// another number of results.
	ErrInvalidResultArity = errors.New("invalid number of results")
	// ErrInvalidResultType is returned when a caller expecting an i32 result invokes a function returning another
	// type.
	ErrInvalidResultType = errors.New("invalid result type")
)

// ErrTrap is matched by every error raised while executing a function body. The execution state is discarded.
var ErrTrap = errors.New("trap")

// Trap causes. Errors returned by the interpreter match both ErrTrap and one of these.
var (
	ErrLocalIndexOutOfBounds = errors.New("local index out of bounds")
	ErrStackUnderflow        = errors.New("operand stack underflow")
	ErrStackOverflow         = errors.New("operand stack overflow")
	ErrTypeMismatch          = errors.New("operand type mismatch")
	// ErrStackNotEmpty is raised when values remain on the stack after the declared results are popped.
	ErrStackNotEmpty = errors.New("operand stack not empty at end of function")
)
