package cpu

import (
	"github.com/ezrec/risco/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrHalted = translate.Error("cpu halted")

	// Image errors
	ErrImageSyntax  = translate.Error("image line syntax")
	ErrImageAddress = translate.Error("image address beyond memory")

	// Assembler errors
	ErrEquateSyntax       = translate.Error(".equ syntax")
	ErrEquateDuplicate    = translate.Error(".equ duplicated")
	ErrLabelDuplicate     = translate.Error("label duplicated")
	ErrOpcodeExtraArgs    = translate.Error("excessive arguments")
	ErrOpcodeValueMissing = translate.Error("value missing")
	ErrInstructionInvalid = translate.Error("instruction invalid")
	ErrRegisterInvalid    = translate.Error("register invalid")
	ErrImmediateRange     = translate.Error("immediate out of range")
	ErrTargetRange        = translate.Error("branch target out of range")
)

// ErrPcBounds is the fault raised when the program counter leaves memory.
type ErrPcBounds uint16

func (err ErrPcBounds) Error() string {
	return f("program counter out of bounds 0x%04X", uint16(err))
}

// ErrOpcode is the fault raised for a word with no instruction handler.
type ErrOpcode Code

func (eo ErrOpcode) Error() string {
	return f("invalid instruction %04X", Code(eo).Body())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

type ErrParseRegister string

func (err ErrParseRegister) Error() string {
	return f("'%v' is not a register", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
