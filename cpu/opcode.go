package cpu

import (
	"fmt"
)

//go:generate go tool stringer -linecomment -type=CodeOp

// CodeOp is the 4-bit opcode class held in bits 3-0 of an instruction.
type CodeOp int

const (
	OP_JMP  = CodeOp(0x0) // JMP
	OP_JC   = CodeOp(0x1) // J<cond>
	OP_LDR  = CodeOp(0x2) // LDR
	OP_STR  = CodeOp(0x3) // STR
	OP_MOV  = CodeOp(0x4) // MOV
	OP_ADD  = CodeOp(0x5) // ADD
	OP_ADDI = CodeOp(0x6) // ADDI
	OP_SUB  = CodeOp(0x7) // SUB
	OP_SUBI = CodeOp(0x8) // SUBI
	OP_AND  = CodeOp(0x9) // AND
	OP_OR   = CodeOp(0xA) // OR
	OP_SHR  = CodeOp(0xB) // SHR
	OP_SHL  = CodeOp(0xC) // SHL
	OP_CMP  = CodeOp(0xD) // CMP
	OP_PUSH = CodeOp(0xE) // PUSH
	OP_POP  = CodeOp(0xF) // POP
)

//go:generate go tool stringer -linecomment -type=CodeCond

// CodeCond is the 2-bit branch condition of an OP_JC instruction.
type CodeCond int

const (
	COND_EQ = CodeCond(0) // EQ
	COND_NE = CodeCond(1) // NE
	COND_LT = CodeCond(2) // LT
	COND_GE = CodeCond(3) // GE
)

// Taken returns true if a branch on this condition is taken for the flags.
func (cond CodeCond) Taken(zero, carry bool) bool {
	switch cond {
	case COND_EQ:
		return zero
	case COND_NE:
		return !zero
	case COND_LT:
		return !zero && carry
	case COND_GE:
		return zero || !carry
	}

	return false
}

// Field widths of the signed branch offsets.
const (
	JMP_OFFSET_BITS  = 12
	COND_OFFSET_BITS = 10
)

// CODE_HALT is the sentinel halt word.
const CODE_HALT = Code(0xFFFF)

// Code is a single 16-bit instruction word.
type Code uint16

// signExtend interprets the low width bits of value as two's-complement.
func signExtend(value uint16, width uint) int {
	mask := uint16(1<<width) - 1
	v := int(value & mask)
	if v&(1<<(width-1)) != 0 {
		v -= 1 << width
	}
	return v
}

// fieldOffset encodes a signed offset into a width bit field.
func fieldOffset(offset int, width uint) uint16 {
	return uint16(offset) & (uint16(1<<width) - 1)
}

// offsetFits returns true if offset is representable in a signed width bit field.
func offsetFits(offset int, width uint) bool {
	return offset >= -(1<<(width-1)) && offset < (1<<(width-1))
}

// MakeCodeJmp creates an unconditional relative jump.
func MakeCodeJmp(offset int) Code {
	return Code(fieldOffset(offset, JMP_OFFSET_BITS)<<4 | uint16(OP_JMP))
}

// MakeCodeJc creates a conditional relative jump.
func MakeCodeJc(cond CodeCond, offset int) Code {
	return Code(uint16(cond&3)<<14 | fieldOffset(offset, COND_OFFSET_BITS)<<4 | uint16(OP_JC))
}

// MakeCodeLdr creates a load of mem[rm+imm] into rd.
func MakeCodeLdr(rd, rm int, imm uint16) Code {
	return makeFields(OP_LDR, uint16(rd), uint16(rm), imm)
}

// MakeCodeStr creates a store of rn into mem[rm+imm].
func MakeCodeStr(imm uint16, rm, rn int) Code {
	return makeFields(OP_STR, imm, uint16(rm), uint16(rn))
}

// MakeCodeMov creates a load of an 8-bit immediate into rd.
func MakeCodeMov(rd int, imm uint16) Code {
	return Code((uint16(rd)&0xf)<<12 | (imm&0xff)<<4 | uint16(OP_MOV))
}

// MakeCodeAlu creates a three-field ALU operation. For the immediate forms
// (ADDI, SUBI, SHR, SHL) the last field is the 4-bit immediate.
func MakeCodeAlu(op CodeOp, rd, rm int, rn uint16) Code {
	return makeFields(op, uint16(rd), uint16(rm), rn)
}

// MakeCodeCmp creates a compare of rm against rn.
func MakeCodeCmp(rm, rn int) Code {
	return makeFields(OP_CMP, 0, uint16(rm), uint16(rn))
}

// MakeCodePush creates a push of rn.
func MakeCodePush(rn int) Code {
	return makeFields(OP_PUSH, 0, 0, uint16(rn))
}

// MakeCodePop creates a pop into rd.
func MakeCodePop(rd int) Code {
	return makeFields(OP_POP, uint16(rd), 0, 0)
}

func makeFields(op CodeOp, a, b, c uint16) Code {
	return Code((a&0xf)<<12 | (b&0xf)<<8 | (c&0xf)<<4 | uint16(op)&0xf)
}

// IsHalt returns true for the halt sentinel.
func (code Code) IsHalt() bool {
	return code == CODE_HALT
}

// Op returns the opcode class.
func (code Code) Op() CodeOp {
	return CodeOp(code & 0xf)
}

// Body returns the instruction word with the opcode bits cleared.
func (code Code) Body() uint16 {
	return uint16(code) & 0xfff0
}

// Cond returns the branch condition of an OP_JC instruction.
func (code Code) Cond() CodeCond {
	return CodeCond((code >> 14) & 0x3)
}

// Rd returns the register field in bits 15-12.
func (code Code) Rd() int {
	return int((code >> 12) & 0xf)
}

// Rm returns the register field in bits 11-8.
func (code Code) Rm() int {
	return int((code >> 8) & 0xf)
}

// Rn returns the register field in bits 7-4.
func (code Code) Rn() int {
	return int((code >> 4) & 0xf)
}

// Imm4 returns the unsigned immediate in bits 7-4.
func (code Code) Imm4() uint16 {
	return uint16(code>>4) & 0xf
}

// Imm8 returns the unsigned immediate in bits 11-4.
func (code Code) Imm8() uint16 {
	return uint16(code>>4) & 0xff
}

// StrImm returns the STR immediate in bits 15-12.
func (code Code) StrImm() uint16 {
	return uint16(code>>12) & 0xf
}

// JumpOffset returns the sign-extended 12-bit JMP offset.
func (code Code) JumpOffset() int {
	return signExtend(uint16(code>>4), JMP_OFFSET_BITS)
}

// CondOffset returns the sign-extended 10-bit conditional jump offset.
func (code Code) CondOffset() int {
	return signExtend(uint16(code>>4), COND_OFFSET_BITS)
}

// String returns the assembly language representation of this instruction.
// Branch offsets are shown relative to the following instruction.
func (code Code) String() (out string) {
	if code.IsHalt() {
		return "HALT"
	}

	op := code.Op()
	switch op {
	case OP_JMP:
		out = fmt.Sprintf("JMP %+d", code.JumpOffset())
	case OP_JC:
		out = fmt.Sprintf("J%v %+d", code.Cond(), code.CondOffset())
	case OP_LDR:
		out = fmt.Sprintf("LDR R%d, [R%d, #%d]", code.Rd(), code.Rm(), code.Imm4())
	case OP_STR:
		out = fmt.Sprintf("STR R%d, [R%d, #%d]", code.Rn(), code.Rm(), code.StrImm())
	case OP_MOV:
		out = fmt.Sprintf("MOV R%d, #%d", code.Rd(), code.Imm8())
	case OP_ADD, OP_SUB, OP_AND, OP_OR:
		out = fmt.Sprintf("%v R%d, R%d, R%d", op, code.Rd(), code.Rm(), code.Rn())
	case OP_ADDI, OP_SUBI, OP_SHR, OP_SHL:
		out = fmt.Sprintf("%v R%d, R%d, #%d", op, code.Rd(), code.Rm(), code.Imm4())
	case OP_CMP:
		out = fmt.Sprintf("CMP R%d, R%d", code.Rm(), code.Rn())
	case OP_PUSH:
		out = fmt.Sprintf("PUSH R%d", code.Rn())
	case OP_POP:
		out = fmt.Sprintf("POP R%d", code.Rd())
	}

	return
}
