// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"log"
	"strconv"
	"strings"
)

// compatOperands is the number of tokens, mnemonic included, that each
// instruction form reads in compatibility mode.
var compatOperands = map[string]int{
	"JMP": 2, "JEQ": 2, "JNE": 2, "JLT": 2, "JGT": 2, "JGE": 2,
	"PUSH": 2, "POP": 2,
	"MOV": 3,
	"LDR": 4, "STR": 4,
	"ADD": 4, "SUB": 4, "AND": 4, "OR": 4, "CMP": 4,
	"ADDI": 4, "SUBI": 4, "SHR": 4, "SHL": 4,
}

// compatCharValue decodes a data literal body. Only '\0' is an escape.
func compatCharValue(str string) (value int64, err error) {
	if str == `\0` {
		return
	}

	runes := []rune(str)
	if len(runes) != 1 {
		err = ErrParseCharacter(str)
		return
	}

	value = int64(runes[0])
	return
}

// compatNumber parses an integer with base prefixes 0x, 0o and 0b.
// A decimal with leading zeros is not a number, unless it is all zeros.
func compatNumber(word string) (value int64, ok bool) {
	digits := strings.TrimLeft(word, "+-")
	if len(digits) > 1 && digits[0] == '0' &&
		!strings.ContainsRune("xXoObB", rune(digits[1])) &&
		strings.Trim(digits, "0_") != "" {
		return
	}

	value, err := strconv.ParseInt(word, 0, 64)
	if err != nil {
		value = 0
		return
	}

	ok = true
	return
}

// compatValue resolves a numeric operand: a label or a number.
// Anything else is 0.
func (asm *Assembler) compatValue(word string) int64 {
	word = strings.TrimSpace(strings.NewReplacer("#", "", ",", "").Replace(word))

	if ip, ok := asm.Label[word]; ok {
		return int64(ip)
	}

	value, ok := compatNumber(word)
	if !ok && asm.Verbose {
		log.Printf("asm: '%v' is not a number (using 0)", word)
	}

	return value
}

// compatRegister parses R0-R15. Every 'R' in the token is ignored.
func compatRegister(word string) (reg int, err error) {
	text := strings.NewReplacer("R", "", ",", "").Replace(strings.ToUpper(word))
	reg, err = strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		err = ErrParseRegister(word)
		return
	}

	if reg < 0 || reg >= REGISTER_COUNT {
		err = ErrRegisterInvalid
	}

	return
}

// compatRegisters parses the register tokens at the given positions.
func compatRegisters(words []string, at ...int) (regs []int, err error) {
	for _, n := range at {
		var reg int
		reg, err = compatRegister(words[n])
		if err != nil {
			return
		}
		regs = append(regs, reg)
	}

	return
}

// encodeCompat encodes an instruction with positional operands. Memory
// reference brackets are only removed from the base register and offset
// tokens, so "[R1]" without an offset does not parse. Extra tokens are
// ignored.
func (asm *Assembler) encodeCompat(mnemonic string, words []string, ip int) (code Code, err error) {
	need, ok := compatOperands[mnemonic]
	if !ok {
		err = ErrInstructionInvalid
		return
	}

	if len(words) < need {
		err = ErrOpcodeValueMissing
		return
	}

	var regs []int
	switch mnemonic {
	case "JMP":
		code = MakeCodeJmp(int(asm.compatValue(words[1])) - ip - 1)
	case "JEQ", "JNE", "JLT", "JGT", "JGE":
		code = MakeCodeJc(conds[mnemonic], int(asm.compatValue(words[1]))-ip-1)
	case "LDR", "STR":
		words = append([]string(nil), words...)
		words[2] = strings.ReplaceAll(words[2], "[", "")
		regs, err = compatRegisters(words, 1, 2)
		if err != nil {
			return
		}
		imm := uint16(asm.compatValue(strings.ReplaceAll(words[3], "]", "")))
		if mnemonic == "LDR" {
			code = MakeCodeLdr(regs[0], regs[1], imm)
		} else {
			code = MakeCodeStr(imm, regs[1], regs[0])
		}
	case "MOV":
		regs, err = compatRegisters(words, 1)
		if err != nil {
			return
		}
		code = MakeCodeMov(regs[0], uint16(asm.compatValue(words[2])))
	case "ADD", "SUB", "AND", "OR", "CMP":
		regs, err = compatRegisters(words, 1, 2, 3)
		if err != nil {
			return
		}
		op := OP_CMP
		if mnemonic != "CMP" {
			op = aluRegMap[mnemonic]
		}
		code = MakeCodeAlu(op, regs[0], regs[1], uint16(regs[2]))
	case "ADDI", "SUBI", "SHR", "SHL":
		regs, err = compatRegisters(words, 1, 2)
		if err != nil {
			return
		}
		code = MakeCodeAlu(aluImmMap[mnemonic], regs[0], regs[1], uint16(asm.compatValue(words[3])))
	case "PUSH":
		regs, err = compatRegisters(words, 1)
		if err != nil {
			return
		}
		code = MakeCodePush(regs[0])
	case "POP":
		regs, err = compatRegisters(words, 1)
		if err != nil {
			return
		}
		code = MakeCodePop(regs[0])
	}

	return
}
