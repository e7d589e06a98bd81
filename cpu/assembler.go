// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

var (
	commentRe   = regexp.MustCompile(`;.*|//.*`)
	labelRe     = regexp.MustCompile(`^\s*([A-Za-z_]\w*)\s*:\s*(.*)$`)
	tokenRe     = regexp.MustCompile(`[\[\]\w']+|[#\-?\w]+`)
	characterRe = regexp.MustCompile(`'(\\.|[^'\\])'`)
	parenRe     = regexp.MustCompile(`\$\([^\$]*\)`)
	identRe     = regexp.MustCompile(`^[A-Za-z_]\w*$`)
)

// Predefined system equates
var sysEquate = map[string]string{
	"MEMORY_SIZE": fmt.Sprintf("%#x", MEMORY_SIZE),
	"STACK_TOP":   fmt.Sprintf("%#x", STACK_TOP),
}

// equateDepth limits .equ to .equ indirection.
const equateDepth = 16

// sourceLine is an instruction line retained by the first pass.
type sourceLine struct {
	LineNo int
	Ip     int
	Text   string
}

// Assembler is a two pass assembler for RISC-O.
//
// The first pass strips comments and labels, assigning each remaining
// instruction the next address. The second pass encodes each instruction
// with all labels known.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Compat  bool     // If set, assemble with the legacy rules: positional operands, no extensions, failures encode as 0.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of labels to instruction addresses.
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// charValue decodes the body of a character literal.
func charValue(str string) (value int64, err error) {
	if len(str) == 2 && str[0] == '\\' {
		switch str[1] {
		case '0':
			value = 0
		case 'n':
			value = '\n'
		case 'r':
			value = '\r'
		case 't':
			value = '\t'
		case 'e':
			value = 033
		case '\\', '\'':
			value = int64(str[1])
		default:
			err = ErrParseCharacter(str)
		}
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

// valueOf resolves a numeric operand: a label, an equate, a character
// literal or a number with C style base prefix.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	return asm.valueOfDepth(word, 0)
}

func (asm *Assembler) valueOfDepth(word string, depth int) (value int64, err error) {
	word = strings.TrimSpace(strings.NewReplacer("#", "", ",", "").Replace(word))

	if ip, ok := asm.Label[word]; ok {
		value = int64(ip)
		return
	}

	if equ, ok := asm.Equate[word]; ok && depth < equateDepth {
		return asm.valueOfDepth(equ, depth+1)
	}

	if len(word) >= 3 && word[0] == '\'' && word[len(word)-1] == '\'' {
		value, err = charValue(word[1 : len(word)-1])
		return
	}

	value, err = strconv.ParseInt(word, 0, 64)
	if err != nil {
		value = 0
		if identRe.MatchString(word) {
			err = ErrLabelMissing(word)
		} else {
			err = ErrParseNumber(word)
		}
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key := range asm.Equate {
		var v int64
		v, err = asm.valueOf(key)
		if err != nil {
			// Ignore non-integer equates.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt64(v)
	}
	for key, ip := range asm.Label {
		pred[key] = starlark.MakeInt(ip)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = errors.Join(ErrParseExpression(expr), err)
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// expand replaces character literals and $(...) expressions in the
// operands of a line with their decimal values.
func (asm *Assembler) expand(line string) (out string, err error) {
	out = characterRe.ReplaceAllStringFunc(line, func(word string) string {
		value, _err := charValue(word[1 : len(word)-1])
		if _err != nil {
			return word
		}
		return fmt.Sprintf("%d", value)
	})

	out = parenRe.ReplaceAllStringFunc(out, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil && err == nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})

	return
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = make(map[string]int, 16)
	asm.Opcode = asm.Opcode[:0]
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	// Pass 1: symbols.
	var lines []sourceLine
	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1
		line = text

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text = strings.TrimRight(commentRe.ReplaceAllString(text, ""), " \t\r")
		if len(strings.TrimSpace(text)) == 0 {
			continue
		}

		// .equ CONST VALUE
		words := strings.Fields(text)
		if words[0] == ".equ" && !asm.Compat {
			if len(words) != 3 {
				err = ErrEquateSyntax
				return
			}
			_, ok := asm.Equate[words[1]]
			if ok {
				err = ErrEquateDuplicate
				return
			}
			asm.Equate[words[1]] = words[2]
			continue
		}

		for {
			match := labelRe.FindStringSubmatch(text)
			if match == nil {
				break
			}
			label := match[1]
			_, ok := asm.Label[label]
			if ok && !asm.Compat {
				err = ErrLabelDuplicate
				return
			}
			asm.Label[label] = len(lines)
			text = match[2]
		}

		text = strings.TrimSpace(text)
		if len(text) != 0 {
			lines = append(lines, sourceLine{LineNo: lineno, Ip: len(lines), Text: text})
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Pass 2: encoding.
	for _, src := range lines {
		lineno = src.LineNo
		line = src.Text

		var words []string
		var code Code
		words, code, err = asm.encode(src.Text, src.Ip)
		if err != nil {
			if !asm.Compat {
				return
			}
			if asm.Verbose {
				log.Printf("asm: line %d: %v (using 0)", lineno, err)
			}
			code = 0
			err = nil
		}

		asm.Opcode = append(asm.Opcode, Opcode{LineNo: src.LineNo, Ip: src.Ip, Words: words, Code: code})
	}

	prog = &Program{
		Opcodes: append([]Opcode(nil), asm.Opcode...),
	}

	return
}

// conds maps the conditional jump mnemonics. JGT shares the JGE encoding.
var conds = map[string]CodeCond{
	"JEQ": COND_EQ,
	"JNE": COND_NE,
	"JLT": COND_LT,
	"JGT": COND_GE,
	"JGE": COND_GE,
}

// aluRegMap maps the three-register ALU mnemonics.
var aluRegMap = map[string]CodeOp{
	"ADD": OP_ADD,
	"SUB": OP_SUB,
	"AND": OP_AND,
	"OR":  OP_OR,
}

// aluImmMap maps the register-immediate ALU mnemonics.
var aluImmMap = map[string]CodeOp{
	"ADDI": OP_ADDI,
	"SUBI": OP_SUBI,
	"SHR":  OP_SHR,
	"SHL":  OP_SHL,
}

// registerOf parses a register operand: R0-R15, SP or PC.
func (asm *Assembler) registerOf(word string) (reg int, err error) {
	word = strings.ToUpper(word)
	switch word {
	case "SP":
		reg = REG_SP
		return
	case "PC":
		reg = REG_PC
		return
	}

	reg, err = strconv.Atoi(strings.ReplaceAll(word, "R", ""))
	if err != nil {
		err = ErrParseRegister(word)
		return
	}

	if reg < 0 || reg >= REGISTER_COUNT {
		err = errors.Join(ErrRegisterInvalid, ErrParseRegister(word))
	}

	return
}

// immediateOf resolves an unsigned immediate of the given bit width.
func (asm *Assembler) immediateOf(word string, width uint) (imm uint16, err error) {
	value, err := asm.valueOf(word)
	if err != nil {
		return
	}

	limit := int64(1) << width
	if value < 0 || value >= limit {
		err = fmt.Errorf("%w: %v", ErrImmediateRange, word)
		return
	}

	imm = uint16(value & (limit - 1))
	return
}

// offsetOf resolves a branch target into an offset from the next instruction.
func (asm *Assembler) offsetOf(word string, ip int, width uint) (offset int, err error) {
	target, err := asm.valueOf(word)
	if err != nil {
		return
	}

	offset = int(target) - ip - 1
	if !offsetFits(offset, width) {
		err = fmt.Errorf("%w: %v", ErrTargetRange, word)
	}

	return
}

// operands returns the operand tokens of an instruction, with memory
// reference brackets removed.
func operands(words []string) (args []string) {
	for _, word := range words[1:] {
		word = strings.Trim(word, "[]")
		if len(word) > 0 {
			args = append(args, word)
		}
	}

	return
}

// encode encodes a single instruction.
func (asm *Assembler) encode(line string, ip int) (words []string, code Code, err error) {
	if strings.HasPrefix(line, "'") {
		words = []string{line}
		var value int64
		if asm.Compat {
			value, err = compatCharValue(strings.Trim(line, "'"))
		} else {
			value, err = charValue(strings.Trim(line, "'"))
		}
		code = Code(value)
		return
	}

	if !asm.Compat {
		line, err = asm.expand(line)
		if err != nil {
			return
		}
	}

	words = tokenRe.FindAllString(strings.ReplaceAll(line, ",", " "), -1)
	if len(words) == 0 {
		err = ErrInstructionInvalid
		return
	}

	mnemonic := strings.ToUpper(words[0])
	if mnemonic == "HALT" {
		code = CODE_HALT
		return
	}

	if asm.Compat {
		code, err = asm.encodeCompat(mnemonic, words, ip)
		return
	}

	args := operands(words)

	need := 0
	switch mnemonic {
	case "JMP", "JEQ", "JNE", "JLT", "JGT", "JGE", "PUSH", "POP":
		need = 1
	case "MOV":
		need = 2
	case "LDR", "STR":
		// Offset may be omitted: [Rm]
		need = 2
	case "CMP":
		need = 2
	case "ADD", "SUB", "AND", "OR", "ADDI", "SUBI", "SHR", "SHL":
		need = 3
	default:
		err = ErrInstructionInvalid
		return
	}

	if len(args) < need {
		err = ErrOpcodeValueMissing
		return
	}

	limit := need
	switch mnemonic {
	case "LDR", "STR", "CMP":
		limit = 3
	}
	if len(args) > limit {
		err = ErrOpcodeExtraArgs
		return
	}

	var regs [3]int
	switch mnemonic {
	case "JMP":
		var offset int
		offset, err = asm.offsetOf(args[0], ip, JMP_OFFSET_BITS)
		code = MakeCodeJmp(offset)
	case "JEQ", "JNE", "JLT", "JGT", "JGE":
		var offset int
		offset, err = asm.offsetOf(args[0], ip, COND_OFFSET_BITS)
		code = MakeCodeJc(conds[mnemonic], offset)
	case "LDR", "STR":
		regs[0], err = asm.registerOf(args[0])
		if err != nil {
			return
		}
		regs[1], err = asm.registerOf(args[1])
		if err != nil {
			return
		}
		var imm uint16
		if len(args) > 2 {
			imm, err = asm.immediateOf(args[2], 4)
		}
		if mnemonic == "LDR" {
			code = MakeCodeLdr(regs[0], regs[1], imm)
		} else {
			code = MakeCodeStr(imm, regs[1], regs[0])
		}
	case "MOV":
		regs[0], err = asm.registerOf(args[0])
		if err != nil {
			return
		}
		var imm uint16
		imm, err = asm.immediateOf(args[1], 8)
		code = MakeCodeMov(regs[0], imm)
	case "ADD", "SUB", "AND", "OR":
		for n := range 3 {
			regs[n], err = asm.registerOf(args[n])
			if err != nil {
				return
			}
		}
		code = MakeCodeAlu(aluRegMap[mnemonic], regs[0], regs[1], uint16(regs[2]))
	case "ADDI", "SUBI", "SHR", "SHL":
		for n := range 2 {
			regs[n], err = asm.registerOf(args[n])
			if err != nil {
				return
			}
		}
		var imm uint16
		imm, err = asm.immediateOf(args[2], 4)
		code = MakeCodeAlu(aluImmMap[mnemonic], regs[0], regs[1], imm)
	case "CMP":
		count := min(len(args), 3)
		for n := range count {
			regs[n], err = asm.registerOf(args[n])
			if err != nil {
				return
			}
		}
		if len(args) == 2 {
			code = MakeCodeCmp(regs[0], regs[1])
		} else {
			// CMP Rd, Rm, Rn: Rd is carried but unused.
			code = MakeCodeAlu(OP_CMP, regs[0], regs[1], uint16(regs[2]))
		}
	case "PUSH":
		regs[0], err = asm.registerOf(args[0])
		code = MakeCodePush(regs[0])
	case "POP":
		regs[0], err = asm.registerOf(args[0])
		code = MakeCodePop(regs[0])
	}

	if err != nil {
		code = 0
	}

	return
}
