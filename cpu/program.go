package cpu

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
)

// Opcode represents a line of assembled code with its source location and
// generated instruction word.
type Opcode struct {
	LineNo int      // Source (or image) line number.
	Ip     int      // Instruction address.
	Words  []string // Tokens of the instruction text.
	Code   Code     // Encoded instruction.
}

// Program is an ordered list of encoded instructions.
type Program struct {
	Opcodes []Opcode
}

// Debug locates the source of an instruction; Opcode is nil when the
// address holds no assembled instruction.
type Debug struct {
	*Opcode
}

// Debug returns the opcode assembled at ip, if any.
func (prog *Program) Debug(ip uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(ip) == op.Ip {
			dbg = Debug{Opcode: &prog.Opcodes[n]}
			break
		}
	}

	return
}

// Codes returns an iterator over each address and instruction word.
func (prog *Program) Codes() iter.Seq2[uint16, Code] {
	return func(yield func(ip uint16, code Code) bool) {
		for _, op := range prog.Opcodes {
			if !yield(uint16(op.Ip), op.Code) {
				return
			}
		}
	}
}

// WriteTo writes the memory image lines, one "AAAA WWWW" line per
// instruction. No terminator line is written.
func (prog *Program) WriteTo(w io.Writer) (total int64, err error) {
	for ip, code := range prog.Codes() {
		var n int
		n, err = fmt.Fprintf(w, "%04X %04X\n", ip, uint16(code))
		total += int64(n)
		if err != nil {
			return
		}
	}

	return
}

// WriteImageEnd writes the image terminator line.
func WriteImageEnd(w io.Writer) (err error) {
	_, err = fmt.Fprintf(w, "%04X %04X\n", 0, 0)
	return
}

// ReadImage reads memory image lines until the "0000 0000" terminator,
// a line with fewer than two fields, or end of input. Input after the
// terminator line is left unread.
func ReadImage(input *bufio.Reader) (prog *Program, err error) {
	prog = &Program{}

	var lineno int
	var line string
	defer func() {
		if err != nil {
			err = ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	for {
		var rerr error
		line, rerr = input.ReadString('\n')
		if rerr != nil && rerr != io.EOF {
			err = rerr
			return
		}
		if len(line) == 0 && rerr == io.EOF {
			return
		}
		lineno++
		line = strings.TrimSpace(line)

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return
		}

		var addr, word uint64
		addr, err = strconv.ParseUint(fields[0], 16, 16)
		if err != nil {
			err = ErrImageSyntax
			return
		}
		word, err = strconv.ParseUint(fields[1], 16, 16)
		if err != nil {
			err = ErrImageSyntax
			return
		}

		if addr == 0 && word == 0 {
			return
		}

		if addr >= MEMORY_SIZE {
			err = ErrImageAddress
			return
		}

		prog.Opcodes = append(prog.Opcodes, Opcode{
			LineNo: lineno,
			Ip:     int(addr),
			Words:  fields[:2],
			Code:   Code(word),
		})

		if rerr == io.EOF {
			return
		}
	}
}
