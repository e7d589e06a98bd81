package io

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

//go:generate go tool stringer -linecomment -type=PortKind

// PortKind selects which console register a port services.
type PortKind int

const (
	CHAR_IN  = PortKind(0) // char-in
	CHAR_OUT = PortKind(1) // char-out
	INT_IN   = PortKind(2) // int-in
	INT_OUT  = PortKind(3) // int-out
)

// Console provides line-oriented console I/O for the memory-mapped ports.
// Each input port read consumes exactly one line of Input and echoes the
// value read to Output; each output port write prints one line to Output.
type Console struct {
	Input  io.Reader
	Output io.Writer

	reader *bufio.Reader
	source io.Reader
}

// ConsolePort is a single console register.
type ConsolePort struct {
	Console *Console
	Kind    PortKind
}

var _ Port = (*ConsolePort)(nil)

// Port returns the console register of the requested kind.
func (con *Console) Port(kind PortKind) *ConsolePort {
	return &ConsolePort{Console: con, Kind: kind}
}

// Address returns the port address for a console register.
func (kind PortKind) Address() uint16 {
	return PORT_BASE + uint16(kind)
}

// readLine reads a single line of input, without the line terminator.
func (con *Console) readLine() (line string, err error) {
	if con.Input == nil {
		err = ErrInputEnded
		return
	}

	// bufio.NewReader re-uses a large enough *bufio.Reader, so input shared
	// with the image loader is not over-read.
	if con.reader == nil || con.source != con.Input {
		con.reader = bufio.NewReader(con.Input)
		con.source = con.Input
	}

	line, err = con.reader.ReadString('\n')
	if err == io.EOF && len(line) > 0 {
		err = nil
	}
	if err == io.EOF {
		err = ErrInputEnded
		return
	}
	if err != nil {
		return
	}

	line = strings.TrimRight(line, "\r\n")
	return
}

// ReadChar reads a line holding exactly one character, returning its
// code point.
func (con *Console) ReadChar() (value uint16, err error) {
	line, err := con.readLine()
	if err != nil {
		return
	}

	if len(line) == 0 {
		err = ErrInputEmpty
		return
	}

	char, size := utf8.DecodeRuneInString(line)
	if size != len(line) || (char == utf8.RuneError && size == 1) || char > 0xffff {
		err = ErrInputCharacter(line)
		return
	}

	value = uint16(char)
	fmt.Fprintf(con.Output, "IN => %d\n", value)
	return
}

// ReadInt reads one signed decimal integer. The value is returned modulo 2^16.
func (con *Console) ReadInt() (value uint16, err error) {
	line, err := con.readLine()
	if err != nil {
		return
	}

	text := strings.TrimSpace(line)
	num, perr := strconv.ParseInt(text, 10, 64)
	if perr != nil {
		err = ErrInputInteger(text)
		return
	}

	fmt.Fprintf(con.Output, "IN => %d\n", num)
	value = uint16(num)
	return
}

// WriteChar prints value as a character.
func (con *Console) WriteChar(value uint16) (err error) {
	_, err = fmt.Fprintf(con.Output, "OUT <= %c\n", rune(value))
	return
}

// WriteInt prints value as an unsigned decimal.
func (con *Console) WriteInt(value uint16) (err error) {
	_, err = fmt.Fprintf(con.Output, "OUT <= %d\n", value)
	return
}

// Read services a load from the port. Output registers read as 0.
func (cp *ConsolePort) Read() (value uint16, err error) {
	switch cp.Kind {
	case CHAR_IN:
		value, err = cp.Console.ReadChar()
	case INT_IN:
		value, err = cp.Console.ReadInt()
	}

	return
}

// Write services a store to the port. Stores to input registers are dropped.
func (cp *ConsolePort) Write(value uint16) (err error) {
	switch cp.Kind {
	case CHAR_OUT:
		err = cp.Console.WriteChar(value)
	case INT_OUT:
		err = cp.Console.WriteInt(value)
	}

	return
}
