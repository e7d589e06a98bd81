package cpu

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgramWrite(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{Ip: 0, Code: MakeCodeMov(1, 0x10)},
			{Ip: 1, Code: MakeCodePush(1)},
			{Ip: 2, Code: CODE_HALT},
		},
	}

	out := &bytes.Buffer{}
	n, err := prog.WriteTo(out)
	assert.NoError(err)
	assert.Equal(int64(out.Len()), n)
	assert.NoError(WriteImageEnd(out))

	assert.Equal("0000 1104\n0001 001E\n0002 FFFF\n0000 0000\n", out.String())
}

func TestProgramReadImage(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		image string
		codes map[uint16]Code
		rest  string
	}){
		{"", map[uint16]Code{}, ""},
		{"0000 0000\n", map[uint16]Code{}, ""},
		{"0000 0054\n0001 FFFF\n0000 0000\nabc\n", map[uint16]Code{0: 0x54, 1: 0xffff}, "abc\n"},
		{"0010 1234\n0020 4321", map[uint16]Code{0x10: 0x1234, 0x20: 0x4321}, ""},
		{"  0003   beef  \n\nrest\n", map[uint16]Code{3: 0xbeef}, "rest\n"},
		{"0004 0001 extra\n0000 0000\n", map[uint16]Code{4: 0x0001}, ""},
	}

	for _, entry := range table {
		input := bufio.NewReader(strings.NewReader(entry.image))
		prog, err := ReadImage(input)
		assert.NoError(err, entry.image)

		codes := map[uint16]Code{}
		for ip, code := range prog.Codes() {
			codes[ip] = code
		}
		assert.Equal(entry.codes, codes, entry.image)

		rest, err := io.ReadAll(input)
		assert.NoError(err)
		assert.Equal(entry.rest, string(rest), entry.image)
	}
}

func TestProgramReadImageErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		image  string
		lineno int
		err    error
	}){
		{"zzzz 0000\n", 1, ErrImageSyntax},
		{"0000 0001\n0001 xyzw\n", 2, ErrImageSyntax},
		{"0000 10000\n", 1, ErrImageSyntax},
		{"2000 0001\n", 1, ErrImageAddress},
	}

	for _, entry := range table {
		_, err := ReadImage(bufio.NewReader(strings.NewReader(entry.image)))
		assert.ErrorIs(err, entry.err, entry.image)

		var syntax ErrSyntax
		if assert.True(errors.As(err, &syntax), entry.image) {
			assert.Equal(entry.lineno, syntax.LineNo, entry.image)
		}
	}
}

func TestProgramRoundTrip(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader("MOV R1, #3\nloop: SUBI R1, R1, #1\nJNE loop\nHALT\n"))
	assert.NoError(err)

	out := &bytes.Buffer{}
	_, err = prog.WriteTo(out)
	assert.NoError(err)
	assert.NoError(WriteImageEnd(out))

	image, err := ReadImage(bufio.NewReader(out))
	assert.NoError(err)
	assert.Equal(codesOf(prog), codesOf(image))
}

func TestProgramDebug(t *testing.T) {
	assert := assert.New(t)

	prog, err := (&Assembler{}).Parse(strings.NewReader("; header\nMOV R1, #3\n\nPUSH R1\nHALT\n"))
	assert.NoError(err)

	dbg := prog.Debug(1)
	if assert.NotNil(dbg.Opcode) {
		assert.Equal(4, dbg.LineNo)
		assert.Equal([]string{"PUSH", "R1"}, dbg.Words)
	}

	dbg = prog.Debug(10)
	assert.Nil(dbg.Opcode)
}
