package emulator

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/risco/cpu"
	"github.com/ezrec/risco/io"
)

func assemble(t *testing.T, emu *Emulator, program ...string) *cpu.Program {
	asm := &cpu.Assembler{}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	require.NoError(t, err)
	return prog
}

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.NotNil(emu.Program)

	for _, kind := range []io.PortKind{io.CHAR_IN, io.CHAR_OUT, io.INT_IN, io.INT_OUT} {
		port, ok := emu.GetPort(kind.Address())
		assert.True(ok, kind.String())
		assert.Equal(&io.ConsolePort{Console: &emu.Console, Kind: kind}, port)
	}

	defines := map[string]string{}
	for key, value := range emu.Defines() {
		defines[key] = value
	}
	assert.Equal("0xF000", defines["PORT_BASE"])
	assert.Equal("0xF003", defines["IO_INT_OUT"])
	assert.Contains(defines, "MEMORY_SIZE")
	assert.Contains(defines, "STACK_TOP")
}

func TestEmulatorMovHalt(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	emu := NewEmulator()
	emu.Output = out
	assert.NoError(emu.LoadProgram(assemble(t, emu, "MOV R0,#5", "HALT")))
	assert.NoError(emu.Reset())

	assert.NoError(emu.Run())
	assert.True(emu.Halted)

	expected := strings.Join([]string{
		"R0 = 0x0005",
		"R1 = 0x0000",
		"R2 = 0x0000",
		"R3 = 0x0000",
		"R4 = 0x0000",
		"R5 = 0x0000",
		"R6 = 0x0000",
		"R7 = 0x0000",
		"R8 = 0x0000",
		"R9 = 0x0000",
		"R10 = 0x0000",
		"R11 = 0x0000",
		"R12 = 0x0000",
		"R13 = 0x0000",
		"R14 = 0x2000",
		"R15 = 0x0001",
		"Z = 0",
		"C = 0",
		"",
	}, "\n")
	assert.Equal(expected, out.String())

	assert.Equal(1, len(emu.Snapshots))

	_, err := emu.Tick()
	assert.ErrorIs(err, cpu.ErrHalted)
}

func TestEmulatorBreakpoint(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	assert.NoError(emu.LoadProgram(assemble(t, emu,
		"MOV R1, #7",
		"PUSH R1",
		"MOV R2, #0x10",
		"STR R1, [R2, #1]",
		"HALT",
	)))
	emu.SetBreakpoint(1)
	emu.SetBreakpoint(0xffff)
	assert.NoError(emu.Reset())
	assert.NoError(emu.Run())

	if assert.Equal(2, len(emu.Snapshots)) {
		brk := emu.Snapshots[0]
		assert.Equal(uint16(1), brk.Pc)
		assert.Equal(uint16(1), brk.Register[cpu.REG_PC])
		assert.Equal(uint16(0x1fff), brk.Register[cpu.REG_SP])
		assert.Equal([]cpu.Cell{{Addr: 0x1fff, Value: 7}}, brk.Stack)
		assert.Empty(brk.Accessed)

		halt := emu.Snapshots[1]
		assert.Equal(uint16(4), halt.Pc)
		assert.Equal([]cpu.Cell{{Addr: 0x1fff, Value: 7}}, halt.Stack)
		assert.Equal([]cpu.Cell{{Addr: 0x0011, Value: 7}}, halt.Accessed)
	}

	// Reset reloads the program and forgets the previous run.
	assert.NoError(emu.Reset())
	assert.Empty(emu.Snapshots)
	assert.Equal(uint16(0), emu.Pc())
	assert.Equal(uint16(0x2000), emu.Sp())
	assert.Equal(uint16(cpu.MakeCodeMov(1, 7)), emu.Memory[0])
}

func TestEmulatorReturn(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	assert.NoError(emu.LoadProgram(assemble(t, emu,
		"MOV R0, #4",
		"PUSH R0",
		"POP R15",
		"MOV R5, #1",
		"HALT",
	)))
	assert.NoError(emu.Reset())
	assert.NoError(emu.Run())

	assert.Equal(uint16(0), emu.Register[5])
	assert.Equal(uint16(4), emu.Pc())
	assert.Equal(uint16(cpu.STACK_TOP), emu.Sp())
}

func TestEmulatorConsole(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	prog := assemble(t, emu,
		"MOV R2, $(PORT_BASE >> 8)",
		"SHL R2, R2, #8",
		"LDR R1, [R2, $(IO_INT_IN - PORT_BASE)]",
		"ADDI R1, R1, #1",
		"STR R1, [R2, $(IO_INT_OUT - PORT_BASE)]",
		"MOV R3, #'!'",
		"STR R3, [R2, $(IO_CHAR_OUT - PORT_BASE)]",
		"HALT",
	)

	image := &bytes.Buffer{}
	image.WriteString("1\n0x0004\n")
	_, err := prog.WriteTo(image)
	assert.NoError(err)
	assert.NoError(cpu.WriteImageEnd(image))
	image.WriteString("41\n")

	// Breakpoints, image and console input share one reader.
	input := bufio.NewReader(image)
	assert.NoError(emu.ReadBreakpoints(input))
	loaded, err := cpu.ReadImage(input)
	assert.NoError(err)
	assert.NoError(emu.LoadProgram(loaded))

	out := &bytes.Buffer{}
	emu.Output = out
	emu.Console.Input = input
	emu.Console.Output = out

	assert.NoError(emu.Reset())
	assert.NoError(emu.Run())

	assert.Equal(uint16(42), emu.Register[1])
	assert.True(strings.HasPrefix(out.String(), "IN => 41\nOUT <= 42\nR0 = 0x0000\n"))
	assert.Contains(out.String(), "R15 = 0x0004\n")
	assert.Contains(out.String(), "OUT <= !\n")
	assert.Equal(2, len(emu.Snapshots))
}

func TestEmulatorFault(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Program = assemble(t, emu,
		"MOV R1, #0x30",
		"SHL R1, R1, #8",
		"PUSH R1",
		"POP PC",
	)
	assert.NoError(emu.Reset())

	err := emu.Run()

	var rt *ErrRuntime
	if assert.True(errors.As(err, &rt)) {
		assert.Equal(uint16(0x3000), rt.Ip)
		assert.Equal(0, rt.LineNo)
	}

	var bounds cpu.ErrPcBounds
	if assert.True(errors.As(err, &bounds)) {
		assert.Equal(cpu.ErrPcBounds(0x3000), bounds)
	}
}

func TestEmulatorInputFault(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Console.Input = strings.NewReader("twelve\n")
	emu.Console.Output = &bytes.Buffer{}
	emu.Program = assemble(t, emu,
		"; read an integer",
		"MOV R2, #0xF0",
		"SHL R2, R2, #8",
		"LDR R1, [R2, #2]",
		"HALT",
	)
	assert.NoError(emu.Reset())

	err := emu.Run()
	assert.ErrorIs(err, io.ErrInputInteger("twelve"))

	var rt *ErrRuntime
	if assert.True(errors.As(err, &rt)) {
		assert.Equal(uint16(2), rt.Ip)
		assert.Equal(4, rt.LineNo)
	}
}

func TestEmulatorLoadBounds(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	assert.NoError(emu.LoadProgram(assemble(t, emu, "MOV R1, #1", "HALT")))

	big := &cpu.Program{Opcodes: []cpu.Opcode{
		{LineNo: 1, Ip: 0, Code: cpu.MakeCodeMov(2, 2)},
		{LineNo: 2, Ip: cpu.MEMORY_SIZE, Code: cpu.CODE_HALT},
	}}
	err := emu.LoadProgram(big)
	assert.ErrorIs(err, cpu.ErrImageAddress)

	// The previous program stays loaded.
	assert.Equal(uint16(cpu.MakeCodeMov(1, 1)), emu.Memory[0])
	assert.NoError(emu.Reset())

	emu.Program = big
	assert.ErrorIs(emu.Reset(), cpu.ErrImageAddress)
}

func TestEmulatorReadBreakpoints(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	input := bufio.NewReader(strings.NewReader("3\n0x10\n1f\n 0X0020 \nrest\n"))
	assert.NoError(emu.ReadBreakpoints(input))
	assert.True(emu.Breakpoint[0x10])
	assert.True(emu.Breakpoint[0x1f])
	assert.True(emu.Breakpoint[0x20])
	assert.False(emu.Breakpoint[0])

	line, err := input.ReadString('\n')
	assert.NoError(err)
	assert.Equal("rest\n", line)

	table := []string{
		"x\n",
		"2\n0x10\nzz\n",
		"2\n0x10\n",
	}

	for _, entry := range table {
		err := NewEmulator().ReadBreakpoints(bufio.NewReader(strings.NewReader(entry)))
		assert.Error(err, entry)
	}

	err = NewEmulator().ReadBreakpoints(bufio.NewReader(strings.NewReader("x\n")))
	assert.ErrorIs(err, ErrBreakpointSyntax)
}
