// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"bufio"
	"fmt"
	stdio "io"
	"iter"
	"log"
	"maps"
	"strconv"
	"strings"

	"github.com/ezrec/risco/cpu"
	"github.com/ezrec/risco/internal"
	"github.com/ezrec/risco/io"
)

var _emulator_defines = map[string]string{
	"PORT_BASE": fmt.Sprintf("0x%04X", io.PORT_BASE),
}

// Emulator state. CPU + console ports + breakpoints.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the loaded program.

	Console io.Console // Console serving the memory-mapped ports.

	Breakpoint [cpu.MEMORY_SIZE]bool // Breakpoint mask.
	Output     stdio.Writer          // If set, receives rendered snapshots.
	Snapshots  []cpu.Snapshot        // Snapshots taken since reset.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
	}

	for _, kind := range []io.PortKind{io.CHAR_IN, io.CHAR_OUT, io.INT_IN, io.INT_OUT} {
		emu.Cpu.SetPort(kind.Address(), emu.Console.Port(kind))
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.Concat2(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
		io.Defines(),
	)
}

// SetBreakpoint marks an address as a breakpoint.
// Addresses outside of memory are ignored.
func (emu *Emulator) SetBreakpoint(addr uint16) {
	if addr < cpu.MEMORY_SIZE {
		emu.Breakpoint[addr] = true
	}
}

// ReadBreakpoints reads the breakpoint count, followed by one hexadecimal
// address per line.
func (emu *Emulator) ReadBreakpoints(input *bufio.Reader) (err error) {
	line, err := readLine(input)
	if err != nil {
		return
	}

	count, err := strconv.Atoi(line)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrBreakpointSyntax, line)
		return
	}

	for range count {
		line, err = readLine(input)
		if err != nil {
			return
		}
		var addr uint64
		addr, err = strconv.ParseUint(strings.TrimPrefix(strings.ToLower(line), "0x"), 16, 16)
		if err != nil {
			err = fmt.Errorf("%w: %v", ErrBreakpointSyntax, line)
			return
		}
		emu.SetBreakpoint(uint16(addr))
	}

	return
}

func readLine(input *bufio.Reader) (line string, err error) {
	line, err = input.ReadString('\n')
	if err == stdio.EOF && len(line) > 0 {
		err = nil
	}
	if err != nil {
		return
	}

	line = strings.TrimSpace(line)
	return
}

// LoadProgram places a program in memory.
// An instruction outside of memory is an error; nothing is loaded then.
func (emu *Emulator) LoadProgram(prog *cpu.Program) (err error) {
	for _, op := range prog.Opcodes {
		if op.Ip < 0 || op.Ip >= cpu.MEMORY_SIZE {
			err = fmt.Errorf("%w: line %d address 0x%X", cpu.ErrImageAddress, op.LineNo, op.Ip)
			return
		}
	}

	emu.Program = prog
	for _, op := range prog.Opcodes {
		emu.Cpu.Memory[op.Ip] = uint16(op.Code)
	}

	return
}

// Reset the processor and reload the program.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
	emu.Snapshots = nil
	if emu.Program != nil {
		err = emu.LoadProgram(emu.Program)
	}

	return
}

// Ip returns current instruction pointer.
func (emu *Emulator) Ip() int {
	return int(emu.Cpu.Pc())
}

// LineNo returns the source line number for the executing instruction.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(emu.Cpu.Pc())
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// snapshot records and renders the processor state.
func (emu *Emulator) snapshot() (err error) {
	snap := emu.Cpu.Snapshot()
	emu.Snapshots = append(emu.Snapshots, snap)

	if emu.Output != nil {
		_, err = stdio.WriteString(emu.Output, snap.String())
	}

	return
}

// Tick performs a single instruction cycle of the emulator.
// A snapshot is taken after a breakpoint address executes, and on halt.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.Cpu.Verbose = emu.Verbose

	ip := emu.Cpu.Pc()
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Ip: ip, LineNo: lineno, Err: err}
		}
	}()

	pc, err := emu.Cpu.Step()
	if err != nil {
		return
	}

	if emu.Breakpoint[pc] || emu.Cpu.Halted {
		if emu.Verbose {
			log.Printf("emulator: snapshot at 0x%04x", pc)
		}
		err = emu.snapshot()
		if err != nil {
			return
		}
	}

	emu.Cpu.Commit()

	done = emu.Cpu.Halted
	return
}

// Run ticks the emulator until it halts or faults.
func (emu *Emulator) Run() (err error) {
	for {
		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}
}
