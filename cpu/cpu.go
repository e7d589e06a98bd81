// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/risco/io"
)

// Port is a memory-mapped I/O port.
type Port io.Port

// Machine geometry.
const (
	MEMORY_SIZE    = 0x2000 // Words of backing memory.
	STACK_TOP      = 0x2000 // Initial stack pointer; the stack grows down.
	REGISTER_COUNT = 16
	REG_SP         = 14 // Stack pointer register.
	REG_PC         = 15 // Program counter register.
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE": fmt.Sprintf("0x%04X", MEMORY_SIZE),
	"STACK_TOP":   fmt.Sprintf("0x%04X", STACK_TOP),
}

// Cpu is the simulation context for the RISC-O processor.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Register [REGISTER_COUNT]uint16 // Register bank.
	Zero     bool                   // Zero flag.
	Carry    bool                   // Carry (borrow) flag.
	NextPc   uint16                 // Staged program counter, committed at end of cycle.
	Halted   bool                   // Set once the halt word has been fetched.

	Memory [MEMORY_SIZE]uint16 // Backing memory.

	Ticks int // Executed instruction counter.

	accessed map[uint16]bool // Data addresses touched by LDR/STR.
	port     [io.PORT_COUNT]Port
}

// NewCpu creates a new CPU in its reset state.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}
	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Clears registers, flags and memory.
// - Forgets the accessed data addresses.
// - Places the stack pointer at the top of memory.
// - Attached ports are kept.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	clear(cpu.Memory[:])
	cpu.Register[REG_SP] = STACK_TOP
	cpu.Zero = false
	cpu.Carry = false
	cpu.NextPc = 0
	cpu.Halted = false
	cpu.Ticks = 0
	cpu.accessed = make(map[uint16]bool)
}

// Pc returns the current program counter.
func (cpu *Cpu) Pc() uint16 {
	return cpu.Register[REG_PC]
}

// Sp returns the current stack pointer.
func (cpu *Cpu) Sp() uint16 {
	return cpu.Register[REG_SP]
}

// SetPort attaches a port simulation model to an I/O address.
func (cpu *Cpu) SetPort(addr uint16, port Port) {
	if !io.IsPort(addr) {
		panic(fmt.Sprintf("cpu: 0x%04X is not a port address", addr))
	}
	cpu.port[addr-io.PORT_BASE] = port
}

// GetPort gets the port attached to an I/O address.
func (cpu *Cpu) GetPort(addr uint16) (port Port, ok bool) {
	if !io.IsPort(addr) {
		return
	}
	port = cpu.port[addr-io.PORT_BASE]
	ok = port != nil
	return
}

// Load reads a data word. Port addresses are serviced by the attached port;
// backing memory addresses are recorded as accessed.
func (cpu *Cpu) Load(addr uint16) (value uint16, err error) {
	if io.IsPort(addr) {
		port, ok := cpu.GetPort(addr)
		if ok {
			value, err = port.Read()
		}
		return
	}

	if addr >= MEMORY_SIZE {
		return
	}

	cpu.accessed[addr] = true
	value = cpu.Memory[addr]
	return
}

// Store writes a data word. Port addresses are serviced by the attached
// port; backing memory addresses are recorded as accessed.
func (cpu *Cpu) Store(addr uint16, value uint16) (err error) {
	if io.IsPort(addr) {
		port, ok := cpu.GetPort(addr)
		if ok {
			err = port.Write(value)
		}
		return
	}

	if addr >= MEMORY_SIZE {
		return
	}

	cpu.accessed[addr] = true
	cpu.Memory[addr] = value
	return
}

// Accessed returns the data addresses touched so far, in ascending order.
func (cpu *Cpu) Accessed() iter.Seq[uint16] {
	return func(yield func(addr uint16) bool) {
		for addr := range uint16(MEMORY_SIZE) {
			if cpu.accessed[addr] && !yield(addr) {
				return
			}
		}
	}
}

// FetchCode fetches the instruction at the program counter.
func (cpu *Cpu) FetchCode() (code Code, err error) {
	pc := cpu.Pc()
	if pc >= MEMORY_SIZE {
		err = ErrPcBounds(pc)
		return
	}

	code = Code(cpu.Memory[pc])
	return
}

// Step fetches and executes a single instruction, leaving the next program
// counter staged in NextPc. It returns the address of the instruction.
func (cpu *Cpu) Step() (pc uint16, err error) {
	if cpu.Halted {
		err = ErrHalted
		return
	}

	pc = cpu.Pc()

	code, err := cpu.FetchCode()
	if err != nil {
		return
	}

	if code.IsHalt() {
		if cpu.Verbose {
			log.Printf("%04x: %v", pc, code)
		}
		cpu.Halted = true
		return
	}

	cpu.NextPc = pc + 1

	err = cpu.Execute(code)
	return
}

// Commit makes the staged program counter current.
func (cpu *Cpu) Commit() {
	if cpu.Halted {
		return
	}
	cpu.Register[REG_PC] = cpu.NextPc
}

// Tick executes a single CPU instruction cycle.
func (cpu *Cpu) Tick() (err error) {
	_, err = cpu.Step()
	if err != nil {
		return
	}

	cpu.Commit()
	return
}

// branch stages a jump relative to the instruction after the current one.
func (cpu *Cpu) branch(offset int) {
	cpu.NextPc = uint16(int(cpu.Pc()) + 1 + offset)
}

// setFlags sets the flags from a result wider than 16 bits.
func (cpu *Cpu) setFlags(result uint32, carry bool) uint16 {
	cpu.Carry = carry
	cpu.Zero = uint16(result) == 0
	return uint16(result)
}

// Execute executes a single decoded instruction.
func (cpu *Cpu) Execute(code Code) (err error) {
	if cpu.Verbose {
		log.Printf("%04x: %v", cpu.Pc(), code)
	}

	reg := &cpu.Register

	switch code.Op() {
	case OP_JMP:
		cpu.branch(code.JumpOffset())
	case OP_JC:
		if code.Cond().Taken(cpu.Zero, cpu.Carry) {
			cpu.branch(code.CondOffset())
		}
	case OP_LDR:
		var value uint16
		value, err = cpu.Load(reg[code.Rm()] + code.Imm4())
		if err != nil {
			return
		}
		reg[code.Rd()] = value
	case OP_STR:
		err = cpu.Store(reg[code.Rm()]+code.StrImm(), reg[code.Rn()])
		if err != nil {
			return
		}
	case OP_MOV:
		reg[code.Rd()] = code.Imm8()
	case OP_ADD:
		sum := uint32(reg[code.Rm()]) + uint32(reg[code.Rn()])
		reg[code.Rd()] = cpu.setFlags(sum, sum > 0xffff)
	case OP_ADDI:
		sum := uint32(reg[code.Rm()]) + uint32(code.Imm4())
		reg[code.Rd()] = cpu.setFlags(sum, sum > 0xffff)
	case OP_SUB:
		a, b := reg[code.Rm()], reg[code.Rn()]
		reg[code.Rd()] = cpu.setFlags(uint32(a-b), a < b)
	case OP_SUBI:
		a, b := reg[code.Rm()], code.Imm4()
		reg[code.Rd()] = cpu.setFlags(uint32(a-b), a < b)
	case OP_AND:
		reg[code.Rd()] = cpu.setFlags(uint32(reg[code.Rm()]&reg[code.Rn()]), false)
	case OP_OR:
		reg[code.Rd()] = cpu.setFlags(uint32(reg[code.Rm()]|reg[code.Rn()]), false)
	case OP_SHR:
		value, shift := reg[code.Rm()], code.Imm4()
		var carry bool
		if shift > 0 {
			carry = (value>>(shift-1))&1 != 0
		}
		reg[code.Rd()] = cpu.setFlags(uint32(value>>shift), carry)
	case OP_SHL:
		shifted := uint32(reg[code.Rm()]) << code.Imm4()
		reg[code.Rd()] = cpu.setFlags(shifted, shifted > 0xffff)
	case OP_CMP:
		a, b := reg[code.Rm()], reg[code.Rn()]
		cpu.Zero = a == b
		cpu.Carry = a < b
	case OP_PUSH:
		cpu.push(code.Rn())
	case OP_POP:
		value := cpu.pop()
		if code.Rd() == REG_PC {
			cpu.NextPc = value
		} else {
			reg[code.Rd()] = value
		}
	default:
		err = ErrOpcode(code)
		return
	}

	cpu.Ticks++

	return
}
