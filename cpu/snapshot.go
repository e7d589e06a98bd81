package cpu

import (
	"fmt"
	"strings"
)

// Cell is a single memory address and its contents.
type Cell struct {
	Addr  uint16
	Value uint16
}

func (cell Cell) String() string {
	return fmt.Sprintf("[0x%04X] = 0x%04X", cell.Addr, cell.Value)
}

// Snapshot is the debug dump of the processor state.
type Snapshot struct {
	Pc       uint16                 // Address of the instruction just executed.
	Register [REGISTER_COUNT]uint16 // Register bank.
	Zero     bool
	Carry    bool
	Stack    []Cell // Occupied stack cells, highest address first.
	Accessed []Cell // Touched data addresses, ascending.
}

// Snapshot captures the current processor state.
func (cpu *Cpu) Snapshot() (snap Snapshot) {
	snap = Snapshot{
		Pc:       cpu.Pc(),
		Register: cpu.Register,
		Zero:     cpu.Zero,
		Carry:    cpu.Carry,
		Stack:    cpu.Stack(),
	}

	for addr := range cpu.Accessed() {
		snap.Accessed = append(snap.Accessed, Cell{Addr: addr, Value: cpu.Memory[addr]})
	}

	return
}

func flagBit(flag bool) int {
	if flag {
		return 1
	}
	return 0
}

// String returns the snapshot as the register/flag/memory dump text.
func (snap Snapshot) String() string {
	var text strings.Builder

	for n, val := range snap.Register {
		fmt.Fprintf(&text, "R%d = 0x%04X\n", n, val)
	}
	fmt.Fprintf(&text, "Z = %d\n", flagBit(snap.Zero))
	fmt.Fprintf(&text, "C = %d\n", flagBit(snap.Carry))

	for _, cell := range snap.Stack {
		text.WriteString(cell.String() + "\n")
	}
	for _, cell := range snap.Accessed {
		text.WriteString(cell.String() + "\n")
	}

	return text.String()
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() string {
	return cpu.Snapshot().String()
}
