package cpu

// push decrements the stack pointer, then stores register rn at the new top.
// Pushing r14 stores the decremented stack pointer.
func (cpu *Cpu) push(rn int) {
	cpu.Register[REG_SP]--
	sp := cpu.Sp()
	if sp < MEMORY_SIZE {
		cpu.Memory[sp] = cpu.Register[rn]
	}
}

// pop loads the top of stack, then increments the stack pointer.
func (cpu *Cpu) pop() (value uint16) {
	sp := cpu.Sp()
	if sp < MEMORY_SIZE {
		value = cpu.Memory[sp]
	}
	cpu.Register[REG_SP]++
	return
}

// StackDepth returns the number of occupied stack cells.
func (cpu *Cpu) StackDepth() int {
	sp := cpu.Sp()
	if sp >= STACK_TOP {
		return 0
	}
	return STACK_TOP - int(sp)
}

// Stack returns the occupied stack cells, highest address first.
func (cpu *Cpu) Stack() (cells []Cell) {
	for n := range cpu.StackDepth() {
		addr := uint16(STACK_TOP - 1 - n)
		cells = append(cells, Cell{Addr: addr, Value: cpu.Memory[addr]})
	}
	return
}
