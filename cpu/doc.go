// Package cpu implements the processor core and assembler for the RISC-O
// instruction set.
//
// RISC-O is a 16-bit word-addressed machine with sixteen registers (r14 is
// the stack pointer, r15 the program counter), Zero and Carry flags, and
// 8K words of memory. Every instruction is a single word whose low four bits
// select the opcode class; the word 0xFFFF halts the machine. Addresses
// 0xF000-0xF003 are memory-mapped console ports.
//
// The assembler is a two-pass translator from mnemonic text to a Program of
// encoded words, supporting labels, .equ constants, character literals and
// compile-time $(...) expressions.
package cpu
