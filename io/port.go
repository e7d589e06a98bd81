// Package io provides the memory-mapped I/O ports of the RISC-O simulator.
// Ports sit at fixed addresses above the backing memory and are serviced
// by a line-oriented console: character and integer input, character and
// integer output.
package io

import (
	"fmt"
	"iter"
	"maps"
)

// Port addresses.
const (
	PORT_BASE     = uint16(0xF000) // First memory-mapped port.
	PORT_CHAR_IN  = uint16(0xF000) // Read: one character from the console.
	PORT_CHAR_OUT = uint16(0xF001) // Write: one character to the console.
	PORT_INT_IN   = uint16(0xF002) // Read: one decimal integer from the console.
	PORT_INT_OUT  = uint16(0xF003) // Write: one decimal integer to the console.
	PORT_LIMIT    = uint16(0xF003) // Last memory-mapped port.
	PORT_COUNT    = int(PORT_LIMIT-PORT_BASE) + 1
)

var _port_defines = map[string]string{
	"IO_CHAR_IN":  fmt.Sprintf("0x%04X", PORT_CHAR_IN),
	"IO_CHAR_OUT": fmt.Sprintf("0x%04X", PORT_CHAR_OUT),
	"IO_INT_IN":   fmt.Sprintf("0x%04X", PORT_INT_IN),
	"IO_INT_OUT":  fmt.Sprintf("0x%04X", PORT_INT_OUT),
}

// IsPort returns true if the address is intercepted as an I/O port.
func IsPort(addr uint16) bool {
	return addr >= PORT_BASE && addr <= PORT_LIMIT
}

// Port defines the interface for a single memory-mapped I/O register.
type Port interface {
	// Read services a load from the port address.
	Read() (value uint16, err error)
	// Write services a store to the port address.
	Write(value uint16) error
}

// Defines returns an iter of the port address defines.
func Defines() iter.Seq2[string, string] {
	return maps.All(_port_defines)
}
