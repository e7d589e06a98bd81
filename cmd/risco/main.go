// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ezrec/risco/cpu"
	"github.com/ezrec/risco/emulator"
)

func main() {
	var compile string
	var breakpoints string
	var compat bool
	var verbose bool

	flag.StringVar(&compile, "c", "", ".s file to assemble and run, instead of an image on stdin")
	flag.StringVar(&breakpoints, "b", "", "Comma separated hex breakpoint addresses (with -c)")
	flag.BoolVar(&compat, "compat", false, "Assemble malformed instructions as 0 (with -c)")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	stdin := bufio.NewReader(os.Stdin)

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.Output = os.Stdout
	emu.Console.Input = stdin
	emu.Console.Output = os.Stdout

	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose, Compat: compat}
		for name, value := range emu.Defines() {
			asm.Predefine(name, value)
		}
		emu.Program, err = asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}

		for _, bp := range strings.Split(breakpoints, ",") {
			bp = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(bp)), "0x")
			if len(bp) == 0 {
				continue
			}
			addr, err := strconv.ParseUint(bp, 16, 16)
			if err != nil {
				log.Fatalf("-b %v: %v", bp, err)
			}
			emu.SetBreakpoint(uint16(addr))
		}
	} else {
		err := emu.ReadBreakpoints(stdin)
		if err != nil {
			log.Fatalf("breakpoints: %v", err)
		}

		emu.Program, err = cpu.ReadImage(stdin)
		if err != nil {
			log.Fatalf("image: %v", err)
		}
	}

	err := emu.Reset()
	if err != nil {
		log.Fatalf("load: %v", err)
	}

	err = emu.Run()

	var pcBounds cpu.ErrPcBounds
	var opcode cpu.ErrOpcode
	switch {
	case err == nil:
	case errors.As(err, &pcBounds):
		fmt.Printf("Program counter out of bounds: 0x%04X!\n", uint16(pcBounds))
	case errors.As(err, &opcode):
		fmt.Printf("Invalid instruction %04X!\n", cpu.Code(opcode).Body())
	default:
		log.Fatal(err)
	}
}
