// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ezrec/risco/cpu"
	"github.com/ezrec/risco/emulator"
	"github.com/ezrec/risco/internal"
)

// defineList collects repeated -D NAME=VALUE flags.
type defineList []string

func (dl *defineList) String() string {
	return strings.Join(*dl, ",")
}

func (dl *defineList) Set(value string) error {
	*dl = append(*dl, value)
	return nil
}

func main() {
	var output string
	var compat bool
	var listing bool
	var defines bool
	var verbose bool
	var predefs defineList

	flag.StringVar(&output, "o", "-", "Image output")
	flag.BoolVar(&compat, "compat", false, "Assemble malformed instructions as 0")
	flag.BoolVar(&listing, "l", false, "Write a listing to stderr")
	flag.BoolVar(&defines, "defines", false, "Print the predefined symbols and exit")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.Var(&predefs, "D", "Predefine NAME=VALUE (repeatable)")

	flag.Parse()

	asm := &cpu.Assembler{Verbose: verbose, Compat: compat}

	emu := emulator.NewEmulator()
	for name, value := range internal.Sorted2(emu.Defines()) {
		if defines {
			fmt.Printf("%v = %v\n", name, value)
		}
		asm.Predefine(name, value)
	}
	if defines {
		return
	}

	for _, def := range predefs {
		name, value, ok := strings.Cut(def, "=")
		if !ok {
			log.Fatalf("%v: -D %v: expected NAME=VALUE", os.Args[0], def)
		}
		asm.Predefine(name, value)
	}

	if flag.NArg() != 1 {
		log.Fatalf("%v: expected one source file, got %v", os.Args[0], flag.Args())
	}
	source := flag.Arg(0)

	inf, err := os.Open(source)
	if err != nil {
		log.Fatalf("%v: %v", source, err)
	}
	defer inf.Close()

	prog, err := asm.Parse(inf)
	if err != nil {
		log.Fatalf("%v: %v", source, err)
	}

	ouf := os.Stdout
	if output != "-" {
		ouf, err = os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
	}

	_, err = prog.WriteTo(ouf)
	if err == nil {
		err = cpu.WriteImageEnd(ouf)
	}
	if err != nil {
		log.Fatalf("%v: %v", output, err)
	}

	if listing {
		for _, op := range prog.Opcodes {
			fmt.Fprintf(os.Stderr, "%04X %04X  %-24v ; %v: %v\n",
				op.Ip, uint16(op.Code), op.Code, op.LineNo, strings.Join(op.Words, " "))
		}
	}
}
