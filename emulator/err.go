package emulator

import (
	"github.com/ezrec/risco/translate"
)

var f = translate.From

var (
	ErrBreakpointSyntax = translate.Error("breakpoint syntax")
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Ip     uint16
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return f("0x%04X %v", err.Ip, err.Err)
	}
	return f("0x%04X line %d %v", err.Ip, err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
