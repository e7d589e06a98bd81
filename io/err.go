package io

import (
	"github.com/ezrec/risco/translate"
)

var f = translate.From

var (
	// Console errors
	ErrInputEmpty = translate.Error("console input empty")
	ErrInputEnded = translate.Error("console input ended")
)

// ErrInputInteger indicates a console line that is not a decimal integer.
type ErrInputInteger string

func (err ErrInputInteger) Error() string {
	return f("'%v' is not an integer", string(err))
}

// ErrInputCharacter indicates a console line that is not a single character.
type ErrInputCharacter string

func (err ErrInputCharacter) Error() string {
	return f("'%v' is not a single character", string(err))
}
