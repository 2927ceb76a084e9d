// Package numfmt formats numeric literals in the style expected by the target assembler.
package numfmt

import (
	"fmt"
	"strings"
)

// Style selects how numbers are printed.
type Style int

const (
	// Assembler prints numbers below 10 as decimal and all others as NNh, prefixed with
	// a 0 if the first hex digit is a letter.
	Assembler Style = iota
	// C prints all numbers as 0xNN.
	C
)

// Formatter formats numbers using a configured style.
type Formatter struct {
	style Style
}

// New returns a new formatter for the given style.
func New(style Style) Formatter {
	return Formatter{style: style}
}

// Hex returns the formatted representation of the value.
func (f Formatter) Hex(value uint32) string {
	if f.style == C {
		return fmt.Sprintf("0x%X", value)
	}

	if value < 10 {
		return fmt.Sprintf("%d", value)
	}
	s := fmt.Sprintf("%Xh", value)
	if strings.IndexByte("ABCDEF", s[0]) >= 0 {
		return "0" + s
	}
	return s
}
