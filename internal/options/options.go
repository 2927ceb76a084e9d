// Package options contains the program options.
package options

import (
	"github.com/retroenv/pic18disasm/internal/numfmt"
	"github.com/retroenv/pic18disasm/internal/tblptr"
)

// DefaultProcessor is the processor named in the generated LIST and #include directives.
const DefaultProcessor = "18F4520"

// Parameters contains file path options.
type Parameters struct {
	Input       string
	Output      string
	Registers   string // register names file replacing the built-in SFR names
	ConfigNames string // configuration register names file
	Tables      string // data table definitions file
	JumpTables  string // jump table address ranges file
}

// Flags contains behavior options.
type Flags struct {
	CStyle        bool
	Listing       bool
	HighInterrupt bool
	LowInterrupt  bool
	Processor     string
	Debug         bool
	Quiet         bool
}

// Program options of the disassembler.
type Program struct {
	Parameters
	Flags
}

// Disassembler defines options to control the disassembler.
type Disassembler struct {
	Numbers   numfmt.Style
	Listing   bool   // one word per line prefixed by address and raw content
	Processor string // processor name for the output header

	HighInterrupt bool // traverse from the high priority interrupt vector
	LowInterrupt  bool // traverse from the low priority interrupt vector

	TablePointer tblptr.Options
}

// NewDisassembler returns a new options instance with default options.
func NewDisassembler() Disassembler {
	return Disassembler{
		Numbers:      numfmt.Assembler,
		Processor:    DefaultProcessor,
		TablePointer: tblptr.DefaultOptions(),
	}
}
