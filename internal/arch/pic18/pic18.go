// Package pic18 contains the PIC18 target profile: memory layout, well known instruction
// encodings, label naming and the built-in opcode and register name tables.
package pic18

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/retroenv/pic18disasm/internal/opcode"
)

// PIC18 memory layout, byte addresses as used by the hex file.
//
//	0x000000-0x2FFFFF: program memory
//	0x300000-0xEFFFFF: configuration and device id memory
//	0xF00000-        : data EEPROM
const (
	ConfigStart = 0x300000
	EEPROMStart = 0xF00000

	// AddressMask clips program addresses into the 20 bit address space.
	AddressMask = 0xFFFFF

	// WordSize is the size of an instruction word in bytes.
	WordSize = 2
)

// Execution entry points.
const (
	ResetVector         = 0x000000
	HighInterruptVector = 0x000008
	LowInterruptVector  = 0x000018
)

// Well known instruction encodings.
const (
	MovwfTBLPTRL = 0x6EF6 // movwf TBLPTRL
	MovwfTBLPTRH = 0x6EF7 // movwf TBLPTRH
	MovwfTBLPTRU = 0x6EF8 // movwf TBLPTRU
	MovwfBSR     = 0x6EE0 // movwf BSR

	LiteralMask  = 0xFF00
	MovlwOpcode  = 0x0E00
	AddlwOpcode  = 0x0F00
	LiteralValue = 0x00FF
)

// BankSelectTemplate is the opcode table template of the bank select instruction.
const BankSelectTemplate = "movlb C"

// ErasedWord is the content of unprogrammed flash memory.
const ErasedWord = 0xFFFF

// Register file addressing.
const (
	AccessBankBit   = 0x0100
	AccessBankSplit = 0x80  // access bank addresses from here on map to SFRs
	SFRBank         = 0xF00 // bank base of the access bank SFRs
	BankMask        = 0x3F
)

//go:embed opcodes18.txt
var opcodeTable string

//go:embed regnames18.txt
var registerNames string

//go:embed confignames18.txt
var configNames string

// OpcodeTable returns the built-in PIC18 opcode table.
func OpcodeTable() (*opcode.Table, error) {
	table, err := opcode.Parse(strings.NewReader(opcodeTable))
	if err != nil {
		return nil, fmt.Errorf("parsing built-in opcode table: %w", err)
	}
	return table, nil
}

// RegisterNames returns the built-in special function register names file content.
func RegisterNames() string {
	return registerNames
}

// ConfigNames returns the built-in configuration register names file content.
func ConfigNames() string {
	return configNames
}

// CodeLabel returns the label name for a code address.
func CodeLabel(address uint32) string {
	return makeLabel("p", address)
}

// TableLabel returns the label name for a data table address.
func TableLabel(address uint32) string {
	return makeLabel("t", address)
}

func makeLabel(prefix string, address uint32) string {
	s := fmt.Sprintf("%6X", address)
	return prefix + strings.ReplaceAll(s, " ", "_")
}

// IsLiteralLoad returns whether the word is a movlw or addlw instruction.
func IsLiteralLoad(w uint16) bool {
	op := w & LiteralMask
	return op == MovlwOpcode || op == AddlwOpcode
}

// TablePointerByte returns the table pointer byte index (0 low, 1 high, 2 upper) that the
// word stores W into, or -1 if the word is no table pointer store.
func TablePointerByte(w uint16) int {
	switch w {
	case MovwfTBLPTRL:
		return 0
	case MovwfTBLPTRH:
		return 1
	case MovwfTBLPTRU:
		return 2
	default:
		return -1
	}
}
