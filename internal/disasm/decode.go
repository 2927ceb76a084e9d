package disasm

import (
	"strconv"
	"strings"

	"github.com/retroenv/pic18disasm/internal/arch/pic18"
	"github.com/retroenv/pic18disasm/internal/program"
	"github.com/retroenv/pic18disasm/internal/symbols"
)

const (
	mnemonicWidth     = 6
	unknownComment    = "WARNING: unknown instruction!"
	unknownDirective  = "DE "
	shortBranchMask   = 0xFF
	shortBranchSign   = 0x80
	longBranchMask    = 0x7FF
	longBranchSign    = 0x400
	destinationBit    = 0x200
	fastBit           = 0x1
	callFastMask      = 0x300
	callFastValue     = 0x100
	registerMask      = 0xFF
	fullRegisterMask  = 0xFFF
	literalMask       = 0xFF
	bitNumberShift    = 9
	bitNumberMask     = 0x7
	lfsrRegisterMask  = 0x30
	lfsrRegisterShift = 4
	lfsrHighMask      = 0xF
	lfsrLowMask       = 0xFF
	gotoLowMask       = 0xFF
	gotoHighMask      = 0xFFF
)

// instruction holds the state of a single instruction while its template is rendered.
type instruction struct {
	address uint32
	word    uint16
	unit    *program.Unit
	out     tokens
}

// decode renders the instruction at the address, updates the unit metadata and adds
// all addresses that execution can continue at to the work stack.
func (dis *Disasm) decode(address uint32, unit *program.Unit) {
	spec := dis.table.Match(unit.Word)

	unit.Decoded = true
	unit.Width = pic18.WordSize
	unit.Stop = spec.Stop

	if spec.Skip {
		dis.push(address + 2*pic18.WordSize)
	}

	ins := &instruction{
		address: address,
		word:    unit.Word,
		unit:    unit,
	}

	if spec.IsUnknown() {
		unit.Code = unknownDirective + dis.numbers.Hex(uint32(unit.Word))
		unit.AppendComment(unknownComment)
		return
	}

	mnemonic, operands, _ := strings.Cut(spec.Template, " ")
	dis.renderOperands(ins, operands)

	if spec.Template == pic18.BankSelectTemplate {
		dis.bank = uint8(unit.Word & pic18.BankMask)
	}

	if len(ins.out.items) == 0 {
		unit.Code = mnemonic
		return
	}
	padding := strings.Repeat(" ", max(1, mnemonicWidth-len(mnemonic)))
	unit.Code = mnemonic + padding + ins.out.String()
}

// renderOperands substitutes all operand placeholders of the template operand list,
// blanks inside the operand list are dropped.
func (dis *Disasm) renderOperands(ins *instruction, operands string) {
	for _, c := range operands {
		switch c {
		case ' ':
		case 'F':
			dis.registerOperand(ins)
		case 'D':
			if ins.word&destinationBit == 0 {
				ins.out.push("W")
			} else {
				ins.out.push("f")
			}
		case 'A':
			dis.accessOperand(ins)
		case 'B':
			ins.out.push(strconv.Itoa(int(ins.word>>bitNumberShift) & bitNumberMask))
		case 'K':
			ins.out.push(dis.numbers.Hex(uint32(ins.word & literalMask)))
		case 'C':
			ins.out.push(dis.numbers.Hex(uint32(ins.word & pic18.BankMask)))
		case 'N':
			offset := int32(ins.word & shortBranchMask)
			if offset >= shortBranchSign {
				offset -= 2 * shortBranchSign
			}
			dis.relativeBranch(ins, offset)
		case 'M':
			offset := int32(ins.word & longBranchMask)
			if offset >= longBranchSign {
				offset -= 2 * longBranchSign
			}
			dis.relativeBranch(ins, offset)
		case 'S':
			if ins.word&fastBit != 0 {
				ins.out.push("FAST")
			} else if ins.out.hasSuffix(",") {
				ins.out.pop(1)
			}
		case 'W':
			dis.absoluteBranch(ins)
		case 'Y':
			dis.moveOperands(ins)
		case 'Z':
			dis.lfsrOperands(ins)
		default:
			ins.out.push(string(c))
		}
	}
}

// registerOperand renders a register file address. Access bank addresses in the SFR area
// are replaced by register names, banked accesses get the register name of the currently
// selected bank as comment.
func (dis *Disasm) registerOperand(ins *instruction) {
	f := uint32(ins.word & registerMask)
	fallback := dis.numbers.Hex(f)

	if ins.word&pic18.AccessBankBit == 0 {
		if f >= pic18.AccessBankSplit {
			ins.out.push(symbols.Lookup(dis.registers, f|pic18.SFRBank, fallback))
			return
		}
		ins.out.push(fallback)
		return
	}

	ins.out.push(fallback)
	banked := uint32(dis.bank)<<8 | f
	if name := symbols.Lookup(dis.registers, banked, ""); name != "" {
		ins.unit.AppendComment("bank " + strconv.Itoa(int(dis.bank)) + ": " + name)
	}
}

// accessOperand renders the access bank selection. The access bank is the implicit
// default, the defaults of the destination and access fields are omitted.
func (dis *Disasm) accessOperand(ins *instruction) {
	switch {
	case ins.word&pic18.AccessBankBit != 0:
		ins.out.push("BANKED")
	case ins.out.hasSuffix(",", "f", ","):
		ins.out.pop(3)
	case ins.out.hasSuffix(","):
		ins.out.pop(1)
	}
}

// relativeBranch handles a branch with a signed word offset relative to the following
// instruction.
func (dis *Disasm) relativeBranch(ins *instruction, offset int32) {
	destination := uint32(int64(ins.address)+pic18.WordSize+int64(offset)*pic18.WordSize) & pic18.AddressMask
	dis.addBranch(ins, destination)
}

// absoluteBranch handles the two word call and goto instructions.
func (dis *Disasm) absoluteBranch(ins *instruction) {
	w2 := dis.secondWord(ins)
	destination := (uint32(ins.word&gotoLowMask) | uint32(w2&gotoHighMask)<<8) * pic18.WordSize
	dis.addBranch(ins, destination&pic18.AddressMask)

	if ins.word&callFastMask == callFastValue {
		ins.out.push(",FAST")
	}
}

// addBranch records the reference to the destination, renders its label and adds the
// destination to the addresses to parse.
func (dis *Disasm) addBranch(ins *instruction, destination uint32) {
	dis.memory.Lookup(destination).AddReference(ins.address)
	ins.out.push(pic18.CodeLabel(destination))
	dis.push(destination)
}

// moveOperands renders the source and destination registers of movff.
func (dis *Disasm) moveOperands(ins *instruction) {
	w2 := dis.secondWord(ins)
	source := uint32(ins.word & fullRegisterMask)
	destination := uint32(w2 & fullRegisterMask)

	ins.out.push(
		symbols.Lookup(dis.registers, source, dis.numbers.Hex(source)),
		",",
		symbols.Lookup(dis.registers, destination, dis.numbers.Hex(destination)),
	)
}

// lfsrOperands renders the file select register number and the 12 bit literal of lfsr.
func (dis *Disasm) lfsrOperands(ins *instruction) {
	w2 := dis.secondWord(ins)
	register := int(ins.word&lfsrRegisterMask) >> lfsrRegisterShift
	literal := uint32(ins.word&lfsrHighMask)<<8 | uint32(w2&lfsrLowMask)

	ins.out.push(strconv.Itoa(register), ",", dis.numbers.Hex(literal))
}

// secondWord returns the second word of a two word instruction and sets the instruction
// width accordingly.
func (dis *Disasm) secondWord(ins *instruction) uint16 {
	ins.unit.Width = 2 * pic18.WordSize
	return dis.memory.Lookup((ins.address + pic18.WordSize) & pic18.AddressMask).Word
}
