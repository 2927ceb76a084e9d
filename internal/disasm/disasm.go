// Package disasm implements the PIC18 instruction decoder and the control flow traversal
// that separates code from data by following all reachable execution paths.
package disasm

import (
	"context"
	"fmt"

	"github.com/retroenv/pic18disasm/internal/arch/pic18"
	"github.com/retroenv/pic18disasm/internal/numfmt"
	"github.com/retroenv/pic18disasm/internal/opcode"
	"github.com/retroenv/pic18disasm/internal/program"
	"github.com/retroenv/pic18disasm/internal/symbols"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// WorkItem is an address to disassemble together with the register bank that was
// selected on the path that reached it.
type WorkItem struct {
	Address uint32
	Bank    uint8
}

// Disasm holds the state of the code coverage analysis. The memory and the covered set
// are shared by all traversals, coverage accumulates over multiple Traverse calls.
type Disasm struct {
	logger    *log.Logger
	table     *opcode.Table
	memory    *program.Memory
	registers *symbols.Names
	numbers   numfmt.Formatter

	covered set.Set[uint32] // all addresses visited by a traversal
	stack   []WorkItem      // addresses to parse, processed last in first out
	bank    uint8           // currently selected register bank
}

// New creates a new disassembler for the given program memory. The register names are
// optional and used to replace register file addresses by names.
func New(logger *log.Logger, table *opcode.Table, memory *program.Memory,
	registers *symbols.Names, numbers numfmt.Formatter) *Disasm {

	return &Disasm{
		logger:    logger,
		table:     table,
		memory:    memory,
		registers: registers,
		numbers:   numbers,
		covered:   set.New[uint32](),
	}
}

// Traverse follows the execution flow from all seed addresses and decodes every reachable
// instruction. Seeds are processed in reverse order, the last seed is parsed first.
func (dis *Disasm) Traverse(ctx context.Context, seeds ...uint32) error {
	for _, address := range seeds {
		dis.stack = append(dis.stack, WorkItem{Address: address & pic18.AddressMask})
	}

	for len(dis.stack) > 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("traversing code: %w", err)
		}

		item := dis.stack[len(dis.stack)-1]
		dis.stack = dis.stack[:len(dis.stack)-1]
		if dis.covered.Contains(item.Address) {
			continue
		}

		dis.logger.Debug("Following execution flow",
			log.Hex("address", item.Address),
			log.Int("bank", int(item.Bank)))

		dis.bank = item.Bank
		dis.walk(item.Address)
	}
	return nil
}

// walk decodes instructions sequentially until an instruction that does not continue
// execution or an already covered address is reached. Addresses that were not loaded
// from the image are skipped like erased words.
func (dis *Disasm) walk(address uint32) {
	for {
		dis.covered.Add(address)

		width := uint32(pic18.WordSize)
		stop := false
		if unit, ok := dis.memory.Unit(address); ok {
			dis.decode(address, unit)
			width = unit.Width
			stop = unit.Stop
		}

		address = (address + width) & pic18.AddressMask
		if stop || dis.covered.Contains(address) {
			return
		}
	}
}

// push adds an address to parse, carrying the currently selected bank.
func (dis *Disasm) push(address uint32) {
	dis.stack = append(dis.stack, WorkItem{
		Address: address & pic18.AddressMask,
		Bank:    dis.bank,
	})
}

// Covered returns the set of all addresses identified as code.
func (dis *Disasm) Covered() set.Set[uint32] {
	return dis.covered
}

// IsCovered returns whether the address was identified as code.
func (dis *Disasm) IsCovered(address uint32) bool {
	return dis.covered.Contains(address)
}

// Bank returns the currently selected register bank.
func (dis *Disasm) Bank() uint8 {
	return dis.bank
}

// Pending returns the number of work items that have not been processed yet.
func (dis *Disasm) Pending() int {
	return len(dis.stack)
}
