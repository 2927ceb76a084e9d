package program

import (
	"slices"

	"github.com/retroenv/pic18disasm/internal/arch/pic18"
)

// Memory maps even byte addresses to program memory units.
type Memory struct {
	units map[uint32]*Unit
}

// NewMemory returns a new empty program memory.
func NewMemory() *Memory {
	return &Memory{
		units: make(map[uint32]*Unit),
	}
}

// Set stores a word loaded from the image at the given address.
func (m *Memory) Set(address uint32, word uint16) {
	if unit, ok := m.units[address]; ok {
		unit.Word = word
		unit.Placeholder = false
		return
	}
	m.units[address] = newUnit(word)
}

// Unit returns the unit at the given address if it exists.
func (m *Memory) Unit(address uint32) (*Unit, bool) {
	unit, ok := m.units[address]
	return unit, ok
}

// Lookup returns the unit at the given address. A missing address, like a jump
// destination outside of the image or a missing second word of a two word instruction,
// gets a placeholder unit inserted that contains an erased word.
func (m *Memory) Lookup(address uint32) *Unit {
	if unit, ok := m.units[address]; ok {
		return unit
	}

	unit := newUnit(pic18.ErasedWord)
	unit.Placeholder = true
	unit.Width = pic18.WordSize
	m.units[address] = unit
	return unit
}

// Loaded returns whether the address contains a word loaded from the image.
func (m *Memory) Loaded(address uint32) bool {
	unit, ok := m.units[address]
	return ok && !unit.Placeholder
}

// SecondWord returns whether the address holds the operand word of a decoded two word
// instruction.
func (m *Memory) SecondWord(address uint32) bool {
	previous, ok := m.units[(address-pic18.WordSize)&pic18.AddressMask]
	return ok && previous.Decoded && previous.Width == 2*pic18.WordSize
}

// Addresses returns all unit addresses in ascending order.
func (m *Memory) Addresses() []uint32 {
	addresses := make([]uint32, 0, len(m.units))
	for address := range m.units {
		addresses = append(addresses, address)
	}
	slices.Sort(addresses)
	return addresses
}

// Len returns the number of units.
func (m *Memory) Len() int {
	return len(m.units)
}
