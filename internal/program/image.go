package program

import (
	"slices"
)

// Words is an opaque address to word store used for configuration and EEPROM memory.
type Words map[uint32]uint16

// Addresses returns all addresses in ascending order.
func (w Words) Addresses() []uint32 {
	addresses := make([]uint32, 0, len(w))
	for address := range w {
		addresses = append(addresses, address)
	}
	slices.Sort(addresses)
	return addresses
}

// Image contains the memory areas of a loaded hex file.
type Image struct {
	Code          *Memory
	Configuration Words
	EEPROM        Words
}

// NewImage returns a new empty image.
func NewImage() *Image {
	return &Image{
		Code:          NewMemory(),
		Configuration: Words{},
		EEPROM:        Words{},
	}
}
