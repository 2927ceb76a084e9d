// Package program represents a loaded PIC18 program image and the per address
// disassembly state.
package program

import (
	"slices"

	"github.com/retroenv/retrogolib/set"
)

// Unit defines the content of a program memory word that can represent code or data.
type Unit struct {
	Word        uint16 // raw word as loaded from the image
	Placeholder bool   // synthesized for an address that was not part of the image

	Decoded bool   // set once the decoder processed the unit, Width and Stop are valid afterwards
	Width   uint32 // operand width in bytes, 2 or 4 for two word instructions
	Stop    bool   // execution does not continue after this instruction

	References set.Set[uint32] // addresses that branch, call or jump to this unit

	Label   string // name of label if identified as a destination
	Code    string // asm output of this word
	Comment string // trailing comment
	Prefix  string // leading lines like directives or comments
}

func newUnit(word uint16) *Unit {
	return &Unit{
		Word:       word,
		References: set.New[uint32](),
	}
}

// AddReference records that the unit is referenced from the given address.
func (u *Unit) AddReference(from uint32) {
	u.References.Add(from)
}

// SortedReferences returns the referencing addresses in ascending order.
func (u *Unit) SortedReferences() []uint32 {
	refs := make([]uint32, 0, len(u.References))
	for address := range u.References {
		refs = append(refs, address)
	}
	slices.Sort(refs)
	return refs
}

// AppendComment appends a comment text, separated from a previous one.
func (u *Unit) AppendComment(comment string) {
	if u.Comment == "" {
		u.Comment = comment
		return
	}
	u.Comment += "; " + comment
}
