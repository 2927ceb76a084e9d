package datamatch

import (
	"testing"

	"github.com/retroenv/pic18disasm/internal/numfmt"
	"github.com/retroenv/pic18disasm/internal/program"
	"github.com/retroenv/pic18disasm/internal/tabledef"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

type coverageSet map[uint32]bool

func (c coverageSet) IsCovered(address uint32) bool {
	return c[address]
}

func setup(t *testing.T, words map[uint32]uint16, covered coverageSet) (*Matcher, *program.Memory) {
	t.Helper()

	memory := program.NewMemory()
	for address, word := range words {
		memory.Set(address, word)
	}
	return New(log.NewTestLogger(t), memory, covered, numfmt.New(numfmt.Assembler)), memory
}

func TestMatchAlignedSequence(t *testing.T) {
	words := map[uint32]uint16{
		0x100: 0x0201,
		0x102: 0x0403,
		0x104: 0x0000,
	}
	m, memory := setup(t, words, coverageSet{})

	matches := m.Process([]tabledef.Definition{{Comment: "counter", Bytes: []byte{1, 2, 3, 4}}})
	assert.Equal(t, []Match{{Definition: 0, Address: 0x100}}, matches)

	unit, _ := memory.Unit(0x100)
	assert.Equal(t, "\t\t; table match: counter\n", unit.Prefix)
}

func TestMatchOddSequence(t *testing.T) {
	words := map[uint32]uint16{
		0x100: 0x0100,
		0x102: 0x0302,
	}
	m, memory := setup(t, words, coverageSet{})

	matches := m.Process([]tabledef.Definition{{Comment: "odd", Bytes: []byte{1, 2, 3}}})
	assert.Equal(t, []Match{{Definition: 0, Address: 0x101}}, matches)

	unit, _ := memory.Unit(0x100)
	assert.Equal(t, "\t\t; table match: odd (starts at odd byte 101h)\n", unit.Prefix)
}

func TestMatchAbortsAtCodeOrGap(t *testing.T) {
	tests := []struct {
		name    string
		words   map[uint32]uint16
		covered coverageSet
	}{
		{
			name:    "covered word",
			words:   map[uint32]uint16{0: 0x0201, 2: 0x0403},
			covered: coverageSet{2: true},
		},
		{
			name:  "missing word",
			words: map[uint32]uint16{0: 0x0201, 4: 0x0403},
		},
		{
			name:  "different byte",
			words: map[uint32]uint16{0: 0x0201, 2: 0x0503},
		},
		{
			name:  "sequence exceeds memory",
			words: map[uint32]uint16{0: 0x0201},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			covered := tt.covered
			if covered == nil {
				covered = coverageSet{}
			}
			m, memory := setup(t, tt.words, covered)

			assert.Empty(t, m.Process([]tabledef.Definition{{Comment: "t", Bytes: []byte{1, 2, 3, 4}}}))
			unit, _ := memory.Unit(0)
			assert.Equal(t, "", unit.Prefix)
		})
	}
}

func TestMatchOverlappingOccurrences(t *testing.T) {
	words := map[uint32]uint16{
		0: 0x0707,
		2: 0x0707,
	}
	m, _ := setup(t, words, coverageSet{})

	matches := m.Process([]tabledef.Definition{
		{Comment: "pair", Bytes: []byte{7, 7}},
		{Comment: "empty"},
		{Comment: "triple", Bytes: []byte{7, 7, 7}},
	})
	expected := []Match{
		{Definition: 0, Address: 0},
		{Definition: 0, Address: 1},
		{Definition: 0, Address: 2},
		{Definition: 2, Address: 0},
		{Definition: 2, Address: 1},
	}
	assert.Equal(t, expected, matches)
}

func TestMatchSkipsSecondInstructionWord(t *testing.T) {
	words := map[uint32]uint16{
		0: 0xEF01, // goto, first word
		2: 0xF000, // goto, second word
		4: 0x0000,
	}
	m, memory := setup(t, words, coverageSet{0: true})

	unit, _ := memory.Unit(0)
	unit.Decoded = true
	unit.Width = 4

	matches := m.Process([]tabledef.Definition{{Comment: "operand", Bytes: []byte{0x00, 0xF0}}})
	assert.Empty(t, matches)

	matches = m.Process([]tabledef.Definition{{Comment: "zero", Bytes: []byte{0, 0}}})
	assert.Equal(t, []Match{{Definition: 0, Address: 4}}, matches)

	second, _ := memory.Unit(2)
	assert.Equal(t, "", second.Prefix)
}

func TestMatchKeepsCoverage(t *testing.T) {
	covered := coverageSet{0: true}
	words := map[uint32]uint16{0: 0x0000, 2: 0x0201}
	m, memory := setup(t, words, covered)

	matches := m.Process([]tabledef.Definition{{Comment: "data", Bytes: []byte{1, 2}}})
	assert.Len(t, matches, 1)
	assert.Equal(t, 1, len(covered))

	unit, _ := memory.Unit(2)
	assert.Equal(t, "", unit.Code)
}
