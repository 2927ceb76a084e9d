// Package datamatch annotates data regions that contain known byte sequences.
package datamatch

import (
	"github.com/retroenv/pic18disasm/internal/numfmt"
	"github.com/retroenv/pic18disasm/internal/program"
	"github.com/retroenv/pic18disasm/internal/tabledef"
	"github.com/retroenv/retrogolib/log"
)

type coverage interface {
	IsCovered(address uint32) bool
}

// Match is a found occurrence of a table definition.
type Match struct {
	Definition int    // index of the matched definition
	Address    uint32 // byte address of the first matched byte
}

// Matcher searches the uncovered program memory for table definitions.
type Matcher struct {
	logger   *log.Logger
	memory   *program.Memory
	coverage coverage
	numbers  numfmt.Formatter
}

// New returns a new data matcher.
func New(logger *log.Logger, memory *program.Memory, coverage coverage, numbers numfmt.Formatter) *Matcher {
	return &Matcher{
		logger:   logger,
		memory:   memory,
		coverage: coverage,
		numbers:  numbers,
	}
}

// Process searches every definition at every uncovered byte address and annotates the
// word that contains the first byte of every full match.
func (m *Matcher) Process(definitions []tabledef.Definition) []Match {
	var starts []uint32
	for _, address := range m.memory.Addresses() {
		if m.isData(address) {
			starts = append(starts, address, address+1)
		}
	}

	var matches []Match
	for index, def := range definitions {
		if len(def.Bytes) == 0 {
			continue
		}

		for _, start := range starts {
			if !m.matches(start, def.Bytes) {
				continue
			}

			m.annotate(start, def)
			matches = append(matches, Match{Definition: index, Address: start})
		}
	}

	m.logger.Debug("Data table matching",
		log.Int("definitions", len(definitions)),
		log.Int("matches", len(matches)))
	return matches
}

// matches returns whether the bytes starting at the given byte address equal the
// sequence. A covered or missing word ends the comparison as mismatch.
func (m *Matcher) matches(start uint32, sequence []byte) bool {
	for i, expected := range sequence {
		b, ok := m.byteAt(start + uint32(i))
		if !ok || b != expected {
			return false
		}
	}
	return true
}

func (m *Matcher) byteAt(address uint32) (byte, bool) {
	wordAddress := address &^ 1
	if !m.isData(wordAddress) {
		return 0, false
	}

	unit, _ := m.memory.Unit(wordAddress)
	if address&1 == 0 {
		return byte(unit.Word), true
	}
	return byte(unit.Word >> 8), true
}

// isData returns whether the address is a loaded word that is neither covered by code
// nor the operand word of a two word instruction.
func (m *Matcher) isData(address uint32) bool {
	return m.memory.Loaded(address) &&
		!m.coverage.IsCovered(address) &&
		!m.memory.SecondWord(address)
}

func (m *Matcher) annotate(start uint32, def tabledef.Definition) {
	unit, _ := m.memory.Unit(start &^ 1)

	line := "\t\t; table match: " + def.Comment
	if start&1 != 0 {
		line += " (starts at odd byte " + m.numbers.Hex(start) + ")"
	}
	unit.Prefix += line + "\n"

	m.logger.Debug("Data table match",
		log.String("table", def.Comment),
		log.Hex("address", start))
}
