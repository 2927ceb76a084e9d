// Package opcode implements the instruction template table that maps instruction words
// to assembly templates by masked bit comparison.
package opcode

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// UnknownTemplate is the template of the sentinel spec returned for words that match
// no table entry.
const UnknownTemplate = "X"

const wordBits = 16

// ErrInvalidLine is returned for table lines that can not be parsed.
var ErrInvalidLine = errors.New("invalid opcode table line")

var fieldSeparator = regexp.MustCompile(`\s{2,}`)

// Spec describes one instruction template of the table.
type Spec struct {
	Template string // assembly template, uppercase characters are operand placeholders
	Value    uint16 // value of the fixed bits
	Mask     uint16 // set for every fixed bit position
	Skip     bool   // conditional skip of the following word
	Stop     bool   // execution does not continue after this instruction
}

// Unknown returns the sentinel spec used for unidentifiable words.
func Unknown() Spec {
	return Spec{Template: UnknownTemplate}
}

// IsUnknown returns whether the spec is the unknown sentinel.
func (s Spec) IsUnknown() bool {
	return s.Template == UnknownTemplate
}

// Matches returns whether the word matches the fixed bits of the spec.
func (s Spec) Matches(w uint16) bool {
	return w&s.Mask == s.Value
}

// Table is an ordered list of specs, the first matching entry wins.
type Table struct {
	specs []Spec
}

// New returns a table containing the given specs in priority order.
func New(specs ...Spec) *Table {
	return &Table{specs: specs}
}

// Parse reads a table definition. Every non empty line that does not start with # contains
// the template, the skip flag, the stop flag and the bit pattern, separated by at least two
// blanks. The bit pattern is read most significant bit first, 0 and 1 are fixed bits, blanks
// are ignored and any other character marks a don't care bit.
func Parse(r io.Reader) (*Table, error) {
	t := &Table{}
	scanner := bufio.NewScanner(r)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		spec, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNumber, err)
		}
		t.specs = append(t.specs, spec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading opcode table: %w", err)
	}
	return t, nil
}

// ParseLine parses a single table line.
func ParseLine(line string) (Spec, error) {
	fields := fieldSeparator.Split(strings.TrimSpace(line), -1)
	if len(fields) != 4 {
		return Spec{}, fmt.Errorf("%w: expected 4 fields but found %d in '%s'", ErrInvalidLine, len(fields), line)
	}

	value, mask, err := parseBits(fields[3])
	if err != nil {
		return Spec{}, err
	}

	return Spec{
		Template: fields[0],
		Value:    value,
		Mask:     mask,
		Skip:     fields[1] != "0",
		Stop:     fields[2] != "0",
	}, nil
}

func parseBits(pattern string) (uint16, uint16, error) {
	var value, mask uint16
	bits := 0

	for _, c := range pattern {
		switch c {
		case ' ':
			continue
		case '0':
			value <<= 1
			mask = mask<<1 | 1
		case '1':
			value = value<<1 | 1
			mask = mask<<1 | 1
		default:
			value <<= 1
			mask <<= 1
		}
		bits++
	}

	if bits != wordBits {
		return 0, 0, fmt.Errorf("%w: bit pattern '%s' has %d bits", ErrInvalidLine, pattern, bits)
	}
	return value, mask, nil
}

// Match returns the first spec matching the word or the unknown sentinel.
func (t *Table) Match(w uint16) Spec {
	for _, spec := range t.specs {
		if spec.Matches(w) {
			return spec
		}
	}
	return Unknown()
}

// Specs returns the specs of the table in priority order.
func (t *Table) Specs() []Spec {
	return t.specs
}

// Len returns the number of specs in the table.
func (t *Table) Len() int {
	return len(t.specs)
}
