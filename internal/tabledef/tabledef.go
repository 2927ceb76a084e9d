// Package tabledef parses the auxiliary files that describe known data tables and
// jump table address ranges.
package tabledef

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/retroenv/pic18disasm/internal/arch/pic18"
)

const commentPrefix = ";"

// ErrInvalidLine is returned for lines that can not be parsed.
var ErrInvalidLine = errors.New("invalid line")

// Definition is a known sequence of data bytes with a descriptive comment.
type Definition struct {
	Comment string
	Bytes   []byte
}

// ParseDefinitions parses table definitions. Every comment line starts a new definition,
// the following lines contain decimal byte values separated by commas or blanks.
// Definitions without any bytes are dropped.
func ParseDefinitions(r io.Reader) ([]Definition, error) {
	var definitions []Definition
	var current *Definition

	scanner := bufio.NewScanner(r)
	for lineNumber := 1; scanner.Scan(); lineNumber++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if comment, ok := strings.CutPrefix(line, commentPrefix); ok {
			definitions = appendDefinition(definitions, current)
			current = &Definition{Comment: strings.TrimSpace(comment)}
			continue
		}

		data, err := parseBytes(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}
		if current == nil {
			current = &Definition{}
		}
		current.Bytes = append(current.Bytes, data...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading table definitions: %w", err)
	}

	return appendDefinition(definitions, current), nil
}

func appendDefinition(definitions []Definition, def *Definition) []Definition {
	if def == nil || len(def.Bytes) == 0 {
		return definitions
	}
	return append(definitions, *def)
}

func parseBytes(line string) ([]byte, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})

	data := make([]byte, 0, len(fields))
	for _, field := range fields {
		value, err := strconv.ParseUint(field, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: byte value '%s'", ErrInvalidLine, field)
		}
		data = append(data, byte(value))
	}
	return data, nil
}

// Range is an inclusive byte address range of a jump table.
type Range struct {
	Start uint32
	Stop  uint32
}

// Seeds returns the word aligned addresses of the range.
func (r Range) Seeds() []uint32 {
	var seeds []uint32
	for address := uint64(r.Start &^ 1); address <= uint64(r.Stop); address += 2 {
		seeds = append(seeds, uint32(address))
	}
	return seeds
}

// ParseRanges parses jump table ranges given as "start,stop" hex addresses per line.
func ParseRanges(r io.Reader) ([]Range, error) {
	var ranges []Range

	scanner := bufio.NewScanner(r)
	for lineNumber := 1; scanner.Scan(); lineNumber++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}

		rng, err := parseRange(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}
		ranges = append(ranges, rng)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading jump table ranges: %w", err)
	}
	return ranges, nil
}

func parseRange(line string) (Range, error) {
	start, stop, ok := strings.Cut(line, ",")
	if !ok {
		return Range{}, fmt.Errorf("%w: missing range separator", ErrInvalidLine)
	}

	startAddress, err := parseAddress(start)
	if err != nil {
		return Range{}, err
	}
	stopAddress, err := parseAddress(stop)
	if err != nil {
		return Range{}, err
	}
	if stopAddress < startAddress {
		return Range{}, fmt.Errorf("%w: range end %X before start %X", ErrInvalidLine, stopAddress, startAddress)
	}

	return Range{Start: startAddress, Stop: stopAddress}, nil
}

func parseAddress(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")

	value, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: address '%s'", ErrInvalidLine, s)
	}
	if value > pic18.AddressMask {
		return 0, fmt.Errorf("%w: address %X outside of program memory", ErrInvalidLine, value)
	}
	return uint32(value), nil
}
