package symbols

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrInvalidName is returned for name file lines that can not be parsed.
var ErrInvalidName = errors.New("invalid name definition")

// Names maps addresses to symbolic names.
type Names = Manager[string]

// ParseNames reads a name definition file. Every non empty line contains a hex address
// followed by the name, the order of the lines is irrelevant.
func ParseNames(r io.Reader) (*Names, error) {
	names := New[string]()
	scanner := bufio.NewScanner(r)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: line %d '%s'", ErrInvalidName, lineNumber, line)
		}

		address, err := strconv.ParseUint(fields[0], 16, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d address '%s': %w", ErrInvalidName, lineNumber, fields[0], err)
		}
		names.Set(uint32(address), fields[1])
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading names: %w", err)
	}
	return names, nil
}

// Lookup returns the name for the address and marks it as used, or returns the fallback
// if no name is known.
func Lookup(names *Names, address uint32, fallback string) string {
	if names == nil {
		return fallback
	}
	name, ok := names.Get(address)
	if !ok {
		return fallback
	}
	names.MarkUsed(address)
	return name
}
