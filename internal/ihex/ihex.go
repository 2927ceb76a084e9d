// Package ihex reads Intel HEX object files into a program image.
package ihex

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/pic18disasm/internal/arch/pic18"
	"github.com/retroenv/pic18disasm/internal/program"
	"github.com/retroenv/retrogolib/log"
)

// Record types.
const (
	DataRecord                  = 0x00
	EndOfFileRecord             = 0x01
	ExtendedLinearAddressRecord = 0x04
)

const (
	recordStart    = ':'
	recordOverhead = 5 // byte count, 2 address bytes, record type and checksum
)

// ErrMalformedRecord is returned for records that can not be decoded.
var ErrMalformedRecord = errors.New("malformed record")

// ChecksumError is returned for a record with a checksum mismatch.
type ChecksumError struct {
	Line     int
	Expected byte
	Got      byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch in line %d: expected %02X, got %02X", e.Line, e.Expected, e.Got)
}

type record struct {
	typ     byte
	address uint16
	data    []byte
}

// Read parses all records of an Intel HEX file and sorts the data words into the program,
// configuration and EEPROM memory of the returned image. Any checksum mismatch aborts
// reading and no image is returned.
func Read(logger *log.Logger, r io.Reader) (*program.Image, error) {
	image := program.NewImage()
	var upperAddress uint32

	scanner := bufio.NewScanner(r)
	for lineNumber := 1; scanner.Scan(); lineNumber++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line[0] != recordStart {
			logger.Warn("Ignoring line",
				log.Int("line", lineNumber),
				log.String("content", line))
			continue
		}

		rec, err := parseRecord(line, lineNumber)
		if err != nil {
			return nil, err
		}

		switch rec.typ {
		case DataRecord:
			storeData(image, upperAddress+uint32(rec.address), rec.data)

		case EndOfFileRecord:
			return image, nil

		case ExtendedLinearAddressRecord:
			if len(rec.data) != 2 {
				return nil, fmt.Errorf("%w: line %d: extended linear address record with %d bytes",
					ErrMalformedRecord, lineNumber, len(rec.data))
			}
			upperAddress = uint32(rec.data[0])<<24 | uint32(rec.data[1])<<16

		default:
			logger.Warn("Ignoring unsupported record type",
				log.Int("line", lineNumber),
				log.Hex("type", rec.typ))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading hex file: %w", err)
	}

	return image, nil
}

func parseRecord(line string, lineNumber int) (record, error) {
	b, err := hex.DecodeString(line[1:])
	if err != nil {
		return record{}, fmt.Errorf("%w: line %d: %w", ErrMalformedRecord, lineNumber, err)
	}
	if len(b) < recordOverhead || int(b[0]) != len(b)-recordOverhead {
		return record{}, fmt.Errorf("%w: line %d: invalid record length", ErrMalformedRecord, lineNumber)
	}

	content := b[:len(b)-1]
	got := b[len(b)-1]
	if expected := checksum(content); expected != got {
		return record{}, &ChecksumError{
			Line:     lineNumber,
			Expected: expected,
			Got:      got,
		}
	}

	return record{
		typ:     b[3],
		address: uint16(b[1])<<8 | uint16(b[2]),
		data:    b[4 : len(b)-1],
	}, nil
}

// checksum returns the two's complement of the sum of all record bytes.
func checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return -sum
}

// storeData stores the little endian data bytes starting at the given byte address.
// A byte at an odd address sets the high byte of the word.
func storeData(image *program.Image, address uint32, data []byte) {
	for i, b := range data {
		byteAddress := address + uint32(i)
		wordAddress := byteAddress &^ 1

		switch {
		case byteAddress < pic18.ConfigStart:
			word := uint16(pic18.ErasedWord)
			if unit, ok := image.Code.Unit(wordAddress); ok && !unit.Placeholder {
				word = unit.Word
			}
			image.Code.Set(wordAddress, setByte(word, byteAddress, b))

		case byteAddress < pic18.EEPROMStart:
			image.Configuration[wordAddress] = setByte(wordOrErased(image.Configuration, wordAddress), byteAddress, b)

		default:
			image.EEPROM[wordAddress] = setByte(wordOrErased(image.EEPROM, wordAddress), byteAddress, b)
		}
	}
}

func wordOrErased(words program.Words, address uint32) uint16 {
	if word, ok := words[address]; ok {
		return word
	}
	return pic18.ErasedWord
}

func setByte(word uint16, byteAddress uint32, b byte) uint16 {
	if byteAddress&1 == 0 {
		return word&0xFF00 | uint16(b)
	}
	return word&0x00FF | uint16(b)<<8
}
