// Package writer arranges the disassembled program memory and writes it as assembly source.
package writer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/retroenv/pic18disasm/internal/arch/pic18"
	"github.com/retroenv/pic18disasm/internal/numfmt"
	"github.com/retroenv/pic18disasm/internal/program"
	"github.com/retroenv/pic18disasm/internal/symbols"
)

const (
	dataBytesPerLine = 16
	dataDirective    = "db    "
	labelWidth       = 8
	commentColumn    = 40
)

type coverage interface {
	IsCovered(address uint32) bool
}

// Options of the writer.
type Options struct {
	Listing   bool   // prefix every word with its address and raw content
	Processor string // processor name used in the LIST and #include directives
}

// Writer arranges the program memory and outputs it as assembly source.
type Writer struct {
	image       *program.Image
	coverage    coverage
	configNames *symbols.Names
	numbers     numfmt.Formatter
	options     Options
	writer      io.Writer
}

// New creates a new writer.
func New(image *program.Image, coverage coverage, configNames *symbols.Names,
	numbers numfmt.Formatter, writer io.Writer, options Options) *Writer {

	return &Writer{
		image:       image,
		coverage:    coverage,
		configNames: configNames,
		numbers:     numbers,
		options:     options,
		writer:      writer,
	}
}

// Write arranges the program memory and writes the complete assembly source.
func (w *Writer) Write() error {
	w.Arrange()

	if err := w.writeHeader(); err != nil {
		return err
	}
	if err := w.writeConfigAndEEPROM(); err != nil {
		return err
	}
	if err := w.writeCode(); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w.writer, "\tEND"); err != nil {
		return fmt.Errorf("writing end directive: %w", err)
	}
	return nil
}

// Arrange assigns labels and cross reference comments to all referenced units and
// converts uncovered units to data declarations. Outside of listing mode consecutive
// data words get merged into declarations of up to dataBytesPerLine bytes.
func (w *Writer) Arrange() {
	memory := w.image.Code
	var skipUntil uint32

	for _, address := range memory.Addresses() {
		if address < skipUntil {
			continue
		}
		unit, _ := memory.Unit(address)

		if len(unit.References) > 0 {
			if unit.Label == "" {
				unit.Label = pic18.CodeLabel(address)
			}
			unit.AppendComment("entry from: " + w.formatReferences(unit))
		}

		if w.coverage.IsCovered(address) {
			if unit.Decoded {
				skipUntil = address + unit.Width
			}
			continue
		}
		if unit.Placeholder {
			continue
		}

		words := w.dataRun(address)
		data := make([]byte, 0, len(words)*pic18.WordSize)
		for _, word := range words {
			data = append(data, byte(word), byte(word>>8))
		}
		unit.Code = dataDirective + formatBytes(data)
		unit.AppendComment(asciiString(data))
		unit.Width = uint32(len(data))
		skipUntil = address + unit.Width
	}
}

// dataRun returns the words of the data declaration that starts at the given address.
// The run ends at the first missing, covered, labeled or annotated word.
func (w *Writer) dataRun(start uint32) []uint16 {
	memory := w.image.Code
	first, _ := memory.Unit(start)
	words := []uint16{first.Word}
	if w.options.Listing {
		return words
	}

	for address := start + pic18.WordSize; len(words)*pic18.WordSize < dataBytesPerLine; address += pic18.WordSize {
		unit, ok := memory.Unit(address)
		if !ok || unit.Placeholder || w.coverage.IsCovered(address) {
			break
		}
		if len(unit.References) > 0 || unit.Label != "" || unit.Prefix != "" || unit.Comment != "" {
			break
		}
		words = append(words, unit.Word)
	}
	return words
}

func (w *Writer) formatReferences(unit *program.Unit) string {
	refs := unit.SortedReferences()
	s := make([]string, len(refs))
	for i, ref := range refs {
		s[i] = w.numbers.Hex(ref)
	}
	return strings.Join(s, ",")
}

func (w *Writer) writeHeader() error {
	processor := w.options.Processor
	header := fmt.Sprintf(";Generated by pic18disasm\n"+
		"\t\t;Select your processor\n"+
		"\t\tLIST      P=%s\t\t; modify this\n"+
		"\t\t#include \"p%s.inc\"\t\t; and this\n\n", processor, processor)

	if _, err := io.WriteString(w.writer, header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	return nil
}

func (w *Writer) writeConfigAndEEPROM() error {
	var sb strings.Builder

	for _, address := range w.image.Configuration.Addresses() {
		word := w.image.Configuration[address]
		if w.options.Listing {
			fmt.Fprintf(&sb, "%06X %04X\n", address, word)
			continue
		}

		line := fmt.Sprintf("\t\t__CONFIG %s, %s", w.numbers.Hex(address), w.numbers.Hex(uint32(word)))
		if name := symbols.Lookup(w.configNames, address, ""); name != "" {
			line += "\t; " + name
		}
		sb.WriteString(line + "\n")
	}

	if len(w.image.EEPROM) > 0 {
		sb.WriteString("\t\t;eeprom:\n")
		for _, address := range w.image.EEPROM.Addresses() {
			word := w.image.EEPROM[address]
			if w.options.Listing {
				fmt.Fprintf(&sb, "%06X %04X\n", address, word)
				continue
			}
			fmt.Fprintf(&sb, "\t\tORG %s\n\t\tDE %s\n", w.numbers.Hex(address), w.numbers.Hex(uint32(word)))
		}
	}

	if sb.Len() == 0 {
		return nil
	}
	sb.WriteString("\n\n")
	if _, err := io.WriteString(w.writer, sb.String()); err != nil {
		return fmt.Errorf("writing configuration and eeprom: %w", err)
	}
	return nil
}

func (w *Writer) writeCode() error {
	memory := w.image.Code
	var next uint32
	written := false

	for _, address := range memory.Addresses() {
		unit, _ := memory.Unit(address)
		if unit.Placeholder && !w.coverage.IsCovered(address) {
			continue
		}

		if w.options.Listing && memory.SecondWord(address) {
			if _, err := fmt.Fprintf(w.writer, "%05X %04X\n", address, unit.Word); err != nil {
				return fmt.Errorf("writing line at %05X: %w", address, err)
			}
			continue
		}
		if written && address < next {
			continue
		}

		contiguous := written && address == next
		if err := w.writeUnit(address, unit, contiguous); err != nil {
			return err
		}
		written = true
		next = address + max(unit.Width, pic18.WordSize)
	}
	return nil
}

func (w *Writer) writeUnit(address uint32, unit *program.Unit, contiguous bool) error {
	var sb strings.Builder

	if w.options.Listing {
		sb.WriteString(unit.Prefix)
		fmt.Fprintf(&sb, "%05X %04X\t", address, unit.Word)
	} else {
		if len(unit.References) > 1 {
			sb.WriteString("\n")
		}
		if !contiguous {
			fmt.Fprintf(&sb, "\t\tORG %s\n", w.numbers.Hex(address))
		}
		sb.WriteString(unit.Prefix)
	}

	sb.WriteString(formatLine(unit.Label, unit.Code, unit.Comment))
	sb.WriteString("\n")

	if _, err := io.WriteString(w.writer, sb.String()); err != nil {
		return fmt.Errorf("writing line at %05X: %w", address, err)
	}
	return nil
}

func formatLine(label, code, comment string) string {
	line := label
	if len(line) < labelWidth {
		line += strings.Repeat(" ", labelWidth-len(line))
	} else {
		line += " "
	}
	line += code

	if comment == "" {
		return line
	}
	if len(line) < commentColumn {
		line += strings.Repeat(" ", commentColumn-len(line))
	} else {
		line += " "
	}
	return line + "; " + comment
}

func formatBytes(data []byte) string {
	s := make([]string, len(data))
	for i, b := range data {
		s[i] = strconv.Itoa(int(b))
	}
	return strings.Join(s, ",")
}

func asciiString(data []byte) string {
	var sb strings.Builder
	for _, b := range data {
		if b < 0x20 || b > 0x7E {
			sb.WriteByte('.')
		} else {
			sb.WriteByte(b)
		}
	}
	return sb.String()
}
