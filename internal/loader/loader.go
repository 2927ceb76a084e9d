// Package loader handles loading of the hex object file and the auxiliary definition files.
package loader

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/retroenv/pic18disasm/internal/arch/pic18"
	"github.com/retroenv/pic18disasm/internal/ihex"
	"github.com/retroenv/pic18disasm/internal/options"
	"github.com/retroenv/pic18disasm/internal/program"
	"github.com/retroenv/pic18disasm/internal/symbols"
	"github.com/retroenv/pic18disasm/internal/tabledef"
	"github.com/retroenv/retrogolib/log"
)

// Input contains all data that is needed to disassemble a program.
type Input struct {
	Image       *program.Image
	Registers   *symbols.Names
	ConfigNames *symbols.Names
	Tables      []tabledef.Definition
	JumpTables  []tabledef.Range
}

// Loader handles loading input files from disk.
type Loader struct {
	logger *log.Logger
}

// New creates a new loader.
func New(logger *log.Logger) *Loader {
	return &Loader{
		logger: logger,
	}
}

// Load reads the hex file and all auxiliary files that are set in the options.
// Register and configuration names fall back to the built-in names.
func (l *Loader) Load(opts options.Program) (*Input, error) {
	input := &Input{}
	var err error

	input.Registers, err = loadNames(opts.Registers, pic18.RegisterNames())
	if err != nil {
		return nil, fmt.Errorf("loading register names: %w", err)
	}
	input.ConfigNames, err = loadNames(opts.ConfigNames, pic18.ConfigNames())
	if err != nil {
		return nil, fmt.Errorf("loading configuration register names: %w", err)
	}

	if opts.Tables != "" {
		err = readFile(opts.Tables, func(r io.Reader) error {
			input.Tables, err = tabledef.ParseDefinitions(r)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("loading table definitions: %w", err)
		}
	}

	if opts.JumpTables != "" {
		err = readFile(opts.JumpTables, func(r io.Reader) error {
			input.JumpTables, err = tabledef.ParseRanges(r)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("loading jump table ranges: %w", err)
		}
	}

	l.logger.Info("Reading object file", log.String("file", opts.Input))
	err = readFile(opts.Input, func(r io.Reader) error {
		input.Image, err = ihex.Read(l.logger, r)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("loading hex file: %w", err)
	}

	return input, nil
}

func loadNames(fileName, builtin string) (*symbols.Names, error) {
	if fileName == "" {
		names, err := symbols.ParseNames(strings.NewReader(builtin))
		if err != nil {
			return nil, fmt.Errorf("parsing built-in names: %w", err)
		}
		return names, nil
	}

	var names *symbols.Names
	err := readFile(fileName, func(r io.Reader) error {
		var err error
		names, err = symbols.ParseNames(r)
		return err
	})
	return names, err
}

func readFile(fileName string, parse func(r io.Reader) error) error {
	file, err := os.Open(fileName)
	if err != nil {
		return fmt.Errorf("opening file %s: %w", fileName, err)
	}
	defer func() { _ = file.Close() }()

	if err := parse(file); err != nil {
		return fmt.Errorf("parsing file %s: %w", fileName, err)
	}
	return nil
}
