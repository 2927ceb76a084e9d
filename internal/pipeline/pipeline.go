// Package pipeline orchestrates the disassembly workflow stages.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/retroenv/pic18disasm/internal/arch/pic18"
	"github.com/retroenv/pic18disasm/internal/datamatch"
	"github.com/retroenv/pic18disasm/internal/disasm"
	"github.com/retroenv/pic18disasm/internal/loader"
	"github.com/retroenv/pic18disasm/internal/numfmt"
	"github.com/retroenv/pic18disasm/internal/options"
	"github.com/retroenv/pic18disasm/internal/tblptr"
	"github.com/retroenv/pic18disasm/internal/writer"
	"github.com/retroenv/retrogolib/log"
)

// Pipeline orchestrates the complete disassembly workflow.
type Pipeline struct {
	logger *log.Logger
	loader *loader.Loader
}

// Result contains the analyzed program, ready to be written.
type Result struct {
	Input     *loader.Input
	Disasm    *disasm.Disasm
	Sequences []tblptr.Sequence
	Matches   []datamatch.Match

	numbers numfmt.Formatter
	options options.Disassembler
}

// New creates a new disassembly pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger: logger,
		loader: loader.New(logger),
	}
}

// Execute loads all input files and analyzes the program.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, disasmOpts options.Disassembler) (*Result, error) {
	input, err := p.loader.Load(opts)
	if err != nil {
		return nil, fmt.Errorf("loading input: %w", err)
	}
	return p.Analyze(ctx, input, disasmOpts)
}

// Analyze runs the code coverage analysis from all entry points, followed by the table
// pointer recovery and the data table matching.
func (p *Pipeline) Analyze(ctx context.Context, input *loader.Input, disasmOpts options.Disassembler) (*Result, error) {
	p.logger.Debug("Building tables")
	table, err := pic18.OpcodeTable()
	if err != nil {
		return nil, fmt.Errorf("building opcode table: %w", err)
	}

	numbers := numfmt.New(disasmOpts.Numbers)
	memory := input.Image.Code
	dis := disasm.New(p.logger, table, memory, input.Registers, numbers)

	// jump table entries are pushed first, the reset vector is processed first
	var seeds []uint32
	for _, rng := range input.JumpTables {
		seeds = append(seeds, rng.Seeds()...)
	}
	seeds = append(seeds, pic18.ResetVector)

	p.logger.Info("Analyzing code coverage",
		log.Int("words", memory.Len()),
		log.Int("jump_table_entries", len(seeds)-1))

	if err := dis.Traverse(ctx, seeds...); err != nil {
		return nil, fmt.Errorf("analyzing reset vector: %w", err)
	}
	if disasmOpts.HighInterrupt {
		if err := dis.Traverse(ctx, pic18.HighInterruptVector); err != nil {
			return nil, fmt.Errorf("analyzing high priority interrupt vector: %w", err)
		}
	}
	if disasmOpts.LowInterrupt {
		if err := dis.Traverse(ctx, pic18.LowInterruptVector); err != nil {
			return nil, fmt.Errorf("analyzing low priority interrupt vector: %w", err)
		}
	}

	p.logger.Info("Recovering table pointers")
	recovery := tblptr.New(p.logger, memory, dis, numbers, disasmOpts.TablePointer)
	sequences := recovery.Process()

	var matches []datamatch.Match
	if len(input.Tables) > 0 {
		p.logger.Info("Matching data tables", log.Int("tables", len(input.Tables)))
		matches = datamatch.New(p.logger, memory, dis, numbers).Process(input.Tables)
	}

	p.logger.Info("Analysis finished",
		log.Int("covered", len(dis.Covered())),
		log.Int("table_pointers", len(sequences)),
		log.Int("table_matches", len(matches)),
		log.Int("register_names", len(input.Registers.UsedAddresses())))

	return &Result{
		Input:     input,
		Disasm:    dis,
		Sequences: sequences,
		Matches:   matches,
		numbers:   numbers,
		options:   disasmOpts,
	}, nil
}

// Write arranges the analyzed program and writes it as assembly source.
func (r *Result) Write(w io.Writer) error {
	opts := writer.Options{
		Listing:   r.options.Listing,
		Processor: r.options.Processor,
	}
	wr := writer.New(r.Input.Image, r.Disasm, r.Input.ConfigNames, r.numbers, w, opts)
	if err := wr.Write(); err != nil {
		return fmt.Errorf("writing assembly: %w", err)
	}
	return nil
}
