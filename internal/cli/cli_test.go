package cli

import (
	"errors"
	"os"
	"testing"

	"github.com/retroenv/pic18disasm/internal/numfmt"
	"github.com/retroenv/pic18disasm/internal/options"
	"github.com/retroenv/retrogolib/assert"
)

func parseArgs(t *testing.T, args ...string) (options.Program, options.Disassembler, error) {
	t.Helper()

	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = append([]string{"prog"}, args...)

	return ParseFlags()
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantOpts options.Program
		want     options.Disassembler
	}{
		{
			name: "default flags",
			args: []string{"test.hex"},
			wantOpts: options.Program{
				Parameters: options.Parameters{Input: "test.hex"},
				Flags:      options.Flags{Processor: options.DefaultProcessor},
			},
			want: options.Disassembler{Numbers: numfmt.Assembler, Processor: options.DefaultProcessor},
		},
		{
			name: "output style and listing",
			args: []string{"-o", "out.asm", "-x", "-l", "-p", "18F452", "test.hex"},
			wantOpts: options.Program{
				Parameters: options.Parameters{Input: "test.hex", Output: "out.asm"},
				Flags:      options.Flags{CStyle: true, Listing: true, Processor: "18F452"},
			},
			want: options.Disassembler{Numbers: numfmt.C, Listing: true, Processor: "18F452"},
		},
		{
			name: "auxiliary files",
			args: []string{"-r", "regs.txt", "-cfg", "cfg.txt", "-t", "tables.txt", "-j", "jumps.txt", "test.hex"},
			wantOpts: options.Program{
				Parameters: options.Parameters{
					Input:       "test.hex",
					Registers:   "regs.txt",
					ConfigNames: "cfg.txt",
					Tables:      "tables.txt",
					JumpTables:  "jumps.txt",
				},
				Flags: options.Flags{Processor: options.DefaultProcessor},
			},
			want: options.Disassembler{Numbers: numfmt.Assembler, Processor: options.DefaultProcessor},
		},
		{
			name: "low priority interrupt only",
			args: []string{"-int2", "test.hex"},
			wantOpts: options.Program{
				Parameters: options.Parameters{Input: "test.hex"},
				Flags:      options.Flags{LowInterrupt: true, Processor: options.DefaultProcessor},
			},
			want: options.Disassembler{Numbers: numfmt.Assembler, Processor: options.DefaultProcessor, LowInterrupt: true},
		},
		{
			name: "both interrupts",
			args: []string{"-int1", "-int2", "-q", "test.hex"},
			wantOpts: options.Program{
				Parameters: options.Parameters{Input: "test.hex"},
				Flags: options.Flags{
					HighInterrupt: true,
					LowInterrupt:  true,
					Processor:     options.DefaultProcessor,
					Quiet:         true,
				},
			},
			want: options.Disassembler{
				Numbers:       numfmt.Assembler,
				Processor:     options.DefaultProcessor,
				HighInterrupt: true,
				LowInterrupt:  true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, got, err := parseArgs(t, tt.args...)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantOpts, opts)
			assert.Equal(t, tt.want.Numbers, got.Numbers)
			assert.Equal(t, tt.want.Listing, got.Listing)
			assert.Equal(t, tt.want.Processor, got.Processor)
			assert.Equal(t, tt.want.HighInterrupt, got.HighInterrupt)
			assert.Equal(t, tt.want.LowInterrupt, got.LowInterrupt)
		})
	}
}

func TestParseFlagsUsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		message string
	}{
		{name: "no input", args: nil, message: "missing file"},
		{name: "unknown flag", args: []string{"-unknown", "test.hex"}, message: "unknown"},
		{name: "flag after file", args: []string{"test.hex", "-l"}, message: "-l found after file"},
		{name: "multiple files", args: []string{"a.hex", "b.hex"}, message: "only one file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parseArgs(t, tt.args...)
			assert.ErrorContains(t, err, tt.message)

			var usageErr *UsageError
			assert.True(t, errors.As(err, &usageErr))
		})
	}
}
