// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/pic18disasm/internal/config"
	"github.com/retroenv/pic18disasm/internal/options"
)

// ParseFlags parses command line flags and returns program and disassembler options
func ParseFlags() (options.Program, options.Disassembler, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	var opts options.Program
	readOptionFlags(flags, &opts)

	if err := flags.Parse(os.Args[1:]); err != nil {
		return opts, options.Disassembler{}, &UsageError{flags: flags, msg: err.Error()}
	}
	args := flags.Args()
	if len(args) == 0 {
		return opts, options.Disassembler{}, &UsageError{flags: flags, msg: "missing file to disassemble"}
	}

	if err := validateArgs(flags, args); err != nil {
		return opts, options.Disassembler{}, err
	}
	opts.Input = args[0]

	return opts, config.CreateDisassemblerOptions(opts), nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the error and all flag defaults.
func (e *UsageError) ShowUsage() {
	if e.msg != "" {
		fmt.Printf("%s\n\n", e.msg)
	}
	fmt.Printf("usage: pic18disasm [options] <file.hex>\n\n")
	e.flags.SetOutput(os.Stdout)
	e.flags.PrintDefaults()
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(flags *flag.FlagSet, args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				flags: flags,
				msg:   fmt.Sprintf("Potential argument %s found after file to disassemble, please pass the file to disassemble as last argument", arg),
			}
		}
	}
	if len(args) > 1 {
		return &UsageError{flags: flags, msg: "only one file to disassemble is supported"}
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Output, "o", "", "name of the output .asm file, defaults to the input name with the extension replaced by _.asm")
	flags.BoolVar(&opts.CStyle, "x", false, "output numbers in 0xNN style instead of NNh")
	flags.BoolVar(&opts.Listing, "l", false, "listing mode, prefix every word with its address and content")
	flags.StringVar(&opts.Registers, "r", "", "register names file to use instead of the built-in names")
	flags.StringVar(&opts.ConfigNames, "cfg", "", "configuration register names file to use instead of the built-in names")
	flags.StringVar(&opts.Tables, "t", "", "data table definitions file to match against data regions")
	flags.StringVar(&opts.JumpTables, "j", "", "jump table ranges file, every word in a range is traced as code")
	flags.BoolVar(&opts.HighInterrupt, "int1", false, "trace code from the high priority interrupt vector 0x08")
	flags.BoolVar(&opts.LowInterrupt, "int2", false, "trace code from the low priority interrupt vector 0x18")
	flags.StringVar(&opts.Processor, "p", options.DefaultProcessor, "processor name used in the LIST and #include directives")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
