// Package config handles application configuration and setup
package config

import (
	"github.com/retroenv/pic18disasm/internal/numfmt"
	"github.com/retroenv/pic18disasm/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// CreateDisassemblerOptions converts the program options to disassembler options.
func CreateDisassemblerOptions(opts options.Program) options.Disassembler {
	disasmOptions := options.NewDisassembler()
	if opts.CStyle {
		disasmOptions.Numbers = numfmt.C
	}
	if opts.Processor != "" {
		disasmOptions.Processor = opts.Processor
	}
	disasmOptions.Listing = opts.Listing
	disasmOptions.HighInterrupt = opts.HighInterrupt
	disasmOptions.LowInterrupt = opts.LowInterrupt
	return disasmOptions
}
