// Package main implements a disassembler for PIC18 Intel HEX files
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/pic18disasm/internal/cli"
	"github.com/retroenv/pic18disasm/internal/config"
	"github.com/retroenv/pic18disasm/internal/fileprocessor"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, disasmOptions, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Error("Parsing arguments failed", log.Err(err))
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	fileprocessor.PrintBanner(logger, opts, version, commit, date)

	if opts.Output == "" {
		opts.Output = fileprocessor.GenerateOutputFilename(opts.Input)
	}

	if err := fileprocessor.ProcessFile(ctx, logger, opts, disasmOptions); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			os.Exit(1)
		}
		logger.Error("Disassembling failed", log.Err(err))
		os.Exit(1)
	}
}
