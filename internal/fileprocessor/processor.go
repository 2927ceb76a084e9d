// Package fileprocessor handles file loading and processing operations
package fileprocessor

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/retroenv/pic18disasm/internal/options"
	"github.com/retroenv/pic18disasm/internal/pipeline"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

const outputSuffix = "_.asm"

// ProcessFile handles the complete file processing workflow. The output file is only
// created after the analysis succeeded.
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program, disasmOptions options.Disassembler) error {
	result, err := pipeline.New(logger).Execute(ctx, opts, disasmOptions)
	if err != nil {
		return fmt.Errorf("disassembling: %w", err)
	}

	logger.Info("Writing", log.String("file", opts.Output))
	file, err := os.Create(opts.Output)
	if err != nil {
		return fmt.Errorf("creating output file %s: %w", opts.Output, err)
	}

	buf := bufio.NewWriter(file)
	if err := result.Write(buf); err != nil {
		_ = file.Close()
		return err
	}
	if err := buf.Flush(); err != nil {
		_ = file.Close()
		return fmt.Errorf("flushing output file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}
	return nil
}

// GenerateOutputFilename generates output filename for a given input file
func GenerateOutputFilename(inputFile string) string {
	ext := filepath.Ext(inputFile)
	return inputFile[:len(inputFile)-len(ext)] + outputSuffix
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info("pic18disasm - PIC18 hex file disassembler",
		log.String("version", buildinfo.Version(version, commit, date)))
}
