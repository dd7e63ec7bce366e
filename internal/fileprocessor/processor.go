// Package fileprocessor handles file loading and processing operations
package fileprocessor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/mdcart/internal/app"
	"github.com/retroenv/mdcart/internal/bus"
	"github.com/retroenv/mdcart/internal/cartridge"
	"github.com/retroenv/mdcart/internal/detector"
	"github.com/retroenv/mdcart/internal/inspect"
	"github.com/retroenv/mdcart/internal/options"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// ProcessFile handles the complete file processing workflow: loading the
// cartridge, printing its information and executing the bus accesses.
// The dump is written to the given writer.
func ProcessFile(logger *log.Logger, opts options.Program, busOptions options.Bus, w io.Writer) error {
	cart := cartridge.New(logger)
	defer cart.Unload()

	format := detector.New(logger).Detect(opts)
	if err := cart.LoadFormat(opts.Input, format); err != nil {
		return err
	}

	app.PrintInfo(logger, opts, cart)
	if err := app.CheckWarnings(opts, cart); err != nil {
		return err
	}

	if opts.MemViz != "" {
		if err := writeStructure(opts.MemViz, cart); err != nil {
			return err
		}
	}

	return executeBus(logger, cart, busOptions, w)
}

func executeBus(logger *log.Logger, cart *cartridge.Cartridge, busOptions options.Bus, w io.Writer) error {
	for _, access := range busOptions.Pokes {
		if err := cart.Poke(access.Address, access.Value); err != nil {
			return fmt.Errorf("writing 0x%06X: %w", access.Address, err)
		}
	}

	for _, address := range busOptions.Peeks {
		value, err := cart.Peek(address)
		switch {
		case errors.Is(err, bus.ErrBusError):
			logger.Warn("Peek", log.Hex("address", address), log.Err(err))
		case err != nil:
			return fmt.Errorf("reading 0x%06X: %w", address, err)
		default:
			logger.Info("Peek", log.Hex("address", address), log.Hex("value", value))
		}
	}

	if busOptions.Dump == nil {
		return nil
	}

	width := busOptions.Width
	if width == 0 {
		width = inspect.Width(int(os.Stdout.Fd()))
	}
	if err := inspect.HexDump(w, cart.Peek, *busOptions.Dump, width); err != nil {
		return fmt.Errorf("dumping bus range: %w", err)
	}
	return nil
}

func writeStructure(fileName string, cart *cartridge.Cartridge) error {
	file, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", fileName, err)
	}
	inspect.WriteStructure(file, cart.Header())
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing file %s: %w", fileName, err)
	}
	return nil
}

// GetFilesToProcess returns list of files to process based on options
func GetFilesToProcess(opts *options.Program) ([]string, error) {
	if opts.Batch != "" {
		matches, err := filepath.Glob(opts.Batch)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		return matches, nil
	}
	return []string{opts.Input}, nil
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info("mdcart", log.String("version", buildinfo.Version(version, commit, date)))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}
