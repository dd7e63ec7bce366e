// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/retroenv/mdcart/internal/detector"
	"github.com/retroenv/mdcart/internal/options"
)

// maxDumpLength limits the hex dump to the size of the 24 bit address space.
const maxDumpLength = 0x1000000

// ParseFlags parses command line flags and returns program and bus options
func ParseFlags() (options.Program, options.Bus, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Batch == "") {
		return opts, options.Bus{}, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, options.Bus{}, err
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, options.Bus{}, err
	}

	if opts.Batch == "" {
		opts.Input = args[0]
	}

	busOptions, err := createBusOptions(opts)
	if err != nil {
		return opts, options.Bus{}, err
	}

	return opts, busOptions, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: mdcart [options] <cartridge image>\n\n")
	e.flags.PrintDefaults()
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after cartridge image, please pass the image as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.Format = strings.ToLower(opts.Format)
	if _, ok := detector.FormatFromString(opts.Format); !ok {
		return fmt.Errorf("unsupported format: %s. Valid options: auto, raw, split", opts.Format)
	}
	if opts.Width < 0 {
		return fmt.Errorf("invalid dump width: %d", opts.Width)
	}
	return nil
}

// createBusOptions parses the bus access flags.
func createBusOptions(opts options.Program) (options.Bus, error) {
	busOptions := options.Bus{
		Width: opts.Width,
	}

	for _, s := range splitList(opts.Poke) {
		address, value, ok := strings.Cut(s, "=")
		if !ok {
			return options.Bus{}, fmt.Errorf("invalid poke '%s', expected address=value", s)
		}
		access, err := parseAccess(address, value)
		if err != nil {
			return options.Bus{}, err
		}
		busOptions.Pokes = append(busOptions.Pokes, access)
	}

	for _, s := range splitList(opts.Peek) {
		address, err := ParseAddress(s)
		if err != nil {
			return options.Bus{}, err
		}
		busOptions.Peeks = append(busOptions.Peeks, address)
	}

	if opts.Dump != "" {
		dump, err := parseRange(opts.Dump)
		if err != nil {
			return options.Bus{}, err
		}
		busOptions.Dump = &dump
	}

	return busOptions, nil
}

// ParseAddress parses a bus address. Hexadecimal values can be prefixed by
// 0x or $, other values are decimal.
func ParseAddress(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "$") {
		s = "0x" + s[1:]
	}
	value, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address '%s': %w", s, err)
	}
	return uint32(value), nil
}

func parseAccess(address, value string) (options.Access, error) {
	addr, err := ParseAddress(address)
	if err != nil {
		return options.Access{}, err
	}
	v, err := ParseAddress(value)
	if err != nil || v > 0xFF {
		return options.Access{}, fmt.Errorf("invalid byte value '%s'", value)
	}
	return options.Access{Address: addr, Value: uint8(v)}, nil
}

func parseRange(s string) (options.Range, error) {
	start, length, ok := strings.Cut(s, ":")
	if !ok {
		return options.Range{}, fmt.Errorf("invalid dump range '%s', expected start:length", s)
	}

	addr, err := ParseAddress(start)
	if err != nil {
		return options.Range{}, err
	}
	n, err := ParseAddress(length)
	if err != nil || n == 0 || n > maxDumpLength {
		return options.Range{}, fmt.Errorf("invalid dump length '%s'", length)
	}
	return options.Range{Start: addr, Length: int(n)}, nil
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input cartridge image")
	flags.StringVar(&opts.MemViz, "memviz", "", "write a graphviz structure graph of the decoded header to this file")
	flags.StringVar(&opts.Batch, "batch", "", "process a batch of given path and file mask, for example *.bin")
	flags.StringVar(&opts.Format, "format", "auto", "container format of the image (auto/raw/split), auto detects it from the file extension")
	flags.BoolVar(&opts.Strict, "strict", false, "treat checksum mismatches as errors")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.StringVar(&opts.Dump, "dump", "", "hex dump a bus address range given as start:length, for example 0x100:0x100")
	flags.StringVar(&opts.Peek, "peek", "", "comma separated list of bus addresses to read")
	flags.StringVar(&opts.Poke, "poke", "", "comma separated list of address=value bus writes, executed before reads")
	flags.IntVar(&opts.Width, "width", 0, "bytes per hex dump row, derived from the terminal width if not set")
}
