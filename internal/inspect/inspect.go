// Package inspect renders the state of a loaded cartridge for humans.
package inspect

import (
	"fmt"
	"io"
	"strings"

	"github.com/bradleyjkemp/memviz"
	"github.com/retroenv/mdcart/internal/header"
	"github.com/retroenv/mdcart/internal/options"
	"golang.org/x/term"
)

const (
	defaultWidth = 16
	minWidth     = 8
	maxWidth     = 32
)

// PeekFunc reads a byte from the bus.
type PeekFunc func(address uint32) (uint8, error)

// Width returns the number of bytes per hex dump row that fit into the
// terminal connected to the file descriptor. If the descriptor is not a
// terminal the default width is returned.
func Width(fd int) int {
	if !term.IsTerminal(fd) {
		return defaultWidth
	}
	columns, _, err := term.GetSize(fd)
	if err != nil {
		return defaultWidth
	}
	return widthForColumns(columns)
}

// widthForColumns returns the largest power of two row width that fits,
// each byte needs 4 columns, hex plus ascii, and the address prefix 10.
func widthForColumns(columns int) int {
	width := maxWidth
	for width > minWidth && 10+width*4+2 > columns {
		width /= 2
	}
	return width
}

// HexDump writes a hex dump of the bus range. Unmapped addresses are
// shown as --.
func HexDump(w io.Writer, peek PeekFunc, r options.Range, width int) error {
	if width <= 0 {
		width = defaultWidth
	}

	var hexPart, asciiPart strings.Builder
	for offset := 0; offset < r.Length; offset += width {
		hexPart.Reset()
		asciiPart.Reset()

		rowStart := r.Start + uint32(offset)
		for i := 0; i < width && offset+i < r.Length; i++ {
			value, err := peek(rowStart + uint32(i))
			if err != nil {
				hexPart.WriteString("-- ")
				asciiPart.WriteByte(' ')
				continue
			}

			fmt.Fprintf(&hexPart, "%02X ", value)
			if value >= 0x20 && value < 0x7F {
				asciiPart.WriteByte(value)
			} else {
				asciiPart.WriteByte('.')
			}
		}

		if _, err := fmt.Fprintf(w, "%06X: %-*s|%s|\n", rowStart, width*3, hexPart.String(), asciiPart.String()); err != nil {
			return fmt.Errorf("writing dump: %w", err)
		}
	}
	return nil
}

// WriteStructure writes a graphviz graph of the decoded header structure.
func WriteStructure(w io.Writer, h *header.Header) {
	memviz.Map(w, h)
}
