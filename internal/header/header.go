// Package header decodes the fixed layout cartridge header that every
// Mega Drive / Genesis image starts with.
package header

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Size is the number of bytes the header occupies at the start of an image.
const Size = 0x100 + 0x10 + 0x10 + 0x30 + 0x30 + 0x03 + 0x0B + 2 + 0x10 + 4*4 + 2 + 1 + 4 + 4 + 0x0C + 0x28 + 0x0F

// VectorCount is the number of entries in the interrupt/reset vector table.
const VectorCount = 0x40

// ErrTruncatedHeader is returned when fewer bytes than Size are available.
var ErrTruncatedHeader = errors.New("truncated header")

// Header contains the decoded cartridge header. All integer fields are
// converted to host order, all text fields are kept verbatim.
type Header struct {
	Vectors          [VectorCount]uint32
	ConsoleName      [0x10]byte
	Copyright        [0x10]byte
	DomesticGameName [0x30]byte
	OverseasGameName [0x30]byte
	Type             [0x03]byte
	ProductCode      [0x0B]byte
	Checksum         uint16
	IOSupport        [0x10]byte
	ROMStart         uint32
	ROMEnd           uint32
	RAMStart         uint32
	RAMEnd           uint32
	SRAMFlag         [0x02]byte
	Reserved         byte
	SRAMStart        uint32
	SRAMEnd          uint32
	Modem            [0x0C]byte
	Memo             [0x28]byte
	Country          [0x0F]byte
}

// saveRAMSentinel marks an image with save RAM when found in the first flag byte.
const saveRAMSentinel = 0xF8

// Decode decodes a header from the start of the given buffer.
func Decode(data []byte) (*Header, error) {
	if len(data) < Size {
		return nil, fmt.Errorf("%w: %d bytes available, %d needed", ErrTruncatedHeader, len(data), Size)
	}

	h := &Header{}
	// the struct has no padding and only fixed size fields, binary.Read
	// consumes exactly Size bytes in declaration order.
	if err := binary.Read(bytes.NewReader(data[:Size]), binary.BigEndian, h); err != nil {
		return nil, fmt.Errorf("decoding header: %w", err)
	}
	return h, nil
}

// Read reads and decodes a header from the current position of the reader.
func Read(r io.Reader) (*Header, error) {
	buf := make([]byte, Size)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %d bytes available, %d needed", ErrTruncatedHeader, n, Size)
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	return Decode(buf)
}

// Encode writes the header in its storage layout, with all integer fields
// stored big-endian.
func (h *Header) Encode() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, Size))
	// writing fixed size values into a bytes.Buffer can not fail
	_ = binary.Write(buf, binary.BigEndian, h)
	return buf.Bytes()
}

// ROMLength returns the declared ROM length. The end bound is treated as
// exclusive, a negative result signals an end bound below the start bound.
func (h *Header) ROMLength() int64 {
	return int64(h.ROMEnd) - int64(h.ROMStart)
}

// HasSaveRAM returns whether the header declares battery backed save RAM.
func (h *Header) HasSaveRAM() bool {
	return string(h.SRAMFlag[:]) == "RA" || h.SRAMFlag[0] == saveRAMSentinel
}

// Name returns the trimmed domestic game name, or the overseas name if the
// domestic one is empty.
func (h *Header) Name() string {
	if name := text(h.DomesticGameName[:]); name != "" {
		return name
	}
	return text(h.OverseasGameName[:])
}

// Region classifies the first country code into J, U, E or W (world).
// X is returned for unknown codes.
func (h *Header) Region() string {
	first, second := h.Country[0], h.Country[1]
	if first != second && second != ' ' && second != 0 {
		return "W"
	}

	switch first {
	case 'F', 'C':
		return "W"
	case 'U', 'W', '4', 4:
		return "U"
	case 'J', 'B', '1', 1:
		return "J"
	case 'E', 'A', '8', 8:
		return "E"
	default:
		return "X"
	}
}

// Field is a printable header field.
type Field struct {
	Name  string
	Value string
}

// Fields returns all header fields in storage order in printable form.
func (h *Header) Fields() []Field {
	return []Field{
		{"Console", text(h.ConsoleName[:])},
		{"Copyright", text(h.Copyright[:])},
		{"Name (domestic)", text(h.DomesticGameName[:])},
		{"Name (overseas)", text(h.OverseasGameName[:])},
		{"Type", text(h.Type[:])},
		{"Product", text(h.ProductCode[:])},
		{"Checksum", fmt.Sprintf("0x%04X", h.Checksum)},
		{"IO", text(h.IOSupport[:])},
		{"ROM start", fmt.Sprintf("0x%06X", h.ROMStart)},
		{"ROM end", fmt.Sprintf("0x%06X", h.ROMEnd)},
		{"RAM start", fmt.Sprintf("0x%06X", h.RAMStart)},
		{"RAM end", fmt.Sprintf("0x%06X", h.RAMEnd)},
		{"SRAM flags", text(h.SRAMFlag[:])},
		{"SRAM start", fmt.Sprintf("0x%06X", h.SRAMStart)},
		{"SRAM end", fmt.Sprintf("0x%06X", h.SRAMEnd)},
		{"Modem", text(h.Modem[:])},
		{"Memo", text(h.Memo[:])},
		{"Country", text(h.Country[:])},
	}
}

// text converts a fixed width latin-1 field, which is not necessarily null
// terminated, into a trimmed string.
func text(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}

	var sb strings.Builder
	prevSpace := false
	for _, c := range b {
		if c == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		sb.WriteRune(rune(c))
	}
	return strings.TrimSpace(sb.String())
}
