package header

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

// offsets of the integer fields in the storage layout.
const (
	checksumOffset  = 0x18E
	romStartOffset  = 0x1A0
	sramFlagOffset  = 0x1B0
	sramStartOffset = 0x1B3
	countryOffset   = Size - 0x0F
)

func TestSize(t *testing.T) {
	assert.Equal(t, 510, Size)
	assert.Equal(t, Size, binary.Size(Header{}))
}

func TestDecodeBigEndianFields(t *testing.T) {
	data := make([]byte, Size)
	binary.BigEndian.PutUint32(data[0:], 0x00FFFE00)
	binary.BigEndian.PutUint32(data[4:], 0x00000200)
	copy(data[0x100:], "SEGA MEGA DRIVE ")
	binary.BigEndian.PutUint16(data[checksumOffset:], 0xBEEF)
	binary.BigEndian.PutUint32(data[romStartOffset:], 0x00000000)
	binary.BigEndian.PutUint32(data[romStartOffset+4:], 0x0007FFFF)
	binary.BigEndian.PutUint32(data[romStartOffset+8:], 0x00FF0000)
	binary.BigEndian.PutUint32(data[romStartOffset+12:], 0x00FFFFFF)
	copy(data[sramFlagOffset:], "RA")
	data[sramFlagOffset+2] = 0x20
	binary.BigEndian.PutUint32(data[sramStartOffset:], 0x00200001)
	binary.BigEndian.PutUint32(data[sramStartOffset+4:], 0x0020FFFF)
	copy(data[countryOffset:], "U")

	h, err := Decode(data)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0x00FFFE00), h.Vectors[0])
	assert.Equal(t, uint32(0x00000200), h.Vectors[1])
	assert.Equal(t, "SEGA MEGA DRIVE ", string(h.ConsoleName[:]))
	assert.Equal(t, uint16(0xBEEF), h.Checksum)
	assert.Equal(t, uint32(0), h.ROMStart)
	assert.Equal(t, uint32(0x0007FFFF), h.ROMEnd)
	assert.Equal(t, uint32(0x00FF0000), h.RAMStart)
	assert.Equal(t, uint32(0x00FFFFFF), h.RAMEnd)
	assert.Equal(t, "RA", string(h.SRAMFlag[:]))
	assert.Equal(t, byte(0x20), h.Reserved)
	assert.Equal(t, uint32(0x00200001), h.SRAMStart)
	assert.Equal(t, uint32(0x0020FFFF), h.SRAMEnd)
	assert.True(t, h.HasSaveRAM())
	assert.Equal(t, "U", h.Region())
}

func TestEncodeRoundTrip(t *testing.T) {
	h := &Header{
		Checksum:  0x1234,
		ROMStart:  0x000000,
		ROMEnd:    0x3FFFFF,
		RAMStart:  0xFF0000,
		RAMEnd:    0xFFFFFF,
		SRAMStart: 0x200000,
		SRAMEnd:   0x203FFF,
	}
	h.Vectors[63] = 0xCAFEBABE
	copy(h.DomesticGameName[:], "SONIC THE     HEDGEHOG")
	copy(h.SRAMFlag[:], []byte{0xF8, 0x20})
	copy(h.Country[:], "JUE")

	data := h.Encode()
	assert.Equal(t, Size, len(data))
	assert.Equal(t, uint16(0x1234), binary.BigEndian.Uint16(data[checksumOffset:]))
	assert.Equal(t, uint32(0x3FFFFF), binary.BigEndian.Uint32(data[romStartOffset+4:]))

	decoded, err := Decode(data)
	assert.NoError(t, err)
	assert.Equal(t, *h, *decoded)
	assert.Equal(t, "SONIC THE HEDGEHOG", decoded.Name())
	assert.Equal(t, "W", decoded.Region())
	assert.True(t, decoded.HasSaveRAM())
	assert.Equal(t, int64(0x3FFFFF), decoded.ROMLength())
}

func TestDecodeTruncated(t *testing.T) {
	_, err := Decode(make([]byte, Size-1))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrTruncatedHeader))

	_, err = Read(bytes.NewReader(make([]byte, 16)))
	assert.True(t, errors.Is(err, ErrTruncatedHeader))

	_, err = Read(bytes.NewReader(nil))
	assert.True(t, errors.Is(err, ErrTruncatedHeader))
}

func TestRead(t *testing.T) {
	h := &Header{ROMEnd: 0x1000}
	data := append(h.Encode(), 1, 2, 3)
	r := bytes.NewReader(data)

	decoded, err := Read(r)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0x1000), decoded.ROMEnd)
	assert.Equal(t, 3, r.Len())
}

func TestHasSaveRAM(t *testing.T) {
	tests := []struct {
		name string
		flag [2]byte
		want bool
	}{
		{"ascii RA", [2]byte{'R', 'A'}, true},
		{"sentinel", [2]byte{0xF8, 0x00}, true},
		{"lower case", [2]byte{'r', 'a'}, false},
		{"blank", [2]byte{' ', ' '}, false},
		{"second byte sentinel", [2]byte{0x00, 0xF8}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Header{SRAMFlag: tt.flag}
			assert.Equal(t, tt.want, h.HasSaveRAM())
		})
	}
}

func TestName(t *testing.T) {
	h := &Header{}
	copy(h.OverseasGameName[:], "STREETS OF RAGE")
	assert.Equal(t, "STREETS OF RAGE", h.Name())

	copy(h.DomesticGameName[:], "BARE KNUCKLE\x00GARBAGE")
	assert.Equal(t, "BARE KNUCKLE", h.Name())
}

func TestRegion(t *testing.T) {
	tests := []struct {
		country string
		want    string
	}{
		{"J", "J"},
		{"U  ", "U"},
		{"E", "E"},
		{"4", "U"},
		{"JU", "W"},
		{"F", "W"},
		{"Z", "X"},
	}

	for _, tt := range tests {
		t.Run(tt.country, func(t *testing.T) {
			h := &Header{}
			copy(h.Country[:], tt.country)
			assert.Equal(t, tt.want, h.Region())
		})
	}
}

func TestNegativeROMLength(t *testing.T) {
	h := &Header{ROMStart: 0x1000, ROMEnd: 0x0FFF}
	assert.Equal(t, int64(-1), h.ROMLength())
}
