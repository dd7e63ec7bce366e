// Package bus implements the cartridge address decoder that services the
// byte reads and writes of the emulated CPU.
package bus

import (
	"errors"
	"fmt"

	"github.com/retroenv/mdcart/internal/header"
	"github.com/retroenv/mdcart/internal/memorymap"
	"github.com/retroenv/retrogolib/log"
)

// ErrBusError is returned for reads of unmapped addresses.
var ErrBusError = errors.New("bus error")

// AccessError contains the address of a failed bus access.
type AccessError struct {
	Address uint32
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s: address 0x%06X is not mapped", ErrBusError, e.Address)
}

// Is makes the error match ErrBusError.
func (e *AccessError) Is(target error) bool {
	return target == ErrBusError
}

// Bus decodes addresses into the memory regions of a loaded cartridge.
// It is not safe for concurrent use.
type Bus struct {
	logger *log.Logger
	header *header.Header
	mem    *memorymap.Map
	mapper Mapper
}

// New returns a bus for the given header and memory map.
func New(logger *log.Logger, h *header.Header, mem *memorymap.Map) *Bus {
	return &Bus{
		logger: logger,
		header: h,
		mem:    mem,
	}
}

// Peek reads a byte. The regions are matched in priority order:
// linear ROM, fixed and banked ROM windows while the mapper is active,
// working RAM and save RAM.
func (b *Bus) Peek(address uint32) (uint8, error) {
	h := b.header
	banked := b.mem.BankswitchCapable && b.mapper.armed

	switch {
	case !banked && address >= h.ROMStart && address <= h.ROMEnd:
		return read(b.mem.ROM, uint64(address-h.ROMStart), address)

	case banked && address <= FixedEnd:
		return read(b.mem.ROM, uint64(address), address)

	case banked && address >= BankedStart && address <= BankedEnd:
		return read(b.mem.ROM, b.mapper.Translate(address), address)

	case address >= h.RAMStart && address <= h.RAMEnd:
		return read(b.mem.RAM, uint64(address-h.RAMStart), address)

	case b.mem.SRAMPresent && address >= h.SRAMStart && address <= h.SRAMEnd:
		return read(b.mem.SRAM, uint64(address-h.SRAMStart), address)
	}

	return 0, &AccessError{Address: address}
}

// Poke writes a byte. Only RAM, save RAM and the mapper registers accept
// writes, all other writes are ignored. The two highest addresses of the
// RAM regions are not writable.
func (b *Bus) Poke(address uint32, value uint8) {
	h := b.header

	switch {
	case writable(address, h.RAMStart, h.RAMEnd):
		write(b.mem.RAM, address-h.RAMStart, value)

	case b.mem.SRAMPresent && writable(address, h.SRAMStart, h.SRAMEnd):
		write(b.mem.SRAM, address-h.SRAMStart, value)

	case address == EnableReg:
		b.mapper.Arm()

	case address >= BankRegFirst && address <= BankRegLast && b.mem.BankswitchCapable:
		window := b.mapper.Select(address, value)
		b.logger.Debug("Bank switch",
			log.Hex("register", address),
			log.Int("window", window),
			log.Hex("bank", value))
	}
}

// Reset restores the power on state of the mapper.
func (b *Bus) Reset() {
	b.mapper.Reset()
}

// MapperState returns a copy of the current mapper state.
func (b *Bus) MapperState() MapperState {
	return MapperState{
		Capable: b.mem.BankswitchCapable,
		Armed:   b.mapper.armed,
		Banks:   b.mapper.banks,
	}
}

// read returns the byte at the offset of the buffer. Offsets beyond the
// buffer, as possible with inclusive region ends or large bank numbers,
// are reported as bus errors.
func read(buf []byte, offset uint64, address uint32) (uint8, error) {
	if offset >= uint64(len(buf)) {
		return 0, &AccessError{Address: address}
	}
	return buf[offset], nil
}

// writable returns whether the address is inside the writable part of a
// region, which excludes the two highest addresses.
func writable(address, start, end uint32) bool {
	return address >= start && int64(address) <= int64(end)-2
}

func write(buf []byte, offset uint32, value uint8) {
	if uint64(offset) < uint64(len(buf)) {
		buf[offset] = value
	}
}
