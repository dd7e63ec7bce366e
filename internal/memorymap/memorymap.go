// Package memorymap derives the emulated cartridge memory regions from a
// decoded header.
package memorymap

import (
	"errors"
	"fmt"

	"github.com/retroenv/mdcart/internal/header"
	"github.com/retroenv/retrogolib/log"
)

const (
	// MaxRegionSize is the largest supported working RAM or save RAM size.
	MaxRegionSize = 1024 * 1024

	// BankswitchThreshold is the ROM size above which the bank switch
	// mapper is emulated.
	BankswitchThreshold = 0x400000
)

// ErrResourceLimitExceeded is returned when a memory region is larger than MaxRegionSize.
var ErrResourceLimitExceeded = errors.New("resource limit exceeded")

// Map contains the memory regions of a loaded cartridge.
type Map struct {
	ROM  []byte
	RAM  []byte
	SRAM []byte

	SRAMPresent       bool
	BankswitchCapable bool
}

// Build allocates the RAM regions declared by the header. Nothing is
// allocated if any region exceeds the size limit.
func Build(logger *log.Logger, h *header.Header, rom []byte) (*Map, error) {
	ramSize, err := regionSize("RAM", h.RAMStart, h.RAMEnd)
	if err != nil {
		return nil, err
	}
	logger.Debug("RAM", log.Int("size", int(ramSize)))

	m := &Map{
		ROM:               rom,
		SRAMPresent:       h.HasSaveRAM(),
		BankswitchCapable: len(rom) > BankswitchThreshold,
	}

	var sramSize uint32
	if m.SRAMPresent {
		sramSize, err = regionSize("SRAM", h.SRAMStart, h.SRAMEnd)
		if err != nil {
			return nil, err
		}
		logger.Debug("SRAM", log.Int("size", int(sramSize)))
	}

	m.RAM = make([]byte, ramSize)
	if m.SRAMPresent {
		m.SRAM = make([]byte, sramSize)
	}

	if m.BankswitchCapable {
		logger.Debug("Emulating bank switch mapper", log.Int("rom_size", len(rom)))
	}
	return m, nil
}

// regionSize returns the size of a region given by its bounds. The end
// bound is exclusive, an end below the start wraps around and is caught
// by the size limit.
func regionSize(name string, start, end uint32) (uint32, error) {
	size := end - start
	if size > MaxRegionSize {
		return 0, fmt.Errorf("%w: %s size 0x%X exceeds 0x%X", ErrResourceLimitExceeded, name, size, MaxRegionSize)
	}
	return size, nil
}
