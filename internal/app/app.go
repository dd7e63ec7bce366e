// Package app provides the main application helpers for the cartridge tool.
package app

import (
	"fmt"

	"github.com/retroenv/mdcart/internal/cartridge"
	"github.com/retroenv/mdcart/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// PrintInfo prints the information about the input file and the loaded cartridge.
func PrintInfo(logger *log.Logger, opts options.Program, cart *cartridge.Cartridge) {
	if opts.Quiet {
		return
	}

	h := cart.Header()
	if h == nil {
		return
	}

	sizes := cart.RegionSizes()
	logger.Info("Loaded cartridge",
		log.String("file", cart.Path()),
		log.String("name", h.Name()),
		log.String("region", h.Region()),
		log.Int("rom_size", sizes.ROM),
		log.Int("ram_size", sizes.RAM),
	)

	if sizes.SRAM > 0 {
		logger.Info("Save RAM",
			log.String("range", fmt.Sprintf("0x%06X-0x%06X", h.SRAMStart, h.SRAMEnd)),
			log.Int("size", sizes.SRAM))
	}

	if cart.MappedBanks().Capable {
		logger.Warn("ROM is larger than 4 MiB, bank switch mapper is emulated")
	}

	for _, warning := range cart.Warnings() {
		logger.Warn("Cartridge image problem", log.Err(warning))
	}
}

// CheckWarnings returns the first load warning as error when strict
// checking is enabled.
func CheckWarnings(opts options.Program, cart *cartridge.Cartridge) error {
	if !opts.Strict {
		return nil
	}
	if warnings := cart.Warnings(); len(warnings) > 0 {
		return fmt.Errorf("strict mode: %w", warnings[0])
	}
	return nil
}
