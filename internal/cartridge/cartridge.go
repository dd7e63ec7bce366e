// Package cartridge owns the lifecycle of the currently inserted cartridge
// image and routes CPU bus accesses to it.
package cartridge

import (
	"errors"
	"fmt"
	"io"

	"github.com/retroenv/mdcart/internal/bus"
	"github.com/retroenv/mdcart/internal/detector"
	"github.com/retroenv/mdcart/internal/header"
	"github.com/retroenv/mdcart/internal/loader"
	"github.com/retroenv/mdcart/internal/memorymap"
	"github.com/retroenv/retrogolib/log"
)

// ErrNotLoaded is returned for bus accesses while no image is loaded.
var ErrNotLoaded = errors.New("no cartridge loaded")

// State is the lifecycle state of a cartridge.
type State int

// Lifecycle states, Load and Unload are the only transitions.
const (
	Unloaded State = iota
	Loaded
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loaded:
		return "loaded"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// RegionSizes contains the sizes of the memory buffers of a cartridge.
type RegionSizes struct {
	ROM  int
	RAM  int
	SRAM int
}

// Cartridge is the cartridge slot of the emulated console. It is not safe
// for concurrent use, the CPU emulation loop is expected to be the only
// caller.
type Cartridge struct {
	logger *log.Logger
	loader *loader.Loader

	image *image // nil while unloaded
}

// image is the state of a successfully loaded cartridge.
type image struct {
	path     string
	header   *header.Header
	mem      *memorymap.Map
	bus      *bus.Bus
	warnings []error
}

// New returns an empty cartridge slot.
func New(logger *log.Logger) *Cartridge {
	return &Cartridge{
		logger: logger,
		loader: loader.New(logger),
	}
}

// Load unloads the current image and loads the given file, detecting the
// container format from its extension. On failure the cartridge is left
// unloaded.
func (c *Cartridge) Load(path string) error {
	return c.LoadFormat(path, detector.FromFile(path))
}

// LoadFormat unloads the current image and loads the given file using the
// given container format.
func (c *Cartridge) LoadFormat(path string, format detector.Format) error {
	c.Unload()

	img, err := c.loader.LoadFormat(path, format)
	if err != nil {
		return fmt.Errorf("loading cartridge: %w", err)
	}
	return c.insert(path, img)
}

// LoadReader unloads the current image and loads an image of the given size
// from a reader.
func (c *Cartridge) LoadReader(r io.ReadSeeker, size int64, format detector.Format) error {
	c.Unload()

	img, err := c.loader.LoadReader(r, size, format)
	if err != nil {
		return fmt.Errorf("loading cartridge: %w", err)
	}
	return c.insert("", img)
}

// insert builds the memory map for a decoded image and commits it as the
// loaded state.
func (c *Cartridge) insert(path string, img *loader.Image) error {
	mem, err := memorymap.Build(c.logger, img.Header, img.ROM)
	if err != nil {
		return fmt.Errorf("building memory map: %w", err)
	}

	c.image = &image{
		path:     path,
		header:   img.Header,
		mem:      mem,
		bus:      bus.New(c.logger, img.Header, mem),
		warnings: img.Warnings,
	}
	return nil
}

// Unload releases the loaded image and resets the mapper state.
func (c *Cartridge) Unload() {
	if c.image == nil {
		return
	}
	c.image.bus.Reset()
	c.image = nil
}

// State returns the lifecycle state.
func (c *Cartridge) State() State {
	if c.image == nil {
		return Unloaded
	}
	return Loaded
}

// Peek reads a byte from the cartridge bus.
func (c *Cartridge) Peek(address uint32) (uint8, error) {
	if c.image == nil {
		return 0, ErrNotLoaded
	}
	return c.image.bus.Peek(address)
}

// Poke writes a byte to the cartridge bus. Writes to addresses that are
// not writable are ignored, an error is only returned if no image is loaded.
func (c *Cartridge) Poke(address uint32, value uint8) error {
	if c.image == nil {
		return ErrNotLoaded
	}
	c.image.bus.Poke(address, value)
	return nil
}

// Header returns the header of the loaded image, or nil.
func (c *Cartridge) Header() *header.Header {
	if c.image == nil {
		return nil
	}
	return c.image.header
}

// Path returns the file the loaded image was read from.
func (c *Cartridge) Path() string {
	if c.image == nil {
		return ""
	}
	return c.image.path
}

// Warnings returns the non fatal problems found while loading the image.
func (c *Cartridge) Warnings() []error {
	if c.image == nil {
		return nil
	}
	return c.image.warnings
}

// RegionSizes returns the sizes of the allocated memory buffers.
func (c *Cartridge) RegionSizes() RegionSizes {
	if c.image == nil {
		return RegionSizes{}
	}
	return RegionSizes{
		ROM:  len(c.image.mem.ROM),
		RAM:  len(c.image.mem.RAM),
		SRAM: len(c.image.mem.SRAM),
	}
}

// MappedBanks returns the bank switch mapper state.
func (c *Cartridge) MappedBanks() bus.MapperState {
	if c.image == nil {
		return bus.MapperState{}
	}
	return c.image.bus.MapperState()
}
