// Package options contains the program options.
package options

// Positional contains positional arguments.
type Positional struct {
	File string `arg:"positional" usage:"cartridge image to load"`
}

// Parameters contains file path options.
type Parameters struct {
	Input  string `flag:"i" usage:"input cartridge image"`
	MemViz string `flag:"memviz" usage:"write a graphviz structure graph of the header to this file"`
	Batch  string `flag:"batch" usage:"batch process files matching pattern (e.g. *.bin)"`
}

// Flags contains behavior options.
type Flags struct {
	Format string `flag:"format" usage:"container format: auto, raw, split" default:"auto"`
	Strict bool   `flag:"strict" usage:"fail on checksum mismatches"`
	Debug  bool   `flag:"debug" usage:"enable debug logging"`
	Quiet  bool   `flag:"q" usage:"quiet mode"`
}

// BusFlags contains bus access options executed against the loaded cartridge.
type BusFlags struct {
	Dump  string `flag:"dump" usage:"hex dump a bus range, start:length"`
	Peek  string `flag:"peek" usage:"comma separated list of addresses to read"`
	Poke  string `flag:"poke" usage:"comma separated list of address=value writes"`
	Width int    `flag:"width" usage:"bytes per hex dump row (default: derived from terminal)"`
}

// Program options of the cartridge tool.
type Program struct {
	Parameters
	Flags
	BusFlags
}

// Access is a single bus write.
type Access struct {
	Address uint32
	Value   uint8
}

// Range is a bus address range.
type Range struct {
	Start  uint32
	Length int
}

// Bus defines the bus accesses to execute against a loaded cartridge,
// in the order pokes, peeks, dump.
type Bus struct {
	Pokes []Access
	Peeks []uint32
	Dump  *Range
	Width int // bytes per dump row, 0 derives it from the terminal
}
