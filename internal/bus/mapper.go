package bus

import "fmt"

// Bank switch mapper layout. The first 512 KiB of the address space are
// fixed, the following windows can each be mapped to any 512 KiB ROM bank.
const (
	WindowSize   = 0x80000
	WindowCount  = 7
	FixedEnd     = WindowSize - 1
	BankedStart  = WindowSize
	BankedEnd    = BankedStart + WindowCount*WindowSize - 1
	EnableReg    = 0xA130F1
	BankRegFirst = 0xA130F3
	BankRegLast  = 0xA131FF
)

// Mapper is the bank switch mapper state.
type Mapper struct {
	armed bool
	banks [WindowCount]uint8
}

// MapperState is a copy of the mapper state for inspection.
type MapperState struct {
	Capable bool
	Armed   bool
	Banks   [WindowCount]uint8
}

func (s MapperState) String() string {
	return fmt.Sprintf("capable: %t, armed: %t, banks: %v", s.Capable, s.Armed, s.Banks)
}

// Reset disarms the mapper and unmaps all windows.
func (m *Mapper) Reset() {
	m.armed = false
	m.banks = [WindowCount]uint8{}
}

// Arm enables honoring the bank selection.
func (m *Mapper) Arm() {
	m.armed = true
}

// Armed returns whether the mapper has been enabled.
func (m *Mapper) Armed() bool {
	return m.armed
}

// Select handles a write to a bank select register. It arms the mapper and
// returns the window index that was changed, or -1 if the register does
// not map to a window.
func (m *Mapper) Select(register uint32, bank uint8) int {
	m.armed = true

	window := registerWindow(register)
	if window < 0 || window >= WindowCount {
		return -1
	}
	m.banks[window] = bank
	return window
}

// Translate returns the ROM offset for an address inside the banked
// windows. Windows without a selected bank pass the address through.
func (m *Mapper) Translate(address uint32) uint64 {
	window := address/WindowSize - 1
	bank := m.banks[window]
	if bank == 0 {
		return uint64(address)
	}
	base := (window + 1) * WindowSize
	return uint64(bank)*WindowSize + uint64(address-base)
}

// registerWindow decodes the window index from the bank register address,
// registers are at odd addresses 0xA130F3, 0xA130F5 ... 0xA130FF.
func registerWindow(register uint32) int {
	return int((register&0xF)>>1) - 1
}
