package memory

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/bit"
)

// BootROMSize is the size of the DMG boot program mapped at 0x0000.
const BootROMSize = 0x100

// ifUnusedBits always read back as 1 from IF.
const ifUnusedBits = 0xE0

// stopSequence is NOP; STOP 00, patched in to end automated runs.
var stopSequence = []uint8{0x00, 0x10, 0x00}

// postBootIO holds the I/O register values the boot ROM leaves behind.
var postBootIO = []struct {
	address uint16
	value   uint8
}{
	{addr.P1, 0xCF},
	{addr.TIMA, 0x00},
	{addr.TMA, 0x00},
	{addr.TAC, 0x00},
	{addr.IF, 0x01},
	{0xFF10, 0x80}, {0xFF11, 0xBF}, {0xFF12, 0xF3}, {0xFF14, 0xBF},
	{0xFF16, 0x3F}, {0xFF17, 0x00}, {0xFF19, 0xBF}, {0xFF1A, 0x7F},
	{0xFF1B, 0xFF}, {0xFF1C, 0x9F}, {0xFF1E, 0xBF}, {0xFF20, 0xFF},
	{0xFF21, 0x00}, {0xFF22, 0x00}, {0xFF23, 0xBF}, {0xFF24, 0x77},
	{0xFF25, 0xF3}, {0xFF26, 0xF1},
	{addr.LCDC, 0x91},
	{addr.SCY, 0x00},
	{addr.SCX, 0x00},
	{addr.LYC, 0x00},
	{addr.BGP, 0xFC},
	{addr.OBP0, 0xFF},
	{addr.OBP1, 0xFF},
	{addr.WY, 0x00},
	{addr.WX, 0x00},
	{addr.IE, 0x00},
}

// MMU is the memory bus: it owns the cartridge, the boot ROM overlay and
// all RAM, and routes every access to the region that owns the address.
type MMU struct {
	cart        *Cartridge
	boot        []byte
	bootEnabled bool
	memory      []byte
	logger      *slog.Logger
}

// New creates a bus with the given cartridge inserted. A nil cartridge is
// replaced by an empty one. When boot is nil the overlay starts disabled.
func New(cart *Cartridge, boot []byte, logger *slog.Logger) *MMU {
	if cart == nil {
		cart = NewCartridge()
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &MMU{
		cart:   cart,
		memory: make([]byte, 0x10000),
		logger: logger,
	}

	if boot != nil {
		m.boot = make([]byte, BootROMSize)
		copy(m.boot, boot)
		m.bootEnabled = true
	}

	return m
}

// InitPostBoot disables the boot overlay and loads the register state the
// boot ROM would have left behind.
func (m *MMU) InitPostBoot() {
	for _, r := range postBootIO {
		m.Write(r.address, r.value)
	}
	m.Write(addr.BootDisable, 0x01)
}

// BootROMEnabled reports whether 0x0000-0x00FF still reads from the overlay.
func (m *MMU) BootROMEnabled() bool {
	return m.bootEnabled
}

// Cartridge returns the inserted cartridge.
func (m *MMU) Cartridge() *Cartridge {
	return m.cart
}

// PatchStop writes NOP; STOP 00 at the address, into the boot overlay while
// it covers the address and into the cartridge image otherwise.
func (m *MMU) PatchStop(address uint16) {
	if m.bootEnabled && address <= addr.BootROMEnd {
		for i, v := range stopSequence {
			if a := int(address) + i; a < len(m.boot) {
				m.boot[a] = v
			}
		}
		return
	}
	m.cart.patch(address, stopSequence...)
}

// Region returns the region that currently owns the address.
func (m *MMU) Region(address uint16) Region {
	if m.bootEnabled && address <= addr.BootROMEnd {
		return RegionBootROM
	}
	return regionTable[address]
}

// RequestInterrupt sets the interrupt flag (IF register) of the chosen interrupt to 1.
func (m *MMU) RequestInterrupt(interrupt addr.Interrupt) {
	m.SetBit(uint8(interrupt), addr.IF, true)
}

// ReadBit reports whether the bit at index is set in the byte at address.
func (m *MMU) ReadBit(index uint8, address uint16) bool {
	return bit.IsSet(index, m.Read(address))
}

// SetBit sets or clears one bit of the byte at address, going through the
// same write path as Write.
func (m *MMU) SetBit(index uint8, address uint16, set bool) {
	value := m.Read(address)
	if set {
		value = bit.Set(index, value)
	} else {
		value = bit.Reset(index, value)
	}
	m.Write(address, value)
}

func (m *MMU) Read(address uint16) byte {
	switch m.Region(address) {
	case RegionBootROM:
		return m.boot[address]
	case RegionROMBank0:
		return m.cart.ReadByte(address)
	case RegionROMBankN, RegionExtRAM, RegionUnusable:
		return 0xFF
	case RegionEcho:
		return m.memory[address-addr.EchoOffset]
	case RegionIO:
		if address == addr.IF {
			return m.memory[address] | ifUnusedBits
		}
		return m.memory[address]
	default:
		// VRAM, WRAM0, WRAMX, OAM, HRAM, IE
		return m.memory[address]
	}
}

func (m *MMU) Write(address uint16, value byte) {
	switch m.Region(address) {
	case RegionBootROM, RegionROMBank0, RegionROMBankN:
		m.logger.Debug("write to ROM ignored", "addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
	case RegionExtRAM, RegionUnusable:
		// no backing memory
	case RegionEcho:
		m.memory[address-addr.EchoOffset] = value
	case RegionIO:
		m.writeIO(address, value)
	default:
		m.memory[address] = value
	}
}

func (m *MMU) writeIO(address uint16, value byte) {
	switch address {
	case addr.IF:
		m.memory[address] = value &^ ifUnusedBits
	case addr.DMA:
		m.memory[address] = value
		m.transferOAM(uint16(value) << 8)
	case addr.BootDisable:
		m.memory[address] = value
		if value != 0 && m.bootEnabled {
			m.bootEnabled = false
			m.logger.Info("boot ROM disabled")
		}
	default:
		m.memory[address] = value
	}
}

// transferOAM copies 160 bytes from source into OAM before returning.
func (m *MMU) transferOAM(source uint16) {
	for i := uint16(0); i < addr.OAMSize; i++ {
		m.memory[addr.OAM+i] = m.Read(source + i)
	}
}
