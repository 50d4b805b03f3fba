package addr

// memory map boundaries
const (
	// BootROMEnd is the last address covered by the boot ROM overlay.
	BootROMEnd uint16 = 0x00FF
	// ROMBank0 is the fixed cartridge bank.
	ROMBank0 uint16 = 0x0000
	// ROMBankN is the switchable cartridge bank.
	ROMBankN uint16 = 0x4000
	// VRAM holds tile data and tile maps.
	VRAM uint16 = 0x8000
	// ExtRAM is the cartridge RAM window.
	ExtRAM uint16 = 0xA000
	// WRAM0 is work RAM bank 0.
	WRAM0 uint16 = 0xC000
	// WRAMX is work RAM bank 1.
	WRAMX uint16 = 0xD000
	// Echo mirrors 0xC000-0xDDFF.
	Echo uint16 = 0xE000
	// OAM is the sprite attribute table (40 sprites * 4 bytes each).
	OAM uint16 = 0xFE00
	// Unusable is the prohibited gap after OAM.
	Unusable uint16 = 0xFEA0
	// IO is the start of the hardware register page.
	IO uint16 = 0xFF00
	// HRAM is high RAM, the stack usually lives here.
	HRAM uint16 = 0xFF80

	// EchoOffset is subtracted from echo addresses to reach work RAM.
	EchoOffset uint16 = 0x2000
	// OAMSize is the length of a DMA transfer.
	OAMSize uint16 = 0xA0
)

// gpu registers
const (
	// LCD Control register.
	LCDC uint16 = 0xFF40
	// LCDC Status register.
	STAT uint16 = 0xFF41
	// Scroll Y (SCY) register.
	SCY uint16 = 0xFF42
	// Scroll X (SCX) register.
	SCX uint16 = 0xFF43
	// LCDC Y-Coordinate (readonly) register.
	LY uint16 = 0xFF44
	// LY Compare register.
	LYC uint16 = 0xFF45
	// DMA Transfer and Start register.
	DMA uint16 = 0xFF46
	// BG Palette register.
	BGP uint16 = 0xFF47
	// Object Palette 0 register.
	OBP0 uint16 = 0xFF48
	// Object Palette 1 register.
	OBP1 uint16 = 0xFF49
	// Window Y Position register.
	WY uint16 = 0xFF4A
	// Window X Position register.
	WX uint16 = 0xFF4B
	// BootDisable unmaps the boot ROM when written with a nonzero value.
	BootDisable uint16 = 0xFF50
)

// tile data and tile maps
const (
	// TileData0 is the start of unsigned tile data (tiles 0-255)
	TileData0 uint16 = 0x8000
	// TileData1 is the start of signed tile data region (tiles -128 to -1)
	TileData1 uint16 = 0x8800
	// TileData2 is the continuation of signed tile data (tiles 0-127)
	TileData2 uint16 = 0x9000

	// TileMap0 is background/window tile map 0
	TileMap0 uint16 = 0x9800
	// TileMap1 is background/window tile map 1
	TileMap1 uint16 = 0x9C00
)

// interrupts
const (
	// IF is the address for the Interrupt Flags register.
	IF uint16 = 0xFF0F
	// IE is the address for the Interrupt Enable register.
	IE uint16 = 0xFFFF
)

// joypad
const (
	// P1 is used to read the Joypad state.
	P1 uint16 = 0xFF00
)

// serial I/O
const (
	// SB is the serial transfer data register.
	SB uint16 = 0xFF01
	// SC is the serial transfer control register.
	SC uint16 = 0xFF02
)

// timers
const (
	// DIV is the divider register. Incremented 16384 times/s.
	DIV uint16 = 0xFF04
	// TIMA is the timer counter register. Generates an interrupt when it overflows.
	TIMA uint16 = 0xFF05
	// TMA is the timer modulo register. When TIMA overflows, this data will be loaded.
	TMA uint16 = 0xFF06
	// TAC is the timer control register. Used to start/stop and control the timer clock.
	TAC uint16 = 0xFF07
)

// cartridge header
const (
	// Title is the first byte of the upper-case game title.
	Title uint16 = 0x0134
	// TitleEnd is one past the last title byte.
	TitleEnd uint16 = 0x0144
	// CartridgeType selects the memory bank controller.
	CartridgeType uint16 = 0x0147
	// HeaderEnd is the minimum size of an image that carries a full header.
	HeaderEnd uint16 = 0x0150
)
