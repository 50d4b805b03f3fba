package video

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/bit"
)

// Bus is the part of the memory bus the PPU drives: it reads VRAM and the
// LCD registers, updates STAT and LY, and requests interrupts.
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
	RequestInterrupt(interrupt addr.Interrupt)
}

// Mode is the PPU state, stored in the low two bits of STAT.
type Mode uint8

const (
	HBlank    Mode = 0
	VBlank    Mode = 1
	SearchOAM Mode = 2
	Scanline  Mode = 3
)

func (m Mode) String() string {
	switch m {
	case HBlank:
		return "HBLANK"
	case VBlank:
		return "VBLANK"
	case SearchOAM:
		return "SEARCH_OAM"
	case Scanline:
		return "SCANLINE"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// mode lengths in clock cycles
const (
	searchOAMCycles = 80
	scanlineCycles  = 172
	hblankCycles    = 204
	lineCycles      = searchOAMCycles + scanlineCycles + hblankCycles

	// FrameCycles is the length of a full frame, 154 lines of 456 cycles.
	FrameCycles = lineCycles * totalLines

	visibleLines = Height
	totalLines   = 154
)

// LCDC (LCD Control) Register bit values
// Bit 7 - LCD Display Enable (0=Off, 1=On)
// Bit 6 - Window Tile Map Display Select (0=9800-9BFF, 1=9C00-9FFF)
// Bit 5 - Window Display Enable (0=Off, 1=On)
// Bit 4 - BG & Window Tile Data Select (0=8800-97FF, 1=8000-8FFF)
// Bit 3 - BG Tile Map Display Select (0=9800-9BFF, 1=9C00-9FFF)
// Bit 2 - OBJ (Sprite) Size (0=8x8, 1=8x16)
// Bit 1 - OBJ (Sprite) Display Enable (0=Off, 1=On)
// Bit 0 - BG Display (0=Off, 1=On)
const (
	lcdDisplayEnable       uint8 = 7
	bgWindowTileDataSelect uint8 = 4
	bgTileMapDisplaySelect uint8 = 3
	bgDisplay              uint8 = 0
)

// STAT (LCD Status) Register bit values
const (
	statCoincidence uint8 = 2
	statHBlankIRQ   uint8 = 3
	statVBlankIRQ   uint8 = 4
	statOAMIRQ      uint8 = 5
	statLYCIRQ      uint8 = 6
)

// PPU is the video controller mode state machine.
type PPU struct {
	framebuffer *FrameBuffer
	logger      *slog.Logger

	mode   Mode
	cycles int
	frames uint64

	scanlineReady bool
	frameReady    bool
}

// NewPPU returns a PPU at the start of line 0, searching OAM.
func NewPPU(logger *slog.Logger) *PPU {
	if logger == nil {
		logger = slog.Default()
	}
	return &PPU{
		framebuffer: NewFrameBuffer(),
		logger:      logger,
		mode:        SearchOAM,
	}
}

// Advance runs the state machine for the given amount of clock cycles.
// Nothing happens while the display is switched off in LCDC.
func (p *PPU) Advance(bus Bus, cycles int) {
	if !bit.IsSet(lcdDisplayEnable, bus.Read(addr.LCDC)) {
		return
	}

	p.cycles += cycles
	for p.transition(bus) {
	}
	p.compareLYC(bus)
}

// transition performs at most one mode change, reporting whether it did.
func (p *PPU) transition(bus Bus) bool {
	switch p.mode {
	case SearchOAM:
		if p.cycles < searchOAMCycles {
			return false
		}
		p.cycles -= searchOAMCycles
		p.enter(bus, Scanline)
	case Scanline:
		if p.cycles < scanlineCycles {
			return false
		}
		p.cycles -= scanlineCycles
		p.renderScanline(bus)
		p.enter(bus, HBlank)
	case HBlank:
		if p.cycles < hblankCycles {
			return false
		}
		p.cycles -= hblankCycles
		line := bus.Read(addr.LY) + 1
		bus.Write(addr.LY, line)
		if line == visibleLines {
			p.enter(bus, VBlank)
			bus.RequestInterrupt(addr.VBlankInterrupt)
			p.frameReady = true
			p.frames++
			p.logger.Debug("frame complete", "frame", p.frames)
		} else {
			p.enter(bus, SearchOAM)
		}
	case VBlank:
		if p.cycles < lineCycles {
			return false
		}
		p.cycles -= lineCycles
		line := bus.Read(addr.LY) + 1
		if line == totalLines {
			bus.Write(addr.LY, 0)
			p.enter(bus, SearchOAM)
		} else {
			bus.Write(addr.LY, line)
		}
	}

	p.compareLYC(bus)
	return true
}

// enter switches mode, mirrors it into STAT and raises the STAT interrupt
// if it is enabled for the new mode.
func (p *PPU) enter(bus Bus, mode Mode) {
	p.mode = mode

	stat := bus.Read(addr.STAT)
	bus.Write(addr.STAT, stat&^0x03|uint8(mode))

	var enable uint8
	switch mode {
	case HBlank:
		enable = statHBlankIRQ
	case VBlank:
		enable = statVBlankIRQ
	case SearchOAM:
		enable = statOAMIRQ
	default:
		return
	}
	if bit.IsSet(enable, stat) {
		bus.RequestInterrupt(addr.LCDSTATInterrupt)
	}
}

// compareLYC updates the coincidence flag. While LY matches LYC every
// update requests the STAT interrupt, if STAT enables it.
func (p *PPU) compareLYC(bus Bus) {
	stat := bus.Read(addr.STAT)
	match := bus.Read(addr.LY) == bus.Read(addr.LYC)

	if match {
		stat = bit.Set(statCoincidence, stat)
	} else {
		stat = bit.Reset(statCoincidence, stat)
	}
	bus.Write(addr.STAT, stat)

	if match && bit.IsSet(statLYCIRQ, stat) {
		bus.RequestInterrupt(addr.LCDSTATInterrupt)
	}
}

// renderScanline draws the background for the current line. With the
// background disabled the line is blank.
func (p *PPU) renderScanline(bus Bus) {
	lcdc := bus.Read(addr.LCDC)
	line := int(bus.Read(addr.LY))
	if line >= visibleLines {
		return
	}
	p.scanlineReady = true

	if !bit.IsSet(bgDisplay, lcdc) {
		for x := 0; x < Width; x++ {
			p.framebuffer.SetPixel(x, line, 0)
		}
		return
	}

	scx := bus.Read(addr.SCX)
	scy := bus.Read(addr.SCY)
	palette := bus.Read(addr.BGP)

	tileMap := addr.TileMap0
	if bit.IsSet(bgTileMapDisplaySelect, lcdc) {
		tileMap = addr.TileMap1
	}

	// row in the 256x256 background, wrapping at the bottom
	bgY := scy + uint8(line)
	mapRow := tileMap + uint16(bgY/8)*32
	tileLine := uint16(bgY%8) * 2

	for x := 0; x < Width; {
		bgX := scx + uint8(x)
		index := bus.Read(mapRow + uint16(bgX/8))
		row := FetchTileRow(bus, TileDataAddress(lcdc, index)+tileLine)

		// the first and last columns may be partial when scrolled
		for px := int(bgX % 8); px < 8 && x < Width; px++ {
			p.framebuffer.SetPixel(x, line, ApplyPalette(palette, row.GetPixel(px)))
			x++
		}
	}
}

// Mode returns the current PPU mode.
func (p *PPU) Mode() Mode { return p.mode }

// FrameBuffer returns the buffer the PPU renders into.
func (p *PPU) FrameBuffer() *FrameBuffer { return p.framebuffer }

// Frames returns the number of completed frames.
func (p *PPU) Frames() uint64 { return p.frames }

// ScanlineReady reports whether a visible line was rendered since the last ResetReady.
func (p *PPU) ScanlineReady() bool { return p.scanlineReady }

// FrameReady reports whether VBLANK was entered since the last ResetReady.
func (p *PPU) FrameReady() bool { return p.frameReady }

// ResetReady clears the scanline and frame readiness flags.
func (p *PPU) ResetReady() {
	p.scanlineReady = false
	p.frameReady = false
}
