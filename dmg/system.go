package dmg

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/valerio/go-dmg/dmg/cpu"
	"github.com/valerio/go-dmg/dmg/debug"
	"github.com/valerio/go-dmg/dmg/interrupt"
	"github.com/valerio/go-dmg/dmg/memory"
	"github.com/valerio/go-dmg/dmg/timer"
	"github.com/valerio/go-dmg/dmg/video"
)

// clocksPerCycle converts CPU machine cycles to the clock cycles the timer
// and the PPU count in.
const clocksPerCycle = 4

// System wires the CPU, bus, interrupt controller, timer and PPU together.
// Every Tick runs them in a fixed order over the one bus they share.
type System struct {
	config Config
	logger *slog.Logger

	cpu        *cpu.CPU
	mmu        *memory.MMU
	interrupts *interrupt.Controller
	timer      *timer.Timer
	ppu        *video.PPU

	instructions uint64
}

// New loads the cartridge at cartPath and builds a System around it. A
// cartridge file that does not exist is replaced by an empty 16 KiB image.
func New(cartPath string, config Config) (*System, error) {
	logger := config.logger()

	data, err := memory.LoadFile(cartPath)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("cartridge not found, running with an empty one", "path", cartPath)
		return NewWithCartridge(memory.NewCartridge(), config)
	}
	if err != nil {
		return nil, fmt.Errorf("loading cartridge: %w", err)
	}

	logger.Info("loaded rom data", "path", cartPath, "bytes", len(data))
	return NewWithData(data, config)
}

// NewWithData builds a System around a cartridge image already in memory.
func NewWithData(data []byte, config Config) (*System, error) {
	cart, err := memory.NewCartridgeWithData(data)
	if err != nil {
		return nil, err
	}
	return NewWithCartridge(cart, config)
}

// NewWithCartridge builds a System with the cartridge inserted. Unless the
// boot ROM is skipped, a missing boot ROM is an error.
func NewWithCartridge(cart *memory.Cartridge, config Config) (*System, error) {
	logger := config.logger()

	var boot []byte
	if !config.SkipBootROM {
		boot = config.BootROM
		if boot == nil {
			var err error
			if boot, err = memory.LoadBootROM(config.bootROMPath()); err != nil {
				return nil, err
			}
		}
		if len(boot) != memory.BootROMSize {
			return nil, fmt.Errorf("%w: %d bytes", memory.ErrBootROMSize, len(boot))
		}
	}

	s := &System{
		config:     config,
		logger:     logger,
		cpu:        cpu.New(cpu.WithLogger(logger), cpu.WithTrace(config.Trace)),
		mmu:        memory.New(cart, boot, logger),
		interrupts: interrupt.New(logger, config.Trace),
		timer:      timer.New(),
		ppu:        video.NewPPU(logger),
	}

	if config.SkipBootROM {
		s.mmu.InitPostBoot()
		s.cpu.SetPostBootState()
	}
	if config.StopAt != nil {
		s.mmu.PatchStop(*config.StopAt)
		logger.Info("injected stop", "address", fmt.Sprintf("0x%04X", *config.StopAt))
	}

	logger.Info("cartridge inserted",
		"title", cart.Title(),
		"type", fmt.Sprintf("0x%02X", cart.Type()),
		"size", cart.Size(),
		"header_checksum_ok", cart.HeaderChecksumValid(),
		"boot_rom", !config.SkipBootROM)

	return s, nil
}

// Tick services a pending interrupt, executes one instruction and advances
// the timer and the PPU by the cycles both took. It returns the machine
// cycles spent. An illegal opcode is returned as a cpu.IllegalOpcodeError
// after the other components have caught up.
func (s *System) Tick() (int, error) {
	s.ppu.ResetReady()

	cycles := s.interrupts.Dispatch(s.cpu, s.mmu)
	n, err := s.cpu.Step(s.mmu)
	cycles += n
	if err == nil {
		s.instructions++
	}

	clocks := cycles * clocksPerCycle
	s.timer.Advance(s.mmu, clocks)
	s.ppu.Advance(s.mmu, clocks)

	return cycles, err
}

// RunUntilFrame ticks until the PPU completes a frame, the CPU stops or an
// error occurs. With the display off a frame's worth of cycles ends the
// call instead.
func (s *System) RunUntilFrame() error {
	clocks := 0
	for clocks < video.FrameCycles {
		cycles, err := s.Tick()
		if err != nil {
			return err
		}
		if s.ppu.FrameReady() || s.cpu.Stopped() {
			return nil
		}
		clocks += cycles * clocksPerCycle
	}
	return nil
}

// Frame returns the frame buffer the PPU draws into. Callers that keep the
// contents around should take a Snapshot.
func (s *System) Frame() *video.FrameBuffer {
	return s.ppu.FrameBuffer()
}

// Stopped reports whether a STOP instruction has executed.
func (s *System) Stopped() bool {
	return s.cpu.Stopped()
}

// ScanlineReady reports whether the last Tick rendered a visible line.
func (s *System) ScanlineReady() bool {
	return s.ppu.ScanlineReady()
}

// FrameReady reports whether the last Tick completed a frame.
func (s *System) FrameReady() bool {
	return s.ppu.FrameReady()
}

// FrameCount returns the number of frames completed so far.
func (s *System) FrameCount() uint64 {
	return s.ppu.Frames()
}

// InstructionCount returns the number of instructions executed so far.
func (s *System) InstructionCount() uint64 {
	return s.instructions
}

// Dump writes the memory page configured with DumpAt. It does nothing when
// no dump address was configured.
func (s *System) Dump(w io.Writer) error {
	if s.config.DumpAt == nil {
		return nil
	}
	return debug.DumpPage(w, s.mmu, *s.config.DumpAt)
}

// CPU exposes the processor, for debuggers and tests.
func (s *System) CPU() *cpu.CPU {
	return s.cpu
}

// MMU exposes the memory bus, for debuggers and tests.
func (s *System) MMU() *memory.MMU {
	return s.mmu
}
