package dmg

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/cpu"
	"github.com/valerio/go-dmg/dmg/memory"
	"github.com/valerio/go-dmg/dmg/video"
)

// romWith builds a 32 KiB ROM only image with the program at 0x0100.
func romWith(program ...byte) []byte {
	rom := make([]byte, 2*memory.BankSize)
	copy(rom[0x100:], program)
	copy(rom[addr.Title:], "TEST")
	return rom
}

// jrLoop is JR -2, a 3 cycle infinite loop.
var jrLoop = []byte{0x18, 0xFE}

func skipBoot() Config {
	return Config{SkipBootROM: true}
}

func uint16Ptr(v uint16) *uint16 { return &v }

func TestMissingBootROM(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{BootROMPath: filepath.Join(dir, "DMG_ROM.bin")}

	_, err := New(filepath.Join(dir, "missing.gb"), cfg)
	assert.ErrorIs(t, err, memory.ErrBootROMMissing)

	_, err = NewWithData(romWith(), Config{BootROM: []byte{0x00}})
	assert.ErrorIs(t, err, memory.ErrBootROMSize)
}

func TestUnsupportedCartridge(t *testing.T) {
	rom := romWith()
	rom[addr.CartridgeType] = 0x01

	_, err := NewWithData(rom, skipBoot())

	var unsupported memory.UnsupportedCartridgeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, uint8(0x01), unsupported.Type)
	assert.ErrorIs(t, err, memory.ErrUnsupportedCartridge)
}

func TestCartridgeAbsentBoot(t *testing.T) {
	// LD A,1; LDH (0x50),A
	boot := make([]byte, memory.BootROMSize)
	copy(boot, []byte{0x3E, 0x01, 0xE0, 0x50})

	s, err := New(filepath.Join(t.TempDir(), "missing.gb"), Config{BootROM: boot})
	require.NoError(t, err)

	cart := s.MMU().Cartridge()
	assert.Equal(t, memory.BankSize, cart.Size())
	assert.Equal(t, "(Untitled)", cart.Title())
	require.True(t, s.MMU().BootROMEnabled())
	assert.Equal(t, uint16(0x0000), s.CPU().GetPC())

	for i := 0; i < 2; i++ {
		_, err := s.Tick()
		require.NoError(t, err)
	}

	assert.False(t, s.MMU().BootROMEnabled())
	assert.Equal(t, uint16(0x0004), s.CPU().GetPC())

	// the rest of the empty cartridge is NOPs
	for i := 0; i < 0x100; i++ {
		_, err := s.Tick()
		require.NoError(t, err)
	}
	assert.Equal(t, uint16(0x0104), s.CPU().GetPC())
	assert.False(t, s.Stopped())
}

func TestSkipBootROM(t *testing.T) {
	s, err := NewWithData(romWith(jrLoop...), skipBoot())
	require.NoError(t, err)

	c := s.CPU()
	assert.Equal(t, uint16(0x0100), c.GetPC())
	assert.Equal(t, uint16(0xFFFE), c.GetSP())
	assert.Equal(t, uint8(0x01), c.GetA())
	assert.Equal(t, uint8(0xB0), c.GetF())
	assert.False(t, s.MMU().BootROMEnabled())
	assert.Equal(t, uint8(0x91), s.MMU().Read(addr.LCDC))
	assert.Equal(t, uint8(0xFC), s.MMU().Read(addr.BGP))
}

func TestFrameTakes70224Clocks(t *testing.T) {
	s, err := NewWithData(romWith(jrLoop...), skipBoot())
	require.NoError(t, err)

	frameReadyTicks := 0
	for i := 0; i < video.FrameCycles/(3*clocksPerCycle); i++ {
		cycles, err := s.Tick()
		require.NoError(t, err)
		require.Equal(t, 3, cycles)
		if s.FrameReady() {
			frameReadyTicks++
		}
	}

	assert.Equal(t, 1, frameReadyTicks)
	assert.Equal(t, uint64(1), s.FrameCount())
	assert.Equal(t, uint8(0), s.MMU().Read(addr.LY))
	assert.Equal(t, uint8(video.SearchOAM), s.MMU().Read(addr.STAT)&0x03)
}

func TestRunUntilFrame(t *testing.T) {
	s, err := NewWithData(romWith(jrLoop...), skipBoot())
	require.NoError(t, err)

	require.NoError(t, s.RunUntilFrame())

	assert.True(t, s.FrameReady())
	assert.Equal(t, uint64(1), s.FrameCount())
	assert.Equal(t, uint8(144), s.MMU().Read(addr.LY))
	assert.True(t, s.MMU().ReadBit(0, addr.IF), "VBLANK requested")
	assert.Equal(t, uint64(144*456/12), s.InstructionCount())

	require.NoError(t, s.RunUntilFrame())
	assert.Equal(t, uint64(2), s.FrameCount())
}

func TestRunUntilFrameWithDisplayOff(t *testing.T) {
	// LD A,0; LDH (0x40),A; JR -2
	s, err := NewWithData(romWith(0x3E, 0x00, 0xE0, 0x40, 0x18, 0xFE), skipBoot())
	require.NoError(t, err)

	require.NoError(t, s.RunUntilFrame())

	assert.False(t, s.FrameReady())
	assert.Equal(t, uint64(0), s.FrameCount())
	assert.GreaterOrEqual(t, s.CPU().GetCycles()*clocksPerCycle, uint64(video.FrameCycles))
}

func TestStopAt(t *testing.T) {
	cfg := skipBoot()
	cfg.StopAt = uint16Ptr(0x0150)

	s, err := NewWithCartridge(memory.NewCartridge(), cfg)
	require.NoError(t, err)

	require.NoError(t, s.RunUntilFrame())

	assert.True(t, s.Stopped())
	assert.Equal(t, uint64(0), s.FrameCount())
	assert.Equal(t, uint16(0x0153), s.CPU().GetPC())
}

func TestIllegalOpcode(t *testing.T) {
	s, err := NewWithData(romWith(0x00, 0xD3), skipBoot())
	require.NoError(t, err)

	err = s.RunUntilFrame()

	var illegal cpu.IllegalOpcodeError
	require.True(t, errors.As(err, &illegal))
	assert.Equal(t, uint16(0x0101), illegal.PC)
	assert.Equal(t, uint8(0xD3), illegal.Opcode)
	assert.False(t, illegal.Prefixed)
	assert.Equal(t, uint64(1), s.InstructionCount())
}

func TestTimerInterruptIsServicedOnNextTick(t *testing.T) {
	// EI; JR -2
	s, err := NewWithData(romWith(0xFB, 0x18, 0xFE), skipBoot())
	require.NoError(t, err)

	mmu := s.MMU()
	mmu.Write(addr.IE, addr.TimerInterrupt.Mask())
	mmu.Write(addr.TAC, 0x05)

	serviced := false
	for i := 0; i < 2000; i++ {
		_, err := s.Tick()
		require.NoError(t, err)
		if pc := s.CPU().GetPC(); pc >= 0x0050 && pc < 0x0100 {
			serviced = true
			break
		}
	}

	require.True(t, serviced, "timer handler never ran")
	assert.False(t, s.CPU().InterruptsEnabled())
	assert.False(t, mmu.ReadBit(2, addr.IF))
	assert.Equal(t, uint16(0xFFFC), s.CPU().GetSP())
	assert.Equal(t, uint8(0x01), mmu.Read(0xFFFC))
	assert.Equal(t, uint8(0x01), mmu.Read(0xFFFD))
}

func TestDump(t *testing.T) {
	cfg := skipBoot()
	s, err := NewWithData(romWith(jrLoop...), cfg)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, s.Dump(&out))
	assert.Empty(t, out.String())

	cfg.DumpAt = uint16Ptr(0xC042)
	s, err = NewWithData(romWith(jrLoop...), cfg)
	require.NoError(t, err)
	s.MMU().Write(0xC000, 0xAB)

	require.NoError(t, s.Dump(&out))
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	assert.Len(t, lines, 16)
	assert.True(t, strings.HasPrefix(lines[0], "C000: AB 00"))
}

func BenchmarkRunUntilFrame(b *testing.B) {
	s, err := NewWithData(romWith(jrLoop...), skipBoot())
	require.NoError(b, err)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.RunUntilFrame(); err != nil {
			b.Fatal(err)
		}
	}
}
