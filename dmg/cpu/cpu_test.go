package cpu

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-dmg/dmg/bit"
)

// flatBus is 64K of plain RAM.
type flatBus [0x10000]byte

func (b *flatBus) Read(address uint16) byte         { return b[address] }
func (b *flatBus) Write(address uint16, value byte) { b[address] = value }

func newTestCPU(program ...byte) (*CPU, *flatBus) {
	bus := &flatBus{}
	copy(bus[0x0100:], program)
	cpu := New()
	cpu.SetPostBootState()
	return cpu, bus
}

func step(t *testing.T, cpu *CPU, bus Bus) int {
	t.Helper()
	cycles, err := cpu.Step(bus)
	require.NoError(t, err)
	return cycles
}

func TestCPU_postBootState(t *testing.T) {
	cpu, _ := newTestCPU()

	assert.Equal(t, uint16(0x01B0), cpu.getAF())
	assert.Equal(t, uint16(0x0013), cpu.getBC())
	assert.Equal(t, uint16(0x00D8), cpu.getDE())
	assert.Equal(t, uint16(0x014D), cpu.getHL())
	assert.Equal(t, uint16(0xFFFE), cpu.GetSP())
	assert.Equal(t, uint16(0x0100), cpu.GetPC())
	assert.Equal(t, "Z-HC", cpu.GetFlagString())
}

func TestCPU_powerOnState(t *testing.T) {
	cpu := New()
	assert.Equal(t, uint16(0), cpu.GetPC())
	assert.Equal(t, uint16(0), cpu.getAF())
	assert.False(t, cpu.InterruptsEnabled())
}

func TestCPU_NOP(t *testing.T) {
	cpu, bus := newTestCPU(0x00)

	cycles := step(t, cpu, bus)

	assert.Equal(t, 1, cycles)
	assert.Equal(t, uint16(0x0101), cpu.GetPC())
}

func TestCPU_JP(t *testing.T) {
	cpu, bus := newTestCPU(0xC3, 0x34, 0x12)

	cycles := step(t, cpu, bus)

	assert.Equal(t, 4, cycles)
	assert.Equal(t, uint16(0x1234), cpu.GetPC())
}

func TestCPU_stack(t *testing.T) {
	cpu, bus := newTestCPU()

	cpu.sp = 0xFFFE
	cpu.pushStack(bus, 0x0102)

	assert.Equal(t, uint16(0xFFFC), cpu.sp)
	assert.Equal(t, uint8(0x01), bus[0xFFFD], "high byte at the higher address")
	assert.Equal(t, uint8(0x02), bus[0xFFFC])

	popped := cpu.popStack(bus)

	assert.Equal(t, uint16(0x0102), popped)
	assert.Equal(t, uint16(0xFFFE), cpu.sp)
}

func TestCPU_pushPopRoundTrip(t *testing.T) {
	testCases := []struct {
		desc string
		push uint8
		pop  uint8
		set  func(c *CPU)
		get  func(c *CPU) uint16
		want uint16
	}{
		{"BC into DE", 0xC5, 0xD1, func(c *CPU) { c.setBC(0xBEEF) }, (*CPU).getDE, 0xBEEF},
		{"DE into HL", 0xD5, 0xE1, func(c *CPU) { c.setDE(0x1234) }, (*CPU).getHL, 0x1234},
		{"HL into BC", 0xE5, 0xC1, func(c *CPU) { c.setHL(0xFFFF) }, (*CPU).getBC, 0xFFFF},
		{"AF keeps F low nibble zero", 0xF5, 0xF1, func(c *CPU) { c.setAF(0x12F0) }, (*CPU).getAF, 0x12F0},
		{"BC into AF masks F", 0xC5, 0xF1, func(c *CPU) { c.setBC(0x34FF) }, (*CPU).getAF, 0x34F0},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			cpu, bus := newTestCPU(tc.push, tc.pop)
			tc.set(cpu)

			assert.Equal(t, 4, step(t, cpu, bus))
			assert.Equal(t, 3, step(t, cpu, bus))
			assert.Equal(t, tc.want, tc.get(cpu))
			assert.Equal(t, uint8(0), cpu.GetF()&0x0F)
			assert.Equal(t, uint16(0xFFFE), cpu.GetSP())
		})
	}
}

func TestCPU_loadPairImmediate(t *testing.T) {
	for p := uint8(0); p < 4; p++ {
		for _, literal := range []uint16{0x0000, 0x1234, 0xABCD, 0xFFFF} {
			cpu, bus := newTestCPU(0x01|p<<4, bit.Low(literal), bit.High(literal))

			assert.Equal(t, 3, step(t, cpu, bus))
			assert.Equal(t, literal, cpu.getPair(p), "%s = 0x%04X", pairNames[p], literal)
			assert.Equal(t, uint16(0x0103), cpu.GetPC())
		}
	}
}

func TestCPU_callAndReturn(t *testing.T) {
	cpu, bus := newTestCPU(0xCD, 0x00, 0x02)
	bus[0x0200] = 0xC9

	assert.Equal(t, 6, step(t, cpu, bus))
	assert.Equal(t, uint16(0x0200), cpu.GetPC())
	assert.Equal(t, uint16(0xFFFC), cpu.GetSP())
	assert.Equal(t, uint8(0x01), bus[0xFFFD])
	assert.Equal(t, uint8(0x03), bus[0xFFFC])

	assert.Equal(t, 4, step(t, cpu, bus))
	assert.Equal(t, uint16(0x0103), cpu.GetPC())
	assert.Equal(t, uint16(0xFFFE), cpu.GetSP())
}

func TestCPU_RST(t *testing.T) {
	cpu, bus := newTestCPU(0xEF)

	assert.Equal(t, 4, step(t, cpu, bus))
	assert.Equal(t, uint16(0x0028), cpu.GetPC())
	assert.Equal(t, uint16(0x0101), cpu.popStack(bus))
}

func TestCPU_conditionalCycles(t *testing.T) {
	testCases := []struct {
		desc     string
		program  []byte
		zero     bool
		cycles   int
		expectPC uint16
	}{
		{"JR NZ taken", []byte{0x20, 0x05}, false, 3, 0x0107},
		{"JR NZ not taken", []byte{0x20, 0x05}, true, 2, 0x0102},
		{"JR Z backwards", []byte{0x28, 0xFE}, true, 3, 0x0100},
		{"JP Z taken", []byte{0xCA, 0x00, 0x30}, true, 4, 0x3000},
		{"JP Z not taken", []byte{0xCA, 0x00, 0x30}, false, 3, 0x0103},
		{"CALL NZ taken", []byte{0xC4, 0x00, 0x30}, false, 6, 0x3000},
		{"CALL NZ not taken", []byte{0xC4, 0x00, 0x30}, true, 3, 0x0103},
		{"RET Z not taken", []byte{0xC8}, false, 2, 0x0101},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			cpu, bus := newTestCPU(tc.program...)
			cpu.setFlagToCondition(zeroFlag, tc.zero)

			assert.Equal(t, tc.cycles, step(t, cpu, bus))
			assert.Equal(t, tc.expectPC, cpu.GetPC())
		})
	}
}

func TestCPU_carryConditions(t *testing.T) {
	cpu, bus := newTestCPU(0xD8)
	cpu.pushStack(bus, 0x4000)
	cpu.setFlag(carryFlag)

	assert.Equal(t, 5, step(t, cpu, bus))
	assert.Equal(t, uint16(0x4000), cpu.GetPC())

	cpu, bus = newTestCPU(0x30, 0x10)
	cpu.setFlag(carryFlag)
	assert.Equal(t, 2, step(t, cpu, bus))
}

func TestCPU_loadIncrementDecrement(t *testing.T) {
	cpu, bus := newTestCPU(0x22, 0x3A)
	cpu.setHL(0xC000)
	cpu.a = 0x5A

	step(t, cpu, bus)
	assert.Equal(t, uint8(0x5A), bus[0xC000])
	assert.Equal(t, uint16(0xC001), cpu.getHL())

	bus[0xC001] = 0x77
	step(t, cpu, bus)
	assert.Equal(t, uint8(0x77), cpu.a)
	assert.Equal(t, uint16(0xC000), cpu.getHL())
}

func TestCPU_highPageLoads(t *testing.T) {
	cpu, bus := newTestCPU(0xE0, 0x80, 0xF2, 0xEA, 0x00, 0xC0)
	cpu.a = 0x42
	cpu.c = 0x80

	assert.Equal(t, 3, step(t, cpu, bus))
	assert.Equal(t, uint8(0x42), bus[0xFF80])

	cpu.a = 0
	assert.Equal(t, 2, step(t, cpu, bus))
	assert.Equal(t, uint8(0x42), cpu.a)

	assert.Equal(t, 4, step(t, cpu, bus))
	assert.Equal(t, uint8(0x42), bus[0xC000])
}

func TestCPU_storeSP(t *testing.T) {
	cpu, bus := newTestCPU(0x08, 0x00, 0xC0)
	cpu.sp = 0xABCD

	assert.Equal(t, 5, step(t, cpu, bus))
	assert.Equal(t, uint8(0xCD), bus[0xC000])
	assert.Equal(t, uint8(0xAB), bus[0xC001])
}

func TestCPU_STOPConsumesOperand(t *testing.T) {
	cpu, bus := newTestCPU(0x10, 0x00)

	step(t, cpu, bus)

	assert.True(t, cpu.Stopped())
	assert.Equal(t, uint16(0x0102), cpu.GetPC())

	// a stopped CPU idles
	assert.Equal(t, 1, step(t, cpu, bus))
	assert.Equal(t, uint16(0x0102), cpu.GetPC())
}

func TestCPU_HALT(t *testing.T) {
	cpu, bus := newTestCPU(0x76, 0x00)

	step(t, cpu, bus)
	require.True(t, cpu.Halted())

	assert.Equal(t, 1, step(t, cpu, bus))
	assert.Equal(t, uint16(0x0101), cpu.GetPC())

	cpu.Wake()
	step(t, cpu, bus)
	assert.Equal(t, uint16(0x0102), cpu.GetPC())
}

func TestCPU_interruptMasterEnable(t *testing.T) {
	cpu, bus := newTestCPU(0xFB, 0xF3)

	step(t, cpu, bus)
	assert.True(t, cpu.InterruptsEnabled(), "EI takes effect immediately")
	step(t, cpu, bus)
	assert.False(t, cpu.InterruptsEnabled())

	cpu, bus = newTestCPU(0xD9)
	cpu.pushStack(bus, 0x0150)
	step(t, cpu, bus)
	assert.True(t, cpu.InterruptsEnabled())
	assert.Equal(t, uint16(0x0150), cpu.GetPC())
}

func TestCPU_illegalOpcodes(t *testing.T) {
	illegal := []uint8{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD}

	for op := 0; op < 256; op++ {
		isIllegal := false
		for _, i := range illegal {
			if uint8(op) == i {
				isIllegal = true
			}
		}
		assert.Equal(t, isIllegal, opcodes[op] == nil, "opcode 0x%02X", op)
		assert.NotNil(t, opcodesCB[op], "CB opcode 0x%02X", op)
	}

	for _, op := range illegal {
		cpu, bus := newTestCPU(op)

		cycles, err := cpu.Step(bus)

		assert.Equal(t, 0, cycles)
		var illegalErr IllegalOpcodeError
		require.True(t, errors.As(err, &illegalErr))
		assert.Equal(t, IllegalOpcodeError{PC: 0x0100, Opcode: op}, illegalErr)
		assert.Contains(t, err.Error(), "0x0100")
	}
}

func TestCPU_mnemonics(t *testing.T) {
	assert.Equal(t, "NOP", Mnemonic(0x00, false))
	assert.Equal(t, "LD B, C", Mnemonic(0x41, false))
	assert.Equal(t, "LD (HL), A", Mnemonic(0x77, false))
	assert.Equal(t, "XOR A", Mnemonic(0xAF, false))
	assert.Equal(t, "JR NZ, n", Mnemonic(0x20, false))
	assert.Equal(t, "RST 38H", Mnemonic(0xFF, false))
	assert.Equal(t, "ILLEGAL 0xD3", Mnemonic(0xD3, false))
	assert.Equal(t, "BIT 7, H", Mnemonic(0x7C, true))
	assert.Equal(t, "SWAP A", Mnemonic(0x37, true))
}

func TestCPU_String(t *testing.T) {
	cpu, _ := newTestCPU()
	assert.Equal(t, "AF=01B0 BC=0013 DE=00D8 HL=014D SP=FFFE PC=0100 Z-HC IME=false", cpu.String())
}

func TestOptions(t *testing.T) {
	testCases := []struct {
		desc   string
		trace  bool
		logged bool
	}{
		{"trace on", true, true},
		{"trace off", false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			var out bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

			c := New(WithLogger(logger), WithTrace(tc.trace))
			c.SetPostBootState()
			bus := &flatBus{}

			_, err := c.Step(bus)
			require.NoError(t, err)

			assert.Equal(t, tc.logged, bytes.Contains(out.Bytes(), []byte("msg=exec pc=0x0100")))
		})
	}
}
