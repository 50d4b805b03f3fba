package cpu

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-dmg/dmg/bit"
)

// Bus is the memory the CPU executes against. It is passed into every call
// that touches memory, the CPU never holds on to it.
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// Flag is one of the 4 possible flags used in the flag register (high part of AF)
type Flag uint8

const (
	zeroFlag      Flag = 0x80
	subFlag       Flag = 0x40
	halfCarryFlag Flag = 0x20
	carryFlag     Flag = 0x10
)

// Exported flag masks, for callers inspecting F.
const (
	ZeroFlag      = zeroFlag
	SubFlag       = subFlag
	HalfCarryFlag = halfCarryFlag
	CarryFlag     = carryFlag
)

// IllegalOpcodeError is returned by Step when the fetched opcode has no
// entry in the decode tables.
type IllegalOpcodeError struct {
	PC       uint16
	Opcode   uint8
	Prefixed bool
}

func (e IllegalOpcodeError) Error() string {
	if e.Prefixed {
		return fmt.Sprintf("illegal opcode 0xCB 0x%02X at 0x%04X", e.Opcode, e.PC)
	}
	return fmt.Sprintf("illegal opcode 0x%02X at 0x%04X", e.Opcode, e.PC)
}

// CPU is the main struct holding LR35902 state
type CPU struct {
	// registers
	a  uint8
	f  uint8
	b  uint8
	c  uint8
	d  uint8
	e  uint8
	h  uint8
	l  uint8
	sp uint16
	pc uint16

	// metadata
	interruptsEnabled bool
	stopped           bool
	halted            bool
	cycles            uint64

	trace  bool
	logger *slog.Logger
}

// Option configures a CPU built by New.
type Option func(*CPU)

// WithLogger sets the logger used for lifecycle and trace output.
func WithLogger(logger *slog.Logger) Option { return func(c *CPU) { c.logger = logger } }

// WithTrace logs every executed instruction at debug level.
func WithTrace(enabled bool) Option { return func(c *CPU) { c.trace = enabled } }

// New returns a CPU in the power-on state: every register zeroed and PC at
// the start of the boot ROM.
func New(opts ...Option) *CPU {
	c := &CPU{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetPostBootState loads the registers the boot ROM leaves behind, for
// starting straight at the cartridge entry point.
func (c *CPU) SetPostBootState() {
	c.setAF(0x01B0)
	c.setBC(0x0013)
	c.setDE(0x00D8)
	c.setHL(0x014D)
	c.sp = 0xFFFE
	c.pc = 0x0100
}

// Step executes a single instruction and returns the amount of machine
// cycles that execution has taken. A halted or stopped CPU idles for one
// machine cycle.
func (c *CPU) Step(bus Bus) (int, error) {
	if c.halted || c.stopped {
		c.cycles++
		return 1, nil
	}

	pc := c.pc
	opcode := c.readImmediate(bus)
	instruction := opcodes[opcode]
	if instruction == nil {
		c.logger.Warn("illegal opcode", "pc", fmt.Sprintf("0x%04X", pc), "opcode", fmt.Sprintf("0x%02X", opcode))
		return 0, IllegalOpcodeError{PC: pc, Opcode: opcode}
	}

	if c.trace {
		c.logTrace(bus, pc, opcode)
	}

	cycles := instruction(c, bus)
	c.cycles += uint64(cycles)

	return cycles, nil
}

func (c *CPU) logTrace(bus Bus, pc uint16, opcode uint8) {
	name := Mnemonic(opcode, false)
	if opcode == 0xCB {
		name = Mnemonic(bus.Read(c.pc), true)
	}
	c.logger.Debug("exec",
		"pc", fmt.Sprintf("0x%04X", pc),
		"op", name,
		"af", fmt.Sprintf("0x%04X", c.getAF()),
		"bc", fmt.Sprintf("0x%04X", c.getBC()),
		"de", fmt.Sprintf("0x%04X", c.getDE()),
		"hl", fmt.Sprintf("0x%04X", c.getHL()),
		"sp", fmt.Sprintf("0x%04X", c.sp),
	)
}

// Call pushes the current PC and jumps to the address, the way CALL and
// interrupt dispatch do.
func (c *CPU) Call(bus Bus, address uint16) {
	c.pushStack(bus, c.pc)
	c.pc = address
}

// InterruptsEnabled returns the interrupt master enable flag (IME).
func (c *CPU) InterruptsEnabled() bool { return c.interruptsEnabled }

// DisableInterrupts clears IME.
func (c *CPU) DisableInterrupts() { c.interruptsEnabled = false }

// Halted reports whether HALT is waiting for an interrupt.
func (c *CPU) Halted() bool { return c.halted }

// Wake clears the halted state.
func (c *CPU) Wake() { c.halted = false }

// Stopped reports whether a STOP instruction was executed.
func (c *CPU) Stopped() bool { return c.stopped }

// readImmediate returns the byte at PC and advances PC by one.
// this value is known as immediate ('n' in mnemonics), some opcodes use it as a parameter
func (c *CPU) readImmediate(bus Bus) uint8 {
	n := bus.Read(c.pc)
	c.pc++
	return n
}

// readImmediateWord reads a little endian word at PC and advances PC twice.
// this value is known as immediate ('nn' in mnemonics), some opcodes use it as a parameter
func (c *CPU) readImmediateWord(bus Bus) uint16 {
	low := c.readImmediate(bus)
	high := c.readImmediate(bus)
	return bit.Combine(high, low)
}

// readSignedImmediate reads the byte at PC as a two's complement offset.
func (c *CPU) readSignedImmediate(bus Bus) int8 {
	return int8(c.readImmediate(bus))
}

func (c *CPU) pushStack(bus Bus, value uint16) {
	c.sp--
	bus.Write(c.sp, bit.High(value))
	c.sp--
	bus.Write(c.sp, bit.Low(value))
}

func (c *CPU) popStack(bus Bus) uint16 {
	low := bus.Read(c.sp)
	c.sp++
	high := bus.Read(c.sp)
	c.sp++
	return bit.Combine(high, low)
}

func (c *CPU) setFlag(flag Flag) {
	c.f |= uint8(flag)
}

func (c *CPU) resetFlag(flag Flag) {
	c.f &^= uint8(flag)
}

func (c *CPU) isSetFlag(flag Flag) bool {
	return c.f&uint8(flag) != 0
}

// flagToBit will return 1 if the passed flag is set, 0 otherwise
func (c *CPU) flagToBit(flag Flag) uint8 {
	if c.isSetFlag(flag) {
		return 1
	}

	return 0
}

func (c *CPU) setFlagToCondition(flag Flag, condition bool) {
	if !condition {
		c.resetFlag(flag)
		return
	}

	c.setFlag(flag)
}

func (c *CPU) setBC(value uint16) {
	c.b = bit.High(value)
	c.c = bit.Low(value)
}

func (c *CPU) getBC() uint16 {
	return bit.Combine(c.b, c.c)
}

func (c *CPU) setDE(value uint16) {
	c.d = bit.High(value)
	c.e = bit.Low(value)
}

func (c *CPU) getDE() uint16 {
	return bit.Combine(c.d, c.e)
}

func (c *CPU) setHL(value uint16) {
	c.h = bit.High(value)
	c.l = bit.Low(value)
}

func (c *CPU) getHL() uint16 {
	return bit.Combine(c.h, c.l)
}

func (c *CPU) setAF(value uint16) {
	c.a = bit.High(value)
	// F register lower 4 bits must be 0
	c.f = bit.Low(value) & 0xF0
}

func (c *CPU) getAF() uint16 {
	return bit.Combine(c.a, c.f)
}

// Debug getter methods for register display
func (c *CPU) GetA() uint8       { return c.a }
func (c *CPU) GetF() uint8       { return c.f }
func (c *CPU) GetB() uint8       { return c.b }
func (c *CPU) GetC() uint8       { return c.c }
func (c *CPU) GetD() uint8       { return c.d }
func (c *CPU) GetE() uint8       { return c.e }
func (c *CPU) GetH() uint8       { return c.h }
func (c *CPU) GetL() uint8       { return c.l }
func (c *CPU) GetSP() uint16     { return c.sp }
func (c *CPU) GetPC() uint16     { return c.pc }
func (c *CPU) GetCycles() uint64 { return c.cycles }

// SetPC moves the program counter, used by harnesses that skip over an
// illegal opcode or start execution at an arbitrary address.
func (c *CPU) SetPC(pc uint16) { c.pc = pc }

// GetFlagString returns a human-readable representation of the flag register
func (c *CPU) GetFlagString() string {
	flags := []byte("----")
	for i, f := range []struct {
		flag Flag
		name byte
	}{{zeroFlag, 'Z'}, {subFlag, 'N'}, {halfCarryFlag, 'H'}, {carryFlag, 'C'}} {
		if c.isSetFlag(f.flag) {
			flags[i] = f.name
		}
	}
	return string(flags)
}

// String formats the register file the way trace dumps print it.
func (c *CPU) String() string {
	return fmt.Sprintf("AF=%04X BC=%04X DE=%04X HL=%04X SP=%04X PC=%04X %s IME=%t",
		c.getAF(), c.getBC(), c.getDE(), c.getHL(), c.sp, c.pc, c.GetFlagString(), c.interruptsEnabled)
}
