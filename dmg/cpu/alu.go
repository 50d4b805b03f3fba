package cpu

import "github.com/valerio/go-dmg/dmg/bit"

// setFlags overwrites all four flags at once.
func (c *CPU) setFlags(zero, sub, halfCarry, carry bool) {
	c.f = 0
	c.setFlagToCondition(zeroFlag, zero)
	c.setFlagToCondition(subFlag, sub)
	c.setFlagToCondition(halfCarryFlag, halfCarry)
	c.setFlagToCondition(carryFlag, carry)
}

// addToA sets the result of adding value (and the carry, for ADC) to A, while setting all relevant flags.
func (c *CPU) addToA(value uint8, withCarry bool) {
	var carry uint8
	if withCarry {
		carry = c.flagToBit(carryFlag)
	}

	a := c.a
	sum := uint16(a) + uint16(value) + uint16(carry)
	result := uint8(sum)

	c.setFlags(result == 0, false, (a&0xF)+(value&0xF)+carry > 0xF, sum > 0xFF)
	c.a = result
}

// sub will subtract the value (and the carry, for SBC) from register A and set all relevant flags.
func (c *CPU) sub(value uint8, withCarry bool) {
	c.a = c.subtract(value, withCarry)
}

// cp compares A against value: a subtraction that only keeps the flags.
func (c *CPU) cp(value uint8) {
	c.subtract(value, false)
}

func (c *CPU) subtract(value uint8, withCarry bool) uint8 {
	var carry uint8
	if withCarry {
		carry = c.flagToBit(carryFlag)
	}

	a := c.a
	result := a - value - carry

	halfCarry := int(a&0xF)-int(value&0xF)-int(carry) < 0
	fullCarry := int(a)-int(value)-int(carry) < 0

	c.setFlags(result == 0, true, halfCarry, fullCarry)
	return result
}

func (c *CPU) and(value uint8) {
	c.a &= value
	c.setFlags(c.a == 0, false, true, false)
}

func (c *CPU) or(value uint8) {
	c.a |= value
	c.setFlags(c.a == 0, false, false, false)
}

func (c *CPU) xor(value uint8) {
	c.a ^= value
	c.setFlags(c.a == 0, false, false, false)
}

// inc returns value+1. The carry flag is left untouched.
func (c *CPU) inc(value uint8) uint8 {
	result := value + 1

	c.setFlagToCondition(zeroFlag, result == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, result&0xF == 0)

	return result
}

// dec returns value-1. The carry flag is left untouched.
func (c *CPU) dec(value uint8) uint8 {
	result := value - 1

	c.setFlagToCondition(zeroFlag, result == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, result&0xF == 0xF)

	return result
}

// addToHL sets the result of adding a 16 bit value to HL. Zero is preserved,
// half carry comes from bit 11 and carry from bit 15.
func (c *CPU) addToHL(value uint16) {
	hl := c.getHL()
	sum := uint32(hl) + uint32(value)

	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (hl&0xFFF)+(value&0xFFF) > 0xFFF)
	c.setFlagToCondition(carryFlag, sum > 0xFFFF)

	c.setHL(uint16(sum))
}

// addSPSigned returns SP plus a signed offset. Flags come from the unsigned
// addition of the low byte, zero and subtract are always cleared.
func (c *CPU) addSPSigned(offset int8) uint16 {
	sp := c.sp
	value := uint16(offset)

	c.setFlags(false, false, (sp&0xF)+(value&0xF) > 0xF, (sp&0xFF)+(value&0xFF) > 0xFF)

	return sp + value
}

// daa adjusts A back into packed BCD after an addition or subtraction.
func (c *CPU) daa() {
	var adjust uint8
	if c.isSetFlag(carryFlag) {
		adjust |= 0x60
	}
	if c.isSetFlag(halfCarryFlag) {
		adjust |= 0x06
	}

	if !c.isSetFlag(subFlag) {
		if c.a&0x0F > 0x09 {
			adjust |= 0x06
		}
		if c.a > 0x99 {
			adjust |= 0x60
		}
		c.a += adjust
	} else {
		c.a -= adjust
	}

	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, adjust >= 0x60)
}

func (c *CPU) cpl() {
	c.a = ^c.a
	c.setFlag(subFlag)
	c.setFlag(halfCarryFlag)
}

func (c *CPU) scf() {
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlag(carryFlag)
}

func (c *CPU) ccf() {
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, !c.isSetFlag(carryFlag))
}

// shift applies one of the rotate/shift helpers and sets the flags from
// its result: zero from the value, carry from the bit shifted out.
func (c *CPU) shift(op func(uint8) (uint8, bool), value uint8) uint8 {
	result, out := op(value)
	c.setFlags(result == 0, false, false, out)
	return result
}

func (c *CPU) rlc(value uint8) uint8 { return c.shift(bit.RotateLeft, value) }
func (c *CPU) rrc(value uint8) uint8 { return c.shift(bit.RotateRight, value) }
func (c *CPU) sla(value uint8) uint8 { return c.shift(bit.ShiftLeft, value) }
func (c *CPU) sra(value uint8) uint8 { return c.shift(bit.ShiftRightArithmetic, value) }
func (c *CPU) srl(value uint8) uint8 { return c.shift(bit.ShiftRightLogical, value) }

func (c *CPU) rl(value uint8) uint8 {
	carry := c.isSetFlag(carryFlag)
	return c.shift(func(v uint8) (uint8, bool) { return bit.RotateLeftThrough(v, carry) }, value)
}

func (c *CPU) rr(value uint8) uint8 {
	carry := c.isSetFlag(carryFlag)
	return c.shift(func(v uint8) (uint8, bool) { return bit.RotateRightThrough(v, carry) }, value)
}

func (c *CPU) swap(value uint8) uint8 {
	result := bit.SwapNibbles(value)
	c.setFlags(result == 0, false, false, false)
	return result
}

// rotateA runs a CB rotate on A for RLCA/RLA/RRCA/RRA, which always clear
// the zero flag.
func (c *CPU) rotateA(op func(uint8) uint8) {
	c.a = op(c.a)
	c.resetFlag(zeroFlag)
}

// testBit sets zero if the bit is clear. Carry is preserved.
func (c *CPU) testBit(index, value uint8) {
	c.setFlagToCondition(zeroFlag, !bit.IsSet(index, value))
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
}
