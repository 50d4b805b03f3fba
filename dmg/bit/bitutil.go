package bit

// Combine combines two 8 bit values into a single 16 bit value.
// The high byte will be the most significant one.
func Combine(high, low uint8) uint16 {
	return (uint16(high) << 8) | uint16(low)
}

// Low returns the low (LSB) part of a 16 bit number.
func Low(value uint16) uint8 {
	return uint8(value)
}

// High returns the high (MSB) part of a 16 bit number.
func High(value uint16) uint8 {
	return uint8(value >> 8)
}

// IsSet will check if the bit at the specified index is set to 1 or not.
func IsSet(index, byte uint8) bool {
	return ((byte >> index) & 1) == 1
}

// Set will return the passed byte with the bit at the specified index set to 1.
func Set(index, byte uint8) uint8 {
	return byte | (1 << index)
}

// Reset will return the passed byte with the bit at the specified index set to 0.
func Reset(index, byte uint8) uint8 {
	return byte &^ (1 << index)
}

// GetBitValue returns a byte set to the value of the bit at the specified index.
func GetBitValue(index, byte uint8) uint8 {
	if IsSet(index, byte) {
		return 1
	}

	return 0
}

// SwapNibbles exchanges the high and low 4 bits of a byte.
func SwapNibbles(value uint8) uint8 {
	return value<<4 | value>>4
}

// SwapBytes exchanges the high and low bytes of a 16 bit word.
func SwapBytes(value uint16) uint16 {
	return value<<8 | value>>8
}

// ExtractBits extracts bits from highBit to lowBit (inclusive)
// Example: ExtractBits(0b11010110, 6, 4) -> 0b101 (extracts bits 6, 5, 4)
func ExtractBits(value uint8, highBit, lowBit uint8) uint8 {
	shift := lowBit
	width := highBit - lowBit + 1
	mask := uint8((1 << width) - 1)
	return (value >> shift) & mask
}

// The rotate and shift helpers below return the shifted value together with
// the bit that was shifted out, which callers turn into the carry flag.

// RotateLeft rotates the byte left, bit 7 wraps around into bit 0.
//
//	out <- b7 b6 b5 b4 b3 b2 b1 b0 <- b7
func RotateLeft(value uint8) (result uint8, out bool) {
	return value<<1 | value>>7, value&0x80 != 0
}

// RotateLeftThrough rotates the byte left through an external carry bit.
//
//	out <- b7 b6 b5 b4 b3 b2 b1 b0 <- in
func RotateLeftThrough(value uint8, in bool) (result uint8, out bool) {
	result = value << 1
	if in {
		result |= 0x01
	}
	return result, value&0x80 != 0
}

// RotateRight rotates the byte right, bit 0 wraps around into bit 7.
//
//	b0 -> b7 b6 b5 b4 b3 b2 b1 b0 -> out
func RotateRight(value uint8) (result uint8, out bool) {
	return value>>1 | value<<7, value&0x01 != 0
}

// RotateRightThrough rotates the byte right through an external carry bit.
//
//	in -> b7 b6 b5 b4 b3 b2 b1 b0 -> out
func RotateRightThrough(value uint8, in bool) (result uint8, out bool) {
	result = value >> 1
	if in {
		result |= 0x80
	}
	return result, value&0x01 != 0
}

// ShiftLeft shifts the byte left, bit 0 is filled with 0.
func ShiftLeft(value uint8) (result uint8, out bool) {
	return value << 1, value&0x80 != 0
}

// ShiftRightArithmetic shifts the byte right keeping bit 7 (the sign) unchanged.
func ShiftRightArithmetic(value uint8) (result uint8, out bool) {
	return value>>1 | value&0x80, value&0x01 != 0
}

// ShiftRightLogical shifts the byte right, bit 7 is filled with 0.
func ShiftRightLogical(value uint8) (result uint8, out bool) {
	return value >> 1, value&0x01 != 0
}
