package addr

import "fmt"

// Interrupt is an enum that represents one of the possible interrupts.
// The numeric value is the bit index in IE/IF, lower values win.
type Interrupt uint8

const (
	// VBlankInterrupt is fired when the GPU has completed a frame.
	VBlankInterrupt Interrupt = iota
	// LCDSTATInterrupt is fired based on one of the conditions in the LCDSTAT register.
	LCDSTATInterrupt
	// TimerInterrupt is fired when the timer register (TIMA) overflows (i.e. goes from 0xFF to 0x00).
	TimerInterrupt
	// SerialInterrupt is fired when a serial transfer has completed on the game link port.
	SerialInterrupt
	// JoypadInterrupt is fired when any of the keypad inputs goes from high to low.
	JoypadInterrupt
)

// Interrupts lists every source in service priority order.
var Interrupts = [...]Interrupt{
	VBlankInterrupt,
	LCDSTATInterrupt,
	TimerInterrupt,
	SerialInterrupt,
	JoypadInterrupt,
}

// Mask returns the IE/IF bit for the interrupt.
func (i Interrupt) Mask() uint8 {
	return 1 << uint8(i)
}

// Vector returns the address the CPU jumps to when servicing the interrupt.
func (i Interrupt) Vector() uint16 {
	switch i {
	case VBlankInterrupt:
		return 0x40
	case LCDSTATInterrupt:
		return 0x48
	case TimerInterrupt:
		return 0x50
	case SerialInterrupt:
		return 0x58
	case JoypadInterrupt:
		return 0x60
	}
	panic(fmt.Sprintf("unknown interrupt %d", uint8(i)))
}

func (i Interrupt) String() string {
	switch i {
	case VBlankInterrupt:
		return "VBLANK"
	case LCDSTATInterrupt:
		return "LCDSTAT"
	case TimerInterrupt:
		return "TIMER"
	case SerialInterrupt:
		return "SERIAL"
	case JoypadInterrupt:
		return "JOYPAD"
	}
	return fmt.Sprintf("Interrupt(%d)", uint8(i))
}
