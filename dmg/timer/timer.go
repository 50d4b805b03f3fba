package timer

import (
	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/bit"
)

// Bus is the subset of the memory bus the timer needs: DIV, TIMA, TMA and
// TAC live in I/O space, overflow raises a request in IF.
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
	RequestInterrupt(interrupt addr.Interrupt)
}

// divPeriod is the number of clock cycles between DIV increments (16384 Hz).
const divPeriod = 256

// tacPeriods maps TAC input clock select (bits 1-0) to the number of clock
// cycles between TIMA increments.
//
//	00 -> 1024 (4096 Hz)
//	01 -> 16   (262144 Hz)
//	10 -> 64   (65536 Hz)
//	11 -> 256  (16384 Hz)
var tacPeriods = [4]int{1024, 16, 64, 256}

// tacEnableBit starts and stops TIMA, DIV always runs.
const tacEnableBit = 2

// Timer encapsulates the Game Boy DIV/TIMA/TMA/TAC behavior. The registers
// themselves live on the bus, the timer only keeps the cycle accumulators.
type Timer struct {
	divCycles int   // cycles since the last DIV increment
	countdown int   // cycles left until the next TIMA increment
	selector  uint8 // last seen TAC clock select
}

// New returns a timer with the countdown armed for the default frequency.
func New() *Timer {
	return &Timer{countdown: tacPeriods[0]}
}

// Advance moves the timer forward by the given amount of clock cycles.
func (t *Timer) Advance(bus Bus, cycles int) {
	t.divCycles += cycles
	for t.divCycles >= divPeriod {
		t.divCycles -= divPeriod
		bus.Write(addr.DIV, bus.Read(addr.DIV)+1)
	}

	tac := bus.Read(addr.TAC)
	selector := bit.ExtractBits(tac, 1, 0)
	if selector != t.selector {
		t.selector = selector
		t.countdown = tacPeriods[selector]
	}

	if !bit.IsSet(tacEnableBit, tac) {
		return
	}

	t.countdown -= cycles
	for t.countdown <= 0 {
		t.countdown += tacPeriods[selector]
		t.incrementTIMA(bus)
	}
}

// incrementTIMA bumps TIMA, on overflow it reloads from TMA and requests
// the timer interrupt instead of wrapping to zero.
func (t *Timer) incrementTIMA(bus Bus) {
	tima := bus.Read(addr.TIMA)
	if tima == 0xFF {
		bus.Write(addr.TIMA, bus.Read(addr.TMA))
		bus.RequestInterrupt(addr.TimerInterrupt)
		return
	}
	bus.Write(addr.TIMA, tima+1)
}
