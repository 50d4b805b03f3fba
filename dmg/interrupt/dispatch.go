package interrupt

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/cpu"
)

// DispatchCycles is the cost in machine cycles of servicing an interrupt:
// two idle cycles, the PC push and the jump to the vector.
const DispatchCycles = 5

// pendingMask covers the five interrupt sources in IE/IF.
const pendingMask = 0x1F

// Controller arbitrates between the pending interrupt sources at each
// instruction boundary.
type Controller struct {
	serviced [len(addr.Interrupts)]uint64
	logger   *slog.Logger
	trace    bool
}

// New creates a controller. A nil logger falls back to slog.Default().
func New(logger *slog.Logger, trace bool) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{logger: logger, trace: trace}
}

// Dispatch services the highest priority interrupt that is both enabled and
// requested, if the CPU accepts interrupts. It returns the machine cycles
// spent, zero when nothing was serviced. With IME clear the CPU is left
// untouched, a halted CPU stays halted.
func (ic *Controller) Dispatch(c *cpu.CPU, bus cpu.Bus) int {
	requested := bus.Read(addr.IF)
	pending := bus.Read(addr.IE) & requested & pendingMask
	if pending == 0 {
		return 0
	}

	if !c.InterruptsEnabled() {
		return 0
	}

	for _, irq := range addr.Interrupts {
		if pending&irq.Mask() == 0 {
			continue
		}

		// mark as handled by clearing the request bit
		bus.Write(addr.IF, requested&^irq.Mask())

		c.DisableInterrupts()
		c.Wake()
		c.Call(bus, irq.Vector())

		ic.serviced[irq]++
		if ic.trace {
			ic.logger.Debug("interrupt", "source", irq.String(), "vector", fmt.Sprintf("0x%04X", irq.Vector()))
		}

		return DispatchCycles
	}

	return 0
}

// Serviced returns how many times the interrupt has been dispatched.
func (ic *Controller) Serviced(irq addr.Interrupt) uint64 {
	return ic.serviced[irq]
}
