// Package oscillator implements a crystal-driven clock chip: a free-
// running square wave at a fixed frequency, expressed in ticks via the
// simulator's tick duration rather than wall-clock time.
package oscillator

import (
	"github.com/dromaius-sim/dromaius/chip"
	"github.com/dromaius-sim/dromaius/signal"
)

// Def configures an Oscillator.
type Def struct {
	// FrequencyHz is the oscillator's output frequency in Hz.
	FrequencyHz int64
	// TickDurationPS is the simulator's tick duration in picoseconds,
	// used to convert FrequencyHz into a half-period in ticks.
	TickDurationPS int64
	ClkOut         signal.Signal
}

// Oscillator toggles ClkOut every half period, scheduling its own next
// wake-up rather than depending on any input signal.
type Oscillator struct {
	chip.Base
	clkOut          signal.Signal
	halfPeriodTicks int64
	nextTransition  int64
}

// New constructs an Oscillator per def. ClkOut defaults low.
func New(def Def) *Oscillator {
	half := int64(1_000_000_000_000) / (def.FrequencyHz * 2 * def.TickDurationPS)
	if half < 1 {
		half = 1
	}
	c := &Oscillator{
		Base:            chip.NewBase("oscillator"),
		clkOut:          def.ClkOut,
		halfPeriodTicks: half,
	}
	return c
}

// ChipBase implements the simulator's baseHolder contract.
func (c *Oscillator) ChipBase() *chip.Base { return &c.Base }

// Destroy releases no resources.
func (c *Oscillator) Destroy() {}

// RegisterDependencies declares no input dependencies: the oscillator is
// driven purely by its own schedule.
func (c *Oscillator) RegisterDependencies() {}

// Process toggles ClkOut and reschedules itself for the next half period.
// The simulator only invokes Process for this chip when it's dirty, which
// for an oscillator means either its very first run (registration marks
// every chip dirty once) or its own schedule firing, so every invocation
// is a transition.
func (c *Oscillator) Process() {
	c.Write(c.clkOut, !c.Read(c.clkOut))
	c.nextTransition += c.halfPeriodTicks
	c.Schedule(c.nextTransition)
}
