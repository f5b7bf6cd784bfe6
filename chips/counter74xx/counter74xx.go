// Package counter74xx implements the 74-family counter chips: the 7493
// 4-bit ripple counter (two independent ripple stages, a/b and b/c/d, the
// way a PET-class board wires them for divide-by-2-then-divide-by-8), the
// 74177 presettable binary counter/latch, and the 74193 synchronous
// up/down binary counter.
package counter74xx

import (
	"github.com/dromaius-sim/dromaius/chip"
	"github.com/dromaius-sim/dromaius/signal"
)

// Ripple7493Def configures a 7493 4-bit ripple counter. BClockIsQA mirrors
// the original's same-timestep special case: when the board wires ClockB
// directly to QA (the usual divide-by-2-then-divide-by-8 hookup), the
// second stage must react within the same Process call rather than wait
// for QA's change to propagate back around on a later timestep.
type Ripple7493Def struct {
	ClockA, ClockB   signal.Signal
	Reset0, Reset1   signal.Signal // both high resets the counter
	QA, QB, QC, QD   signal.Signal
	BClockIsQA       bool
}

// Ripple7493 is the 7493 4-bit binary ripple counter.
type Ripple7493 struct {
	chip.Base
	def            Ripple7493Def
	countA         bool
	countB         int
	prevClockA     bool
	prevClockB     bool
}

// NewRipple7493 constructs a 7493 per def.
func NewRipple7493(def Ripple7493Def) *Ripple7493 {
	return &Ripple7493{Base: chip.NewBase("7493"), def: def}
}

// ChipBase implements the simulator's baseHolder contract.
func (c *Ripple7493) ChipBase() *chip.Base { return &c.Base }

// Destroy releases no resources.
func (c *Ripple7493) Destroy() {}

// RegisterDependencies declares the clock and reset inputs.
func (c *Ripple7493) RegisterDependencies() {
	c.DependsOn(c.def.ClockA)
	c.DependsOn(c.def.ClockB)
	c.DependsOn(c.def.Reset0)
	c.DependsOn(c.def.Reset1)
}

// Process ripples the counter on the falling edge of each stage's clock,
// or resets both stages to zero when both reset inputs are asserted high.
func (c *Ripple7493) Process() {
	clockA := c.Read(c.def.ClockA)
	clockB := c.Read(c.def.ClockB)

	switch {
	case c.Read(c.def.Reset0) && c.Read(c.def.Reset1):
		c.countA = false
		c.countB = 0
	default:
		fallingA := c.prevClockA && !clockA
		if fallingA {
			c.countA = !c.countA
		}
		if c.def.BClockIsQA {
			if fallingA && !c.countA {
				c.countB = (c.countB + 1) & 0x7
			}
		} else if c.prevClockB && !clockB {
			c.countB = (c.countB + 1) & 0x7
		}
	}

	c.Write(c.def.QA, c.countA)
	c.Write(c.def.QB, c.countB&0x1 != 0)
	c.Write(c.def.QC, c.countB&0x2 != 0)
	c.Write(c.def.QD, c.countB&0x4 != 0)

	c.prevClockA = clockA
	c.prevClockB = clockB
}

// Presettable177Def configures a 74177 presettable binary counter/latch.
type Presettable177Def struct {
	LoadB, ClearB    signal.Signal // active-low
	Clock1, Clock2   signal.Signal
	A, B, C, D       signal.Signal // parallel load inputs
	QA, QB, QC, QD   signal.Signal
	Clock2IsQA       bool // same same-timestep quirk as Ripple7493Def.BClockIsQA
}

// Presettable177 is the 74177 presettable binary counter/latch.
type Presettable177 struct {
	chip.Base
	def         Presettable177Def
	count1      bool
	count2      int
	prevClock1  bool
	prevClock2  bool
}

// NewPresettable177 constructs a 74177 per def.
func NewPresettable177(def Presettable177Def) *Presettable177 {
	return &Presettable177{Base: chip.NewBase("74177"), def: def}
}

// ChipBase implements the simulator's baseHolder contract.
func (c *Presettable177) ChipBase() *chip.Base { return &c.Base }

// Destroy releases no resources.
func (c *Presettable177) Destroy() {}

// RegisterDependencies declares the clock, load, clear, and parallel-load
// pin dependencies.
func (c *Presettable177) RegisterDependencies() {
	c.DependsOn(c.def.LoadB)
	c.DependsOn(c.def.ClearB)
	c.DependsOn(c.def.Clock1)
	c.DependsOn(c.def.Clock2)
	c.DependsOn(c.def.A)
	c.DependsOn(c.def.B)
	c.DependsOn(c.def.C)
	c.DependsOn(c.def.D)
}

// Process clears asynchronously, parallel-loads while LoadB is asserted,
// or else ripples on the falling edge of each stage's clock.
func (c *Presettable177) Process() {
	clock1 := c.Read(c.def.Clock1)
	clock2 := c.Read(c.def.Clock2)

	switch {
	case !c.Read(c.def.ClearB):
		c.count1, c.count2 = false, 0
	case !c.Read(c.def.LoadB):
		c.count1 = c.Read(c.def.A)
		v := 0
		if c.Read(c.def.B) {
			v |= 1
		}
		if c.Read(c.def.C) {
			v |= 2
		}
		if c.Read(c.def.D) {
			v |= 4
		}
		c.count2 = v
	default:
		falling1 := c.prevClock1 && !clock1
		if falling1 {
			c.count1 = !c.count1
		}
		if c.def.Clock2IsQA {
			if falling1 && !c.count1 {
				c.count2 = (c.count2 + 1) & 0x7
			}
		} else if c.prevClock2 && !clock2 {
			c.count2 = (c.count2 + 1) & 0x7
		}
	}

	c.Write(c.def.QA, c.count1)
	c.Write(c.def.QB, c.count2&0x1 != 0)
	c.Write(c.def.QC, c.count2&0x2 != 0)
	c.Write(c.def.QD, c.count2&0x4 != 0)

	c.prevClock1 = clock1
	c.prevClock2 = clock2
}

// SyncUpDown193Def configures a 74193 synchronous 4-bit up/down counter.
type SyncUpDown193Def struct {
	A, B, C, D     signal.Signal
	LoadB          signal.Signal // active-low parallel load
	ClearHi        signal.Signal // active-high asynchronous clear
	CountUp        signal.Signal // clock input for the up direction
	CountDown      signal.Signal // clock input for the down direction
	QA, QB, QC, QD signal.Signal
	BorrowB, CarryB signal.Signal
}

// SyncUpDown193 is the 74193 synchronous up/down binary counter.
type SyncUpDown193 struct {
	chip.Base
	def           SyncUpDown193Def
	state         uint8
	prevCountUp   bool
	prevCountDown bool
}

// NewSyncUpDown193 constructs a 74193 per def.
func NewSyncUpDown193(def SyncUpDown193Def) *SyncUpDown193 {
	return &SyncUpDown193{Base: chip.NewBase("74193"), def: def}
}

// ChipBase implements the simulator's baseHolder contract.
func (c *SyncUpDown193) ChipBase() *chip.Base { return &c.Base }

// Destroy releases no resources.
func (c *SyncUpDown193) Destroy() {}

// RegisterDependencies declares the clock, load, clear, and parallel-load
// pin dependencies.
func (c *SyncUpDown193) RegisterDependencies() {
	c.DependsOn(c.def.CountUp)
	c.DependsOn(c.def.CountDown)
	c.DependsOn(c.def.LoadB)
	c.DependsOn(c.def.ClearHi)
	c.DependsOn(c.def.A)
	c.DependsOn(c.def.B)
	c.DependsOn(c.def.C)
	c.DependsOn(c.def.D)
}

// Process clears asynchronously, parallel-loads while LoadB is asserted,
// or counts up/down on the rising edge of the respective clock input.
func (c *SyncUpDown193) Process() {
	countUp := c.Read(c.def.CountUp)
	countDown := c.Read(c.def.CountDown)

	switch {
	case c.Read(c.def.ClearHi):
		c.state = 0
	case !c.Read(c.def.LoadB):
		c.state = bits4(c.Read(c.def.A), c.Read(c.def.B), c.Read(c.def.C), c.Read(c.def.D))
	default:
		if countUp && !c.prevCountUp {
			c.state = (c.state + 1) & 0xf
		}
		if countDown && !c.prevCountDown {
			c.state = (c.state - 1) & 0xf
		}
	}

	c.Write(c.def.QA, c.state&0x1 != 0)
	c.Write(c.def.QB, c.state&0x2 != 0)
	c.Write(c.def.QC, c.state&0x4 != 0)
	c.Write(c.def.QD, c.state&0x8 != 0)
	c.Write(c.def.CarryB, !(c.state == 0xf && countUp))
	c.Write(c.def.BorrowB, !(c.state == 0x0 && countDown))

	c.prevCountUp = countUp
	c.prevCountDown = countDown
}

func bits4(a, b, cc, d bool) uint8 {
	var v uint8
	if a {
		v |= 1
	}
	if b {
		v |= 2
	}
	if cc {
		v |= 4
	}
	if d {
		v |= 8
	}
	return v
}
