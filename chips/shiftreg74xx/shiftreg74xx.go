// Package shiftreg74xx implements the 74-family shift register chips: the
// 74164 8-bit serial-in/parallel-out shift register and the 74165 8-bit
// parallel-in/serial-out shift register.
package shiftreg74xx

import (
	"github.com/dromaius-sim/dromaius/chip"
	"github.com/dromaius-sim/dromaius/signal"
)

// SIPO164Def configures a 74164 serial-in/parallel-out shift register.
// The two serial inputs are ANDed together, matching the datasheet's
// dual-input gate ahead of the shift register proper.
type SIPO164Def struct {
	A, B     signal.Signal
	Clock    signal.Signal
	ClearB   signal.Signal // active-low
	Q        [8]signal.Signal
}

// SIPO164 is the 74164 8-bit serial-in/parallel-out shift register.
type SIPO164 struct {
	chip.Base
	def       SIPO164Def
	state     uint8
	prevClock bool
}

// NewSIPO164 constructs a 74164 per def.
func NewSIPO164(def SIPO164Def) *SIPO164 {
	return &SIPO164{Base: chip.NewBase("74164"), def: def}
}

// ChipBase implements the simulator's baseHolder contract.
func (c *SIPO164) ChipBase() *chip.Base { return &c.Base }

// Destroy releases no resources.
func (c *SIPO164) Destroy() {}

// RegisterDependencies declares the clock and clear inputs.
func (c *SIPO164) RegisterDependencies() {
	c.DependsOn(c.def.Clock)
	c.DependsOn(c.def.ClearB)
}

// Process clears asynchronously or shifts A&&B into the register on the
// rising clock edge, then always outputs the current state.
func (c *SIPO164) Process() {
	clock := c.Read(c.def.Clock)
	switch {
	case !c.Read(c.def.ClearB):
		c.state = 0
	case clock && !c.prevClock:
		in := c.Read(c.def.A) && c.Read(c.def.B)
		c.state <<= 1
		if in {
			c.state |= 1
		}
	}

	for i, q := range c.def.Q {
		c.Write(q, c.state&(1<<uint(i)) != 0)
	}
	c.prevClock = clock
}

// PISO165Def configures a 74165 parallel-in/serial-out shift register.
type PISO165Def struct {
	ShiftLoadB     signal.Signal // active-low: low loads parallel inputs
	Clock          signal.Signal
	ClockInhibit   signal.Signal
	SerialIn       signal.Signal
	A, B, C, D     signal.Signal
	E, F, G, H     signal.Signal
	QH, QHB        signal.Signal
}

// PISO165 is the 74165 8-bit parallel-in/serial-out shift register.
type PISO165 struct {
	chip.Base
	def          PISO165Def
	state        uint8
	prevGatedClk bool
}

// NewPISO165 constructs a 74165 per def.
func NewPISO165(def PISO165Def) *PISO165 {
	return &PISO165{Base: chip.NewBase("74165"), def: def}
}

// ChipBase implements the simulator's baseHolder contract.
func (c *PISO165) ChipBase() *chip.Base { return &c.Base }

// Destroy releases no resources.
func (c *PISO165) Destroy() {}

// RegisterDependencies declares the shift/load, clock, and clock-inhibit
// inputs.
func (c *PISO165) RegisterDependencies() {
	c.DependsOn(c.def.ShiftLoadB)
	c.DependsOn(c.def.Clock)
	c.DependsOn(c.def.ClockInhibit)
}

// Process parallel-loads on a high-to-low transition of ShiftLoadB
// (regardless of clock state), otherwise shifts SerialIn in on the rising
// edge of the gated clock (Clock NOR ClockInhibit).
func (c *PISO165) Process() {
	shiftLoad := c.Read(c.def.ShiftLoadB)
	if !shiftLoad && c.Changed(c.def.ShiftLoadB) {
		h := c.Read(c.def.H)
		c.state = boolByte(c.Read(c.def.A))
		c.state = c.state<<1 | boolByte(c.Read(c.def.B))
		c.state = c.state<<1 | boolByte(c.Read(c.def.C))
		c.state = c.state<<1 | boolByte(c.Read(c.def.D))
		c.state = c.state<<1 | boolByte(c.Read(c.def.E))
		c.state = c.state<<1 | boolByte(c.Read(c.def.F))
		c.state = c.state<<1 | boolByte(c.Read(c.def.G))
		c.state = c.state<<1 | boolByte(h)
		c.Write(c.def.QH, h)
		c.Write(c.def.QHB, !h)
		return
	}

	gatedClock := !(c.Read(c.def.Clock) || c.Read(c.def.ClockInhibit))
	if gatedClock && !c.prevGatedClk {
		var in uint8
		if c.Read(c.def.SerialIn) {
			in = 1
		}
		c.state = in<<7 | c.state>>1
	}

	out := c.state&0x1 != 0
	c.Write(c.def.QH, out)
	c.Write(c.def.QHB, !out)
	c.prevGatedClk = gatedClock
}

func boolByte(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}
