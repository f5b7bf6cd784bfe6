// Package flipflop74xx implements the 74-family latching chips: the 7474
// dual positive-edge-triggered D flip-flop (with active-low preset/clear)
// and the 74107 dual J-K flip-flop (with active-low clear).
package flipflop74xx

import (
	"github.com/dromaius-sim/dromaius/chip"
	"github.com/dromaius-sim/dromaius/signal"
)

// DFlipFlopHalfDef configures one of the two D flip-flops in a 7474.
type DFlipFlopHalfDef struct {
	D, Clk      signal.Signal
	PresetB     signal.Signal // active-low
	ClearB      signal.Signal // active-low
	Q, QB       signal.Signal
}

// DFlipFlopDef configures a 7474 dual D flip-flop chip.
type DFlipFlopDef struct {
	FF1, FF2 DFlipFlopHalfDef
}

type dFlipFlopState struct {
	def      DFlipFlopHalfDef
	q, qb    bool
	prevClk  bool
}

// DFlipFlop is the 7474: two independent positive-edge-triggered D
// flip-flops, each with asynchronous active-low preset and clear.
type DFlipFlop struct {
	chip.Base
	ff [2]dFlipFlopState
}

// NewDFlipFlop constructs a 7474 per def.
func NewDFlipFlop(def DFlipFlopDef) *DFlipFlop {
	c := &DFlipFlop{Base: chip.NewBase("7474")}
	c.ff[0].def = def.FF1
	c.ff[1].def = def.FF2
	return c
}

// ChipBase implements the simulator's baseHolder contract.
func (c *DFlipFlop) ChipBase() *chip.Base { return &c.Base }

// Destroy releases no resources.
func (c *DFlipFlop) Destroy() {}

// RegisterDependencies declares each half's D/clock/preset/clear inputs.
func (c *DFlipFlop) RegisterDependencies() {
	for _, f := range c.ff {
		c.DependsOn(f.def.D)
		c.DependsOn(f.def.Clk)
		c.DependsOn(f.def.PresetB)
		c.DependsOn(f.def.ClearB)
	}
}

// Process evaluates both flip-flop halves: preset/clear override
// asynchronously (with the datasheet's "both asserted" race resolving to
// Q=QB=true), otherwise D latches on the rising edge of Clk.
func (c *DFlipFlop) Process() {
	for i := range c.ff {
		c.processHalf(&c.ff[i])
	}
}

func (c *DFlipFlop) processHalf(f *dFlipFlopState) {
	clk := c.Read(f.def.Clk)
	presetAsserted := !c.Read(f.def.PresetB)
	clearAsserted := !c.Read(f.def.ClearB)

	switch {
	case presetAsserted && clearAsserted:
		f.q, f.qb = true, true
	case presetAsserted:
		f.q, f.qb = true, false
	case clearAsserted:
		f.q, f.qb = false, true
	case clk && !f.prevClk:
		f.q = c.Read(f.def.D)
		f.qb = !f.q
	}

	c.Write(f.def.Q, f.q)
	c.Write(f.def.QB, f.qb)
	f.prevClk = clk
}

// JKFlipFlopHalfDef configures one of the two J-K flip-flops in a 74107.
type JKFlipFlopHalfDef struct {
	J, K, Clk signal.Signal
	ClearB    signal.Signal // active-low
	Q, QB     signal.Signal
}

// JKFlipFlopDef configures a 74107 dual J-K flip-flop chip.
type JKFlipFlopDef struct {
	FF1, FF2 JKFlipFlopHalfDef
}

type jkFlipFlopState struct {
	def     JKFlipFlopHalfDef
	q       bool
	prevClk bool
}

// JKFlipFlop is the 74107: two independent negative-edge-triggered J-K
// flip-flops, each with an asynchronous active-low clear.
type JKFlipFlop struct {
	chip.Base
	ff [2]jkFlipFlopState
}

// NewJKFlipFlop constructs a 74107 per def.
func NewJKFlipFlop(def JKFlipFlopDef) *JKFlipFlop {
	c := &JKFlipFlop{Base: chip.NewBase("74107")}
	c.ff[0].def = def.FF1
	c.ff[1].def = def.FF2
	return c
}

// ChipBase implements the simulator's baseHolder contract.
func (c *JKFlipFlop) ChipBase() *chip.Base { return &c.Base }

// Destroy releases no resources.
func (c *JKFlipFlop) Destroy() {}

// RegisterDependencies declares each half's J/K/clock/clear inputs.
func (c *JKFlipFlop) RegisterDependencies() {
	for _, f := range c.ff {
		c.DependsOn(f.def.J)
		c.DependsOn(f.def.K)
		c.DependsOn(f.def.Clk)
		c.DependsOn(f.def.ClearB)
	}
}

// Process evaluates both flip-flop halves on the falling clock edge per
// the J-K truth table (J=K=false holds, J=K=true toggles), honoring
// asynchronous active-low clear.
func (c *JKFlipFlop) Process() {
	for i := range c.ff {
		c.processHalf(&c.ff[i])
	}
}

func (c *JKFlipFlop) processHalf(f *jkFlipFlopState) {
	clk := c.Read(f.def.Clk)
	if !c.Read(f.def.ClearB) {
		f.q = false
	} else if !clk && f.prevClk {
		j, k := c.Read(f.def.J), c.Read(f.def.K)
		switch {
		case j && k:
			f.q = !f.q
		case j && !k:
			f.q = true
		case !j && k:
			f.q = false
		}
	}
	c.Write(f.def.Q, f.q)
	c.Write(f.def.QB, !f.q)
	f.prevClk = clk
}
