// Package buffer74xx implements the 74-family tri-state bus chips: the
// 74244 octal buffer/line driver, the 74245 octal bidirectional
// transceiver, and the 74373 octal D-type transparent latch.
package buffer74xx

import (
	"github.com/dromaius-sim/dromaius/chip"
	"github.com/dromaius-sim/dromaius/signal"
)

// OctalBufferSectionDef configures one 4-bit enable group of a 74244.
type OctalBufferSectionDef struct {
	EnableB signal.Signal // active-low output enable
	A       [4]signal.Signal
	Y       [4]signal.Signal
}

// OctalBufferDef configures a 74244 octal tri-state buffer.
type OctalBufferDef struct {
	Section1, Section2 OctalBufferSectionDef
}

// OctalBuffer is the 74244: two independently enabled 4-bit tri-state
// buffer sections sharing one package.
type OctalBuffer struct {
	chip.Base
	def OctalBufferDef
}

// NewOctalBuffer constructs a 74244 per def.
func NewOctalBuffer(def OctalBufferDef) *OctalBuffer {
	return &OctalBuffer{Base: chip.NewBase("74244"), def: def}
}

// ChipBase implements the simulator's baseHolder contract.
func (c *OctalBuffer) ChipBase() *chip.Base { return &c.Base }

// Destroy releases no resources.
func (c *OctalBuffer) Destroy() {}

// RegisterDependencies declares both sections' enable and input pins.
func (c *OctalBuffer) RegisterDependencies() {
	for _, sec := range []OctalBufferSectionDef{c.def.Section1, c.def.Section2} {
		c.DependsOn(sec.EnableB)
		for _, a := range sec.A {
			c.DependsOn(a)
		}
	}
}

// Process drives each section's outputs from its inputs while its enable
// is asserted low, or releases them (tri-states) otherwise.
func (c *OctalBuffer) Process() {
	c.processSection(&c.def.Section1)
	c.processSection(&c.def.Section2)
}

func (c *OctalBuffer) processSection(sec *OctalBufferSectionDef) {
	if c.Read(sec.EnableB) {
		for _, y := range sec.Y {
			c.Release(y)
		}
		return
	}
	for i, a := range sec.A {
		c.Write(sec.Y[i], c.Read(a))
	}
}

// TransceiverDef configures a 74245 octal bidirectional transceiver.
type TransceiverDef struct {
	EnableB  signal.Signal // active-low
	Dir      signal.Signal // true: A drives B; false: B drives A
	A, B     [8]signal.Signal
}

// Transceiver is the 74245 octal bidirectional bus transceiver.
type Transceiver struct {
	chip.Base
	def TransceiverDef
}

// NewTransceiver constructs a 74245 per def.
func NewTransceiver(def TransceiverDef) *Transceiver {
	return &Transceiver{Base: chip.NewBase("74245"), def: def}
}

// ChipBase implements the simulator's baseHolder contract.
func (c *Transceiver) ChipBase() *chip.Base { return &c.Base }

// Destroy releases no resources.
func (c *Transceiver) Destroy() {}

// RegisterDependencies declares the enable, direction, and both bus sides
// as dependencies (only one side is actually read in any given timestep,
// but which one depends on Dir, so both must be watched).
func (c *Transceiver) RegisterDependencies() {
	c.DependsOn(c.def.EnableB)
	c.DependsOn(c.def.Dir)
	for i := range c.def.A {
		c.DependsOn(c.def.A[i])
		c.DependsOn(c.def.B[i])
	}
}

// Process drives B from A (or A from B) while enabled, per Dir, or
// releases both buses when disabled.
func (c *Transceiver) Process() {
	if c.Read(c.def.EnableB) {
		for i := range c.def.A {
			c.Release(c.def.A[i])
			c.Release(c.def.B[i])
		}
		return
	}
	if c.Read(c.def.Dir) {
		for i, a := range c.def.A {
			c.Write(c.def.B[i], c.Read(a))
		}
	} else {
		for i, b := range c.def.B {
			c.Write(c.def.A[i], c.Read(b))
		}
	}
}

// LatchDef configures a 74373 octal transparent latch.
type LatchDef struct {
	LatchEnable signal.Signal
	OutputEnB   signal.Signal // active-low
	D           [8]signal.Signal
	Q           [8]signal.Signal
}

// Latch is the 74373: an 8-bit transparent latch with tri-state outputs.
type Latch struct {
	chip.Base
	def   LatchDef
	state uint8
}

// NewLatch constructs a 74373 per def.
func NewLatch(def LatchDef) *Latch {
	return &Latch{Base: chip.NewBase("74373"), def: def}
}

// ChipBase implements the simulator's baseHolder contract.
func (c *Latch) ChipBase() *chip.Base { return &c.Base }

// Destroy releases no resources.
func (c *Latch) Destroy() {}

// RegisterDependencies declares the data, latch-enable, and output-enable
// pin dependencies.
func (c *Latch) RegisterDependencies() {
	for _, d := range c.def.D {
		c.DependsOn(d)
	}
	c.DependsOn(c.def.LatchEnable)
	c.DependsOn(c.def.OutputEnB)
}

// Process is transparent (Q tracks D) while LatchEnable is high, and
// holds its last state once LatchEnable goes low; outputs tri-state
// whenever OutputEnB is high.
func (c *Latch) Process() {
	if c.Read(c.def.LatchEnable) {
		var v uint8
		for i, d := range c.def.D {
			if c.Read(d) {
				v |= 1 << uint(i)
			}
		}
		c.state = v
	}

	if c.Read(c.def.OutputEnB) {
		for _, q := range c.def.Q {
			c.Release(q)
		}
		return
	}
	for i, q := range c.def.Q {
		c.Write(q, c.state&(1<<uint(i)) != 0)
	}
}
