// Package pia6520 implements the 6520/6821 Peripheral Interface Adapter:
// two 8-bit I/O ports, each with a pair of handshake control lines and a
// control register selecting data-direction access, edge polarity, and
// CA2/CB2 output mode. Unlike chips/via6522 the 6520 has no PHI2-style
// enable pin of its own; its bus-facing registers are addressed purely
// combinationally through CS0/CS1/CS2B/RS0/RS1/RW; handshake-line edge
// detection runs on every evaluation, the same way a flip-flop chip
// reacts to its clock input.
package pia6520

import (
	"github.com/dromaius-sim/dromaius/chip"
	"github.com/dromaius-sim/dromaius/signal"
)

// control register bits, shared layout for CRA and CRB.
const (
	crC1Enable    = 0x01 // IRQ enable for C1
	crC1PosActive = 0x02 // 0 = falling edge, 1 = rising edge active
	crDDRSelect   = 0x04 // 0 = DDR selected at RS, 1 = OR selected
	crC2Control   = 0x38 // bits 3-5: C2 direction/mode
	crC2Direction = 0x20 // 0 = input, 1 = output
	crC2PosActive = 0x10 // input mode: 0 = falling edge, 1 = rising edge
	crC2Enable    = 0x08 // input mode: IRQ enable for C2
	crIRQ2        = 0x80 // set on an active C2 transition (input mode)
	crIRQ1        = 0x40 // set on an active C1 transition
	crWritable    = 0x3f // bits 0-5 are software-writable; 6-7 are flags
)

// register addresses selected by RS1:RS0.
const (
	addrA = 0b00
	addrB = 0b10
	crA   = 0b01
	crB   = 0b11
)

// Def configures a Chip.
type Def struct {
	Data  signal.Group // 8-bit databus, D0-D7
	PortA signal.Group // 8-bit peripheral port A
	PortB signal.Group // 8-bit peripheral port B

	CA1, CA2 signal.Signal
	CB1, CB2 signal.Signal

	IRQAB, IRQBB signal.Signal

	CS0, CS1, CS2B signal.Signal
	RS0, RS1       signal.Signal
	ResetB         signal.Signal
	RW             signal.Signal // true = read, false = write
}

type outputLatch struct {
	drvData    bool
	data       uint8
	irqA, irqB bool

	drvCA2, drvCB2 bool
	ca2, cb2       bool
}

// Chip is a 6520/6821 PIA.
type Chip struct {
	chip.Base
	def Def

	ora, ddra, cra byte
	orb, ddrb, crb byte

	out, last outputLatch
}

// New constructs a Chip with CA2/CB2 defaulting to their deasserted
// (high) state, matching the MC6821's power-on condition.
func New(def Def) *Chip {
	c := &Chip{Base: chip.NewBase("pia6520"), def: def}
	c.out.ca2, c.out.cb2 = true, true
	c.last.irqA, c.last.irqB = true, true
	return c
}

func (c *Chip) ChipBase() *chip.Base { return &c.Base }
func (c *Chip) Destroy()             {}

func (c *Chip) RegisterDependencies() {
	c.DependsOn(c.def.ResetB)
	c.DependsOn(c.def.CS0)
	c.DependsOn(c.def.CS1)
	c.DependsOn(c.def.CS2B)
	c.DependsOn(c.def.RS0)
	c.DependsOn(c.def.RS1)
	c.DependsOn(c.def.RW)
	c.DependsOnGroup(c.def.Data)
	c.DependsOn(c.def.CA1)
	c.DependsOn(c.def.CA2)
	c.DependsOn(c.def.CB1)
	c.DependsOn(c.def.CB2)
}

func (c *Chip) addr() int {
	rs0, rs1 := c.Read(c.def.RS0), c.Read(c.def.RS1)
	a := 0
	if rs0 {
		a |= 0b01
	}
	if rs1 {
		a |= 0b10
	}
	return a
}

// checkEdge reports whether line just transitioned to its configured
// active level (posActive selects rising vs falling).
func (c *Chip) checkEdge(line signal.Signal, posActive bool) bool {
	if !c.Changed(line) {
		return false
	}
	v := c.Read(line)
	if posActive {
		return v
	}
	return !v
}

// processEdges updates the IRQ1/IRQ2 flag bits from CA1/CA2/CB1/CB2
// transitions; runs unconditionally, independent of chip selection,
// matching the 6820/6821's asynchronous handshake inputs.
func (c *Chip) processEdges() {
	if c.checkEdge(c.def.CA1, c.cra&crC1PosActive != 0) {
		c.cra |= crIRQ1
	}
	if c.cra&crC2Direction == 0 && c.checkEdge(c.def.CA2, c.cra&crC2PosActive != 0) {
		c.cra |= crIRQ2
	}
	if c.checkEdge(c.def.CB1, c.crb&crC1PosActive != 0) {
		c.crb |= crIRQ1
	}
	if c.crb&crC2Direction == 0 && c.checkEdge(c.def.CB2, c.crb&crC2PosActive != 0) {
		c.crb |= crIRQ2
	}
}

// c2OutputLevel derives the level to drive on CA2/CB2 when the control
// register configures it as an output: handshake (pulses high again on
// the paired C1 active edge), pulse (one cycle low after an access), or
// manual (directly set by bit 3 of the control register).
func (c *Chip) c2OutputLevel(cr byte, accessed, pairedC1Edge, prevOut bool) bool {
	switch {
	case cr&0b00110000 == 0b00110000: // manual output
		return cr&crC2Enable != 0
	case cr&crC2Enable != 0: // pulse: one cycle low following an access
		return !accessed
	default: // handshake: low on access, high again on C1 active edge
		if accessed {
			return false
		}
		if pairedC1Edge {
			return true
		}
		return prevOut
	}
}

func (c *Chip) readPortCombined(data signal.Group, or, ddr byte) byte {
	return byte(c.ReadGroup(data))&^ddr | (or & ddr)
}

// Process evaluates one bus access (combinational: there is no clock
// pin to gate this chip's register access, only chip-select decode) and
// refreshes the handshake-line edge flags.
func (c *Chip) Process() {
	if !c.Read(c.def.ResetB) {
		c.ora, c.ddra, c.cra = 0, 0, 0
		c.orb, c.ddrb, c.crb = 0, 0, 0
		c.processEnd()
		return
	}

	c.processEdges()

	selected := c.Read(c.def.CS0) && c.Read(c.def.CS1) && !c.Read(c.def.CS2B)
	c.out.drvData = false

	if selected {
		a := c.addr()
		if !c.Read(c.def.RW) {
			data := byte(c.ReadGroup(c.def.Data))
			switch a {
			case addrA:
				if c.cra&crDDRSelect != 0 {
					c.ora = data
				} else {
					c.ddra = data
				}
			case crA:
				c.cra = (c.cra &^ crWritable) | (data & crWritable)
			case addrB:
				if c.crb&crDDRSelect != 0 {
					c.orb = data
				} else {
					c.ddrb = data
				}
			case crB:
				c.crb = (c.crb &^ crWritable) | (data & crWritable)
			}
		} else {
			switch a {
			case addrA:
				if c.cra&crDDRSelect != 0 {
					c.out.data = c.readPortCombined(c.def.PortA, c.ora, c.ddra)
					c.cra &^= crIRQ1 | crIRQ2
				} else {
					c.out.data = c.ddra
				}
				c.out.drvData = true
			case crA:
				c.out.data = c.cra
				c.out.drvData = true
			case addrB:
				if c.crb&crDDRSelect != 0 {
					c.out.data = c.readPortCombined(c.def.PortB, c.orb, c.ddrb)
					c.crb &^= crIRQ1 | crIRQ2
				} else {
					c.out.data = c.ddrb
				}
				c.out.drvData = true
			case crB:
				c.out.data = c.crb
				c.out.drvData = true
			}
		}
	}

	accessedA := selected && (c.addr() == addrA)
	accessedB := selected && (c.addr() == addrB)

	if c.cra&crC2Direction != 0 {
		c.out.ca2 = c.c2OutputLevel(c.cra, accessedA, c.cra&crIRQ1 != 0, c.out.ca2)
	}
	if c.crb&crC2Direction != 0 {
		c.out.cb2 = c.c2OutputLevel(c.crb, accessedB, c.crb&crIRQ1 != 0, c.out.cb2)
	}

	c.out.irqA = c.cra&(crIRQ1|crC1Enable) == (crIRQ1|crC1Enable) || c.cra&(crIRQ2|crC2Enable) == (crIRQ2|crC2Enable)
	c.out.irqB = c.crb&(crIRQ1|crC1Enable) == (crIRQ1|crC1Enable) || c.crb&(crIRQ2|crC2Enable) == (crIRQ2|crC2Enable)

	c.processEnd()
}

// processEnd mirrors computed outputs onto the pool, driving a line
// only when it changed since the last evaluation.
func (c *Chip) processEnd() {
	out, last := &c.out, &c.last

	c.WriteGroupMasked(c.def.PortA, uint32(c.ora), uint32(c.ddra))
	c.WriteGroupMasked(c.def.PortB, uint32(c.orb), uint32(c.ddrb))

	if out.drvData {
		if out.data != last.data || !last.drvData {
			c.WriteGroup(c.def.Data, uint32(out.data))
			last.data = out.data
		}
		last.drvData = true
	} else if last.drvData {
		c.ReleaseGroup(c.def.Data)
		last.drvData = false
	}

	if out.irqA != last.irqA {
		if out.irqA {
			c.Write(c.def.IRQAB, false)
		} else {
			c.Release(c.def.IRQAB)
		}
		last.irqA = out.irqA
	}
	if out.irqB != last.irqB {
		if out.irqB {
			c.Write(c.def.IRQBB, false)
		} else {
			c.Release(c.def.IRQBB)
		}
		last.irqB = out.irqB
	}

	if c.cra&crC2Direction != 0 {
		if out.ca2 != last.ca2 || !last.drvCA2 {
			c.Write(c.def.CA2, out.ca2)
			last.drvCA2, last.ca2 = true, out.ca2
		}
	} else if last.drvCA2 {
		c.Release(c.def.CA2)
		last.drvCA2 = false
	}

	if c.crb&crC2Direction != 0 {
		if out.cb2 != last.cb2 || !last.drvCB2 {
			c.Write(c.def.CB2, out.cb2)
			last.drvCB2, last.cb2 = true, out.cb2
		}
	} else if last.drvCB2 {
		c.Release(c.def.CB2)
		last.drvCB2 = false
	}
}
