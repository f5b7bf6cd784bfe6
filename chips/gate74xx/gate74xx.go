// Package gate74xx implements the 74-family combinational logic chips: the
// quad 2-input gates (7400 NAND, 7402 NOR, 7408 AND, 7432 OR, 7486 XOR),
// the 7404 hex inverter, the 7447 BCD-to-7-segment decoder, the 74138
// 3-to-8 decoder, and the 74153 dual 4:1 multiplexer.
package gate74xx

import (
	"fmt"

	"github.com/dromaius-sim/dromaius/chip"
	"github.com/dromaius-sim/dromaius/signal"
)

// TwoInputFunc computes a 2-input gate's output from its two inputs.
type TwoInputFunc func(a, b bool) bool

var (
	// And2 is the 7408 gate function.
	And2 TwoInputFunc = func(a, b bool) bool { return a && b }
	// Or2 is the 7432 gate function.
	Or2 TwoInputFunc = func(a, b bool) bool { return a || b }
	// Nand2 is the 7400 gate function.
	Nand2 TwoInputFunc = func(a, b bool) bool { return !(a && b) }
	// Nor2 is the 7402 gate function.
	Nor2 TwoInputFunc = func(a, b bool) bool { return !(a || b) }
	// Xor2 is the 7486 gate function.
	Xor2 TwoInputFunc = func(a, b bool) bool { return a != b }
)

// gateIO holds one 2-input gate's pins.
type gateIO struct {
	A, B, Y signal.Signal
}

// QuadDef configures a quad 2-input gate chip.
type QuadDef struct {
	Function TwoInputFunc
	Gates    [4]struct{ A, B, Y signal.Signal }
	Debug    bool
}

// Quad is a 74-family quad 2-input gate chip (7400/7402/7408/7432/7486):
// four independent gates sharing one package, all computed the same
// combinational function.
type Quad struct {
	chip.Base
	fn    TwoInputFunc
	gates [4]gateIO
	debug bool
}

// NewQuad constructs a quad gate chip per def.
func NewQuad(def QuadDef) *Quad {
	c := &Quad{Base: chip.NewBase("quad-gate"), fn: def.Function, debug: def.Debug}
	for i, g := range def.Gates {
		c.gates[i] = gateIO{A: g.A, B: g.B, Y: g.Y}
	}
	return c
}

// ChipBase implements the simulator's baseHolder contract.
func (c *Quad) ChipBase() *chip.Base { return &c.Base }

// Destroy releases no resources.
func (c *Quad) Destroy() {}

// RegisterDependencies declares this chip runs whenever any input changes.
func (c *Quad) RegisterDependencies() {
	for _, g := range c.gates {
		c.DependsOn(g.A)
		c.DependsOn(g.B)
	}
}

// Process recomputes every gate's output from its current inputs.
func (c *Quad) Process() {
	for _, g := range c.gates {
		c.Write(g.Y, c.fn(c.Read(g.A), c.Read(g.B)))
	}
}

// Debug reports the current input/output state of every gate.
func (c *Quad) Debug() string {
	if !c.debug {
		return ""
	}
	s := ""
	for i, g := range c.gates {
		s += fmt.Sprintf("gate:%d(a=%v b=%v y=%v) ", i, c.Read(g.A), c.Read(g.B), c.Read(g.Y))
	}
	return s
}

// HexInverterDef configures a 7404 hex inverter.
type HexInverterDef struct {
	Inputs  [6]signal.Signal
	Outputs [6]signal.Signal
	Debug   bool
}

// HexInverter is the 7404: six independent inverters in one package.
type HexInverter struct {
	chip.Base
	in, out [6]signal.Signal
}

// NewHexInverter constructs a 7404 per def.
func NewHexInverter(def HexInverterDef) *HexInverter {
	return &HexInverter{Base: chip.NewBase("7404"), in: def.Inputs, out: def.Outputs}
}

// ChipBase implements the simulator's baseHolder contract.
func (c *HexInverter) ChipBase() *chip.Base { return &c.Base }

// Destroy releases no resources.
func (c *HexInverter) Destroy() {}

// RegisterDependencies declares a dependency on each of the six inputs.
func (c *HexInverter) RegisterDependencies() {
	for _, s := range c.in {
		c.DependsOn(s)
	}
}

// Process inverts each input onto its corresponding output.
func (c *HexInverter) Process() {
	for i, s := range c.in {
		c.Write(c.out[i], !c.Read(s))
	}
}

// bcdToSevenSegment is the 7447's active-low segment truth table indexed
// by the 4-bit BCD input, segments ordered a,b,c,d,e,f,g. Values 10-14 are
// the datasheet's non-BCD symbols; 15 is blank.
var bcdToSevenSegment = [16][7]bool{
	0:  {false, false, false, false, false, false, true},
	1:  {true, false, false, true, true, true, true},
	2:  {false, false, true, false, false, true, false},
	3:  {false, false, false, false, true, true, false},
	4:  {true, false, false, true, true, false, false},
	5:  {false, true, false, false, true, false, false},
	6:  {true, true, false, false, false, false, false},
	7:  {false, false, false, true, true, true, true},
	8:  {false, false, false, false, false, false, false},
	9:  {false, false, false, true, true, false, false},
	10: {true, true, true, false, false, true, false},
	11: {true, true, false, false, true, true, false},
	12: {true, false, true, true, false, false, false},
	13: {false, true, true, false, false, true, false},
	14: {true, true, true, false, false, false, false},
	15: {true, true, true, true, true, true, true},
}

// Decoder7447Def configures a 7447 BCD-to-7-segment decoder.
type Decoder7447Def struct {
	A, B, C, D   signal.Signal // BCD input, D is MSB
	LampTest     signal.Signal // active-low
	BlankingIn   signal.Signal // active-low ripple-blanking input
	Segments     [7]signal.Signal
	Debug        bool
}

// Decoder7447 is the 7447 BCD-to-7-segment decoder/driver.
type Decoder7447 struct {
	chip.Base
	def Decoder7447Def
}

// NewDecoder7447 constructs a 7447 per def.
func NewDecoder7447(def Decoder7447Def) *Decoder7447 {
	return &Decoder7447{Base: chip.NewBase("7447"), def: def}
}

// ChipBase implements the simulator's baseHolder contract.
func (c *Decoder7447) ChipBase() *chip.Base { return &c.Base }

// Destroy releases no resources.
func (c *Decoder7447) Destroy() {}

// RegisterDependencies declares this chip's BCD/control-pin dependencies.
func (c *Decoder7447) RegisterDependencies() {
	c.DependsOn(c.def.A)
	c.DependsOn(c.def.B)
	c.DependsOn(c.def.C)
	c.DependsOn(c.def.D)
	c.DependsOn(c.def.LampTest)
	c.DependsOn(c.def.BlankingIn)
}

// Process decodes the current BCD input into segment outputs, honoring
// lamp test (forces all segments on) and ripple blanking (forces all off).
func (c *Decoder7447) Process() {
	if !c.Read(c.def.LampTest) {
		for _, s := range c.def.Segments {
			c.Write(s, false)
		}
		return
	}
	if !c.Read(c.def.BlankingIn) {
		for _, s := range c.def.Segments {
			c.Write(s, true)
		}
		return
	}
	v := bcdValue(c.Read(c.def.A), c.Read(c.def.B), c.Read(c.def.C), c.Read(c.def.D))
	pattern := bcdToSevenSegment[v]
	for i, s := range c.def.Segments {
		c.Write(s, pattern[i])
	}
}

func bcdValue(a, b, cc, d bool) int {
	v := 0
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

// Decoder138Def configures a 74138 3-to-8 line decoder.
type Decoder138Def struct {
	A, B, C     signal.Signal
	G1          signal.Signal // active-high enable
	G2A, G2B    signal.Signal // active-low enables
	Outputs     [8]signal.Signal
}

// Decoder138 is the 74138 3-to-8 decoder/demultiplexer.
type Decoder138 struct {
	chip.Base
	def Decoder138Def
}

// NewDecoder138 constructs a 74138 per def.
func NewDecoder138(def Decoder138Def) *Decoder138 {
	return &Decoder138{Base: chip.NewBase("74138"), def: def}
}

// ChipBase implements the simulator's baseHolder contract.
func (c *Decoder138) ChipBase() *chip.Base { return &c.Base }

// Destroy releases no resources.
func (c *Decoder138) Destroy() {}

// RegisterDependencies declares this chip's select/enable dependencies.
func (c *Decoder138) RegisterDependencies() {
	c.DependsOn(c.def.A)
	c.DependsOn(c.def.B)
	c.DependsOn(c.def.C)
	c.DependsOn(c.def.G1)
	c.DependsOn(c.def.G2A)
	c.DependsOn(c.def.G2B)
}

// Process asserts the selected output low while every other output stays
// high, or holds all outputs high when the chip is disabled.
func (c *Decoder138) Process() {
	enabled := c.Read(c.def.G1) && !c.Read(c.def.G2A) && !c.Read(c.def.G2B)
	sel := bcdValue(c.Read(c.def.A), c.Read(c.def.B), c.Read(c.def.C), false)
	for i, o := range c.def.Outputs {
		c.Write(o, !(enabled && i == sel))
	}
}

// Mux153Def configures a 74153 dual 4:1 multiplexer (both sections).
type Mux153Def struct {
	SelA, SelB signal.Signal // shared select lines
	InhibitA   signal.Signal // active-low enable, section A
	InhibitB   signal.Signal // active-low enable, section B
	InputsA    [4]signal.Signal
	InputsB    [4]signal.Signal
	OutputA    signal.Signal
	OutputB    signal.Signal
}

// Mux153 is the 74153 dual 4-input multiplexer.
type Mux153 struct {
	chip.Base
	def Mux153Def
}

// NewMux153 constructs a 74153 per def.
func NewMux153(def Mux153Def) *Mux153 {
	return &Mux153{Base: chip.NewBase("74153"), def: def}
}

// ChipBase implements the simulator's baseHolder contract.
func (c *Mux153) ChipBase() *chip.Base { return &c.Base }

// Destroy releases no resources.
func (c *Mux153) Destroy() {}

// RegisterDependencies declares this chip's select/input/enable dependencies.
func (c *Mux153) RegisterDependencies() {
	c.DependsOn(c.def.SelA)
	c.DependsOn(c.def.SelB)
	c.DependsOn(c.def.InhibitA)
	c.DependsOn(c.def.InhibitB)
	for i := range c.def.InputsA {
		c.DependsOn(c.def.InputsA[i])
		c.DependsOn(c.def.InputsB[i])
	}
}

// Process selects one of four inputs per section using the shared select
// lines, honoring each section's independent active-low inhibit.
func (c *Mux153) Process() {
	sel := 0
	if c.Read(c.def.SelA) {
		sel |= 1
	}
	if c.Read(c.def.SelB) {
		sel |= 2
	}
	if c.Read(c.def.InhibitA) {
		c.Write(c.def.OutputA, false)
	} else {
		c.Write(c.def.OutputA, c.Read(c.def.InputsA[sel]))
	}
	if c.Read(c.def.InhibitB) {
		c.Write(c.def.OutputB, false)
	} else {
		c.Write(c.def.OutputB, c.Read(c.def.InputsB[sel]))
	}
}
