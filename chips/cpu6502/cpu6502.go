// Package cpu6502 wraps the 6502/6510/65C02 micro-sequencer core from the
// cpu package behind the signal-pool chip.Chip contract: Process ticks the
// core once per clock edge, and a bus adapter bridges its synchronous
// memory.Ram interface onto a small address-decoded device map while
// mirroring every bus transaction onto the pool's address/data/R-W
// signals so the rest of the netlist (chip-select decode in a VIA or PIA,
// an LCD controller snooping the bus, etc.) observes the CPU's activity
// the same way it observes any other chip's output.
package cpu6502

import (
	"github.com/dromaius-sim/dromaius/chip"
	"github.com/dromaius-sim/dromaius/cpu"
	"github.com/dromaius-sim/dromaius/memory"
	"github.com/dromaius-sim/dromaius/signal"
)

// BusDevice is implemented by memory chips (chips/memory.Sram, .Rom) that
// want to be addressable from a cpu6502.Chip without being driven purely
// through the discrete-event signal pool. The CPU core performs its
// actual reads and writes through this interface, synchronously, exactly
// as the original cpu.Chip does against an in-process memory.Bank; the
// pool mirroring happens alongside it, not instead of it.
type BusDevice interface {
	Peek(addr uint16) uint8
	Poke(addr uint16, val uint8)
}

// Mapping assigns a BusDevice to a range of the CPU's 16-bit address
// space. Addresses are passed to the device unmodified; devices mask
// them down to their own size (mirroring as real decode logic would).
// Size is a plain int (not uint16) so a single Mapping can cover the
// entire 64K address space (65536 doesn't fit a uint16).
type Mapping struct {
	Base   uint16
	Size   int
	Device BusDevice
}

// Def configures a Chip.
type Def struct {
	CPUType cpu.CPUType
	Clock   signal.Signal // PHI2; the core ticks once per rising edge

	Address signal.Group // 16 lines
	Data    signal.Group // 8 lines
	RWB     signal.Signal
	Sync    signal.Signal // driven high during an opcode fetch cycle

	IRQB signal.Signal // active low
	NMIB signal.Signal // active low
	RDY  signal.Signal // active high holds the CPU in place

	Mappings     []Mapping
	OpenBusValue uint8
}

// Chip wraps a cpu.Chip core.
type Chip struct {
	chip.Base
	def     Def
	core    *cpu.Chip
	bus     *busAdapter
	prevClk bool
	lastErr error
}

// New constructs a Chip and powers on its core (which runs the core's
// reset sequence synchronously against the bus adapter, exactly as
// cpu.Init always does).
func New(def Def) (*Chip, error) {
	c := &Chip{Base: chip.NewBase("cpu6502"), def: def}
	c.bus = &busAdapter{
		base:     &c.Base,
		address:  def.Address,
		data:     def.Data,
		rwb:      def.RWB,
		mappings: def.Mappings,
		openBus:  def.OpenBusValue,
	}
	core, err := cpu.Init(&cpu.ChipDef{
		Cpu: def.CPUType,
		Ram: c.bus,
		Irq: &lineIRQ{base: &c.Base, line: def.IRQB, activeLow: true},
		Nmi: &lineIRQ{base: &c.Base, line: def.NMIB, activeLow: true},
		Rdy: &lineIRQ{base: &c.Base, line: def.RDY, activeLow: false},
	})
	if err != nil {
		return nil, err
	}
	c.core = core
	return c, nil
}

// ChipBase implements the simulator's baseHolder contract.
func (c *Chip) ChipBase() *chip.Base { return &c.Base }

// Destroy releases no resources.
func (c *Chip) Destroy() {}

// RegisterDependencies declares the clock as this chip's only signal
// dependency; IRQB/NMIB/RDY are sampled inside Tick itself (the core
// checks them every cycle regardless of whether they changed this tick).
func (c *Chip) RegisterDependencies() {
	c.DependsOn(c.def.Clock)
}

// Core exposes the wrapped cpu.Chip for register introspection (monitor,
// execctx) and explicit Reset() calls.
func (c *Chip) Core() *cpu.Chip { return c.core }

// Err returns the error from the most recently ticked clock cycle, if
// any — typically cpu.HaltOpcode once an illegal/halting opcode runs.
func (c *Chip) Err() error { return c.lastErr }

// Process ticks the core once per rising edge of Clock.
func (c *Chip) Process() {
	clk := c.Read(c.def.Clock)
	rising := clk && !c.prevClk
	c.prevClk = clk
	if !rising {
		return
	}

	c.lastErr = c.core.Tick()
	c.core.TickDone()
	c.Write(c.def.Sync, c.core.InstructionDone())
}

// lineIRQ adapts a pool signal into an irq.Sender (Raised() bool),
// without needing to import the irq package for its interface type.
type lineIRQ struct {
	base      *chip.Base
	line      signal.Signal
	activeLow bool
}

func (l *lineIRQ) Raised() bool {
	if !l.base.Bound() {
		// Only reachable during cpu.Init's synchronous power-on reset,
		// before the chip has been registered with a Simulator: no
		// interrupt line is meaningful yet.
		return false
	}
	v := l.base.Read(l.line)
	if l.activeLow {
		return !v
	}
	return v
}

// busAdapter implements memory.Ram over a small statically-mapped device
// table, mirroring every transaction onto the pool's bus signals.
type busAdapter struct {
	base     *chip.Base
	address  signal.Group
	data     signal.Group
	rwb      signal.Signal
	mappings []Mapping
	openBus  uint8
	lastData uint8
}

func (b *busAdapter) find(addr uint16) BusDevice {
	for _, m := range b.mappings {
		end := int(m.Base) + m.Size
		if int(addr) >= int(m.Base) && int(addr) < end {
			return m.Device
		}
	}
	return nil
}

func (b *busAdapter) Read(addr uint16) uint8 {
	val := b.openBus
	if d := b.find(addr); d != nil {
		val = d.Peek(addr)
	}
	b.lastData = val
	b.mirror(addr, val, true)
	return val
}

func (b *busAdapter) Write(addr uint16, val uint8) {
	if d := b.find(addr); d != nil {
		d.Poke(addr, val)
	}
	b.lastData = val
	b.mirror(addr, val, false)
}

func (b *busAdapter) PowerOn() {}

func (b *busAdapter) Parent() memory.Bank { return nil }

func (b *busAdapter) DatabusVal() uint8 { return b.lastData }

func (b *busAdapter) mirror(addr uint16, val uint8, isRead bool) {
	if !b.base.Bound() {
		// Reachable only during cpu.Init's synchronous power-on reset,
		// before this chip has a pool to mirror onto.
		return
	}
	b.base.WriteGroup(b.address, uint32(addr))
	b.base.WriteGroup(b.data, uint32(val))
	b.base.Write(b.rwb, isRead)
}

var _ memory.Ram = (*busAdapter)(nil)
