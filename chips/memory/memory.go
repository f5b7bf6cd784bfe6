// Package memory implements the simulator's static RAM, dynamic RAM and
// mask ROM chip models: 2114/6116-class SRAM, 4116-class DRAM with
// RAS/CAS multiplexed addressing, and 2316/2332/2364-class ROM with its
// output access-time delay.
package memory

import (
	"github.com/dromaius-sim/dromaius/chip"
	"github.com/dromaius-sim/dromaius/signal"
)

// SramDef configures a static RAM chip. The lengths of Address/Data
// determine the chip variant: a 2114 is
// {Address: 10 lines, Data: 4 lines}, a 6116 is {Address: 11 lines,
// Data: 8 lines}.
type SramDef struct {
	Address signal.Group
	Data    signal.Group
	CEB     signal.Signal // chip enable, active low
	RW      signal.Signal // high = read, low = write
}

// Sram is a static RAM: reads or writes its Data bus combinationally
// while CEB is asserted, with no access-time delay (matching the
// original's treatment of SRAM as effectively instantaneous relative to
// a 6502 bus cycle).
type Sram struct {
	chip.Base
	def  SramDef
	data []byte
}

// NewSram constructs an Sram sized to 2^len(def.Address) bytes.
func NewSram(def SramDef) *Sram {
	return &Sram{
		Base: chip.NewBase("sram"),
		def:  def,
		data: make([]byte, 1<<uint(def.Address.Len())),
	}
}

func (c *Sram) ChipBase() *chip.Base { return &c.Base }
func (c *Sram) Destroy()             {}

func (c *Sram) RegisterDependencies() {
	c.DependsOnGroup(c.def.Address)
	c.DependsOnGroup(c.def.Data)
	c.DependsOn(c.def.CEB)
	c.DependsOn(c.def.RW)
}

// Peek reads the data array directly, bypassing the signal bus. Used by a
// CPU chip's bus adapter to bridge a synchronous, Tick()-based core onto
// this otherwise signal-driven chip without forcing the CPU itself to be
// simulated gate-by-gate.
func (c *Sram) Peek(addr uint16) uint8 {
	return c.data[int(addr)&(len(c.data)-1)]
}

// Poke writes the data array directly; see Peek.
func (c *Sram) Poke(addr uint16, val uint8) {
	c.data[int(addr)&(len(c.data)-1)] = val
}

func (c *Sram) Process() {
	if c.Read(c.def.CEB) {
		c.ReleaseGroup(c.def.Data)
		return
	}

	addr := c.ReadGroup(c.def.Address)
	if c.Read(c.def.RW) {
		c.WriteGroup(c.def.Data, uint32(c.data[addr]))
	} else {
		c.data[addr] = byte(c.ReadGroup(c.def.Data))
		c.ReleaseGroup(c.def.Data)
	}
}

// RomDef configures a mask ROM chip. Address/Data widths and the
// contents length select the variant: a 2316 is 2KB over 11 address
// lines with CS1B/CS2B/CS3, a 2332 is 4KB over 12 lines with
// CS1B/CS3, a 2364 is 8KB over 13 lines with a single CS1B.
type RomDef struct {
	Address  signal.Group
	Data     signal.Group
	CS1B     signal.Signal  // active low, always present
	CS2B     *signal.Signal // active low, nil on chips without it (2332/2364)
	CS3      *signal.Signal // active high, nil on chips without it (2364)
	Contents []byte
	// AccessTimePS is the chip's output access delay, in picoseconds
	// (60ns on the datasheet); converted to ticks via tickDurationPS.
	AccessTimePS   int64
	TickDurationPS int64
}

// Rom is a mask ROM: selected and addressed combinationally, but its
// data bus only becomes valid access-time ticks after the address (or
// chip-select lines) last changed, mirroring the 63xx family's
// output-delay behavior.
type Rom struct {
	chip.Base
	def         RomDef
	accessTicks int64
	lastAddress int
	pending     bool
	readyAt     int64
}

// NewRom constructs a Rom. def.Contents is used directly (not copied);
// callers load ROM images before binding the chip.
func NewRom(def RomDef) *Rom {
	ticks := int64(0)
	if def.TickDurationPS > 0 {
		ticks = def.AccessTimePS / def.TickDurationPS
	}
	return &Rom{
		Base:        chip.NewBase("rom"),
		def:         def,
		accessTicks: ticks,
		lastAddress: -1,
	}
}

func (c *Rom) ChipBase() *chip.Base { return &c.Base }
func (c *Rom) Destroy()             {}

func (c *Rom) RegisterDependencies() {
	c.DependsOnGroup(c.def.Address)
	c.DependsOn(c.def.CS1B)
	if c.def.CS2B != nil {
		c.DependsOn(*c.def.CS2B)
	}
	if c.def.CS3 != nil {
		c.DependsOn(*c.def.CS3)
	}
}

// Peek reads Contents directly; see Sram.Peek.
func (c *Rom) Peek(addr uint16) uint8 {
	return c.def.Contents[int(addr)&(len(c.def.Contents)-1)]
}

// Poke is a no-op: ROM contents can't be written by the bus.
func (c *Rom) Poke(addr uint16, val uint8) {}

func (c *Rom) selected() bool {
	if c.Read(c.def.CS1B) {
		return false
	}
	if c.def.CS2B != nil && c.Read(*c.def.CS2B) {
		return false
	}
	if c.def.CS3 != nil && !c.Read(*c.def.CS3) {
		return false
	}
	return true
}

func (c *Rom) selectChanged() bool {
	if c.Changed(c.def.CS1B) {
		return true
	}
	if c.def.CS2B != nil && c.Changed(*c.def.CS2B) {
		return true
	}
	if c.def.CS3 != nil && c.Changed(*c.def.CS3) {
		return true
	}
	return false
}

// Process implements the 63xx family's access-time-delayed read: an
// address or select change (re)starts the delay instead of producing
// data immediately, matching chip_rom.c's schedule_timestamp logic.
func (c *Rom) Process() {
	if !c.selected() {
		c.ReleaseGroup(c.def.Data)
		c.pending = false
		return
	}

	addr := int(c.ReadGroup(c.def.Address))
	if c.selectChanged() || addr != c.lastAddress {
		c.lastAddress = addr
		c.pending = true
		c.readyAt = c.CurrentTick() + c.accessTicks
		c.Schedule(c.readyAt)
		return
	}

	if c.pending {
		if c.CurrentTick() < c.readyAt {
			c.Schedule(c.readyAt)
			return
		}
		c.pending = false
	}
	c.WriteGroup(c.def.Data, uint32(c.def.Contents[addr]))
}

// Dram4116x8Def configures a bank of eight parallel MK4116 DRAM chips
// addressed together, matching the original's choice to model the PET's
// 8-chip DRAM bank as a single component with an 8-bit data path rather
// than eight separate 1-bit chips.
type Dram4116x8Def struct {
	Address        signal.Group // 7-bit row/column address, multiplexed
	DataIn         signal.Group // 8-bit
	DataOut        signal.Group // 8-bit
	WEB            signal.Signal
	RASB           signal.Signal
	CASB           signal.Signal
	AccessTimePS   int64
	TickDurationPS int64
}

type dramState int

const (
	dramIdle dramState = iota
	dramOutputBegin
	dramOutput
)

// Dram4116x8 models eight parallel 16Kx1 MK4116 DRAM chips as a single
// 128x128-byte array, addressed via a RAS/CAS-multiplexed 7-bit bus.
// Refresh cycles are not modeled, matching the original's own choice.
type Dram4116x8 struct {
	chip.Base
	def         Dram4116x8Def
	accessTicks int64
	data        [128 * 128]byte
	row, col    byte
	doLatch     byte
	state       dramState
}

// NewDram4116x8 constructs a Dram4116x8.
func NewDram4116x8(def Dram4116x8Def) *Dram4116x8 {
	ticks := int64(0)
	if def.TickDurationPS > 0 {
		ticks = def.AccessTimePS / def.TickDurationPS
	}
	return &Dram4116x8{
		Base:        chip.NewBase("dram-4116x8"),
		def:         def,
		accessTicks: ticks,
	}
}

func (c *Dram4116x8) ChipBase() *chip.Base { return &c.Base }
func (c *Dram4116x8) Destroy()             {}

func (c *Dram4116x8) RegisterDependencies() {
	c.DependsOn(c.def.RASB)
	c.DependsOn(c.def.CASB)
	c.DependsOn(c.def.WEB)
}

// Process ports chip_8x4116_dram_process's row/column latch-on-falling-
// edge state machine directly: RAS latches the row address, CAS latches
// the column (performing an early write if WE is already asserted, or
// else beginning the output-delay state machine for a read), and a
// late write (WE falling while RAS/CAS both asserted) writes directly.
func (c *Dram4116x8) Process() {
	rasB := c.Read(c.def.RASB)
	casB := c.Read(c.def.CASB)

	if !rasB && c.Changed(c.def.RASB) {
		c.row = byte(c.ReadGroup(c.def.Address))
		return
	}

	if !rasB && !casB && c.Changed(c.def.CASB) {
		c.col = byte(c.ReadGroup(c.def.Address))
		if !c.Read(c.def.WEB) {
			c.data[int(c.row)*128+int(c.col)] = byte(c.ReadGroup(c.def.DataIn))
		} else {
			c.state = dramOutputBegin
			c.Schedule(c.CurrentTick() + c.accessTicks)
		}
		return
	}

	if !rasB && !casB && !c.Read(c.def.WEB) && c.Changed(c.def.WEB) {
		c.data[int(c.row)*128+int(c.col)] = byte(c.ReadGroup(c.def.DataIn))
		return
	}

	if c.state == dramOutputBegin {
		c.doLatch = c.data[int(c.row)*128+int(c.col)]
		c.WriteGroup(c.def.DataOut, uint32(c.doLatch))
		c.state = dramOutput
	}

	if c.state == dramOutput {
		c.WriteGroup(c.def.DataOut, uint32(c.doLatch))
	}

	if c.state == dramOutput && casB {
		c.ReleaseGroup(c.def.DataOut)
		c.state = dramIdle
	}
}
