// Package hd44780 implements the Hitachi HD44780 dot-matrix LCD
// controller/driver: instruction decode, the DDRAM/CGRAM address counter
// with its virtual/physical address mapping for two-line displays, the
// 4-bit and 8-bit MPU transfer state machines, display shift, and
// blinking-cursor timing. Character rasterization (the A00 font ROM
// lookup) is not modelled: the chip exposes DDRAM(), Dims(), Cursor(),
// ShiftDelta() and DisplayEnabled(), and no package in this module
// renders them.
package hd44780

import (
	"github.com/dromaius-sim/dromaius/chip"
	"github.com/dromaius-sim/dromaius/signal"
)

const (
	ddramSize = 80
	cgramSize = 64
)

// cursorBlinkInterval is 409.6ms expressed in the simulator's
// picosecond tick unit, per the HD44780U datasheet's blink frequency at
// the standard input clock.
const cursorBlinkIntervalPS = 409600 * 1_000_000

type ramMode int

const (
	ramDDRAM ramMode = iota
	ramCGRAM
)

type dataCycle int

const (
	cycle4BitHi dataCycle = iota
	cycle4BitLo
	cycle8Bit
)

// Def configures a Chip. Data carries the 8 physical D0-D7 lines; in
// 4-bit mode the MPU uses only the upper nibble (D4-D7) across two bus
// cycles, which this package derives by slicing Data itself — the
// real HD44780 wires both modes onto the same eight pins.
type Def struct {
	Data signal.Group // 8-bit data bus, D0-D7

	RS     signal.Signal
	RW     signal.Signal
	Enable signal.Signal

	TickHz int64 // simulator ticks per second, for cursor-blink scheduling; 0 disables blink scheduling
}

// Chip is an HD44780 LCD controller.
type Chip struct {
	chip.Base
	def  Def
	db47 signal.Group
	db03 signal.Group

	regIR uint8
	regData uint8
	regAC   uint8

	ddram [ddramSize]byte
	cgram [cgramSize]byte

	ddramAddr  uint8
	cgramMask  uint8
	addrDelta  int8
	ramMode    ramMode

	dataLen8   bool
	cycle      dataCycle
	dataIn     uint8

	displayEnabled bool
	displayWidth   uint8
	displayHeight  uint8
	charWidth      uint8
	charHeight     uint8

	shiftEnabled bool
	shiftDelta   int

	cursorEnabled bool
	cursorBlink   bool
	cursorBlock   bool

	cursorBlinkCycles int64
	cursorBlinkTime   int64

	refreshPending bool
}

// New constructs a Chip and runs the HD44780's internal power-on reset
// sequence (clear display, 8-bit/1-line function set, display off,
// increment-mode entry), matching chip_hd44780_create.
func New(def Def) *Chip {
	c := &Chip{Base: chip.NewBase("hd44780"), def: def}
	c.db03 = def.Data[0:4]
	c.db47 = def.Data[4:8]
	if def.TickHz > 0 {
		c.cursorBlinkCycles = cursorBlinkIntervalPS * def.TickHz / 1_000_000_000_000
		if c.cursorBlinkCycles == 0 {
			c.cursorBlinkCycles = 1
		}
	}

	c.executeClearDisplay()
	c.executeFunctionSet(true, false, false)
	c.executeDisplayOnOffControl(false, false, false)
	c.executeEntryModeSet(true, false)
	c.refreshPending = false
	return c
}

func (c *Chip) ChipBase() *chip.Base { return &c.Base }
func (c *Chip) Destroy()             {}

func (c *Chip) RegisterDependencies() {
	c.DependsOnGroup(c.def.Data)
	c.DependsOn(c.def.RS)
	c.DependsOn(c.def.RW)
	c.DependsOn(c.def.Enable)
}

// DDRAM returns a copy of display data RAM, addressed physically (0-79,
// continuous across both lines with no virtual gap).
func (c *Chip) DDRAM() [ddramSize]byte { return c.ddram }

// Dims returns the configured display geometry in characters and pixels
// per character cell.
func (c *Chip) Dims() (width, height, charWidth, charHeight uint8) {
	return c.displayWidth, c.displayHeight, c.charWidth, c.charHeight
}

// DisplayEnabled reports whether the display-on bit is set.
func (c *Chip) DisplayEnabled() bool { return c.displayEnabled }

// ShiftDelta returns the current display shift offset, in characters.
func (c *Chip) ShiftDelta() int { return c.shiftDelta }

// Cursor returns the address counter's virtual DDRAM address and
// whether the cursor should currently be drawn (enabled, in DDRAM mode,
// and — if blinking — in its visible blink phase).
func (c *Chip) Cursor() (addr uint8, visible bool) {
	visible = c.cursorEnabled && c.ramMode == ramDDRAM && (!c.cursorBlink || !c.cursorBlock)
	return c.regAC, visible
}

func (c *Chip) ddramVirtualToPhysical(addr int) uint8 {
	if c.displayHeight == 1 {
		return uint8(addr)
	}
	if addr >= 64 {
		return uint8(addr - 24)
	} else if addr >= 40 {
		return 64
	}
	return uint8(addr)
}

func (c *Chip) ddramPhysicalToVirtual(addr uint8) uint8 {
	if c.displayHeight == 1 {
		return addr
	}
	if addr >= 40 {
		return addr + 24
	}
	return addr
}

func (c *Chip) ddramValidVirtualAddress(addr int) uint8 {
	if c.displayHeight == 1 {
		return uint8(((addr % 80) + 80) % 80)
	}
	result := uint8(((addr%104)+104)%104)
	if result >= 40 && result < 64 {
		return 64
	}
	return result
}

func ddramValidPhysicalAddress(addr int) uint8 {
	return uint8(((addr % 80) + 80) % 80)
}

func cgramValidAddress(addr int) uint8 {
	return uint8(addr) & 0x3f
}

func (c *Chip) ddramSetAddress(address uint8) {
	c.regAC = c.ddramValidVirtualAddress(int(address))
	c.ddramAddr = c.ddramVirtualToPhysical(int(c.regAC))
	c.regData = c.ddram[c.ddramAddr]
	c.ramMode = ramDDRAM
}

func (c *Chip) cgramSetAddress(address uint8) {
	c.regAC = cgramValidAddress(int(address))
	c.regData = c.cgram[c.regAC]
	c.ramMode = ramCGRAM
}

func (c *Chip) incrementDecrementAddress() {
	switch c.ramMode {
	case ramDDRAM:
		c.ddramAddr = ddramValidPhysicalAddress(int(c.ddramAddr) + int(c.addrDelta))
		c.regAC = c.ddramPhysicalToVirtual(c.ddramAddr)
		c.regData = c.ddram[c.ddramAddr]
	case ramCGRAM:
		c.regAC = cgramValidAddress(int(c.regAC) + int(c.addrDelta))
		c.regData = c.cgram[c.regAC]
	}
}

func (c *Chip) executeClearDisplay() {
	for i := range c.ddram {
		c.ddram[i] = 0x20
	}
	c.ddramSetAddress(0)
	c.shiftDelta = 0
	c.addrDelta = 1
	c.refreshPending = true
}

func (c *Chip) executeReturnHome() {
	c.ddramSetAddress(0)
	c.shiftDelta = 0
	c.refreshPending = true
}

func (c *Chip) executeEntryModeSet(incOrDec, shift bool) {
	if incOrDec {
		c.addrDelta = 1
	} else {
		c.addrDelta = -1
	}
	c.shiftEnabled = shift
}

func (c *Chip) executeDisplayOnOffControl(display, cursor, cursorBlink bool) {
	c.displayEnabled = display
	c.cursorEnabled = cursor
	c.cursorBlink = cursorBlink
	c.refreshPending = true

	if cursorBlink && c.cursorBlinkCycles > 0 {
		c.cursorBlinkTime = c.CurrentTick() + c.cursorBlinkCycles
		c.Schedule(c.cursorBlinkTime)
	}
}

func (c *Chip) executeCursorOrDisplayShift(displayOrCursor, rightOrLeft bool) {
	if displayOrCursor {
		if c.shiftEnabled {
			if rightOrLeft {
				c.shiftDelta--
			} else {
				c.shiftDelta++
			}
			c.shiftDelta = ((c.shiftDelta+80)%160) - 80
		}
	} else if c.ramMode == ramDDRAM {
		delta := -1
		if rightOrLeft {
			delta = 1
		}
		c.ddramAddr = ddramValidPhysicalAddress(int(c.ddramAddr) + delta)
		c.regAC = c.ddramPhysicalToVirtual(c.ddramAddr)
	}
	c.refreshPending = true
}

func (c *Chip) executeFunctionSet(dl, n, f bool) {
	c.dataLen8 = dl
	if dl {
		c.cycle = cycle8Bit
	} else {
		c.cycle = cycle4BitHi
	}

	c.displayWidth = 16
	if n {
		c.displayHeight = 2
	} else {
		c.displayHeight = 1
	}
	c.charWidth = 5
	if f {
		c.charHeight = 10
	} else {
		c.charHeight = 8
	}

	c.refreshPending = true
	if f {
		c.cgramMask = 0x03
	} else {
		c.cgramMask = 0x07
	}
}

func (c *Chip) decodeInstruction() {
	switch {
	case c.regIR&0x80 != 0:
		c.ddramSetAddress(c.regIR & 0x7f)
		c.refreshPending = true
	case c.regIR&0x40 != 0:
		c.cgramSetAddress(c.regIR & 0x3f)
	case c.regIR&0x20 != 0:
		c.executeFunctionSet(c.regIR&0x10 != 0, c.regIR&0x08 != 0, c.regIR&0x04 != 0)
	case c.regIR&0x10 != 0:
		c.executeCursorOrDisplayShift(c.regIR&0x08 != 0, c.regIR&0x04 != 0)
	case c.regIR&0x08 != 0:
		c.executeDisplayOnOffControl(c.regIR&0x04 != 0, c.regIR&0x02 != 0, c.regIR&0x01 != 0)
	case c.regIR&0x04 != 0:
		c.executeEntryModeSet(c.regIR&0x02 != 0, c.regIR&0x01 != 0)
	case c.regIR&0x02 != 0:
		c.executeReturnHome()
	case c.regIR&0x01 != 0:
		c.executeClearDisplay()
	}
}

func (c *Chip) storeData() {
	switch c.ramMode {
	case ramCGRAM:
		c.cgram[c.regAC] = c.regData
	case ramDDRAM:
		c.ddram[c.ddramVirtualToPhysical(int(c.regAC))] = c.regData
		c.refreshPending = true
	}
	c.incrementDecrementAddress()
}

// writeNibble drives the upper 4 bits of Data (DB4-DB7) from the low
// nibble of v, releasing the lower 4 bits (DB0-DB3) — the real MPU
// interface leaves them floating during a 4-bit transfer.
func (c *Chip) writeNibble(v uint8) {
	c.WriteGroupMasked(c.def.Data, uint32(v&0x0f)<<4, 0xf0)
	c.ReleaseGroup(c.db03)
}

func (c *Chip) writeByte(v uint8) {
	c.WriteGroup(c.def.Data, uint32(v))
}

func (c *Chip) readNibble() uint8 {
	return uint8(c.ReadGroup(c.db47))
}

func (c *Chip) readByte() uint8 {
	return uint8(c.ReadGroup(c.def.Data))
}

// outputRegisterToDatabus drives the data bus from reg_data (RS high)
// or the busy-flag/address-counter byte (RS low; the busy flag itself
// is never modeled, matching the datasheet note every access completes
// instantly on the enable edge). final selects whether this is the
// concluding half of a 4-bit transfer.
func (c *Chip) outputRegisterToDatabus(final bool) bool {
	var data uint8
	if c.Read(c.def.RS) {
		data = c.regData
	} else {
		data = c.regAC & 0x7f
	}

	switch c.cycle {
	case cycle4BitHi:
		c.writeNibble((data & 0xf0) >> 4)
		if final {
			c.cycle = cycle4BitLo
		}
		return false
	case cycle4BitLo:
		c.writeNibble(data & 0x0f)
		if final {
			c.cycle = cycle4BitHi
		}
		return true
	case cycle8Bit:
		c.writeByte(data)
		return true
	default:
		return false
	}
}

func (c *Chip) inputFromDatabus() bool {
	switch c.cycle {
	case cycle4BitHi:
		c.dataIn = c.readNibble() << 4
		c.cycle = cycle4BitLo
		return false
	case cycle4BitLo:
		c.dataIn = c.dataIn | (c.readNibble() & 0x0f)
		c.cycle = cycle4BitHi
		return true
	case cycle8Bit:
		c.dataIn = c.readByte()
		return true
	default:
		return false
	}
}

func (c *Chip) processPositiveEnableEdge() {
	if c.Read(c.def.RW) {
		c.outputRegisterToDatabus(false)
	}
}

func (c *Chip) processNegativeEnableEdge() {
	if c.Read(c.def.RW) {
		if c.outputRegisterToDatabus(true) {
			c.incrementDecrementAddress()
		}
		return
	}

	if c.inputFromDatabus() {
		if !c.Read(c.def.RS) {
			c.regIR = c.dataIn
			c.decodeInstruction()
		} else {
			c.regData = c.dataIn
			c.storeData()
		}
	}
}

// Process evaluates one HD44780 clock edge. Besides the enable-line
// handshake, it also drives blinking-cursor timing, the one piece of
// state that changes on a wall-clock schedule rather than a bus access.
func (c *Chip) Process() {
	c.refreshPending = false

	if c.cursorEnabled && c.cursorBlink && c.cursorBlinkCycles > 0 && c.cursorBlinkTime <= c.CurrentTick() {
		c.cursorBlock = !c.cursorBlock
		c.refreshPending = true
		c.cursorBlinkTime = c.CurrentTick() + c.cursorBlinkCycles
		c.Schedule(c.cursorBlinkTime)
	}

	if !c.Changed(c.def.Enable) {
		return
	}

	if c.Read(c.def.Enable) {
		c.processPositiveEnableEdge()
	} else {
		c.processNegativeEnableEdge()
	}
}

// RefreshPending reports whether DDRAM/CGRAM, the cursor, or the shift
// offset changed during the most recent Process call, for a renderer to
// know when a re-render is worthwhile.
func (c *Chip) RefreshPending() bool { return c.refreshPending }
