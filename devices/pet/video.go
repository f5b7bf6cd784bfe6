package pet

import (
	"github.com/dromaius-sim/dromaius/chip"
	"github.com/dromaius-sim/dromaius/signal"
)

// charWidth/charHeight/cols/rows describe the PET 2001N's 40x25 text
// screen, each character cell rendered from an 8x8 bitmap held in the
// character-generator ROM, giving a 320x200 raster.
const (
	charWidth  = 8
	charHeight = 8
	textCols   = 40
	textRows   = 25
	rasterW    = textCols * charWidth
	rasterH    = textRows * charHeight
)

// pixelSource is the subset of memory.Sram/memory.Rom's bypass interface
// videoTiming needs: direct reads of screen RAM and the character
// generator, the same way a CPU chip's bus adapter bypasses the pool.
type pixelSource interface {
	Peek(addr uint16) uint8
}

// videoTimingDef configures a videoTiming chip.
type videoTimingDef struct {
	Video     signal.Signal // output, sampled by chips/crt once per pixel tick
	VertDrive signal.Signal // output, level, false during vertical retrace
	HorzDrive signal.Signal // output, pulsed once per scanline

	VRAM    pixelSource // screen RAM, one character code per cell
	CharROM pixelSource // 2KB character generator, 8 bytes per glyph

	PixelIntervalPS int64
	TickDurationPS  int64
}

// videoTiming is the PET's video-timing chain (character-ROM address
// generator, shift register and sync counters) collapsed into a single
// chip: chips/crt has no pixel-clock input of its own, self-pacing
// instead from its own PixelIntervalPS, so this chip paces on that same
// interval to stay in lockstep and computes Video directly from the
// current raster position rather than reproducing the original's
// dozen-odd counter/shift-register parts gate by gate.
type videoTiming struct {
	chip.Base
	def videoTimingDef

	x, y int

	pixelIntervalTicks int64
	nextAction         int64
}

// newVideoTiming constructs a videoTiming chip. VertDrive and HorzDrive
// default high/low respectively (frame start, beam at top-left) the way
// the original's sync chain powers up.
func newVideoTiming(def videoTimingDef) *videoTiming {
	ticks := def.PixelIntervalPS / def.TickDurationPS
	if ticks < 1 {
		ticks = 1
	}
	return &videoTiming{
		Base:               chip.NewBase("video-timing"),
		def:                def,
		pixelIntervalTicks: ticks,
	}
}

func (c *videoTiming) ChipBase() *chip.Base { return &c.Base }
func (c *videoTiming) Destroy()             {}

// RegisterDependencies declares no input dependencies: like an
// oscillator, this chip is driven purely by its own schedule.
func (c *videoTiming) RegisterDependencies() {}

// glyphBit reads the character at the current cell from VRAM, looks up
// its bitmap row in the character ROM, and returns whether the current
// pixel column is lit.
func (c *videoTiming) glyphBit() bool {
	col, row := c.x/charWidth, c.y/charHeight
	code := c.def.VRAM.Peek(uint16(row*textCols + col))
	line := c.def.CharROM.Peek(uint16(code)*charHeight + uint16(c.y%charHeight))
	bitCol := uint(7 - c.x%charWidth)
	return line&(1<<bitCol) != 0
}

// Process advances the beam by one pixel per invocation: it writes the
// current cell's pixel onto Video, then either steps the column or, at
// the end of a scanline, pulses HorzDrive (and, at the end of a frame,
// holds VertDrive low for one pixel interval) before scheduling the next
// pixel.
func (c *videoTiming) Process() {
	if c.nextAction > c.CurrentTick() {
		c.Schedule(c.nextAction)
		return
	}

	if c.y >= rasterH {
		// One-pixel-interval vertical retrace pulse, then start the next frame.
		c.Write(c.def.VertDrive, false)
		c.y = 0
		c.nextAction = c.CurrentTick() + c.pixelIntervalTicks
		c.Schedule(c.nextAction)
		return
	}
	c.Write(c.def.VertDrive, true)
	c.Write(c.def.Video, c.glyphBit())

	c.x++
	if c.x >= rasterW {
		c.x = 0
		c.y++
		// HorzDrive needs a rising edge each scanline; hold it low for
		// this pixel interval, then let the next Process call bring it
		// back high.
		c.Write(c.def.HorzDrive, false)
	} else {
		c.Write(c.def.HorzDrive, true)
	}
	c.nextAction = c.CurrentTick() + c.pixelIntervalTicks
	c.Schedule(c.nextAction)
}
