// Package crt implements a raster-scan CRT display chip: it samples a
// single-bit VIDEO input once per pixel clock and writes the sampled
// pixel into an RGBA frame buffer, tracking beam position from the
// horizontal and vertical drive signals of the video timing chain.
package crt

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/dromaius-sim/dromaius/chip"
	"github.com/dromaius-sim/dromaius/signal"
)

// colorOn/colorOff are the two pixel colors a 1-bit VIDEO line resolves
// to, matching a monochrome phosphor CRT's on/off appearance.
var (
	colorOn  = color.RGBA{0x55, 0xff, 0x55, 0xff}
	colorOff = color.RGBA{0x11, 0x11, 0x11, 0xff}
)

// Def configures a Chip.
type Def struct {
	Video     signal.Signal // sampled once per pixel tick
	VertDrive signal.Signal // low during vertical retrace
	HorzDrive signal.Signal // positive edge starts horizontal retrace

	Width, Height int

	// PixelIntervalPS is the pixel clock period; VertOverscanPS and
	// HorzOverscanPS are the beam-retrace delays that skip the blanked
	// portion of the scan after a vertical/horizontal drive edge, all
	// expressed in picoseconds and converted through the owning
	// simulator's tick duration at construction time.
	PixelIntervalPS int64
	VertOverscanPS  int64
	HorzOverscanPS  int64
	TickDurationPS  int64
}

// Chip is the raster-scan CRT. Process never releases the signals it
// reads (Video/VertDrive/HorzDrive are inputs only); it drives no pool
// outputs, only the in-memory frame buffer exposed via Frame/Snapshot.
type Chip struct {
	chip.Base
	def Def

	frame *image.RGBA

	x, y int

	pixelIntervalTicks int64
	vertOverscanTicks  int64
	horzOverscanTicks  int64
	nextAction         int64
}

// New constructs a Chip with a zeroed frame buffer sized def.Width x
// def.Height.
func New(def Def) *Chip {
	ticks := func(ps int64) int64 {
		if def.TickDurationPS <= 0 {
			return 0
		}
		t := ps / def.TickDurationPS
		if t < 1 {
			t = 1
		}
		return t
	}
	return &Chip{
		Base:                chip.NewBase("crt"),
		def:                 def,
		frame:               image.NewRGBA(image.Rect(0, 0, def.Width, def.Height)),
		pixelIntervalTicks:  ticks(def.PixelIntervalPS),
		vertOverscanTicks:   ticks(def.VertOverscanPS),
		horzOverscanTicks:   ticks(def.HorzOverscanPS),
	}
}

// ChipBase implements the simulator's baseHolder contract.
func (c *Chip) ChipBase() *chip.Base { return &c.Base }

// Destroy releases no resources.
func (c *Chip) Destroy() {}

// RegisterDependencies declares the video and drive lines as the chip's
// only dependencies; pixel-clock self-scheduling drives the rest.
func (c *Chip) RegisterDependencies() {
	c.DependsOn(c.def.Video)
	c.DependsOn(c.def.VertDrive)
	c.DependsOn(c.def.HorzDrive)
}

// Frame returns the chip's live frame buffer. Callers must not mutate
// it; use Snapshot for a copy safe to hold across timesteps.
func (c *Chip) Frame() *image.RGBA { return c.frame }

// Snapshot returns a copy of the current frame buffer, safe for a host
// to read at its own pace while the simulator keeps running.
func (c *Chip) Snapshot() *image.RGBA {
	dup := image.NewRGBA(c.frame.Bounds())
	copy(dup.Pix, c.frame.Pix)
	return dup
}

// ScaledSnapshot returns a copy of the current frame buffer magnified by
// an integer factor (nearest-neighbor, so the scanlines and pixel edges
// a CRT phosphor would show stay sharp rather than blurring), for a host
// display surface sized larger than the native raster. factor <= 1
// behaves exactly like Snapshot.
func (c *Chip) ScaledSnapshot(factor int) *image.RGBA {
	if factor <= 1 {
		return c.Snapshot()
	}
	bounds := c.frame.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx()*factor, bounds.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), c.frame, bounds, draw.Src, nil)
	return dst
}

// Process advances the raster position by at most one pixel/retrace step
// per invocation, exactly mirroring the original hardware's chip: in
// vertical retrace the beam is held at the top; a positive horizontal
// drive edge wraps the beam to the next line after an overscan delay; a
// positive vertical drive edge, or an elapsed pixel interval, is the only
// other cause of a wake-up.
func (c *Chip) Process() {
	if !c.Read(c.def.VertDrive) {
		c.y = 0
		return
	}

	if c.Changed(c.def.VertDrive) {
		ts := c.CurrentTick() + c.vertOverscanTicks
		if ts > c.nextAction {
			c.nextAction = ts
		}
		c.Schedule(c.nextAction)
	}

	if c.Read(c.def.HorzDrive) && c.Changed(c.def.HorzDrive) {
		if c.x > 0 {
			c.x = 0
			c.y++
			ts := c.CurrentTick() + c.horzOverscanTicks
			if ts > c.nextAction {
				c.nextAction = ts
			}
			c.Schedule(c.nextAction)
			return
		}
	}

	if c.nextAction > c.CurrentTick() {
		c.Schedule(c.nextAction)
		return
	}

	if c.y < c.def.Height && c.x < c.def.Width {
		col := colorOff
		if c.Read(c.def.Video) {
			col = colorOn
		}
		c.frame.SetRGBA(c.x, c.y, col)
	}
	c.x++
	c.nextAction = c.CurrentTick() + c.pixelIntervalTicks
	c.Schedule(c.nextAction)
}
