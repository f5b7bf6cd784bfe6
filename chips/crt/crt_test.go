package crt

import (
	"testing"

	"github.com/dromaius-sim/dromaius/signal"
)

func newChip(t *testing.T, width, height int) (*Chip, *signal.Pool) {
	t.Helper()
	pool := signal.Create(8, 1)
	video := pool.Allocate()
	vert := pool.Allocate()
	horz := pool.Allocate()
	pool.SetDefault(vert, false)
	pool.SetDefault(horz, false)

	c := New(Def{
		Video:           video,
		VertDrive:       vert,
		HorzDrive:       horz,
		Width:           width,
		Height:          height,
		PixelIntervalPS: 1000,
		VertOverscanPS:  1000,
		HorzOverscanPS:  1000,
		TickDurationPS:  1000,
	})
	c.Bind(1, pool)
	return c, pool
}

// run advances the simulation by calling Process and then Cycle at
// whatever tick Process requested (or tick+1 if it requested none),
// mirroring the real simulator's "dirty chips run every tick, idle chips
// jump to their next schedule" rule without needing the full Simulator.
func run(c *Chip, pool *signal.Pool, tick *int64, steps int) {
	for i := 0; i < steps; i++ {
		c.Process()
		if ts, ok := c.TakeScheduled(); ok {
			*tick = ts
		} else {
			*tick++
		}
		pool.Cycle(*tick)
	}
}

func TestCRTHeldAtOriginDuringVerticalRetrace(t *testing.T) {
	c, pool := newChip(t, 4, 4)
	var tick int64
	run(c, pool, &tick, 3)
	if c.y != 0 {
		t.Fatalf("expected y=0 while vert drive deasserted, got %d", c.y)
	}
}

func TestCRTWritesPixelsAlongScanline(t *testing.T) {
	c, pool := newChip(t, 4, 4)
	var tick int64

	pool.Write(0, c.def.VertDrive, true, 0)
	pool.Write(0, c.def.Video, true, 0)
	tick++
	pool.Cycle(tick)

	run(c, pool, &tick, 10)

	if c.x == 0 {
		t.Errorf("expected beam to have advanced along the scanline, x=%d", c.x)
	}
}

func TestScaledSnapshotMagnifiesFrame(t *testing.T) {
	c, _ := newChip(t, 4, 4)
	snap := c.ScaledSnapshot(3)
	if got := snap.Bounds().Dx(); got != 12 {
		t.Errorf("expected scaled width 12, got %d", got)
	}
	if got := snap.Bounds().Dy(); got != 12 {
		t.Errorf("expected scaled height 12, got %d", got)
	}
	if got := c.ScaledSnapshot(1).Bounds().Dx(); got != 4 {
		t.Errorf("expected factor<=1 to behave like Snapshot (width 4), got %d", got)
	}
}

func TestCRTWrapsLineOnHorizontalRetrace(t *testing.T) {
	c, pool := newChip(t, 4, 4)
	var tick int64

	pool.Write(0, c.def.VertDrive, true, 0)
	tick++
	pool.Cycle(tick)
	run(c, pool, &tick, 5)

	startY := c.y
	pool.Write(0, c.def.HorzDrive, true, 0)
	tick++
	pool.Cycle(tick)
	run(c, pool, &tick, 2)

	if c.y <= startY {
		t.Errorf("expected y to advance after horizontal retrace, got %d (was %d)", c.y, startY)
	}
}
