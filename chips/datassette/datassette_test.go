package datassette

import (
	"testing"

	"github.com/dromaius-sim/dromaius/signal"
	"github.com/dromaius-sim/dromaius/tapfile"
)

func newChip(t *testing.T) (*Chip, *signal.Pool) {
	t.Helper()
	pool := signal.Create(8, 1)
	motor := pool.Allocate()
	dataFrom := pool.Allocate()
	dataTo := pool.Allocate()
	sense := pool.Allocate()
	pool.SetDefault(motor, false)
	pool.SetDefault(dataTo, false)

	c := New(Def{
		Motor:          motor,
		DataFromDS:     dataFrom,
		DataToDS:       dataTo,
		Sense:          sense,
		IdleIntervalPS: 100_000_000, // 100ms
		TickDurationPS: 1_000_000,   // 1ns/tick
	})
	c.Bind(1, pool)
	return c, pool
}

// run advances the chip by calling Process and then Cycle at whatever
// tick Process requested (or tick+1 if it requested none).
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

func TestPressIgnoresInvalidKeyForState(t *testing.T) {
	c, _ := newChip(t)
	c.Press(KeyPlay) // Idle: no valid keys
	if c.State() != Idle {
		t.Fatalf("expected state to remain Idle, got %v", c.State())
	}
}

func TestLoadTransitionsToTapeLoaded(t *testing.T) {
	c, _ := newChip(t)
	c.Load(tapfile.New())
	if c.State() != TapeLoaded {
		t.Fatalf("expected TapeLoaded after Load, got %v", c.State())
	}
}

func TestPlayTransitionsFromTapeLoaded(t *testing.T) {
	c, _ := newChip(t)
	c.Load(tapfile.New())
	c.Press(KeyPlay)
	if c.State() != Playing {
		t.Fatalf("expected Playing, got %v", c.State())
	}
}

func TestStopReturnsToTapeLoaded(t *testing.T) {
	c, _ := newChip(t)
	c.Load(tapfile.New())
	c.Press(KeyPlay)
	c.Press(KeyStop)
	if c.State() != TapeLoaded {
		t.Fatalf("expected TapeLoaded after Stop, got %v", c.State())
	}
}

func TestEjectUnloadsTape(t *testing.T) {
	c, _ := newChip(t)
	c.Load(tapfile.New())
	c.Eject()
	if c.State() != Idle {
		t.Fatalf("expected Idle after Eject, got %v", c.State())
	}
	if c.SaveTape() != nil {
		t.Errorf("expected no tape after Eject")
	}
}

func TestPlaybackTogglesReadLine(t *testing.T) {
	c, pool := newChip(t)
	tape := tapfile.New()
	for i := 0; i < 10; i++ {
		tape.AppendPulse(128) // byte value 0x10: ~129.92us pulses
	}
	c.Load(tape)
	c.Press(KeyPlay)

	var tick int64
	pool.Write(0, c.def.Motor, true, 0)
	tick++
	pool.Cycle(tick)

	toggles := 0
	last := c.dataOut
	for i := 0; i < 200 && toggles < 10; i++ {
		run(c, pool, &tick, 1)
		if c.dataOut != last {
			toggles++
			last = c.dataOut
		}
	}
	if toggles < 10 {
		t.Errorf("expected 10 toggles of the read line (one per pulse), got %d", toggles)
	}
}

func TestRecordingMeasuresWriteLinePulses(t *testing.T) {
	c, pool := newChip(t)
	c.NewTape()
	c.Press(KeyRecord)

	var tick int64
	pool.Write(0, c.def.Motor, true, 0)
	tick++
	pool.Cycle(tick)

	for i := 0; i < 3; i++ {
		pool.Write(0, c.def.DataToDS, true, 0)
		tick++
		pool.Cycle(tick)
		run(c, pool, &tick, 1)

		for j := 0; j < 50; j++ {
			tick++
			pool.Cycle(tick)
		}

		pool.Write(0, c.def.DataToDS, false, 0)
		tick++
		pool.Cycle(tick)
		run(c, pool, &tick, 1)
	}

	if len(c.tape.Pulses) == 0 {
		t.Errorf("expected recorded pulses after positive edges on DataToDS, got none")
	}
}
