package hd44780

import (
	"testing"

	"github.com/dromaius-sim/dromaius/signal"
)

func mustGroup(t *testing.T, pool *signal.Pool, prefix string, width int) signal.Group {
	t.Helper()
	g, err := signal.CreateGroup(pool, prefix, width)
	if err != nil {
		t.Fatalf("CreateGroup(%s): %v", prefix, err)
	}
	return g
}

func newLCD(t *testing.T) (*Chip, *signal.Pool, Def) {
	t.Helper()
	pool := signal.Create(64, 1)
	def := Def{
		Data:   mustGroup(t, pool, "D", 8),
		RS:     pool.Allocate(),
		RW:     pool.Allocate(),
		Enable: pool.Allocate(),
	}
	pool.SetDefault(def.RW, true)
	c := New(def)
	// Bound to chip ID 1 so the test harness, driving bus/control signals
	// as chip ID 0, never shares a writer slot with the chip itself.
	c.Bind(1, pool)
	return c, pool, def
}

// halfCycle flips Enable and runs one Cycle+Process, mirroring
// half_clock_cycle from the original test suite.
func halfCycle(c *Chip, pool *signal.Pool, tick *int64) {
	pool.Write(0, c.def.Enable, !pool.Read(c.def.Enable), 0)
	*tick++
	pool.Cycle(*tick)
	c.Process()
	*tick++
	pool.Cycle(*tick)
}

func TestWriteData(t *testing.T) {
	c, pool, d := newLCD(t)
	var tick int64

	if c.regAC != 0 {
		t.Fatalf("reg_ac = %#x, want 0", c.regAC)
	}

	pool.Write(0, d.RW, false, 0)
	pool.Write(0, d.RS, true, 0)
	d.Data.Write(pool, 0, uint32('D'), 0)
	halfCycle(c, pool, &tick)
	halfCycle(c, pool, &tick)

	if c.regAC != 1 {
		t.Fatalf("reg_ac = %d, want 1", c.regAC)
	}
	if c.ddram[0] != 'D' {
		t.Fatalf("ddram[0] = %q, want 'D'", c.ddram[0])
	}

	pool.Write(0, d.RW, false, 0)
	pool.Write(0, d.RS, true, 0)
	d.Data.Write(pool, 0, uint32('R'), 0)
	halfCycle(c, pool, &tick)
	halfCycle(c, pool, &tick)

	if c.regAC != 2 {
		t.Fatalf("reg_ac = %d, want 2", c.regAC)
	}
	if c.ddram[0] != 'D' || c.ddram[1] != 'R' {
		t.Fatalf("ddram = %q %q, want 'D' 'R'", c.ddram[0], c.ddram[1])
	}
}

func TestReadData(t *testing.T) {
	c, pool, d := newLCD(t)
	var tick int64

	copy(c.ddram[:], " DROMAIUS")

	pool.Write(0, d.RW, true, 0)
	pool.Write(0, d.RS, true, 0)
	halfCycle(c, pool, &tick)
	halfCycle(c, pool, &tick)

	if got := d.Data.Read(pool); got != uint32(' ') {
		t.Fatalf("data = %q, want ' '", got)
	}
	if c.regAC != 1 {
		t.Fatalf("reg_ac = %d, want 1", c.regAC)
	}

	halfCycle(c, pool, &tick)
	halfCycle(c, pool, &tick)

	if got := d.Data.Read(pool); got != uint32('D') {
		t.Fatalf("data = %q, want 'D'", got)
	}
	if c.regAC != 2 {
		t.Fatalf("reg_ac = %d, want 2", c.regAC)
	}
}

func TestClearDisplayResetsAddressCounter(t *testing.T) {
	c, pool, d := newLCD(t)
	var tick int64

	pool.Write(0, d.RW, false, 0)
	pool.Write(0, d.RS, true, 0)
	d.Data.Write(pool, 0, uint32('X'), 0)
	halfCycle(c, pool, &tick)
	halfCycle(c, pool, &tick)

	pool.Write(0, d.RW, false, 0)
	pool.Write(0, d.RS, false, 0)
	d.Data.Write(pool, 0, 0x01, 0) // clear display instruction
	halfCycle(c, pool, &tick)
	halfCycle(c, pool, &tick)

	if c.regAC != 0 {
		t.Fatalf("reg_ac = %d, want 0 after clear display", c.regAC)
	}
	if c.ddram[0] != 0x20 {
		t.Fatalf("ddram[0] = %#x, want 0x20 after clear display", c.ddram[0])
	}
}
