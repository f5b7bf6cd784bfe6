package cpu6502

import (
	"testing"

	"github.com/dromaius-sim/dromaius/cpu"
	"github.com/dromaius-sim/dromaius/signal"
)

// flatRAM is a trivial full-address-space BusDevice for exercising the
// CPU wrapper without depending on the gate-level chips/memory package.
type flatRAM struct {
	data [65536]byte
}

func (r *flatRAM) Peek(addr uint16) uint8     { return r.data[addr] }
func (r *flatRAM) Poke(addr uint16, val uint8) { r.data[addr] = val }

func newPool() *signal.Pool { return signal.Create(64, 1) }

func buildChip(t *testing.T, ram *flatRAM) (*Chip, *signal.Pool) {
	t.Helper()
	pool := newPool()
	def := Def{
		CPUType: cpu.CPU_NMOS,
		Clock:   pool.Allocate(),
		Address: mustGroup(t, pool, "A", 16),
		Data:    mustGroup(t, pool, "D", 8),
		RWB:     pool.Allocate(),
		Sync:    pool.Allocate(),
		IRQB:    pool.Allocate(),
		NMIB:    pool.Allocate(),
		RDY:     pool.Allocate(),
		Mappings: []Mapping{
			{Base: 0, Size: 65536, Device: ram},
		},
	}
	pool.SetDefault(def.IRQB, true)
	pool.SetDefault(def.NMIB, true)
	pool.SetDefault(def.RDY, false)

	c, err := New(def)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.Bind(0, pool)
	return c, pool
}

func mustGroup(t *testing.T, pool *signal.Pool, prefix string, width int) signal.Group {
	t.Helper()
	g, err := signal.CreateGroup(pool, prefix, width)
	if err != nil {
		t.Fatalf("CreateGroup(%s): %v", prefix, err)
	}
	return g
}

func toggleClock(t *testing.T, c *Chip, pool *signal.Pool, tick *int64) {
	t.Helper()
	pool.Write(0, c.def.Clock, true, 0)
	*tick++
	pool.Cycle(*tick)
	c.Process()
	*tick++
	pool.Cycle(*tick)

	pool.Write(0, c.def.Clock, false, 0)
	*tick++
	pool.Cycle(*tick)
	c.Process()
	*tick++
	pool.Cycle(*tick)
}

func TestResetVectorLoadsPC(t *testing.T) {
	ram := &flatRAM{}
	ram.data[0xFFFC] = 0x00
	ram.data[0xFFFD] = 0x80
	c, _ := buildChip(t, ram)

	if c.Core().PC != 0x8000 {
		t.Fatalf("PC after reset = %#x, want 0x8000", c.Core().PC)
	}
}

func TestLDAImmediateOverTwoClockEdges(t *testing.T) {
	ram := &flatRAM{}
	ram.data[0xFFFC] = 0x00
	ram.data[0xFFFD] = 0x80
	ram.data[0x8000] = 0xA9 // LDA #imm
	ram.data[0x8001] = 0x42
	c, pool := buildChip(t, ram)

	var tick int64
	toggleClock(t, c, pool, &tick)
	toggleClock(t, c, pool, &tick)

	if c.Core().A != 0x42 {
		t.Fatalf("A = %#x, want 0x42", c.Core().A)
	}
	if got := c.def.Data.Read(pool); got != 0x42 {
		t.Fatalf("mirrored data bus = %#x, want 0x42", got)
	}
	if c.Err() != nil {
		t.Fatalf("unexpected error: %v", c.Err())
	}
}
