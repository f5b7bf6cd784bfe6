package shiftreg74xx

import (
	"testing"

	"github.com/dromaius-sim/dromaius/signal"
)

func newPool() *signal.Pool { return signal.Create(16, 1) }

func TestSIPO164ShiftsInOnRisingEdge(t *testing.T) {
	pool := newPool()
	var def SIPO164Def
	def.A, def.B, def.Clock, def.ClearB = pool.Allocate(), pool.Allocate(), pool.Allocate(), pool.Allocate()
	for i := range def.Q {
		def.Q[i] = pool.Allocate()
	}
	pool.SetDefault(def.ClearB, true)
	pool.SetDefault(def.A, true)
	pool.SetDefault(def.B, true)

	sr := NewSIPO164(def)
	sr.Bind(0, pool)

	var tick int64
	pool.Cycle(tick)
	sr.Process()
	tick++
	pool.Cycle(tick)

	pool.Write(0, def.Clock, true, 0)
	tick++
	pool.Cycle(tick)
	sr.Process()
	tick++
	pool.Cycle(tick)

	if !pool.Read(def.Q[0]) {
		t.Fatalf("expected bit 0 set after shifting in a 1")
	}
}

func TestPISO165ParallelLoadOnShiftLoadFallingEdge(t *testing.T) {
	pool := newPool()
	var def PISO165Def
	def.ShiftLoadB = pool.Allocate()
	def.Clock, def.ClockInhibit, def.SerialIn = pool.Allocate(), pool.Allocate(), pool.Allocate()
	def.A, def.B, def.C, def.D = pool.Allocate(), pool.Allocate(), pool.Allocate(), pool.Allocate()
	def.E, def.F, def.G, def.H = pool.Allocate(), pool.Allocate(), pool.Allocate(), pool.Allocate()
	def.QH, def.QHB = pool.Allocate(), pool.Allocate()
	pool.SetDefault(def.ShiftLoadB, true)
	pool.SetDefault(def.H, true)

	sr := NewPISO165(def)
	sr.Bind(0, pool)

	var tick int64
	pool.Cycle(tick)
	sr.Process()
	tick++
	pool.Cycle(tick)

	pool.Write(0, def.ShiftLoadB, false, 0) // high-to-low: load
	tick++
	pool.Cycle(tick)
	sr.Process()
	tick++
	pool.Cycle(tick)

	if !pool.Read(def.QH) {
		t.Fatalf("expected QH to reflect loaded H input (true)")
	}
}
