package counter74xx

import (
	"testing"

	"github.com/dromaius-sim/dromaius/signal"
)

func newPool() *signal.Pool { return signal.Create(16, 1) }

func pulse(t *testing.T, pool *signal.Pool, s signal.Signal, tick *int64, process func()) {
	t.Helper()
	pool.Write(0, s, true, 0)
	*tick++
	pool.Cycle(*tick)
	process()
	*tick++
	pool.Cycle(*tick)
	pool.Write(0, s, false, 0)
	*tick++
	pool.Cycle(*tick)
	process()
	*tick++
	pool.Cycle(*tick)
}

func TestRipple7493CountsToFifteen(t *testing.T) {
	pool := newPool()
	var def Ripple7493Def
	def.ClockA, def.ClockB = pool.Allocate(), pool.Allocate()
	def.Reset0, def.Reset1 = pool.Allocate(), pool.Allocate()
	def.QA, def.QB, def.QC, def.QD = pool.Allocate(), pool.Allocate(), pool.Allocate(), pool.Allocate()
	def.BClockIsQA = true

	ctr := NewRipple7493(def)
	ctr.Bind(0, pool)

	var tick int64
	pool.Cycle(tick) // establish defaults
	for i := 0; i < 15; i++ {
		pulse(t, pool, def.ClockA, &tick, ctr.Process)
	}

	got := 0
	if pool.Read(def.QA) {
		got |= 1
	}
	if pool.Read(def.QB) {
		got |= 2
	}
	if pool.Read(def.QC) {
		got |= 4
	}
	if pool.Read(def.QD) {
		got |= 8
	}
	if got != 15 {
		t.Fatalf("after 15 falling edges, count = %d, want 15", got)
	}
}

func TestRipple7493Reset(t *testing.T) {
	pool := newPool()
	var def Ripple7493Def
	def.ClockA, def.ClockB = pool.Allocate(), pool.Allocate()
	def.Reset0, def.Reset1 = pool.Allocate(), pool.Allocate()
	def.QA, def.QB, def.QC, def.QD = pool.Allocate(), pool.Allocate(), pool.Allocate(), pool.Allocate()
	def.BClockIsQA = true

	ctr := NewRipple7493(def)
	ctr.Bind(0, pool)

	var tick int64
	pool.Cycle(tick)
	pulse(t, pool, def.ClockA, &tick, ctr.Process)

	pool.Write(0, def.Reset0, true, 0)
	pool.Write(0, def.Reset1, true, 0)
	tick++
	pool.Cycle(tick)
	ctr.Process()
	tick++
	pool.Cycle(tick)

	if pool.Read(def.QA) {
		t.Fatalf("expected QA cleared after reset")
	}
}

func TestSyncUpDown193CountsUp(t *testing.T) {
	pool := newPool()
	var def SyncUpDown193Def
	def.A, def.B, def.C, def.D = pool.Allocate(), pool.Allocate(), pool.Allocate(), pool.Allocate()
	def.LoadB, def.ClearHi = pool.Allocate(), pool.Allocate()
	def.CountUp, def.CountDown = pool.Allocate(), pool.Allocate()
	def.QA, def.QB, def.QC, def.QD = pool.Allocate(), pool.Allocate(), pool.Allocate(), pool.Allocate()
	def.BorrowB, def.CarryB = pool.Allocate(), pool.Allocate()
	pool.SetDefault(def.LoadB, true)

	ctr := NewSyncUpDown193(def)
	ctr.Bind(0, pool)

	var tick int64
	pool.Cycle(tick)
	for i := 0; i < 3; i++ {
		pool.Write(0, def.CountUp, true, 0)
		tick++
		pool.Cycle(tick)
		ctr.Process()
		tick++
		pool.Cycle(tick)
		pool.Write(0, def.CountUp, false, 0)
		tick++
		pool.Cycle(tick)
		ctr.Process()
		tick++
		pool.Cycle(tick)
	}

	got := 0
	if pool.Read(def.QA) {
		got |= 1
	}
	if pool.Read(def.QB) {
		got |= 2
	}
	if pool.Read(def.QC) {
		got |= 4
	}
	if got != 3 {
		t.Fatalf("after 3 rising edges on CountUp, state = %d, want 3", got)
	}
}
