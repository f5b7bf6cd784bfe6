package buffer74xx

import (
	"testing"

	"github.com/dromaius-sim/dromaius/signal"
)

func newPool() *signal.Pool { return signal.Create(16, 1) }

func TestOctalBufferPassesWhenEnabled(t *testing.T) {
	pool := newPool()
	var def OctalBufferDef
	def.Section1.EnableB = pool.Allocate()
	for i := range def.Section1.A {
		def.Section1.A[i] = pool.Allocate()
		def.Section1.Y[i] = pool.Allocate()
	}
	def.Section2.EnableB = pool.Allocate()
	pool.SetDefault(def.Section2.EnableB, true)

	buf := NewOctalBuffer(def)
	buf.Bind(0, pool)

	pool.Write(0, def.Section1.A[0], true, 0)
	pool.Cycle(1)
	buf.Process()
	pool.Cycle(2)

	if !pool.Read(def.Section1.Y[0]) {
		t.Fatalf("expected Y0 to pass through A0 while enabled")
	}
}

func TestLatchHoldsWhenDisabled(t *testing.T) {
	pool := newPool()
	var def LatchDef
	def.LatchEnable, def.OutputEnB = pool.Allocate(), pool.Allocate()
	for i := range def.D {
		def.D[i] = pool.Allocate()
		def.Q[i] = pool.Allocate()
	}
	pool.SetDefault(def.LatchEnable, true)

	l := NewLatch(def)
	l.Bind(0, pool)

	pool.Write(0, def.D[0], true, 0)
	pool.Cycle(1)
	l.Process()
	pool.Cycle(2)
	if !pool.Read(def.Q[0]) {
		t.Fatalf("expected Q0 transparent while LatchEnable high")
	}

	pool.Write(0, def.LatchEnable, false, 0)
	pool.Write(0, def.D[0], false, 0)
	pool.Cycle(3)
	l.Process()
	pool.Cycle(4)
	if !pool.Read(def.Q[0]) {
		t.Fatalf("expected Q0 to hold its latched value once LatchEnable goes low")
	}
}
