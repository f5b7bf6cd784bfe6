package flipflop74xx

import (
	"testing"

	"github.com/dromaius-sim/dromaius/signal"
)

func newPool() *signal.Pool { return signal.Create(16, 1) }

func TestDFlipFlopLatchesOnRisingEdge(t *testing.T) {
	pool := newPool()
	var def DFlipFlopDef
	def.FF1.D, def.FF1.Clk = pool.Allocate(), pool.Allocate()
	def.FF1.PresetB, def.FF1.ClearB = pool.Allocate(), pool.Allocate()
	def.FF1.Q, def.FF1.QB = pool.Allocate(), pool.Allocate()
	// FF2 gets its own signals: an unset Signal field is signal 0, FF1's D here.
	def.FF2.D, def.FF2.Clk = pool.Allocate(), pool.Allocate()
	def.FF2.PresetB, def.FF2.ClearB = pool.Allocate(), pool.Allocate()
	def.FF2.Q, def.FF2.QB = pool.Allocate(), pool.Allocate()
	pool.SetDefault(def.FF1.PresetB, true)
	pool.SetDefault(def.FF1.ClearB, true)

	ff := NewDFlipFlop(def)
	ff.Bind(0, pool)

	pool.Write(0, def.FF1.D, true, 0)
	pool.Cycle(1)
	ff.Process() // clk still low: no edge yet
	pool.Cycle(2)
	if pool.Read(def.FF1.Q) {
		t.Fatalf("Q latched before clock edge")
	}

	pool.Write(0, def.FF1.Clk, true, 0)
	pool.Cycle(3)
	ff.Process() // rising edge: latches D
	pool.Cycle(4)
	if !pool.Read(def.FF1.Q) {
		t.Fatalf("Q did not latch on rising clock edge")
	}
	if pool.Read(def.FF1.QB) {
		t.Fatalf("QB should be the complement of Q")
	}
}

func TestDFlipFlopClearOverridesClock(t *testing.T) {
	pool := newPool()
	var def DFlipFlopDef
	def.FF1.D, def.FF1.Clk = pool.Allocate(), pool.Allocate()
	def.FF1.PresetB, def.FF1.ClearB = pool.Allocate(), pool.Allocate()
	def.FF1.Q, def.FF1.QB = pool.Allocate(), pool.Allocate()
	pool.SetDefault(def.FF1.PresetB, true)
	pool.SetDefault(def.FF1.ClearB, true)

	ff := NewDFlipFlop(def)
	ff.Bind(0, pool)

	pool.Write(0, def.FF1.ClearB, false, 0) // assert clear
	pool.Cycle(1)
	ff.Process()
	pool.Cycle(2)
	if pool.Read(def.FF1.Q) {
		t.Fatalf("expected Q cleared while ClearB asserted")
	}
}

func TestJKFlipFlopTogglesOnFallingEdge(t *testing.T) {
	pool := newPool()
	var def JKFlipFlopDef
	def.FF1.J, def.FF1.K, def.FF1.Clk = pool.Allocate(), pool.Allocate(), pool.Allocate()
	def.FF1.ClearB = pool.Allocate()
	def.FF1.Q, def.FF1.QB = pool.Allocate(), pool.Allocate()
	pool.SetDefault(def.FF1.ClearB, true)
	pool.SetDefault(def.FF1.Clk, true)

	ff := NewJKFlipFlop(def)
	ff.Bind(0, pool)

	pool.Write(0, def.FF1.J, true, 0)
	pool.Write(0, def.FF1.K, true, 0)
	pool.Cycle(1)
	ff.Process() // clk starts high (default), no edge yet on first call
	pool.Cycle(2)
	before := pool.Read(def.FF1.Q)

	pool.Write(0, def.FF1.Clk, false, 0) // falling edge
	pool.Cycle(3)
	ff.Process()
	pool.Cycle(4)
	if pool.Read(def.FF1.Q) == before {
		t.Fatalf("expected Q to toggle on falling clock edge with J=K=1")
	}
}
