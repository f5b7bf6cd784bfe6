package oscillator

import (
	"testing"

	"github.com/dromaius-sim/dromaius/chip"
	"github.com/dromaius-sim/dromaius/scheduler"
	"github.com/dromaius-sim/dromaius/signal"
)

func TestHalfPeriodTicksFromFrequency(t *testing.T) {
	pool := signal.Create(4, 1)
	def := Def{ClkOut: pool.Allocate(), FrequencyHz: 1_000_000, TickDurationPS: 1_000}
	osc := New(def)
	// 1MHz at 1000ps/tick: period = 1e6ps, half period = 500 ticks.
	if osc.halfPeriodTicks != 500 {
		t.Fatalf("half period = %d, want 500", osc.halfPeriodTicks)
	}
}

func TestProcessTogglesAndReschedules(t *testing.T) {
	pool := signal.Create(4, 1)
	def := Def{ClkOut: pool.Allocate(), FrequencyHz: 1_000_000, TickDurationPS: 1_000}
	osc := New(def)
	osc.Bind(0, pool)

	osc.Process()
	ts, ok := osc.TakeScheduled()
	if !ok {
		t.Fatalf("expected a schedule request after Process")
	}
	if ts != 500 {
		t.Fatalf("next transition = %d, want 500", ts)
	}
	pool.Cycle(1)
	if !pool.Read(def.ClkOut) {
		t.Fatalf("expected ClkOut to toggle high on first transition")
	}

	osc.Process()
	ts2, _ := osc.TakeScheduled()
	if ts2 != 1000 {
		t.Fatalf("second transition = %d, want 1000", ts2)
	}
	pool.Cycle(2)
	if pool.Read(def.ClkOut) {
		t.Fatalf("expected ClkOut to toggle back low on second transition")
	}
}

func TestSchedulerAcceptsOscillatorRequest(t *testing.T) {
	pool := signal.Create(4, 1)
	def := Def{ClkOut: pool.Allocate(), FrequencyHz: 1_000_000, TickDurationPS: 1_000}
	osc := New(def)
	osc.Bind(0, pool)
	osc.Process()
	ts, _ := osc.TakeScheduled()

	sched := scheduler.New(1)
	if err := sched.Schedule(0, 0, ts); err != nil {
		t.Fatalf("unexpected error scheduling oscillator wake-up: %v", err)
	}
	if due := sched.PopDue(ts); due&(1<<0) == 0 {
		t.Fatalf("expected chip 0 due at tick %d", ts)
	}
}

var _ chip.Chip = (*Oscillator)(nil)
