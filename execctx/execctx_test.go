package execctx

import (
	"testing"
	"time"

	"github.com/dromaius-sim/dromaius/chips/oscillator"
	"github.com/dromaius-sim/dromaius/signal"
	"github.com/dromaius-sim/dromaius/simulator"
)

// newOscSim builds a minimal simulator with a single free-running
// oscillator chip, suitable for exercising breakpoint/step behavior
// against a known, deterministic signal.
func newOscSim(t *testing.T) (*simulator.Simulator, signal.Signal) {
	t.Helper()
	sim := simulator.New(1000, simulator.WithSignalCapacityHint(4))
	clk := sim.Pool.Allocate()
	osc := oscillator.New(oscillator.Def{
		FrequencyHz:    1_000_000,
		TickDurationPS: 1000,
		ClkOut:         clk,
	})
	if _, err := sim.Register(&osc.Base, osc); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return sim, clk
}

func TestNewContextStartsPaused(t *testing.T) {
	sim, _ := newOscSim(t)
	ctx := New(sim)
	if !ctx.IsPaused() {
		t.Fatalf("expected new Context to start paused, got state %v", ctx.State())
	}
}

func TestSingleStepAdvancesThenReturnsToWait(t *testing.T) {
	sim, _ := newOscSim(t)
	ctx := New(sim)
	ctx.Start()
	defer ctx.Stop()

	before := sim.CurrentTick()
	ctx.SingleStep()
	waitUntilPaused(t, ctx)
	if sim.CurrentTick() == before {
		t.Errorf("expected current tick to advance after SingleStep")
	}
	if ctx.State() != Wait {
		t.Errorf("expected state Wait after single step settles, got %v", ctx.State())
	}
}

func TestStepSignalStopsOnFirstPositiveEdge(t *testing.T) {
	sim, clk := newOscSim(t)
	ctx := New(sim)
	ctx.Start()
	defer ctx.Stop()

	ctx.StepSignal(clk, true, false)
	waitUntilPaused(t, ctx)

	if !sim.Pool.Read(clk) {
		t.Errorf("expected to stop with clk high (positive edge), got low")
	}
}

func TestBreakpointPausesRunOnEdgeMatch(t *testing.T) {
	sim, clk := newOscSim(t)
	ctx := New(sim)
	ctx.SetBreakpoint(clk, true, false)
	ctx.Start()
	defer ctx.Stop()

	ctx.Run()
	waitUntilPaused(t, ctx)

	if ctx.State() != Wait {
		t.Fatalf("expected Run to pause on breakpoint, state=%v", ctx.State())
	}
	if !sim.Pool.Read(clk) {
		t.Errorf("expected breakpoint to fire exactly at the low->high transition, clk=false")
	}
}

func TestToggleBreakpointSetsAndClears(t *testing.T) {
	sim, clk := newOscSim(t)
	ctx := New(sim)

	if ctx.BreakpointSet(clk) {
		t.Fatalf("expected no breakpoint initially")
	}
	if !ctx.ToggleBreakpoint(clk) {
		t.Errorf("expected ToggleBreakpoint to report set=true")
	}
	if !ctx.BreakpointSet(clk) {
		t.Errorf("expected breakpoint to be set after toggle")
	}
	if ctx.ToggleBreakpoint(clk) {
		t.Errorf("expected ToggleBreakpoint to report set=false on second call")
	}
	if ctx.BreakpointSet(clk) {
		t.Errorf("expected breakpoint cleared after second toggle")
	}
}

func TestPauseStopsFreeRunningExecution(t *testing.T) {
	sim, _ := newOscSim(t)
	ctx := New(sim)
	ctx.SetSpeedRatio(0) // unthrottled
	ctx.Start()
	defer ctx.Stop()

	ctx.Run()
	time.Sleep(5 * time.Millisecond)
	ctx.Pause()
	waitUntilPaused(t, ctx)

	tick := sim.CurrentTick()
	time.Sleep(5 * time.Millisecond)
	if sim.CurrentTick() != tick {
		t.Errorf("expected simulation to stop advancing once paused")
	}
}

func waitUntilPaused(t *testing.T, ctx *Context) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if ctx.IsPaused() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for context to pause, state=%v", ctx.State())
}
