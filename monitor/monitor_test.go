package monitor

import (
	"strings"
	"testing"

	"github.com/dromaius-sim/dromaius/chips/oscillator"
	"github.com/dromaius-sim/dromaius/execctx"
	"github.com/dromaius-sim/dromaius/simulator"
)

type fakeMem struct{ data [256]byte }

func (f *fakeMem) Peek(addr uint16) uint8 { return f.data[addr] }

func newMonitor(t *testing.T) (*Monitor, *execctx.Context) {
	t.Helper()
	sim := simulator.New(1000, simulator.WithSignalCapacityHint(4))
	clk := sim.Pool.Allocate()
	sim.Pool.SetName(clk, "clk")
	osc := oscillator.New(oscillator.Def{FrequencyHz: 1_000_000, TickDurationPS: 1000, ClkOut: clk})
	if _, err := sim.Register(&osc.Base, osc); err != nil {
		t.Fatalf("Register: %v", err)
	}
	ctx := execctx.New(sim)
	mem := &fakeMem{}
	mem.data[0x10] = 0xAB
	return New(ctx, mem), ctx
}

func TestMemoryDumpRendersHexBytes(t *testing.T) {
	m, _ := newMonitor(t)
	reply := m.Exec("m 0010 0010")
	if !strings.Contains(reply, "ab") {
		t.Errorf("expected dump to contain byte value, got %q", reply)
	}
}

func TestMemoryDumpRejectsBadAddress(t *testing.T) {
	m, _ := newMonitor(t)
	reply := m.Exec("m zz 10")
	if !strings.HasPrefix(reply, "?") {
		t.Errorf("expected error reply for bad address, got %q", reply)
	}
}

func TestBreakpointCommandSetsBreakpoint(t *testing.T) {
	m, ctx := newMonitor(t)
	reply := m.Exec("sbp clk +")
	if strings.HasPrefix(reply, "?") {
		t.Fatalf("expected breakpoint command to succeed, got %q", reply)
	}
	clk, ok := ctx.Simulator().Pool.ByName("clk")
	if !ok {
		t.Fatalf("expected clk signal to be registered")
	}
	if !ctx.BreakpointSet(clk) {
		t.Errorf("expected breakpoint to be set after sbp +")
	}
}

func TestBreakpointCommandRejectsUnknownSignal(t *testing.T) {
	m, _ := newMonitor(t)
	reply := m.Exec("sbp nope +")
	if !strings.HasPrefix(reply, "?") {
		t.Errorf("expected error reply for unknown signal, got %q", reply)
	}
}

func TestUnknownCommandReturnsErrorReply(t *testing.T) {
	m, _ := newMonitor(t)
	reply := m.Exec("bogus")
	if !strings.HasPrefix(reply, "?") {
		t.Errorf("expected error reply for unknown command, got %q", reply)
	}
}

func TestGoAndStepCommands(t *testing.T) {
	m, ctx := newMonitor(t)
	if reply := m.Exec("s"); reply != "stepped" {
		t.Errorf("expected 'stepped', got %q", reply)
	}
	if ctx.State() != execctx.SingleStep {
		t.Errorf("expected state SingleStep after 's', got %v", ctx.State())
	}
	if reply := m.Exec("g"); reply != "running" {
		t.Errorf("expected 'running', got %q", reply)
	}
	if ctx.State() != execctx.Run {
		t.Errorf("expected state Run after 'g', got %v", ctx.State())
	}
}
