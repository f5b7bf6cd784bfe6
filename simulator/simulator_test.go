package simulator

import (
	"testing"

	"github.com/go-test/deep"

	"github.com/dromaius-sim/dromaius/chip"
	"github.com/dromaius-sim/dromaius/signal"
)

// clockChip toggles its output signal every period ticks, self-rescheduling
// via Base.Schedule rather than relying on the scheduler's pop-due path
// alone (mirrors how an oscillator chip drives the rest of a device).
type clockChip struct {
	chip.Base
	out    signal.Signal
	period int64
	state  bool
	next   int64
}

func (c *clockChip) ChipBase() *chip.Base { return &c.Base }
func (c *clockChip) RegisterDependencies() {}
func (c *clockChip) Destroy() {}
func (c *clockChip) Process() {
	c.state = !c.state
	c.Write(c.out, c.state)
	c.next += c.period
	c.Schedule(c.next)
}

// echoChip mirrors one input signal onto its own output, solely to create a
// fan-out of dependent chips spread across many chip IDs.
type echoChip struct {
	chip.Base
	in, out signal.Signal
}

func (c *echoChip) ChipBase() *chip.Base       { return &c.Base }
func (c *echoChip) RegisterDependencies()      { c.DependsOn(c.in) }
func (c *echoChip) Destroy()                   {}
func (c *echoChip) Process()                   { c.Write(c.out, c.Read(c.in)) }

const echoFanOut = 10

// buildDevice assembles an identical clock+fan-out network on a freshly
// created Simulator with the given worker count, returning the simulator
// and the list of signals worth watching for the determinism comparison.
func buildDevice(t *testing.T, workers int) (*Simulator, []signal.Signal) {
	t.Helper()
	sim := New(1000, WithWorkers(workers), WithHistory(4096))

	clkSig := sim.Pool.Allocate()
	sim.Pool.SetName(clkSig, "CLK")
	clk := &clockChip{Base: chip.NewBase("clock"), out: clkSig, period: 2}
	if _, err := sim.Register(&clk.Base, clk); err != nil {
		t.Fatalf("register clock: %v", err)
	}

	watch := []signal.Signal{clkSig}
	for i := 0; i < echoFanOut; i++ {
		outSig := sim.Pool.Allocate()
		e := &echoChip{Base: chip.NewBase("echo"), in: clkSig, out: outSig}
		if _, err := sim.Register(&e.Base, e); err != nil {
			t.Fatalf("register echo %d: %v", i, err)
		}
		watch = append(watch, outSig)
	}

	sim.DeviceComplete()
	for _, s := range watch {
		sim.History.Watch(s)
	}
	return sim, watch
}

func runSteps(t *testing.T, sim *Simulator, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := sim.Step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}
}

func TestSingleAndMultiWorkerHistoriesAreIdentical(t *testing.T) {
	seq, _ := buildDevice(t, 1)
	defer seq.Close()
	runSteps(t, seq, 40)

	conc, _ := buildDevice(t, 2)
	defer conc.Close()
	runSteps(t, conc, 40)

	if diff := deep.Equal(seq.History.Transitions(), conc.History.Transitions()); diff != nil {
		t.Fatalf("sequential vs concurrent history diverged: %v", diff)
	}
}

func TestEchoChipsTrackClock(t *testing.T) {
	sim, watch := buildDevice(t, 1)
	defer sim.Close()
	// Echo chips read the clock one tick behind (they see its pre-cycle
	// value), so they only read as caught-up on an odd tick once the
	// clock's own every-other-tick toggle has settled (from tick 3 on).
	runSteps(t, sim, 11)

	clkVal := sim.Pool.Read(watch[0])
	for i, s := range watch[1:] {
		if got := sim.Pool.Read(s); got != clkVal {
			t.Fatalf("echo %d = %v, want %v (clock value)", i, got, clkVal)
		}
	}
}

func TestStepOnIdleSimulatorErrors(t *testing.T) {
	sim := New(1000)
	if err := sim.Step(); err == nil {
		t.Fatalf("expected error stepping a simulator with no chips and no scheduled events")
	}
}

func TestRegisterRespectsMaxChips(t *testing.T) {
	sim := New(1000)
	for i := 0; i < signal.MaxChips; i++ {
		c := &echoChip{Base: chip.NewBase("echo")}
		if _, err := sim.Register(&c.Base, c); err != nil {
			t.Fatalf("register chip %d: unexpected error %v", i, err)
		}
	}
	overflow := &echoChip{Base: chip.NewBase("overflow")}
	if _, err := sim.Register(&overflow.Base, overflow); err == nil {
		t.Fatalf("expected TooManyChips once MaxChips chips are registered")
	}
}
