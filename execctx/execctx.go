// Package execctx implements the host-facing execution context that
// drives a simulator.Simulator: run/pause/single-step/step-to-signal-edge
// controls, best-effort real-time pacing, and signal breakpoints. It is
// the threaded host controller the core itself has no notion of — the
// simulator never blocks or paces itself.
package execctx

import (
	"sync"
	"time"

	"github.com/dromaius-sim/dromaius/signal"
	"github.com/dromaius-sim/dromaius/simulator"
)

// State is one of the context's run states, mirroring the original's
// DMS_STATE enum (WAIT, SINGLE_STEP, STEP_SIGNAL, RUN, EXIT).
type State int32

const (
	// Wait is the paused state: the execution goroutine is parked until a
	// Run/SingleStep/StepSignal call wakes it.
	Wait State = iota
	// SingleStep requests exactly one timestep, then returns to Wait.
	SingleStep
	// StepSignal requests timesteps until a configured signal edge fires,
	// then returns to Wait.
	StepSignal
	// Run requests free-running execution until Pause or a breakpoint.
	Run
	// Exit tells the execution goroutine to return.
	Exit
)

func (s State) String() string {
	switch s {
	case Wait:
		return "wait"
	case SingleStep:
		return "single-step"
	case StepSignal:
		return "step-signal"
	case Run:
		return "run"
	case Exit:
		return "exit"
	default:
		return "unknown"
	}
}

// Breakpoint is a signal-edge condition: PosEdge fires when the signal
// transitions low to high, NegEdge high to low. Both may be set to break
// on either transition.
type Breakpoint struct {
	Signal  signal.Signal
	PosEdge bool
	NegEdge bool
}

// Context is the threaded execution controller for one Simulator.
type Context struct {
	sim *simulator.Simulator

	mu        sync.Mutex
	cond      *sync.Cond
	state     State
	started   bool
	speedRatio float64

	stepSignal    signal.Signal
	stepPosEdge   bool
	stepNegEdge   bool

	breakpoints map[signal.Signal]Breakpoint
	breakOnIRQ  bool
	irqSignal   signal.Signal
	irqSet      bool

	lastStepErr error
}

// New wraps sim in an execution context, initially paused.
func New(sim *simulator.Simulator) *Context {
	c := &Context{
		sim:         sim,
		state:       Wait,
		speedRatio:  1.0,
		breakpoints: make(map[signal.Signal]Breakpoint),
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Simulator returns the wrapped simulator.
func (c *Context) Simulator() *simulator.Simulator { return c.sim }

// State returns the context's current run state.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsPaused reports whether the execution goroutine is parked in Wait.
func (c *Context) IsPaused() bool {
	return c.State() == Wait
}

// LastStepError returns the error from the most recent Simulator.Step
// call, if any (e.g. the simulator going idle with no dirty chips and no
// scheduled events).
func (c *Context) LastStepError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastStepErr
}

// Start launches the execution goroutine. Safe to call once; a second
// call is a no-op.
func (c *Context) Start() {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()
	go c.loop()
}

// Stop requests that the execution goroutine exit; it returns without
// waiting for the goroutine to finish.
func (c *Context) Stop() {
	c.mu.Lock()
	c.state = Exit
	c.cond.Broadcast()
	c.mu.Unlock()
}

// Run switches to free-running execution.
func (c *Context) Run() {
	c.setState(Run)
}

// Pause switches to the paused (Wait) state. In-flight timesteps always
// complete; there is no mid-timestep cancellation.
func (c *Context) Pause() {
	c.setState(Wait)
}

// SingleStep requests exactly one more timestep, then returns to Wait.
func (c *Context) SingleStep() {
	c.setState(SingleStep)
}

// StepSignal requests timesteps until s transitions per posEdge/negEdge,
// then returns to Wait.
func (c *Context) StepSignal(s signal.Signal, posEdge, negEdge bool) {
	c.mu.Lock()
	c.stepSignal = s
	c.stepPosEdge = posEdge
	c.stepNegEdge = negEdge
	c.state = StepSignal
	c.cond.Broadcast()
	c.mu.Unlock()
}

func (c *Context) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.cond.Broadcast()
	c.mu.Unlock()
}

// SetSpeedRatio changes the simulation's best-effort pacing relative to
// the original clock rate: 1.0 keeps up with real time, 0 runs
// unthrottled, values above 1 slow the simulation down. There is no hard
// real-time guarantee, matching the core's Non-goals.
func (c *Context) SetSpeedRatio(ratio float64) {
	c.mu.Lock()
	c.speedRatio = ratio
	c.mu.Unlock()
}

// SpeedRatio returns the current pacing ratio.
func (c *Context) SpeedRatio() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speedRatio
}

// SetBreakpoint installs (or replaces) a signal breakpoint.
func (c *Context) SetBreakpoint(s signal.Signal, posEdge, negEdge bool) {
	c.mu.Lock()
	c.breakpoints[s] = Breakpoint{Signal: s, PosEdge: posEdge, NegEdge: negEdge}
	c.mu.Unlock()
}

// ClearBreakpoint removes a signal breakpoint, if any.
func (c *Context) ClearBreakpoint(s signal.Signal) {
	c.mu.Lock()
	delete(c.breakpoints, s)
	c.mu.Unlock()
}

// BreakpointSet reports whether s currently has a breakpoint.
func (c *Context) BreakpointSet(s signal.Signal) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.breakpoints[s]
	return ok
}

// ToggleBreakpoint sets a default (either-edge) breakpoint on s if none
// exists, or clears it if one does. Returns the resulting set state.
func (c *Context) ToggleBreakpoint(s signal.Signal) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.breakpoints[s]; ok {
		delete(c.breakpoints, s)
		return false
	}
	c.breakpoints[s] = Breakpoint{Signal: s, PosEdge: true, NegEdge: true}
	return true
}

// Breakpoints returns a snapshot of all currently set breakpoints.
func (c *Context) Breakpoints() []Breakpoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Breakpoint, 0, len(c.breakpoints))
	for _, bp := range c.breakpoints {
		out = append(out, bp)
	}
	return out
}

// loop is the execution goroutine body: it parks in Wait, otherwise
// advances the simulator one timestep at a time, checking breakpoints
// and the active state's stop condition after each.
func (c *Context) loop() {
	for {
		c.mu.Lock()
		for c.state == Wait {
			c.cond.Wait()
		}
		state := c.state
		if state == Exit {
			c.mu.Unlock()
			return
		}

		start := time.Now()
		err := c.sim.Step()

		c.lastStepErr = err
		hit := c.checkBreakpoints()
		switch {
		case hit:
			c.state = Wait
		case state == SingleStep:
			c.state = Wait
		case state == StepSignal && c.stepSignalFired():
			c.state = Wait
		}
		ratio := c.speedRatio
		c.mu.Unlock()

		c.pace(start, ratio)
	}
}

// checkBreakpoints must be called with c.mu held. It reports whether any
// installed breakpoint's edge condition fired during the step just
// completed, comparing current vs previous signal value at the timestep
// boundary exactly as Pool.Changed/Read already track.
func (c *Context) checkBreakpoints() bool {
	pool := c.sim.Pool
	for _, bp := range c.breakpoints {
		if !pool.Changed(bp.Signal) {
			continue
		}
		v := pool.Read(bp.Signal)
		if (v && bp.PosEdge) || (!v && bp.NegEdge) {
			return true
		}
	}
	return false
}

// stepSignalFired must be called with c.mu held.
func (c *Context) stepSignalFired() bool {
	pool := c.sim.Pool
	if !pool.Changed(c.stepSignal) {
		return false
	}
	v := pool.Read(c.stepSignal)
	return (v && c.stepPosEdge) || (!v && c.stepNegEdge)
}

// pace best-effort sleeps so one timestep takes roughly
// ratio*TickDurationPS of wall-clock time. A ratio of 0 (or an elapsed
// time already exceeding the target) runs unthrottled.
func (c *Context) pace(start time.Time, ratio float64) {
	if ratio <= 0 {
		return
	}
	target := time.Duration(float64(c.sim.TickDurationPS()) * ratio * float64(time.Nanosecond) / 1000.0)
	elapsed := time.Since(start)
	if elapsed < target {
		time.Sleep(target - elapsed)
	}
}
