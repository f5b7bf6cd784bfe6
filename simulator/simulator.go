// Package simulator implements the discrete-event step loop that turns a
// netlist of chip.Chip components sharing a signal.Pool into a running
// device: advancing virtual time, computing the dirty-chip set, invoking
// chip Process functions (optionally concurrently), resolving
// high-impedance contention, and cycling the pool.
package simulator

import (
	"fmt"
	"math"
	"math/bits"
	"sync"

	"github.com/dromaius-sim/dromaius/chip"
	"github.com/dromaius-sim/dromaius/scheduler"
	"github.com/dromaius-sim/dromaius/signal"
)

// Option configures a Simulator at construction time.
type Option func(*Simulator)

// WithWorkers sets the number of concurrent worker goroutines used to
// process the dirty-chip set during each timestep. The default is 1
// (fully sequential). Chips are partitioned across workers by chip ID
// modulo the worker count.
func WithWorkers(n int) Option {
	return func(s *Simulator) {
		if n < 1 {
			n = 1
		}
		s.workerCount = n
	}
}

// WithHistory attaches a signal history ring buffer of the given
// capacity to the pool.
func WithHistory(capacity int) Option {
	return func(s *Simulator) {
		s.History = signal.NewHistory(capacity)
	}
}

// WithSignalCapacityHint sizes the initial signal pool allocation.
func WithSignalCapacityHint(n int) Option {
	return func(s *Simulator) {
		s.sigCapacityHint = n
	}
}

// Simulator owns the signal pool, the registered chips, the scheduler,
// and virtual time.
type Simulator struct {
	Pool    *signal.Pool
	History *signal.History

	tickDurationPS  int64
	currentTick     int64
	workerCount     int
	sigCapacityHint int

	sched *scheduler.Scheduler

	chips    [signal.MaxChips]chip.Chip
	chipN    int
	dirty    uint64
	complete bool

	pool *workerPool
}

// New creates a Simulator with the given tick duration expressed in
// picoseconds (e.g. 6250 for 160 MHz).
func New(tickDurationPS int64, opts ...Option) *Simulator {
	s := &Simulator{
		tickDurationPS: tickDurationPS,
		workerCount:    1,
	}
	for _, o := range opts {
		o(s)
	}
	s.Pool = signal.Create(s.sigCapacityHint, s.workerCount)
	if s.History != nil {
		s.Pool.AttachHistory(s.History)
	}
	s.sched = scheduler.New(s.workerCount)
	if s.workerCount > 1 {
		s.pool = newWorkerPool(s.workerCount)
	}
	return s
}

// IntervalToTicks converts an interval expressed in picoseconds into a
// tick count at this simulator's tick duration, rounding down.
func (s *Simulator) IntervalToTicks(intervalPS int64) int64 {
	if s.tickDurationPS <= 0 {
		return 0
	}
	return intervalPS / s.tickDurationPS
}

// TickDurationPS returns the simulator's tick duration in picoseconds.
func (s *Simulator) TickDurationPS() int64 {
	return s.tickDurationPS
}

// CurrentTick returns the current virtual time, in ticks.
func (s *Simulator) CurrentTick() int64 {
	return s.currentTick
}

// Scheduler exposes the scheduler for chips that need to pick a worker
// queue explicitly (rare; most chips use chip.Base.Schedule instead).
func (s *Simulator) Scheduler() *scheduler.Scheduler {
	return s.sched
}

// Register assigns c the next free chip ID, binds it to the pool, and
// marks it dirty so it runs at least once. Must be called before
// DeviceComplete.
func (s *Simulator) Register(base *chip.Base, c chip.Chip) (chip.ID, error) {
	if s.chipN >= signal.MaxChips {
		return 0, chip.TooManyChips{}
	}
	id := chip.ID(s.chipN)
	base.Bind(id, s.Pool)
	s.chips[id] = c
	s.chipN++
	s.dirty |= 1 << uint(id)
	return id, nil
}

// DeviceComplete freezes the signal graph: every registered chip's
// RegisterDependencies is invoked exactly once, after which device
// assembly must not create new signals that chips depend on.
func (s *Simulator) DeviceComplete() {
	if s.complete {
		return
	}
	for i := 0; i < s.chipN; i++ {
		s.chips[i].RegisterDependencies()
	}
	s.complete = true
}

// SimulateTimestep advances the simulator by exactly one call to
// Step, per the contract in package doc.
func (s *Simulator) SimulateTimestep() error {
	return s.Step()
}

// Step runs one full timestep of the simulator:
//  1. advance current_tick (by one if chips are already dirty, otherwise
//     jump straight to the scheduler's next wake-up),
//  2. fold in any scheduled wake-ups due at the new tick,
//  3. run every dirty chip's Process (concurrently across workers when
//     configured),
//  4. resolve high-impedance reconciliation,
//  5. cycle the signal pool and compute next timestep's dirty set.
func (s *Simulator) Step() error {
	if s.dirty != 0 {
		s.currentTick++
	} else {
		next := s.sched.NextTimestamp()
		if next == math.MaxInt64 {
			return fmt.Errorf("simulator: no dirty chips and no scheduled events; simulation is idle")
		}
		s.currentTick = next
	}

	s.dirty |= s.sched.PopDue(s.currentTick)

	s.processPass(s.dirty)

	rerun := s.Pool.ProcessHighImpedance()
	s.processSequential(rerun)

	s.dirty = s.Pool.Cycle(s.currentTick)
	return nil
}

// processPass runs every dirty chip's Process, partitioned across
// workers by chip ID modulo the worker count when concurrency is enabled, and forwards
// any schedule request the chip made.
func (s *Simulator) processPass(mask uint64) {
	if s.pool == nil || mask == 0 {
		s.processSequential(mask)
		return
	}
	s.pool.run(mask, func(id chip.ID) {
		s.runOne(id)
	})
}

// processSequential runs every chip set in mask, in ascending ID order,
// on the calling goroutine.
func (s *Simulator) processSequential(mask uint64) {
	for mask != 0 {
		id := chip.ID(bits.TrailingZeros64(mask))
		s.runOne(id)
		mask &^= 1 << uint(id)
	}
}

func (s *Simulator) runOne(id chip.ID) {
	c := s.chips[id]
	base := chipBase(c)
	c.Process()
	if base != nil {
		if ts, ok := base.TakeScheduled(); ok {
			_ = s.sched.Schedule(int(id)%maxInt(1, s.workerCount), int(id), ts)
		}
	}
}

// chipBase retrieves the embedded *chip.Base from a chip.Chip via the
// optional baseHolder interface every concrete chip implements by
// embedding chip.Base (Go promotes its methods but registering the
// schedule request requires the concrete pointer).
func chipBase(c chip.Chip) *chip.Base {
	if h, ok := c.(baseHolder); ok {
		return h.ChipBase()
	}
	return nil
}

// baseHolder is implemented by every concrete chip (generated by
// embedding chip.Base and adding a one-line ChipBase accessor); it lets
// the simulator retrieve the pending schedule request without a type
// switch per chip family.
type baseHolder interface {
	ChipBase() *chip.Base
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// workerPool runs the even/odd chip-ID partitioned process pass on a
// fixed set of persistent goroutines, woken each timestep by a condition
// variable and barriered on completion by a second — mirroring the
// original's mutex/cond worker protocol rather than spawning fresh
// goroutines every step.
type workerPool struct {
	mu           sync.Mutex
	workAvail    *sync.Cond
	workDone     *sync.Cond
	toStart      int
	toFinish     int
	mask         uint64
	runFn        func(chip.ID)
	workerCount  int
	shuttingDown bool
}

func newWorkerPool(workerCount int) *workerPool {
	wp := &workerPool{workerCount: workerCount}
	wp.workAvail = sync.NewCond(&wp.mu)
	wp.workDone = sync.NewCond(&wp.mu)
	for i := 0; i < workerCount; i++ {
		go wp.loop(i)
	}
	return wp
}

func (wp *workerPool) loop(workerID int) {
	wp.mu.Lock()
	for {
		for wp.toStart == 0 && !wp.shuttingDown {
			wp.workAvail.Wait()
		}
		if wp.shuttingDown {
			wp.mu.Unlock()
			return
		}
		wp.toStart--
		mask := wp.mask & partitionMask(workerID, wp.workerCount)
		fn := wp.runFn
		wp.mu.Unlock()

		for mask != 0 {
			id := chip.ID(bits.TrailingZeros64(mask))
			fn(id)
			mask &^= 1 << uint(id)
		}

		wp.mu.Lock()
		wp.toFinish--
		if wp.toFinish == 0 {
			wp.workDone.Signal()
		}
	}
}

// partitionMask returns the subset of a 64-chip dirty mask assigned to
// workerID: chip IDs congruent to workerID modulo workerCount. With two
// workers (the common case) this is the even/odd split the design calls
// for.
func partitionMask(workerID, workerCount int) uint64 {
	var mask uint64
	for id := workerID; id < 64; id += workerCount {
		mask |= 1 << uint(id)
	}
	return mask
}

func (wp *workerPool) run(mask uint64, fn func(chip.ID)) {
	wp.mu.Lock()
	wp.mask = mask
	wp.runFn = fn
	wp.toStart = wp.workerCount
	wp.toFinish = wp.workerCount
	wp.workAvail.Broadcast()
	for wp.toFinish > 0 {
		wp.workDone.Wait()
	}
	wp.mu.Unlock()
}

// close stops every worker goroutine. Safe to call once, after which the
// pool must not be reused.
func (wp *workerPool) close() {
	wp.mu.Lock()
	wp.shuttingDown = true
	wp.workAvail.Broadcast()
	wp.mu.Unlock()
}

// Close shuts down the simulator's worker goroutines, if any were
// started. Safe to call on a sequential (single-worker) Simulator as a
// no-op.
func (s *Simulator) Close() {
	if s.pool != nil {
		s.pool.close()
	}
}
