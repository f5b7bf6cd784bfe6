// Package chip defines the contract every chip model in the simulator
// must implement, and the Base helper embedded by concrete chips to talk
// to the signal pool and scheduler without threading pool/id/scheduler
// arguments through every call.
package chip

import (
	"fmt"

	"github.com/dromaius-sim/dromaius/signal"
)

// ID is a chip's stable identifier, assigned at registration. It fits in
// 6 bits: at most signal.MaxChips chips may exist in one Simulator.
type ID int

// PinType describes how a chip uses one of its pins.
type PinType uint8

const (
	// Input marks a pin the chip reads.
	Input PinType = 1 << iota
	// Output marks a pin the chip writes.
	Output
	// Trigger marks a pin whose changes wake the chip (in addition to
	// whatever RegisterDependencies declares explicitly; most chips simply
	// register a dependency for every Trigger/Input pin).
	Trigger
)

// TooManyChips is returned when registering a chip would exceed
// signal.MaxChips.
type TooManyChips struct{}

func (TooManyChips) Error() string {
	return fmt.Sprintf("chip: cannot register more than %d chips", signal.MaxChips)
}

// Chip is the contract every component in the simulator obeys: a
// Process function invoked when dirty, a RegisterDependencies function
// invoked once at device-assembly time to declare which signals it
// reads, and a Destroy function for teardown. This is the trait-object
// form of the original's CHIP_PROCESS_FUNC/CHIP_DESTROY_FUNC/
// register_dependencies function pointer triplet.
type Chip interface {
	// Name returns the chip's human-readable name as registered.
	Name() string

	// Process runs one evaluation: read current signal values, write next
	// values or release them, and optionally request a future wake-up via
	// Base.Schedule. Must be idempotent within a single timestep (it may
	// be invoked twice: once in the main pass, once more during
	// high-impedance reconciliation).
	Process()

	// RegisterDependencies is called exactly once, after every chip has
	// been constructed, and must call Base.DependsOn for every signal this
	// chip's Process reads.
	RegisterDependencies()

	// Destroy releases any resources the chip holds. Most chips have
	// nothing to release.
	Destroy()
}

// Base is embedded as the first field of every concrete chip struct. It
// binds the chip to its assigned ID and the simulator's signal pool,
// providing the read/write/schedule operations Process needs without
// requiring the chip to carry pool/id arguments explicitly (the Go
// analog of the macro-elided signal_pool/chip_id arguments in the
// original C source).
type Base struct {
	id       ID
	name     string
	pool     *signal.Pool
	schedule int64
	hasSched bool
}

// NewBase constructs a Base with a placeholder ID of -1. Chip
// constructors call this; Simulator.Register assigns the real ID through
// Bind.
func NewBase(name string) Base {
	return Base{name: name, id: -1}
}

// ID returns the chip's assigned identifier. Only valid after
// registration with a Simulator.
func (b *Base) ID() ID { return b.id }

// Name returns the chip's human-readable name.
func (b *Base) Name() string { return b.name }

// Bind attaches the chip to its assigned ID and pool. Called once by the
// simulator at registration time.
func (b *Base) Bind(id ID, pool *signal.Pool) {
	b.id = id
	b.pool = pool
}

// Bound reports whether Bind has run yet. Most chips never need this
// (construction never touches the pool), but a chip whose constructor
// drives other, synchronous logic before registration — the 6502 core's
// power-on reset sequence, for instance — can use it to skip pool access
// until it's actually attached to one.
func (b *Base) Bound() bool { return b.pool != nil }

// Read returns the current value of s.
func (b *Base) Read(s signal.Signal) bool { return b.pool.Read(s) }

// ReadNext returns the not-yet-promoted next value of s.
func (b *Base) ReadNext(s signal.Signal) bool { return b.pool.ReadNext(s) }

// Changed reports whether s changed in the most recent cycle.
func (b *Base) Changed(s signal.Signal) bool { return b.pool.Changed(s) }

// CurrentTick returns the simulator's virtual time as of the most recent
// Cycle, for chips that must compute an absolute future schedule
// timestamp (ROM/DRAM access-time delays) rather than a relative one.
func (b *Base) CurrentTick() int64 { return b.pool.CurrentTick() }

// Write drives s to value as this chip.
func (b *Base) Write(s signal.Signal, value bool) {
	b.pool.Write(b.workerID(), s, value, int(b.id))
}

// Release tri-states this chip's drive on s.
func (b *Base) Release(s signal.Signal) {
	b.pool.ClearWriter(b.workerID(), s, int(b.id))
}

// ReadGroup returns g's current bus value.
func (b *Base) ReadGroup(g signal.Group) uint32 { return g.Read(b.pool) }

// ReadNextGroup returns g's not-yet-promoted bus value.
func (b *Base) ReadNextGroup(g signal.Group) uint32 { return g.ReadNext(b.pool) }

// WriteGroup drives every line of g from value.
func (b *Base) WriteGroup(g signal.Group, value uint32) {
	g.Write(b.pool, b.workerID(), value, int(b.id))
}

// WriteGroupMasked drives only the lines of g selected by mask.
func (b *Base) WriteGroupMasked(g signal.Group, value, mask uint32) {
	g.WriteMasked(b.pool, b.workerID(), value, mask, int(b.id))
}

// ReleaseGroup tri-states every line of g.
func (b *Base) ReleaseGroup(g signal.Group) {
	g.Release(b.pool, b.workerID(), int(b.id))
}

// DependsOn registers that this chip must be re-run whenever s changes.
// Only valid to call from RegisterDependencies.
func (b *Base) DependsOn(s signal.Signal) {
	_ = b.pool.AddDependency(s, int(b.id))
}

// DependsOnGroup registers a dependency on every signal in g.
func (b *Base) DependsOnGroup(g signal.Group) {
	for _, s := range g {
		b.DependsOn(s)
	}
}

// Schedule requests that Process be invoked again once the simulator
// reaches timestamp. Overwrites any previously requested, not-yet
// consumed schedule for this chip.
func (b *Base) Schedule(timestamp int64) {
	b.schedule = timestamp
	b.hasSched = true
}

// TakeScheduled returns the chip's pending schedule request, if any, and
// clears it. Called only by Simulator after a Process invocation.
func (b *Base) TakeScheduled() (int64, bool) {
	if !b.hasSched {
		return 0, false
	}
	b.hasSched = false
	return b.schedule, true
}

// Bit returns this chip's bit within a 64-bit chip mask.
func (b *Base) Bit() uint64 { return 1 << uint(b.id) }

// workerID assigns this chip to a write queue by its ID modulo the pool's
// worker count, matching the simulator's worker partition of the dirty set.
func (b *Base) workerID() int {
	if b.pool.WorkerCount() <= 1 {
		return 0
	}
	return int(b.id) % b.pool.WorkerCount()
}
