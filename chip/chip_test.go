package chip

import (
	"testing"

	"github.com/dromaius-sim/dromaius/signal"
)

type fakeChip struct {
	Base
	processed int
}

func (f *fakeChip) ChipBase() *Base       { return &f.Base }
func (f *fakeChip) Process()              { f.processed++ }
func (f *fakeChip) RegisterDependencies() {}
func (f *fakeChip) Destroy()              {}

func newBoundChip(t *testing.T, pool *signal.Pool, id ID) *fakeChip {
	t.Helper()
	c := &fakeChip{Base: NewBase("fake")}
	c.Bind(id, pool)
	return c
}

func TestReadWriteReleaseThroughBase(t *testing.T) {
	pool := signal.Create(4, 1)
	s := pool.Allocate()
	c := newBoundChip(t, pool, 0)

	c.Write(s, true)
	pool.Cycle(1)
	if !c.Read(s) {
		t.Fatalf("expected Read true after Write(true) + Cycle")
	}

	c.Release(s)
	pool.Cycle(2)
	if c.Read(s) {
		t.Fatalf("expected default (false) after Release")
	}
}

func TestGroupHelpersThroughBase(t *testing.T) {
	pool := signal.Create(8, 1)
	g, err := signal.CreateGroup(pool, "D", 8)
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	c := newBoundChip(t, pool, 0)

	c.WriteGroup(g, 0xAB)
	pool.Cycle(1)
	if got := c.ReadGroup(g); got != 0xAB {
		t.Fatalf("ReadGroup = %#x, want 0xab", got)
	}

	c.WriteGroupMasked(g, 0x00, 0x0F)
	pool.Cycle(2)
	if got := c.ReadGroup(g); got != 0xA0 {
		t.Fatalf("ReadGroup after masked write = %#x, want 0xa0", got)
	}
}

func TestDependsOnRegistersDependency(t *testing.T) {
	pool := signal.Create(4, 1)
	s := pool.Allocate()
	c := newBoundChip(t, pool, 5)
	c.DependsOn(s)

	other := newBoundChip(t, pool, 1)
	other.Write(s, true)
	dirty := pool.Cycle(1)
	if dirty&c.Bit() == 0 {
		t.Fatalf("expected chip 5's bit set in dirty mask, got %x", dirty)
	}
}

func TestScheduleTakeScheduled(t *testing.T) {
	pool := signal.Create(1, 1)
	c := newBoundChip(t, pool, 0)

	if _, ok := c.TakeScheduled(); ok {
		t.Fatalf("expected no pending schedule initially")
	}
	c.Schedule(42)
	ts, ok := c.TakeScheduled()
	if !ok || ts != 42 {
		t.Fatalf("TakeScheduled = (%d,%v), want (42,true)", ts, ok)
	}
	if _, ok := c.TakeScheduled(); ok {
		t.Fatalf("expected schedule request to be consumed")
	}
}

func TestWorkerIDParity(t *testing.T) {
	pool := signal.Create(1, 2)
	even := newBoundChip(t, pool, 4)
	odd := newBoundChip(t, pool, 5)
	if got := even.workerID(); got != 0 {
		t.Fatalf("even chip id workerID = %d, want 0", got)
	}
	if got := odd.workerID(); got != 1 {
		t.Fatalf("odd chip id workerID = %d, want 1", got)
	}
}
