package memory

import (
	"testing"

	"github.com/dromaius-sim/dromaius/signal"
)

func newPool() *signal.Pool { return signal.Create(64, 1) }

func mustGroup(t *testing.T, pool *signal.Pool, prefix string, width int) signal.Group {
	t.Helper()
	g, err := signal.CreateGroup(pool, prefix, width)
	if err != nil {
		t.Fatalf("CreateGroup(%s): %v", prefix, err)
	}
	return g
}

func TestSramWritesThenReads(t *testing.T) {
	pool := newPool()
	def := SramDef{
		Address: mustGroup(t, pool, "A", 10),
		Data:    mustGroup(t, pool, "D", 4),
		CEB:     pool.Allocate(),
		RW:      pool.Allocate(),
	}
	pool.SetDefault(def.CEB, false)

	sram := NewSram(def)
	sram.Bind(0, pool)

	// write 0b1010 to address 5
	def.Address.Write(pool, 0, 5, 0)
	def.Data.Write(pool, 0, 0b1010, 0)
	pool.Write(0, def.RW, false, 0)
	var tick int64
	pool.Cycle(tick)
	sram.Process()
	tick++
	pool.Cycle(tick)

	def.Data.Release(pool, 0, 0)
	pool.Write(0, def.RW, true, 0)
	tick++
	pool.Cycle(tick)
	sram.Process()
	tick++
	pool.Cycle(tick)

	if got := def.Data.Read(pool); got != 0b1010 {
		t.Fatalf("read back %#x, want 0xa", got)
	}
}

func TestSramTriStatesWhenDisabled(t *testing.T) {
	pool := newPool()
	def := SramDef{
		Address: mustGroup(t, pool, "A", 10),
		Data:    mustGroup(t, pool, "D", 4),
		CEB:     pool.Allocate(),
		RW:      pool.Allocate(),
	}
	pool.SetDefault(def.CEB, true) // disabled
	pool.SetDefault(def.RW, true)

	sram := NewSram(def)
	sram.Bind(0, pool)

	var tick int64
	pool.Cycle(tick)
	sram.Process()
	tick++
	pool.Cycle(tick)

	for i, s := range def.Data {
		if pool.Read(s) {
			t.Fatalf("data line %d high while chip disabled", i)
		}
	}
}

func TestRomDelaysOutputByAccessTime(t *testing.T) {
	pool := newPool()
	contents := make([]byte, 2048)
	contents[5] = 0x42
	def := RomDef{
		Address:        mustGroup(t, pool, "A", 11),
		Data:           mustGroup(t, pool, "D", 8),
		CS1B:           pool.Allocate(),
		Contents:       contents,
		AccessTimePS:   60_000,
		TickDurationPS: 1_000,
	}
	pool.SetDefault(def.CS1B, false)

	rom := NewRom(def)
	rom.Bind(0, pool)

	def.Address.Write(pool, 0, 5, 0)
	var tick int64
	pool.Cycle(tick)
	rom.Process() // address changed from -1: schedules, no data yet
	tick++
	pool.Cycle(tick)

	if got := def.Data.Read(pool); got != 0 {
		t.Fatalf("data = %#x before access time elapses, want 0", got)
	}

	tick = 60 // 60_000ps access time at 1_000ps per tick
	pool.Cycle(tick)
	rom.Process() // access time elapsed, address unchanged: produces data
	tick++
	pool.Cycle(tick)

	if got := def.Data.Read(pool); got != 0x42 {
		t.Fatalf("data = %#x, want 0x42", got)
	}
}

func TestDramLatchesRowThenColumnForRead(t *testing.T) {
	pool := newPool()
	def := Dram4116x8Def{
		Address:        mustGroup(t, pool, "A", 7),
		DataIn:         mustGroup(t, pool, "DI", 8),
		DataOut:        mustGroup(t, pool, "DO", 8),
		WEB:            pool.Allocate(),
		RASB:           pool.Allocate(),
		CASB:           pool.Allocate(),
		AccessTimePS:   100_000,
		TickDurationPS: 1_000,
	}
	pool.SetDefault(def.WEB, true)
	pool.SetDefault(def.RASB, true)
	pool.SetDefault(def.CASB, true)

	dram := NewDram4116x8(def)
	dram.Bind(0, pool)
	dram.data[3*128+7] = 0x99

	var tick int64
	pool.Cycle(tick)
	dram.Process()
	tick++
	pool.Cycle(tick)

	// latch row=3 on RAS falling edge
	def.Address.Write(pool, 0, 3, 0)
	pool.Write(0, def.RASB, false, 0)
	tick++
	pool.Cycle(tick)
	dram.Process()
	tick++
	pool.Cycle(tick)

	if dram.row != 3 {
		t.Fatalf("row = %d, want 3", dram.row)
	}

	// latch col=7 on CAS falling edge, WEB still high (read)
	def.Address.Write(pool, 0, 7, 0)
	pool.Write(0, def.CASB, false, 0)
	tick++
	pool.Cycle(tick)
	dram.Process()
	tick++
	pool.Cycle(tick)

	if dram.state != dramOutputBegin {
		t.Fatalf("expected dram to enter output-begin state after a read-mode CAS latch")
	}
}
