package gate74xx

import (
	"testing"

	"github.com/dromaius-sim/dromaius/signal"
)

func newPool() *signal.Pool { return signal.Create(16, 1) }

func TestQuadNand(t *testing.T) {
	pool := newPool()
	a, b, y := pool.Allocate(), pool.Allocate(), pool.Allocate()
	def := QuadDef{Function: Nand2}
	def.Gates[0] = struct{ A, B, Y signal.Signal }{a, b, y}
	g := NewQuad(def)
	g.Bind(0, pool)

	pool.Write(0, a, true, 0)
	pool.Write(0, b, true, 0)
	pool.Cycle(1)
	g.Process()
	pool.Cycle(2)
	if pool.Read(y) {
		t.Fatalf("NAND(1,1) = true, want false")
	}

	pool.Write(0, b, false, 0)
	pool.Cycle(3)
	g.Process()
	pool.Cycle(4)
	if !pool.Read(y) {
		t.Fatalf("NAND(1,0) = false, want true")
	}
}

func TestHexInverter(t *testing.T) {
	pool := newPool()
	in, out := pool.Allocate(), pool.Allocate()
	hv := NewHexInverter(HexInverterDef{Inputs: [6]signal.Signal{in}, Outputs: [6]signal.Signal{out}})
	hv.Bind(0, pool)

	pool.Write(0, in, true, 0)
	pool.Cycle(1)
	hv.Process()
	pool.Cycle(2)
	if pool.Read(out) {
		t.Fatalf("inverter(1) = true, want false")
	}
}

func TestDecoder7447DigitZero(t *testing.T) {
	pool := newPool()
	var def Decoder7447Def
	def.A, def.B, def.C, def.D = pool.Allocate(), pool.Allocate(), pool.Allocate(), pool.Allocate()
	def.LampTest, def.BlankingIn = pool.Allocate(), pool.Allocate()
	for i := range def.Segments {
		def.Segments[i] = pool.Allocate()
	}
	pool.SetDefault(def.LampTest, true)
	pool.SetDefault(def.BlankingIn, true)

	dec := NewDecoder7447(def)
	dec.Bind(0, pool)
	pool.Cycle(1)
	dec.Process()
	pool.Cycle(2)

	want := bcdToSevenSegment[0]
	for i, s := range def.Segments {
		if pool.Read(s) != want[i] {
			t.Fatalf("segment %d = %v, want %v", i, pool.Read(s), want[i])
		}
	}
}

func TestDecoder138SelectsOneOutput(t *testing.T) {
	pool := newPool()
	var def Decoder138Def
	def.A, def.B, def.C = pool.Allocate(), pool.Allocate(), pool.Allocate()
	def.G1, def.G2A, def.G2B = pool.Allocate(), pool.Allocate(), pool.Allocate()
	for i := range def.Outputs {
		def.Outputs[i] = pool.Allocate()
	}
	pool.SetDefault(def.G1, true)

	dec := NewDecoder138(def)
	dec.Bind(0, pool)
	pool.Write(0, def.B, true, 0) // select = 2
	pool.Cycle(1)
	dec.Process()
	pool.Cycle(2)

	for i, o := range def.Outputs {
		want := i != 2
		if pool.Read(o) != want {
			t.Fatalf("output %d = %v, want %v", i, pool.Read(o), want)
		}
	}
}

func TestMux153SelectsInput(t *testing.T) {
	pool := newPool()
	var def Mux153Def
	def.SelA, def.SelB = pool.Allocate(), pool.Allocate()
	def.InhibitA, def.InhibitB = pool.Allocate(), pool.Allocate()
	for i := range def.InputsA {
		def.InputsA[i] = pool.Allocate()
		def.InputsB[i] = pool.Allocate()
	}
	def.OutputA, def.OutputB = pool.Allocate(), pool.Allocate()

	mux := NewMux153(def)
	mux.Bind(0, pool)
	pool.Write(0, def.InputsA[3], true, 0)
	pool.Write(0, def.SelA, true, 0)
	pool.Write(0, def.SelB, true, 0) // sel = 3
	pool.Cycle(1)
	mux.Process()
	pool.Cycle(2)

	if !pool.Read(def.OutputA) {
		t.Fatalf("OutputA = false, want true (InputsA[3])")
	}
}
