package pet

import (
	"github.com/dromaius-sim/dromaius/chips/gate74xx"
	"github.com/dromaius-sim/dromaius/signal"
	"github.com/dromaius-sim/dromaius/simulator"
)

// addressDecode is the memory/IO address decode network, grounded on
// dev_commodore_pet.c's own glue-logic block (it builds the equivalent
// decode from a handful of 7400-family parts rather than a single
// lookup table). Two 74138 3-to-8 decoders do the heavy lifting: the
// first is enabled only for the upper 32K (G2B tied to NOT A15) and
// splits it into eight 4K regions keyed by A12-A14; the second is
// enabled only while the first's $E000-$EFFF output is asserted and
// splits that 2K further (in practice only 3 of its 8 outputs, spaced
// every $10 bytes starting at $10, are used) into the I/O block's three
// device selects.
type addressDecode struct {
	RAMCEB    signal.Signal // address[15], asserted when A15=0
	VRAMCEB   signal.Signal // SEL8_B: $8000-$8FFF
	Basic1CEB signal.Signal // SELB_B: $B000-$BFFF
	Basic2CEB signal.Signal // SELC_B: $C000-$CFFF
	Basic3CEB signal.Signal // SELD_B: $D000-$DFFF
	EditorCEB signal.Signal // SELE_B & !A11: $E000-$E7FF
	IOCEB     signal.Signal // SELE_B & A11: $E800-$EFFF
	KernalCEB signal.Signal // SELF_B: $F000-$FFFF

	PIA1CSB signal.Signal // active low, $E810-$E81F
	PIA2CSB signal.Signal // active low, $E820-$E82F
	VIACSB  signal.Signal // active low, $E840-$E84F

	// NotPIA1Sel/NotPIA2Sel/NotVIASel are the active-high complements of
	// PIA1CSB/PIA2CSB/VIACSB, feeding the active-high CS1/CS0 pins the
	// pia6520/via6522 Defs expect alongside their active-low CS2B input.
	NotPIA1Sel signal.Signal
	NotPIA2Sel signal.Signal
	NotVIASel  signal.Signal
}

// newAddressDecode allocates the decode network's signals and chips and
// registers them with sim. address is the CPU's 16-line address bus.
func newAddressDecode(sim *simulator.Simulator, address signal.Group) (*addressDecode, error) {
	pool := sim.Pool
	high := pool.Allocate()
	pool.SetName(high, "vcc")
	pool.SetDefault(high, true)
	low := pool.Allocate()
	pool.SetName(low, "gnd")
	pool.SetDefault(low, false)

	notA15 := pool.Allocate()
	pool.SetName(notA15, "not_a15")
	notA11 := pool.Allocate()
	pool.SetName(notA11, "not_a11")
	notPia1 := pool.Allocate()
	pool.SetName(notPia1, "not_pia1_sel")
	notPia2 := pool.Allocate()
	pool.SetName(notPia2, "not_pia2_sel")
	notVia := pool.Allocate()
	pool.SetName(notVia, "not_via_sel")
	spareOut1 := pool.Allocate()
	spareOut2 := pool.Allocate()

	inv1 := gate74xx.NewHexInverter(gate74xx.HexInverterDef{
		Inputs:  [6]signal.Signal{address[15], address[11], low, low, low, low},
		Outputs: [6]signal.Signal{notA15, notA11, spareOut1, spareOut2, pool.Allocate(), pool.Allocate()},
	})
	if _, err := sim.Register(&inv1.Base, inv1); err != nil {
		return nil, err
	}

	var sel1 [8]signal.Signal
	for i := range sel1 {
		sel1[i] = pool.Allocate()
	}
	dec1 := gate74xx.NewDecoder138(gate74xx.Decoder138Def{
		A: address[12], B: address[13], C: address[14],
		G1: high, G2A: low, G2B: notA15,
		Outputs: sel1,
	})
	if _, err := sim.Register(&dec1.Base, dec1); err != nil {
		return nil, err
	}

	editorCEB := pool.Allocate()
	pool.SetName(editorCEB, "editor_ce_b")
	ioCEB := pool.Allocate()
	pool.SetName(ioCEB, "io_ce_b")
	or := gate74xx.NewQuad(gate74xx.QuadDef{
		Function: gate74xx.Or2,
		Gates: [4]struct{ A, B, Y signal.Signal }{
			{A: sel1[6], B: address[11], Y: editorCEB},
			{A: sel1[6], B: notA11, Y: ioCEB},
			{A: low, B: low, Y: pool.Allocate()},
			{A: low, B: low, Y: pool.Allocate()},
		},
	})
	if _, err := sim.Register(&or.Base, or); err != nil {
		return nil, err
	}

	var sel2 [8]signal.Signal
	for i := range sel2 {
		sel2[i] = pool.Allocate()
	}
	dec2 := gate74xx.NewDecoder138(gate74xx.Decoder138Def{
		A: address[4], B: address[5], C: address[6],
		G1: high, G2A: low, G2B: ioCEB,
		Outputs: sel2,
	})
	if _, err := sim.Register(&dec2.Base, dec2); err != nil {
		return nil, err
	}

	pia1CSB, pia2CSB, viaCSB := sel2[1], sel2[2], sel2[4]

	inv2 := gate74xx.NewHexInverter(gate74xx.HexInverterDef{
		Inputs:  [6]signal.Signal{pia1CSB, pia2CSB, viaCSB, low, low, low},
		Outputs: [6]signal.Signal{notPia1, notPia2, notVia, pool.Allocate(), pool.Allocate(), pool.Allocate()},
	})
	if _, err := sim.Register(&inv2.Base, inv2); err != nil {
		return nil, err
	}

	return &addressDecode{
		RAMCEB:     address[15],
		VRAMCEB:    sel1[0],
		Basic1CEB:  sel1[3],
		Basic2CEB:  sel1[4],
		Basic3CEB:  sel1[5],
		EditorCEB:  editorCEB,
		IOCEB:      ioCEB,
		KernalCEB:  sel1[7],
		PIA1CSB:    pia1CSB,
		PIA2CSB:    pia2CSB,
		VIACSB:     viaCSB,
		NotPIA1Sel: notPia1,
		NotPIA2Sel: notPia2,
		NotVIASel:  notVia,
	}, nil
}
