// Package pet assembles the flagship device: a Commodore PET 2001N,
// grounded on original_source/src/dev_commodore_pet.c. It wires a 6502
// CPU, RAM, screen RAM, the BASIC-4/Editor/Kernal ROM set, two PIAs, a
// VIA, the raster CRT, and a datassette onto one signal-pool netlist,
// following the same construction shape devices/minimal6502 uses for
// its much smaller board.
package pet

import (
	"fmt"

	"github.com/dromaius-sim/dromaius/chips/crt"
	"github.com/dromaius-sim/dromaius/chips/cpu6502"
	"github.com/dromaius-sim/dromaius/chips/datassette"
	"github.com/dromaius-sim/dromaius/chips/memory"
	"github.com/dromaius-sim/dromaius/chips/oscillator"
	"github.com/dromaius-sim/dromaius/chips/pia6520"
	"github.com/dromaius-sim/dromaius/chips/via6522"
	"github.com/dromaius-sim/dromaius/cpu"
	"github.com/dromaius-sim/dromaius/signal"
	"github.com/dromaius-sim/dromaius/simulator"
)

const (
	// tickDurationPS gives a 1MHz PHI2 a clean 500-tick half period and
	// keeps the video-timing chip's pixel interval an exact tick count.
	tickDurationPS = 10_000
	clockHz        = 1_000_000

	ramSize      = 1 << 15 // $0000-$7FFF, Sram standing in for the board's DRAM bank
	vramSize     = 1 << 12 // $8000-$8FFF; only the low 1000 bytes (40x25) are addressed by video
	basicROMLen  = 1 << 12 // 4KB, one of three BASIC-4 ROM sockets
	editorROMLen = 1 << 11 // 2KB
	kernalROMLen = 1 << 12 // 4KB
	charROMLen   = 1 << 11 // 2KB, 256 glyphs * 8 bytes

	// pixelIntervalPS paces the video-timing chain; chosen so 320x200
	// pixels plus retrace land inside one ~1/60s frame, not a calibrated
	// reproduction of the PET's real 17.734MHz dot clock.
	pixelIntervalPS = 100_000
)

// ROMSet bundles every ROM image New needs, already sized by the caller
// (typically via romimage.Load/Pad).
type ROMSet struct {
	Basic1, Basic2, Basic3 []byte // 4KB each, $B000/$C000/$D000
	Editor                 []byte // 2KB, $E000-$E7FF
	Kernal                 []byte // 4KB, $F000-$FFFF
	CharGen                []byte // 2KB character generator
}

// Device is a Commodore PET 2001N: CPU, memory, the BASIC-4/Editor/
// Kernal ROM set, two PIAs, a VIA, a raster CRT, and a datassette, all
// wired onto one Simulator.
type Device struct {
	Sim *simulator.Simulator
	CPU *cpu6502.Chip

	RAM  *memory.Sram
	VRAM *memory.Sram

	Basic1, Basic2, Basic3 *memory.Rom
	Editor, Kernal         *memory.Rom
	CharGen                []byte

	PIA1 *pia6520.Chip
	PIA2 *pia6520.Chip
	VIA  *via6522.Chip

	CRT        *crt.Chip
	Datassette *datassette.Chip
	Clock      *oscillator.Oscillator

	decode *addressDecode
	video  *videoTiming

	resetB signal.Signal
}

// New constructs a Device from a populated ROMSet.
func New(roms ROMSet) (*Device, error) {
	if err := checkROMSizes(roms); err != nil {
		return nil, err
	}

	sim := simulator.New(tickDurationPS, simulator.WithSignalCapacityHint(256))
	pool := sim.Pool

	clockSig := pool.Allocate()
	pool.SetName(clockSig, "phi2")
	resetB := pool.Allocate()
	pool.SetName(resetB, "reset_b")
	pool.SetDefault(resetB, true)
	irqB := pool.Allocate()
	pool.SetName(irqB, "irq_b")
	pool.SetDefault(irqB, true)
	nmiB := pool.Allocate()
	pool.SetDefault(nmiB, true)
	rdy := pool.Allocate()
	pool.SetDefault(rdy, false)

	high := pool.Allocate()
	pool.SetName(high, "vcc")
	pool.SetDefault(high, true)

	address, err := signal.CreateGroup(pool, "addr", 16)
	if err != nil {
		return nil, err
	}
	data, err := signal.CreateGroup(pool, "data", 8)
	if err != nil {
		return nil, err
	}
	rwb := pool.Allocate()
	pool.SetName(rwb, "rwb")
	pool.SetDefault(rwb, true)
	sync := pool.Allocate()
	pool.SetName(sync, "sync")

	decode, err := newAddressDecode(sim, address)
	if err != nil {
		return nil, err
	}

	ram := memory.NewSram(memory.SramDef{Address: address[:15], Data: data, CEB: decode.RAMCEB, RW: rwb})
	vram := memory.NewSram(memory.SramDef{Address: address[:12], Data: data, CEB: decode.VRAMCEB, RW: rwb})

	basic1 := memory.NewRom(memory.RomDef{Address: address[:12], Data: data, CS1B: decode.Basic1CEB, Contents: roms.Basic1, TickDurationPS: tickDurationPS})
	basic2 := memory.NewRom(memory.RomDef{Address: address[:12], Data: data, CS1B: decode.Basic2CEB, Contents: roms.Basic2, TickDurationPS: tickDurationPS})
	basic3 := memory.NewRom(memory.RomDef{Address: address[:12], Data: data, CS1B: decode.Basic3CEB, Contents: roms.Basic3, TickDurationPS: tickDurationPS})
	editor := memory.NewRom(memory.RomDef{Address: address[:11], Data: data, CS1B: decode.EditorCEB, Contents: roms.Editor, TickDurationPS: tickDurationPS})
	kernal := memory.NewRom(memory.RomDef{Address: address[:12], Data: data, CS1B: decode.KernalCEB, Contents: roms.Kernal, TickDurationPS: tickDurationPS})

	portA, err := signal.CreateGroup(pool, "pia1-pa", 8)
	if err != nil {
		return nil, err
	}
	portB, err := signal.CreateGroup(pool, "pia1-pb", 8)
	if err != nil {
		return nil, err
	}
	rs0 := address[0]
	rs1 := address[1]
	pia1 := pia6520.New(pia6520.Def{
		Data: data, PortA: portA, PortB: portB,
		CA1: pool.Allocate(), CA2: pool.Allocate(),
		CB1: pool.Allocate(), CB2: pool.Allocate(),
		IRQAB: irqB, IRQBB: irqB,
		CS0: high, CS1: decode.NotPIA1Sel, CS2B: decode.PIA1CSB,
		RS0: rs0, RS1: rs1, ResetB: resetB, RW: rwb,
	})

	kbPortA, err := signal.CreateGroup(pool, "pia2-pa", 8)
	if err != nil {
		return nil, err
	}
	kbPortB, err := signal.CreateGroup(pool, "pia2-pb", 8)
	if err != nil {
		return nil, err
	}
	pia2 := pia6520.New(pia6520.Def{
		Data: data, PortA: kbPortA, PortB: kbPortB,
		CA1: pool.Allocate(), CA2: pool.Allocate(),
		CB1: pool.Allocate(), CB2: pool.Allocate(),
		IRQAB: irqB, IRQBB: irqB,
		CS0: high, CS1: decode.NotPIA2Sel, CS2B: decode.PIA2CSB,
		RS0: rs0, RS1: rs1, ResetB: resetB, RW: rwb,
	})

	viaPortA, err := signal.CreateGroup(pool, "via-pa", 8)
	if err != nil {
		return nil, err
	}
	viaPortB, err := signal.CreateGroup(pool, "via-pb", 8)
	if err != nil {
		return nil, err
	}
	// The VIA's 16 registers are addressed by A1-A4 within its I/O block,
	// same as the PIAs' RS0/RS1 above are A0/A1.
	viaRS := address[1:5]

	vertDrive := pool.Allocate()
	pool.SetName(vertDrive, "vert_drive")
	pool.SetDefault(vertDrive, true)
	horzDrive := pool.Allocate()
	pool.SetName(horzDrive, "horz_drive")
	videoBit := pool.Allocate()
	pool.SetName(videoBit, "video")

	via := via6522.New(via6522.Def{
		Data: data, PortA: viaPortA, PortB: viaPortB, RS: viaRS,
		CA1: vertDrive, CA2: pool.Allocate(),
		CB1: pool.Allocate(), CB2: pool.Allocate(),
		IRQB: irqB, ResetB: resetB, Enable: clockSig,
		CS1: decode.NotVIASel, CS2B: decode.VIACSB, RW: rwb,
	})

	cpuChip, err := cpu6502.New(cpu6502.Def{
		CPUType: cpu.CPU_NMOS,
		Clock:   clockSig,
		Address: address,
		Data:    data,
		RWB:     rwb,
		Sync:    sync,
		IRQB:    irqB,
		NMIB:    nmiB,
		RDY:     rdy,
		Mappings: []cpu6502.Mapping{
			{Base: 0x0000, Size: ramSize, Device: ram},
			{Base: 0x8000, Size: vramSize, Device: vram},
			{Base: 0xb000, Size: basicROMLen, Device: basic1},
			{Base: 0xc000, Size: basicROMLen, Device: basic2},
			{Base: 0xd000, Size: basicROMLen, Device: basic3},
			{Base: 0xe000, Size: editorROMLen, Device: editor},
			{Base: 0xf000, Size: kernalROMLen, Device: kernal},
		},
		OpenBusValue: 0xff,
	})
	if err != nil {
		return nil, err
	}

	clock := oscillator.New(oscillator.Def{FrequencyHz: clockHz, TickDurationPS: tickDurationPS, ClkOut: clockSig})

	video := newVideoTiming(videoTimingDef{
		Video:           videoBit,
		VertDrive:       vertDrive,
		HorzDrive:       horzDrive,
		VRAM:            vram,
		CharROM:         romPeeker(roms.CharGen),
		PixelIntervalPS: pixelIntervalPS,
		TickDurationPS:  tickDurationPS,
	})

	crtChip := crt.New(crt.Def{
		Video: videoBit, VertDrive: vertDrive, HorzDrive: horzDrive,
		Width: rasterW, Height: rasterH,
		PixelIntervalPS: pixelIntervalPS,
		VertOverscanPS:  pixelIntervalPS,
		HorzOverscanPS:  pixelIntervalPS,
		TickDurationPS:  tickDurationPS,
	})

	motor := pool.Allocate()
	pool.SetName(motor, "cass_motor")
	dataFromDS := pool.Allocate()
	pool.SetName(dataFromDS, "cass_read")
	dataToDS := pool.Allocate()
	pool.SetName(dataToDS, "cass_write")
	sense := pool.Allocate()
	pool.SetName(sense, "cass_sense")
	pool.SetDefault(sense, true)

	ds := datassette.New(datassette.Def{
		Motor: motor, DataFromDS: dataFromDS, DataToDS: dataToDS, Sense: sense,
		IdleIntervalPS: 1_000_000, TickDurationPS: tickDurationPS,
	})

	// The datassette's Motor, DataToDS, Sense and DataFromDS lines are not
	// connected to PIA2 or the VIA, and nothing else in this device drives
	// or reads them. This device has no keypad matrix model, so PIA2's
	// port A/B (the original's keypad row/column strobe lines) are left
	// undriven.
	if _, err := sim.Register(&pia1.Base, pia1); err != nil {
		return nil, err
	}
	if _, err := sim.Register(&pia2.Base, pia2); err != nil {
		return nil, err
	}
	if _, err := sim.Register(&via.Base, via); err != nil {
		return nil, err
	}
	if _, err := sim.Register(&ram.Base, ram); err != nil {
		return nil, err
	}
	if _, err := sim.Register(&vram.Base, vram); err != nil {
		return nil, err
	}
	if _, err := sim.Register(&basic1.Base, basic1); err != nil {
		return nil, err
	}
	if _, err := sim.Register(&basic2.Base, basic2); err != nil {
		return nil, err
	}
	if _, err := sim.Register(&basic3.Base, basic3); err != nil {
		return nil, err
	}
	if _, err := sim.Register(&editor.Base, editor); err != nil {
		return nil, err
	}
	if _, err := sim.Register(&kernal.Base, kernal); err != nil {
		return nil, err
	}
	if _, err := sim.Register(&cpuChip.Base, cpuChip); err != nil {
		return nil, err
	}
	if _, err := sim.Register(&clock.Base, clock); err != nil {
		return nil, err
	}
	if _, err := sim.Register(&video.Base, video); err != nil {
		return nil, err
	}
	if _, err := sim.Register(&crtChip.Base, crtChip); err != nil {
		return nil, err
	}
	if _, err := sim.Register(&ds.Base, ds); err != nil {
		return nil, err
	}
	sim.DeviceComplete()

	return &Device{
		Sim: sim, CPU: cpuChip,
		RAM: ram, VRAM: vram,
		Basic1: basic1, Basic2: basic2, Basic3: basic3,
		Editor: editor, Kernal: kernal, CharGen: roms.CharGen,
		PIA1: pia1, PIA2: pia2, VIA: via,
		CRT: crtChip, Datassette: ds, Clock: clock,
		decode: decode, video: video,
		resetB: resetB,
	}, nil
}

// romPeeker adapts a flat byte slice to the pixelSource/BusDevice-style
// Peek interface the character generator needs, without requiring a
// full memory.Rom chip (the character generator is never CPU-addressed
// on this board, only read by the video-timing chain).
type romPeeker []byte

func (r romPeeker) Peek(addr uint16) uint8 { return r[int(addr)&(len(r)-1)] }

// checkROMSizes validates every ROM image is exactly the size its
// socket expects before any chip is constructed from it.
func checkROMSizes(roms ROMSet) error {
	check := func(name string, got []byte, want int) error {
		if len(got) != want {
			return fmt.Errorf("pet: %s ROM is %d bytes, want %d", name, len(got), want)
		}
		return nil
	}
	if err := check("basic1", roms.Basic1, basicROMLen); err != nil {
		return err
	}
	if err := check("basic2", roms.Basic2, basicROMLen); err != nil {
		return err
	}
	if err := check("basic3", roms.Basic3, basicROMLen); err != nil {
		return err
	}
	if err := check("editor", roms.Editor, editorROMLen); err != nil {
		return err
	}
	if err := check("kernal", roms.Kernal, kernalROMLen); err != nil {
		return err
	}
	if err := check("char", roms.CharGen, charROMLen); err != nil {
		return err
	}
	return nil
}

// Step advances the simulator by one timestep.
func (d *Device) Step() error {
	return d.Sim.Step()
}

// Reset mirrors devices/minimal6502's Reset: it drives the CPU core's
// own Reset() sequence to completion rather than toggling a pool-sampled
// reset pin, for the same reason documented there (cpu6502.Chip has no
// ResetB field). The pool's reset_b line is still asserted/deasserted
// around it for any peripheral that watches it (the PIAs and VIA all do,
// via their own ResetB input).
func (d *Device) Reset() error {
	d.Sim.Pool.Write(0, d.resetB, false, -1)
	for {
		done, err := d.CPU.Core().Reset()
		if err != nil {
			return err
		}
		if done {
			break
		}
	}
	d.Sim.Pool.Write(0, d.resetB, true, -1)
	return d.Step()
}

// Peek satisfies monitor.MemoryReader for debugging, dispatching to
// whichever chip owns addr the same way the hardware's own address
// decode would, since cpu6502.Chip exposes no Peek of its own.
func (d *Device) Peek(addr uint16) uint8 {
	switch {
	case addr < 0x8000:
		return d.RAM.Peek(addr)
	case addr < 0x9000:
		return d.VRAM.Peek(addr - 0x8000)
	case addr >= 0xb000 && addr < 0xc000:
		return d.Basic1.Peek(addr - 0xb000)
	case addr >= 0xc000 && addr < 0xd000:
		return d.Basic2.Peek(addr - 0xc000)
	case addr >= 0xd000 && addr < 0xe000:
		return d.Basic3.Peek(addr - 0xd000)
	case addr >= 0xe000 && addr < 0xe800:
		return d.Editor.Peek(addr - 0xe000)
	case addr >= 0xf000:
		return d.Kernal.Peek(addr - 0xf000)
	default:
		return 0xff // unmapped I/O page or memory-hole read
	}
}
