// Package minimal6502 assembles the simplest possible device around the
// simulator: a 6502 CPU with 32 KiB of RAM and 32 KiB of ROM and nothing
// else, mirroring the original's dev_minimal_6502.c. It exists both as a
// unit-test harness for chips/cpu6502 wired against real memory chips,
// and as a minimal worked example of device assembly.
package minimal6502

import (
	"github.com/dromaius-sim/dromaius/chips/cpu6502"
	"github.com/dromaius-sim/dromaius/chips/gate74xx"
	"github.com/dromaius-sim/dromaius/chips/memory"
	"github.com/dromaius-sim/dromaius/chips/oscillator"
	"github.com/dromaius-sim/dromaius/cpu"
	"github.com/dromaius-sim/dromaius/signal"
	"github.com/dromaius-sim/dromaius/simulator"
)

const (
	// tickDurationPS is 100ns/tick (10MHz internal tick rate), giving the
	// 1MHz PHI2 clock below a clean 5-tick half period.
	tickDurationPS = 100_000
	clockHz        = 1_000_000
	ramSize        = 1 << 15 // 32 KiB, addresses 0x0000-0x7FFF
	romSize        = 1 << 15 // 32 KiB, addresses 0x8000-0xFFFF
)

// Device is a minimal 6502 board: CPU, RAM, ROM, and the clock driving
// them, wired together on one Simulator.
type Device struct {
	Sim   *simulator.Simulator
	CPU   *cpu6502.Chip
	RAM   *memory.Sram
	ROM   *memory.Rom
	Clock *oscillator.Oscillator

	resetB signal.Signal
}

// New constructs a Device. romData must be exactly romSize (32768) bytes,
// already validated by the caller (typically via romimage.Load); it is
// used directly as the ROM chip's backing array.
func New(romData []byte) (*Device, error) {
	sim := simulator.New(tickDurationPS, simulator.WithSignalCapacityHint(64))

	clockSig := sim.Pool.Allocate()
	sim.Pool.SetName(clockSig, "phi2")
	resetB := sim.Pool.Allocate()
	sim.Pool.SetName(resetB, "reset_b")
	sim.Pool.SetDefault(resetB, true)
	irqB := sim.Pool.Allocate()
	sim.Pool.SetDefault(irqB, true)
	nmiB := sim.Pool.Allocate()
	sim.Pool.SetDefault(nmiB, true)
	rdy := sim.Pool.Allocate()
	sim.Pool.SetDefault(rdy, false)

	address, err := signal.CreateGroup(sim.Pool, "addr", 16)
	if err != nil {
		return nil, err
	}
	data, err := signal.CreateGroup(sim.Pool, "data", 8)
	if err != nil {
		return nil, err
	}
	rwb := sim.Pool.Allocate()
	sim.Pool.SetName(rwb, "rwb")
	sim.Pool.SetDefault(rwb, true)
	sync := sim.Pool.Allocate()
	sim.Pool.SetName(sync, "sync")

	romCEB := sim.Pool.Allocate()
	sim.Pool.SetName(romCEB, "rom_ce_b")
	sim.Pool.SetDefault(romCEB, true)
	// A single 7404 inverter stands in for the minimal board's address
	// decode: RAM is selected directly by A15=0 (so its CEB can just be
	// A15 itself), ROM by A15=1 (CEB = NOT A15). The package's five
	// remaining gates are unused, as on the real board, wired to their
	// own unread signals so the chip's fixed 6-gate shape stays intact.
	spareIn := signal.Group{sim.Pool.Allocate(), sim.Pool.Allocate(), sim.Pool.Allocate(), sim.Pool.Allocate(), sim.Pool.Allocate()}
	spareOut := signal.Group{sim.Pool.Allocate(), sim.Pool.Allocate(), sim.Pool.Allocate(), sim.Pool.Allocate(), sim.Pool.Allocate()}
	addrDecode := gate74xx.NewHexInverter(gate74xx.HexInverterDef{
		Inputs:  [6]signal.Signal{address[15], spareIn[0], spareIn[1], spareIn[2], spareIn[3], spareIn[4]},
		Outputs: [6]signal.Signal{romCEB, spareOut[0], spareOut[1], spareOut[2], spareOut[3], spareOut[4]},
	})

	ram := memory.NewSram(memory.SramDef{
		Address: address[:15],
		Data:    data,
		CEB:     address[15],
		RW:      rwb,
	})
	rom := memory.NewRom(memory.RomDef{
		Address:        address[:15],
		Data:           data,
		CS1B:           romCEB,
		Contents:       romData,
		AccessTimePS:   0,
		TickDurationPS: tickDurationPS,
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
			{Base: 0x8000, Size: romSize, Device: rom},
		},
		OpenBusValue: 0xff,
	})
	if err != nil {
		return nil, err
	}

	clock := oscillator.New(oscillator.Def{
		FrequencyHz:    clockHz,
		TickDurationPS: tickDurationPS,
		ClkOut:         clockSig,
	})

	if _, err := sim.Register(&clock.Base, clock); err != nil {
		return nil, err
	}
	if _, err := sim.Register(&ram.Base, ram); err != nil {
		return nil, err
	}
	if _, err := sim.Register(&rom.Base, rom); err != nil {
		return nil, err
	}
	if _, err := sim.Register(&cpuChip.Base, cpuChip); err != nil {
		return nil, err
	}
	if _, err := sim.Register(&addrDecode.Base, addrDecode); err != nil {
		return nil, err
	}
	sim.DeviceComplete()

	return &Device{Sim: sim, CPU: cpuChip, RAM: ram, ROM: rom, Clock: clock, resetB: resetB}, nil
}

// Step advances the simulator by one timestep.
func (d *Device) Step() error {
	return d.Sim.Step()
}

// Reset mirrors dev_minimal_6502_reset: assert reset_b on the pool so
// anything watching the line observes the cycle, then drive the CPU
// core's own Reset() sequence to completion (6 ticks, loading PC from
// the reset vector) and deassert reset_b again. cpu6502.Chip's wrapper
// runs the core's reset directly rather than sampling a reset pin each
// Process() the way the original's reset_b input does, so this calls
// the core's Reset() explicitly instead of clocking the device through
// it via Step.
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
