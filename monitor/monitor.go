// Package monitor implements the textual hardware monitor command
// interface: single-line commands that dump memory, toggle signal
// breakpoints, and drive run/step control, each returning a reply
// string (an error string for an undefined command), matching the
// original's panel_monitor command shell minus its GUI chrome.
package monitor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dromaius-sim/dromaius/execctx"
)

// MemoryReader is implemented by whatever backs the `m` command's
// address space — typically a device (devices/pet's Device implements it).
type MemoryReader interface {
	Peek(addr uint16) uint8
}

// Monitor parses and executes monitor command lines against an
// execution context and a memory reader.
type Monitor struct {
	ctx *execctx.Context
	mem MemoryReader
}

// New constructs a Monitor. mem may be nil if the `m` command isn't
// needed (it will simply report an error when invoked).
func New(ctx *execctx.Context, mem MemoryReader) *Monitor {
	return &Monitor{ctx: ctx, mem: mem}
}

// Exec runs one command line and returns its reply. An unrecognized
// command, or one with malformed arguments, returns an error string
// rather than returning a Go error — the monitor's external interface
// is request/reply text, exactly as spec.md describes it.
func (m *Monitor) Exec(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	switch fields[0] {
	case "m":
		return m.cmdMemory(fields[1:])
	case "sbp":
		return m.cmdBreakpoint(fields[1:])
	case "g":
		return m.cmdGo(fields[1:])
	case "s":
		return m.cmdStep(fields[1:])
	default:
		return fmt.Sprintf("? unknown command %q", fields[0])
	}
}

func (m *Monitor) cmdMemory(args []string) string {
	if len(args) != 2 {
		return "? usage: m <start> <end> (hex addresses)"
	}
	start, err := strconv.ParseUint(args[0], 16, 16)
	if err != nil {
		return fmt.Sprintf("? bad start address %q", args[0])
	}
	end, err := strconv.ParseUint(args[1], 16, 16)
	if err != nil {
		return fmt.Sprintf("? bad end address %q", args[1])
	}
	if end < start {
		return "? end address before start address"
	}
	if m.mem == nil {
		return "? no memory attached"
	}

	var sb strings.Builder
	for addr := start; addr <= end; addr += 16 {
		fmt.Fprintf(&sb, "%04x:", addr)
		for i := uint64(0); i < 16 && addr+i <= end; i++ {
			fmt.Fprintf(&sb, " %02x", m.mem.Peek(uint16(addr+i)))
		}
		sb.WriteByte('\n')
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func (m *Monitor) cmdBreakpoint(args []string) string {
	if len(args) != 2 {
		return "? usage: sbp <signal> +|-|*"
	}
	sig, ok := m.ctx.Simulator().Pool.ByName(args[0])
	if !ok {
		return fmt.Sprintf("? unknown signal %q", args[0])
	}
	switch args[1] {
	case "+":
		m.ctx.SetBreakpoint(sig, true, false)
		return fmt.Sprintf("breakpoint set on %s (rising edge)", args[0])
	case "-":
		m.ctx.SetBreakpoint(sig, false, true)
		return fmt.Sprintf("breakpoint set on %s (falling edge)", args[0])
	case "*":
		if m.ctx.ToggleBreakpoint(sig) {
			return fmt.Sprintf("breakpoint set on %s (either edge)", args[0])
		}
		return fmt.Sprintf("breakpoint cleared on %s", args[0])
	default:
		return fmt.Sprintf("? unknown edge selector %q (want +, -, or *)", args[1])
	}
}

func (m *Monitor) cmdGo(args []string) string {
	if len(args) != 0 {
		return "? usage: g"
	}
	m.ctx.Run()
	return "running"
}

func (m *Monitor) cmdStep(args []string) string {
	if len(args) != 0 {
		return "? usage: s"
	}
	m.ctx.SingleStep()
	return "stepped"
}
