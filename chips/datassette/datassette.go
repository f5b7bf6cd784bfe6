// Package datassette implements a Commodore 1530 datassette: a finite
// state machine driven by front-panel key presses, playing back or
// recording a TAP-format pulse stream over the read/write lines while
// its motor signal is asserted.
package datassette

import (
	"github.com/dromaius-sim/dromaius/chip"
	"github.com/dromaius-sim/dromaius/signal"
	"github.com/dromaius-sim/dromaius/tapfile"
)

// State is one of the datassette's front-panel states.
type State int

const (
	Idle State = iota
	TapeLoaded
	Playing
	Recording
	Rewinding
	FastForwarding
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case TapeLoaded:
		return "tape-loaded"
	case Playing:
		return "playing"
	case Recording:
		return "recording"
	case Rewinding:
		return "rewinding"
	case FastForwarding:
		return "fast-forwarding"
	default:
		return "unknown"
	}
}

// Key is a front-panel button. Not every key is valid in every state;
// Press silently ignores a key not in the current state's allowed set,
// matching the original hardware's interlock.
type Key int

const (
	KeyRecord Key = 1 << iota
	KeyPlay
	KeyRewind
	KeyFastForward
	KeyStop
	KeyEject
)

// validKeys maps each state to the mask of keys Press honors while in
// it.
var validKeys = map[State]Key{
	Idle:           0,
	TapeLoaded:     KeyRecord | KeyPlay | KeyRewind | KeyFastForward | KeyEject,
	Playing:        KeyStop,
	Recording:      KeyStop,
	Rewinding:      KeyStop,
	FastForwarding: KeyStop,
}

// rewindFfwdSamples is how many pulses one rewind/fast-forward tick
// skips, matching the original's TAP_REW_FFWD_SAMPLES.
const rewindFfwdSamples = 1000

// Def configures a Chip.
type Def struct {
	Motor      signal.Signal // input, active high while tape transport should run
	DataFromDS signal.Signal // output, the read line (square wave during playback)
	DataToDS   signal.Signal // input, the write line (pulses sampled during recording)
	Sense      signal.Signal // output, high while a motion state (play, record, rewind, fast-forward) is active, low otherwise

	IdleIntervalPS int64 // how often to re-check Motor while it's deasserted
	TickDurationPS int64
}

// Chip is the datassette. Construct with New, then Load a tape image
// before pressing Play/Record/Rewind/FastForward.
type Chip struct {
	chip.Base
	def Def

	state State
	tape  *tapfile.Tape
	pos   int

	senseOut bool
	dataOut  bool

	recording     bool
	recordPrevTick int64

	idleIntervalTicks int64
	nextTransition    int64
}

// New constructs a Chip with no tape loaded (state Idle).
func New(def Def) *Chip {
	idle := int64(1)
	if def.TickDurationPS > 0 {
		idle = def.IdleIntervalPS / def.TickDurationPS
		if idle < 1 {
			idle = 1
		}
	}
	return &Chip{
		Base:              chip.NewBase("datassette"),
		def:               def,
		senseOut:          false,
		dataOut:           true,
		idleIntervalTicks: idle,
	}
}

// ChipBase implements the simulator's baseHolder contract.
func (c *Chip) ChipBase() *chip.Base { return &c.Base }

// Destroy releases no resources.
func (c *Chip) Destroy() {}

// RegisterDependencies declares Motor and DataToDS as dependencies: the
// write line must be watched for recording edges, and Motor for the
// idle/running transition. The read line during playback is driven
// purely from this chip's own schedule.
func (c *Chip) RegisterDependencies() {
	c.DependsOn(c.def.Motor)
	c.DependsOn(c.def.DataToDS)
}

// State returns the datassette's current front-panel state.
func (c *Chip) State() State { return c.state }

// Load installs tape as the currently-loaded cassette and transitions to
// TapeLoaded, ejecting whatever was previously loaded.
func (c *Chip) Load(tape *tapfile.Tape) {
	c.tape = tape
	c.pos = 0
	c.changeState(TapeLoaded)
}

// NewTape loads a fresh, empty tape ready for recording.
func (c *Chip) NewTape() {
	c.Load(tapfile.New())
}

// Eject unloads the current tape and returns to Idle.
func (c *Chip) Eject() {
	c.changeState(Idle)
}

// SaveTape returns the currently loaded tape's encoded TAP bytes, or nil
// if no tape is loaded.
func (c *Chip) SaveTape() []byte {
	if c.tape == nil {
		return nil
	}
	return c.tape.Encode()
}

// Press simulates a front-panel button press. Keys not valid in the
// current state are ignored.
func (c *Chip) Press(key Key) {
	if validKeys[c.state]&key == 0 {
		return
	}
	switch key {
	case KeyRecord:
		c.changeState(Recording)
	case KeyPlay:
		c.changeState(Playing)
	case KeyRewind:
		c.changeState(Rewinding)
	case KeyFastForward:
		c.changeState(FastForwarding)
	case KeyStop:
		c.changeState(TapeLoaded)
	case KeyEject:
		c.changeState(Idle)
	}
}

func (c *Chip) changeState(s State) {
	switch s {
	case Idle:
		c.tape = nil
		c.senseOut = false
	case TapeLoaded:
		c.senseOut = false
	case Playing, Rewinding, FastForwarding:
		c.senseOut = true
	case Recording:
		c.senseOut = true
		c.recording = false
		c.recordPrevTick = 0
	}
	c.state = s
}

// Process implements the front-panel state machine: it always republishes
// Sense, then either measures write-line pulses (Recording) or drives the
// read line from the loaded tape's pulse stream (Playing), scheduling its
// own wake-ups for everything not driven directly by an input edge.
func (c *Chip) Process() {
	c.Write(c.def.Sense, c.senseOut)

	if c.state == Recording {
		c.processRecording()
		return
	}

	if !c.Read(c.def.Motor) {
		c.Schedule(c.CurrentTick() + c.idleIntervalTicks)
		return
	}

	switch c.state {
	case Playing:
		c.processPlaying()
	case Rewinding:
		c.processRewinding()
	case FastForwarding:
		c.processFastForwarding()
	default:
		c.Schedule(c.CurrentTick() + c.idleIntervalTicks)
	}
}

func (c *Chip) processRecording() {
	motor := c.Read(c.def.Motor)
	if motor && c.Read(c.def.DataToDS) && c.Changed(c.def.DataToDS) {
		now := c.CurrentTick()
		if c.recording {
			lengthTicks := now - c.recordPrevTick
			c.tape.AppendPulse(ticksToCycles(lengthTicks, c.def.TickDurationPS))
		}
		c.recordPrevTick = now
		c.recording = true
	}
	if !motor {
		c.Schedule(c.CurrentTick() + c.idleIntervalTicks)
	}
}

// processPlaying toggles the read line once per tape pulse, advancing to
// the next pulse on every toggle: a simplification of the original's
// two-toggle-per-byte square wave, chosen to match one toggle per pulse
// interval, as the spec's timing scenario calls for.
func (c *Chip) processPlaying() {
	if c.nextTransition > c.CurrentTick() {
		c.Schedule(c.nextTransition)
		return
	}
	if c.pos >= len(c.tape.Pulses) {
		c.changeState(TapeLoaded)
		return
	}
	c.dataOut = !c.dataOut
	c.Write(c.def.DataFromDS, c.dataOut)

	intervalPS := tapfile.IntervalPS(c.tape.Pulses[c.pos])
	c.pos++
	ticks := int64(1)
	if c.def.TickDurationPS > 0 {
		ticks = intervalPS / c.def.TickDurationPS
		if ticks < 1 {
			ticks = 1
		}
	}
	c.nextTransition = c.CurrentTick() + ticks
	c.Schedule(c.nextTransition)
}

func (c *Chip) processRewinding() {
	if c.nextTransition > c.CurrentTick() {
		c.Schedule(c.nextTransition)
		return
	}
	for i := 0; i < rewindFfwdSamples && c.pos > 0; i++ {
		c.pos--
	}
	if c.pos == 0 {
		c.changeState(TapeLoaded)
		return
	}
	c.nextTransition = c.CurrentTick() + c.idleIntervalTicks
	c.Schedule(c.nextTransition)
}

func (c *Chip) processFastForwarding() {
	if c.nextTransition > c.CurrentTick() {
		c.Schedule(c.nextTransition)
		return
	}
	for i := 0; i < rewindFfwdSamples && c.pos < len(c.tape.Pulses); i++ {
		c.pos++
	}
	if c.pos >= len(c.tape.Pulses) {
		c.changeState(TapeLoaded)
		return
	}
	c.nextTransition = c.CurrentTick() + c.idleIntervalTicks
	c.Schedule(c.nextTransition)
}

// ticksToCycles converts an elapsed tick count at tickDurationPS into
// C64 PAL reference clock cycles, the unit tapfile pulses are stored in.
func ticksToCycles(ticks, tickDurationPS int64) uint32 {
	if tickDurationPS <= 0 {
		return 0
	}
	ps := ticks * tickDurationPS
	cycles := ps * palFrequencyHz / 1_000_000_000_000
	if cycles < 0 {
		cycles = 0
	}
	return uint32(cycles)
}

const palFrequencyHz = 985248
