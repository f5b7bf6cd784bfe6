package signal

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func TestWriteReadNextRoundTrip(t *testing.T) {
	p := Create(4, 1)
	s := p.Allocate()
	p.Write(0, s, true, 0)
	if got := p.ReadNext(s); got != true {
		t.Fatalf("ReadNext after single writer write(true) = %v, want true\nstate: %s", got, spew.Sdump(p))
	}
}

func TestDefaultWhenNoWriters(t *testing.T) {
	p := Create(4, 1)
	s := p.Allocate()
	p.SetDefault(s, true)
	p.Cycle(1)
	if got := p.Read(s); got != true {
		t.Fatalf("Read with no writers = %v, want default true", got)
	}
}

func TestOpenDrainAND(t *testing.T) {
	tests := []struct {
		name   string
		values []bool
		want   bool
	}{
		{"all true", []bool{true, true, true}, true},
		{"one false", []bool{true, true, false}, false},
		{"single true", []bool{true}, true},
		{"single false", []bool{false}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := Create(4, 1)
			s := p.Allocate()
			for i, v := range tc.values {
				p.Write(0, s, v, i)
			}
			p.Cycle(1)
			if got := p.Read(s); got != tc.want {
				t.Fatalf("%s: resolved = %v, want %v", tc.name, got, tc.want)
			}
		})
	}
}

func TestZeroWritersYieldsDefault(t *testing.T) {
	p := Create(4, 1)
	s := p.Allocate()
	p.SetDefault(s, false)
	p.Write(0, s, true, 0)
	p.Cycle(1)
	if !p.Read(s) {
		t.Fatalf("expected driven true after first cycle")
	}
	p.ClearWriter(0, s, 0)
	p.Cycle(2)
	if p.Read(s) {
		t.Fatalf("expected default (false) once sole writer releases")
	}
}

func TestClearWriterRerunsRemainingWriters(t *testing.T) {
	p := Create(4, 1)
	s := p.Allocate()
	p.Write(0, s, true, 0)
	p.Write(0, s, false, 1)
	p.Cycle(1)
	if p.Read(s) {
		t.Fatalf("expected AND(true,false) = false")
	}
	p.ClearWriter(0, s, 1)
	rerun := p.ProcessHighImpedance()
	if rerun&(1<<0) == 0 {
		t.Fatalf("expected remaining writer (chip 0) to be marked for rerun, got mask %x", rerun)
	}
	p.Cycle(2)
	if !p.Read(s) {
		t.Fatalf("expected sole remaining writer's value (true) after release")
	}
}

func TestChangedTracksTransitionsOnly(t *testing.T) {
	p := Create(4, 1)
	s := p.Allocate()
	p.Write(0, s, true, 0)
	p.Cycle(1)
	if !p.Changed(s) {
		t.Fatalf("expected changed after first non-default write")
	}
	p.Write(0, s, true, 0)
	p.Cycle(2)
	if p.Changed(s) {
		t.Fatalf("expected no change when value repeats")
	}
}

func TestChangedDetectedWithMultipleWritersInOneTimestep(t *testing.T) {
	// A signal driven by 2+ chips in the same timestep (the spec's own
	// wired-OR/open-drain case, e.g. a shared IRQB line) appears more than
	// once in the touched list for that Cycle call; Changed must still
	// reflect the real current-vs-previous transition rather than
	// comparing the resolved value against itself.
	p := Create(4, 1)
	s := p.Allocate()
	p.SetDefault(s, true)
	p.Write(0, s, true, 0)
	p.Write(0, s, true, 1)
	p.Cycle(1)
	if p.Changed(s) {
		t.Fatalf("expected no change: default true, both writers true")
	}

	p.Write(0, s, true, 0)
	p.Write(0, s, false, 1)
	p.Cycle(2)
	if !p.Changed(s) {
		t.Fatalf("expected change when AND(true,false)=false diverges from prior true")
	}
	if p.Read(s) {
		t.Fatalf("expected resolved value false, got true")
	}
}

func TestDependentsMarkedDirtyOnChange(t *testing.T) {
	p := Create(4, 1)
	s := p.Allocate()
	if err := p.AddDependency(s, 3); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}
	p.Write(0, s, true, 0)
	dirty := p.Cycle(1)
	if dirty&(1<<3) == 0 {
		t.Fatalf("expected chip 3 dirty after dependency change, mask=%x", dirty)
	}
}

func TestNameLookup(t *testing.T) {
	p := Create(4, 1)
	s := p.Allocate()
	p.SetName(s, "CLK0")
	got, ok := p.ByName("CLK0")
	if !ok || got != s {
		t.Fatalf("ByName(CLK0) = (%v,%v), want (%v,true)", got, ok, s)
	}
	if p.Name(s) != "CLK0" {
		t.Fatalf("Name(s) = %q, want CLK0", p.Name(s))
	}
}

func TestGroupReadWrite(t *testing.T) {
	p := Create(8, 1)
	g, err := CreateGroup(p, "D", 8)
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	g.Write(p, 0, 0xA5, 0)
	p.Cycle(1)
	if got := g.Read(p); got != 0xA5 {
		t.Fatalf("group read = %#x, want 0xa5", got)
	}
}

func TestGroupWriteMasked(t *testing.T) {
	p := Create(8, 1)
	g, _ := CreateGroup(p, "B", 4)
	g.Write(p, 0, 0xF, 0)
	p.Cycle(1)
	g.WriteMasked(p, 0, 0x0, 0x1, 0) // clear only bit 0
	p.Cycle(2)
	if got := g.Read(p); got != 0xE {
		t.Fatalf("masked write result = %#x, want 0xe", got)
	}
}

func TestGroupTooWide(t *testing.T) {
	p := Create(8, 1)
	sigs := make([]Signal, 33)
	for i := range sigs {
		sigs[i] = p.Allocate()
	}
	if _, err := NewGroup(sigs); err == nil {
		t.Fatalf("expected TooWide error for 33-bit group")
	}
}

func TestHistoryRecordsOnlyWatchedSignals(t *testing.T) {
	p := Create(4, 1)
	h := NewHistory(8)
	p.AttachHistory(h)
	watched := p.Allocate()
	unwatched := p.Allocate()
	h.Watch(watched)

	p.Write(0, watched, true, 0)
	p.Write(0, unwatched, true, 0)
	p.Cycle(1)

	transitions := h.Transitions()
	if len(transitions) != 1 {
		t.Fatalf("expected exactly 1 recorded transition, got %d: %+v", len(transitions), transitions)
	}
	if transitions[0].Signal != watched || !transitions[0].Value || transitions[0].Tick != 1 {
		t.Fatalf("unexpected transition recorded: %+v", transitions[0])
	}
}

func TestHistoryRingOverwritesOldest(t *testing.T) {
	p := Create(4, 1)
	h := NewHistory(2)
	p.AttachHistory(h)
	s := p.Allocate()
	h.Watch(s)

	for tick := int64(1); tick <= 3; tick++ {
		p.Write(0, s, tick%2 == 1, 0)
		p.Cycle(tick)
	}
	got := h.Transitions()
	if len(got) != 2 {
		t.Fatalf("expected ring capped at 2 entries, got %d", len(got))
	}
	if got[0].Tick != 2 || got[1].Tick != 3 {
		t.Fatalf("expected oldest entry evicted, got ticks %d,%d", got[0].Tick, got[1].Tick)
	}
}
