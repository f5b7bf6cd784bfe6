// Package romimage provides the small amount of I/O plumbing every
// device constructor needs to turn a raw binary blob into a chip's
// backing array: fixed-size ROM images and TAP cassette images. It owns
// no chip or simulator state of its own.
package romimage

import (
	"fmt"

	"github.com/dromaius-sim/dromaius/tapfile"
)

// SizeMismatch is returned when a ROM image's length doesn't match the
// chip variant it's destined for.
type SizeMismatch struct {
	Got, Want int
}

func (e SizeMismatch) Error() string {
	return fmt.Sprintf("romimage: got %d bytes, want exactly %d", e.Got, e.Want)
}

// Load validates data is exactly size bytes and returns a private copy,
// ready to hand to a memory.RomDef.Contents field. Loaded verbatim, with
// no byte-order or structure imposed — a ROM image is a flat dump of the
// chip's address space.
func Load(data []byte, size int) ([]byte, error) {
	if len(data) != size {
		return nil, SizeMismatch{Got: len(data), Want: size}
	}
	out := make([]byte, size)
	copy(out, data)
	return out, nil
}

// Pad behaves like Load but accepts data shorter than size, zero-filling
// the remainder — for ROM sockets commonly left partially populated
// (e.g. a half-size character generator image).
func Pad(data []byte, size int) ([]byte, error) {
	if len(data) > size {
		return nil, SizeMismatch{Got: len(data), Want: size}
	}
	out := make([]byte, size)
	copy(out, data)
	return out, nil
}

// LoadTape decodes data as a TAP image, ready to hand to a
// datassette.Chip's Load method.
func LoadTape(data []byte) (*tapfile.Tape, error) {
	return tapfile.Decode(data)
}
