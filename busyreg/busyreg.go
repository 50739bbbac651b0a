// Package busyreg reads busy-status words out of register files exposed by
// the platform, such as a sysfs binary attribute or a /dev/mem window.
package busyreg

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/sarchlab/inemuri/dpu"
)

// A Register is one 32-bit little-endian word at a fixed offset of a
// register file.
type Register struct {
	file   *os.File
	offset int64
}

// Map opens the register file and verifies that the word at offset is
// readable. A path that cannot be opened or read is a configuration error,
// not a runtime condition.
func Map(path string, offset int64) (*Register, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("busyreg: open %s: %w", path, err)
	}

	r := &Register{file: f, offset: offset}

	if _, err := r.read(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("busyreg: read %s at %#x: %w",
			path, offset, err)
	}

	return r, nil
}

// ReadBusyBits returns the current register word. Read failures after a
// successful mapping are absorbed and report zero: a vanished register
// must never veto a power transition.
func (r *Register) ReadBusyBits() uint32 {
	word, err := r.read()
	if err != nil {
		return 0
	}

	return word
}

// Close releases the register mapping.
func (r *Register) Close() error {
	return r.file.Close()
}

func (r *Register) read() (uint32, error) {
	var buf [4]byte
	if _, err := r.file.ReadAt(buf[:], r.offset); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(buf[:]), nil
}

var _ dpu.BusySignal = (*Register)(nil)
