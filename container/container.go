// Package container implements the fixed bytecode container layout
// produced by the assembler and consumed by the VM: a 64-byte header
// followed by code, four bytes per instruction.
package container

import "fmt"

// HeaderSize is the fixed size, in bytes, of every container header.
const HeaderSize = 64

// Magic is the 4-byte prefix that opens every header: "-21-" in ASCII.
var Magic = [4]byte{0x2D, 0x32, 0x31, 0x2D} // "-21-"

// Wrap prepends a zero-filled 64-byte header (magic in the first 4 bytes)
// to code, producing the final assembler output.
func Wrap(code []byte) []byte {
	out := make([]byte, HeaderSize+len(code))
	copy(out, Magic[:])
	copy(out[HeaderSize:], code)
	return out
}

// Split validates the header of a container and returns the code bytes that
// follow it. It fails if the buffer is shorter than the header, if the
// magic prefix doesn't match, or if the code length isn't a multiple of 4.
func Split(raw []byte) (code []byte, err error) {
	if len(raw) < HeaderSize {
		return nil, fmt.Errorf("container: buffer too short: %d bytes, need at least %d", len(raw), HeaderSize)
	}
	for i, want := range Magic {
		if raw[i] != want {
			return nil, fmt.Errorf("container: bad magic at byte %d: got %#02x, want %#02x", i, raw[i], want)
		}
	}
	code = raw[HeaderSize:]
	if len(code)%4 != 0 {
		return nil, fmt.Errorf("container: code length %d is not a multiple of 4", len(code))
	}
	return code, nil
}
