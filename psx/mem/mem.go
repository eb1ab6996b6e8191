// Package mem implements the PSX's byte/half/word-addressable memory
// stores: main RAM, the CPU scratchpad and the BIOS ROM. This mirrors
// jeebie/memory's plain []byte-backed stores, generalized from the Game
// Boy's single 64KiB address space to the PSX's three independent regions.
package mem

import (
	"fmt"
	"os"
)

// RAM is the PSX's 2MiB main memory.
type RAM struct {
	data []byte
}

// NewRAM allocates a fresh 2MiB RAM bank. Real hardware's RAM has undefined
// power-on contents; tests rely on this being deterministic, so we zero it.
func NewRAM(size uint32) *RAM {
	return &RAM{data: make([]byte, size)}
}

func (r *RAM) ReadByte(offset uint32) uint8    { return r.data[offset] }
func (r *RAM) ReadHalf(offset uint32) uint16   { return le16(r.data[offset:]) }
func (r *RAM) ReadWord(offset uint32) uint32   { return le32(r.data[offset:]) }
func (r *RAM) WriteByte(offset uint32, v uint8) { r.data[offset] = v }
func (r *RAM) WriteHalf(offset uint32, v uint16) { putLe16(r.data[offset:], v) }
func (r *RAM) WriteWord(offset uint32, v uint32) { putLe32(r.data[offset:], v) }

// Scratchpad is the 1KiB fast-RAM region backing the D-cache-as-scratchpad.
type Scratchpad struct {
	data [1024]byte
}

func NewScratchpad() *Scratchpad { return &Scratchpad{} }

func (s *Scratchpad) ReadByte(offset uint32) uint8    { return s.data[offset] }
func (s *Scratchpad) ReadHalf(offset uint32) uint16   { return le16(s.data[offset:]) }
func (s *Scratchpad) ReadWord(offset uint32) uint32   { return le32(s.data[offset:]) }
func (s *Scratchpad) WriteByte(offset uint32, v uint8) { s.data[offset] = v }
func (s *Scratchpad) WriteHalf(offset uint32, v uint16) { putLe16(s.data[offset:], v) }
func (s *Scratchpad) WriteWord(offset uint32, v uint32) { putLe32(s.data[offset:], v) }

// BIOS is the 512KiB system ROM. Writes are rejected by the interconnect
// before reaching here; BIOS itself only ever serves reads.
type BIOS struct {
	data []byte
}

// NewBIOS loads a 524,288-byte BIOS image from path, per spec.md §6.
func NewBIOS(path string) (*BIOS, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mem: failed to read BIOS image: %w", err)
	}
	if len(data) != int(0x80000) {
		return nil, fmt.Errorf("mem: BIOS image %q is %d bytes, want 524288", path, len(data))
	}
	return &BIOS{data: data}, nil
}

// NewBIOSFromBytes wraps an already-loaded 512KiB image, for tests.
func NewBIOSFromBytes(data []byte) (*BIOS, error) {
	if len(data) != int(0x80000) {
		return nil, fmt.Errorf("mem: BIOS image is %d bytes, want 524288", len(data))
	}
	return &BIOS{data: data}, nil
}

func (b *BIOS) ReadByte(offset uint32) uint8  { return b.data[offset] }
func (b *BIOS) ReadHalf(offset uint32) uint16 { return le16(b.data[offset:]) }
func (b *BIOS) ReadWord(offset uint32) uint32 { return le32(b.data[offset:]) }

func le16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func putLe16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

func putLe32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
