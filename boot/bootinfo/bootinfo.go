// Package bootinfo defines the two fixed structures Stage 1/Stage 2 and
// the kernel agree on: the on-disk boot metadata sector (§3, §6) and the
// low-memory bootinfo block Stage 2 leaves behind describing the VBE
// framebuffer it set up. Both are plain little-endian byte layouts,
// decoded with encoding/binary the way the rest of this tree avoids
// unsafe pointer casts over raw memory.
package bootinfo

import (
	"encoding/binary"
	"errors"
)

const (
	sectorSize = 512
	magic      = "CDX1"
)

// ErrBadMagic is returned by Decode when the sector doesn't start with
// the expected "CDX1" magic.
var ErrBadMagic = errors.New("bootinfo: bad magic")

// Metadata is the boot metadata sector at disk LBA 1 (§3): where Stage 2
// and the kernel image live so Stage 1 (which has no filesystem driver,
// only raw LBA reads) can load them.
type Metadata struct {
	Stage2LBA     uint16
	Stage2Sectors uint16
	KernelLBA     uint16
	KernelSectors uint16
	KernelBytes   uint32
}

// Encode serializes m into a zero-padded 512-byte sector (§3, property 1).
func Encode(m Metadata) [sectorSize]byte {
	var sec [sectorSize]byte
	copy(sec[0:4], magic)
	binary.LittleEndian.PutUint16(sec[4:6], m.Stage2LBA)
	binary.LittleEndian.PutUint16(sec[6:8], m.Stage2Sectors)
	binary.LittleEndian.PutUint16(sec[8:10], m.KernelLBA)
	binary.LittleEndian.PutUint16(sec[10:12], m.KernelSectors)
	binary.LittleEndian.PutUint32(sec[12:16], m.KernelBytes)
	return sec
}

// Decode parses a 512-byte sector previously produced by Encode
// (property 1's round-trip).
func Decode(sec []byte) (Metadata, error) {
	if len(sec) < 16 || string(sec[0:4]) != magic {
		return Metadata{}, ErrBadMagic
	}
	return Metadata{
		Stage2LBA:     binary.LittleEndian.Uint16(sec[4:6]),
		Stage2Sectors: binary.LittleEndian.Uint16(sec[6:8]),
		KernelLBA:     binary.LittleEndian.Uint16(sec[8:10]),
		KernelSectors: binary.LittleEndian.Uint16(sec[10:12]),
		KernelBytes:   binary.LittleEndian.Uint32(sec[12:16]),
	}, nil
}

// FramebufferInfo is the VBE mode Stage 2 negotiated, left at a fixed
// low-memory address for the kernel to pick up (§4.1's bootinfo
// structure, §9 "vbe_set... records the linear framebuffer").
type FramebufferInfo struct {
	PhysBase   uint32
	Width      uint16
	Height     uint16
	Pitch      uint16
	BitsPerPel uint8
}

const fbInfoSize = 16

// EncodeFramebuffer serializes fb into the fixed-size block the kernel
// reads out of low memory during bring-up.
func EncodeFramebuffer(fb FramebufferInfo) [fbInfoSize]byte {
	var b [fbInfoSize]byte
	binary.LittleEndian.PutUint32(b[0:4], fb.PhysBase)
	binary.LittleEndian.PutUint16(b[4:6], fb.Width)
	binary.LittleEndian.PutUint16(b[6:8], fb.Height)
	binary.LittleEndian.PutUint16(b[8:10], fb.Pitch)
	b[10] = fb.BitsPerPel
	return b
}

// DecodeFramebuffer is EncodeFramebuffer's inverse.
func DecodeFramebuffer(b []byte) FramebufferInfo {
	return FramebufferInfo{
		PhysBase:   binary.LittleEndian.Uint32(b[0:4]),
		Width:      binary.LittleEndian.Uint16(b[4:6]),
		Height:     binary.LittleEndian.Uint16(b[6:8]),
		Pitch:      binary.LittleEndian.Uint16(b[8:10]),
		BitsPerPel: b[10],
	}
}
