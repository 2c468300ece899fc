// Package elf32 implements the C11 ELF32 loader: header/program-header
// parsing and validation, segment placement within the user address
// window, and construction of the proc.UserImage a user task is spawned
// from (§4.7); spawning the task is left to the caller. Field layout follows the
// ELF32 spec directly; accessed with encoding/binary the way
// internal/kheap and internal/gdt decode their own on-disk/in-memory
// structures, rather than via unsafe pointer casts.
package elf32

import (
	"encoding/binary"
	"errors"

	"cdxos/internal/config"
	"cdxos/internal/proc"
)

// Rejection reasons (§4.7). Returned as errors.Is-comparable sentinels
// rather than an Err_t, since the loader is an internal API consumed by
// in-kernel callers, not a syscall return value.
var (
	ErrBadMagic       = errors.New("elf32: bad magic")
	ErrBadClass       = errors.New("elf32: not a 32-bit object")
	ErrBadData        = errors.New("elf32: not little-endian")
	ErrBadMachine     = errors.New("elf32: not EM_386")
	ErrBadType        = errors.New("elf32: not an executable")
	ErrSegmentRange   = errors.New("elf32: PT_LOAD outside user address range")
	ErrSegmentOverlap = errors.New("elf32: overlapping PT_LOAD segments")
	ErrSegmentAlign   = errors.New("elf32: unaligned p_vaddr")
	ErrSegmentSize    = errors.New("elf32: p_filesz exceeds p_memsz")
	ErrDynamic        = errors.New("elf32: dynamic linking unsupported (static only)")
	ErrTruncated      = errors.New("elf32: file shorter than header claims")
)

const (
	ehSize = 52
	phSize = 32

	etExec  = 2
	emI386  = 3
	elfMag0 = 0x7F

	ptLoad    = 1
	ptDynamic = 2
	ptInterp  = 3
)

// header is the subset of Elf32_Ehdr this loader inspects.
type header struct {
	entry   uint32
	phoff   uint32
	phentsz uint16
	phnum   uint16
}

// programHeader is Elf32_Phdr.
type programHeader struct {
	pType  uint32
	offset uint32
	vaddr  uint32
	filesz uint32
	memsz  uint32
	flags  uint32
	align  uint32
}

// Load validates img and builds the UserImage a Scheduler.SpawnUser call
// needs, without itself touching the scheduler (callers decide whether
// and when to spawn, e.g. after CFS1 file-read succeeds).
func Load(image []byte) (*proc.UserImage, error) {
	h, err := parseHeader(image)
	if err != nil {
		return nil, err
	}

	var regions []proc.Region
	for i := 0; i < int(h.phnum); i++ {
		off := int(h.phoff) + i*phSize
		if off+phSize > len(image) {
			return nil, ErrTruncated
		}
		ph := parseProgramHeader(image[off : off+phSize])

		switch ph.pType {
		case ptDynamic, ptInterp:
			return nil, ErrDynamic
		case ptLoad:
			r, err := buildRegion(image, ph)
			if err != nil {
				return nil, err
			}
			if overlaps(regions, r) {
				return nil, ErrSegmentOverlap
			}
			regions = append(regions, r)
		}
	}

	stack := proc.Region{
		Virt: config.UserTop - config.UserStackSize,
		Len:  config.UserStackSize,
		Data: make([]byte, config.UserStackSize),
	}
	regions = append(regions, stack)

	return &proc.UserImage{
		EntryVirt: h.entry,
		StackTop:  config.UserTop,
		Regions:   regions,
	}, nil
}

func parseHeader(image []byte) (header, error) {
	if len(image) < ehSize {
		return header{}, ErrTruncated
	}
	if image[0] != elfMag0 || image[1] != 'E' || image[2] != 'L' || image[3] != 'F' {
		return header{}, ErrBadMagic
	}
	if image[4] != 1 { // EI_CLASS: ELFCLASS32
		return header{}, ErrBadClass
	}
	if image[5] != 1 { // EI_DATA: ELFDATA2LSB
		return header{}, ErrBadData
	}
	etype := binary.LittleEndian.Uint16(image[16:18])
	machine := binary.LittleEndian.Uint16(image[18:20])
	if machine != emI386 {
		return header{}, ErrBadMachine
	}
	if etype != etExec {
		return header{}, ErrBadType
	}

	h := header{
		entry:   binary.LittleEndian.Uint32(image[24:28]),
		phoff:   binary.LittleEndian.Uint32(image[28:32]),
		phentsz: binary.LittleEndian.Uint16(image[42:44]),
		phnum:   binary.LittleEndian.Uint16(image[44:46]),
	}
	return h, nil
}

func parseProgramHeader(b []byte) programHeader {
	return programHeader{
		pType:  binary.LittleEndian.Uint32(b[0:4]),
		offset: binary.LittleEndian.Uint32(b[4:8]),
		vaddr:  binary.LittleEndian.Uint32(b[8:12]),
		filesz: binary.LittleEndian.Uint32(b[16:20]),
		memsz:  binary.LittleEndian.Uint32(b[20:24]),
		flags:  binary.LittleEndian.Uint32(b[24:28]),
		align:  binary.LittleEndian.Uint32(b[28:32]),
	}
}

// buildRegion validates one PT_LOAD entry against the user address
// window and constructs its backing memory, copying p_filesz bytes from
// the ELF image and zeroing the p_memsz-p_filesz remainder (§4.7).
func buildRegion(image []byte, ph programHeader) (proc.Region, error) {
	if ph.vaddr < config.UserBase || ph.vaddr+ph.memsz > config.UserTop || ph.vaddr+ph.memsz < ph.vaddr {
		return proc.Region{}, ErrSegmentRange
	}
	if ph.vaddr%config.PageSize != 0 {
		return proc.Region{}, ErrSegmentAlign
	}
	if ph.filesz > ph.memsz {
		return proc.Region{}, ErrSegmentSize
	}
	if uint64(ph.offset)+uint64(ph.filesz) > uint64(len(image)) {
		return proc.Region{}, ErrTruncated
	}

	data := make([]byte, ph.memsz)
	copy(data, image[ph.offset:ph.offset+ph.filesz])

	return proc.Region{Virt: ph.vaddr, Len: ph.memsz, Data: data}, nil
}

func overlaps(existing []proc.Region, r proc.Region) bool {
	for _, e := range existing {
		if r.Virt < e.Virt+e.Len && e.Virt < r.Virt+r.Len {
			return true
		}
	}
	return false
}
