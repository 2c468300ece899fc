// Package cfs1 implements the C12 on-disk filesystem (§3, §4.8): a flat
// superblock + fixed directory + sequentially-allocated data extents,
// built against hal.Disk the way biscuit's fs package is built against
// common.Disk_i. CFS1 trades fragmentation for a bump-only allocator in
// exchange for never needing a free-extent map (spec.md's explicit
// design tradeoff for write()).
package cfs1

import (
	"encoding/binary"
	"errors"
	"sync"

	"cdxos/internal/hal"
)

const (
	sectorSize = 512

	superblockLBA    = 0
	dirStartLBA      = 1
	dirSectors       = 16
	dataStartSector  = dirStartLBA + dirSectors // 17
	fileLimit        = dirSectors * entriesPerSector // 128: every slot the 16 directory sectors hold
	entrySize        = 64
	entriesPerSector = sectorSize / entrySize

	nameMaxLen = 31 // name[32] with one reserved NUL terminator byte

	magic   = "CFS1"
	version = 1

	flagInUse = 1 << 0
)

// Errors returned at the cfs1 API boundary (§4.8 "Failure surface").
var (
	ErrNotFound      = errors.New("cfs1: file not found")
	ErrAlreadyExists = errors.New("cfs1: file already exists")
	ErrNameInvalid   = errors.New("cfs1: invalid file name")
	ErrDiskFull      = errors.New("cfs1: disk full")
	ErrDirFull       = errors.New("cfs1: directory full")
)

// DirEntry is one CFS1 directory slot (§3, 64 bytes on disk).
type DirEntry struct {
	Name        string
	Size        uint32
	StartSector uint32
	inUse       bool
}

// FS is a mounted CFS1 volume, guarded by a single mutex per spec.md
// §4.8's "lock-protected by a single filesystem mutex" — every operation
// takes the lock for its entire duration rather than per-sector.
type FS struct {
	disk hal.Disk
	mu   sync.Mutex

	totalSectors uint32
	freeCursor   uint32
}

// Mount reads the superblock of an already-formatted disk. Returns
// hal.IOError if the read fails, or an error if the magic doesn't match.
func Mount(disk hal.Disk) (*FS, error) {
	buf := make([]byte, sectorSize)
	if err := disk.ReadSectors(superblockLBA, 1, buf); err != nil {
		return nil, err
	}
	if string(buf[0:4]) != magic {
		return nil, errors.New("cfs1: bad superblock magic")
	}
	total := binary.LittleEndian.Uint32(buf[6:10])
	cursor := binary.LittleEndian.Uint32(buf[20:24])
	return &FS{disk: disk, totalSectors: total, freeCursor: cursor}, nil
}

// Format writes a fresh superblock and zeroes the directory region
// (§4.8 format()). totalSectors is the disk's full extent in 512-byte
// sectors, as reported by the caller (the filesystem does not probe
// disk size itself).
func Format(disk hal.Disk, totalSectors uint32) (*FS, error) {
	fs := &FS{disk: disk, totalSectors: totalSectors, freeCursor: dataStartSector}
	if err := fs.writeSuperblock(); err != nil {
		return nil, err
	}
	zero := make([]byte, sectorSize)
	for i := 0; i < dirSectors; i++ {
		if err := disk.WriteSectors(uint32(dirStartLBA+i), 1, zero); err != nil {
			return nil, err
		}
	}
	return fs, nil
}

// writeSuperblock encodes the on-disk layout: magic,
// version u16, total_sectors u32, dir_sectors u32(16),
// data_start_sector u32(17), file_limit u16(128), free-cursor u32.
func (fs *FS) writeSuperblock() error {
	buf := make([]byte, sectorSize)
	copy(buf[0:4], magic)
	binary.LittleEndian.PutUint16(buf[4:6], version)
	binary.LittleEndian.PutUint32(buf[6:10], fs.totalSectors)
	binary.LittleEndian.PutUint32(buf[10:14], dirSectors)
	binary.LittleEndian.PutUint32(buf[14:18], dataStartSector)
	binary.LittleEndian.PutUint16(buf[18:20], fileLimit)
	binary.LittleEndian.PutUint32(buf[20:24], fs.freeCursor)
	return fs.disk.WriteSectors(superblockLBA, 1, buf)
}

func validName(name string) bool {
	n := len(name)
	if n < 1 || n > nameMaxLen {
		return false
	}
	for i := 0; i < n; i++ {
		c := name[i]
		if c < 0x20 || c > 0x7E || c == '/' {
			return false
		}
	}
	return true
}

func ceilSectors(n uint32) uint32 {
	return (n + sectorSize - 1) / sectorSize
}

// readDirEntry decodes the entry at directory index idx.
func (fs *FS) readDirEntry(idx int) (DirEntry, error) {
	sec := idx / entriesPerSector
	off := (idx % entriesPerSector) * entrySize
	buf := make([]byte, sectorSize)
	if err := fs.disk.ReadSectors(uint32(dirStartLBA+sec), 1, buf); err != nil {
		return DirEntry{}, err
	}
	return decodeEntry(buf[off : off+entrySize]), nil
}

// writeDirEntry encodes and stores e at directory index idx.
func (fs *FS) writeDirEntry(idx int, e DirEntry) error {
	sec := idx / entriesPerSector
	off := (idx % entriesPerSector) * entrySize
	buf := make([]byte, sectorSize)
	if err := fs.disk.ReadSectors(uint32(dirStartLBA+sec), 1, buf); err != nil {
		return err
	}
	encodeEntry(buf[off:off+entrySize], e)
	return fs.disk.WriteSectors(uint32(dirStartLBA+sec), 1, buf)
}

func decodeEntry(b []byte) DirEntry {
	nameEnd := 0
	for nameEnd < 32 && b[nameEnd] != 0 {
		nameEnd++
	}
	flags := b[40]
	return DirEntry{
		Name:        string(b[0:nameEnd]),
		Size:        binary.LittleEndian.Uint32(b[32:36]),
		StartSector: binary.LittleEndian.Uint32(b[36:40]),
		inUse:       flags&flagInUse != 0,
	}
}

func encodeEntry(b []byte, e DirEntry) {
	for i := range b {
		b[i] = 0
	}
	copy(b[0:32], e.Name)
	binary.LittleEndian.PutUint32(b[32:36], e.Size)
	binary.LittleEndian.PutUint32(b[36:40], e.StartSector)
	if e.inUse {
		b[40] = flagInUse
	}
}

// List returns every in-use directory entry (§4.8 list()).
func (fs *FS) List() ([]DirEntry, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var out []DirEntry
	for i := 0; i < fileLimit; i++ {
		e, err := fs.readDirEntry(i)
		if err != nil {
			return nil, err
		}
		if e.inUse {
			out = append(out, e)
		}
	}
	return out, nil
}

func (fs *FS) findLocked(name string) (int, DirEntry, bool, error) {
	firstFree := -1
	for i := 0; i < fileLimit; i++ {
		e, err := fs.readDirEntry(i)
		if err != nil {
			return 0, DirEntry{}, false, err
		}
		if e.inUse && e.Name == name {
			return i, e, true, nil
		}
		if !e.inUse && firstFree == -1 {
			firstFree = i
		}
	}
	return firstFree, DirEntry{}, false, nil
}

// Create writes a new file (§4.8 create()). Rejects a duplicate name, a
// full directory, or insufficient remaining sectors.
func (fs *FS) Create(name string, data []byte) error {
	if !validName(name) {
		return ErrNameInvalid
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	slot, _, exists, err := fs.findLocked(name)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyExists
	}
	if slot == -1 {
		return ErrDirFull
	}

	need := ceilSectors(uint32(len(data)))
	if fs.freeCursor+need > fs.totalSectors {
		return ErrDiskFull
	}

	if err := fs.writeData(fs.freeCursor, data); err != nil {
		return err
	}

	e := DirEntry{Name: name, Size: uint32(len(data)), StartSector: fs.freeCursor, inUse: true}
	if err := fs.writeDirEntry(slot, e); err != nil {
		return err
	}
	fs.freeCursor += need
	return fs.writeSuperblock()
}

func (fs *FS) writeData(startSector uint32, data []byte) error {
	need := ceilSectors(uint32(len(data)))
	if need == 0 {
		return nil
	}
	buf := make([]byte, need*sectorSize)
	copy(buf, data)
	return fs.disk.WriteSectors(startSector, need, buf)
}

// Read returns the full contents of name (§4.8 read()), truncated to
// its recorded size (the last sector of an extent may contain stale
// bytes past size).
func (fs *FS) Read(name string) ([]byte, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	_, e, found, err := fs.findLocked(name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}

	need := ceilSectors(e.Size)
	buf := make([]byte, need*sectorSize)
	if need > 0 {
		if err := fs.disk.ReadSectors(e.StartSector, need, buf); err != nil {
			return nil, err
		}
	}
	return buf[:e.Size], nil
}

// Write replaces name's contents (§4.8 write()): delete-then-create,
// bump-allocating a fresh extent rather than reusing the old one.
func (fs *FS) Write(name string, data []byte) error {
	if !validName(name) {
		return ErrNameInvalid
	}
	fs.mu.Lock()
	slot, _, exists, err := fs.findLocked(name)
	if err != nil {
		fs.mu.Unlock()
		return err
	}
	if exists {
		var empty DirEntry
		if err := fs.writeDirEntry(slot, empty); err != nil {
			fs.mu.Unlock()
			return err
		}
	}
	fs.mu.Unlock()
	return fs.Create(name, data)
}

// UsedBytes returns how many bytes of the data region are committed to
// the current free_cursor, and FreeBytes the remainder before the disk
// reports DiskFull. Derived from the superblock the way
// original_source/src/fs.rs's directory exposes used_bytes()/
// free_bytes() accounting; additive to spec.md's list(), same extent
// invariants.
func (fs *FS) UsedBytes() uint64 {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return uint64(fs.freeCursor-dataStartSector) * sectorSize
}

func (fs *FS) FreeBytes() uint64 {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.freeCursor >= fs.totalSectors {
		return 0
	}
	return uint64(fs.totalSectors-fs.freeCursor) * sectorSize
}

// Delete clears name's directory slot (§4.8 delete()); its data extent
// is not reclaimed until the next Format.
func (fs *FS) Delete(name string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	slot, _, found, err := fs.findLocked(name)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	var empty DirEntry
	return fs.writeDirEntry(slot, empty)
}
