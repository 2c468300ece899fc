package main

import (
	"fmt"
	"os"

	"cdxos/internal/hal"
)

const sectorSize = 512

// fileDisk adapts a host file to hal.Disk, the same boundary the kernel's
// CFS1 mount consumes, so this tool and the kernel see identical bytes.
type fileDisk struct {
	f *os.File
}

// openImage opens an existing image file for read/write.
func openImage(path string) (*fileDisk, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &fileDisk{f: f}, nil
}

// openOrCreateImage opens path for read/write, creating and truncating it
// to sectors*512 bytes if it does not already exist at that size.
func openOrCreateImage(path string, sectors uint32) (*fileDisk, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	size := int64(sectors) * sectorSize
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, fmt.Errorf("truncate %s: %w", path, err)
	}
	return &fileDisk{f: f}, nil
}

func (d *fileDisk) Close() error {
	return d.f.Close()
}

func (d *fileDisk) ReadSectors(lba uint32, count uint32, buf []byte) error {
	n := count * sectorSize
	if uint32(len(buf)) < n {
		return &hal.IOError{Op: "read", LBA: lba}
	}
	off := int64(lba) * sectorSize
	if _, err := d.f.ReadAt(buf[:n], off); err != nil {
		return &hal.IOError{Op: "read", LBA: lba}
	}
	return nil
}

func (d *fileDisk) WriteSectors(lba uint32, count uint32, buf []byte) error {
	n := count * sectorSize
	if uint32(len(buf)) < n {
		return &hal.IOError{Op: "write", LBA: lba}
	}
	off := int64(lba) * sectorSize
	if _, err := d.f.WriteAt(buf[:n], off); err != nil {
		return &hal.IOError{Op: "write", LBA: lba}
	}
	return nil
}
