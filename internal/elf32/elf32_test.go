package elf32

import (
	"encoding/binary"
	"errors"
	"testing"

	"cdxos/internal/config"
)

// buildELF assembles a minimal valid ELF32/EM_386/ET_EXEC image with one
// PT_LOAD segment, for tests. segData is placed at vaddr and entry
// points at its start.
func buildELF(t *testing.T, machine uint16, etype uint16, vaddr uint32, segData []byte) []byte {
	t.Helper()

	const phoff = ehSize
	fileLen := phoff + phSize + len(segData)
	buf := make([]byte, fileLen)

	buf[0], buf[1], buf[2], buf[3] = 0x7F, 'E', 'L', 'F'
	buf[4] = 1 // ELFCLASS32
	buf[5] = 1 // ELFDATA2LSB
	binary.LittleEndian.PutUint16(buf[16:18], etype)
	binary.LittleEndian.PutUint16(buf[18:20], machine)
	binary.LittleEndian.PutUint32(buf[24:28], vaddr) // e_entry
	binary.LittleEndian.PutUint32(buf[28:32], uint32(phoff))
	binary.LittleEndian.PutUint16(buf[42:44], phSize)
	binary.LittleEndian.PutUint16(buf[44:46], 1) // phnum

	ph := buf[phoff : phoff+phSize]
	binary.LittleEndian.PutUint32(ph[0:4], ptLoad)
	binary.LittleEndian.PutUint32(ph[4:8], uint32(phoff+phSize))
	binary.LittleEndian.PutUint32(ph[8:12], vaddr)
	binary.LittleEndian.PutUint32(ph[16:20], uint32(len(segData)))
	binary.LittleEndian.PutUint32(ph[20:24], uint32(len(segData)))

	copy(buf[phoff+phSize:], segData)
	return buf
}

// TestLoadValidHelloWorld covers the happy path of property 8: a valid
// hello-world ELF loads with the right entry point and its PT_LOAD
// contents intact, ready for the write(1,...) syscall to read back.
func TestLoadValidHelloWorld(t *testing.T) {
	msg := []byte("hello from user mode\n")
	image := buildELF(t, emI386, etExec, config.UserBase, msg)

	img, err := Load(image)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img.EntryVirt != config.UserBase {
		t.Fatalf("entry = %#x, want %#x", img.EntryVirt, config.UserBase)
	}
	data, ok := img.Read(config.UserBase, uint32(len(msg)))
	if !ok {
		t.Fatalf("segment data not readable at entry")
	}
	if string(data) != string(msg) {
		t.Fatalf("segment data = %q, want %q", data, msg)
	}
	if img.StackTop != config.UserTop {
		t.Fatalf("stack top = %#x, want %#x", img.StackTop, config.UserTop)
	}
}

// TestLoadRejectsWrongMachine covers property 8's "e_machine != EM_386
// is rejected".
func TestLoadRejectsWrongMachine(t *testing.T) {
	image := buildELF(t, 0x3E /* EM_X86_64 */, etExec, config.UserBase, []byte("x"))
	_, err := Load(image)
	if !errors.Is(err, ErrBadMachine) {
		t.Fatalf("err = %v, want ErrBadMachine", err)
	}
}

// TestLoadRejectsNullVaddr covers property 8's "a PT_LOAD with
// p_vaddr = 0 is rejected".
func TestLoadRejectsNullVaddr(t *testing.T) {
	image := buildELF(t, emI386, etExec, 0, []byte("x"))
	_, err := Load(image)
	if !errors.Is(err, ErrSegmentRange) {
		t.Fatalf("err = %v, want ErrSegmentRange", err)
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	image := buildELF(t, emI386, etExec, config.UserBase, []byte("x"))
	image[0] = 0x00
	if _, err := Load(image); !errors.Is(err, ErrBadMagic) {
		t.Fatalf("err = %v, want ErrBadMagic", err)
	}
}

func TestLoadRejectsSegmentOutsideUserTop(t *testing.T) {
	image := buildELF(t, emI386, etExec, config.UserTop-config.PageSize, make([]byte, config.PageSize*2))
	if _, err := Load(image); !errors.Is(err, ErrSegmentRange) {
		t.Fatalf("err = %v, want ErrSegmentRange", err)
	}
}

func TestLoadRejectsUnalignedVaddr(t *testing.T) {
	image := buildELF(t, emI386, etExec, config.UserBase+1, []byte("x"))
	if _, err := Load(image); !errors.Is(err, ErrSegmentAlign) {
		t.Fatalf("err = %v, want ErrSegmentAlign", err)
	}
}

func TestLoadRejectsNotExecutableType(t *testing.T) {
	image := buildELF(t, emI386, 1 /* ET_REL */, config.UserBase, []byte("x"))
	if _, err := Load(image); !errors.Is(err, ErrBadType) {
		t.Fatalf("err = %v, want ErrBadType", err)
	}
}
