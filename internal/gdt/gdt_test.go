package gdt

import "testing"

func TestNewLayoutMatchesDesign(t *testing.T) {
	tbl := New(0xDEAD0000)

	null := tbl.Descriptor(0)
	for _, b := range null {
		if b != 0 {
			t.Fatalf("null descriptor must be all-zero, got %v", null)
		}
	}

	kcode := tbl.Descriptor(1)
	if kcode[5]&accExec == 0 {
		t.Fatal("ring-0 code descriptor must be executable")
	}
	if kcode[5]&accRing3 != 0 {
		t.Fatal("ring-0 code descriptor must not carry ring-3 DPL bits")
	}

	ucode := tbl.Descriptor(3)
	if ucode[5]&accRing3 != accRing3 {
		t.Fatal("ring-3 code descriptor must carry DPL=3")
	}
	if ucode[5]&accExec == 0 {
		t.Fatal("ring-3 code descriptor must be executable")
	}

	udata := tbl.Descriptor(4)
	if udata[5]&accExec != 0 {
		t.Fatal("ring-3 data descriptor must not be executable")
	}

	tss := tbl.Descriptor(5)
	if tss[5]&accTSS32 != accTSS32 {
		t.Fatal("TSS descriptor must carry the 32-bit available TSS type")
	}
}

func TestSetKernelStackWritesEsp0Ss0(t *testing.T) {
	tbl := New(0)
	tbl.SetKernelStack(0, 0x0011_2233, SelKData)

	esp0 := uint32(tbl.TSS[4]) | uint32(tbl.TSS[5])<<8 | uint32(tbl.TSS[6])<<16 | uint32(tbl.TSS[7])<<24
	if esp0 != 0x0011_2233 {
		t.Fatalf("esp0 = %#x, want %#x", esp0, 0x0011_2233)
	}
	ss0 := uint16(tbl.TSS[8]) | uint16(tbl.TSS[9])<<8
	if ss0 != SelKData {
		t.Fatalf("ss0 = %#x, want %#x", ss0, SelKData)
	}
}
