package interrupt

import (
	"testing"

	"cdxos/internal/hostsim"
)

func TestNewPICMasksAllButCascade(t *testing.T) {
	io := hostsim.NewPortIO()
	NewPIC(io, 32)

	mask1 := io.In8(pic1Data)
	if mask1&(1<<2) != 0 {
		t.Fatal("cascade line (IRQ2) must remain unmasked after remap")
	}
	if mask1&^(1<<2) != 0xFF&^(1<<2) {
		t.Fatalf("expected all other master lines masked, got %#x", mask1)
	}
	if io.In8(pic2Data) != 0xFF {
		t.Fatal("expected all slave lines masked after remap")
	}
}

func TestUnmaskAndMask(t *testing.T) {
	io := hostsim.NewPortIO()
	p := NewPIC(io, 32)

	p.Unmask(0) // timer
	if io.In8(pic1Data)&1 != 0 {
		t.Fatal("expected timer line unmasked")
	}
	p.Mask(0)
	if io.In8(pic1Data)&1 == 0 {
		t.Fatal("expected timer line re-masked")
	}

	p.Unmask(12) // mouse, on the slave
	if io.In8(pic2Data)&(1<<4) != 0 {
		t.Fatal("expected mouse line (slave bit 4) unmasked")
	}
}

func TestEOISendsSpecificEOI(t *testing.T) {
	io := hostsim.NewPortIO()
	p := NewPIC(io, 32)

	p.EOI(1) // keyboard, master only
	if io.In8(pic1Command) != ocwSpecificEOI|1 {
		t.Fatalf("expected specific EOI for line 1, got %#x", io.In8(pic1Command))
	}

	p.EOI(10) // slave line -> both controllers get an EOI
	if io.In8(pic2Command) != ocwSpecificEOI|2 {
		t.Fatalf("expected specific EOI 2 on slave, got %#x", io.In8(pic2Command))
	}
	if io.In8(pic1Command) != ocwSpecificEOI|2 {
		t.Fatalf("expected specific EOI for cascade line on master, got %#x", io.In8(pic1Command))
	}
}

func TestSpuriousIRQ7IsDroppedSilently(t *testing.T) {
	io := hostsim.NewPortIO()
	p := NewPIC(io, 32)

	io.SetISR(pic1Command, 0) // ISR bit 7 clear -> spurious
	p.EOI(7)

	master, _ := p.SpuriousCount()
	if master != 1 {
		t.Fatalf("expected 1 spurious master IRQ recorded, got %d", master)
	}
}

func TestGenuineIRQ7SendsEOI(t *testing.T) {
	io := hostsim.NewPortIO()
	p := NewPIC(io, 32)

	io.SetISR(pic1Command, 1<<7) // ISR bit 7 set -> genuine
	p.EOI(7)

	master, _ := p.SpuriousCount()
	if master != 0 {
		t.Fatal("genuine IRQ7 must not be counted as spurious")
	}
	if io.In8(pic1Command) != ocwSpecificEOI|7 {
		t.Fatalf("expected specific EOI 7, got %#x", io.In8(pic1Command))
	}
}
