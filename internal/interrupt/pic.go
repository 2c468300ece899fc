package interrupt

import "cdxos/internal/hal"

// 8259 PIC I/O ports and initialization command words, grounded on
// original_source/src/pic.rs (the Rust implementation this design was
// distilled from): remap to base 32/40, cascade on IRQ2, 8086 mode.
const (
	pic1Command = 0x20
	pic1Data    = 0x21
	pic2Command = 0xA0
	pic2Data    = 0xA1

	icw1Init = 0x10
	icw1ICW4 = 0x01
	icw4_8086 = 0x01

	ocwSpecificEOI = 0x60
)

// PIC drives the legacy dual-8259 controller: remap, selective masking,
// and specific-EOI acknowledgement (§4.4).
type PIC struct {
	io             hal.PortIO
	mask1, mask2   uint8
	spuriousMaster uint32
	spuriousSlave  uint32
}

// NewPIC remaps both controllers to vectors base..base+15 and masks every
// line except IRQ2 (the cascade line, which must stay unmasked for the
// slave PIC to ever signal anything).
func NewPIC(io hal.PortIO, base uint8) *PIC {
	p := &PIC{io: io}

	p.io.Out8(pic1Command, icw1Init|icw1ICW4)
	p.io.Out8(pic2Command, icw1Init|icw1ICW4)
	p.io.Out8(pic1Data, base)
	p.io.Out8(pic2Data, base+8)
	p.io.Out8(pic1Data, 1<<2) // tell master: slave is on IRQ2
	p.io.Out8(pic2Data, 2)    // tell slave: its cascade identity is 2
	p.io.Out8(pic1Data, icw4_8086)
	p.io.Out8(pic2Data, icw4_8086)

	// mask everything except the cascade line to start
	p.mask1 = 0xFF &^ (1 << 2)
	p.mask2 = 0xFF
	p.io.Out8(pic1Data, p.mask1)
	p.io.Out8(pic2Data, p.mask2)
	return p
}

// irqLine is the IRQ number (0..15) relative to the remap base.
type irqLine uint8

// Unmask enables delivery of a single IRQ line (boot unmasks timer=0 and
// keyboard=1; mouse=12 is unmasked once PS/2 aux is initialized, §4.4).
func (p *PIC) Unmask(line uint8) {
	if line < 8 {
		p.mask1 &^= 1 << line
		p.io.Out8(pic1Data, p.mask1)
	} else {
		p.mask2 &^= 1 << (line - 8)
		p.io.Out8(pic2Data, p.mask2)
	}
}

// Mask disables delivery of a single IRQ line.
func (p *PIC) Mask(line uint8) {
	if line < 8 {
		p.mask1 |= 1 << line
		p.io.Out8(pic1Data, p.mask1)
	} else {
		p.mask2 |= 1 << (line - 8)
		p.io.Out8(pic2Data, p.mask2)
	}
}

// isrBit reads the in-service register of the PIC owning line and reports
// whether its bit is set, distinguishing a real IRQ7/15 from a spurious
// one (§7 "Silent" errors: spurious IRQs are dropped with a counter).
func (p *PIC) isrBit(line uint8) bool {
	const readISR = 0x0B
	if line < 8 {
		p.io.Out8(pic1Command, readISR)
		return p.io.In8(pic1Command)&(1<<line) != 0
	}
	p.io.Out8(pic2Command, readISR)
	return p.io.In8(pic2Command)&(1<<(line-8)) != 0
}

// EOI sends a specific end-of-interrupt for line to the PIC(s) that raised
// it (§4.4: "specific EOI to the PIC that raised it"). IRQ7 and IRQ15 are
// checked against the in-service register first; if the bit is clear the
// interrupt was spurious and no EOI is sent (sending one would incorrectly
// acknowledge a real, still-pending interrupt), per Non-goal-adjacent
// hardware errata every PIC driver in this space must handle.
func (p *PIC) EOI(line uint8) {
	if line == 7 && !p.isrBit(7) {
		p.spuriousMaster++
		return
	}
	if line == 15 && !p.isrBit(15) {
		p.spuriousSlave++
		return
	}
	if line >= 8 {
		p.io.Out8(pic2Command, ocwSpecificEOI|(line-8))
		p.io.Out8(pic1Command, ocwSpecificEOI|2) // cascade line on the master
	} else {
		p.io.Out8(pic1Command, ocwSpecificEOI|line)
	}
}

// SpuriousCount returns the number of spurious IRQ7/IRQ15 interrupts
// dropped since boot (diagnostics; §7).
func (p *PIC) SpuriousCount() (master, slave uint32) {
	return p.spuriousMaster, p.spuriousSlave
}
