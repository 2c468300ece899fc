// +build 386

package hal

// RealPortIO implements PortIO directly against the CPU's IN/OUT
// instructions declared in cpu_386.go.
type RealPortIO struct{}

func (RealPortIO) Out8(port uint16, val uint8)   { PortOutByte(port, val) }
func (RealPortIO) Out16(port uint16, val uint16) { PortOutWord(port, val) }
func (RealPortIO) Out32(port uint16, val uint32) { PortOutDword(port, val) }
func (RealPortIO) In8(port uint16) uint8         { return PortInByte(port) }
func (RealPortIO) In16(port uint16) uint16       { return PortInWord(port) }
func (RealPortIO) In32(port uint16) uint32       { return PortInDword(port) }
