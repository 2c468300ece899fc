package kfmt

import "io"

// ringBufferSize is sized to hold a standard 80x25 text-mode console's
// worth of output. Must be a power of two.
const ringBufferSize = 2048

// ringBuffer buffers Printf output emitted before a console sink has been
// installed (e.g. during early boot, before the framebuffer/VGA driver is
// wired up).
type ringBuffer struct {
	buffer         [ringBufferSize]byte
	rIndex, wIndex int
}

func (rb *ringBuffer) Write(p []byte) (int, error) {
	for _, b := range p {
		rb.buffer[rb.wIndex] = b
		rb.wIndex = (rb.wIndex + 1) & (ringBufferSize - 1)
		if rb.rIndex == rb.wIndex {
			rb.rIndex = (rb.rIndex + 1) & (ringBufferSize - 1)
		}
	}
	return len(p), nil
}

func (rb *ringBuffer) Read(p []byte) (n int, err error) {
	switch {
	case rb.rIndex < rb.wIndex:
		n = rb.wIndex - rb.rIndex
		if pLen := len(p); pLen < n {
			n = pLen
		}
		copy(p, rb.buffer[rb.rIndex:rb.rIndex+n])
		rb.rIndex += n
		return n, nil
	case rb.rIndex > rb.wIndex:
		n = len(rb.buffer) - rb.rIndex
		if pLen := len(p); pLen < n {
			n = pLen
		}
		copy(p, rb.buffer[rb.rIndex:rb.rIndex+n])
		rb.rIndex = (rb.rIndex + n) & (ringBufferSize - 1)
		return n, nil
	default:
		return 0, io.EOF
	}
}
