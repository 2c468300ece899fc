// Package kheap implements the kernel heap allocator (C5): a first-fit,
// address-ordered singly linked free list with block coalescing over a
// fixed-size pool (internal/config.HeapSize). Modeled on the field-accessor
// style biscuit uses for on-disk structures (fs/super.go's fieldr/fieldw
// over a byte buffer) applied here to an in-memory block header, since no
// example repo in the pack implements a from-scratch malloc — the layout
// is grounded directly in spec.md §4.3/§3.
//
// The allocator operates on a caller-supplied byte slice so it can run
// unmodified in both the freestanding kernel (backed by a slice over the
// reserved physical heap region) and the hosted test suite (backed by a
// plain Go []byte).
package kheap

import "encoding/binary"

// headerSize is the on-pool size of a free-list node: {size uint32, used
// uint32, next uint32} packed into 16 bytes, matching the "header + 16B"
// minimum split remainder spec.md §4.3 requires.
const headerSize = 16

const (
	offSize = 0
	offUsed = 4
	offNext = 8
)

// nilOffset marks the end of the free list (no valid block starts at
// offset 0, which always holds the root header).
const nilOffset = ^uint32(0)

// Heap is a first-fit allocator over a fixed pool.
type Heap struct {
	pool []byte
}

// New initializes a Heap over pool, writing a single free block spanning
// the entire pool minus the root header.
func New(pool []byte) *Heap {
	h := &Heap{pool: pool}
	h.writeHeader(0, uint32(len(pool))-headerSize, false, nilOffset)
	return h
}

func (h *Heap) writeHeader(off uint32, size uint32, used bool, next uint32) {
	binary.LittleEndian.PutUint32(h.pool[off+offSize:], size)
	u := uint32(0)
	if used {
		u = 1
	}
	binary.LittleEndian.PutUint32(h.pool[off+offUsed:], u)
	binary.LittleEndian.PutUint32(h.pool[off+offNext:], next)
}

func (h *Heap) size(off uint32) uint32 {
	return binary.LittleEndian.Uint32(h.pool[off+offSize:])
}

func (h *Heap) used(off uint32) bool {
	return binary.LittleEndian.Uint32(h.pool[off+offUsed:]) != 0
}

func (h *Heap) next(off uint32) uint32 {
	return binary.LittleEndian.Uint32(h.pool[off+offNext:])
}

func (h *Heap) setUsed(off uint32, v bool) {
	u := uint32(0)
	if v {
		u = 1
	}
	binary.LittleEndian.PutUint32(h.pool[off+offUsed:], u)
}

func (h *Heap) setSize(off uint32, v uint32) {
	binary.LittleEndian.PutUint32(h.pool[off+offSize:], v)
}

func (h *Heap) setNext(off uint32, v uint32) {
	binary.LittleEndian.PutUint32(h.pool[off+offNext:], v)
}

func alignUp(off uint32, align uint32) uint32 {
	if align <= 1 {
		return off
	}
	rem := off % align
	if rem == 0 {
		return off
	}
	return off + (align - rem)
}

// Alloc returns the pool-relative offset of a payload of at least size
// bytes, aligned to align (a power of two), or false if no block is large
// enough (§4.3, §4.4 "callers treat allocation failure as fatal" applies
// to kernel call sites, not to this package). Callers recover the payload
// slice via Heap.Bytes.
func (h *Heap) Alloc(size uint32, align uint32) (uint32, bool) {
	if align == 0 {
		align = 1
	}
	cur := uint32(0)
	for {
		if !h.used(cur) {
			payloadStart := cur + headerSize
			alignedStart := alignUp(payloadStart, align)
			padding := alignedStart - payloadStart
			need := padding + size
			if h.size(cur) >= need {
				h.carve(cur, need)
				h.setUsed(cur, true)
				return alignedStart, true
			}
		}
		n := h.next(cur)
		if n == nilOffset {
			return 0, false
		}
		cur = n
	}
}

// carve splits the free block at off if the remainder after taking `need`
// bytes of payload is large enough to host another header plus 16 bytes of
// usable space, per spec.md §4.3's split rule.
func (h *Heap) carve(off uint32, need uint32) {
	total := h.size(off)
	remainder := total - need
	if remainder < headerSize+16 {
		return
	}
	newBlockOff := off + headerSize + need
	h.writeHeader(newBlockOff, remainder-headerSize, false, h.next(off))
	h.setSize(off, need)
	h.setNext(off, newBlockOff)
}

// Free releases the block that owns payloadOff, coalescing with its
// successor if adjacent and then with its predecessor by walking the list
// from the root, exactly as spec.md §4.3 specifies (O(n) in free blocks).
func (h *Heap) Free(payloadOff uint32) {
	blockOff, ok := h.ownerBlock(payloadOff)
	if !ok {
		return
	}
	h.setUsed(blockOff, false)

	// Coalesce forward: a free block's header sits immediately after its
	// payload only when next == blockOff+headerSize+size.
	if succ := h.next(blockOff); succ != nilOffset && !h.used(succ) {
		if blockOff+headerSize+h.size(blockOff) == succ {
			h.setSize(blockOff, h.size(blockOff)+headerSize+h.size(succ))
			h.setNext(blockOff, h.next(succ))
		}
	}

	// Coalesce backward: find the free predecessor (if any) that is
	// physically adjacent to blockOff and merge into it.
	cur := uint32(0)
	for cur != nilOffset {
		n := h.next(cur)
		if n == blockOff && !h.used(cur) {
			if cur+headerSize+h.size(cur) == blockOff {
				h.setSize(cur, h.size(cur)+headerSize+h.size(blockOff))
				h.setNext(cur, h.next(blockOff))
			}
			break
		}
		cur = n
	}
}

// ownerBlock returns the header offset whose payload region contains
// payloadOff. Since Alloc may have inserted alignment padding, this walks
// the list rather than assuming payloadOff-headerSize is the header.
func (h *Heap) ownerBlock(payloadOff uint32) (uint32, bool) {
	cur := uint32(0)
	for {
		start := cur + headerSize
		end := start + h.size(cur)
		if payloadOff >= start && payloadOff < end {
			return cur, true
		}
		n := h.next(cur)
		if n == nilOffset {
			return 0, false
		}
		cur = n
	}
}

// Bytes returns the payload slice for a previously returned Alloc offset,
// sized to the block's current capacity (which may exceed the originally
// requested size due to first-fit rounding).
func (h *Heap) Bytes(payloadOff uint32) []byte {
	blockOff, ok := h.ownerBlock(payloadOff)
	if !ok {
		return nil
	}
	start := payloadOff
	end := blockOff + headerSize + h.size(blockOff)
	return h.pool[start:end]
}

// SingleFreeBlock reports whether the entire pool has collapsed back to
// one free block spanning the initial capacity, used by property 2(c)/S6
// to confirm Free never leaks or corrupts the list.
func (h *Heap) SingleFreeBlock() bool {
	if h.used(0) {
		return false
	}
	if h.next(0) != nilOffset {
		return false
	}
	return h.size(0) == uint32(len(h.pool))-headerSize
}
