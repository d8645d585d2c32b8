package gpubuf

import (
	"encoding/binary"
	"math"
)

// Buffer is a growable, little-endian byte buffer for constructing
// synthetic packed GPU memory in tests and reading it back through the
// same word/byte accessors the emitted shader code uses. It is test
// infrastructure, not a runtime GPU buffer writer: production code never
// writes the buffers the generated shaders consume.
type Buffer struct {
	data []byte
}

// NewBuffer returns an empty Buffer backed by a pooled byte slice sized for
// sizeHint bytes.
func NewBuffer(sizeHint int) *Buffer {
	return &Buffer{data: Get(sizeHint)}
}

// Release returns the Buffer's backing slice to the pool. The Buffer must
// not be used afterward.
func (b *Buffer) Release() {
	Put(b.data)
	b.data = nil
}

// Bytes returns the buffer's current contents.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int {
	return len(b.data)
}

func (b *Buffer) growTo(n int) {
	for len(b.data) < n {
		b.data = append(b.data, 0)
	}
}

// PutU32 writes a little-endian uint32 at byte offset off, growing the
// buffer if needed.
func (b *Buffer) PutU32(off int, v uint32) {
	b.growTo(off + 4)
	binary.LittleEndian.PutUint32(b.data[off:off+4], v)
}

// PutU16 writes a little-endian uint16 at byte offset off.
func (b *Buffer) PutU16(off int, v uint16) {
	b.growTo(off + 2)
	binary.LittleEndian.PutUint16(b.data[off:off+2], v)
}

// PutU8 writes a single byte at offset off.
func (b *Buffer) PutU8(off int, v uint8) {
	b.growTo(off + 1)
	b.data[off] = v
}

// PutF32 writes a little-endian IEEE-754 float32 at byte offset off.
func (b *Buffer) PutF32(off int, v float32) {
	b.PutU32(off, math.Float32bits(v))
}

// LoadU32 reads a little-endian uint32 at byte offset off, mirroring the
// ByteAddressBuffer.Load the generated HLSL accessors issue.
func (b *Buffer) LoadU32(off int) uint32 {
	return binary.LittleEndian.Uint32(b.data[off : off+4])
}

// LoadU16 reads a little-endian uint16 at byte offset off.
func (b *Buffer) LoadU16(off int) uint16 {
	return binary.LittleEndian.Uint16(b.data[off : off+2])
}

// LoadU8 reads a single byte at offset off.
func (b *Buffer) LoadU8(off int) uint8 {
	return b.data[off]
}

// LoadF32 reads a little-endian IEEE-754 float32 at byte offset off.
func (b *Buffer) LoadF32(off int) float32 {
	return math.Float32frombits(b.LoadU32(off))
}

// ExtractBits mirrors the extract_Nbit_value helper the HLSL emitter
// generates: pull width bits out of a packed word starting at bitShift
// from the low end.
func ExtractBits(word uint32, bitShift, width uint) uint32 {
	mask := uint32(1)<<width - 1
	return (word >> bitShift) & mask
}
