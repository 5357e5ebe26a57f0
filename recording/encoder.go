package recording

import (
	"encoding/binary"
	"math"
)

func floatBits(v float32) uint32     { return math.Float32bits(v) }
func floatFromBits(v uint32) float32 { return math.Float32frombits(v) }

// encoder is the growable per-thread parameter blob. Recording appends a
// command's arguments with the typed write methods; the matching replay
// handler reads them back with a decoder in the same order. Little-endian
// throughout.
//
// This is the memory-safe stand-in for raw struct memcpy: every value is
// written explicitly, and a handler consumes exactly the bytes its
// recorder produced.
type encoder struct {
	buf []byte
}

// offset returns the current write position.
func (e *encoder) offset() int { return len(e.buf) }

// reset drops all recorded bytes but keeps the allocation for the next
// frame.
func (e *encoder) reset() { e.buf = e.buf[:0] }

func (e *encoder) u8(v uint8) { e.buf = append(e.buf, v) }

func (e *encoder) bool(v bool) {
	if v {
		e.u8(1)
	} else {
		e.u8(0)
	}
}

func (e *encoder) u16(v uint16) { e.buf = binary.LittleEndian.AppendUint16(e.buf, v) }

func (e *encoder) u32(v uint32) { e.buf = binary.LittleEndian.AppendUint32(e.buf, v) }

func (e *encoder) i32(v int32) { e.u32(uint32(v)) }

// bytes writes a length-prefixed payload.
func (e *encoder) bytes(p []byte) {
	e.u32(uint32(len(p)))
	e.buf = append(e.buf, p...)
}

// str writes a length-prefixed string.
func (e *encoder) str(s string) {
	e.u32(uint32(len(s)))
	e.buf = append(e.buf, s...)
}

// decoder reads a command's arguments back out of a parameter blob,
// starting at the offset stored in its Ref. Reading past the end means a
// recorder/handler pairing bug, which panics.
type decoder struct {
	buf []byte
	off int
}

func (d *decoder) need(n int) {
	if d.off+n > len(d.buf) {
		panic("recording: parameter decode past end of blob")
	}
}

func (d *decoder) u8() uint8 {
	d.need(1)
	v := d.buf[d.off]
	d.off++
	return v
}

func (d *decoder) bool() bool { return d.u8() != 0 }

func (d *decoder) u16() uint16 {
	d.need(2)
	v := binary.LittleEndian.Uint16(d.buf[d.off:])
	d.off += 2
	return v
}

func (d *decoder) u32() uint32 {
	d.need(4)
	v := binary.LittleEndian.Uint32(d.buf[d.off:])
	d.off += 4
	return v
}

func (d *decoder) i32() int32 { return int32(d.u32()) }

// bytes returns a view into the blob; the caller must not retain it past
// the frame's reset.
func (d *decoder) bytes() []byte {
	n := int(d.u32())
	d.need(n)
	v := d.buf[d.off : d.off+n : d.off+n]
	d.off += n
	return v
}

func (d *decoder) str() string { return string(d.bytes()) }
