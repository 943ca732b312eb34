package engine

import (
	"encoding/binary"

	"github.com/wippyai/packplan/internal/bits"
)

// cursor addresses one bit of a buffer of little-endian words.
type cursor struct {
	buf       []byte
	word      int // index of the current word
	pos       int // bit offset inside the current word
	wordBits  int
	wordBytes int
}

// load returns word i. Words past the end of the buffer read as zero
// bits, so a truncated stream decodes without faulting.
func (c *cursor) load(i int) uint64 {
	off := i * c.wordBytes
	if off+c.wordBytes <= len(c.buf) {
		b := c.buf[off:]
		switch c.wordBytes {
		case 1:
			return uint64(b[0])
		case 2:
			return uint64(binary.LittleEndian.Uint16(b))
		case 4:
			return uint64(binary.LittleEndian.Uint32(b))
		default:
			return binary.LittleEndian.Uint64(b)
		}
	}
	var v uint64
	for j := 0; j < c.wordBytes && off+j < len(c.buf); j++ {
		v |= uint64(c.buf[off+j]) << (8 * j)
	}
	return v
}

// store writes word i. Capacity is checked before a stream starts.
func (c *cursor) store(i int, v uint64) {
	b := c.buf[i*c.wordBytes:]
	switch c.wordBytes {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	default:
		binary.LittleEndian.PutUint64(b, v)
	}
}

// put writes the low w bits of v at the cursor. The first field of a word
// stores the word whole, later ones OR into it, so the buffer need not be
// zeroed.
func (c *cursor) put(v uint64, w int) {
	v &= bits.Mask(w)
	for w > 0 {
		n := c.wordBits - c.pos
		if n > w {
			n = w
		}
		chunk := (v & bits.Mask(n)) << uint(c.pos)
		if c.pos == 0 {
			c.store(c.word, chunk)
		} else {
			c.store(c.word, c.load(c.word)|chunk)
		}
		v >>= uint(n)
		w -= n
		c.advance(n)
	}
}

// get reads w bits at the cursor.
func (c *cursor) get(w int) uint64 {
	var v uint64
	shift := 0
	for w > 0 {
		n := c.wordBits - c.pos
		if n > w {
			n = w
		}
		part := (c.load(c.word) >> uint(c.pos)) & bits.Mask(n)
		v |= part << uint(shift)
		shift += n
		w -= n
		c.advance(n)
	}
	return v
}

// peek reads w bits at off bits past the cursor without moving it.
func (c *cursor) peek(off, w int) uint64 {
	word, pos := c.word, c.pos
	c.advance(off)
	v := c.get(w)
	c.word, c.pos = word, pos
	return v
}

// advance moves the cursor n bits. Reaching the end of a word moves to the
// next word exactly once.
func (c *cursor) advance(n int) {
	c.pos += n
	for c.pos >= c.wordBits {
		c.pos -= c.wordBits
		c.word++
	}
}

func (c *cursor) align() {
	if c.pos > 0 {
		c.word++
		c.pos = 0
	}
}

// offset returns the number of bits before the cursor.
func (c *cursor) offset() int {
	return c.word*c.wordBits + c.pos
}

// size returns the number of bytes touched so far.
func (c *cursor) size() int {
	n := c.word * c.wordBytes
	if c.pos > 0 {
		n += c.wordBytes
	}
	return n
}
