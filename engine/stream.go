package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/packplan/errors"
	"github.com/wippyai/packplan/internal/bits"
	"github.com/wippyai/packplan/plan"
)

// Encoder packs logical values into a word buffer. Successive Write calls
// continue the same stream: the cursor and adaptive parameters carry over.
// Every call except the last must cover whole blocks; the last may end
// with a partial block, which is copied raw and finishes the stream.
type Encoder struct {
	m       machine
	tail    int
	started bool
	done    bool
}

// NewEncoder starts a stream writing into dst. Close returns its scratch
// buffers.
func NewEncoder(p *plan.Plan, dst []byte) *Encoder {
	e := &Encoder{}
	e.m.init(p, dst, false)
	return e
}

// Write packs count little-endian logical values from src.
func (e *Encoder) Write(src []byte, count int) error {
	p := e.m.plan
	if e.done {
		return errors.InvalidInput(errors.PhaseEncode, "stream already ended with a partial block")
	}
	if count < 0 {
		return errors.InvalidInput(errors.PhaseEncode, fmt.Sprintf("negative count %d", count))
	}
	lb := p.LogicalBytes()
	need, ok := bits.SafeMul(count, lb)
	if !ok {
		return errors.InvalidInput(errors.PhaseEncode, fmt.Sprintf("count %d overflows", count))
	}
	if len(src) < need {
		return errors.ShortBuffer(errors.PhaseEncode, "source", need, len(src))
	}
	end, ok := p.End(e.m.cur.offset(), count)
	if !ok {
		return errors.InvalidInput(errors.PhaseEncode, fmt.Sprintf("count %d overflows", count))
	}
	if end > len(e.m.cur.buf) {
		return errors.ShortBuffer(errors.PhaseEncode, "destination", end, len(e.m.cur.buf))
	}

	e.start()
	ts := p.StaticTokensize()
	blocks := count / ts
	e.m.blocks(blocks, func(b int, block []uint64) {
		loadValues(block, src[b*ts*lb:], lb)
	}, nil)

	if rem := count % ts; rem > 0 {
		e.m.cur.align()
		off := e.m.cur.size()
		n := copy(e.m.cur.buf[off:], src[blocks*ts*lb:need])
		e.tail = off + n
		e.done = true
		if ce := Logger().Check(zap.DebugLevel, "encoded raw tail"); ce != nil {
			ce.Write(zap.Int("values", rem), zap.Int("offset", off))
		}
	}
	return nil
}

func (e *Encoder) start() {
	if !e.started {
		e.m.enter(e.m.plan.Root.Inits)
		e.started = true
	}
}

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int {
	if e.done {
		return e.tail
	}
	return e.m.cur.size()
}

// Rebase moves the stream onto a new buffer, keeping the cursor's bit
// offset and the adaptive state. A partially filled word is carried over
// as the first word of dst.
func (e *Encoder) Rebase(dst []byte) {
	c := &e.m.cur
	if c.pos > 0 {
		off := c.word * c.wordBytes
		copy(dst, c.buf[off:off+c.wordBytes])
	}
	c.buf = dst
	c.word = 0
}

func (e *Encoder) Close() {
	e.m.release()
}

// Decoder unpacks a word buffer into logical values. Like Encoder, it
// keeps its cursor and adaptive state across Read calls.
type Decoder struct {
	m       machine
	tail    int
	started bool
	done    bool
}

func NewDecoder(p *plan.Plan, src []byte) *Decoder {
	d := &Decoder{}
	d.m.init(p, src, true)
	return d
}

// Read decodes count values into dst as little-endian logical values.
func (d *Decoder) Read(dst []byte, count int) error {
	p := d.m.plan
	if d.done {
		return errors.InvalidInput(errors.PhaseDecode, "stream already ended with a partial block")
	}
	if count < 0 {
		return errors.InvalidInput(errors.PhaseDecode, fmt.Sprintf("negative count %d", count))
	}
	lb := p.LogicalBytes()
	need, ok := bits.SafeMul(count, lb)
	if !ok {
		return errors.InvalidInput(errors.PhaseDecode, fmt.Sprintf("count %d overflows", count))
	}
	if len(dst) < need {
		return errors.ShortBuffer(errors.PhaseDecode, "destination", need, len(dst))
	}

	d.start()
	ts := p.StaticTokensize()
	blocks := count / ts
	d.m.blocks(blocks, nil, func(b int, block []uint64) {
		storeValues(dst[b*ts*lb:], block, lb)
	})

	if rem := count % ts; rem > 0 {
		d.m.cur.align()
		off := d.m.cur.size()
		out := dst[blocks*ts*lb : need]
		n := 0
		if off < len(d.m.cur.buf) {
			n = copy(out, d.m.cur.buf[off:])
		}
		clear(out[n:])
		d.tail = off + len(out)
		d.done = true
		if ce := Logger().Check(zap.DebugLevel, "decoded raw tail"); ce != nil {
			ce.Write(zap.Int("values", rem), zap.Int("offset", off), zap.Int("available", n))
		}
	}
	return nil
}

func (d *Decoder) start() {
	if !d.started {
		d.m.enter(d.m.plan.Root.Inits)
		d.started = true
	}
}

// Len returns the number of source bytes consumed so far.
func (d *Decoder) Len() int {
	if d.done {
		return d.tail
	}
	return d.m.cur.size()
}

// Rebase continues the stream on src, which must start with the word the
// cursor is in. It pairs with Encoder.Rebase.
func (d *Decoder) Rebase(src []byte) {
	d.m.cur.buf = src
	d.m.cur.word = 0
}

func (d *Decoder) Close() {
	d.m.release()
}

// Compress packs count values from src into dst and returns the number of
// bytes written. dst must hold at least p.Bound(count) bytes.
func Compress(p *plan.Plan, src []byte, count int, dst []byte) (int, error) {
	e := NewEncoder(p, dst)
	defer e.Close()
	if err := e.Write(src, count); err != nil {
		return 0, err
	}
	return e.Len(), nil
}

// Decompress unpacks count values from src into dst and returns the
// number of bytes written.
func Decompress(p *plan.Plan, src []byte, count int, dst []byte) (int, error) {
	d := NewDecoder(p, src)
	defer d.Close()
	if err := d.Read(dst, count); err != nil {
		return 0, err
	}
	return count * p.LogicalBytes(), nil
}

// DecompressBlock unpacks exactly one outer block from the start of src.
func DecompressBlock(p *plan.Plan, src, dst []byte) (consumed, produced int, err error) {
	d := NewDecoder(p, src)
	defer d.Close()
	ts := p.StaticTokensize()
	if err := d.Read(dst, ts); err != nil {
		return 0, 0, err
	}
	return d.Len(), ts * p.LogicalBytes(), nil
}

func loadValues(block []uint64, src []byte, lb int) {
	for i := range block {
		var v uint64
		b := src[i*lb : (i+1)*lb]
		for j := lb - 1; j >= 0; j-- {
			v = v<<8 | uint64(b[j])
		}
		block[i] = v
	}
}

func storeValues(dst []byte, block []uint64, lb int) {
	for i, v := range block {
		b := dst[i*lb : (i+1)*lb]
		for j := range b {
			b[j] = byte(v)
			v >>= 8
		}
	}
}
