package engine

import (
	"github.com/wippyai/packplan/internal/bits"
	"github.com/wippyai/packplan/internal/term"
	"github.com/wippyai/packplan/plan"
)

// machine interprets a plan over one buffer. Encoding and decoding run
// the same instructions; header parameters the decoder cannot compute are
// peeked from the stream.
type machine struct {
	plan   *plan.Plan
	slots  *[]uint64
	block  *[]uint64
	trace  func(planned, actual int)
	frame  term.Frame
	cur    cursor
	decode bool
}

func (m *machine) init(p *plan.Plan, buf []byte, decode bool) {
	m.plan = p
	m.decode = decode
	m.cur = cursor{buf: buf, wordBits: p.WordBits(), wordBytes: p.WordBytes()}
	m.slots = getBuf64(p.Slots)
	m.block = getBuf64(p.StaticTokensize())
	m.frame = term.Frame{
		Slots:  *m.slots,
		Mask:   bits.Mask(p.Logical.Bits()),
		Bits:   p.Logical.Bits(),
		Signed: p.Logical.Signed(),
	}
}

func (m *machine) release() {
	putBuf64(m.slots)
	putBuf64(m.block)
	m.slots, m.block = nil, nil
	m.frame.Slots, m.frame.Block = nil, nil
}

func (m *machine) enter(inits []plan.Init) {
	for _, in := range inits {
		m.frame.Slots[in.Slot] = in.Value
	}
}

// blocks runs n outer blocks. load fills the block before each run and
// store drains it after.
func (m *machine) blocks(n int, load, store func(b int, block []uint64)) {
	root := m.plan.Root
	block := *m.block
	for b := 0; b < n; b++ {
		if load != nil {
			load(b, block)
		}
		if root.Aligned {
			m.cur.align()
		}
		m.run(root.Body, block)
		if store != nil {
			store(b, block)
		}
	}
}

func (m *machine) run(n plan.Node, block []uint64) {
	switch n := n.(type) {
	case *plan.KnownValue:
		m.run(n.Next, block)
	case *plan.RuntimeValue:
		m.frame.Slots[n.Slot] = m.param(n.Expr, n.Peek, block)
		m.run(n.Next, block)
	case *plan.SwitchValue:
		v := m.param(n.Expr, n.Peek, block)
		m.frame.Slots[n.Slot] = v
		m.run(n.Case(v), block)
	case *plan.Seq:
		for _, s := range n.Steps {
			m.run(s, block)
		}
	case *plan.Field:
		m.check(n.Pos)
		if m.decode {
			m.cur.advance(n.Width)
		} else {
			m.cur.put(m.eval(n.Value, block), n.Width)
		}
	case *plan.EncodeStep:
		m.check(n.Pos)
		w := n.Width
		if w < 0 {
			w = n.MaxWidth
			if v := m.eval(n.WidthExpr, block); v < uint64(w) {
				w = int(v)
			}
		}
		if m.decode {
			block[n.Index] = m.scalar(n.Inverse, block, m.cur.get(w))
		} else {
			m.cur.put(m.scalar(n.Transform, block, block[n.Index]), w)
		}
	case *plan.AdaptiveUpdate:
		m.frame.Slots[n.Slot] = m.eval(n.Expr, block)
	case *plan.UnrolledLoop:
		m.enter(n.Inits)
		ts := n.Tokensize
		for i, it := range n.Iterations {
			if n.Aligned {
				m.cur.align()
			}
			m.run(it, block[i*ts:(i+1)*ts])
		}
	}
}

// param computes a parameter value. Data-derived parameters are read
// back from their header when decoding.
func (m *machine) param(expr *term.Node, peek *plan.Peek, block []uint64) uint64 {
	if m.decode && peek != nil {
		return m.cur.peek(peek.Offset, peek.Width) & m.frame.Mask
	}
	return m.eval(expr, block)
}

func (m *machine) eval(n *term.Node, block []uint64) uint64 {
	m.frame.Block = block
	m.frame.Scalar = false
	return n.Eval(&m.frame)
}

func (m *machine) scalar(n *term.Node, block []uint64, v uint64) uint64 {
	m.frame.Block = block
	m.frame.Scalar = true
	m.frame.Token = v
	return n.Eval(&m.frame)
}

func (m *machine) check(planned int) {
	if m.trace != nil && planned >= 0 {
		m.trace(planned, m.cur.pos)
	}
}
