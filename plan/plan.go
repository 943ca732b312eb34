package plan

import (
	"github.com/wippyai/packplan/internal/bits"
	"github.com/wippyai/packplan/internal/types"
	"github.com/wippyai/packplan/plan/internal/layout"
)

// Plan is the compiled execution plan of one format for one pair of
// logical and word kinds. Plans are immutable and safe for concurrent use.
type Plan struct {
	Root      *RolledLoop
	schema    string
	Slots     int // size of the runtime parameter tuple
	nodes     int
	blockBits int
	Logical   types.Kind
	Word      types.Kind
}

// StaticTokensize returns the number of values per outer block.
func (p *Plan) StaticTokensize() int { return p.Root.Tokensize }

// MaxBlockBits returns the largest number of bits one outer block can
// advance the stream by, not counting alignment padding.
func (p *Plan) MaxBlockBits() int { return p.blockBits }

// Schema returns the canonical rendering of the format the plan was built from.
func (p *Plan) Schema() string { return p.schema }

// Nodes returns the number of instructions the analyzer emitted.
func (p *Plan) Nodes() int { return p.nodes }

func (p *Plan) WordBits() int     { return p.Word.Bits() }
func (p *Plan) WordBytes() int    { return p.Word.Bytes() }
func (p *Plan) LogicalBytes() int { return p.Logical.Bytes() }

// Bound returns the largest number of bytes compressing count values can
// produce, or -1 when count is negative or the size overflows.
func (p *Plan) Bound(count int) int {
	n, ok := p.End(0, count)
	if !ok {
		return -1
	}
	return n
}

// End returns the largest byte length of a stream that has written
// startBits bits and then packs count more values.
func (p *Plan) End(startBits, count int) (int, bool) {
	if count < 0 || startBits < 0 {
		return 0, false
	}
	wordBits := p.WordBits()
	ts := p.Root.Tokensize
	blocks, rem := count/ts, count%ts

	pos := startBits
	ok := true
	if blocks > 0 {
		per := p.blockBits
		if p.Root.Aligned {
			pos = layout.Align(pos, wordBits)
			per = layout.Words(p.blockBits, wordBits) * wordBits
		}
		var add int
		add, ok = bits.SafeMul(blocks, per)
		if !ok {
			return 0, false
		}
		pos, ok = bits.SafeAdd(pos, add)
		if !ok {
			return 0, false
		}
	}

	n, ok := bits.SafeMul(layout.Words(pos, wordBits), p.WordBytes())
	if !ok {
		return 0, false
	}
	if rem > 0 {
		n, ok = bits.SafeAdd(n, rem*p.LogicalBytes())
	}
	return n, ok
}

// measure computes the largest block advance. Unaligned blocks may start
// anywhere in a word, which matters only when an aligned inner loop pads.
func (p *Plan) measure() int {
	wordBits := p.WordBits()
	if p.Root.Aligned || !pads(p.Root.Body) {
		return extent(p.Root.Body, 0, wordBits)
	}
	most := 0
	for s := 0; s < wordBits; s++ {
		if n := extent(p.Root.Body, s, wordBits) - s; n > most {
			most = n
		}
	}
	return most
}

// extent returns the largest end offset of n when started at bit offset
// start, counted from a word boundary.
func extent(n Node, start, wordBits int) int {
	switch n := n.(type) {
	case *KnownValue:
		return extent(n.Next, start, wordBits)
	case *RuntimeValue:
		return extent(n.Next, start, wordBits)
	case *SwitchValue:
		most := start
		for _, c := range n.Cases {
			if e := extent(c, start, wordBits); e > most {
				most = e
			}
		}
		return most
	case *Seq:
		for _, s := range n.Steps {
			start = extent(s, start, wordBits)
		}
		return start
	case *Field:
		return start + n.Width
	case *EncodeStep:
		return start + n.MaxWidth
	case *UnrolledLoop:
		for _, it := range n.Iterations {
			if n.Aligned {
				start = layout.Align(start, wordBits)
			}
			start = extent(it, start, wordBits)
		}
		return start
	}
	return start
}

func pads(n Node) bool {
	switch n := n.(type) {
	case *KnownValue:
		return pads(n.Next)
	case *RuntimeValue:
		return pads(n.Next)
	case *SwitchValue:
		for _, c := range n.Cases {
			if pads(c) {
				return true
			}
		}
	case *Seq:
		for _, s := range n.Steps {
			if pads(s) {
				return true
			}
		}
	case *UnrolledLoop:
		if n.Aligned {
			return true
		}
		for _, it := range n.Iterations {
			if pads(it) {
				return true
			}
		}
	}
	return false
}
