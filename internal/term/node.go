package term

import (
	"strconv"

	"github.com/wippyai/packplan/internal/bits"
)

// Op is the operation of a resolved term node.
type Op uint8

const (
	OpConst Op = iota
	OpToken
	OpSlot
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMin
	OpMax
	OpBitwidth
)

// Node is a resolved expression. Parameter names are replaced by constants
// or by slot indexes into the per-call parameter tuple.
type Node struct {
	L, R      *Node
	Name      string // slot parameter name, for dumps
	Value     uint64 // OpConst
	Slot      int    // OpSlot
	Tokensize int    // OpMin, OpMax, OpBitwidth: enclosing block size
	Dom       Domain // OpSlot: domain of the bound parameter
	Op        Op
}

// Frame is the evaluation context of a node.
type Frame struct {
	Block  []uint64 // values of the enclosing block
	Slots  []uint64 // runtime parameter tuple
	Token  uint64   // scalar value when Scalar is set
	Mask   uint64   // logical width mask
	Bits   int      // logical width
	Signed bool
	Scalar bool // Token refers to the Token field, not the block
}

func Const(v uint64) *Node { return &Node{Op: OpConst, Value: v} }

func (n *Node) IsConst() bool { return n.Op == OpConst }

// ReadsBlock reports whether evaluation depends on the current block data.
func (n *Node) ReadsBlock() bool {
	if n == nil {
		return false
	}
	if n.Op == OpToken {
		return true
	}
	return n.L.ReadsBlock() || n.R.ReadsBlock()
}

// Eval computes the node value modulo the logical width. It never fails:
// division by a runtime zero yields zero.
func (n *Node) Eval(f *Frame) uint64 {
	switch n.Op {
	case OpConst:
		return n.Value & f.Mask
	case OpToken:
		if f.Scalar {
			return f.Token & f.Mask
		}
		if len(f.Block) == 0 {
			return 0
		}
		return f.Block[len(f.Block)-1] & f.Mask
	case OpSlot:
		return f.Slots[n.Slot]
	case OpAdd:
		return (n.L.Eval(f) + n.R.Eval(f)) & f.Mask
	case OpSub:
		return (n.L.Eval(f) - n.R.Eval(f)) & f.Mask
	case OpMul:
		return (n.L.Eval(f) * n.R.Eval(f)) & f.Mask
	case OpDiv:
		d := n.R.Eval(f)
		if d == 0 {
			return 0
		}
		return divide(n.L.Eval(f), d, f.Bits, f.Signed) & f.Mask
	case OpMin, OpMax:
		return n.aggregate(f)
	case OpBitwidth:
		return uint64(bits.Len(n.L.Eval(f) & f.Mask))
	}
	return 0
}

func (n *Node) aggregate(f *Frame) uint64 {
	if !n.L.ReadsBlock() {
		return n.L.Eval(f)
	}
	block := f.Block
	if n.Tokensize > 0 && n.Tokensize < len(block) {
		block = block[:n.Tokensize]
	}
	if len(block) == 0 {
		return 0
	}

	inner := *f
	inner.Scalar = true
	var acc uint64
	for i, v := range block {
		inner.Token = v
		x := n.L.Eval(&inner)
		if i == 0 || better(n.Op, x, acc, f.Bits, f.Signed) {
			acc = x
		}
	}
	return acc
}

func better(op Op, x, acc uint64, width int, signed bool) bool {
	less := x < acc
	if signed {
		less = bits.SignExtend(x, width) < bits.SignExtend(acc, width)
	}
	if op == OpMin {
		return less
	}
	return !less && x != acc
}

func divide(a, b uint64, width int, signed bool) uint64 {
	if !signed {
		return a / b
	}
	return uint64(bits.SignExtend(a, width) / bits.SignExtend(b, width))
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Op {
	case OpConst:
		return strconv.FormatUint(n.Value, 10)
	case OpToken:
		return "token"
	case OpSlot:
		return n.Name + "@" + strconv.Itoa(n.Slot)
	case OpAdd:
		return "(" + n.L.String() + " + " + n.R.String() + ")"
	case OpSub:
		return "(" + n.L.String() + " - " + n.R.String() + ")"
	case OpMul:
		return "(" + n.L.String() + " * " + n.R.String() + ")"
	case OpDiv:
		return "(" + n.L.String() + " / " + n.R.String() + ")"
	case OpMin:
		return "min[" + strconv.Itoa(n.Tokensize) + "](" + n.L.String() + ")"
	case OpMax:
		return "max[" + strconv.Itoa(n.Tokensize) + "](" + n.L.String() + ")"
	case OpBitwidth:
		return "bitwidth(" + n.L.String() + ")"
	}
	return "?"
}
