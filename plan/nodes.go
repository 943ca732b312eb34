package plan

import "github.com/wippyai/packplan/internal/term"

// Node is one instruction of an execution plan. The set of
// implementations is closed; the engine dispatches on the concrete type.
type Node interface {
	isNode()
}

// Init sets an adaptive parameter slot when its loop is entered.
type Init struct {
	Name  string
	Slot  int
	Value uint64
}

// RolledLoop iterates its body floor(count/Tokensize) times over a count
// known only at run time. The remaining count mod Tokensize values are
// copied raw at the next word boundary.
type RolledLoop struct {
	Body      Node
	Inits     []Init
	Tokensize int
	Aligned   bool
}

// UnrolledLoop is a loop whose iteration count is known at plan build.
// Each iteration is analyzed at its own start offset; iterations that
// start at the same offset share one node.
type UnrolledLoop struct {
	Iterations []Node
	Inits      []Init
	Count      int
	Tokensize  int
	Aligned    bool
}

// KnownValue records a parameter whose value was folded at plan build.
type KnownValue struct {
	Next  Node
	Name  string
	Value uint64
}

// Peek locates a header field relative to the block start. The decoder
// reads a data-derived parameter from its header instead of computing it.
type Peek struct {
	Offset int
	Width  int
}

// RuntimeValue computes a parameter into its slot.
type RuntimeValue struct {
	Next Node
	Expr *term.Node
	Peek *Peek // decode source; nil when Expr is computable on decode
	Name string
	Slot int
	Bits int // header width, -1 when not static
}

// SwitchValue computes a parameter with a small finite domain and
// continues with the case specialized for its value. Cases[i] handles
// the value Lo+i; the cases cover the whole domain.
type SwitchValue struct {
	Expr  *term.Node
	Peek  *Peek
	Cases []Node
	Name  string
	Lo    uint64
	Slot  int
	Bits  int
}

// Seq runs its steps in order.
type Seq struct {
	Steps []Node
}

// Field writes a parameter value into a block header. Pos is the bit
// offset within the current word, -1 when only known at run time.
type Field struct {
	Value *term.Node
	Name  string
	Width int
	Pos   int
}

// EncodeStep packs the value at Index of the current block. Width is -1
// when it is computed by WidthExpr at run time; MaxWidth bounds it.
type EncodeStep struct {
	Transform *term.Node
	Inverse   *term.Node
	WidthExpr *term.Node
	Index     int
	Width     int
	MaxWidth  int
	Pos       int
}

// AdaptiveUpdate stores the next value of an adaptive parameter after the
// block's data has been produced.
type AdaptiveUpdate struct {
	Expr *term.Node
	Name string
	Slot int
}

func (*RolledLoop) isNode()     {}
func (*UnrolledLoop) isNode()   {}
func (*KnownValue) isNode()     {}
func (*RuntimeValue) isNode()   {}
func (*SwitchValue) isNode()    {}
func (*Seq) isNode()            {}
func (*Field) isNode()          {}
func (*EncodeStep) isNode()     {}
func (*AdaptiveUpdate) isNode() {}

// Case returns the case for v. Values outside the domain, which only a
// corrupt stream can produce, select the nearest case.
func (s *SwitchValue) Case(v uint64) Node {
	if v < s.Lo {
		return s.Cases[0]
	}
	i := v - s.Lo
	if i >= uint64(len(s.Cases)) {
		return s.Cases[len(s.Cases)-1]
	}
	return s.Cases[i]
}
