package term

import (
	"github.com/wippyai/packplan/errors"
	"github.com/wippyai/packplan/internal/bits"
	"github.com/wippyai/packplan/schema"
)

// Resolver rewrites schema expressions into term nodes for one logical type.
type Resolver struct {
	Bits   int
	Signed bool
}

func (r Resolver) mask() uint64 { return bits.Mask(r.Bits) }

// Resolve binds e against env. Known parameters and constant subterms fold
// to constants; runtime parameters become slot references. tokensize is
// the size of the block that Min, Max and Bitwidth range over.
func (r Resolver) Resolve(e schema.Expr, env Env, tokensize int, path []string) (*Node, error) {
	switch v := e.(type) {
	case nil:
		return nil, errors.Schema(path, "missing expression")
	case schema.Token:
		return &Node{Op: OpToken}, nil
	case schema.Const:
		return Const(v.Value & r.mask()), nil
	case schema.Param:
		b, ok := env.Lookup(v.Name)
		if !ok {
			return nil, errors.Unresolved(path, v.Name)
		}
		if b.Known {
			return Const(b.Value), nil
		}
		return &Node{Op: OpSlot, Slot: b.Slot, Name: b.Name, Dom: b.Dom}, nil
	case schema.Plus:
		return r.binary(OpAdd, v.L, v.R, env, tokensize, path)
	case schema.Minus:
		return r.binary(OpSub, v.L, v.R, env, tokensize, path)
	case schema.Times:
		return r.binary(OpMul, v.L, v.R, env, tokensize, path)
	case schema.Div:
		n, err := r.binary(OpDiv, v.L, v.R, env, tokensize, path)
		if err != nil {
			return nil, err
		}
		if n.Op == OpDiv && n.R.IsConst() && n.R.Value == 0 {
			return nil, errors.Schema(path, "division by constant zero in %s", v.String())
		}
		return n, nil
	case schema.Min:
		return r.unary(OpMin, v.X, env, tokensize, path)
	case schema.Max:
		return r.unary(OpMax, v.X, env, tokensize, path)
	case schema.Bitwidth:
		if m, ok := v.X.(schema.Max); ok && r.Signed {
			// Signed Max picks the largest value, not the widest bit
			// pattern. Take the widest pattern instead.
			return r.unary(OpMax, schema.Bitwidth{X: m.X}, env, tokensize, path)
		}
		return r.unary(OpBitwidth, v.X, env, tokensize, path)
	case schema.Inverted:
		return r.Resolve(v.Forward, env, tokensize, path)
	case schema.Concat:
		return nil, errors.Schema(path, "concat is only valid as a combiner layout")
	default:
		return nil, errors.Schema(path, "unknown expression %T", e)
	}
}

func (r Resolver) binary(op Op, le, re schema.Expr, env Env, tokensize int, path []string) (*Node, error) {
	l, err := r.Resolve(le, env, tokensize, path)
	if err != nil {
		return nil, err
	}
	rn, err := r.Resolve(re, env, tokensize, path)
	if err != nil {
		return nil, err
	}
	n := &Node{Op: op, L: l, R: rn}
	if l.IsConst() && rn.IsConst() {
		if op == OpDiv && rn.Value == 0 {
			return n, nil
		}
		return Const(n.Eval(r.frame())), nil
	}
	return n, nil
}

func (r Resolver) unary(op Op, xe schema.Expr, env Env, tokensize int, path []string) (*Node, error) {
	x, err := r.Resolve(xe, env, tokensize, path)
	if err != nil {
		return nil, err
	}
	if x.IsConst() {
		if op == OpBitwidth {
			return Const(uint64(bits.Len(x.Value & r.mask()))), nil
		}
		// the aggregate of a block-independent term is the term itself
		return x, nil
	}
	return &Node{Op: op, L: x, Tokensize: tokensize}, nil
}

func (r Resolver) frame() *Frame {
	return &Frame{Mask: r.mask(), Bits: r.Bits, Signed: r.Signed}
}

// Frame returns an evaluation frame for this logical type.
func (r Resolver) Frame() Frame {
	return *r.frame()
}

// DomainOf returns the static value range of a resolved node.
func (r Resolver) DomainOf(n *Node) Domain {
	switch n.Op {
	case OpConst:
		return Exact(n.Value)
	case OpSlot:
		return n.Dom
	case OpBitwidth:
		return Range(0, uint64(r.Bits))
	case OpMin, OpMax:
		d := r.DomainOf(n.L)
		// below the sign bit signed and unsigned order agree
		if r.Signed && (!d.Bounded || d.Hi > r.mask()>>1) {
			return Domain{}
		}
		return d
	case OpAdd:
		l, rd := r.DomainOf(n.L), r.DomainOf(n.R)
		if !l.Bounded || !rd.Bounded || r.Signed {
			return Domain{}
		}
		hi, ok := bits.SafeAdd(int(l.Hi), int(rd.Hi))
		if !ok || l.Hi > uint64(^uint(0)>>1) || uint64(hi) > r.mask() {
			return Domain{}
		}
		return Range(l.Lo+rd.Lo, uint64(hi))
	}
	return Domain{}
}

// Invert resolves the decode-side inverse of an encoder transform.
// Transforms without a declared inverse fail with ErrInverseMissing.
func (r Resolver) Invert(transform schema.Expr, env Env, path []string) (*Node, error) {
	inv, ok := schema.Inverse(transform)
	if !ok {
		return nil, errors.InverseMissing(path, exprString(transform))
	}
	return r.Resolve(inv, env, 1, path)
}

func exprString(e schema.Expr) string {
	if e == nil {
		return "<nil>"
	}
	return e.String()
}
