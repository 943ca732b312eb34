package schema

import (
	"strconv"
	"strings"
)

// Expr is a symbolic term over the current token, declared parameters and
// constants. The set of implementations is closed.
type Expr interface {
	String() string
	isExpr()
}

// Token stands for the logical values of the current block. Inside an
// Encoder it is the single value being encoded.
type Token struct{}

// Const is a literal. Values are raw bits, interpreted modulo the logical width.
type Const struct {
	Value uint64
}

// Param references a parameter declared earlier in the same or an
// enclosing loop.
type Param struct {
	Name string
}

type Plus struct{ L, R Expr }
type Minus struct{ L, R Expr }
type Times struct{ L, R Expr }
type Div struct{ L, R Expr }

// Min and Max aggregate X over the values of the enclosing block.
type Min struct{ X Expr }
type Max struct{ X Expr }

// Bitwidth is the number of significant bits of X.
type Bitwidth struct{ X Expr }

// Concat lists the fields of a combiner layout in order.
type Concat struct {
	Items []Expr
}

// Inverted attaches an explicit inverse to a transform. Inverse is written
// in terms of Token, which stands for the encoded value.
type Inverted struct {
	Forward Expr
	Inverse Expr
}

func (Token) isExpr() {}
func (Const) isExpr() {}
func (Param) isExpr() {}
func (Plus) isExpr() {}
func (Minus) isExpr() {}
func (Times) isExpr() {}
func (Div) isExpr() {}
func (Min) isExpr() {}
func (Max) isExpr() {}
func (Bitwidth) isExpr() {}
func (Concat) isExpr() {}
func (Inverted) isExpr() {}

func (Token) String() string { return "token" }
func (c Const) String() string { return strconv.FormatUint(c.Value, 10) }
func (p Param) String() string { return p.Name }
func (e Plus) String() string { return "(" + e.L.String() + " + " + e.R.String() + ")" }
func (e Minus) String() string { return "(" + e.L.String() + " - " + e.R.String() + ")" }
func (e Times) String() string { return "(" + e.L.String() + " * " + e.R.String() + ")" }
func (e Div) String() string { return "(" + e.L.String() + " / " + e.R.String() + ")" }
func (e Min) String() string { return "min(" + e.X.String() + ")" }
func (e Max) String() string { return "max(" + e.X.String() + ")" }
func (e Bitwidth) String() string { return "bitwidth(" + e.X.String() + ")" }
func (e Inverted) String() string {
	return "inverted(" + e.Forward.String() + "; " + e.Inverse.String() + ")"
}

func (e Concat) String() string {
	parts := make([]string, len(e.Items))
	for i, it := range e.Items {
		parts[i] = it.String()
	}
	return "concat(" + strings.Join(parts, ", ") + ")"
}

// Construction helpers.

func Lit(v uint64) Expr { return Const{Value: v} }
func Ref(name string) Expr { return Param{Name: name} }
func Add(l, r Expr) Expr { return Plus{L: l, R: r} }
func Sub(l, r Expr) Expr { return Minus{L: l, R: r} }
func Mul(l, r Expr) Expr { return Times{L: l, R: r} }
func Quo(l, r Expr) Expr { return Div{L: l, R: r} }
func MinOf(x Expr) Expr { return Min{X: x} }
func MaxOf(x Expr) Expr { return Max{X: x} }
func WidthOf(x Expr) Expr { return Bitwidth{X: x} }
func Cat(items ...Expr) Expr { return Concat{Items: items} }
func WithInverse(fwd, inv Expr) Expr {
	return Inverted{Forward: fwd, Inverse: inv}
}

// Walk calls fn for e and every sub-expression, parents first.
// Returning false from fn skips the children of that node.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch v := e.(type) {
	case Plus:
		Walk(v.L, fn)
		Walk(v.R, fn)
	case Minus:
		Walk(v.L, fn)
		Walk(v.R, fn)
	case Times:
		Walk(v.L, fn)
		Walk(v.R, fn)
	case Div:
		Walk(v.L, fn)
		Walk(v.R, fn)
	case Min:
		Walk(v.X, fn)
	case Max:
		Walk(v.X, fn)
	case Bitwidth:
		Walk(v.X, fn)
	case Concat:
		for _, it := range v.Items {
			Walk(it, fn)
		}
	case Inverted:
		Walk(v.Forward, fn)
	}
}

// ContainsToken reports whether e reads the block data.
func ContainsToken(e Expr) bool {
	found := false
	Walk(e, func(x Expr) bool {
		if _, ok := x.(Token); ok {
			found = true
		}
		return !found
	})
	return found
}

// Params returns the parameter names referenced by e, in first-use order.
func Params(e Expr) []string {
	var names []string
	seen := make(map[string]bool)
	Walk(e, func(x Expr) bool {
		if p, ok := x.(Param); ok && !seen[p.Name] {
			seen[p.Name] = true
			names = append(names, p.Name)
		}
		return true
	})
	return names
}

// Substitute replaces every Token in e with repl.
func Substitute(e Expr, repl Expr) Expr {
	switch v := e.(type) {
	case Token:
		return repl
	case Plus:
		return Plus{L: Substitute(v.L, repl), R: Substitute(v.R, repl)}
	case Minus:
		return Minus{L: Substitute(v.L, repl), R: Substitute(v.R, repl)}
	case Times:
		return Times{L: Substitute(v.L, repl), R: Substitute(v.R, repl)}
	case Div:
		return Div{L: Substitute(v.L, repl), R: Substitute(v.R, repl)}
	case Min:
		return Min{X: Substitute(v.X, repl)}
	case Max:
		return Max{X: Substitute(v.X, repl)}
	case Bitwidth:
		return Bitwidth{X: Substitute(v.X, repl)}
	case Inverted:
		return Inverted{Forward: Substitute(v.Forward, repl), Inverse: v.Inverse}
	default:
		return e
	}
}

// Inverse returns the decode-side expression of a transform: an Expr in
// terms of Token (the encoded value) that yields the original value.
// Only Token, Plus, Minus and Inverted declare inverses.
func Inverse(transform Expr) (Expr, bool) {
	return invert(transform, Token{})
}

func invert(e Expr, acc Expr) (Expr, bool) {
	switch v := e.(type) {
	case Token:
		return acc, true
	case Inverted:
		if !ContainsToken(v.Forward) || v.Inverse == nil {
			return nil, false
		}
		return Substitute(v.Inverse, acc), true
	case Plus:
		l, r := ContainsToken(v.L), ContainsToken(v.R)
		switch {
		case l && !r:
			return invert(v.L, Minus{L: acc, R: v.R})
		case r && !l:
			return invert(v.R, Minus{L: acc, R: v.L})
		}
	case Minus:
		l, r := ContainsToken(v.L), ContainsToken(v.R)
		switch {
		case l && !r:
			return invert(v.L, Plus{L: acc, R: v.R})
		case r && !l:
			return invert(v.R, Minus{L: v.L, R: acc})
		}
	}
	return nil, false
}
