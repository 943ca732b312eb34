package schema

import (
	"strconv"
	"strings"
)

// Tokenizer decides how many logical values one loop iteration consumes.
type Tokenizer interface {
	String() string
	isTokenizer()
}

// Static consumes a fixed number of values per iteration.
type Static struct {
	N int
}

// Dynamic computes the token size from the data. Plans reject it.
type Dynamic struct {
	Expr Expr
}

func (Static) isTokenizer() {}
func (Dynamic) isTokenizer() {}

func (s Static) String() string { return "static(" + strconv.Itoa(s.N) + ")" }
func (d Dynamic) String() string { return "dynamic(" + exprString(d.Expr) + ")" }

// Parameter is one entry of a loop's parameter calculator.
type Parameter interface {
	Def() *Definition
	String() string
}

// Definition names a value computed once per block.
// Bitwidth is the width the value occupies when the combiner layout
// places it in the block header.
type Definition struct {
	Logical  Expr
	Bitwidth Expr
	Name     string
}

// Adaptive is a parameter that keeps its value across the iterations of
// the loop at depth Level. The definition is evaluated after each
// iteration's data step; the result is visible from the next iteration.
type Adaptive struct {
	Definition
	Initial uint64
	Level   int
}

func (d *Definition) Def() *Definition { return d }
func (a *Adaptive) Def() *Definition { return &a.Definition }

func (d *Definition) String() string {
	return d.Name + " = " + exprString(d.Logical) + " : " + exprString(d.Bitwidth)
}

func (a *Adaptive) String() string {
	return "adaptive(" + a.Definition.String() + ", init " + strconv.FormatUint(a.Initial, 10) +
		", level " + strconv.Itoa(a.Level) + ")"
}

// Body is what a loop iterates over: a nested *Loop or an *Encoder.
type Body interface {
	String() string
	isBody()
}

// Encoder writes each value of its block as Transform(value) in Bitwidth bits.
type Encoder struct {
	Transform Expr
	Bitwidth  Expr
}

func (*Encoder) isBody() {}

func (e *Encoder) String() string {
	return "encoder(" + exprString(e.Transform) + " : " + exprString(e.Bitwidth) + ")"
}

// Combiner lays out one block. Layout is Token (data only) or a Concat of
// Token and parameter references. Aligned blocks start on a word boundary.
// Tracks > 1 requests separate descriptor and data tracks.
type Combiner struct {
	Layout  Expr
	Aligned bool
	Tracks  int
}

func (c Combiner) String() string {
	var b strings.Builder
	b.WriteString("combiner(")
	b.WriteString(exprString(c.Layout))
	if c.Aligned {
		b.WriteString(", aligned")
	} else {
		b.WriteString(", unaligned")
	}
	if c.Tracks > 1 {
		b.WriteString(", tracks ")
		b.WriteString(strconv.Itoa(c.Tracks))
	}
	b.WriteByte(')')
	return b.String()
}

// Loop is the schema root and the only composite node.
type Loop struct {
	Tokenizer  Tokenizer
	Body       Body
	Parameters []Parameter
	Combiner   Combiner
}

func (*Loop) isBody() {}

// String renders the schema canonically. Structurally equal schemas
// render identically, which makes the string usable as a cache key.
func (l *Loop) String() string {
	var b strings.Builder
	b.WriteString("loop(")
	if l.Tokenizer == nil {
		b.WriteString("<nil>")
	} else {
		b.WriteString(l.Tokenizer.String())
	}
	b.WriteString("; params[")
	for i, p := range l.Parameters {
		if i > 0 {
			b.WriteString(", ")
		}
		if p == nil {
			b.WriteString("<nil>")
			continue
		}
		b.WriteString(p.String())
	}
	b.WriteString("]; ")
	if l.Body == nil {
		b.WriteString("<nil>")
	} else {
		b.WriteString(l.Body.String())
	}
	b.WriteString("; ")
	b.WriteString(l.Combiner.String())
	b.WriteByte(')')
	return b.String()
}

func exprString(e Expr) string {
	if e == nil {
		return "<nil>"
	}
	return e.String()
}

// Construction helpers.

// Def declares a parameter.
func Def(name string, logical, bitwidth Expr) *Definition {
	return &Definition{Name: name, Logical: logical, Bitwidth: bitwidth}
}

// Adapt declares an adaptive parameter persisted at the given loop depth.
func Adapt(name string, logical, bitwidth Expr, initial uint64, level int) *Adaptive {
	return &Adaptive{
		Definition: Definition{Name: name, Logical: logical, Bitwidth: bitwidth},
		Initial:    initial,
		Level:      level,
	}
}

// Encode declares an encoder.
func Encode(transform, bitwidth Expr) *Encoder {
	return &Encoder{Transform: transform, Bitwidth: bitwidth}
}

// Aligned returns a single-track word-aligned combiner.
func Aligned(layout Expr) Combiner {
	return Combiner{Layout: layout, Aligned: true, Tracks: 1}
}

// Unaligned returns a single-track bit-contiguous combiner.
func Unaligned(layout Expr) Combiner {
	return Combiner{Layout: layout, Tracks: 1}
}
