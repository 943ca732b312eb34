package formats

import (
	"strconv"
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/packplan/codec"
	"github.com/wippyai/packplan/errors"
	"github.com/wippyai/packplan/internal/types"
	"github.com/wippyai/packplan/schema"
)

// Format is a named packing format. The schema is generated for a concrete
// pair of logical and word types when the format is compiled.
type Format struct {
	name  string
	args  []uint64
	opts  options
	build func(f Format, logical, word int) *schema.Loop
}

type options struct {
	scale int
	block int
}

// Option adjusts the block structure of a format.
type Option func(*options)

// Scale sets the outer tokensize to n times the word width.
func Scale(n int) Option {
	return func(o *options) { o.scale = n }
}

// BlockSize sets the outer tokensize directly. It overrides Scale.
func BlockSize(n int) Option {
	return func(o *options) { o.block = n }
}

func newFormat(name string, build func(Format, int, int) *schema.Loop, opts []Option, args ...uint64) Format {
	f := Format{name: name, args: args, build: build, opts: options{scale: 1}}
	for _, opt := range opts {
		opt(&f.opts)
	}
	return f
}

// StaticBP packs every value at a fixed width. Values wider than width are
// truncated.
func StaticBP(width int, opts ...Option) Format {
	return newFormat("statbp", func(f Format, _, word int) *schema.Loop {
		return blocked(f.tokensize(word), nil, values(lit(width), schema.Token{}), schema.Token{})
	}, opts, uint64(width))
}

// StaticBPBlock is StaticBP with an explicit block size.
func StaticBPBlock(width, blocksize int) Format {
	f := StaticBP(width, BlockSize(blocksize))
	f.name = "bpfranka"
	f.args = append(f.args, uint64(blocksize))
	return f
}

// StaticFORStaticBP subtracts a fixed reference and packs the difference at
// a fixed width.
func StaticFORStaticBP(ref uint64, width int, opts ...Option) Format {
	return newFormat("statforstatbp", func(f Format, logical, word int) *schema.Loop {
		return blocked(f.tokensize(word),
			[]schema.Parameter{schema.Def("ref", schema.Lit(ref), lit(logical))},
			values(lit(width), schema.Sub(schema.Token{}, schema.Ref("ref"))),
			schema.Token{})
	}, opts, ref, uint64(width))
}

// StaticFORDynBP subtracts a fixed reference and packs each block at the
// width of its largest value. Values below ref do not round trip.
func StaticFORDynBP(ref uint64, opts ...Option) Format {
	return newFormat("statfordynbp", func(f Format, logical, word int) *schema.Loop {
		return blocked(f.tokensize(word),
			[]schema.Parameter{
				schema.Def("ref", schema.Lit(ref), lit(logical)),
				schema.Def("bitwidth", schema.WidthOf(schema.MaxOf(schema.Token{})), lit(word)),
			},
			values(schema.Ref("bitwidth"), schema.Sub(schema.Token{}, schema.Ref("ref"))),
			schema.Cat(schema.Ref("bitwidth"), schema.Token{}))
	}, opts, ref)
}

// DynBP packs each block at the width of its largest value, stored in a
// one-word header.
func DynBP(opts ...Option) Format {
	return newFormat("dynbp", func(f Format, _, word int) *schema.Loop {
		return blocked(f.tokensize(word),
			[]schema.Parameter{schema.Def("bitwidth", schema.WidthOf(schema.MaxOf(schema.Token{})), lit(word))},
			values(schema.Ref("bitwidth"), schema.Token{}),
			schema.Cat(schema.Ref("bitwidth"), schema.Token{}))
	}, opts)
}

// DynFORBP stores each block's minimum and packs the differences at the
// width of the largest one.
func DynFORBP(opts ...Option) Format {
	return newFormat("dynforbp", func(f Format, logical, word int) *schema.Loop {
		return blocked(f.tokensize(word),
			[]schema.Parameter{
				schema.Def("min", schema.MinOf(schema.Token{}), lit(logical)),
				schema.Def("bitwidth", schema.WidthOf(schema.Sub(schema.MaxOf(schema.Token{}), schema.Ref("min"))), lit(word)),
			},
			values(schema.Ref("bitwidth"), schema.Sub(schema.Token{}, schema.Ref("min"))),
			schema.Cat(schema.Ref("bitwidth"), schema.Ref("min"), schema.Token{}))
	}, opts)
}

// Delta stores each value as the wrapping difference from its predecessor,
// at full logical width. The first value is stored as is.
func Delta() Format {
	return newFormat("delta", func(_ Format, logical, _ int) *schema.Loop {
		return &schema.Loop{
			Tokenizer: schema.Static{N: 1},
			Parameters: []schema.Parameter{
				schema.Adapt("prev", schema.Token{}, lit(logical), 0, 0),
				schema.Def("ref", schema.Ref("prev"), lit(logical)),
			},
			Body:     schema.Encode(schema.Sub(schema.Token{}, schema.Ref("ref")), lit(logical)),
			Combiner: schema.Aligned(schema.Token{}),
		}
	}, nil)
}

func (f Format) tokensize(word int) int {
	if f.opts.block != 0 {
		return f.opts.block
	}
	return word * f.opts.scale
}

// Name returns the short format name, as accepted by Parse.
func (f Format) Name() string { return f.name }

func (f Format) String() string {
	var b strings.Builder
	b.WriteString(f.name)
	for _, a := range f.args {
		b.WriteByte(':')
		b.WriteString(strconv.FormatUint(a, 10))
	}
	if f.name != "bpfranka" && f.opts.block != 0 {
		b.WriteString(",block=")
		b.WriteString(strconv.Itoa(f.opts.block))
	} else if f.opts.scale != 1 {
		b.WriteString(",scale=")
		b.WriteString(strconv.Itoa(f.opts.scale))
	}
	return b.String()
}

// Schema generates the format's schema for the given types.
func (f Format) Schema(logical, word wit.Type) (*schema.Loop, error) {
	if f.build == nil {
		return nil, errors.InvalidInput(errors.PhaseCompile, "zero Format")
	}
	lk, wk := types.FromWIT(logical), types.FromWIT(word)
	if !lk.Valid() {
		return nil, errors.TypeMismatch(errors.PhaseCompile, nil, lk.String(), "an integer logical type")
	}
	if !wk.IsWord() {
		return nil, errors.TypeMismatch(errors.PhaseCompile, nil, wk.String(), "an unsigned word type")
	}
	if f.opts.block == 0 && f.opts.scale <= 0 {
		return nil, errors.Schema([]string{f.name}, "scale must be positive, got %d", f.opts.scale)
	}
	return f.build(f, lk.Bits(), wk.Bits()), nil
}

// Compile builds a codec for the format with the default compiler.
func (f Format) Compile(logical, word wit.Type) (*codec.Codec, error) {
	return f.CompileWith(nil, logical, word)
}

// CompileWith builds a codec with c, or the default compiler when c is nil.
func (f Format) CompileWith(c *codec.Compiler, logical, word wit.Type) (*codec.Codec, error) {
	s, err := f.Schema(logical, word)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return codec.Compile(s, logical, word)
	}
	return c.Compile(s, logical, word)
}

// blocked wraps an inner per-value loop in an outer block.
func blocked(ts int, params []schema.Parameter, inner *schema.Loop, layout schema.Expr) *schema.Loop {
	return &schema.Loop{
		Tokenizer:  schema.Static{N: ts},
		Parameters: params,
		Body:       inner,
		Combiner:   schema.Aligned(layout),
	}
}

func values(width, transform schema.Expr) *schema.Loop {
	return &schema.Loop{
		Tokenizer: schema.Static{N: 1},
		Body:      schema.Encode(transform, width),
		Combiner:  schema.Unaligned(schema.Token{}),
	}
}

func lit(v int) schema.Expr { return schema.Lit(uint64(v)) }
