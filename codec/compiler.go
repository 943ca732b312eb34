package codec

import (
	"fmt"
	"sync"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/packplan/errors"
	"github.com/wippyai/packplan/internal/types"
	"github.com/wippyai/packplan/plan"
	"github.com/wippyai/packplan/schema"
)

// Compiler builds codecs and caches their plans. Schemas are keyed by their
// canonical rendering, so two structurally equal schemas share a plan.
type Compiler struct {
	logger    *zap.Logger
	cache     sync.Map // cacheKey -> *plan.Plan
	maxSwitch int
}

type cacheKey struct {
	schema  string
	logical types.Kind
	word    types.Kind
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger for cache and plan diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Compiler) { c.logger = l }
}

// WithMaxSwitchDomain sets the largest parameter domain the analyzer
// specializes per value. A negative n turns specialization off.
func WithMaxSwitchDomain(n int) Option {
	return func(c *Compiler) { c.maxSwitch = n }
}

func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCompiler = NewCompiler()

// Compile builds a codec with the shared default compiler.
func Compile(format *schema.Loop, logical, word wit.Type) (*Codec, error) {
	return defaultCompiler.Compile(format, logical, word)
}

// Compile builds a codec for format, packing logical values into words.
// Both types must be WIT integer primitives; word must be unsigned.
func (c *Compiler) Compile(format *schema.Loop, logical, word wit.Type) (*Codec, error) {
	if format == nil {
		return nil, errors.Schema(nil, "format is nil")
	}
	lk, wk := types.FromWIT(logical), types.FromWIT(word)
	if !lk.Valid() {
		return nil, errors.TypeMismatch(errors.PhaseCompile, nil, witName(logical), "an integer logical type")
	}
	if !wk.IsWord() {
		return nil, errors.TypeMismatch(errors.PhaseCompile, nil, witName(word), "an unsigned word type")
	}

	key := cacheKey{schema: format.String(), logical: lk, word: wk}
	if cached, ok := c.cache.Load(key); ok {
		return &Codec{plan: cached.(*plan.Plan)}, nil
	}

	p, err := plan.Build(format, lk, wk, plan.Options{MaxSwitchDomain: c.maxSwitch})
	if err != nil {
		return nil, err
	}
	actual, loaded := c.cache.LoadOrStore(key, p)
	if !loaded {
		c.log().Debug("compiled plan",
			zap.String("schema", key.schema),
			zap.Stringer("logical", lk),
			zap.Stringer("word", wk),
			zap.Int("nodes", p.Nodes()),
			zap.Int("slots", p.Slots),
			zap.Int("block_bits", p.MaxBlockBits()))
	}
	return &Codec{plan: actual.(*plan.Plan)}, nil
}

func (c *Compiler) log() *zap.Logger {
	if c.logger != nil {
		return c.logger
	}
	return Logger()
}

func witName(t wit.Type) string {
	if t == nil {
		return "nil"
	}
	if k := types.FromWIT(t); k != types.KindInvalid {
		return k.String()
	}
	return fmt.Sprintf("%T", t)
}
