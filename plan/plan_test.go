package plan

import (
	"errors"
	"strings"
	"testing"

	perrors "github.com/wippyai/packplan/errors"
	"github.com/wippyai/packplan/internal/types"
	"github.com/wippyai/packplan/schema"
)

func values(ts int, width schema.Expr, transform schema.Expr) *schema.Loop {
	return &schema.Loop{
		Tokenizer: schema.Static{N: ts},
		Body:      schema.Encode(transform, width),
		Combiner:  schema.Unaligned(schema.Token{}),
	}
}

func statbp(ts, width int) *schema.Loop {
	return &schema.Loop{
		Tokenizer: schema.Static{N: ts},
		Body:      values(1, schema.Lit(uint64(width)), schema.Token{}),
		Combiner:  schema.Aligned(schema.Token{}),
	}
}

func dynbp(ts, header int) *schema.Loop {
	return &schema.Loop{
		Tokenizer: schema.Static{N: ts},
		Parameters: []schema.Parameter{
			schema.Def("bitwidth", schema.WidthOf(schema.MaxOf(schema.Token{})), schema.Lit(uint64(header))),
		},
		Body:     values(1, schema.Ref("bitwidth"), schema.Token{}),
		Combiner: schema.Aligned(schema.Cat(schema.Ref("bitwidth"), schema.Token{})),
	}
}

func delta(bits int) *schema.Loop {
	return &schema.Loop{
		Tokenizer: schema.Static{N: 1},
		Parameters: []schema.Parameter{
			schema.Adapt("prev", schema.Token{}, schema.Lit(uint64(bits)), 0, 0),
			schema.Def("ref", schema.Ref("prev"), schema.Lit(uint64(bits))),
		},
		Body:     schema.Encode(schema.Sub(schema.Token{}, schema.Ref("ref")), schema.Lit(uint64(bits))),
		Combiner: schema.Aligned(schema.Token{}),
	}
}

func mustBuild(t *testing.T, format *schema.Loop, logical, word types.Kind) *Plan {
	t.Helper()
	p, err := Build(format, logical, word, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return p
}

func TestBuild_StaticBP(t *testing.T) {
	p := mustBuild(t, statbp(8, 3), types.KindU8, types.KindU8)

	if p.StaticTokensize() != 8 {
		t.Errorf("tokensize = %d, want 8", p.StaticTokensize())
	}
	if p.MaxBlockBits() != 24 {
		t.Errorf("block bits = %d, want 24", p.MaxBlockBits())
	}

	tests := []struct {
		count, bound int
	}{
		{0, 0},
		{8, 3},
		{16, 6},
		{10, 5}, // one block, two raw tail bytes
		{3, 3},
		{-1, -1},
	}
	for _, tt := range tests {
		if got := p.Bound(tt.count); got != tt.bound {
			t.Errorf("Bound(%d) = %d, want %d", tt.count, got, tt.bound)
		}
	}
}

func TestBuild_Offsets(t *testing.T) {
	p := mustBuild(t, statbp(32, 3), types.KindU32, types.KindU32)

	loop, ok := p.Root.Body.(*Seq).Steps[0].(*UnrolledLoop)
	if !ok {
		t.Fatalf("outer body is %T, want unrolled loop", p.Root.Body.(*Seq).Steps[0])
	}
	if loop.Count != 32 {
		t.Fatalf("count = %d, want 32", loop.Count)
	}
	for k, it := range loop.Iterations {
		step := it.(*Seq).Steps[0].(*EncodeStep)
		if want := (3 * k) % 32; step.Pos != want {
			t.Errorf("iteration %d: pos = %d, want %d", k, step.Pos, want)
		}
		if step.Width != 3 {
			t.Errorf("iteration %d: width = %d", k, step.Width)
		}
	}
}

func TestBuild_SharedIterations(t *testing.T) {
	// 8-bit fields in 32-bit words repeat every four values
	p := mustBuild(t, statbp(32, 8), types.KindU32, types.KindU32)
	loop := p.Root.Body.(*Seq).Steps[0].(*UnrolledLoop)
	if loop.Iterations[0] != loop.Iterations[4] {
		t.Error("iterations with equal start offsets should share a node")
	}
	if loop.Iterations[0] == loop.Iterations[1] {
		t.Error("iterations with different offsets must not share a node")
	}
}

func TestBuild_Switch(t *testing.T) {
	p := mustBuild(t, dynbp(4, 32), types.KindU32, types.KindU32)

	sw, ok := p.Root.Body.(*SwitchValue)
	if !ok {
		t.Fatalf("root body is %T, want switch", p.Root.Body)
	}
	if len(sw.Cases) != 33 || sw.Lo != 0 {
		t.Fatalf("cases = %d from %d, want 33 from 0", len(sw.Cases), sw.Lo)
	}
	if sw.Peek == nil || sw.Peek.Offset != 0 || sw.Peek.Width != 32 {
		t.Errorf("peek = %+v, want +0:32", sw.Peek)
	}

	c4 := sw.Cases[4].(*Seq)
	field := c4.Steps[0].(*Field)
	if !field.Value.IsConst() || field.Value.Value != 4 || field.Width != 32 {
		t.Errorf("case 4 header = %s : %d", field.Value, field.Width)
	}
	inner := c4.Steps[1].(*UnrolledLoop)
	last := inner.Iterations[3].(*Seq).Steps[0].(*EncodeStep)
	if last.Width != 4 || last.Pos != 12 {
		t.Errorf("last value width %d at %d, want 4 at 12", last.Width, last.Pos)
	}

	if p.MaxBlockBits() != 32+4*32 {
		t.Errorf("block bits = %d, want 160", p.MaxBlockBits())
	}
	if got := p.Bound(4); got != 20 {
		t.Errorf("Bound(4) = %d, want 20", got)
	}
	if s := p.String(); !strings.Contains(s, "switch bitwidth@0") || !strings.Contains(s, "case 32:") {
		t.Errorf("dump missing switch:\n%s", s)
	}
}

func TestBuild_SwitchDisabled(t *testing.T) {
	p, err := Build(dynbp(4, 32), types.KindU32, types.KindU32, Options{MaxSwitchDomain: -1})
	if err != nil {
		t.Fatal(err)
	}
	rv, ok := p.Root.Body.(*RuntimeValue)
	if !ok {
		t.Fatalf("root body is %T, want runtime value", p.Root.Body)
	}
	inner := rv.Next.(*Seq).Steps[1].(*UnrolledLoop)
	step := inner.Iterations[0].(*Seq).Steps[0].(*EncodeStep)
	if step.Width != -1 || step.WidthExpr == nil || step.MaxWidth != 32 {
		t.Errorf("step width %d expr %v max %d", step.Width, step.WidthExpr, step.MaxWidth)
	}
	if step.Pos != 0 {
		t.Errorf("first value pos = %d, want 0", step.Pos)
	}
	if next := inner.Iterations[1].(*Seq).Steps[0].(*EncodeStep); next.Pos != -1 {
		t.Errorf("pos after a runtime width = %d, want -1", next.Pos)
	}
	if p.Bound(4) != 20 {
		t.Errorf("Bound(4) = %d, want 20", p.Bound(4))
	}
}

func TestBuild_Adaptive(t *testing.T) {
	p := mustBuild(t, delta(32), types.KindU32, types.KindU32)

	if len(p.Root.Inits) != 1 || p.Root.Inits[0].Name != "prev" || p.Root.Inits[0].Value != 0 {
		t.Fatalf("inits = %+v", p.Root.Inits)
	}
	rv, ok := p.Root.Body.(*RuntimeValue)
	if !ok || rv.Name != "ref" || rv.Peek != nil {
		t.Fatalf("root body = %#v", p.Root.Body)
	}
	seq := rv.Next.(*Seq)
	if _, ok := seq.Steps[0].(*EncodeStep); !ok {
		t.Errorf("first step is %T", seq.Steps[0])
	}
	upd, ok := seq.Steps[len(seq.Steps)-1].(*AdaptiveUpdate)
	if !ok || upd.Name != "prev" {
		t.Errorf("last step is %T, want the adaptive update", seq.Steps[len(seq.Steps)-1])
	}
	if p.Slots != 2 {
		t.Errorf("slots = %d, want 2", p.Slots)
	}
}

func TestBuild_NestedAdaptiveLevel(t *testing.T) {
	inner := values(1, schema.Lit(32), schema.Sub(schema.Token{}, schema.Ref("run")))
	inner.Parameters = []schema.Parameter{schema.Adapt("run", schema.Token{}, schema.Lit(32), 7, 0)}
	format := &schema.Loop{
		Tokenizer: schema.Static{N: 4},
		Body:      inner,
		Combiner:  schema.Aligned(schema.Token{}),
	}
	p := mustBuild(t, format, types.KindU32, types.KindU32)
	if len(p.Root.Inits) != 1 || p.Root.Inits[0].Value != 7 {
		t.Errorf("outer inits = %+v, want run=7", p.Root.Inits)
	}
	loop := p.Root.Body.(*Seq).Steps[0].(*UnrolledLoop)
	if len(loop.Inits) != 0 {
		t.Errorf("inner inits = %+v, want none", loop.Inits)
	}
}

func TestBuild_KnownValue(t *testing.T) {
	format := &schema.Loop{
		Tokenizer:  schema.Static{N: 8},
		Parameters: []schema.Parameter{schema.Def("ref", schema.Lit(100), schema.Lit(32))},
		Body:       values(1, schema.Lit(5), schema.Sub(schema.Token{}, schema.Ref("ref"))),
		Combiner:   schema.Aligned(schema.Token{}),
	}
	p := mustBuild(t, format, types.KindU32, types.KindU32)
	kv, ok := p.Root.Body.(*KnownValue)
	if !ok || kv.Value != 100 {
		t.Fatalf("root body = %#v", p.Root.Body)
	}
	step := kv.Next.(*Seq).Steps[0].(*UnrolledLoop).Iterations[0].(*Seq).Steps[0].(*EncodeStep)
	if step.Transform.String() != "(token - 100)" || step.Inverse.String() != "(token + 100)" {
		t.Errorf("transform %s inverse %s", step.Transform, step.Inverse)
	}
}

func TestBuild_Errors(t *testing.T) {
	u32 := types.KindU32

	dynamic := statbp(32, 3)
	dynamic.Tokenizer = schema.Dynamic{Expr: schema.Token{}}

	tracks := statbp(32, 3)
	tracks.Combiner.Tracks = 2

	noInverse := values(8, schema.Lit(8), schema.Mul(schema.Token{}, schema.Lit(2)))

	headerless := dynbp(4, 32)
	headerless.Combiner = schema.Aligned(schema.Token{})

	trailer := dynbp(4, 32)
	trailer.Combiner = schema.Aligned(schema.Cat(schema.Token{}, schema.Ref("bitwidth")))

	level := delta(32)
	level.Parameters[0] = schema.Adapt("prev", schema.Token{}, schema.Lit(32), 0, 1)

	wide := statbp(32, 70)

	unknown := values(8, schema.Ref("nope"), schema.Token{})

	uneven := statbp(32, 3)
	uneven.Body.(*schema.Loop).Tokenizer = schema.Static{N: 5}

	runtimeHeader := dynbp(4, 32)
	runtimeHeader.Parameters[0] = schema.Def("bitwidth", schema.WidthOf(schema.MaxOf(schema.Token{})), schema.WidthOf(schema.MaxOf(schema.Token{})))

	unbounded := &schema.Loop{
		Tokenizer:  schema.Static{N: 1},
		Parameters: []schema.Parameter{schema.Adapt("w", schema.Token{}, schema.Lit(32), 0, 0)},
		Body:       schema.Encode(schema.Token{}, schema.Ref("w")),
		Combiner:   schema.Aligned(schema.Token{}),
	}

	dataWidth := values(8, schema.WidthOf(schema.MaxOf(schema.Token{})), schema.Token{})

	zeroTokens := statbp(0, 3)

	noBody := statbp(32, 3)
	noBody.Body = nil

	tests := []struct {
		name   string
		format *schema.Loop
		word   types.Kind
		want   error
	}{
		{"nil format", nil, u32, perrors.ErrSchema},
		{"dynamic tokenizer", dynamic, u32, perrors.ErrUnsupported},
		{"multi-track combiner", tracks, u32, perrors.ErrUnsupported},
		{"transform without inverse", noInverse, u32, perrors.ErrInverseMissing},
		{"data parameter without header", headerless, u32, perrors.ErrSchema},
		{"data parameter after data", trailer, u32, perrors.ErrSchema},
		{"adaptive level too deep", level, u32, perrors.ErrSchema},
		{"width over 64", wide, u32, perrors.ErrSchema},
		{"unknown parameter", unknown, u32, perrors.ErrUnresolved},
		{"inner tokensize does not divide", uneven, u32, perrors.ErrSchema},
		{"runtime header width", runtimeHeader, u32, perrors.ErrSchema},
		{"unbounded width", unbounded, u32, perrors.ErrSchema},
		{"width from data", dataWidth, u32, perrors.ErrSchema},
		{"zero tokensize", zeroTokens, u32, perrors.ErrSchema},
		{"missing body", noBody, u32, perrors.ErrSchema},
		{"signed word", statbp(32, 3), types.KindS32, perrors.ErrTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.format, u32, tt.word, Options{})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBuild_Deterministic(t *testing.T) {
	a := mustBuild(t, dynbp(8, 8), types.KindU8, types.KindU8)
	b := mustBuild(t, dynbp(8, 8), types.KindU8, types.KindU8)
	if a.String() != b.String() {
		t.Error("plans of equal schemas differ")
	}
	if a.Schema() != dynbp(8, 8).String() {
		t.Errorf("Schema() = %s", a.Schema())
	}
}

func TestEnd_Continuation(t *testing.T) {
	p := mustBuild(t, statbp(32, 3), types.KindU32, types.KindU32)

	// an aligned stream resumes on the next word
	n, ok := p.End(5, 32)
	if !ok || n != 4+12 {
		t.Errorf("End(5, 32) = %d, %v, want 16", n, ok)
	}
	if _, ok := p.End(0, -1); ok {
		t.Error("negative count accepted")
	}
}
