package plan

import (
	"github.com/wippyai/packplan/errors"
	"github.com/wippyai/packplan/internal/bits"
	"github.com/wippyai/packplan/internal/term"
	"github.com/wippyai/packplan/internal/types"
	"github.com/wippyai/packplan/plan/internal/layout"
	"github.com/wippyai/packplan/schema"
)

const (
	// MaxSwitchDomain is the default size of the largest parameter domain
	// that is specialized into a SwitchValue. 65 covers the bit widths of
	// a 64-bit value.
	MaxSwitchDomain = 65

	maxDepth = 8
	maxNodes = 1 << 20

	unset = -2
)

// Options tune plan construction.
type Options struct {
	// MaxSwitchDomain overrides the default switch limit. Zero keeps the
	// default; a negative value disables specialization.
	MaxSwitchDomain int
}

type analyzer struct {
	slots     map[slotKey]int
	loops     []*loopState
	res       term.Resolver
	wordBits  int
	maxSwitch int
	nodes     int
}

// slotKey identifies one parameter declaration at one nesting depth.
type slotKey struct {
	loop  *schema.Loop
	index int
	depth int
}

type loopState struct {
	inits []Init
}

// block is the analysis state of one loop iteration.
type block struct {
	loop  *schema.Loop
	lay   layout.Layout
	path  []string
	depth int
	ts    int
	start int
}

// Build analyzes a format for the given logical and word kinds. All
// schema errors are reported here; a returned plan always executes.
func Build(format *schema.Loop, logical, word types.Kind, opts Options) (*Plan, error) {
	if format == nil {
		return nil, errors.Schema(nil, "format is nil")
	}
	if !logical.Valid() {
		return nil, errors.TypeMismatch(errors.PhaseCompile, nil, logical.String(), "an integer logical type")
	}
	if !word.IsWord() {
		return nil, errors.TypeMismatch(errors.PhaseCompile, nil, word.String(), "an unsigned word type")
	}

	maxSwitch := opts.MaxSwitchDomain
	if maxSwitch == 0 {
		maxSwitch = MaxSwitchDomain
	}

	a := &analyzer{
		slots:     make(map[slotKey]int),
		res:       term.Resolver{Bits: logical.Bits(), Signed: logical.Signed()},
		wordBits:  word.Bits(),
		maxSwitch: maxSwitch,
	}

	path := []string{"loop"}
	ts, err := a.tokensize(format, path)
	if err != nil {
		return nil, err
	}

	a.loops = append(a.loops, &loopState{})
	body, _, err := a.iteration(format, 0, ts, term.Env{}, -1, path)
	if err != nil {
		return nil, err
	}

	p := &Plan{
		Root: &RolledLoop{
			Body:      body,
			Inits:     a.loops[0].inits,
			Tokensize: ts,
			Aligned:   format.Combiner.Aligned,
		},
		Logical: logical,
		Word:    word,
		Slots:   len(a.slots),
		schema:  format.String(),
		nodes:   a.nodes,
	}
	p.blockBits = p.measure()
	return p, nil
}

func (a *analyzer) tokensize(l *schema.Loop, path []string) (int, error) {
	switch t := l.Tokenizer.(type) {
	case schema.Static:
		if t.N <= 0 {
			return 0, errors.Schema(path, "tokensize must be positive, got %d", t.N)
		}
		return t.N, nil
	case schema.Dynamic:
		return 0, errors.Unsupported(errors.PhaseCompile, path, "data-dependent tokenizer")
	case nil:
		return 0, errors.Schema(path, "loop has no tokenizer")
	default:
		return 0, errors.Schema(path, "unknown tokenizer %T", t)
	}
}

// iteration analyzes one loop iteration starting at bit offset start
// (-1 when unknown). It returns the block program and its end offset.
func (a *analyzer) iteration(l *schema.Loop, depth, ts int, env term.Env, start int, path []string) (Node, int, error) {
	if l.Combiner.Aligned {
		start = 0
	}

	names := make([]string, 0, len(l.Parameters))
	for i, p := range l.Parameters {
		d := definition(p)
		if d == nil {
			return nil, 0, errors.Schema(path, "parameter %d is nil", i)
		}
		if d.Name == "" {
			return nil, 0, errors.Schema(path, "parameter %d has no name", i)
		}
		names = append(names, d.Name)
	}

	lay, err := layout.Of(l.Combiner, names, append(clone(path), "combiner"))
	if err != nil {
		return nil, 0, err
	}

	b := &block{loop: l, lay: lay, path: path, depth: depth, ts: ts, start: start}
	return a.params(b, 0, env, nil)
}

func definition(p schema.Parameter) *schema.Definition {
	switch v := p.(type) {
	case *schema.Definition:
		if v == nil {
			return nil
		}
		return v
	case *schema.Adaptive:
		if v == nil {
			return nil
		}
		return &v.Definition
	default:
		return nil
	}
}

// params analyzes parameter i and everything after it. Parameters are
// analyzed in declaration order, each seeing only earlier declarations.
func (a *analyzer) params(b *block, i int, env term.Env, updates []Node) (Node, int, error) {
	if i == len(b.loop.Parameters) {
		return a.emit(b, env, updates)
	}
	switch p := b.loop.Parameters[i].(type) {
	case *schema.Adaptive:
		return a.adaptive(b, i, p, env, updates)
	case *schema.Definition:
		return a.definition(b, i, p, env, updates)
	default:
		return nil, 0, errors.Schema(b.path, "parameter %d has unknown type %T", i, p)
	}
}

func (a *analyzer) adaptive(b *block, i int, p *schema.Adaptive, env term.Env, updates []Node) (Node, int, error) {
	path := append(clone(b.path), "params", p.Name)
	if p.Level < 0 || p.Level > b.depth {
		return nil, 0, errors.Schema(path, "adaptive level %d is outside the declaring depth %d", p.Level, b.depth)
	}

	slot := a.slot(b, i)
	env = env.With(term.Binding{Name: p.Name, Level: b.depth, Slot: slot, Adaptive: true})

	// the update may read the parameter's own previous value
	upd, err := a.res.Resolve(p.Logical, env, b.ts, path)
	if err != nil {
		return nil, 0, err
	}

	a.init(p.Level, Init{Name: p.Name, Slot: slot, Value: p.Initial & bits.Mask(a.res.Bits)})
	updates = append(updates[:len(updates):len(updates)], &AdaptiveUpdate{Expr: upd, Name: p.Name, Slot: slot})
	return a.params(b, i+1, env, updates)
}

func (a *analyzer) definition(b *block, i int, p *schema.Definition, env term.Env, updates []Node) (Node, int, error) {
	path := append(clone(b.path), "params", p.Name)
	n, err := a.res.Resolve(p.Logical, env, b.ts, path)
	if err != nil {
		return nil, 0, err
	}
	if err := a.grow(1); err != nil {
		return nil, 0, err
	}

	if n.IsConst() {
		env = env.With(term.Binding{Name: p.Name, Level: b.depth, Slot: -1, Value: n.Value, Dom: term.Exact(n.Value), Known: true})
		next, end, err := a.params(b, i+1, env, updates)
		if err != nil {
			return nil, 0, err
		}
		return &KnownValue{Next: next, Name: p.Name, Value: n.Value}, end, nil
	}

	var peek *Peek
	if n.ReadsBlock() {
		peek, err = a.peek(b, p.Name, env, path)
		if err != nil {
			return nil, 0, err
		}
	}

	slot := a.slot(b, i)
	headerBits := a.staticWidth(b, p, env)
	dom := a.res.DomainOf(n)

	if size := dom.Size(); dom.Bounded && size > 1 && size <= a.maxSwitch {
		sw := &SwitchValue{Expr: n, Peek: peek, Cases: make([]Node, size), Name: p.Name, Lo: dom.Lo, Slot: slot, Bits: headerBits}
		end := unset
		for k := range sw.Cases {
			v := dom.Lo + uint64(k)
			caseEnv := env.With(term.Binding{Name: p.Name, Level: b.depth, Slot: slot, Value: v, Dom: term.Exact(v), Known: true})
			c, e, err := a.params(b, i+1, caseEnv, updates)
			if err != nil {
				return nil, 0, err
			}
			sw.Cases[k] = c
			end = merge(end, e)
		}
		return sw, end, nil
	}

	env = env.With(term.Binding{Name: p.Name, Level: b.depth, Slot: slot, Dom: dom})
	next, end, err := a.params(b, i+1, env, updates)
	if err != nil {
		return nil, 0, err
	}
	return &RuntimeValue{Next: next, Expr: n, Peek: peek, Name: p.Name, Slot: slot, Bits: headerBits}, end, nil
}

// peek locates the header of a data-derived parameter. The decoder has no
// data to compute it from, so it must precede the data in the layout.
func (a *analyzer) peek(b *block, name string, env term.Env, path []string) (*Peek, error) {
	h := b.lay.Header(name)
	if h < 0 {
		return nil, errors.Schema(path, "parameter %q depends on the block data but no header before the data stores it", name)
	}
	width := func(item string) (int, error) { return a.fieldWidth(b, item, env, path) }
	off, err := b.lay.Offset(h, width)
	if err != nil {
		return nil, err
	}
	w, err := width(name)
	if err != nil {
		return nil, err
	}
	return &Peek{Offset: off, Width: w}, nil
}

// fieldWidth resolves the header width of the named parameter of the
// current loop. Header widths must be constants.
func (a *analyzer) fieldWidth(b *block, name string, env term.Env, path []string) (int, error) {
	d := b.find(name)
	if d == nil {
		return 0, errors.Unresolved(path, name)
	}
	if d.Bitwidth == nil {
		return 0, errors.Schema(path, "header %q has no width", name)
	}
	n, err := a.res.Resolve(d.Bitwidth, env, b.ts, path)
	if err != nil {
		return 0, err
	}
	if !n.IsConst() || n.Value > 64 {
		return 0, errors.Schema(path, "header %q width %s is not a constant of at most 64 bits", name, n)
	}
	return int(n.Value), nil
}

func (a *analyzer) staticWidth(b *block, d *schema.Definition, env term.Env) int {
	if d.Bitwidth == nil {
		return -1
	}
	n, err := a.res.Resolve(d.Bitwidth, env, b.ts, nil)
	if err != nil || !n.IsConst() {
		return -1
	}
	return int(n.Value)
}

// find returns the last declaration of name in the current loop.
func (b *block) find(name string) *schema.Definition {
	for i := len(b.loop.Parameters) - 1; i >= 0; i-- {
		if d := definition(b.loop.Parameters[i]); d != nil && d.Name == name {
			return d
		}
	}
	return nil
}

// emit lays out the block: header fields and data in layout order, then
// the adaptive updates.
func (a *analyzer) emit(b *block, env term.Env, updates []Node) (Node, int, error) {
	path := append(clone(b.path), "combiner")
	pos := b.start
	steps := make([]Node, 0, len(b.lay.Items)+len(updates))

	for _, it := range b.lay.Items {
		if it.Token {
			body, end, err := a.body(b, env, pos)
			if err != nil {
				return nil, 0, err
			}
			steps = append(steps, body...)
			pos = end
			continue
		}

		w, err := a.fieldWidth(b, it.Name, env, path)
		if err != nil {
			return nil, 0, err
		}
		v, err := a.res.Resolve(schema.Param{Name: it.Name}, env, b.ts, path)
		if err != nil {
			return nil, 0, err
		}
		steps = append(steps, &Field{Value: v, Name: it.Name, Width: w, Pos: pos})
		pos = a.advance(pos, w)
	}

	steps = append(steps, updates...)
	if err := a.grow(len(steps)); err != nil {
		return nil, 0, err
	}
	return &Seq{Steps: steps}, pos, nil
}

func (a *analyzer) body(b *block, env term.Env, pos int) ([]Node, int, error) {
	path := append(clone(b.path), "body")
	switch body := b.loop.Body.(type) {
	case *schema.Encoder:
		if body == nil {
			break
		}
		return a.encoder(b, body, env, pos)
	case *schema.Loop:
		if body == nil {
			break
		}
		n, end, err := a.inner(b, body, env, pos)
		if err != nil {
			return nil, 0, err
		}
		return []Node{n}, end, nil
	}
	return nil, 0, errors.Schema(path, "loop has no body")
}

func (a *analyzer) encoder(b *block, e *schema.Encoder, env term.Env, pos int) ([]Node, int, error) {
	path := append(clone(b.path), "encoder")
	if e.Transform == nil {
		return nil, 0, errors.Schema(path, "encoder has no transform")
	}

	tr, err := a.res.Resolve(e.Transform, env, b.ts, path)
	if err != nil {
		return nil, 0, err
	}
	inv, err := a.res.Invert(e.Transform, env, path)
	if err != nil {
		return nil, 0, err
	}
	wn, err := a.res.Resolve(e.Bitwidth, env, b.ts, path)
	if err != nil {
		return nil, 0, err
	}

	width, maxWidth := -1, 0
	var wexpr *term.Node
	if wn.IsConst() {
		if wn.Value > 64 {
			return nil, 0, errors.Schema(path, "width %d exceeds 64 bits", wn.Value)
		}
		width = int(wn.Value)
		maxWidth = width
	} else {
		if wn.ReadsBlock() {
			return nil, 0, errors.Schema(path, "width %s depends on the block data", wn)
		}
		dom := a.res.DomainOf(wn)
		if !dom.Bounded || dom.Hi > 64 {
			return nil, 0, errors.Schema(path, "width %s is not bounded by 64 bits", wn)
		}
		wexpr = wn
		maxWidth = int(dom.Hi)
	}

	if err := a.grow(b.ts); err != nil {
		return nil, 0, err
	}
	steps := make([]Node, b.ts)
	for k := range steps {
		steps[k] = &EncodeStep{
			Transform: tr,
			Inverse:   inv,
			WidthExpr: wexpr,
			Index:     k,
			Width:     width,
			MaxWidth:  maxWidth,
			Pos:       pos,
		}
		if width >= 0 {
			pos = a.advance(pos, width)
		} else {
			pos = -1
		}
	}
	return steps, pos, nil
}

// inner analyzes a nested loop over the enclosing block. The iteration
// count is known, so the loop is unrolled with offsets threaded through.
func (a *analyzer) inner(b *block, l *schema.Loop, env term.Env, pos int) (Node, int, error) {
	depth := b.depth + 1
	path := append(clone(b.path), "body")
	if depth > maxDepth {
		return nil, 0, errors.Schema(path, "loops nested deeper than %d", maxDepth)
	}

	ts, err := a.tokensize(l, path)
	if err != nil {
		return nil, 0, err
	}
	if b.ts%ts != 0 {
		return nil, 0, errors.Schema(path, "tokensize %d does not divide the enclosing block of %d values", ts, b.ts)
	}

	a.loops = append(a.loops, &loopState{})
	defer func() { a.loops = a.loops[:depth] }()

	count := b.ts / ts
	iters := make([]Node, count)
	type analyzed struct {
		node Node
		end  int
	}
	seen := make(map[int]analyzed)
	for k := range iters {
		start := pos
		if l.Combiner.Aligned {
			start = 0
		}
		if prev, ok := seen[start]; ok {
			iters[k] = prev.node
			pos = prev.end
			continue
		}
		n, end, err := a.iteration(l, depth, ts, env, start, path)
		if err != nil {
			return nil, 0, err
		}
		seen[start] = analyzed{node: n, end: end}
		iters[k] = n
		pos = end
	}

	return &UnrolledLoop{
		Iterations: iters,
		Inits:      a.loops[depth].inits,
		Count:      count,
		Tokensize:  ts,
		Aligned:    l.Combiner.Aligned,
	}, pos, nil
}

func (a *analyzer) slot(b *block, i int) int {
	k := slotKey{loop: b.loop, index: i, depth: b.depth}
	if s, ok := a.slots[k]; ok {
		return s
	}
	s := len(a.slots)
	a.slots[k] = s
	return s
}

func (a *analyzer) init(level int, in Init) {
	st := a.loops[level]
	for _, have := range st.inits {
		if have.Slot == in.Slot {
			return
		}
	}
	st.inits = append(st.inits, in)
}

func (a *analyzer) grow(n int) error {
	a.nodes += n
	if a.nodes > maxNodes {
		return errors.Schema(nil, "plan exceeds %d nodes", maxNodes)
	}
	return nil
}

func (a *analyzer) advance(pos, w int) int {
	if pos < 0 {
		return -1
	}
	return (pos + w) % a.wordBits
}

func merge(end, e int) int {
	if end == unset || end == e {
		return e
	}
	return -1
}

func clone(path []string) []string {
	return append([]string(nil), path...)
}
