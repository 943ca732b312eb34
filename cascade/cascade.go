package cascade

import (
	stderrors "errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/packplan/codec"
	"github.com/wippyai/packplan/engine"
	"github.com/wippyai/packplan/errors"
	"github.com/wippyai/packplan/internal/bits"
)

// MaxTile caps the number of values a direct morph holds in flight.
const MaxTile = 1 << 20

// Cascade converts data packed with the first codec into data packed with
// the last one, passing through every codec in between.
type Cascade struct {
	codecs []*codec.Codec
	tile   int // values per direct step, 0 when direct morph is unavailable
}

// New builds a chain of at least two codecs. All codecs must share one
// logical type.
func New(codecs ...*codec.Codec) (*Cascade, error) {
	if len(codecs) < 2 {
		return nil, errors.InvalidInput(errors.PhaseMorph, fmt.Sprintf("cascade needs at least 2 codecs, got %d", len(codecs)))
	}
	for i, c := range codecs {
		if c == nil {
			return nil, errors.InvalidInput(errors.PhaseMorph, fmt.Sprintf("codec %d is nil", i))
		}
		if c.Logical() != codecs[0].Logical() {
			return nil, errors.TypeMismatch(errors.PhaseMorph, []string{fmt.Sprintf("stage%d", i)},
				c.Logical().String(), codecs[0].Logical().String())
		}
	}
	return &Cascade{codecs: codecs, tile: tile(codecs)}, nil
}

// tile returns the lcm of all tokensizes, or 0 when it exceeds MaxTile.
func tile(codecs []*codec.Codec) int {
	t := 1
	for _, c := range codecs {
		ts := c.Tokensize()
		if ts <= 0 {
			return 0
		}
		n, ok := bits.LCM(t, ts)
		if !ok || n > MaxTile {
			return 0
		}
		t = n
	}
	return t
}

// Tile returns the number of values a direct morph moves per step, or 0
// when only indirect morphing is possible.
func (c *Cascade) Tile() int { return c.tile }

// Bound returns the largest output size of morphing count values.
func (c *Cascade) Bound(count int) int {
	return c.codecs[len(c.codecs)-1].Bound(count)
}

func (c *Cascade) Codecs() []*codec.Codec { return c.codecs }

// Morph converts count values from src into dst, directly when the chain
// allows it. It returns the number of bytes written.
func (c *Cascade) Morph(src []byte, count int, dst []byte) (int, error) {
	if c.tile == 0 {
		Logger().Info("direct morph unavailable, materializing intermediates",
			zap.Int("stages", len(c.codecs)), zap.Int("count", count))
		return c.MorphIndirectly(src, count, dst)
	}
	return c.MorphDirectly(src, count, dst)
}

func (c *Cascade) check(count int, dst []byte) error {
	if count < 0 {
		return errors.InvalidInput(errors.PhaseMorph, fmt.Sprintf("negative count %d", count))
	}
	bound := c.Bound(count)
	if bound < 0 {
		return errors.InvalidInput(errors.PhaseMorph, fmt.Sprintf("count %d overflows", count))
	}
	if len(dst) < bound {
		return errors.ShortBuffer(errors.PhaseMorph, "destination", bound, len(dst))
	}
	return nil
}

// MorphIndirectly decodes and re-encodes the whole input at every stage.
func (c *Cascade) MorphIndirectly(src []byte, count int, dst []byte) (int, error) {
	if err := c.check(count, dst); err != nil {
		return 0, err
	}
	vals := make([]byte, count*c.codecs[0].Logical().Bytes())
	cur := src
	for i := 0; i < len(c.codecs)-1; i++ {
		if _, err := c.codecs[i].Decompress(cur, count, vals); err != nil {
			return 0, stageError(i, err)
		}
		next := c.codecs[i+1]
		out := dst
		if i+2 < len(c.codecs) {
			out = make([]byte, next.Bound(count))
		}
		n, err := next.Compress(vals, count, out)
		if err != nil {
			return 0, stageError(i+1, err)
		}
		cur = out[:n]
	}
	Logger().Debug("indirect morph", zap.Int("stages", len(c.codecs)), zap.Int("count", count), zap.Int("bytes", len(cur)))
	return len(cur), nil
}

// stage is an intermediate codec run as an encoder and decoder pair over
// a scratch buffer that is reused for every tile.
type stage struct {
	enc     *engine.Encoder
	dec     *engine.Decoder
	scratch []byte
}

// MorphDirectly streams the input through every stage one tile at a time,
// never holding more than a tile of values. It produces the same bytes as
// MorphIndirectly.
func (c *Cascade) MorphDirectly(src []byte, count int, dst []byte) (int, error) {
	if c.tile == 0 {
		return 0, errors.New(errors.PhaseMorph, errors.KindDirectUnavailable).
			Detail("no common tile of at most %d values", MaxTile).
			Build()
	}
	if err := c.check(count, dst); err != nil {
		return 0, err
	}

	first, last := c.codecs[0], c.codecs[len(c.codecs)-1]
	dec := first.NewDecoder(src)
	defer dec.Close()
	enc := last.NewEncoder(dst)
	defer enc.Close()

	stages := make([]stage, 0, len(c.codecs)-2)
	for _, mid := range c.codecs[1 : len(c.codecs)-1] {
		scratch := make([]byte, mid.Bound(c.tile)+mid.Word().Bytes())
		s := stage{enc: mid.NewEncoder(scratch), dec: mid.NewDecoder(scratch), scratch: scratch}
		defer s.enc.Close()
		defer s.dec.Close()
		stages = append(stages, s)
	}

	Logger().Debug("direct morph", zap.Int("stages", len(c.codecs)), zap.Int("tile", c.tile), zap.Int("count", count))

	lb := first.Logical().Bytes()
	vals := make([]byte, min(c.tile, count)*lb)
	for done := 0; done < count; {
		n := min(c.tile, count-done)
		chunk := vals[:n*lb]
		if err := dec.Read(chunk, n); err != nil {
			return 0, stageError(0, err)
		}
		for i, s := range stages {
			s.enc.Rebase(s.scratch)
			if err := s.enc.Write(chunk, n); err != nil {
				return 0, stageError(i+1, err)
			}
			s.dec.Rebase(s.scratch)
			if err := s.dec.Read(chunk, n); err != nil {
				return 0, stageError(i+1, err)
			}
		}
		if err := enc.Write(chunk, n); err != nil {
			return 0, stageError(len(c.codecs)-1, err)
		}
		done += n
	}
	return enc.Len(), nil
}

func stageError(i int, err error) error {
	var e *errors.Error
	kind := errors.KindInvalidInput
	if stderrors.As(err, &e) {
		kind = e.Kind
	}
	return errors.Wrap(errors.PhaseMorph, kind, err, fmt.Sprintf("stage %d", i))
}
