package codec

import (
	"fmt"
	"unsafe"

	"golang.org/x/exp/constraints"

	"github.com/wippyai/packplan/engine"
	"github.com/wippyai/packplan/errors"
	"github.com/wippyai/packplan/internal/types"
	"github.com/wippyai/packplan/plan"
)

// Codec is a compiled format. It is immutable and safe for concurrent use;
// streams created from it are not.
type Codec struct {
	plan *plan.Plan
}

// Plan returns the execution plan behind the codec.
func (c *Codec) Plan() *plan.Plan { return c.plan }

func (c *Codec) Logical() types.Kind { return c.plan.Logical }
func (c *Codec) Word() types.Kind    { return c.plan.Word }

// Tokensize returns the number of values per outer block.
func (c *Codec) Tokensize() int { return c.plan.StaticTokensize() }

// Bound returns the largest compressed size of count values in bytes,
// or -1 for a negative or overflowing count.
func (c *Codec) Bound(count int) int { return c.plan.Bound(count) }

// Compress packs count little-endian logical values from src into dst and
// returns the number of bytes written.
func (c *Codec) Compress(src []byte, count int, dst []byte) (int, error) {
	return engine.Compress(c.plan, src, count, dst)
}

// Decompress unpacks count values from src into dst and returns the number
// of bytes written, always count times the logical size.
func (c *Codec) Decompress(src []byte, count int, dst []byte) (int, error) {
	return engine.Decompress(c.plan, src, count, dst)
}

// DecompressBlock unpacks one outer block from the start of src.
func (c *Codec) DecompressBlock(src, dst []byte) (consumed, produced int, err error) {
	return engine.DecompressBlock(c.plan, src, dst)
}

func (c *Codec) NewEncoder(dst []byte) *engine.Encoder { return engine.NewEncoder(c.plan, dst) }
func (c *Codec) NewDecoder(src []byte) *engine.Decoder { return engine.NewDecoder(c.plan, src) }

func (c *Codec) String() string {
	return fmt.Sprintf("%s %s->%s", c.plan.Schema(), c.plan.Logical, c.plan.Word)
}

// EncodeValues compresses vals into a new buffer. T must have the size of
// the codec's logical type.
func EncodeValues[T constraints.Integer](c *Codec, vals []T) ([]byte, error) {
	lb := c.plan.LogicalBytes()
	if err := checkSize[T](c, errors.PhaseEncode); err != nil {
		return nil, err
	}
	src := make([]byte, len(vals)*lb)
	for i, v := range vals {
		u := uint64(v)
		for j := 0; j < lb; j++ {
			src[i*lb+j] = byte(u >> (8 * j))
		}
	}
	bound := c.Bound(len(vals))
	if bound < 0 {
		return nil, errors.InvalidInput(errors.PhaseEncode, fmt.Sprintf("count %d overflows", len(vals)))
	}
	dst := make([]byte, bound)
	n, err := c.Compress(src, len(vals), dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

// DecodeValues decompresses count values from data.
func DecodeValues[T constraints.Integer](c *Codec, data []byte, count int) ([]T, error) {
	if err := checkSize[T](c, errors.PhaseDecode); err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, errors.InvalidInput(errors.PhaseDecode, fmt.Sprintf("negative count %d", count))
	}
	lb := c.plan.LogicalBytes()
	buf := make([]byte, count*lb)
	if _, err := c.Decompress(data, count, buf); err != nil {
		return nil, err
	}
	out := make([]T, count)
	for i := range out {
		var u uint64
		for j := lb - 1; j >= 0; j-- {
			u = u<<8 | uint64(buf[i*lb+j])
		}
		out[i] = T(u)
	}
	return out, nil
}

func checkSize[T constraints.Integer](c *Codec, phase errors.Phase) error {
	var zero T
	if size := int(unsafe.Sizeof(zero)); size != c.plan.LogicalBytes() {
		return errors.TypeMismatch(phase, nil, fmt.Sprintf("%T", zero), c.plan.Logical.String())
	}
	return nil
}
