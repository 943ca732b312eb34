package wasmmem

import (
	"fmt"

	"github.com/wippyai/packplan"
	"github.com/wippyai/packplan/cascade"
	"github.com/wippyai/packplan/codec"
	"github.com/wippyai/packplan/errors"
)

// Compress packs count values from src into mem at offset and returns the
// number of bytes written. Guest memory is only touched once packing has
// succeeded.
func Compress(c *codec.Codec, src []byte, count int, mem packplan.Memory, offset uint32) (int, error) {
	bound := c.Bound(count)
	if bound < 0 {
		return 0, errors.InvalidInput(errors.PhaseEncode, fmt.Sprintf("invalid count %d", count))
	}
	buf := make([]byte, bound)
	n, err := c.Compress(src, count, buf)
	if err != nil {
		return 0, err
	}
	if err := mem.Write(offset, buf[:n]); err != nil {
		return 0, err
	}
	return n, nil
}

// CompressAlloc packs count values into a fresh guest allocation sized by
// the codec's bound. It returns the pointer and the packed length; the
// allocation keeps its bound size.
func CompressAlloc(c *codec.Codec, src []byte, count int, mem packplan.Memory, alloc packplan.Allocator) (ptr, length uint32, err error) {
	bound := c.Bound(count)
	if bound < 0 {
		return 0, 0, errors.InvalidInput(errors.PhaseEncode, fmt.Sprintf("invalid count %d", count))
	}
	align := uint32(c.Word().Bytes())
	ptr, err = alloc.Alloc(uint32(bound), align)
	if err != nil {
		return 0, 0, errors.Wrap(errors.PhaseLoad, errors.KindOutOfBounds, err, "allocate output")
	}
	n, err := Compress(c, src, count, mem, ptr)
	if err != nil {
		alloc.Free(ptr, uint32(bound), align)
		return 0, 0, err
	}
	return ptr, uint32(n), nil
}

// Decompress unpacks count values from length bytes of mem at offset.
func Decompress(c *codec.Codec, mem packplan.Memory, offset, length uint32, count int, dst []byte) (int, error) {
	data, err := mem.Read(offset, length)
	if err != nil {
		return 0, err
	}
	return c.Decompress(data, count, dst)
}

// Morph reads data packed with the first codec of cs from mem and writes
// the converted data back at dstOffset.
func Morph(cs *cascade.Cascade, mem packplan.Memory, srcOffset, srcLength uint32, count int, dstOffset uint32) (int, error) {
	src, err := mem.Read(srcOffset, srcLength)
	if err != nil {
		return 0, err
	}
	bound := cs.Bound(count)
	if bound < 0 {
		return 0, errors.InvalidInput(errors.PhaseMorph, fmt.Sprintf("invalid count %d", count))
	}
	buf := make([]byte, bound)
	n, err := cs.Morph(src, count, buf)
	if err != nil {
		return 0, err
	}
	if err := mem.Write(dstOffset, buf[:n]); err != nil {
		return 0, err
	}
	return n, nil
}
