// Package codec compiles packing formats into reusable codecs.
//
// A Compiler turns a schema and a pair of WIT integer types into a Codec.
// Plans are cached per compiler by the schema's canonical rendering and
// the two types:
//
//	c, err := codec.Compile(format, wit.U32{}, wit.U32{})
//	dst := make([]byte, c.Bound(len(values)))
//	n, err := c.Compress(src, len(values), dst)
//
// EncodeValues and DecodeValues work on typed slices directly:
//
//	packed, err := codec.EncodeValues(c, []uint32{1, 2, 4, 8})
//	vals, err := codec.DecodeValues[uint32](c, packed, 4)
package codec
