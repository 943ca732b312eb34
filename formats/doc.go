// Package formats provides the common lightweight integer formats as ready
// made schemas.
//
//	statbp         fixed width bit packing
//	bpfranka       statbp with an explicit block size
//	statforstatbp  fixed reference, fixed width
//	statfordynbp   fixed reference, per-block width
//	dynbp          per-block width in a one-word header
//	dynforbp       per-block minimum and width
//	delta          wrapping difference from the previous value
//
// The outer block holds one word's worth of bits by default, so a u32 word
// format packs 32 values per block. Scale and BlockSize change that.
package formats
