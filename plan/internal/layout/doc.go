// Package layout validates combiner layouts and computes block geometry.
//
// A layout lists the fields of one block in order: header fields holding
// parameter values, and exactly one data item for the block's values.
// Fields are contiguous with no padding. Aligned blocks start on a word
// boundary; unaligned blocks continue at the bit where the previous block
// ended.
//
// # Usage
//
//	l, err := layout.Of(loop.Combiner, []string{"bitwidth"}, path)
//	// l.Items, l.Token, l.Aligned
//
// This package is internal to the plan analyzer.
package layout
