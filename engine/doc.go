// Package engine executes packing plans.
//
// A plan is interpreted, not compiled to machine code. The encoder and the
// decoder walk the same node tree; the decoder reads data-derived
// parameters back from their header fields and recomputes everything else.
//
// # Architecture
//
// The engine package provides three main pieces:
//
//	cursor   - bit position over a buffer of little-endian words
//	machine  - walks plan nodes for one stream, holding the slot tuple
//	Encoder  - persistent packing stream (Decoder is its mirror)
//
// # Wire Layout
//
// Words are stored little-endian. Inside a word, fields fill from the least
// significant bit upward; a field that does not fit spills its high bits
// into the next word. Aligned loops start each block on a fresh word.
//
//	word 0: [ f0 | f1 | f2 ... ]   bit 0 on the right
//	word 1: [ f2 high | f3 ... ]
//
// A trailing partial block is copied raw after the last full block, aligned
// to a word boundary, with values stored at their logical width.
//
// # Streams
//
// Encoder and Decoder keep the cursor and adaptive parameters across calls,
// so packing a buffer in pieces yields the same bytes as packing it whole.
// Rebase moves a stream onto a new buffer, carrying the partially filled
// word, which lets a caller pump data through a small scratch area.
//
// # Logging
//
// The package logs through zap. SetLogger installs a logger; the default
// discards everything.
package engine
