// Package cascade converts packed data from one format to another.
//
// A Cascade chains two or more codecs over the same logical type. Morphing
// decodes with each codec and re-encodes with the next. MorphIndirectly
// materializes every intermediate buffer; MorphDirectly streams the data
// through all stages in tiles of lcm(tokensizes) values and keeps each
// stage's encoder and decoder alive across tiles, so both produce the same
// bytes. Morph picks the direct path when a tile of at most MaxTile values
// exists.
package cascade
