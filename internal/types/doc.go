// Package types describes the integer element kinds a plan is compiled for:
// the logical value type of the uncompressed column and the word type of the
// packed memory region.
//
// Kinds are usually obtained from WIT primitive types so that callers can
// describe a codec the same way they describe component interfaces:
//
//	logical := types.FromWIT(wit.U32{})
//	word := types.FromWIT(wit.U64{})
//
// This package is internal to packplan.
package types
