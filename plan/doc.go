// Package plan compiles a format schema into an execution plan.
//
// The analyzer walks the schema's loops and resolves every expression
// against the parameters visible at that point. The outer loop runs over
// a count known only at run time and becomes a RolledLoop. Nested loops
// iterate over a block of known size and are unrolled, with the bit
// offset of every field threaded through the iterations while it stays
// statically known.
//
// Parameters are analyzed in declaration order:
//
//   - a value that folds to a constant becomes a KnownValue;
//   - a value with a small finite domain, such as a bit width, becomes a
//     SwitchValue whose cases are the rest of the block specialized for
//     each possible value;
//   - anything else becomes a RuntimeValue stored in a slot of the
//     per-call parameter tuple.
//
// Decoding runs the same plan. A parameter computed from the block data
// is read back from its header field, so it must be stored before the
// data. Encoder transforms must declare an inverse. Both rules are checked
// here, so every error surfaces before any byte is processed:
//
//	p, err := plan.Build(format, types.KindU32, types.KindU32, plan.Options{})
//	if errors.Is(err, errors.ErrInverseMissing) { ... }
//	fmt.Print(p)
package plan
