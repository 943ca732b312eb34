// Package term resolves schema expressions against the parameters known
// at a point of the analysis.
//
// Resolution is partial evaluation: parameters with statically known
// values are substituted, constant subterms are folded, and the remaining
// runtime parameters are rewritten to indexes into the per-call parameter
// tuple so that evaluation never looks names up.
//
//	env := term.Env{}.With(term.Binding{Name: "ref", Known: true, Value: 7, Slot: -1})
//	n, err := term.Resolver{Bits: 32}.Resolve(schema.Sub(schema.Token{}, schema.Ref("ref")), env, 1, nil)
//	// n: (token - 7)
//
// The plan analyzer resolves with it; the engine evaluates the nodes.
package term
