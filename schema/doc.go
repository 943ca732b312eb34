// Package schema declares integer compression formats.
//
// A format is a tree of loops. Each Loop splits its input into blocks
// with a Tokenizer, computes per-block parameters, hands the block to its
// Body (a nested Loop or an Encoder), and lays the block out with a
// Combiner:
//
//	// dynamic bit packing: a 32-bit width header, then 32 values of that width
//	schema.Loop{
//		Tokenizer:  schema.Static{N: 32},
//		Parameters: []schema.Parameter{
//			schema.Def("bitwidth", schema.WidthOf(schema.MaxOf(schema.Token{})), schema.Lit(32)),
//		},
//		Body: &schema.Loop{
//			Tokenizer: schema.Static{N: 1},
//			Body:      schema.Encode(schema.Token{}, schema.Ref("bitwidth")),
//			Combiner:  schema.Unaligned(schema.Token{}),
//		},
//		Combiner: schema.Aligned(schema.Cat(schema.Ref("bitwidth"), schema.Token{})),
//	}
//
// Expressions form a closed set of types. Consumers dispatch on them with
// type switches. Schemas are plain values: immutable once declared,
// compiled into execution plans by package plan.
package schema
