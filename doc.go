// Package packplan compiles declarative integer compression layouts into
// execution plans and runs them as bit-exact packing engines.
//
// A format is described as a schema of nested loops: a tokenizer splits the
// input into blocks, parameters are computed per block (a bit width, a
// minimum, the previous value), an encoder writes each value, and a
// combiner lays out header fields and values. The analyzer turns a schema
// into a plan once; the engine then interprets the plan over byte buffers.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	packplan/        Root package with the Memory and Allocator interfaces
//	├── schema/      Format schema: loops, parameters, encoders, expressions
//	├── plan/        Plan analyzer and the plan node types
//	├── engine/      Plan interpreter, encode and decode streams
//	├── codec/       Compiler with plan cache, Codec entry points
//	├── formats/     Ready made formats: statbp, dynbp, dynforbp, delta, ...
//	├── cascade/     Format to format conversion
//	├── wasmmem/     Packing into and out of wazero guest memory
//	├── errors/      Structured error types
//	└── cmd/packlab/ Command line and interactive inspector
//
// # Quick Start
//
//	c, err := formats.DynBP().Compile(wit.U32{}, wit.U32{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	packed, err := codec.EncodeValues(c, []uint32{1, 2, 4, 8})
//	vals, err := codec.DecodeValues[uint32](c, packed, 4)
//
// # Custom Formats
//
// Any layout expressible as a schema compiles the same way:
//
//	format := &schema.Loop{
//	    Tokenizer: schema.Static{N: 128},
//	    Parameters: []schema.Parameter{
//	        schema.Def("bitwidth", schema.WidthOf(schema.MaxOf(schema.Token{})), schema.Lit(8)),
//	    },
//	    Body: &schema.Loop{
//	        Tokenizer: schema.Static{N: 1},
//	        Body:      schema.Encode(schema.Token{}, schema.Ref("bitwidth")),
//	        Combiner:  schema.Unaligned(schema.Token{}),
//	    },
//	    Combiner: schema.Aligned(schema.Cat(schema.Ref("bitwidth"), schema.Token{})),
//	}
//	c, err := codec.Compile(format, wit.U16{}, wit.U8{})
//
// # Errors
//
// Schema problems are reported when a plan is built, never while data is
// processed. See the errors package for the taxonomy.
package packplan
