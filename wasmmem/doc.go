// Package wasmmem packs and unpacks data held in WebAssembly guest memory.
//
// Wrap adapts a wazero api.Memory; Compress, Decompress and Morph then move
// packed data between Go buffers and the guest:
//
//	mem := wasmmem.Wrap(mod.ExportedMemory("memory"))
//	n, err := wasmmem.Compress(c, src, count, mem, ptr)
package wasmmem
