package wasmmem

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/packplan"
	"github.com/wippyai/packplan/errors"
)

// Wrap adapts a wazero memory to packplan.Memory.
func Wrap(mem api.Memory) packplan.Memory {
	if mem == nil {
		return nil
	}
	return &Wrapper{Mem: mem}
}

// WrapAllocator adapts a guest cabi_realloc export to packplan.Allocator.
func WrapAllocator(ctx context.Context, fn api.Function) packplan.Allocator {
	if fn == nil {
		return nil
	}
	return &AllocatorWrapper{Ctx: ctx, Fn: fn}
}

// Wrapper adapts wazero api.Memory to the packplan.Memory interface.
type Wrapper struct {
	Mem api.Memory
}

// Read returns a view of guest memory. Writes through the view are
// visible to the guest.
func (m *Wrapper) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.Mem.Read(offset, length)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseLoad, offset, length)
	}
	return data, nil
}

func (m *Wrapper) Write(offset uint32, data []byte) error {
	if !m.Mem.Write(offset, data) {
		return errors.OutOfBounds(errors.PhaseLoad, offset, uint32(len(data)))
	}
	return nil
}

func (m *Wrapper) Size() uint32 {
	return m.Mem.Size()
}

// AllocatorWrapper adapts wazero api.Function (cabi_realloc) to packplan.Allocator.
type AllocatorWrapper struct {
	Ctx context.Context
	Fn  api.Function
}

// Alloc allocates memory using cabi_realloc.
func (a *AllocatorWrapper) Alloc(size, align uint32) (uint32, error) {
	results, err := a.Fn.Call(a.Ctx, 0, 0, uint64(align), uint64(size))
	if err != nil {
		return 0, fmt.Errorf("allocation failed: %w", err)
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("allocation returned no result")
	}
	return uint32(results[0]), nil
}

// Free deallocates memory using cabi_realloc.
func (a *AllocatorWrapper) Free(ptr, size, align uint32) {
	_, _ = a.Fn.Call(a.Ctx, uint64(ptr), uint64(size), uint64(align), 0)
}
