package bits

import (
	"math"
	"testing"
)

func TestMask(t *testing.T) {
	tests := []struct {
		w    int
		want uint64
	}{
		{-1, 0},
		{0, 0},
		{1, 1},
		{3, 7},
		{8, 0xff},
		{32, 0xffffffff},
		{63, math.MaxUint64 >> 1},
		{64, math.MaxUint64},
		{70, math.MaxUint64},
	}
	for _, tt := range tests {
		if got := Mask(tt.w); got != tt.want {
			t.Errorf("Mask(%d) = %#x, want %#x", tt.w, got, tt.want)
		}
	}
}

func TestLen(t *testing.T) {
	if Len(uint32(0)) != 0 {
		t.Error("Len(0) should be 0")
	}
	if Len(uint8(8)) != 4 {
		t.Errorf("Len(8) = %d, want 4", Len(uint8(8)))
	}
	if Len(uint64(math.MaxUint64)) != 64 {
		t.Error("Len(max u64) should be 64")
	}
}

func TestSignExtend(t *testing.T) {
	tests := []struct {
		v    uint64
		n    int
		want int64
	}{
		{0xff, 8, -1},
		{0x7f, 8, 127},
		{0x8000, 16, -32768},
		{0xffffffff, 32, -1},
		{5, 64, 5},
	}
	for _, tt := range tests {
		if got := SignExtend(tt.v, tt.n); got != tt.want {
			t.Errorf("SignExtend(%#x, %d) = %d, want %d", tt.v, tt.n, got, tt.want)
		}
	}
}

func TestAlignTo(t *testing.T) {
	tests := []struct {
		offset, align, want uint32
	}{
		{0, 4, 0},
		{1, 4, 4},
		{4, 4, 4},
		{5, 8, 8},
		{7, 0, 7},
	}
	for _, tt := range tests {
		if got := AlignTo(tt.offset, tt.align); got != tt.want {
			t.Errorf("AlignTo(%d, %d) = %d, want %d", tt.offset, tt.align, got, tt.want)
		}
	}
}

func TestCeilDiv(t *testing.T) {
	if CeilDiv(24, 8) != 3 || CeilDiv(25, 8) != 4 || CeilDiv(0, 8) != 0 {
		t.Error("CeilDiv mismatch")
	}
}

func TestLCM(t *testing.T) {
	tests := []struct {
		a, b, want int
		ok         bool
	}{
		{32, 1, 32, true},
		{32, 8, 32, true},
		{4, 6, 12, true},
		{64, 96, 192, true},
		{0, 5, 0, true},
		{math.MaxInt, 2, 0, false},
		{-4, 6, 0, false},
	}
	for _, tt := range tests {
		if got, ok := LCM(tt.a, tt.b); got != tt.want || ok != tt.ok {
			t.Errorf("LCM(%d, %d) = %d, %v, want %d, %v", tt.a, tt.b, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSafeMul(t *testing.T) {
	if v, ok := SafeMul(1<<20, 1<<20); !ok || v != 1<<40 {
		t.Errorf("SafeMul = %d, %v", v, ok)
	}
	if _, ok := SafeMul(math.MaxInt, 2); ok {
		t.Error("expected overflow")
	}
	if _, ok := SafeMul(-1, 2); ok {
		t.Error("negative operands should fail")
	}
}

func TestSafeAdd(t *testing.T) {
	if v, ok := SafeAdd(3, 4); !ok || v != 7 {
		t.Errorf("SafeAdd = %d, %v", v, ok)
	}
	if _, ok := SafeAdd(math.MaxInt, 1); ok {
		t.Error("expected overflow")
	}
}
