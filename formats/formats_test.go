package formats

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"testing"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/packplan/codec"
	perrors "github.com/wippyai/packplan/errors"
)

func mustCompile(t *testing.T, f Format, logical, word wit.Type) *codec.Codec {
	t.Helper()
	c, err := f.Compile(logical, word)
	if err != nil {
		t.Fatalf("%s: %v", f, err)
	}
	return c
}

func TestScenarios(t *testing.T) {
	t.Run("statbp 3 bits in bytes", func(t *testing.T) {
		c := mustCompile(t, StaticBP(3), wit.U8{}, wit.U8{})
		packed, err := codec.EncodeValues(c, []uint8{0, 1, 2, 3, 4, 5, 6, 7})
		if err != nil {
			t.Fatal(err)
		}
		if want := []byte{0x88, 0xC6, 0xFA}; !bytes.Equal(packed, want) {
			t.Errorf("packed = % x, want % x", packed, want)
		}
		if c.Bound(8) != 3 {
			t.Errorf("Bound(8) = %d, want 3", c.Bound(8))
		}
	})

	t.Run("dynbp block 4", func(t *testing.T) {
		c := mustCompile(t, DynBP(BlockSize(4)), wit.U32{}, wit.U32{})
		packed, err := codec.EncodeValues(c, []uint32{1, 2, 4, 8})
		if err != nil {
			t.Fatal(err)
		}
		if want := []byte{4, 0, 0, 0, 0x21, 0x84, 0, 0}; !bytes.Equal(packed, want) {
			t.Errorf("packed = % x, want % x", packed, want)
		}
	})

	t.Run("delta", func(t *testing.T) {
		c := mustCompile(t, Delta(), wit.U32{}, wit.U32{})
		packed, err := codec.EncodeValues(c, []uint32{10, 12, 11, 15})
		if err != nil {
			t.Fatal(err)
		}
		want := []byte{10, 0, 0, 0, 2, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF, 4, 0, 0, 0}
		if !bytes.Equal(packed, want) {
			t.Errorf("packed = % x, want % x", packed, want)
		}
		vals, err := codec.DecodeValues[uint32](c, packed, 4)
		if err != nil {
			t.Fatal(err)
		}
		if vals[0] != 10 || vals[1] != 12 || vals[2] != 11 || vals[3] != 15 {
			t.Errorf("decoded = %v", vals)
		}
	})
}

func TestRoundTrip(t *testing.T) {
	formats := []Format{
		StaticBP(13),
		StaticBP(13, Scale(2)),
		StaticBPBlock(13, 100),
		StaticFORStaticBP(1000, 12),
		StaticFORDynBP(1000),
		DynBP(),
		DynBP(Scale(4)),
		DynFORBP(),
		DynFORBP(BlockSize(128)),
		Delta(),
	}
	words := []wit.Type{wit.U8{}, wit.U16{}, wit.U32{}, wit.U64{}}

	rng := rand.New(rand.NewPCG(5, 9))
	vals := make([]uint32, 777)
	for i := range vals {
		// inside [1000, 1000+2^12) so every format is lossless
		vals[i] = 1000 + uint32(rng.IntN(1<<12))
	}
	for _, f := range formats {
		for _, w := range words {
			c := mustCompile(t, f, wit.U32{}, w)
			t.Run(f.String()+"/"+c.Word().String(), func(t *testing.T) {
				packed, err := codec.EncodeValues(c, vals)
				if err != nil {
					t.Fatal(err)
				}
				if len(packed) > c.Bound(len(vals)) {
					t.Errorf("packed %d bytes, bound %d", len(packed), c.Bound(len(vals)))
				}
				got, err := codec.DecodeValues[uint32](c, packed, len(vals))
				if err != nil {
					t.Fatal(err)
				}
				for i := range vals {
					if got[i] != vals[i] {
						t.Fatalf("value %d: got %d, want %d", i, got[i], vals[i])
					}
				}
			})
		}
	}
}

func TestRoundTrip_Signed(t *testing.T) {
	for _, f := range []Format{DynBP(), DynFORBP(), Delta(), StaticBP(64)} {
		c := mustCompile(t, f, wit.S64{}, wit.U32{})
		in := []int64{-5, 3, -1 << 63, 1<<63 - 1, 0, -1, 42, -42, 7}
		for i := 0; i < 40; i++ {
			in = append(in, int64(i*i)-700)
		}
		packed, err := codec.EncodeValues(c, in)
		if err != nil {
			t.Fatal(err)
		}
		out, err := codec.DecodeValues[int64](c, packed, len(in))
		if err != nil {
			t.Fatal(err)
		}
		for i := range in {
			if in[i] != out[i] {
				t.Errorf("%s: value %d = %d, want %d", f, i, out[i], in[i])
			}
		}
	}
}

func TestDynBP_MixedSigns(t *testing.T) {
	c := mustCompile(t, DynBP(BlockSize(4)), wit.S8{}, wit.U8{})
	in := []int8{-1, 3, 2, 1, 5, -128, 127, 0}
	packed, err := codec.EncodeValues(c, in)
	if err != nil {
		t.Fatal(err)
	}
	// a negative value needs the full pattern width
	if packed[0] != 8 {
		t.Errorf("block width = %d, want 8", packed[0])
	}
	out, err := codec.DecodeValues[int8](c, packed, len(in))
	if err != nil {
		t.Fatal(err)
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("value %d = %d, want %d", i, out[i], in[i])
		}
	}
}

func TestTruncation(t *testing.T) {
	c := mustCompile(t, StaticBP(3), wit.U8{}, wit.U8{})
	packed, err := codec.EncodeValues(c, []uint8{1, 2, 3, 4, 5, 6, 7, 8})
	if err != nil {
		t.Fatal(err)
	}
	got, err := codec.DecodeValues[uint8](c, packed, 8)
	if err != nil {
		t.Fatal(err)
	}
	if got[7] != 0 {
		t.Errorf("8 in 3 bits decoded as %d, want 0", got[7])
	}
}

func TestSchema_Errors(t *testing.T) {
	tests := []struct {
		name    string
		f       Format
		logical wit.Type
		word    wit.Type
		want    error
	}{
		{"zero format", Format{}, wit.U32{}, wit.U32{}, perrors.ErrInvalidInput},
		{"string logical", DynBP(), wit.String{}, wit.U32{}, perrors.ErrTypeMismatch},
		{"signed word", DynBP(), wit.U32{}, wit.S8{}, perrors.ErrTypeMismatch},
		{"zero scale", DynBP(Scale(0)), wit.U32{}, wit.U32{}, perrors.ErrSchema},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.f.Compile(tt.logical, tt.word); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := StaticBP(65).Compile(wit.U64{}, wit.U64{}); !errors.Is(err, perrors.ErrSchema) {
		t.Errorf("width 65: err = %v, want ErrSchema", err)
	}
}

func TestTokensize(t *testing.T) {
	tests := []struct {
		f    Format
		word wit.Type
		want int
	}{
		{StaticBP(3), wit.U8{}, 8},
		{StaticBP(3, Scale(4)), wit.U16{}, 64},
		{StaticBPBlock(3, 100), wit.U64{}, 100},
		{DynBP(BlockSize(4), Scale(9)), wit.U32{}, 4},
		{Delta(), wit.U32{}, 1},
	}
	for _, tt := range tests {
		c := mustCompile(t, tt.f, wit.U32{}, tt.word)
		if got := c.Tokensize(); got != tt.want {
			t.Errorf("%s: tokensize = %d, want %d", tt.f, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"statbp:3", "statbp:3"},
		{" StatBP:3,scale=2 ", "statbp:3,scale=2"},
		{"bpfranka:5:128", "bpfranka:5:128"},
		{"statforstatbp:1000:8", "statforstatbp:1000:8"},
		{"statfordynbp:7,block=64", "statfordynbp:7,block=64"},
		{"dynbp", "dynbp"},
		{"dynforbp,block=128", "dynforbp,block=128"},
		{"delta", "delta"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			f, err := Parse(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if f.String() != tt.want {
				t.Errorf("String() = %q, want %q", f.String(), tt.want)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{
		"", "zstd", "statbp", "statbp:x", "dynbp:3", "dynbp,scale", "dynbp,scale=x", "dynbp,level=3",
		"bpfranka:3",
	} {
		if _, err := Parse(in); !errors.Is(err, perrors.ErrInvalidInput) {
			t.Errorf("Parse(%q): err = %v, want ErrInvalidInput", in, err)
		}
	}
}

func TestNames_Parse(t *testing.T) {
	args := map[string]string{
		"statbp": ":4", "bpfranka": ":4:16", "statforstatbp": ":1:4", "statfordynbp": ":1",
	}
	for _, name := range Names() {
		f, err := Parse(name + args[name])
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if f.Name() != name {
			t.Errorf("Name() = %q, want %q", f.Name(), name)
		}
	}
}
