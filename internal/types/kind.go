package types

import (
	"go.bytecodealliance.org/wit"
)

// Kind is the element type of a logical value or of a packed word.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindU8
	KindS8
	KindU16
	KindS16
	KindU32
	KindS32
	KindU64
	KindS64
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindU8:      "u8",
	KindS8:      "s8",
	KindU16:     "u16",
	KindS16:     "s16",
	KindU32:     "u32",
	KindS32:     "s32",
	KindU64:     "u64",
	KindS64:     "s64",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

func (k Kind) Valid() bool {
	return k >= KindU8 && k <= KindS64
}

// Bytes returns the storage size. Zero for invalid kinds.
func (k Kind) Bytes() int {
	switch k {
	case KindU8, KindS8:
		return 1
	case KindU16, KindS16:
		return 2
	case KindU32, KindS32:
		return 4
	case KindU64, KindS64:
		return 8
	default:
		return 0
	}
}

func (k Kind) Bits() int {
	return k.Bytes() * 8
}

func (k Kind) Signed() bool {
	switch k {
	case KindS8, KindS16, KindS32, KindS64:
		return true
	default:
		return false
	}
}

// IsWord reports whether k can be used as a packed word type.
// Packed words are always unsigned.
func (k Kind) IsWord() bool {
	switch k {
	case KindU8, KindU16, KindU32, KindU64:
		return true
	default:
		return false
	}
}

// FromWIT maps a WIT primitive integer type to a Kind.
// Non-integer WIT types map to KindInvalid.
func FromWIT(t wit.Type) Kind {
	switch v := t.(type) {
	case wit.U8:
		return KindU8
	case wit.S8:
		return KindS8
	case wit.U16:
		return KindU16
	case wit.S16:
		return KindS16
	case wit.U32:
		return KindU32
	case wit.S32:
		return KindS32
	case wit.U64:
		return KindU64
	case wit.S64:
		return KindS64
	case *wit.TypeDef:
		// type aliases such as `type offset = u32`
		if inner, ok := v.Kind.(wit.Type); ok {
			return FromWIT(inner)
		}
		return KindInvalid
	default:
		return KindInvalid
	}
}

// ToWIT is the inverse of FromWIT for valid kinds.
func (k Kind) ToWIT() wit.Type {
	switch k {
	case KindU8:
		return wit.U8{}
	case KindS8:
		return wit.S8{}
	case KindU16:
		return wit.U16{}
	case KindS16:
		return wit.S16{}
	case KindU32:
		return wit.U32{}
	case KindS32:
		return wit.S32{}
	case KindU64:
		return wit.U64{}
	case KindS64:
		return wit.S64{}
	default:
		return nil
	}
}

// Parse maps a short name ("u32", "s8", ...) to a Kind.
func Parse(name string) Kind {
	for k, n := range kindNames {
		if n == name && Kind(k).Valid() {
			return Kind(k)
		}
	}
	return KindInvalid
}
