package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/packplan/codec"
	"github.com/wippyai/packplan/errors"
	"github.com/wippyai/packplan/formats"
	"github.com/wippyai/packplan/internal/types"
)

var (
	evenWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB"))
	oddWordStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98"))
	offsetStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

func compile(format, logical, word string) (*codec.Codec, error) {
	f, err := formats.Parse(format)
	if err != nil {
		return nil, err
	}
	lk, wk := types.Parse(logical), types.Parse(word)
	if lk == types.KindInvalid {
		return nil, errors.ParseFailed("logical type", fmt.Errorf("unknown type %q", logical))
	}
	if wk == types.KindInvalid {
		return nil, errors.ParseFailed("word type", fmt.Errorf("unknown type %q", word))
	}
	return f.Compile(lk.ToWIT(), wk.ToWIT())
}

// parseValues reads comma or space separated integers as little-endian
// values of kind k.
func parseValues(s string, k types.Kind) ([]byte, int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\n' || r == '\t' })
	lb := k.Bytes()
	out := make([]byte, len(fields)*lb)
	for i, f := range fields {
		var u uint64
		if k.Signed() {
			v, err := strconv.ParseInt(f, 0, k.Bits())
			if err != nil {
				return nil, 0, errors.ParseFailed(fmt.Sprintf("value %d", i), err)
			}
			u = uint64(v)
		} else {
			v, err := strconv.ParseUint(f, 0, k.Bits())
			if err != nil {
				return nil, 0, errors.ParseFailed(fmt.Sprintf("value %d", i), err)
			}
			u = v
		}
		for j := 0; j < lb; j++ {
			out[i*lb+j] = byte(u >> (8 * j))
		}
	}
	return out, len(fields), nil
}

func formatValues(data []byte, k types.Kind) string {
	lb := k.Bytes()
	parts := make([]string, 0, len(data)/lb)
	for i := 0; i+lb <= len(data); i += lb {
		var u uint64
		for j := lb - 1; j >= 0; j-- {
			u = u<<8 | uint64(data[i+j])
		}
		if k.Signed() {
			shift := 64 - k.Bits()
			parts = append(parts, strconv.FormatInt(int64(u<<shift)>>shift, 10))
		} else {
			parts = append(parts, strconv.FormatUint(u, 10))
		}
	}
	return strings.Join(parts, ",")
}

func parseHex(s string) ([]byte, error) {
	s = strings.NewReplacer(" ", "", ":", "", "0x", "").Replace(s)
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.ParseFailed("hex input", err)
	}
	return data, nil
}

func hexString(data []byte) string {
	return hex.EncodeToString(data)
}

// renderWords prints each packed word in binary, most significant bit
// first, so fields read right to left as the engine fills them.
func renderWords(data []byte, wordBytes int, color bool) string {
	var b strings.Builder
	for off := 0; off < len(data); off += wordBytes {
		end := min(off+wordBytes, len(data))
		var bitsStr strings.Builder
		for i := end - 1; i >= off; i-- {
			fmt.Fprintf(&bitsStr, "%08b", data[i])
			if i > off {
				bitsStr.WriteByte(' ')
			}
		}
		label := fmt.Sprintf("%6d  ", off)
		line := bitsStr.String()
		if color {
			label = offsetStyle.Render(label)
			if (off/wordBytes)%2 == 0 {
				line = evenWordStyle.Render(line)
			} else {
				line = oddWordStyle.Render(line)
			}
		}
		b.WriteString(label)
		b.WriteString(line)
		if end < len(data) {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
