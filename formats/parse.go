package formats

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/packplan/errors"
)

// Parse reads a format description of the form
//
//	name[:arg...][,scale=N][,block=N]
//
// for example "statbp:3", "dynforbp,block=128" or "statforstatbp:1000:8".
func Parse(s string) (Format, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	fields := strings.Split(parts[0], ":")
	name := strings.ToLower(fields[0])

	args := make([]uint64, 0, len(fields)-1)
	for _, a := range fields[1:] {
		v, err := strconv.ParseUint(a, 10, 64)
		if err != nil {
			return Format{}, errors.ParseFailed(fmt.Sprintf("format %q argument", s), err)
		}
		args = append(args, v)
	}

	var opts []Option
	for _, p := range parts[1:] {
		key, val, ok := strings.Cut(p, "=")
		if !ok {
			return Format{}, errors.ParseFailed(fmt.Sprintf("format %q option", s), fmt.Errorf("missing '=' in %q", p))
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return Format{}, errors.ParseFailed(fmt.Sprintf("format %q option %s", s, key), err)
		}
		switch key {
		case "scale":
			opts = append(opts, Scale(n))
		case "block":
			opts = append(opts, BlockSize(n))
		default:
			return Format{}, errors.ParseFailed(fmt.Sprintf("format %q", s), fmt.Errorf("unknown option %q", key))
		}
	}

	arity := func(n int) error {
		if len(args) != n {
			return errors.ParseFailed(fmt.Sprintf("format %q", s), fmt.Errorf("%s takes %d arguments, got %d", name, n, len(args)))
		}
		return nil
	}

	switch name {
	case "statbp":
		if err := arity(1); err != nil {
			return Format{}, err
		}
		return StaticBP(int(args[0]), opts...), nil
	case "bpfranka":
		if err := arity(2); err != nil {
			return Format{}, err
		}
		return StaticBPBlock(int(args[0]), int(args[1])), nil
	case "statforstatbp":
		if err := arity(2); err != nil {
			return Format{}, err
		}
		return StaticFORStaticBP(args[0], int(args[1]), opts...), nil
	case "statfordynbp":
		if err := arity(1); err != nil {
			return Format{}, err
		}
		return StaticFORDynBP(args[0], opts...), nil
	case "dynbp":
		if err := arity(0); err != nil {
			return Format{}, err
		}
		return DynBP(opts...), nil
	case "dynforbp":
		if err := arity(0); err != nil {
			return Format{}, err
		}
		return DynFORBP(opts...), nil
	case "delta":
		if err := arity(0); err != nil {
			return Format{}, err
		}
		return Delta(), nil
	}
	return Format{}, errors.ParseFailed(fmt.Sprintf("format %q", s), fmt.Errorf("unknown format %q", name))
}

// Names lists the formats Parse understands.
func Names() []string {
	return []string{"statbp", "bpfranka", "statforstatbp", "statfordynbp", "dynbp", "dynforbp", "delta"}
}
