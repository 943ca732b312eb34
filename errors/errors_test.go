package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseCompile,
				Kind:   KindSchema,
				Path:   []string{"loop", "body", "encoder"},
				Detail: "width 70 exceeds 64 bits",
			},
			contains: []string{"[compile]", "schema", "loop.body.encoder", "width 70 exceeds 64 bits"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindShortBuffer,
			},
			contains: []string{"[decode]", "short_buffer"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindOutOfBounds,
				Detail: "guest memory",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[load]", "out_of_bounds", "guest memory", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindInvalidInput,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseCompile,
		Kind:  KindSchema,
		Path:  []string{"loop"},
	}

	if !err.Is(&Error{Phase: PhaseCompile, Kind: KindSchema}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindSchema}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseCompile, Kind: KindUnsupported}) {
		t.Error("Is should not match different kind")
	}
	if !errors.Is(err, ErrSchema) {
		t.Error("errors.Is should match the phase-less sentinel")
	}
	if errors.Is(err, ErrUnsupported) {
		t.Error("errors.Is should not match a different sentinel")
	}
}

func TestSentinels_Distinct(t *testing.T) {
	all := []*Error{
		ErrSchema, ErrUnsupported, ErrInverseMissing, ErrUnresolved,
		ErrShortBuffer, ErrTypeMismatch, ErrInvalidInput, ErrOutOfBounds,
		ErrDirectUnavailable,
	}
	for i, a := range all {
		for j, b := range all {
			if i != j && errors.Is(a, b) {
				t.Errorf("%s matches %s", a.Kind, b.Kind)
			}
		}
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseCompile, KindSchema).
		Path("loop", "params", "bitwidth").
		Value(42).
		Cause(cause).
		Detail("domain has %d values", 42).
		Build()

	if err.Phase != PhaseCompile {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseCompile)
	}
	if err.Kind != KindSchema {
		t.Errorf("Kind = %v, want %v", err.Kind, KindSchema)
	}
	if len(err.Path) != 3 || err.Path[2] != "bitwidth" {
		t.Errorf("Path = %v", err.Path)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if err.Cause != cause {
		t.Error("Cause not set")
	}
	if err.Detail != "domain has 42 values" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestBuilder_DetailNoArgs(t *testing.T) {
	err := New(PhaseMorph, KindDirectUnavailable).Detail("100%").Build()
	if err.Detail != "100%" {
		t.Errorf("Detail = %q, want %q", err.Detail, "100%")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		target *Error
		phase  Phase
	}{
		{"schema", Schema([]string{"loop"}, "bad %s", "shape"), ErrSchema, PhaseCompile},
		{"unsupported", Unsupported(PhaseCompile, nil, "dynamic tokenizer"), ErrUnsupported, PhaseCompile},
		{"inverse", InverseMissing(nil, "max(token)"), ErrInverseMissing, PhaseCompile},
		{"unresolved", Unresolved(nil, "ref"), ErrUnresolved, PhaseResolve},
		{"short", ShortBuffer(PhaseEncode, "destination", 16, 8), ErrShortBuffer, PhaseEncode},
		{"mismatch", TypeMismatch(PhaseMorph, nil, "u8", "u32"), ErrTypeMismatch, PhaseMorph},
		{"input", InvalidInput(PhaseDecode, "negative count"), ErrInvalidInput, PhaseDecode},
		{"bounds", OutOfBounds(PhaseLoad, 65530, 16), ErrOutOfBounds, PhaseLoad},
		{"parse", ParseFailed("values", errors.New("x")), ErrInvalidInput, PhaseParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Phase != tt.phase {
				t.Errorf("Phase = %v, want %v", tt.err.Phase, tt.phase)
			}
			if !errors.Is(tt.err, tt.target) {
				t.Errorf("%v does not match %s", tt.err, tt.target.Kind)
			}
		})
	}
}

func TestUnresolved_Value(t *testing.T) {
	err := Unresolved([]string{"encoder"}, "ref")
	if err.Value != "ref" {
		t.Errorf("Value = %v, want ref", err.Value)
	}
	if !strings.Contains(err.Error(), `"ref"`) {
		t.Errorf("message %q should quote the name", err.Error())
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("inner")
	err := Wrap(PhaseMorph, KindInvalidInput, cause, "stage 1")
	if !errors.Is(err, cause) {
		t.Error("Wrap should keep the cause chain")
	}
	var target *Error
	if !errors.As(err, &target) || target.Detail != "stage 1" {
		t.Error("errors.As should find the wrapper")
	}
}
