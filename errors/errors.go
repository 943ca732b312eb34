package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseCompile Phase = "compile" // schema analysis and plan build
	PhaseResolve Phase = "resolve" // term resolution against the parameter environment
	PhaseEncode  Phase = "encode"  // logical values to packed words
	PhaseDecode  Phase = "decode"  // packed words to logical values
	PhaseMorph   Phase = "morph"   // format to format conversion
	PhaseLoad    Phase = "load"    // guest memory access
	PhaseParse   Phase = "parse"   // CLI and value parsing
)

// Kind categorizes the error
type Kind string

const (
	KindSchema            Kind = "schema"
	KindUnsupported       Kind = "unsupported"
	KindInverseMissing    Kind = "inverse_missing"
	KindUnresolved        Kind = "unresolved"
	KindShortBuffer       Kind = "short_buffer"
	KindTypeMismatch      Kind = "type_mismatch"
	KindInvalidInput      Kind = "invalid_input"
	KindOutOfBounds       Kind = "out_of_bounds"
	KindDirectUnavailable Kind = "direct_unavailable"
)

// Sentinels for errors.Is. They carry no Phase, so they match any phase.
var (
	ErrSchema            = &Error{Kind: KindSchema}
	ErrUnsupported       = &Error{Kind: KindUnsupported}
	ErrInverseMissing    = &Error{Kind: KindInverseMissing}
	ErrUnresolved        = &Error{Kind: KindUnresolved}
	ErrShortBuffer       = &Error{Kind: KindShortBuffer}
	ErrTypeMismatch      = &Error{Kind: KindTypeMismatch}
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrOutOfBounds       = &Error{Kind: KindOutOfBounds}
	ErrDirectUnavailable = &Error{Kind: KindDirectUnavailable}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// An empty Phase on the target matches any phase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the schema path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Schema creates a schema shape error. These are raised at plan build.
func Schema(path []string, format string, args ...any) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindSchema,
		Path:   path,
		Detail: fmt.Sprintf(format, args...),
	}
}

// Unsupported creates an unsupported feature error
func Unsupported(phase Phase, path []string, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Path:   path,
		Detail: what,
	}
}

// InverseMissing creates an error for a decode-path transform without an inverse
func InverseMissing(path []string, expr string) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindInverseMissing,
		Path:   path,
		Detail: fmt.Sprintf("transform %s declares no inverse", expr),
		Value:  expr,
	}
}

// Unresolved creates a name resolution failure
func Unresolved(path []string, name string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindUnresolved,
		Path:   path,
		Detail: fmt.Sprintf("parameter %q is not declared", name),
		Value:  name,
	}
}

// ShortBuffer creates a buffer capacity error
func ShortBuffer(phase Phase, what string, need, have int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindShortBuffer,
		Detail: fmt.Sprintf("%s buffer too small: need %d bytes, have %d", what, need, have),
		Value:  need,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, got, want string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Detail: fmt.Sprintf("got %s, want %s", got, want),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, offset, length uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("range [%d, %d) out of bounds", offset, uint64(offset)+uint64(length)),
		Value:  offset,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidInput,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}
