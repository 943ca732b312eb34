// Package errors provides structured error types for packplan.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: schema path, detail message, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCompile, errors.KindSchema).
//		Path("loop", "body").
//		Detail("layout names undeclared parameter %q", name).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Schema(path, "tokensize must be positive, got %d", n)
//	err := errors.InverseMissing(path, expr.String())
//
// The package-level sentinels match on Kind, so callers can test the taxonomy
// without caring about the phase:
//
//	if errors.Is(err, errors.ErrUnsupported) { ... }
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
