// Package errors provides structured error types for the structview module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: entry name, type name, owner, entry path and
// cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseRegister, errors.KindInvalidArgument).
//		Path("_FILETIME").
//		Name("dwHighDateTime").
//		Type("DWORD").
//		Detail("offset %d precedes current size %d", 2, 4).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.DuplicateName(errors.PhaseRegister, "alias", "HANDLE")
//	err := errors.UnknownType(errors.PhaseRegister, path, "FOO*")
//
// All errors implement the standard error interface and support errors.Is/As.
// Is matches on Phase and Kind; IsKind matches on Kind alone.
package errors
