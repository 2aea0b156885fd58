// Package errors provides the structured error taxonomy for hookinject.
//
// Errors are categorized by Phase (where in the injection lifecycle the error
// occurred) and Kind (error category). Every failure that crosses the native
// engine boundary is translated into exactly one Kind before it reaches the
// caller; native error codes are never part of the surface.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseInject, errors.KindPermissionDenied).
//		Pid(1234).
//		Detail("ptrace attach refused").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidInput(errors.PhaseValidate, "pid must be > 0")
//	err := errors.ProcessNotFound(errors.PhaseProbe, 1234)
//
// Callers can branch on the category with errors.Is and the sentinel targets,
// or with the predicates:
//
//	if errors.Is(err, hookerrors.ErrProcessNotFound) { ... }
//	if hookerrors.IsPermissionDenied(err) { ... }
package errors
