package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in the injection lifecycle the error occurred
type Phase string

const (
	PhaseValidate Phase = "validate" // caller-supplied data checks
	PhaseProbe    Phase = "probe"    // process existence probe
	PhaseInit     Phase = "init"     // engine context creation
	PhaseSpawn    Phase = "spawn"    // suspended launch
	PhaseInject   Phase = "inject"   // library injection
	PhaseResume   Phase = "resume"   // resuming a suspended process
	PhaseUninject Phase = "uninject" // stop monitoring an injection
	PhaseResolve  Phase = "resolve"  // agent module artifact resolution
	PhaseDevkit   Phase = "devkit"   // engine devkit acquisition
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidInput       Kind = "invalid_input"
	KindNotSupported       Kind = "not_supported"
	KindPermissionDenied   Kind = "permission_denied"
	KindProcessNotFound    Kind = "process_not_found"
	KindRuntimeUnavailable Kind = "runtime_unavailable"
	KindRuntime            Kind = "runtime"
	KindIo                 Kind = "io"
)

// Sentinel targets for errors.Is. They match any *Error of the same Kind.
var (
	ErrInvalidInput       = &Error{Kind: KindInvalidInput}
	ErrNotSupported       = &Error{Kind: KindNotSupported}
	ErrPermissionDenied   = &Error{Kind: KindPermissionDenied}
	ErrProcessNotFound    = &Error{Kind: KindProcessNotFound}
	ErrRuntimeUnavailable = &Error{Kind: KindRuntimeUnavailable}
	ErrRuntime            = &Error{Kind: KindRuntime}
	ErrIo                 = &Error{Kind: KindIo}
)

// Error is the structured error type returned by every hookinject package
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Pid    int
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

	if e.Pid > 0 {
		fmt.Fprintf(&b, " (pid %d)", e.Pid)
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
// The Kind must match; the Phase must match only when target sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Phase == "" || t.Phase == e.Phase
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

// Pid sets the target process id
func (b *Builder) Pid(pid int) *Builder {
	b.err.Pid = pid
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

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotSupported creates an unsupported operation error
func NotSupported(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotSupported,
		Detail: detail,
	}
}

// PermissionDenied creates a permission error
func PermissionDenied(phase Phase, pid int, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindPermissionDenied,
		Pid:    pid,
		Detail: detail,
	}
}

// ProcessNotFound creates a process-not-found error for pid
func ProcessNotFound(phase Phase, pid int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindProcessNotFound,
		Pid:    pid,
		Detail: fmt.Sprintf("process not found: %d", pid),
	}
}

// RuntimeUnavailable creates an engine initialization error
func RuntimeUnavailable(detail string) *Error {
	return &Error{
		Phase:  PhaseInit,
		Kind:   KindRuntimeUnavailable,
		Detail: detail,
	}
}

// Runtime creates an uncategorized engine error
func Runtime(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindRuntime,
		Detail: detail,
	}
}

// Io wraps a local filesystem or OS error
func Io(phase Phase, cause error) *Error {
	detail := ""
	if cause != nil {
		detail = cause.Error()
	}
	return &Error{
		Phase:  phase,
		Kind:   KindIo,
		Detail: detail,
		Cause:  cause,
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

// Predicates

// KindOf returns the Kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsInvalidInput reports whether err was caused by malformed caller data.
func IsInvalidInput(err error) bool { return KindOf(err) == KindInvalidInput }

// IsNotSupported reports whether the operation is unsupported on this platform or engine build.
func IsNotSupported(err error) bool { return KindOf(err) == KindNotSupported }

// IsPermissionDenied reports whether err was caused by insufficient privileges.
func IsPermissionDenied(err error) bool { return KindOf(err) == KindPermissionDenied }

// IsProcessNotFound reports whether the target process does not exist.
func IsProcessNotFound(err error) bool { return KindOf(err) == KindProcessNotFound }

// IsRuntimeUnavailable reports whether the injection engine failed to initialize.
func IsRuntimeUnavailable(err error) bool { return KindOf(err) == KindRuntimeUnavailable }

// IsRuntime reports whether the engine failed without a specific category.
func IsRuntime(err error) bool { return KindOf(err) == KindRuntime }

// IsIo reports whether err came from the local filesystem or OS.
func IsIo(err error) bool { return KindOf(err) == KindIo }
