// Package engine provides the native injection engine binding.
//
// This package wraps a small C shim over frida-core and exposes it through
// the Engine interface, the narrow call contract the runtime coordinates on
// top of. Native error codes never leave this package: every failure is
// translated into an *errors.Error with one Kind.
//
// # Architecture
//
// The engine package provides two main types:
//
//	Engine       - The call contract: inject, launch, spawn, resume, demonitor
//	FridaEngine  - cgo implementation owning one native context
//
// # Native Contract
//
// Every shim call follows the same convention:
//
//	Return   Meaning
//	─────────────────────────────────────────────
//	> 0      success, out parameters are valid
//	<= 0     failure, error kind and message set
//
// The message string is owned by the shim. It is copied into Go memory and
// released with hook_frida_string_free exactly once.
//
// Error kinds map onto the errors taxonomy:
//
//	Code  Shim kind           Kind
//	────────────────────────────────────────────────────
//	1     invalid_argument    InvalidInput
//	2     not_supported       NotSupported
//	3     permission_denied   PermissionDenied
//	4     process_not_found   ProcessNotFound (Runtime when no pid is known)
//	5     runtime             Runtime
//
// # Build Tags
//
// Building with -tags frida compiles the real shim against a frida-core
// devkit; point CGO_CFLAGS and CGO_LDFLAGS at it (hookinject-devkit prints
// them). Without the tag a stub shim is linked and Open fails with
// RuntimeUnavailable. Builds without cgo get the same failure from pure Go.
//
// # Concurrency
//
// The frida-core C API is safe for concurrent use, so FridaEngine adds no
// locking around calls. Close must not race with in-flight calls.
package engine
