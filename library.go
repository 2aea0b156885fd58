package hookinject

import (
	"context"
	"os"
	"strings"

	"github.com/wippyai/hookinject/agent"
	"github.com/wippyai/hookinject/errors"
)

// DefaultEntrypoint is the symbol the engine calls after loading a library.
const DefaultEntrypoint = "frida_agent_main"

// SourceKind distinguishes where a library's code comes from.
type SourceKind uint8

const (
	// SourcePath is a shared object on disk. Existence is checked at construction only.
	SourcePath SourceKind = iota
	// SourceBlob is an in-memory image handed to the engine as bytes.
	SourceBlob
)

func (k SourceKind) String() string {
	switch k {
	case SourcePath:
		return "path"
	case SourceBlob:
		return "blob"
	default:
		return "unknown"
	}
}

// Library references injectable code plus the entrypoint the engine invokes
// and an opaque data string passed to it.
//
// Library is an immutable value; WithEntrypoint and WithData return copies.
type Library struct {
	kind       SourceKind
	path       string
	blob       []byte
	entrypoint string
	data       string
}

// LibraryFromPath references a shared object on disk.
// The path must name a regular file at the time of the call.
func LibraryFromPath(path string) (Library, error) {
	if strings.ContainsRune(path, 0) {
		return Library{}, errors.InvalidInput(errors.PhaseValidate, "library path contains NUL")
	}
	info, err := os.Stat(path)
	if err != nil {
		return Library{}, errors.Io(errors.PhaseValidate, err)
	}
	if !info.Mode().IsRegular() {
		return Library{}, errors.InvalidInput(errors.PhaseValidate, "library path must be a file")
	}
	return Library{kind: SourcePath, path: path, entrypoint: DefaultEntrypoint}, nil
}

// LibraryFromBytes references an in-memory library image. The bytes are copied.
func LibraryFromBytes(b []byte) (Library, error) {
	if len(b) == 0 {
		return Library{}, errors.InvalidInput(errors.PhaseValidate, "library blob is empty")
	}
	blob := make([]byte, len(b))
	copy(blob, b)
	return Library{kind: SourceBlob, blob: blob, entrypoint: DefaultEntrypoint}, nil
}

// LibraryFromModule resolves the c-shared artifact of a Go agent module,
// building it once if it is missing. Entrypoint and data declared in the
// module's hookinject.yaml replace the defaults.
func LibraryFromModule(ctx context.Context, dir string) (Library, error) {
	art, err := agent.Resolve(ctx, dir)
	if err != nil {
		return Library{}, err
	}

	lib := Library{kind: SourcePath, path: art.Path, entrypoint: DefaultEntrypoint}
	if art.Entrypoint != "" {
		lib.entrypoint = art.Entrypoint
	}
	lib.data = art.Data
	if err := lib.Validate(); err != nil {
		return Library{}, err
	}
	return lib, nil
}

// Kind reports whether the library is a path or a blob.
func (l Library) Kind() SourceKind { return l.kind }

// Path returns the file path for SourcePath libraries and "" otherwise.
func (l Library) Path() string { return l.path }

// Blob returns the library image for SourceBlob libraries and nil otherwise.
// The returned slice must not be modified.
func (l Library) Blob() []byte { return l.blob }

// Entrypoint returns the symbol name invoked after load.
func (l Library) Entrypoint() string { return l.entrypoint }

// Data returns the string passed to the entrypoint.
func (l Library) Data() string { return l.data }

// WithEntrypoint returns a copy of l with the entrypoint replaced.
func (l Library) WithEntrypoint(entrypoint string) Library {
	l.entrypoint = entrypoint
	return l
}

// WithData returns a copy of l with the data string replaced.
func (l Library) WithData(data string) Library {
	l.data = data
	return l
}

// Validate checks that the library can cross the native boundary:
// the entrypoint is non-empty and neither entrypoint nor data holds a NUL byte.
func (l Library) Validate() error {
	switch l.kind {
	case SourcePath:
		if l.path == "" {
			return errors.InvalidInput(errors.PhaseValidate, "library path is empty")
		}
		if strings.IndexByte(l.path, 0) >= 0 {
			return errors.InvalidInput(errors.PhaseValidate, "library path contains NUL")
		}
	case SourceBlob:
		if len(l.blob) == 0 {
			return errors.InvalidInput(errors.PhaseValidate, "library blob is empty")
		}
	default:
		return errors.InvalidInput(errors.PhaseValidate, "library has no source")
	}

	if l.entrypoint == "" {
		return errors.InvalidInput(errors.PhaseValidate, "entrypoint is empty")
	}
	if strings.IndexByte(l.entrypoint, 0) >= 0 {
		return errors.InvalidInput(errors.PhaseValidate, "entrypoint contains NUL")
	}
	if strings.IndexByte(l.data, 0) >= 0 {
		return errors.InvalidInput(errors.PhaseValidate, "data contains NUL")
	}
	return nil
}
