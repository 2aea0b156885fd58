package hookinject

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wippyai/hookinject/errors"
)

func TestLibraryFromBytes(t *testing.T) {
	if _, err := LibraryFromBytes(nil); !errors.IsInvalidInput(err) {
		t.Fatalf("empty blob: expected invalid input, got %v", err)
	}

	src := []byte{1, 2, 3}
	lib, err := LibraryFromBytes(src)
	if err != nil {
		t.Fatalf("LibraryFromBytes: %v", err)
	}
	if lib.Kind() != SourceBlob {
		t.Errorf("Kind() = %v, want blob", lib.Kind())
	}
	if lib.Entrypoint() != DefaultEntrypoint {
		t.Errorf("Entrypoint() = %q", lib.Entrypoint())
	}
	if lib.Data() != "" {
		t.Errorf("Data() = %q, want empty", lib.Data())
	}

	src[0] = 9
	if lib.Blob()[0] != 1 {
		t.Error("blob must be copied at construction")
	}
}

func TestLibraryFromPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "libagent.so")
	if err := os.WriteFile(file, []byte("elf"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("regular file", func(t *testing.T) {
		lib, err := LibraryFromPath(file)
		if err != nil {
			t.Fatalf("LibraryFromPath: %v", err)
		}
		if lib.Kind() != SourcePath || lib.Path() != file {
			t.Errorf("unexpected library %+v", lib)
		}
	})

	t.Run("directory", func(t *testing.T) {
		_, err := LibraryFromPath(dir)
		if !errors.IsInvalidInput(err) {
			t.Fatalf("expected invalid input, got %v", err)
		}
	})

	t.Run("embedded NUL", func(t *testing.T) {
		_, err := LibraryFromPath(file + "\x00.so")
		if !errors.IsInvalidInput(err) {
			t.Fatalf("expected invalid input, got %v", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LibraryFromPath(filepath.Join(dir, "nope.so"))
		if !errors.IsIo(err) {
			t.Fatalf("expected io error, got %v", err)
		}
	})
}

func TestLibrary_WithOverrides(t *testing.T) {
	base, err := LibraryFromBytes([]byte{0x7f})
	if err != nil {
		t.Fatal(err)
	}

	lib := base.WithEntrypoint("agent_main").WithData("hello")
	if lib.Entrypoint() != "agent_main" || lib.Data() != "hello" {
		t.Errorf("overrides not applied: %q %q", lib.Entrypoint(), lib.Data())
	}
	if base.Entrypoint() != DefaultEntrypoint || base.Data() != "" {
		t.Error("overrides must not mutate the original")
	}

	twice := lib.WithEntrypoint("agent_main").WithEntrypoint("agent_main")
	if twice.Entrypoint() != lib.Entrypoint() {
		t.Error("repeated override should be idempotent")
	}
	last := lib.WithData("a").WithData("b")
	if last.Data() != "b" {
		t.Errorf("last override wins, got %q", last.Data())
	}
}

func TestLibrary_Validate(t *testing.T) {
	blob, _ := LibraryFromBytes([]byte{1})

	tests := []struct {
		name    string
		lib     Library
		wantErr bool
	}{
		{"defaults", blob, false},
		{"empty entrypoint", blob.WithEntrypoint(""), true},
		{"nul entrypoint", blob.WithEntrypoint("a\x00b"), true},
		{"nul data", blob.WithData("x\x00"), true},
		{"zero value", Library{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.lib.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.IsInvalidInput(err) {
				t.Errorf("expected invalid input, got %v", err)
			}
		})
	}
}
