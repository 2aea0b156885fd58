package agent

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/wippyai/hookinject/errors"
)

// Artifact is a resolved shared object and the settings declared for it.
type Artifact struct {
	Path       string
	Entrypoint string
	Data       string
}

// Builder produces the artifact of an agent module at output.
type Builder interface {
	Build(ctx context.Context, m *Manifest, output string) error
}

// GoBuilder builds with `go build -buildmode=c-shared`.
type GoBuilder struct {
	// GoCmd is the go binary. Defaults to "go" on PATH.
	GoCmd string
}

// Build runs the go toolchain in the module directory.
func (b GoBuilder) Build(ctx context.Context, m *Manifest, output string) error {
	gocmd := b.GoCmd
	if gocmd == "" {
		gocmd = "go"
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return errors.Io(errors.PhaseResolve, err)
	}

	cmd := exec.CommandContext(ctx, gocmd, "build", "-buildmode="+BuildModeCShared, "-o", output, ".")
	cmd.Dir = m.Dir
	cmd.Env = append(os.Environ(), "CGO_ENABLED=1")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	Logger().Debug("building agent module",
		zap.String("module", m.ModulePath),
		zap.String("output", output))

	if err := cmd.Run(); err != nil {
		return errors.New(errors.PhaseResolve, errors.KindRuntime).
			Cause(err).
			Detail("go build failed: %s", bytes.TrimSpace(out.Bytes())).
			Build()
	}
	return nil
}

// Resolver locates or builds agent artifacts.
type Resolver struct {
	Builder Builder
}

// DefaultResolver uses GoBuilder.
var DefaultResolver = &Resolver{Builder: GoBuilder{}}

// Resolve is DefaultResolver.Resolve.
func Resolve(ctx context.Context, path string) (Artifact, error) {
	return DefaultResolver.Resolve(ctx, path)
}

// Resolve returns the artifact of the agent module at path. If no artifact
// exists the module is built exactly once and searched again.
func (r *Resolver) Resolve(ctx context.Context, path string) (Artifact, error) {
	m, err := ReadManifest(path)
	if err != nil {
		return Artifact{}, err
	}

	if p, ok := m.Find(); ok {
		Logger().Debug("agent artifact found", zap.String("path", p))
		return m.artifact(p), nil
	}

	b := r.Builder
	if b == nil {
		b = GoBuilder{}
	}
	if err := b.Build(ctx, m, filepath.Join(m.TargetDir, m.Filename)); err != nil {
		return Artifact{}, err
	}

	p, ok := m.Find()
	if !ok {
		return Artifact{}, errors.InvalidInput(errors.PhaseResolve, "artifact not found after build")
	}
	return m.artifact(p), nil
}

func (m *Manifest) artifact(p string) Artifact {
	return Artifact{Path: p, Entrypoint: m.Entrypoint, Data: m.Data}
}
