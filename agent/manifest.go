package agent

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/hookinject/errors"
)

const (
	// ManifestFile holds the hookinject settings of an agent module.
	ManifestFile = "hookinject.yaml"

	// BuildModeCShared is the only build mode that yields an injectable artifact.
	BuildModeCShared = "c-shared"

	// TargetDirEnv overrides where built artifacts are placed and searched first.
	TargetDirEnv = "HOOKINJECT_TARGET_DIR"

	defaultTargetDir = "build"
	maxParentSearch  = 4
)

// Settings is the decoded hookinject.yaml.
type Settings struct {
	BuildMode  string `yaml:"buildmode"`
	Name       string `yaml:"name"`
	Entrypoint string `yaml:"entrypoint"`
	Data       string `yaml:"data"`
}

// Manifest describes an agent module and where its artifact is expected.
type Manifest struct {
	ModulePath string // module directive from go.mod
	Name       string // artifact base name
	Entrypoint string
	Data       string
	Dir        string
	TargetDir  string
	Filename   string // platform file name, e.g. libmyagent.so
}

// ReadManifest reads the agent module at p, which is either the module
// directory or its go.mod file.
func ReadManifest(p string) (*Manifest, error) {
	gomod := p
	if info, err := os.Stat(p); err == nil && info.IsDir() {
		gomod = filepath.Join(p, "go.mod")
	}

	content, err := os.ReadFile(gomod)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.InvalidInput(errors.PhaseResolve, "missing go.mod")
		}
		return nil, errors.Io(errors.PhaseResolve, err)
	}

	f, err := modfile.ParseLax(gomod, content, nil)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseResolve, errors.KindInvalidInput, err, "parse go.mod")
	}
	if f.Module == nil || f.Module.Mod.Path == "" {
		return nil, errors.InvalidInput(errors.PhaseResolve, "go.mod has no module directive")
	}

	dir := filepath.Dir(gomod)
	settings, err := readSettings(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}
	if settings.BuildMode != BuildModeCShared {
		return nil, errors.InvalidInput(errors.PhaseResolve,
			"module is not configured as c-shared; add `buildmode: c-shared` to "+ManifestFile)
	}

	name := settings.Name
	if name == "" {
		name = path.Base(f.Module.Mod.Path)
	}
	name = strings.ReplaceAll(name, "-", "_")

	m := &Manifest{
		ModulePath: f.Module.Mod.Path,
		Name:       name,
		Entrypoint: settings.Entrypoint,
		Data:       settings.Data,
		Dir:        dir,
		TargetDir:  targetDir(dir),
		Filename:   LibraryFilename(name),
	}
	return m, nil
}

func readSettings(file string) (Settings, error) {
	var s Settings
	content, err := os.ReadFile(file)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return s, errors.Io(errors.PhaseResolve, err)
	}
	if err := yaml.Unmarshal(content, &s); err != nil {
		return s, errors.Wrap(errors.PhaseResolve, errors.KindInvalidInput, err,
			fmt.Sprintf("parse %s", ManifestFile))
	}
	return s, nil
}

func targetDir(moduleDir string) string {
	if dir := os.Getenv(TargetDirEnv); dir != "" {
		return dir
	}
	return filepath.Join(moduleDir, defaultTargetDir)
}

// LibraryFilename returns the platform file name for an artifact called name.
func LibraryFilename(name string) string {
	return libraryFilename(runtime.GOOS, name)
}

func libraryFilename(goos, name string) string {
	switch goos {
	case "windows":
		return name + ".dll"
	case "darwin", "ios":
		return "lib" + name + ".dylib"
	default:
		return "lib" + name + ".so"
	}
}

// candidates lists the directories searched for the artifact, in order.
func (m *Manifest) candidates() []string {
	dirs := []string{m.TargetDir}
	cur := m.Dir
	for i := 0; i < maxParentSearch; i++ {
		dirs = append(dirs, filepath.Join(cur, defaultTargetDir))
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}
	return dirs
}

// Find returns the path of an existing artifact, if any.
func (m *Manifest) Find() (string, bool) {
	for _, dir := range m.candidates() {
		p := filepath.Join(dir, m.Filename)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}
