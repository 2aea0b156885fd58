package devkit

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"os/exec"
	"slices"
	"strings"
)

// DefaultVersion is the devkit release the shim is developed against.
const DefaultVersion = "17.6.2"

// SupportedVersions lists releases known to work with the shim. Listed
// explicitly so the build does not drift with local installations.
var SupportedVersions = []string{DefaultVersion}

// Environment overrides.
const (
	EnvVersion  = "HOOKINJECT_DEVKIT_VERSION"
	EnvPlatform = "HOOKINJECT_DEVKIT_PLATFORM"
	EnvDir      = "HOOKINJECT_DEVKIT_DIR"
)

// ResolveVersions returns the versions to try in order and whether falling
// back to the next one is allowed. HOOKINJECT_DEVKIT_VERSION pins a single
// version with no fallback.
func ResolveVersions(def string, supported []string) ([]string, bool) {
	if v := os.Getenv(EnvVersion); v != "" {
		return []string{v}, false
	}

	var versions []string
	if def != "" {
		versions = append(versions, def)
	}
	for _, v := range supported {
		if !slices.Contains(versions, v) {
			versions = append(versions, v)
		}
	}
	return versions, true
}

// WithInstalled appends the version of a locally installed frida CLI when
// it is supported and not listed yet.
func WithInstalled(versions, supported []string, installed string) []string {
	if installed == "" || !slices.Contains(supported, installed) || slices.Contains(versions, installed) {
		return versions
	}
	return append(versions, installed)
}

// InstalledVersion runs `frida --version` and returns the first output line,
// or "" when the CLI is missing or fails.
func InstalledVersion(ctx context.Context) string {
	out, err := exec.CommandContext(ctx, "frida", "--version").Output()
	if err != nil {
		return ""
	}
	return parseVersion(out)
}

func parseVersion(out []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(out))
	if !sc.Scan() {
		return ""
	}
	return strings.TrimSpace(sc.Text())
}
