package devkit

import (
	"fmt"
	"os"
	"runtime"

	"github.com/wippyai/hookinject/errors"
)

// DetectPlatform maps a GOOS/GOARCH pair to a devkit platform string.
func DetectPlatform(goos, goarch string) (string, error) {
	var name string
	switch goos {
	case "darwin":
		name = "macos"
	case "linux", "windows":
		name = goos
	default:
		return "", unsupported(goos, goarch)
	}

	var arch string
	switch goarch {
	case "amd64":
		arch = "x86_64"
	case "arm64":
		arch = "arm64"
	default:
		return "", unsupported(goos, goarch)
	}
	return name + "-" + arch, nil
}

// ResolvePlatform honors HOOKINJECT_DEVKIT_PLATFORM and otherwise detects
// the running platform.
func ResolvePlatform() (string, error) {
	if p := os.Getenv(EnvPlatform); p != "" {
		return p, nil
	}
	return DetectPlatform(runtime.GOOS, runtime.GOARCH)
}

func unsupported(goos, goarch string) error {
	return errors.NotSupported(errors.PhaseDevkit,
		fmt.Sprintf("unsupported platform for devkit download: %s-%s", goos, goarch))
}
