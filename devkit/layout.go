package devkit

import (
	"os"
	"path/filepath"
	"strings"
)

// Layout describes a usable devkit directory.
type Layout struct {
	Dir       string
	HeaderDir string
	LibDir    string
	// LibName is the link name, without lib prefix or extension.
	LibName string
	Static  bool
}

// Library file names in detection order. The first hit wins.
var libraryCandidates = []struct {
	file   string
	static bool
}{
	{"libfrida-core.so", false},
	{"libfrida-core.dylib", false},
	{"frida-core.lib", false},
	{"frida-core.dll", false},
	{"libfrida-core.a", true},
}

// Find reports whether dir holds frida-core.h and a frida-core library.
func Find(dir string) (Layout, bool) {
	if !isFile(filepath.Join(dir, "frida-core.h")) {
		return Layout{}, false
	}
	for _, c := range libraryCandidates {
		if isFile(filepath.Join(dir, c.file)) {
			return Layout{
				Dir:       dir,
				HeaderDir: dir,
				LibDir:    dir,
				LibName:   "frida-core",
				Static:    c.static,
			}, true
		}
	}
	return Layout{}, false
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// Flags holds cgo flags for a devkit.
type Flags struct {
	CFLAGS  []string
	LDFLAGS []string
}

// CgoFlags returns the flags for building the engine against l on goos.
func (l Layout) CgoFlags(goos string) Flags {
	f := Flags{
		CFLAGS:  []string{"-I" + l.HeaderDir},
		LDFLAGS: []string{"-L" + l.LibDir, "-l" + l.LibName},
	}
	f.LDFLAGS = append(f.LDFLAGS, systemLibs(goos, l.Static)...)
	return f
}

// Env renders the flags as CGO_CFLAGS and CGO_LDFLAGS assignments.
func (f Flags) Env() []string {
	return []string{
		"CGO_CFLAGS=" + strings.Join(f.CFLAGS, " "),
		"CGO_LDFLAGS=" + strings.Join(f.LDFLAGS, " "),
	}
}

// systemLibs lists what frida-core needs from the platform.
func systemLibs(goos string, static bool) []string {
	var libs []string
	switch goos {
	case "linux":
		libs = append(libs, "-lpthread", "-lresolv")
		if static {
			libs = append(libs, "-ldl", "-lm")
		}
	case "darwin", "ios":
		libs = append(libs, "-lbsm", "-lresolv", "-lpthread")
		if goos == "darwin" && static {
			for _, fw := range []string{"CoreFoundation", "Foundation", "AppKit", "IOKit", "Security"} {
				libs = append(libs, "-framework", fw)
			}
			libs = append(libs, "-lobjc")
		}
	case "windows":
		for _, lib := range []string{
			"dnsapi", "iphlpapi", "psapi", "winmm", "ws2_32", "advapi32", "crypt32", "gdi32",
			"kernel32", "ole32", "secur32", "shell32", "shlwapi", "user32", "setupapi",
		} {
			libs = append(libs, "-l"+lib)
		}
	}
	return libs
}
