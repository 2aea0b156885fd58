// Package devkit locates and fetches the frida-core devkit the engine
// links against.
//
// A devkit is a directory holding frida-core.h and the frida-core library
// (libfrida-core.a, .so, .dylib or frida-core.lib/.dll). Fetcher downloads
// release archives into a cache laid out as <cache>/<version>/<platform>
// and Layout.CgoFlags prints what cgo needs to build with -tags frida.
//
// Environment overrides:
//
//	HOOKINJECT_DEVKIT_VERSION   use exactly this version, no fallback
//	HOOKINJECT_DEVKIT_PLATFORM  use this platform string instead of detecting
//	HOOKINJECT_DEVKIT_DIR       use a prebuilt devkit, skip the cache
package devkit
