package devkit

import (
	"archive/tar"
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
	"go.uber.org/zap"

	"github.com/wippyai/hookinject/errors"
)

// DefaultBaseURL hosts frida release assets.
const DefaultBaseURL = "https://github.com/frida/frida/releases/download"

// Fetcher downloads devkits into a cache.
type Fetcher struct {
	// Client defaults to http.DefaultClient.
	Client *http.Client
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string
	// Versions to try in order. Defaults to ResolveVersions(DefaultVersion, SupportedVersions).
	Versions []string
	// AllowFallback lets Ensure try the next version after a failure.
	AllowFallback bool
	// Platform defaults to ResolvePlatform.
	Platform string
}

// NewFetcher returns a Fetcher configured from the environment.
func NewFetcher() (*Fetcher, error) {
	platform, err := ResolvePlatform()
	if err != nil {
		return nil, err
	}
	versions, fallback := ResolveVersions(DefaultVersion, SupportedVersions)
	return &Fetcher{
		Versions:      versions,
		AllowFallback: fallback,
		Platform:      platform,
	}, nil
}

// AssetName returns the release file name of a devkit archive.
func AssetName(version, platform, ext string) string {
	return fmt.Sprintf("frida-core-devkit-%s-%s.%s", version, platform, ext)
}

// archiveExts lists the archive formats published for platform.
// Windows devkits have shipped as both tar.xz and zip.
func archiveExts(platform string) []string {
	if strings.HasPrefix(platform, "windows-") {
		return []string{"tar.xz", "zip"}
	}
	return []string{"tar.xz"}
}

// Ensure returns a devkit under cacheRoot, downloading it when missing.
// HOOKINJECT_DEVKIT_DIR short-circuits the cache.
func (f *Fetcher) Ensure(ctx context.Context, cacheRoot string) (Layout, error) {
	if dir := os.Getenv(EnvDir); dir != "" {
		if l, ok := Find(dir); ok {
			return l, nil
		}
		return Layout{}, errors.InvalidInput(errors.PhaseDevkit, "invalid "+EnvDir+": "+dir)
	}

	platform := f.Platform
	if platform == "" {
		p, err := ResolvePlatform()
		if err != nil {
			return Layout{}, err
		}
		platform = p
	}
	versions := f.Versions
	if len(versions) == 0 {
		versions = []string{DefaultVersion}
	}

	var lastErr error
	for i, version := range versions {
		dir := filepath.Join(cacheRoot, version, platform)
		l, err := f.ensureVersion(ctx, version, platform, dir)
		if err == nil {
			Logger().Info("using frida-core devkit",
				zap.String("version", version),
				zap.String("platform", platform),
				zap.String("dir", dir))
			return l, nil
		}
		lastErr = err
		Logger().Warn("devkit unavailable",
			zap.String("version", version),
			zap.Error(err))

		if !f.AllowFallback || i+1 == len(versions) {
			break
		}
	}
	return Layout{}, lastErr
}

func (f *Fetcher) ensureVersion(ctx context.Context, version, platform, dir string) (Layout, error) {
	if l, ok := Find(dir); ok {
		return l, nil
	}
	if err := f.Download(ctx, version, platform, dir); err != nil {
		return Layout{}, err
	}
	if l, ok := Find(dir); ok {
		return l, nil
	}
	return Layout{}, errors.Runtime(errors.PhaseDevkit,
		"devkit download succeeded but expected files are missing in "+dir)
}

// Download fetches and extracts the devkit archive for version into dir.
func (f *Fetcher) Download(ctx context.Context, version, platform, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Io(errors.PhaseDevkit, err)
	}

	var lastErr error
	for _, ext := range archiveExts(platform) {
		name := AssetName(version, platform, ext)
		archive := filepath.Join(dir, name)
		url := f.baseURL() + "/" + version + "/" + name

		if err := f.fetch(ctx, url, archive); err != nil {
			lastErr = err
			continue
		}
		err := extract(archive, ext, dir)
		os.Remove(archive)
		if err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr == nil {
		lastErr = errors.Runtime(errors.PhaseDevkit, "no devkit archive candidates")
	}
	return lastErr
}

func (f *Fetcher) baseURL() string {
	if f.BaseURL != "" {
		return strings.TrimRight(f.BaseURL, "/")
	}
	return DefaultBaseURL
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

func (f *Fetcher) fetch(ctx context.Context, url, dest string) error {
	Logger().Debug("downloading devkit", zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(errors.PhaseDevkit, errors.KindInvalidInput, err, "build request")
	}
	resp, err := f.client().Do(req)
	if err != nil {
		return errors.Io(errors.PhaseDevkit, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Runtime(errors.PhaseDevkit, fmt.Sprintf("GET %s: %s", url, resp.Status))
	}

	out, err := os.Create(dest)
	if err != nil {
		return errors.Io(errors.PhaseDevkit, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return errors.Io(errors.PhaseDevkit, err)
	}
	if err := out.Close(); err != nil {
		return errors.Io(errors.PhaseDevkit, err)
	}
	return nil
}

func extract(archive, ext, dir string) error {
	switch ext {
	case "zip":
		return extractZip(archive, dir)
	default:
		return extractTarXz(archive, dir)
	}
}

func extractTarXz(archive, dir string) error {
	f, err := os.Open(archive)
	if err != nil {
		return errors.Io(errors.PhaseDevkit, err)
	}
	defer f.Close()

	xr, err := xz.NewReader(f)
	if err != nil {
		return errors.Wrap(errors.PhaseDevkit, errors.KindRuntime, err, "open xz stream")
	}

	tr := tar.NewReader(xr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(errors.PhaseDevkit, errors.KindRuntime, err, "read tar entry")
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if err := writeEntry(dir, hdr.Name, hdr.FileInfo().Mode().Perm(), tr); err != nil {
			return err
		}
	}
}

func extractZip(archive, dir string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return errors.Wrap(errors.PhaseDevkit, errors.KindRuntime, err, "open zip")
	}
	defer zr.Close()

	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return errors.Wrap(errors.PhaseDevkit, errors.KindRuntime, err, "read zip entry")
		}
		err = writeEntry(dir, zf.Name, zf.Mode().Perm(), rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// writeEntry writes one archive member below dir, refusing paths that escape it.
func writeEntry(dir, name string, perm os.FileMode, r io.Reader) error {
	target := filepath.Join(dir, filepath.FromSlash(name))
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return errors.InvalidInput(errors.PhaseDevkit, "archive entry escapes destination: "+name)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.Io(errors.PhaseDevkit, err)
	}
	if perm == 0 {
		perm = 0o644
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return errors.Io(errors.PhaseDevkit, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return errors.Io(errors.PhaseDevkit, err)
	}
	if err := out.Close(); err != nil {
		return errors.Io(errors.PhaseDevkit, err)
	}
	return nil
}
