package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	goruntime "runtime"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/hookinject/devkit"
)

var (
	version   string
	platform  string
	cacheDir  string
	devkitDir string
	export    bool
	installed bool
	verbose   bool

	rootCmd = &cobra.Command{
		Use:           "hookinject-devkit",
		Short:         "Fetch the frida-core devkit and print cgo flags for building hookinject",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				if l, err := zap.NewDevelopment(); err == nil {
					devkit.SetLogger(l)
				}
			}
		},
	}

	fetchCmd = &cobra.Command{
		Use:   "fetch",
		Short: "Download the devkit into the cache and print its directory",
		Args:  cobra.NoArgs,
		RunE:  runFetch,
	}

	flagsCmd = &cobra.Command{
		Use:   "flags",
		Short: "Print CGO_CFLAGS and CGO_LDFLAGS for a devkit",
		Long: `Print CGO_CFLAGS and CGO_LDFLAGS for a devkit.

Without --dir the devkit is fetched into the cache first. With --export the
output can be evaluated by a POSIX shell:

	eval "$(hookinject-devkit flags --export)"`,
		Args: cobra.NoArgs,
		RunE: runFlags,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	for _, c := range []*cobra.Command{fetchCmd, flagsCmd} {
		c.Flags().StringVar(&version, "version", "", "Devkit version (default "+devkit.DefaultVersion+", or $"+devkit.EnvVersion+")")
		c.Flags().StringVar(&platform, "platform", "", "Devkit platform, e.g. linux-x86_64 (default detected, or $"+devkit.EnvPlatform+")")
		c.Flags().StringVar(&cacheDir, "cache", "", "Cache directory (default user cache dir)")
		c.Flags().BoolVar(&installed, "installed", false, "Also try the version of a locally installed frida CLI")
	}
	flagsCmd.Flags().StringVar(&devkitDir, "dir", "", "Use an extracted devkit in this directory")
	flagsCmd.Flags().BoolVar(&export, "export", false, "Print shell export statements")

	rootCmd.AddCommand(fetchCmd, flagsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newFetcher(cmd *cobra.Command) (*devkit.Fetcher, error) {
	f, err := devkit.NewFetcher()
	if err != nil && platform == "" {
		return nil, err
	}
	if f == nil {
		versions, fallback := devkit.ResolveVersions(devkit.DefaultVersion, devkit.SupportedVersions)
		f = &devkit.Fetcher{Versions: versions, AllowFallback: fallback}
	}
	if platform != "" {
		f.Platform = platform
	}
	if version != "" {
		f.Versions = []string{version}
		f.AllowFallback = false
	}
	if installed {
		f.Versions = devkit.WithInstalled(f.Versions, devkit.SupportedVersions, devkit.InstalledVersion(cmd.Context()))
	}
	return f, nil
}

func cacheRoot() (string, error) {
	if cacheDir != "" {
		return cacheDir, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "hookinject", "frida-devkit"), nil
}

func ensure(cmd *cobra.Command) (devkit.Layout, error) {
	f, err := newFetcher(cmd)
	if err != nil {
		return devkit.Layout{}, err
	}
	root, err := cacheRoot()
	if err != nil {
		return devkit.Layout{}, err
	}
	return f.Ensure(cmd.Context(), root)
}

func runFetch(cmd *cobra.Command, args []string) error {
	l, err := ensure(cmd)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), l.Dir)
	return nil
}

func runFlags(cmd *cobra.Command, args []string) error {
	var (
		l   devkit.Layout
		err error
	)
	if devkitDir != "" {
		var ok bool
		if l, ok = devkit.Find(devkitDir); !ok {
			return fmt.Errorf("no frida-core devkit in %s", devkitDir)
		}
	} else if l, err = ensure(cmd); err != nil {
		return err
	}

	printFlags(cmd.OutOrStdout(), l.CgoFlags(goruntime.GOOS), export)
	return nil
}

func printFlags(w io.Writer, f devkit.Flags, export bool) {
	for _, kv := range f.Env() {
		if !export {
			fmt.Fprintln(w, kv)
			continue
		}
		k, v, _ := strings.Cut(kv, "=")
		fmt.Fprintf(w, "export %s=%s\n", k, shellQuote(v))
	}
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
