// Package cli provides the setstore command line interface.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	storePath string
	backend   string
	configDir string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "setstore",
	Short: "Typed persistent settings store",
	Long: `setstore keeps typed settings in a JSON document.

Each setting has a key, a declared type, a default and a current value.
Mutating commands write the whole document back to its location.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&storePath, "file", "f", "",
		"settings document location (default ~/.setstore/settings.json)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "",
		"storage backend: file or sqlite (default file)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "",
		"directory holding config.toml (default ~/.setstore)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command with output on stdout.
func Execute() error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.Execute()
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}
