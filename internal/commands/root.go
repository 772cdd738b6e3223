// Package commands implements the kybctl command line.
package commands

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kybkit/kybclient/config"
	"github.com/kybkit/kybclient/logger"
)

// GlobalOptions holds flags shared by every command
type GlobalOptions struct {
	ConfigPath string
}

// NewRootCommand creates the kybctl root command with all subcommands attached
func NewRootCommand(version string) *cobra.Command {
	opts := &GlobalOptions{}

	root := &cobra.Command{
		Use:   "kybctl",
		Short: "Call the KYB API with the configured client",
		Long: `kybctl sends requests through the same API client the KYB application uses:
base URL resolution, bearer token injection, retries and error reporting
are all driven by config.yaml and the environment.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", config.DefaultFile, "Configuration file")

	root.AddCommand(
		NewRequestCommand(opts),
		NewConfigCommand(opts),
		NewVersionCommand(version),
	)
	return root
}

func loadConfig(opts *GlobalOptions) (*config.Config, error) {
	return config.LoadFile(opts.ConfigPath)
}

// newLogger writes to w so command output on stdout stays parseable
func newLogger(w io.Writer, cfg *config.LogConfig) logger.Logger {
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return logger.NewWithWriter(w, cfg.Level, logger.DefaultFilterConfig())
}
