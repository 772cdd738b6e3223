package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kybkit/kybclient/apiclient"
	"github.com/kybkit/kybclient/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the resolved client configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			baseURL, err := apiclient.ResolveBaseURL(cfg.API.URL, cfg.App.Origin)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "environment:   %s\n", cfg.App.Env)
			fmt.Fprintf(out, "base url:      %s\n", baseURL)
			fmt.Fprintf(out, "timeout:       %s\n", cfg.API.Timeout)
			fmt.Fprintf(out, "retry limit:   %d\n", cfg.API.Retry.Limit)
			fmt.Fprintf(out, "retry delay:   %s\n", cfg.API.Retry.Delay)
			fmt.Fprintf(out, "retry methods: %s\n", strings.Join(cfg.API.Retry.Methods, ","))
			fmt.Fprintf(out, "retry codes:   %s\n", joinInts(cfg.API.Retry.StatusCodes))
			fmt.Fprintf(out, "sentry:        %t\n", config.IsSentryConfigured(&cfg.Sentry))
			fmt.Fprintf(out, "tracing:       %t\n", cfg.API.Tracing)
			return nil
		},
	}
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ",")
}
