package cli

import (
	"os"
	"strconv"
	"strings"

	"github.com/repofleet/repofleet/internal/platform"
	"github.com/spf13/cobra"
)

type RootOptions struct {
	ConfigPath string
	JSONOutput bool
	LogLevel   string
	LogFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &RootOptions{
		ConfigPath: envDefault("REPOFLEET_CONFIG", "repofleet.config.toml"),
		LogLevel:   envDefault("REPOFLEET_LOG_LEVEL", "warn"),
		LogFormat:  envDefault("REPOFLEET_LOG_FORMAT", "text"),
	}
	cmd := &cobra.Command{
		Use:           "repofleet",
		Short:         "Declarative management of git repositories and worktrees",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_, err := platform.ConfigureLogger(opts.LogLevel, opts.LogFormat, cmd.ErrOrStderr())
			return err
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", opts.ConfigPath, "Path to the fleet configuration file")
	cmd.PersistentFlags().BoolVar(&opts.JSONOutput, "json", false, "Emit JSON output")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", opts.LogFormat, "Log format (text, json)")

	cmd.AddCommand(
		newReposCmd(opts),
		newWorktreeCmd(opts),
	)

	return cmd
}

func envDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envBoolDefault(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
