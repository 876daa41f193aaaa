// Package cli holds the rl_backend commands: the HTTP server and the operator tools that
// share its configuration and storage.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/SscSPs/referral_ledger/internal/platform/config"
	"github.com/spf13/cobra"
)

// app is the state every command shares once the persistent pre-run has loaded it.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

var current app

var rootCmd = &cobra.Command{
	Use:           "rl_backend",
	Short:         "Referral commission ledger",
	Long:          `Runs the referral ledger HTTP API and the operator commands that manage its schema, level catalog, users and pending requests.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		levelName, _ := cmd.Flags().GetString("log-level")
		level, err := parseLogLevel(levelName)
		if err != nil {
			return err
		}

		// The server logs to stdout; operator commands keep stdout for their output.
		var out io.Writer = os.Stderr
		if cmd.Name() == serveCmd.Name() {
			out = os.Stdout
		}
		current.logger = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(current.logger)

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		current.cfg = cfg
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func parseLogLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", name)
	}
}
