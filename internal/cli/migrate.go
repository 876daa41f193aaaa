package cli

import (
	"fmt"

	"github.com/SscSPs/referral_ledger/pkg/database"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:       "migrate up|down",
	Short:     "Apply or roll back schema migrations",
	Long:      `Apply every pending migration from MIGRATIONS_PATH (up), or roll back the most recent one (down).`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(database.MigrateUp), string(database.MigrateDown)},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := current.cfg
		if err := requirePersistent(cfg); err != nil {
			return err
		}
		direction := database.MigrationDirection(args[0])
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, direction, current.logger); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "migrations %s: done\n", direction)
		return nil
	},
}
