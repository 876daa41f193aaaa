package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/SscSPs/referral_ledger/internal/platform/catalog"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(levelsCmd)
	levelsCmd.AddCommand(levelsSeedCmd)
	levelsCmd.AddCommand(levelsListCmd)

	levelsSeedCmd.Flags().StringP("file", "f", "", "Catalog file (defaults to LEVEL_CATALOG_FILE)")
}

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Manage the level catalog",
}

var levelsSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert or replace catalog levels from a TOML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := current.cfg
		if err := requirePersistent(cfg); err != nil {
			return err
		}
		path, _ := cmd.Flags().GetString("file")
		if path == "" {
			path = cfg.LevelCatalogFile
		}
		levels, err := catalog.LoadFile(path)
		if err != nil {
			return err
		}

		b, err := openBackend(cmd.Context(), cfg, current.logger)
		if err != nil {
			return err
		}
		defer b.Close()

		if err := b.services.Levels.SeedLevels(cmd.Context(), levels); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d levels from %s\n", len(levels), path)
		return nil
	},
}

var levelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the level catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend(cmd.Context(), current.cfg, current.logger)
		if err != nil {
			return err
		}
		defer b.Close()

		levels, err := b.services.Levels.ListLevels(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "LEVEL\tNAME\tPRICE\tCOMMISSION %")
		for _, l := range levels {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", l.Level, l.Name, l.Price.StringFixed(2), l.CommissionPercent.String())
		}
		return w.Flush()
	},
}
