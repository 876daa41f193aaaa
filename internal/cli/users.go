package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersUpsertCmd)

	usersUpsertCmd.Flags().String("referrer", "", "Referring user ID; empty clears the edge")
	usersUpsertCmd.Flags().Bool("can-transact", true, "Whether the user may move money")
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users and their referral edges",
}

var usersUpsertCmd = &cobra.Command{
	Use:   "upsert USER_ID",
	Short: "Register a user or replace its referrer and transact flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requirePersistent(current.cfg); err != nil {
			return err
		}
		var referrerID *string
		if referrer, _ := cmd.Flags().GetString("referrer"); referrer != "" {
			referrerID = &referrer
		}
		canTransact, _ := cmd.Flags().GetBool("can-transact")

		b, err := openBackend(cmd.Context(), current.cfg, current.logger)
		if err != nil {
			return err
		}
		defer b.Close()

		user, err := b.services.Users.UpsertUser(cmd.Context(), args[0], referrerID, canTransact)
		if err != nil {
			return err
		}
		referrer := "-"
		if user.ReferrerID != nil {
			referrer = *user.ReferrerID
		}
		fmt.Fprintf(cmd.OutOrStdout(), "user %s referrer=%s can_transact=%t\n", user.UserID, referrer, user.CanTransact)
		return nil
	},
}
