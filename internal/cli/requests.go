package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/SscSPs/referral_ledger/internal/core/domain"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(requestsCmd)
	requestsCmd.AddCommand(requestsPendingCmd)
	requestsCmd.AddCommand(requestsApproveCmd)
	requestsCmd.AddCommand(requestsRejectCmd)

	requestsPendingCmd.Flags().Int("limit", 50, "Maximum number of requests to print")
	for _, c := range []*cobra.Command{requestsApproveCmd, requestsRejectCmd} {
		c.Flags().String("reviewer", "", "Principal recorded as the reviewer")
		_ = c.MarkFlagRequired("reviewer")
	}
}

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "Review deposit and withdrawal requests",
}

var requestsPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List open requests, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requirePersistent(current.cfg); err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")

		b, err := openBackend(cmd.Context(), current.cfg, current.logger)
		if err != nil {
			return err
		}
		defer b.Close()

		pending, err := b.services.Requests.ListPending(cmd.Context(), limit)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPRINCIPAL\tKIND\tAMOUNT\tCREATED")
		for _, t := range pending {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.TransactionID, t.Principal, t.Kind, t.Amount.String(), t.CreatedAt.Format(time.RFC3339))
		}
		return w.Flush()
	},
}

var requestsApproveCmd = &cobra.Command{
	Use:   "approve TRANSACTION_ID",
	Short: "Complete a pending request; deposits are credited",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviewRequest(cmd, args[0], domain.StatusCompleted)
	},
}

var requestsRejectCmd = &cobra.Command{
	Use:   "reject TRANSACTION_ID",
	Short: "Reject a pending request; withdrawals are refunded",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviewRequest(cmd, args[0], domain.StatusRejected)
	},
}

func reviewRequest(cmd *cobra.Command, transactionID string, to domain.TransactionStatus) error {
	if err := requirePersistent(current.cfg); err != nil {
		return err
	}
	reviewer, _ := cmd.Flags().GetString("reviewer")

	b, err := openBackend(cmd.Context(), current.cfg, current.logger)
	if err != nil {
		return err
	}
	defer b.Close()

	review := b.services.Requests.Approve
	if to == domain.StatusRejected {
		review = b.services.Requests.Reject
	}
	txn, err := review(cmd.Context(), transactionID, reviewer)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s for %s: %s\n", txn.TransactionID, txn.Kind, txn.Amount.String(), txn.Principal, txn.Status)
	return nil
}
