package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTransferCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Reconcile transfers between accounts",
	}
	cmd.AddCommand(
		newTransferMirrorCommand(),
		newTransferCandidatesCommand(),
		newTransferLinkCommand(),
		newTransferUnlinkCommand(),
	)
	return cmd
}

func newTransferMirrorCommand() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "mirror <transaction-id>",
		Short: "Mark a transaction as a transfer to another account",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			txnID, err := parseID("transaction-id", args[0])
			if err != nil {
				return err
			}
			target, err := parseID("to", to)
			if err != nil {
				return err
			}
			res, err := e.svc.Transfers.Mirror(e.ctx, e.owner, txnID, target)
			if err != nil {
				return err
			}
			if res.Mirror == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Categorized as transfer (target account does not auto-mirror)")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created mirror %s (%s)\n", res.Mirror.ID, res.Mirror.Amount.StringFixed(2))
			return nil
		}),
	}

	cmd.Flags().StringVar(&to, "to", "", "target account id (required)")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newTransferCandidatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "candidates <transaction-id>",
		Short: "List possible other sides of a transfer",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			id, err := parseID("transaction-id", args[0])
			if err != nil {
				return err
			}
			txns, err := e.svc.Transfers.Candidates(e.ctx, e.owner, id)
			if err != nil {
				return err
			}
			printTransactions(cmd.OutOrStdout(), txns)
			return nil
		}),
	}
}

func newTransferLinkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "link <transaction-id> <counterpart-id>",
		Short: "Pair two transactions as one transfer",
		Args:  cobra.ExactArgs(2),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			ids, err := parseIDs("transaction-id", args)
			if err != nil {
				return err
			}
			if err := e.svc.Transfers.Link(e.ctx, e.owner, ids[0], ids[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Linked")
			return nil
		}),
	}
}

func newTransferUnlinkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unlink <transaction-id>",
		Short: "Break a transfer pair",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			id, err := parseID("transaction-id", args[0])
			if err != nil {
				return err
			}
			if err := e.svc.Transfers.Unlink(e.ctx, e.owner, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Unlinked")
			return nil
		}),
	}
}
