package commands

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tesoro-dev/tesoro/internal/accounts"
	"github.com/tesoro-dev/tesoro/internal/model"
)

func newAccountsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts",
	}
	cmd.AddCommand(
		newAccountsAddCommand(),
		newAccountsListCommand(),
		newAccountsTransactionsCommand(),
		newAccountsRecomputeCommand(),
		newAccountsImportCSVCommand(),
		newAccountsExportCSVCommand(),
	)
	return cmd
}

func newAccountsAddCommand() *cobra.Command {
	var typ, currency, initial string
	var autoMirror bool

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			balance, err := decimal.NewFromString(initial)
			if err != nil {
				return model.Invalid("initial-balance", "invalid amount %q", initial)
			}
			acct, err := e.svc.Accounts.Create(e.ctx, e.owner, model.Account{
				Name:                args[0],
				Type:                model.AccountType(typ),
				Currency:            currency,
				InitialBalance:      balance,
				AutoMirrorTransfers: autoMirror,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", acct.ID)
			return nil
		}),
	}

	cmd.Flags().StringVar(&typ, "type", string(model.AccountTypeChecking), "account type")
	cmd.Flags().StringVar(&currency, "currency", "EUR", "ISO currency code")
	cmd.Flags().StringVar(&initial, "initial-balance", "0", "opening balance")
	cmd.Flags().BoolVar(&autoMirror, "auto-mirror", false, "create mirror transactions for transfers into this account")

	return cmd
}

func newAccountsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			accts, err := e.svc.Accounts.All(e.ctx, e.owner)
			if err != nil {
				return err
			}
			for _, a := range accts {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-12s %12s %s  %s\n",
					a.ID, a.Type, a.CurrentBalance.StringFixed(2), a.Currency, a.Name)
			}
			return nil
		}),
	}
}

func newAccountsTransactionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "transactions <account-id>",
		Short: "List an account's transactions",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			id, err := parseID("account-id", args[0])
			if err != nil {
				return err
			}
			txns, err := e.svc.Accounts.Transactions(e.ctx, e.owner, id)
			if err != nil {
				return err
			}
			printTransactions(cmd.OutOrStdout(), txns)
			return nil
		}),
	}
}

func newAccountsRecomputeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recompute <account-id>",
		Short: "Rebuild an account balance from its transactions",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			id, err := parseID("account-id", args[0])
			if err != nil {
				return err
			}
			acct, err := e.svc.Accounts.Recompute(e.ctx, e.owner, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", acct.CurrentBalance.StringFixed(2), acct.Currency)
			return nil
		}),
	}
}

func newAccountsImportCSVCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import-csv <file>",
		Short: "Create accounts from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			created, err := e.svc.Accounts.ImportCSV(e.ctx, e.owner, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %d accounts\n", len(created))
			return nil
		}),
	}
}

func newAccountsExportCSVCommand() *cobra.Command {
	var out string
	var definitions bool

	cmd := &cobra.Command{
		Use:   "export-csv [account-id]",
		Short: "Write an account statement, or all account definitions, as CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			if definitions || len(args) == 0 {
				accts, err := e.svc.Accounts.All(e.ctx, e.owner)
				if err != nil {
					return err
				}
				return accounts.WriteAccounts(w, accts)
			}
			id, err := parseID("account-id", args[0])
			if err != nil {
				return err
			}
			return e.svc.Accounts.ExportStatement(e.ctx, e.owner, id, w)
		}),
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&definitions, "definitions", false, "export account definitions instead of a statement")

	return cmd
}
