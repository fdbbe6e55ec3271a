package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tesoro-dev/tesoro/internal/model"
)

// mappingFlags binds the column mapping flags shared by templates add and import.
func mappingFlags(cmd *cobra.Command, m *model.ColumnMapping) {
	cmd.Flags().StringVar(&m.Delimiter, "delimiter", ";", `field delimiter ("tab" for tabs)`)
	cmd.Flags().StringVar(&m.DateColumn, "date", "", "date column name or 1-based position")
	cmd.Flags().StringVar(&m.ConceptColumn, "concept", "", "concept column")
	cmd.Flags().StringVar(&m.AmountColumn, "amount", "", "signed amount column")
	cmd.Flags().StringVar(&m.ChargeColumn, "charge", "", "charge column (with --credit, instead of --amount)")
	cmd.Flags().StringVar(&m.CreditColumn, "credit", "", "credit column")
	cmd.Flags().StringVar(&m.SignColumn, "sign", "", "debit/credit marker column")
	cmd.Flags().StringVar(&m.BalanceColumn, "balance", "", "running balance column")
	cmd.Flags().BoolVar(&m.InvertSign, "invert-sign", false, "negate every amount")
}

func newTemplatesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage importer templates",
	}
	cmd.AddCommand(newTemplatesAddCommand(), newTemplatesListCommand())
	return cmd
}

func newTemplatesAddCommand() *cobra.Command {
	var m model.ColumnMapping
	var account string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Save a column mapping as a template",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			tpl, err := e.svc.Importer.CreateTemplate(e.ctx, e.owner, args[0], m)
			if err != nil {
				return err
			}
			if account != "" {
				id, err := parseID("account", account)
				if err != nil {
					return err
				}
				if err := e.svc.Importer.LinkTemplate(e.ctx, e.owner, id, tpl.ID); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", tpl.ID)
			return nil
		}),
	}

	mappingFlags(cmd, &m)
	cmd.Flags().StringVar(&account, "account", "", "link the template to this account")

	return cmd
}

func newTemplatesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List templates",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			tpls, err := e.svc.Importer.Templates(e.ctx, e.owner)
			if err != nil {
				return err
			}
			for _, t := range tpls {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-20s date=%s concept=%s amount=%s%s%s\n",
					t.ID, t.Name, t.DateColumn, t.ConceptColumn, t.AmountColumn,
					optional(" sign=", t.SignColumn), optional(" balance=", t.BalanceColumn))
			}
			return nil
		}),
	}
}

func optional(label, v string) string {
	if v == "" {
		return ""
	}
	return label + v
}
