package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tesoro-dev/tesoro/internal/importer"
	"github.com/tesoro-dev/tesoro/internal/model"
	"github.com/tesoro-dev/tesoro/internal/split"
)

// parseLine reads "<category-id>:<amount>[:<target-account-id>]".
func parseLine(i int, raw string) (split.Line, error) {
	field := fmt.Sprintf("line[%d]", i)
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return split.Line{}, model.Invalid(field, "want category:amount[:target-account], got %q", raw)
	}
	cat, err := parseID(field, parts[0])
	if err != nil {
		return split.Line{}, err
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return split.Line{}, model.Invalid(field, "invalid amount %q", parts[1])
	}
	line := split.Line{CategoryID: cat, Amount: amount}
	if len(parts) == 3 {
		target, err := parseID(field, parts[2])
		if err != nil {
			return split.Line{}, err
		}
		line.TargetAccountID = &target
	}
	return line, nil
}

func printStatus(w io.Writer, j split.Justification) {
	state := "partially justified"
	if j.Full {
		state = "fully justified"
	}
	fmt.Fprintf(w, "total %s, justified %s, remaining %s: %s\n",
		j.Total.StringFixed(2), j.Justified.StringFixed(2), j.Remaining.StringFixed(2), state)
}

func newSplitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a transaction across categories",
	}
	cmd.AddCommand(newSplitSetCommand(), newSplitRemoveCommand(), newSplitStatusCommand())
	return cmd
}

func newSplitSetCommand() *cobra.Command {
	var raw []string

	cmd := &cobra.Command{
		Use:   "set <transaction-id>",
		Short: "Replace the split lines of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			id, err := parseID("transaction-id", args[0])
			if err != nil {
				return err
			}
			lines := make([]split.Line, 0, len(raw))
			for i, r := range raw {
				l, err := parseLine(i, r)
				if err != nil {
					return err
				}
				lines = append(lines, l)
			}
			if _, err := e.svc.Splits.Split(e.ctx, e.owner, id, lines); err != nil {
				return err
			}
			j, err := e.svc.Splits.Status(e.ctx, e.owner, id)
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), j)
			return nil
		}),
	}

	cmd.Flags().StringArrayVar(&raw, "line", nil, "split line category:amount[:target-account] (repeatable)")

	return cmd
}

func newSplitRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <transaction-id>",
		Short: "Remove every split line of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			id, err := parseID("transaction-id", args[0])
			if err != nil {
				return err
			}
			if err := e.svc.Splits.Remove(e.ctx, e.owner, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Splits removed")
			return nil
		}),
	}
}

func newSplitStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <transaction-id>",
		Short: "Show how much of a transaction is justified",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			id, err := parseID("transaction-id", args[0])
			if err != nil {
				return err
			}
			j, err := e.svc.Splits.Status(e.ctx, e.owner, id)
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), j)
			return nil
		}),
	}
}

func newJustifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "justify",
		Short: "Attach child transactions to an aggregate transaction",
	}
	cmd.AddCommand(newJustifyOrphansCommand(), newJustifyLinkCommand(), newJustifyChildCommand())
	return cmd
}

func newJustifyOrphansCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "orphans <transaction-id>",
		Short: "List expenses that could justify a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			id, err := parseID("transaction-id", args[0])
			if err != nil {
				return err
			}
			txns, err := e.svc.Splits.Orphans(e.ctx, e.owner, id)
			if err != nil {
				return err
			}
			printTransactions(cmd.OutOrStdout(), txns)
			return nil
		}),
	}
}

func newJustifyLinkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "link <transaction-id> <child-id>...",
		Short: "Attach existing transactions as children",
		Args:  cobra.MinimumNArgs(2),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			ids, err := parseIDs("transaction-id", args)
			if err != nil {
				return err
			}
			n, err := e.svc.Splits.LinkOrphans(e.ctx, e.owner, ids[0], ids[1:])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Linked %d transactions\n", n)
			return nil
		}),
	}
}

func newJustifyChildCommand() *cobra.Command {
	var concept, amount, date, category, notes string

	cmd := &cobra.Command{
		Use:   "child <transaction-id>",
		Short: "Create a new child transaction",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			id, err := parseID("transaction-id", args[0])
			if err != nil {
				return err
			}
			in := split.ChildInput{Concept: concept, Notes: notes}
			if in.Amount, err = decimal.NewFromString(amount); err != nil {
				return model.Invalid("amount", "invalid amount %q", amount)
			}
			if date != "" {
				if in.Date, err = importer.NormalizeDate(date); err != nil {
					return model.Invalid("date", "%s", err.Error())
				}
			}
			if category != "" {
				cat, err := parseID("category", category)
				if err != nil {
					return err
				}
				in.CategoryID = &cat
			}
			child, err := e.svc.Splits.CreateChild(e.ctx, e.owner, id, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", child.ID)
			return nil
		}),
	}

	cmd.Flags().StringVar(&concept, "concept", "", "concept (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "signed amount (required)")
	cmd.Flags().StringVar(&date, "date", "", "date, DD/MM/YYYY or YYYY-MM-DD (default: the parent's)")
	cmd.Flags().StringVar(&category, "category", "", "category id")
	cmd.Flags().StringVar(&notes, "notes", "", "notes")
	_ = cmd.MarkFlagRequired("concept")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}
