package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newCategoriesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage categories",
	}

	var parent, color, icon string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			var parentID *uuid.UUID
			if parent != "" {
				id, err := parseID("parent", parent)
				if err != nil {
					return err
				}
				parentID = &id
			}
			cat, err := e.svc.Categories.CreateCategory(e.ctx, e.owner, args[0], color, icon, parentID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", cat.ID)
			return nil
		}),
	}
	add.Flags().StringVar(&parent, "parent", "", "parent category id")
	add.Flags().StringVar(&color, "color", "", "display color")
	add.Flags().StringVar(&icon, "icon", "", "display icon")

	list := &cobra.Command{
		Use:   "list",
		Short: "List system and own categories",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			names, err := categoryNames(e)
			if err != nil {
				return err
			}
			cats, err := e.svc.Categories.Categories(e.ctx, e.owner)
			if err != nil {
				return err
			}
			for _, c := range cats {
				name := c.Name
				if c.ParentID != nil {
					name = names[*c.ParentID] + " / " + c.Name
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", c.ID, name)
			}
			return nil
		}),
	}

	cmd.AddCommand(add, list)
	return cmd
}

func newRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage categorization rules",
	}
	cmd.AddCommand(newRulesAddCommand(), newRulesListCommand(), newRulesApplyCommand())
	return cmd
}

func newRulesAddCommand() *cobra.Command {
	var category string
	var priority int

	cmd := &cobra.Command{
		Use:   "add <pattern>",
		Short: "Categorize concepts containing pattern",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			catID, err := parseID("category", category)
			if err != nil {
				return err
			}
			rule, err := e.svc.Categories.CreateRule(e.ctx, e.owner, args[0], catID, priority)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", rule.ID)
			return nil
		}),
	}

	cmd.Flags().StringVar(&category, "category", "", "category id (required)")
	_ = cmd.MarkFlagRequired("category")
	cmd.Flags().IntVar(&priority, "priority", 0, "lower values are tried first")

	return cmd
}

func newRulesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			names, err := categoryNames(e)
			if err != nil {
				return err
			}
			rules, err := e.svc.Categories.Rules(e.ctx, e.owner)
			if err != nil {
				return err
			}
			for _, r := range rules {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %3d  %-30q -> %s\n", r.ID, r.Priority, r.Pattern, names[r.CategoryID])
			}
			return nil
		}),
	}
}

func newRulesApplyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <rule-id>",
		Short: "Categorize existing uncategorized transactions with a rule",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			id, err := parseID("rule-id", args[0])
			if err != nil {
				return err
			}
			n, err := e.svc.Categories.ApplyRule(e.ctx, e.owner, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Categorized %d transactions\n", n)
			return nil
		}),
	}
}
