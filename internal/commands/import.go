package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tesoro-dev/tesoro/internal/importer"
	"github.com/tesoro-dev/tesoro/internal/model"
)

func newImportCommand() *cobra.Command {
	var m model.ColumnMapping
	var account, template, templateName string
	var save, inbox bool

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a bank statement CSV into an account",
		Args:  cobra.MaximumNArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			out := cmd.OutOrStdout()
			if inbox {
				if len(args) > 0 {
					return fmt.Errorf("--inbox takes no file argument")
				}
				return runInbox(e, out)
			}
			if len(args) != 1 {
				return fmt.Errorf("a statement file is required")
			}

			accountID, err := parseID("account", account)
			if err != nil {
				return err
			}
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			req := importer.Request{
				Owner:        e.owner,
				AccountID:    accountID,
				Filename:     filepath.Base(args[0]),
				Content:      content,
				SaveTemplate: save,
				TemplateName: templateName,
			}
			if template != "" {
				id, err := parseID("template", template)
				if err != nil {
					return err
				}
				req.TemplateID = &id
			} else if m.DateColumn != "" || m.ConceptColumn != "" {
				req.Mapping = &m
			}

			res, err := e.svc.Importer.Import(e.ctx, req)
			if err != nil {
				return err
			}
			printResult(out, args[0], res)
			return nil
		}),
	}

	mappingFlags(cmd, &m)
	cmd.Flags().StringVar(&account, "account", "", "target account id")
	cmd.Flags().StringVar(&template, "template", "", "template id (default: the account's linked template)")
	cmd.Flags().BoolVar(&save, "save-template", false, "save the mapping flags as a template linked to the account")
	cmd.Flags().StringVar(&templateName, "template-name", "", "name for --save-template (default: file name)")
	cmd.Flags().BoolVar(&inbox, "inbox", false, "import every file waiting in the configured inbox directories")

	return cmd
}

func printResult(w io.Writer, name string, res *importer.Result) {
	fmt.Fprintf(w, "%s: imported %d of %d rows (%d categorized, %d filtered, %d rejected), batch %s\n",
		name, res.Imported, res.RowsRead, res.Categorized, res.Filtered, len(res.Rejected), res.BatchID)
	for _, r := range res.Rejected {
		fmt.Fprintf(w, "  row %d: %s\n", r.Row, r.Reason)
	}
}

func runInbox(e *env, w io.Writer) error {
	in, err := e.inbox()
	if err != nil {
		return err
	}
	results, err := in.Run(e.ctx)
	if err != nil {
		return err
	}
	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "%s: %v\n", r.File.Name, r.Err)
			continue
		}
		printResult(w, r.File.Name, r.Result)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inbox files failed", failed, len(results))
	}
	return nil
}

func newImportsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imports",
		Short: "Inspect and undo import batches",
	}
	cmd.AddCommand(newImportsListCommand(), newImportsUndoCommand())
	return cmd
}

func newImportsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <account-id>",
		Short: "List the import history of an account",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			id, err := parseID("account-id", args[0])
			if err != nil {
				return err
			}
			batches, err := e.svc.Importer.ListBatches(e.ctx, e.owner, id)
			if err != nil {
				return err
			}
			for _, b := range batches {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %5d rows  %s\n",
					b.ID, b.ImportDate.Format("2006-01-02 15:04"), b.RowCount, b.Filename)
			}
			return nil
		}),
	}
}

func newImportsUndoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "undo <batch-id>",
		Short: "Delete an import batch and its transactions",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			id, err := parseID("batch-id", args[0])
			if err != nil {
				return err
			}
			n, err := e.svc.Importer.UndoBatch(e.ctx, e.owner, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d transactions\n", n)
			return nil
		}),
	}
}
