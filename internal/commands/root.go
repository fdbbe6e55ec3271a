package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tesoro-dev/tesoro/internal/buildinfo"
	"github.com/tesoro-dev/tesoro/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "tesoro",
		Short:   "Personal finance ledger fed by bank statement imports",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", config.FileName, "path to the config file")

	rootCmd.AddCommand(
		newInitCommand(),
		newAccountsCommand(),
		newTemplatesCommand(),
		newImportCommand(),
		newImportsCommand(),
		newCategoriesCommand(),
		newRulesCommand(),
		newTransferCommand(),
		newSplitCommand(),
		newJustifyCommand(),
		newServeCommand(),
		newWatchCommand(),
	)

	return rootCmd
}
