package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tesoro-dev/tesoro/internal/categorize"
	"github.com/tesoro-dev/tesoro/internal/config"
	"github.com/tesoro-dev/tesoro/internal/logger"
	"github.com/tesoro-dev/tesoro/internal/store"
)

func newInitCommand() *cobra.Command {
	var driver, dsn string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new tesoro workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, driver, dsn)
		},
	}

	cmd.Flags().StringVar(&driver, "driver", "sqlite", "database driver (sqlite or postgres)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "database DSN (default: tesoro.db inside the directory)")

	return cmd
}

func runInit(cmd *cobra.Command, dir, driver, dsn string) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	dirs := []string{
		"import",
		filepath.Join("import", "processed"),
		"archive",
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default()
	cfg.Owner = uuid.NewString()
	cfg.Database.Driver = driver
	switch {
	case dsn != "":
		cfg.Database.DSN = dsn
	case driver == "sqlite":
		cfg.Database.DSN = "file:" + filepath.Join(dir, "tesoro.db") + "?_foreign_keys=on"
	default:
		cfg.Database.DSN = ""
	}
	cfg.Archive.Dir = filepath.Join(dir, "archive")
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	s, err := store.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := logger.WithContext(cmd.Context(), logger.New(cfg.Log.Level))
	if err := s.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	if err := categorize.NewService(s).SeedDefaults(ctx); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized tesoro workspace at %s (owner %s)\n", dir, cfg.Owner)
	return nil
}
