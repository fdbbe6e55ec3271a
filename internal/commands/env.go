package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tesoro-dev/tesoro/internal/accounts"
	"github.com/tesoro-dev/tesoro/internal/api"
	"github.com/tesoro-dev/tesoro/internal/archive"
	"github.com/tesoro-dev/tesoro/internal/categorize"
	"github.com/tesoro-dev/tesoro/internal/config"
	"github.com/tesoro-dev/tesoro/internal/importer"
	"github.com/tesoro-dev/tesoro/internal/logger"
	"github.com/tesoro-dev/tesoro/internal/model"
	"github.com/tesoro-dev/tesoro/internal/split"
	"github.com/tesoro-dev/tesoro/internal/store"
	"github.com/tesoro-dev/tesoro/internal/transfer"
)

// env is everything a command needs once the config is loaded.
type env struct {
	ctx      context.Context
	cfg      *config.Config
	log      zerolog.Logger
	owner    uuid.UUID
	store    *store.Store
	archiver archive.Archiver
	svc      api.Services
}

func openEnv(cmd *cobra.Command) (*env, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.Log.Level)
	ctx := logger.WithContext(cmd.Context(), log)

	owner, err := uuid.Parse(strings.TrimSpace(cfg.Owner))
	if err != nil {
		return nil, fmt.Errorf("config %s has no valid owner id: run tesoro init", path)
	}

	s, err := store.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	arch, err := archive.New(ctx, cfg.Archive)
	if err != nil {
		s.Close()
		return nil, err
	}

	return &env{
		ctx:      ctx,
		cfg:      cfg,
		log:      log,
		owner:    owner,
		store:    s,
		archiver: arch,
		svc: api.Services{
			Accounts:   accounts.NewService(s),
			Importer:   importer.NewService(s, arch),
			Categories: categorize.NewService(s),
			Transfers:  transfer.NewService(s, cfg.Import.TransferWindowDays),
			Splits:     split.NewService(s, cfg.Import.OrphanWindowDays),
		},
	}, nil
}

func (e *env) Close() {
	if c, ok := e.archiver.(io.Closer); ok {
		c.Close()
	}
	e.store.Close()
}

// inbox builds the configured inbox sources.
func (e *env) inbox() (*importer.Inbox, error) {
	sources := make([]importer.Source, 0, len(e.cfg.Import.Inbox))
	for i, src := range e.cfg.Import.Inbox {
		acct, err := uuid.Parse(src.AccountID)
		if err != nil {
			return nil, fmt.Errorf("import.inbox[%d]: invalid account_id %q", i, src.AccountID)
		}
		s := importer.Source{Dir: src.Dir, AccountID: acct}
		if src.TemplateID != "" {
			tpl, err := uuid.Parse(src.TemplateID)
			if err != nil {
				return nil, fmt.Errorf("import.inbox[%d]: invalid template_id %q", i, src.TemplateID)
			}
			s.TemplateID = &tpl
		}
		sources = append(sources, s)
	}
	return importer.NewInbox(e.svc.Importer, e.owner, sources), nil
}

// withEnv wraps a command body that needs an open env.
func withEnv(fn func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		return fn(cmd, args, e)
	}
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, model.Invalid(field, "invalid id %q", raw)
	}
	return id, nil
}

func parseIDs(field string, raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := parseID(field, r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func categoryNames(e *env) (map[uuid.UUID]string, error) {
	cats, err := e.svc.Categories.Categories(e.ctx, e.owner)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names, nil
}

func printTransactions(w io.Writer, txns []model.Transaction) {
	for _, t := range txns {
		fmt.Fprintf(w, "%s  %s  %12s  %s\n", t.ID, t.Date.Format("2006-01-02"), t.Amount.StringFixed(2), t.Concept)
	}
}
