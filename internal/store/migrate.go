package store

import (
	"context"
	"fmt"

	"github.com/tesoro-dev/tesoro/internal/model"
)

type table struct {
	model       any
	foreignKeys []string
}

// tables lists every table in creation order.
var tables = []table{
	{model: (*model.Category)(nil), foreignKeys: []string{
		`("parent_id") REFERENCES "categories" ("id") ON DELETE RESTRICT`,
	}},
	{model: (*model.ImporterTemplate)(nil)},
	{model: (*model.Account)(nil), foreignKeys: []string{
		`("template_id") REFERENCES "importer_templates" ("id") ON DELETE SET NULL`,
	}},
	{model: (*model.ImportBatch)(nil), foreignKeys: []string{
		`("account_id") REFERENCES "accounts" ("id") ON DELETE CASCADE`,
		`("template_id") REFERENCES "importer_templates" ("id") ON DELETE RESTRICT`,
	}},
	{model: (*model.Transaction)(nil), foreignKeys: []string{
		`("account_id") REFERENCES "accounts" ("id") ON DELETE RESTRICT`,
		`("category_id") REFERENCES "categories" ("id") ON DELETE RESTRICT`,
		`("importer_id") REFERENCES "import_batches" ("id") ON DELETE RESTRICT`,
		`("parent_transaction_id") REFERENCES "transactions" ("id") ON DELETE RESTRICT`,
	}},
	{model: (*model.TransactionSplit)(nil), foreignKeys: []string{
		`("transaction_id") REFERENCES "transactions" ("id") ON DELETE CASCADE`,
		`("category_id") REFERENCES "categories" ("id") ON DELETE RESTRICT`,
	}},
	{model: (*model.CategoryRule)(nil), foreignKeys: []string{
		`("category_id") REFERENCES "categories" ("id") ON DELETE CASCADE`,
	}},
}

type index struct {
	model   any
	name    string
	columns []string
}

var indexes = []index{
	{(*model.Transaction)(nil), "transactions_account_date_idx", []string{"account_id", "date"}},
	{(*model.Transaction)(nil), "transactions_importer_idx", []string{"importer_id"}},
	{(*model.Transaction)(nil), "transactions_parent_idx", []string{"parent_transaction_id"}},
	{(*model.TransactionSplit)(nil), "transaction_splits_transaction_idx", []string{"transaction_id"}},
	{(*model.CategoryRule)(nil), "category_rules_owner_idx", []string{"owner_id", "priority"}},
}

// Migrate creates all tables and indexes that do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	for _, t := range tables {
		q := s.db.NewCreateTable().Model(t.model).IfNotExists()
		for _, fk := range t.foreignKeys {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", t.model, err)
		}
	}
	for _, idx := range indexes {
		_, err := s.db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.columns...).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("creating index %s: %w", idx.name, err)
		}
	}
	return nil
}
