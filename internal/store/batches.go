package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/tesoro-dev/tesoro/internal/model"
)

// InsertBatch stores a new import ledger entry.
func (q *Queries) InsertBatch(ctx context.Context, batch *model.ImportBatch) error {
	_, err := q.db.NewInsert().Model(batch).Exec(ctx)
	return translate(err)
}

// SetBatchRowCount records how many transactions a batch inserted.
func (q *Queries) SetBatchRowCount(ctx context.Context, id uuid.UUID, n int) error {
	return affected(q.db.NewUpdate().
		Model((*model.ImportBatch)(nil)).
		Set("row_count = ?", n).
		Where("id = ?", id).
		Exec(ctx))
}

// GetBatch returns an import batch on one of the owner's accounts.
func (q *Queries) GetBatch(ctx context.Context, owner, id uuid.UUID) (*model.ImportBatch, error) {
	batch := new(model.ImportBatch)
	err := q.db.NewSelect().
		Model(batch).
		Where("id = ?", id).
		Where("account_id IN (?)", q.ownedAccounts(owner)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return batch, nil
}

// ListBatches returns an account's import history, newest first.
func (q *Queries) ListBatches(ctx context.Context, accountID uuid.UUID) ([]model.ImportBatch, error) {
	var batches []model.ImportBatch
	err := q.db.NewSelect().
		Model(&batches).
		Where("account_id = ?", accountID).
		Order("import_date DESC").
		Scan(ctx)
	return batches, translate(err)
}

// DeleteBatch removes an import ledger entry.
func (q *Queries) DeleteBatch(ctx context.Context, id uuid.UUID) error {
	return affected(q.db.NewDelete().
		Model((*model.ImportBatch)(nil)).
		Where("id = ?", id).
		Exec(ctx))
}
