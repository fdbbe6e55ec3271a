package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/tesoro-dev/tesoro/internal/model"
)

// InsertSplits stores split lines.
func (q *Queries) InsertSplits(ctx context.Context, splits []model.TransactionSplit) error {
	if len(splits) == 0 {
		return nil
	}
	_, err := q.db.NewInsert().Model(&splits).Exec(ctx)
	return translate(err)
}

// ListSplits returns the split lines of a transaction.
func (q *Queries) ListSplits(ctx context.Context, txnID uuid.UUID) ([]model.TransactionSplit, error) {
	var splits []model.TransactionSplit
	err := q.db.NewSelect().
		Model(&splits).
		Where("transaction_id = ?", txnID).
		Scan(ctx)
	return splits, translate(err)
}

// DeleteSplits removes every split line of a transaction.
func (q *Queries) DeleteSplits(ctx context.Context, txnID uuid.UUID) error {
	_, err := q.db.NewDelete().
		Model((*model.TransactionSplit)(nil)).
		Where("transaction_id = ?", txnID).
		Exec(ctx)
	return translate(err)
}
