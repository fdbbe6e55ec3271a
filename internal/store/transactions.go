package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/tesoro-dev/tesoro/internal/model"
)

// InsertTransactions bulk-inserts transactions.
func (q *Queries) InsertTransactions(ctx context.Context, txns []model.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	_, err := q.db.NewInsert().Model(&txns).Exec(ctx)
	return translate(err)
}

// InsertTransaction stores a single transaction.
func (q *Queries) InsertTransaction(ctx context.Context, txn *model.Transaction) error {
	_, err := q.db.NewInsert().Model(txn).Exec(ctx)
	return translate(err)
}

// GetTransaction returns a transaction on one of the owner's accounts.
func (q *Queries) GetTransaction(ctx context.Context, owner, id uuid.UUID) (*model.Transaction, error) {
	txn := new(model.Transaction)
	err := q.db.NewSelect().
		Model(txn).
		Where("id = ?", id).
		Where("account_id IN (?)", q.ownedAccounts(owner)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return txn, nil
}

// ListTransactions returns an account's transactions, oldest first.
func (q *Queries) ListTransactions(ctx context.Context, accountID uuid.UUID) ([]model.Transaction, error) {
	var txns []model.Transaction
	err := q.db.NewSelect().
		Model(&txns).
		Where("account_id = ?", accountID).
		Order("date ASC", "created_at ASC").
		Scan(ctx)
	return txns, translate(err)
}

// BatchTransactions returns the transactions created by an import batch.
func (q *Queries) BatchTransactions(ctx context.Context, batchID uuid.UUID) ([]model.Transaction, error) {
	var txns []model.Transaction
	err := q.db.NewSelect().
		Model(&txns).
		Where("importer_id = ?", batchID).
		Scan(ctx)
	return txns, translate(err)
}

// DeleteTransactions removes transactions by id.
func (q *Queries) DeleteTransactions(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := q.db.NewDelete().
		Model((*model.Transaction)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	return translate(err)
}

// SetCategory overwrites a transaction's category. A nil category clears it.
func (q *Queries) SetCategory(ctx context.Context, id uuid.UUID, categoryID *uuid.UUID) error {
	upd := q.db.NewUpdate().Model((*model.Transaction)(nil))
	if categoryID == nil {
		upd = upd.Set("category_id = NULL")
	} else {
		upd = upd.Set("category_id = ?", *categoryID)
	}
	return affected(upd.Where("id = ?", id).Exec(ctx))
}

// LinkTransfer points id at its counterpart and recategorizes it as a
// transfer. Split transactions keep their null category.
func (q *Queries) LinkTransfer(ctx context.Context, id, counterpartID uuid.UUID) error {
	return affected(q.db.NewUpdate().
		Model((*model.Transaction)(nil)).
		Set("transfer_id = ?", counterpartID).
		Set("category_id = CASE WHEN is_split THEN category_id ELSE ? END", model.TransferCategoryID).
		Where("id = ?", id).
		Exec(ctx))
}

// ClearTransfer removes the transfer link of a transaction.
func (q *Queries) ClearTransfer(ctx context.Context, id uuid.UUID) error {
	return affected(q.db.NewUpdate().
		Model((*model.Transaction)(nil)).
		Set("transfer_id = NULL").
		Where("id = ?", id).
		Exec(ctx))
}

// TransferCandidates returns unlinked transactions of the owner dated within
// [from, to] on any account except excludeAccount.
func (q *Queries) TransferCandidates(ctx context.Context, owner, excludeAccount uuid.UUID, from, to time.Time) ([]model.Transaction, error) {
	var txns []model.Transaction
	err := q.db.NewSelect().
		Model(&txns).
		Where("account_id IN (?)", q.ownedAccounts(owner)).
		Where("account_id != ?", excludeAccount).
		Where("transfer_id IS NULL").
		Where("date BETWEEN ? AND ?", from, to).
		Order("date ASC").
		Scan(ctx)
	return txns, translate(err)
}

// Uncategorized returns the owner's transactions with no category that are not split.
func (q *Queries) Uncategorized(ctx context.Context, owner uuid.UUID) ([]model.Transaction, error) {
	var txns []model.Transaction
	err := q.db.NewSelect().
		Model(&txns).
		Where("account_id IN (?)", q.ownedAccounts(owner)).
		Where("category_id IS NULL").
		Where("is_split = ?", false).
		Scan(ctx)
	return txns, translate(err)
}

// CategorizeUncategorized sets categoryID on the listed transactions that are
// still uncategorized and not split. It returns the number of rows updated.
func (q *Queries) CategorizeUncategorized(ctx context.Context, ids []uuid.UUID, categoryID uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := q.db.NewUpdate().
		Model((*model.Transaction)(nil)).
		Set("category_id = ?", categoryID).
		Where("id IN (?)", bun.In(ids)).
		Where("category_id IS NULL").
		Where("is_split = ?", false).
		Exec(ctx)
	if err != nil {
		return 0, translate(err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// SetSplit flags a transaction as split or not and clears its category.
func (q *Queries) SetSplit(ctx context.Context, id uuid.UUID, split bool) error {
	return affected(q.db.NewUpdate().
		Model((*model.Transaction)(nil)).
		Set("is_split = ?", split).
		Set("category_id = NULL").
		Where("id = ?", id).
		Exec(ctx))
}

// OrphanCandidates returns expenses on accountID dated within [from, to] that
// have no parent, no children, are not split and are not parentID itself.
func (q *Queries) OrphanCandidates(ctx context.Context, accountID, parentID uuid.UUID, from, to time.Time) ([]model.Transaction, error) {
	var txns []model.Transaction
	err := q.db.NewSelect().
		Model(&txns).
		Where("account_id = ?", accountID).
		Where("id != ?", parentID).
		Where("parent_transaction_id IS NULL").
		Where("is_split = ?", false).
		Where("amount < 0").
		Where("date BETWEEN ? AND ?", from, to).
		Where("id NOT IN (?)", q.parents()).
		Order("date ASC").
		Scan(ctx)
	return txns, translate(err)
}

// SetParent links the listed transactions to parentID. Only rows that
// OrphanCandidates would return for the same arguments are linked; the rest
// are left alone. It returns the number linked.
func (q *Queries) SetParent(ctx context.Context, accountID, parentID uuid.UUID, ids []uuid.UUID, from, to time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := q.db.NewUpdate().
		Model((*model.Transaction)(nil)).
		Set("parent_transaction_id = ?", parentID).
		Where("id IN (?)", bun.In(ids)).
		Where("id != ?", parentID).
		Where("account_id = ?", accountID).
		Where("parent_transaction_id IS NULL").
		Where("is_split = ?", false).
		Where("amount < 0").
		Where("date BETWEEN ? AND ?", from, to).
		Where("id NOT IN (?)", q.parents()).
		Exec(ctx)
	if err != nil {
		return 0, translate(err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// parents selects the ids of transactions that have children.
func (q *Queries) parents() *bun.SelectQuery {
	return q.db.NewSelect().
		Model((*model.Transaction)(nil)).
		Column("parent_transaction_id").
		Where("parent_transaction_id IS NOT NULL")
}

// Children returns the justification children of a transaction.
func (q *Queries) Children(ctx context.Context, parentID uuid.UUID) ([]model.Transaction, error) {
	var txns []model.Transaction
	err := q.db.NewSelect().
		Model(&txns).
		Where("parent_transaction_id = ?", parentID).
		Order("date ASC").
		Scan(ctx)
	return txns, translate(err)
}
