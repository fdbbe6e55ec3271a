package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/tesoro-dev/tesoro/internal/model"
)

// ownedAccounts selects the ids of the owner's accounts, for use as a subquery.
func (q *Queries) ownedAccounts(owner uuid.UUID) *bun.SelectQuery {
	return q.db.NewSelect().
		Model((*model.Account)(nil)).
		Column("id").
		Where("owner_id = ?", owner)
}

// InsertAccount stores a new account.
func (q *Queries) InsertAccount(ctx context.Context, acct *model.Account) error {
	_, err := q.db.NewInsert().Model(acct).Exec(ctx)
	return translate(err)
}

// GetAccount returns one of the owner's accounts.
func (q *Queries) GetAccount(ctx context.Context, owner, id uuid.UUID) (*model.Account, error) {
	acct := new(model.Account)
	err := q.db.NewSelect().
		Model(acct).
		Where("id = ?", id).
		Where("owner_id = ?", owner).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return acct, nil
}

// ListAccounts returns the owner's accounts ordered by name.
func (q *Queries) ListAccounts(ctx context.Context, owner uuid.UUID) ([]model.Account, error) {
	var accts []model.Account
	err := q.db.NewSelect().
		Model(&accts).
		Where("owner_id = ?", owner).
		Order("name ASC").
		Scan(ctx)
	return accts, translate(err)
}

// DeleteAccount removes an account. Accounts with transactions cannot be deleted.
func (q *Queries) DeleteAccount(ctx context.Context, owner, id uuid.UUID) error {
	return affected(q.db.NewDelete().
		Model((*model.Account)(nil)).
		Where("id = ?", id).
		Where("owner_id = ?", owner).
		Exec(ctx))
}

// SetAccountTemplate links an importer template to an account.
func (q *Queries) SetAccountTemplate(ctx context.Context, accountID, templateID uuid.UUID) error {
	return affected(q.db.NewUpdate().
		Model((*model.Account)(nil)).
		Set("template_id = ?", templateID).
		Where("id = ?", accountID).
		Exec(ctx))
}

// AdjustBalance adds delta to the account's current balance.
func (q *Queries) AdjustBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	var current decimal.Decimal
	err := q.db.NewSelect().
		Model((*model.Account)(nil)).
		Column("current_balance").
		Where("id = ?", accountID).
		Scan(ctx, &current)
	if err != nil {
		return translate(err)
	}
	return q.SetBalance(ctx, accountID, current.Add(delta))
}

// SetBalance overwrites the account's current balance.
func (q *Queries) SetBalance(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error {
	return affected(q.db.NewUpdate().
		Model((*model.Account)(nil)).
		Set("current_balance = ?", balance).
		Where("id = ?", accountID).
		Exec(ctx))
}

// SumAmounts returns the sum of all transaction amounts on an account.
func (q *Queries) SumAmounts(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := q.db.NewSelect().
		Model((*model.Transaction)(nil)).
		Column("amount").
		Where("account_id = ?", accountID).
		Scan(ctx, &amounts)
	if err != nil {
		return decimal.Zero, translate(err)
	}
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(a)
	}
	return sum, nil
}

// SetAutoMirror toggles automatic mirroring of incoming transfers.
func (q *Queries) SetAutoMirror(ctx context.Context, owner, id uuid.UUID, enabled bool) error {
	return affected(q.db.NewUpdate().
		Model((*model.Account)(nil)).
		Set("auto_mirror_transfers = ?", enabled).
		Where("id = ?", id).
		Where("owner_id = ?", owner).
		Exec(ctx))
}
