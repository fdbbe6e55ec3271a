// Package storetest provides an in-memory database for tests.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tesoro-dev/tesoro/internal/model"
	"github.com/tesoro-dev/tesoro/internal/store"
)

// New returns a migrated in-memory SQLite store that is closed when the test ends.
// The system categories are seeded.
func New(t *testing.T) *store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	s, err := store.OpenSQLite(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.EnsureCategories(ctx, []model.Category{{
		ID:   model.TransferCategoryID,
		Name: "Transferencia",
	}}))
	return s
}

// Account creates an account for owner.
func Account(t *testing.T, s *store.Store, owner uuid.UUID, name string, typ model.AccountType) *model.Account {
	t.Helper()
	acct := &model.Account{
		ID:             uuid.New(),
		OwnerID:        owner,
		Name:           name,
		Type:           typ,
		Currency:       "EUR",
		InitialBalance: decimal.Zero,
		CurrentBalance: decimal.Zero,
		Active:         true,
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, s.InsertAccount(context.Background(), acct))
	return acct
}

// Category creates an owner category.
func Category(t *testing.T, s *store.Store, owner uuid.UUID, name string) *model.Category {
	t.Helper()
	cat := &model.Category{ID: uuid.New(), OwnerID: &owner, Name: name}
	require.NoError(t, s.InsertCategory(context.Background(), cat))
	return cat
}

// Transaction creates a transaction and adjusts the account balance.
func Transaction(t *testing.T, s *store.Store, accountID uuid.UUID, date time.Time, amount, concept string) *model.Transaction {
	t.Helper()
	txn := &model.Transaction{
		ID:        uuid.New(),
		AccountID: accountID,
		Date:      date,
		Concept:   concept,
		Amount:    decimal.RequireFromString(amount),
		CreatedAt: time.Now().UTC(),
	}
	ctx := context.Background()
	require.NoError(t, s.InsertTransaction(ctx, txn))
	require.NoError(t, s.AdjustBalance(ctx, accountID, txn.Amount))
	return txn
}

// Date returns midnight UTC of the given day.
func Date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}
