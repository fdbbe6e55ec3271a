package accounts

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tesoro-dev/tesoro/internal/logger"
	"github.com/tesoro-dev/tesoro/internal/model"
	"github.com/tesoro-dev/tesoro/internal/store"
)

// Service manages an owner's accounts and their balances.
type Service struct {
	store *store.Store
	now   func() time.Time
}

// NewService creates an accounts Service.
func NewService(s *store.Store) *Service {
	return &Service{store: s, now: time.Now}
}

// Create validates and stores a new account. The current balance starts at
// the initial balance.
func (s *Service) Create(ctx context.Context, owner uuid.UUID, def model.Account) (*model.Account, error) {
	def.Name = strings.TrimSpace(def.Name)
	if def.Name == "" {
		return nil, model.Invalid("name", "is required")
	}
	if !def.Type.Valid() {
		return nil, model.Invalid("type", "unknown account type %q", def.Type)
	}
	if def.Currency == "" {
		def.Currency = defaultCurrency
	}

	acct := &model.Account{
		ID:                  uuid.New(),
		OwnerID:             owner,
		Name:                def.Name,
		Type:                def.Type,
		Currency:            strings.ToUpper(def.Currency),
		InitialBalance:      def.InitialBalance,
		CurrentBalance:      def.InitialBalance,
		Active:              true,
		AutoMirrorTransfers: def.AutoMirrorTransfers,
		CreatedAt:           s.now().UTC(),
	}
	if err := s.store.InsertAccount(ctx, acct); err != nil {
		return nil, fmt.Errorf("saving account: %w", err)
	}
	return acct, nil
}

// All returns the owner's accounts.
func (s *Service) All(ctx context.Context, owner uuid.UUID) ([]model.Account, error) {
	return s.store.ListAccounts(ctx, owner)
}

// Get returns one of the owner's accounts.
func (s *Service) Get(ctx context.Context, owner, id uuid.UUID) (*model.Account, error) {
	return s.store.GetAccount(ctx, owner, id)
}

// Transactions returns an account's transactions, oldest first.
func (s *Service) Transactions(ctx context.Context, owner, id uuid.UUID) ([]model.Transaction, error) {
	if _, err := s.store.GetAccount(ctx, owner, id); err != nil {
		return nil, err
	}
	return s.store.ListTransactions(ctx, id)
}

// Delete removes an account that has no transactions.
func (s *Service) Delete(ctx context.Context, owner, id uuid.UUID) error {
	return s.store.DeleteAccount(ctx, owner, id)
}

// SetAutoMirror toggles whether transfers into the account create mirror
// transactions.
func (s *Service) SetAutoMirror(ctx context.Context, owner, id uuid.UUID, enabled bool) error {
	return s.store.SetAutoMirror(ctx, owner, id, enabled)
}

// Recompute rebuilds the current balance from the initial balance and every
// transaction on the account.
func (s *Service) Recompute(ctx context.Context, owner, id uuid.UUID) (*model.Account, error) {
	var acct *model.Account
	err := s.store.InTx(ctx, func(ctx context.Context, q *store.Queries) error {
		var err error
		acct, err = q.GetAccount(ctx, owner, id)
		if err != nil {
			return err
		}
		sum, err := q.SumAmounts(ctx, id)
		if err != nil {
			return err
		}
		balance := acct.InitialBalance.Add(sum)
		if !balance.Equal(acct.CurrentBalance) {
			log := logger.FromContext(ctx)
			log.Warn().
				Str("account_id", id.String()).
				Str("stored", acct.CurrentBalance.StringFixed(2)).
				Str("computed", balance.StringFixed(2)).
				Msg("balance drift corrected")
		}
		acct.CurrentBalance = balance
		return q.SetBalance(ctx, id, balance)
	})
	if err != nil {
		return nil, fmt.Errorf("recomputing balance: %w", err)
	}
	return acct, nil
}

// ImportCSV creates one account per row of an accounts CSV.
func (s *Service) ImportCSV(ctx context.Context, owner uuid.UUID, r io.Reader) ([]model.Account, error) {
	defs, err := ReadAccounts(r)
	if err != nil {
		return nil, err
	}
	created := make([]model.Account, 0, len(defs))
	for _, def := range defs {
		acct, err := s.Create(ctx, owner, def)
		if err != nil {
			return created, fmt.Errorf("creating %q: %w", def.Name, err)
		}
		created = append(created, *acct)
	}
	return created, nil
}

// ExportStatement writes an account's transactions as CSV.
func (s *Service) ExportStatement(ctx context.Context, owner, id uuid.UUID, w io.Writer) error {
	if _, err := s.store.GetAccount(ctx, owner, id); err != nil {
		return err
	}
	txns, err := s.store.ListTransactions(ctx, id)
	if err != nil {
		return fmt.Errorf("listing transactions: %w", err)
	}
	cats, err := s.store.ListCategories(ctx, owner)
	if err != nil {
		return fmt.Errorf("listing categories: %w", err)
	}
	names := make(map[uuid.UUID]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return WriteStatement(w, txns, names)
}
