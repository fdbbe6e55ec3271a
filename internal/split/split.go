// Package split explains an aggregate transaction, either by splitting it into
// categorized lines or by attaching child transactions to it.
package split

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tesoro-dev/tesoro/internal/logger"
	"github.com/tesoro-dev/tesoro/internal/model"
	"github.com/tesoro-dev/tesoro/internal/store"
)

// MirrorPrefix starts the concept of a transaction created for a transfer split line.
const MirrorPrefix = "AMORT: "

// DefaultWindowDays is how far from the parent's date orphans are searched.
const DefaultWindowDays = 5

// Line is one requested split line.
type Line struct {
	CategoryID      uuid.UUID       `json:"category_id"`
	Amount          decimal.Decimal `json:"amount"`
	Notes           string          `json:"notes,omitempty"`
	TargetAccountID *uuid.UUID      `json:"target_account_id,omitempty"`
}

// ChildInput describes a new child transaction. A zero Date uses the parent's.
type ChildInput struct {
	Date       time.Time       `json:"date"`
	Concept    string          `json:"concept"`
	Amount     decimal.Decimal `json:"amount"`
	CategoryID *uuid.UUID      `json:"category_id,omitempty"`
	Notes      string          `json:"notes,omitempty"`
}

// Service manages splits and justification children.
type Service struct {
	store      *store.Store
	windowDays int
	now        func() time.Time
}

// NewService creates a split Service. windowDays <= 0 uses DefaultWindowDays.
func NewService(s *store.Store, windowDays int) *Service {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &Service{store: s, windowDays: windowDays, now: time.Now}
}

func validateLines(lines []Line) (decimal.Decimal, error) {
	if len(lines) == 0 {
		return decimal.Zero, model.Invalid("lines", "at least one split line is required")
	}
	total := decimal.Zero
	mirrored := false
	for i, l := range lines {
		if l.CategoryID == uuid.Nil {
			return decimal.Zero, model.Invalid(fmt.Sprintf("lines[%d].category_id", i), "is required")
		}
		if !l.Amount.IsPositive() {
			return decimal.Zero, model.Invalid(fmt.Sprintf("lines[%d].amount", i), "must be positive")
		}
		// A transaction has a single transfer_id, so only one line can mirror.
		if l.TargetAccountID != nil && l.CategoryID == model.TransferCategoryID {
			if mirrored {
				return decimal.Zero, model.Invalid(fmt.Sprintf("lines[%d].target_account_id", i),
					"only one transfer line may target an account")
			}
			mirrored = true
		}
		total = total.Add(l.Amount)
	}
	return total, nil
}

// Split replaces the split lines of a transaction. The parent is flagged as
// split and loses its own category. A transfer line with a target account
// gets a mirror transaction on that account.
func (s *Service) Split(ctx context.Context, owner, txnID uuid.UUID, lines []Line) ([]model.TransactionSplit, error) {
	total, err := validateLines(lines)
	if err != nil {
		return nil, err
	}

	var out []model.TransactionSplit
	err = s.store.InTx(ctx, func(ctx context.Context, q *store.Queries) error {
		parent, err := q.GetTransaction(ctx, owner, txnID)
		if err != nil {
			return fmt.Errorf("loading transaction: %w", err)
		}
		if limit := parent.Amount.Abs().Add(Tolerance); total.GreaterThan(limit) {
			return model.Invalid("lines", "split total %s exceeds transaction amount %s",
				total.StringFixed(2), parent.Amount.Abs().StringFixed(2))
		}

		for i, l := range lines {
			if _, err := q.GetCategory(ctx, owner, l.CategoryID); err != nil {
				if errors.Is(err, model.ErrNotFound) {
					return model.Invalid(fmt.Sprintf("lines[%d].category_id", i), "unknown category")
				}
				return err
			}
		}

		if err := s.removeMirrors(ctx, q, owner, parent); err != nil {
			return err
		}
		if err := q.DeleteSplits(ctx, parent.ID); err != nil {
			return fmt.Errorf("deleting splits: %w", err)
		}
		linked := parent.Linked()

		for i, l := range lines {
			sp := model.TransactionSplit{
				ID:            uuid.New(),
				TransactionID: parent.ID,
				CategoryID:    l.CategoryID,
				Amount:        l.Amount,
				Notes:         strings.TrimSpace(l.Notes),
			}
			if l.TargetAccountID != nil {
				target := *l.TargetAccountID
				sp.TargetAccountID = &target
			}
			if sp.TargetAccountID != nil && l.CategoryID == model.TransferCategoryID {
				if linked {
					return model.ErrAlreadyLinked
				}
				mirror, err := s.mirror(ctx, q, owner, parent, sp, i)
				if err != nil {
					return err
				}
				sp.MirrorTransactionID = &mirror.ID
			}
			out = append(out, sp)
		}
		if err := q.InsertSplits(ctx, out); err != nil {
			return fmt.Errorf("inserting splits: %w", err)
		}
		return q.SetSplit(ctx, parent.ID, true)
	})
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("transaction_id", txnID.String()).
		Int("lines", len(out)).
		Msg("transaction split")
	return out, nil
}

func (s *Service) mirror(ctx context.Context, q *store.Queries, owner uuid.UUID, parent *model.Transaction, sp model.TransactionSplit, line int) (*model.Transaction, error) {
	field := fmt.Sprintf("lines[%d].target_account_id", line)
	if *sp.TargetAccountID == parent.AccountID {
		return nil, model.Invalid(field, "must differ from the transaction's account")
	}
	target, err := q.GetAccount(ctx, owner, *sp.TargetAccountID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.Invalid(field, "unknown account")
		}
		return nil, err
	}

	mirror := &model.Transaction{
		ID:         uuid.New(),
		AccountID:  target.ID,
		Date:       parent.Date,
		Concept:    MirrorPrefix + parent.Concept,
		Amount:     sp.Amount,
		CategoryID: model.TransferCategory(),
		TransferID: &parent.ID,
		Notes:      sp.Notes,
		CreatedAt:  s.now().UTC(),
	}
	if err := q.InsertTransaction(ctx, mirror); err != nil {
		return nil, fmt.Errorf("inserting mirror: %w", err)
	}
	if err := q.AdjustBalance(ctx, target.ID, mirror.Amount); err != nil {
		return nil, fmt.Errorf("updating target balance: %w", err)
	}
	if err := q.LinkTransfer(ctx, parent.ID, mirror.ID); err != nil {
		return nil, fmt.Errorf("linking parent: %w", err)
	}
	parent.TransferID = &mirror.ID
	return mirror, nil
}

// removeMirrors deletes the mirrors created by the current split lines and
// reverts their balances.
func (s *Service) removeMirrors(ctx context.Context, q *store.Queries, owner uuid.UUID, parent *model.Transaction) error {
	old, err := q.ListSplits(ctx, parent.ID)
	if err != nil {
		return fmt.Errorf("loading splits: %w", err)
	}
	for _, sp := range old {
		if sp.MirrorTransactionID == nil {
			continue
		}
		mirror, err := q.GetTransaction(ctx, owner, *sp.MirrorTransactionID)
		if errors.Is(err, model.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("loading mirror: %w", err)
		}
		if err := q.DeleteTransactions(ctx, []uuid.UUID{mirror.ID}); err != nil {
			return fmt.Errorf("deleting mirror: %w", err)
		}
		if err := q.AdjustBalance(ctx, mirror.AccountID, mirror.Amount.Neg()); err != nil {
			return fmt.Errorf("reverting target balance: %w", err)
		}
		if parent.TransferID != nil && *parent.TransferID == mirror.ID {
			if err := q.ClearTransfer(ctx, parent.ID); err != nil {
				return err
			}
			parent.TransferID = nil
		}
	}
	return nil
}

// Remove deletes all split lines of a transaction. The category it had before
// splitting is not restored.
func (s *Service) Remove(ctx context.Context, owner, txnID uuid.UUID) error {
	err := s.store.InTx(ctx, func(ctx context.Context, q *store.Queries) error {
		parent, err := q.GetTransaction(ctx, owner, txnID)
		if err != nil {
			return fmt.Errorf("loading transaction: %w", err)
		}
		if err := s.removeMirrors(ctx, q, owner, parent); err != nil {
			return err
		}
		if err := q.DeleteSplits(ctx, parent.ID); err != nil {
			return fmt.Errorf("deleting splits: %w", err)
		}
		return q.SetSplit(ctx, parent.ID, false)
	})
	if err != nil {
		return err
	}
	log := logger.FromContext(ctx)
	log.Info().Str("transaction_id", txnID.String()).Msg("splits removed")
	return nil
}

// Splits returns the split lines of one of the owner's transactions.
func (s *Service) Splits(ctx context.Context, owner, txnID uuid.UUID) ([]model.TransactionSplit, error) {
	if _, err := s.store.GetTransaction(ctx, owner, txnID); err != nil {
		return nil, err
	}
	return s.store.ListSplits(ctx, txnID)
}

// Orphans returns the expenses that could be attached to parentID.
func (s *Service) Orphans(ctx context.Context, owner, parentID uuid.UUID) ([]model.Transaction, error) {
	parent, err := s.store.GetTransaction(ctx, owner, parentID)
	if err != nil {
		return nil, fmt.Errorf("loading transaction: %w", err)
	}
	from, to := s.window(parent.Date)
	return s.store.OrphanCandidates(ctx, parent.AccountID, parent.ID, from, to)
}

func (s *Service) window(date time.Time) (time.Time, time.Time) {
	w := time.Duration(s.windowDays) * 24 * time.Hour
	return date.Add(-w), date.Add(w)
}

// LinkOrphans attaches the listed transactions to parentID and returns how
// many were attached. Only rows Orphans would offer are attached; the rest are
// skipped. A parent that is itself a child cannot take children.
func (s *Service) LinkOrphans(ctx context.Context, owner, parentID uuid.UUID, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, model.Invalid("transaction_ids", "at least one transaction is required")
	}
	var n int
	err := s.store.InTx(ctx, func(ctx context.Context, q *store.Queries) error {
		parent, err := q.GetTransaction(ctx, owner, parentID)
		if err != nil {
			return fmt.Errorf("loading transaction: %w", err)
		}
		if parent.ParentTransactionID != nil {
			return model.Invalid("transaction_id", "transaction is already a child of %s", *parent.ParentTransactionID)
		}
		from, to := s.window(parent.Date)
		n, err = q.SetParent(ctx, parent.AccountID, parent.ID, ids, from, to)
		return err
	})
	if err != nil {
		return 0, err
	}
	log := logger.FromContext(ctx)
	log.Info().
		Str("transaction_id", parentID.String()).
		Int("linked", n).
		Msg("orphans linked")
	return n, nil
}

// CreateChild records a new transaction on the parent's account already
// attached to the parent.
func (s *Service) CreateChild(ctx context.Context, owner, parentID uuid.UUID, in ChildInput) (*model.Transaction, error) {
	concept := strings.TrimSpace(in.Concept)
	if concept == "" {
		return nil, model.Invalid("concept", "is required")
	}
	if in.Amount.IsZero() {
		return nil, model.Invalid("amount", "must not be zero")
	}

	var child *model.Transaction
	err := s.store.InTx(ctx, func(ctx context.Context, q *store.Queries) error {
		parent, err := q.GetTransaction(ctx, owner, parentID)
		if err != nil {
			return fmt.Errorf("loading transaction: %w", err)
		}
		if parent.ParentTransactionID != nil {
			return model.Invalid("transaction_id", "transaction is already a child of %s", *parent.ParentTransactionID)
		}
		if in.CategoryID != nil {
			if _, err := q.GetCategory(ctx, owner, *in.CategoryID); err != nil {
				if errors.Is(err, model.ErrNotFound) {
					return model.Invalid("category_id", "unknown category")
				}
				return err
			}
		}
		date := parent.Date
		if !in.Date.IsZero() {
			y, m, d := in.Date.Date()
			date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		}
		child = &model.Transaction{
			ID:                  uuid.New(),
			AccountID:           parent.AccountID,
			Date:                date,
			Concept:             concept,
			Amount:              in.Amount,
			CategoryID:          in.CategoryID,
			ParentTransactionID: &parent.ID,
			Notes:               strings.TrimSpace(in.Notes),
			CreatedAt:           s.now().UTC(),
		}
		if err := q.InsertTransaction(ctx, child); err != nil {
			return fmt.Errorf("inserting child: %w", err)
		}
		return q.AdjustBalance(ctx, parent.AccountID, child.Amount)
	})
	if err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx)
	log.Info().
		Str("transaction_id", parentID.String()).
		Str("child_id", child.ID.String()).
		Msg("child transaction created")
	return child, nil
}

// Status reports how much of parentID is explained. Split lines are used when
// the transaction is split, child transactions otherwise.
func (s *Service) Status(ctx context.Context, owner, parentID uuid.UUID) (Justification, error) {
	parent, err := s.store.GetTransaction(ctx, owner, parentID)
	if err != nil {
		return Justification{}, fmt.Errorf("loading transaction: %w", err)
	}
	var amounts []decimal.Decimal
	if parent.IsSplit {
		splits, err := s.store.ListSplits(ctx, parent.ID)
		if err != nil {
			return Justification{}, err
		}
		for _, sp := range splits {
			amounts = append(amounts, sp.Amount)
		}
	} else {
		children, err := s.store.Children(ctx, parent.ID)
		if err != nil {
			return Justification{}, err
		}
		for _, c := range children {
			amounts = append(amounts, c.Amount)
		}
	}
	return Justify(parent.Amount, amounts), nil
}
