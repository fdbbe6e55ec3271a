// Package transfer pairs the two sides of money moved between an owner's accounts.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tesoro-dev/tesoro/internal/logger"
	"github.com/tesoro-dev/tesoro/internal/model"
	"github.com/tesoro-dev/tesoro/internal/store"
)

// MirrorPrefix starts the concept of an automatically created mirror transaction.
const MirrorPrefix = "VÍNCULO: "

// DefaultWindowDays is how far apart two sides of a transfer may be dated.
const DefaultWindowDays = 5

// Service links and mirrors transfers.
type Service struct {
	store      *store.Store
	windowDays int
	now        func() time.Time
}

// NewService creates a transfer Service. windowDays <= 0 uses DefaultWindowDays.
func NewService(s *store.Store, windowDays int) *Service {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &Service{store: s, windowDays: windowDays, now: time.Now}
}

// MirrorResult describes what Mirror did.
type MirrorResult struct {
	Source *model.Transaction `json:"source"`
	Mirror *model.Transaction `json:"mirror,omitempty"` // nil when the target does not auto-mirror
}

// Mirror marks a transaction as a transfer to targetAccountID. When the target
// account has auto-mirroring enabled, a counterpart with the opposite amount is
// created there and both sides are linked; otherwise only the source is
// recategorized.
func (s *Service) Mirror(ctx context.Context, owner, sourceID, targetAccountID uuid.UUID) (*MirrorResult, error) {
	res := &MirrorResult{}
	err := s.store.InTx(ctx, func(ctx context.Context, q *store.Queries) error {
		src, err := q.GetTransaction(ctx, owner, sourceID)
		if err != nil {
			return fmt.Errorf("loading transaction: %w", err)
		}
		if src.Linked() {
			return model.ErrAlreadyLinked
		}
		if src.IsSplit {
			return model.Invalid("transaction_id", "transaction is split: use a transfer split line instead")
		}
		if src.AccountID == targetAccountID {
			return model.Invalid("target_account_id", "must differ from the transaction's account")
		}
		target, err := q.GetAccount(ctx, owner, targetAccountID)
		if err != nil {
			return fmt.Errorf("loading target account: %w", err)
		}

		if !target.AutoMirrorTransfers {
			if err := q.SetCategory(ctx, src.ID, model.TransferCategory()); err != nil {
				return err
			}
			src.CategoryID = model.TransferCategory()
			res.Source = src
			return nil
		}

		mirror := &model.Transaction{
			ID:         uuid.New(),
			AccountID:  target.ID,
			Date:       src.Date,
			Concept:    MirrorPrefix + src.Concept,
			Amount:     src.Amount.Neg(),
			CategoryID: model.TransferCategory(),
			TransferID: &src.ID,
			CreatedAt:  s.now().UTC(),
		}
		if err := q.InsertTransaction(ctx, mirror); err != nil {
			return fmt.Errorf("inserting mirror: %w", err)
		}
		if err := q.LinkTransfer(ctx, src.ID, mirror.ID); err != nil {
			return fmt.Errorf("linking source: %w", err)
		}
		if err := q.AdjustBalance(ctx, target.ID, mirror.Amount); err != nil {
			return fmt.Errorf("updating target balance: %w", err)
		}
		src.TransferID = &mirror.ID
		src.CategoryID = model.TransferCategory()
		res.Source = src
		res.Mirror = mirror
		return nil
	})
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	ev := log.Info().
		Str("transaction_id", sourceID.String()).
		Str("target_account_id", targetAccountID.String())
	if res.Mirror != nil {
		ev = ev.Str("mirror_id", res.Mirror.ID.String())
	}
	ev.Msg("transfer mirrored")
	return res, nil
}

// Candidates returns unlinked transactions on the owner's other accounts whose
// amount is the exact opposite and whose date is within the window, nearest
// date first.
func (s *Service) Candidates(ctx context.Context, owner, txnID uuid.UUID) ([]model.Transaction, error) {
	txn, err := s.store.GetTransaction(ctx, owner, txnID)
	if err != nil {
		return nil, fmt.Errorf("loading transaction: %w", err)
	}
	window := time.Duration(s.windowDays) * 24 * time.Hour
	all, err := s.store.TransferCandidates(ctx, owner, txn.AccountID, txn.Date.Add(-window), txn.Date.Add(window))
	if err != nil {
		return nil, fmt.Errorf("searching candidates: %w", err)
	}

	want := txn.Amount.Neg()
	var out []model.Transaction
	for _, c := range all {
		if c.Amount.Equal(want) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return distance(out[i].Date, txn.Date) < distance(out[j].Date, txn.Date)
	})
	return out, nil
}

func distance(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		return -d
	}
	return d
}

// Link pairs two existing transactions on different accounts as the two
// sides of one transfer. A split side is linked but keeps no category.
func (s *Service) Link(ctx context.Context, owner, aID, bID uuid.UUID) error {
	if aID == bID {
		return model.Invalid("transaction_id", "cannot link a transaction to itself")
	}
	err := s.store.InTx(ctx, func(ctx context.Context, q *store.Queries) error {
		a, err := q.GetTransaction(ctx, owner, aID)
		if err != nil {
			return fmt.Errorf("loading transaction: %w", err)
		}
		b, err := q.GetTransaction(ctx, owner, bID)
		if err != nil {
			return fmt.Errorf("loading counterpart: %w", err)
		}
		if a.Linked() || b.Linked() {
			return model.ErrAlreadyLinked
		}
		if a.AccountID == b.AccountID {
			return model.Invalid("counterpart_id", "both sides are on the same account")
		}
		if err := q.LinkTransfer(ctx, a.ID, b.ID); err != nil {
			return err
		}
		return q.LinkTransfer(ctx, b.ID, a.ID)
	})
	if err != nil {
		return err
	}
	log := logger.FromContext(ctx)
	log.Info().
		Str("transaction_id", aID.String()).
		Str("counterpart_id", bID.String()).
		Msg("transfer linked")
	return nil
}

// Unlink clears the transfer link on both sides. Categories are kept.
func (s *Service) Unlink(ctx context.Context, owner, txnID uuid.UUID) error {
	return s.store.InTx(ctx, func(ctx context.Context, q *store.Queries) error {
		txn, err := q.GetTransaction(ctx, owner, txnID)
		if err != nil {
			return fmt.Errorf("loading transaction: %w", err)
		}
		if !txn.Linked() {
			return model.Invalid("transaction_id", "transaction is not linked")
		}
		if err := q.ClearTransfer(ctx, txn.ID); err != nil {
			return err
		}
		other, err := q.GetTransaction(ctx, owner, *txn.TransferID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return nil
			}
			return err
		}
		if other.TransferID != nil && *other.TransferID == txn.ID {
			return q.ClearTransfer(ctx, other.ID)
		}
		return nil
	})
}
