package importer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tesoro-dev/tesoro/internal/categorize"
	"github.com/tesoro-dev/tesoro/internal/logger"
	"github.com/tesoro-dev/tesoro/internal/model"
	"github.com/tesoro-dev/tesoro/internal/store"
)

// Archiver keeps a copy of every imported statement file.
type Archiver interface {
	Archive(ctx context.Context, name string, r io.Reader) (string, error)
}

// Service imports statement files into accounts.
type Service struct {
	store    *store.Store
	archiver Archiver
	now      func() time.Time
}

// NewService creates an import Service. archiver may be nil.
func NewService(s *store.Store, archiver Archiver) *Service {
	return &Service{store: s, archiver: archiver, now: time.Now}
}

// Request describes one statement upload. The mapping comes from TemplateID,
// else Mapping, else the account's linked template.
type Request struct {
	Owner        uuid.UUID
	AccountID    uuid.UUID
	Filename     string
	Content      []byte
	TemplateID   *uuid.UUID
	Mapping      *model.ColumnMapping
	SaveTemplate bool   // store Mapping as a template and link it to the account
	TemplateName string // defaults to the file name
}

// Result summarizes an import.
type Result struct {
	BatchID     uuid.UUID   `json:"batch_id"`
	TemplateID  *uuid.UUID  `json:"template_id,omitempty"`
	RowsRead    int         `json:"rows_read"`
	Imported    int         `json:"imported"`
	Categorized int         `json:"categorized"`
	Filtered    int         `json:"filtered"`
	Rejected    []Rejection `json:"rejected,omitempty"`
	ArchivedAs  string      `json:"archived_as,omitempty"`
}

// Import parses a statement file and records it as one import batch. The
// batch, its transactions, the optional template and the balance change are
// written in a single database transaction.
func (s *Service) Import(ctx context.Context, req Request) (*Result, error) {
	log := logger.FromContext(ctx).With().
		Str("account_id", req.AccountID.String()).
		Str("filename", req.Filename).
		Logger()

	if len(bytes.TrimSpace(req.Content)) == 0 {
		return nil, model.Invalid("file", "is empty")
	}
	if req.SaveTemplate && req.Mapping == nil {
		return nil, model.Invalid("template", "saving a template requires a column mapping")
	}
	if req.TemplateID != nil && req.Mapping != nil {
		return nil, model.Invalid("template", "give either a template id or a column mapping, not both")
	}

	acct, err := s.store.GetAccount(ctx, req.Owner, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("loading account: %w", err)
	}
	mapping, templateID, err := s.pickMapping(ctx, req, acct)
	if err != nil {
		return nil, err
	}

	st, err := ReadStatement(req.Content, mapping)
	if err != nil {
		return nil, err
	}

	rules, err := s.store.ListRules(ctx, req.Owner)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	matcher := categorize.New(rules)

	now := s.now().UTC()
	batchID := uuid.New()
	res := &Result{
		BatchID:  batchID,
		RowsRead: len(st.Rows) + len(st.Rejected),
		Rejected: st.Rejected,
	}

	txns := make([]model.Transaction, 0, len(st.Rows))
	total := decimal.Zero
	for _, row := range st.Rows {
		if acct.Type == model.AccountTypeCreditCard && categorize.IsCashWithdrawal(row.Concept) {
			res.Filtered++
			continue
		}
		txn := model.Transaction{
			ID:          uuid.New(),
			AccountID:   acct.ID,
			Date:        row.Date,
			Concept:     row.Concept,
			Amount:      row.Amount,
			ImporterID:  &batchID,
			BankBalance: row.Balance,
			Notes:       row.Note,
			CreatedAt:   now,
		}
		if cat := matcher.Match(row.Concept); cat != nil {
			txn.CategoryID = cat
			res.Categorized++
		}
		total = total.Add(row.Amount)
		txns = append(txns, txn)
	}

	err = s.store.InTx(ctx, func(ctx context.Context, q *store.Queries) error {
		if req.SaveTemplate {
			tpl := newTemplate(req.Owner, templateName(req), mapping, now)
			if err := q.InsertTemplate(ctx, tpl); err != nil {
				return fmt.Errorf("saving template: %w", err)
			}
			if err := q.SetAccountTemplate(ctx, acct.ID, tpl.ID); err != nil {
				return fmt.Errorf("linking template: %w", err)
			}
			templateID = &tpl.ID
		}

		batch := &model.ImportBatch{
			ID:         batchID,
			AccountID:  acct.ID,
			TemplateID: templateID,
			Filename:   req.Filename,
			ImportDate: now,
		}
		if err := q.InsertBatch(ctx, batch); err != nil {
			return fmt.Errorf("creating import batch: %w", err)
		}
		if err := q.InsertTransactions(ctx, txns); err != nil {
			return fmt.Errorf("inserting transactions: %w", err)
		}
		if err := q.SetBatchRowCount(ctx, batchID, len(txns)); err != nil {
			return fmt.Errorf("updating row count: %w", err)
		}
		if err := q.AdjustBalance(ctx, acct.ID, total); err != nil {
			return fmt.Errorf("updating balance: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.TemplateID = templateID
	res.Imported = len(txns)

	if s.archiver != nil {
		name := ArchiveName(acct.ID, batchID, req.Filename, now)
		key, err := s.archiver.Archive(ctx, name, bytes.NewReader(req.Content))
		if err != nil {
			log.Warn().Err(err).Str("batch_id", batchID.String()).Msg("archiving statement failed")
		} else {
			res.ArchivedAs = key
		}
	}

	log.Info().
		Str("batch_id", batchID.String()).
		Int("imported", res.Imported).
		Int("categorized", res.Categorized).
		Int("filtered", res.Filtered).
		Int("rejected", len(res.Rejected)).
		Msg("statement imported")
	return res, nil
}

func (s *Service) pickMapping(ctx context.Context, req Request, acct *model.Account) (model.ColumnMapping, *uuid.UUID, error) {
	id := req.TemplateID
	if id == nil && req.Mapping != nil {
		return *req.Mapping, nil, nil
	}
	if id == nil {
		id = acct.TemplateID
	}
	if id == nil {
		return model.ColumnMapping{}, nil, model.Invalid("template", "no template given and the account has no linked template")
	}
	tpl, err := s.store.GetTemplate(ctx, req.Owner, *id)
	if err != nil {
		return model.ColumnMapping{}, nil, fmt.Errorf("loading template: %w", err)
	}
	return tpl.ColumnMapping, &tpl.ID, nil
}

// ArchiveName is the storage key of an imported file:
// <account>/<yyyy>/<mm>/<batch>-<filename>.
func ArchiveName(accountID, batchID uuid.UUID, filename string, at time.Time) string {
	base := filepath.Base(filename)
	if base == "." || base == string(filepath.Separator) {
		base = "statement.csv"
	}
	return path.Join(accountID.String(), at.Format("2006"), at.Format("01"), batchID.String()+"-"+base)
}

func templateName(req Request) string {
	if name := strings.TrimSpace(req.TemplateName); name != "" {
		return name
	}
	base := filepath.Base(req.Filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ListBatches returns the import history of an account, newest first.
func (s *Service) ListBatches(ctx context.Context, owner, accountID uuid.UUID) ([]model.ImportBatch, error) {
	if _, err := s.store.GetAccount(ctx, owner, accountID); err != nil {
		return nil, fmt.Errorf("loading account: %w", err)
	}
	return s.store.ListBatches(ctx, accountID)
}

// UndoBatch deletes an import batch with its transactions and reverts the
// account balance. Batches whose transactions were since split, linked as
// transfers or given children cannot be undone.
func (s *Service) UndoBatch(ctx context.Context, owner, batchID uuid.UUID) (int, error) {
	batch, err := s.store.GetBatch(ctx, owner, batchID)
	if err != nil {
		return 0, fmt.Errorf("loading import batch: %w", err)
	}

	var removed int
	err = s.store.InTx(ctx, func(ctx context.Context, q *store.Queries) error {
		txns, err := q.BatchTransactions(ctx, batch.ID)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(txns))
		total := decimal.Zero
		for _, txn := range txns {
			if txn.IsSplit || txn.Linked() {
				return model.ErrHasDependents
			}
			ids = append(ids, txn.ID)
			total = total.Add(txn.Amount)
		}
		if err := q.DeleteTransactions(ctx, ids); err != nil {
			return err
		}
		if err := q.DeleteBatch(ctx, batch.ID); err != nil {
			return err
		}
		removed = len(ids)
		return q.AdjustBalance(ctx, batch.AccountID, total.Neg())
	})
	if err != nil {
		return 0, err
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("batch_id", batch.ID.String()).
		Int("removed", removed).
		Msg("import batch undone")
	return removed, nil
}
