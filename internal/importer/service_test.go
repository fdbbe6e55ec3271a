package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tesoro-dev/tesoro/internal/model"
	"github.com/tesoro-dev/tesoro/internal/store"
	"github.com/tesoro-dev/tesoro/internal/store/storetest"
)

var simpleMapping = model.ColumnMapping{
	Delimiter:     ";",
	DateColumn:    "Fecha",
	ConceptColumn: "Concepto",
	AmountColumn:  "Importe",
}

type memArchiver struct {
	files map[string]string
	err   error
}

func (a *memArchiver) Archive(_ context.Context, name string, r io.Reader) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if a.files == nil {
		a.files = map[string]string{}
	}
	a.files[name] = string(data)
	return "mem://" + name, nil
}

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	s := storetest.New(t)
	svc := NewService(s, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC) }
	return svc, s
}

func TestImport_EndToEnd(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	acct := storetest.Account(t, s, owner, "Nómina", model.AccountTypeChecking)
	groceries := storetest.Category(t, s, owner, "Supermercado")
	require.NoError(t, s.InsertRule(ctx, &model.CategoryRule{
		ID: uuid.New(), OwnerID: owner, Pattern: "mercadona", CategoryID: groceries.ID, CreatedAt: time.Now(),
	}))

	content := "Fecha;Importe;Concepto\nSALDO INICIAL;;\n05/03/2024;-45,00;COMPRA MERCADONA\n06/03/2024;1.910,45;NOMINA ACME\n"
	res, err := svc.Import(ctx, Request{
		Owner:     owner,
		AccountID: acct.ID,
		Filename:  "marzo.csv",
		Content:   []byte(content),
		Mapping:   &simpleMapping,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.Categorized)
	assert.Equal(t, 2, res.RowsRead)
	assert.Empty(t, res.Rejected)
	assert.Nil(t, res.TemplateID)

	batches, err := s.ListBatches(ctx, acct.ID)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, 2, batches[0].RowCount)
	assert.Equal(t, "marzo.csv", batches[0].Filename)

	txns, err := s.BatchTransactions(ctx, res.BatchID)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	for _, txn := range txns {
		assert.Equal(t, acct.ID, txn.AccountID)
		if strings.Contains(txn.Concept, "MERCADONA") {
			require.NotNil(t, txn.CategoryID)
			assert.Equal(t, groceries.ID, *txn.CategoryID)
			assert.Equal(t, "fecha original: 05/03/2024", txn.Notes)
		} else {
			assert.Nil(t, txn.CategoryID)
		}
	}

	got, err := s.GetAccount(ctx, owner, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, "1865.45", got.CurrentBalance.StringFixed(2))
}

func TestImport_RowCountMatchesValidRows(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	acct := storetest.Account(t, s, owner, "Cuenta", model.AccountTypeChecking)

	var b strings.Builder
	b.WriteString("Fecha;Importe;Concepto\n")
	for i := 1; i <= 40; i++ {
		switch i {
		case 7:
			b.WriteString("31/02/2024;-1,00;BAD DATE\n")
		case 19:
			b.WriteString("02/02/2024;;NO AMOUNT\n")
		case 33:
			b.WriteString("03/02/2024;abc;BAD AMOUNT\n")
		default:
			fmt.Fprintf(&b, "%02d/02/2024;-%d,00;COMPRA %d\n", i%28+1, i, i)
		}
	}

	res, err := svc.Import(ctx, Request{Owner: owner, AccountID: acct.ID, Filename: "feb.csv", Content: []byte(b.String()), Mapping: &simpleMapping})
	require.NoError(t, err)
	assert.Equal(t, 40, res.RowsRead)
	assert.Equal(t, 37, res.Imported)
	assert.Len(t, res.Rejected, 3)

	batches, err := s.ListBatches(ctx, acct.ID)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, 37, batches[0].RowCount)
}

func TestImport_CreditCardFiltersCashWithdrawals(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	card := storetest.Account(t, s, owner, "Visa", model.AccountTypeCreditCard)
	data, err := os.ReadFile("../../testdata/card_es.csv")
	require.NoError(t, err)

	mapping := cardMapping
	res, err := svc.Import(ctx, Request{Owner: owner, AccountID: card.ID, Filename: "card_es.csv", Content: data, Mapping: &mapping})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.Filtered)

	txns, err := s.BatchTransactions(ctx, res.BatchID)
	require.NoError(t, err)
	for _, txn := range txns {
		assert.NotContains(t, strings.ToUpper(txn.Concept), "CAJERO")
	}

	// The same file on a checking account keeps the withdrawal.
	checking := storetest.Account(t, s, owner, "Corriente", model.AccountTypeChecking)
	res, err = svc.Import(ctx, Request{Owner: owner, AccountID: checking.ID, Filename: "card_es.csv", Content: data, Mapping: &mapping})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Imported)
	assert.Equal(t, 0, res.Filtered)
}

func TestImport_SaveTemplateLinksAccount(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	acct := storetest.Account(t, s, owner, "Cuenta", model.AccountTypeChecking)
	data, err := os.ReadFile("../../testdata/checking_es.csv")
	require.NoError(t, err)

	mapping := checkingMapping
	res, err := svc.Import(ctx, Request{
		Owner: owner, AccountID: acct.ID, Filename: "checking_es.csv", Content: data,
		Mapping: &mapping, SaveTemplate: true,
	})
	require.NoError(t, err)
	require.NotNil(t, res.TemplateID)
	assert.Equal(t, 5, res.Imported)

	tpl, err := svc.Template(ctx, owner, *res.TemplateID)
	require.NoError(t, err)
	assert.Equal(t, "checking_es", tpl.Name)
	assert.Equal(t, "Saldo", tpl.BalanceColumn)

	got, err := s.GetAccount(ctx, owner, acct.ID)
	require.NoError(t, err)
	require.NotNil(t, got.TemplateID)
	assert.Equal(t, *res.TemplateID, *got.TemplateID)
	assert.Equal(t, "1618.05", got.CurrentBalance.StringFixed(2))

	// A later upload can rely on the linked template.
	res2, err := svc.Import(ctx, Request{Owner: owner, AccountID: acct.ID, Filename: "abril.csv", Content: data})
	require.NoError(t, err)
	assert.Equal(t, *res.TemplateID, *res2.TemplateID)

	batches, err := svc.ListBatches(ctx, owner, acct.ID)
	require.NoError(t, err)
	assert.Len(t, batches, 2)

	// The template is now referenced by import batches.
	assert.ErrorIs(t, svc.DeleteTemplate(ctx, owner, tpl.ID), model.ErrHasDependents)
}

func TestImport_FailureRollsBackEverything(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	acct := storetest.Account(t, s, owner, "Cuenta", model.AccountTypeChecking)

	// Break the transactions table so the insert after the ledger row fails.
	_, err := s.DB().NewDropTable().Model((*model.Transaction)(nil)).Exec(ctx)
	require.NoError(t, err)

	mapping := simpleMapping
	_, err = svc.Import(ctx, Request{
		Owner: owner, AccountID: acct.ID, Filename: "x.csv", Mapping: &mapping, SaveTemplate: true,
		Content: []byte("Fecha;Importe;Concepto\n05/03/2024;-45,00;COMPRA\n"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inserting transactions")

	batches, err := s.ListBatches(ctx, acct.ID)
	require.NoError(t, err)
	assert.Empty(t, batches)

	tpls, err := s.ListTemplates(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, tpls)

	got, err := s.GetAccount(ctx, owner, acct.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TemplateID)
	assert.True(t, got.CurrentBalance.IsZero())
}

func TestImport_Validation(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	acct := storetest.Account(t, s, owner, "Cuenta", model.AccountTypeChecking)
	content := []byte("Fecha;Importe;Concepto\n05/03/2024;-45,00;COMPRA\n")
	mapping := simpleMapping
	tplID := uuid.New()

	tests := []struct {
		name string
		req  Request
	}{
		{"empty file", Request{Owner: owner, AccountID: acct.ID, Content: []byte("  \n"), Mapping: &mapping}},
		{"no template", Request{Owner: owner, AccountID: acct.ID, Content: content}},
		{"save without mapping", Request{Owner: owner, AccountID: acct.ID, Content: content, SaveTemplate: true}},
		{"template and mapping", Request{Owner: owner, AccountID: acct.ID, Content: content, Mapping: &mapping, TemplateID: &tplID}},
		{"unknown column", Request{Owner: owner, AccountID: acct.ID, Content: content, Mapping: &model.ColumnMapping{
			DateColumn: "Fecha", ConceptColumn: "Descripcion", AmountColumn: "Importe",
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Import(ctx, tt.req)
			require.Error(t, err)
			assert.True(t, model.IsValidation(err), "got %v", err)
		})
	}
}

func TestImport_UnknownAccount(t *testing.T) {
	svc, s := newTestService(t)
	acct := storetest.Account(t, s, uuid.New(), "Cuenta", model.AccountTypeChecking)
	_, err := svc.Import(context.Background(), Request{
		Owner: uuid.New(), AccountID: acct.ID, Content: []byte("x"), Mapping: &simpleMapping,
	})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestImport_Archives(t *testing.T) {
	svc, s := newTestService(t)
	arch := &memArchiver{}
	svc.archiver = arch
	ctx := context.Background()
	owner := uuid.New()
	acct := storetest.Account(t, s, owner, "Cuenta", model.AccountTypeChecking)
	content := "Fecha;Importe;Concepto\n05/03/2024;-45,00;COMPRA\n"

	res, err := svc.Import(ctx, Request{Owner: owner, AccountID: acct.ID, Filename: "dir/marzo.csv", Content: []byte(content), Mapping: &simpleMapping})
	require.NoError(t, err)

	name := fmt.Sprintf("%s/2024/03/%s-marzo.csv", acct.ID, res.BatchID)
	assert.Equal(t, "mem://"+name, res.ArchivedAs)
	assert.Equal(t, content, arch.files[name])
}

func TestImport_ArchiveFailureIsNotFatal(t *testing.T) {
	svc, s := newTestService(t)
	svc.archiver = &memArchiver{err: fmt.Errorf("bucket unavailable")}
	owner := uuid.New()
	acct := storetest.Account(t, s, owner, "Cuenta", model.AccountTypeChecking)

	res, err := svc.Import(context.Background(), Request{
		Owner: owner, AccountID: acct.ID, Filename: "m.csv", Mapping: &simpleMapping,
		Content: []byte("Fecha;Importe;Concepto\n05/03/2024;-45,00;COMPRA\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Empty(t, res.ArchivedAs)
}

func TestUndoBatch(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	acct := storetest.Account(t, s, owner, "Cuenta", model.AccountTypeChecking)
	storetest.Transaction(t, s, acct.ID, storetest.Date(2024, 2, 1), "100.00", "MANUAL")

	res, err := svc.Import(ctx, Request{
		Owner: owner, AccountID: acct.ID, Filename: "m.csv", Mapping: &simpleMapping,
		Content: []byte("Fecha;Importe;Concepto\n05/03/2024;-45,00;COMPRA\n06/03/2024;-5,00;CAFE\n"),
	})
	require.NoError(t, err)

	n, err := svc.UndoBatch(ctx, owner, res.BatchID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	txns, err := s.ListTransactions(ctx, acct.ID)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "MANUAL", txns[0].Concept)

	got, err := s.GetAccount(ctx, owner, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, "100.00", got.CurrentBalance.StringFixed(2))

	_, err = svc.UndoBatch(ctx, owner, res.BatchID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUndoBatch_RefusesSplitTransactions(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	acct := storetest.Account(t, s, owner, "Cuenta", model.AccountTypeChecking)

	res, err := svc.Import(ctx, Request{
		Owner: owner, AccountID: acct.ID, Filename: "m.csv", Mapping: &simpleMapping,
		Content: []byte("Fecha;Importe;Concepto\n05/03/2024;-45,00;COMPRA\n"),
	})
	require.NoError(t, err)
	txns, err := s.BatchTransactions(ctx, res.BatchID)
	require.NoError(t, err)
	require.NoError(t, s.SetSplit(ctx, txns[0].ID, true))

	_, err = svc.UndoBatch(ctx, owner, res.BatchID)
	assert.ErrorIs(t, err, model.ErrHasDependents)
}

func TestTemplates_CRUD(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	acct := storetest.Account(t, s, owner, "Cuenta", model.AccountTypeChecking)

	tpl, err := svc.CreateTemplate(ctx, owner, "Santander", simpleMapping)
	require.NoError(t, err)

	edited := simpleMapping
	edited.InvertSign = true
	updated, err := svc.UpdateTemplate(ctx, owner, tpl.ID, "", edited)
	require.NoError(t, err)
	assert.Equal(t, "Santander", updated.Name)

	got, err := svc.Template(ctx, owner, tpl.ID)
	require.NoError(t, err)
	assert.True(t, got.InvertSign)

	require.NoError(t, svc.LinkTemplate(ctx, owner, acct.ID, tpl.ID))
	res, err := svc.Import(ctx, Request{
		Owner: owner, AccountID: acct.ID, Filename: "m.csv",
		Content: []byte("Fecha;Importe;Concepto\n05/03/2024;45,00;COMPRA\n"),
	})
	require.NoError(t, err)
	txns, err := s.BatchTransactions(ctx, res.BatchID)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "-45.00", txns[0].Amount.StringFixed(2))

	_, err = svc.CreateTemplate(ctx, owner, "", simpleMapping)
	assert.True(t, model.IsValidation(err))

	other, err := svc.CreateTemplate(ctx, owner, "Unused", simpleMapping)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteTemplate(ctx, owner, other.ID))
	list, err := svc.Templates(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
