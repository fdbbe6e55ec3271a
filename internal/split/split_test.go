package split

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tesoro-dev/tesoro/internal/model"
	"github.com/tesoro-dev/tesoro/internal/store"
	"github.com/tesoro-dev/tesoro/internal/store/storetest"
)

type fixture struct {
	store *store.Store
	svc   *Service
	owner uuid.UUID
	acct  *model.Account
	loan  *model.Account
	food  *model.Category
	home  *model.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := storetest.New(t)
	owner := uuid.New()
	return &fixture{
		store: s,
		svc:   NewService(s, 0),
		owner: owner,
		acct:  storetest.Account(t, s, owner, "Visa", model.AccountTypeCreditCard),
		loan:  storetest.Account(t, s, owner, "Hipoteca", model.AccountTypeLoan),
		food:  storetest.Category(t, s, owner, "Comida"),
		home:  storetest.Category(t, s, owner, "Casa"),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSplit_ReplacesLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := storetest.Transaction(t, f.store, f.acct.ID, storetest.Date(2024, 3, 1), "-500.00", "LIQUIDACION TARJETA")
	require.NoError(t, f.store.SetCategory(ctx, parent.ID, &f.food.ID))

	_, err := f.svc.Split(ctx, f.owner, parent.ID, []Line{
		{CategoryID: f.food.ID, Amount: dec("100")},
		{CategoryID: f.home.ID, Amount: dec("100")},
	})
	require.NoError(t, err)

	lines, err := f.svc.Split(ctx, f.owner, parent.ID, []Line{
		{CategoryID: f.food.ID, Amount: dec("120")},
		{CategoryID: f.home.ID, Amount: dec("380"), Notes: " muebles "},
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "muebles", lines[1].Notes)

	stored, err := f.svc.Splits(ctx, f.owner, parent.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	got, err := f.store.GetTransaction(ctx, f.owner, parent.ID)
	require.NoError(t, err)
	assert.True(t, got.IsSplit)
	assert.Nil(t, got.CategoryID)

	status, err := f.svc.Status(ctx, f.owner, parent.ID)
	require.NoError(t, err)
	assert.True(t, status.Full)
	assert.Equal(t, "0.00", status.Remaining.StringFixed(2))
}

func TestSplit_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := storetest.Transaction(t, f.store, f.acct.ID, storetest.Date(2024, 3, 1), "-500.00", "LIQUIDACION")

	tests := []struct {
		name  string
		lines []Line
		field string
	}{
		{"no lines", nil, "lines"},
		{"missing category", []Line{{CategoryID: f.food.ID, Amount: dec("1")}, {Amount: dec("5")}}, "lines[1].category_id"},
		{"zero amount", []Line{{CategoryID: f.food.ID, Amount: decimal.Zero}}, "lines[0].amount"},
		{"negative amount", []Line{{CategoryID: f.food.ID, Amount: dec("-5")}}, "lines[0].amount"},
		{"over total", []Line{{CategoryID: f.food.ID, Amount: dec("300")}, {CategoryID: f.home.ID, Amount: dec("200.02")}}, "lines"},
		{"unknown category", []Line{{CategoryID: uuid.New(), Amount: dec("5")}}, "lines[0].category_id"},
		{"two mirrored transfers", []Line{
			{CategoryID: model.TransferCategoryID, Amount: dec("100"), TargetAccountID: &f.loan.ID},
			{CategoryID: model.TransferCategoryID, Amount: dec("50"), TargetAccountID: &f.loan.ID},
		}, "lines[1].target_account_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Split(ctx, f.owner, parent.ID, tt.lines)
			var verr *model.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	got, err := f.store.GetTransaction(ctx, f.owner, parent.ID)
	require.NoError(t, err)
	assert.False(t, got.IsSplit)
}

func TestSplit_WithinTolerance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := storetest.Transaction(t, f.store, f.acct.ID, storetest.Date(2024, 3, 1), "-500.00", "LIQUIDACION")

	_, err := f.svc.Split(ctx, f.owner, parent.ID, []Line{{CategoryID: f.food.ID, Amount: dec("500.01")}})
	assert.NoError(t, err)
}

func TestSplit_TransferLineCreatesMirror(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := storetest.Transaction(t, f.store, f.acct.ID, storetest.Date(2024, 3, 1), "-500.00", "RECIBO")

	lines, err := f.svc.Split(ctx, f.owner, parent.ID, []Line{
		{CategoryID: f.food.ID, Amount: dec("200")},
		{CategoryID: model.TransferCategoryID, Amount: dec("300"), TargetAccountID: &f.loan.ID},
	})
	require.NoError(t, err)
	require.NotNil(t, lines[1].MirrorTransactionID)
	assert.Nil(t, lines[0].MirrorTransactionID)

	mirror, err := f.store.GetTransaction(ctx, f.owner, *lines[1].MirrorTransactionID)
	require.NoError(t, err)
	assert.Equal(t, f.loan.ID, mirror.AccountID)
	assert.Equal(t, "AMORT: RECIBO", mirror.Concept)
	assert.Equal(t, "300.00", mirror.Amount.StringFixed(2))
	assert.True(t, parent.Date.Equal(mirror.Date))
	assert.Equal(t, parent.ID, *mirror.TransferID)
	assert.Equal(t, model.TransferCategoryID, *mirror.CategoryID)

	got, err := f.store.GetTransaction(ctx, f.owner, parent.ID)
	require.NoError(t, err)
	require.NotNil(t, got.TransferID)
	assert.Equal(t, mirror.ID, *got.TransferID)
	assert.Nil(t, got.CategoryID)

	loan, err := f.store.GetAccount(ctx, f.owner, f.loan.ID)
	require.NoError(t, err)
	assert.Equal(t, "300.00", loan.CurrentBalance.StringFixed(2))

	// Replacing the lines drops the old mirror.
	_, err = f.svc.Split(ctx, f.owner, parent.ID, []Line{{CategoryID: f.food.ID, Amount: dec("500")}})
	require.NoError(t, err)
	_, err = f.store.GetTransaction(ctx, f.owner, mirror.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	loan, err = f.store.GetAccount(ctx, f.owner, f.loan.ID)
	require.NoError(t, err)
	assert.True(t, loan.CurrentBalance.IsZero())
	got, err = f.store.GetTransaction(ctx, f.owner, parent.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TransferID)
}

func TestSplit_TransferLineValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := storetest.Transaction(t, f.store, f.acct.ID, storetest.Date(2024, 3, 1), "-500.00", "RECIBO")

	_, err := f.svc.Split(ctx, f.owner, parent.ID, []Line{
		{CategoryID: model.TransferCategoryID, Amount: dec("100"), TargetAccountID: &f.acct.ID},
	})
	assert.True(t, model.IsValidation(err))

	missing := uuid.New()
	_, err = f.svc.Split(ctx, f.owner, parent.ID, []Line{
		{CategoryID: model.TransferCategoryID, Amount: dec("100"), TargetAccountID: &missing},
	})
	assert.True(t, model.IsValidation(err))

	other := storetest.Transaction(t, f.store, f.loan.ID, storetest.Date(2024, 3, 1), "500.00", "PAGO")
	require.NoError(t, f.store.LinkTransfer(ctx, parent.ID, other.ID))
	_, err = f.svc.Split(ctx, f.owner, parent.ID, []Line{
		{CategoryID: model.TransferCategoryID, Amount: dec("100"), TargetAccountID: &f.loan.ID},
	})
	assert.ErrorIs(t, err, model.ErrAlreadyLinked)
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := storetest.Transaction(t, f.store, f.acct.ID, storetest.Date(2024, 3, 1), "-500.00", "RECIBO")
	lines, err := f.svc.Split(ctx, f.owner, parent.ID, []Line{
		{CategoryID: f.food.ID, Amount: dec("200")},
		{CategoryID: model.TransferCategoryID, Amount: dec("300"), TargetAccountID: &f.loan.ID},
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Remove(ctx, f.owner, parent.ID))

	got, err := f.store.GetTransaction(ctx, f.owner, parent.ID)
	require.NoError(t, err)
	assert.False(t, got.IsSplit)
	assert.Nil(t, got.CategoryID)
	assert.Nil(t, got.TransferID)

	splits, err := f.svc.Splits(ctx, f.owner, parent.ID)
	require.NoError(t, err)
	assert.Empty(t, splits)

	_, err = f.store.GetTransaction(ctx, f.owner, *lines[1].MirrorTransactionID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	assert.ErrorIs(t, f.svc.Remove(ctx, uuid.New(), parent.ID), model.ErrNotFound)
}

func TestOrphansAndLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := storetest.Transaction(t, f.store, f.acct.ID, storetest.Date(2024, 3, 10), "-500.00", "LIQUIDACION")
	a := storetest.Transaction(t, f.store, f.acct.ID, storetest.Date(2024, 3, 8), "-120.00", "MERCADONA")
	b := storetest.Transaction(t, f.store, f.acct.ID, storetest.Date(2024, 3, 15), "-200.00", "IKEA")
	storetest.Transaction(t, f.store, f.acct.ID, storetest.Date(2024, 3, 16), "-10.00", "TOO LATE")
	storetest.Transaction(t, f.store, f.acct.ID, storetest.Date(2024, 3, 10), "50.00", "INCOME")
	storetest.Transaction(t, f.store, f.loan.ID, storetest.Date(2024, 3, 10), "-50.00", "OTHER ACCOUNT")

	orphans, err := f.svc.Orphans(ctx, f.owner, parent.ID)
	require.NoError(t, err)
	require.Len(t, orphans, 2)
	assert.Equal(t, a.ID, orphans[0].ID)
	assert.Equal(t, b.ID, orphans[1].ID)

	foreign := storetest.Transaction(t, f.store, f.loan.ID, storetest.Date(2024, 3, 10), "-1.00", "X")
	n, err := f.svc.LinkOrphans(ctx, f.owner, parent.ID, []uuid.UUID{a.ID, b.ID, foreign.ID, parent.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	orphans, err = f.svc.Orphans(ctx, f.owner, parent.ID)
	require.NoError(t, err)
	assert.Empty(t, orphans)

	n, err = f.svc.LinkOrphans(ctx, f.owner, parent.ID, []uuid.UUID{a.ID})
	require.NoError(t, err)
	assert.Zero(t, n)

	status, err := f.svc.Status(ctx, f.owner, parent.ID)
	require.NoError(t, err)
	assert.False(t, status.Full)
	assert.Equal(t, "180.00", status.Remaining.StringFixed(2))

	_, err = f.svc.LinkOrphans(ctx, f.owner, parent.ID, nil)
	assert.True(t, model.IsValidation(err))
}

func TestCreateChild(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := storetest.Transaction(t, f.store, f.acct.ID, storetest.Date(2024, 3, 10), "-500.00", "LIQUIDACION")

	child, err := f.svc.CreateChild(ctx, f.owner, parent.ID, ChildInput{
		Concept:    " Cena ",
		Amount:     dec("-500"),
		CategoryID: &f.food.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Cena", child.Concept)
	assert.True(t, parent.Date.Equal(child.Date))
	assert.Equal(t, parent.ID, *child.ParentTransactionID)
	assert.Equal(t, f.acct.ID, child.AccountID)

	acct, err := f.store.GetAccount(ctx, f.owner, f.acct.ID)
	require.NoError(t, err)
	assert.Equal(t, "-1000.00", acct.CurrentBalance.StringFixed(2))

	status, err := f.svc.Status(ctx, f.owner, parent.ID)
	require.NoError(t, err)
	assert.True(t, status.Full)

	_, err = f.svc.CreateChild(ctx, f.owner, parent.ID, ChildInput{Amount: dec("-1")})
	assert.True(t, model.IsValidation(err))
	_, err = f.svc.CreateChild(ctx, f.owner, parent.ID, ChildInput{Concept: "x"})
	assert.True(t, model.IsValidation(err))
	missing := uuid.New()
	_, err = f.svc.CreateChild(ctx, f.owner, parent.ID, ChildInput{Concept: "x", Amount: dec("-1"), CategoryID: &missing})
	assert.True(t, model.IsValidation(err))
	_, err = f.svc.CreateChild(ctx, f.owner, uuid.New(), ChildInput{Concept: "x", Amount: dec("-1")})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSplit_SingleMirrorPerTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	savings := storetest.Account(t, f.store, f.owner, "Ahorro", model.AccountTypeSavings)
	parent := storetest.Transaction(t, f.store, f.acct.ID, storetest.Date(2024, 3, 1), "-500.00", "RECIBO")

	_, err := f.svc.Split(ctx, f.owner, parent.ID, []Line{
		{CategoryID: model.TransferCategoryID, Amount: dec("100"), TargetAccountID: &f.loan.ID},
		{CategoryID: model.TransferCategoryID, Amount: dec("50"), TargetAccountID: &savings.ID},
	})
	assert.True(t, model.IsValidation(err))

	for _, acct := range []uuid.UUID{f.loan.ID, savings.ID} {
		txns, err := f.store.ListTransactions(ctx, acct)
		require.NoError(t, err)
		assert.Empty(t, txns)
	}

	// A transfer line without a target does not mirror and may repeat.
	_, err = f.svc.Split(ctx, f.owner, parent.ID, []Line{
		{CategoryID: model.TransferCategoryID, Amount: dec("100"), TargetAccountID: &f.loan.ID},
		{CategoryID: model.TransferCategoryID, Amount: dec("50")},
	})
	require.NoError(t, err)
	got, err := f.store.GetTransaction(ctx, f.owner, parent.ID)
	require.NoError(t, err)
	require.NotNil(t, got.TransferID)
	mirror, err := f.store.GetTransaction(ctx, f.owner, *got.TransferID)
	require.NoError(t, err)
	assert.Equal(t, parent.ID, *mirror.TransferID)
}

func TestLinkOrphans_OnlyOrphans(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := storetest.Transaction(t, f.store, f.acct.ID, storetest.Date(2024, 3, 10), "-500.00", "LIQUIDACION")
	income := storetest.Transaction(t, f.store, f.acct.ID, storetest.Date(2024, 3, 10), "50.00", "ABONO")
	late := storetest.Transaction(t, f.store, f.acct.ID, storetest.Date(2024, 3, 16), "-10.00", "TOO LATE")
	split := storetest.Transaction(t, f.store, f.acct.ID, storetest.Date(2024, 3, 11), "-30.00", "SPLIT")
	require.NoError(t, f.store.SetSplit(ctx, split.ID, true))
	other := storetest.Transaction(t, f.store, f.acct.ID, storetest.Date(2024, 3, 12), "-40.00", "OTRO")
	grandchild := storetest.Transaction(t, f.store, f.acct.ID, storetest.Date(2024, 3, 12), "-5.00", "NIETO")

	n, err := f.svc.LinkOrphans(ctx, f.owner, other.ID, []uuid.UUID{grandchild.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// other has children of its own, the rest fail the orphan predicate.
	n, err = f.svc.LinkOrphans(ctx, f.owner, parent.ID, []uuid.UUID{income.ID, late.ID, split.ID, other.ID})
	require.NoError(t, err)
	assert.Zero(t, n)

	children, err := f.store.Children(ctx, parent.ID)
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestLinkOrphans_NoCycles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := storetest.Transaction(t, f.store, f.acct.ID, storetest.Date(2024, 3, 10), "-100.00", "A")
	b := storetest.Transaction(t, f.store, f.acct.ID, storetest.Date(2024, 3, 11), "-100.00", "B")

	n, err := f.svc.LinkOrphans(ctx, f.owner, a.ID, []uuid.UUID{b.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = f.svc.LinkOrphans(ctx, f.owner, b.ID, []uuid.UUID{a.ID})
	assert.True(t, model.IsValidation(err))
	_, err = f.svc.CreateChild(ctx, f.owner, b.ID, ChildInput{Concept: "x", Amount: dec("-1")})
	assert.True(t, model.IsValidation(err))

	got, err := f.store.GetTransaction(ctx, f.owner, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentTransactionID)

	status, err := f.svc.Status(ctx, f.owner, a.ID)
	require.NoError(t, err)
	assert.True(t, status.Full)
}
