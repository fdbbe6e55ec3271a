package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Transaction is a single statement row on an account.
type Transaction struct {
	bun.BaseModel `bun:"table:transactions,alias:t"`

	ID                  uuid.UUID        `bun:"id,pk,type:uuid" json:"id"`
	AccountID           uuid.UUID        `bun:"account_id,notnull,type:uuid" json:"account_id"`
	Date                time.Time        `bun:"date,notnull,type:date" json:"date"`
	Concept             string           `bun:"concept,notnull" json:"concept"`
	Amount              decimal.Decimal  `bun:"amount,type:numeric(14,2),notnull" json:"amount"` // negative = debit
	CategoryID          *uuid.UUID       `bun:"category_id,type:uuid" json:"category_id,omitempty"`
	ImporterID          *uuid.UUID       `bun:"importer_id,type:uuid" json:"importer_id,omitempty"`
	IsSplit             bool             `bun:"is_split,notnull" json:"is_split"`
	TransferID          *uuid.UUID       `bun:"transfer_id,type:uuid" json:"transfer_id,omitempty"`
	ParentTransactionID *uuid.UUID       `bun:"parent_transaction_id,type:uuid" json:"parent_transaction_id,omitempty"`
	TravelExpenseID     *uuid.UUID       `bun:"travel_expense_id,type:uuid" json:"travel_expense_id,omitempty"`
	TripID              *uuid.UUID       `bun:"trip_id,type:uuid" json:"trip_id,omitempty"`
	BankBalance         *decimal.Decimal `bun:"bank_balance,type:numeric(14,2)" json:"bank_balance,omitempty"`
	Notes               string           `bun:"notes,notnull" json:"notes,omitempty"`
	CreatedAt           time.Time        `bun:"created_at,notnull" json:"created_at"`
}

// Linked reports whether the transaction is one side of a transfer pair.
func (t *Transaction) Linked() bool {
	return t.TransferID != nil
}

// TransactionSplit assigns part of a transaction's amount to a category.
type TransactionSplit struct {
	bun.BaseModel `bun:"table:transaction_splits,alias:ts"`

	ID                  uuid.UUID       `bun:"id,pk,type:uuid" json:"id"`
	TransactionID       uuid.UUID       `bun:"transaction_id,notnull,type:uuid" json:"transaction_id"`
	CategoryID          uuid.UUID       `bun:"category_id,notnull,type:uuid" json:"category_id"`
	Amount              decimal.Decimal `bun:"amount,type:numeric(14,2),notnull" json:"amount"` // always positive
	Notes               string          `bun:"notes,notnull" json:"notes,omitempty"`
	TargetAccountID     *uuid.UUID      `bun:"target_account_id,type:uuid" json:"target_account_id,omitempty"`
	MirrorTransactionID *uuid.UUID      `bun:"mirror_transaction_id,type:uuid" json:"mirror_transaction_id,omitempty"`
}

// ImportBatch is the ledger entry for one uploaded statement file.
type ImportBatch struct {
	bun.BaseModel `bun:"table:import_batches,alias:ib"`

	ID         uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	AccountID  uuid.UUID  `bun:"account_id,notnull,type:uuid" json:"account_id"`
	TemplateID *uuid.UUID `bun:"template_id,type:uuid" json:"template_id,omitempty"`
	Filename   string     `bun:"filename,notnull" json:"filename"`
	RowCount   int        `bun:"row_count,notnull" json:"row_count"`
	ImportDate time.Time  `bun:"import_date,notnull" json:"import_date"`
}
