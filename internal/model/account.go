package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// AccountType classifies a bank or cash account.
type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeLoan       AccountType = "loan"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeCash       AccountType = "cash"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCreditCard,
		AccountTypeLoan, AccountTypeInvestment, AccountTypeCash:
		return true
	}
	return false
}

// Account is a bank, card or cash account belonging to one owner.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`

	ID                  uuid.UUID       `bun:"id,pk,type:uuid" json:"id"`
	OwnerID             uuid.UUID       `bun:"owner_id,notnull,type:uuid" json:"owner_id"`
	Name                string          `bun:"name,notnull" json:"name"`
	Type                AccountType     `bun:"type,notnull" json:"type"`
	Currency            string          `bun:"currency,notnull" json:"currency"`
	InitialBalance      decimal.Decimal `bun:"initial_balance,type:numeric(14,2),notnull" json:"initial_balance"`
	CurrentBalance      decimal.Decimal `bun:"current_balance,type:numeric(14,2),notnull" json:"current_balance"`
	Active              bool            `bun:"active,notnull" json:"active"`
	AutoMirrorTransfers bool            `bun:"auto_mirror_transfers,notnull" json:"auto_mirror_transfers"`
	TemplateID          *uuid.UUID      `bun:"template_id,type:uuid" json:"template_id,omitempty"`
	CreatedAt           time.Time       `bun:"created_at,notnull" json:"created_at"`
}
