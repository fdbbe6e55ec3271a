package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ColumnMapping describes how the columns of a statement file map onto
// transaction fields. Column references are header names or 1-based positions.
type ColumnMapping struct {
	Delimiter     string `bun:"delimiter,notnull" json:"delimiter" yaml:"delimiter"`
	DateColumn    string `bun:"date_column,notnull" json:"date_column" yaml:"date_column"`
	ConceptColumn string `bun:"concept_column,notnull" json:"concept_column" yaml:"concept_column"`
	AmountColumn  string `bun:"amount_column,notnull" json:"amount_column,omitempty" yaml:"amount_column,omitempty"`
	ChargeColumn  string `bun:"charge_column,notnull" json:"charge_column,omitempty" yaml:"charge_column,omitempty"`
	CreditColumn  string `bun:"credit_column,notnull" json:"credit_column,omitempty" yaml:"credit_column,omitempty"`
	SignColumn    string `bun:"sign_column,notnull" json:"sign_column,omitempty" yaml:"sign_column,omitempty"`
	BalanceColumn string `bun:"balance_column,notnull" json:"balance_column,omitempty" yaml:"balance_column,omitempty"`
	InvertSign    bool   `bun:"invert_sign,notnull" json:"invert_sign" yaml:"invert_sign"`
}

// ImporterTemplate is a saved, reusable column mapping.
type ImporterTemplate struct {
	bun.BaseModel `bun:"table:importer_templates,alias:it"`

	ID      uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	OwnerID uuid.UUID `bun:"owner_id,notnull,type:uuid" json:"owner_id"`
	Name    string    `bun:"name,notnull" json:"name"`
	ColumnMapping
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
}
