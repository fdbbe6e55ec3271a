package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TransferCategoryID is the fixed id of the system transfer category.
var TransferCategoryID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// Category classifies transactions. Categories are at most two levels deep.
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:c"`

	ID       uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	OwnerID  *uuid.UUID `bun:"owner_id,type:uuid" json:"owner_id,omitempty"` // nil = system
	Name     string     `bun:"name,notnull" json:"name"`
	Color    string     `bun:"color,notnull" json:"color,omitempty"`
	Icon     string     `bun:"icon,notnull" json:"icon,omitempty"`
	ParentID *uuid.UUID `bun:"parent_id,type:uuid" json:"parent_id,omitempty"`
}

// System reports whether the category is shared by every owner.
func (c *Category) System() bool {
	return c.OwnerID == nil
}

// CategoryRule assigns a category to transactions whose concept contains Pattern.
type CategoryRule struct {
	bun.BaseModel `bun:"table:category_rules,alias:cr"`

	ID         uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	OwnerID    uuid.UUID `bun:"owner_id,notnull,type:uuid" json:"owner_id"`
	Pattern    string    `bun:"pattern,notnull" json:"pattern"`
	CategoryID uuid.UUID `bun:"category_id,notnull,type:uuid" json:"category_id"`
	Priority   int       `bun:"priority,notnull" json:"priority"`
	CreatedAt  time.Time `bun:"created_at,notnull" json:"created_at"`
}

// TransferCategory returns a fresh pointer to TransferCategoryID.
func TransferCategory() *uuid.UUID {
	id := TransferCategoryID
	return &id
}
