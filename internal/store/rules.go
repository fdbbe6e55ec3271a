package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/tesoro-dev/tesoro/internal/model"
)

// InsertRule stores a new category rule.
func (q *Queries) InsertRule(ctx context.Context, rule *model.CategoryRule) error {
	_, err := q.db.NewInsert().Model(rule).Exec(ctx)
	return translate(err)
}

// GetRule returns one of the owner's rules.
func (q *Queries) GetRule(ctx context.Context, owner, id uuid.UUID) (*model.CategoryRule, error) {
	rule := new(model.CategoryRule)
	err := q.db.NewSelect().
		Model(rule).
		Where("id = ?", id).
		Where("owner_id = ?", owner).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return rule, nil
}

// ListRules returns the owner's rules in relevance order.
func (q *Queries) ListRules(ctx context.Context, owner uuid.UUID) ([]model.CategoryRule, error) {
	var rules []model.CategoryRule
	err := q.db.NewSelect().
		Model(&rules).
		Where("owner_id = ?", owner).
		Order("priority ASC", "created_at ASC").
		Scan(ctx)
	return rules, translate(err)
}

// DeleteRule removes one of the owner's rules.
func (q *Queries) DeleteRule(ctx context.Context, owner, id uuid.UUID) error {
	return affected(q.db.NewDelete().
		Model((*model.CategoryRule)(nil)).
		Where("id = ?", id).
		Where("owner_id = ?", owner).
		Exec(ctx))
}
