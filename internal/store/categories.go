package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/tesoro-dev/tesoro/internal/model"
)

// InsertCategory stores a new category.
func (q *Queries) InsertCategory(ctx context.Context, cat *model.Category) error {
	_, err := q.db.NewInsert().Model(cat).Exec(ctx)
	return translate(err)
}

// EnsureCategories inserts categories whose id does not exist yet.
func (q *Queries) EnsureCategories(ctx context.Context, cats []model.Category) error {
	if len(cats) == 0 {
		return nil
	}
	_, err := q.db.NewInsert().
		Model(&cats).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	return translate(err)
}

// GetCategory returns a system category or one of the owner's categories.
func (q *Queries) GetCategory(ctx context.Context, owner, id uuid.UUID) (*model.Category, error) {
	cat := new(model.Category)
	err := q.db.NewSelect().
		Model(cat).
		Where("id = ?", id).
		Where("owner_id IS NULL OR owner_id = ?", owner).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return cat, nil
}

// ListCategories returns the system categories and the owner's own.
func (q *Queries) ListCategories(ctx context.Context, owner uuid.UUID) ([]model.Category, error) {
	var cats []model.Category
	err := q.db.NewSelect().
		Model(&cats).
		Where("owner_id IS NULL OR owner_id = ?", owner).
		Order("name ASC").
		Scan(ctx)
	return cats, translate(err)
}

// DeleteCategory removes one of the owner's categories. Categories in use
// cannot be deleted.
func (q *Queries) DeleteCategory(ctx context.Context, owner, id uuid.UUID) error {
	return affected(q.db.NewDelete().
		Model((*model.Category)(nil)).
		Where("id = ?", id).
		Where("owner_id = ?", owner).
		Exec(ctx))
}
