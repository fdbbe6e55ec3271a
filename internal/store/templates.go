package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/tesoro-dev/tesoro/internal/model"
)

// InsertTemplate stores a new importer template.
func (q *Queries) InsertTemplate(ctx context.Context, tpl *model.ImporterTemplate) error {
	_, err := q.db.NewInsert().Model(tpl).Exec(ctx)
	return translate(err)
}

// GetTemplate returns one of the owner's templates.
func (q *Queries) GetTemplate(ctx context.Context, owner, id uuid.UUID) (*model.ImporterTemplate, error) {
	tpl := new(model.ImporterTemplate)
	err := q.db.NewSelect().
		Model(tpl).
		Where("id = ?", id).
		Where("owner_id = ?", owner).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return tpl, nil
}

// ListTemplates returns the owner's templates ordered by name.
func (q *Queries) ListTemplates(ctx context.Context, owner uuid.UUID) ([]model.ImporterTemplate, error) {
	var tpls []model.ImporterTemplate
	err := q.db.NewSelect().
		Model(&tpls).
		Where("owner_id = ?", owner).
		Order("name ASC").
		Scan(ctx)
	return tpls, translate(err)
}

// UpdateTemplate rewrites a template in place.
func (q *Queries) UpdateTemplate(ctx context.Context, tpl *model.ImporterTemplate) error {
	return affected(q.db.NewUpdate().
		Model(tpl).
		WherePK().
		Where("owner_id = ?", tpl.OwnerID).
		Exec(ctx))
}

// DeleteTemplate removes a template. Templates referenced by an import batch
// cannot be deleted.
func (q *Queries) DeleteTemplate(ctx context.Context, owner, id uuid.UUID) error {
	return affected(q.db.NewDelete().
		Model((*model.ImporterTemplate)(nil)).
		Where("id = ?", id).
		Where("owner_id = ?", owner).
		Exec(ctx))
}
