package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tesoro-dev/tesoro/internal/model"
)

func newTemplate(owner uuid.UUID, name string, m model.ColumnMapping, now time.Time) *model.ImporterTemplate {
	return &model.ImporterTemplate{
		ID:            uuid.New(),
		OwnerID:       owner,
		Name:          name,
		ColumnMapping: m,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// CreateTemplate stores a reusable column mapping.
func (s *Service) CreateTemplate(ctx context.Context, owner uuid.UUID, name string, m model.ColumnMapping) (*model.ImporterTemplate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.Invalid("name", "is required")
	}
	if err := ValidateMapping(m); err != nil {
		return nil, err
	}
	tpl := newTemplate(owner, name, m, s.now().UTC())
	if err := s.store.InsertTemplate(ctx, tpl); err != nil {
		return nil, fmt.Errorf("saving template: %w", err)
	}
	return tpl, nil
}

// Template returns one of the owner's templates.
func (s *Service) Template(ctx context.Context, owner, id uuid.UUID) (*model.ImporterTemplate, error) {
	return s.store.GetTemplate(ctx, owner, id)
}

// Templates returns the owner's templates.
func (s *Service) Templates(ctx context.Context, owner uuid.UUID) ([]model.ImporterTemplate, error) {
	return s.store.ListTemplates(ctx, owner)
}

// UpdateTemplate edits a template in place. An empty name keeps the old one.
func (s *Service) UpdateTemplate(ctx context.Context, owner, id uuid.UUID, name string, m model.ColumnMapping) (*model.ImporterTemplate, error) {
	if err := ValidateMapping(m); err != nil {
		return nil, err
	}
	tpl, err := s.store.GetTemplate(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name != "" {
		tpl.Name = name
	}
	tpl.ColumnMapping = m
	tpl.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateTemplate(ctx, tpl); err != nil {
		return nil, fmt.Errorf("updating template: %w", err)
	}
	return tpl, nil
}

// DeleteTemplate removes a template that no import batch references.
func (s *Service) DeleteTemplate(ctx context.Context, owner, id uuid.UUID) error {
	return s.store.DeleteTemplate(ctx, owner, id)
}

// LinkTemplate makes templateID the default template of an account.
func (s *Service) LinkTemplate(ctx context.Context, owner, accountID, templateID uuid.UUID) error {
	if _, err := s.store.GetAccount(ctx, owner, accountID); err != nil {
		return fmt.Errorf("loading account: %w", err)
	}
	if _, err := s.store.GetTemplate(ctx, owner, templateID); err != nil {
		return fmt.Errorf("loading template: %w", err)
	}
	return s.store.SetAccountTemplate(ctx, accountID, templateID)
}
