package categorize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tesoro-dev/tesoro/internal/logger"
	"github.com/tesoro-dev/tesoro/internal/model"
	"github.com/tesoro-dev/tesoro/internal/store"
)

// Service manages categories and category rules.
type Service struct {
	store *store.Store
	now   func() time.Time
}

// NewService creates a categorize Service.
func NewService(s *store.Store) *Service {
	return &Service{store: s, now: time.Now}
}

// SeedDefaults inserts the system categories that are missing.
func (s *Service) SeedDefaults(ctx context.Context) error {
	// Parents first so the parent_id references resolve.
	var parents, children []model.Category
	for _, c := range DefaultCategories() {
		if c.ParentID == nil {
			parents = append(parents, c)
		} else {
			children = append(children, c)
		}
	}
	if err := s.store.EnsureCategories(ctx, parents); err != nil {
		return fmt.Errorf("seeding categories: %w", err)
	}
	if err := s.store.EnsureCategories(ctx, children); err != nil {
		return fmt.Errorf("seeding subcategories: %w", err)
	}
	return nil
}

// CreateCategory adds an owner category. A parent must itself be top-level.
func (s *Service) CreateCategory(ctx context.Context, owner uuid.UUID, name, color, icon string, parentID *uuid.UUID) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.Invalid("name", "is required")
	}
	if parentID != nil {
		parent, err := s.store.GetCategory(ctx, owner, *parentID)
		if err != nil {
			return nil, fmt.Errorf("loading parent category: %w", err)
		}
		if parent.ParentID != nil {
			return nil, model.Invalid("parent_id", "categories can only be nested one level")
		}
	}
	cat := &model.Category{
		ID:       uuid.New(),
		OwnerID:  &owner,
		Name:     name,
		Color:    color,
		Icon:     icon,
		ParentID: parentID,
	}
	if err := s.store.InsertCategory(ctx, cat); err != nil {
		return nil, fmt.Errorf("saving category: %w", err)
	}
	return cat, nil
}

// Categories returns the system categories and the owner's own.
func (s *Service) Categories(ctx context.Context, owner uuid.UUID) ([]model.Category, error) {
	return s.store.ListCategories(ctx, owner)
}

// DeleteCategory removes an owner category that nothing references.
func (s *Service) DeleteCategory(ctx context.Context, owner, id uuid.UUID) error {
	return s.store.DeleteCategory(ctx, owner, id)
}

// CreateRule adds a rule. Lower priority values are tried first.
func (s *Service) CreateRule(ctx context.Context, owner uuid.UUID, pattern string, categoryID uuid.UUID, priority int) (*model.CategoryRule, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, model.Invalid("pattern", "is required")
	}
	if _, err := s.store.GetCategory(ctx, owner, categoryID); err != nil {
		return nil, fmt.Errorf("loading category: %w", err)
	}
	rule := &model.CategoryRule{
		ID:         uuid.New(),
		OwnerID:    owner,
		Pattern:    pattern,
		CategoryID: categoryID,
		Priority:   priority,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.store.InsertRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("saving rule: %w", err)
	}
	return rule, nil
}

// Rules returns the owner's rules in relevance order.
func (s *Service) Rules(ctx context.Context, owner uuid.UUID) ([]model.CategoryRule, error) {
	return s.store.ListRules(ctx, owner)
}

// DeleteRule removes a rule. Already categorized transactions keep their category.
func (s *Service) DeleteRule(ctx context.Context, owner, id uuid.UUID) error {
	return s.store.DeleteRule(ctx, owner, id)
}

// ApplyRule assigns the rule's category to every uncategorized, unsplit
// transaction of the owner whose concept contains the pattern. It returns the
// number of transactions updated.
func (s *Service) ApplyRule(ctx context.Context, owner, ruleID uuid.UUID) (int, error) {
	rule, err := s.store.GetRule(ctx, owner, ruleID)
	if err != nil {
		return 0, fmt.Errorf("loading rule: %w", err)
	}

	var updated int
	err = s.store.InTx(ctx, func(ctx context.Context, q *store.Queries) error {
		txns, err := q.Uncategorized(ctx, owner)
		if err != nil {
			return err
		}
		var ids []uuid.UUID
		for _, txn := range txns {
			if Matches(rule.Pattern, txn.Concept) {
				ids = append(ids, txn.ID)
			}
		}
		updated, err = q.CategorizeUncategorized(ctx, ids, rule.CategoryID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("applying rule: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("rule_id", rule.ID.String()).
		Str("pattern", rule.Pattern).
		Int("updated", updated).
		Msg("rule applied")
	return updated, nil
}
