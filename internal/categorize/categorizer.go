package categorize

import (
	"strings"

	"github.com/google/uuid"

	"github.com/tesoro-dev/tesoro/internal/model"
)

// cashWithdrawalMarker identifies ATM withdrawals on card statements.
const cashWithdrawalMarker = "cajero"

type compiledRule struct {
	pattern    string
	categoryID uuid.UUID
}

// Categorizer assigns categories by first matching rule.
type Categorizer struct {
	rules []compiledRule
}

// New builds a Categorizer. rules must already be in relevance order.
func New(rules []model.CategoryRule) *Categorizer {
	c := &Categorizer{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		p := strings.ToLower(strings.TrimSpace(r.Pattern))
		if p == "" {
			continue
		}
		c.rules = append(c.rules, compiledRule{pattern: p, categoryID: r.CategoryID})
	}
	return c
}

// Match returns the category of the first rule whose pattern occurs in
// concept, ignoring case, or nil.
func (c *Categorizer) Match(concept string) *uuid.UUID {
	lower := strings.ToLower(concept)
	for _, r := range c.rules {
		if strings.Contains(lower, r.pattern) {
			id := r.categoryID
			return &id
		}
	}
	return nil
}

// Matches reports whether pattern occurs in concept, ignoring case.
func Matches(pattern, concept string) bool {
	p := strings.ToLower(strings.TrimSpace(pattern))
	return p != "" && strings.Contains(strings.ToLower(concept), p)
}

// IsCashWithdrawal reports whether a card statement concept is an ATM withdrawal.
func IsCashWithdrawal(concept string) bool {
	return strings.Contains(strings.ToLower(concept), cashWithdrawalMarker)
}
