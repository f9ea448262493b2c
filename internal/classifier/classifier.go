// Package classifier holds the decision table that turns three raw ledger
// statuses into a category, an operator action and a priority.
package classifier

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"ledger-reconciliation/internal/domain"
)

// Statuses is a status triple after per-axis canonicalization: order and
// gateway upper-cased, vault lower-cased, all trimmed.
type Statuses struct {
	Order   string
	Gateway string
	Vault   string
}

// Canonicalize prepares raw statuses for rule evaluation. Nil or blank values
// become the axis sentinel.
func Canonicalize(order, gateway, vault *string) Statuses {
	return Statuses{
		Order:   canon(order, strings.ToUpper, domain.StatusMissing),
		Gateway: canon(gateway, strings.ToUpper, domain.StatusMissing),
		Vault:   canon(vault, strings.ToLower, domain.VaultStatusMissing),
	}
}

func canon(v *string, fold func(string) string, sentinel string) string {
	if v == nil {
		return sentinel
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return sentinel
	}
	return fold(s)
}

// Rule is one row of the decision table.
type Rule struct {
	Name   string
	Match  func(s Statuses) bool
	Result domain.Classification
}

// Classifier evaluates an ordered rule list; the first matching rule wins.
// It is stateless after construction and safe for concurrent use.
type Classifier struct {
	rules    []Rule
	fallback domain.Classification
}

// Option customizes a Classifier.
type Option func(*Classifier) error

// WithPriorities overrides the priority assigned to the given categories.
func WithPriorities(priorities map[domain.Category]int) Option {
	return func(c *Classifier) error {
		// Sorted so the first invalid override reported is stable.
		for _, cat := range slices.Sorted(maps.Keys(priorities)) {
			p := priorities[cat]
			if p < domain.PriorityNoAction || p > domain.PriorityCritical {
				return fmt.Errorf("priority %d for %s is outside 1-4", p, cat)
			}
			found := false
			for i := range c.rules {
				if c.rules[i].Result.Category == cat {
					c.rules[i].Result.Priority = p
					found = true
				}
			}
			if c.fallback.Category == cat {
				c.fallback.Priority = p
				found = true
			}
			if !found {
				return fmt.Errorf("unknown category %q", cat)
			}
		}
		return nil
	}
}

// New builds a classifier over the default decision table.
func New(opts ...Option) (*Classifier, error) {
	c := &Classifier{
		rules:    DefaultRules(),
		fallback: Uncategorized,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Rules returns a copy of the rule list in evaluation order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify canonicalizes the raw statuses and applies the decision table.
// It never fails: a triple matching no rule is UNCATEGORIZED.
func (c *Classifier) Classify(order, gateway, vault *string) domain.Classification {
	return c.Evaluate(Canonicalize(order, gateway, vault))
}

// ClassifyTriple classifies a resolved status triple.
func (c *Classifier) ClassifyTriple(t domain.StatusTriple) domain.Classification {
	return c.Classify(&t.Order, &t.Gateway, &t.Vault)
}

// Evaluate applies the rules to already canonical statuses.
func (c *Classifier) Evaluate(s Statuses) domain.Classification {
	if _, res, ok := c.firstMatch(s); ok {
		return res
	}
	return c.fallback
}

// MatchedRule returns the name of the rule that decides s, or "default".
func (c *Classifier) MatchedRule(s Statuses) string {
	if name, _, ok := c.firstMatch(s); ok {
		return name
	}
	return "default"
}

func (c *Classifier) firstMatch(s Statuses) (string, domain.Classification, bool) {
	for _, r := range c.rules {
		if r.Match(s) {
			return r.Name, r.Result, true
		}
	}
	return "", domain.Classification{}, false
}
