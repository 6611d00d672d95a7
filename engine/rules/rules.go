// Package rules selects the action rule that handles a one- or two-word command.
package rules

import (
	"fmt"
	"strings"

	"github.com/nathoo/twoword/engine/vocab"
)

// ValidFunc reports whether a rule applies in the current world state.
// A returned error is fatal to the session.
type ValidFunc func(w1, w2 *vocab.Entry) (bool, error)

// EffectFunc performs a rule's action. A returned error is fatal to the session.
type EffectFunc func(w1, w2 *vocab.Entry) error

// Rule is a pattern over one or two terms. A nil Term2 makes it a
// single-word rule.
type Rule struct {
	Name     string // optional, for logs and traces
	Term1    *vocab.Term
	Term2    *vocab.Term
	Priority int
	Valid    ValidFunc // nil means always valid
	Effect   EffectFunc
}

// Eligible reports whether the rule matches the words and its validity
// predicate holds. The predicate is only consulted when the words match.
func (r *Rule) Eligible(w1, w2 *vocab.Entry) (bool, error) {
	if !r.Term1.Contains(w1) {
		return false, nil
	}
	switch {
	case r.Term2 == nil && w2 == nil:
	case r.Term2 != nil && w2 != nil && r.Term2.Contains(w2):
	default:
		return false, nil
	}
	if r.Valid == nil {
		return true, nil
	}
	ok, err := r.Valid(w1, w2)
	if err != nil {
		return false, fmt.Errorf("rule %s: validity check: %w", r, err)
	}
	return ok, nil
}

// Apply runs the rule's effect. A rule without an effect does nothing.
func (r *Rule) Apply(w1, w2 *vocab.Entry) error {
	if r.Effect == nil {
		return nil
	}
	return r.Effect(w1, w2)
}

func (r *Rule) String() string {
	if r.Name != "" {
		return r.Name
	}
	var b strings.Builder
	b.WriteString(termName(r.Term1))
	if r.Term2 != nil {
		b.WriteString(" ")
		b.WriteString(termName(r.Term2))
	}
	fmt.Fprintf(&b, " [%d]", r.Priority)
	return b.String()
}

func termName(t *vocab.Term) string {
	if t == nil {
		return "<nil>"
	}
	return t.Name()
}

// Policy decides which eligible rule wins.
type Policy int

const (
	// HighestPriority scans every rule and keeps the eligible rule with
	// the strictly greatest priority; the earliest rule wins ties.
	HighestPriority Policy = iota
	// FirstEligible returns the first eligible rule in construction order
	// and never looks at priority.
	FirstEligible
)

func (p Policy) String() string {
	if p == FirstEligible {
		return "first-eligible"
	}
	return "highest-priority"
}

// ParsePolicy parses a policy name as written in configuration.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "highest-priority", "highest", "priority":
		return HighestPriority, nil
	case "first-eligible", "first":
		return FirstEligible, nil
	default:
		return 0, fmt.Errorf("unknown match policy %q", s)
	}
}

// Matcher holds the story's rules in the order they should be tried.
type Matcher struct {
	rules  []*Rule
	Policy Policy
}

// NewMatcher creates a matcher with the given policy.
func NewMatcher(policy Policy) *Matcher {
	return &Matcher{Policy: policy}
}

// Add appends rules in try order.
func (m *Matcher) Add(rules ...*Rule) {
	m.rules = append(m.rules, rules...)
}

// Rules returns the rules in try order.
func (m *Matcher) Rules() []*Rule {
	return append([]*Rule(nil), m.rules...)
}

// Match returns the rule that handles w1 (and w2, which may be nil), or
// nil if no rule is eligible. A failing validity predicate stops the scan
// and its error is returned.
func (m *Matcher) Match(w1, w2 *vocab.Entry) (*Rule, error) {
	var best *Rule
	for _, r := range m.rules {
		ok, err := r.Eligible(w1, w2)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if m.Policy == FirstEligible {
			return r, nil
		}
		if best == nil || r.Priority > best.Priority {
			best = r
		}
	}
	return best, nil
}
