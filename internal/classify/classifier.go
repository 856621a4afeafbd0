// Package classify implements deterministic rule-based statement-line
// classification. No scoring, no ML: rules are scanned in declaration
// order and the first keyword match wins, so the same input and the same
// rule table always produce the same output.
package classify

import (
	"strings"

	"finboard/internal/core"
)

// Result is the normalized outcome for one raw statement line.
type Result struct {
	Merchant    string
	Category    string
	IsRecurring bool
	Keyword     string // the rule keyword that matched, empty when uncategorized
}

// Classifier assigns categories and merchant names to raw statement
// lines. It is safe for concurrent use: the rule table is read-only
// after construction.
type Classifier struct {
	rules []CategoryRule
}

// New returns a classifier over the canonical rule table.
func New() *Classifier {
	return &Classifier{rules: DefaultRules()}
}

// NewWithRules returns a classifier over a custom ordered rule table.
func NewWithRules(rules []CategoryRule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify maps one raw statement line to a merchant, category and
// recurrence flag. Every input produces a result: unmatched lines
// degrade to Uncategorized with the verbatim-or-truncated merchant
// rather than failing.
func (c *Classifier) Classify(line string) Result {
	upper := strings.ToUpper(line)

	result := Result{
		Merchant: normalizeMerchant(line),
		Category: core.CategoryUncategorized,
	}

	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if !matchKeyword(upper, keyword) {
				continue
			}
			result.Category = rule.Category
			result.Keyword = keyword
			if canonical, ok := merchantOverrides[keyword]; ok {
				result.Merchant = canonical
			}
			break
		}
		if result.Keyword != "" {
			break
		}
	}

	for _, keyword := range recurringKeywords {
		if matchKeyword(upper, keyword) {
			result.IsRecurring = true
			break
		}
	}

	return result
}

// matchKeyword performs a case-sensitive substring match of an uppercase
// keyword against an uppercased line. Keywords of three characters or
// fewer only match on word boundaries so short tokens like BP or ETF
// don't fire inside longer words.
func matchKeyword(upperLine, keyword string) bool {
	if len(keyword) > 3 {
		return strings.Contains(upperLine, keyword)
	}
	for from := 0; ; {
		i := strings.Index(upperLine[from:], keyword)
		if i < 0 {
			return false
		}
		i += from
		before := i == 0 || isBoundary(upperLine[i-1])
		afterIdx := i + len(keyword)
		after := afterIdx >= len(upperLine) || isBoundary(upperLine[afterIdx])
		if before && after {
			return true
		}
		from = i + 1
	}
}

func isBoundary(b byte) bool {
	alnum := (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
	return !alnum
}

// normalizeMerchant derives a display name by truncating the raw line at
// the first digit or separator character and trimming whitespace. This
// is a best-effort heuristic, not a guaranteed-correct parser; known
// merchants are handled by the override table instead.
func normalizeMerchant(line string) string {
	cut := len(line)
	for i, r := range line {
		if (r >= '0' && r <= '9') || r == '*' || r == '#' {
			cut = i
			break
		}
	}
	merchant := strings.TrimSpace(line[:cut])
	if merchant == "" {
		return strings.TrimSpace(line)
	}
	return merchant
}
