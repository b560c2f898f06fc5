// Package classifier maps incident descriptions to category labels with an
// ordered keyword rule table.
package classifier

import (
	"strings"
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"go-patrol/textnorm"
	"go-patrol/types"
)

const otherPrefix = Other + " ("

// Classifier is immutable after construction and safe for concurrent use.
type Classifier struct {
	rules    []Rule
	labels   []string
	keywords []string
	matcher  *ahocorasick.Matcher
	// per rule, indexes into keywords
	ruleKeywords [][]int
	ruleRequires [][]int
}

var (
	defaultClassifier *Classifier
	defaultOnce       sync.Once
)

// Default returns a classifier over DefaultRules.
func Default() *Classifier {
	defaultOnce.Do(func() {
		defaultClassifier = New(DefaultRules)
	})
	return defaultClassifier
}

// New builds a classifier. Rule order is kept as given.
func New(rules []Rule) *Classifier {
	c := &Classifier{
		rules:        make([]Rule, len(rules)),
		ruleKeywords: make([][]int, len(rules)),
		ruleRequires: make([][]int, len(rules)),
	}
	copy(c.rules, rules)

	index := make(map[string]int)
	intern := func(words []string) []int {
		ids := make([]int, 0, len(words))
		for _, w := range words {
			w = textnorm.Fold(strings.TrimSpace(w))
			if w == "" {
				continue
			}
			id, ok := index[w]
			if !ok {
				id = len(c.keywords)
				index[w] = id
				c.keywords = append(c.keywords, w)
			}
			ids = append(ids, id)
		}
		return ids
	}

	seenLabel := make(map[string]bool)
	for i, r := range c.rules {
		c.ruleKeywords[i] = intern(r.Keywords)
		c.ruleRequires[i] = intern(r.Requires)
		if !seenLabel[r.Label] {
			seenLabel[r.Label] = true
			c.labels = append(c.labels, r.Label)
		}
	}
	if !seenLabel[Other] {
		c.labels = append(c.labels, Other)
	}

	if len(c.keywords) > 0 {
		c.matcher = ahocorasick.NewStringMatcher(c.keywords)
	}
	return c
}

// Classify returns the label of the first rule matching text, or Other.
func (c *Classifier) Classify(text string) string {
	if c.matcher == nil || strings.TrimSpace(text) == "" {
		return Other
	}

	hits := c.matcher.MatchThreadSafe([]byte(textnorm.Fold(text)))
	if len(hits) == 0 {
		return Other
	}
	present := make([]bool, len(c.keywords))
	for _, h := range hits {
		present[h] = true
	}

	for i, r := range c.rules {
		if !anyPresent(c.ruleKeywords[i], present) {
			continue
		}
		if len(c.ruleRequires[i]) > 0 && !anyPresent(c.ruleRequires[i], present) {
			continue
		}
		return r.Label
	}
	return Other
}

func anyPresent(ids []int, present []bool) bool {
	for _, id := range ids {
		if present[id] {
			return true
		}
	}
	return false
}

// ClassifyRecord classifies the record's current description and applies Refine.
func (c *Classifier) ClassifyRecord(r types.IncidentRecord) string {
	return Refine(c.Classify(r.Description), r.Description)
}

// Rules returns a copy of the rule table in evaluation order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Labels is the finite label set, in rule order, ending with Other.
func (c *Classifier) Labels() []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

// IsKnown reports whether label (or its base, for refined Other labels) is in the label set.
func (c *Classifier) IsKnown(label string) bool {
	base := BaseLabel(label)
	for _, l := range c.labels {
		if l == base {
			return true
		}
	}
	return false
}

// Refine keeps the operator's wording for unmatched incidents: Other becomes
// "Other (<description>)" when a description is available.
func Refine(label, description string) string {
	if label != Other {
		return label
	}
	d := textnorm.Collapse(description)
	if d == "" {
		return Other
	}
	return otherPrefix + d + ")"
}

// BaseLabel maps a refined "Other (...)" label back to Other.
func BaseLabel(label string) string {
	if strings.HasPrefix(label, otherPrefix) {
		return Other
	}
	return label
}
