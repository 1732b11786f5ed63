package model

import (
	"slices"
	"strings"

	"github.com/secmon-lab/lifeguide/pkg/domain/types"
)

// Classification is the ordered tag set produced for one query. It is either
// exactly one sentinel (greeting or unrelated) or one or more insurance
// categories in canonical order.
type Classification struct {
	tags []types.Category
}

// NewClassification builds a Classification from raw tags. Invalid tags are
// dropped, duplicates removed, and the sentinel rule applied: insurance
// categories take precedence over sentinels, greeting beats unrelated, and an
// empty result becomes unrelated.
func NewClassification(tags ...types.Category) *Classification {
	var hasGreeting bool
	seen := make(map[types.Category]bool)
	var insurance []types.Category

	for _, tag := range tags {
		switch {
		case tag.IsInsurance():
			if !seen[tag] {
				seen[tag] = true
				insurance = append(insurance, tag)
			}
		case tag == types.CategoryGreeting:
			hasGreeting = true
		}
	}

	if len(insurance) > 0 {
		slices.SortFunc(insurance, func(a, b types.Category) int {
			return a.Rank() - b.Rank()
		})
		return &Classification{tags: insurance}
	}
	if hasGreeting {
		return &Classification{tags: []types.Category{types.CategoryGreeting}}
	}
	return Unrelated()
}

// Unrelated returns the classification used for out-of-domain queries and as
// the fallback when classification fails.
func Unrelated() *Classification {
	return &Classification{tags: []types.Category{types.CategoryUnrelated}}
}

// Tags returns a copy of the tags in canonical order
func (c *Classification) Tags() []types.Category {
	return slices.Clone(c.tags)
}

// Categories returns the insurance categories, empty for sentinel results
func (c *Classification) Categories() []types.Category {
	if c.IsGreeting() || c.IsUnrelated() {
		return nil
	}
	return slices.Clone(c.tags)
}

// IsGreeting reports whether the query is small talk
func (c *Classification) IsGreeting() bool {
	return len(c.tags) == 1 && c.tags[0] == types.CategoryGreeting
}

// IsUnrelated reports whether the query is outside the insurance domain
func (c *Classification) IsUnrelated() bool {
	return len(c.tags) == 1 && c.tags[0] == types.CategoryUnrelated
}

// Strings returns the tags as plain strings for logging and wire output
func (c *Classification) Strings() []string {
	out := make([]string, len(c.tags))
	for i, tag := range c.tags {
		out[i] = tag.String()
	}
	return out
}

// String returns a comma separated tag list
func (c *Classification) String() string {
	return strings.Join(c.Strings(), ",")
}
