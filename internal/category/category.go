// Package category defines the search catalog: which query variants a
// canvass issues per category and how a found place is assigned its single
// trade label. Rule order is load-bearing; every table is an ordered slice
// scanned first-match-wins, never a map.
package category

import (
	"github.com/rotisserie/eris"
)

// QuerySpec is one search variant within a category.
type QuerySpec struct {
	Text     string `yaml:"query"`
	TypeHint string `yaml:"type,omitempty"`
}

// Rule maps name keywords to a trade label. The first rule whose keyword
// list contains a substring of the lowercased name wins.
type Rule struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// TypeRule maps a provider type tag to a trade label. Type tags are more
// reliable than free-text keywords, so these rules take precedence.
type TypeRule struct {
	ProviderType string `yaml:"provider_type"`
	Label        string `yaml:"label"`
}

// Category is a top-level search grouping with its own threshold, query
// variants and classification tables. Read-only for the duration of a run.
type Category struct {
	Key          string      `yaml:"key"`
	Display      string      `yaml:"display"`
	MinReviews   int         `yaml:"min_reviews"`
	DefaultLabel string      `yaml:"default_label"`
	Queries      []QuerySpec `yaml:"queries"`
	TypeRules    []TypeRule  `yaml:"type_rules,omitempty"`
	Rules        []Rule      `yaml:"rules"`
}

// Catalog is the ordered set of categories one run canvasses.
type Catalog struct {
	Categories []Category `yaml:"categories"`
}

// Get returns the category with the given key.
func (c *Catalog) Get(key string) (Category, bool) {
	for _, cat := range c.Categories {
		if cat.Key == key {
			return cat, true
		}
	}
	return Category{}, false
}

// Validate checks the catalog before any provider call is made. A broken
// catalog aborts the run; there is no partial recovery at this level.
func (c *Catalog) Validate() error {
	if len(c.Categories) == 0 {
		return eris.New("category: catalog has no categories")
	}
	seen := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.Key == "" {
			return eris.New("category: category without key")
		}
		if seen[cat.Key] {
			return eris.Errorf("category: duplicate key %q", cat.Key)
		}
		seen[cat.Key] = true
		if len(cat.Queries) == 0 {
			return eris.Errorf("category: %s has no query variants", cat.Key)
		}
		for _, q := range cat.Queries {
			if q.Text == "" {
				return eris.Errorf("category: %s has an empty query", cat.Key)
			}
		}
		if cat.DefaultLabel == "" {
			return eris.Errorf("category: %s has no default label", cat.Key)
		}
		if cat.MinReviews < 0 {
			return eris.Errorf("category: %s min_reviews must not be negative", cat.Key)
		}
		for _, r := range cat.Rules {
			if r.Label == "" || len(r.Keywords) == 0 {
				return eris.Errorf("category: %s has an incomplete rule", cat.Key)
			}
		}
	}
	return nil
}
