package category

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalogYAML = `categories:
  - key: coffee
    display: Coffee
    default_label: Café
    queries:
      - query: Coffee Shop
        type: cafe
      - query: Espresso Bar
    rules:
      - label: Rösterei
        keywords: [röst, roast]
      - label: Café
        keywords: [cafe, café]
`

func TestLoad_EmptyPathReturnsDefaultCatalog(t *testing.T) {
	catalog, err := Load("")
	require.NoError(t, err)

	require.Len(t, catalog.Categories, 2)
	assert.Equal(t, "gastro", catalog.Categories[0].Key)
	assert.Equal(t, "handwerker", catalog.Categories[1].Key)
}

func TestLoad_YAMLPreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalogYAML), 0o644))

	catalog, err := Load(path)
	require.NoError(t, err)

	cat, ok := catalog.Get("coffee")
	require.True(t, ok)
	require.Len(t, cat.Queries, 2)
	assert.Equal(t, "Coffee Shop", cat.Queries[0].Text)
	assert.Equal(t, "cafe", cat.Queries[0].TypeHint)
	require.Len(t, cat.Rules, 2)
	assert.Equal(t, "Rösterei", cat.Rules[0].Label, "declared rule order survives the YAML round trip")
	assert.Equal(t, DefaultMinReviews, cat.MinReviews, "unset min_reviews falls back to the default")
}

func TestLoad_InvalidCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - key: empty\n    default_label: X\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err, "a category without queries is a fatal configuration error")
}

func TestCatalogValidate(t *testing.T) {
	tests := []struct {
		name    string
		catalog Catalog
	}{
		{"no categories", Catalog{}},
		{"missing key", Catalog{Categories: []Category{{DefaultLabel: "X", Queries: []QuerySpec{{Text: "q"}}}}}},
		{"duplicate key", Catalog{Categories: []Category{
			{Key: "a", DefaultLabel: "X", Queries: []QuerySpec{{Text: "q"}}},
			{Key: "a", DefaultLabel: "X", Queries: []QuerySpec{{Text: "q"}}},
		}}},
		{"empty query text", Catalog{Categories: []Category{{Key: "a", DefaultLabel: "X", Queries: []QuerySpec{{Text: ""}}}}}},
		{"missing default label", Catalog{Categories: []Category{{Key: "a", Queries: []QuerySpec{{Text: "q"}}}}}},
		{"negative min reviews", Catalog{Categories: []Category{{Key: "a", DefaultLabel: "X", MinReviews: -1, Queries: []QuerySpec{{Text: "q"}}}}}},
		{"rule without keywords", Catalog{Categories: []Category{{Key: "a", DefaultLabel: "X", Queries: []QuerySpec{{Text: "q"}}, Rules: []Rule{{Label: "L"}}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.catalog.Validate())
		})
	}
}

func TestDefaultCatalogIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
