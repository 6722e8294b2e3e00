package category

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Load reads a catalog from a YAML file. An empty path returns the built-in
// default catalog. YAML sequences preserve declaration order, so rule
// priority survives the round trip.
func Load(path string) (*Catalog, error) {
	if path == "" {
		catalog := Default()
		if err := catalog.Validate(); err != nil {
			return nil, err
		}
		return catalog, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "category: read catalog %s", path)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, eris.Wrapf(err, "category: parse catalog %s", path)
	}

	for i := range catalog.Categories {
		if catalog.Categories[i].MinReviews == 0 {
			catalog.Categories[i].MinReviews = DefaultMinReviews
		}
	}

	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return &catalog, nil
}
