// pkg/catalog/catalog.go
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads a catalog file from disk.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return &file, nil
}

// Validate checks the catalog for documents the indexer would reject.
// It reports every problem, not just the first.
func (f *File) Validate() []error {
	var errs []error
	if f.Version == "" {
		errs = append(errs, fmt.Errorf("catalog version is empty"))
	}

	seen := make(map[string]int, len(f.Products))
	for i, product := range f.Products {
		if product.ID == "" {
			errs = append(errs, fmt.Errorf("product %d: id is empty", i))
			continue
		}
		if prev, dup := seen[product.ID]; dup {
			errs = append(errs, fmt.Errorf("product %d: duplicate id %q (first at %d)", i, product.ID, prev))
		}
		seen[product.ID] = i

		if product.Title == "" {
			errs = append(errs, fmt.Errorf("product %s: title is empty", product.ID))
		}
		if product.URL == "" {
			errs = append(errs, fmt.Errorf("product %s: url is empty", product.ID))
		}
		if product.Price != nil && *product.Price < 0 {
			errs = append(errs, fmt.Errorf("product %s: negative price", product.ID))
		}
		if product.Rating != nil && (*product.Rating < 0 || *product.Rating > 5) {
			errs = append(errs, fmt.Errorf("product %s: rating outside [0,5]", product.ID))
		}
	}
	return errs
}
