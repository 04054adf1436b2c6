// Package catalog holds the product catalog the back-office edits: product
// records, the static option tables, and operations over their image links.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/evert/drive-image-mcp-go/internal/pkg/validate"
)

// Product is one catalog entry. MainImage, Image and AdditionalImages hold
// image links as admins entered them, usually Google Drive share links.
type Product struct {
	ID               string   `yaml:"id" json:"id"`
	Name             string   `yaml:"name" json:"name"`
	Brand            string   `yaml:"brand,omitempty" json:"brand,omitempty"`
	Category         string   `yaml:"category,omitempty" json:"category,omitempty"`
	Stock            string   `yaml:"stock,omitempty" json:"stock,omitempty"`
	Features         []string `yaml:"features,omitempty" json:"features,omitempty"`
	Price            float64  `yaml:"price,omitempty" json:"price,omitempty"`
	Description      string   `yaml:"description,omitempty" json:"description,omitempty"`
	MainImage        string   `yaml:"mainImage,omitempty" json:"main_image,omitempty"`
	Image            string   `yaml:"image,omitempty" json:"image,omitempty"`
	AdditionalImages []string `yaml:"additionalImages,omitempty" json:"additional_images,omitempty"`
}

// Catalog is the on-disk catalog file. Brands and Categories extend the
// built-in option tables.
type Catalog struct {
	Brands     []Option  `yaml:"brands,omitempty"`
	Categories []Option  `yaml:"categories,omitempty"`
	Products   []Product `yaml:"products"`
}

// Load reads a YAML catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}

	seen := make(map[string]bool, len(c.Products))
	for i, p := range c.Products {
		if p.ID == "" {
			return nil, fmt.Errorf("catalog %s: product %d has no id", path, i)
		}
		if err := validate.ProductID(p.ID); err != nil {
			return nil, fmt.Errorf("catalog %s: product %d: %w", path, i, err)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("catalog %s: duplicate product id %q", path, p.ID)
		}
		seen[p.ID] = true
	}
	return &c, nil
}

// Save writes the catalog to path, replacing the file atomically. An existing
// file keeps its permissions; a new one is created 0644.
func (c *Catalog) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling catalog: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".catalog-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing catalog %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing catalog %s: %w", path, err)
	}
	// CreateTemp uses 0600; keep the mode of the file being replaced.
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return fmt.Errorf("setting mode on %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing catalog %s: %w", path, err)
	}
	return nil
}

// Product returns the product with the given id.
func (c *Catalog) Product(id string) (*Product, bool) {
	for i := range c.Products {
		if c.Products[i].ID == id {
			return &c.Products[i], true
		}
	}
	return nil, false
}

// BrandOptions returns the built-in brands followed by catalog-defined ones.
func (c *Catalog) BrandOptions() []Option {
	return mergeOptions(Brands, c.Brands)
}

// CategoryOptions returns the built-in categories followed by catalog-defined ones.
func (c *Catalog) CategoryOptions() []Option {
	return mergeOptions(Categories, c.Categories)
}
