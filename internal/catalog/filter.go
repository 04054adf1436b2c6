package catalog

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Query narrows the product list the way the public catalog page does.
// Empty fields match everything.
type Query struct {
	Brand    string `json:"brand,omitempty"`
	Category string `json:"category,omitempty"`
	Stock    string `json:"stock,omitempty"`
	Feature  string `json:"feature,omitempty"`
	Text     string `json:"text,omitempty"`
}

// Sort keys accepted by SortProducts.
const (
	SortName      = "name"
	SortNameDesc  = "name-desc"
	SortPrice     = "price"
	SortPriceDesc = "price-desc"
)

// Filter returns the products matching q, in their original order.
func Filter(products []Product, q Query) []Product {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if q.Brand != "" && p.Brand != q.Brand {
			continue
		}
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if q.Stock != "" && p.Stock != q.Stock {
			continue
		}
		if q.Feature != "" && !slices.Contains(p.Features, q.Feature) {
			continue
		}
		if text != "" &&
			!strings.Contains(strings.ToLower(p.Name), text) &&
			!strings.Contains(strings.ToLower(p.Description), text) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SortProducts sorts products in place by key. Ties keep their order.
func SortProducts(products []Product, key string) error {
	var fn func(a, b Product) int
	switch key {
	case "", SortName:
		fn = func(a, b Product) int { return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) }
	case SortNameDesc:
		fn = func(a, b Product) int { return cmp.Compare(strings.ToLower(b.Name), strings.ToLower(a.Name)) }
	case SortPrice:
		fn = func(a, b Product) int { return cmp.Compare(a.Price, b.Price) }
	case SortPriceDesc:
		fn = func(a, b Product) int { return cmp.Compare(b.Price, a.Price) }
	default:
		return fmt.Errorf("unknown sort key %q — use name, name-desc, price or price-desc", key)
	}
	slices.SortStableFunc(products, fn)
	return nil
}
