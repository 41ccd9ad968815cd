package products

import (
	"context"
	"errors"
	"strings"
)

// ErrCatalogUnavailable is returned when an operation needs the commerce
// catalog and none is configured.
var ErrCatalogUnavailable = errors.New("product catalog is not configured")

// DefaultSearchLimit caps catalog searches when the caller passes no limit.
const DefaultSearchLimit = 20

// Product is one purchasable item from the commerce catalog.
type Product struct {
	ID        int64   `json:"id" yaml:"id"`
	Name      string  `json:"name" yaml:"name"`
	Price     float64 `json:"price" yaml:"price"`
	Image     string  `json:"image" yaml:"image"`
	Permalink string  `json:"permalink" yaml:"permalink"`
}

// Catalog is the read-only view of the commerce system.
type Catalog interface {
	SearchProducts(ctx context.Context, term string, limit int) ([]Product, error)
	GetProducts(ctx context.Context, ids []int64) ([]Product, error)
}

// StaticCatalog serves a fixed product list, typically loaded from the
// config file. It stands in for a commerce backend in small deployments and
// in tests.
type StaticCatalog struct {
	products []Product
	byID     map[int64]Product
}

// NewStaticCatalog indexes a fixed product list.
func NewStaticCatalog(products []Product) *StaticCatalog {
	byID := make(map[int64]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &StaticCatalog{products: products, byID: byID}
}

// SearchProducts matches the term case-insensitively against product names.
// An empty term matches everything.
func (c *StaticCatalog) SearchProducts(_ context.Context, term string, limit int) ([]Product, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	term = strings.ToLower(strings.TrimSpace(term))

	matches := []Product{}
	for _, p := range c.products {
		if term != "" && !strings.Contains(strings.ToLower(p.Name), term) {
			continue
		}
		matches = append(matches, p)
		if len(matches) == limit {
			break
		}
	}
	return matches, nil
}

// GetProducts resolves ids in the given order, skipping unknown ids.
func (c *StaticCatalog) GetProducts(_ context.Context, ids []int64) ([]Product, error) {
	resolved := []Product{}
	for _, id := range ids {
		if p, ok := c.byID[id]; ok {
			resolved = append(resolved, p)
		}
	}
	return resolved, nil
}
