package products

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Tagger stores per-video product links. catalog may be nil; only the
// operations that need product details require it.
type Tagger struct {
	db      *sqlx.DB
	catalog Catalog
}

// NewTagger creates a Tagger. Pass a nil catalog when no commerce backend is
// configured.
func NewTagger(db *sqlx.DB, catalog Catalog) *Tagger {
	return &Tagger{db: db, catalog: catalog}
}

// SaveVideoProducts replaces the video's linked products with productIDs in
// the given order. An empty list clears all links. The old and new sets are
// swapped in one transaction, so concurrent readers see either the previous
// list or the new one.
func (t *Tagger) SaveVideoProducts(ctx context.Context, videoID int64, productIDs []int64) error {
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save products for video %d: %w", videoID, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, t.db.Rebind(`DELETE FROM asset_products WHERE asset_id = ?`), videoID); err != nil {
		return fmt.Errorf("save products for video %d: %w", videoID, err)
	}

	insert := t.db.Rebind(`INSERT INTO asset_products (asset_id, product_id, position) VALUES (?, ?, ?)`)
	for pos, productID := range productIDs {
		if _, err := tx.ExecContext(ctx, insert, videoID, productID, pos); err != nil {
			return fmt.Errorf("save products for video %d: %w", videoID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save products for video %d: %w", videoID, err)
	}
	return nil
}

// LinkedProductIDs returns the video's product ids in saved order.
func (t *Tagger) LinkedProductIDs(ctx context.Context, videoID int64) ([]int64, error) {
	ids := []int64{}
	err := t.db.SelectContext(ctx, &ids,
		t.db.Rebind(`SELECT product_id FROM asset_products WHERE asset_id = ? ORDER BY position ASC`),
		videoID)
	if err != nil {
		return nil, fmt.Errorf("products for video %d: %w", videoID, err)
	}
	return ids, nil
}

// GetVideoProducts resolves the video's linked products through the catalog.
// Ids the catalog no longer knows are dropped, not errored.
func (t *Tagger) GetVideoProducts(ctx context.Context, videoID int64) ([]Product, error) {
	if t.catalog == nil {
		return nil, ErrCatalogUnavailable
	}
	ids, err := t.LinkedProductIDs(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Product{}, nil
	}
	return t.catalog.GetProducts(ctx, ids)
}

// SearchProducts passes a search term through to the catalog.
func (t *Tagger) SearchProducts(ctx context.Context, term string) ([]Product, error) {
	if t.catalog == nil {
		return nil, ErrCatalogUnavailable
	}
	return t.catalog.SearchProducts(ctx, term, DefaultSearchLimit)
}
