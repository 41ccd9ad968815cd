// Package products links videos to purchasable products.
//
// Tagger owns the asset_products table: per-video ordered product id lists
// with wholesale-replace save semantics. Product details live in an external
// commerce catalog behind the Catalog interface; when no catalog is
// configured, detail and search operations fail with ErrCatalogUnavailable
// while stored links keep working.
package products
