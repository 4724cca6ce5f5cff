package domain

import (
	"context"
	"time"
)

// PageFetcher issues one page-search request against the market API.
type PageFetcher interface {
	// FetchPage performs a single page query. It does not retry; retry
	// policy, if any, belongs to the caller.
	FetchPage(ctx context.Context, payload RequestPayload) (*SearchPage, error)
}

// ItemCollector drives a PageFetcher across pages until a category is
// exhausted or a safety bound is reached.
type ItemCollector interface {
	// CollectCategory returns all items of a category in page order. A
	// failure on any page aborts the sweep with no partial result.
	CollectCategory(ctx context.Context, opts CollectOptions) ([]MarketItem, error)
}

// PersistencePolicy applies one fetched item set to the store. Two variants
// exist: catalog-overwrite (single table) and catalog+history (split tables).
// The choice is deployment-time configuration.
type PersistencePolicy interface {
	// EnsureSchema creates the policy's tables and indexes if missing.
	// Idempotent and safe under concurrent invocation.
	EnsureSchema(ctx context.Context) error

	// Apply persists the items in order. Each item's write is independently
	// idempotent (keyed by item id); the first failure aborts the remaining
	// writes without rolling back rows already committed.
	Apply(ctx context.Context, items []MarketItem, categoryCode int, asOf time.Time) (*ApplyReport, error)

	// CatalogTable is the table name serving name-search reads.
	CatalogTable() string
}

// CatalogReadRepository serves catalog detail and price-history reads for
// split-shape deployments, where the (item_id, recorded_at DESC) index backs
// "latest N prices for item" queries.
type CatalogReadRepository interface {
	// GetItem returns the current catalog row for id, or an error wrapping
	// ErrItemNotFound when the id has never been persisted.
	GetItem(ctx context.Context, id int64) (*CatalogRecord, error)

	// LatestSnapshots returns up to limit price snapshots for itemID,
	// newest first.
	LatestSnapshots(ctx context.Context, itemID int64, limit int) ([]PriceSnapshot, error)
}

// NameSearchRepository is the read-only lookup against the catalog table,
// decoupled from the write path.
type NameSearchRepository interface {
	// SearchNames returns up to limit case-insensitive substring matches,
	// ordered ascending by name.
	SearchNames(ctx context.Context, text string, limit int) ([]ItemNameMatch, error)
}
