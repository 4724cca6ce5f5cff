package postgres

import (
	"context"
	"time"

	"github.com/hyn062347/Loa-Flow/internal/domain"
)

// catalogRepository implements domain.PersistencePolicy with the split
// shape: a catalog table overwritten per run plus an append-only price
// history table. The history feeds "latest N prices for item" queries via
// the (item_id, recorded_at DESC) index.
type catalogRepository struct {
	db *DB
}

// NewCatalogRepository creates the catalog+history persistence policy.
func NewCatalogRepository(db *DB) domain.PersistencePolicy {
	return &catalogRepository{db: db}
}

// EnsureSchema creates the catalog table, the history table, and the
// history index if missing. Idempotent and safe under concurrent calls.
func (r *catalogRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`
		CREATE TABLE IF NOT EXISTS lostark_items (
			id BIGINT PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			grade VARCHAR(20),
			icon TEXT,
			category_code INTEGER NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS lostark_market_prices (
			id BIGSERIAL PRIMARY KEY,
			item_id BIGINT NOT NULL REFERENCES lostark_items(id),
			recent_price NUMERIC(15,2),
			current_min_price NUMERIC(15,2),
			yday_avg_price NUMERIC(15,2),
			category_code INTEGER NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS idx_market_prices_item_time ON lostark_market_prices (item_id, recorded_at DESC)`,
	}

	for _, statement := range statements {
		if _, err := r.db.ExecContext(ctx, statement); err != nil {
			return &domain.PersistenceError{Op: "ensure catalog schema", Err: err}
		}
	}

	return nil
}

// Apply upserts the catalog row for each item (no price columns), then
// unconditionally appends a history row carrying the three price fields and
// asOf. The history insert is never skipped or deduplicated: repeated runs
// intentionally grow the time series. The first failed write aborts the
// remaining items without rolling back rows already committed.
func (r *catalogRepository) Apply(ctx context.Context, items []domain.MarketItem, categoryCode int, asOf time.Time) (*domain.ApplyReport, error) {
	upsertQuery := `
		INSERT INTO lostark_items (id, name, grade, icon, category_code, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			grade = EXCLUDED.grade,
			icon = EXCLUDED.icon,
			category_code = EXCLUDED.category_code,
			updated_at = EXCLUDED.updated_at
	`

	historyQuery := `
		INSERT INTO lostark_market_prices (
			item_id, recent_price, current_min_price, yday_avg_price,
			category_code, recorded_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	report := &domain.ApplyReport{}

	for _, item := range items {
		_, err := r.db.ExecContext(ctx, upsertQuery,
			item.ID,
			item.Name,
			item.Grade,
			item.Icon,
			categoryCode,
			asOf,
		)
		if err != nil {
			report.FailedItemID = item.ID
			return report, &domain.PersistenceError{Op: "upsert catalog row", ItemID: item.ID, Err: err}
		}

		_, err = r.db.ExecContext(ctx, historyQuery,
			item.ID,
			item.RecentPrice.String(),
			item.CurrentMinPrice.String(),
			item.YDayAvgPrice.String(),
			categoryCode,
			asOf,
		)
		if err != nil {
			report.FailedItemID = item.ID
			return report, &domain.PersistenceError{Op: "insert price snapshot", ItemID: item.ID, Err: err}
		}

		report.Applied++
	}

	return report, nil
}

// CatalogTable names the table serving name-search reads.
func (r *catalogRepository) CatalogTable() string {
	return "lostark_items"
}
