package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/hyn062347/Loa-Flow/internal/domain"
)

// snapshotRepository implements domain.PersistencePolicy with the
// single-table shape: one row per item id carrying both catalog attributes
// and the latest price point. Every run overwrites the row, so the table
// always reflects the most recent observed state.
type snapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates the catalog-overwrite persistence policy.
func NewSnapshotRepository(db *DB) domain.PersistencePolicy {
	return &snapshotRepository{db: db}
}

// EnsureSchema creates the single snapshot table if it does not exist.
// CREATE TABLE IF NOT EXISTS makes concurrent invocation a no-op.
func (r *snapshotRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS lostark_market_items (
			id BIGINT PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			grade VARCHAR(20),
			icon TEXT,
			bundle_count INTEGER,
			trade_remain_count INTEGER,
			yday_avg_price NUMERIC(15,2),
			recent_price NUMERIC(15,2),
			current_min_price NUMERIC(15,2),
			category_code INTEGER NOT NULL,
			snapshot_time TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return &domain.PersistenceError{Op: "ensure snapshot schema", Err: err}
	}

	return nil
}

// Apply upserts each item keyed by id, overwriting every mutable column and
// refreshing updated_at. Re-running with identical input is a no-op modulo
// timestamps. The first failed write aborts the remaining items; rows already
// written stay committed.
func (r *snapshotRepository) Apply(ctx context.Context, items []domain.MarketItem, categoryCode int, asOf time.Time) (*domain.ApplyReport, error) {
	query := `
		INSERT INTO lostark_market_items (
			id, name, grade, icon, bundle_count, trade_remain_count,
			yday_avg_price, recent_price, current_min_price,
			category_code, snapshot_time, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			grade = EXCLUDED.grade,
			icon = EXCLUDED.icon,
			bundle_count = EXCLUDED.bundle_count,
			trade_remain_count = EXCLUDED.trade_remain_count,
			yday_avg_price = EXCLUDED.yday_avg_price,
			recent_price = EXCLUDED.recent_price,
			current_min_price = EXCLUDED.current_min_price,
			category_code = EXCLUDED.category_code,
			snapshot_time = EXCLUDED.snapshot_time,
			updated_at = NOW()
	`

	report := &domain.ApplyReport{}

	for _, item := range items {
		var tradeRemain sql.NullInt64
		if item.TradeRemainCount != nil {
			tradeRemain = sql.NullInt64{Int64: *item.TradeRemainCount, Valid: true}
		}

		_, err := r.db.ExecContext(ctx, query,
			item.ID,
			item.Name,
			item.Grade,
			item.Icon,
			item.BundleCount,
			tradeRemain,
			item.YDayAvgPrice.String(),
			item.RecentPrice.String(),
			item.CurrentMinPrice.String(),
			categoryCode,
			asOf,
		)
		if err != nil {
			report.FailedItemID = item.ID
			return report, &domain.PersistenceError{Op: "upsert snapshot row", ItemID: item.ID, Err: err}
		}

		report.Applied++
	}

	return report, nil
}

// CatalogTable names the table serving name-search reads.
func (r *snapshotRepository) CatalogTable() string {
	return "lostark_market_items"
}
