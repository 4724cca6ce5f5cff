package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hyn062347/Loa-Flow/internal/domain"
)

// historyRepository implements domain.CatalogReadRepository for the split
// shape. Reads share the pool with the write path but never mutate.
type historyRepository struct {
	db *DB
}

// NewHistoryRepository creates a catalog/price-history read repository.
func NewHistoryRepository(db *DB) domain.CatalogReadRepository {
	return &historyRepository{db: db}
}

// GetItem retrieves the current catalog row for id.
func (r *historyRepository) GetItem(ctx context.Context, id int64) (*domain.CatalogRecord, error) {
	query := `
		SELECT id, name, grade, icon, category_code, updated_at
		FROM lostark_items
		WHERE id = $1
	`

	var record domain.CatalogRecord

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.Name,
		&record.Grade,
		&record.Icon,
		&record.CategoryCode,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("item %d: %w", id, domain.ErrItemNotFound)
		}
		return nil, &domain.PersistenceError{Op: "get catalog item", ItemID: id, Err: err}
	}

	return &record, nil
}

// LatestSnapshots retrieves up to limit price snapshots for itemID, newest
// first. The query rides the (item_id, recorded_at DESC) index.
func (r *historyRepository) LatestSnapshots(ctx context.Context, itemID int64, limit int) ([]domain.PriceSnapshot, error) {
	query := `
		SELECT id, item_id, recent_price, current_min_price, yday_avg_price, category_code, recorded_at
		FROM lostark_market_prices
		WHERE item_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, itemID, limit)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list price snapshots", ItemID: itemID, Err: err}
	}
	defer rows.Close()

	snapshots := make([]domain.PriceSnapshot, 0)
	for rows.Next() {
		var snapshot domain.PriceSnapshot
		var recentStr, minStr, avgStr string

		if err := rows.Scan(
			&snapshot.ID,
			&snapshot.ItemID,
			&recentStr,
			&minStr,
			&avgStr,
			&snapshot.CategoryCode,
			&snapshot.RecordedAt,
		); err != nil {
			return nil, &domain.PersistenceError{Op: "scan price snapshot", ItemID: itemID, Err: err}
		}

		if snapshot.RecentPrice, err = decimal.NewFromString(recentStr); err != nil {
			return nil, fmt.Errorf("failed to parse recent_price: %w", err)
		}
		if snapshot.CurrentMinPrice, err = decimal.NewFromString(minStr); err != nil {
			return nil, fmt.Errorf("failed to parse current_min_price: %w", err)
		}
		if snapshot.YDayAvgPrice, err = decimal.NewFromString(avgStr); err != nil {
			return nil, fmt.Errorf("failed to parse yday_avg_price: %w", err)
		}

		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.PersistenceError{Op: "list price snapshots", ItemID: itemID, Err: err}
	}

	return snapshots, nil
}
