package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogRecord is the persisted current-state row for one item. There is at
// most one row per item id; every pipeline run that sees the item overwrites
// it. Rows are never deleted by this system.
type CatalogRecord struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Grade        string    `json:"grade"`
	Icon         string    `json:"icon"`
	CategoryCode int       `json:"categoryCode"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PriceSnapshot is one recorded price observation for an item. Snapshot rows
// are append-only: one per item per pipeline run, immutable afterwards.
type PriceSnapshot struct {
	ID              int64           `json:"-"`
	ItemID          int64           `json:"itemId"`
	RecentPrice     decimal.Decimal `json:"recentPrice"`
	CurrentMinPrice decimal.Decimal `json:"currentMinPrice"`
	YDayAvgPrice    decimal.Decimal `json:"ydayAvgPrice"`
	CategoryCode    int             `json:"categoryCode"`
	RecordedAt      time.Time       `json:"recordedAt"`
}

// ItemNameMatch is one name-search result.
type ItemNameMatch struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ApplyReport accumulates per-item outcomes of one persistence pass. Writes
// are independently idempotent, so a mid-list failure leaves the applied
// prefix durably written; FailedItemID identifies where the pass stopped.
type ApplyReport struct {
	Applied      int
	FailedItemID int64
}
