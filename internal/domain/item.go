package domain

import (
	"github.com/shopspring/decimal"
)

// MarketSortKey selects the column the upstream market API sorts by.
type MarketSortKey string

const (
	SortByGrade           MarketSortKey = "GRADE"
	SortByYDayAvgPrice    MarketSortKey = "YDAY_AVG_PRICE"
	SortByRecentPrice     MarketSortKey = "RECENT_PRICE"
	SortByCurrentMinPrice MarketSortKey = "CURRENT_MIN_PRICE"
)

// SortDirection is the upstream sort order.
type SortDirection string

const (
	SortAscending  SortDirection = "ASC"
	SortDescending SortDirection = "DESC"
)

// MarketItem represents one marketplace listing as observed at fetch time.
// Field names mirror the upstream wire format (PascalCase JSON).
type MarketItem struct {
	ID               int64           `json:"Id"`
	Name             string          `json:"Name"`
	Grade            string          `json:"Grade"`
	Icon             string          `json:"Icon"`
	BundleCount      int             `json:"BundleCount"`
	TradeRemainCount *int64          `json:"TradeRemainCount"` // nil means no trade-count constraint
	YDayAvgPrice     decimal.Decimal `json:"YDayAvgPrice"`
	RecentPrice      decimal.Decimal `json:"RecentPrice"`
	CurrentMinPrice  decimal.Decimal `json:"CurrentMinPrice"`
}

// RequestPayload is one page query against the market API.
type RequestPayload struct {
	ItemName      string        `json:"ItemName,omitempty"`
	CategoryCode  int           `json:"CategoryCode"`
	PageNo        int           `json:"PageNo"`
	Sort          MarketSortKey `json:"Sort"`
	SortCondition SortDirection `json:"SortCondition"`
}

// SearchPage is one market API response page.
type SearchPage struct {
	PageNo     int          `json:"PageNo"`
	PageSize   int          `json:"PageSize"`
	TotalCount int          `json:"TotalCount"`
	Items      []MarketItem `json:"Items"`
}

// CollectOptions configures one full pagination sweep over a category.
type CollectOptions struct {
	CategoryCode  int
	Sort          MarketSortKey // defaults to RECENT_PRICE
	SortDirection SortDirection // defaults to ASC
	MaxPages      int           // safety bound; the sweep never exceeds this many fetches
	ItemName      string        // optional upstream name filter
}
