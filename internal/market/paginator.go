package market

import (
	"context"
	"log/slog"

	"github.com/hyn062347/Loa-Flow/internal/domain"
)

// DefaultMaxPages bounds a sweep when the caller supplies no limit.
const DefaultMaxPages = 50

// Paginator drives a PageFetcher across a category until exhaustion,
// accumulating the full item set. Fetches are strictly sequential: the stop
// condition depends on the previous page's reported total count and the
// upstream API is rate-sensitive.
type Paginator struct {
	fetcher domain.PageFetcher
	logger  *slog.Logger
}

// NewPaginator creates a Paginator over fetcher.
func NewPaginator(fetcher domain.PageFetcher, logger *slog.Logger) *Paginator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Paginator{
		fetcher: fetcher,
		logger:  logger,
	}
}

// CollectCategory implements domain.ItemCollector.
//
// Pages are fetched starting at 1 and appended in page order, preserving
// within-page order. The sweep stops when a page comes back empty, when the
// accumulated count reaches the reported total, or when the page counter
// would exceed the max-pages bound. The bound guards against a wrong or
// missing upstream total count; the sweep never loops unbounded.
//
// Any page failure aborts the whole sweep with no partial result: callers
// must treat a failed sweep as "no items produced, do not persist". No
// deduplication happens here; downstream upserts are keyed by item id and
// absorb upstream duplicates.
func (p *Paginator) CollectCategory(ctx context.Context, opts domain.CollectOptions) ([]domain.MarketItem, error) {
	sort := opts.Sort
	if sort == "" {
		sort = domain.SortByRecentPrice
	}
	direction := opts.SortDirection
	if direction == "" {
		direction = domain.SortAscending
	}
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	var items []domain.MarketItem
	totalCount := 0

	for pageNo := 1; pageNo <= maxPages; pageNo++ {
		payload := domain.RequestPayload{
			ItemName:      opts.ItemName,
			CategoryCode:  opts.CategoryCode,
			PageNo:        pageNo,
			Sort:          sort,
			SortCondition: direction,
		}

		page, err := p.fetcher.FetchPage(ctx, payload)
		if err != nil {
			return nil, err
		}

		if len(page.Items) == 0 {
			break
		}

		items = append(items, page.Items...)
		totalCount = page.TotalCount

		if totalCount > 0 && len(items) >= totalCount {
			break
		}
	}

	p.logger.Debug("category sweep finished",
		slog.Int("category_code", opts.CategoryCode),
		slog.Int("item_count", len(items)),
		slog.Int("reported_total", totalCount),
	)

	return items, nil
}
