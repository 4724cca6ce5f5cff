package history

import (
	"context"

	"github.com/hyn062347/Loa-Flow/internal/domain"
)

// DefaultLimit bounds snapshot reads when the caller supplies no usable
// limit.
const DefaultLimit = 10

// Service serves catalog detail and price-history reads. Only wired for
// split-shape deployments, which carry the history table.
type Service struct {
	Repo domain.CatalogReadRepository
}

// NewService creates a history Service.
func NewService(repo domain.CatalogReadRepository) *Service {
	return &Service{Repo: repo}
}

// GetItem returns the current catalog row for id.
func (s *Service) GetItem(ctx context.Context, id int64) (*domain.CatalogRecord, error) {
	if id <= 0 {
		return nil, &domain.ValidationError{Field: "item id", Reason: "must be positive"}
	}
	return s.Repo.GetItem(ctx, id)
}

// LatestPrices returns up to limit price snapshots for itemID, newest first.
// A non-positive limit is coerced to DefaultLimit.
func (s *Service) LatestPrices(ctx context.Context, itemID int64, limit int) ([]domain.PriceSnapshot, error) {
	if itemID <= 0 {
		return nil, &domain.ValidationError{Field: "item id", Reason: "must be positive"}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return s.Repo.LatestSnapshots(ctx, itemID, limit)
}
