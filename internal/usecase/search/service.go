package search

import (
	"context"
	"strings"

	"github.com/hyn062347/Loa-Flow/internal/domain"
)

// DefaultLimit bounds result count when the caller supplies no usable limit.
const DefaultLimit = 10

// Service handles name-search requests against the catalog. It is read-only
// and fully decoupled from the write pipeline.
type Service struct {
	Repo domain.NameSearchRepository
}

// NewService creates a search Service.
func NewService(repo domain.NameSearchRepository) *Service {
	return &Service{Repo: repo}
}

// Search returns case-insensitive substring matches for text, ordered
// ascending by name. Empty or whitespace-only text returns an empty result
// without touching the store. A non-positive limit is coerced to
// DefaultLimit.
func (s *Service) Search(ctx context.Context, text string, limit int) ([]domain.ItemNameMatch, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return []domain.ItemNameMatch{}, nil
	}

	if limit <= 0 {
		limit = DefaultLimit
	}

	return s.Repo.SearchNames(ctx, trimmed, limit)
}
