package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hyn062347/Loa-Flow/internal/domain"
)

// Service drives one fetch-paginate-upsert run: ensure the schema exists,
// sweep the category, then hand the full item set to the persistence policy.
// Persistence only starts after the whole sweep succeeds, so a cancelled or
// failed sweep leaves the store untouched for that run.
type Service struct {
	Collector domain.ItemCollector
	Policy    domain.PersistencePolicy

	DefaultCategoryCode int
	MaxPages            int

	logger *slog.Logger
}

// RunResult summarizes one pipeline run.
type RunResult struct {
	RunID        uuid.UUID
	CategoryCode int
	ItemCount    int
	Applied      int
	Duration     time.Duration
}

// NewService creates a pipeline Service.
func NewService(collector domain.ItemCollector, policy domain.PersistencePolicy, defaultCategoryCode, maxPages int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		Collector:           collector,
		Policy:              policy,
		DefaultCategoryCode: defaultCategoryCode,
		MaxPages:            maxPages,
		logger:              logger,
	}
}

// Run executes one sweep-and-persist pass for categoryCode. A non-positive
// categoryCode falls back to the configured default. Overlapping runs for
// the same category are not mutually excluded: every write is idempotent and
// row-keyed, so they race to last-write-wins without corruption.
func (s *Service) Run(ctx context.Context, categoryCode int) (*RunResult, error) {
	if categoryCode <= 0 {
		categoryCode = s.DefaultCategoryCode
	}
	if categoryCode <= 0 {
		return nil, &domain.ValidationError{Field: "category code", Reason: "no positive category code supplied or configured"}
	}

	result := &RunResult{
		RunID:        uuid.New(),
		CategoryCode: categoryCode,
	}
	started := time.Now()

	s.logger.Info("pipeline run started",
		slog.String("run_id", result.RunID.String()),
		slog.Int("category_code", categoryCode),
	)

	if err := s.Policy.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	items, err := s.Collector.CollectCategory(ctx, domain.CollectOptions{
		CategoryCode: categoryCode,
		MaxPages:     s.MaxPages,
	})
	if err != nil {
		s.logger.Error("category sweep failed",
			slog.String("run_id", result.RunID.String()),
			slog.Int("category_code", categoryCode),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	result.ItemCount = len(items)

	if len(items) == 0 {
		result.Duration = time.Since(started)
		s.logger.Info("pipeline run finished with no items",
			slog.String("run_id", result.RunID.String()),
			slog.Int("category_code", categoryCode),
		)
		return result, nil
	}

	report, err := s.Policy.Apply(ctx, items, categoryCode, time.Now().UTC())
	if report != nil {
		result.Applied = report.Applied
	}
	if err != nil {
		var failedItemID int64
		if report != nil {
			failedItemID = report.FailedItemID
		}
		s.logger.Error("persistence aborted mid-run",
			slog.String("run_id", result.RunID.String()),
			slog.Int("category_code", categoryCode),
			slog.Int("applied", result.Applied),
			slog.Int64("failed_item_id", failedItemID),
			slog.String("error", err.Error()),
		)
		return result, err
	}

	result.Duration = time.Since(started)

	s.logger.Info("pipeline run finished",
		slog.String("run_id", result.RunID.String()),
		slog.Int("category_code", categoryCode),
		slog.Int("item_count", result.ItemCount),
		slog.Int("applied", result.Applied),
		slog.Duration("duration", result.Duration),
	)

	return result, nil
}
