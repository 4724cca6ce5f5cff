package api

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hyn062347/Loa-Flow/internal/domain"
	"github.com/hyn062347/Loa-Flow/internal/usecase/pipeline"
)

// Constants
const (
	DefaultTimeout      = 120 * time.Second
	ServiceVersion      = "1.0.0"
	ServiceName         = "loa-flow-market"
	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"
)

// PipelineRunner executes one fetch-paginate-upsert run for a category.
type PipelineRunner interface {
	Run(ctx context.Context, categoryCode int) (*pipeline.RunResult, error)
}

// ItemSearcher serves the name-search read path.
type ItemSearcher interface {
	Search(ctx context.Context, text string, limit int) ([]domain.ItemNameMatch, error)
}

// ItemReader serves catalog detail and price-history reads. Only available
// in split-shape deployments; pass nil otherwise and the routes stay
// unregistered.
type ItemReader interface {
	GetItem(ctx context.Context, id int64) (*domain.CatalogRecord, error)
	LatestPrices(ctx context.Context, itemID int64, limit int) ([]domain.PriceSnapshot, error)
}

// APIHandler handles HTTP requests using the Gin framework.
type APIHandler struct {
	pipeline  PipelineRunner
	searcher  ItemSearcher
	reader    ItemReader
	validator *Validator
	logger    *slog.Logger
}

// NewAPIHandler creates a new API handler. reader may be nil.
func NewAPIHandler(runner PipelineRunner, searcher ItemSearcher, reader ItemReader, logger *slog.Logger) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &APIHandler{
		pipeline:  runner,
		searcher:  searcher,
		reader:    reader,
		validator: NewValidator(),
		logger:    logger,
	}
}

// StartServer starts the HTTP server.
func (h *APIHandler) StartServer(port int) error {
	router := h.SetupRoutes()
	return router.Run(":" + strconv.Itoa(port))
}

// SetupRoutes configures all API routes.
func (h *APIHandler) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(requestIDMiddleware())
	router.Use(ginLoggerMiddleware())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.POST("/pipeline/run", h.RunPipeline)
	router.GET("/items/search", h.SearchItems)
	if h.reader != nil {
		router.GET("/items/detail", h.GetItemDetail)
		router.GET("/items/prices", h.GetItemPrices)
	}
	router.GET("/health", h.HealthCheck)

	return router
}
