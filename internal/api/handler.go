package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hyn062347/Loa-Flow/internal/domain"
)

// runRequest is the optional trigger body. CategoryCode arrives as a raw
// JSON value because schedulers send it as either a number or a string.
type runRequest struct {
	CategoryCode any `json:"categoryCode"`
}

// RunPipeline handles POST /pipeline/run requests. The body is optional; an
// absent or non-numeric category code falls back to the configured default.
// The response is intentionally bare: an empty 200 on success, a generic 500
// on failure, with no internal error detail leaked to the scheduler.
func (h *APIHandler) RunPipeline(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	var req runRequest
	// Scheduled triggers may post an empty or unrelated body; treat any
	// bind failure the same as no override.
	_ = c.ShouldBindJSON(&req)

	categoryCode := h.validator.ParseCategoryCode(req.CategoryCode)

	if _, err := h.pipeline.Run(ctx, categoryCode); err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "pipeline run failed")
		return
	}

	c.Status(http.StatusOK)
}

// SearchItems handles GET /items/search requests. An empty query returns an
// empty array, not an error.
func (h *APIHandler) SearchItems(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	text := c.Query("q")
	limit := h.validator.ParseLimit(c.Query("limit"))

	matches, err := h.searcher.Search(ctx, text, limit)
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "failed to search items")
		return
	}

	c.JSON(http.StatusOK, matches)
}

// GetItemDetail handles GET /items/detail requests.
func (h *APIHandler) GetItemDetail(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	itemID := h.validator.ParseItemID(c.Query("id"))
	if itemID <= 0 {
		h.handleValidationError(c, "invalid item id")
		return
	}

	record, err := h.reader.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		h.handleError(c, err, http.StatusInternalServerError, "failed to load item")
		return
	}

	c.JSON(http.StatusOK, record)
}

// GetItemPrices handles GET /items/prices requests, returning the latest
// price snapshots for an item, newest first.
func (h *APIHandler) GetItemPrices(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	itemID := h.validator.ParseItemID(c.Query("id"))
	if itemID <= 0 {
		h.handleValidationError(c, "invalid item id")
		return
	}
	limit := h.validator.ParseLimit(c.Query("limit"))

	snapshots, err := h.reader.LatestPrices(ctx, itemID, limit)
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "failed to load item prices")
		return
	}

	c.JSON(http.StatusOK, snapshots)
}

// HealthCheck handles GET /health requests.
func (h *APIHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"service":   ServiceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   ServiceVersion,
	})
}

// handleError logs the error and sends an appropriate HTTP response.
func (h *APIHandler) handleError(c *gin.Context, err error, statusCode int, userMessage string) {
	requestID, exists := c.Get(RequestIDContextKey)
	requestIDStr := "unknown"
	if exists {
		if id, ok := requestID.(string); ok {
			requestIDStr = id
		}
	}

	h.logger.Error("API error",
		slog.String("request_id", requestIDStr),
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("error", err.Error()),
		slog.Int("status_code", statusCode),
	)

	c.JSON(statusCode, gin.H{
		"error":      userMessage,
		"request_id": requestIDStr,
	})
}

// handleValidationError rejects malformed caller input with a 400.
func (h *APIHandler) handleValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
