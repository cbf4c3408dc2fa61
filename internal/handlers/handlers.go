// Package handlers exposes the product catalog as the HTTP search service the
// client talks to.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"inventory-search/internal/catalog"
	"inventory-search/internal/models"
	"inventory-search/pkg/logger"
)

// Catalog is the store the service searches.
type Catalog interface {
	Search(ctx context.Context, req models.SearchRequest) ([]models.Product, error)
	Stats(ctx context.Context) map[string]interface{}
	Flush(ctx context.Context) error
	IsAvailable() bool
}

type Handlers struct {
	catalog Catalog
	log     *logger.Logger
}

func New(catalog Catalog, log *logger.Logger) *Handlers {
	if log == nil {
		log = logger.Nop()
	}
	return &Handlers{catalog: catalog, log: log}
}

// NewRouter wires the handlers and middleware into a gin engine.
func NewRouter(h *Handlers, rl *RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(CORS())
	r.Use(RequestLogger(h.log))
	r.Use(RateLimit(rl, h.log))

	r.GET("/", h.Info)
	r.GET("/health", h.Health)
	r.GET("/catalog/stats", h.CatalogStats)
	r.DELETE("/catalog", h.FlushCatalog)
	r.POST("/search/", h.Search)
	r.POST("/search", h.Search)

	return r
}

// Search answers POST /search/ with the ordered product list.
func (h *Handlers) Search(c *gin.Context) {
	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Code:    http.StatusBadRequest,
			Message: "request body does not match the search contract",
			Details: err.Error(),
		})
		return
	}

	if req.SortBy == "" {
		req.SortBy = models.SortRelevance
	}

	results, err := h.catalog.Search(c.Request.Context(), req)
	if err != nil {
		h.log.Error("search failed", "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, catalog.ErrUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, models.ErrorResponse{
			Error:   "search_failed",
			Code:    status,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, results)
}

func (h *Handlers) Health(c *gin.Context) {
	health := gin.H{
		"status":  "healthy",
		"service": "inventory-search",
	}

	if h.catalog != nil && h.catalog.IsAvailable() {
		health["catalog"] = "redis connected"
	} else {
		health["catalog"] = "redis unavailable"
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handlers) CatalogStats(c *gin.Context) {
	if h.catalog == nil || !h.catalog.IsAvailable() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "catalog not available",
		})
		return
	}

	c.JSON(http.StatusOK, h.catalog.Stats(c.Request.Context()))
}

func (h *Handlers) FlushCatalog(c *gin.Context) {
	if h.catalog == nil || !h.catalog.IsAvailable() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "catalog not available",
		})
		return
	}

	if err := h.catalog.Flush(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to flush catalog",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "catalog flushed",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handlers) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        "Inventory Search API",
		"version":     "1.0.0",
		"description": "Product search with geolocation filtering",
		"endpoints": map[string]string{
			"POST /search/":      "Search products around an origin",
			"GET /health":        "Health check",
			"GET /catalog/stats": "Catalog statistics",
			"DELETE /catalog":    "Remove every indexed product",
		},
		"categories":  models.Categories,
		"sort_keys":   models.SortKeys,
		"max_results": models.MaxResults,
	})
}
