package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stockfolio/backend/internal/cache"
)

type QuoteHandler struct {
	cache *cache.PriceCache
}

func NewQuoteHandler(priceCache *cache.PriceCache) *QuoteHandler {
	return &QuoteHandler{cache: priceCache}
}

// GetPrice serves the latest streamed price for a symbol. A symbol with
// no cache entry simply has not ticked since startup.
func (h *QuoteHandler) GetPrice(c *gin.Context) {
	symbol := strings.ToUpper(c.Query("symbol"))
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Symbol is a required query parameter"})
		return
	}

	entry, ok := h.cache.Get(symbol)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No price known for " + symbol})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":      entry.Symbol,
		"price":       entry.Price,
		"lastUpdated": entry.UpdatedAt,
	})
}
