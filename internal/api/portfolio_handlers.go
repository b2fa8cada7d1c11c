package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stockfolio/backend/internal/service"
)

type PortfolioHandler struct {
	service service.PortfolioService
	logger  *zap.Logger
}

func NewPortfolioHandler(portfolioService service.PortfolioService, logger *zap.Logger) *PortfolioHandler {
	return &PortfolioHandler{service: portfolioService, logger: logger}
}

func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	positions, err := h.service.GetAllPositions()
	if err != nil {
		h.logger.Error("failed to list positions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch portfolio"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"positions": positions})
}

type updatePositionRequest struct {
	Quantity *float64 `json:"quantity" binding:"required"`
}

func (h *PortfolioHandler) UpdatePosition(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	var req updatePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil || *req.Quantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid quantity is required"})
		return
	}

	position, err := h.service.UpsertPosition(symbol, *req.Quantity)
	if err != nil {
		h.logger.Error("failed to upsert position", zap.String("symbol", symbol), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update portfolio"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Portfolio updated successfully",
		"stock":   position,
	})
}

func (h *PortfolioHandler) DeletePosition(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	if err := h.service.DeletePosition(symbol); err != nil {
		h.logger.Error("failed to delete position", zap.String("symbol", symbol), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete position"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Position deleted"})
}
