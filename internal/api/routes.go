package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stockfolio/backend/internal/cache"
	"github.com/stockfolio/backend/internal/service"
	"github.com/stockfolio/backend/internal/ws"
)

func SetupRoutes(r *gin.Engine, portfolioService service.PortfolioService, priceCache *cache.PriceCache, wsHandler *ws.WebSocketHandler, logger *zap.Logger) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	portfolioHandler := NewPortfolioHandler(portfolioService, logger)
	quoteHandler := NewQuoteHandler(priceCache)

	r.GET("/ws", wsHandler.HandleConnection)

	api := r.Group("/api")
	{
		api.GET("/stock/price", quoteHandler.GetPrice)
		api.GET("/portfolio", portfolioHandler.GetPortfolio)
		api.PUT("/portfolio/:symbol", portfolioHandler.UpdatePosition)
		api.DELETE("/portfolio/:symbol", portfolioHandler.DeletePosition)
	}
}
