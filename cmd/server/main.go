package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/stockfolio/backend/internal/api"
	"github.com/stockfolio/backend/internal/cache"
	"github.com/stockfolio/backend/internal/config"
	"github.com/stockfolio/backend/internal/middleware"
	"github.com/stockfolio/backend/internal/models"
	"github.com/stockfolio/backend/internal/repository"
	"github.com/stockfolio/backend/internal/service"
	"github.com/stockfolio/backend/internal/upstream"
	"github.com/stockfolio/backend/internal/ws"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer client.Disconnect(context.Background())

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		logger.Fatal("failed to ping MongoDB", zap.Error(err))
	}

	portfolioRepo := repository.NewPortfolioRepository(client, cfg.MongoDB, "portfolios")
	if err := portfolioRepo.EnsureIndexes(); err != nil {
		logger.Warn("failed to ensure portfolio indexes", zap.Error(err))
	}

	priceCache := cache.NewPriceCache()
	portfolioService := service.NewPortfolioService(portfolioRepo, priceCache, logger)
	batcher := service.NewBatcher(cfg.FlushInterval, portfolioService, logger)

	// The link's handlers close over components constructed after it;
	// nothing fires before Run starts below.
	var (
		registry     *upstream.Registry
		quoteService service.QuoteService
	)
	link := upstream.NewLink(cfg.AlpacaWSSURL, cfg.AlpacaKey, cfg.AlpacaSecret, cfg.ReconnectDelay, upstream.Handlers{
		OnQuote: func(q *models.Quote) { quoteService.ProcessQuote(q) },
		OnReady: func() { registry.Resubscribe() },
	}, logger)

	registry = upstream.NewRegistry(link, logger)
	hub := ws.NewHub(registry, logger)
	quoteService = service.NewQuoteService(priceCache, batcher, hub)
	wsHandler := ws.NewWebSocketHandler(hub, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go link.Run(ctx)
	go batcher.Run(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(logger))

	api.SetupRoutes(r, portfolioService, priceCache, wsHandler, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Address, cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logger.Info("starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
}
