package service

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stockfolio/backend/internal/cache"
	"github.com/stockfolio/backend/internal/models"
	"github.com/stockfolio/backend/internal/repository"
)

type PortfolioService interface {
	GetAllPositions() ([]*models.Position, error)
	UpsertPosition(symbol string, quantity float64) (*models.Position, error)
	DeletePosition(symbol string) error

	PriceWriter
}

type portfolioService struct {
	repo   repository.PortfolioRepository
	cache  *cache.PriceCache
	logger *zap.Logger
}

func NewPortfolioService(repo repository.PortfolioRepository, priceCache *cache.PriceCache, logger *zap.Logger) PortfolioService {
	return &portfolioService{
		repo:   repo,
		cache:  priceCache,
		logger: logger,
	}
}

func (s *portfolioService) GetAllPositions() ([]*models.Position, error) {
	return s.repo.GetAllPositions()
}

// UpsertPosition stores a holding, valuing it at the latest cached price
// when one is known.
func (s *portfolioService) UpsertPosition(symbol string, quantity float64) (*models.Position, error) {
	position := &models.Position{
		Symbol:      symbol,
		Quantity:    quantity,
		LastUpdated: time.Now(),
	}
	if entry, ok := s.cache.Get(symbol); ok {
		position.CurrentPrice = entry.Price
		position.TotalValue = entry.Price * quantity
	}

	if err := s.repo.UpsertPosition(position); err != nil {
		return nil, fmt.Errorf("failed to upsert position for %s: %w", symbol, err)
	}
	return position, nil
}

func (s *portfolioService) DeletePosition(symbol string) error {
	return s.repo.DeletePosition(symbol)
}

func (s *portfolioService) BulkUpdatePrices(prices map[string]float64) error {
	return s.repo.BulkUpdatePrices(prices)
}
