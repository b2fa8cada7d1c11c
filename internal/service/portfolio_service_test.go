package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockfolio/backend/internal/cache"
	"github.com/stockfolio/backend/internal/models"
)

type fakePortfolioRepo struct {
	positions map[string]*models.Position
	bulk      []map[string]float64
}

func newFakePortfolioRepo() *fakePortfolioRepo {
	return &fakePortfolioRepo{positions: make(map[string]*models.Position)}
}

func (r *fakePortfolioRepo) EnsureIndexes() error { return nil }

func (r *fakePortfolioRepo) GetAllPositions() ([]*models.Position, error) {
	var out []*models.Position
	for _, p := range r.positions {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakePortfolioRepo) GetPosition(symbol string) (*models.Position, error) {
	return r.positions[symbol], nil
}

func (r *fakePortfolioRepo) UpsertPosition(position *models.Position) error {
	r.positions[position.Symbol] = position
	return nil
}

func (r *fakePortfolioRepo) DeletePosition(symbol string) error {
	delete(r.positions, symbol)
	return nil
}

func (r *fakePortfolioRepo) BulkUpdatePrices(prices map[string]float64) error {
	r.bulk = append(r.bulk, prices)
	return nil
}

func TestPortfolioService_UpsertUsesCachedPrice(t *testing.T) {
	repo := newFakePortfolioRepo()
	priceCache := cache.NewPriceCache()
	priceCache.Set("AAPL", 191.23)

	s := NewPortfolioService(repo, priceCache, zap.NewNop())

	position, err := s.UpsertPosition("AAPL", 10)
	require.NoError(t, err)

	assert.Equal(t, 191.23, position.CurrentPrice)
	assert.Equal(t, 1912.3, position.TotalValue)
	assert.Contains(t, repo.positions, "AAPL")
}

func TestPortfolioService_UpsertUnknownSymbolHasNoValuation(t *testing.T) {
	repo := newFakePortfolioRepo()
	s := NewPortfolioService(repo, cache.NewPriceCache(), zap.NewNop())

	position, err := s.UpsertPosition("MSFT", 3)
	require.NoError(t, err)

	assert.Zero(t, position.CurrentPrice)
	assert.Zero(t, position.TotalValue)
	assert.Equal(t, 3.0, position.Quantity)
}

func TestPortfolioService_BulkUpdateDelegatesToRepo(t *testing.T) {
	repo := newFakePortfolioRepo()
	s := NewPortfolioService(repo, cache.NewPriceCache(), zap.NewNop())

	require.NoError(t, s.BulkUpdatePrices(map[string]float64{"AAPL": 191.23}))
	require.Len(t, repo.bulk, 1)
	assert.Equal(t, 191.23, repo.bulk[0]["AAPL"])
}
