package service

import (
	"github.com/stockfolio/backend/internal/cache"
	"github.com/stockfolio/backend/internal/models"
)

// Broadcaster fans a quote out to the downstream clients subscribed to
// its symbol.
type Broadcaster interface {
	Broadcast(quote *models.Quote)
}

type QuoteService interface {
	ProcessQuote(quote *models.Quote)
}

type quoteService struct {
	cache   *cache.PriceCache
	batcher *Batcher
	hub     Broadcaster
}

func NewQuoteService(priceCache *cache.PriceCache, batcher *Batcher, hub Broadcaster) QuoteService {
	return &quoteService{
		cache:   priceCache,
		batcher: batcher,
		hub:     hub,
	}
}

// ProcessQuote handles one normalized upstream tick: the cache and the
// persistence batch take the new price, then the quote is fanned out.
func (s *quoteService) ProcessQuote(quote *models.Quote) {
	s.cache.Set(quote.Symbol, quote.Price)
	s.batcher.Enqueue(quote.Symbol, quote.Price)
	s.hub.Broadcast(quote)
}
