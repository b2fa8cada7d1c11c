package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockfolio/backend/internal/cache"
	"github.com/stockfolio/backend/internal/models"
)

type recordingBroadcaster struct {
	quotes []*models.Quote
}

func (b *recordingBroadcaster) Broadcast(q *models.Quote) {
	b.quotes = append(b.quotes, q)
}

func TestQuoteService_ProcessQuote(t *testing.T) {
	priceCache := cache.NewPriceCache()
	writer := &recordingWriter{}
	batcher := NewBatcher(time.Second, writer, zap.NewNop())
	hub := &recordingBroadcaster{}

	s := NewQuoteService(priceCache, batcher, hub)

	quote := &models.Quote{Symbol: "AAPL", Price: 191.23, Bid: 191.20, Ask: 191.25}
	s.ProcessQuote(quote)

	entry, ok := priceCache.Get("AAPL")
	require.True(t, ok)
	assert.Equal(t, 191.23, entry.Price)

	assert.Equal(t, 1, batcher.PendingCount())

	require.Len(t, hub.quotes, 1)
	assert.Same(t, quote, hub.quotes[0])
}
