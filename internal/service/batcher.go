package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PriceWriter persists a batch of current prices, one write per symbol.
type PriceWriter interface {
	BulkUpdatePrices(prices map[string]float64) error
}

// Batcher accumulates price updates and flushes them to storage on a
// fixed interval, so a burst of ticks collapses to one persisted write
// per symbol per flush window. The interval fires regardless of tick
// activity, which bounds persistence staleness even under sustained
// load (a quiet-period debounce could defer the flush indefinitely).
type Batcher struct {
	interval time.Duration
	writer   PriceWriter
	logger   *zap.Logger

	mu      sync.Mutex
	pending map[string]float64
}

func NewBatcher(interval time.Duration, writer PriceWriter, logger *zap.Logger) *Batcher {
	return &Batcher{
		interval: interval,
		writer:   writer,
		logger:   logger,
		pending:  make(map[string]float64),
	}
}

// Enqueue records the symbol's latest price for the next flush.
// Last write wins between flushes; nothing is written synchronously.
func (b *Batcher) Enqueue(symbol string, price float64) {
	b.mu.Lock()
	b.pending[symbol] = price
	b.mu.Unlock()
}

// Run flushes on every interval until ctx is cancelled, then performs a
// final flush so shutdown does not drop the tail of the batch.
func (b *Batcher) Run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.Flush()
			return
		case <-ticker.C:
			b.Flush()
		}
	}
}

// Flush snapshots and clears the pending map, then issues one bulk write.
// A failed write is logged and the batch dropped: the cache still holds
// the authoritative prices and the next ticks re-enqueue them.
func (b *Batcher) Flush() {
	b.mu.Lock()
	if len(b.pending) == 0 {
		b.mu.Unlock()
		return
	}
	batch := b.pending
	b.pending = make(map[string]float64)
	b.mu.Unlock()

	if err := b.writer.BulkUpdatePrices(batch); err != nil {
		b.logger.Error("price batch flush failed", zap.Int("symbols", len(batch)), zap.Error(err))
		return
	}
	b.logger.Debug("flushed price batch", zap.Int("symbols", len(batch)))
}

// PendingCount reports the number of symbols awaiting flush.
func (b *Batcher) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
