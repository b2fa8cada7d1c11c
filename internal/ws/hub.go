package ws

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/stockfolio/backend/internal/models"
)

// InterestTracker aggregates per-client subscriptions into the global
// upstream want-set.
type InterestTracker interface {
	AddInterest(symbols []string)
	RemoveInterest(symbols []string)
}

// Hub tracks downstream clients and fans quote events out to the ones
// subscribed to each symbol.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*models.Client
	registry InterestTracker
	logger   *zap.Logger
}

func NewHub(registry InterestTracker, logger *zap.Logger) *Hub {
	return &Hub{
		clients:  make(map[string]*models.Client),
		registry: registry,
		logger:   logger,
	}
}

func (h *Hub) RegisterClient(conn *websocket.Conn) *models.Client {
	client := models.NewClient(uuid.New().String(), conn)

	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()

	h.logger.Info("client connected", zap.String("client_id", client.ID))
	return client
}

// UnregisterClient drops the client from the fan-out map before its
// interest is released, so no further quote is dispatched to it even
// while the registry update is still in flight.
func (h *Hub) UnregisterClient(client *models.Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.ID)
	close(client.Send)
	h.mu.Unlock()

	if symbols := client.SymbolList(); len(symbols) > 0 {
		h.registry.RemoveInterest(symbols)
	}
	h.logger.Info("client disconnected", zap.String("client_id", client.ID))
}

// Subscribe adds symbols to the client's set and forwards only the newly
// added ones to the registry. Returns the client's resulting set.
func (h *Hub) Subscribe(client *models.Client, symbols []string) []string {
	if added := client.Subscribe(symbols); len(added) > 0 {
		h.registry.AddInterest(added)
	}
	return client.SymbolList()
}

// Unsubscribe removes symbols from the client's set and forwards only the
// actually removed ones to the registry. Returns the client's resulting set.
func (h *Hub) Unsubscribe(client *models.Client, symbols []string) []string {
	if removed := client.Unsubscribe(symbols); len(removed) > 0 {
		h.registry.RemoveInterest(removed)
	}
	return client.SymbolList()
}

// Broadcast delivers the quote to every client subscribed to its symbol.
// Clients with a full send buffer skip the event rather than block the
// rest of the fan-out.
func (h *Hub) Broadcast(quote *models.Quote) {
	event := quote.Event()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if !client.IsSubscribed(quote.Symbol) {
			continue
		}
		select {
		case client.Send <- event:
		default:
			h.logger.Warn("client buffer full, dropping quote",
				zap.String("client_id", client.ID), zap.String("symbol", quote.Symbol))
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
