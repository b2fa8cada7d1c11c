// Package upstream owns the single connection to the market-data feed and
// the global symbol subscription state that rides on it.
package upstream

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/stockfolio/backend/internal/models"
)

const writeWait = 10 * time.Second

type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateAuthenticating
	StateReady
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateReady:
		return "ready"
	default:
		return "disconnected"
	}
}

type authMessage struct {
	Action string `json:"action"`
	Key    string `json:"key"`
	Secret string `json:"secret"`
}

// SubscriptionMessage is the control frame for subscribe/unsubscribe.
type SubscriptionMessage struct {
	Action string   `json:"action"`
	Quotes []string `json:"quotes"`
}

// recordEnvelope classifies one element of an inbound frame array before
// it is fully decoded.
type recordEnvelope struct {
	Type string `json:"T"`
	Msg  string `json:"msg"`
}

type quoteRecord struct {
	Symbol    string  `json:"S"`
	LastPrice float64 `json:"p"`
	BidPrice  float64 `json:"bp"`
	AskPrice  float64 `json:"ap"`
	BidSize   int     `json:"bs"`
	AskSize   int     `json:"as"`
	Timestamp string  `json:"t"`
}

// Handlers receive link events. OnQuote fires once per normalized quote
// record, OnReady once per successful authentication.
type Handlers struct {
	OnQuote func(*models.Quote)
	OnReady func()
}

// Link maintains exactly one live upstream connection at a time,
// reconnecting after a fixed delay whenever the transport drops.
type Link struct {
	url            string
	key            string
	secret         string
	reconnectDelay time.Duration
	handlers       Handlers
	logger         *zap.Logger

	mu    sync.Mutex
	conn  *websocket.Conn
	state State
}

func NewLink(url, key, secret string, reconnectDelay time.Duration, handlers Handlers, logger *zap.Logger) *Link {
	return &Link{
		url:            url,
		key:            key,
		secret:         secret,
		reconnectDelay: reconnectDelay,
		handlers:       handlers,
		logger:         logger,
	}
}

// Run dials the upstream and keeps redialing until ctx is cancelled.
// The retry is unconditional: the feed is assumed eventually reachable,
// so there is no backoff growth and no attempt limit.
func (l *Link) Run(ctx context.Context) {
	for {
		l.setState(StateConnecting)

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.url, nil)
		if err != nil {
			l.logger.Warn("upstream dial failed", zap.String("url", l.url), zap.Error(err))
			l.setState(StateDisconnected)
		} else {
			l.logger.Info("connected to upstream feed", zap.String("url", l.url))
			l.mu.Lock()
			l.conn = conn
			l.state = StateAuthenticating
			l.mu.Unlock()

			l.authenticate()

			// Unblocks the read loop when ctx is cancelled mid-connection.
			done := make(chan struct{})
			go func() {
				select {
				case <-ctx.Done():
					conn.Close()
				case <-done:
				}
			}()

			l.readLoop(conn)
			close(done)

			l.mu.Lock()
			l.conn = nil
			l.state = StateDisconnected
			l.mu.Unlock()
			conn.Close()
			l.logger.Warn("disconnected from upstream feed")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.reconnectDelay):
		}
	}
}

func (l *Link) authenticate() {
	l.SendControl(authMessage{Action: "auth", Key: l.key, Secret: l.secret})
}

func (l *Link) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		l.handleFrame(data)
	}
}

// handleFrame decodes one inbound frame: an array of records, each
// classified by its "T" tag. Malformed records are skipped, not fatal.
func (l *Link) handleFrame(data []byte) {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		l.logger.Debug("dropping non-array upstream frame", zap.Error(err))
		return
	}

	for _, raw := range records {
		var env recordEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}

		switch {
		case env.Type == "q":
			l.handleQuoteRecord(raw)
		case env.Msg == "authenticated":
			l.logger.Info("upstream authenticated")
			l.setState(StateReady)
			if l.handlers.OnReady != nil {
				l.handlers.OnReady()
			}
		case env.Type == "error":
			l.logger.Warn("upstream error record", zap.ByteString("record", raw))
		default:
			// Trade, bar and status records are not relayed.
		}
	}
}

func (l *Link) handleQuoteRecord(raw json.RawMessage) {
	var rec quoteRecord
	if err := json.Unmarshal(raw, &rec); err != nil || rec.Symbol == "" {
		return
	}

	price := rec.LastPrice
	if price == 0 {
		price = rec.BidPrice
	}

	if l.handlers.OnQuote != nil {
		l.handlers.OnQuote(&models.Quote{
			Symbol:    rec.Symbol,
			Price:     price,
			Bid:       rec.BidPrice,
			Ask:       rec.AskPrice,
			BidSize:   rec.BidSize,
			AskSize:   rec.AskSize,
			Timestamp: rec.Timestamp,
		})
	}
}

// SendControl writes a control message to the upstream connection. It is
// a no-op while disconnected; callers must not assume delivery.
func (l *Link) SendControl(msg interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		return
	}
	l.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := l.conn.WriteJSON(msg); err != nil {
		l.logger.Warn("upstream control write failed", zap.Error(err))
	}
}

func (l *Link) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Link) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}
