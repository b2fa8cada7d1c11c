package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockfolio/backend/internal/models"
)

func newFrameLink(handlers Handlers) *Link {
	return NewLink("ws://unused", "key", "secret", time.Second, handlers, zap.NewNop())
}

func TestHandleFrame_NormalizesQuoteRecord(t *testing.T) {
	var got *models.Quote
	l := newFrameLink(Handlers{OnQuote: func(q *models.Quote) { got = q }})

	l.handleFrame([]byte(`[{"T":"q","S":"AAPL","p":191.23,"bp":191.20,"ap":191.25,"bs":4,"as":2,"t":"2026-08-29T14:30:00Z"}]`))

	require.NotNil(t, got)
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, 191.23, got.Price)
	assert.Equal(t, 191.20, got.Bid)
	assert.Equal(t, 191.25, got.Ask)
	assert.Equal(t, 4, got.BidSize)
	assert.Equal(t, 2, got.AskSize)
	assert.Equal(t, "2026-08-29T14:30:00Z", got.Timestamp)
}

func TestHandleFrame_FallsBackToBidPrice(t *testing.T) {
	var got *models.Quote
	l := newFrameLink(Handlers{OnQuote: func(q *models.Quote) { got = q }})

	l.handleFrame([]byte(`[{"T":"q","S":"MSFT","bp":402.10,"ap":402.15}]`))

	require.NotNil(t, got)
	assert.Equal(t, 402.10, got.Price)
}

func TestHandleFrame_SkipsMalformedRecords(t *testing.T) {
	var quotes []*models.Quote
	l := newFrameLink(Handlers{OnQuote: func(q *models.Quote) { quotes = append(quotes, q) }})

	// Record without a symbol, unknown tags and garbage must not stop
	// the quote record behind them from being relayed.
	l.handleFrame([]byte(`[{"T":"q"},{"T":"b","S":"AAPL"},"garbage",{"T":"q","S":"TSLA","p":242.1}]`))

	require.Len(t, quotes, 1)
	assert.Equal(t, "TSLA", quotes[0].Symbol)
}

func TestHandleFrame_NonArrayFrameIgnored(t *testing.T) {
	called := false
	l := newFrameLink(Handlers{OnQuote: func(q *models.Quote) { called = true }})

	l.handleFrame([]byte(`{"T":"q","S":"AAPL","p":1}`))
	assert.False(t, called)
}

func TestHandleFrame_AuthenticatedAckFiresOnReady(t *testing.T) {
	ready := false
	l := newFrameLink(Handlers{OnReady: func() { ready = true }})
	l.setState(StateAuthenticating)

	l.handleFrame([]byte(`[{"T":"success","msg":"authenticated"}]`))

	assert.True(t, ready)
	assert.Equal(t, StateReady, l.State())
}

func TestSendControl_NoOpWhileDisconnected(t *testing.T) {
	l := newFrameLink(Handlers{})

	// Must not panic or block without a live connection.
	l.SendControl(SubscriptionMessage{Action: "subscribe", Quotes: []string{"AAPL"}})
	assert.Equal(t, StateDisconnected, l.State())
}

var testUpgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// fakeFeed upgrades each connection, checks the auth handshake, acks it
// and hands the connection to the test.
func fakeFeed(t *testing.T, conns chan *websocket.Conn, dials *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		dials.Add(1)

		var auth map[string]string
		if err := conn.ReadJSON(&auth); err != nil {
			return
		}
		if auth["action"] != "auth" || auth["key"] != "key" {
			t.Errorf("unexpected auth message: %v", auth)
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(`[{"T":"success","msg":"authenticated"}]`)); err != nil {
			return
		}
		conns <- conn
	}))
}

func TestLink_ConnectAuthenticateAndResubscribe(t *testing.T) {
	conns := make(chan *websocket.Conn, 2)
	var dials atomic.Int32
	srv := fakeFeed(t, conns, &dials)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	quotes := make(chan *models.Quote, 8)

	var (
		link     *Link
		registry *Registry
	)
	link = NewLink(wsURL, "key", "secret", 50*time.Millisecond, Handlers{
		OnQuote: func(q *models.Quote) { quotes <- q },
		OnReady: func() { registry.Resubscribe() },
	}, zap.NewNop())
	registry = NewRegistry(link, zap.NewNop())

	// Interest registered before the link is up: the Ready replay must
	// cover it.
	registry.AddInterest([]string{"AAPL", "MSFT"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go link.Run(ctx)

	var conn *websocket.Conn
	select {
	case conn = <-conns:
	case <-time.After(2 * time.Second):
		t.Fatal("link never connected")
	}
	defer conn.Close()

	var sub SubscriptionMessage
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&sub))
	assert.Equal(t, "subscribe", sub.Action)
	assert.Equal(t, []string{"AAPL", "MSFT"}, sub.Quotes)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`[{"T":"q","S":"AAPL","p":191.23,"bp":191.20,"ap":191.25,"bs":4,"as":2,"t":"2026-08-29T14:30:00Z"}]`)))

	select {
	case q := <-quotes:
		assert.Equal(t, "AAPL", q.Symbol)
		assert.Equal(t, 191.23, q.Price)
	case <-time.After(2 * time.Second):
		t.Fatal("quote never relayed")
	}
}

func TestLink_ReconnectsAfterClose(t *testing.T) {
	conns := make(chan *websocket.Conn, 2)
	var dials atomic.Int32
	srv := fakeFeed(t, conns, &dials)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	link := NewLink(wsURL, "key", "secret", 50*time.Millisecond, Handlers{}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go link.Run(ctx)

	var first *websocket.Conn
	select {
	case first = <-conns:
	case <-time.After(2 * time.Second):
		t.Fatal("link never connected")
	}
	first.Close()

	select {
	case second := <-conns:
		second.Close()
	case <-time.After(2 * time.Second):
		t.Fatal("link never reconnected")
	}
	assert.GreaterOrEqual(t, dials.Load(), int32(2))
}
