package models

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Client is one downstream websocket connection and its subscription set.
type Client struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan *QuoteEvent
	Control chan interface{}

	Symbols   map[string]bool
	SymbolsMu sync.RWMutex
}

func NewClient(id string, conn *websocket.Conn) *Client {
	return &Client{
		ID:      id,
		Conn:    conn,
		Send:    make(chan *QuoteEvent, 256),
		Control: make(chan interface{}, 16),
		Symbols: make(map[string]bool),
	}
}

// Subscribe adds symbols to the client's set and returns the ones that
// were not already present.
func (c *Client) Subscribe(symbols []string) []string {
	c.SymbolsMu.Lock()
	defer c.SymbolsMu.Unlock()

	var added []string
	for _, s := range symbols {
		if !c.Symbols[s] {
			c.Symbols[s] = true
			added = append(added, s)
		}
	}
	return added
}

// Unsubscribe removes symbols from the client's set and returns the ones
// that were actually present.
func (c *Client) Unsubscribe(symbols []string) []string {
	c.SymbolsMu.Lock()
	defer c.SymbolsMu.Unlock()

	var removed []string
	for _, s := range symbols {
		if c.Symbols[s] {
			delete(c.Symbols, s)
			removed = append(removed, s)
		}
	}
	return removed
}

func (c *Client) IsSubscribed(symbol string) bool {
	c.SymbolsMu.RLock()
	defer c.SymbolsMu.RUnlock()
	return c.Symbols[symbol]
}

// SymbolList snapshots the current subscription set.
func (c *Client) SymbolList() []string {
	c.SymbolsMu.RLock()
	defer c.SymbolsMu.RUnlock()

	symbols := make([]string, 0, len(c.Symbols))
	for s := range c.Symbols {
		symbols = append(symbols, s)
	}
	return symbols
}
