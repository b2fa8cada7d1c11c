package models

// Quote is one normalized tick from the upstream feed.
type Quote struct {
	Symbol    string
	Price     float64
	Bid       float64
	Ask       float64
	BidSize   int
	AskSize   int
	Timestamp string
}

// QuoteEvent is the frame forwarded to subscribed downstream clients.
type QuoteEvent struct {
	Type      string  `json:"type"`
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Bid       float64 `json:"bid"`
	Ask       float64 `json:"ask"`
	BidSize   int     `json:"bidSize"`
	AskSize   int     `json:"askSize"`
	Timestamp string  `json:"timestamp"`
}

func (q *Quote) Event() *QuoteEvent {
	return &QuoteEvent{
		Type:      "quote",
		Symbol:    q.Symbol,
		Price:     q.Price,
		Bid:       q.Bid,
		Ask:       q.Ask,
		BidSize:   q.BidSize,
		AskSize:   q.AskSize,
		Timestamp: q.Timestamp,
	}
}

// SocketMessage is a control frame sent by a downstream client.
type SocketMessage struct {
	Action  string   `json:"action"`
	Symbols []string `json:"symbols"`
}

type SubscriptionResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Symbols []string `json:"symbols,omitempty"`
}
