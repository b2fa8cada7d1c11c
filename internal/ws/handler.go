package ws

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/stockfolio/backend/internal/models"
)

const (
	writeWait = 10 * time.Second

	pongWait = 60 * time.Second

	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub    *Hub
	logger *zap.Logger
}

func NewWebSocketHandler(hub *Hub, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := h.hub.RegisterClient(conn)

	go h.readPump(client)
	go h.writePump(client)
}

func (h *WebSocketHandler) readPump(client *models.Client) {
	defer func() {
		h.hub.UnregisterClient(client)
	}()

	client.Conn.SetReadLimit(maxMessageSize)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("client read error", zap.String("client_id", client.ID), zap.Error(err))
			}
			break
		}

		// Malformed or unrecognized frames are dropped without a reply;
		// the connection stays open.
		var socketMsg models.SocketMessage
		if err := json.Unmarshal(message, &socketMsg); err != nil {
			h.logger.Warn("dropping malformed client message", zap.String("client_id", client.ID), zap.Error(err))
			continue
		}

		switch socketMsg.Action {
		case "subscribe":
			if len(socketMsg.Symbols) == 0 {
				continue
			}
			symbols := h.hub.Subscribe(client, socketMsg.Symbols)
			h.respond(client, models.SubscriptionResponse{
				Status:  "success",
				Message: "Subscribed to " + strings.Join(socketMsg.Symbols, ","),
				Symbols: symbols,
			})

		case "unsubscribe":
			if len(socketMsg.Symbols) == 0 {
				continue
			}
			symbols := h.hub.Unsubscribe(client, socketMsg.Symbols)
			h.respond(client, models.SubscriptionResponse{
				Status:  "success",
				Message: "Unsubscribed from " + strings.Join(socketMsg.Symbols, ","),
				Symbols: symbols,
			})

		default:
			h.logger.Warn("dropping unknown client action",
				zap.String("client_id", client.ID), zap.String("action", socketMsg.Action))
		}
	}
}

// respond queues a control response for the write pump. The pump owns the
// connection, so responses never interleave with quote frames.
func (h *WebSocketHandler) respond(client *models.Client, response interface{}) {
	select {
	case client.Control <- response:
	default:
		h.logger.Warn("client control buffer full, dropping response", zap.String("client_id", client.ID))
	}
}

func (h *WebSocketHandler) writePump(client *models.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := client.Conn.WriteJSON(event); err != nil {
				return
			}

		case response := <-client.Control:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteJSON(response); err != nil {
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
