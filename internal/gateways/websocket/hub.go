package websocket

import (
	"context"
	"time"

	"todoboard/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	sendBuffer = 16
	writeWait  = 10 * time.Second
)

type Client struct {
	hub    *Hub
	conn   ClientConn
	send   chan utils.Event
	ID     string
	UserID string
}

type ClientConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// TokenVerifier resolves the token passed on the websocket URL to a user id.
type TokenVerifier interface {
	UserID(raw string) (string, error)
}

// Hub forwards bus events to every connection of the user they belong to.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	events     <-chan utils.Event
	verifier   TokenVerifier
	logger     *zap.SugaredLogger
}

func NewHub(logger *zap.Logger, bus *utils.EventBus, verifier TokenVerifier) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		events:     bus.SubscribeCh(),
		verifier:   verifier,
		logger:     logger.Sugar(),
	}
}

func newClient(hub *Hub, conn ClientConn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan utils.Event, sendBuffer),
		ID:     uuid.NewString(),
		UserID: userID,
	}
}

func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("WebSocket Hub started")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.logger.Info("WebSocket Hub stopped")
			return

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Infow("Client connected",
				"client_id", client.ID,
				"user_id", client.UserID,
				"clients_count", len(h.clients),
			)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Infow("Client disconnected",
					"client_id", client.ID,
					"clients_count", len(h.clients),
				)
			}

		case event := <-h.events:
			h.dispatch(event)
		}
	}
}

// join hands the client to Run. It reports false once the hub has stopped.
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) dispatch(event utils.Event) {
	for client := range h.clients {
		if client.UserID != event.UserID {
			continue
		}
		select {
		case client.send <- event:
		default:
			h.logger.Warnw("Dropping slow websocket client",
				"client_id", client.ID,
				"user_id", client.UserID,
			)
			delete(h.clients, client)
			close(client.send)
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for event := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(event); err != nil {
			c.hub.logger.Debugw("Websocket write failed", "client_id", c.ID, "error", err)
			return
		}
	}
}
