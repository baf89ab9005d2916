package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/threadly/threadly-api/internal/core/ports"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

// clientEvent is the wire frame for every client-to-server event.
type clientEvent struct {
	Event   string          `json:"event"`
	ChatID  string          `json:"chatId,omitempty"`
	GameID  string          `json:"gameId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// makeMovePayload mirrors the client's nested move shape.
type makeMovePayload struct {
	GameID string `json:"gameID"`
	Move   struct {
		GameID   string `json:"gameID"`
		PlayerID string `json:"playerID"`
		Move     struct {
			NumObjects int `json:"numObjects"`
		} `json:"move"`
	} `json:"move"`
}

// Client is one websocket connection. The read pump feeds hub channels; the
// write pump drains the send channel and keeps the connection alive with
// pings.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	username string
	rooms    map[string]bool
}

// NewClient wraps an upgraded connection. Register starts the pumps.
func NewClient(hub *Hub, conn *websocket.Conn, username string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		username: username,
		rooms:    make(map[string]bool),
	}
}

// Register attaches the client to the hub and starts both pumps.
func (c *Client) Register() {
	c.hub.register <- c
	go c.writePump()
	go c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug().Err(err).Str("username", c.username).Msg("websocket closed unexpectedly")
			}
			return
		}

		var event clientEvent
		if err := json.Unmarshal(data, &event); err != nil {
			c.sendEvent("error", map[string]string{"error": "malformed event"})
			continue
		}
		c.dispatch(event)
	}
}

func (c *Client) dispatch(event clientEvent) {
	switch event.Event {
	case "joinChat":
		c.hub.join <- roomRequest{client: c, room: event.ChatID}
	case "leaveChat":
		c.hub.leave <- roomRequest{client: c, room: event.ChatID}
	case "joinGame":
		c.hub.join <- roomRequest{client: c, room: event.GameID}
	case "leaveGame":
		c.hub.leave <- roomRequest{client: c, room: event.GameID}
	case "makeMove":
		var mv makeMovePayload
		if err := json.Unmarshal(event.Payload, &mv); err != nil {
			c.sendEvent("error", map[string]string{"error": "malformed move"})
			return
		}
		c.hub.handleMove(c, ports.GameMoveInput{
			GameID:     mv.GameID,
			PlayerID:   mv.Move.PlayerID,
			NumObjects: mv.Move.Move.NumObjects,
		})
	default:
		c.sendEvent("error", map[string]string{"error": "unknown event"})
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			c.refreshPresence()
		}
	}
}

func (c *Client) refreshPresence() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.hub.presence.Refresh(ctx, c.username); err != nil {
		c.hub.log.Debug().Err(err).Str("username", c.username).Msg("presence refresh failed")
	}
}

// sendEvent marshals and enqueues a single event for this client only.
func (c *Client) sendEvent(event string, payload any) {
	data, err := json.Marshal(envelope{Event: event, Payload: payload})
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
