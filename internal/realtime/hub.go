// Package realtime implements the websocket fan-out layer: clients join and
// leave rooms keyed by chat or game id, and the server pushes chatUpdate and
// gameUpdate events to room members. Delivery is fire-and-forget — there is
// no sequence numbering and no replay on reconnect; a client that is offline
// when an event fires catches up on its next full fetch.
package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/threadly/threadly-api/internal/api/metrics"
	"github.com/threadly/threadly-api/internal/core/ports"
)

// Presence abstracts the online-presence store the hub reports into.
type Presence interface {
	MarkOnline(ctx context.Context, username string) error
	MarkOffline(ctx context.Context, username string) error
	Refresh(ctx context.Context, username string) error
}

// envelope is the wire frame for every server-to-client event.
type envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

type roomRequest struct {
	client *Client
	room   string
}

type delivery struct {
	room  string
	users []string
	data  []byte
}

// Hub owns all connected clients and their room memberships. All membership
// state is confined to the Run goroutine; other goroutines talk to it over
// channels only.
type Hub struct {
	clients    map[*Client]bool
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	join       chan roomRequest
	leave      chan roomRequest
	broadcast  chan delivery

	games    ports.GameService
	presence Presence
	log      zerolog.Logger
}

func NewHub(games ports.GameService, presence Presence, log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan roomRequest),
		leave:      make(chan roomRequest),
		broadcast:  make(chan delivery, 64),
		games:      games,
		presence:   presence,
		log:        log,
	}
}

// Run processes hub events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.clients[client] = true
			metrics.WSConnections.Inc()
			h.markOnline(client.username)
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.removeClient(client)
			}
		case req := <-h.join:
			if req.room == "" {
				continue
			}
			if h.rooms[req.room] == nil {
				h.rooms[req.room] = make(map[*Client]bool)
			}
			h.rooms[req.room][req.client] = true
			req.client.rooms[req.room] = true
		case req := <-h.leave:
			// leaving with an empty or unknown room id is a no-op
			h.removeFromRoom(req.client, req.room)
		case d := <-h.broadcast:
			h.deliver(d)
		}
	}
}

// Deliver fans a chat update out to the chat's room and, for chats the
// recipients may not have joined yet, to each participant's own connections.
// Safe to call from any goroutine.
func (h *Hub) Deliver(update ports.ChatUpdate) {
	data, err := json.Marshal(envelope{Event: "chatUpdate", Payload: update})
	if err != nil {
		h.log.Error().Err(err).Str("room", update.Room).Msg("failed to marshal chat update")
		return
	}
	metrics.ChatUpdatesBroadcastTotal.WithLabelValues(update.Type).Inc()
	h.broadcast <- delivery{room: update.Room, users: update.Users, data: data}
}

// broadcastGame pushes the new game state to the game's room.
func (h *Hub) broadcastGame(gameID string, payload any) {
	data, err := json.Marshal(envelope{Event: "gameUpdate", Payload: payload})
	if err != nil {
		h.log.Error().Err(err).Str("game_id", gameID).Msg("failed to marshal game update")
		return
	}
	h.broadcast <- delivery{room: gameID, data: data}
}

// deliver runs on the Run goroutine. Each target client receives the payload
// at most once even when it matches both the room and the user list.
func (h *Hub) deliver(d delivery) {
	sent := make(map[*Client]bool)
	for client := range h.rooms[d.room] {
		h.send(client, d.data)
		sent[client] = true
	}
	if len(d.users) > 0 {
		targets := make(map[string]bool, len(d.users))
		for _, u := range d.users {
			targets[u] = true
		}
		for client := range h.clients {
			if !sent[client] && targets[client.username] {
				h.send(client, d.data)
			}
		}
	}
}

// send enqueues data on the client's buffered channel; a client that cannot
// keep up is dropped, mirroring the slow-consumer policy of the upstream
// chat hub this one is modelled on.
func (h *Hub) send(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		h.removeClient(client)
	}
}

func (h *Hub) removeClient(client *Client) {
	for room := range client.rooms {
		h.removeFromRoom(client, room)
	}
	delete(h.clients, client)
	close(client.send)
	metrics.WSConnections.Dec()
	h.markOffline(client.username)
}

func (h *Hub) removeFromRoom(client *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(client.rooms, room)
}

// handleMove is invoked from a client's read pump. The move is validated and
// applied by the game service; accepted moves are broadcast to the game room,
// rejected ones are reported to the mover only.
func (h *Hub) handleMove(client *Client, input ports.GameMoveInput) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	game, err := h.games.ApplyMove(ctx, input)
	if err != nil {
		h.log.Warn().Err(err).
			Str("game_id", input.GameID).
			Str("player", input.PlayerID).
			Msg("move rejected")
		client.sendEvent("error", map[string]string{"error": err.Error()})
		return
	}
	h.broadcastGame(game.GameID, map[string]any{"gameState": game})
}

func (h *Hub) markOnline(username string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.presence.MarkOnline(ctx, username); err != nil {
		h.log.Warn().Err(err).Str("username", username).Msg("failed to mark user online")
	}
}

func (h *Hub) markOffline(username string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.presence.MarkOffline(ctx, username); err != nil {
		h.log.Warn().Err(err).Str("username", username).Msg("failed to mark user offline")
	}
}
