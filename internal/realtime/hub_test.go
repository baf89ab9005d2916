package realtime

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/threadly/threadly-api/internal/core/domain"
	"github.com/threadly/threadly-api/internal/core/ports"
)

type stubPresence struct {
	mu      sync.Mutex
	online  []string
	offline []string
}

func (p *stubPresence) MarkOnline(_ context.Context, username string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online = append(p.online, username)
	return nil
}

func (p *stubPresence) MarkOffline(_ context.Context, username string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offline = append(p.offline, username)
	return nil
}

func (p *stubPresence) Refresh(context.Context, string) error { return nil }

func (p *stubPresence) wentOffline(username string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, u := range p.offline {
		if u == username {
			return true
		}
	}
	return false
}

type stubGameService struct {
	game *domain.NimGame
	err  error
}

func (s *stubGameService) CreateGame(context.Context, string, int) (*domain.NimGame, error) {
	return s.game, s.err
}

func (s *stubGameService) JoinGame(context.Context, string, string) (*domain.NimGame, error) {
	return s.game, s.err
}

func (s *stubGameService) ApplyMove(context.Context, ports.GameMoveInput) (*domain.NimGame, error) {
	return s.game, s.err
}

func (s *stubGameService) GetGame(context.Context, string) (*domain.NimGame, error) {
	return s.game, s.err
}

func startHub(t *testing.T, games ports.GameService, presence Presence) *Hub {
	t.Helper()
	if games == nil {
		games = &stubGameService{}
	}
	if presence == nil {
		presence = &stubPresence{}
	}
	h := NewHub(games, presence, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	return h
}

// testClient builds a hub client without a real websocket connection; tests
// read frames straight off the send channel instead of running the pumps.
func testClient(h *Hub, username string) *Client {
	return &Client{
		hub:      h,
		send:     make(chan []byte, sendBuffer),
		username: username,
		rooms:    make(map[string]bool),
	}
}

func connect(h *Hub, c *Client) {
	h.register <- c
}

func joinRoom(h *Hub, c *Client, room string) {
	h.join <- roomRequest{client: c, room: room}
}

func recvFrame(t *testing.T, c *Client) envelope {
	t.Helper()
	select {
	case data := <-c.send:
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("unmarshal frame: %v", err)
		}
		return env
	case <-time.After(time.Second):
		t.Fatalf("no frame received for client %s", c.username)
		return envelope{}
	}
}

func assertNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Fatalf("client %s received unexpected frame %s", c.username, data)
	case <-time.After(50 * time.Millisecond):
	}
}

func sampleUpdate(room string) ports.ChatUpdate {
	return ports.ChatUpdate{
		Type: ports.ChatUpdateNewMessage,
		Chat: &domain.EnrichedChat{ID: room, Participants: []string{"alice", "bob"}},
		Room: room,
	}
}

func TestHub_RoomFanout(t *testing.T) {
	h := startHub(t, nil, nil)

	alice := testClient(h, "alice")
	bob := testClient(h, "bob")
	carol := testClient(h, "carol")
	for _, c := range []*Client{alice, bob, carol} {
		connect(h, c)
	}
	joinRoom(h, alice, "c1")
	joinRoom(h, bob, "c1")

	h.Deliver(sampleUpdate("c1"))

	for _, c := range []*Client{alice, bob} {
		env := recvFrame(t, c)
		if env.Event != "chatUpdate" {
			t.Fatalf("expected chatUpdate, got %q", env.Event)
		}
	}
	// carol never joined the room
	assertNoFrame(t, carol)
}

func TestHub_LeaveStopsDelivery(t *testing.T) {
	h := startHub(t, nil, nil)

	alice := testClient(h, "alice")
	bob := testClient(h, "bob")
	connect(h, alice)
	connect(h, bob)
	joinRoom(h, alice, "c1")
	joinRoom(h, bob, "c1")

	h.leave <- roomRequest{client: bob, room: "c1"}
	h.Deliver(sampleUpdate("c1"))

	if env := recvFrame(t, alice); env.Event != "chatUpdate" {
		t.Fatalf("expected chatUpdate, got %q", env.Event)
	}
	assertNoFrame(t, bob)
}

func TestHub_UserTargetedDeliveryDedupes(t *testing.T) {
	h := startHub(t, nil, nil)

	alice := testClient(h, "alice")
	carol := testClient(h, "carol")
	connect(h, alice)
	connect(h, carol)
	joinRoom(h, alice, "c1")

	// alice matches both the room and the user list; she must get one frame.
	update := sampleUpdate("c1")
	update.Type = ports.ChatUpdateCreated
	update.Users = []string{"alice", "carol"}
	h.Deliver(update)

	if env := recvFrame(t, alice); env.Event != "chatUpdate" {
		t.Fatalf("expected chatUpdate, got %q", env.Event)
	}
	assertNoFrame(t, alice)

	// carol has not joined the room but is a participant.
	if env := recvFrame(t, carol); env.Event != "chatUpdate" {
		t.Fatalf("expected chatUpdate for targeted user, got %q", env.Event)
	}
}

func TestHub_SlowConsumerDropped(t *testing.T) {
	presence := &stubPresence{}
	h := startHub(t, nil, presence)

	slow := &Client{
		hub:      h,
		send:     make(chan []byte), // no buffer, nothing draining
		username: "slow",
		rooms:    make(map[string]bool),
	}
	connect(h, slow)
	joinRoom(h, slow, "c1")

	h.Deliver(sampleUpdate("c1"))

	// The drop closes the send channel.
	select {
	case _, ok := <-slow.send:
		if ok {
			t.Fatalf("expected closed channel, got frame")
		}
	case <-time.After(time.Second):
		t.Fatalf("slow consumer was not dropped")
	}
	if !presence.wentOffline("slow") {
		t.Fatalf("dropped client must be marked offline")
	}
}

func TestHub_MoveAcceptedBroadcastsGameState(t *testing.T) {
	game := domain.NewNimGame("g1", "alice", 7)
	_ = game.Join("bob")
	h := startHub(t, &stubGameService{game: game}, nil)

	alice := testClient(h, "alice")
	bob := testClient(h, "bob")
	connect(h, alice)
	connect(h, bob)
	joinRoom(h, alice, "g1")
	joinRoom(h, bob, "g1")

	h.handleMove(alice, ports.GameMoveInput{GameID: "g1", PlayerID: "alice", NumObjects: 2})

	for _, c := range []*Client{alice, bob} {
		env := recvFrame(t, c)
		if env.Event != "gameUpdate" {
			t.Fatalf("expected gameUpdate, got %q", env.Event)
		}
		payload, err := json.Marshal(env.Payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		if !strings.Contains(string(payload), `"gameState"`) {
			t.Fatalf("payload missing gameState: %s", payload)
		}
	}
}

func TestHub_MoveRejectedReportsToMoverOnly(t *testing.T) {
	h := startHub(t, &stubGameService{err: domain.ErrNotYourTurn}, nil)

	alice := testClient(h, "alice")
	bob := testClient(h, "bob")
	connect(h, alice)
	connect(h, bob)
	joinRoom(h, alice, "g1")
	joinRoom(h, bob, "g1")

	h.handleMove(bob, ports.GameMoveInput{GameID: "g1", PlayerID: "bob", NumObjects: 1})

	env := recvFrame(t, bob)
	if env.Event != "error" {
		t.Fatalf("expected error event, got %q", env.Event)
	}
	assertNoFrame(t, alice)
}

func TestClientDispatch_UnknownEvent(t *testing.T) {
	h := startHub(t, nil, nil)
	c := testClient(h, "alice")
	connect(h, c)

	c.dispatch(clientEvent{Event: "bogus"})

	env := recvFrame(t, c)
	if env.Event != "error" {
		t.Fatalf("expected error event, got %q", env.Event)
	}
}

func TestClientDispatch_MakeMovePayloadShape(t *testing.T) {
	game := domain.NewNimGame("g1", "alice", 7)
	_ = game.Join("bob")
	h := startHub(t, &stubGameService{game: game}, nil)

	alice := testClient(h, "alice")
	connect(h, alice)
	joinRoom(h, alice, "g1")

	payload := []byte(`{"gameID":"g1","move":{"gameID":"g1","playerID":"alice","move":{"numObjects":2}}}`)
	alice.dispatch(clientEvent{Event: "makeMove", Payload: payload})

	env := recvFrame(t, alice)
	if env.Event != "gameUpdate" {
		t.Fatalf("expected gameUpdate after makeMove, got %q", env.Event)
	}
}
