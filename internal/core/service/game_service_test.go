package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/threadly/threadly-api/internal/core/domain"
	"github.com/threadly/threadly-api/internal/core/ports"
)

type stubGameRepo struct {
	games   map[string]*domain.NimGame
	saveErr error
}

func newStubGameRepo() *stubGameRepo {
	return &stubGameRepo{games: make(map[string]*domain.NimGame)}
}

func (r *stubGameRepo) Save(_ context.Context, game *domain.NimGame) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	clone := *game
	clone.Moves = append([]domain.NimMove{}, game.Moves...)
	r.games[game.GameID] = &clone
	return nil
}

func (r *stubGameRepo) FindByID(_ context.Context, gameID string) (*domain.NimGame, error) {
	game, ok := r.games[gameID]
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	clone := *game
	clone.Moves = append([]domain.NimMove{}, game.Moves...)
	return &clone, nil
}

func newTestGameService(repo *stubGameRepo) *GameService {
	return NewGameService(repo, zerolog.Nop())
}

func TestGamePipeline_CreateJoinMove(t *testing.T) {
	repo := newStubGameRepo()
	svc := newTestGameService(repo)
	ctx := context.Background()

	game, err := svc.CreateGame(ctx, "alice", 0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if game.GameID == "" {
		t.Fatalf("expected generated game id")
	}
	if game.Status != domain.GameWaiting {
		t.Fatalf("expected WAITING, got %s", game.Status)
	}
	if game.Remaining != domain.NimStartingObjects {
		t.Fatalf("expected default pile, got %d", game.Remaining)
	}

	joined, err := svc.JoinGame(ctx, game.GameID, "bob")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined.Status != domain.GameInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", joined.Status)
	}

	moved, err := svc.ApplyMove(ctx, ports.GameMoveInput{GameID: game.GameID, PlayerID: "alice", NumObjects: 3})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.Remaining != domain.NimStartingObjects-3 {
		t.Fatalf("expected pile %d, got %d", domain.NimStartingObjects-3, moved.Remaining)
	}

	// The accepted move must be persisted, not just returned.
	stored, err := svc.GetGame(ctx, game.GameID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(stored.Moves) != 1 {
		t.Fatalf("expected 1 persisted move, got %d", len(stored.Moves))
	}
}

func TestApplyMove_RejectionLeavesStateUntouched(t *testing.T) {
	repo := newStubGameRepo()
	svc := newTestGameService(repo)
	ctx := context.Background()

	game, err := svc.CreateGame(ctx, "alice", 7)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.JoinGame(ctx, game.GameID, "bob"); err != nil {
		t.Fatalf("join: %v", err)
	}

	// Out of turn.
	if _, err := svc.ApplyMove(ctx, ports.GameMoveInput{GameID: game.GameID, PlayerID: "bob", NumObjects: 1}); !errors.Is(err, domain.ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
	// Out of range.
	if _, err := svc.ApplyMove(ctx, ports.GameMoveInput{GameID: game.GameID, PlayerID: "alice", NumObjects: 4}); !errors.Is(err, domain.ErrInvalidMove) {
		t.Fatalf("expected ErrInvalidMove, got %v", err)
	}

	stored, err := svc.GetGame(ctx, game.GameID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(stored.Moves) != 0 || stored.Remaining != 7 {
		t.Fatalf("rejected moves must not change state: %+v", stored)
	}
}

func TestApplyMove_UnknownGame(t *testing.T) {
	svc := newTestGameService(newStubGameRepo())

	_, err := svc.ApplyMove(context.Background(), ports.GameMoveInput{GameID: "missing", PlayerID: "alice", NumObjects: 1})
	if !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestJoinGame_FullGame(t *testing.T) {
	svc := newTestGameService(newStubGameRepo())
	ctx := context.Background()

	game, err := svc.CreateGame(ctx, "alice", 7)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.JoinGame(ctx, game.GameID, "bob"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := svc.JoinGame(ctx, game.GameID, "carol"); !errors.Is(err, domain.ErrGameFull) {
		t.Fatalf("expected ErrGameFull, got %v", err)
	}
}
