package ports

import (
	"context"

	"github.com/threadly/threadly-api/internal/core/domain"
)

// GameMoveInput is a move request as received over the realtime channel.
type GameMoveInput struct {
	GameID     string
	PlayerID   string
	NumObjects int
}

// GameService drives the embedded turn-based games.
type GameService interface {
	// CreateGame starts a WAITING game; objects <= 0 uses the default pile.
	CreateGame(ctx context.Context, creator string, objects int) (*domain.NimGame, error)
	JoinGame(ctx context.Context, gameID, player string) (*domain.NimGame, error)
	// ApplyMove validates the move server-side (turn order, 1..3 range,
	// remaining pile) and persists the new state.
	ApplyMove(ctx context.Context, input GameMoveInput) (*domain.NimGame, error)
	GetGame(ctx context.Context, gameID string) (*domain.NimGame, error)
}
