package ports

import (
	"context"

	"github.com/threadly/threadly-api/internal/core/domain"
)

// GameRepository persists game state documents keyed by game id.
type GameRepository interface {
	// Save upserts the full game state (last writer wins).
	Save(ctx context.Context, game *domain.NimGame) error
	FindByID(ctx context.Context, gameID string) (*domain.NimGame, error)
}
