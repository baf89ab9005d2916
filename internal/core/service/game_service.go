package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/threadly/threadly-api/internal/api/metrics"
	"github.com/threadly/threadly-api/internal/core/domain"
	"github.com/threadly/threadly-api/internal/core/ports"
)

// GameService drives the embedded Nim games: creation, joining, and
// server-side move validation. State is loaded, mutated, and saved wholesale;
// concurrent moves on the same game resolve last-writer-wins, which turn
// validation makes rare in practice (at most one player holds the turn).
type GameService struct {
	repo   ports.GameRepository
	logger zerolog.Logger
}

func NewGameService(repo ports.GameRepository, logger zerolog.Logger) *GameService {
	return &GameService{repo: repo, logger: logger}
}

// CreateGame starts a WAITING game with the creator as player 1.
func (s *GameService) CreateGame(ctx context.Context, creator string, objects int) (*domain.NimGame, error) {
	game := domain.NewNimGame(uuid.NewString(), creator, objects)
	if err := s.repo.Save(ctx, game); err != nil {
		s.logger.Error().Err(err).Str("game_id", game.GameID).Msg("failed to create game")
		return nil, err
	}
	s.logger.Info().Str("game_id", game.GameID).Str("creator", creator).Msg("game created")
	return game, nil
}

// JoinGame adds the second player; the game flips to IN_PROGRESS.
func (s *GameService) JoinGame(ctx context.Context, gameID, player string) (*domain.NimGame, error) {
	game, err := s.repo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := game.Join(player); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, game); err != nil {
		return nil, err
	}
	s.logger.Info().Str("game_id", gameID).Str("player", player).Msg("player joined game")
	return game, nil
}

// ApplyMove validates the move against the current state and persists the
// result. Rejections never mutate state.
func (s *GameService) ApplyMove(ctx context.Context, input ports.GameMoveInput) (*domain.NimGame, error) {
	game, err := s.repo.FindByID(ctx, input.GameID)
	if err != nil {
		metrics.GameMovesTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	if err := game.ApplyMove(input.PlayerID, input.NumObjects); err != nil {
		metrics.GameMovesTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	if err := s.repo.Save(ctx, game); err != nil {
		s.logger.Error().Err(err).Str("game_id", input.GameID).Msg("failed to save game state")
		return nil, err
	}

	metrics.GameMovesTotal.WithLabelValues("accepted").Inc()
	if game.Status == domain.GameOver {
		s.logger.Info().
			Str("game_id", game.GameID).
			Str("winner", game.Winner).
			Str("loser", game.Loser).
			Msg("game over")
	}
	return game, nil
}

func (s *GameService) GetGame(ctx context.Context, gameID string) (*domain.NimGame, error) {
	return s.repo.FindByID(ctx, gameID)
}
