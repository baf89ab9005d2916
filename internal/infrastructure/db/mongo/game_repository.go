package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/threadly/threadly-api/internal/core/domain"
)

const collectionGames = "games"

// GameRepository implements ports.GameRepository using MongoDB. Game state is
// replaced wholesale on each accepted move, last writer wins.
type GameRepository struct {
	coll *mongo.Collection
}

func NewGameRepository(db *mongo.Database) *GameRepository {
	return &GameRepository{coll: db.Collection(collectionGames)}
}

type gameDoc struct {
	GameID    string            `bson:"game_id"`
	GameType  string            `bson:"game_type"`
	Players   []string          `bson:"players"`
	Moves     []gameMoveDoc     `bson:"moves"`
	Remaining int               `bson:"remaining"`
	Status    domain.GameStatus `bson:"status"`
	Winner    string            `bson:"winner,omitempty"`
	Loser     string            `bson:"loser,omitempty"`
	CreatedAt time.Time         `bson:"created_at"`
}

type gameMoveDoc struct {
	PlayerID   string `bson:"player_id"`
	NumObjects int    `bson:"num_objects"`
}

func toGameDoc(g *domain.NimGame) gameDoc {
	moves := make([]gameMoveDoc, 0, len(g.Moves))
	for _, m := range g.Moves {
		moves = append(moves, gameMoveDoc{PlayerID: m.PlayerID, NumObjects: m.NumObjects})
	}
	return gameDoc{
		GameID:    g.GameID,
		GameType:  g.GameType,
		Players:   g.Players,
		Moves:     moves,
		Remaining: g.Remaining,
		Status:    g.Status,
		Winner:    g.Winner,
		Loser:     g.Loser,
		CreatedAt: g.CreatedAt,
	}
}

func (d *gameDoc) toDomain() *domain.NimGame {
	moves := make([]domain.NimMove, 0, len(d.Moves))
	for _, m := range d.Moves {
		moves = append(moves, domain.NimMove{PlayerID: m.PlayerID, NumObjects: m.NumObjects})
	}
	return &domain.NimGame{
		GameID:    d.GameID,
		GameType:  d.GameType,
		Players:   d.Players,
		Moves:     moves,
		Remaining: d.Remaining,
		Status:    d.Status,
		Winner:    d.Winner,
		Loser:     d.Loser,
		CreatedAt: d.CreatedAt,
	}
}

// Save upserts the full game state document.
func (r *GameRepository) Save(ctx context.Context, game *domain.NimGame) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	_, err := r.coll.ReplaceOne(ctx, bson.M{"game_id": game.GameID}, toGameDoc(game), opts)
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	return nil
}

func (r *GameRepository) FindByID(ctx context.Context, gameID string) (*domain.NimGame, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc gameDoc
	if err := r.coll.FindOne(ctx, bson.M{"game_id": gameID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrGameNotFound
		}
		return nil, fmt.Errorf("find game: %w", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the unique game id index.
func (r *GameRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "game_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
