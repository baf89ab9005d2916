package domain

import (
	"errors"
	"time"
)

// GameStatus represents the lifecycle state of an embedded game.
type GameStatus string

const (
	GameWaiting    GameStatus = "WAITING"
	GameInProgress GameStatus = "IN_PROGRESS"
	GameOver       GameStatus = "GAME_OVER"
)

const (
	// NimStartingObjects is the default pile size for a new game.
	NimStartingObjects = 21
	// NimMaxTake is the maximum number of objects removable per move.
	NimMaxTake = 3
	nimPlayers = 2
)

var ErrGameNotFound = errors.New("Game not found")
var ErrGameFull = errors.New("game already has two players")
var ErrAlreadyJoined = errors.New("player already joined")
var ErrGameNotInProgress = errors.New("game is not in progress")
var ErrNotYourTurn = errors.New("not your turn")
var ErrInvalidMove = errors.New("move must remove between 1 and 3 objects")

// NimMove records a single accepted move.
type NimMove struct {
	PlayerID   string `json:"playerID"`
	NumObjects int    `json:"numObjects"`
}

// NimGame is the state of one misère Nim game: players alternate removing
// 1 to 3 objects from the pile, and whoever removes the last object loses.
type NimGame struct {
	GameID    string     `json:"gameID"`
	GameType  string     `json:"gameType"`
	Players   []string   `json:"players"`
	Moves     []NimMove  `json:"moves"`
	Remaining int        `json:"remainingObjects"`
	Status    GameStatus `json:"status"`
	Winner    string     `json:"winners,omitempty"`
	Loser     string     `json:"loser,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// NewNimGame creates a WAITING game with the creator as player 1. A
// non-positive objects count falls back to the default pile size.
func NewNimGame(gameID, creator string, objects int) *NimGame {
	if objects <= 0 {
		objects = NimStartingObjects
	}
	return &NimGame{
		GameID:    gameID,
		GameType:  "Nim",
		Players:   []string{creator},
		Moves:     []NimMove{},
		Remaining: objects,
		Status:    GameWaiting,
		CreatedAt: time.Now().UTC(),
	}
}

// Join adds a second player and starts the game.
func (g *NimGame) Join(player string) error {
	for _, p := range g.Players {
		if p == player {
			return ErrAlreadyJoined
		}
	}
	if len(g.Players) >= nimPlayers {
		return ErrGameFull
	}
	g.Players = append(g.Players, player)
	if len(g.Players) == nimPlayers {
		g.Status = GameInProgress
	}
	return nil
}

// ToMove returns the player whose turn it is: even move count means player 1,
// odd means player 2. Empty while the game is not in progress.
func (g *NimGame) ToMove() string {
	if g.Status != GameInProgress {
		return ""
	}
	return g.Players[len(g.Moves)%nimPlayers]
}

// ApplyMove validates and applies one move. On reaching zero the mover is
// recorded as the loser and the opponent as the winner.
func (g *NimGame) ApplyMove(player string, numObjects int) error {
	switch g.Status {
	case GameInProgress:
	default:
		return ErrGameNotInProgress
	}
	if player != g.ToMove() {
		return ErrNotYourTurn
	}
	if numObjects < 1 || numObjects > NimMaxTake || numObjects > g.Remaining {
		return ErrInvalidMove
	}

	g.Moves = append(g.Moves, NimMove{PlayerID: player, NumObjects: numObjects})
	g.Remaining -= numObjects

	if g.Remaining == 0 {
		g.Status = GameOver
		g.Loser = player
		for _, p := range g.Players {
			if p != player {
				g.Winner = p
			}
		}
	}
	return nil
}
