package domain

import (
	"errors"
	"testing"
)

func startedGame(t *testing.T, objects int) *NimGame {
	t.Helper()
	g := NewNimGame("g1", "alice", objects)
	if err := g.Join("bob"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if g.Status != GameInProgress {
		t.Fatalf("expected IN_PROGRESS after second join, got %s", g.Status)
	}
	return g
}

func TestNewNimGame_DefaultPile(t *testing.T) {
	g := NewNimGame("g1", "alice", 0)
	if g.Remaining != NimStartingObjects {
		t.Fatalf("expected default pile %d, got %d", NimStartingObjects, g.Remaining)
	}
	if g.Status != GameWaiting {
		t.Fatalf("expected WAITING with one player, got %s", g.Status)
	}
}

func TestJoin_ThirdPlayerRejected(t *testing.T) {
	g := startedGame(t, 7)
	if err := g.Join("carol"); !errors.Is(err, ErrGameFull) {
		t.Fatalf("expected ErrGameFull, got %v", err)
	}
	if err := g.Join("alice"); !errors.Is(err, ErrAlreadyJoined) {
		t.Fatalf("expected ErrAlreadyJoined, got %v", err)
	}
}

func TestApplyMove_TurnParity(t *testing.T) {
	g := startedGame(t, 7)

	if got := g.ToMove(); got != "alice" {
		t.Fatalf("even move count should be player 1's turn, got %q", got)
	}
	if err := g.ApplyMove("bob", 1); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
	if err := g.ApplyMove("alice", 1); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := g.ToMove(); got != "bob" {
		t.Fatalf("odd move count should be player 2's turn, got %q", got)
	}
}

func TestApplyMove_RangeValidation(t *testing.T) {
	g := startedGame(t, 2)

	for _, n := range []int{0, -1, 4} {
		if err := g.ApplyMove("alice", n); !errors.Is(err, ErrInvalidMove) {
			t.Fatalf("expected ErrInvalidMove for %d, got %v", n, err)
		}
	}
	// 3 is in [1,3] but exceeds the remaining pile of 2.
	if err := g.ApplyMove("alice", 3); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("expected ErrInvalidMove for move beyond pile, got %v", err)
	}
	if len(g.Moves) != 0 {
		t.Fatalf("rejected moves must not be recorded, got %d", len(g.Moves))
	}
}

func TestApplyMove_LastObjectLoses(t *testing.T) {
	g := startedGame(t, 7)

	// 3 + 2 + 2 empties the pile on the third move.
	if err := g.ApplyMove("alice", 3); err != nil {
		t.Fatalf("move 1: %v", err)
	}
	if err := g.ApplyMove("bob", 2); err != nil {
		t.Fatalf("move 2: %v", err)
	}
	if err := g.ApplyMove("alice", 2); err != nil {
		t.Fatalf("move 3: %v", err)
	}

	if g.Remaining != 0 {
		t.Fatalf("expected empty pile, got %d", g.Remaining)
	}
	if g.Status != GameOver {
		t.Fatalf("expected GAME_OVER, got %s", g.Status)
	}
	if g.Loser != "alice" {
		t.Fatalf("mover of the last object should lose, got loser %q", g.Loser)
	}
	if g.Winner != "bob" {
		t.Fatalf("expected winner bob, got %q", g.Winner)
	}
}

func TestApplyMove_AfterGameOver(t *testing.T) {
	g := startedGame(t, 1)
	if err := g.ApplyMove("alice", 1); err != nil {
		t.Fatalf("move: %v", err)
	}
	if err := g.ApplyMove("bob", 1); !errors.Is(err, ErrGameNotInProgress) {
		t.Fatalf("expected ErrGameNotInProgress, got %v", err)
	}
}

func TestApplyMove_BeforeSecondPlayer(t *testing.T) {
	g := NewNimGame("g1", "alice", 7)
	if err := g.ApplyMove("alice", 1); !errors.Is(err, ErrGameNotInProgress) {
		t.Fatalf("expected ErrGameNotInProgress, got %v", err)
	}
}
