package ports

import (
	"context"
	"time"

	"github.com/threadly/threadly-api/internal/core/domain"
)

// MessageInput carries the fields of a message as received from a client.
type MessageInput struct {
	Msg         string
	MsgFrom     string
	MsgDateTime time.Time
	Type        string
}

// CreateChatInput is the payload for creating a chat with its initial
// messages in one call.
type CreateChatInput struct {
	Participants []string
	Messages     []MessageInput
}

// ChatService exposes the chat operations. Every mutating operation returns
// the enriched chat, re-fetched and joined after the write.
type ChatService interface {
	CreateChat(ctx context.Context, input CreateChatInput) (*domain.EnrichedChat, error)
	AddMessage(ctx context.Context, chatID string, msg MessageInput) (*domain.EnrichedChat, error)
	AddParticipant(ctx context.Context, chatID, userID string) (*domain.EnrichedChat, error)
	GetChat(ctx context.Context, chatID string) (*domain.EnrichedChat, error)
	// GetChatsByUser returns the chats the user participates in. Lookup
	// failures collapse to an empty slice (logged, not surfaced).
	GetChatsByUser(ctx context.Context, username string) ([]*domain.EnrichedChat, error)
}

// Chat update event types pushed to rooms.
const (
	ChatUpdateCreated        = "created"
	ChatUpdateNewMessage     = "newMessage"
	ChatUpdateNewParticipant = "newParticipant"
)

// ChatUpdate is a realtime event destined for the chat's room and,
// optionally, for individual user streams (so a freshly created chat reaches
// participants who have not joined the room yet).
type ChatUpdate struct {
	Type  string               `json:"type"`
	Chat  *domain.EnrichedChat `json:"chat"`
	Room  string               `json:"-"`
	Users []string             `json:"-"`
}
