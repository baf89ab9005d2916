package ports

import (
	"context"

	"github.com/threadly/threadly-api/internal/core/domain"
)

// ChatRepository defines persistence operations for chats and their messages.
type ChatRepository interface {
	// CreateMessage inserts one message document and returns it with its
	// generated id.
	CreateMessage(ctx context.Context, m *domain.Message) (*domain.Message, error)
	// CreateChat inserts a chat referencing the given message ids.
	CreateChat(ctx context.Context, participants []string, messageIDs []string) (*domain.Chat, error)
	// AddMessage appends a message id to the chat's message list and returns
	// the updated chat. domain.ErrChatNotFound when no chat matches.
	AddMessage(ctx context.Context, chatID, messageID string) (*domain.Chat, error)
	// AddParticipant adds a participant only if absent (set semantics).
	AddParticipant(ctx context.Context, chatID, userID string) (*domain.Chat, error)
	FindByID(ctx context.Context, chatID string) (*domain.Chat, error)
	// FindByParticipants returns every chat whose participant set is a
	// superset of the given list. An empty list matches all chats.
	FindByParticipants(ctx context.Context, participants []string) ([]*domain.Chat, error)
	// FindMessages resolves message ids to documents, in the order given.
	FindMessages(ctx context.Context, ids []string) ([]*domain.Message, error)
}
