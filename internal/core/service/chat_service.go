package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/threadly/threadly-api/internal/api/metrics"
	"github.com/threadly/threadly-api/internal/core/domain"
	"github.com/threadly/threadly-api/internal/core/ports"
)

// ChatService implements chat persistence plus the enrichment join performed
// after every read or write.
type ChatService struct {
	chats  ports.ChatRepository
	users  ports.UserRepository
	logger zerolog.Logger
}

func NewChatService(chats ports.ChatRepository, users ports.UserRepository, logger zerolog.Logger) *ChatService {
	return &ChatService{chats: chats, users: users, logger: logger}
}

// CreateChat inserts each payload message sequentially, then the chat
// referencing their ids. Earlier message inserts are not rolled back when a
// later step fails; the orphaned messages are unreachable and harmless.
func (s *ChatService) CreateChat(ctx context.Context, input ports.CreateChatInput) (*domain.EnrichedChat, error) {
	messageIDs := make([]string, 0, len(input.Messages))
	for _, m := range input.Messages {
		created, err := s.chats.CreateMessage(ctx, newMessage(m))
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to create chat message")
			return nil, err
		}
		messageIDs = append(messageIDs, created.ID)
	}

	chat, err := s.chats.CreateChat(ctx, input.Participants, messageIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create chat")
		return nil, err
	}

	metrics.ChatsCreatedTotal.Inc()
	metrics.MessagesCreatedTotal.Add(float64(len(messageIDs)))
	s.logger.Info().Str("chat_id", chat.ID).Int("participants", len(chat.Participants)).Msg("chat created")

	return s.enrich(ctx, chat)
}

// AddMessage creates the message document, appends its reference to the
// chat, and returns the enriched chat.
func (s *ChatService) AddMessage(ctx context.Context, chatID string, msg ports.MessageInput) (*domain.EnrichedChat, error) {
	created, err := s.chats.CreateMessage(ctx, newMessage(msg))
	if err != nil {
		s.logger.Error().Err(err).Str("chat_id", chatID).Msg("failed to create message")
		return nil, err
	}

	chat, err := s.chats.AddMessage(ctx, chatID, created.ID)
	if err != nil {
		return nil, err
	}

	metrics.MessagesCreatedTotal.Inc()
	return s.enrich(ctx, chat)
}

// AddParticipant adds a user to the chat's participant set (idempotent) and
// returns the enriched chat.
func (s *ChatService) AddParticipant(ctx context.Context, chatID, userID string) (*domain.EnrichedChat, error) {
	chat, err := s.chats.AddParticipant(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, chat)
}

// GetChat retrieves and enriches one chat.
func (s *ChatService) GetChat(ctx context.Context, chatID string) (*domain.EnrichedChat, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, chat)
}

// GetChatsByUser returns every chat the user participates in. A lookup
// failure is logged and collapsed to an empty slice — callers cannot tell
// "found nothing" from "lookup failed", matching the product's current
// contract. Enrichment failures do surface, since they indicate a chat the
// caller was promised but cannot be rendered.
func (s *ChatService) GetChatsByUser(ctx context.Context, username string) ([]*domain.EnrichedChat, error) {
	chats, err := s.chats.FindByParticipants(ctx, []string{username})
	if err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("failed to look up chats by participant")
		return []*domain.EnrichedChat{}, nil
	}

	enriched := make([]*domain.EnrichedChat, 0, len(chats))
	for _, chat := range chats {
		ec, err := s.enrich(ctx, chat)
		if err != nil {
			return nil, err
		}
		enriched = append(enriched, ec)
	}
	return enriched, nil
}

// enrich expands each message reference into the full message body plus the
// sender's minimal projection. This is an explicit read-composition, not a
// transactional snapshot: a concurrent write between the mutation and this
// read is visible in the result.
func (s *ChatService) enrich(ctx context.Context, chat *domain.Chat) (*domain.EnrichedChat, error) {
	msgs, err := s.chats.FindMessages(ctx, chat.Messages)
	if err != nil {
		return nil, err
	}

	senders := make(map[string]*domain.UserRef)
	enriched := make([]domain.EnrichedMessage, 0, len(msgs))
	for _, m := range msgs {
		ref, seen := senders[m.MsgFrom]
		if !seen {
			user, err := s.users.FindByUsername(ctx, m.MsgFrom)
			switch err {
			case nil:
				ref = user.Ref()
			case domain.ErrUserNotFound:
				// Sender account deleted; keep the message, drop the projection.
				ref = nil
			default:
				return nil, err
			}
			senders[m.MsgFrom] = ref
		}
		enriched = append(enriched, domain.EnrichedMessage{Message: *m, User: ref})
	}

	return &domain.EnrichedChat{
		ID:           chat.ID,
		Participants: chat.Participants,
		Messages:     enriched,
		CreatedAt:    chat.CreatedAt,
		UpdatedAt:    chat.UpdatedAt,
	}, nil
}

func newMessage(m ports.MessageInput) *domain.Message {
	msgType := m.Type
	if msgType == "" {
		msgType = domain.MessageTypeDirect
	}
	when := m.MsgDateTime
	if when.IsZero() {
		when = time.Now().UTC()
	}
	return &domain.Message{
		Msg:         m.Msg,
		MsgFrom:     m.MsgFrom,
		MsgDateTime: when,
		Type:        msgType,
	}
}
