package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/threadly/threadly-api/internal/core/domain"
)

const (
	collectionChats    = "chats"
	collectionMessages = "messages"
)

// ChatRepository implements ports.ChatRepository using MongoDB. Chats hold
// ObjectID references into the messages collection; single-document atomic
// updates ($push, $addToSet) are the only concurrency primitive used.
type ChatRepository struct {
	chats    *mongo.Collection
	messages *mongo.Collection
}

func NewChatRepository(db *mongo.Database) *ChatRepository {
	return &ChatRepository{
		chats:    db.Collection(collectionChats),
		messages: db.Collection(collectionMessages),
	}
}

type messageDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Msg         string             `bson:"msg"`
	MsgFrom     string             `bson:"msg_from"`
	MsgDateTime time.Time          `bson:"msg_date_time"`
	Type        string             `bson:"type"`
}

type chatDoc struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	Participants []string             `bson:"participants"`
	Messages     []primitive.ObjectID `bson:"messages"`
	CreatedAt    time.Time            `bson:"created_at"`
	UpdatedAt    time.Time            `bson:"updated_at"`
}

func (d *messageDoc) toDomain() *domain.Message {
	return &domain.Message{
		ID:          d.ID.Hex(),
		Msg:         d.Msg,
		MsgFrom:     d.MsgFrom,
		MsgDateTime: d.MsgDateTime,
		Type:        d.Type,
	}
}

func (d *chatDoc) toDomain() *domain.Chat {
	ids := make([]string, 0, len(d.Messages))
	for _, id := range d.Messages {
		ids = append(ids, id.Hex())
	}
	return &domain.Chat{
		ID:           d.ID.Hex(),
		Participants: d.Participants,
		Messages:     ids,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// CreateMessage inserts one message document.
func (r *ChatRepository) CreateMessage(ctx context.Context, m *domain.Message) (*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := messageDoc{
		Msg:         m.Msg,
		MsgFrom:     m.MsgFrom,
		MsgDateTime: m.MsgDateTime.UTC(),
		Type:        m.Type,
	}
	res, err := r.messages.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

// CreateChat inserts a chat referencing previously inserted message ids.
func (r *ChatRepository) CreateChat(ctx context.Context, participants []string, messageIDs []string) (*domain.Chat, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	refs := make([]primitive.ObjectID, 0, len(messageIDs))
	for _, id := range messageIDs {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("invalid message id %q: %w", id, err)
		}
		refs = append(refs, oid)
	}

	now := time.Now().UTC()
	doc := chatDoc{
		Participants: participants,
		Messages:     refs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	res, err := r.chats.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert chat: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

// AddMessage appends a message reference ($push) and returns the updated chat.
func (r *ChatRepository) AddMessage(ctx context.Context, chatID, messageID string) (*domain.Chat, error) {
	oid, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		return nil, fmt.Errorf("invalid message id %q: %w", messageID, err)
	}
	return r.updateChat(ctx, chatID, bson.M{
		"$push": bson.M{"messages": oid},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

// AddParticipant adds a participant only if absent ($addToSet).
func (r *ChatRepository) AddParticipant(ctx context.Context, chatID, userID string) (*domain.Chat, error) {
	return r.updateChat(ctx, chatID, bson.M{
		"$addToSet": bson.M{"participants": userID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
}

func (r *ChatRepository) updateChat(ctx context.Context, chatID string, update bson.M) (*domain.Chat, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return nil, domain.ErrChatNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc chatDoc
	err = r.chats.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrChatNotFound
		}
		return nil, fmt.Errorf("update chat: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByID retrieves a chat by id.
func (r *ChatRepository) FindByID(ctx context.Context, chatID string) (*domain.Chat, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return nil, domain.ErrChatNotFound
	}

	var doc chatDoc
	if err := r.chats.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrChatNotFound
		}
		return nil, fmt.Errorf("find chat: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByParticipants returns chats whose participant set is a superset of the
// given list ($all). An empty list matches every chat.
func (r *ChatRepository) FindByParticipants(ctx context.Context, participants []string) ([]*domain.Chat, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if len(participants) > 0 {
		filter["participants"] = bson.M{"$all": participants}
	}

	cur, err := r.chats.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find chats: %w", err)
	}
	defer cur.Close(ctx)

	var chats []*domain.Chat
	for cur.Next(ctx) {
		var doc chatDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode chat: %w", err)
		}
		chats = append(chats, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate chats: %w", err)
	}
	return chats, nil
}

// FindMessages resolves message ids to documents, preserving input order.
func (r *ChatRepository) FindMessages(ctx context.Context, ids []string) ([]*domain.Message, error) {
	if len(ids) == 0 {
		return []*domain.Message{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("invalid message id %q: %w", id, err)
		}
		oids = append(oids, oid)
	}

	cur, err := r.messages.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	defer cur.Close(ctx)

	byID := make(map[string]*domain.Message, len(ids))
	for cur.Next(ctx) {
		var doc messageDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}
		m := doc.toDomain()
		byID[m.ID] = m
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	// $in returns documents in arbitrary order; restore the chat's order.
	ordered := make([]*domain.Message, 0, len(ids))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			ordered = append(ordered, m)
		}
	}
	return ordered, nil
}

// EnsureIndexes creates the indexes backing the participant superset query.
func (r *ChatRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.chats.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "participants", Value: 1}}},
		{Keys: bson.D{{Key: "updated_at", Value: -1}}},
	})
	return err
}
