package domain

import (
	"errors"
	"time"
)

var ErrChatNotFound = errors.New("Chat not found")
var ErrMessageNotFound = errors.New("Message not found")

// Message kinds. Direct messages live inside a chat; global messages belong
// to the public feed.
const (
	MessageTypeDirect = "direct"
	MessageTypeGlobal = "global"
)

// Message is a single message document. A message is owned by at most one
// chat once attached; nothing at the store level enforces this, only the
// service layer's write path.
type Message struct {
	ID          string    `json:"_id"`
	Msg         string    `json:"msg"`
	MsgFrom     string    `json:"msgFrom"`
	MsgDateTime time.Time `json:"msgDateTime"`
	Type        string    `json:"type"`
}

// Chat groups participants and an append-only, ordered list of message
// references. Identity is the generated id; messages are referenced, not
// embedded.
type Chat struct {
	ID           string    `json:"_id"`
	Participants []string  `json:"participants"`
	Messages     []string  `json:"messages"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// EnrichedMessage is a message with its sender expanded to a minimal user
// projection. User is nil when the sender account no longer exists.
type EnrichedMessage struct {
	Message
	User *UserRef `json:"user"`
}

// EnrichedChat is a chat with every message reference expanded. This is the
// shape clients receive from the HTTP API and over chatUpdate events.
type EnrichedChat struct {
	ID           string            `json:"_id"`
	Participants []string          `json:"participants"`
	Messages     []EnrichedMessage `json:"messages"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}
