package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/threadly/threadly-api/internal/core/ports"
)

// UpdateDispatcher is the interface the handler uses to enqueue realtime
// chat updates after a completed write.
type UpdateDispatcher interface {
	Enqueue(update ports.ChatUpdate)
}

// ChatHandler handles HTTP requests for chat operations.
type ChatHandler struct {
	service ports.ChatService
	updates UpdateDispatcher
}

func NewChatHandler(service ports.ChatService, updates UpdateDispatcher) *ChatHandler {
	return &ChatHandler{service: service, updates: updates}
}

// --- Request types ---

type messageRequest struct {
	Msg         string    `json:"msg"         validate:"required"`
	MsgFrom     string    `json:"msgFrom"     validate:"required"`
	MsgDateTime time.Time `json:"msgDateTime"`
	Type        string    `json:"type"        validate:"omitempty,oneof=direct global"`
}

type createChatRequest struct {
	Participants []string         `json:"participants" validate:"omitempty,dive,required"`
	Messages     []messageRequest `json:"messages"     validate:"omitempty,dive"`
}

type addParticipantRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// CreateChat handles POST /chat/createChat.
//
// @Summary      Create a chat with its initial messages
// @Tags         chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createChatRequest  true  "Participants and initial messages"
// @Success      200   {object}  domain.EnrichedChat
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /chat/createChat [post]
func (h *ChatHandler) CreateChat(c echo.Context) error {
	var req createChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	// Both keys must be present; empty lists are legal.
	if req.Participants == nil || req.Messages == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	chat, err := h.service.CreateChat(c.Request().Context(), toCreateChatInput(req))
	if err != nil {
		return err
	}

	// Fan out to the chat room and to each participant's own connections, so
	// the new chat reaches users who have not joined the room yet.
	h.updates.Enqueue(ports.ChatUpdate{
		Type:  ports.ChatUpdateCreated,
		Chat:  chat,
		Room:  chat.ID,
		Users: chat.Participants,
	})

	return c.JSON(http.StatusOK, chat)
}

// AddMessage handles POST /chat/:chatId/addMessage.
//
// @Summary      Append a message to a chat
// @Tags         chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        chatId  path      string          true  "Chat id"
// @Param        body    body      messageRequest  true  "Message"
// @Success      200     {object}  domain.EnrichedChat
// @Failure      400     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /chat/{chatId}/addMessage [post]
func (h *ChatHandler) AddMessage(c echo.Context) error {
	chatID := c.Param("chatId")

	var req messageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	chat, err := h.service.AddMessage(c.Request().Context(), chatID, toMessageInput(req))
	if err != nil {
		return err
	}

	h.updates.Enqueue(ports.ChatUpdate{
		Type: ports.ChatUpdateNewMessage,
		Chat: chat,
		Room: chat.ID,
	})

	return c.JSON(http.StatusOK, chat)
}

// AddParticipant handles POST /chat/:chatId/addParticipant.
//
// @Summary      Add a participant to a chat
// @Tags         chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        chatId  path      string                 true  "Chat id"
// @Param        body    body      addParticipantRequest  true  "Participant"
// @Success      200     {object}  domain.EnrichedChat
// @Failure      400     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /chat/{chatId}/addParticipant [post]
func (h *ChatHandler) AddParticipant(c echo.Context) error {
	chatID := c.Param("chatId")

	var req addParticipantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	chat, err := h.service.AddParticipant(c.Request().Context(), chatID, req.UserID)
	if err != nil {
		return err
	}

	h.updates.Enqueue(ports.ChatUpdate{
		Type: ports.ChatUpdateNewParticipant,
		Chat: chat,
		Room: chat.ID,
	})

	return c.JSON(http.StatusOK, chat)
}

// GetChat handles GET /chat/:chatId.
//
// @Summary      Fetch a single enriched chat
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        chatId  path      string  true  "Chat id"
// @Success      200     {object}  domain.EnrichedChat
// @Failure      404     {object}  errorResponse
// @Router       /chat/{chatId} [get]
func (h *ChatHandler) GetChat(c echo.Context) error {
	chat, err := h.service.GetChat(c.Request().Context(), c.Param("chatId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, chat)
}

// GetChatsByUser handles GET /chat/getChatsByUser/:username. Always answers
// 200 with an array; lookup failures collapse to an empty result.
//
// @Summary      List the chats a user participates in
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {array}   domain.EnrichedChat
// @Router       /chat/getChatsByUser/{username} [get]
func (h *ChatHandler) GetChatsByUser(c echo.Context) error {
	chats, err := h.service.GetChatsByUser(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, chats)
}

// --- Request → Service input ---

func toCreateChatInput(req createChatRequest) ports.CreateChatInput {
	msgs := make([]ports.MessageInput, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, toMessageInput(m))
	}
	return ports.CreateChatInput{
		Participants: req.Participants,
		Messages:     msgs,
	}
}

func toMessageInput(m messageRequest) ports.MessageInput {
	return ports.MessageInput{
		Msg:         m.Msg,
		MsgFrom:     m.MsgFrom,
		MsgDateTime: m.MsgDateTime,
		Type:        m.Type,
	}
}
