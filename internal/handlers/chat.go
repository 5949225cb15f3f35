package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/pennypilot/backend/internal/ai"
	"example.com/pennypilot/backend/internal/chat"
	"example.com/pennypilot/backend/internal/render"
	"example.com/pennypilot/backend/internal/session"
)

type ChatHandler struct {
	Sessions *session.Store
	Service  *ai.Service
}

func NewChatHandler(sessions *session.Store, service *ai.Service) *ChatHandler {
	return &ChatHandler{Sessions: sessions, Service: service}
}

type ChatMessageRequest struct {
	Text  string `json:"text" validate:"max=4000"`
	Image string `json:"image"`
}

type ChatTurnResponse struct {
	Outcome chat.Outcome `json:"outcome"`
	Chart   render.Chart `json:"chart"`
}

// Get returns the transcript and the current request state.
func (h *ChatHandler) Get(c echo.Context) error {
	sess, ok := currentSession(c, h.Sessions)
	if !ok {
		return sessionExpired(c)
	}

	return c.JSON(http.StatusOK, sess.Conversation.Snapshot())
}

// Send runs one chat turn. Provider failures are a normal outcome of the turn
// and come back as 200 with a failed state.
func (h *ChatHandler) Send(c echo.Context) error {
	sess, ok := currentSession(c, h.Sessions)
	if !ok {
		return sessionExpired(c)
	}

	var req ChatMessageRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return invalidPayload(c, err)
	}

	if _, err := h.Service.ValidateChatInput(ai.ChatInput{Text: req.Text, Image: req.Image}); err != nil {
		return domainError(c, err, "")
	}

	ctx, cancel := sess.Bind(c.Request().Context())
	defer cancel()

	outcome, err := sess.Conversation.Submit(ctx, h.Service, chat.Request{Text: req.Text, Image: req.Image})
	switch {
	case errors.Is(err, chat.ErrBusy):
		return conflict(c, "Penny is still answering the previous message.")
	case errors.Is(err, chat.ErrEmptyInput):
		return fieldError(c, "text", "Please enter a message or attach an image.")
	case errors.Is(err, chat.ErrClosed):
		return sessionExpired(c)
	case err != nil:
		return serverError(c)
	}

	return c.JSON(http.StatusOK, ChatTurnResponse{
		Outcome: outcome,
		Chart:   render.ChartRows(outcome.BotMessage.Transactions),
	})
}
