package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/pennypilot/backend/internal/auth"
	"example.com/pennypilot/backend/internal/session"
)

type SessionHandler struct {
	Sessions *session.Store
	Tokens   *auth.TokenManager
}

func NewSessionHandler(sessions *session.Store, tokens *auth.TokenManager) *SessionHandler {
	return &SessionHandler{Sessions: sessions, Tokens: tokens}
}

type SessionResponse struct {
	SessionID string    `json:"sessionId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Create starts a session with seeded demo data and returns its token.
func (h *SessionHandler) Create(c echo.Context) error {
	sess := h.Sessions.Create()

	token, expiresAt, err := h.Tokens.NewSessionToken(sess.ID)
	if err != nil {
		h.Sessions.Delete(sess.ID)
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, SessionResponse{
		SessionID: sess.ID,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// Delete ends the current session and cancels its pending AI calls.
func (h *SessionHandler) Delete(c echo.Context) error {
	sessionID, ok := auth.SessionIDFromContext(c)
	if !ok || !h.Sessions.Delete(sessionID) {
		return unauthorized(c, "session expired")
	}

	return c.NoContent(http.StatusNoContent)
}

// currentSession resolves the live session named by the request token.
func currentSession(c echo.Context, sessions *session.Store) (*session.Session, bool) {
	sessionID, ok := auth.SessionIDFromContext(c)
	if !ok {
		return nil, false
	}
	return sessions.Get(sessionID)
}

func sessionExpired(c echo.Context) error {
	return unauthorized(c, "session expired")
}
