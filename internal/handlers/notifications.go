package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/pennypilot/backend/internal/chat"
	"example.com/pennypilot/backend/internal/notifications"
	"example.com/pennypilot/backend/internal/session"
)

type NotificationHandler struct {
	Hub      *notifications.Hub
	Sessions *session.Store
}

func NewNotificationHandler(hub *notifications.Hub, sessions *session.Store) *NotificationHandler {
	return &NotificationHandler{Hub: hub, Sessions: sessions}
}

// Stream opens the SSE stream of chat transitions and suggestion updates.
func (h *NotificationHandler) Stream(c echo.Context) error {
	sess, ok := currentSession(c, h.Sessions)
	if !ok {
		return sessionExpired(c)
	}

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return serverError(c)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	ch, unsubscribe := h.Hub.Subscribe(sess.ID)
	defer unsubscribe()

	_ = writeSSE(c, notifications.Event{Type: notifications.EventConnected, Data: sess.Conversation.Snapshot()})
	flusher.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				_ = writeSSE(c, notifications.Event{Type: notifications.EventSessionClosed})
				flusher.Flush()
				return nil
			}
			if err := writeSSE(c, event); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}

func writeSSE(c echo.Context, event notifications.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := c.Response().Write([]byte("event: " + event.Type + "\n")); err != nil {
		return err
	}
	if _, err := c.Response().Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
		return err
	}

	return nil
}

// ChatObservers publishes every chat transition of a session to the hub.
func ChatObservers(hub *notifications.Hub) session.ObserverFactory {
	return func(sessionID string) chat.Observer {
		if hub == nil {
			return nil
		}
		return func(transition chat.Transition) {
			hub.Publish(sessionID, notifications.Event{Type: notifications.EventChatTransition, Data: transition})
		}
	}
}

func publishSuggestions(hub *notifications.Hub, sess *session.Session) {
	if hub == nil {
		return
	}

	hub.Publish(sess.ID, notifications.Event{
		Type: notifications.EventSuggestionsUpdated,
		Data: sess.Suggestions.State(),
	})
}
