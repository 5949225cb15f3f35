package notifications

import (
	"sync"
	"time"
)

const (
	EventConnected          = "connected"
	EventChatTransition     = "chat_transition"
	EventSuggestionsUpdated = "suggestions_updated"
	EventSessionClosed      = "session_closed"
)

type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Hub fans session events out to SSE subscribers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	buffer      int
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
		buffer:      32,
	}
}

// Subscribe registers a listener for a session and returns its channel and an unsubscribe func.
func (h *Hub) Subscribe(sessionID string) (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	sessionSubs, ok := h.subscribers[sessionID]
	if !ok {
		sessionSubs = make(map[chan Event]struct{})
		h.subscribers[sessionID] = sessionSubs
	}
	sessionSubs[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			if subs, exists := h.subscribers[sessionID]; exists {
				if _, subscribed := subs[ch]; !subscribed {
					return
				}
				delete(subs, ch)
				if len(subs) == 0 {
					delete(h.subscribers, sessionID)
				}
				close(ch)
			}
		})
	}
}

// Publish delivers an event to every subscriber of the session without blocking.
// Slow subscribers miss events.
func (h *Hub) Publish(sessionID string, event Event) {
	event.Timestamp = time.Now().UTC()

	h.mu.RLock()
	defer h.mu.RUnlock()

	subs, ok := h.subscribers[sessionID]
	if !ok {
		return
	}

	for ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// CloseSession ends every stream of the session.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subscribers[sessionID] {
		close(ch)
	}
	delete(h.subscribers, sessionID)
}

func (h *Hub) SubscriberCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[sessionID])
}
