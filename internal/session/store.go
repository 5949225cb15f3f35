package session

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"example.com/pennypilot/backend/internal/chat"
)

// ObserverFactory builds the chat observer for a new session.
type ObserverFactory func(sessionID string) chat.Observer

// Store keeps live sessions in memory and closes them once idle.
type Store struct {
	cache     *cache.Cache
	observers ObserverFactory
	onClose   func(sessionID string)
}

func NewStore(idleTTL time.Duration, observers ObserverFactory, onClose func(sessionID string)) *Store {
	cleanup := idleTTL / 2
	if cleanup < time.Second {
		cleanup = time.Second
	}

	store := &Store{
		cache:     cache.New(idleTTL, cleanup),
		observers: observers,
		onClose:   onClose,
	}
	store.cache.OnEvicted(store.evicted)
	return store
}

func (s *Store) Create() *Session {
	id := uuid.NewString()

	var observer chat.Observer
	if s.observers != nil {
		observer = s.observers(id)
	}

	session := New(id, observer)
	s.cache.Set(id, session, cache.DefaultExpiration)
	slog.Info("session created", slog.String("session_id", id))
	return session
}

// Get returns a live session and restarts its idle timer.
func (s *Store) Get(id string) (*Session, bool) {
	value, found := s.cache.Get(id)
	if !found {
		return nil, false
	}

	session, ok := value.(*Session)
	if !ok || session.Closed() {
		return nil, false
	}

	if !s.touch(id, session) {
		return nil, false
	}
	return session, true
}

// touch restarts the idle timer. It never re-adds a session that was evicted
// after it was read.
func (s *Store) touch(id string, session *Session) bool {
	return s.cache.Replace(id, session, cache.DefaultExpiration) == nil
}

// Delete closes and forgets a session.
func (s *Store) Delete(id string) bool {
	if _, found := s.cache.Get(id); !found {
		return false
	}
	s.cache.Delete(id)
	return true
}

func (s *Store) Count() int {
	return s.cache.ItemCount()
}

// Close closes every session, used on shutdown.
func (s *Store) Close() {
	for id := range s.cache.Items() {
		s.cache.Delete(id)
	}
}

func (s *Store) evicted(id string, value interface{}) {
	session, ok := value.(*Session)
	if !ok {
		return
	}

	session.Close()
	if s.onClose != nil {
		s.onClose(id)
	}
	slog.Info("session closed", slog.String("session_id", id))
}
