package session

import (
	"context"
	"time"

	"example.com/pennypilot/backend/internal/budget"
	"example.com/pennypilot/backend/internal/chat"
)

// Session owns every piece of view state of one UI session.
type Session struct {
	ID           string
	CreatedAt    time.Time
	Conversation *chat.Conversation
	Ledger       *budget.Ledger
	Suggestions  *Suggestions

	ctx    context.Context
	cancel context.CancelFunc
}

func New(id string, observer chat.Observer) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:           id,
		CreatedAt:    time.Now().UTC(),
		Conversation: chat.NewConversation(observer),
		Ledger:       budget.NewSeededLedger(),
		Suggestions:  &Suggestions{},
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Bind derives a context that ends with either the request or the session.
func (s *Session) Bind(ctx context.Context) (context.Context, context.CancelFunc) {
	bound, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	return bound, func() {
		stop()
		cancel()
	}
}

// Close cancels in-flight generation calls of the session.
func (s *Session) Close() {
	s.cancel()
	s.Conversation.Close()
}

func (s *Session) Closed() bool {
	return s.ctx.Err() != nil
}
