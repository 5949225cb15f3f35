package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/pennypilot/backend/internal/ai"
)

type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateWaiting    State = "waiting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

const (
	Greeting         = "Hello! I'm Penny. Please paste your spending data or upload a transaction screenshot, and I'll categorize it and show you a visual summary."
	ImageOnlyText    = "Analyzing image..."
	PendingIndicator = "Penny is thinking..."
	timeoutMessage   = "Penny took too long to respond."
)

var (
	ErrEmptyInput = errors.New("message text or image is required")
	ErrBusy       = errors.New("a response is already pending")
	ErrClosed     = errors.New("conversation is closed")
)

// Generator produces the bot reply for one turn.
type Generator interface {
	Chat(ctx context.Context, input ai.ChatInput) (ai.ChatOutput, error)
}

type Message struct {
	ID              string           `json:"id"`
	Role            Role             `json:"role"`
	Text            string           `json:"text"`
	CategorizedText string           `json:"categorizedText,omitempty"`
	Transactions    []ai.Transaction `json:"data,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
}

type Request struct {
	Text  string
	Image string
}

// Outcome is the terminal result of one turn.
type Outcome struct {
	State       State   `json:"state"`
	UserMessage Message `json:"userMessage"`
	BotMessage  Message `json:"botMessage"`
	Error       string  `json:"error,omitempty"`
	TimedOut    bool    `json:"timedOut,omitempty"`
}

// Transition is reported to the observer for every state change.
type Transition struct {
	Seq     int64    `json:"seq"`
	From    State    `json:"from"`
	To      State    `json:"to"`
	Message *Message `json:"message,omitempty"`
	Banner  string   `json:"banner,omitempty"`
}

// Observer receives transitions in order. It runs under the conversation lock
// and must not call back into the conversation.
type Observer func(Transition)

type Snapshot struct {
	State       State     `json:"state"`
	Pending     bool      `json:"pending"`
	Indicator   string    `json:"indicator,omitempty"`
	Banner      string    `json:"banner,omitempty"`
	Messages    []Message `json:"messages"`
	LastOutcome *Outcome  `json:"lastOutcome,omitempty"`
}

// Conversation is the transcript and request state of one chat session.
type Conversation struct {
	mu       sync.Mutex
	state    State
	messages []Message
	banner   string
	last     *Outcome
	seq      int64
	closed   bool
	observer Observer
	ctx      context.Context
	cancel   context.CancelFunc
	now      func() time.Time
}

// NewConversation starts a transcript with Penny's greeting.
func NewConversation(observer Observer) *Conversation {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Conversation{
		state:    StateIdle,
		observer: observer,
		ctx:      ctx,
		cancel:   cancel,
		now:      func() time.Time { return time.Now().UTC() },
	}
	c.messages = append(c.messages, c.newMessage(RoleBot, Greeting))
	return c
}

// Submit runs one turn: it appends the user message, waits for the generator
// and appends the bot reply or an apology. Only one turn may be in flight.
func (c *Conversation) Submit(ctx context.Context, generator Generator, request Request) (Outcome, error) {
	text := strings.TrimSpace(request.Text)
	image := strings.TrimSpace(request.Image)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Outcome{}, ErrClosed
	}
	if text == "" && image == "" {
		c.mu.Unlock()
		return Outcome{}, ErrEmptyInput
	}
	if c.state != StateIdle {
		c.mu.Unlock()
		return Outcome{}, ErrBusy
	}

	if text == "" {
		text = ImageOnlyText
	}

	userMessage := c.newMessage(RoleUser, text)
	c.messages = append(c.messages, userMessage)
	c.banner = ""
	c.transition(StateSubmitting, &userMessage)
	c.transition(StateWaiting, nil)

	turnCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.ctx, cancel)
	c.mu.Unlock()

	output, err := runGenerator(turnCtx, generator, ai.ChatInput{Text: text, Image: image})
	stop()
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Outcome{}, ErrClosed
	}

	outcome := Outcome{UserMessage: userMessage}
	if err != nil {
		message := failureMessage(err)
		botMessage := c.newMessage(RoleBot, fmt.Sprintf("Sorry, I ran into a problem. Please try again. (%s)", message))
		c.messages = append(c.messages, botMessage)
		c.banner = "Failed to get response from AI: " + message

		outcome.State = StateFailed
		outcome.BotMessage = botMessage
		outcome.Error = message
		outcome.TimedOut = errors.Is(err, ai.ErrTimeout)
		c.transition(StateFailed, &botMessage)
	} else {
		botMessage := c.newMessage(RoleBot, output.Response)
		botMessage.CategorizedText = output.CategorizedText
		botMessage.Transactions = output.Transactions
		c.messages = append(c.messages, botMessage)

		outcome.State = StateSucceeded
		outcome.BotMessage = botMessage
		c.transition(StateSucceeded, &botMessage)
	}

	c.last = &outcome
	c.transition(StateIdle, nil)
	return outcome, nil
}

// Snapshot returns a copy of the transcript and the current view state.
func (c *Conversation) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := Snapshot{
		State:    c.state,
		Pending:  c.state == StateSubmitting || c.state == StateWaiting,
		Banner:   c.banner,
		Messages: append([]Message(nil), c.messages...),
	}
	if snapshot.Pending {
		snapshot.Indicator = PendingIndicator
	}
	if c.last != nil {
		last := *c.last
		snapshot.LastOutcome = &last
	}

	return snapshot
}

func (c *Conversation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close cancels any in-flight turn. Results arriving afterwards are discarded.
func (c *Conversation) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
}

func (c *Conversation) transition(to State, message *Message) {
	from := c.state
	c.state = to
	c.seq++

	if c.observer == nil {
		return
	}

	event := Transition{Seq: c.seq, From: from, To: to, Banner: c.banner}
	if message != nil {
		copied := *message
		event.Message = &copied
	}
	c.observer(event)
}

func (c *Conversation) newMessage(role Role, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		CreatedAt: c.now(),
	}
}

// runGenerator turns a generator panic into a failed turn so the
// conversation never stays stuck in waiting.
func runGenerator(ctx context.Context, generator Generator, input ai.ChatInput) (output ai.ChatOutput, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panicked: %v", r)
		}
	}()

	return generator.Chat(ctx, input)
}

func failureMessage(err error) string {
	if errors.Is(err, ai.ErrTimeout) {
		return timeoutMessage
	}

	message := strings.TrimSpace(err.Error())
	if message == "" {
		return "An unexpected error occurred."
	}
	return message
}
