package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"example.com/pennypilot/backend/internal/ai"
	"example.com/pennypilot/backend/internal/notifications"
	"example.com/pennypilot/backend/internal/render"
	"example.com/pennypilot/backend/internal/session"
)

type SuggestionHandler struct {
	Sessions *session.Store
	Service  *ai.Service
	Notifier *notifications.Hub
}

func NewSuggestionHandler(sessions *session.Store, service *ai.Service, notifier *notifications.Hub) *SuggestionHandler {
	return &SuggestionHandler{Sessions: sessions, Service: service, Notifier: notifier}
}

type SuggestionRequest struct {
	TransactionHistory string `json:"transactionHistory"`
	SpendingHistory    string `json:"spendingHistory"`
	FinancialGoals     string `json:"financialGoals" validate:"max=2000"`
	Categories         string `json:"categories"`
}

// Create asks for budget suggestions. Local checks fail with the offending
// field before any provider call.
func (h *SuggestionHandler) Create(c echo.Context) error {
	sess, ok := currentSession(c, h.Sessions)
	if !ok {
		return sessionExpired(c)
	}

	var req SuggestionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return invalidPayload(c, err)
	}

	input := ai.BudgetInput{
		TransactionHistory: req.TransactionHistory,
		SpendingHistory:    req.SpendingHistory,
		FinancialGoals:     req.FinancialGoals,
		Categories:         req.Categories,
	}
	if err := h.Service.ValidateBudgetInput(input); err != nil {
		return domainError(c, err, "")
	}

	if err := sess.Suggestions.Begin(); err != nil {
		return conflict(c, "Suggestions are already being generated.")
	}

	ctx, cancel := sess.Bind(c.Request().Context())
	defer cancel()

	suggestion, err := h.Service.SuggestBudget(ctx, input)
	if err != nil {
		if sess.Closed() {
			sess.Suggestions.Abort()
			return sessionExpired(c)
		}

		message := "Failed to get AI suggestions: " + strings.TrimPrefix(err.Error(), ai.ErrGeneration.Error()+": ")
		sess.Suggestions.Fail(message)
		publishSuggestions(h.Notifier, sess)

		if errors.Is(err, ai.ErrTimeout) {
			return gatewayTimeout(c, message)
		}
		return badGateway(c, message)
	}

	view := render.Suggestions(suggestion)
	sess.Suggestions.Succeed(view)
	publishSuggestions(h.Notifier, sess)

	return c.JSON(http.StatusOK, view)
}

// Get returns the last suggestion result of the session.
func (h *SuggestionHandler) Get(c echo.Context) error {
	sess, ok := currentSession(c, h.Sessions)
	if !ok {
		return sessionExpired(c)
	}

	return c.JSON(http.StatusOK, sess.Suggestions.State())
}
