package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Options configures a Service.
type Options struct {
	Provider string
	Model    string
	Timeout  time.Duration
	Images   ImagePolicy
	Logger   *slog.Logger
}

type Service struct {
	client  Client
	options Options
	logger  *slog.Logger
}

// NewService creates the generation service over a provider client.
func NewService(client Client, options Options) *Service {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{client: client, options: options, logger: logger}
}

// ValidateChatInput checks a chat turn locally and decodes its image, if any.
func (s *Service) ValidateChatInput(input ChatInput) (*Image, error) {
	text := strings.TrimSpace(input.Text)
	rawImage := strings.TrimSpace(input.Image)
	if text == "" && rawImage == "" {
		return nil, invalidField("text", "Please enter a message or attach an image.", ErrInvalidInput)
	}

	if rawImage == "" {
		return nil, nil
	}

	image, err := ParseDataURI(rawImage, s.options.Images)
	if err != nil {
		return nil, invalidField("image", err.Error(), err)
	}

	return image, nil
}

// Chat asks the provider to categorize the user's spending.
func (s *Service) Chat(ctx context.Context, input ChatInput) (ChatOutput, error) {
	image, err := s.ValidateChatInput(input)
	if err != nil {
		return ChatOutput{}, err
	}

	prompt, err := renderPrompt(chatPromptTemplate, chatPromptData{
		Text:     strings.TrimSpace(input.Text),
		HasImage: image != nil,
	})
	if err != nil {
		return ChatOutput{}, err
	}

	request := Request{
		Kind:   RequestKindChat,
		System: chatSystemPrompt,
		Prompt: prompt,
		Image:  image,
		Schema: ChatOutputSchema,
	}

	var output ChatOutput
	err = s.generate(ctx, request, func(content string) error {
		decoded, decodeErr := decodeChatOutput(content)
		output = decoded
		return decodeErr
	})
	if err != nil {
		return ChatOutput{}, err
	}

	return output, nil
}

// ValidateBudgetInput runs the local checks that must pass before any provider call.
func (s *Service) ValidateBudgetInput(input BudgetInput) error {
	history := strings.TrimSpace(input.History())
	if history == "" {
		return invalidField("transactionHistory", "Transaction history is required.", ErrInvalidInput)
	}
	if !json.Valid([]byte(history)) {
		return invalidField("transactionHistory", "Transaction history is not valid JSON.", ErrInvalidJSON)
	}

	if strings.TrimSpace(input.FinancialGoals) == "" {
		return invalidField("financialGoals", "Financial goals are required.", ErrInvalidInput)
	}

	if categories := strings.TrimSpace(input.Categories); categories != "" {
		var list []json.RawMessage
		if err := json.Unmarshal([]byte(categories), &list); err != nil {
			return invalidField("categories", "Categories is not valid JSON.", ErrInvalidJSON)
		}
	}

	return nil
}

// SuggestBudget asks the provider for per-category limits and overspending areas.
func (s *Service) SuggestBudget(ctx context.Context, input BudgetInput) (BudgetSuggestion, error) {
	if err := s.ValidateBudgetInput(input); err != nil {
		return BudgetSuggestion{}, err
	}

	prompt, err := renderPrompt(budgetPromptTemplate, BudgetInput{
		TransactionHistory: strings.TrimSpace(input.History()),
		FinancialGoals:     strings.TrimSpace(input.FinancialGoals),
		Categories:         strings.TrimSpace(input.Categories),
	})
	if err != nil {
		return BudgetSuggestion{}, err
	}

	request := Request{
		Kind:   RequestKindSuggestBudget,
		System: budgetSystemPrompt,
		Prompt: prompt,
		Schema: BudgetSuggestionSchema,
	}

	var suggestion BudgetSuggestion
	err = s.generate(ctx, request, func(content string) error {
		decoded, decodeErr := decodeBudgetSuggestion(content)
		suggestion = decoded
		return decodeErr
	})
	if err != nil {
		return BudgetSuggestion{}, err
	}

	return suggestion, nil
}

func (s *Service) generate(ctx context.Context, request Request, decode func(string) error) error {
	callCtx := ctx
	if s.options.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.options.Timeout)
		defer cancel()
	}

	start := time.Now()
	content, raw, err := s.client.Generate(callCtx, request)
	if err != nil && isTimeout(ctx, callCtx, err) {
		err = fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	if err == nil {
		err = decode(content)
	}

	s.logRequest(request.Kind, time.Since(start), len(raw), err)
	if err != nil {
		return generationError(err)
	}

	return nil
}

func (s *Service) logRequest(kind string, latency time.Duration, rawBytes int, err error) {
	attrs := []any{
		slog.String("kind", kind),
		slog.String("provider", s.options.Provider),
		slog.String("model", s.options.Model),
		slog.Duration("latency", latency),
		slog.Int("raw_bytes", rawBytes),
		slog.Bool("success", err == nil),
	}

	if err != nil {
		s.logger.Warn("ai request failed", append(attrs, slog.String("error", err.Error()))...)
		return
	}

	s.logger.Info("ai request completed", attrs...)
}

func isTimeout(parent, call context.Context, err error) bool {
	if parent.Err() != nil {
		return false
	}
	if errors.Is(call.Err(), context.DeadlineExceeded) {
		return true
	}

	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}

type chatPayload struct {
	Response        *string         `json:"response"`
	CategorizedText string          `json:"categorizedText"`
	Transactions    json.RawMessage `json:"transactions"`
}

func decodeChatOutput(content string) (ChatOutput, error) {
	var payload chatPayload
	if err := parseJSON(content, &payload); err != nil {
		return ChatOutput{}, err
	}

	if payload.Response == nil || strings.TrimSpace(*payload.Response) == "" {
		return ChatOutput{}, errors.New("response field is required")
	}

	transactions, err := decodeTransactions(payload.Transactions)
	if err != nil {
		return ChatOutput{}, fmt.Errorf("transactions: %w", err)
	}

	return ChatOutput{
		Response:        strings.TrimSpace(*payload.Response),
		CategorizedText: strings.TrimSpace(payload.CategorizedText),
		Transactions:    transactions,
	}, nil
}

// Older prompt revisions returned transactions as a JSON string; both forms decode.
func decodeTransactions(raw json.RawMessage) ([]Transaction, error) {
	list, err := unwrapList(raw)
	if err != nil || list == nil {
		return nil, err
	}

	var transactions []Transaction
	if err := json.Unmarshal(list, &transactions); err != nil {
		return nil, err
	}

	return transactions, nil
}

func decodeBudgetSuggestion(content string) (BudgetSuggestion, error) {
	var fields map[string]json.RawMessage
	if err := parseJSON(content, &fields); err != nil {
		return BudgetSuggestion{}, err
	}

	required := map[string]bool{"categorySuggestions": true, "overspendingAreas": true}
	for _, name := range BudgetSuggestionSchema.Ordering {
		value, ok := fields[name]
		if !ok || isNull(value) {
			if required[name] {
				return BudgetSuggestion{}, fmt.Errorf("%s field is required", name)
			}
			continue
		}
		if !isListValue(value) {
			return BudgetSuggestion{}, fmt.Errorf("%s must be an array", name)
		}
	}

	suggestion := BudgetSuggestion{
		CategorySuggestions: fields["categorySuggestions"],
		OverspendingAreas:   fields["overspendingAreas"],
	}
	if value := fields["categorizedSpending"]; !isNull(value) {
		suggestion.CategorizedSpending = value
	}

	return suggestion, nil
}

func unwrapList(raw json.RawMessage) (json.RawMessage, error) {
	if isNull(raw) {
		return nil, nil
	}

	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] != '"' {
		return trimmed, nil
	}

	var encoded string
	if err := json.Unmarshal(trimmed, &encoded); err != nil {
		return nil, err
	}
	if strings.TrimSpace(encoded) == "" {
		return nil, nil
	}

	return json.RawMessage(encoded), nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func isListValue(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '"')
}

func parseJSON(input string, target interface{}) error {
	payload := extractJSON(input)
	if payload == "" {
		return errors.New("ai response does not contain json")
	}

	return json.Unmarshal([]byte(payload), target)
}

func extractJSON(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimPrefix(strings.TrimSpace(trimmed), "json")
		trimmed = strings.TrimSpace(trimmed)
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}

	return trimmed[start : end+1]
}
