package ai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type fakeClient struct {
	content  string
	err      error
	block    bool
	calls    int
	requests []Request
}

func (f *fakeClient) Generate(ctx context.Context, request Request) (string, []byte, error) {
	f.calls++
	f.requests = append(f.requests, request)
	if f.block {
		<-ctx.Done()
		return "", nil, ctx.Err()
	}
	return f.content, []byte(f.content), f.err
}

func newTestService(client Client) *Service {
	return NewService(client, Options{
		Provider: "fake",
		Model:    "fake-model",
		Timeout:  time.Second,
		Images:   ImagePolicy{MaxBytes: 1024, AllowedTypes: []string{"image/png"}},
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

// TestChatCategorizesSpending checks the text-only chat scenario end to end.
func TestChatCategorizesSpending(t *testing.T) {
	client := &fakeClient{content: "```json\n{\"response\":\"Here is your breakdown!\",\"categorizedText\":\"Coffee: 5\\nGroceries: 50\",\"transactions\":[{\"category\":\"Coffee\",\"amount\":5},{\"category\":\"Groceries\",\"amount\":50}]}\n```"}
	service := newTestService(client)

	output, err := service.Chat(context.Background(), ChatInput{Text: "Coffee 5, Groceries 50"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.TrimSpace(output.Response) == "" {
		t.Fatal("expected non-empty response")
	}
	if len(output.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(output.Transactions))
	}

	var total float64
	for _, tx := range output.Transactions {
		total += tx.Amount
	}
	if total != 55 {
		t.Fatalf("expected total 55, got %v", total)
	}

	if client.requests[0].Kind != RequestKindChat || client.requests[0].Schema != ChatOutputSchema {
		t.Fatalf("unexpected request: %+v", client.requests[0])
	}
	if !strings.Contains(client.requests[0].Prompt, "Coffee 5, Groceries 50") {
		t.Fatal("expected prompt to carry the user text")
	}
	if strings.Contains(client.requests[0].Prompt, "attached image") {
		t.Fatal("expected no image instructions without an image")
	}
}

// TestChatAcceptsLegacyTransactionString checks the string-encoded transactions form.
func TestChatAcceptsLegacyTransactionString(t *testing.T) {
	client := &fakeClient{content: `{"response":"ok","transactions":"[{\"category\":\"Food\",\"amount\":12.5}]"}`}

	output, err := newTestService(client).Chat(context.Background(), ChatInput{Text: "food 12.5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Transactions) != 1 || output.Transactions[0].Amount != 12.5 {
		t.Fatalf("unexpected transactions: %+v", output.Transactions)
	}
}

// TestChatWithoutTransactions checks that an omitted list decodes as nil.
func TestChatWithoutTransactions(t *testing.T) {
	client := &fakeClient{content: `{"response":"Hi there"}`}

	output, err := newTestService(client).Chat(context.Background(), ChatInput{Text: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Transactions != nil {
		t.Fatalf("expected nil transactions, got %+v", output.Transactions)
	}
}

// TestChatMissingResponseIsGenerationError checks schema violations.
func TestChatMissingResponseIsGenerationError(t *testing.T) {
	client := &fakeClient{content: `{"transactions":[]}`}

	_, err := newTestService(client).Chat(context.Background(), ChatInput{Text: "hello"})
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
}

// TestChatProviderError checks that provider failures carry the provider message.
func TestChatProviderError(t *testing.T) {
	client := &fakeClient{err: errors.New("quota exceeded")}

	_, err := newTestService(client).Chat(context.Background(), ChatInput{Text: "hello"})
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected provider message, got %q", err.Error())
	}
	if errors.Is(err, ErrTimeout) {
		t.Fatal("did not expect ErrTimeout")
	}
}

// TestChatTimeout checks that a hung provider call ends as a timeout.
func TestChatTimeout(t *testing.T) {
	client := &fakeClient{block: true}
	service := newTestService(client)
	service.options.Timeout = 20 * time.Millisecond

	_, err := service.Chat(context.Background(), ChatInput{Text: "hello"})
	if !errors.Is(err, ErrGeneration) || !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected generation timeout, got %v", err)
	}
}

// TestChatRejectsEmptyInput checks that an empty turn never reaches the provider.
func TestChatRejectsEmptyInput(t *testing.T) {
	client := &fakeClient{}

	_, err := newTestService(client).Chat(context.Background(), ChatInput{Text: "   "})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Field != "text" {
		t.Fatalf("expected text validation error, got %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("expected no provider calls, got %d", client.calls)
	}
}

// TestChatRejectsInvalidImage checks image hardening before the provider call.
func TestChatRejectsInvalidImage(t *testing.T) {
	client := &fakeClient{}

	_, err := newTestService(client).Chat(context.Background(), ChatInput{Image: "data:image/png;base64,aGVsbG8="})
	if !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("expected no provider calls, got %d", client.calls)
	}
}

// TestChatForwardsImage checks that an image-only turn reaches the provider.
func TestChatForwardsImage(t *testing.T) {
	client := &fakeClient{content: `{"response":"Read your statement."}`}

	_, err := newTestService(client).Chat(context.Background(), ChatInput{Image: pngDataURI})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	request := client.requests[0]
	if request.Image == nil || request.Image.MIMEType != "image/png" {
		t.Fatalf("expected png image, got %+v", request.Image)
	}
	if !strings.Contains(request.Prompt, "attached image") {
		t.Fatal("expected image instructions in prompt")
	}
}

// TestSuggestBudgetRejectsInvalidHistory checks the local JSON check.
func TestSuggestBudgetRejectsInvalidHistory(t *testing.T) {
	client := &fakeClient{}

	_, err := newTestService(client).SuggestBudget(context.Background(), BudgetInput{
		TransactionHistory: "not json",
		FinancialGoals:     "save",
	})
	if !errors.Is(err, ErrInvalidJSON) {
		t.Fatalf("expected ErrInvalidJSON, got %v", err)
	}
	if !strings.Contains(err.Error(), "valid JSON") {
		t.Fatalf("expected message about valid JSON, got %q", err.Error())
	}
	if client.calls != 0 {
		t.Fatalf("expected zero provider calls, got %d", client.calls)
	}
}

// TestSuggestBudgetValidatesFields checks goals and categories.
func TestSuggestBudgetValidatesFields(t *testing.T) {
	service := newTestService(&fakeClient{})

	err := service.ValidateBudgetInput(BudgetInput{SpendingHistory: `[]`})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Field != "financialGoals" {
		t.Fatalf("expected financialGoals error, got %v", err)
	}

	err = service.ValidateBudgetInput(BudgetInput{SpendingHistory: `[]`, FinancialGoals: "save", Categories: `{"a":1}`})
	if !errors.Is(err, ErrInvalidJSON) || err.Error() != "Categories is not valid JSON." {
		t.Fatalf("expected categories error, got %v", err)
	}
}

// TestSuggestBudget checks the happy path with native arrays.
func TestSuggestBudget(t *testing.T) {
	client := &fakeClient{content: `{"categorizedSpending":[{"category":"Food","amount":120}],"categorySuggestions":[{"category":"Food","suggestedLimit":100,"justification":"trim takeout"}],"overspendingAreas":[]}`}

	suggestion, err := newTestService(client).SuggestBudget(context.Background(), BudgetInput{
		SpendingHistory: `[{"amount":120,"description":"takeout"}]`,
		FinancialGoals:  "save 10%",
		Categories:      `["Food"]`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(suggestion.CategorySuggestions) == 0 || len(suggestion.CategorizedSpending) == 0 {
		t.Fatalf("expected suggestion fields, got %+v", suggestion)
	}
	if !strings.Contains(client.requests[0].Prompt, "takeout") {
		t.Fatal("expected spending history in prompt")
	}
}

// TestSuggestBudgetMissingField checks required output fields.
func TestSuggestBudgetMissingField(t *testing.T) {
	client := &fakeClient{content: `{"categorySuggestions":[]}`}

	_, err := newTestService(client).SuggestBudget(context.Background(), BudgetInput{
		TransactionHistory: `[]`,
		FinancialGoals:     "save",
	})
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
}

// TestExtractJSON checks fence stripping and surrounding text.
func TestExtractJSON(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"Sure! {\"a\":1} Thanks":  `{"a":1}`,
		"no json here":            "",
		"":                        "",
	}

	for input, expected := range cases {
		if got := extractJSON(input); got != expected {
			t.Fatalf("extractJSON(%q) = %q, want %q", input, got, expected)
		}
	}
}
