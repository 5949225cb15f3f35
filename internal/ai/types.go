package ai

import (
	"encoding/json"
	"strings"
)

const (
	RequestKindChat          = "chat"
	RequestKindSuggestBudget = "suggest_budget"
)

type ChatInput struct {
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
}

// Transaction is an aggregate per category, not a signed single transaction.
type Transaction struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

type ChatOutput struct {
	Response        string        `json:"response"`
	CategorizedText string        `json:"categorizedText,omitempty"`
	Transactions    []Transaction `json:"transactions,omitempty"`
}

// BudgetInput accepts the history under either of its two historical names.
type BudgetInput struct {
	TransactionHistory string `json:"transactionHistory,omitempty"`
	SpendingHistory    string `json:"spendingHistory,omitempty"`
	FinancialGoals     string `json:"financialGoals"`
	Categories         string `json:"categories,omitempty"`
}

// History returns transactionHistory, falling back to spendingHistory.
func (in BudgetInput) History() string {
	if strings.TrimSpace(in.TransactionHistory) != "" {
		return in.TransactionHistory
	}
	return in.SpendingHistory
}

// BudgetSuggestion keeps each list field as it arrived from the provider.
// A field may hold a native JSON array or a string containing one; the render
// package decodes both.
type BudgetSuggestion struct {
	CategorizedSpending json.RawMessage `json:"categorizedSpending,omitempty"`
	CategorySuggestions json.RawMessage `json:"categorySuggestions"`
	OverspendingAreas   json.RawMessage `json:"overspendingAreas"`
}

type CategorySuggestion struct {
	Category       string  `json:"category"`
	SuggestedLimit float64 `json:"suggestedLimit"`
	Justification  string  `json:"justification"`
}

type OverspendingArea struct {
	Category    string `json:"category"`
	Explanation string `json:"explanation"`
}

// Image is a decoded chat attachment.
type Image struct {
	MIMEType string
	Data     []byte
	URI      string
}

// Request is one call to a generation provider.
type Request struct {
	Kind   string
	System string
	Prompt string
	Image  *Image
	Schema *Schema
}
