// Package render maps generation results into chart rows and suggestion lists.
// Every function here is pure: the same input always yields the same view.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"example.com/pennypilot/backend/internal/ai"
)

const (
	SectionChart               = "chart"
	SectionCategorizedSpending = "categorizedSpending"
	SectionCategorySuggestions = "categorySuggestions"
	SectionOverspendingAreas   = "overspendingAreas"
)

var strictPolicy = bluemonday.StrictPolicy()

type ChartRow struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// Notice is a non-fatal problem found while rendering one section.
type Notice struct {
	Section string `json:"section"`
	Message string `json:"message"`
}

type Chart struct {
	Rows    []ChartRow `json:"rows"`
	Notices []Notice   `json:"notices,omitempty"`
}

type SuggestionView struct {
	CategorizedSpending []ChartRow              `json:"categorizedSpending"`
	CategorySuggestions []ai.CategorySuggestion `json:"categorySuggestions"`
	OverspendingAreas   []ai.OverspendingArea   `json:"overspendingAreas"`
	Notices             []Notice                `json:"notices,omitempty"`
}

// ChartRows returns one row per category in the order received. Repeated
// labels are merged into the first row.
func ChartRows(transactions []ai.Transaction) Chart {
	rows, notices := chartRows(SectionChart, transactions)
	return Chart{Rows: rows, Notices: notices}
}

func chartRows(section string, transactions []ai.Transaction) ([]ChartRow, []Notice) {
	rows := make([]ChartRow, 0, len(transactions))
	index := make(map[string]int, len(transactions))
	dropped := 0

	for _, tx := range transactions {
		label := SanitizeText(tx.Category)
		if label == "" || !validAmount(tx.Amount) {
			dropped++
			continue
		}

		if i, ok := index[label]; ok {
			merged := rows[i].Amount + tx.Amount
			if !validAmount(merged) {
				dropped++
				continue
			}
			rows[i].Amount = merged
			continue
		}

		index[label] = len(rows)
		rows = append(rows, ChartRow{Category: label, Amount: tx.Amount})
	}

	var notices []Notice
	if dropped > 0 {
		notices = append(notices, Notice{
			Section: section,
			Message: fmt.Sprintf("%d entries without a category or with an invalid amount were skipped.", dropped),
		})
	}

	return rows, notices
}

// Suggestions decodes each list field of a budget suggestion. A field that
// fails to parse renders as an empty section with a notice.
func Suggestions(suggestion ai.BudgetSuggestion) SuggestionView {
	view := SuggestionView{
		CategorizedSpending: []ChartRow{},
		CategorySuggestions: []ai.CategorySuggestion{},
		OverspendingAreas:   []ai.OverspendingArea{},
	}

	var spending []ai.Transaction
	if err := decodeList(suggestion.CategorizedSpending, &spending); err != nil {
		view.Notices = append(view.Notices, parseNotice(SectionCategorizedSpending))
	} else {
		rows, notices := chartRows(SectionCategorizedSpending, spending)
		view.CategorizedSpending = rows
		view.Notices = append(view.Notices, notices...)
	}

	var suggestions []ai.CategorySuggestion
	if err := decodeList(suggestion.CategorySuggestions, &suggestions); err != nil {
		view.Notices = append(view.Notices, parseNotice(SectionCategorySuggestions))
	} else {
		dropped := 0
		for _, item := range suggestions {
			category := SanitizeText(item.Category)
			if category == "" || !validAmount(item.SuggestedLimit) {
				dropped++
				continue
			}
			view.CategorySuggestions = append(view.CategorySuggestions, ai.CategorySuggestion{
				Category:       category,
				SuggestedLimit: item.SuggestedLimit,
				Justification:  SanitizeText(item.Justification),
			})
		}
		view.Notices = appendDropped(view.Notices, SectionCategorySuggestions, dropped)
	}

	var areas []ai.OverspendingArea
	if err := decodeList(suggestion.OverspendingAreas, &areas); err != nil {
		view.Notices = append(view.Notices, parseNotice(SectionOverspendingAreas))
	} else {
		dropped := 0
		for _, item := range areas {
			category := SanitizeText(item.Category)
			if category == "" {
				dropped++
				continue
			}
			view.OverspendingAreas = append(view.OverspendingAreas, ai.OverspendingArea{
				Category:    category,
				Explanation: SanitizeText(item.Explanation),
			})
		}
		view.Notices = appendDropped(view.Notices, SectionOverspendingAreas, dropped)
	}

	return view
}

// EncodeSpending writes rows in the string-encoded list convention.
func EncodeSpending(rows []ChartRow) (string, error) {
	if rows == nil {
		rows = []ChartRow{}
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// DecodeSpending reads rows written by EncodeSpending.
func DecodeSpending(encoded string) ([]ChartRow, error) {
	var rows []ChartRow
	if err := json.Unmarshal([]byte(encoded), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// SanitizeText strips markup from model-provided text and returns plain text.
func SanitizeText(value string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(value)))
}

// decodeList accepts a native JSON array or a string that contains one.
// Missing and null fields decode as an empty list.
func decodeList(raw json.RawMessage, target interface{}) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	if trimmed[0] == '"' {
		var encoded string
		if err := json.Unmarshal(trimmed, &encoded); err != nil {
			return err
		}
		encoded = strings.TrimSpace(encoded)
		if encoded == "" {
			return nil
		}
		trimmed = []byte(encoded)
	}

	return json.Unmarshal(trimmed, target)
}

func validAmount(value float64) bool {
	return value >= 0 && !math.IsInf(value, 0) && !math.IsNaN(value)
}

func parseNotice(section string) Notice {
	return Notice{Section: section, Message: "This section could not be read and is shown empty."}
}

func appendDropped(notices []Notice, section string, dropped int) []Notice {
	if dropped == 0 {
		return notices
	}
	return append(notices, Notice{
		Section: section,
		Message: fmt.Sprintf("%d entries without a category or with an invalid value were skipped.", dropped),
	})
}
