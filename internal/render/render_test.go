package render

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"

	"example.com/pennypilot/backend/internal/ai"
)

// TestChartRowsKeepsOrder checks insertion order and merging.
func TestChartRowsKeepsOrder(t *testing.T) {
	chart := ChartRows([]ai.Transaction{
		{Category: "Groceries", Amount: 50},
		{Category: "Coffee", Amount: 5},
		{Category: "Groceries", Amount: 10},
	})

	expected := []ChartRow{{Category: "Groceries", Amount: 60}, {Category: "Coffee", Amount: 5}}
	if !reflect.DeepEqual(chart.Rows, expected) {
		t.Fatalf("expected %v, got %v", expected, chart.Rows)
	}
	if len(chart.Notices) != 0 {
		t.Fatalf("expected no notices, got %v", chart.Notices)
	}
}

// TestChartRowsNil checks that omitted transactions render as an empty chart.
func TestChartRowsNil(t *testing.T) {
	chart := ChartRows(nil)
	if chart.Rows == nil || len(chart.Rows) != 0 {
		t.Fatalf("expected empty rows, got %v", chart.Rows)
	}
}

// TestChartRowsDropsInvalid checks defensive filtering.
func TestChartRowsDropsInvalid(t *testing.T) {
	chart := ChartRows([]ai.Transaction{
		{Category: "", Amount: 5},
		{Category: "Food", Amount: -1},
		{Category: "Rent", Amount: math.Inf(1)},
		{Category: "<b>Fun</b>", Amount: 3},
	})

	if len(chart.Rows) != 1 || chart.Rows[0].Category != "Fun" {
		t.Fatalf("unexpected rows %v", chart.Rows)
	}
	if len(chart.Notices) != 1 || chart.Notices[0].Section != SectionChart {
		t.Fatalf("expected one chart notice, got %v", chart.Notices)
	}
}

// TestChartRowsOverflowingMerge checks that a merge past the float range is
// skipped and the chart still encodes.
func TestChartRowsOverflowingMerge(t *testing.T) {
	chart := ChartRows([]ai.Transaction{
		{Category: "Food", Amount: 1e308},
		{Category: "Food", Amount: 1e308},
		{Category: "Rent", Amount: 10},
	})

	expected := []ChartRow{{Category: "Food", Amount: 1e308}, {Category: "Rent", Amount: 10}}
	if !reflect.DeepEqual(chart.Rows, expected) {
		t.Fatalf("expected %v, got %v", expected, chart.Rows)
	}
	if len(chart.Notices) != 1 || chart.Notices[0].Section != SectionChart {
		t.Fatalf("expected one chart notice, got %v", chart.Notices)
	}
	if _, err := json.Marshal(chart); err != nil {
		t.Fatalf("expected chart to encode, got %v", err)
	}
}

// TestChartRowsIdempotent checks that rendering twice gives identical rows.
func TestChartRowsIdempotent(t *testing.T) {
	input := []ai.Transaction{{Category: "Food & Dining", Amount: 12.5}, {Category: "Transport", Amount: 3}}

	first := ChartRows(input)
	second := ChartRows(input)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical renders, got %v and %v", first, second)
	}
	if first.Rows[0].Category != "Food & Dining" {
		t.Fatalf("expected plain text label, got %q", first.Rows[0].Category)
	}
}

// TestSpendingRoundTrip checks the string-encoded list convention.
func TestSpendingRoundTrip(t *testing.T) {
	rows := []ChartRow{
		{Category: "Rent", Amount: 1200},
		{Category: "Food", Amount: 310.75},
		{Category: "Coffee", Amount: 0},
	}

	encoded, err := EncodeSpending(rows)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := DecodeSpending(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(rows, decoded) {
		t.Fatalf("expected %v, got %v", rows, decoded)
	}
}

// TestSuggestionsNativeAndString checks both encodings of the list fields.
func TestSuggestionsNativeAndString(t *testing.T) {
	encoded, _ := json.Marshal(`[{"category":"Food","amount":120}]`)

	view := Suggestions(ai.BudgetSuggestion{
		CategorizedSpending: encoded,
		CategorySuggestions: json.RawMessage(`[{"category":"Food","suggestedLimit":100,"justification":"Cook at home"}]`),
		OverspendingAreas:   json.RawMessage(`[{"category":"Food","explanation":"Takeout adds up"}]`),
	})

	if len(view.CategorizedSpending) != 1 || view.CategorizedSpending[0].Amount != 120 {
		t.Fatalf("unexpected spending %v", view.CategorizedSpending)
	}
	if len(view.CategorySuggestions) != 1 || view.CategorySuggestions[0].SuggestedLimit != 100 {
		t.Fatalf("unexpected suggestions %v", view.CategorySuggestions)
	}
	if len(view.OverspendingAreas) != 1 {
		t.Fatalf("unexpected areas %v", view.OverspendingAreas)
	}
	if len(view.Notices) != 0 {
		t.Fatalf("expected no notices, got %v", view.Notices)
	}
}

// TestSuggestionsMalformedSection checks that one bad section does not break the others.
func TestSuggestionsMalformedSection(t *testing.T) {
	broken, _ := json.Marshal("[{not json")

	view := Suggestions(ai.BudgetSuggestion{
		CategorySuggestions: broken,
		OverspendingAreas:   json.RawMessage(`[{"category":"Shopping","explanation":"Impulse buys"}]`),
	})

	if view.CategorySuggestions == nil || len(view.CategorySuggestions) != 0 {
		t.Fatalf("expected empty suggestions, got %v", view.CategorySuggestions)
	}
	if len(view.OverspendingAreas) != 1 {
		t.Fatalf("expected overspending areas to survive, got %v", view.OverspendingAreas)
	}
	if len(view.CategorizedSpending) != 0 {
		t.Fatalf("expected empty spending, got %v", view.CategorizedSpending)
	}
	if len(view.Notices) != 1 || view.Notices[0].Section != SectionCategorySuggestions {
		t.Fatalf("expected one suggestions notice, got %v", view.Notices)
	}
}

// TestSuggestionsDoNotLeakBetweenCalls checks that a failed section never reuses earlier data.
func TestSuggestionsDoNotLeakBetweenCalls(t *testing.T) {
	good := Suggestions(ai.BudgetSuggestion{
		CategorySuggestions: json.RawMessage(`[{"category":"Food","suggestedLimit":100,"justification":"ok"}]`),
	})
	bad := Suggestions(ai.BudgetSuggestion{CategorySuggestions: json.RawMessage(`"oops"`)})

	if len(good.CategorySuggestions) != 1 || len(bad.CategorySuggestions) != 0 {
		t.Fatalf("unexpected views %v / %v", good.CategorySuggestions, bad.CategorySuggestions)
	}
}
