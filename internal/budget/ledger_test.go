package budget

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func fieldOf(t *testing.T, err error) string {
	t.Helper()

	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected FieldError, got %v", err)
	}
	if !errors.Is(err, ErrInvalid) {
		t.Fatal("expected FieldError to match ErrInvalid")
	}
	return fieldErr.Field
}

// TestLinkAccountDefaults checks currency defaults and normalization.
func TestLinkAccountDefaults(t *testing.T) {
	ledger := NewLedger()

	account, err := ledger.LinkAccount(AccountInput{
		Name:          " Everyday ",
		BankName:      "HDFC",
		AccountNumber: "001122334455",
		Balance:       decimal.RequireFromString("1200.50"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Currency != DefaultCurrency || account.Name != "Everyday" {
		t.Fatalf("unexpected account %+v", account)
	}
	if account.Last4() != "4455" {
		t.Fatalf("expected last4 4455, got %s", account.Last4())
	}

	account, err = ledger.LinkAccount(AccountInput{Name: "Travel", BankName: "Revolut", AccountNumber: "99", Currency: "eur"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Currency != "EUR" {
		t.Fatalf("expected EUR, got %s", account.Currency)
	}

	if len(ledger.Accounts()) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(ledger.Accounts()))
	}
}

// TestLinkAccountValidation checks every form rule.
func TestLinkAccountValidation(t *testing.T) {
	ledger := NewLedger()
	valid := AccountInput{Name: "Main", BankName: "Chase", AccountNumber: "1234"}

	cases := []struct {
		field string
		edit  func(*AccountInput)
	}{
		{"bankName", func(in *AccountInput) { in.BankName = "C" }},
		{"name", func(in *AccountInput) { in.Name = " " }},
		{"accountNumber", func(in *AccountInput) { in.AccountNumber = "1" }},
		{"balance", func(in *AccountInput) { in.Balance = decimal.NewFromInt(-1) }},
		{"currency", func(in *AccountInput) { in.Currency = "US" }},
		{"currency", func(in *AccountInput) { in.Currency = "U5D" }},
	}

	for _, tc := range cases {
		input := valid
		tc.edit(&input)
		_, err := ledger.LinkAccount(input)
		if got := fieldOf(t, err); got != tc.field {
			t.Fatalf("expected field %s, got %s", tc.field, got)
		}
	}

	if len(ledger.Accounts()) != 0 {
		t.Fatal("expected rejected accounts not to be stored")
	}
}

// TestUpdateAndDeleteAccount checks edits, negative balances and missing ids.
func TestUpdateAndDeleteAccount(t *testing.T) {
	ledger := NewSeededLedger()
	target := ledger.Accounts()[0]

	updated, err := ledger.UpdateAccount(target.ID, AccountUpdate{Name: "Joint", BankName: "Chase", Balance: decimal.NewFromInt(-20)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Joint" || !updated.Balance.Equal(decimal.NewFromInt(-20)) {
		t.Fatalf("unexpected account %+v", updated)
	}
	if updated.AccountNumber != target.AccountNumber {
		t.Fatal("expected account number to be kept")
	}

	if _, err := ledger.UpdateAccount(uuid.New(), AccountUpdate{Name: "Joint", BankName: "Chase"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := ledger.DeleteAccount(target.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ledger.DeleteAccount(target.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(ledger.Accounts()) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(ledger.Accounts()))
	}
}

// TestTotalBalance checks per-currency sums.
func TestTotalBalance(t *testing.T) {
	totals := NewSeededLedger().TotalBalance()

	expected := decimal.RequireFromString("12651.05")
	if !totals["USD"].Equal(expected) {
		t.Fatalf("expected %s, got %s", expected, totals["USD"])
	}
}

// TestCreateCategory checks icon resolution and derived fields.
func TestCreateCategory(t *testing.T) {
	ledger := NewLedger()

	category, err := ledger.CreateCategory(CategoryInput{
		Name:      "Groceries",
		Icon:      "shoppingbag",
		Limit:     decimal.NewFromInt(300),
		LimitType: "Monthly",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if category.Icon != IconShoppingBag || category.LimitType != LimitTypeMonthly {
		t.Fatalf("unexpected category %+v", category)
	}
	if !category.Spent.IsZero() || !category.Progress().IsZero() || category.OverBudget() {
		t.Fatal("expected a fresh category to have nothing spent")
	}
}

// TestCreateCategoryValidation checks the category form rules.
func TestCreateCategoryValidation(t *testing.T) {
	ledger := NewLedger()
	valid := CategoryInput{Name: "Rent", Icon: "Home", Limit: decimal.NewFromInt(1000), LimitType: "monthly"}

	cases := []struct {
		field string
		edit  func(*CategoryInput)
	}{
		{"name", func(in *CategoryInput) { in.Name = "R" }},
		{"icon", func(in *CategoryInput) { in.Icon = "" }},
		{"icon", func(in *CategoryInput) { in.Icon = "Rocket" }},
		{"limit", func(in *CategoryInput) { in.Limit = decimal.NewFromInt(-5) }},
		{"limitType", func(in *CategoryInput) { in.LimitType = "weekly" }},
	}

	for _, tc := range cases {
		input := valid
		tc.edit(&input)
		_, err := ledger.CreateCategory(input)
		if got := fieldOf(t, err); got != tc.field {
			t.Fatalf("expected field %s, got %s", tc.field, got)
		}
	}
}

// TestSetLimit checks limit changes, optional spent and over-budget detection.
func TestSetLimit(t *testing.T) {
	ledger := NewSeededLedger()
	food := ledger.Categories()[0]

	spent := decimal.NewFromInt(120)
	updated, err := ledger.SetLimit(food.ID, LimitInput{Limit: decimal.NewFromInt(100), LimitType: "yearly", Spent: &spent})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.OverBudget() || !updated.Progress().Equal(decimal.NewFromInt(120)) {
		t.Fatalf("expected over budget at 120%%, got %s", updated.Progress())
	}
	if !updated.Remaining().IsZero() {
		t.Fatalf("expected no remaining budget, got %s", updated.Remaining())
	}

	updated, err = ledger.SetLimit(food.ID, LimitInput{Limit: decimal.NewFromInt(240), LimitType: "monthly"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.Spent.Equal(spent) || !updated.Progress().Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected spent to be kept, got %+v", updated)
	}

	negative := decimal.NewFromInt(-1)
	if _, err := ledger.SetLimit(food.ID, LimitInput{Limit: decimal.NewFromInt(1), LimitType: "monthly", Spent: &negative}); fieldOf(t, err) != "spent" {
		t.Fatal("expected spent validation error")
	}
	if _, err := ledger.SetLimit(uuid.New(), LimitInput{Limit: decimal.NewFromInt(1), LimitType: "monthly"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// TestUpdateCategoryKeepsSpent checks that editing keeps the spent amount.
func TestUpdateCategoryKeepsSpent(t *testing.T) {
	ledger := NewSeededLedger()
	entertainment := ledger.Categories()[2]

	updated, err := ledger.UpdateCategory(entertainment.ID, CategoryInput{
		Name:      "Fun",
		Icon:      "Ticket",
		Limit:     decimal.NewFromInt(200),
		LimitType: "monthly",
		Color:     "#ff0000",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.Spent.Equal(entertainment.Spent) || updated.Name != "Fun" || updated.Color != "#ff0000" {
		t.Fatalf("unexpected category %+v", updated)
	}

	if err := ledger.DeleteCategory(entertainment.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ledger.Categories()) != 4 {
		t.Fatalf("expected 4 categories, got %d", len(ledger.Categories()))
	}
}

// TestSeededOverBudget checks the demo data.
func TestSeededOverBudget(t *testing.T) {
	var over []string
	for _, category := range NewSeededLedger().Categories() {
		if category.OverBudget() {
			over = append(over, category.Name)
		}
	}

	if len(over) != 1 || over[0] != "Entertainment" {
		t.Fatalf("expected only Entertainment over budget, got %v", over)
	}
}

// TestRejectsOversizedAmounts checks the upper bound on money inputs.
func TestRejectsOversizedAmounts(t *testing.T) {
	ledger := NewSeededLedger()
	huge := decimal.RequireFromString("1e400")
	account := ledger.Accounts()[0]
	category := ledger.Categories()[0]

	_, err := ledger.LinkAccount(AccountInput{Name: "Main", BankName: "Chase", AccountNumber: "1234", Balance: huge})
	if got := fieldOf(t, err); got != "balance" {
		t.Fatalf("expected balance error, got %s", got)
	}

	_, err = ledger.UpdateAccount(account.ID, AccountUpdate{Name: "Main", BankName: "Chase", Balance: huge.Neg()})
	if got := fieldOf(t, err); got != "balance" {
		t.Fatalf("expected balance error, got %s", got)
	}

	_, err = ledger.CreateCategory(CategoryInput{Name: "Rent", Icon: "Home", Limit: huge, LimitType: "monthly"})
	if got := fieldOf(t, err); got != "limit" {
		t.Fatalf("expected limit error, got %s", got)
	}

	_, err = ledger.SetLimit(category.ID, LimitInput{Limit: decimal.NewFromInt(100), LimitType: "monthly", Spent: &huge})
	if got := fieldOf(t, err); got != "spent" {
		t.Fatalf("expected spent error, got %s", got)
	}

	edge := decimal.New(1, 15)
	if _, err := ledger.SetLimit(category.ID, LimitInput{Limit: edge, LimitType: "monthly"}); err != nil {
		t.Fatalf("expected the bound itself to be accepted, got %v", err)
	}
}

// TestParseIcon checks the closed icon table.
func TestParseIcon(t *testing.T) {
	icon, err := ParseIcon(" utensils ")
	if err != nil || icon != IconUtensils {
		t.Fatalf("expected Utensils, got %v (%v)", icon, err)
	}

	if _, err := ParseIcon("Banana"); err == nil {
		t.Fatal("expected unknown icon error")
	}

	if len(Icons()) != 7 {
		t.Fatalf("expected 7 icons, got %d", len(Icons()))
	}
}
