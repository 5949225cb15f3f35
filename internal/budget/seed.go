package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewSeededLedger creates a ledger with the demo accounts and categories a
// fresh session starts with.
func NewSeededLedger() *Ledger {
	ledger := NewLedger()
	now := ledger.now()

	ledger.accounts = []Account{
		seedAccount(now, "Chase Checking", "Chase Bank", "1234", "2500.75", "USD"),
		seedAccount(now, "BoA Savings", "Bank of America", "5678", "10500.50", "USD"),
		seedAccount(now, "Amex Credit Card", "American Express", "9012", "-350.20", "USD"),
	}

	ledger.categories = []Category{
		seedCategory(now, "Food", IconUtensils, "500", "250.75", "hsl(var(--chart-1))"),
		seedCategory(now, "Transportation", IconCar, "200", "150.20", "hsl(var(--chart-2))"),
		seedCategory(now, "Entertainment", IconTicket, "150", "180.00", "hsl(var(--chart-3))"),
		seedCategory(now, "Utilities", IconHome, "300", "280.50", "hsl(var(--chart-4))"),
		seedCategory(now, "Shopping", IconShoppingBag, "400", "100.00", "hsl(var(--chart-5))"),
	}

	return ledger
}

func seedAccount(now time.Time, name, bank, number, balance, currency string) Account {
	return Account{
		ID:            uuid.New(),
		Name:          name,
		BankName:      bank,
		AccountNumber: number,
		Balance:       decimal.RequireFromString(balance),
		Currency:      currency,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func seedCategory(now time.Time, name string, icon Icon, limit, spent, color string) Category {
	return Category{
		ID:        uuid.New(),
		Name:      name,
		Icon:      icon,
		Limit:     decimal.RequireFromString(limit),
		LimitType: LimitTypeMonthly,
		Spent:     decimal.RequireFromString(spent),
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
