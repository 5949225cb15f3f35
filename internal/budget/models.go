package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LimitType string

const (
	LimitTypeMonthly LimitType = "monthly"
	LimitTypeYearly  LimitType = "yearly"
)

const DefaultCurrency = "INR"

type Account struct {
	ID            uuid.UUID
	Name          string
	BankName      string
	AccountNumber string
	Balance       decimal.Decimal
	Currency      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Last4 returns the tail of the account number shown on account cards.
func (a Account) Last4() string {
	if len(a.AccountNumber) <= 4 {
		return a.AccountNumber
	}
	return a.AccountNumber[len(a.AccountNumber)-4:]
}

type Category struct {
	ID        uuid.UUID
	Name      string
	Icon      Icon
	Limit     decimal.Decimal
	LimitType LimitType
	Spent     decimal.Decimal
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

var hundred = decimal.NewFromInt(100)

// Progress is spent as a percentage of the limit, 0 when there is no limit.
func (c Category) Progress() decimal.Decimal {
	if !c.Limit.IsPositive() {
		return decimal.Zero
	}
	return c.Spent.Div(c.Limit).Mul(hundred).Round(2)
}

func (c Category) OverBudget() bool {
	return c.Spent.GreaterThan(c.Limit)
}

// Remaining is the unspent part of the limit, never below zero.
func (c Category) Remaining() decimal.Decimal {
	remaining := c.Limit.Sub(c.Spent)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// AccountInput is the payload of the mock "link account" flow.
type AccountInput struct {
	Name          string
	BankName      string
	AccountNumber string
	Balance       decimal.Decimal
	Currency      string
}

type AccountUpdate struct {
	Name     string
	BankName string
	Balance  decimal.Decimal
}

type CategoryInput struct {
	Name      string
	Icon      string
	Limit     decimal.Decimal
	LimitType string
	Color     string
}

type LimitInput struct {
	Limit     decimal.Decimal
	LimitType string
	Spent     *decimal.Decimal
}
