package budget

import (
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const minNameLength = 2

// maxAmount bounds every money input so it stays representable once sent as a JSON number.
var maxAmount = decimal.New(1, 15)

// Ledger holds one session's bank accounts and spending categories in memory.
type Ledger struct {
	mu         sync.RWMutex
	accounts   []Account
	categories []Category
	now        func() time.Time
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{now: func() time.Time { return time.Now().UTC() }}
}

func (l *Ledger) Accounts() []Account {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Account(nil), l.accounts...)
}

// LinkAccount adds an account from the mock link flow. No bank is contacted.
func (l *Ledger) LinkAccount(input AccountInput) (Account, error) {
	bankName := strings.TrimSpace(input.BankName)
	name := strings.TrimSpace(input.Name)
	number := strings.TrimSpace(input.AccountNumber)

	if err := requireLength("bankName", bankName, "Bank name must be at least 2 characters."); err != nil {
		return Account{}, err
	}
	if err := requireLength("name", name, "Account name must be at least 2 characters."); err != nil {
		return Account{}, err
	}
	if err := requireLength("accountNumber", number, "Account number must be at least 2 characters."); err != nil {
		return Account{}, err
	}
	if input.Balance.IsNegative() {
		return Account{}, invalid("balance", "Balance must be a positive number.")
	}
	if err := requireBounded("balance", input.Balance); err != nil {
		return Account{}, err
	}

	currency, err := normalizeCurrency(input.Currency)
	if err != nil {
		return Account{}, err
	}

	now := l.now()
	account := Account{
		ID:            uuid.New(),
		Name:          name,
		BankName:      bankName,
		AccountNumber: number,
		Balance:       input.Balance,
		Currency:      currency,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	l.mu.Lock()
	l.accounts = append(l.accounts, account)
	l.mu.Unlock()

	return account, nil
}

// UpdateAccount edits name, bank and balance. A negative balance is allowed
// here since credit cards carry one.
func (l *Ledger) UpdateAccount(id uuid.UUID, input AccountUpdate) (Account, error) {
	name := strings.TrimSpace(input.Name)
	bankName := strings.TrimSpace(input.BankName)

	if err := requireLength("name", name, "Account name must be at least 2 characters."); err != nil {
		return Account{}, err
	}
	if err := requireLength("bankName", bankName, "Bank name must be at least 2 characters."); err != nil {
		return Account{}, err
	}
	if err := requireBounded("balance", input.Balance); err != nil {
		return Account{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.accounts {
		if l.accounts[i].ID != id {
			continue
		}
		l.accounts[i].Name = name
		l.accounts[i].BankName = bankName
		l.accounts[i].Balance = input.Balance
		l.accounts[i].UpdatedAt = l.now()
		return l.accounts[i], nil
	}

	return Account{}, ErrNotFound
}

func (l *Ledger) DeleteAccount(id uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.accounts {
		if l.accounts[i].ID == id {
			l.accounts = append(l.accounts[:i], l.accounts[i+1:]...)
			return nil
		}
	}

	return ErrNotFound
}

// TotalBalance sums balances per currency.
func (l *Ledger) TotalBalance() map[string]decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	totals := make(map[string]decimal.Decimal)
	for _, account := range l.accounts {
		totals[account.Currency] = totals[account.Currency].Add(account.Balance)
	}
	return totals
}

func (l *Ledger) Categories() []Category {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Category(nil), l.categories...)
}

// CreateCategory adds a category with nothing spent yet.
func (l *Ledger) CreateCategory(input CategoryInput) (Category, error) {
	category, err := validateCategory(input)
	if err != nil {
		return Category{}, err
	}

	now := l.now()
	category.ID = uuid.New()
	category.Spent = decimal.Zero
	category.CreatedAt = now
	category.UpdatedAt = now

	l.mu.Lock()
	l.categories = append(l.categories, category)
	l.mu.Unlock()

	return category, nil
}

// UpdateCategory replaces the editable fields and keeps the spent amount.
func (l *Ledger) UpdateCategory(id uuid.UUID, input CategoryInput) (Category, error) {
	updated, err := validateCategory(input)
	if err != nil {
		return Category{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.categories {
		if l.categories[i].ID != id {
			continue
		}
		current := &l.categories[i]
		current.Name = updated.Name
		current.Icon = updated.Icon
		current.Limit = updated.Limit
		current.LimitType = updated.LimitType
		current.Color = updated.Color
		current.UpdatedAt = l.now()
		return *current, nil
	}

	return Category{}, ErrNotFound
}

// SetLimit changes the limit and, when given, the spent amount.
func (l *Ledger) SetLimit(id uuid.UUID, input LimitInput) (Category, error) {
	if input.Limit.IsNegative() {
		return Category{}, invalid("limit", "Limit must be a positive number.")
	}
	if err := requireBounded("limit", input.Limit); err != nil {
		return Category{}, err
	}
	limitType, err := parseLimitType(input.LimitType)
	if err != nil {
		return Category{}, err
	}
	if input.Spent != nil && input.Spent.IsNegative() {
		return Category{}, invalid("spent", "Spent amount must be positive.")
	}
	if input.Spent != nil {
		if err := requireBounded("spent", *input.Spent); err != nil {
			return Category{}, err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.categories {
		if l.categories[i].ID != id {
			continue
		}
		current := &l.categories[i]
		current.Limit = input.Limit
		current.LimitType = limitType
		if input.Spent != nil {
			current.Spent = *input.Spent
		}
		current.UpdatedAt = l.now()
		return *current, nil
	}

	return Category{}, ErrNotFound
}

func (l *Ledger) DeleteCategory(id uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.categories {
		if l.categories[i].ID == id {
			l.categories = append(l.categories[:i], l.categories[i+1:]...)
			return nil
		}
	}

	return ErrNotFound
}

func validateCategory(input CategoryInput) (Category, error) {
	name := strings.TrimSpace(input.Name)
	if err := requireLength("name", name, "Category name must be at least 2 characters."); err != nil {
		return Category{}, err
	}

	if strings.TrimSpace(input.Icon) == "" {
		return Category{}, invalid("icon", "Please select an icon.")
	}
	icon, err := ParseIcon(input.Icon)
	if err != nil {
		return Category{}, invalid("icon", "Please select a supported icon.")
	}

	if input.Limit.IsNegative() {
		return Category{}, invalid("limit", "Limit must be a positive number.")
	}
	if err := requireBounded("limit", input.Limit); err != nil {
		return Category{}, err
	}

	limitType, err := parseLimitType(input.LimitType)
	if err != nil {
		return Category{}, err
	}

	return Category{
		Name:      name,
		Icon:      icon,
		Limit:     input.Limit,
		LimitType: limitType,
		Color:     strings.TrimSpace(input.Color),
	}, nil
}

func parseLimitType(value string) (LimitType, error) {
	switch LimitType(strings.ToLower(strings.TrimSpace(value))) {
	case LimitTypeMonthly:
		return LimitTypeMonthly, nil
	case LimitTypeYearly:
		return LimitTypeYearly, nil
	default:
		return "", invalid("limitType", "Limit type must be monthly or yearly.")
	}
}

func normalizeCurrency(value string) (string, error) {
	currency := strings.TrimSpace(value)
	if currency == "" {
		return DefaultCurrency, nil
	}

	if len(currency) != 3 {
		return "", invalid("currency", "Currency code must be 3 letters.")
	}
	for _, r := range currency {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return "", invalid("currency", "Currency code must be 3 letters.")
		}
	}

	return strings.ToUpper(currency), nil
}

func requireBounded(field string, value decimal.Decimal) error {
	if value.Abs().GreaterThan(maxAmount) {
		return invalid(field, "Amount is too large.")
	}
	return nil
}

func requireLength(field, value, message string) error {
	if len([]rune(value)) < minNameLength {
		return invalid(field, message)
	}
	return nil
}
