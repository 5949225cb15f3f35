package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"example.com/pennypilot/backend/internal/budget"
	"example.com/pennypilot/backend/internal/session"
)

type AccountHandler struct {
	Sessions *session.Store
}

func NewAccountHandler(sessions *session.Store) *AccountHandler {
	return &AccountHandler{Sessions: sessions}
}

type LinkAccountRequest struct {
	BankName      string           `json:"bankName" validate:"max=100"`
	Name          string           `json:"name" validate:"max=100"`
	AccountNumber string           `json:"accountNumber" validate:"max=34"`
	Balance       *decimal.Decimal `json:"balance" validate:"required"`
	Currency      string           `json:"currency"`
}

type UpdateAccountRequest struct {
	Name     string           `json:"name" validate:"max=100"`
	BankName string           `json:"bankName" validate:"max=100"`
	Balance  *decimal.Decimal `json:"balance" validate:"required"`
}

type AccountResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	BankName      string    `json:"bankName"`
	AccountNumber string    `json:"accountNumber"`
	Last4         string    `json:"last4"`
	Balance       float64   `json:"balance"`
	Currency      string    `json:"currency"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type AccountListResponse struct {
	Accounts []AccountResponse `json:"accounts"`
	Totals   map[string]float64 `json:"totals"`
}

func (h *AccountHandler) List(c echo.Context) error {
	sess, ok := currentSession(c, h.Sessions)
	if !ok {
		return sessionExpired(c)
	}

	accounts := sess.Ledger.Accounts()
	response := AccountListResponse{
		Accounts: make([]AccountResponse, 0, len(accounts)),
		Totals:   make(map[string]float64),
	}
	for _, account := range accounts {
		response.Accounts = append(response.Accounts, toAccountResponse(account))
	}
	for currency, total := range sess.Ledger.TotalBalance() {
		response.Totals[currency] = total.InexactFloat64()
	}

	return c.JSON(http.StatusOK, response)
}

// Create links an account through the mock flow. Nothing leaves the process.
func (h *AccountHandler) Create(c echo.Context) error {
	sess, ok := currentSession(c, h.Sessions)
	if !ok {
		return sessionExpired(c)
	}

	var req LinkAccountRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return invalidPayload(c, err)
	}

	account, err := sess.Ledger.LinkAccount(budget.AccountInput{
		Name:          req.Name,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		Balance:       *req.Balance,
		Currency:      req.Currency,
	})
	if err != nil {
		return domainError(c, err, "account not found")
	}

	return c.JSON(http.StatusCreated, toAccountResponse(account))
}

func (h *AccountHandler) Update(c echo.Context) error {
	sess, ok := currentSession(c, h.Sessions)
	if !ok {
		return sessionExpired(c)
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid account id")
	}

	var req UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return invalidPayload(c, err)
	}

	account, err := sess.Ledger.UpdateAccount(accountID, budget.AccountUpdate{
		Name:     req.Name,
		BankName: req.BankName,
		Balance:  *req.Balance,
	})
	if err != nil {
		return domainError(c, err, "account not found")
	}

	return c.JSON(http.StatusOK, toAccountResponse(account))
}

func (h *AccountHandler) Delete(c echo.Context) error {
	sess, ok := currentSession(c, h.Sessions)
	if !ok {
		return sessionExpired(c)
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid account id")
	}

	if err := sess.Ledger.DeleteAccount(accountID); err != nil {
		return domainError(c, err, "account not found")
	}

	return c.NoContent(http.StatusNoContent)
}

func toAccountResponse(account budget.Account) AccountResponse {
	return AccountResponse{
		ID:            account.ID,
		Name:          account.Name,
		BankName:      account.BankName,
		AccountNumber: account.AccountNumber,
		Last4:         account.Last4(),
		Balance:       account.Balance.InexactFloat64(),
		Currency:      account.Currency,
		CreatedAt:     account.CreatedAt,
		UpdatedAt:     account.UpdatedAt,
	}
}
