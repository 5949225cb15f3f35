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

type CategoryHandler struct {
	Sessions *session.Store
}

func NewCategoryHandler(sessions *session.Store) *CategoryHandler {
	return &CategoryHandler{Sessions: sessions}
}

type CategoryRequest struct {
	Name      string           `json:"name" validate:"max=100"`
	Icon      string           `json:"icon"`
	Limit     *decimal.Decimal `json:"limit" validate:"required"`
	LimitType string           `json:"limitType"`
	Color     string           `json:"color" validate:"max=64"`
}

type SetLimitRequest struct {
	Limit     *decimal.Decimal `json:"limit" validate:"required"`
	LimitType string           `json:"limitType"`
	Spent     *decimal.Decimal `json:"spent"`
}

type CategoryResponse struct {
	ID         uuid.UUID        `json:"id"`
	Name       string           `json:"name"`
	Icon       budget.Icon      `json:"icon"`
	Limit      float64          `json:"limit"`
	LimitType  budget.LimitType `json:"limitType"`
	Spent      float64          `json:"spent"`
	Remaining  float64          `json:"remaining"`
	Progress   float64          `json:"progress"`
	OverBudget bool             `json:"overBudget"`
	Color      string           `json:"color,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

func (h *CategoryHandler) List(c echo.Context) error {
	sess, ok := currentSession(c, h.Sessions)
	if !ok {
		return sessionExpired(c)
	}

	categories := sess.Ledger.Categories()
	response := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		response = append(response, toCategoryResponse(category))
	}

	return c.JSON(http.StatusOK, map[string][]CategoryResponse{"categories": response})
}

func (h *CategoryHandler) Create(c echo.Context) error {
	sess, ok := currentSession(c, h.Sessions)
	if !ok {
		return sessionExpired(c)
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return invalidPayload(c, err)
	}

	category, err := sess.Ledger.CreateCategory(req.input())
	if err != nil {
		return domainError(c, err, "category not found")
	}

	return c.JSON(http.StatusCreated, toCategoryResponse(category))
}

func (h *CategoryHandler) Update(c echo.Context) error {
	sess, ok := currentSession(c, h.Sessions)
	if !ok {
		return sessionExpired(c)
	}

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid category id")
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return invalidPayload(c, err)
	}

	category, err := sess.Ledger.UpdateCategory(categoryID, req.input())
	if err != nil {
		return domainError(c, err, "category not found")
	}

	return c.JSON(http.StatusOK, toCategoryResponse(category))
}

// SetLimit changes the limit and optionally records the spent amount.
func (h *CategoryHandler) SetLimit(c echo.Context) error {
	sess, ok := currentSession(c, h.Sessions)
	if !ok {
		return sessionExpired(c)
	}

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid category id")
	}

	var req SetLimitRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return invalidPayload(c, err)
	}

	category, err := sess.Ledger.SetLimit(categoryID, budget.LimitInput{
		Limit:     *req.Limit,
		LimitType: req.LimitType,
		Spent:     req.Spent,
	})
	if err != nil {
		return domainError(c, err, "category not found")
	}

	return c.JSON(http.StatusOK, toCategoryResponse(category))
}

func (h *CategoryHandler) Delete(c echo.Context) error {
	sess, ok := currentSession(c, h.Sessions)
	if !ok {
		return sessionExpired(c)
	}

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid category id")
	}

	if err := sess.Ledger.DeleteCategory(categoryID); err != nil {
		return domainError(c, err, "category not found")
	}

	return c.NoContent(http.StatusNoContent)
}

func Icons(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]budget.IconInfo{"icons": budget.Icons()})
}

func (r CategoryRequest) input() budget.CategoryInput {
	return budget.CategoryInput{
		Name:      r.Name,
		Icon:      r.Icon,
		Limit:     *r.Limit,
		LimitType: r.LimitType,
		Color:     r.Color,
	}
}

func toCategoryResponse(category budget.Category) CategoryResponse {
	return CategoryResponse{
		ID:         category.ID,
		Name:       category.Name,
		Icon:       category.Icon,
		Limit:      category.Limit.InexactFloat64(),
		LimitType:  category.LimitType,
		Spent:      category.Spent.InexactFloat64(),
		Remaining:  category.Remaining().InexactFloat64(),
		Progress:   category.Progress().InexactFloat64(),
		OverBudget: category.OverBudget(),
		Color:      category.Color,
		CreatedAt:  category.CreatedAt,
		UpdatedAt:  category.UpdatedAt,
	}
}
