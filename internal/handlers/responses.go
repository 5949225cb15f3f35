package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"example.com/pennypilot/backend/internal/ai"
	"example.com/pennypilot/backend/internal/budget"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

func fieldError(c echo.Context, field, message string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Field: field})
}

func unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: message})
}

func conflict(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, ErrorResponse{Error: message})
}

func notFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, ErrorResponse{Error: message})
}

func badGateway(c echo.Context, message string) error {
	return c.JSON(http.StatusBadGateway, ErrorResponse{Error: message})
}

func gatewayTimeout(c echo.Context, message string) error {
	return c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: message})
}

func serverError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// invalidPayload maps struct-tag failures to the first offending field.
func invalidPayload(c echo.Context, err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return badRequest(c, "validation failed")
	}

	first := errs[0]
	switch first.Tag() {
	case "required":
		return fieldError(c, first.Field(), fmt.Sprintf("%s is required.", first.Field()))
	case "max":
		return fieldError(c, first.Field(), fmt.Sprintf("%s must be at most %s characters.", first.Field(), first.Param()))
	default:
		return fieldError(c, first.Field(), fmt.Sprintf("%s is invalid.", first.Field()))
	}
}

// domainError maps local validation errors to 400 and unknown ids to 404.
func domainError(c echo.Context, err error, missing string) error {
	var aiField *ai.ValidationError
	if errors.As(err, &aiField) {
		return fieldError(c, aiField.Field, aiField.Message)
	}

	var ledgerField *budget.FieldError
	if errors.As(err, &ledgerField) {
		return fieldError(c, ledgerField.Field, ledgerField.Message)
	}

	if errors.Is(err, budget.ErrNotFound) {
		return notFound(c, missing)
	}

	return serverError(c)
}
