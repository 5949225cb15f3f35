package server

import (
	"github.com/labstack/echo/v4"

	"example.com/pennypilot/backend/internal/handlers"
)

type routeHandlers struct {
	sessions      *handlers.SessionHandler
	chat          *handlers.ChatHandler
	suggestions   *handlers.SuggestionHandler
	accounts      *handlers.AccountHandler
	categories    *handlers.CategoryHandler
	notifications *handlers.NotificationHandler
}

func registerRoutes(
	e *echo.Echo,
	h routeHandlers,
	sessionMiddleware echo.MiddlewareFunc,
	sessionRateLimiter echo.MiddlewareFunc,
	aiRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", handlers.Health)

	api := e.Group("/api/v1")
	api.GET("/navigation", handlers.Navigation)
	api.POST("/sessions", h.sessions.Create, sessionRateLimiter)
	api.DELETE("/sessions/current", h.sessions.Delete, sessionMiddleware)

	chat := api.Group("/chat", sessionMiddleware)
	chat.GET("", h.chat.Get)
	chat.GET("/stream", h.notifications.Stream)
	chat.POST("/messages", h.chat.Send, aiRateLimiter)

	budget := api.Group("/budget", sessionMiddleware)
	budget.GET("/suggestions", h.suggestions.Get)
	budget.POST("/suggestions", h.suggestions.Create, aiRateLimiter)

	accounts := api.Group("/accounts", sessionMiddleware)
	accounts.GET("", h.accounts.List)
	accounts.POST("", h.accounts.Create)
	accounts.PUT("/:id", h.accounts.Update)
	accounts.DELETE("/:id", h.accounts.Delete)

	categories := api.Group("/categories", sessionMiddleware)
	categories.GET("", h.categories.List)
	categories.GET("/icons", handlers.Icons)
	categories.POST("", h.categories.Create)
	categories.PUT("/:id", h.categories.Update)
	categories.PATCH("/:id/limit", h.categories.SetLimit)
	categories.DELETE("/:id", h.categories.Delete)
}
