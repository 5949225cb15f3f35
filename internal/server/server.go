package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"example.com/pennypilot/backend/internal/ai"
	"example.com/pennypilot/backend/internal/auth"
	"example.com/pennypilot/backend/internal/config"
	"example.com/pennypilot/backend/internal/handlers"
	"example.com/pennypilot/backend/internal/notifications"
	"example.com/pennypilot/backend/internal/session"
)

// bodyOverhead leaves room for the JSON envelope and text around a base64 image.
const bodyOverhead = 64 * 1024

// New builds the Echo server with its routes and dependencies. The returned
// func releases sessions and the limiter connection on shutdown.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*echo.Echo, func(), error) {
	client, err := newAIClient(ctx, cfg.AI)
	if err != nil {
		return nil, nil, err
	}

	e, cleanup := build(cfg, logger, client)
	return e, cleanup, nil
}

func newAIClient(ctx context.Context, cfg config.AIConfig) (ai.Client, error) {
	switch cfg.Provider {
	case "gemini":
		client, err := ai.NewGeminiClient(ctx, cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout, cfg.MaxOutputTokens)
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		return client, nil
	default:
		return ai.NewGroqClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout, cfg.MaxOutputTokens), nil
	}
}

func build(cfg config.Config, logger *slog.Logger, client ai.Client) (*echo.Echo, func()) {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	if len(cfg.Server.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.Server.CORSOrigins,
			AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
		}))
	}
	e.Use(middleware.BodyLimit(bodyLimit(cfg.AI.MaxImageBytes)))

	tokenManager := auth.NewTokenManager(cfg.Session.TokenSecret, cfg.Session.TokenIssuer, cfg.Session.TokenTTL)
	notificationHub := notifications.NewHub()
	sessions := session.NewStore(cfg.Session.IdleTTL, handlers.ChatObservers(notificationHub), notificationHub.CloseSession)

	aiService := ai.NewService(client, ai.Options{
		Provider: cfg.AI.Provider,
		Model:    cfg.AI.Model,
		Timeout:  cfg.AI.Timeout,
		Images: ai.ImagePolicy{
			MaxBytes:     cfg.AI.MaxImageBytes,
			AllowedTypes: cfg.AI.ImageTypes,
		},
		Logger: logger,
	})

	redisClient := newRedisClient(cfg.RateLimit)

	registerRoutes(
		e,
		routeHandlers{
			sessions:      handlers.NewSessionHandler(sessions, tokenManager),
			chat:          handlers.NewChatHandler(sessions, aiService),
			suggestions:   handlers.NewSuggestionHandler(sessions, aiService, notificationHub),
			accounts:      handlers.NewAccountHandler(sessions),
			categories:    handlers.NewCategoryHandler(sessions),
			notifications: handlers.NewNotificationHandler(notificationHub, sessions),
		},
		auth.JWTMiddleware(tokenManager),
		sessionRateLimiter(cfg.Session, redisClient),
		aiRateLimiter(cfg.AI, redisClient),
	)

	cleanup := func() {
		sessions.Close()
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("failed to close redis client", slog.String("error", err.Error()))
			}
		}
	}

	return e, cleanup
}

// NewHTTPServer creates the net/http server with the configured timeouts.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func bodyLimit(maxImageBytes int) string {
	encoded := (maxImageBytes+2)/3*4 + bodyOverhead
	return fmt.Sprintf("%dK", (encoded+1023)/1024)
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

