package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const ContextSessionIDKey = "session_id"

// JWTMiddleware checks the session token and stores the session id in the context.
// EventSource cannot set headers, so the stream route may pass the token as ?token=.
func JWTMiddleware(manager *TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := tokenFromRequest(c)
			if err != nil {
				return err
			}

			claims, err := manager.ParseSessionToken(tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(ContextSessionIDKey, claims.Subject)
			return next(c)
		}
	}
}

// SessionIDFromContext returns the session id stored by JWTMiddleware.
func SessionIDFromContext(c echo.Context) (string, bool) {
	value := c.Get(ContextSessionIDKey)
	sessionID, ok := value.(string)
	return sessionID, ok && sessionID != ""
}

func tokenFromRequest(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		if query := strings.TrimSpace(c.QueryParam("token")); query != "" && isStreamRequest(c) {
			return query, nil
		}
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}

	return tokenString, nil
}

func isStreamRequest(c echo.Context) bool {
	return c.Request().Method == http.MethodGet && strings.HasSuffix(c.Path(), "/stream")
}
