package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/atm-ledger/internal/logger"
	"github.com/gin-gonic/gin"
)

const (
	// AccountIDKey holds the account id of the authenticated session
	AccountIDKey = "account_id"
	// SessionTokenKey holds the bearer token of the request
	SessionTokenKey = "session_token"
)

// SessionResolver maps a session token to an account id
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// SessionAuth requires "Authorization: Bearer <token>" naming a live session.
// isInvalid tells a rejected token apart from a store outage.
func SessionAuth(resolver SessionResolver, isInvalid func(error) bool, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing session token")
			return
		}

		accountID, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			if isInvalid(err) {
				abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Session is invalid or expired")
				return
			}
			logger.FromContext(c.Request.Context(), log).Error("Failed to resolve session", "error", err)
			abortWithError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An internal server error occurred")
			return
		}

		c.Set(AccountIDKey, accountID)
		c.Set(SessionTokenKey, token)
		c.Next()
	}
}

// BearerToken extracts the token from the Authorization header
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// GetAccountID returns the session's account id
func GetAccountID(c *gin.Context) string {
	return c.GetString(AccountIDKey)
}

// ErrIs adapts errors.Is to the isInvalid argument of SessionAuth
func ErrIs(target error) func(error) bool {
	return func(err error) bool { return errors.Is(err, target) }
}
