package middleware

import (
	"log/slog"
	"net/http"

	"github.com/atm-ledger/internal/logger"
	"github.com/gin-gonic/gin"
)

// TechnicianCodeHeader carries the technician access code
const TechnicianCodeHeader = "X-Technician-Code"

// TechnicianAuthorizer checks a technician access code
type TechnicianAuthorizer interface {
	Authorize(code string) bool
}

// TechnicianAuth rejects requests without the configured technician code
func TechnicianAuth(authorizer TechnicianAuthorizer, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authorizer.Authorize(c.GetHeader(TechnicianCodeHeader)) {
			logger.FromContext(c.Request.Context(), log).Warn("Technician access denied", "path", c.Request.URL.Path, "client_ip", c.ClientIP())
			abortWithError(c, http.StatusForbidden, "FORBIDDEN", "Invalid technician code")
			return
		}
		c.Next()
	}
}
