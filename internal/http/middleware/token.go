package middleware

import (
	"strings"

	echo "github.com/labstack/echo/v4"

	"github.com/crmkit/crm-gateway/internal/apperr"
	"github.com/crmkit/crm-gateway/internal/metrics"
	"github.com/crmkit/crm-gateway/internal/token"
)

const ctxUserID = "user_id"

// UserIDFromCtx extracts the authenticated owner id set by TokenMiddleware.
func UserIDFromCtx(c echo.Context) (int64, bool) {
	v := c.Get(ctxUserID)
	id, ok := v.(int64)
	return id, ok
}

// TokenMiddleware authenticates requests using the Authorization header
// ("Bearer <token>"). On success it stores the embedded user id in context;
// it attaches nothing else, there is no session store or revocation list.
func TokenMiddleware(tokens *token.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				metrics.AuthFailuresTotal.Inc()
				return apperr.Auth("Unauthorized")
			}

			raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if raw == "" {
				metrics.AuthFailuresTotal.Inc()
				return apperr.Auth("Unauthorized")
			}

			userID, err := tokens.Parse(raw)
			if err != nil {
				metrics.AuthFailuresTotal.Inc()
				return apperr.Auth("Unauthorized")
			}

			c.Set(ctxUserID, userID)
			return next(c)
		}
	}
}
