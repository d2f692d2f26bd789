package middleware

import (
	echo "github.com/labstack/echo/v4"

	"github.com/crmkit/crm-gateway/internal/util"
)

const ctxRequestID = "request_id"

// RequestIDFromCtx returns the correlation id set by RequestID.
func RequestIDFromCtx(c echo.Context) string {
	id, _ := c.Get(ctxRequestID).(string)
	return id
}

// RequestID tags every request with a ULID, echoed back in X-Request-ID.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = util.NewULID()
			}
			c.Set(ctxRequestID, id)
			c.Response().Header().Set(echo.HeaderXRequestID, id)
			return next(c)
		}
	}
}
