package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Auth resolves the caller from the X-User-Id header set by the upstream
// auth layer. Authentication itself is not this service's job.
func Auth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := c.Request().Header.Get("X-User-Id")
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing X-User-Id header")
			}
			c.Set("user_id", userID)
			return next(c)
		}
	}
}

func UserID(c echo.Context) string {
	userID, _ := c.Get("user_id").(string)
	return userID
}
