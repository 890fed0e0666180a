package server

import (
	"github.com/labstack/echo/v4"

	"github.com/alreadysons/StayAtHome/internal/correlation"
)

// correlationMiddleware assigns each request a correlation ID, honoring an
// incoming X-Request-ID header, and echoes it back on the response.
func correlationMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = correlation.NewID()
			}

			ctx := correlation.WithID(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set(echo.HeaderXRequestID, id)

			return next(c)
		}
	}
}
