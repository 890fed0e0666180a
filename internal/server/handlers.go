package server

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "github.com/alreadysons/StayAtHome/internal/errors"
)

// parseUUIDParam reads a path parameter and parses it as a UUID.
func parseUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.ValidationError("invalid UUID format").WithField(name, raw)
	}
	return id, nil
}

// parsePagination reads optional offset and limit query parameters. Absent or
// malformed values fall back to zero, which the application layer clamps to
// its defaults.
func parsePagination(c echo.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.QueryParam("offset"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	return offset, limit
}
