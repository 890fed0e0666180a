package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/alreadysons/StayAtHome/internal/errors"
)

// handleWeeklyStatistics returns the report for the calendar week containing
// the current instant. A user without sessions (or an unknown id) gets an
// all-zero report rather than an error.
func (s *Server) handleWeeklyStatistics(c echo.Context) error {
	userID, err := parseUUIDParam(c, "user_id")
	if err != nil {
		return err
	}

	report, err := s.app.WeeklyStatistics(c.Request().Context(), userID)
	if err != nil {
		return apperrors.InternalError("failed to compute weekly statistics", err).
			WithField("user_id", userID.String())
	}

	return c.JSON(http.StatusOK, report)
}
