package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/alreadysons/StayAtHome/internal/domain"
	apperrors "github.com/alreadysons/StayAtHome/internal/errors"
)

type startLogRequest struct {
	UserID string `json:"user_id"`
}

// handleStartLog opens a presence session for the user. If one is already
// open it is returned unchanged, so clients may fire arrival signals freely.
func (s *Server) handleStartLog(c echo.Context) error {
	var req startLogRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return apperrors.ValidationError("invalid UUID format").WithField("user_id", req.UserID)
	}

	session, err := s.app.RecordArrival(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return apperrors.NotFoundError("user not found").WithField("user_id", userID.String())
		}
		return apperrors.InternalError("failed to start log", err).WithField("user_id", userID.String())
	}

	return c.JSON(http.StatusCreated, session)
}

// handleEndLog closes the identified session at the current time.
func (s *Server) handleEndLog(c echo.Context) error {
	sessionID, err := parseUUIDParam(c, "session_id")
	if err != nil {
		return err
	}

	session, err := s.app.RecordDeparture(c.Request().Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return apperrors.NotFoundError("log not found").WithField("session_id", sessionID.String())
		}
		return apperrors.InternalError("failed to end log", err).WithField("session_id", sessionID.String())
	}

	return c.JSON(http.StatusOK, session)
}

// handleOpenLog returns the user's currently open session, if any.
func (s *Server) handleOpenLog(c echo.Context) error {
	userID, err := parseUUIDParam(c, "user_id")
	if err != nil {
		return err
	}

	session, err := s.app.GetOpenSession(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNoOpenSession) {
			return apperrors.NotFoundError("no open log").WithField("user_id", userID.String())
		}
		return apperrors.InternalError("failed to look up open log", err).WithField("user_id", userID.String())
	}

	return c.JSON(http.StatusOK, session)
}

// handleListLogs returns a page of sessions, newest first. An optional
// user_id query parameter restricts the page to one user.
func (s *Server) handleListLogs(c echo.Context) error {
	var userID *uuid.UUID
	if raw := c.QueryParam("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return apperrors.ValidationError("invalid UUID format").WithField("user_id", raw)
		}
		userID = &id
	}

	offset, limit := parsePagination(c)

	sessions, err := s.app.ListSessions(c.Request().Context(), userID, offset, limit)
	if err != nil {
		return apperrors.InternalError("failed to list logs", err)
	}
	if sessions == nil {
		sessions = []*domain.Session{}
	}

	return c.JSON(http.StatusOK, sessions)
}
