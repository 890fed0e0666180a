package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/alreadysons/StayAtHome/internal/domain"
	apperrors "github.com/alreadysons/StayAtHome/internal/errors"
)

type createUserRequest struct {
	Name      string `json:"user_name"`
	HomeSSID  string `json:"home_ssid"`
	HomeBSSID string `json:"home_bssid"`
}

type homeWifiRequest struct {
	HomeSSID  string `json:"home_ssid"`
	HomeBSSID string `json:"home_bssid"`
}

func (s *Server) handleCreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return apperrors.ValidationError("user_name is required")
	}
	if req.HomeSSID == "" {
		return apperrors.ValidationError("home_ssid is required")
	}

	user, err := s.app.CreateUser(c.Request().Context(), req.Name, req.HomeSSID, req.HomeBSSID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNameTaken) {
			return apperrors.ConflictError("user name already taken").WithField("user_name", req.Name)
		}
		return apperrors.InternalError("failed to create user", err).WithField("user_name", req.Name)
	}

	return c.JSON(http.StatusCreated, user)
}

func (s *Server) handleGetUserByID(c echo.Context) error {
	userID, err := parseUUIDParam(c, "user_id")
	if err != nil {
		return err
	}

	user, err := s.app.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return apperrors.NotFoundError("user not found").WithField("user_id", userID.String())
		}
		return apperrors.InternalError("failed to load user", err).WithField("user_id", userID.String())
	}

	return c.JSON(http.StatusOK, user)
}

func (s *Server) handleGetUserByName(c echo.Context) error {
	name := c.Param("user_name")

	user, err := s.app.GetUserByName(c.Request().Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return apperrors.NotFoundError("user not found").WithField("user_name", name)
		}
		return apperrors.InternalError("failed to load user", err).WithField("user_name", name)
	}

	return c.JSON(http.StatusOK, user)
}

func (s *Server) handleListUsers(c echo.Context) error {
	offset, limit := parsePagination(c)

	users, err := s.app.ListUsers(c.Request().Context(), offset, limit)
	if err != nil {
		return apperrors.InternalError("failed to list users", err)
	}
	if users == nil {
		users = []*domain.User{}
	}

	return c.JSON(http.StatusOK, users)
}

func (s *Server) handleUpdateHomeWifi(c echo.Context) error {
	userID, err := parseUUIDParam(c, "user_id")
	if err != nil {
		return err
	}

	var req homeWifiRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.HomeSSID == "" {
		return apperrors.ValidationError("home_ssid is required")
	}

	user, err := s.app.UpdateHomeWifi(c.Request().Context(), userID, req.HomeSSID, req.HomeBSSID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return apperrors.NotFoundError("user not found").WithField("user_id", userID.String())
		}
		return apperrors.InternalError("failed to update home wifi", err).WithField("user_id", userID.String())
	}

	return c.JSON(http.StatusOK, user)
}

// handleDeleteUser removes the user and every session they own.
func (s *Server) handleDeleteUser(c echo.Context) error {
	userID, err := parseUUIDParam(c, "user_id")
	if err != nil {
		return err
	}

	if err := s.app.DeleteUser(c.Request().Context(), userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return apperrors.NotFoundError("user not found").WithField("user_id", userID.String())
		}
		return apperrors.InternalError("failed to delete user", err).WithField("user_id", userID.String())
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}
