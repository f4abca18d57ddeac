package server

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "github.com/Ufhano/Minimalist-App/internal/errors"
)

type setOwnerRequest struct {
	OwnerID   string `json:"owner_id"`
	ProfileID string `json:"profile_id,omitempty"`
}

func (s *Server) handleSetOwner(c echo.Context) error {
	var req setOwnerRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	owner, err := uuid.Parse(req.OwnerID)
	if err != nil {
		return apperrors.ValidationError("invalid owner id").WithContext("owner_id", req.OwnerID)
	}

	var profile *uuid.UUID
	if req.ProfileID != "" {
		p, err := uuid.Parse(req.ProfileID)
		if err != nil {
			return apperrors.ValidationError("invalid profile id").WithContext("profile_id", req.ProfileID)
		}
		profile = &p
	}

	s.app.SetOwner(c.Request().Context(), owner, profile)

	if err := c.JSON(200, map[string]string{"status": "ok"}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleClearOwner(c echo.Context) error {
	s.app.ClearOwner()
	return c.JSON(200, map[string]string{"status": "ok"})
}
