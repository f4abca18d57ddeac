package server

import (
	"github.com/labstack/echo/v4"

	apperrors "github.com/Ufhano/Minimalist-App/internal/errors"
	"github.com/Ufhano/Minimalist-App/internal/settings"
)

func (s *Server) handleGetSettings(c echo.Context) error {
	return c.JSON(200, s.app.Settings(c.Request().Context()))
}

func (s *Server) handleSaveSettings(c echo.Context) error {
	var record settings.Settings
	if err := c.Bind(&record); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	if err := s.app.SaveSettings(c.Request().Context(), record); err != nil {
		return err
	}
	return c.JSON(200, record)
}
