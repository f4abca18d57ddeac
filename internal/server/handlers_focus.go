package server

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Ufhano/Minimalist-App/internal/domain"
	apperrors "github.com/Ufhano/Minimalist-App/internal/errors"
	"github.com/Ufhano/Minimalist-App/internal/focus"
)

type startFocusRequest struct {
	Type string `json:"type"`
}

func focusStatus(timer *focus.Timer) map[string]any {
	spec := timer.Type().Spec()
	return map[string]any{
		"type":              string(timer.Type()),
		"label":             spec.Label,
		"state":             timer.State().String(),
		"total_seconds":     int(spec.Duration / time.Second),
		"remaining_seconds": int(timer.Remaining() / time.Second),
	}
}

func (s *Server) handleStartFocus(c echo.Context) error {
	var req startFocusRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	sessionType := domain.SessionType(req.Type)
	if !sessionType.Valid() {
		return apperrors.ValidationError("unknown session type").WithContext("type", req.Type)
	}

	timer, err := s.app.StartFocus(c.Request().Context(), sessionType)
	if err != nil {
		return err
	}
	return c.JSON(200, focusStatus(timer))
}

func (s *Server) handleFocusStatus(c echo.Context) error {
	timer, err := s.app.Focus()
	if err != nil {
		return err
	}
	return c.JSON(200, focusStatus(timer))
}

func (s *Server) handlePauseFocus(c echo.Context) error {
	if err := s.app.PauseFocus(); err != nil {
		return err
	}
	return c.JSON(200, map[string]string{"status": "ok"})
}

func (s *Server) handleResumeFocus(c echo.Context) error {
	if err := s.app.ResumeFocus(); err != nil {
		return err
	}
	return c.JSON(200, map[string]string{"status": "ok"})
}

func (s *Server) handleCancelFocus(c echo.Context) error {
	if err := s.app.CancelFocus(); err != nil {
		return err
	}
	return c.JSON(200, map[string]string{"status": "ok"})
}
