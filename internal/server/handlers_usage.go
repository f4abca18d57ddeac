package server

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Ufhano/Minimalist-App/internal/domain"
	apperrors "github.com/Ufhano/Minimalist-App/internal/errors"
	"github.com/Ufhano/Minimalist-App/internal/recorder"
)

type openUsageRequest struct {
	AppID       string `json:"app_id,omitempty"`
	AppName     string `json:"app_name"`
	PackageName string `json:"package_name"`
	Intention   string `json:"intention"`
}

// handleOpenUsage starts a usage log for an app-open event. The open never
// fails on remote errors; persisted reports whether the log reached the
// remote store.
func (s *Server) handleOpenUsage(c echo.Context) error {
	var req openUsageRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.PackageName == "" {
		return apperrors.ValidationError("package name is required")
	}

	descriptor := recorder.Descriptor{
		Name:        req.AppName,
		PackageName: req.PackageName,
	}
	if req.AppID != "" {
		appID, err := uuid.Parse(req.AppID)
		if err != nil {
			return apperrors.ValidationError("invalid app id").WithContext("app_id", req.AppID)
		}
		descriptor.AppID = &appID
	}

	h := s.app.OpenApp(c.Request().Context(), descriptor, req.Intention)
	return c.JSON(200, map[string]any{
		"handle_id": h.ID,
		"opened_at": h.OpenedAt,
		"persisted": h.LogID() != nil,
	})
}

type closeUsageRequest struct {
	Reflection string `json:"reflection"`
}

func (s *Server) handleCloseUsage(c echo.Context) error {
	handleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ValidationError("invalid handle id").WithContext("id", c.Param("id"))
	}

	var req closeUsageRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	if err := s.app.CloseUsage(handleID, req.Reflection); err != nil {
		return err
	}
	return c.JSON(200, map[string]string{"status": "ok"})
}

type usageLogResponse struct {
	ID              uuid.UUID  `json:"id"`
	AppID           *uuid.UUID `json:"app_id,omitempty"`
	AppName         string     `json:"app_name"`
	PackageName     string     `json:"package_name"`
	OpenedAt        time.Time  `json:"opened_at"`
	ClosedAt        *time.Time `json:"closed_at,omitempty"`
	Intention       string     `json:"intention"`
	Reflection      *string    `json:"reflection,omitempty"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`
}

func toUsageLogResponse(l domain.UsageLog) usageLogResponse {
	return usageLogResponse{
		ID:              l.ID,
		AppID:           l.AppID,
		AppName:         l.AppName,
		PackageName:     l.PackageName,
		OpenedAt:        l.OpenedAt,
		ClosedAt:        l.ClosedAt,
		Intention:       l.Intention,
		Reflection:      l.Reflection,
		DurationSeconds: l.DurationSeconds,
	}
}

// handleListUsage returns usage logs for a window, defaulting to the last
// seven days. Timestamps are RFC 3339.
func (s *Server) handleListUsage(c echo.Context) error {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -7)

	if raw := c.QueryParam("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return apperrors.ValidationError("invalid from timestamp").WithContext("from", raw)
		}
		from = parsed
	}
	if raw := c.QueryParam("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return apperrors.ValidationError("invalid to timestamp").WithContext("to", raw)
		}
		to = parsed
	}

	logs, err := s.app.ListUsage(c.Request().Context(), from, to)
	if err != nil {
		return err
	}

	out := make([]usageLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, toUsageLogResponse(l))
	}
	return c.JSON(200, map[string]any{"logs": out})
}
