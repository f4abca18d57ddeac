package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Ufhano/Minimalist-App/internal/domain"
	apperrors "github.com/Ufhano/Minimalist-App/internal/errors"
)

type appResponse struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	PackageName       string     `json:"package_name"`
	Category          string     `json:"category"`
	DailyLimitMinutes *int       `json:"daily_limit_minutes,omitempty"`
	ProfileID         *uuid.UUID `json:"profile_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func toAppResponse(a domain.App) appResponse {
	return appResponse{
		ID:                a.ID,
		Name:              a.Name,
		PackageName:       a.PackageName,
		Category:          string(a.Category),
		DailyLimitMinutes: a.DailyLimitMinutes,
		ProfileID:         a.ProfileID,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func toAppResponses(apps []domain.App) []appResponse {
	out := make([]appResponse, 0, len(apps))
	for _, a := range apps {
		out = append(out, toAppResponse(a))
	}
	return out
}

func (s *Server) handleListApps(c echo.Context) error {
	apps, stale := s.app.Apps()
	return c.JSON(200, map[string]any{
		"apps":  toAppResponses(apps),
		"stale": stale,
	})
}

func (s *Server) handleAllowedApps(c echo.Context) error {
	return c.JSON(200, map[string]any{"apps": toAppResponses(s.app.AllowedApps())})
}

func (s *Server) handleRestrictedApps(c echo.Context) error {
	return c.JSON(200, map[string]any{"apps": toAppResponses(s.app.RestrictedApps())})
}

// handleRefreshApps forces a remote sync. A failed sync is not an error to
// the client: the stale snapshot comes back flagged as such.
func (s *Server) handleRefreshApps(c echo.Context) error {
	apps, err := s.app.RefreshApps(c.Request().Context())
	if err != nil {
		if errors.Is(err, domain.ErrSyncFailed) {
			return c.JSON(200, map[string]any{
				"apps":  toAppResponses(apps),
				"stale": true,
			})
		}
		return err
	}
	return c.JSON(200, map[string]any{
		"apps":  toAppResponses(apps),
		"stale": false,
	})
}

type upsertAppRequest struct {
	Name              string `json:"name"`
	PackageName       string `json:"package_name"`
	Category          string `json:"category"`
	DailyLimitMinutes *int   `json:"daily_limit_minutes,omitempty"`
	ProfileID         string `json:"profile_id,omitempty"`
}

func (s *Server) handleUpsertApp(c echo.Context) error {
	var req upsertAppRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	change := domain.AppChange{
		Name:              req.Name,
		PackageName:       req.PackageName,
		Category:          domain.Category(req.Category),
		DailyLimitMinutes: req.DailyLimitMinutes,
	}
	if req.ProfileID != "" {
		profileID, err := uuid.Parse(req.ProfileID)
		if err != nil {
			return apperrors.ValidationError("invalid profile id").WithContext("profile_id", req.ProfileID)
		}
		change.ProfileID = &profileID
	}

	app, err := s.app.UpsertApp(c.Request().Context(), change)
	if err != nil {
		return err
	}

	if err := c.JSON(200, toAppResponse(*app)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleRemoveApp(c echo.Context) error {
	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ValidationError("invalid app id").WithContext("id", c.Param("id"))
	}

	if err := s.app.RemoveApp(c.Request().Context(), appID); err != nil {
		return err
	}
	return c.JSON(200, map[string]string{"status": "ok"})
}
