package server

import (
	"github.com/labstack/echo/v4"
)

func (s *Server) handleSummary(c echo.Context) error {
	summary, err := s.app.Summary(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(200, summary)
}

// handleRollup derives and persists today's streak row on demand, on top of
// the hourly schedule.
func (s *Server) handleRollup(c echo.Context) error {
	streak, err := s.app.RollupToday(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(200, map[string]any{
		"date":                      streak.Date,
		"total_screen_time_minutes": streak.TotalScreenTimeMinutes,
		"goal_met":                  streak.GoalMet,
	})
}
