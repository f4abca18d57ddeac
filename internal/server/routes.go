package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/version", s.handleVersion)

	// Owner sign-in state
	s.echo.POST("/api/owner", s.handleSetOwner)
	s.echo.DELETE("/api/owner", s.handleClearOwner)

	// App catalog
	s.echo.GET("/api/apps", s.handleListApps)
	s.echo.GET("/api/apps/allowed", s.handleAllowedApps)
	s.echo.GET("/api/apps/restricted", s.handleRestrictedApps)
	s.echo.POST("/api/apps", s.handleUpsertApp)
	s.echo.POST("/api/apps/refresh", s.handleRefreshApps)
	s.echo.DELETE("/api/apps/:id", s.handleRemoveApp)

	// Usage sessions
	s.echo.POST("/api/usage", s.handleOpenUsage)
	s.echo.POST("/api/usage/:id/close", s.handleCloseUsage)
	s.echo.GET("/api/usage", s.handleListUsage)

	// Focus sessions
	s.echo.POST("/api/focus", s.handleStartFocus)
	s.echo.GET("/api/focus", s.handleFocusStatus)
	s.echo.POST("/api/focus/pause", s.handlePauseFocus)
	s.echo.POST("/api/focus/resume", s.handleResumeFocus)
	s.echo.POST("/api/focus/cancel", s.handleCancelFocus)

	// Aggregation
	s.echo.GET("/api/stats/summary", s.handleSummary)
	s.echo.POST("/api/stats/rollup", s.handleRollup)

	// Settings
	s.echo.GET("/api/settings", s.handleGetSettings)
	s.echo.PUT("/api/settings", s.handleSaveSettings)

	// Event stream
	s.echo.GET("/ws/events", s.handleWebSocket)
}
