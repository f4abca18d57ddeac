// Package server exposes the core over HTTP: catalog CRUD, usage session
// open/close, focus timer control, the stats summary, and the event stream.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Ufhano/Minimalist-App/internal/app"
	"github.com/Ufhano/Minimalist-App/internal/config"
	apperrors "github.com/Ufhano/Minimalist-App/internal/errors"
	"github.com/Ufhano/Minimalist-App/internal/websocket"
)

// pinger is the minimal interface for backing-store health checks.
type pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	app       *app.Service
	hub       *websocket.Hub
	remote    pinger
	cache     pinger
	startTime time.Time
}

func NewServer(cfg *config.Config, appService *app.Service, hub *websocket.Hub, remote, cache pinger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		app:       appService,
		hub:       hub,
		remote:    remote,
		cache:     cache,
		startTime: time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	log.Printf("Starting server on port %s", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
