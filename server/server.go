// Package server assembles the HTTP server: echo middleware, health and
// metrics endpoints, and the v1 API routes.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/buddylabs/buddy/internal/profile"
	apiv1 "github.com/buddylabs/buddy/server/router/api/v1"
	"github.com/buddylabs/buddy/store"
)

type Server struct {
	Secret  string
	Profile *profile.Profile
	Store   *store.Store

	echoServer   *echo.Echo
	apiV1Service *apiv1.APIV1Service
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	s := &Server{
		Secret:  profile.Secret,
		Profile: profile,
		Store:   store,
	}

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true

	echoServer.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			slog.Info("http request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status)
			return nil
		},
	}))
	echoServer.Use(echomw.Recover())
	echoServer.Use(echomw.CORS())
	echoServer.Use(echomw.TimeoutWithConfig(echomw.TimeoutConfig{
		// Reply generation can take a few seconds end to end.
		Timeout: 30 * time.Second,
	}))

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": profile.Version,
		})
	})
	echoServer.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	s.apiV1Service = apiv1.NewAPIV1Service(s.Secret, profile, store)
	s.apiV1Service.RegisterRoutes(echoServer)

	s.echoServer = echoServer
	return s, nil
}

func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", "address", address, "mode", s.Profile.Mode)
	return s.echoServer.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", slog.String("error", err.Error()))
	}

	slog.Info("buddy stopped properly")
}

// GetEcho exposes the router for tests.
func (s *Server) GetEcho() *echo.Echo {
	return s.echoServer
}
