// Package server assembles the echo HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/oncopacket/oncopacket/internal/domain/phenopacket"
	"github.com/oncopacket/oncopacket/internal/domain/terminology"
	"github.com/oncopacket/oncopacket/internal/duration"
	"github.com/oncopacket/oncopacket/internal/platform/db"
	"github.com/oncopacket/oncopacket/internal/platform/middleware"
)

// Version is reported by GET /health.
const Version = "0.1.0"

// Options carries the dependencies of the API. Pool may be nil.
type Options struct {
	Logger         zerolog.Logger
	Pool           *pgxpool.Pool
	Normalizer     *terminology.Normalizer
	Phenopackets   *phenopacket.Service
	BodyLimit      string
	RequestTimeout time.Duration
}

type routeRegistrar interface {
	RegisterRoutes(api *echo.Group)
}

// New builds the echo instance with global middleware and all routes.
func New(opts Options) *echo.Echo {
	if opts.BodyLimit == "" {
		opts.BodyLimit = "10M"
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 2 * time.Minute
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(opts.Logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(opts.Logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, middleware.RequestIDHeader},
	}))
	e.Use(middleware.BodyLimit(opts.BodyLimit))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": Version,
		})
	})
	e.GET("/health/db", db.HealthHandler(opts.Pool))

	api := e.Group("/api/v1", middleware.RequestTimeout(opts.RequestTimeout))
	handlers := []routeRegistrar{duration.NewHandler()}
	if opts.Normalizer != nil {
		handlers = append(handlers, terminology.NewHandler(opts.Normalizer))
	}
	if opts.Phenopackets != nil {
		handlers = append(handlers, phenopacket.NewHandler(opts.Phenopackets))
	}
	for _, h := range handlers {
		h.RegisterRoutes(api)
	}
	return e
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, e *echo.Echo, addr string, logger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
