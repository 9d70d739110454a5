// cmd/mcp-server/main.go: standalone HTTP MCP server for goalgebra
//
// Exposes the algebra tools and long-lived expression sessions as HTTP
// endpoints for AI agent frameworks.
//
// Usage:
//   go run ./cmd/mcp-server --port 8080
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
// Metrics endpoint:   GET  /metrics
// Session endpoints:  POST /sessions, GET /sessions/:id, DELETE /sessions/:id
//                     POST /sessions/:id/step, /run, /graft
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	algebra "github.com/njchilds90/goalgebra"
	"github.com/njchilds90/goalgebra/internal/config"
	"github.com/njchilds90/goalgebra/internal/session"
)

func main() {
	app := cli.App{
		Name:    "mcp-server",
		Usage:   "HTTP tool server for the algebra rewriting engine",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "path to an algebra.yaml file",
			EnvVars: []string{"ALGEBRA_CONFIG"},
		},
		&cli.IntFlag{
			Name:    "port",
			Usage:   "port to listen on, overrides the config listen address",
			EnvVars: []string{"PORT"},
		},
		&cli.IntFlag{
			Name:    "step-limit",
			Usage:   "frames processed per simplifier step",
			EnvVars: []string{"ALGEBRA_STEP_LIMIT"},
		},
		&cli.IntFlag{
			Name:    "sessions",
			Usage:   "number of live sessions kept before eviction",
			EnvVars: []string{"ALGEBRA_SESSIONS"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "debug, info, warn or error",
			EnvVars: []string{"LOG_LEVEL"},
		},
	}

	app.Action = Serve

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadConfig merges the optional config file with flag and env overrides.
func loadConfig(cctx *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := cctx.String("config"); path != "" {
		var err error
		if cfg, err = config.LoadConfig(path); err != nil {
			return nil, err
		}
	}
	if cctx.IsSet("port") {
		cfg.Listen = fmt.Sprintf(":%d", cctx.Int("port"))
	}
	if cctx.IsSet("step-limit") {
		cfg.StepLimit = cctx.Int("step-limit")
	}
	if cctx.IsSet("sessions") {
		cfg.Sessions = cctx.Int("sessions")
	}
	if cctx.IsSet("log-level") {
		cfg.LogLevel = cctx.String("log-level")
	}
	return cfg, cfg.Validate()
}

// Serve runs the HTTP server until SIGINT or SIGTERM.
func Serve(cctx *cli.Context) error {
	ctx, cancel := context.WithCancel(cctx.Context)
	defer cancel()

	cfg, err := loadConfig(cctx)
	if err != nil {
		return err
	}
	level, _ := cfg.Level()

	// Trap SIGINT to trigger a shutdown.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger = logger.With("source", "mcp_server_main")

	simp := algebra.NewSimplifier(cfg.SimplifierOptions(logger)...)
	store, err := session.NewStore(cfg.Sessions, simp, logger)
	if err != nil {
		return err
	}

	e := newEcho(NewServer(store, logger))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("algebra MCP server listening", "addr", cfg.Listen, "version", versioninfo.Short())
		if err := e.Start(cfg.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signals:
		logger.Info("shutting down on signal")
	case <-ctx.Done():
		logger.Info("shutting down on context done")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down server", "err", err)
		return err
	}
	logger.Info("shut down successfully")
	return nil
}

func newEcho(srv *Server) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.Server.ReadTimeout = 15 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	e.Use(middleware.Recover())
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	srv.RegisterHandlers(e)
	return e
}
