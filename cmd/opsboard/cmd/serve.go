package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/opsboard/opsboard/internal/api/handlers"
	"github.com/opsboard/opsboard/internal/api/middleware"
	"github.com/opsboard/opsboard/internal/config"
	"github.com/opsboard/opsboard/internal/engine"
	"github.com/opsboard/opsboard/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server and snapshot refresher",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	charmLog := logger.NewCharm(cfg.Logging.Level, cfg.Logging.Format)

	svc, cleanup, err := buildService(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(middleware.Recovery(log))
	e.Use(middleware.RequestLog(log))
	e.Use(middleware.Metrics())

	health := handlers.NewHealthHandler(svc)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("opsboard", Version))
	handlers.RegisterDashboardRoutes(api, handlers.NewDashboardHandler(svc))

	refresher, err := engine.NewRefresher(
		svc,
		cfg.Schedule.RefreshInterval,
		cfg.Schedule.StaggerOffset,
		log,
	)
	if err != nil {
		return fmt.Errorf("creating refresher: %w", err)
	}

	// Warm the snapshots before accepting traffic; a failure here is
	// not fatal, the refresher retries on its schedule.
	warmCtx, warmCancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	refresher.RunAll(warmCtx)
	warmCancel()

	refresher.Start()
	defer func() { <-refresher.Stop().Done() }()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	charmLog.Info("starting server", "addr", addr)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			charmLog.Error("server error", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	charmLog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	charmLog.Info("server stopped")
	return nil
}
