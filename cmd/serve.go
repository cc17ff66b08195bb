package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/banking/credit-scoring-engine/config"
	"github.com/banking/credit-scoring-engine/handlers"
	"github.com/banking/credit-scoring-engine/logger"
	"github.com/banking/credit-scoring-engine/router"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the actuator HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, *configFile)
		},
	}
}

func serve(ctx context.Context, configFile string) error {
	log := logger.GetLogger()

	a, err := newApp(ctx, configFile)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := router.SetupRouter(router.Dependencies{
		Config:        a.cfg,
		Metrics:       a.metrics,
		HealthHandler: handlers.NewHealthHandler(a.health),
		InfoHandler:   handlers.NewInfoHandler(a.cfg, a.health.StartTime()),
	})

	srv := &http.Server{
		Addr:              ":" + a.cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("Starting server",
			"port", a.cfg.Server.Port,
			"environment", a.cfg.Server.Environment,
			"readiness_mode", a.cfg.Health.ReadinessMode,
			"version", a.cfg.Server.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return shutdown(srv, a.cfg)
	})

	return g.Wait()
}

func shutdown(srv *http.Server, cfg *config.Config) error {
	log := logger.GetLogger()
	timeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
	log.Infow("Shutting down server", "timeout", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("Server forced to shut down", "error", err)
		return err
	}
	log.Info("Server exited gracefully")
	return nil
}
