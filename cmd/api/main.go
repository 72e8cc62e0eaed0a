package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/filmschedule/filmschedule-backend/config"
	"github.com/filmschedule/filmschedule-backend/internal/api/http/middleware"
	"github.com/filmschedule/filmschedule-backend/internal/bootstrap"
	"github.com/filmschedule/filmschedule-backend/internal/logging"
	"github.com/filmschedule/filmschedule-backend/internal/projects/service"
	"github.com/filmschedule/filmschedule-backend/internal/uploads"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.L().WithError(err).Fatal("failed to load config")
	}

	log := logging.Init(cfg.App.LogLevel, cfg.App.ServiceName, cfg.App.Environment)
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	store, closeStore, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open project store")
	}
	defer closeStore()

	blobs, err := bootstrap.OpenBlobStore(ctx, cfg.Storage)
	if err != nil {
		log.WithError(err).Fatal("failed to open blob store")
	}

	projects := service.NewProjectService(store, service.WithLayout(cfg.Layout))
	logos := uploads.NewLogoService(blobs, cfg.Storage.MaxLogoBytes, strings.TrimRight(cfg.Server.APIPrefix, "/")+"/media")

	var sweeper *service.ArchiveSweeper
	if cfg.App.ArchiveSweepCron != "" {
		sweeper = service.NewArchiveSweeper(projects)
		if err := sweeper.Start(cfg.App.ArchiveSweepCron); err != nil {
			log.WithError(err).Fatal("failed to start archive sweeper")
		}
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    cfg.App.ServiceName,
		Version:        cfg.App.Version,
		APIPrefix:      cfg.Server.APIPrefix,
		CORSOrigins:    cfg.Server.CORSOrigins,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		Projects:       projects,
		Logos:          logos,
		Metrics:        middleware.NewMetrics("filmschedule"),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if sweeper != nil {
		sweeper.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	log.Info("server exited")
}
