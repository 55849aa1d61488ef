package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"lovegift/config"
	"lovegift/internal/database"
	"lovegift/internal/jobs"
	"lovegift/internal/logging"
	"lovegift/internal/repository"
	"lovegift/internal/router"
	"lovegift/internal/service"
	"lovegift/pkg/iphash"

	"github.com/go-co-op/gocron/v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(logging.NewHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Log.Level)}),
	)))

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		fatal("database", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		fatal("migrate", err)
	}
	if cfg.Database.SeedDemo {
		if err := database.SeedDemo(db); err != nil {
			fatal("seed", err)
		}
		slog.Info("demo data seeded")
	}

	funnel := service.NewFunnelService(
		repository.NewListingRepository(db),
		repository.NewFunnelRepository(db),
		repository.NewProspectRepository(db),
		iphash.New(cfg.App.IPHashKey),
		cfg.Funnel.WriteTimeout,
	)

	var sched gocron.Scheduler
	if cfg.Funnel.RetentionDays > 0 {
		sched, err = jobs.NewRetention(funnel, cfg.Funnel.RetentionDays).Start(cfg.Funnel.RetentionInterval)
		if err != nil {
			fatal("retention scheduler", err)
		}
	}

	engine, stopRouter := router.Setup(cfg, db, funnel)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		slog.Info("server listening", "port", cfg.Server.Port, "env", cfg.Server.Env, "db_driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("listen", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown", "error", err)
	}
	stopRouter()
	if sched != nil {
		if err := sched.Shutdown(); err != nil {
			slog.Warn("scheduler shutdown", "error", err)
		}
	}
	// Let in-flight funnel writes land before the pool closes.
	funnel.Wait()
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	slog.Info("server stopped")
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
