package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/tripkit/internal/auth"
	"github.com/dukerupert/tripkit/internal/config"
	"github.com/dukerupert/tripkit/internal/database"
	"github.com/dukerupert/tripkit/internal/dining"
	"github.com/dukerupert/tripkit/internal/logging"
	"github.com/dukerupert/tripkit/internal/metrics"
	"github.com/dukerupert/tripkit/internal/server"
	"github.com/dukerupert/tripkit/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Dining.APIKey == "" {
		slog.Warn("dining API key not set, /recommendations will fail upstream")
	}

	weatherSvc := weather.NewService(weather.Config{
		GeocodingURL:    cfg.Weather.GeocodingURL,
		ForecastURL:     cfg.Weather.ForecastURL,
		TemperatureUnit: cfg.Weather.TemperatureUnit,
		ForecastDays:    cfg.Weather.ForecastDays,
		Timeout:         cfg.Weather.Timeout,
	})
	diningSvc := dining.NewService(dining.Config{
		APIKey:  cfg.Dining.APIKey,
		BaseURL: cfg.Dining.BaseURL,
		Limit:   cfg.Dining.Limit,
		TopN:    cfg.Dining.TopN,
		Timeout: cfg.Dining.Timeout,
	})

	srv, err := server.New(
		db,
		auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		weatherSvc,
		diningSvc,
		metrics.New(),
		server.Options{
			ConcealOwnership:   cfg.ConcealOwnership,
			CORSOrigins:        cfg.CORSOrigins,
			WeatherRequireAuth: cfg.Weather.RequireAuth,
			DiningRequireAuth:  cfg.Dining.RequireAuth,
		},
		logger,
	)
	if err != nil {
		slog.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("tripkit starting", "addr", httpServer.Addr, "db", cfg.DBPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
