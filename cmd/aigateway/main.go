package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"aigateway/config"
	"aigateway/internal/gateway"
	"aigateway/internal/observability"
	"aigateway/internal/providers"
	"aigateway/internal/server"
	"aigateway/internal/settings"
	"aigateway/internal/version"

	// adapter registration
	_ "aigateway/internal/providers/chatgpt"
	_ "aigateway/internal/providers/claude"
	_ "aigateway/internal/providers/gemini"
	_ "aigateway/internal/providers/moonshot"
	_ "aigateway/internal/providers/perplexity"
)

const shutdownTimeout = 10 * time.Second

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "config.yaml", "path to the optional YAML config file")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	// .env is optional; absence is not an error
	_ = godotenv.Load()

	setupLogging()

	if err := run(*configPath); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func setupLogging() {
	var handler slog.Handler
	if os.Getenv("LOG_FORMAT") == "pretty" {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel(),
			TimeFormat: time.Kitchen,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel(),
		})
	}
	slog.SetDefault(slog.New(handler))
}

func logLevel() slog.Level {
	if os.Getenv("LOG_LEVEL") == "debug" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := settings.New(ctx, settings.StoreConfig{
		Type:            cfg.Storage.Type,
		SQLitePath:      cfg.Storage.SQLitePath,
		PostgresURL:     cfg.Storage.PostgresURL,
		MigrateJSONPath: cfg.Storage.MigrateJSONPath,
	})
	if err != nil {
		return fmt.Errorf("failed to open settings store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("failed to close settings store", "error", err)
		}
	}()

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
	}

	registry := providers.NewRegistry(store)
	gw := gateway.New(store, registry, metrics)
	srv := server.New(cfg, gw, store)

	slog.Info("starting ai gateway",
		"version", version.Version,
		"storage", cfg.Storage.Type,
		"adapters", providers.RegisteredIDs(),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return <-errCh
}
