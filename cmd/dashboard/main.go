package main

import (
	"context"
	"os"
	"time"

	"desembolsos/internal/cli"
	apphttp "desembolsos/internal/http"
	applog "desembolsos/internal/log"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	ds, err := cli.LoadDataset(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to load dataset", applog.FieldError, err, applog.FieldSourceKind, cfg.SourceKind)
		os.Exit(1)
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, ds, apphttp.Options{
		Logger:             logger,
		DefaultGranularity: cfg.Granularity(),
		CacheSize:          cfg.CacheSize,
		CacheTTL:           cfg.CacheTTL,
		RateLimitRPM:       cfg.RateLimitRPM,
		TrustedProxies:     cfg.TrustedProxies,
	})
	if err != nil {
		logger.Error("Failed to initialize server", applog.FieldError, err)
		os.Exit(1)
	}

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	logger.Info("Starting dashboard server",
		applog.FieldOperation, applog.OpStartup,
		"port", cfg.Port,
		applog.FieldSourceKind, cfg.SourceKind,
		applog.FieldGranularity, string(cfg.Granularity()))

	if err := cli.Serve(ctx, logger, srv, 30*time.Second); err != nil {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
