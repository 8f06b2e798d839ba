// Package cli provides the startup and shutdown steps of the dashboard
// binary.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"desembolsos/internal/config"
	"desembolsos/internal/core"
	"desembolsos/internal/dataset"
	applog "desembolsos/internal/log"
	"desembolsos/internal/source"
	"desembolsos/internal/source/csvfile"
	"desembolsos/internal/source/google"
	"desembolsos/internal/source/xlsx"
)

// SetupLogger initializes structured logging at the given level and sets it
// as the default logger. An unknown level logs at info.
func SetupLogger(level string) *applog.Logger {
	lvl, err := applog.ParseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	cfg := applog.DefaultConfig()
	cfg.Level = lvl
	cfg.Component = applog.ComponentApp
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenSource builds the table reader selected by the configuration.
func OpenSource(ctx context.Context, cfg *config.Config) (source.Reader, error) {
	switch cfg.SourceKind {
	case config.SourceCSV:
		return csvfile.New(cfg.SourcePath, cfg.Delimiter()), nil
	case config.SourceXLSX:
		return xlsx.New(cfg.SourcePath, cfg.SourceSheet), nil
	case config.SourceSheets:
		r, err := google.NewFromEnv(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetRange)
		if err != nil {
			return nil, fmt.Errorf("google sheets source: %w", err)
		}
		return r, nil
	}
	return nil, fmt.Errorf("unknown source kind %q", cfg.SourceKind)
}

// LoadDataset reads and reshapes the configured source, logging the load
// counters.
func LoadDataset(ctx context.Context, logger *applog.Logger, cfg *config.Config) (*dataset.Dataset, error) {
	log := logger.WithComponent(applog.ComponentDataset)

	r, err := OpenSource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ds, err := dataset.Load(ctx, r, core.DefaultSchema())
	if err != nil {
		return nil, fmt.Errorf("load %s source %s: %w", cfg.SourceKind, sourceName(cfg), err)
	}

	st := ds.Stats()
	log.Info("Dataset loaded",
		applog.FieldOperation, applog.OpLoad,
		applog.FieldSourceKind, cfg.SourceKind,
		applog.FieldSourcePath, sourceName(cfg),
		applog.FieldSourceRows, st.SourceRows,
		applog.FieldPeriods, st.Periods,
		applog.FieldRecords, st.Records,
		applog.FieldFirstMonth, st.First.ChartLabel(),
		applog.FieldLastMonth, st.Last.ChartLabel(),
		applog.FieldDuration, time.Since(start).Milliseconds())
	log.Debug("Unparseable amount cells coerced to zero", applog.FieldCoerced, st.Coerced)
	return ds, nil
}

func sourceName(cfg *config.Config) string {
	if cfg.SourceKind == config.SourceSheets {
		return cfg.GoogleSpreadsheetID + "!" + cfg.GoogleSheetRange
	}
	return cfg.SourcePath
}

// Server is the part of *http.Server that Serve drives.
type Server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// Serve runs srv until ctx is cancelled or SIGINT/SIGTERM arrives, then
// drains it within timeout.
func Serve(ctx context.Context, logger *applog.Logger, srv Server, timeout time.Duration) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received", applog.FieldOperation, applog.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
