package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

const appVersion = "1.0.0"

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		logger.Error("invalid configuration", "error", err.Error())
		os.Exit(2)
	}

	if err = run(cfg, logger); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func run(cfg serverConfig, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tel, err := newTelemetry(ctx, cfg)
	if err != nil {
		return err
	}

	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if shutdownErr := tel.shutdown(shutdownCtx); shutdownErr != nil {
			logger.Error("telemetry shutdown failed", "error", shutdownErr.Error())
		}
	}()

	store, closeStore, err := openStore(ctx, cfg, logger, tel)
	if err != nil {
		return err
	}
	defer closeStore()

	logger.Info("ledger store ready", "store", cfg.store, "adapter", cfg.db.adapter)

	app, err := newApplication(cfg, logger, store, tel, time.Now)
	if err != nil {
		return err
	}

	return app.serve()
}
