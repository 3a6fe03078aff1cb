package main

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
)

const (
	shutdownTimeout      = 20 * time.Second
	schedulerStopTimeout = 10 * time.Second
)

func (app *applicationDependencies) serve() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", app.config.port),
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
	}

	runCtx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()

	if !app.config.sweep.disabled {
		if err := app.scheduler.Start(runCtx); err != nil {
			return err
		}
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(ctx)

		if !app.config.sweep.disabled {
			if stopErr := app.scheduler.Stop(schedulerStopTimeout); stopErr != nil {
				err = errors.Join(err, stopErr)
			}
		}

		close(app.done)
		shutdownError <- err
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.environment)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err = <-shutdownError; err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}
