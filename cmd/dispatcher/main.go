package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"booking-reconciler/cmd/bootstrap"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Runs the refund instruction dispatcher and the idempotency key purge on
// their cron schedules until SIGINT/SIGTERM.
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	app := fx.New(bootstrap.DispatcherModule)

	if err := app.Start(context.Background()); err != nil {
		slog.Error("failed to start dispatcher", "error", err)
		os.Exit(1)
	}

	<-app.Done()

	if err := app.Stop(context.Background()); err != nil {
		slog.Error("failed to stop dispatcher", "error", err)
	}

	slog.Info("dispatcher stopped")
}
