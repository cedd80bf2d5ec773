package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"booking-reconciler/internal/pkg/config"

	"ariga.io/atlas-go-sdk/atlasexec"
	"github.com/joho/godotenv"
)

// Applies migrations/ to the configured database with the atlas CLI. The
// schema file is applied declaratively, so re-running is a no-op.
func main() {
	var (
		dir    = flag.String("dir", "migrations", "directory holding the schema files")
		devURL = flag.String("dev-url", "docker://postgres/17/dev", "atlas dev database used to plan changes")
		dryRun = flag.Bool("dry-run", false, "print the planned statements without applying them")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	client, err := atlasexec.NewClient(".", "atlas")
	if err != nil {
		slog.Error("failed to init atlas client", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	res, err := client.SchemaApply(ctx, &atlasexec.SchemaApplyParams{
		URL:         cfg.DB.BuildDSN(),
		To:          "file://" + *dir,
		DevURL:      *devURL,
		DryRun:      *dryRun,
		AutoApprove: true,
	})
	if err != nil {
		slog.Error("schema apply failed", "error", err)
		os.Exit(1)
	}

	if *dryRun {
		for _, stmt := range res.Changes.Pending {
			slog.Info("pending", "statement", stmt)
		}
		return
	}
	slog.Info("schema applied", "statements", len(res.Changes.Applied))
}
