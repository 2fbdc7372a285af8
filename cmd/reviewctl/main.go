package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/alper4283/intern-project-product-review/internal/cli"
	"github.com/alper4283/intern-project-product-review/internal/config"
	"github.com/alper4283/intern-project-product-review/pkg/logger"
	"github.com/alper4283/intern-project-product-review/pkg/tracing"
)

func main() {
	// Load a .env file when present; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	log := logger.New("reviewctl", cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdown, err := tracing.Init(ctx, tracing.Config{
		ServiceName:  "reviewctl",
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTELEndpoint,
		Enabled:      cfg.OTELEnabled,
	})
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = shutdown(context.Background()) }()

	app := cli.NewApp(cfg, log, os.Stdout)
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
