package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	cmdinternal "github.com/spacelift-io/replicascalr/cmd/internal"
	"github.com/spacelift-io/replicascalr/internal"
	"github.com/spacelift-io/replicascalr/internal/tracing"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	var cfg internal.RuntimeConfig
	if err := cfg.Parse(); err != nil {
		logger.Error("failed to parse configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.InitTracer(ctx, logger, tracing.Options{Exporter: string(cfg.TraceExporter), Writer: os.Stderr})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	outcome := cmdinternal.Run(ctx, logger, &cfg)

	// The signal context is done by now if we were interrupted, so flush
	// spans with a fresh one.
	if err := tp.Shutdown(context.Background()); err != nil {
		logger.Error("error shutting down tracer provider", "error", err)
	}

	if outcome.Failed() {
		logger.Error("autoscaling failed", "error", outcome.Err, "iterations", outcome.Iterations)
		os.Exit(1)
	}

	logger.Info("autoscaling terminated by user", "iterations", outcome.Iterations)
}
